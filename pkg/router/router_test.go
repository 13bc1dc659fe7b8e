package router

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/zen-systems/helmsman/pkg/classify"
	"github.com/zen-systems/helmsman/pkg/score"
)

func TestRouteOverrideWins(t *testing.T) {
	r := New()

	prompts := []string{
		"Write a function to sort an array",
		"Hello",
		strings.Repeat("a", 1500),
	}
	for _, prompt := range prompts {
		d, err := r.Route(prompt, "custom-model-x")
		if err != nil {
			t.Fatalf("Route(%q, custom-model-x) error = %v", prompt, err)
		}
		if d.Model != "custom-model-x" {
			t.Errorf("Model = %q, want custom-model-x", d.Model)
		}
		if d.Confidence != classify.ConfidenceHigh {
			t.Errorf("Confidence = %q, want high", d.Confidence)
		}
		if d.Strategy != StrategyOverride {
			t.Errorf("Strategy = %q, want override", d.Strategy)
		}
		if d.Reason != "user requested specific model" {
			t.Errorf("Reason = %q", d.Reason)
		}
	}
}

func TestKeywordRouteScenarios(t *testing.T) {
	r := New(WithStrategy(StrategyKeyword))
	tiers := DefaultTiers()

	tests := []struct {
		name       string
		prompt     string
		wantModel  string
		wantTier   string
		wantConf   classify.Confidence
		wantReason string
	}{
		{
			name:       "code keyword",
			prompt:     "Write a function to sort an array",
			wantModel:  tiers.Code,
			wantTier:   TierCode,
			wantConf:   classify.ConfidenceHigh,
			wantReason: "code",
		},
		{
			name:      "short prompt",
			prompt:    "Hello",
			wantModel: tiers.Fast,
			wantTier:  TierFast,
			wantConf:  classify.ConfidenceMedium,
		},
		{
			name:      "long prompt",
			prompt:    strings.Repeat("a", 1500),
			wantModel: tiers.Quality,
			wantTier:  TierQuality,
			wantConf:  classify.ConfidenceHigh,
		},
		{
			name:       "analytical keyword",
			prompt:     "Analyze the pros and cons of serverless architecture",
			wantModel:  tiers.Quality,
			wantTier:   TierQuality,
			wantConf:   classify.ConfidenceHigh,
			wantReason: "analysis",
		},
		{
			name:      "balanced fallback",
			prompt:    "Tell me something interesting about the weather today",
			wantModel: tiers.Balanced,
			wantTier:  TierBalanced,
			wantConf:  classify.ConfidenceLow,
		},
		{
			name:       "creative keyword",
			prompt:     "Write a story about a lighthouse keeper",
			wantModel:  tiers.Quality,
			wantTier:   TierQuality,
			wantConf:   classify.ConfidenceHigh,
			wantReason: "creative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := r.Route(tt.prompt, "")
			if err != nil {
				t.Fatalf("Route() error = %v", err)
			}
			if d.Model != tt.wantModel {
				t.Errorf("Model = %q, want %q", d.Model, tt.wantModel)
			}
			if d.Tier != tt.wantTier {
				t.Errorf("Tier = %q, want %q", d.Tier, tt.wantTier)
			}
			if d.Confidence != tt.wantConf {
				t.Errorf("Confidence = %q, want %q", d.Confidence, tt.wantConf)
			}
			if tt.wantReason != "" && !strings.Contains(d.Reason, tt.wantReason) {
				t.Errorf("Reason = %q, want mention of %q", d.Reason, tt.wantReason)
			}
		})
	}
}

func TestKeywordAnalyticalBeforeCode(t *testing.T) {
	r := New(WithStrategy(StrategyKeyword))

	d, err := r.Route("Compare React and Vue", "")
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if d.Tier != TierQuality {
		t.Errorf("Tier = %q, want quality (analytical beats the react keyword)", d.Tier)
	}
	if !strings.Contains(d.Reason, "analysis") {
		t.Errorf("Reason = %q, want mention of analysis", d.Reason)
	}
	if d.Trigger != "compare" {
		t.Errorf("Trigger = %q, want compare", d.Trigger)
	}
}

func TestKeywordLengthBoundaries(t *testing.T) {
	r := New(WithStrategy(StrategyKeyword))
	tiers := DefaultTiers()

	tests := []struct {
		name      string
		length    int
		wantModel string
	}{
		{"exactly 1000 stays balanced", 1000, tiers.Balanced},
		{"1001 goes quality", 1001, tiers.Quality},
		{"exactly 50 stays balanced", 50, tiers.Balanced},
		{"49 goes fast", 49, tiers.Fast},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := r.Route(strings.Repeat("z", tt.length), "")
			if err != nil {
				t.Fatalf("Route() error = %v", err)
			}
			if d.Model != tt.wantModel {
				t.Errorf("len %d: Model = %q, want %q", tt.length, d.Model, tt.wantModel)
			}
		})
	}
}

func TestStrategyResolution(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{"default goes scored", nil, StrategyScored},
		{"known candidates go scored", []Option{WithCandidates([]string{"claude-sonnet-4-20250514", "gpt-5.2-instant"})}, StrategyScored},
		{"unknown candidate forces keyword", []Option{WithCandidates([]string{"my-custom-llm"})}, StrategyKeyword},
		{"mixed candidates force keyword", []Option{WithCandidates([]string{"claude-sonnet-4-20250514", "my-custom-llm"})}, StrategyKeyword},
		{"explicit keyword sticks", []Option{WithStrategy(StrategyKeyword)}, StrategyKeyword},
		{"explicit scored sticks", []Option{WithStrategy(StrategyScored), WithCandidates([]string{"my-custom-llm"})}, StrategyScored},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.opts...).Strategy(); got != tt.want {
				t.Errorf("Strategy() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScoredRoute(t *testing.T) {
	r := New()
	if r.Strategy() != StrategyScored {
		t.Fatalf("Strategy() = %q, want scored", r.Strategy())
	}

	d, err := r.Route("Write a function to sort an array", "")
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if d.Model != "gpt-5.2-codex" {
		t.Errorf("Model = %q, want gpt-5.2-codex", d.Model)
	}
	if d.TaskType != classify.TaskCodeGen {
		t.Errorf("TaskType = %q, want code_gen", d.TaskType)
	}
	if d.ExpectedSuccess != 88 {
		t.Errorf("ExpectedSuccess = %d, want 88", d.ExpectedSuccess)
	}
	if d.Strategy != StrategyScored {
		t.Errorf("Strategy = %q, want scored", d.Strategy)
	}
	if n := len(d.KeyFactors); n != 3 && n != 4 {
		t.Errorf("len(KeyFactors) = %d, want 3 or 4", n)
	}
	if d.Reason == "" {
		t.Error("empty Reason")
	}
}

func TestScoredRouteMisconfigured(t *testing.T) {
	r := New(WithStrategy(StrategyScored), WithCandidates([]string{"my-custom-llm"}))

	if _, err := r.Route("Hello", ""); !errors.Is(err, score.ErrNoCandidates) {
		t.Errorf("Route() error = %v, want ErrNoCandidates", err)
	}
}

func TestRank(t *testing.T) {
	r := New()

	cls, res, err := r.Rank("Implement a binary search function in Python")
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if cls.TaskType != classify.TaskCodeGen {
		t.Errorf("TaskType = %q, want code_gen", cls.TaskType)
	}
	if len(res.Ranking) != len(r.Candidates()) {
		t.Errorf("len(Ranking) = %d, want %d", len(res.Ranking), len(r.Candidates()))
	}
	if res.Ranking[0].Model != res.Model {
		t.Errorf("Ranking[0] = %q, Model = %q", res.Ranking[0].Model, res.Model)
	}
}

func TestRouteDeterministic(t *testing.T) {
	prompts := []string{
		"Write a function to sort an array",
		"Compare React and Vue",
		"Hello",
		"What is the bug in this code?",
	}

	a := New()
	b := New()
	for _, prompt := range prompts {
		first, err := a.Route(prompt, "")
		if err != nil {
			t.Fatalf("Route(%q) error = %v", prompt, err)
		}
		for i := 0; i < 5; i++ {
			again, err := b.Route(prompt, "")
			if err != nil {
				t.Fatalf("Route(%q) error = %v", prompt, err)
			}
			if !reflect.DeepEqual(again, first) {
				t.Fatalf("Route(%q) not deterministic: %+v vs %+v", prompt, again, first)
			}
		}
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"hello world", 2},
		{strings.Repeat("word ", 100), 112},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.text); got != tt.want {
			t.Errorf("EstimateTokens(%.20q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
