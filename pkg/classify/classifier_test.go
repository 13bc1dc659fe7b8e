package classify

import (
	"reflect"
	"strings"
	"testing"
)

func TestClassifyTaskType(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		name   string
		prompt string
		want   TaskType
	}{
		{"code generation", "Write a function to sort an array", TaskCodeGen},
		{"code generation with language", "Implement a binary search function in Python", TaskCodeGen},
		{"refactor beats debug on count", "Refactor this module to simplify the error handling", TaskRefactor},
		{"math", "Calculate 15 + 27 and solve for x in the equation", TaskMath},
		{"creative", "Write a story about a dragon who learns to code", TaskCreative},
		{"research", "Compare the pros and cons of REST and GraphQL", TaskResearch},
		{"plain question", "What are the latest features in React 19?", TaskQA},
		{"no signal at all", "Hello", TaskGeneral},
		{"tie resolves by priority order", "Fix the comparison", TaskDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.prompt)
			if got.TaskType != tt.want {
				t.Errorf("Classify(%q).TaskType = %q, want %q", tt.prompt, got.TaskType, tt.want)
			}
		})
	}
}

func TestClassifyStackTraceBoost(t *testing.T) {
	c := NewClassifier(nil)

	prompt := "My app crashes with this:\n" +
		"TypeError: cannot read property 'foo' of undefined\n" +
		"    at processData (app.js:42:13)\n" +
		"    at main (app.js:10:5)"

	got := c.Classify(prompt)
	if got.TaskType != TaskDebug {
		t.Fatalf("TaskType = %q, want %q", got.TaskType, TaskDebug)
	}
	if !got.Signals.HasStackTrace {
		t.Error("Signals.HasStackTrace = false, want true")
	}
	if got.Confidence != ConfidenceHigh {
		t.Errorf("Confidence = %q, want %q", got.Confidence, ConfidenceHigh)
	}
	if got.Stakes != StakesHigh {
		t.Errorf("Stakes = %q, want %q", got.Stakes, StakesHigh)
	}
}

func TestClassifyQAZeroing(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		name   string
		prompt string
		want   TaskType
	}{
		// explain matches as often as qa, so qa drops out.
		{"explain absorbs question phrasing", "What is the difference between TCP and UDP? Explain how they work.", TaskExplain},
		// a debug hit clears qa even when qa matched more patterns.
		{"debug clears qa", "What is the bug in this code?", TaskDebug},
		// nothing more specific matched, qa stands.
		{"bare question stays qa", "What is the capital of France?", TaskQA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.prompt)
			if got.TaskType != tt.want {
				t.Errorf("Classify(%q).TaskType = %q, want %q", tt.prompt, got.TaskType, tt.want)
			}
		})
	}
}

func TestClassifySignals(t *testing.T) {
	c := NewClassifier(nil)

	longForm := "Summarize the following document. " + strings.Repeat("The quick brown fox jumps over the lazy dog. ", 12)

	tests := []struct {
		name   string
		prompt string
		want   Signals
	}{
		{
			name:   "code fence",
			prompt: "Why does this fail?\n```\nfor i := range xs {\n}\n```",
			want:   Signals{HasCode: true, Concise: true},
		},
		{
			name:   "strict format",
			prompt: "Return only JSON matching this schema",
			want:   Signals{HasCode: true, StrictFormat: true, Concise: true},
		},
		{
			name:   "recency",
			prompt: "What are the latest features in React 19?",
			want:   Signals{HasCode: true, Concise: true, MentionsLatest: true},
		},
		{
			name:   "long form",
			prompt: longForm,
			want:   Signals{LongForm: true},
		},
		{
			name:   "bare greeting",
			prompt: "Hello",
			want:   Signals{Concise: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.prompt)
			if got.Signals != tt.want {
				t.Errorf("Classify(%q).Signals = %+v, want %+v", tt.prompt, got.Signals, tt.want)
			}
		})
	}
}

func TestClassifyStakes(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		name   string
		prompt string
		want   Stakes
	}{
		{"stakes keywords dominate", "Review our production payment system for security vulnerabilities and compliance with GDPR", StakesHigh},
		{"code prompt lands medium", "Write a function to sort an array", StakesMedium},
		{"short question lands low", "What is the capital of France?", StakesLow},
		{"greeting lands low", "Hello", StakesLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.prompt)
			if got.Stakes != tt.want {
				t.Errorf("Classify(%q).Stakes = %q, want %q", tt.prompt, got.Stakes, tt.want)
			}
		})
	}
}

func TestClassifyStakesMonotonic(t *testing.T) {
	c := NewClassifier(nil)
	rank := map[Stakes]int{StakesLow: 0, StakesMedium: 1, StakesHigh: 2}

	prompts := []string{
		"Hello",
		"What is the capital of France?",
		"Write a function to sort an array",
		"Refactor this module to simplify the error handling",
	}

	for _, prompt := range prompts {
		base := c.Classify(prompt).Stakes
		bumped := c.Classify(prompt + " for our production security audit").Stakes
		if rank[bumped] < rank[base] {
			t.Errorf("stakes dropped from %q to %q after adding stakes keywords to %q", base, bumped, prompt)
		}
	}
}

func TestClassifyConfidence(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		name   string
		prompt string
		want   Confidence
	}{
		{"two matches is high", "Implement a binary search function in Python", ConfidenceHigh},
		{"single match is medium", "Write a function to sort an array", ConfidenceMedium},
		{"no match but substantial text", strings.Repeat("lorem ipsum dolor sit amet ", 5), ConfidenceMedium},
		{"no match short text", "Hello", ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.prompt)
			if got.Confidence != tt.want {
				t.Errorf("Classify(%q).Confidence = %q, want %q", tt.prompt, got.Confidence, tt.want)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := NewClassifier(nil)

	prompts := []string{
		"Write a function to sort an array",
		"What is the difference between TCP and UDP? Explain how they work.",
		"Compare the pros and cons of REST and GraphQL",
		"Hello",
	}

	for _, prompt := range prompts {
		first := c.Classify(prompt)
		for i := 0; i < 10; i++ {
			if got := c.Classify(prompt); !reflect.DeepEqual(got, first) {
				t.Fatalf("Classify(%q) not deterministic: %+v vs %+v", prompt, got, first)
			}
		}
	}
}
