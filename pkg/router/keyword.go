package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zen-systems/helmsman/pkg/classify"
)

// Keyword lists for the fallback strategy. Order inside a list does not
// matter; longer triggers win within a list because they are more
// specific.
var (
	analyticalKeywords = []string{
		"analyze", "compare", "evaluate", "explain", "why", "how",
		"what are the", "difference between", "pros and cons",
		"advantages", "disadvantages", "consider", "assess",
	}
	codeKeywords = []string{
		"code", "function", "class", "algorithm", "debug", "implement",
		"programming", "script", "api", "database", "sql", "javascript",
		"python", "typescript", "react", "component", "error", "bug",
		"refactor", "syntax",
	}
	creativeKeywords = []string{
		"write a story", "create a", "imagine", "creative", "narrative",
		"poem", "song", "fiction", "character", "plot", "brainstorm",
		"ideas for",
	}
)

// KeywordRouter is the fallback strategy: ordered keyword and length
// checks over fixed model tiers. It needs no capability data, so it
// works for any candidate set.
type KeywordRouter struct {
	analytical *keywordSet
	code       *keywordSet
	creative   *keywordSet
	tiers      Tiers
}

// NewKeywordRouter builds the fallback router over the given tiers.
func NewKeywordRouter(tiers Tiers) *KeywordRouter {
	return &KeywordRouter{
		analytical: newKeywordSet(analyticalKeywords),
		code:       newKeywordSet(codeKeywords),
		creative:   newKeywordSet(creativeKeywords),
		tiers:      tiers,
	}
}

// Route walks the branch order: analytical intent, code content,
// creative intent, long prompt, short prompt, balanced fallback.
// Analytical runs before code so "Compare React and Vue" routes on the
// comparison rather than the incidental framework names. Branches are
// terminal; the first hit decides.
func (k *KeywordRouter) Route(prompt string) Decision {
	if trigger, ok := k.analytical.match(prompt); ok {
		return Decision{
			Model:      k.tiers.Quality,
			Reason:     fmt.Sprintf("analysis and reasoning request (%q)", trigger),
			Confidence: classify.ConfidenceHigh,
			Strategy:   StrategyKeyword,
			Tier:       TierQuality,
			Trigger:    trigger,
		}
	}
	if trigger, ok := k.code.match(prompt); ok {
		return Decision{
			Model:      k.tiers.Code,
			Reason:     fmt.Sprintf("code or technical content (%q)", trigger),
			Confidence: classify.ConfidenceHigh,
			Strategy:   StrategyKeyword,
			Tier:       TierCode,
			Trigger:    trigger,
		}
	}
	if trigger, ok := k.creative.match(prompt); ok {
		return Decision{
			Model:      k.tiers.Quality,
			Reason:     fmt.Sprintf("creative writing request (%q)", trigger),
			Confidence: classify.ConfidenceHigh,
			Strategy:   StrategyKeyword,
			Tier:       TierQuality,
			Trigger:    trigger,
		}
	}
	if len(prompt) > 1000 {
		return Decision{
			Model:      k.tiers.Quality,
			Reason:     "enhanced reasoning for detailed prompt",
			Confidence: classify.ConfidenceHigh,
			Strategy:   StrategyKeyword,
			Tier:       TierQuality,
		}
	}
	if len(prompt) < 50 {
		return Decision{
			Model:      k.tiers.Fast,
			Reason:     "short prompt suits a fast model",
			Confidence: classify.ConfidenceMedium,
			Strategy:   StrategyKeyword,
			Tier:       TierFast,
		}
	}
	return Decision{
		Model:      k.tiers.Balanced,
		Reason:     "general-purpose prompt, balanced performance",
		Confidence: classify.ConfidenceLow,
		Strategy:   StrategyKeyword,
		Tier:       TierBalanced,
	}
}

// Rule describes one branch of the keyword strategy.
type Rule struct {
	Branch   string
	Tier     string
	Model    string
	Triggers []string
}

// Rules returns the branch table in evaluation order, for display.
func (k *KeywordRouter) Rules() []Rule {
	return []Rule{
		{Branch: "analytical", Tier: TierQuality, Model: k.tiers.Quality, Triggers: append([]string(nil), k.analytical.triggers...)},
		{Branch: "code", Tier: TierCode, Model: k.tiers.Code, Triggers: append([]string(nil), k.code.triggers...)},
		{Branch: "creative", Tier: TierQuality, Model: k.tiers.Quality, Triggers: append([]string(nil), k.creative.triggers...)},
		{Branch: "long prompt (>1000 chars)", Tier: TierQuality, Model: k.tiers.Quality},
		{Branch: "short prompt (<50 chars)", Tier: TierFast, Model: k.tiers.Fast},
		{Branch: "default", Tier: TierBalanced, Model: k.tiers.Balanced},
	}
}

type keywordSet struct {
	triggers []string
}

// newKeywordSet lowercases the keywords and orders them longest first
// so the most specific phrase reports as the match.
func newKeywordSet(keywords []string) *keywordSet {
	triggers := make([]string, len(keywords))
	for i, kw := range keywords {
		triggers[i] = strings.ToLower(kw)
	}
	sort.SliceStable(triggers, func(i, j int) bool {
		if len(triggers[i]) != len(triggers[j]) {
			return len(triggers[i]) > len(triggers[j])
		}
		return triggers[i] < triggers[j]
	})
	return &keywordSet{triggers: triggers}
}

func (s *keywordSet) match(prompt string) (string, bool) {
	promptLower := strings.ToLower(prompt)
	for _, trigger := range s.triggers {
		if containsTrigger(promptLower, trigger) {
			return trigger, true
		}
	}
	return "", false
}

// containsTrigger reports whether prompt contains trigger with non-word
// characters (or the string edge) on both sides. It scans past partial
// word hits, so "react" still matches after "reactive".
func containsTrigger(prompt, trigger string) bool {
	for start := 0; start+len(trigger) <= len(prompt); {
		idx := strings.Index(prompt[start:], trigger)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(trigger)

		startOK := idx == 0 || !isWordChar(prompt[idx-1])
		endOK := end == len(prompt) || !isWordChar(prompt[end])
		if startOK && endOK {
			return true
		}
		start = idx + 1
	}
	return false
}

func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
}
