package router

import (
	"github.com/zen-systems/helmsman/pkg/classify"
	"github.com/zen-systems/helmsman/pkg/score"
)

// Decision is the router's answer for one prompt: which model to call
// and why. The scored strategy fills the classification fields; the
// keyword strategy reports the matched trigger and tier instead.
type Decision struct {
	Model           string              `json:"model"`
	Reason          string              `json:"reason"`
	Confidence      classify.Confidence `json:"confidence"`
	Strategy        string              `json:"strategy"`
	Tier            string              `json:"tier,omitempty"`
	Trigger         string              `json:"trigger,omitempty"`
	TaskType        classify.TaskType   `json:"task_type,omitempty"`
	Stakes          classify.Stakes     `json:"stakes,omitempty"`
	ExpectedSuccess int                 `json:"expected_success,omitempty"`
	KeyFactors      []score.KeyFactor   `json:"key_factors,omitempty"`
}

// Model tiers used by the keyword strategy.
const (
	TierFast     = "fast"
	TierBalanced = "balanced"
	TierCode     = "code"
	TierQuality  = "quality"
)

// Tiers maps each tier to a concrete model id.
type Tiers struct {
	Fast     string `json:"fast" yaml:"fast"`
	Balanced string `json:"balanced" yaml:"balanced"`
	Code     string `json:"code" yaml:"code"`
	Quality  string `json:"quality" yaml:"quality"`
}

// DefaultTiers returns the stock tier assignment.
func DefaultTiers() Tiers {
	return Tiers{
		Fast:     "gpt-5.2-instant",
		Balanced: "claude-sonnet-4-20250514",
		Code:     "gpt-5.2-codex",
		Quality:  "claude-opus-4-20250514",
	}
}
