// Package score ranks candidate models for a classified prompt by
// weighing their capability vectors against a per-task weight profile.
// Scoring is pure arithmetic: the same classification and candidate set
// always produce the same result.
package score

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/zen-systems/helmsman/pkg/capability"
	"github.com/zen-systems/helmsman/pkg/classify"
)

// ErrNoCandidates is returned when the candidate set is empty or no
// candidate appears in the capability matrix.
var ErrNoCandidates = errors.New("no scoreable candidates")

// Ranked is one candidate's position in the scored ranking.
type Ranked struct {
	Model           string `json:"model"`
	ExpectedSuccess int    `json:"expected_success"`

	costEfficiency float64
}

// Result is the engine's verdict: the winning model, its expected
// success on a 0 to 100 scale, the factors behind the pick, a one line
// summary, and how confident the engine is in the ordering.
type Result struct {
	Model           string              `json:"model"`
	ExpectedSuccess int                 `json:"expected_success"`
	KeyFactors      []KeyFactor         `json:"key_factors"`
	ShortWhy        string              `json:"short_why"`
	Confidence      classify.Confidence `json:"confidence"`
	Ranking         []Ranked            `json:"ranking"`
}

// Engine scores candidates against a capability matrix.
type Engine struct {
	matrix *capability.Matrix
}

// NewEngine returns an engine backed by m, or the built-in matrix when
// m is nil.
func NewEngine(m *capability.Matrix) *Engine {
	if m == nil {
		m = capability.Default()
	}
	return &Engine{matrix: m}
}

// Score ranks candidates for cls and returns the winner. Candidates
// missing from the capability matrix are skipped; duplicates count once.
// An empty or fully unknown candidate set is a caller bug and returns
// ErrNoCandidates.
func (e *Engine) Score(cls classify.Classification, candidates []string) (*Result, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	weights := adjustWeights(baseWeights(cls.TaskType), cls)

	seen := make(map[string]bool, len(candidates))
	ranked := make([]Ranked, 0, len(candidates))
	for _, model := range candidates {
		if seen[model] {
			continue
		}
		seen[model] = true
		vec, ok := e.matrix.Lookup(model)
		if !ok {
			continue
		}
		ranked = append(ranked, Ranked{
			Model:           model,
			ExpectedSuccess: int(math.Round(100 * weighted(vec, weights))),
			costEfficiency:  vec.CostEfficiency,
		})
	}
	if len(ranked) == 0 {
		return nil, fmt.Errorf("%w: none of %v in capability matrix", ErrNoCandidates, candidates)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].ExpectedSuccess != ranked[j].ExpectedSuccess {
			return ranked[i].ExpectedSuccess > ranked[j].ExpectedSuccess
		}
		if ranked[i].costEfficiency != ranked[j].costEfficiency {
			return ranked[i].costEfficiency > ranked[j].costEfficiency
		}
		return ranked[i].Model < ranked[j].Model
	})

	top := ranked[0]
	vec, _ := e.matrix.Lookup(top.Model)

	margin := 100
	if len(ranked) > 1 {
		margin = top.ExpectedSuccess - ranked[1].ExpectedSuccess
	}

	factors := keyFactors(cls, weights, vec)
	return &Result{
		Model:           top.Model,
		ExpectedSuccess: top.ExpectedSuccess,
		KeyFactors:      factors,
		ShortWhy:        fmt.Sprintf("%s is the strongest fit for %s work, led by %s", top.Model, cls.TaskType, factors[0].Label),
		Confidence:      scoreConfidence(margin, cls.Confidence),
		Ranking:         ranked,
	}, nil
}

// scoreConfidence folds the ranking margin together with how sure the
// classifier was about the task type.
func scoreConfidence(margin int, cls classify.Confidence) classify.Confidence {
	switch {
	case margin >= 8 && cls == classify.ConfidenceHigh:
		return classify.ConfidenceHigh
	case margin < 3 || cls == classify.ConfidenceLow:
		return classify.ConfidenceLow
	default:
		return classify.ConfidenceMedium
	}
}

// weighted computes the weight-normalized capability score in [0, 1].
func weighted(vec, w capability.Vector) float64 {
	vd := vec.Dimensions()
	wd := w.Dimensions()
	var num, den float64
	for i := range wd {
		num += wd[i].Value * vd[i].Value
		den += wd[i].Value
	}
	if den == 0 {
		return 0
	}
	return num / den
}
