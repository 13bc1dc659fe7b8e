package score

import (
	"math"
	"sort"

	"github.com/zen-systems/helmsman/pkg/capability"
	"github.com/zen-systems/helmsman/pkg/classify"
)

// KeyFactor names one capability dimension behind a pick, with the
// winner's sub-score on that dimension scaled to 0 to 100.
type KeyFactor struct {
	Label  string `json:"label"`
	Score  int    `json:"score"`
	Detail string `json:"detail"`
}

// baseWeights returns the per-dimension weight profile for a task type.
// Profiles encode what matters for the task, not how good any model is.
// Unknown task types fall back to the general profile.
func baseWeights(task classify.TaskType) capability.Vector {
	switch task {
	case classify.TaskCodeGen:
		return capability.Vector{Reasoning: 0.5, CodeGeneration: 1.0, Debugging: 0.4, StructuredOutput: 0.4, InstructionFollowing: 0.5, Speed: 0.2, CostEfficiency: 0.3, RecencyStrength: 0.1}
	case classify.TaskDebug:
		return capability.Vector{Reasoning: 0.7, CodeGeneration: 0.5, Debugging: 1.0, StructuredOutput: 0.3, InstructionFollowing: 0.4, Speed: 0.2, CostEfficiency: 0.2, RecencyStrength: 0.1}
	case classify.TaskRefactor:
		return capability.Vector{Reasoning: 0.6, CodeGeneration: 0.9, Debugging: 0.6, StructuredOutput: 0.4, InstructionFollowing: 0.6, Speed: 0.2, CostEfficiency: 0.3, RecencyStrength: 0.1}
	case classify.TaskExplain:
		return capability.Vector{Reasoning: 0.8, CodeGeneration: 0.2, Debugging: 0.2, StructuredOutput: 0.4, InstructionFollowing: 0.7, Speed: 0.3, CostEfficiency: 0.4, RecencyStrength: 0.2}
	case classify.TaskResearch:
		return capability.Vector{Reasoning: 0.9, CodeGeneration: 0.1, Debugging: 0.1, StructuredOutput: 0.5, InstructionFollowing: 0.6, Speed: 0.2, CostEfficiency: 0.3, RecencyStrength: 0.6}
	case classify.TaskCreative:
		return capability.Vector{Reasoning: 0.6, CodeGeneration: 0.1, Debugging: 0.1, StructuredOutput: 0.3, InstructionFollowing: 0.7, Speed: 0.3, CostEfficiency: 0.4, RecencyStrength: 0.1}
	case classify.TaskMath:
		return capability.Vector{Reasoning: 1.0, CodeGeneration: 0.3, Debugging: 0.3, StructuredOutput: 0.5, InstructionFollowing: 0.5, Speed: 0.2, CostEfficiency: 0.2, RecencyStrength: 0.1}
	case classify.TaskQA:
		return capability.Vector{Reasoning: 0.4, CodeGeneration: 0.1, Debugging: 0.1, StructuredOutput: 0.3, InstructionFollowing: 0.5, Speed: 0.8, CostEfficiency: 0.8, RecencyStrength: 0.4}
	default:
		return capability.Vector{Reasoning: 0.5, CodeGeneration: 0.3, Debugging: 0.2, StructuredOutput: 0.4, InstructionFollowing: 0.6, Speed: 0.5, CostEfficiency: 0.6, RecencyStrength: 0.2}
	}
}

// adjustWeights raises weights for conditions the base profile cannot
// see. Adjustments only ever raise a weight, so adding a signal to a
// prompt cannot make a dimension matter less.
func adjustWeights(w capability.Vector, cls classify.Classification) capability.Vector {
	if cls.NeedsRecency {
		w.RecencyStrength = maxFloat(w.RecencyStrength, 0.9)
	}
	if cls.Signals.StrictFormat {
		w.StructuredOutput = maxFloat(w.StructuredOutput, 0.8)
	}
	if cls.Stakes == classify.StakesHigh {
		w.Reasoning = maxFloat(w.Reasoning, 0.9)
	}
	return w
}

var factorDetails = map[string]string{
	"reasoning":             "deep multi-step reasoning",
	"code_generation":       "writes working code",
	"debugging":             "strong debugging support",
	"structured_output":     "reliable structured output",
	"instruction_following": "follows instructions closely",
	"speed":                 "fast responses",
	"cost_efficiency":       "cheap per request",
	"recency_strength":      "fresh knowledge cutoff",
}

// keyFactors picks the three dimensions that contributed most to the
// winning score, then folds in one condition-specific factor when the
// prompt carried high stakes, a recency ask, or a strict format ask.
// The result always has three or four entries.
func keyFactors(cls classify.Classification, weights, vec capability.Vector) []KeyFactor {
	wd := weights.Dimensions()
	vd := vec.Dimensions()

	type contrib struct {
		capability.Dimension
		weighted float64
	}
	contribs := make([]contrib, len(wd))
	for i := range wd {
		contribs[i] = contrib{Dimension: vd[i], weighted: wd[i].Value * vd[i].Value}
	}
	sort.SliceStable(contribs, func(i, j int) bool { return contribs[i].weighted > contribs[j].weighted })

	factors := make([]KeyFactor, 0, 4)
	for _, c := range contribs[:3] {
		factors = append(factors, KeyFactor{
			Label:  c.Name,
			Score:  int(math.Round(100 * c.Value)),
			Detail: factorDetails[c.Name],
		})
	}

	label, detail := "", ""
	switch {
	case cls.Stakes == classify.StakesHigh:
		label, detail = "reasoning", "high stakes demand careful reasoning"
	case cls.NeedsRecency:
		label, detail = "recency_strength", "prompt asks for current information"
	case cls.Signals.StrictFormat:
		label, detail = "structured_output", "strict output format requested"
	default:
		return factors
	}
	for i := range factors {
		if factors[i].Label == label {
			factors[i].Detail = detail
			return factors
		}
	}
	for _, d := range vd {
		if d.Name == label {
			return append(factors, KeyFactor{Label: label, Score: int(math.Round(100 * d.Value)), Detail: detail})
		}
	}
	return factors
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
