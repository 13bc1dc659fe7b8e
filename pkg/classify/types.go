package classify

// TaskType is the closed set of prompt intents the classifier can assign.
type TaskType string

const (
	TaskCodeGen  TaskType = "code_gen"
	TaskDebug    TaskType = "debug"
	TaskRefactor TaskType = "refactor"
	TaskExplain  TaskType = "explain"
	TaskResearch TaskType = "research"
	TaskCreative TaskType = "creative"
	TaskMath     TaskType = "math"
	TaskQA       TaskType = "qa"
	TaskGeneral  TaskType = "general"
)

// Stakes grades how costly a wrong or low quality answer would be.
type Stakes string

const (
	StakesLow    Stakes = "low"
	StakesMedium Stakes = "medium"
	StakesHigh   Stakes = "high"
)

// Confidence grades how sure a stage is about its own output.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Signals are binary features extracted from the prompt text alongside the
// task type. Downstream scoring uses them to adjust capability weights.
type Signals struct {
	HasCode        bool `json:"has_code" yaml:"has_code"`
	HasStackTrace  bool `json:"has_stack_trace" yaml:"has_stack_trace"`
	StrictFormat   bool `json:"strict_format" yaml:"strict_format"`
	LongForm       bool `json:"long_form" yaml:"long_form"`
	Concise        bool `json:"concise" yaml:"concise"`
	MentionsLatest bool `json:"mentions_latest" yaml:"mentions_latest"`
}

// Classification is the full result of analyzing one prompt.
type Classification struct {
	TaskType     TaskType   `json:"task_type" yaml:"task_type"`
	Signals      Signals    `json:"signals" yaml:"signals"`
	Stakes       Stakes     `json:"stakes" yaml:"stakes"`
	NeedsRecency bool       `json:"needs_recency" yaml:"needs_recency"`
	Confidence   Confidence `json:"confidence" yaml:"confidence"`
}
