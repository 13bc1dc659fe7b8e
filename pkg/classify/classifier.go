package classify

import "strings"

// Classifier assigns a task type, signal set, stakes grade, and confidence
// to a prompt using pure pattern matching. The same prompt always yields
// the same Classification.
type Classifier struct {
	lib *Library
}

// NewClassifier returns a classifier backed by lib, or the default
// library when lib is nil.
func NewClassifier(lib *Library) *Classifier {
	if lib == nil {
		lib = DefaultLibrary()
	}
	return &Classifier{lib: lib}
}

// Classify analyzes prompt and returns the full classification.
func (c *Classifier) Classify(prompt string) Classification {
	stackHits := countMatches(c.lib.stackTrace, prompt)
	langHit := anyMatch(c.lib.languages, prompt)

	counts := make(map[TaskType]int, len(taskPriority))
	for _, task := range taskPriority {
		counts[task] = countMatches(c.lib.tasks[task], prompt)
	}

	// Two or more trace markers mean the prompt carries an actual stack
	// trace, which is debugging regardless of how the ask is phrased.
	if stackHits >= 2 {
		counts[TaskDebug] += 3
	}
	if langHit && counts[TaskCodeGen] > 0 {
		counts[TaskCodeGen]++
	}

	// Question phrasing shows up in nearly every prompt. qa only stands
	// when no more specific intent matched alongside it.
	if counts[TaskQA] > 0 && counts[TaskExplain] >= counts[TaskQA] {
		counts[TaskQA] = 0
	}
	if counts[TaskQA] > 0 && (counts[TaskCodeGen] > 0 || counts[TaskDebug] > 0 || counts[TaskMath] > 0) {
		counts[TaskQA] = 0
	}

	task := TaskGeneral
	best := 0
	for _, candidate := range taskPriority {
		if counts[candidate] > best {
			task = candidate
			best = counts[candidate]
		}
	}

	sig := Signals{
		HasCode:        langHit || strings.Contains(prompt, "```") || anyMatch(c.lib.codeWords, prompt),
		HasStackTrace:  stackHits >= 2,
		StrictFormat:   anyMatch(c.lib.structured, prompt),
		LongForm:       len(prompt) > 500,
		Concise:        len(prompt) < 100,
		MentionsLatest: anyMatch(c.lib.recency, prompt),
	}

	return Classification{
		TaskType:     task,
		Signals:      sig,
		Stakes:       c.stakes(prompt, task, sig),
		NeedsRecency: sig.MentionsLatest,
		Confidence:   classifyConfidence(best, len(prompt)),
	}
}

func classifyConfidence(winnerCount, promptLen int) Confidence {
	switch {
	case winnerCount >= 2:
		return ConfidenceHigh
	case winnerCount == 1:
		return ConfidenceMedium
	case promptLen > 100:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
