package classify

// stakes grades the prompt by accumulating points from stakes keywords,
// the assigned task type, extracted signals, and prompt length. Adding a
// stakes keyword to a prompt can never lower the grade.
func (c *Classifier) stakes(prompt string, task TaskType, sig Signals) Stakes {
	points := 3 * countMatches(c.lib.stakes, prompt)

	switch task {
	case TaskMath, TaskDebug:
		points += 2
	case TaskRefactor, TaskCodeGen:
		points++
	case TaskQA:
		points--
	}

	if sig.HasCode {
		points += 2
	}
	if sig.HasStackTrace {
		points += 2
	}
	if sig.StrictFormat {
		points++
	}
	if sig.HasCode && sig.HasStackTrace {
		points++
	}
	if sig.HasCode && sig.StrictFormat {
		points++
	}

	switch {
	case len(prompt) > 800:
		points += 2
	case len(prompt) > 300:
		points++
	}
	if len(prompt) < 80 {
		points--
	}

	switch {
	case points >= 5:
		return StakesHigh
	case points >= 2:
		return StakesMedium
	default:
		return StakesLow
	}
}
