package config

// PricingTable maps provider -> model -> pricing.
type PricingTable map[string]map[string]ModelPricing

// ModelPricing defines per-1k token pricing in USD.
type ModelPricing struct {
	PromptPer1K     float64 `yaml:"prompt_per_1k,omitempty"`
	CompletionPer1K float64 `yaml:"completion_per_1k,omitempty"`
}

// Cost is an estimated charge for a single call.
type Cost struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
	Estimate bool    `json:"estimate"`
}

// Estimate computes the cost of a call from token counts. The second return
// is false when the table has no entry for the provider. A provider's
// "default" entry covers models without their own row.
func (p PricingTable) Estimate(provider, model string, promptTokens, completionTokens int) (Cost, bool) {
	entry, ok := p.pricingFor(provider, model)
	if !ok {
		return Cost{Currency: "USD"}, false
	}

	promptCost := (float64(promptTokens) / 1000.0) * entry.PromptPer1K
	completionCost := (float64(completionTokens) / 1000.0) * entry.CompletionPer1K
	return Cost{
		Currency: "USD",
		Amount:   promptCost + completionCost,
		Estimate: true,
	}, true
}

func (p PricingTable) pricingFor(provider, model string) (ModelPricing, bool) {
	if p == nil {
		return ModelPricing{}, false
	}
	if providerPricing, ok := p[provider]; ok {
		if entry, ok := providerPricing[model]; ok {
			return entry, true
		}
		if entry, ok := providerPricing["default"]; ok {
			return entry, true
		}
	}
	return ModelPricing{}, false
}

// DefaultPricing returns the built-in pricing table.
func DefaultPricing() PricingTable {
	return PricingTable{
		"anthropic": {
			"claude-opus-4-20250514":   {PromptPer1K: 0.015, CompletionPer1K: 0.075},
			"claude-sonnet-4-20250514": {PromptPer1K: 0.003, CompletionPer1K: 0.015},
			"default":                  {PromptPer1K: 0.003, CompletionPer1K: 0.015},
		},
		"openai": {
			"gpt-5.2-instant":  {PromptPer1K: 0.0004, CompletionPer1K: 0.0016},
			"gpt-5.2-thinking": {PromptPer1K: 0.002, CompletionPer1K: 0.008},
			"gpt-5.2-codex":    {PromptPer1K: 0.00175, CompletionPer1K: 0.007},
			"gpt-5.2-pro":      {PromptPer1K: 0.015, CompletionPer1K: 0.06},
			"default":          {PromptPer1K: 0.002, CompletionPer1K: 0.008},
		},
		"google": {
			"gemini-2.0-pro": {PromptPer1K: 0.00125, CompletionPer1K: 0.005},
			"default":        {PromptPer1K: 0.00125, CompletionPer1K: 0.005},
		},
		"deepseek": {
			"deepseek-chat":     {PromptPer1K: 0.00027, CompletionPer1K: 0.0011},
			"deepseek-coder":    {PromptPer1K: 0.00027, CompletionPer1K: 0.0011},
			"deepseek-reasoner": {PromptPer1K: 0.00055, CompletionPer1K: 0.00219},
			"default":           {PromptPer1K: 0.00027, CompletionPer1K: 0.0011},
		},
	}
}
