// Package router picks a model for each prompt. Two strategies sit
// behind one Route call: a scored path that classifies the prompt and
// ranks candidates by capability fit, and a keyword fallback for
// candidate sets without capability data. An explicit model override
// wins over both.
package router

import (
	"fmt"
	"log"

	"github.com/zen-systems/helmsman/pkg/capability"
	"github.com/zen-systems/helmsman/pkg/classify"
	"github.com/zen-systems/helmsman/pkg/score"
)

// Strategy names accepted by configuration. Auto resolves to scored
// when every candidate has capability data, keyword otherwise.
const (
	StrategyAuto     = "auto"
	StrategyScored   = "scored"
	StrategyKeyword  = "keyword"
	StrategyOverride = "override"
)

// Router routes prompts to models using the configured strategy.
type Router struct {
	classifier *classify.Classifier
	matrix     *capability.Matrix
	engine     *score.Engine
	scored     *ScoredRouter
	keyword    *KeywordRouter
	candidates []string
	strategy   string
	tiers      Tiers
	debug      bool
}

// Option configures a Router.
type Option func(*Router)

// WithMatrix sets the capability matrix.
func WithMatrix(m *capability.Matrix) Option {
	return func(r *Router) {
		r.matrix = m
	}
}

// WithLibrary sets the pattern library backing the classifier.
func WithLibrary(lib *classify.Library) Option {
	return func(r *Router) {
		r.classifier = classify.NewClassifier(lib)
	}
}

// WithCandidates restricts routing to the given model ids.
func WithCandidates(models []string) Option {
	return func(r *Router) {
		r.candidates = models
	}
}

// WithStrategy forces a strategy instead of auto resolution.
func WithStrategy(strategy string) Option {
	return func(r *Router) {
		r.strategy = strategy
	}
}

// WithTiers sets the tier models used by the keyword strategy.
func WithTiers(tiers Tiers) Option {
	return func(r *Router) {
		r.tiers = tiers
	}
}

// WithDebug enables debug logging.
func WithDebug(debug bool) Option {
	return func(r *Router) {
		r.debug = debug
	}
}

// New creates a router. With no options it routes across the built-in
// capability matrix using the scored strategy.
func New(opts ...Option) *Router {
	r := &Router{
		strategy: StrategyAuto,
		tiers:    DefaultTiers(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.matrix == nil {
		r.matrix = capability.Default()
	}
	if r.classifier == nil {
		r.classifier = classify.NewClassifier(nil)
	}
	if len(r.candidates) == 0 {
		r.candidates = r.matrix.Names()
	}
	r.engine = score.NewEngine(r.matrix)
	r.scored = NewScoredRouter(r.classifier, r.engine, r.candidates)
	r.keyword = NewKeywordRouter(r.tiers)

	if r.strategy != StrategyScored && r.strategy != StrategyKeyword {
		r.strategy = StrategyKeyword
		if r.covered() {
			r.strategy = StrategyScored
		}
	}
	return r
}

// covered reports whether every candidate has capability data.
func (r *Router) covered() bool {
	for _, model := range r.candidates {
		if _, ok := r.matrix.Lookup(model); !ok {
			return false
		}
	}
	return len(r.candidates) > 0
}

// Strategy returns the resolved strategy name.
func (r *Router) Strategy() string {
	return r.strategy
}

// Candidates returns a copy of the candidate model ids.
func (r *Router) Candidates() []string {
	out := make([]string, len(r.candidates))
	copy(out, r.candidates)
	return out
}

// Classify exposes the classifier for callers that want the prompt
// analysis without a routing decision.
func (r *Router) Classify(prompt string) classify.Classification {
	return r.classifier.Classify(prompt)
}

// Rank classifies prompt and scores every candidate, returning the
// full ranking regardless of the configured strategy.
func (r *Router) Rank(prompt string) (classify.Classification, *score.Result, error) {
	cls := r.classifier.Classify(prompt)
	res, err := r.engine.Score(cls, r.candidates)
	if err != nil {
		return cls, nil, fmt.Errorf("rank candidates: %w", err)
	}
	return cls, res, nil
}

// Route picks a model for prompt. A non-empty requestedModel short
// circuits both strategies and is returned verbatim.
func (r *Router) Route(prompt, requestedModel string) (Decision, error) {
	if requestedModel != "" {
		return Decision{
			Model:      requestedModel,
			Reason:     "user requested specific model",
			Confidence: classify.ConfidenceHigh,
			Strategy:   StrategyOverride,
		}, nil
	}

	var d Decision
	if r.strategy == StrategyScored {
		var err error
		d, err = r.scored.Route(prompt)
		if err != nil {
			return Decision{}, fmt.Errorf("scored route: %w", err)
		}
	} else {
		d = r.keyword.Route(prompt)
	}

	if r.debug {
		log.Printf("[router] strategy=%s model=%s confidence=%s reason=%q",
			d.Strategy, d.Model, d.Confidence, d.Reason)
	}
	return d, nil
}
