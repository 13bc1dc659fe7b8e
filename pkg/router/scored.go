package router

import (
	"github.com/zen-systems/helmsman/pkg/classify"
	"github.com/zen-systems/helmsman/pkg/score"
)

// ScoredRouter is the primary strategy: classify the prompt, then rank
// the candidate models by capability fit and pick the top one.
type ScoredRouter struct {
	classifier *classify.Classifier
	engine     *score.Engine
	candidates []string
}

// NewScoredRouter builds the scored strategy over a fixed candidate set.
func NewScoredRouter(classifier *classify.Classifier, engine *score.Engine, candidates []string) *ScoredRouter {
	return &ScoredRouter{classifier: classifier, engine: engine, candidates: candidates}
}

// Route classifies prompt and returns the best scoring candidate.
// It fails only when no candidate can be scored, which means the
// router was configured with models the capability matrix does not
// know.
func (s *ScoredRouter) Route(prompt string) (Decision, error) {
	cls := s.classifier.Classify(prompt)
	res, err := s.engine.Score(cls, s.candidates)
	if err != nil {
		return Decision{}, err
	}
	return Decision{
		Model:           res.Model,
		Reason:          res.ShortWhy,
		Confidence:      res.Confidence,
		Strategy:        StrategyScored,
		TaskType:        cls.TaskType,
		Stakes:          cls.Stakes,
		ExpectedSuccess: res.ExpectedSuccess,
		KeyFactors:      res.KeyFactors,
	}, nil
}
