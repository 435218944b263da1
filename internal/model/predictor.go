// Package model provides the trained classifier: fitting from the reference
// dataset, artifact persistence, and interchangeable prediction backends.
package model

import (
	"errors"

	"github.com/lakbaylabs/lakbay/pkg/models"
)

// ErrModelNotTrained indicates no trained classifier artifact is available.
// The service stays up; prediction endpoints report a distinct not-ready
// status until a model is trained or loaded.
var ErrModelNotTrained = errors.New("model not trained")

// Algorithm names for the trained backends.
const (
	AlgorithmNaiveBayes = "naivebayes"
	AlgorithmKNN        = "knn"
	AlgorithmRuleFilter = "rulefilter"
)

// LabelScore is one destination label with its predicted probability.
type LabelScore struct {
	Label string  `json:"label"`
	Proba float64 `json:"proba"`
}

// Predictor is the capability the scoring engine consumes: a multi-class
// probability function over the full trained label space. Implementations
// must be deterministic for a fixed model state and safe for concurrent use
// after construction.
type Predictor interface {
	// Name identifies the backend algorithm.
	Name() string

	// Labels returns the trained label space in fitted order. PredictProba
	// results follow this order.
	Labels() []string

	// PredictProba returns one probability per trained label, summing to 1.
	PredictProba(vec models.FeatureVector) ([]LabelScore, error)
}

// TopK returns the k highest-probability labels. Equal probabilities resolve
// by fitted label order, which keeps the selection deterministic for a fixed
// model state.
func TopK(scores []LabelScore, k int) []LabelScore {
	// Selection over a small label space; stable by construction since ties
	// keep the lower fitted index.
	top := make([]LabelScore, 0, k)
	used := make([]bool, len(scores))
	for len(top) < k && len(top) < len(scores) {
		best := -1
		for i := range scores {
			if used[i] {
				continue
			}
			if best == -1 || scores[i].Proba > scores[best].Proba {
				best = i
			}
		}
		used[best] = true
		top = append(top, scores[best])
	}
	return top
}
