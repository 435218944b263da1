// Package recommend implements the recommendation scoring pipeline: encoding
// the preference, blending classifier confidence with rule-based match
// scores, ranking, and the degraded-mode fallback.
package recommend

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/lakbaylabs/lakbay/internal/dataset"
	"github.com/lakbaylabs/lakbay/internal/feature"
	"github.com/lakbaylabs/lakbay/internal/model"
	"github.com/lakbaylabs/lakbay/pkg/models"
)

// TopCandidates is how many classifier labels are considered for ranking.
const TopCandidates = 5

// Engine combines per-class probabilities from a trained classifier with
// rule-based match scores into a single weighted confidence per candidate.
// It is pure computation over immutable artifacts; any error it returns is a
// ScoringFailure for the pipeline's fallback adapter, never a user-facing
// error.
type Engine struct {
	predictor model.Predictor
	ds        *dataset.Dataset
	weights   models.ScoringWeights
}

// NewEngine creates a scoring engine over a predictor and the reference
// dataset.
func NewEngine(predictor model.Predictor, ds *dataset.Dataset, weights models.ScoringWeights) *Engine {
	return &Engine{predictor: predictor, ds: ds, weights: weights}
}

// Score produces scored candidates for a preference, ordered by combined
// score descending. The candidate order can differ from the raw classifier
// probability order: the rule-based terms reorder the classifier's top five.
func (e *Engine) Score(pref *models.Preference, vec models.FeatureVector) ([]models.ScoredCandidate, error) {
	probas, err := e.predictor.PredictProba(vec)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	top := model.TopK(probas, TopCandidates)

	userBudget, err := pref.BudgetValue()
	if err != nil {
		return nil, fmt.Errorf("parse budget: %w", err)
	}

	candidates := make([]models.ScoredCandidate, 0, len(top))
	for _, ls := range top {
		row, ok := e.ds.LookupExact(ls.Label)
		if !ok {
			// Dataset/model label drift: skip this candidate, keep the rest.
			log.Warn().Str("destination", ls.Label).Msg("Predicted label has no reference row, skipping")
			continue
		}
		cand, err := e.scoreCandidate(pref, userBudget, ls.Proba, row)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, cand)
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		if candidates[a].ConfidenceScore != candidates[b].ConfidenceScore {
			return candidates[a].ConfidenceScore > candidates[b].ConfidenceScore
		}
		return candidates[a].Destination < candidates[b].Destination
	})
	return candidates, nil
}

// scoreCandidate computes the four match terms for one candidate and blends
// them with the classifier confidence. Non-matching categorical terms earn
// 0.5, not 0: a non-match reflects uncertainty, not exclusion.
func (e *Engine) scoreCandidate(pref *models.Preference, userBudget, proba float64, row *models.Destination) (models.ScoredCandidate, error) {
	candidateBudget, err := row.BudgetValue()
	if err != nil {
		return models.ScoredCandidate{}, fmt.Errorf("reference budget for %q: %w", row.Name, err)
	}

	cand := models.ScoredCandidate{
		Destination:     row.Name,
		ConfidenceScore: proba,
		BudgetMatch:     feature.BudgetMatch(userBudget, candidateBudget),
		TypeMatch:       matchTerm(pref.DestinationType, row.Type),
		PurposeMatch:    matchTerm(pref.TravelPurpose, row.Purpose),
		SeasonMatch:     matchTerm(pref.TravelSeason, row.Season),
	}
	cand.ConfidenceScore = e.weights.Combine(cand)
	return cand, nil
}

// matchTerm compares the user's stated value with the reference value,
// case-sensitive as stored.
func matchTerm(stated, reference string) float64 {
	if stated == reference {
		return 1.0
	}
	return 0.5
}
