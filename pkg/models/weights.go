package models

// ScoringWeights are the fixed blend weights for the combined candidate
// score. They are design constants, not learned parameters, and must sum
// to exactly 1.0.
type ScoringWeights struct {
	Confidence   float64 `json:"confidence"`
	BudgetMatch  float64 `json:"budget_match"`
	TypeMatch    float64 `json:"type_match"`
	PurposeMatch float64 `json:"purpose_match"`
	SeasonMatch  float64 `json:"season_match"`
}

// DefaultScoringWeights returns the canonical weights:
//
//	final = 0.35*confidence + 0.25*budget + 0.15*type + 0.15*purpose + 0.10*season
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		Confidence:   0.35,
		BudgetMatch:  0.25,
		TypeMatch:    0.15,
		PurposeMatch: 0.15,
		SeasonMatch:  0.10,
	}
}

// Sum returns the total of all weights. Used by tests to pin the 1.0
// invariant.
func (w ScoringWeights) Sum() float64 {
	return w.Confidence + w.BudgetMatch + w.TypeMatch + w.PurposeMatch + w.SeasonMatch
}

// Combine blends the classifier confidence and the four match terms into the
// final candidate score.
func (w ScoringWeights) Combine(c ScoredCandidate) float64 {
	return w.Confidence*c.ConfidenceScore +
		w.BudgetMatch*c.BudgetMatch +
		w.TypeMatch*c.TypeMatch +
		w.PurposeMatch*c.PurposeMatch +
		w.SeasonMatch*c.SeasonMatch
}
