package recommend

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/lakbaylabs/lakbay/internal/dataset"
	"github.com/lakbaylabs/lakbay/internal/feature"
	"github.com/lakbaylabs/lakbay/internal/model"
	"github.com/lakbaylabs/lakbay/pkg/models"
)

// FallbackDestination is the safe default returned when scoring fails. One
// synthetic candidate with every score at 1.0: the service trades
// correctness for availability on this one failure path, by policy.
const FallbackDestination = "Dahican Surf Resort"

// NoMatchesMessage accompanies an empty recommendation list.
const NoMatchesMessage = "No matches found. Please try different preferences."

// Prediction is a single best-destination prediction with the classifier's
// raw confidence.
type Prediction struct {
	Destination     string  `json:"destination"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// Pipeline is the explicitly constructed recommendation service object: it
// owns the encoder, scoring engine, ranker, and the rule-based prescriptive
// strategy over one immutable artifact + dataset pair. Construct once per
// loaded model and share read-only across request handlers; reloading after
// retrain swaps in a fresh Pipeline.
type Pipeline struct {
	encoder *feature.Encoder
	engine  *Engine
	ranker  *Ranker
	rules   *model.RuleFilter
}

// NewPipeline wires the pipeline for a loaded artifact and dataset.
func NewPipeline(artifact *model.Artifact, predictor model.Predictor, ds *dataset.Dataset) *Pipeline {
	return &Pipeline{
		encoder: feature.NewEncoder(artifact.Vocabulary, artifact.Budget),
		engine:  NewEngine(predictor, ds, models.DefaultScoringWeights()),
		ranker:  NewRanker(ds),
		rules:   model.NewRuleFilter(ds, artifact.Vocabulary),
	}
}

// Recommend runs the full pipeline for one preference. The only error it
// returns is a validation failure (malformed request); a scoring failure is
// converted to the fixed fallback candidate here, at the single designated
// adapter point, so the caller never sees an internal error.
func (p *Pipeline) Recommend(pref *models.Preference) (*models.RecommendationResult, error) {
	vec, degraded, err := p.encoder.Encode(pref)
	if err != nil {
		return nil, err
	}

	candidates, err := p.score(pref, vec)
	if err != nil {
		log.Error().Err(err).Interface("preference", pref).Msg("Scoring failed, returning fallback recommendation")
		return &models.RecommendationResult{
			Status:          "success",
			Recommendations: []models.Recommendation{p.fallback()},
			DegradedFields:  degraded,
		}, nil
	}

	result := &models.RecommendationResult{
		Status:          "success",
		Recommendations: p.ranker.Rank(candidates),
		DegradedFields:  degraded,
	}
	if len(result.Recommendations) == 0 {
		result.Message = NoMatchesMessage
	}
	return result, nil
}

// score runs the engine, converting a panic from a malformed model state
// into an ordinary error so the fallback policy above covers it too.
func (p *Pipeline) score(pref *models.Preference, vec models.FeatureVector) (candidates []models.ScoredCandidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scoring panic: %v", r)
		}
	}()
	return p.engine.Score(pref, vec)
}

// Predict returns the single highest-probability destination with the
// classifier's raw confidence, the way the bare prediction endpoint reports
// it.
func (p *Pipeline) Predict(pref *models.Preference) (*Prediction, error) {
	vec, _, err := p.encoder.Encode(pref)
	if err != nil {
		return nil, err
	}
	probas, err := p.engine.predictor.PredictProba(vec)
	if err != nil {
		return nil, err
	}
	best := model.TopK(probas, 1)
	if len(best) == 0 {
		return nil, model.ErrModelNotTrained
	}
	return &Prediction{Destination: best[0].Label, ConfidenceScore: best[0].Proba}, nil
}

// Prescriptive returns the rule-based track: destinations matching every
// stated preference, with budget totals for the trip duration.
func (p *Pipeline) Prescriptive(pref *models.Preference) []models.PrescriptiveRecommendation {
	return p.rules.Prescriptive(pref)
}

// fallback builds the fixed safe-default candidate, enriched with reference
// metadata when the dataset has the destination.
func (p *Pipeline) fallback() models.Recommendation {
	return p.ranker.enrich(models.ScoredCandidate{
		Destination:     FallbackDestination,
		ConfidenceScore: 1.0,
		BudgetMatch:     1.0,
		TypeMatch:       1.0,
		PurposeMatch:    1.0,
		SeasonMatch:     1.0,
	})
}
