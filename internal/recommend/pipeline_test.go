package recommend

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/lakbaylabs/lakbay/internal/dataset"
	"github.com/lakbaylabs/lakbay/internal/feature"
	"github.com/lakbaylabs/lakbay/internal/model"
	"github.com/lakbaylabs/lakbay/pkg/models"
)

const referenceCSV = `Destination,Destination_Type,Travel_Purpose,Travel_season,Municipality,Budget,Packing Tips
Dahican Surf Resort,Beach,Relaxation,Summer (March-May),Mati City,"4,800",Bring sunscreen and a rash guard.
Amihan sa Dahican,Beach,Adventure,Summer (March-May),Mati City,"3,500",Pack light beachwear.
Mount Hamiguitan Range,Mountain,Adventure,Summer (March-May),San Isidro,"6,500",Pack trekking shoes.
Subangan Museum,Cultural,Cultural Discovery,Holiday Season (November-February),Mati City,"1,200",Wear walking shoes.
Aliwagwag Falls Eco Park,Nature,Nature Appreciation,Rainy (June-October),Cateel,"3,200",Pack water shoes.
Curtain Falls,Nature,Nature Appreciation,Rainy (June-October),Boston,"2,800",Pack insect repellent.
`

// failingPredictor simulates a broken classifier backend.
type failingPredictor struct{}

func (failingPredictor) Name() string     { return "failing" }
func (failingPredictor) Labels() []string { return nil }
func (failingPredictor) PredictProba(models.FeatureVector) ([]model.LabelScore, error) {
	return nil, errors.New("backend exploded")
}

// panickingPredictor simulates a malformed model state that blows up mid
// prediction rather than returning an error.
type panickingPredictor struct{}

func (panickingPredictor) Name() string     { return "panicking" }
func (panickingPredictor) Labels() []string { return nil }
func (panickingPredictor) PredictProba(models.FeatureVector) ([]model.LabelScore, error) {
	var empty []float64
	_ = empty[0]
	return nil, nil
}

// emptyPredictor returns labels that have no reference rows, so every
// candidate is skipped and the list comes back empty.
type emptyPredictor struct{}

func (emptyPredictor) Name() string     { return "empty" }
func (emptyPredictor) Labels() []string { return []string{"Ghost Island"} }
func (emptyPredictor) PredictProba(models.FeatureVector) ([]model.LabelScore, error) {
	return []model.LabelScore{{Label: "Ghost Island", Proba: 1.0}}, nil
}

// PipelineSuite exercises the full recommend flow over a trained model.
type PipelineSuite struct {
	suite.Suite
	ds       *dataset.Dataset
	artifact *model.Artifact
	pipeline *Pipeline
}

func (s *PipelineSuite) SetupTest() {
	ds, err := dataset.Read(strings.NewReader(referenceCSV))
	s.Require().NoError(err)
	s.ds = ds

	artifact, err := model.Train(ds, model.AlgorithmNaiveBayes)
	s.Require().NoError(err)
	s.artifact = artifact

	predictor, err := artifact.Predictor()
	s.Require().NoError(err)
	s.pipeline = NewPipeline(artifact, predictor, ds)
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineSuite))
}

func (s *PipelineSuite) beachPreference() *models.Preference {
	return &models.Preference{
		Budget:          "5,000",
		DestinationType: "Beach",
		TravelPurpose:   "Relaxation",
		TravelSeason:    "Summer (March-May)",
		Municipality:    "Mati City",
	}
}

func (s *PipelineSuite) TestRecommend_BeachScenario() {
	result, err := s.pipeline.Recommend(s.beachPreference())

	s.Require().NoError(err)
	s.Equal("success", result.Status)
	s.Empty(result.Message)
	s.Require().NotEmpty(result.Recommendations)

	top := result.Recommendations[0]
	s.Equal("Dahican Surf Resort", top.Destination)
	s.InDelta(0.96, top.BudgetMatch, 1e-9, "1 - |5000-4800|/5000")
	s.Equal(1.0, top.TypeMatch)
	s.Equal(1.0, top.PurposeMatch)
	s.Equal(1.0, top.SeasonMatch)
	s.Equal("Bring sunscreen and a rash guard.", top.PackingTips)
	s.Equal("Mati City", top.Municipality)

	for _, rec := range result.Recommendations {
		s.Greater(rec.ConfidenceScore, 0.0)
	}
}

func (s *PipelineSuite) TestRecommend_NonMatchingTermsScoreHalf() {
	result, err := s.pipeline.Recommend(s.beachPreference())
	s.Require().NoError(err)

	for _, rec := range result.Recommendations {
		if rec.Destination == "Amihan sa Dahican" {
			s.Equal(1.0, rec.TypeMatch)
			s.Equal(0.5, rec.PurposeMatch, "a non-match earns 0.5, not 0")
			return
		}
	}
	s.Fail("Amihan sa Dahican not in recommendations")
}

func (s *PipelineSuite) TestRecommend_CapsAtFive() {
	result, err := s.pipeline.Recommend(s.beachPreference())
	s.Require().NoError(err)
	s.LessOrEqual(len(result.Recommendations), TopCandidates)

	seen := make(map[string]struct{})
	for _, rec := range result.Recommendations {
		key := strings.ToLower(rec.Destination)
		_, dup := seen[key]
		s.False(dup, "destination %q appears twice", rec.Destination)
		seen[key] = struct{}{}
	}
}

func (s *PipelineSuite) TestRecommend_Idempotent() {
	first, err := s.pipeline.Recommend(s.beachPreference())
	s.Require().NoError(err)
	second, err := s.pipeline.Recommend(s.beachPreference())
	s.Require().NoError(err)
	s.Equal(first, second, "identical requests produce identical rankings")
}

func (s *PipelineSuite) TestRecommend_ValidationError() {
	pref := s.beachPreference()
	pref.Budget = ""

	_, err := s.pipeline.Recommend(pref)
	s.ErrorIs(err, feature.ErrValidation)
}

func (s *PipelineSuite) TestRecommend_ScoringFailureFallsBack() {
	broken := NewPipeline(s.artifact, failingPredictor{}, s.ds)

	result, err := broken.Recommend(s.beachPreference())

	s.Require().NoError(err, "a scoring failure must not surface as an error")
	s.Equal("success", result.Status)
	s.Require().Len(result.Recommendations, 1)

	rec := result.Recommendations[0]
	s.Equal(FallbackDestination, rec.Destination)
	s.Equal(1.0, rec.ConfidenceScore)
	s.Equal(1.0, rec.BudgetMatch)
	s.Equal(1.0, rec.TypeMatch)
	s.Equal(1.0, rec.PurposeMatch)
	s.Equal(1.0, rec.SeasonMatch)
	s.Equal("Bring sunscreen and a rash guard.", rec.PackingTips,
		"the fallback is still enriched from the reference dataset")
}

func (s *PipelineSuite) TestRecommend_ScoringPanicFallsBack() {
	broken := NewPipeline(s.artifact, panickingPredictor{}, s.ds)

	var result *models.RecommendationResult
	var err error
	s.Require().NotPanics(func() {
		result, err = broken.Recommend(s.beachPreference())
	})

	s.Require().NoError(err, "a panic inside scoring must not escape the pipeline")
	s.Require().Len(result.Recommendations, 1)
	s.Equal(FallbackDestination, result.Recommendations[0].Destination)
	s.Equal(1.0, result.Recommendations[0].ConfidenceScore)
}

func (s *PipelineSuite) TestRecommend_EmptyListCarriesMessage() {
	drifted := NewPipeline(s.artifact, emptyPredictor{}, s.ds)

	result, err := drifted.Recommend(s.beachPreference())

	s.Require().NoError(err)
	s.Equal("success", result.Status)
	s.Empty(result.Recommendations)
	s.Equal(NoMatchesMessage, result.Message)
}

func (s *PipelineSuite) TestPredict_TopOne() {
	prediction, err := s.pipeline.Predict(s.beachPreference())

	s.Require().NoError(err)
	s.Equal("Dahican Surf Resort", prediction.Destination)
	s.Greater(prediction.ConfidenceScore, 0.0)
	s.LessOrEqual(prediction.ConfidenceScore, 1.0)
}

func (s *PipelineSuite) TestPrescriptive() {
	recs := s.pipeline.Prescriptive(&models.Preference{
		Budget:          "5,000",
		DestinationType: "Beach",
		TravelPurpose:   "Relaxation",
		TravelSeason:    "Summer",
		Municipality:    "Mati",
		TripDuration:    2,
	})
	s.Require().Len(recs, 1)
	s.Equal("Dahican Surf Resort", recs[0].Destination)
	s.Equal("9600", recs[0].TotalBudget)
}

func TestRanker_Dedupe(t *testing.T) {
	ds, err := dataset.Read(strings.NewReader(referenceCSV))
	if err != nil {
		t.Fatal(err)
	}
	ranker := NewRanker(ds)

	recs := ranker.Rank([]models.ScoredCandidate{
		{Destination: "Dahican Surf Resort", ConfidenceScore: 0.9},
		{Destination: "dahican surf resort", ConfidenceScore: 0.8},
		{Destination: "Curtain Falls", ConfidenceScore: 0.7},
	})

	if len(recs) != 2 {
		t.Fatalf("expected 2 distinct destinations, got %d", len(recs))
	}
	if recs[0].Destination != "Dahican Surf Resort" {
		t.Fatalf("order not preserved: %s", recs[0].Destination)
	}
}

func TestRanker_MissingTipsSentinel(t *testing.T) {
	csv := strings.Replace(referenceCSV, "Pack insect repellent.", "", 1)
	ds, err := dataset.Read(strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	ranker := NewRanker(ds)

	recs := ranker.Rank([]models.ScoredCandidate{{Destination: "Curtain Falls"}})
	if recs[0].PackingTips != NoPackingTips {
		t.Fatalf("expected sentinel, got %q", recs[0].PackingTips)
	}
}
