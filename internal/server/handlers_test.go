package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/suite"

	"github.com/lakbaylabs/lakbay/internal/config"
)

const testCSV = `Destination,Destination_Type,Travel_Purpose,Travel_season,Municipality,Budget,Packing Tips
Dahican Surf Resort,Beach,Relaxation,Summer (March-May),Mati City,"4,800",Bring sunscreen and a rash guard.
Amihan sa Dahican,Beach,Adventure,Summer (March-May),Mati City,"3,500",Pack light beachwear.
Mount Hamiguitan Range,Mountain,Adventure,Summer (March-May),San Isidro,"6,500",Pack trekking shoes.
Subangan Museum,Cultural,Cultural Discovery,Holiday Season (November-February),Mati City,"1,200",Wear walking shoes.
Aliwagwag Falls Eco Park,Nature,Nature Appreciation,Rainy (June-October),Cateel,"3,200",Pack water shoes.
Curtain Falls,Nature,Nature Appreciation,Rainy (June-October),Boston,"2,800",Pack insect repellent.
`

// ServiceSuite runs the handlers over a real service wired against temp
// files and an in-memory history store.
type ServiceSuite struct {
	suite.Suite
	svc *Service
}

func (s *ServiceSuite) SetupTest() {
	dir := s.T().TempDir()
	datasetPath := filepath.Join(dir, "destinations.csv")
	s.Require().NoError(os.WriteFile(datasetPath, []byte(testCSV), 0o600))

	cfg := config.Default()
	cfg.Dataset.Path = datasetPath
	cfg.Database.Path = ":memory:"
	cfg.Database.MaxConns = 1
	cfg.Model.Path = filepath.Join(dir, "model.json")
	cfg.Model.AutoReload = false
	cfg.Server.Timeout = 5 * time.Second

	svc, err := NewService("test", cfg)
	s.Require().NoError(err)
	s.svc = svc
}

func (s *ServiceSuite) TearDownTest() {
	s.svc.persistWG.Wait()
	s.Require().NoError(s.svc.store.Close())
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.svc.Router().ServeHTTP(rec, req)
	return rec
}

func (s *ServiceSuite) decode(rec *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (s *ServiceSuite) train() {
	rec := s.do(http.MethodPost, "/api/model/train", "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
}

const beachRequest = `{
	"budget": "5,000",
	"destination_type": "Beach",
	"travel_purpose": "Relaxation",
	"travel_season": "Summer (March-May)",
	"municipality": "Mati City",
	"trip_duration": 3
}`

func (s *ServiceSuite) TestPredict_WithoutModel() {
	rec := s.do(http.MethodPost, "/api/predict", beachRequest)

	s.Equal(http.StatusServiceUnavailable, rec.Code)
	body := s.decode(rec)
	s.Equal("error", body["status"])
	s.Contains(body["message"], "not trained")
}

func (s *ServiceSuite) TestHandlers_ModelClearedAfterGuard() {
	s.train()
	// An auto-reload can clear the pipeline after requireModel has passed;
	// the handlers must answer 503, not crash.
	s.svc.pipeline.Store(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/recommendations", strings.NewReader(beachRequest))
	rec := httptest.NewRecorder()
	s.svc.handleRecommendations(rec, req)
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Contains(s.decode(rec)["message"], "not trained")

	req = httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(beachRequest))
	rec = httptest.NewRecorder()
	s.svc.handlePredict(rec, req)
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (s *ServiceSuite) TestBrowsing_WithoutModel() {
	rec := s.do(http.MethodGet, "/api/destinations", "")
	s.Equal(http.StatusOK, rec.Code)
	body := s.decode(rec)
	s.Equal("success", body["status"])
	s.EqualValues(6, body["count"])

	rec = s.do(http.MethodGet, "/api/health", "")
	s.Equal(http.StatusOK, rec.Code)
	body = s.decode(rec)
	s.Equal("ok", body["status"])
	s.Equal(false, body["model_loaded"])
}

func (s *ServiceSuite) TestTrainThenRecommend() {
	s.train()

	rec := s.do(http.MethodPost, "/api/recommendations", beachRequest)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	body := s.decode(rec)
	s.Equal("success", body["status"])
	s.NotContains(body, "message")

	recs := body["recommendations"].([]any)
	s.Require().NotEmpty(recs)
	top := recs[0].(map[string]any)
	s.Equal("Dahican Surf Resort", top["destination"])
	s.InDelta(0.96, top["budget_match"].(float64), 1e-9)
	s.Equal("Bring sunscreen and a rash guard.", top["packing_tips"])

	prescriptive := body["prescriptive"].([]any)
	s.Require().NotEmpty(prescriptive)
	first := prescriptive[0].(map[string]any)
	s.Equal("Dahican Surf Resort", first["destination"])
	s.Equal("14400", first["total_budget"])
}

func (s *ServiceSuite) TestRecommend_PersistsHistory() {
	s.train()

	rec := s.do(http.MethodPost, "/api/recommendations", beachRequest)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.svc.persistWG.Wait()

	rec = s.do(http.MethodGet, "/api/preferences", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	body := s.decode(rec)
	s.EqualValues(1, body["total"])

	rec = s.do(http.MethodGet, "/api/dashboard/top-destinations", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	body = s.decode(rec)
	top := body["top_destinations"].([]any)
	s.Require().NotEmpty(top)
	s.Equal("Dahican Surf Resort", top[0].(map[string]any)["destination"])
}

func (s *ServiceSuite) TestRecommend_NumericBudget() {
	s.train()

	rec := s.do(http.MethodPost, "/api/recommendations",
		`{"budget": 5000, "destination_type": "Beach", "travel_purpose": "Relaxation", "travel_season": "Summer (March-May)", "municipality": "Mati City"}`)
	s.Equal(http.StatusOK, rec.Code, rec.Body.String())
}

func (s *ServiceSuite) TestRecommend_MissingField() {
	s.train()

	rec := s.do(http.MethodPost, "/api/recommendations",
		`{"budget": "5000", "destination_type": "Beach"}`)
	s.Equal(http.StatusBadRequest, rec.Code)
	body := s.decode(rec)
	s.Equal("error", body["status"])
	s.Contains(body["message"], "travel_purpose")
}

func (s *ServiceSuite) TestRecommend_BadBudget() {
	s.train()

	rec := s.do(http.MethodPost, "/api/recommendations",
		`{"budget": "plenty", "destination_type": "Beach", "travel_purpose": "Relaxation", "travel_season": "Summer (March-May)", "municipality": "Mati City"}`)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServiceSuite) TestPredict_AfterTraining() {
	s.train()

	rec := s.do(http.MethodPost, "/api/predict", beachRequest)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	body := s.decode(rec)
	prediction := body["prediction"].(map[string]any)
	s.Equal("Dahican Surf Resort", prediction["destination"])
	s.Greater(prediction["confidence_score"].(float64), 0.0)
}

func (s *ServiceSuite) TestRatings() {
	rec := s.do(http.MethodPost, "/api/ratings",
		`{"system_satisfaction_score": 5, "analytics_satisfaction_score": 4}`)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	s.NotEmpty(s.decode(rec)["id"])

	rec = s.do(http.MethodPost, "/api/ratings",
		`{"system_satisfaction_score": 9, "analytics_satisfaction_score": 4}`)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/ratings", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	body := s.decode(rec)
	averages := body["averages"].(map[string]any)
	s.InDelta(5.0, averages["system_satisfaction"].(float64), 1e-9)
}

func (s *ServiceSuite) TestDistributions() {
	rec := s.do(http.MethodGet, "/api/dashboard/distributions", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	body := s.decode(rec)
	s.Contains(body["distributions"].(map[string]any), "destination_type")

	rec = s.do(http.MethodGet, "/api/dashboard/distributions?field=nonsense", "")
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServiceSuite) TestTrain_WritesArtifact() {
	s.train()
	_, err := os.Stat(s.svc.cfg.Model.Path)
	s.NoError(err, "training must write the model artifact")

	rec := s.do(http.MethodGet, "/api/health", "")
	body := s.decode(rec)
	s.Equal(true, body["model_loaded"])
}

func (s *ServiceSuite) TestTrain_UnknownAlgorithm() {
	rec := s.do(http.MethodPost, "/api/model/train", `{"algorithm": "xgboost"}`)
	s.Equal(http.StatusBadRequest, rec.Code)
}
