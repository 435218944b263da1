package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/lakbaylabs/lakbay/internal/feature"
	"github.com/lakbaylabs/lakbay/internal/model"
	"github.com/lakbaylabs/lakbay/internal/recommend"
	"github.com/lakbaylabs/lakbay/pkg/models"
)

// flexAmount accepts a JSON number or a string ("5000", "5,000") for the
// budget field. Clients send both.
type flexAmount string

func (a *flexAmount) UnmarshalJSON(data []byte) error {
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 || string(data) == "null" {
		*a = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = flexAmount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = flexAmount(n.String())
	return nil
}

// recommendationRequest is the request body shared by the recommendation and
// prediction endpoints.
type recommendationRequest struct {
	Budget          flexAmount `json:"budget" validate:"required"`
	DestinationType string     `json:"destination_type" validate:"required"`
	TravelPurpose   string     `json:"travel_purpose" validate:"required"`
	TravelSeason    string     `json:"travel_season" validate:"required"`
	Municipality    string     `json:"municipality" validate:"required"`
	GroupType       string     `json:"group_type"`
	NumberOfPeople  int        `json:"number_of_people" validate:"omitempty,gte=1"`
	TripDuration    int        `json:"trip_duration" validate:"omitempty,gte=1"`
}

func (r *recommendationRequest) toPreference() *models.Preference {
	return &models.Preference{
		Budget:          string(r.Budget),
		DestinationType: strings.TrimSpace(r.DestinationType),
		TravelPurpose:   strings.TrimSpace(r.TravelPurpose),
		TravelSeason:    strings.TrimSpace(r.TravelSeason),
		Municipality:    strings.TrimSpace(r.Municipality),
		GroupType:       models.GroupType(r.GroupType),
		NumberOfPeople:  r.NumberOfPeople,
		TripDuration:    r.TripDuration,
	}
}

// newValidator builds the request validator, reporting fields by their JSON
// names so error messages match the wire format.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Service) decodeRequest(w http.ResponseWriter, r *http.Request, req *recommendationRequest) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// validationMessage turns validator errors into the missing-field message the
// API reports.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return "Missing or invalid field(s): " + strings.Join(fields, ", ")
}

// handleRecommendations runs both recommendation tracks for one preference:
// the classifier-backed predictive list and the rule-filtered prescriptive
// list. The request is persisted for the dashboard without delaying the
// response.
func (s *Service) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendationRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	pref := req.toPreference()

	// Re-checked after requireModel: an auto-reload can clear the pipeline
	// between the middleware and here.
	pipeline := s.pipeline.Load()
	if pipeline == nil {
		writeError(w, http.StatusServiceUnavailable, modelNotTrainedMessage)
		return
	}
	result, err := pipeline.Recommend(pref)
	if err != nil {
		if errors.Is(err, feature.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Recommendation failed")
		return
	}

	s.persistAsync(pref, result.Recommendations)

	resp := map[string]any{
		"status":          result.Status,
		"recommendations": result.Recommendations,
		"prescriptive":    pipeline.Prescriptive(pref),
	}
	if result.Message != "" {
		resp["message"] = result.Message
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePredict returns only the single best destination with the
// classifier's raw confidence.
func (s *Service) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req recommendationRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	pipeline := s.pipeline.Load()
	if pipeline == nil {
		writeError(w, http.StatusServiceUnavailable, modelNotTrainedMessage)
		return
	}
	prediction, err := pipeline.Predict(req.toPreference())
	if err != nil {
		switch {
		case errors.Is(err, feature.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, model.ErrModelNotTrained):
			writeError(w, http.StatusServiceUnavailable, modelNotTrainedMessage)
		default:
			writeError(w, http.StatusInternalServerError, "Prediction failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"prediction": prediction,
	})
}

// persistAsync stores the request and its recommendations in the background.
// History is best effort; a write failure is logged, never surfaced.
func (s *Service) persistAsync(pref *models.Preference, recs []models.Recommendation) {
	s.persistWG.Add(1)
	go func() {
		defer s.persistWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if _, err := s.prefs.Insert(ctx, pref, recs); err != nil {
			log.Error().Err(err).Msg("Failed to persist preference history")
		}
	}()
}

func (s *Service) handleDestinations(w http.ResponseWriter, r *http.Request) {
	destinations := s.ds.All()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "success",
		"count":        len(destinations),
		"destinations": destinations,
	})
}

func (s *Service) handlePreferences(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	records, err := s.prefs.List(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list preferences")
		writeError(w, http.StatusInternalServerError, "Failed to load preference history")
		return
	}
	total, err := s.prefs.Count(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to count preferences")
		writeError(w, http.StatusInternalServerError, "Failed to load preference history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "success",
		"total":       total,
		"preferences": records,
	})
}

func (s *Service) handleCreateRating(w http.ResponseWriter, r *http.Request) {
	var rating models.Rating
	if err := json.NewDecoder(r.Body).Decode(&rating); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := rating.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	record, err := s.ratings.Insert(r.Context(), rating)
	if err != nil {
		log.Error().Err(err).Msg("Failed to store rating")
		writeError(w, http.StatusInternalServerError, "Failed to store rating")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"status": "success",
		"id":     record.ID,
	})
}

func (s *Service) handleGetRatings(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	records, err := s.ratings.List(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list ratings")
		writeError(w, http.StatusInternalServerError, "Failed to load ratings")
		return
	}
	system, analytics, err := s.ratings.Averages(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to average ratings")
		writeError(w, http.StatusInternalServerError, "Failed to load ratings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"ratings": records,
		"averages": map[string]float64{
			"system_satisfaction":    system,
			"analytics_satisfaction": analytics,
		},
	})
}

func (s *Service) handleTopDestinations(w http.ResponseWriter, r *http.Request) {
	counts, err := s.dashboard.TopDestinations(r.Context(), queryInt(r, "limit", 10))
	if err != nil {
		log.Error().Err(err).Msg("Failed to aggregate top destinations")
		writeError(w, http.StatusInternalServerError, "Failed to load dashboard data")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "success",
		"top_destinations": counts,
	})
}

// handleDistributions returns preference distributions: one field when
// ?field= is given, otherwise all queryable fields.
func (s *Service) handleDistributions(w http.ResponseWriter, r *http.Request) {
	if field := r.URL.Query().Get("field"); field != "" {
		counts, err := s.dashboard.Distribution(r.Context(), field)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":        "success",
			"field":         field,
			"distributions": counts,
		})
		return
	}

	distributions := make(map[string]any)
	for _, field := range s.dashboard.DistributionFields() {
		counts, err := s.dashboard.Distribution(r.Context(), field)
		if err != nil {
			log.Error().Err(err).Str("field", field).Msg("Failed to aggregate distribution")
			writeError(w, http.StatusInternalServerError, "Failed to load dashboard data")
			return
		}
		distributions[field] = counts
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "success",
		"distributions": distributions,
	})
}

// trainRequest optionally overrides the configured algorithm.
type trainRequest struct {
	Algorithm string `json:"algorithm"`
}

// handleTrain refits the classifier from the reference dataset, saves the
// artifact, and swaps the live pipeline.
func (s *Service) handleTrain(w http.ResponseWriter, r *http.Request) {
	algorithm := s.cfg.Model.Algorithm
	if r.Body != nil && r.ContentLength != 0 {
		var req trainRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Algorithm != "" {
			algorithm = req.Algorithm
		}
	}

	artifact, err := model.Train(s.ds, algorithm)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Training failed: %v", err))
		return
	}
	if err := artifact.Save(s.cfg.Model.Path); err != nil {
		log.Error().Err(err).Msg("Failed to save model artifact")
		writeError(w, http.StatusInternalServerError, "Failed to save model artifact")
		return
	}
	predictor, err := artifact.Predictor()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build predictor")
		return
	}
	s.applyPipeline(recommend.NewPipeline(artifact, predictor, s.ds))

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"algorithm":  artifact.Algorithm,
		"trained_at": artifact.TrainedAt.Format(time.RFC3339),
		"samples":    s.ds.Len(),
		"labels":     len(artifact.Labels),
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"version":        s.version,
		"model_loaded":   s.pipeline.Load() != nil,
		"destinations":   s.ds.Len(),
		"uptime_seconds": int(time.Since(s.startTime).Seconds()),
	})
}

func (s *Service) handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ready",
		"model_loaded": s.pipeline.Load() != nil,
	})
}

func (s *Service) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"status":  "error",
		"message": message,
	})
}
