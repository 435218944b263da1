package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/goccy/go-json"
)

// ScoredCandidate is a transient per-ranking-call result: one candidate
// destination with its combined confidence and the individual match terms.
type ScoredCandidate struct {
	Destination     string  `json:"destination"`
	ConfidenceScore float64 `json:"confidence_score"`
	BudgetMatch     float64 `json:"budget_match"`
	TypeMatch       float64 `json:"type_match"`
	PurposeMatch    float64 `json:"purpose_match"`
	SeasonMatch     float64 `json:"season_match"`
}

// Recommendation is a ScoredCandidate enriched with reference metadata.
type Recommendation struct {
	Destination     string  `json:"destination"`
	ConfidenceScore float64 `json:"confidence_score"`
	BudgetMatch     float64 `json:"budget_match"`
	TypeMatch       float64 `json:"type_match"`
	PurposeMatch    float64 `json:"purpose_match"`
	SeasonMatch     float64 `json:"season_match"`
	PackingTips     string  `json:"packing_tips"`
	Municipality    string  `json:"municipality,omitempty"`
	DestinationType string  `json:"destination_type,omitempty"`
	TravelPurpose   string  `json:"travel_purpose,omitempty"`
	TravelSeason    string  `json:"travel_season,omitempty"`
	Budget          string  `json:"budget,omitempty"`
}

// RecommendationResult is the outcome of the recommend operation. Status is
// always "success" when the pipeline ran; an empty list carries a message
// explaining why.
type RecommendationResult struct {
	Status          string           `json:"status"`
	Recommendations []Recommendation `json:"recommendations"`
	Message         string           `json:"message,omitempty"`
	DegradedFields  []string         `json:"-"`
}

// PrescriptiveRecommendation is one row of the rule-based (prescriptive)
// track: a destination that passed the preference filter, with trip-duration
// budget totals attached.
type PrescriptiveRecommendation struct {
	Destination     string `json:"destination"`
	DailyBudget     string `json:"daily_budget"`
	TotalBudget     string `json:"total_budget"`
	TripDuration    int    `json:"trip_duration"`
	DestinationType string `json:"destination_type"`
	TravelPurpose   string `json:"travel_purpose"`
	TravelSeason    string `json:"travel_season"`
	Municipality    string `json:"municipality"`
	PackingTips     string `json:"packing_tips"`
}

// JSONRecommendationList stores a recommendation list as a JSON column in
// SQLite.
type JSONRecommendationList []Recommendation

// Scan implements sql.Scanner for JSONRecommendationList.
func (j *JSONRecommendationList) Scan(src interface{}) error {
	if src == nil {
		*j = nil
		return nil
	}
	switch v := src.(type) {
	case string:
		return json.Unmarshal([]byte(v), j)
	case []byte:
		return json.Unmarshal(v, j)
	default:
		return fmt.Errorf("JSONRecommendationList: unsupported type %T", src)
	}
}

// Value implements driver.Valuer for JSONRecommendationList.
func (j JSONRecommendationList) Value() (driver.Value, error) {
	if j == nil {
		return "[]", nil
	}
	data, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
