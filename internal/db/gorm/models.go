package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lakbaylabs/lakbay/pkg/models"
)

// PreferenceRecord is one stored recommendation request: the traveller's
// preference plus the resulting recommendation list. Append-only, never
// mutated after insert.
type PreferenceRecord struct {
	ID              string                        `gorm:"primaryKey"`
	Budget          float64                       `gorm:"not null"`
	DestinationType string                        `gorm:"index;not null"`
	TravelPurpose   string                        `gorm:"not null"`
	TravelSeason    string                        `gorm:"index;not null"`
	Municipality    string                        `gorm:"index;not null"`
	GroupType       string                        `gorm:"index"`
	NumberOfPeople  int                           `gorm:"default:1"`
	TripDuration    int                           `gorm:"default:1"`
	Recommendations models.JSONRecommendationList `gorm:"type:text"`
	CreatedAt       time.Time                     `gorm:"index:idx_preferences_created,sort:desc;not null"`
}

func (PreferenceRecord) TableName() string { return "travel_preferences" }

// BeforeCreate hook to ensure ID and timestamp are set.
func (p *PreferenceRecord) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return nil
}

// RecommendationItem is one recommended destination from a stored request,
// broken out of the JSON list so dashboard aggregates can query it directly.
type RecommendationItem struct {
	ID           int64   `gorm:"primaryKey;autoIncrement"`
	PreferenceID string  `gorm:"index;not null"`
	Destination  string  `gorm:"index;not null"`
	Rank         int     `gorm:"not null"`
	FinalScore   float64 `gorm:"type:real;not null"`
}

func (RecommendationItem) TableName() string { return "recommendation_items" }

// RatingRecord is one stored satisfaction rating.
type RatingRecord struct {
	ID                         string    `gorm:"primaryKey"`
	SystemSatisfactionScore    int       `gorm:"not null;check:system_satisfaction_score BETWEEN 1 AND 5"`
	AnalyticsSatisfactionScore int       `gorm:"not null;check:analytics_satisfaction_score BETWEEN 1 AND 5"`
	CreatedAt                  time.Time `gorm:"index:idx_ratings_created,sort:desc;not null"`
}

func (RatingRecord) TableName() string { return "ratings" }

// BeforeCreate hook to ensure ID and timestamp are set.
func (r *RatingRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return nil
}
