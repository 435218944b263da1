package gorm

import (
	"context"
	"fmt"

	"github.com/lakbaylabs/lakbay/pkg/models"
)

// RatingStore persists satisfaction ratings.
type RatingStore struct {
	store *Store
}

// NewRatingStore creates a rating store.
func NewRatingStore(store *Store) *RatingStore {
	return &RatingStore{store: store}
}

// Insert stores one rating. The caller validates score bounds; the check
// constraints are a second line of defense.
func (rs *RatingStore) Insert(ctx context.Context, rating models.Rating) (*RatingRecord, error) {
	record := &RatingRecord{
		SystemSatisfactionScore:    rating.SystemSatisfactionScore,
		AnalyticsSatisfactionScore: rating.AnalyticsSatisfactionScore,
	}
	if err := rs.store.DB.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("insert rating: %w", err)
	}
	return record, nil
}

// List returns stored ratings, newest first.
func (rs *RatingStore) List(ctx context.Context, limit int) ([]RatingRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var records []RatingRecord
	err := rs.store.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return records, nil
}

// Averages returns the mean of each satisfaction score over all ratings.
func (rs *RatingStore) Averages(ctx context.Context) (system, analytics float64, err error) {
	var row struct {
		System    float64
		Analytics float64
	}
	err = rs.store.DB.WithContext(ctx).
		Model(&RatingRecord{}).
		Select("COALESCE(AVG(system_satisfaction_score), 0) AS system, COALESCE(AVG(analytics_satisfaction_score), 0) AS analytics").
		Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("average ratings: %w", err)
	}
	return row.System, row.Analytics, nil
}
