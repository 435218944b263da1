package gorm

import (
	"context"
	"fmt"

	"github.com/lakbaylabs/lakbay/pkg/models"
)

// PreferenceStore persists recommendation requests and their outcomes.
type PreferenceStore struct {
	store *Store
}

// NewPreferenceStore creates a preference store.
func NewPreferenceStore(store *Store) *PreferenceStore {
	return &PreferenceStore{store: store}
}

// Insert records a preference and its recommendations. The broken-out
// recommendation items are written in the same transaction so the dashboard
// aggregates can never drift from the history.
func (ps *PreferenceStore) Insert(ctx context.Context, pref *models.Preference, recs []models.Recommendation) (*PreferenceRecord, error) {
	budget, err := pref.BudgetValue()
	if err != nil {
		return nil, fmt.Errorf("parse budget: %w", err)
	}
	record := &PreferenceRecord{
		Budget:          budget,
		DestinationType: pref.DestinationType,
		TravelPurpose:   pref.TravelPurpose,
		TravelSeason:    pref.TravelSeason,
		Municipality:    pref.Municipality,
		GroupType:       string(pref.GroupType),
		NumberOfPeople:  pref.NumberOfPeople,
		TripDuration:    pref.TripDuration,
		Recommendations: recs,
	}

	tx := ps.store.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin: %w", tx.Error)
	}
	if err := tx.Create(record).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("insert preference: %w", err)
	}
	for i, rec := range recs {
		item := &RecommendationItem{
			PreferenceID: record.ID,
			Destination:  rec.Destination,
			Rank:         i + 1,
			FinalScore:   rec.ConfidenceScore,
		}
		if err := tx.Create(item).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("insert recommendation item: %w", err)
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return record, nil
}

// List returns stored preference records, newest first.
func (ps *PreferenceStore) List(ctx context.Context, limit int) ([]PreferenceRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var records []PreferenceRecord
	err := ps.store.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	return records, nil
}

// Count returns the number of stored preference records.
func (ps *PreferenceStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := ps.store.DB.WithContext(ctx).Model(&PreferenceRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count preferences: %w", err)
	}
	return count, nil
}
