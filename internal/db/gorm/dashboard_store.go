package gorm

import (
	"context"
	"fmt"
)

// FieldCount is one bucket of a categorical distribution.
type FieldCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// DestinationCount is one destination with how often it was recommended.
type DestinationCount struct {
	Destination string `json:"destination"`
	Count       int64  `json:"count"`
}

// DashboardStore serves analytics aggregates over stored preferences and
// recommendations.
type DashboardStore struct {
	store *Store
}

// NewDashboardStore creates a dashboard store.
func NewDashboardStore(store *Store) *DashboardStore {
	return &DashboardStore{store: store}
}

// distributionColumns whitelists the preference columns that can be grouped
// on, keyed by the API-facing name.
var distributionColumns = map[string]string{
	"destination_type": "destination_type",
	"travel_purpose":   "travel_purpose",
	"travel_season":    "travel_season",
	"municipality":     "municipality",
	"group_type":       "group_type",
}

// Distribution returns how stored preferences distribute over one
// categorical field, largest bucket first.
func (ds *DashboardStore) Distribution(ctx context.Context, field string) ([]FieldCount, error) {
	column, ok := distributionColumns[field]
	if !ok {
		return nil, fmt.Errorf("unknown distribution field %q", field)
	}
	var counts []FieldCount
	err := ds.store.DB.WithContext(ctx).
		Model(&PreferenceRecord{}).
		Select(column+" AS value, COUNT(*) AS count").
		Where(column + " != ''").
		Group(column).
		Order("count DESC, value ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("distribution by %s: %w", field, err)
	}
	return counts, nil
}

// DistributionFields returns the queryable field names.
func (ds *DashboardStore) DistributionFields() []string {
	return []string{"destination_type", "travel_purpose", "travel_season", "municipality", "group_type"}
}

// TopDestinations returns the most recommended destinations across all
// stored requests.
func (ds *DashboardStore) TopDestinations(ctx context.Context, limit int) ([]DestinationCount, error) {
	if limit <= 0 {
		limit = 10
	}
	var counts []DestinationCount
	err := ds.store.DB.WithContext(ctx).
		Model(&RecommendationItem{}).
		Select("destination, COUNT(*) AS count").
		Group("destination").
		Order("count DESC, destination ASC").
		Limit(limit).
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("top destinations: %w", err)
	}
	return counts, nil
}
