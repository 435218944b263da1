package recommend

import (
	"strings"

	"github.com/lakbaylabs/lakbay/internal/dataset"
	"github.com/lakbaylabs/lakbay/pkg/models"
)

// NoPackingTips is the sentinel attached when a destination has no packing
// tips in the reference dataset.
const NoPackingTips = "No packing tips available for this destination"

// Ranker deduplicates scored candidates and enriches them with descriptive
// metadata from the reference dataset. It preserves the engine's final
// order; the input is already sorted by combined score.
type Ranker struct {
	ds *dataset.Dataset
}

// NewRanker creates a ranker over the reference dataset.
func NewRanker(ds *dataset.Dataset) *Ranker {
	return &Ranker{ds: ds}
}

// Rank returns at most TopCandidates distinct destinations, enriched. A
// destination never appears twice (case-insensitive). An empty result is a
// valid, non-error outcome.
func (r *Ranker) Rank(candidates []models.ScoredCandidate) []models.Recommendation {
	seen := make(map[string]struct{}, len(candidates))
	recs := make([]models.Recommendation, 0, len(candidates))
	for _, cand := range candidates {
		key := strings.ToLower(strings.TrimSpace(cand.Destination))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		recs = append(recs, r.enrich(cand))
		if len(recs) == TopCandidates {
			break
		}
	}
	return recs
}

// enrich attaches reference metadata to one candidate: exact trimmed name
// match first, then case-insensitive, then the sentinel.
func (r *Ranker) enrich(cand models.ScoredCandidate) models.Recommendation {
	rec := models.Recommendation{
		Destination:     cand.Destination,
		ConfidenceScore: cand.ConfidenceScore,
		BudgetMatch:     cand.BudgetMatch,
		TypeMatch:       cand.TypeMatch,
		PurposeMatch:    cand.PurposeMatch,
		SeasonMatch:     cand.SeasonMatch,
		PackingTips:     NoPackingTips,
	}
	row, ok := r.ds.Lookup(cand.Destination)
	if !ok {
		return rec
	}
	if tips := strings.TrimSpace(row.PackingTips); tips != "" {
		rec.PackingTips = tips
	}
	rec.Municipality = row.Municipality
	rec.DestinationType = row.Type
	rec.TravelPurpose = row.Purpose
	rec.TravelSeason = row.Season
	rec.Budget = row.Budget
	return rec
}
