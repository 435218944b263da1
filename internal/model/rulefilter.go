package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lakbaylabs/lakbay/internal/dataset"
	"github.com/lakbaylabs/lakbay/pkg/models"
)

// maxPrescriptive caps the prescriptive recommendation list.
const maxPrescriptive = 5

// RuleFilter is the rule-based prediction strategy: it needs no training and
// scores destinations by how many of the stated preferences their reference
// row matches. It implements Predictor so the scoring engine can swap it in
// for a trained classifier, and additionally exposes the prescriptive track
// with trip-duration budget totals.
type RuleFilter struct {
	ds     *dataset.Dataset
	vocab  *models.Vocabulary
	labels []string
}

// NewRuleFilter builds the rule-based strategy over the reference dataset.
// The vocabulary is used only to decode feature vectors back into category
// values; labels follow the dataset's fitted (sorted) destination order.
func NewRuleFilter(ds *dataset.Dataset, vocab *models.Vocabulary) *RuleFilter {
	labels := ds.Distinct(models.ColDestination)
	return &RuleFilter{ds: ds, vocab: vocab, labels: labels}
}

func (r *RuleFilter) Name() string     { return AlgorithmRuleFilter }
func (r *RuleFilter) Labels() []string { return r.labels }

// PredictProba scores each destination by its fraction of matched preference
// fields, normalized to a distribution. All-zero matches degrade to uniform
// so downstream ranking still has candidates to work with.
func (r *RuleFilter) PredictProba(vec models.FeatureVector) ([]LabelScore, error) {
	if len(vec.Codes) != len(models.CategoricalColumns) {
		return nil, fmt.Errorf("feature vector has %d codes, want %d", len(vec.Codes), len(models.CategoricalColumns))
	}
	values := make(map[string]string, len(models.CategoricalColumns))
	for i, column := range models.CategoricalColumns {
		values[column] = r.vocab.Field(column).Class(vec.Codes[i])
	}

	weights := make(map[string]float64, len(r.labels))
	for _, row := range r.ds.All() {
		matched := 0
		if containsFold(row.Type, values[models.ColDestinationType]) {
			matched++
		}
		if containsFold(row.Purpose, values[models.ColTravelPurpose]) {
			matched++
		}
		if containsFold(row.Season, values[models.ColTravelSeason]) {
			matched++
		}
		if containsFold(row.Municipality, values[models.ColMunicipality]) {
			matched++
		}
		w := float64(matched) / float64(len(models.CategoricalColumns))
		if w > weights[row.Name] {
			weights[row.Name] = w
		}
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}
	scores := make([]LabelScore, len(r.labels))
	if total == 0 {
		uniform := 1.0 / float64(len(r.labels))
		for i, label := range r.labels {
			scores[i] = LabelScore{Label: label, Proba: uniform}
		}
		return scores, nil
	}
	for i, label := range r.labels {
		scores[i] = LabelScore{Label: label, Proba: weights[label] / total}
	}
	return scores, nil
}

// Prescriptive filters the dataset down to destinations matching every
// stated preference and attaches budget totals for the trip duration.
// Results are sorted cheapest-first and capped at five. An empty result is a
// valid outcome, not an error.
func (r *RuleFilter) Prescriptive(pref *models.Preference) []models.PrescriptiveRecommendation {
	duration := pref.TripDuration
	if duration < 1 {
		duration = 1
	}

	var recs []models.PrescriptiveRecommendation
	for _, row := range r.ds.All() {
		if !containsFold(row.Type, pref.DestinationType) ||
			!containsFold(row.Purpose, pref.TravelPurpose) ||
			!containsFold(row.Season, pref.TravelSeason) ||
			!containsFold(row.Municipality, pref.Municipality) {
			continue
		}
		daily, err := row.BudgetValue()
		if err != nil {
			log.Error().Err(err).Str("destination", row.Name).Msg("Skipping destination with malformed budget")
			continue
		}
		recs = append(recs, models.PrescriptiveRecommendation{
			Destination:     row.Name,
			DailyBudget:     row.Budget,
			TotalBudget:     strconv.FormatFloat(daily*float64(duration), 'f', -1, 64),
			TripDuration:    duration,
			DestinationType: row.Type,
			TravelPurpose:   row.Purpose,
			TravelSeason:    row.Season,
			Municipality:    row.Municipality,
			PackingTips:     row.PackingTips,
		})
	}

	sort.SliceStable(recs, func(a, b int) bool {
		ta, _ := strconv.ParseFloat(recs[a].TotalBudget, 64)
		tb, _ := strconv.ParseFloat(recs[b].TotalBudget, 64)
		return ta < tb
	})
	if len(recs) > maxPrescriptive {
		recs = recs[:maxPrescriptive]
	}
	return recs
}

// containsFold reports whether haystack contains needle case-insensitively.
// An empty needle matches everything, mirroring an unconstrained preference.
func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
