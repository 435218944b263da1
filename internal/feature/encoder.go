// Package feature transforms raw traveller preferences into the numeric
// feature vectors the trained classifier expects.
package feature

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lakbaylabs/lakbay/pkg/models"
)

// ErrValidation marks a malformed request: a required preference field is
// missing or empty. Distinct from an unseen category, which degrades softly.
var ErrValidation = errors.New("invalid preference")

// Encoder maps a preference record onto the fitted vocabulary, producing the
// feature vector for the classifier. An unseen category value never fails the
// encode; it falls back to code 0 (the first-fitted class) and the field is
// reported as degraded so callers can log it.
type Encoder struct {
	vocab  *models.Vocabulary
	budget models.BudgetStats
}

// NewEncoder creates an encoder over the fitted vocabulary and budget
// statistics.
func NewEncoder(vocab *models.Vocabulary, budget models.BudgetStats) *Encoder {
	return &Encoder{vocab: vocab, budget: budget}
}

// Encode converts a preference into a feature vector. The second return
// lists the categorical fields that degraded to the default code because
// their value was never seen in training.
func (e *Encoder) Encode(pref *models.Preference) (models.FeatureVector, []string, error) {
	var vec models.FeatureVector

	if err := validateRequired(pref); err != nil {
		return vec, nil, err
	}

	budget, err := pref.BudgetValue()
	if err != nil {
		return vec, nil, fmt.Errorf("%w: budget %q is not a number", ErrValidation, pref.Budget)
	}
	if budget <= 0 {
		return vec, nil, fmt.Errorf("%w: budget must be positive", ErrValidation)
	}

	values := map[string]string{
		models.ColDestinationType: pref.DestinationType,
		models.ColTravelPurpose:   pref.TravelPurpose,
		models.ColTravelSeason:    pref.TravelSeason,
		models.ColMunicipality:    pref.Municipality,
	}

	var degraded []string
	codes := make([]int, 0, len(models.CategoricalColumns))
	for _, column := range models.CategoricalColumns {
		fv := e.vocab.Field(column)
		if fv == nil {
			return vec, nil, fmt.Errorf("vocabulary has no field %q", column)
		}
		code, known := fv.Code(values[column])
		if !known {
			// Unseen category: soft-fail to the first-fitted class so a
			// recommendation is still produced.
			code = 0
			degraded = append(degraded, column)
			log.Warn().
				Str("field", column).
				Str("value", values[column]).
				Msg("Category not seen in training, using default code")
		}
		codes = append(codes, code)
	}

	vec.BudgetZ = e.budget.Normalize(budget)
	vec.Codes = codes
	return vec, degraded, nil
}

func validateRequired(pref *models.Preference) error {
	required := []struct {
		name  string
		value string
	}{
		{"budget", pref.Budget},
		{"destination_type", pref.DestinationType},
		{"travel_purpose", pref.TravelPurpose},
		{"travel_season", pref.TravelSeason},
		{"municipality", pref.Municipality},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: missing required field %q", ErrValidation, f.name)
		}
	}
	return nil
}
