package models

import "strings"

// FieldVocab is the fitted category vocabulary for one categorical column.
// Classes are stored in fitted (sorted) order; a value's code is its index.
type FieldVocab struct {
	Classes []string `json:"classes"`

	index  map[string]int
	folded map[string]int
}

// NewFieldVocab builds a vocabulary from the fitted class list.
func NewFieldVocab(classes []string) *FieldVocab {
	v := &FieldVocab{Classes: classes}
	v.buildIndex()
	return v
}

func (v *FieldVocab) buildIndex() {
	v.index = make(map[string]int, len(v.Classes))
	v.folded = make(map[string]int, len(v.Classes))
	for i, c := range v.Classes {
		v.index[c] = i
		// First-fitted class wins on case collisions.
		key := strings.ToLower(c)
		if _, ok := v.folded[key]; !ok {
			v.folded[key] = i
		}
	}
}

// Code returns the integer code for a category value. Lookup is exact first,
// then case-insensitive. The second return is false for an unseen category.
func (v *FieldVocab) Code(value string) (int, bool) {
	if v.index == nil {
		v.buildIndex()
	}
	value = strings.TrimSpace(value)
	if code, ok := v.index[value]; ok {
		return code, true
	}
	if code, ok := v.folded[strings.ToLower(value)]; ok {
		return code, true
	}
	return 0, false
}

// Class returns the category value for a code, or "" if out of range.
func (v *FieldVocab) Class(code int) string {
	if code < 0 || code >= len(v.Classes) {
		return ""
	}
	return v.Classes[code]
}

// Size returns the number of fitted classes.
func (v *FieldVocab) Size() int { return len(v.Classes) }

// Vocabulary is the versioned category->code mapping fitted from the training
// dataset. It is the single source of truth for the closed category sets; the
// encoder and every classifier variant share one instance so they cannot
// drift apart.
type Vocabulary struct {
	Version int                    `json:"version"`
	Fields  map[string]*FieldVocab `json:"fields"`
}

// Field returns the vocabulary for a column, or nil if the column was not
// fitted.
func (v *Vocabulary) Field(column string) *FieldVocab {
	if v == nil {
		return nil
	}
	return v.Fields[column]
}

// BudgetStats holds the training-corpus budget normalization parameters.
type BudgetStats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// Normalize returns the z-score of a budget against the training statistics.
// A degenerate (zero) std yields 0 rather than dividing by zero.
func (s BudgetStats) Normalize(budget float64) float64 {
	if s.Std == 0 {
		return 0
	}
	return (budget - s.Mean) / s.Std
}

// FeatureVector is the fully numeric-encoded representation of a preference,
// ready for a classifier. Codes follow CategoricalColumns order.
type FeatureVector struct {
	BudgetZ float64 `json:"budget_z"`
	Codes   []int   `json:"codes"`
}
