package model

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lakbaylabs/lakbay/internal/dataset"
	"github.com/lakbaylabs/lakbay/pkg/models"
)

// Train fits a classifier artifact from the reference dataset. The category
// vocabularies and the destination label space are derived from the data,
// never hardcoded, so the encoder and the classifier share one source of
// truth.
func Train(ds *dataset.Dataset, algorithm string) (*Artifact, error) {
	vocab := fitVocabulary(ds)
	budget, budgets, err := fitBudget(ds)
	if err != nil {
		return nil, err
	}
	labels := ds.Distinct(models.ColDestination)
	classIndex := make(map[string]int, len(labels))
	for i, label := range labels {
		classIndex[label] = i
	}

	// Encode every dataset row as a training sample.
	rows := ds.All()
	vectors := make([]models.FeatureVector, len(rows))
	classes := make([]int, len(rows))
	for i := range rows {
		vec, err := encodeSample(&rows[i], vocab, budget, budgets[i])
		if err != nil {
			return nil, fmt.Errorf("encode row %q: %w", rows[i].Name, err)
		}
		vectors[i] = vec
		classes[i] = classIndex[rows[i].Name]
	}

	a := &Artifact{
		Version:    ArtifactVersion,
		Algorithm:  algorithm,
		TrainedAt:  time.Now().UTC(),
		Labels:     labels,
		Vocabulary: vocab,
		Budget:     budget,
	}
	switch algorithm {
	case AlgorithmNaiveBayes:
		a.NaiveBayes = fitNaiveBayes(vectors, classes, len(labels), vocab)
	case AlgorithmKNN:
		a.KNN = fitKNN(vectors, classes)
	default:
		return nil, fmt.Errorf("unknown algorithm %q", algorithm)
	}

	log.Info().
		Str("algorithm", algorithm).
		Int("samples", len(rows)).
		Int("labels", len(labels)).
		Msg("Model trained")
	return a, nil
}

func fitVocabulary(ds *dataset.Dataset) *models.Vocabulary {
	fields := make(map[string]*models.FieldVocab, len(models.CategoricalColumns))
	for _, column := range models.CategoricalColumns {
		fields[column] = models.NewFieldVocab(ds.Distinct(column))
	}
	return &models.Vocabulary{Version: ArtifactVersion, Fields: fields}
}

// fitBudget computes the training-corpus budget mean and (population)
// standard deviation, returning the parsed per-row budgets alongside.
func fitBudget(ds *dataset.Dataset) (models.BudgetStats, []float64, error) {
	rows := ds.All()
	budgets := make([]float64, len(rows))
	sum := 0.0
	for i := range rows {
		v, err := rows[i].BudgetValue()
		if err != nil {
			return models.BudgetStats{}, nil, fmt.Errorf("budget for %q: %w", rows[i].Name, err)
		}
		budgets[i] = v
		sum += v
	}
	mean := sum / float64(len(budgets))
	variance := 0.0
	for _, v := range budgets {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(budgets))
	return models.BudgetStats{Mean: mean, Std: math.Sqrt(variance)}, budgets, nil
}

func encodeSample(row *models.Destination, vocab *models.Vocabulary, stats models.BudgetStats, budget float64) (models.FeatureVector, error) {
	values := map[string]string{
		models.ColDestinationType: row.Type,
		models.ColTravelPurpose:   row.Purpose,
		models.ColTravelSeason:    row.Season,
		models.ColMunicipality:    row.Municipality,
	}
	codes := make([]int, 0, len(models.CategoricalColumns))
	for _, column := range models.CategoricalColumns {
		code, ok := vocab.Field(column).Code(values[column])
		if !ok {
			return models.FeatureVector{}, fmt.Errorf("value %q missing from fitted vocabulary for %s", values[column], column)
		}
		codes = append(codes, code)
	}
	return models.FeatureVector{BudgetZ: stats.Normalize(budget), Codes: codes}, nil
}

func fitNaiveBayes(vectors []models.FeatureVector, classes []int, numClasses int, vocab *models.Vocabulary) *NaiveBayesParams {
	p := &NaiveBayesParams{
		Total:       len(vectors),
		ClassTotals: make([]int, numClasses),
		CodeCounts:  make([][][]int, len(models.CategoricalColumns)),
		BudgetMean:  make([]float64, numClasses),
		BudgetVar:   make([]float64, numClasses),
	}
	for col, column := range models.CategoricalColumns {
		size := vocab.Field(column).Size()
		p.CodeCounts[col] = make([][]int, numClasses)
		for class := 0; class < numClasses; class++ {
			p.CodeCounts[col][class] = make([]int, size)
		}
	}

	budgetSums := make([]float64, numClasses)
	for i, vec := range vectors {
		class := classes[i]
		p.ClassTotals[class]++
		budgetSums[class] += vec.BudgetZ
		for col, code := range vec.Codes {
			p.CodeCounts[col][class][code]++
		}
	}
	for class := 0; class < numClasses; class++ {
		if p.ClassTotals[class] > 0 {
			p.BudgetMean[class] = budgetSums[class] / float64(p.ClassTotals[class])
		}
	}
	for i, vec := range vectors {
		class := classes[i]
		d := vec.BudgetZ - p.BudgetMean[class]
		p.BudgetVar[class] += d * d
	}
	for class := 0; class < numClasses; class++ {
		if p.ClassTotals[class] > 0 {
			p.BudgetVar[class] /= float64(p.ClassTotals[class])
		}
	}
	return p
}

func fitKNN(vectors []models.FeatureVector, classes []int) *KNNParams {
	p := &KNNParams{
		K:       DefaultNeighbors,
		Vectors: make([][]float64, len(vectors)),
		Classes: make([]int, len(classes)),
	}
	for i, vec := range vectors {
		p.Vectors[i] = encodeRow(vec)
		p.Classes[i] = classes[i]
	}
	return p
}
