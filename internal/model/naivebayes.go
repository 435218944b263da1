package model

import (
	"fmt"
	"math"

	"github.com/lakbaylabs/lakbay/pkg/models"
)

// budgetVarianceFloor keeps the per-class budget Gaussian from collapsing
// when a class has a single training sample. Expressed in z-score units.
const budgetVarianceFloor = 0.25

// NaiveBayesParams are the fitted parameters of the categorical naive Bayes
// classifier: per-class sample totals, per-column code counts, and a
// per-class Gaussian over the normalized budget.
type NaiveBayesParams struct {
	Total       int       `json:"total"`
	ClassTotals []int     `json:"class_totals"`
	// CodeCounts is indexed [column][class][code], columns following
	// models.CategoricalColumns order.
	CodeCounts [][][]int `json:"code_counts"`
	BudgetMean []float64 `json:"budget_mean"`
	BudgetVar  []float64 `json:"budget_var"`
}

// naiveBayes scores candidates with Laplace-smoothed categorical likelihoods
// and a Gaussian budget term, normalized with log-sum-exp.
type naiveBayes struct {
	labels []string
	vocab  *models.Vocabulary
	params *NaiveBayesParams
}

func newNaiveBayes(labels []string, vocab *models.Vocabulary, params *NaiveBayesParams) (*naiveBayes, error) {
	if params == nil {
		return nil, fmt.Errorf("naive bayes parameters missing from artifact")
	}
	if len(params.ClassTotals) != len(labels) {
		return nil, fmt.Errorf("naive bayes class count %d does not match %d labels", len(params.ClassTotals), len(labels))
	}
	if len(params.CodeCounts) != len(models.CategoricalColumns) {
		return nil, fmt.Errorf("naive bayes has %d feature columns, want %d", len(params.CodeCounts), len(models.CategoricalColumns))
	}
	if len(params.BudgetMean) != len(labels) || len(params.BudgetVar) != len(labels) {
		return nil, fmt.Errorf("naive bayes budget stats cover %d/%d classes, want %d", len(params.BudgetMean), len(params.BudgetVar), len(labels))
	}
	return &naiveBayes{labels: labels, vocab: vocab, params: params}, nil
}

func (nb *naiveBayes) Name() string     { return AlgorithmNaiveBayes }
func (nb *naiveBayes) Labels() []string { return nb.labels }

func (nb *naiveBayes) PredictProba(vec models.FeatureVector) ([]LabelScore, error) {
	if len(vec.Codes) != len(models.CategoricalColumns) {
		return nil, fmt.Errorf("feature vector has %d codes, want %d", len(vec.Codes), len(models.CategoricalColumns))
	}

	p := nb.params
	logp := make([]float64, len(nb.labels))
	for class := range nb.labels {
		// Smoothed prior.
		lp := math.Log(float64(p.ClassTotals[class])+1) - math.Log(float64(p.Total)+float64(len(nb.labels)))

		for col, code := range vec.Codes {
			size := nb.vocab.Field(models.CategoricalColumns[col]).Size()
			count := 0
			if code >= 0 && code < len(p.CodeCounts[col][class]) {
				count = p.CodeCounts[col][class][code]
			}
			lp += math.Log(float64(count)+1) - math.Log(float64(p.ClassTotals[class])+float64(size))
		}

		variance := p.BudgetVar[class]
		if variance < budgetVarianceFloor {
			variance = budgetVarianceFloor
		}
		diff := vec.BudgetZ - p.BudgetMean[class]
		lp += -0.5*math.Log(2*math.Pi*variance) - diff*diff/(2*variance)

		logp[class] = lp
	}

	return softmax(nb.labels, logp), nil
}

// softmax converts log-probabilities to a normalized distribution using the
// log-sum-exp trick for numeric stability.
func softmax(labels []string, logp []float64) []LabelScore {
	maxLog := math.Inf(-1)
	for _, lp := range logp {
		if lp > maxLog {
			maxLog = lp
		}
	}
	sum := 0.0
	exps := make([]float64, len(logp))
	for i, lp := range logp {
		exps[i] = math.Exp(lp - maxLog)
		sum += exps[i]
	}
	scores := make([]LabelScore, len(labels))
	for i, label := range labels {
		scores[i] = LabelScore{Label: label, Proba: exps[i] / sum}
	}
	return scores
}
