package model

import (
	"fmt"
	"math"
	"sort"

	"github.com/lakbaylabs/lakbay/pkg/models"
)

// DefaultNeighbors is the k used by the nearest-neighbor backend.
const DefaultNeighbors = 5

// KNNParams are the fitted parameters of the nearest-neighbor backend: the
// encoded training vectors and their class indexes.
type KNNParams struct {
	K int `json:"k"`
	// Vectors holds one row per training sample: [budgetZ, code0..codeN].
	Vectors [][]float64 `json:"vectors"`
	Classes []int       `json:"classes"`
}

// knn predicts by distance-weighted voting among the k nearest training
// samples.
type knn struct {
	labels []string
	params *KNNParams
}

func newKNN(labels []string, params *KNNParams) (*knn, error) {
	if params == nil {
		return nil, fmt.Errorf("knn parameters missing from artifact")
	}
	if len(params.Vectors) != len(params.Classes) {
		return nil, fmt.Errorf("knn has %d vectors but %d classes", len(params.Vectors), len(params.Classes))
	}
	if params.K <= 0 {
		params.K = DefaultNeighbors
	}
	return &knn{labels: labels, params: params}, nil
}

func (k *knn) Name() string     { return AlgorithmKNN }
func (k *knn) Labels() []string { return k.labels }

func (k *knn) PredictProba(vec models.FeatureVector) ([]LabelScore, error) {
	if len(k.params.Vectors) == 0 {
		return nil, fmt.Errorf("knn has no training vectors")
	}
	query := encodeRow(vec)

	type neighbor struct {
		index int
		dist  float64
	}
	neighbors := make([]neighbor, len(k.params.Vectors))
	for i, row := range k.params.Vectors {
		if len(row) != len(query) {
			return nil, fmt.Errorf("training vector %d has %d dims, want %d", i, len(row), len(query))
		}
		neighbors[i] = neighbor{index: i, dist: euclidean(query, row)}
	}
	// Ties resolve by training-sample order, keeping predictions
	// deterministic for a fixed model state.
	sort.SliceStable(neighbors, func(a, b int) bool {
		return neighbors[a].dist < neighbors[b].dist
	})

	kk := k.params.K
	if kk > len(neighbors) {
		kk = len(neighbors)
	}

	votes := make([]float64, len(k.labels))
	total := 0.0
	for _, n := range neighbors[:kk] {
		// Inverse-distance weighting; the epsilon keeps exact matches finite.
		w := 1.0 / (n.dist + 1e-9)
		votes[k.params.Classes[n.index]] += w
		total += w
	}

	scores := make([]LabelScore, len(k.labels))
	for i, label := range k.labels {
		scores[i] = LabelScore{Label: label, Proba: votes[i] / total}
	}
	return scores, nil
}

// encodeRow flattens a feature vector into the row layout stored in
// KNNParams.Vectors.
func encodeRow(vec models.FeatureVector) []float64 {
	row := make([]float64, 0, len(vec.Codes)+1)
	row = append(row, vec.BudgetZ)
	for _, code := range vec.Codes {
		row = append(row, float64(code))
	}
	return row
}

func euclidean(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
