package model

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/lakbaylabs/lakbay/pkg/models"
)

// ArtifactVersion is the current serialization format version.
const ArtifactVersion = 1

// Artifact is the serialized trained classifier: the fitted category
// vocabularies, the budget normalization statistics, the label space, and
// the parameters of whichever algorithm was trained. Built once offline,
// loaded at startup, and treated as immutable afterwards.
type Artifact struct {
	Version    int                `json:"version"`
	Algorithm  string             `json:"algorithm"`
	TrainedAt  time.Time          `json:"trained_at"`
	Labels     []string           `json:"labels"`
	Vocabulary *models.Vocabulary `json:"vocabulary"`
	Budget     models.BudgetStats `json:"budget"`
	NaiveBayes *NaiveBayesParams  `json:"naive_bayes,omitempty"`
	KNN        *KNNParams         `json:"knn,omitempty"`
}

// LoadArtifact reads a trained artifact from disk. A missing file maps to
// ErrModelNotTrained so callers can distinguish "not trained yet" from a
// corrupt artifact.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrModelNotTrained
		}
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", path, err)
	}
	if a.Vocabulary == nil || len(a.Labels) == 0 {
		return nil, fmt.Errorf("artifact %s is incomplete", path)
	}
	log.Info().
		Str("path", path).
		Str("algorithm", a.Algorithm).
		Int("labels", len(a.Labels)).
		Time("trained_at", a.TrainedAt).
		Msg("Model artifact loaded")
	return &a, nil
}

// Save writes the artifact atomically (temp file + rename) so a concurrent
// reload never observes a partial write.
func (a *Artifact) Save(path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace artifact: %w", err)
	}
	return nil
}

// Predictor constructs the prediction backend for the artifact's algorithm.
func (a *Artifact) Predictor() (Predictor, error) {
	switch a.Algorithm {
	case AlgorithmNaiveBayes:
		return newNaiveBayes(a.Labels, a.Vocabulary, a.NaiveBayes)
	case AlgorithmKNN:
		return newKNN(a.Labels, a.KNN)
	default:
		return nil, fmt.Errorf("unknown algorithm %q", a.Algorithm)
	}
}
