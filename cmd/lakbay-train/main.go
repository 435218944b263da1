// Package main provides the offline training CLI. It fits a classifier from
// the destination dataset and writes the model artifact the service loads.
package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lakbaylabs/lakbay/internal/config"
	"github.com/lakbaylabs/lakbay/internal/dataset"
	"github.com/lakbaylabs/lakbay/internal/model"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	datasetPath := flag.String("dataset", cfg.Dataset.Path, "destination dataset CSV")
	modelPath := flag.String("out", cfg.Model.Path, "model artifact output path")
	algorithm := flag.String("algorithm", cfg.Model.Algorithm, "classifier algorithm (naivebayes or knn)")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ds, err := dataset.Load(*datasetPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *datasetPath).Msg("Failed to load dataset")
	}

	artifact, err := model.Train(ds, *algorithm)
	if err != nil {
		log.Fatal().Err(err).Msg("Training failed")
	}

	if err := artifact.Save(*modelPath); err != nil {
		log.Fatal().Err(err).Str("path", *modelPath).Msg("Failed to save model artifact")
	}

	log.Info().
		Str("path", *modelPath).
		Str("algorithm", artifact.Algorithm).
		Int("labels", len(artifact.Labels)).
		Msg("Model artifact written")
}
