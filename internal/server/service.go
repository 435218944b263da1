// Package server provides the lakbay HTTP service.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm/logger"

	"github.com/lakbaylabs/lakbay/internal/config"
	"github.com/lakbaylabs/lakbay/internal/dataset"
	gormdb "github.com/lakbaylabs/lakbay/internal/db/gorm"
	"github.com/lakbaylabs/lakbay/internal/model"
	"github.com/lakbaylabs/lakbay/internal/recommend"
	"github.com/lakbaylabs/lakbay/internal/watcher"
)

// persistTimeout bounds the fire-and-forget history write.
const persistTimeout = 10 * time.Second

// Service is the HTTP service orchestrator. The reference dataset and the
// trained pipeline are loaded once and shared read-only across request
// handlers; retraining swaps in a fresh pipeline atomically.
type Service struct {
	version string
	cfg     *config.Config

	ds        *dataset.Dataset
	store     *gormdb.Store
	prefs     *gormdb.PreferenceStore
	ratings   *gormdb.RatingStore
	dashboard *gormdb.DashboardStore

	pipeline atomic.Pointer[recommend.Pipeline]

	validate     *validator.Validate
	router       *chi.Mux
	server       *http.Server
	modelWatcher *watcher.Watcher
	startTime    time.Time

	// Tracks in-flight fire-and-forget history writes for clean shutdown.
	persistWG sync.WaitGroup
}

// NewService loads the dataset, the history store, and (if present) the
// trained model, then wires the router. A missing model artifact is not an
// error: prediction routes report "model not trained" until one is loaded.
func NewService(version string, cfg *config.Config) (*Service, error) {
	s := &Service{
		version:   version,
		cfg:       cfg,
		validate:  newValidator(),
		startTime: time.Now(),
	}

	var g errgroup.Group
	g.Go(func() error {
		ds, err := dataset.Load(cfg.Dataset.Path)
		if err != nil {
			return fmt.Errorf("load dataset: %w", err)
		}
		s.ds = ds
		return nil
	})
	g.Go(func() error {
		store, err := gormdb.NewStore(gormdb.Config{
			Path:     cfg.Database.Path,
			MaxConns: cfg.Database.MaxConns,
			LogLevel: logger.Silent,
		})
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		s.store = store
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.prefs = gormdb.NewPreferenceStore(s.store)
	s.ratings = gormdb.NewRatingStore(s.store)
	s.dashboard = gormdb.NewDashboardStore(s.store)

	if err := s.reloadModel(); err != nil && !errors.Is(err, model.ErrModelNotTrained) {
		return nil, fmt.Errorf("load model: %w", err)
	}

	if cfg.Model.AutoReload {
		w, err := watcher.New(cfg.Model.Path, watcher.DefaultDebounce, func() {
			if err := s.reloadModel(); err != nil {
				log.Error().Err(err).Msg("Model reload failed")
			}
		})
		if err != nil {
			log.Warn().Err(err).Msg("Model artifact watcher unavailable, hot reload disabled")
		} else {
			s.modelWatcher = w
		}
	}

	s.setupRoutes()
	return s, nil
}

// reloadModel loads the artifact from disk and swaps the pipeline. A missing
// artifact clears the pipeline so prediction routes go back to the
// "model not trained" state.
func (s *Service) reloadModel() error {
	artifact, err := model.LoadArtifact(s.cfg.Model.Path)
	if err != nil {
		if errors.Is(err, model.ErrModelNotTrained) {
			s.pipeline.Store(nil)
			log.Warn().Str("path", s.cfg.Model.Path).Msg("No trained model artifact, prediction disabled")
		}
		return err
	}
	predictor, err := artifact.Predictor()
	if err != nil {
		return fmt.Errorf("build predictor: %w", err)
	}
	s.applyPipeline(recommend.NewPipeline(artifact, predictor, s.ds))
	return nil
}

// applyPipeline atomically swaps the active pipeline.
func (s *Service) applyPipeline(p *recommend.Pipeline) {
	s.pipeline.Store(p)
	log.Info().Msg("Recommendation pipeline ready")
}

func (s *Service) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Server.Timeout))

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/ready", s.handleReady)
	r.Get("/api/version", s.handleVersion)

	// Data browsing, history, and ratings stay available without a model.
	r.Get("/api/destinations", s.handleDestinations)
	r.Get("/api/preferences", s.handlePreferences)
	r.Post("/api/ratings", s.handleCreateRating)
	r.Get("/api/ratings", s.handleGetRatings)
	r.Get("/api/dashboard/top-destinations", s.handleTopDestinations)
	r.Get("/api/dashboard/distributions", s.handleDistributions)

	r.Post("/api/model/train", s.handleTrain)

	// Prediction routes require a trained model.
	r.Group(func(r chi.Router) {
		r.Use(s.requireModel)
		r.Post("/api/recommendations", s.handleRecommendations)
		r.Post("/api/predict", s.handlePredict)
	})

	s.router = r
}

// Start begins serving HTTP requests.
func (s *Service) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.Timeout,
		WriteTimeout: s.cfg.Server.Timeout,
	}
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()
	return nil
}

// Shutdown stops the server, waits for in-flight history writes, and closes
// resources.
func (s *Service) Shutdown(ctx context.Context) error {
	var firstErr error
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}

	done := make(chan struct{})
	go func() {
		s.persistWG.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		log.Warn().Msg("Timed out waiting for history writes")
	}

	if s.modelWatcher != nil {
		if err := s.modelWatcher.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Router exposes the chi router, mainly for tests.
func (s *Service) Router() http.Handler { return s.router }
