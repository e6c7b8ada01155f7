// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package service ties dataset loading, the ranking pipeline, the response
// cache and the snapshot store into the operations the CLI and the HTTP API
// expose.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/j-mckerracher/comp-sys-rankings/internal/cache"
	"github.com/j-mckerracher/comp-sys-rankings/internal/dataset"
	"github.com/j-mckerracher/comp-sys-rankings/internal/metrics"
	"github.com/j-mckerracher/comp-sys-rankings/internal/ranking"
	"github.com/j-mckerracher/comp-sys-rankings/internal/snapshot"
	"github.com/j-mckerracher/comp-sys-rankings/internal/venues"
	"github.com/j-mckerracher/comp-sys-rankings/pkg/types"
)

// ErrEmptySnapshot reports that the full ranking was empty, so the previous
// snapshot was kept.
var ErrEmptySnapshot = errors.New("ranking is empty, previous snapshot kept")

// Loader supplies the raw dataset.
type Loader interface {
	Load(ctx context.Context) (*dataset.Result, error)
}

// SnapshotStore persists the unfiltered ranking and answers distribution
// lookups.
type SnapshotStore interface {
	Write(ctx context.Context, r types.Ranking, full bool) (snapshot.Run, error)
	Distribution(ctx context.Context, institution, author string) (map[string]int, error)
}

// Result is the outcome of one ranking request.
type Result struct {
	RunID string

	// Ranking is nil when the response came from the cache.
	Ranking types.Ranking

	// JSON is the encoded ranking.
	JSON []byte

	Origin   dataset.Origin
	Rejected []*types.InstitutionError
	Cached   bool
	Full     bool

	// Snapshot is set when this request refreshed the snapshot.
	Snapshot *snapshot.Run
}

// Service runs ranking requests. It is safe for concurrent use.
type Service struct {
	loader    Loader
	pipeline  *ranking.Pipeline
	snapshots SnapshotStore
	cache     cache.Cache
	metrics   *metrics.Metrics
	firstYear int
	now       func() time.Time
	logger    *zap.Logger

	snapshotMu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithSnapshots enables snapshot writes and distribution lookups.
func WithSnapshots(s SnapshotStore) Option { return func(svc *Service) { svc.snapshots = s } }

// WithCache sets the response cache.
func WithCache(c cache.Cache) Option { return func(svc *Service) { svc.cache = c } }

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option { return func(svc *Service) { svc.metrics = m } }

// WithFirstYear sets the lower bound of the all-time selection.
func WithFirstYear(y int) Option { return func(svc *Service) { svc.firstYear = y } }

// WithClock sets the clock that defines the current year.
func WithClock(now func() time.Time) Option { return func(svc *Service) { svc.now = now } }

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option { return func(svc *Service) { svc.logger = l } }

// New returns a service loading data with loader and ranking with p.
func New(loader Loader, p *ranking.Pipeline, opts ...Option) *Service {
	s := &Service{
		loader:    loader,
		pipeline:  p,
		cache:     cache.Nop{},
		metrics:   metrics.New(),
		firstYear: ranking.DefaultFirstYear,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Classifier returns the venue classifier used by the pipeline.
func (s *Service) Classifier() *venues.Classifier { return s.pipeline.Classifier() }

// Metrics returns the metrics sink.
func (s *Service) Metrics() *metrics.Metrics { return s.metrics }

// FullSelection returns the unfiltered selection: every venue from the
// first year through the current year.
func (s *Service) FullSelection() ranking.Selection {
	return ranking.FullSelection(s.Classifier(), s.firstYear, s.now())
}

// Rank loads the dataset and ranks it by sel. A missing dataset yields an
// empty ranking. When sel is the full selection and the ranking is not empty
// the snapshot is refreshed; a snapshot failure is logged and does not fail
// the request.
func (s *Service) Rank(ctx context.Context, sel ranking.Selection) (*Result, error) {
	runID := uuid.NewString()
	logger := s.logger.With(zap.String("run_id", runID))

	selKey, err := sel.Key(s.Classifier())
	if err != nil {
		return nil, err
	}

	loaded, err := s.loader.Load(ctx)
	if err != nil {
		if !errors.Is(err, dataset.ErrNoDataset) {
			return nil, fmt.Errorf("loading dataset: %w", err)
		}
		logger.Warn("no dataset available, ranking empty input", zap.Error(err))
		if loaded == nil {
			loaded = &dataset.Result{Dataset: types.Dataset{}, Origin: dataset.OriginNone}
		}
	}
	s.metrics.DatasetLoads.WithLabelValues(string(loaded.Origin)).Inc()
	s.metrics.InstitutionErrors.Add(float64(len(loaded.Rejected)))

	res := &Result{
		RunID:    runID,
		Origin:   loaded.Origin,
		Rejected: loaded.Rejected,
		Full:     sel.IsFull(s.Classifier(), s.firstYear, s.now()),
	}

	key := cache.Key(loaded.Path, fmt.Sprintf("%s|proximity=%g", selKey, s.pipeline.Proximity()))
	if !res.Full && loaded.Path != "" {
		if data, err := s.cache.Get(ctx, key); err == nil {
			s.metrics.CacheLookups.WithLabelValues(metrics.CacheHit).Inc()
			res.JSON, res.Cached = data, true
			return res, nil
		} else if !errors.Is(err, cache.ErrMiss) {
			logger.Warn("cache read failed", zap.Error(err))
		}
		s.metrics.CacheLookups.WithLabelValues(metrics.CacheMiss).Inc()
	}

	start := time.Now()
	r, err := s.pipeline.Run(loaded.Dataset, sel)
	s.metrics.ObserveRun(time.Since(start), err)
	if err != nil {
		return nil, err
	}
	res.Ranking = r

	res.JSON, err = json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encoding ranking: %w", err)
	}

	if res.Full {
		if len(r) == 0 {
			logger.Warn("empty ranking, keeping previous snapshot",
				zap.String("origin", string(res.Origin)))
		} else {
			res.Snapshot = s.writeSnapshot(ctx, r, logger)
		}
	} else if loaded.Path != "" {
		if err := s.cache.Set(ctx, key, res.JSON); err != nil {
			logger.Warn("cache write failed", zap.Error(err))
		}
	}

	logger.Info("ranking served",
		zap.String("origin", string(res.Origin)),
		zap.Int("institutions", len(r)),
		zap.Int("rejected", len(res.Rejected)),
		zap.Bool("full", res.Full))
	return res, nil
}

func (s *Service) writeSnapshot(ctx context.Context, r types.Ranking, logger *zap.Logger) *snapshot.Run {
	if s.snapshots == nil {
		return nil
	}
	s.snapshotMu.Lock()
	defer s.snapshotMu.Unlock()

	run, err := s.snapshots.Write(ctx, r, true)
	if err != nil {
		logger.Error("snapshot write failed", zap.Error(err))
		return nil
	}
	return &run
}

// Snapshot ranks the full selection and writes the snapshot. Unlike Rank it
// fails when the snapshot cannot be written, and with ErrEmptySnapshot when
// there was nothing to rank.
func (s *Service) Snapshot(ctx context.Context) (*Result, error) {
	if s.snapshots == nil {
		return nil, errors.New("snapshot store not configured")
	}
	res, err := s.Rank(ctx, s.FullSelection())
	if err != nil {
		return nil, err
	}
	if len(res.Ranking) == 0 {
		return res, ErrEmptySnapshot
	}
	if res.Snapshot == nil {
		return res, errors.New("snapshot was not written")
	}
	return res, nil
}

// Distribution returns the author's paper count per area from the last
// snapshot.
func (s *Service) Distribution(ctx context.Context, institution, author string) (map[string]int, error) {
	if s.snapshots == nil {
		return nil, snapshot.ErrNotFound
	}
	return s.snapshots.Distribution(ctx, institution, author)
}
