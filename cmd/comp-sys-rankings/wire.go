// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/j-mckerracher/comp-sys-rankings/internal/cache"
	"github.com/j-mckerracher/comp-sys-rankings/internal/dataset"
	"github.com/j-mckerracher/comp-sys-rankings/internal/metrics"
	"github.com/j-mckerracher/comp-sys-rankings/internal/ranking"
	"github.com/j-mckerracher/comp-sys-rankings/internal/service"
	"github.com/j-mckerracher/comp-sys-rankings/internal/snapshot"
	"github.com/j-mckerracher/comp-sys-rankings/internal/venues"
	"github.com/j-mckerracher/comp-sys-rankings/pkg/types"
)

// serviceOptions selects the optional collaborators a command needs.
type serviceOptions struct {
	snapshots bool
	cache     bool
}

// newService wires the dataset loader, pipeline and optional collaborators
// from cfg. The returned cleanup releases them.
func newService(ctx context.Context, c types.Config, opts serviceOptions) (*service.Service, func(), error) {
	classifier := venues.Default()
	pipeline := ranking.NewPipeline(classifier,
		ranking.WithProximity(c.Ranking.ProximityPct),
		ranking.WithLogger(logger.Named("ranking")))

	loaderOpts := []dataset.LoaderOption{dataset.WithLoaderLogger(logger.Named("dataset"))}
	source, err := remoteSource(c)
	if err != nil {
		return nil, nil, err
	}
	if source != nil {
		loaderOpts = append(loaderOpts, dataset.WithSource(source))
	}
	loader := dataset.NewLoader(c.Data, loaderOpts...)

	svcOpts := []service.Option{
		service.WithFirstYear(c.Ranking.FirstYear),
		service.WithMetrics(metrics.New()),
		service.WithLogger(logger.Named("service")),
	}
	var closers []func()

	if opts.snapshots {
		store, err := snapshot.Open(c.Snapshot, classifier.Areas(), logger.Named("snapshot"))
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { store.Close() })
		svcOpts = append(svcOpts, service.WithSnapshots(store))
	}

	if opts.cache && c.Cache.RedisAddr != "" {
		rc, err := cache.NewRedis(ctx, c.Cache, logger.Named("cache"))
		if err != nil {
			logger.Warn("response cache disabled", zap.Error(err))
		} else {
			svcOpts = append(svcOpts, service.WithCache(rc))
		}
	}

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return service.New(loader, pipeline, svcOpts...), cleanup, nil
}

// remoteSource returns the configured refresh source: an HTTP URL when set,
// otherwise the object store when enabled, otherwise nil.
func remoteSource(c types.Config) (dataset.Source, error) {
	if c.Data.URL != "" {
		return &dataset.HTTPSource{URL: c.Data.URL, Logger: logger.Named("http")}, nil
	}
	if !c.ObjectStore.Enabled() {
		return nil, nil
	}
	store, err := dataset.NewMinioStore(c.ObjectStore)
	if err != nil {
		return nil, err
	}
	return &dataset.StoreSource{
		Store:         store,
		CurrentPrefix: c.ObjectStore.CurrentPrefix,
		BackupPrefix:  c.ObjectStore.BackupPrefix,
		Logger:        logger.Named("object-store"),
	}, nil
}
