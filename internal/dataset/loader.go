// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset locates, refreshes and decodes the raw publication
// dataset. Loading walks a small state machine: check the local directory
// for a dated file, fetch a fresh copy from the remote source when the
// local one is stale or missing, fall back to the backup directory (and then
// to the stale file) when that fails, and report failure when nothing is
// left. A document that is not valid JSON yields an empty dataset.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/j-mckerracher/comp-sys-rankings/pkg/types"
)

// ErrNoDataset reports that no local, remote or backup dataset was found.
var ErrNoDataset = errors.New("no dataset found")

// State is a step of the loader state machine.
type State string

// Loader states.
const (
	StateCheckingLocal      State = "checking-local"
	StateFetchingRemote     State = "fetching-remote"
	StateFallingBackToCache State = "falling-back-to-cache"
	StateFailed             State = "failed"
)

// Origin names where a loaded dataset came from.
type Origin string

// Dataset origins.
const (
	OriginLocal  Origin = "local"
	OriginRemote Origin = "remote"
	OriginBackup Origin = "backup"
	OriginStale  Origin = "stale"
	OriginNone   Origin = "none"
)

// Defaults for DataConfig fields left at zero.
const (
	DefaultMaxAge       = 30 * 24 * time.Hour
	DefaultReadAttempts = 3
	DefaultReadBackoff  = time.Second
)

// Result is a loaded dataset together with its provenance.
type Result struct {
	Dataset  types.Dataset
	Rejected []*types.InstitutionError
	Origin   Origin
	Path     string
}

// Loader loads the dataset according to DataConfig.
type Loader struct {
	cfg    types.DataConfig
	source Source
	now    func() time.Time
	logger *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithSource sets the remote source used to refresh stale data.
func WithSource(s Source) LoaderOption {
	return func(l *Loader) { l.source = s }
}

// WithClock sets the clock used to judge file age.
func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) { l.now = now }
}

// WithLoaderLogger sets the loader logger.
func WithLoaderLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader returns a loader for cfg. Zero-valued limits take the package
// defaults.
func NewLoader(cfg types.DataConfig, opts ...LoaderOption) *Loader {
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultMaxAge
	}
	if cfg.ReadAttempts <= 0 {
		cfg.ReadAttempts = DefaultReadAttempts
	}
	if cfg.ReadBackoff <= 0 {
		cfg.ReadBackoff = DefaultReadBackoff
	}
	l := &Loader{cfg: cfg, now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load runs the state machine and decodes the chosen file. When every
// source fails it returns an empty dataset with ErrNoDataset.
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	path, origin, err := l.locate(ctx)
	if err != nil {
		l.transition(StateFailed, zap.Error(err))
		return &Result{Dataset: types.Dataset{}, Origin: OriginNone}, err
	}

	if err := l.waitFor(ctx, path); err != nil {
		if origin == OriginBackup {
			l.transition(StateFailed, zap.Error(err))
			return &Result{Dataset: types.Dataset{}, Origin: OriginNone}, fmt.Errorf("%w: %v", ErrNoDataset, err)
		}
		l.transition(StateFallingBackToCache, zap.String("path", path), zap.Error(err))
		backup, berr := FindBackup(l.cfg.BackupDir)
		if berr != nil {
			l.transition(StateFailed, zap.Error(berr))
			return &Result{Dataset: types.Dataset{}, Origin: OriginNone}, berr
		}
		path, origin = backup, OriginBackup
	}

	res, err := l.read(path)
	if err != nil {
		return nil, err
	}
	res.Origin = origin
	l.logger.Info("dataset loaded",
		zap.String("origin", string(origin)),
		zap.String("path", path),
		zap.Int("institutions", len(res.Dataset)),
		zap.Int("rejected", len(res.Rejected)))
	return res, nil
}

// locate picks the file to read and where it came from.
func (l *Loader) locate(ctx context.Context) (string, Origin, error) {
	l.transition(StateCheckingLocal, zap.String("dir", l.cfg.Dir))
	latest, err := FindLatest(l.cfg.Dir)
	haveLocal := err == nil
	if err != nil && !errors.Is(err, ErrNoDataset) {
		l.logger.Warn("listing local datasets", zap.Error(err))
	}
	if haveLocal && l.now().Sub(latest.Date) <= l.cfg.MaxAge {
		return latest.Path, OriginLocal, nil
	}

	if l.source != nil {
		l.transition(StateFetchingRemote, zap.Bool("stale_local", haveLocal))
		fetched, err := l.source.Fetch(ctx, l.cfg.Dir)
		if err == nil || fetched != "" {
			if err != nil {
				l.logger.Warn("remote promotion incomplete", zap.Error(err))
			}
			if haveLocal && latest.Path != fetched {
				if moved, rerr := Rotate(l.cfg.BackupDir, latest.Path); rerr != nil {
					l.logger.Warn("rotating backup", zap.String("path", latest.Path), zap.Error(rerr))
				} else {
					l.logger.Info("stale dataset moved to backup", zap.String("path", moved))
				}
			}
			return fetched, OriginRemote, nil
		}
		l.logger.Warn("remote fetch failed", zap.Error(err))
	}

	l.transition(StateFallingBackToCache, zap.String("backup_dir", l.cfg.BackupDir))
	if backup, err := FindBackup(l.cfg.BackupDir); err == nil {
		return backup, OriginBackup, nil
	}
	if haveLocal {
		l.logger.Warn("using stale dataset", zap.String("path", latest.Path), zap.Time("date", latest.Date))
		return latest.Path, OriginStale, nil
	}
	return "", OriginNone, ErrNoDataset
}

// waitFor retries until path exists, doubling the delay from ReadBackoff
// for up to ReadAttempts retries.
func (l *Loader) waitFor(ctx context.Context, path string) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = l.cfg.ReadBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	op := func() error {
		_, err := os.Stat(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		l.logger.Debug("waiting for dataset file", zap.String("path", path), zap.Duration("wait", wait))
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(l.cfg.ReadAttempts)), ctx)
	return backoff.RetryNotify(op, policy, notify)
}

func (l *Loader) read(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	ds, rejected, err := Decode(f)
	if err != nil {
		l.logger.Error("dataset is not valid JSON, using empty dataset", zap.String("path", path), zap.Error(err))
		return &Result{Dataset: types.Dataset{}, Path: path}, nil
	}
	for _, r := range rejected {
		l.logger.Warn("institution rejected", zap.String("institution", r.Institution), zap.Error(r.Err))
	}
	return &Result{Dataset: ds, Rejected: rejected, Path: path}, nil
}

func (l *Loader) transition(s State, fields ...zap.Field) {
	l.logger.Debug("dataset loader", append([]zap.Field{zap.String("state", string(s))}, fields...)...)
}
