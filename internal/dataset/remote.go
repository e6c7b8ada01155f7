// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrRemoteNotSingle reports a current/ prefix holding zero or several
// objects; the newest dataset must be the only object there.
var ErrRemoteNotSingle = errors.New("remote current prefix must hold exactly one object")

// Source fetches a fresh dataset file into dir and returns its path.
type Source interface {
	Fetch(ctx context.Context, dir string) (string, error)
}

// ObjectStore is the subset of an S3-compatible bucket the remote source
// needs. Keys are full object names.
type ObjectStore interface {
	List(ctx context.Context, prefix string) ([]string, error)
	Download(ctx context.Context, key, dst string) error
	Copy(ctx context.Context, srcKey, dstKey string) error
	Remove(ctx context.Context, key string) error
}

// StoreSource promotes the single object under CurrentPrefix: it downloads
// the object, copies it under BackupPrefix, and removes it from
// CurrentPrefix.
type StoreSource struct {
	Store         ObjectStore
	CurrentPrefix string
	BackupPrefix  string
	Logger        *zap.Logger
}

// Fetch implements Source.
func (s *StoreSource) Fetch(ctx context.Context, dir string) (string, error) {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	keys, err := s.Store.List(ctx, s.CurrentPrefix)
	if err != nil {
		return "", fmt.Errorf("listing %s: %w", s.CurrentPrefix, err)
	}
	if len(keys) != 1 {
		return "", fmt.Errorf("%w: found %d under %s", ErrRemoteNotSingle, len(keys), s.CurrentPrefix)
	}
	key := keys[0]
	name := path.Base(strings.TrimPrefix(key, s.CurrentPrefix))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating dataset directory: %w", err)
	}
	dst := filepath.Join(dir, name)
	if err := s.Store.Download(ctx, key, dst); err != nil {
		return "", fmt.Errorf("downloading %s: %w", key, err)
	}
	logger.Info("dataset downloaded", zap.String("key", key), zap.String("path", dst))

	backupKey := s.BackupPrefix + name
	if err := s.Store.Copy(ctx, key, backupKey); err != nil {
		return dst, fmt.Errorf("copying %s to %s: %w", key, backupKey, err)
	}
	if err := s.Store.Remove(ctx, key); err != nil {
		return dst, fmt.Errorf("removing %s: %w", key, err)
	}
	logger.Info("remote dataset moved to backup", zap.String("key", backupKey))
	return dst, nil
}
