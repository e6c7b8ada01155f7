// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files and
// from an optional .env file. Each file in the directory represents one
// secret: the filename is the key name and the file contents (trimmed) are
// the value.
//
// Recognized keys: object-store-access-key-id, object-store-secret-access-key,
// redis-password.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/j-mckerracher/comp-sys-rankings/pkg/types"
)

// Secret key names.
const (
	ObjectStoreAccessKeyID     = "object-store-access-key-id"
	ObjectStoreSecretAccessKey = "object-store-secret-access-key"
	RedisPassword              = "redis-password"
)

// envNames maps each secret key to the environment variable that may carry
// it in a .env file.
var envNames = map[string]string{
	ObjectStoreAccessKeyID:     "COMP_SYS_RANKINGS_OBJECT_STORE_ACCESS_KEY_ID",
	ObjectStoreSecretAccessKey: "COMP_SYS_RANKINGS_OBJECT_STORE_SECRET_ACCESS_KEY",
	RedisPassword:              "COMP_SYS_RANKINGS_CACHE_PASSWORD",
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string, logger *zap.Logger) (map[string]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadEnvFile reads a .env file and returns the recognized secrets it
// defines, keyed by secret name. A missing file yields an empty map.
func LoadEnvFile(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	out := make(map[string]string)
	for key, envName := range envNames {
		if v := strings.TrimSpace(env[envName]); v != "" {
			out[key] = v
		}
	}
	return out, nil
}

// Merge returns the union of the given maps. Later maps win.
func Merge(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// Apply fills empty credential fields of cfg from secrets. Values already
// set by configuration are left alone.
func Apply(cfg *types.Config, secrets map[string]string) {
	if cfg.ObjectStore.AccessKeyID == "" {
		cfg.ObjectStore.AccessKeyID = secrets[ObjectStoreAccessKeyID]
	}
	if cfg.ObjectStore.SecretAccessKey == "" {
		cfg.ObjectStore.SecretAccessKey = secrets[ObjectStoreSecretAccessKey]
	}
	if cfg.Cache.Password == "" {
		cfg.Cache.Password = secrets[RedisPassword]
	}
}
