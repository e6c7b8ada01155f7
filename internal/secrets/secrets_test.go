// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-mckerracher/comp-sys-rankings/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ObjectStoreAccessKeyID, "  AKIA123  \n")
				writeFile(t, dir, ObjectStoreSecretAccessKey, "s3cr3t")
				writeFile(t, dir, RedisPassword, "hunter2\n")
				return dir
			},
			want: map[string]string{
				ObjectStoreAccessKeyID:     "AKIA123",
				ObjectStoreSecretAccessKey: "s3cr3t",
				RedisPassword:              "hunter2",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, RedisPassword, "valid")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{RedisPassword: "valid"},
		},
		{
			name: "skips dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, ObjectStoreAccessKeyID, "real")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{ObjectStoreAccessKeyID: "real"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	writeFile(t, dir, ".env", "COMP_SYS_RANKINGS_OBJECT_STORE_ACCESS_KEY_ID=AKIA\n"+
		"COMP_SYS_RANKINGS_CACHE_PASSWORD=\"pw\"\n"+
		"UNRELATED=1\n")

	got, err := LoadEnvFile(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		ObjectStoreAccessKeyID: "AKIA",
		RedisPassword:          "pw",
	}, got)

	got, err = LoadEnvFile(filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestApply(t *testing.T) {
	cfg := types.Config{}
	cfg.ObjectStore.AccessKeyID = "from-config"

	Apply(&cfg, Merge(
		map[string]string{ObjectStoreAccessKeyID: "dir", ObjectStoreSecretAccessKey: "dir-secret"},
		map[string]string{RedisPassword: "env-pw", ObjectStoreSecretAccessKey: "env-secret"},
	))

	assert.Equal(t, "from-config", cfg.ObjectStore.AccessKeyID)
	assert.Equal(t, "env-secret", cfg.ObjectStore.SecretAccessKey)
	assert.Equal(t, "env-pw", cfg.Cache.Password)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
