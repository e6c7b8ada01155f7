// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileNameRoundTrip(t *testing.T) {
	d := time.Date(2026, time.March, 7, 0, 0, 0, 0, time.UTC)
	name := FileName(d)
	assert.Equal(t, "all-school-scores-final-March-7-2026.json", name)

	got, ok := ParseFileDate(name)
	require.True(t, ok)
	assert.True(t, d.Equal(got))
}

func TestParseFileDate(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
		want time.Time
	}{
		{"all-school-scores-final-December-25-2025.json", true, time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC)},
		{"all-school-scores-final-May-01-2024", true, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"all-school-scores-final-Smarch-1-2024.json", false, time.Time{}},
		{"scores-May-1-2024.json", false, time.Time{}},
		{"README.md", false, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFileDate(tt.name)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), got)
			}
		})
	}
}

func TestFindLatest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "all-school-scores-final-January-5-2026.json", "{}")
	writeFile(t, dir, "all-school-scores-final-March-7-2026.json", "{}")
	writeFile(t, dir, "all-school-scores-final-February-28-2026.json", "{}")
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "all-school-scores-final-April-1-2026.json"), 0o755))

	got, err := FindLatest(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "all-school-scores-final-March-7-2026.json"), got.Path)
	assert.Equal(t, time.March, got.Date.Month())
}

func TestFindLatestEmpty(t *testing.T) {
	_, err := FindLatest(t.TempDir())
	assert.ErrorIs(t, err, ErrNoDataset)

	_, err = FindLatest(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrNoDataset)
}

func TestFindBackup(t *testing.T) {
	dir := t.TempDir()
	_, err := FindBackup(dir)
	assert.ErrorIs(t, err, ErrNoDataset)

	writeFile(t, dir, "README", "notes")
	writeFile(t, dir, ".legacy.json.swp", "swap")
	_, err = FindBackup(dir)
	assert.ErrorIs(t, err, ErrNoDataset)

	writeFile(t, dir, "legacy.json", "{}")
	got, err := FindBackup(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "legacy.json"), got)

	writeFile(t, dir, "all-school-scores-final-May-1-2025.json", "{}")
	got, err = FindBackup(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "all-school-scores-final-May-1-2025.json"), got)
}

func TestRotate(t *testing.T) {
	dataDir := t.TempDir()
	backupDir := filepath.Join(t.TempDir(), "backup")
	require.NoError(t, os.MkdirAll(backupDir, 0o755))
	writeFile(t, backupDir, "all-school-scores-final-May-1-2025.json", "old")
	writeFile(t, backupDir, "stray.json", "stray")
	writeFile(t, dataDir, "all-school-scores-final-January-5-2026.json", "current")

	moved, err := Rotate(backupDir, filepath.Join(dataDir, "all-school-scores-final-January-5-2026.json"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(backupDir, "all-school-scores-final-January-5-2026.json"), moved)

	entries, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "all-school-scores-final-January-5-2026.json", entries[0].Name())

	data, err := os.ReadFile(moved)
	require.NoError(t, err)
	assert.Equal(t, "current", string(data))
	assert.NoFileExists(t, filepath.Join(dataDir, "all-school-scores-final-January-5-2026.json"))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}
