// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// FilePrefix starts every dataset file name.
const FilePrefix = "all-school-scores-final-"

const fileDateLayout = "January-2-2006"

var fileDate = regexp.MustCompile(`all-school-scores-final-([A-Za-z]+)-(\d{1,2})-(\d{4})`)

// LocalFile is a dataset file found on disk together with the date encoded
// in its name.
type LocalFile struct {
	Path string
	Date time.Time
}

// FileName returns the dataset file name for date t, e.g.
// all-school-scores-final-March-7-2026.json.
func FileName(t time.Time) string {
	return FilePrefix + t.Format(fileDateLayout) + ".json"
}

// ParseFileDate extracts the date from a dataset file name.
func ParseFileDate(name string) (time.Time, bool) {
	m := fileDate.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse("January 2 2006", m[1]+" "+m[2]+" "+m[3])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FindLatest returns the dated dataset file in dir with the newest encoded
// date. Ties are broken by file name. It returns ErrNoDataset when dir holds
// no dataset file or does not exist.
func FindLatest(dir string) (LocalFile, error) {
	files, err := listDated(dir)
	if err != nil {
		return LocalFile{}, err
	}
	if len(files) == 0 {
		return LocalFile{}, fmt.Errorf("%w in %s", ErrNoDataset, dir)
	}
	return files[0], nil
}

// FindBackup returns the file held in the backup directory. A dated file is
// preferred; otherwise the first regular .json file by name is used.
func FindBackup(dir string) (string, error) {
	if latest, err := FindLatest(dir); err == nil {
		return latest.Path, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("reading backup directory %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("%w in backup %s", ErrNoDataset, dir)
}

// Rotate moves path into backupDir and removes every other file there, so
// the backup directory holds only the most recently replaced dataset.
func Rotate(backupDir, path string) (string, error) {
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}
	name := filepath.Base(path)
	dst := filepath.Join(backupDir, name)
	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("replacing backup %s: %w", dst, err)
	}
	if err := os.Rename(path, dst); err != nil {
		return "", fmt.Errorf("moving %s to backup: %w", path, err)
	}

	entries, err := os.ReadDir(backupDir)
	if err != nil {
		return dst, fmt.Errorf("reading backup directory: %w", err)
	}
	var errs []error
	for _, e := range entries {
		if e.Name() == name || !e.Type().IsRegular() {
			continue
		}
		if err := os.Remove(filepath.Join(backupDir, e.Name())); err != nil {
			errs = append(errs, err)
		}
	}
	return dst, errors.Join(errs...)
}

func listDated(dir string) ([]LocalFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading dataset directory %s: %w", dir, err)
	}
	var files []LocalFile
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		date, ok := ParseFileDate(e.Name())
		if !ok {
			continue
		}
		files = append(files, LocalFile{Path: filepath.Join(dir, e.Name()), Date: date})
	}
	sort.Slice(files, func(i, j int) bool {
		if !files[i].Date.Equal(files[j].Date) {
			return files[i].Date.After(files[j].Date)
		}
		return files[i].Path < files[j].Path
	})
	return files, nil
}
