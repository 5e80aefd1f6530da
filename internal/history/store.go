// Package history archives captured exposure profiles as per-day JSONL
// files. Records land in a staging tree during a session and are committed
// to their final location when the session closes, so readers never see a
// half-written day.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dgnsrekt/byma-gex-api/internal/analytics"
)

// Record is one archived exposure capture.
type Record struct {
	CapturedAt time.Time          `json:"captured_at"`
	Gex        *analytics.GexView `json:"gex"`
}

// Store manages the on-disk archive layout:
// <dir>/<YYYY-MM-DD>/<TICKER>/gex.jsonl, staged under <dir>/.staging.
type Store struct {
	baseDir     string
	stagingRoot string
}

func NewStore(baseDir string) *Store {
	return &Store{
		baseDir:     baseDir,
		stagingRoot: filepath.Join(baseDir, ".staging"),
	}
}

func (s *Store) FinalDir() string {
	return s.baseDir
}

func (s *Store) StagingDir(date string) string {
	return filepath.Join(s.stagingRoot, date)
}

// Append stages one record at the end of the ticker's day file.
func (s *Store) Append(date, ticker string, record Record) error {
	path := filepath.Join(s.StagingDir(date), ticker, "gex.jsonl")
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("creating directories: %w", err)
	}

	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		return fmt.Errorf("opening day file: %w", err)
	}

	_, err = f.Write(append(line, '\n'))
	if closeErr := f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("writing record: %w", err)
	}

	return nil
}

// Commit moves a day's staged files into the final tree.
func (s *Store) Commit(date string) error {
	stagingDir := s.StagingDir(date)
	finalDir := filepath.Join(s.baseDir, date)

	return filepath.Walk(stagingDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(stagingDir, path)
		if err != nil {
			return err
		}

		destPath := filepath.Join(finalDir, relPath)
		if err := os.MkdirAll(filepath.Dir(destPath), 0750); err != nil {
			return err
		}

		return os.Rename(path, destPath)
	})
}

// Cleanup removes a day's staging tree.
func (s *Store) Cleanup(date string) error {
	return os.RemoveAll(s.StagingDir(date))
}
