package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"go.uber.org/zap"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Reader replays committed archive days.
type Reader struct {
	baseDir string
	logger  *zap.Logger
}

func NewReader(baseDir string, logger *zap.Logger) *Reader {
	return &Reader{baseDir: baseDir, logger: logger}
}

// Dates lists committed archive dates, newest first. Staging and other
// non-date entries are ignored.
func (r *Reader) Dates() ([]string, error) {
	entries, err := os.ReadDir(r.baseDir)
	if err != nil {
		return nil, fmt.Errorf("reading archive directory: %w", err)
	}

	var dates []string
	for _, entry := range entries {
		if entry.IsDir() && datePattern.MatchString(entry.Name()) {
			dates = append(dates, entry.Name())
		}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

// Read loads all of one ticker's records for a date, in capture order.
// Corrupt lines are skipped so a crash mid-write never poisons the day.
func (r *Reader) Read(date, ticker string) ([]Record, error) {
	path := filepath.Join(r.baseDir, date, ticker, "gex.jsonl")

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening day file: %w", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record Record
		if err := json.Unmarshal(line, &record); err != nil {
			r.logger.Warn("skipping corrupt record",
				zap.String("path", path),
				zap.Int("line", lineNum),
				zap.Error(err),
			)
			continue
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning day file: %w", err)
	}

	return records, nil
}
