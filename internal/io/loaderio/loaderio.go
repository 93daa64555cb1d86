package loaderio

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/gnames/gnbarcode/internal/ent/loader"
	"github.com/gnames/gnbarcode/pkg/config"
	"github.com/gnames/gnbarcode/pkg/ent/record"
)

// loaderio is a struct that implements loader.Loader interface.
type loaderio struct {
	cfg config.Config

	mu       sync.Mutex
	warnings []record.Warning
}

// New returns a new instance of Loader.
func New(cfg config.Config) loader.Loader {
	res := loaderio{cfg: cfg}
	return &res
}

// Warnings returns data-quality findings collected during loads.
func (l *loaderio) Warnings() []record.Warning {
	l.mu.Lock()
	defer l.mu.Unlock()
	res := make([]record.Warning, len(l.warnings))
	copy(res, l.warnings)
	return res
}

func (l *loaderio) warn(stage, kind, detail string) {
	l.mu.Lock()
	l.warnings = append(l.warnings, record.Warning{
		Stage:  stage,
		Kind:   kind,
		Detail: detail,
	})
	l.mu.Unlock()
	slog.Warn("Data problem", "stage", stage, "kind", kind, "detail", detail)
}

// openTSV opens a tab-delimited file and resolves its header into a
// column index. A missing file is the only fatal load condition.
func (l *loaderio) openTSV(fileName string) (*csv.Reader, *os.File, map[string]int, error) {
	path := filepath.Join(l.cfg.DataDir, fileName)
	f, err := os.Open(path)
	if err != nil {
		slog.Error("Cannot open tsv file", "error", err, "path", path)
		return nil, nil, nil, err
	}
	r := csv.NewReader(f)
	r.Comma = '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		f.Close()
		slog.Error("Cannot read tsv header", "error", err, "path", path)
		return nil, nil, nil, err
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[h] = i
	}
	return r, f, cols, nil
}

// field returns a cell by column name; rows shorter than the header
// yield an empty string.
func field(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// requireCols verifies that a file carries every column the pipeline
// reads from it.
func requireCols(cols map[string]int, fileName string, names ...string) error {
	for _, n := range names {
		if _, ok := cols[n]; !ok {
			return fmt.Errorf("file %s misses column %q", fileName, n)
		}
	}
	return nil
}

// intField parses an integer cell. Empty or malformed cells come back
// nil; malformed ones also produce a warning.
func (l *loaderio) intField(row []string, cols map[string]int, name, stage, seqID string) *int {
	s := field(row, cols, name)
	if s == "" || s == "None" || s == "NA" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		l.warn(stage, "parse-number",
			fmt.Sprintf("record %s: column %s: %q is not an integer", seqID, name, s))
		return nil
	}
	return &v
}

// strField returns a nullable string cell; empty and "None" mean
// missing.
func strField(row []string, cols map[string]int, name string) *string {
	s := field(row, cols, name)
	if s == "" || s == "None" {
		return nil
	}
	return &s
}
