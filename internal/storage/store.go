package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	seriesFile    = "series.csv"
	positionsFile = "positions.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string                     `json:"id"`
	Name      string                     `json:"name"`
	Timestamp time.Time                  `json:"timestamp"`
	Steps     int                        `json:"steps"`
	Config    *config.Config             `json:"config"`
	Metrics   map[string]float64         `json:"metrics"`
	Summaries map[string]metrics.Summary `json:"summaries"`
	Errors    []string                   `json:"errors,omitempty"`
}

// NewMetadata describes a finished run. Non-finite metric values are left
// out since JSON cannot carry them.
func NewMetadata(name string, cfg *config.Config, result *sim.Result) RunMetadata {
	meta := RunMetadata{
		Name:      name,
		Timestamp: time.Now(),
		Steps:     result.StepsTaken,
		Config:    cfg,
		Metrics:   make(map[string]float64, len(result.Metrics)),
		Summaries: make(map[string]metrics.Summary),
	}
	for k, v := range result.Metrics {
		if finite(v) {
			meta.Metrics[k] = v
		}
	}
	for _, col := range append([]string{"tip"}, result.MetricNames...) {
		sum := metrics.Summarize(result.Series(col))
		if finite(sum.Mean) && finite(sum.StdDev) && finite(sum.Min) && finite(sum.Max) && finite(sum.Final) {
			meta.Summaries[col] = sum
		}
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}
	return meta
}

// Save writes a run directory holding metadata, the sampled series and the
// final particle positions. It returns the run id.
func (s *Store) Save(name string, cfg *config.Config, result *sim.Result) (string, error) {
	meta := NewMetadata(name, cfg, result)
	meta.ID = fmt.Sprintf("%s_%d", name, meta.Timestamp.UnixNano())
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeSeries(filepath.Join(runDir, seriesFile), result); err != nil {
		return "", err
	}
	if err := writePositions(filepath.Join(runDir, positionsFile), cfg.Cloth.GridW, result.Final); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// Series is a stored time series table.
type Series struct {
	Columns []string
	Rows    [][]float64
}

// Column returns one column by name, or nil when absent.
func (s *Series) Column(name string) []float64 {
	for c, n := range s.Columns {
		if n != name {
			continue
		}
		out := make([]float64, len(s.Rows))
		for i, row := range s.Rows {
			if c < len(row) {
				out[i] = row[c]
			}
		}
		return out
	}
	return nil
}

func (s *Store) LoadSeries(runID string) (*Series, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Series{}, nil
	}

	series := &Series{Columns: records[0], Rows: make([][]float64, 0, len(records)-1)}
	for _, record := range records[1:] {
		row := make([]float64, len(record))
		for j, field := range record {
			row[j], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("run %s: %w", runID, err)
			}
		}
		series.Rows = append(series.Rows, row)
	}
	return series, nil
}

// LoadPositions returns the final frame of a run in particle index order.
func (s *Store) LoadPositions(runID string) ([]mgl64.Vec3, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, positionsFile))
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []mgl64.Vec3{}, nil
	}

	out := make([]mgl64.Vec3, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != 6 {
			return nil, fmt.Errorf("run %s: malformed position row %v", runID, record)
		}
		var p mgl64.Vec3
		for a := 0; a < 3; a++ {
			p[a], err = strconv.ParseFloat(record[3+a], 64)
			if err != nil {
				return nil, fmt.Errorf("run %s: %w", runID, err)
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSeries(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"time", "tip"}, result.MetricNames...)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, sample := range result.Samples {
		row := []string{formatFloat(sample.Time), formatFloat(sample.Tip)}
		for _, v := range sample.Metrics {
			row = append(row, formatFloat(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writePositions(path string, gridW int, positions []mgl64.Vec3) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"k", "i", "j", "x", "y", "z"}); err != nil {
		return err
	}
	for k, p := range positions {
		i, j := k, 0
		if gridW > 0 {
			i, j = k%gridW, k/gridW
		}
		row := []string{strconv.Itoa(k), strconv.Itoa(i), strconv.Itoa(j),
			formatFloat(p.X()), formatFloat(p.Y()), formatFloat(p.Z())}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
