package storage

import (
	"encoding/json"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/sim"
)

type ExportData struct {
	RunMetadata
	Columns   []string     `json:"columns"`
	Rows      [][]float64  `json:"rows"`
	Positions []mgl64.Vec3 `json:"positions"`
}

// ExportJSON writes a finished run as a single JSON document.
func ExportJSON(w io.Writer, name string, cfg *config.Config, result *sim.Result) error {
	data := ExportData{
		RunMetadata: NewMetadata(name, cfg, result),
		Columns:     append([]string{"time", "tip"}, result.MetricNames...),
		Rows:        make([][]float64, 0, len(result.Samples)),
		Positions:   result.Final,
	}
	for _, s := range result.Samples {
		row := append([]float64{s.Time, s.Tip}, s.Metrics...)
		if !allFinite(row) {
			continue
		}
		data.Rows = append(data.Rows, row)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportStored writes a run already on disk as a single JSON document.
func (s *Store) ExportStored(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	series, err := s.LoadSeries(runID)
	if err != nil {
		return err
	}
	positions, err := s.LoadPositions(runID)
	if err != nil {
		return err
	}

	data := ExportData{RunMetadata: *meta, Columns: series.Columns, Positions: positions}
	for _, row := range series.Rows {
		if allFinite(row) {
			data.Rows = append(data.Rows, row)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func allFinite(row []float64) bool {
	for _, v := range row {
		if !finite(v) {
			return false
		}
	}
	return true
}
