package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Cloth.GridW, cfg.Cloth.GridH = 2, 2
	cfg.Seed = 42
	return cfg
}

func testResult() *sim.Result {
	return &sim.Result{
		MetricNames: []string{"kinetic", "sag"},
		Samples: []sim.Sample{
			{Time: 0, Tip: 0, Metrics: []float64{0, 0}},
			{Time: 0.5, Tip: 0.25, Metrics: []float64{1.5, 0.1}},
		},
		Metrics: map[string]float64{"kinetic": 1.5, "sag": 0.1, "peak_strain": math.Inf(-1)},
		Final: []mgl64.Vec3{
			{0, 0, 0}, {1, 0, 0.5},
			{0, 1, 0}, {1, 1, -0.25},
		},
		StepsTaken: 30,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runID, err := st.Save("flag", testConfig(), testResult())
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, "flag", meta.Name)
	assert.Equal(t, int64(42), meta.Config.Seed)
	assert.Equal(t, 30, meta.Steps)
	assert.Equal(t, 1.5, meta.Metrics["kinetic"])
	assert.NotContains(t, meta.Metrics, "peak_strain")
	assert.InDelta(t, 0.125, meta.Summaries["tip"].Mean, 1e-12)
	assert.Equal(t, 0.25, meta.Summaries["tip"].Final)
}

func TestStoreSeries(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save("flag", testConfig(), testResult())
	require.NoError(t, err)

	series, err := st.LoadSeries(runID)
	require.NoError(t, err)
	assert.Equal(t, []string{"time", "tip", "kinetic", "sag"}, series.Columns)
	require.Len(t, series.Rows, 2)
	assert.Equal(t, []float64{0, 0.5}, series.Column("time"))
	assert.Equal(t, []float64{0, 1.5}, series.Column("kinetic"))
	assert.Nil(t, series.Column("missing"))
}

func TestStorePositions(t *testing.T) {
	st := New(t.TempDir())
	result := testResult()
	runID, err := st.Save("flag", testConfig(), result)
	require.NoError(t, err)

	positions, err := st.LoadPositions(runID)
	require.NoError(t, err)
	assert.Equal(t, result.Final, positions)

	raw, err := os.ReadFile(filepath.Join(st.baseDir, runID, positionsFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "3,1,1,1,1,-0.25")
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	first, err := st.Save("a", testConfig(), testResult())
	require.NoError(t, err)
	second, err := st.Save("b", testConfig(), testResult())
	require.NoError(t, err)

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first, runs[0].ID)
	assert.Equal(t, second, runs[1].ID)
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreLoadMissing(t *testing.T) {
	_, err := New(t.TempDir()).Load("nope")
	assert.Error(t, err)
}

func TestMetadataErrors(t *testing.T) {
	result := testResult()
	result.Errors = []error{&dynamo.SimError{Step: 3, Time: 0.05, Err: dynamo.ErrUnstable}}

	meta := NewMetadata("flag", testConfig(), result)
	require.Len(t, meta.Errors, 1)
	assert.Contains(t, meta.Errors[0], "step 3")
	assert.True(t, errors.Is(result.Errors[0], dynamo.ErrUnstable))
}

func TestExportJSON(t *testing.T) {
	result := testResult()
	result.Samples = append(result.Samples, sim.Sample{Time: 1, Tip: math.NaN(), Metrics: []float64{0, 0}})

	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, "flag", testConfig(), result))

	var data ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, "flag", data.Name)
	assert.Len(t, data.Rows, 2)
	assert.Equal(t, result.Final, data.Positions)
}

func TestExportStored(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save("flag", testConfig(), testResult())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, st.ExportStored(&buf, runID))

	var data ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, runID, data.ID)
	assert.Equal(t, []string{"time", "tip", "kinetic", "sag"}, data.Columns)
	assert.Len(t, data.Positions, 4)
}
