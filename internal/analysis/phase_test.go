package analysis

import (
	"math"
	"strings"
	"testing"
)

func TestPhasePortraitRates(t *testing.T) {
	series := []float64{0, 1, 2, 3, 4}
	points := PhasePortrait(series, 0.5)
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	for i, p := range points {
		if p.X != float64(i+1) || p.Y != 2 {
			t.Errorf("point %d = %+v, want (%d, 2)", i, p, i+1)
		}
	}

	if PhasePortrait(series[:2], 0.5) != nil {
		t.Error("expected nil for too-short series")
	}
}

func TestMeanCrossings(t *testing.T) {
	const dt, hz = 0.01, 4.0
	data := make([]float64, 500)
	for i := range data {
		data[i] = math.Sin(2*math.Pi*hz*float64(i)*dt + 0.3)
	}
	if n := MeanCrossings(data); n < 38 || n > 42 {
		t.Errorf("expected about 40 crossings, got %d", n)
	}
	if n := MeanCrossings([]float64{1, 1, 1}); n != 0 {
		t.Errorf("constant series crossed %d times", n)
	}
}

func TestPhasePortraitToASCII(t *testing.T) {
	points := []Point{{-1, -1}, {1, 1}}
	out := PhasePortraitToASCII(points, 21, 11)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 11 {
		t.Fatalf("expected 11 rows, got %d", len(lines))
	}
	if strings.Count(out, "•") != 2 {
		t.Errorf("expected 2 points plotted:\n%s", out)
	}
	if !strings.Contains(out, "┼") {
		t.Errorf("expected axes to cross:\n%s", out)
	}
	if PhasePortraitToASCII(nil, 10, 10) != "" {
		t.Error("expected empty plot for no points")
	}
}
