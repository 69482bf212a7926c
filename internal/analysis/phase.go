package analysis

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Point is one (value, rate) pair of a phase portrait.
type Point struct{ X, Y float64 }

// PhasePortrait pairs each sample of a uniformly sampled series with its
// central-difference rate of change. The first and last samples have no
// centered neighbor and are skipped.
func PhasePortrait(series []float64, sampleDt float64) []Point {
	if len(series) < 3 || sampleDt <= 0 {
		return nil
	}
	points := make([]Point, 0, len(series)-2)
	for i := 1; i < len(series)-1; i++ {
		rate := (series[i+1] - series[i-1]) / (2 * sampleDt)
		if math.IsNaN(rate) || math.IsInf(rate, 0) {
			continue
		}
		points = append(points, Point{series[i], rate})
	}
	return points
}

// MeanCrossings counts how often the series crosses its own mean, a cheap
// cross-check of the dominant frequency: a periodic signal crosses twice
// per period.
func MeanCrossings(series []float64) int {
	if len(series) < 2 {
		return 0
	}
	mean := floats.Sum(series) / float64(len(series))
	n := 0
	prev := series[0] - mean
	for _, v := range series[1:] {
		cur := v - mean
		if (prev < 0 && cur >= 0) || (prev >= 0 && cur < 0) {
			n++
		}
		prev = cur
	}
	return n
}

// PhasePortraitToASCII scatters points onto a width x height character grid
// with axes drawn where they fall inside the plotted range.
func PhasePortraitToASCII(points []Point, width, height int) string {
	if len(points) == 0 || width < 2 || height < 2 {
		return ""
	}

	xs, ys := make([]float64, len(points)), make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	minX, maxX := padRange(floats.Min(xs), floats.Max(xs))
	minY, maxY := padRange(floats.Min(ys), floats.Max(ys))
	rangeX, rangeY := maxX-minX, maxY-minY

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	if minX <= 0 && maxX >= 0 {
		col := int(-minX / rangeX * float64(width-1))
		for row := range grid {
			grid[row][col] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int(-minY/rangeY*float64(height-1))
		for col := range grid[row] {
			if grid[row][col] == '│' {
				grid[row][col] = '┼'
			} else {
				grid[row][col] = '─'
			}
		}
	}
	for _, p := range points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			grid[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

func padRange(lo, hi float64) (float64, float64) {
	r := hi - lo
	if r == 0 {
		r = 1
	}
	return lo - 0.1*r, hi + 0.1*r
}
