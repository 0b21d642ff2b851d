package embedding

import (
	"math"
	"testing"
)

func TestFitTransformMoments(t *testing.T) {
	matrix := [][]float64{
		{1, 10, 100},
		{2, 20, 100},
		{3, 30, 100},
		{4, 40, 100},
	}

	stats := Fit(matrix)
	out := Standardize(matrix, stats)

	// 标准化后每个非零方差维度的均值应为 0、方差为 1
	for d := 0; d < 2; d++ {
		var sum, sumSq float64
		for _, row := range out {
			sum += row[d]
			sumSq += row[d] * row[d]
		}
		n := float64(len(out))
		mean := sum / n
		variance := sumSq/n - mean*mean

		if math.Abs(mean) > 1e-9 {
			t.Errorf("dim %d: mean = %v, want ~0", d, mean)
		}
		if math.Abs(variance-1) > 1e-9 {
			t.Errorf("dim %d: variance = %v, want ~1", d, variance)
		}
	}
}

func TestZeroVarianceDim(t *testing.T) {
	matrix := [][]float64{
		{1, 5},
		{2, 5},
		{3, 5},
	}

	stats := Fit(matrix)
	out := Standardize(matrix, stats)

	// 零方差维度整列置 0，不产生 NaN/Inf
	for i, row := range out {
		if row[1] != 0 {
			t.Errorf("row %d: zero-variance dim = %v, want 0", i, row[1])
		}
		for d, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("row %d dim %d: got %v", i, d, v)
			}
		}
	}
}

func TestTransformUsesFittedStats(t *testing.T) {
	matrix := [][]float64{
		{0, 0},
		{2, 4},
	}
	stats := Fit(matrix)

	// mean=(1,2), std=(1,2)
	got := stats.Transform([]float64{3, 6})
	want := []float64{2, 2}
	for d := range want {
		if math.Abs(got[d]-want[d]) > 1e-9 {
			t.Errorf("dim %d: got %v, want %v", d, got[d], want[d])
		}
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"zero vector", []float64{0, 0}, []float64{1, 2}, 0},
		{"both zero", []float64{0, 0}, []float64{0, 0}, 0},
		{"length mismatch", []float64{1, 2}, []float64{1}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine() = %v, want %v", got, tt.want)
			}
			if got < -1-1e-9 || got > 1+1e-9 {
				t.Errorf("Cosine() = %v, out of [-1, 1]", got)
			}
		})
	}
}
