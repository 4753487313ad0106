package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntStats(t *testing.T) {
	tests := []struct {
		name             string
		xs               []int
		wantAvg          float64
		wantMax, wantMin int
		wantStdDev       float64
		tScoreOf         int
		wantTScore       float64
	}{
		{name: "empty", xs: nil, wantAvg: 0, wantMax: 0, wantMin: 0, wantStdDev: 0, tScoreOf: 0, wantTScore: 50},
		{name: "single", xs: []int{70}, wantAvg: 70, wantMax: 70, wantMin: 70, wantStdDev: 0, tScoreOf: 70, wantTScore: 50},
		{name: "all equal", xs: []int{80, 80, 80}, wantAvg: 80, wantMax: 80, wantMin: 80, wantStdDev: 0, tScoreOf: 80, wantTScore: 50},
		{name: "spread (top)", xs: []int{40, 60}, wantAvg: 50, wantMax: 60, wantMin: 40, wantStdDev: 10, tScoreOf: 60, wantTScore: 60},
		{name: "spread (bottom)", xs: []int{40, 60}, wantAvg: 50, wantMax: 60, wantMin: 40, wantStdDev: 10, tScoreOf: 40, wantTScore: 40},
		{name: "zeros count", xs: []int{0, 0, 150, 50}, wantAvg: 50, wantMax: 150, wantMin: 0, wantStdDev: math.Sqrt(3750), tScoreOf: 150, wantTScore: 100/math.Sqrt(3750)*10 + 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avg := AverageInt(tt.xs, 0)
			assert.Equal(t, tt.wantAvg, avg)
			assert.Equal(t, tt.wantMax, MaxInt(tt.xs, 0))
			assert.Equal(t, tt.wantMin, MinInt(tt.xs, 0))
			assert.InDelta(t, tt.wantStdDev, StdDevInt(tt.xs, avg), 1e-9)
			assert.InDelta(t, tt.wantTScore, TScoreInt(tt.tScoreOf, tt.xs), 1e-9)
		})
	}
}

func TestSumFloat64(t *testing.T) {
	xs := make([]float64, 0, 10001)
	xs = append(xs, 1e8)
	for i := 0; i < 10000; i++ {
		xs = append(xs, 1e-8)
	}
	assert.InDelta(t, 1e8+1e-4, SumFloat64(xs), 2e-8)

	var naive float64
	for _, v := range xs {
		naive += v
	}
	assert.NotEqual(t, naive, SumFloat64(xs), "naive summation is expected to drift")

	assert.Equal(t, 0.0, SumFloat64(nil))
}

func TestFloatStats(t *testing.T) {
	tests := []struct {
		name             string
		xs               []float64
		wantAvg          float64
		wantMax, wantMin float64
		tScoreOf         float64
		wantTScore       float64
	}{
		{name: "empty", xs: nil, tScoreOf: 1.5, wantTScore: 50},
		{name: "single", xs: []float64{1.5}, wantAvg: 1.5, wantMax: 1.5, wantMin: 1.5, tScoreOf: 1.5, wantTScore: 50},
		{name: "all equal", xs: []float64{0.1, 0.1, 0.1}, wantAvg: 0.1, wantMax: 0.1, wantMin: 0.1, tScoreOf: 0.1, wantTScore: 50},
		{name: "spread", xs: []float64{1, 3}, wantAvg: 2, wantMax: 3, wantMin: 1, tScoreOf: 3, wantTScore: 60},
		{name: "outsider", xs: []float64{1, 3}, wantAvg: 2, wantMax: 3, wantMin: 1, tScoreOf: 2, wantTScore: 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.wantAvg, AverageFloat64(tt.xs, 0), 1e-12)
			assert.Equal(t, tt.wantMax, MaxFloat64(tt.xs, 0))
			assert.Equal(t, tt.wantMin, MinFloat64(tt.xs, 0))
			assert.InDelta(t, tt.wantTScore, TScoreFloat64(tt.tScoreOf, tt.xs), 1e-9)
		})
	}
}

func TestIsAllEqualFloat64(t *testing.T) {
	assert.True(t, IsAllEqualFloat64(nil))
	assert.True(t, IsAllEqualFloat64([]float64{2.25}))
	assert.True(t, IsAllEqualFloat64([]float64{2.25, 2.25}))
	assert.False(t, IsAllEqualFloat64([]float64{2.25, 2.25, math.Nextafter(2.25, 3)}))
}
