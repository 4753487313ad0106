// Package stats holds the population statistics used by grade reports:
// averages, extremes, population standard deviation and T-scores (deviation values).
//
// Every function taking an `or` argument returns it for an empty population.
package stats

import "math"

// ----- int -----

func AverageInt(xs []int, or float64) float64 {
	if len(xs) == 0 {
		return or
	}
	var sum int
	for _, v := range xs {
		sum += v
	}
	return float64(sum) / float64(len(xs))
}

func MaxInt(xs []int, or int) int {
	if len(xs) == 0 {
		return or
	}
	max := xs[0]
	for _, v := range xs[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

func MinInt(xs []int, or int) int {
	if len(xs) == 0 {
		return or
	}
	min := xs[0]
	for _, v := range xs[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// StdDevInt is the population standard deviation of xs around avg.
func StdDevInt(xs []int, avg float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sdmSum float64
	for _, v := range xs {
		d := float64(v) - avg
		sdmSum += d * d
	}
	return math.Sqrt(sdmSum / float64(len(xs)))
}

// TScoreInt returns the T-score of v within xs: (v - avg) / stddev * 10 + 50.
// It is 50 whenever the standard deviation is 0.
func TScoreInt(v int, xs []int) float64 {
	avg := AverageInt(xs, 0)
	stdDev := StdDevInt(xs, avg)
	if stdDev == 0 {
		return 50
	}
	return (float64(v)-avg)/stdDev*10 + 50
}

// ----- float64 -----

// SumFloat64 adds xs up using Kahan (compensated) summation.
func SumFloat64(xs []float64) float64 {
	var sum, c float64
	for _, v := range xs {
		y := v + c
		t := sum + y
		c = y - (t - sum)
		sum = t
	}
	return sum
}

func IsAllEqualFloat64(xs []float64) bool {
	for _, v := range xs {
		if xs[0] != v {
			return false
		}
	}
	return true
}

func AverageFloat64(xs []float64, or float64) float64 {
	if len(xs) == 0 {
		return or
	}
	return SumFloat64(xs) / float64(len(xs))
}

func MaxFloat64(xs []float64, or float64) float64 {
	if len(xs) == 0 {
		return or
	}
	max := xs[0]
	for _, v := range xs[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

func MinFloat64(xs []float64, or float64) float64 {
	if len(xs) == 0 {
		return or
	}
	min := xs[0]
	for _, v := range xs[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// StdDevFloat64 is the population standard deviation of xs around avg.
func StdDevFloat64(xs []float64, avg float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sdm := make([]float64, len(xs))
	for i, v := range xs {
		d := v - avg
		sdm[i] = d * d
	}
	return math.Sqrt(SumFloat64(sdm) / float64(len(xs)))
}

// TScoreFloat64 returns the T-score of v within xs.
// It is 50 when all values of xs are equal, which includes empty and single-member populations.
func TScoreFloat64(v float64, xs []float64) float64 {
	if IsAllEqualFloat64(xs) {
		return 50
	}
	avg := AverageFloat64(xs, 0)
	stdDev := StdDevFloat64(xs, avg)
	if stdDev == 0 {
		return 50
	}
	return (v-avg)/stdDev*10 + 50
}
