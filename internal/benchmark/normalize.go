// Package benchmark compares a business against industry cohorts: metric
// normalization, percentile ranking, taxonomy resolution, and the
// comparison payload assembly.
package benchmark

import (
	"math"
)

// neutralValue is the output used where there is no meaningful spread
// to visualize.
const neutralValue = 50

// clampPct bounds an integer to [0,100].
func clampPct(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Normalize maps raw metric values onto a comparable 0-100 scale. The
// output has the same length as the input. Values center on 50 and scale
// by half the range; a degenerate input (all values equal, including a
// single element) maps every position to exactly 50. Every output is
// clamped to [0,100].
func Normalize(values []float64) []int {
	if len(values) == 0 {
		return nil
	}

	// Sanitize once so a NaN or Inf element degrades alone instead of
	// poisoning min/max and zeroing the whole axis.
	clean := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		clean[i] = v
	}

	min, max, sum := clean[0], clean[0], 0.0
	for _, v := range clean {
		min = math.Min(min, v)
		max = math.Max(max, v)
		sum += v
	}

	out := make([]int, len(clean))
	if max == min {
		for i := range out {
			out[i] = neutralValue
		}
		return out
	}

	avg := sum / float64(len(clean))
	for i, v := range clean {
		scaled := ((v-avg)/(max-min))*50 + 50
		out[i] = clampPct(int(math.Round(scaled)))
	}
	return out
}

// Profitability derives a margin percentage from revenue and expenses.
// Zero or negative revenue has no defined margin and yields 0.
func Profitability(revenue, expenses float64) float64 {
	if revenue <= 0 {
		return 0
	}
	return (revenue - expenses) / revenue * 100
}

// SpendPerCustomer derives average spend from revenue and customer
// count, guarding the empty cohort.
func SpendPerCustomer(revenue, customers float64) float64 {
	if customers <= 0 {
		return 0
	}
	return revenue / customers
}
