package benchmark

import (
	"math"

	"github.com/sells-group/riskbench/internal/model"
)

// RankPercentile converts an upstream fractional rank (0 = best in
// cohort, 1 = worst) to an integer percentage in [0,100]. Non-finite
// input degrades to 0.
func RankPercentile(fraction float64) int {
	if math.IsNaN(fraction) || math.IsInf(fraction, 0) {
		return 0
	}
	return clampPct(int(math.Round(fraction * 100)))
}

// BandFor labels a percentile position within its cohort.
func BandFor(percentile int) model.PercentileBand {
	switch {
	case percentile < 10:
		return model.BandTop
	case percentile < 25:
		return model.BandUpper
	case percentile < 50:
		return model.BandUpperMiddle
	case percentile < 75:
		return model.BandLowerMiddle
	default:
		return model.BandBottom
	}
}

// BuildScatter converts an upstream scatter payload to integer
// percentiles and cohort aggregates. An empty cohort produces zero
// aggregates rather than NaN.
func BuildScatter(raw model.RawScatter) model.ScatterPayload {
	points := make([]model.ScatterPoint, 0, len(raw.Points))
	var revSum, custSum, riskSum float64

	for _, p := range raw.Points {
		sp := model.ScatterPoint{
			BusinessID:         p.BusinessID,
			BusinessName:       p.BusinessName,
			RevenuePercentile:  RankPercentile(p.RevenueFraction),
			RiskScore:          sanitizeScore(p.RiskScore),
			CustomerPercentile: RankPercentile(p.CustomerFraction),
		}
		points = append(points, sp)
		revSum += float64(sp.RevenuePercentile)
		custSum += float64(sp.CustomerPercentile)
		riskSum += sp.RiskScore
	}

	summary := model.ScatterSummary{TotalCount: raw.TotalCount}
	if summary.TotalCount == 0 {
		summary.TotalCount = len(points)
	}

	// Bands stay empty for an empty cohort; a zero average there is
	// absence of data, not a top-decile position.
	if n := float64(len(points)); n > 0 {
		summary.AvgRevenuePercentile = clampPct(int(math.Round(revSum / n)))
		summary.AvgCustomerPercentile = clampPct(int(math.Round(custSum / n)))
		summary.AvgRiskScore = clampPct(int(math.Round(riskSum / n)))
		summary.RevenueBand = BandFor(summary.AvgRevenuePercentile)
		summary.CustomerBand = BandFor(summary.AvgCustomerPercentile)
	}

	return model.ScatterPayload{Summary: summary, Points: points}
}

// sanitizeScore bounds a risk score to [0,100] and zeroes non-finite
// input.
func sanitizeScore(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}
