package benchmark

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/riskbench/internal/model"
)

func TestRankPercentile(t *testing.T) {
	tests := []struct {
		name     string
		fraction float64
		want     int
	}{
		{"best", 0, 0},
		{"worst", 1, 100},
		{"middle", 0.5, 50},
		{"rounds nearest", 0.124, 12},
		{"rounds half up", 0.125, 13},
		{"below range clamps", -0.2, 0},
		{"above range clamps", 1.4, 100},
		{"nan degrades to zero", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RankPercentile(tt.fraction))
		})
	}
}

// Integer percentages already in range survive the round trip.
func TestRankPercentileIdempotent(t *testing.T) {
	for p := 0; p <= 100; p++ {
		assert.Equal(t, p, RankPercentile(float64(p)/100))
	}
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		percentile int
		want       model.PercentileBand
	}{
		{0, model.BandTop},
		{9, model.BandTop},
		{10, model.BandUpper},
		{24, model.BandUpper},
		{25, model.BandUpperMiddle},
		{49, model.BandUpperMiddle},
		{50, model.BandLowerMiddle},
		{74, model.BandLowerMiddle},
		{75, model.BandBottom},
		{100, model.BandBottom},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BandFor(tt.percentile), "percentile %d", tt.percentile)
	}
}

func TestBuildScatterEmptyCohort(t *testing.T) {
	got := BuildScatter(model.RawScatter{})

	assert.Empty(t, got.Points)
	assert.Equal(t, 0, got.Summary.TotalCount)
	assert.Equal(t, 0, got.Summary.AvgRevenuePercentile)
	assert.Equal(t, 0, got.Summary.AvgCustomerPercentile)
	assert.Equal(t, 0, got.Summary.AvgRiskScore)
	assert.Empty(t, got.Summary.RevenueBand)
	assert.Empty(t, got.Summary.CustomerBand)
}

func TestBuildScatter(t *testing.T) {
	raw := model.RawScatter{
		TotalCount: 3,
		Points: []model.RawScatterPoint{
			{BusinessID: "a", BusinessName: "A", RevenueFraction: 0.10, RiskScore: 30, CustomerFraction: 0.20},
			{BusinessID: "b", BusinessName: "B", RevenueFraction: 0.50, RiskScore: 60, CustomerFraction: 0.40},
			{BusinessID: "c", BusinessName: "C", RevenueFraction: 0.90, RiskScore: 90, CustomerFraction: 0.60},
		},
	}

	got := BuildScatter(raw)
	require.Len(t, got.Points, 3)

	assert.Equal(t, 10, got.Points[0].RevenuePercentile)
	assert.Equal(t, 90, got.Points[2].RevenuePercentile)
	assert.Equal(t, 50, got.Summary.AvgRevenuePercentile)
	assert.Equal(t, 40, got.Summary.AvgCustomerPercentile)
	assert.Equal(t, 60, got.Summary.AvgRiskScore)
	assert.Equal(t, model.BandLowerMiddle, got.Summary.RevenueBand)
	assert.Equal(t, model.BandUpperMiddle, got.Summary.CustomerBand)
	assert.Equal(t, 3, got.Summary.TotalCount)
}

func TestBuildScatterSanitizesRiskScores(t *testing.T) {
	raw := model.RawScatter{
		Points: []model.RawScatterPoint{
			{BusinessID: "a", RiskScore: math.NaN()},
			{BusinessID: "b", RiskScore: 240},
		},
	}

	got := BuildScatter(raw)
	require.Len(t, got.Points, 2)
	assert.Equal(t, 0.0, got.Points[0].RiskScore)
	assert.Equal(t, 100.0, got.Points[1].RiskScore)
	assert.Equal(t, 2, got.Summary.TotalCount, "total falls back to point count")
}
