package model

// RadarAxis is one normalized metric across all compared cohorts. Values
// are in [0,100] and parallel to the cohort list that produced them.
type RadarAxis struct {
	Metric string `json:"metric"`
	Values []int  `json:"values"`
}

// ScatterPoint is one business positioned within its cohort, with
// percentiles converted to integer percentages.
type ScatterPoint struct {
	BusinessID         string  `json:"business_id"`
	BusinessName       string  `json:"business_name"`
	RevenuePercentile  int     `json:"revenue_percentile"`
	RiskScore          float64 `json:"risk_score"`
	CustomerPercentile int     `json:"customer_percentile"`
}

// PercentileBand labels a percentile range within a cohort. Lower
// percentile means a more favorable position.
type PercentileBand string

const (
	BandTop         PercentileBand = "top"
	BandUpper       PercentileBand = "upper"
	BandUpperMiddle PercentileBand = "upper_middle"
	BandLowerMiddle PercentileBand = "lower_middle"
	BandBottom      PercentileBand = "bottom"
)

// ScatterSummary aggregates a cohort's scatter points.
type ScatterSummary struct {
	TotalCount            int            `json:"total_count"`
	AvgRevenuePercentile  int            `json:"avg_revenue_percentile"`
	AvgCustomerPercentile int            `json:"avg_customer_percentile"`
	AvgRiskScore          int            `json:"avg_risk_score"`
	RevenueBand           PercentileBand `json:"revenue_band"`
	CustomerBand          PercentileBand `json:"customer_band"`
}

// ScatterPayload carries the per-cohort distribution visualization data.
type ScatterPayload struct {
	Summary ScatterSummary `json:"summary"`
	Points  []ScatterPoint `json:"points"`
}

// MetricComparison relates one business metric to its cohort average.
// DiffPct is (user-average)/average*100, or 0 when the average is 0.
type MetricComparison struct {
	User    float64 `json:"user"`
	Average float64 `json:"average"`
	DiffPct float64 `json:"difference"`
}

// ComparisonPayload is the full benchmark comparison consumed by
// presentation collaborators. It is always structurally complete:
// missing upstream data degrades to neutral or zero values.
type ComparisonPayload struct {
	BusinessScore    float64                     `json:"user_score"`
	IndustryID       string                      `json:"industry"`
	IndustryAverage  float64                     `json:"industry_average"`
	RelativePosition float64                     `json:"relative_position"`
	Radar            []RadarAxis                 `json:"radar"`
	Scatter          ScatterPayload              `json:"scatter"`
	Comparison       map[string]MetricComparison `json:"comparison"`
}
