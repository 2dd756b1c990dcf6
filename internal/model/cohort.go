package model

// MetricStat holds the average and median of one cohort metric.
type MetricStat struct {
	Average float64 `json:"average"`
	Median  float64 `json:"median"`
}

// CohortMetrics holds the raw aggregate metrics of one industry cohort.
type CohortMetrics struct {
	Revenue      MetricStat `json:"revenue"`
	Expenses     MetricStat `json:"expenses"`
	Customers    MetricStat `json:"customers"`
	ProfitMargin MetricStat `json:"profit_margin"`
}

// RiskDistribution counts businesses per alert level within a cohort.
type RiskDistribution struct {
	Green  int `json:"GREEN"`
	Yellow int `json:"YELLOW"`
	Orange int `json:"ORANGE"`
	Red    int `json:"RED"`
}

// Total returns the number of businesses covered by the distribution.
func (d RiskDistribution) Total() int {
	return d.Green + d.Yellow + d.Orange + d.Red
}

// Add merges another distribution into a copy of this one.
func (d RiskDistribution) Add(o RiskDistribution) RiskDistribution {
	return RiskDistribution{
		Green:  d.Green + o.Green,
		Yellow: d.Yellow + o.Yellow,
		Orange: d.Orange + o.Orange,
		Red:    d.Red + o.Red,
	}
}

// IndustryCohort is the read-only comparison population for one industry
// taxonomy node, refreshed by an external data pipeline.
type IndustryCohort struct {
	IndustryID       string           `json:"industry"`
	Region           string           `json:"region"`
	AverageRiskScore float64          `json:"average_risk_score"`
	Metrics          CohortMetrics    `json:"metrics"`
	Distribution     RiskDistribution `json:"risk_distribution"`
	Population       int              `json:"merchant_count"`
}

// RawScatterPoint is one business inside a cohort as delivered by the
// upstream data source, with percentiles expressed as fractions in [0,1].
type RawScatterPoint struct {
	BusinessID       string  `json:"business_id"`
	BusinessName     string  `json:"business_name"`
	RevenueFraction  float64 `json:"revenue_percentile"`
	RiskScore        float64 `json:"risk_score"`
	CustomerFraction float64 `json:"customer_percentile"`
}

// RawScatter is the upstream scatter payload for one cohort.
type RawScatter struct {
	TotalCount int               `json:"totalCount"`
	Points     []RawScatterPoint `json:"points"`
}
