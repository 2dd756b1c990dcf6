package benchmark

import (
	"math"

	"github.com/sells-group/riskbench/internal/model"
)

// Radar axis names, in presentation order.
const (
	MetricRevenue       = "revenue"
	MetricSafety        = "safety"
	MetricCustomers     = "customers"
	MetricProfitability = "profitability"
	MetricSpend         = "spend_per_customer"
)

// CompareInput carries everything the comparator needs for one business.
// Raw metrics are optional; absent values degrade to zero comparisons.
type CompareInput struct {
	Business  model.DiagnosisResult
	Industry  string
	Revenue   float64
	Expenses  float64
	Customers float64
	Scatter   model.RawScatter
}

// Comparator assembles comparison payloads from cohort reference data.
// It is stateless beyond the taxonomy and safe for concurrent use.
type Comparator struct {
	taxonomy *Taxonomy
}

// NewComparator builds a comparator; a nil taxonomy selects the built-in
// hierarchy.
func NewComparator(taxonomy *Taxonomy) *Comparator {
	if taxonomy == nil {
		taxonomy = DefaultTaxonomy()
	}
	return &Comparator{taxonomy: taxonomy}
}

// Taxonomy exposes the comparator's resolution hierarchy.
func (c *Comparator) Taxonomy() *Taxonomy {
	return c.taxonomy
}

// RelativePosition places a business score on a 0-100 gauge against its
// cohort average, 50 meaning exactly average and higher meaning safer.
// A zero cohort average carries no information and pins the gauge at 50.
func RelativePosition(businessScore, cohortAvgRisk float64) float64 {
	if cohortAvgRisk == 0 {
		return 50
	}
	pos := 50 + ((cohortAvgRisk-businessScore)/cohortAvgRisk)*50
	return math.Max(0, math.Min(100, pos))
}

// Compare produces the full comparison payload for one business against
// the supplied cohorts. It never fails: unknown industries fall back
// through the taxonomy, missing cohorts and metrics degrade to neutral
// values, and the payload is always structurally complete.
func (c *Comparator) Compare(in CompareInput, cohorts []model.IndustryCohort) model.ComparisonPayload {
	main := c.taxonomy.Resolve(in.Industry)
	cohort, ok := c.findCohort(main, cohorts)
	if !ok {
		cohort = DefaultCohort(main)
	}

	return model.ComparisonPayload{
		BusinessScore:    in.Business.OverallScore,
		IndustryID:       string(main),
		IndustryAverage:  cohort.AverageRiskScore,
		RelativePosition: RelativePosition(in.Business.OverallScore, cohort.AverageRiskScore),
		Radar:            c.RadarAxes(cohorts),
		Scatter:          BuildScatter(in.Scatter),
		Comparison: map[string]model.MetricComparison{
			"revenue":   compareMetric(in.Revenue, cohort.Metrics.Revenue.Average),
			"expenses":  compareMetric(in.Expenses, cohort.Metrics.Expenses.Average),
			"customers": compareMetric(in.Customers, cohort.Metrics.Customers.Average),
		},
	}
}

// RadarAxes normalizes the five comparison metrics independently across
// the main categories. Cohort order follows MainCategories; a category
// with no cohort contributes zeros before normalization.
func (c *Comparator) RadarAxes(cohorts []model.IndustryCohort) []model.RadarAxis {
	n := len(MainCategories)
	revenue := make([]float64, n)
	safety := make([]float64, n)
	customers := make([]float64, n)
	expenses := make([]float64, n)

	for i, main := range MainCategories {
		cohort, ok := c.findCohort(main, cohorts)
		if !ok {
			continue
		}
		revenue[i] = cohort.Metrics.Revenue.Average
		safety[i] = cohort.AverageRiskScore
		customers[i] = cohort.Metrics.Customers.Average
		expenses[i] = cohort.Metrics.Expenses.Average
	}

	profitability := make([]float64, n)
	spend := make([]float64, n)
	for i := range revenue {
		profitability[i] = Profitability(revenue[i], expenses[i])
		spend[i] = SpendPerCustomer(revenue[i], customers[i])
	}

	return []model.RadarAxis{
		{Metric: MetricRevenue, Values: Normalize(revenue)},
		{Metric: MetricSafety, Values: Normalize(safety)},
		{Metric: MetricCustomers, Values: Normalize(customers)},
		{Metric: MetricProfitability, Values: Normalize(profitability)},
		{Metric: MetricSpend, Values: Normalize(spend)},
	}
}

// findCohort returns the first cohort whose industry resolves to the
// given main category.
func (c *Comparator) findCohort(main MainCategory, cohorts []model.IndustryCohort) (model.IndustryCohort, bool) {
	for _, cohort := range cohorts {
		if c.taxonomy.Resolve(cohort.IndustryID) == main {
			return cohort, true
		}
	}
	return model.IndustryCohort{}, false
}

// compareMetric relates a business value to its cohort average. A zero
// average yields a zero difference rather than dividing by it.
func compareMetric(user, average float64) model.MetricComparison {
	cmp := model.MetricComparison{User: user, Average: average}
	if average != 0 {
		cmp.DiffPct = (user - average) / average * 100
	}
	return cmp
}

// MergeCohorts folds sub-industry cohorts into one category-level cohort
// using population-weighted means; medians average evenly. The risk mean
// weights by each sub-cohort's risk-sample population (its distribution
// total), falling back to the general population when no sub-cohort
// carries a distribution. Zero total population yields the default
// cohort for the category.
func MergeCohorts(main MainCategory, subs []model.IndustryCohort) model.IndustryCohort {
	var totalPop, totalRiskPop int
	for _, s := range subs {
		totalPop += s.Population
		totalRiskPop += s.Distribution.Total()
	}
	if totalPop == 0 {
		return DefaultCohort(main)
	}

	merged := model.IndustryCohort{
		IndustryID: string(main),
		Population: totalPop,
	}
	var medRevenue, medExpenses, medCustomers, medMargin float64
	for _, s := range subs {
		w := float64(s.Population) / float64(totalPop)
		rw := w
		if totalRiskPop > 0 {
			rw = float64(s.Distribution.Total()) / float64(totalRiskPop)
		}
		merged.AverageRiskScore += s.AverageRiskScore * rw
		merged.Metrics.Revenue.Average += s.Metrics.Revenue.Average * w
		merged.Metrics.Expenses.Average += s.Metrics.Expenses.Average * w
		merged.Metrics.Customers.Average += s.Metrics.Customers.Average * w
		merged.Metrics.ProfitMargin.Average += s.Metrics.ProfitMargin.Average * w
		merged.Distribution = merged.Distribution.Add(s.Distribution)

		medRevenue += s.Metrics.Revenue.Median
		medExpenses += s.Metrics.Expenses.Median
		medCustomers += s.Metrics.Customers.Median
		medMargin += s.Metrics.ProfitMargin.Median
	}

	n := float64(len(subs))
	merged.Metrics.Revenue.Median = medRevenue / n
	merged.Metrics.Expenses.Median = medExpenses / n
	merged.Metrics.Customers.Median = medCustomers / n
	merged.Metrics.ProfitMargin.Median = medMargin / n
	return merged
}

// DefaultCohort is the neutral cohort used when no reference data exists
// for a resolved industry. Figures match the seed benchmark published by
// the upstream data pipeline.
func DefaultCohort(main MainCategory) model.IndustryCohort {
	return model.IndustryCohort{
		IndustryID:       string(main),
		Region:           "all",
		AverageRiskScore: 65,
		Metrics: model.CohortMetrics{
			Revenue:      model.MetricStat{Average: 45_000_000, Median: 38_000_000},
			Expenses:     model.MetricStat{Average: 35_000_000, Median: 30_000_000},
			Customers:    model.MetricStat{Average: 850, Median: 720},
			ProfitMargin: model.MetricStat{Average: 22, Median: 21},
		},
		Distribution: model.RiskDistribution{Green: 25, Yellow: 40, Orange: 25, Red: 10},
	}
}
