package benchmark

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/riskbench/internal/model"
)

func testCohort(industry string, avgRisk, revenue, expenses, customers float64, pop int) model.IndustryCohort {
	return model.IndustryCohort{
		IndustryID:       industry,
		AverageRiskScore: avgRisk,
		Population:       pop,
		Metrics: model.CohortMetrics{
			Revenue:   model.MetricStat{Average: revenue, Median: revenue * 0.9},
			Expenses:  model.MetricStat{Average: expenses, Median: expenses * 0.9},
			Customers: model.MetricStat{Average: customers, Median: customers * 0.9},
		},
	}
}

func testCohorts() []model.IndustryCohort {
	return []model.IndustryCohort{
		testCohort("restaurant", 60, 50_000_000, 38_000_000, 900, 120),
		testCohort("cafe", 55, 30_000_000, 21_000_000, 1500, 80),
		testCohort("fastfood", 70, 40_000_000, 32_000_000, 1100, 60),
		testCohort("pub", 75, 35_000_000, 30_000_000, 600, 40),
		testCohort("retail", 50, 60_000_000, 52_000_000, 2000, 90),
	}
}

func TestRelativePosition(t *testing.T) {
	tests := []struct {
		name    string
		score   float64
		avgRisk float64
		want    float64
	}{
		{"exactly average", 60, 60, 50},
		{"safer than average", 30, 60, 75},
		{"riskier than average", 90, 60, 25},
		{"zero score tops the gauge", 0, 60, 100},
		{"far above average clamps", 200, 60, 0},
		{"zero average is a no-op", 42, 0, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RelativePosition(tt.score, tt.avgRisk), 1e-9)
		})
	}
}

func TestCompare(t *testing.T) {
	cmp := NewComparator(nil)
	in := CompareInput{
		Business:  model.DiagnosisResult{BusinessID: "b-1", OverallScore: 45},
		Industry:  "치킨", // resolves through the taxonomy to fastfood
		Revenue:   44_000_000,
		Expenses:  30_000_000,
		Customers: 1000,
	}

	got := cmp.Compare(in, testCohorts())

	assert.Equal(t, "fastfood", got.IndustryID)
	assert.Equal(t, 45.0, got.BusinessScore)
	assert.Equal(t, 70.0, got.IndustryAverage)
	assert.InDelta(t, 67.857, got.RelativePosition, 0.001)

	require.Len(t, got.Radar, 5)
	for _, axis := range got.Radar {
		require.Len(t, axis.Values, len(MainCategories), "axis %s", axis.Metric)
		for _, v := range axis.Values {
			assert.GreaterOrEqual(t, v, 0)
			assert.LessOrEqual(t, v, 100)
		}
	}

	rev := got.Comparison["revenue"]
	assert.InDelta(t, 10.0, rev.DiffPct, 1e-9)
	cust := got.Comparison["customers"]
	assert.InDelta(t, -100.0/11, cust.DiffPct, 1e-6)
}

func TestCompareUnknownIndustryFallsBack(t *testing.T) {
	cmp := NewComparator(nil)
	in := CompareInput{
		Business: model.DiagnosisResult{OverallScore: 65},
		Industry: "lunar-mining",
	}

	got := cmp.Compare(in, nil)

	assert.Equal(t, "other", got.IndustryID)
	assert.Equal(t, 65.0, got.IndustryAverage, "default cohort backs the gauge")
	assert.Equal(t, 50.0, got.RelativePosition)
	require.Len(t, got.Radar, 5)
	for _, axis := range got.Radar {
		for _, v := range axis.Values {
			assert.Equal(t, 50, v, "no cohorts means degenerate normalization")
		}
	}
	assert.NotNil(t, got.Comparison)
	assert.NotNil(t, got.Scatter.Points)
}

func TestCompareDeterministic(t *testing.T) {
	cmp := NewComparator(nil)
	in := CompareInput{
		Business:  model.DiagnosisResult{BusinessID: "b-2", OverallScore: 58},
		Industry:  "cafe",
		Revenue:   28_000_000,
		Expenses:  19_000_000,
		Customers: 1400,
		Scatter: model.RawScatter{Points: []model.RawScatterPoint{
			{BusinessID: "x", RevenueFraction: 0.3, RiskScore: 40, CustomerFraction: 0.7},
		}},
	}

	a, err := json.Marshal(cmp.Compare(in, testCohorts()))
	require.NoError(t, err)
	b, err := json.Marshal(cmp.Compare(in, testCohorts()))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestMergeCohorts(t *testing.T) {
	subs := []model.IndustryCohort{
		testCohort("chicken", 60, 40_000_000, 30_000_000, 1000, 300),
		testCohort("pizza", 80, 60_000_000, 50_000_000, 500, 100),
	}

	got := MergeCohorts(CategoryFastfood, subs)

	assert.Equal(t, "fastfood", got.IndustryID)
	assert.Equal(t, 400, got.Population)
	assert.InDelta(t, 65.0, got.AverageRiskScore, 1e-9, "population weighted")
	assert.InDelta(t, 45_000_000, got.Metrics.Revenue.Average, 1e-6)
	assert.InDelta(t, 45_000_000, got.Metrics.Revenue.Median, 1e-6, "medians average evenly")
}

// When sub-cohorts carry risk distributions, the risk mean weights by
// the risk-sample population, not the general population.
func TestMergeCohortsRiskSampleWeighting(t *testing.T) {
	chicken := testCohort("chicken", 60, 40_000_000, 30_000_000, 1000, 1000)
	chicken.Distribution = model.RiskDistribution{Green: 100, Yellow: 100}
	pizza := testCohort("pizza", 80, 60_000_000, 50_000_000, 500, 500)
	pizza.Distribution = model.RiskDistribution{Orange: 300, Red: 300}

	got := MergeCohorts(CategoryFastfood, []model.IndustryCohort{chicken, pizza})

	// (60*200 + 80*600) / 800
	assert.InDelta(t, 75.0, got.AverageRiskScore, 1e-9, "risk sample weighted")
	// Other metrics still weight by general population.
	assert.InDelta(t, (40_000_000.0*1000+60_000_000*500)/1500, got.Metrics.Revenue.Average, 1e-6)
	assert.Equal(t, 800, got.Distribution.Total())
	assert.Equal(t, model.RiskDistribution{Green: 100, Yellow: 100, Orange: 300, Red: 300}, got.Distribution)
}

func TestMergeCohortsZeroPopulation(t *testing.T) {
	got := MergeCohorts(CategoryCafe, []model.IndustryCohort{
		testCohort("coffee", 60, 1, 1, 1, 0),
	})
	assert.Equal(t, DefaultCohort(CategoryCafe), got)
}
