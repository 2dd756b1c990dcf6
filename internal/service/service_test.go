package service

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/riskbench/internal/benchmark"
	"github.com/sells-group/riskbench/internal/model"
	"github.com/sells-group/riskbench/internal/risk"
	"github.com/sells-group/riskbench/internal/store"
)

// stubSource serves canned cohorts and counts fetches.
type stubSource struct {
	cohortCalls  atomic.Int64
	scatterCalls atomic.Int64
	cohortErr    error
	scatterErr   error
}

func (s *stubSource) Cohort(_ context.Context, industry string) (model.IndustryCohort, error) {
	s.cohortCalls.Add(1)
	if s.cohortErr != nil {
		return model.IndustryCohort{}, s.cohortErr
	}
	return model.IndustryCohort{
		IndustryID:       industry,
		AverageRiskScore: 60,
		Population:       100,
		Metrics: model.CohortMetrics{
			Revenue:   model.MetricStat{Average: 40_000_000},
			Expenses:  model.MetricStat{Average: 30_000_000},
			Customers: model.MetricStat{Average: 1000},
		},
	}, nil
}

func (s *stubSource) Scatter(_ context.Context, _ string, _ int) (model.RawScatter, error) {
	s.scatterCalls.Add(1)
	if s.scatterErr != nil {
		return model.RawScatter{}, s.scatterErr
	}
	return model.RawScatter{Points: []model.RawScatterPoint{
		{BusinessID: "x", RevenueFraction: 0.25, RiskScore: 55, CustomerFraction: 0.75},
	}}, nil
}

func newTestService(t *testing.T, source CohortSource) *Service {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "riskbench.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })
	return New(st, source, nil)
}

func TestFetchAllCohorts(t *testing.T) {
	source := &stubSource{}
	svc := newTestService(t, source)

	cohorts, err := svc.FetchAllCohorts(context.Background())
	require.NoError(t, err)
	require.Len(t, cohorts, len(benchmark.MainCategories))
	for i, main := range benchmark.MainCategories {
		assert.Equal(t, string(main), cohorts[i].IndustryID, "category order preserved")
	}
	assert.EqualValues(t, len(benchmark.MainCategories), source.cohortCalls.Load())
}

func TestFetchAllCohortsFailsClosed(t *testing.T) {
	source := &stubSource{cohortErr: eris.New("pipeline down")}
	svc := newTestService(t, source)

	_, err := svc.FetchAllCohorts(context.Background())
	require.Error(t, err, "partial cohort sets must not reach the comparator")
}

func TestCompareCaches(t *testing.T) {
	source := &stubSource{}
	svc := newTestService(t, source)

	in := benchmark.CompareInput{
		Business: model.DiagnosisResult{BusinessID: "b-1", OverallScore: 45},
		Industry: "cafe",
		Revenue:  38_000_000,
	}

	first, err := svc.Compare(context.Background(), in)
	require.NoError(t, err)
	second, err := svc.Compare(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "cafe", first.IndustryID)
	assert.InDelta(t, 62.5, first.RelativePosition, 1e-9)
}

func TestCompareScatterFailureDegrades(t *testing.T) {
	source := &stubSource{scatterErr: eris.New("scatter unavailable")}
	svc := newTestService(t, source)

	got, err := svc.Compare(context.Background(), benchmark.CompareInput{
		Business: model.DiagnosisResult{BusinessID: "b-2", OverallScore: 60},
		Industry: "retail",
	})
	require.NoError(t, err, "scatter loss must not fail the comparison")
	assert.Empty(t, got.Scatter.Points)
	assert.Len(t, got.Radar, 5)
}

func TestBenchmarkFallsBackToDefaultCohort(t *testing.T) {
	source := &stubSource{cohortErr: eris.New("pipeline down")}
	svc := newTestService(t, source)

	cohort, err := svc.Benchmark(context.Background(), "unknown-trade")
	require.NoError(t, err, "benchmark reads degrade instead of failing")
	assert.Equal(t, "other", cohort.IndustryID)
	assert.InDelta(t, 65, cohort.AverageRiskScore, 1e-9)
}

func TestRecordDiagnosisDerivesAlert(t *testing.T) {
	svc := newTestService(t, &stubSource{})

	saved, err := svc.RecordDiagnosis(context.Background(), model.DiagnosisResult{
		BusinessID:   "b-3",
		OverallScore: 80,
		Alert:        model.AlertSafe, // wrong on purpose; must be re-derived
	})
	require.NoError(t, err)
	assert.Equal(t, model.AlertDanger, saved.Alert)

	latest, err := svc.Diagnose(context.Background(), "b-3")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, model.AlertDanger, latest.Alert)
}

func TestTrend(t *testing.T) {
	svc := newTestService(t, &stubSource{})
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, score := range []float64{70, 60, 50} {
		_, err := svc.RecordDiagnosis(ctx, model.DiagnosisResult{
			BusinessID:   "b-4",
			OverallScore: score,
			CreatedAt:    base.AddDate(0, i, 0),
		})
		require.NoError(t, err)
	}

	trend, ok, err := svc.Trend(ctx, "b-4", 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, risk.TrendImprovingStrong, trend.Label)
	assert.InDelta(t, -20, trend.Delta, 1e-9)
}

func TestTrendInsufficientData(t *testing.T) {
	svc := newTestService(t, &stubSource{})

	_, ok, err := svc.Trend(context.Background(), "nobody", 0)
	require.NoError(t, err)
	assert.False(t, ok)
}
