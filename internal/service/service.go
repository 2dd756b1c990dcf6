// Package service orchestrates the scoring engine over cohort reference
// data: concurrent cohort fetches, comparison caching, and trend reads.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/riskbench/internal/benchmark"
	"github.com/sells-group/riskbench/internal/model"
	"github.com/sells-group/riskbench/internal/risk"
	"github.com/sells-group/riskbench/internal/store"
)

// CohortSource supplies cohort reference data, typically backed by the
// store or an upstream data pipeline.
type CohortSource interface {
	Cohort(ctx context.Context, industry string) (model.IndustryCohort, error)
	Scatter(ctx context.Context, industry string, limit int) (model.RawScatter, error)
}

// Service wires the pure engine to stores and cohort sources. The
// comparison cache is valid because the engine is deterministic: the
// same business and cohort set always produce an identical payload.
type Service struct {
	store        store.Store
	source       CohortSource
	comparator   *benchmark.Comparator
	scatterLimit int

	mu    sync.Mutex
	cache map[string]model.ComparisonPayload
}

// New creates a Service. A nil comparator selects the built-in taxonomy.
func New(st store.Store, source CohortSource, comparator *benchmark.Comparator) *Service {
	if comparator == nil {
		comparator = benchmark.NewComparator(nil)
	}
	return &Service{
		store:      st,
		source:     source,
		comparator: comparator,
		cache:      make(map[string]model.ComparisonPayload),
	}
}

// WithScatterLimit caps the number of scatter points fetched per
// comparison. Zero means no cap.
func (s *Service) WithScatterLimit(n int) *Service {
	s.scatterLimit = n
	return s
}

// FetchAllCohorts retrieves the cohort for every main category
// concurrently and returns them in category order. The comparator must
// only run over a complete set; a failed fetch fails the whole batch
// rather than feeding placeholder zeros into normalization.
func (s *Service) FetchAllCohorts(ctx context.Context) ([]model.IndustryCohort, error) {
	cohorts := make([]model.IndustryCohort, len(benchmark.MainCategories))

	g, gctx := errgroup.WithContext(ctx)
	for i, main := range benchmark.MainCategories {
		g.Go(func() error {
			c, err := s.source.Cohort(gctx, string(main))
			if err != nil {
				return eris.Wrapf(err, "service: fetch cohort %s", main)
			}
			cohorts[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cohorts, nil
}

// Compare assembles the full comparison payload for one business,
// memoized per (business, cohort-set) tuple.
func (s *Service) Compare(ctx context.Context, in benchmark.CompareInput) (model.ComparisonPayload, error) {
	cohorts, err := s.FetchAllCohorts(ctx)
	if err != nil {
		return model.ComparisonPayload{}, err
	}

	scatter, err := s.source.Scatter(ctx, in.Industry, s.scatterLimit)
	if err != nil {
		// Scatter data is decorative; degrade to an empty cohort.
		zap.L().Warn("service: scatter fetch failed",
			zap.String("industry", in.Industry),
			zap.Error(err),
		)
		scatter = model.RawScatter{}
	}
	in.Scatter = scatter

	key, err := cacheKey(in, cohorts)
	if err != nil {
		return model.ComparisonPayload{}, err
	}

	s.mu.Lock()
	cached, ok := s.cache[key]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	payload := s.comparator.Compare(in, cohorts)

	s.mu.Lock()
	s.cache[key] = payload
	s.mu.Unlock()

	zap.L().Info("service: comparison complete",
		zap.String("business_id", in.Business.BusinessID),
		zap.String("industry", payload.IndustryID),
		zap.Float64("relative_position", payload.RelativePosition),
	)
	return payload, nil
}

// Benchmark returns the cohort for an industry code, resolved through
// the taxonomy. A missing or empty cohort falls back to the default so
// the result is always structurally complete.
func (s *Service) Benchmark(ctx context.Context, industry string) (model.IndustryCohort, error) {
	main := s.comparator.Taxonomy().Resolve(industry)
	cohort, err := s.source.Cohort(ctx, string(main))
	if err != nil {
		zap.L().Warn("service: cohort fetch failed, using default",
			zap.String("industry", string(main)),
			zap.Error(err),
		)
		return benchmark.DefaultCohort(main), nil
	}
	if cohort.Population == 0 && cohort.AverageRiskScore == 0 {
		return benchmark.DefaultCohort(main), nil
	}
	return cohort, nil
}

// Diagnose returns the latest stored diagnosis for a business, or nil
// when none exists.
func (s *Service) Diagnose(ctx context.Context, businessID string) (*model.DiagnosisResult, error) {
	return s.store.LatestDiagnosis(ctx, businessID)
}

// RecordDiagnosis stores an oracle result after re-deriving its alert
// level.
func (s *Service) RecordDiagnosis(ctx context.Context, d model.DiagnosisResult) (*model.DiagnosisResult, error) {
	d.Components = risk.SanitizeComponents(d.Components)
	d.OverallScore = risk.OverallFromOracle(d.OverallScore, d.Components)
	d.Alert = risk.Classify(d.OverallScore)
	return s.store.SaveDiagnosis(ctx, d)
}

// History returns a business's diagnosis history, most-recent-first.
func (s *Service) History(ctx context.Context, businessID string, limit int) (model.DiagnosisHistory, error) {
	return s.store.History(ctx, businessID, limit)
}

// Trend analyzes the trend over a business's history window. The store
// already orders most-recent-first; the sort here guards against any
// source that does not honor that contract.
func (s *Service) Trend(ctx context.Context, businessID string, window int) (risk.Trend, bool, error) {
	history, err := s.store.History(ctx, businessID, window)
	if err != nil {
		return risk.Trend{}, false, err
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].CreatedAt.After(history[j].CreatedAt)
	})
	trend, ok := risk.AnalyzeTrend(history)
	return trend, ok, nil
}

// cacheKey hashes the business identity and the complete cohort set.
func cacheKey(in benchmark.CompareInput, cohorts []model.IndustryCohort) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	if err := enc.Encode(in); err != nil {
		return "", eris.Wrap(err, "service: hash input")
	}
	if err := enc.Encode(cohorts); err != nil {
		return "", eris.Wrap(err, "service: hash cohorts")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
