package service

import (
	"context"

	"github.com/sells-group/riskbench/internal/benchmark"
	"github.com/sells-group/riskbench/internal/model"
	"github.com/sells-group/riskbench/internal/store"
)

// StoreSource serves cohort reference data from the local store.
// Cohorts are imported per sub-industry; reads fold every stored cohort
// that resolves to the requested main category into one aggregate.
// Industries with no imported aggregates fall back to the default
// cohort so comparisons stay structurally complete. A nil Taxonomy
// selects the built-in hierarchy.
type StoreSource struct {
	Store    store.Store
	Taxonomy *benchmark.Taxonomy
}

func (s StoreSource) Cohort(ctx context.Context, industry string) (model.IndustryCohort, error) {
	taxonomy := s.Taxonomy
	if taxonomy == nil {
		taxonomy = benchmark.DefaultTaxonomy()
	}
	main := taxonomy.Resolve(industry)

	stored, err := s.Store.ListCohorts(ctx)
	if err != nil {
		return model.IndustryCohort{}, err
	}
	var subs []model.IndustryCohort
	for _, c := range stored {
		if taxonomy.Resolve(c.IndustryID) == main {
			subs = append(subs, c)
		}
	}

	// MergeCohorts handles the remaining degenerate case: matches with
	// zero total population also collapse to the default cohort.
	if len(subs) == 0 {
		return benchmark.DefaultCohort(main), nil
	}
	return benchmark.MergeCohorts(main, subs), nil
}

// Scatter synthesizes a cohort scatter from the latest diagnosis of
// every business on record. The store keeps no percentile data, so
// positions degrade to neutral values and only risk scores carry
// information.
func (s StoreSource) Scatter(ctx context.Context, industry string, limit int) (model.RawScatter, error) {
	diagnoses, err := s.Store.LatestDiagnoses(ctx, limit)
	if err != nil {
		return model.RawScatter{}, err
	}

	scatter := model.RawScatter{TotalCount: len(diagnoses)}
	for _, d := range diagnoses {
		scatter.Points = append(scatter.Points, model.RawScatterPoint{
			BusinessID:       d.BusinessID,
			RevenueFraction:  0.5,
			RiskScore:        d.OverallScore,
			CustomerFraction: 0.5,
		})
	}
	return scatter, nil
}
