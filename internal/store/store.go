// Package store persists diagnosis history and cohort reference data.
package store

import (
	"context"

	"github.com/sells-group/riskbench/internal/model"
)

// Store defines persistence for diagnosis results and industry cohorts.
// History reads always return records most-recent-first; that ordering
// is the contract the trend analyzer relies on.
type Store interface {
	// Diagnoses
	SaveDiagnosis(ctx context.Context, d model.DiagnosisResult) (*model.DiagnosisResult, error)
	LatestDiagnosis(ctx context.Context, businessID string) (*model.DiagnosisResult, error)
	History(ctx context.Context, businessID string, limit int) (model.DiagnosisHistory, error)
	LatestDiagnoses(ctx context.Context, limit int) ([]model.DiagnosisResult, error)

	// Cohorts
	UpsertCohort(ctx context.Context, c model.IndustryCohort) error
	GetCohort(ctx context.Context, industryID string) (*model.IndustryCohort, error)
	ListCohorts(ctx context.Context) ([]model.IndustryCohort, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
