package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/riskbench/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies
// it in tests.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS diagnoses (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	business_id   TEXT NOT NULL,
	overall_score DOUBLE PRECISION NOT NULL,
	risk_level    TEXT NOT NULL,
	components    JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS cohorts (
	industry_id TEXT PRIMARY KEY,
	payload     JSONB NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_diagnoses_business ON diagnoses(business_id, created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveDiagnosis(ctx context.Context, d model.DiagnosisResult) (*model.DiagnosisResult, error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	components, err := json.Marshal(d.Components)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal components")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO diagnoses (id, business_id, overall_score, risk_level, components, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.BusinessID, d.OverallScore, d.Alert.String(), components, d.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert diagnosis")
	}
	return &d, nil
}

func (s *PostgresStore) LatestDiagnosis(ctx context.Context, businessID string) (*model.DiagnosisResult, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, business_id, overall_score, risk_level, components, created_at FROM diagnoses WHERE business_id = $1 ORDER BY created_at DESC LIMIT 1`,
		businessID,
	)
	d, err := scanPgDiagnosis(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: latest diagnosis %s", businessID)
	}
	return d, nil
}

func (s *PostgresStore) History(ctx context.Context, businessID string, limit int) (model.DiagnosisHistory, error) {
	query := `SELECT id, business_id, overall_score, risk_level, components, created_at FROM diagnoses WHERE business_id = $1 ORDER BY created_at DESC`
	args := []any{businessID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: query history %s", businessID)
	}
	defer rows.Close()

	var history model.DiagnosisHistory
	for rows.Next() {
		d, err := scanPgDiagnosis(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan diagnosis")
		}
		history = append(history, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate history")
	}
	return history, nil
}

// LatestDiagnoses returns the most recent diagnosis per business.
func (s *PostgresStore) LatestDiagnoses(ctx context.Context, limit int) ([]model.DiagnosisResult, error) {
	query := `SELECT DISTINCT ON (business_id) id, business_id, overall_score, risk_level, components, created_at
		FROM diagnoses ORDER BY business_id, created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query latest diagnoses")
	}
	defer rows.Close()

	var out []model.DiagnosisResult
	for rows.Next() {
		d, err := scanPgDiagnosis(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan diagnosis")
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate latest diagnoses")
	}
	return out, nil
}

func (s *PostgresStore) UpsertCohort(ctx context.Context, c model.IndustryCohort) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal cohort")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO cohorts (industry_id, payload, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (industry_id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		c.IndustryID, payload, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: upsert cohort %s", c.IndustryID)
}

func (s *PostgresStore) GetCohort(ctx context.Context, industryID string) (*model.IndustryCohort, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM cohorts WHERE industry_id = $1`, industryID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get cohort %s", industryID)
	}

	var c model.IndustryCohort
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal cohort %s", industryID)
	}
	return &c, nil
}

func (s *PostgresStore) ListCohorts(ctx context.Context) ([]model.IndustryCohort, error) {
	rows, err := s.pool.Query(ctx, `SELECT payload FROM cohorts ORDER BY industry_id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list cohorts")
	}
	defer rows.Close()

	var cohorts []model.IndustryCohort
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan cohort")
		}
		var c model.IndustryCohort
		if err := json.Unmarshal(payload, &c); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal cohort")
		}
		cohorts = append(cohorts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate cohorts")
	}
	return cohorts, nil
}

// scanPgDiagnosis reads one diagnosis row through the given scan function.
func scanPgDiagnosis(scan func(...any) error) (*model.DiagnosisResult, error) {
	var d model.DiagnosisResult
	var level string
	var components []byte
	if err := scan(&d.ID, &d.BusinessID, &d.OverallScore, &level, &components, &d.CreatedAt); err != nil {
		return nil, err
	}
	d.Alert, _ = model.ParseAlertLevel(level)
	if err := json.Unmarshal(components, &d.Components); err != nil {
		return nil, err
	}
	return &d, nil
}
