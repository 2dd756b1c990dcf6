package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/riskbench/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS diagnoses (
	id            TEXT PRIMARY KEY,
	business_id   TEXT NOT NULL,
	overall_score REAL NOT NULL,
	risk_level    TEXT NOT NULL,
	components    TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS cohorts (
	industry_id TEXT PRIMARY KEY,
	payload     TEXT NOT NULL,
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_diagnoses_business ON diagnoses(business_id, created_at DESC);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveDiagnosis(ctx context.Context, d model.DiagnosisResult) (*model.DiagnosisResult, error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	components, err := json.Marshal(d.Components)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal components")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO diagnoses (id, business_id, overall_score, risk_level, components, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.BusinessID, d.OverallScore, d.Alert.String(), string(components), d.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert diagnosis")
	}
	return &d, nil
}

func (s *SQLiteStore) LatestDiagnosis(ctx context.Context, businessID string) (*model.DiagnosisResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, business_id, overall_score, risk_level, components, created_at FROM diagnoses WHERE business_id = ? ORDER BY created_at DESC LIMIT 1`,
		businessID,
	)
	d, err := scanDiagnosis(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: latest diagnosis %s", businessID)
	}
	return d, nil
}

func (s *SQLiteStore) History(ctx context.Context, businessID string, limit int) (model.DiagnosisHistory, error) {
	query := `SELECT id, business_id, overall_score, risk_level, components, created_at FROM diagnoses WHERE business_id = ? ORDER BY created_at DESC`
	args := []any{businessID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: query history %s", businessID)
	}
	defer rows.Close()

	var history model.DiagnosisHistory
	for rows.Next() {
		d, err := scanDiagnosis(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan diagnosis")
		}
		history = append(history, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate history")
	}
	return history, nil
}

// LatestDiagnoses returns the most recent diagnosis per business.
func (s *SQLiteStore) LatestDiagnoses(ctx context.Context, limit int) ([]model.DiagnosisResult, error) {
	query := `SELECT id, business_id, overall_score, risk_level, components, created_at
		FROM diagnoses d
		WHERE created_at = (SELECT MAX(created_at) FROM diagnoses WHERE business_id = d.business_id)
		ORDER BY business_id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query latest diagnoses")
	}
	defer rows.Close()

	var out []model.DiagnosisResult
	for rows.Next() {
		d, err := scanDiagnosis(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan diagnosis")
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate latest diagnoses")
	}
	return out, nil
}

func (s *SQLiteStore) UpsertCohort(ctx context.Context, c model.IndustryCohort) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal cohort")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cohorts (industry_id, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(industry_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		c.IndustryID, string(payload), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: upsert cohort %s", c.IndustryID)
}

func (s *SQLiteStore) GetCohort(ctx context.Context, industryID string) (*model.IndustryCohort, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM cohorts WHERE industry_id = ?`, industryID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get cohort %s", industryID)
	}

	var c model.IndustryCohort
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal cohort %s", industryID)
	}
	return &c, nil
}

func (s *SQLiteStore) ListCohorts(ctx context.Context) ([]model.IndustryCohort, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM cohorts ORDER BY industry_id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list cohorts")
	}
	defer rows.Close()

	var cohorts []model.IndustryCohort
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan cohort")
		}
		var c model.IndustryCohort
		if err := json.Unmarshal([]byte(payload), &c); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal cohort")
		}
		cohorts = append(cohorts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate cohorts")
	}
	return cohorts, nil
}

// scanDiagnosis reads one diagnosis row through the given scan function.
func scanDiagnosis(scan func(...any) error) (*model.DiagnosisResult, error) {
	var d model.DiagnosisResult
	var level, components string
	if err := scan(&d.ID, &d.BusinessID, &d.OverallScore, &level, &components, &d.CreatedAt); err != nil {
		return nil, err
	}
	d.Alert, _ = model.ParseAlertLevel(level)
	if err := json.Unmarshal([]byte(components), &d.Components); err != nil {
		return nil, err
	}
	return &d, nil
}
