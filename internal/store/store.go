// Package store persists extracted CDTire runs to PostgreSQL.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ukaji3/cdtire-go/pkg/cdtire/logging"
	"github.com/ukaji3/cdtire-go/pkg/cdtire/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS cdtire_runs (
	id                 BIGSERIAL PRIMARY KEY,
	project            TEXT NOT NULL,
	protocol           TEXT NOT NULL,
	number_of_runs     INTEGER NOT NULL,
	test_name          TEXT NOT NULL DEFAULT '',
	inflation_pressure TEXT NOT NULL DEFAULT '',
	velocity           TEXT NOT NULL DEFAULT '',
	preload            TEXT NOT NULL DEFAULT '',
	camber             TEXT NOT NULL DEFAULT '',
	slip_angle         TEXT NOT NULL DEFAULT '',
	displacement       TEXT NOT NULL DEFAULT '',
	slip_range         TEXT NOT NULL DEFAULT '',
	cleat              TEXT NOT NULL DEFAULT '',
	road_surface       TEXT NOT NULL DEFAULT '',
	job                TEXT NOT NULL DEFAULT '',
	old_job            TEXT NOT NULL DEFAULT '',
	template_tydex     TEXT NOT NULL DEFAULT '',
	tydex_name         TEXT NOT NULL DEFAULT '',
	p                  TEXT NOT NULL DEFAULT '',
	l                  TEXT NOT NULL DEFAULT '',
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS cdtire_runs_project_idx ON cdtire_runs (project, protocol);
`

// recordColumns are the models.Record columns in COPY order.
var recordColumns = []string{
	"number_of_runs", "test_name", "inflation_pressure", "velocity", "preload",
	"camber", "slip_angle", "displacement", "slip_range", "cleat", "road_surface",
	"job", "old_job", "template_tydex", "tydex_name", "p", "l",
}

// SummaryRow is the run count for one test name.
type SummaryRow struct {
	TestName string `db:"test_name" json:"test_name"`
	Count    int64  `db:"count" json:"count"`
}

// RunStore reads and writes the cdtire_runs table.
type RunStore struct {
	db *sqlx.DB
}

// New wraps an open database.
func New(db *sqlx.DB) *RunStore {
	return &RunStore{db: db}
}

// Open connects to the PostgreSQL database at dsn.
func Open(ctx context.Context, dsn string) (*RunStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect run store: %w", err)
	}
	return New(db), nil
}

// Close closes the database.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// Migrate creates the runs table if it does not exist.
func (s *RunStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate run store: %w", err)
	}
	return nil
}

// SaveRuns replaces the runs stored for project and protocol in one
// transaction.
func (s *RunStore) SaveRuns(ctx context.Context, project, protocol string, records []models.Record) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM cdtire_runs WHERE project = $1 AND protocol = $2`, project, protocol)
	if err != nil {
		return fmt.Errorf("clear runs: %w", err)
	}
	replaced, _ := res.RowsAffected()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("cdtire_runs", append([]string{"project", "protocol"}, recordColumns...)...))
	if err != nil {
		return fmt.Errorf("prepare copy: %w", err)
	}
	for _, r := range records {
		_, err = stmt.ExecContext(ctx, project, protocol,
			r.NumberOfRuns, r.TestName, r.InflationPressure, r.Velocity, r.Preload,
			r.Camber, r.SlipAngle, r.Displacement, r.SlipRange, r.Cleat, r.RoadSurface,
			r.Job, r.OldJob, r.TemplateTydex, r.TydexName, r.P, r.L)
		if err != nil {
			stmt.Close()
			return fmt.Errorf("copy run %d: %w", r.NumberOfRuns, err)
		}
	}
	if _, err = stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("flush copy: %w", err)
	}
	if err = stmt.Close(); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}

	logging.Logger().Info("runs stored",
		slog.String("project", project),
		slog.String("protocol", protocol),
		slog.Int("records", len(records)),
		slog.Int64("replaced", replaced))
	return nil
}

// Runs returns the stored runs for project and protocol, ordered by run
// number.
func (s *RunStore) Runs(ctx context.Context, project, protocol string) ([]models.Record, error) {
	records := []models.Record{}
	err := s.db.SelectContext(ctx, &records, `
		SELECT number_of_runs, test_name, inflation_pressure, velocity, preload,
		       camber, slip_angle, displacement, slip_range, cleat, road_surface,
		       job, old_job, template_tydex, tydex_name, p, l
		FROM cdtire_runs
		WHERE project = $1 AND protocol = $2
		ORDER BY number_of_runs, id
	`, project, protocol)
	return records, err
}

// Summary returns the number of runs per test name, in order of first
// appearance.
func (s *RunStore) Summary(ctx context.Context, project, protocol string) ([]SummaryRow, error) {
	rows := []SummaryRow{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT test_name, COUNT(*) AS count
		FROM cdtire_runs
		WHERE project = $1 AND protocol = $2
		GROUP BY test_name
		ORDER BY MIN(id)
	`, project, protocol)
	return rows, err
}
