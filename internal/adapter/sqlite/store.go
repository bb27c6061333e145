// Package sqlite persists forecast runs for downstream reporting.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jonboulle/clockwork"
	_ "github.com/mattn/go-sqlite3"

	"github.com/couchcryptid/climashield/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS forecast_runs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL UNIQUE,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS forecast_rows (
	run_id      TEXT NOT NULL REFERENCES forecast_runs(run_id),
	year        INTEGER NOT NULL,
	area        TEXT NOT NULL,
	aqi         REAL NOT NULL,
	rainfall_mm REAL NOT NULL,
	projected   BOOLEAN NOT NULL,
	position    INTEGER NOT NULL,
	PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_forecast_rows_area ON forecast_rows(area, run_id);
`

// ForecastStore reads and writes forecast runs in a SQLite database.
type ForecastStore struct {
	db    *sql.DB
	clock clockwork.Clock
}

// Option configures a ForecastStore.
type Option func(*ForecastStore)

// WithClock sets the clock used to stamp saved runs.
func WithClock(c clockwork.Clock) Option {
	return func(s *ForecastStore) { s.clock = c }
}

// Open opens (creating if needed) the database at path and applies the schema.
// Use ":memory:" for a throwaway store.
func Open(path string, opts ...Option) (*ForecastStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open forecast store: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	s := &ForecastStore{db: db, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init forecast schema: %w", err)
	}
	return nil
}

// SaveForecast stores every row of one forecast run atomically. Row order is
// preserved through the position column.
func (s *ForecastStore) SaveForecast(ctx context.Context, runID string, rows []domain.ForecastRow) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		"INSERT INTO forecast_runs (run_id, created_at) VALUES (?, ?)",
		runID, s.clock.Now().UTC(),
	); err != nil {
		return fmt.Errorf("insert run %s: %w", runID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO forecast_rows (run_id, year, area, aqi, rainfall_mm, projected, position) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare row insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err = stmt.ExecContext(ctx, runID, row.Year, row.Area, row.AQI, row.RainfallMM, row.Projected, i); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LatestForecast returns the area's rows from the most recent run that
// contains it, in stored order. It returns an empty slice when no run does.
func (s *ForecastStore) LatestForecast(ctx context.Context, area string) ([]domain.ForecastRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.year, r.area, r.aqi, r.rainfall_mm, r.projected
		FROM forecast_rows r
		WHERE r.area = ?
		  AND r.run_id = (
			SELECT fr.run_id
			FROM forecast_runs fr
			JOIN forecast_rows x ON x.run_id = fr.run_id
			WHERE x.area = ?
			ORDER BY fr.id DESC
			LIMIT 1
		  )
		ORDER BY r.position`, area, area)
	if err != nil {
		return nil, fmt.Errorf("query forecast for %s: %w", area, err)
	}
	defer rows.Close()

	out := []domain.ForecastRow{}
	for rows.Next() {
		var row domain.ForecastRow
		if err := rows.Scan(&row.Year, &row.Area, &row.AQI, &row.RainfallMM, &row.Projected); err != nil {
			return nil, fmt.Errorf("scan forecast row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate forecast rows: %w", err)
	}
	return out, nil
}

// CheckReadiness reports whether the database is reachable.
func (s *ForecastStore) CheckReadiness(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ForecastStore) Close() error {
	return s.db.Close()
}
