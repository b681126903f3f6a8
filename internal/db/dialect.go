package db

import "strings"

type dialect int

const (
	sqlite dialect = iota
	postgres
)

func dialectFor(dsn string) dialect {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgres
	}
	return sqlite
}

func (d dialect) driver() string {
	if d == postgres {
		return "pgx"
	}
	return "sqlite3"
}

func (d dialect) schema() []string {
	id, ts, num := "INTEGER PRIMARY KEY AUTOINCREMENT", "DATETIME", "REAL"
	if d == postgres {
		id, ts, num = "BIGSERIAL PRIMARY KEY", "TIMESTAMPTZ", "DOUBLE PRECISION"
	}

	return []string{
		`CREATE TABLE IF NOT EXISTS report_runs (
			id ` + id + `,
			created_at ` + ts + ` NOT NULL,
			sources TEXT NOT NULL,
			record_count INTEGER NOT NULL,
			route_count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS route_summaries (
			id ` + id + `,
			run_id BIGINT NOT NULL REFERENCES report_runs(id),
			location TEXT NOT NULL,
			route_id BIGINT NOT NULL,
			vehicle TEXT NOT NULL,
			driver TEXT NOT NULL,
			capacity ` + num + ` NOT NULL,
			stops INTEGER NOT NULL,
			distance_km BIGINT NOT NULL,
			fill_rate ` + num + ` NOT NULL,
			arrival TEXT NOT NULL,
			departure TEXT NOT NULL,
			duration TEXT NOT NULL,
			cost ` + num + ` NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_route_summaries_run ON route_summaries(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_route_summaries_run_location ON route_summaries(run_id, location, route_id)`,
		`CREATE INDEX IF NOT EXISTS idx_route_summaries_driver ON route_summaries(driver)`,
	}
}
