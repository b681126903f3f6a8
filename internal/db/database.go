package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"route-planning-report/internal/models"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Database wraps the report storage connection
type Database struct {
	conn    *sql.DB
	dialect dialect
}

// New opens the report storage. A postgres:// or postgresql:// DSN selects
// PostgreSQL through pgx; anything else is treated as a SQLite file path.
func New(dsn string) (*Database, error) {
	d := dialectFor(dsn)

	connStr := dsn
	if d == sqlite {
		// Enable WAL mode and other optimizations via connection string
		connStr = fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_foreign_keys=on", dsn)
	}

	conn, err := sql.Open(d.driver(), connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if d == sqlite {
		conn.SetMaxOpenConns(1) // SQLite works best with single writer
		conn.SetMaxIdleConns(1)
	} else {
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(10)
	}
	conn.SetConnMaxLifetime(time.Hour)

	db := &Database{conn: conn, dialect: d}

	if err := db.initialize(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return db, nil
}

// initialize creates tables and indexes
func (db *Database) initialize() error {
	for i, stmt := range db.dialect.schema() {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("exec schema statement #%d: %w", i+1, err)
		}
	}
	return nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.conn.Close()
}

// InsertRun stores a report run and its route summaries in one transaction
// and sets run.ID.
func (db *Database) InsertRun(run *models.ReportRun, summaries []models.RouteSummary) error {
	sources, err := json.Marshal(run.Sources)
	if err != nil {
		return fmt.Errorf("insert run: encode sources: %w", err)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.RouteCount = len(summaries)

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("insert run: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRow(db.rebind(`
		INSERT INTO report_runs (created_at, sources, record_count, route_count)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`), run.CreatedAt, string(sources), run.RecordCount, run.RouteCount).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(db.rebind(`
		INSERT INTO route_summaries
		(run_id, location, route_id, vehicle, driver, capacity, stops,
		 distance_km, fill_rate, arrival, departure, duration, cost)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`))
	if err != nil {
		return fmt.Errorf("insert run: prepare summaries: %w", err)
	}
	defer stmt.Close()

	for _, s := range summaries {
		_, err := stmt.Exec(
			id, s.Location, s.RouteID, s.Vehicle, s.Driver, s.Capacity, s.Stops,
			s.DistanceKm, s.FillRatePercent, s.Arrival, s.Departure, s.Duration, s.Cost,
		)
		if err != nil {
			return fmt.Errorf("insert run: summary %s/%d: %w", s.Location, s.RouteID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert run: commit tx: %w", err)
	}
	run.ID = id
	return nil
}

// ListRuns returns stored runs, newest first
func (db *Database) ListRuns(limit int) ([]models.ReportRun, error) {
	query := `SELECT id, created_at, sources, record_count, route_count FROM report_runs ORDER BY id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.ReportRun
	for rows.Next() {
		var r models.ReportRun
		var sources string
		if err := rows.Scan(&r.ID, &r.CreatedAt, &sources, &r.RecordCount, &r.RouteCount); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(sources), &r.Sources); err != nil {
			return nil, fmt.Errorf("decode sources of run %d: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LatestRunID returns the id of the newest run, or 0 when nothing is stored
func (db *Database) LatestRunID() (int64, error) {
	var id int64
	err := db.conn.QueryRow(`SELECT id FROM report_runs ORDER BY id DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return id, err
}

// QuerySummaries retrieves route summaries of one run (the latest when
// q.RunID is zero), ordered as in the report
func (db *Database) QuerySummaries(q models.SummaryQuery) ([]models.RouteSummary, error) {
	runID := q.RunID
	if runID == 0 {
		var err error
		if runID, err = db.LatestRunID(); err != nil {
			return nil, err
		}
		if runID == 0 {
			return nil, nil
		}
	}

	conditions := []string{"run_id = ?"}
	args := []interface{}{runID}

	if q.Location != "" {
		conditions = append(conditions, "location = ?")
		args = append(args, q.Location)
	}
	if q.Driver != "" {
		conditions = append(conditions, "driver = ?")
		args = append(args, q.Driver)
	}
	if q.RouteID > 0 {
		conditions = append(conditions, "route_id = ?")
		args = append(args, q.RouteID)
	}

	query := `
		SELECT location, route_id, vehicle, driver, capacity, stops, distance_km,
		       fill_rate, arrival, departure, duration, cost
		FROM route_summaries
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY location, route_id, driver`

	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
		if q.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", q.Offset)
		}
	}

	rows, err := db.conn.Query(db.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.RouteSummary
	for rows.Next() {
		var s models.RouteSummary
		err := rows.Scan(
			&s.Location, &s.RouteID, &s.Vehicle, &s.Driver, &s.Capacity, &s.Stops,
			&s.DistanceKm, &s.FillRatePercent, &s.Arrival, &s.Departure, &s.Duration, &s.Cost,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, s)
	}

	return results, rows.Err()
}

// GetStats returns database statistics
func (db *Database) GetStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var totalRuns int64
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM report_runs").Scan(&totalRuns); err != nil {
		return nil, err
	}
	stats["total_runs"] = totalRuns

	var totalRoutes int64
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM route_summaries").Scan(&totalRoutes); err != nil {
		return nil, err
	}
	stats["total_route_summaries"] = totalRoutes

	latest, err := db.LatestRunID()
	if err != nil {
		return nil, err
	}
	stats["latest_run_id"] = latest

	var routes int64
	var cost sql.NullFloat64
	var distance sql.NullInt64
	err = db.conn.QueryRow(db.rebind(`
		SELECT COUNT(*), SUM(cost), SUM(distance_km) FROM route_summaries WHERE run_id = ?
	`), latest).Scan(&routes, &cost, &distance)
	if err != nil {
		return nil, err
	}
	stats["latest_run_routes"] = routes
	stats["latest_run_cost"] = cost.Float64
	stats["latest_run_distance_km"] = distance.Int64

	return stats, nil
}

// rebind rewrites ? placeholders to the dialect's form
func (db *Database) rebind(query string) string {
	if db.dialect != postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
