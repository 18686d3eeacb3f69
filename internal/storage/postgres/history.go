package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jmpark/outageboard/internal/core"
)

func NewConnection(databaseURL string, maxConns, maxIdle int) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// Migrate applies pending schema migrations.
func Migrate(sourcePath, databaseURL string) error {
	m, err := migrate.New(sourcePath, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// HistoryRepo persists one row per outage record per scrape cycle so
// the dashboard can chart how a service's status evolved over time.
type HistoryRepo struct {
	db *sqlx.DB
}

func NewHistoryRepo(db *sqlx.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

func (r *HistoryRepo) Ping() error {
	return r.db.Ping()
}

// SaveSnapshot inserts the whole snapshot in one transaction.
func (r *HistoryRepo) SaveSnapshot(snap *core.Snapshot) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO outage_history (
            cycle_id, region, category, name, severity, report_series, taken_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, rec := range snap.Records {
		series := make([]int64, len(rec.ReportSeries))
		for i, v := range rec.ReportSeries {
			series[i] = int64(v)
		}

		if _, err := tx.Exec(query,
			snap.CycleID,
			string(rec.Region),
			string(rec.Category),
			rec.Name,
			string(rec.Severity),
			pq.Array(series),
			snap.TakenAt,
		); err != nil {
			return fmt.Errorf("failed to insert history row for %s: %w", rec.Name, err)
		}
	}

	return tx.Commit()
}

// HistoryPoint is one past observation of a service.
type HistoryPoint struct {
	CycleID  string        `json:"cycle_id" db:"cycle_id"`
	Severity core.Severity `json:"severity" db:"severity"`
	TakenAt  time.Time     `json:"taken_at" db:"taken_at"`
}

// RecentHistory returns the latest observations for (region, name),
// newest first.
func (r *HistoryRepo) RecentHistory(region core.Region, name string, limit int) ([]HistoryPoint, error) {
	if limit <= 0 {
		limit = 50
	}

	var points []HistoryPoint
	query := `
        SELECT cycle_id, severity, taken_at
        FROM outage_history
        WHERE region = $1 AND lower(name) = lower($2)
        ORDER BY taken_at DESC
        LIMIT $3`

	err := r.db.Select(&points, query, string(region), name, limit)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return points, err
}
