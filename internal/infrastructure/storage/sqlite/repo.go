package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"deltawatch/internal/application/port"
	"deltawatch/internal/domain/model"
	"deltawatch/internal/infrastructure/storage"
)

type Repo struct {
	db *sql.DB
}

func New(path string) (*Repo, error) {
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS reports (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  symbol TEXT NOT NULL,
  ts_ms INTEGER NOT NULL,
  current_price TEXT,
  current_error TEXT NOT NULL DEFAULT '',
  payload TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_symbol_ts ON reports(symbol, ts_ms);

CREATE TABLE IF NOT EXISTS comparisons (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  report_id INTEGER NOT NULL REFERENCES reports(id),
  label TEXT NOT NULL,
  target_ms INTEGER NOT NULL,
  reference_price TEXT,
  change_pct REAL,
  error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_comparisons_report ON comparisons(report_id);
`)
	return err
}

func (r *Repo) InsertReport(ctx context.Context, report *model.Report) error {
	rec := storage.NewReportRecord(report)
	payload, err := rec.Payload()
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO reports(symbol, ts_ms, current_price, current_error, payload, created_at)
		VALUES(?, ?, ?, ?, ?, ?)
	`, rec.Symbol, rec.TsMs, rec.Current, rec.CurrentError, payload, time.Now().UnixMilli())
	if err != nil {
		return err
	}
	reportID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for _, c := range rec.Comparisons {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO comparisons(report_id, label, target_ms, reference_price, change_pct, error)
			VALUES(?, ?, ?, ?, ?, ?)
		`, reportID, c.Label, c.TargetMs, c.Reference, c.ChangePct, c.Error); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LatestReports returns up to limit journal records for symbol, newest first.
func (r *Repo) LatestReports(ctx context.Context, symbol string, limit int) ([]*storage.ReportRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT payload FROM reports
		WHERE symbol = ?
		ORDER BY ts_ms DESC, id DESC
		LIMIT ?
	`, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*storage.ReportRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		rec, err := storage.DecodeReportRecord(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountComparisons returns the number of comparison rows stored for symbol.
func (r *Repo) CountComparisons(ctx context.Context, symbol string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM comparisons c
		JOIN reports r ON r.id = c.report_id
		WHERE r.symbol = ?
	`, symbol).Scan(&n)
	return n, err
}

var _ port.ReportRepository = (*Repo)(nil)
