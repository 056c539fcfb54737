package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"deltawatch/internal/application/port"
	"deltawatch/internal/domain/model"
	"deltawatch/internal/infrastructure/storage"
)

type Repo struct {
	db *sql.DB
}

func New(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

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
  id BIGSERIAL PRIMARY KEY,
  symbol TEXT NOT NULL,
  ts_ms BIGINT NOT NULL,
  current_price NUMERIC,
  current_error TEXT NOT NULL DEFAULT '',
  payload JSONB NOT NULL,
  created_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_symbol_ts ON reports(symbol, ts_ms);

CREATE TABLE IF NOT EXISTS comparisons (
  id BIGSERIAL PRIMARY KEY,
  report_id BIGINT NOT NULL REFERENCES reports(id),
  label TEXT NOT NULL,
  target_ms BIGINT NOT NULL,
  reference_price NUMERIC,
  change_pct DOUBLE PRECISION,
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

	var reportID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO reports(symbol, ts_ms, current_price, current_error, payload, created_at)
		VALUES($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, rec.Symbol, rec.TsMs, rec.Current, rec.CurrentError, payload, time.Now().UnixMilli()).Scan(&reportID)
	if err != nil {
		return err
	}

	for _, c := range rec.Comparisons {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO comparisons(report_id, label, target_ms, reference_price, change_pct, error)
			VALUES($1, $2, $3, $4, $5, $6)
		`, reportID, c.Label, c.TargetMs, c.Reference, c.ChangePct, c.Error); err != nil {
			return err
		}
	}
	return tx.Commit()
}

var _ port.ReportRepository = (*Repo)(nil)
