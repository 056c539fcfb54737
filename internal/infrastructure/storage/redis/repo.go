package redis

import (
	"context"
	"strings"
	"time"

	"deltawatch/internal/application/port"
	"deltawatch/internal/domain/model"
	"deltawatch/internal/infrastructure/storage"

	"github.com/redis/go-redis/v9"
)

type Repo struct {
	rdb          *redis.Client
	prefix       string
	ttl          time.Duration
	keyLatest    string // prefix + ":latest"
	reportStream string
	reportChan   string
	streamMaxLen int64
}

func New(rdb *redis.Client, prefix string, ttl time.Duration, reportStream, reportChan string, streamMaxLen int64) *Repo {
	if strings.TrimSpace(prefix) == "" {
		prefix = "deltawatch"
	}
	if strings.TrimSpace(reportStream) == "" {
		reportStream = prefix + ":reports"
	}
	if strings.TrimSpace(reportChan) == "" {
		reportChan = prefix + ":reports:pub"
	}
	return &Repo{
		rdb:          rdb,
		prefix:       prefix,
		ttl:          ttl,
		keyLatest:    prefix + ":latest",
		reportStream: reportStream,
		reportChan:   reportChan,
		streamMaxLen: streamMaxLen,
	}
}

func (r *Repo) InsertReport(ctx context.Context, report *model.Report) error {
	rec := storage.NewReportRecord(report)
	payload, err := rec.Payload()
	if err != nil {
		return err
	}

	// 1) Hash: field = symbol -> latest report json
	pipe := r.rdb.Pipeline()
	pipe.HSet(ctx, r.keyLatest, rec.Symbol, payload)
	if r.ttl > 0 {
		pipe.Expire(ctx, r.keyLatest, r.ttl)
	}

	// 2) Stream: XADD <stream> * ts_ms symbol payload
	args := &redis.XAddArgs{
		Stream: r.reportStream,
		Values: []interface{}{"ts_ms", rec.TsMs, "symbol", rec.Symbol, "payload", payload},
	}
	if r.streamMaxLen > 0 {
		args.MaxLen = r.streamMaxLen
		args.Approx = true
	}
	pipe.XAdd(ctx, args)

	// 3) PubSub: PUBLISH <channel> json
	pipe.Publish(ctx, r.reportChan, payload)

	_, err = pipe.Exec(ctx)
	return err
}

// Latest returns the last journaled report for symbol.
func (r *Repo) Latest(ctx context.Context, symbol string) (*storage.ReportRecord, error) {
	payload, err := r.rdb.HGet(ctx, r.keyLatest, symbol).Result()
	if err != nil {
		return nil, err
	}
	return storage.DecodeReportRecord(payload)
}

// Close is a no-op: the client is owned by the container.
func (r *Repo) Close() error { return nil }

var _ port.ReportRepository = (*Repo)(nil)
