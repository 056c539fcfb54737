package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deltawatch/internal/domain/model"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func report(ts time.Time) *model.Report {
	return &model.Report{
		Symbol:      "BTCUSDT",
		Current:     decimal.NewNullDecimal(decimal.NewFromInt(50000)),
		GeneratedAt: ts,
		Comparisons: []model.Comparison{{
			Label:     "05:29:59",
			Reference: decimal.NewNullDecimal(decimal.NewFromInt(49000)),
			Change:    2.04,
			HasChange: true,
		}},
	}
}

func TestRedisRepoInsertReport(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	repo := New(rdb, "test", time.Hour, "", "", 100)

	ctx := context.Background()
	sub := rdb.Subscribe(ctx, "test:reports:pub")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	ts := time.Date(2024, 1, 1, 2, 30, 0, 0, time.UTC)
	require.NoError(t, repo.InsertReport(ctx, report(ts)))

	latest, err := repo.Latest(ctx, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, ts.UnixMilli(), latest.TsMs)
	require.NotNil(t, latest.Current)
	assert.Equal(t, "50000", *latest.Current)

	assert.True(t, mr.TTL("test:latest") > 0)

	entries, err := rdb.XRange(ctx, "test:reports", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "BTCUSDT", entries[0].Values["symbol"])

	select {
	case msg := <-sub.Channel():
		assert.Contains(t, msg.Payload, `"symbol":"BTCUSDT"`)
	case <-time.After(2 * time.Second):
		t.Fatal("no report published")
	}
}

func TestRedisRepoLatestMissing(t *testing.T) {
	_, rdb := setupTestRedis(t)
	repo := New(rdb, "", 0, "", "", 0)

	_, err := repo.Latest(context.Background(), "BTCUSDT")
	assert.ErrorIs(t, err, redis.Nil)
}
