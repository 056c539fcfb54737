package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deltawatch/internal/domain/model"
)

func partialReport() *model.Report {
	return &model.Report{
		Symbol:      "BTCUSDT",
		Current:     decimal.NewNullDecimal(decimal.RequireFromString("50000.5")),
		GeneratedAt: time.Date(2024, 1, 1, 2, 30, 0, 0, time.UTC),
		Comparisons: []model.Comparison{
			{
				Label:     "05:29:59",
				Target:    time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC),
				Reference: decimal.NewNullDecimal(decimal.NewFromInt(49000)),
				Change:    2.0418,
				HasChange: true,
			},
			{
				Label:  "17:29:59",
				Target: time.Date(2023, 12, 31, 11, 59, 59, 0, time.UTC),
				Err:    errors.New("delta: no candle data"),
			},
		},
	}
}

func TestNewReportRecordKeepsAbsentValuesNull(t *testing.T) {
	rec := NewReportRecord(partialReport())

	require.NotNil(t, rec.Current)
	assert.Equal(t, "50000.5", *rec.Current)
	assert.Equal(t, int64(1704076200000), rec.TsMs)
	require.Len(t, rec.Comparisons, 2)

	first := rec.Comparisons[0]
	require.NotNil(t, first.Reference)
	require.NotNil(t, first.ChangePct)
	assert.Equal(t, "49000", *first.Reference)
	assert.InDelta(t, 2.0418, *first.ChangePct, 1e-9)

	second := rec.Comparisons[1]
	assert.Nil(t, second.Reference)
	assert.Nil(t, second.ChangePct)
	assert.Equal(t, "delta: no candle data", second.Error)
}

func TestPayloadDecodesBack(t *testing.T) {
	rec := NewReportRecord(partialReport())
	payload, err := rec.Payload()
	require.NoError(t, err)
	assert.Contains(t, payload, `"reference":null`)

	got, err := DecodeReportRecord(payload)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestDecodeReportRecordInvalid(t *testing.T) {
	_, err := DecodeReportRecord("{")
	assert.Error(t, err)
}

func TestInMemoryReportRepository(t *testing.T) {
	repo := NewInMemoryReportRepository()
	ctx := context.Background()

	require.NoError(t, repo.InsertReport(ctx, partialReport()))
	require.NoError(t, repo.InsertReport(ctx, &model.Report{Symbol: "ETHUSDT"}))

	recs := repo.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "BTCUSDT", recs[0].Symbol)
	assert.Equal(t, "ETHUSDT", recs[1].Symbol)
	assert.Nil(t, recs[1].Current)
	assert.NoError(t, repo.Close())
}
