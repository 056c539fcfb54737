package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"deltawatch/internal/domain/model"
)

// MarketData 行情来源：最新价 + 指定窗口的K线收盘价
type MarketData interface {
	GetCurrentPrice(ctx context.Context, symbol string) (*model.PriceQuote, error)
	GetCandleClose(ctx context.Context, symbol string, start, end time.Time, resolution string) (decimal.Decimal, error)
}

// AccountReader 账户信息，用于启动时校验凭证
type AccountReader interface {
	GetAccountProfile(ctx context.Context) (*model.Profile, error)
}
