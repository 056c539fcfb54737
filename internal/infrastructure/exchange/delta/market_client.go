package delta

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"deltawatch/internal/domain/model"
	"deltawatch/internal/domain/service"
)

// MarketClient Delta 行情查询客户端
type MarketClient struct {
	*APIClient
}

// NewMarketClient 创建行情客户端
func NewMarketClient(client *APIClient) *MarketClient {
	return &MarketClient{APIClient: client}
}

// tickerResponse GET /v2/tickers/{symbol}
// close 可能是字符串也可能是数字，decimal 两种都能解析
type tickerResponse struct {
	Success bool          `json:"success"`
	Result  *tickerResult `json:"result" validate:"required"`
}

type tickerResult struct {
	Symbol string           `json:"symbol"`
	Close  *decimal.Decimal `json:"close" validate:"required"`
}

// candlesResponse GET /v2/history/candles，按时间升序
type candlesResponse struct {
	Success bool        `json:"success"`
	Result  []candleDTO `json:"result" validate:"dive"`
}

type candleDTO struct {
	Time  int64            `json:"time" validate:"gt=0"` // unix 秒
	Open  decimal.Decimal  `json:"open"`
	High  decimal.Decimal  `json:"high"`
	Low   decimal.Decimal  `json:"low"`
	Close *decimal.Decimal `json:"close" validate:"required"`
}

// GetCurrentPrice 获取最新成交价（公开接口，无需签名）
func (c *MarketClient) GetCurrentPrice(ctx context.Context, symbol string) (*model.PriceQuote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	path := "/v2/tickers/" + url.PathEscape(symbol)

	body, err := c.publicRequest(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch delta ticker %s: %w", symbol, err)
	}

	var resp tickerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("malformed ticker response")
		return nil, fmt.Errorf("%w: ticker %s: %v", ErrNotFound, symbol, err)
	}
	if !resp.Success {
		log.Warn().Str("symbol", symbol).Msg("ticker response without success flag")
		return nil, fmt.Errorf("%w: ticker %s", ErrNotFound, symbol)
	}
	if err := c.validate.Struct(&resp); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("ticker response missing close")
		return nil, fmt.Errorf("%w: ticker %s: %v", ErrNotFound, symbol, err)
	}
	if !resp.Result.Close.IsPositive() {
		log.Warn().Str("symbol", symbol).Str("close", resp.Result.Close.String()).Msg("ticker close is not positive")
		return nil, fmt.Errorf("%w: ticker %s: close %s", ErrNotFound, symbol, resp.Result.Close)
	}

	return &model.PriceQuote{
		Symbol: symbol,
		Price:  *resp.Result.Close,
		AsOf:   c.now().UTC(),
	}, nil
}

// GetCandles 获取 [start, end] 区间内的K线（签名请求）
func (c *MarketClient) GetCandles(ctx context.Context, symbol string, start, end time.Time, resolution string) ([]model.Candle, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("resolution", resolution)
	params.Set("start", strconv.FormatInt(start.Unix(), 10))
	params.Set("end", strconv.FormatInt(end.Unix(), 10))

	body, err := c.signedQueryRequest(ctx, http.MethodGet, "/v2/history/candles", params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch delta candles %s: %w", symbol, err)
	}

	var resp candlesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("malformed candles response")
		return nil, fmt.Errorf("%w: candles %s: %v", ErrNotFound, symbol, err)
	}
	if !resp.Success {
		log.Warn().Str("symbol", symbol).Msg("candles response without success flag")
		return nil, fmt.Errorf("%w: candles %s", ErrNotFound, symbol)
	}
	if err := c.validate.Struct(&resp); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("candles response failed validation")
		return nil, fmt.Errorf("%w: candles %s: %v", ErrNotFound, symbol, err)
	}

	step, _ := service.ParseResolution(resolution)
	out := make([]model.Candle, 0, len(resp.Result))
	for _, dto := range resp.Result {
		st := time.Unix(dto.Time, 0).UTC()
		out = append(out, model.Candle{
			Symbol:     symbol,
			Resolution: resolution,
			Start:      st,
			End:        st.Add(step),
			Open:       dto.Open,
			High:       dto.High,
			Low:        dto.Low,
			Close:      *dto.Close,
		})
	}
	return out, nil
}

// GetCandleClose 返回窗口内最后一根K线（最接近 end）的收盘价
func (c *MarketClient) GetCandleClose(ctx context.Context, symbol string, start, end time.Time, resolution string) (decimal.Decimal, error) {
	candles, err := c.GetCandles(ctx, symbol, start, end, resolution)
	if err != nil {
		return decimal.Zero, err
	}
	if len(candles) == 0 {
		return decimal.Zero, fmt.Errorf("%w: %s %s [%d, %d]", ErrNoData, symbol, resolution, start.Unix(), end.Unix())
	}
	return candles[len(candles)-1].Close, nil
}
