package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ========== Market Models ==========

// PriceQuote 最新成交价快照
type PriceQuote struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	AsOf   time.Time       `json:"as_of"`
}

// Candle OHLC K线，Start/End 均为 UTC
type Candle struct {
	Symbol     string          `json:"symbol"`
	Resolution string          `json:"resolution"`
	Start      time.Time       `json:"start"`
	End        time.Time       `json:"end"`
	Open       decimal.Decimal `json:"open"`
	High       decimal.Decimal `json:"high"`
	Low        decimal.Decimal `json:"low"`
	Close      decimal.Decimal `json:"close"`
}

// Profile 账户信息（仅用于校验凭证）
type Profile struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname,omitempty"`
	Country  string `json:"country,omitempty"`
}

// ========== Time Target ==========

// TimeTarget is a local time of day; it is resolved against "today" on every run.
type TimeTarget struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeTarget parses "HH:MM:SS" (or "HH:MM").
func ParseTimeTarget(s string) (TimeTarget, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return TimeTarget{}, fmt.Errorf("invalid time target %q: want HH:MM:SS", s)
	}

	vals := [3]int{}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return TimeTarget{}, fmt.Errorf("invalid time target %q: %w", s, err)
		}
		vals[i] = n
	}

	t := TimeTarget{Hour: vals[0], Minute: vals[1], Second: vals[2]}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 || t.Second < 0 || t.Second > 59 {
		return TimeTarget{}, fmt.Errorf("invalid time target %q: out of range", s)
	}
	return t, nil
}

func (t TimeTarget) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}
