package service

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PercentChange returns (newPrice-oldPrice)/oldPrice*100.
// ok is false when either price is absent or oldPrice is zero.
func PercentChange(oldPrice, newPrice decimal.NullDecimal) (pct float64, ok bool) {
	if !oldPrice.Valid || !newPrice.Valid || oldPrice.Decimal.IsZero() {
		return 0, false
	}
	return newPrice.Decimal.Sub(oldPrice.Decimal).Div(oldPrice.Decimal).Mul(hundred).InexactFloat64(), true
}

// AbsoluteDifference returns newPrice-oldPrice when both are present.
func AbsoluteDifference(oldPrice, newPrice decimal.NullDecimal) (decimal.Decimal, bool) {
	if !oldPrice.Valid || !newPrice.Valid {
		return decimal.Zero, false
	}
	return newPrice.Decimal.Sub(oldPrice.Decimal), true
}

// FormatPercent renders a signed percentage, "N/A" when absent.
func FormatPercent(pct float64, ok bool) string {
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%+.2f%%", pct)
}

// Trend 价格相对参考点的方向
type Trend int

const (
	TrendSame Trend = 0
	TrendUp   Trend = +1
	TrendDown Trend = -1
)

func TrendOf(pct float64) Trend {
	switch {
	case pct > 0:
		return TrendUp
	case pct < 0:
		return TrendDown
	default:
		return TrendSame
	}
}

func (t Trend) String() string {
	switch t {
	case TrendUp:
		return "Higher"
	case TrendDown:
		return "Lower"
	default:
		return "Same"
	}
}
