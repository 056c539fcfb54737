package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Comparison 当前价与某个参考时点价格的对比结果
// Reference/Change 缺失时表示该时点没有取到数据，Err 记录原因
type Comparison struct {
	Label     string              `json:"label"`
	Target    time.Time           `json:"target"`
	Reference decimal.NullDecimal `json:"reference"`
	Change    float64             `json:"change_pct"`
	HasChange bool                `json:"has_change"`
	Err       error               `json:"-"`
}

// Report 一次完整刷新周期的产出
type Report struct {
	Symbol      string              `json:"symbol"`
	Current     decimal.NullDecimal `json:"current"`
	CurrentErr  error               `json:"-"`
	Comparisons []Comparison        `json:"comparisons"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// Complete reports whether the current price and every reference price are present.
func (r *Report) Complete() bool {
	if !r.Current.Valid {
		return false
	}
	for _, c := range r.Comparisons {
		if !c.Reference.Valid {
			return false
		}
	}
	return true
}
