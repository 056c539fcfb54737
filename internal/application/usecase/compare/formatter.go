package compare

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"deltawatch/internal/domain/model"
	dsvc "deltawatch/internal/domain/service"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiDim    = "\033[2m"
)

const na = "N/A"

type Formatter struct {
	Color bool
}

func NewFormatter(color bool) *Formatter {
	return &Formatter{Color: color}
}

func (f *Formatter) colorize(s, c string) string {
	if !f.Color {
		return s
	}
	return c + s + ansiReset
}

func (f *Formatter) trendColor(pct float64) string {
	switch dsvc.TrendOf(pct) {
	case dsvc.TrendUp:
		return ansiGreen
	case dsvc.TrendDown:
		return ansiRed
	default:
		return ansiYellow
	}
}

// Render 渲染一份报告；缺失的价格和涨跌幅显示为 N/A
func (f *Formatter) Render(r *model.Report) string {
	var sb strings.Builder

	sb.WriteString(f.colorize("[DELTAWATCH] ", ansiDim))
	sb.WriteString(r.Symbol)
	sb.WriteString("\n")

	current := na
	if r.Current.Valid {
		current = FormatUSD(r.Current.Decimal)
	}
	fmt.Fprintf(&sb, "  %-16s %s\n", "Current Price", current)

	for _, c := range r.Comparisons {
		ref := na
		if c.Reference.Valid {
			ref = FormatUSD(c.Reference.Decimal)
		}
		pct := dsvc.FormatPercent(c.Change, c.HasChange)
		col := ansiYellow
		if c.HasChange {
			col = f.trendColor(c.Change)
		}
		fmt.Fprintf(&sb, "  %-16s %-14s %s\n", "vs "+c.Label, ref, f.colorize(pct, col))
	}

	if len(r.Comparisons) == 0 {
		return sb.String()
	}

	if !r.Complete() {
		sb.WriteString(f.colorize("  some price data is unavailable", ansiDim))
		sb.WriteString("\n")
		return sb.String()
	}

	for _, c := range r.Comparisons {
		if !c.HasChange {
			continue
		}
		diff, _ := dsvc.AbsoluteDifference(c.Reference, r.Current)
		trend := dsvc.TrendOf(c.Change)
		summary := fmt.Sprintf("%s by %.2f%%", trend, abs(c.Change))
		fmt.Fprintf(&sb, "  %-16s %-14s %s\n", "since "+c.Label, FormatSignedUSD(diff), f.colorize(summary, f.trendColor(c.Change)))
	}
	return sb.String()
}

// FormatUSD renders d as "$50,000.00".
func FormatUSD(d decimal.Decimal) string {
	return "$" + humanize.FormatFloat("#,###.##", d.InexactFloat64())
}

// FormatSignedUSD renders d as "+1,000.00" / "-1,000.00".
func FormatSignedUSD(d decimal.Decimal) string {
	s := humanize.FormatFloat("#,###.##", d.Abs().InexactFloat64())
	if d.IsNegative() {
		return "-" + s
	}
	return "+" + s
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
