package sweep

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"coinbt/internal/backtest"
)

var hundred = decimal.NewFromInt(100)

// Printer 把每个结果输出为一行；limit > 0 时只打印前 limit 行。
type Printer struct {
	w       io.Writer
	limit   int
	rows    int
	printed int
	skipped int
}

func NewPrinter(w io.Writer, limit, rows int) *Printer {
	if rows <= 0 {
		rows = 3
	}
	return &Printer{w: w, limit: limit, rows: rows}
}

func (p *Printer) Consume(e Entry) error {
	if p.limit > 0 && p.printed >= p.limit {
		p.skipped++
		return nil
	}
	s := e.Result.Summary()
	_, err := fmt.Fprintf(p.w, "#%d %s hold=%s trade=%s excess=%s mdd=%s hold%s trade%s\n",
		e.Index,
		e.Result.Params,
		FormatMultiple(s.FinalHold),
		FormatMultiple(s.FinalTrade),
		FormatPercent(s.Excess),
		FormatDrawdown(s.MaxDrawdown),
		headTail(e.Result.Hold, p.rows),
		headTail(e.Result.Trade, p.rows),
	)
	if err != nil {
		return err
	}
	p.printed++
	return nil
}

// Skipped 返回因 limit 被省略的行数。
func (p *Printer) Skipped() int { return p.skipped }

func headTail(series backtest.ReturnSeries, n int) string {
	format := func(vals []float64) string {
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = FormatMultiple(v)
		}
		return strings.Join(parts, " ")
	}
	if len(series) <= 2*n {
		return "[" + format(series) + "]"
	}
	return "[" + format(series[:n]) + " ... " + format(series[len(series)-n:]) + "]"
}

// FormatMultiple 以 4 位小数输出收益倍数。
func FormatMultiple(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return decimal.NewFromFloat(v).StringFixed(4)
}

// FormatDrawdown 把最大回撤（非负比例）显示为亏损百分比，如 0.12 -> -12.00%。
func FormatDrawdown(v float64) string {
	return FormatPercent(-v)
}

// FormatPercent 把比例格式化为带符号的百分比。
func FormatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	d := decimal.NewFromFloat(v).Mul(hundred)
	out := d.StringFixed(2) + "%"
	if d.IsPositive() {
		out = "+" + out
	}
	return out
}
