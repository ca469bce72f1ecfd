package app

import (
	"fmt"
	"io"
	"text/tabwriter"

	"coinbt/internal/backtest"
	"coinbt/internal/sweep"
)

// PrintHeadTail 以表格打印收益序列的前 n 行与后 n 行。
func PrintHeadTail(w io.Writer, res backtest.Result, n int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "date\thold\ttrade\t")
	total := res.Len()
	row := func(i int) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", res.Times[i].Format("2006-01-02"),
			sweep.FormatMultiple(res.Hold[i]), sweep.FormatMultiple(res.Trade[i]))
	}
	if total <= 2*n {
		for i := 0; i < total; i++ {
			row(i)
		}
	} else {
		for i := 0; i < n; i++ {
			row(i)
		}
		fmt.Fprintln(tw, "...\t\t\t")
		for i := total - n; i < total; i++ {
			row(i)
		}
	}
	fmt.Fprintf(tw, "[%d rows]\t\t\t\n", total)
	return tw.Flush()
}

// PrintSummary 打印单次回测的摘要行。
func PrintSummary(w io.Writer, s backtest.Summary) error {
	_, err := fmt.Fprintf(w, "%s points=%d hold=%s trade=%s excess=%s mdd=%s long=%d short=%d flat=%d\n",
		s.Params, s.Points,
		sweep.FormatMultiple(s.FinalHold), sweep.FormatMultiple(s.FinalTrade),
		sweep.FormatPercent(s.Excess), sweep.FormatDrawdown(s.MaxDrawdown),
		s.LongSteps, s.ShortSteps, s.FlatSteps)
	return err
}

// PrintBest 打印扫描中最终收益最高的组合。
func PrintBest(w io.Writer, index int, s backtest.Summary) error {
	if _, err := fmt.Fprintf(w, "best #%d ", index); err != nil {
		return err
	}
	return PrintSummary(w, s)
}
