package app

import (
	"fmt"
	"io"
	"strings"

	"coinbt/internal/backtest"
	"coinbt/internal/sweep"
)

type StartupSummary struct {
	Source   string
	Target   string
	Days     string
	Strategy backtest.Params
	Grid     sweep.Grid
	Workers  int
	Store    string
	Chart    string
}

func (s *StartupSummary) Print(w io.Writer) {
	if s == nil {
		return
	}
	title := "启动配置摘要 (STARTUP SUMMARY)"
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "%*s\n", 40+len(title)/2, title)
	fmt.Fprintln(w, strings.Repeat("=", 80))

	fmt.Fprintln(w, "[价格源 (SOURCE)]")
	fmt.Fprintf(w, "  来源: %s\n", s.Source)
	fmt.Fprintf(w, "  标的: %s\n", s.Target)
	fmt.Fprintf(w, "  天数: %s\n", orDash(s.Days))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[策略 (STRATEGY)]")
	fmt.Fprintf(w, "  参数: %s\n", s.Strategy)
	fmt.Fprintf(w, "  网格: %s (%d 组, workers=%d)\n", s.Grid, s.Grid.Size(), s.Workers)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[输出 (OUTPUT)]")
	fmt.Fprintf(w, "  图表: %s\n", orDash(s.Chart))
	fmt.Fprintf(w, "  存储: %s\n", s.Store)
	fmt.Fprintln(w, strings.Repeat("=", 80))
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}
