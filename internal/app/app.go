package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"coinbt/internal/analysis/visual"
	"coinbt/internal/backtest"
	"coinbt/internal/config"
	"coinbt/internal/logger"
	"coinbt/internal/market"
	"coinbt/internal/scheduler"
	"coinbt/internal/store"
	"coinbt/internal/store/gormstore"
	"coinbt/internal/sweep"
	backtesthttp "coinbt/internal/transport/http/backtest"

	"golang.org/x/sync/errgroup"
)

const headTailRows = 5

// App 负责应用级编排：拉取价格→评估策略→参数扫描→输出/入库/对外服务。
type App struct {
	cfg     *config.Config
	source  market.HistorySource
	runner  *sweep.Runner
	store   *gormstore.GormStore
	out     io.Writer
	Summary *StartupSummary
}

// NewApp 根据配置构建应用对象（不启动）
func NewApp(cfg *config.Config, opts ...AppBuilderOption) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	return buildAppWithWire(context.Background(), cfg, opts)
}

// Close 释放结果存储连接。
func (a *App) Close() error {
	if a == nil || a.store == nil {
		return nil
	}
	return a.store.Close()
}

// FetchSeries 从配置的价格源拉取历史价格。
func (a *App) FetchSeries(ctx context.Context) (market.PriceSeries, error) {
	start := time.Now()
	series, err := a.source.FetchSeries(ctx, fetchRequest(a.cfg.Source))
	observeFetch(a.source.Name(), start, err)
	if err != nil {
		return nil, fmt.Errorf("fetch %s prices: %w", a.cfg.Source.Label(), err)
	}
	logger.Infof("✓ %s 获取 %d 个价格点 (%s)", a.source.Name(), series.Len(), a.cfg.Source.Label())
	return series, nil
}

// Backtest 用配置中的策略参数评估一次，打印收益序列首尾并渲染对比图。
func (a *App) Backtest(ctx context.Context) (backtest.Result, error) {
	series, err := a.FetchSeries(ctx)
	if err != nil {
		return backtest.Result{}, err
	}
	return a.backtestSeries(ctx, series)
}

// BacktestWatch 先回测一次，之后每当配置文件（含 include）变化，
// 用新的 strategy/chart 配置在同一份价格上重新评估，不重新拉取。
func (a *App) BacktestWatch(ctx context.Context, configPath string) error {
	if strings.TrimSpace(configPath) == "" {
		return errors.New("watch requires a config file")
	}
	series, err := a.FetchSeries(ctx)
	if err != nil {
		return err
	}
	if _, err := a.backtestSeries(ctx, series); err != nil {
		return err
	}
	return config.Watch(ctx, configPath, func(next *config.Config) {
		a.cfg.Strategy = next.Strategy
		a.cfg.Chart = next.Chart
		logger.Infof("配置已更新，重新评估 %s", next.Strategy)
		if _, err := a.backtestSeries(ctx, series); err != nil {
			logger.Errorf("重新评估失败: %v", err)
		}
	})
}

func (a *App) backtestSeries(ctx context.Context, series market.PriceSeries) (backtest.Result, error) {
	res := backtest.Evaluate(series, a.cfg.Strategy)
	if err := PrintHeadTail(a.out, res, headTailRows); err != nil {
		return res, err
	}
	if err := PrintSummary(a.out, res.Summary()); err != nil {
		return res, err
	}
	if err := a.renderChart(ctx, res); err != nil {
		return res, err
	}
	return res, nil
}

func (a *App) renderChart(ctx context.Context, res backtest.Result) error {
	chart := a.cfg.Chart
	if strings.TrimSpace(chart.HTMLPath) == "" && strings.TrimSpace(chart.PNGPath) == "" {
		return nil
	}
	in := visual.ReturnsInput{
		Title:    chart.Title,
		Subtitle: fmt.Sprintf("%s | %s", a.cfg.Source.Label(), res.Params),
		Width:    chart.Width,
		Height:   chart.Height,
		Times:    res.Times,
		Hold:     res.Hold,
		Trade:    res.Trade,
	}
	if err := visual.RenderReturns(ctx, in, chart.HTMLPath, chart.PNGPath); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	logger.Infof("✓ 收益对比图已写入 %s", chart.HTMLPath)
	return nil
}

// SweepReport 汇总一次参数扫描。
type SweepReport struct {
	RunID     string
	Stats     sweep.Stats
	Best      backtest.Summary
	BestIndex int
	Found     bool
}

// Sweep 拉取价格后遍历整个参数网格，逐行打印结果，可选入库并导出最优参数。
func (a *App) Sweep(ctx context.Context) (SweepReport, error) {
	var report SweepReport
	series, err := a.FetchSeries(ctx)
	if err != nil {
		return report, err
	}
	base := backtest.Evaluate(series, a.cfg.Strategy)
	if err := PrintHeadTail(a.out, base, headTailRows); err != nil {
		return report, err
	}
	if err := a.renderChart(ctx, base); err != nil {
		return report, err
	}

	grid := a.cfg.Sweep.Grid
	printer := sweep.NewPrinter(a.out, a.cfg.Sweep.PrintLimit, a.cfg.Sweep.PrintRows)
	best := &sweep.BestTracker{}
	sinks := []sweep.Sink{printer, best}

	var recorder store.ResultRecorder
	if a.store != nil {
		run, err := a.store.BeginRun(ctx, store.Run{
			Source:       a.source.Name(),
			Ticker:       a.cfg.Source.Label(),
			Days:         a.cfg.Source.Days,
			Grid:         grid,
			Points:       series.Len(),
			Combinations: grid.Size(),
		})
		if err != nil {
			return report, fmt.Errorf("begin run: %w", err)
		}
		report.RunID = run.ID
		recorder = a.store.Recorder(ctx, run.ID, a.cfg.Sweep.BatchSize)
		sinks = append(sinks, recorder)
	}

	logger.Infof("开始参数扫描: grid=%s combinations=%d workers=%d", grid, grid.Size(), a.cfg.Sweep.Workers)
	stats, runErr := a.runner.Run(ctx, series, grid, sweep.Tee(sinks...))
	report.Stats = stats
	observeSweep(stats, runErr)
	if recorder != nil && runErr == nil {
		runErr = recorder.Flush()
	}
	report.Best, report.BestIndex, report.Found = best.Best()

	if a.store != nil {
		var row *store.ResultRow
		if report.Found {
			row = &store.ResultRow{Index: report.BestIndex, Summary: report.Best}
		}
		if err := a.store.FinishRun(context.WithoutCancel(ctx), report.RunID, stats.Emitted, row, runErr); err != nil {
			logger.Warnf("记录扫描结束状态失败: %v", err)
		}
	}
	if runErr != nil {
		return report, fmt.Errorf("sweep: %w", runErr)
	}
	if skipped := printer.Skipped(); skipped > 0 {
		logger.Infof("已省略 %d 行输出 (sweep.print_limit=%d)", skipped, a.cfg.Sweep.PrintLimit)
	}
	logger.Infof("✓ 扫描完成: %d 组, 耗时 %s", stats.Emitted, stats.Elapsed.Truncate(time.Millisecond))

	if !report.Found {
		return report, nil
	}
	if err := PrintBest(a.out, report.BestIndex, report.Best); err != nil {
		return report, err
	}
	if path := strings.TrimSpace(a.cfg.Sweep.BestParamsPath); path != "" {
		if err := WriteBestParams(path, report.Best); err != nil {
			return report, fmt.Errorf("export best params: %w", err)
		}
		logger.Infof("✓ 最优参数已导出到 %s", path)
	}
	return report, nil
}

// Serve 启动结果查询 API；配置了 schedule.cron 时同时周期性扫描。
func (a *App) Serve(ctx context.Context) error {
	if a.store == nil {
		return errors.New("serve requires store.enabled")
	}
	srv, err := backtesthttp.NewServer(backtesthttp.Config{
		Addr:    a.cfg.HTTP.Addr,
		Runs:    a.store,
		Metrics: a.cfg.HTTP.Metrics,
	})
	if err != nil {
		return err
	}
	var sched *scheduler.CronScheduler
	if spec := strings.TrimSpace(a.cfg.Schedule.Cron); spec != "" {
		if sched, err = scheduler.NewCronScheduler(spec); err != nil {
			return err
		}
		sched.RunImmediately = a.cfg.Schedule.RunImmediately
	}
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	if sched != nil {
		group.Go(func() error {
			return sched.Start(ctx, func(ctx context.Context) {
				if _, err := a.Sweep(ctx); err != nil {
					logger.Errorf("定时扫描失败: %v", err)
				}
			})
		})
	}
	return group.Wait()
}
