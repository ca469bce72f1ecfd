package sweep

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"coinbt/internal/backtest"
	"coinbt/internal/logger"
	"coinbt/internal/market"
)

// Entry 是一次参数组合的回测结果，Index 为遍历序号。
type Entry struct {
	Index  int
	Result backtest.Result
}

// Sink 按遍历顺序接收结果。
type Sink interface {
	Consume(Entry) error
}

// SinkFunc 让普通函数实现 Sink。
type SinkFunc func(Entry) error

func (f SinkFunc) Consume(e Entry) error { return f(e) }

// Tee 依次把结果交给多个 Sink，任一失败即中止。
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(e Entry) error {
		for _, s := range sinks {
			if s == nil {
				continue
			}
			if err := s.Consume(e); err != nil {
				return err
			}
		}
		return nil
	})
}

// Options 控制并发度。Workers <= 1 时完全串行。
type Options struct {
	Workers   int
	BatchSize int
}

type Stats struct {
	Combinations int
	Emitted      int
	Elapsed      time.Duration
}

type Runner struct {
	workers  int
	batch    int
	evaluate func(market.PriceSeries, backtest.Params) backtest.Result
}

func NewRunner(opts Options) *Runner {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = workers * 64
	}
	return &Runner{workers: workers, batch: batch, evaluate: backtest.Evaluate}
}

// Run 穷举网格中的每个组合。并发时按批计算，再按序号顺序交给 sink，
// 因此输出与串行执行完全一致；内存中最多保留一批完整结果。
func (r *Runner) Run(ctx context.Context, series market.PriceSeries, grid Grid, sink Sink) (Stats, error) {
	started := time.Now()
	stats := Stats{Combinations: grid.Size()}
	if sink == nil {
		sink = SinkFunc(func(Entry) error { return nil })
	}
	logger.Infof("sweep: %d 组参数，%d 个价格点，workers=%d", stats.Combinations, series.Len(), r.workers)

	var err error
	if r.workers == 1 {
		err = r.runSerial(ctx, series, grid, sink, &stats)
	} else {
		err = r.runBatched(ctx, series, grid, sink, &stats)
	}
	stats.Elapsed = time.Since(started)
	return stats, err
}

func (r *Runner) runSerial(ctx context.Context, series market.PriceSeries, grid Grid, sink Sink, stats *Stats) error {
	for idx := 0; idx < stats.Combinations; idx++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		res := r.evaluate(series, grid.Params(idx))
		if err := sink.Consume(Entry{Index: idx, Result: res}); err != nil {
			return err
		}
		stats.Emitted++
	}
	return nil
}

func (r *Runner) runBatched(ctx context.Context, series market.PriceSeries, grid Grid, sink Sink, stats *Stats) error {
	for start := 0; start < stats.Combinations; start += r.batch {
		end := min(start+r.batch, stats.Combinations)
		buf := make([]backtest.Result, end-start)

		group, gctx := errgroup.WithContext(ctx)
		group.SetLimit(r.workers)
		for idx := start; idx < end; idx++ {
			idx := idx
			group.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				buf[idx-start] = r.evaluate(series, grid.Params(idx))
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		for i, res := range buf {
			if err := sink.Consume(Entry{Index: start + i, Result: res}); err != nil {
				return err
			}
			stats.Emitted++
		}
	}
	return nil
}

// Collect 运行网格并返回全部结果，只适合小网格。
func Collect(ctx context.Context, series market.PriceSeries, grid Grid, opts Options) ([]Entry, error) {
	out := make([]Entry, 0, grid.Size())
	_, err := NewRunner(opts).Run(ctx, series, grid, SinkFunc(func(e Entry) error {
		out = append(out, e)
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return out, nil
}
