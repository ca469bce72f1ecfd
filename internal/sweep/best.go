package sweep

import "coinbt/internal/backtest"

// BestTracker 记录最终交易收益最高的组合，相同时保留先出现者。
type BestTracker struct {
	best  backtest.Summary
	index int
	found bool
}

func (b *BestTracker) Consume(e Entry) error {
	s := e.Result.Summary()
	if !b.found || s.FinalTrade > b.best.FinalTrade {
		b.best = s
		b.index = e.Index
		b.found = true
	}
	return nil
}

// Best 返回最佳组合摘要及其遍历序号。
func (b *BestTracker) Best() (backtest.Summary, int, bool) {
	return b.best, b.index, b.found
}
