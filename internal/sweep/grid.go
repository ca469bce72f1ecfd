package sweep

import (
	"fmt"

	"coinbt/internal/backtest"
)

// Range 是左闭右开的整数区间 [From, To)。
type Range struct {
	From int `json:"from" yaml:"from" toml:"from"`
	To   int `json:"to" yaml:"to" toml:"to"`
}

func (r Range) Len() int {
	if r.To <= r.From {
		return 0
	}
	return r.To - r.From
}

func (r Range) String() string { return fmt.Sprintf("[%d,%d)", r.From, r.To) }

// Grid 定义四个周期的扫描范围。遍历顺序为 Signal → Momentum → Fast → Slow（最内层）。
type Grid struct {
	Signal   Range `json:"signal" yaml:"signal" toml:"signal"`
	Momentum Range `json:"momentum" yaml:"momentum" toml:"momentum"`
	Fast     Range `json:"fast" yaml:"fast" toml:"fast"`
	Slow     Range `json:"slow" yaml:"slow" toml:"slow"`
}

// DefaultGrid 共 18×18×20×24 = 155520 组，不校验 Slow > Fast。
func DefaultGrid() Grid {
	return Grid{
		Signal:   Range{From: 2, To: 20},
		Momentum: Range{From: 2, To: 20},
		Fast:     Range{From: 5, To: 25},
		Slow:     Range{From: 6, To: 30},
	}
}

func (g Grid) Size() int {
	return g.Signal.Len() * g.Momentum.Len() * g.Fast.Len() * g.Slow.Len()
}

// Params 按遍历顺序把序号解码为参数组合，index 需在 [0, Size()) 内。
func (g Grid) Params(index int) backtest.Params {
	slowN, fastN, momN := g.Slow.Len(), g.Fast.Len(), g.Momentum.Len()
	slow := index % slowN
	index /= slowN
	fast := index % fastN
	index /= fastN
	mom := index % momN
	index /= momN
	return backtest.Params{
		Signal:   g.Signal.From + index,
		Momentum: g.Momentum.From + mom,
		Fast:     g.Fast.From + fast,
		Slow:     g.Slow.From + slow,
	}
}

func (g Grid) String() string {
	return fmt.Sprintf("signal%s momentum%s fast%s slow%s", g.Signal, g.Momentum, g.Fast, g.Slow)
}
