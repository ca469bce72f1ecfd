package backtest

import "fmt"

// Params 是策略的四个周期参数。
type Params struct {
	Fast     int `json:"fast" yaml:"fast" toml:"fast"`             // MACD 快线周期
	Slow     int `json:"slow" yaml:"slow" toml:"slow"`             // MACD 慢线周期
	Signal   int `json:"signal" yaml:"signal" toml:"signal"`       // MACD 信号线周期
	Momentum int `json:"momentum" yaml:"momentum" toml:"momentum"` // 动量回看周期
}

func DefaultParams() Params {
	return Params{Fast: 12, Slow: 26, Signal: 5, Momentum: 6}
}

// Validate 只检查周期 >= 1；Slow 是否大于 Fast 由调用方决定。
func (p Params) Validate() error {
	switch {
	case p.Fast < 1:
		return fmt.Errorf("fast period must be >= 1, got %d", p.Fast)
	case p.Slow < 1:
		return fmt.Errorf("slow period must be >= 1, got %d", p.Slow)
	case p.Signal < 1:
		return fmt.Errorf("signal period must be >= 1, got %d", p.Signal)
	case p.Momentum < 1:
		return fmt.Errorf("momentum period must be >= 1, got %d", p.Momentum)
	}
	return nil
}

// Warmup 返回首个可能产生非 Flat 信号的下标。
func (p Params) Warmup() int {
	slow := max(p.Fast, p.Slow)
	macd := (slow - 1) + (p.Signal - 1)
	return max(macd, p.Momentum)
}

func (p Params) String() string {
	return fmt.Sprintf("macd(%d,%d,%d) mom(%d)", p.Fast, p.Slow, p.Signal, p.Momentum)
}
