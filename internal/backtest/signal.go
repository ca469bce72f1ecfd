package backtest

// Signal 是每个时间步的持仓方向。
type Signal int

const (
	Short Signal = -1
	Flat  Signal = 0
	Long  Signal = 1
)

func (s Signal) String() string {
	switch s {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "flat"
	}
}

// Classify 动量与 MACD 柱同为正则做多、同为负则做空，其余（含 NaN）空仓。
func Classify(momentum, hist float64) Signal {
	switch {
	case momentum > 0 && hist > 0:
		return Long
	case momentum < 0 && hist < 0:
		return Short
	default:
		return Flat
	}
}

// Signals 逐点分类，两条序列长度不同时按较短者截断。
func Signals(momentum, hist []float64) []Signal {
	n := min(len(momentum), len(hist))
	out := make([]Signal, n)
	for i := 0; i < n; i++ {
		out[i] = Classify(momentum[i], hist[i])
	}
	return out
}
