package backtest

import (
	"math"

	talib "github.com/markcheno/go-talib"
)

// talib 在预热窗口内填 0，这里统一改成 NaN，后续比较自然落到 Flat。

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// PctChange 计算逐期涨跌幅，首个元素为 NaN。
func PctChange(prices []float64) []float64 {
	out := nanSeries(len(prices))
	for i := 1; i < len(prices); i++ {
		out[i] = prices[i]/prices[i-1] - 1
	}
	return out
}

// Momentum = price[i] - price[i-period]，i < period 时为 NaN。
func Momentum(prices []float64, period int) []float64 {
	out := nanSeries(len(prices))
	if period < 1 || period >= len(prices) {
		return out
	}
	mom := talib.Mom(prices, period)
	copy(out[period:], mom[period:])
	return out
}

// MACDHist 返回 MACD 线减信号线。fast > slow 时两者互换；
// 预热窗口 (slow-1)+(signal-1) 之前为 NaN，序列不足时全部为 NaN。
// 两条 EMA 都从 slow-1 起算：快线以 price[slow-fast..slow-1] 的均值作种子。
func MACDHist(prices []float64, fast, slow, signal int) []float64 {
	n := len(prices)
	out := nanSeries(n)
	if fast < 1 || slow < 1 || signal < 1 {
		return out
	}
	if slow < fast {
		fast, slow = slow, fast
	}
	lookback := (slow - 1) + (signal - 1)
	if n <= lookback {
		return out
	}
	shift := slow - fast
	fastEMA := talib.Ema(prices[shift:], fast)
	slowEMA := talib.Ema(prices, slow)
	line := make([]float64, n-(slow-1))
	for i := range line {
		j := i + slow - 1
		line[i] = fastEMA[j-shift] - slowEMA[j]
	}
	sig := talib.Ema(line, signal)
	for i := signal - 1; i < len(line); i++ {
		out[i+slow-1] = line[i] - sig[i]
	}
	return out
}
