package backtest

import "math"

// ForwardFill 用最近一个有效值覆盖 NaN；第一个有效值之前使用 sentinel。返回新切片。
func ForwardFill(src []float64, sentinel float64) []float64 {
	out := make([]float64, len(src))
	last := sentinel
	for i, v := range src {
		if math.IsNaN(v) {
			out[i] = last
			continue
		}
		out[i] = v
		last = v
	}
	return out
}

// CumulativeReturn 对 (1+change) 累乘。NaN 步不计入乘积，对应位置输出 NaN。
func CumulativeReturn(changes []float64) []float64 {
	out := make([]float64, len(changes))
	running := 1.0
	for i, c := range changes {
		if math.IsNaN(c) {
			out[i] = math.NaN()
			continue
		}
		running *= 1 + c
		out[i] = running
	}
	return out
}

// TradeChanges 用上一步的信号加权本步涨跌幅，避免未来函数：
// out[i] = change[i] * signal[i-1]，out[0] 为 NaN。
func TradeChanges(change []float64, signals []Signal) []float64 {
	n := min(len(change), len(signals))
	out := nanSeries(n)
	for i := 1; i < n; i++ {
		out[i] = change[i] * float64(signals[i-1])
	}
	return out
}
