package backtest

import (
	"time"

	"coinbt/internal/market"
)

// ReturnSeries 是从 1.0 开始的累计复利收益。
type ReturnSeries []float64

// Final 返回最后一个值，空序列返回 1。
func (r ReturnSeries) Final() float64 {
	if len(r) == 0 {
		return 1
	}
	return r[len(r)-1]
}

// Result 是一次回测的输出：持有与交易两条曲线共享价格时间轴。
type Result struct {
	Params  Params       `json:"params"`
	Times   []time.Time  `json:"times"`
	Hold    ReturnSeries `json:"hold"`
	Trade   ReturnSeries `json:"trade"`
	Signals []Signal     `json:"signals"`
}

func (r Result) Len() int { return len(r.Hold) }

// Evaluate 计算动量 + MACD 策略与买入持有的累计收益。
// 预热不足或参数非法时不会报错，交易曲线保持 1.0。
func Evaluate(series market.PriceSeries, p Params) Result {
	prices := series.Prices()
	res := Result{Params: p, Times: series.Times()}
	if len(prices) == 0 {
		res.Hold = ReturnSeries{}
		res.Trade = ReturnSeries{}
		return res
	}
	change := PctChange(prices)
	signals := Signals(
		Momentum(prices, p.Momentum),
		MACDHist(prices, p.Fast, p.Slow, p.Signal),
	)

	hold := ForwardFill(CumulativeReturn(change), 1)
	hold[0] = 1
	trade := ForwardFill(CumulativeReturn(TradeChanges(change, signals)), 1)

	res.Hold = hold
	res.Trade = trade
	res.Signals = signals
	return res
}
