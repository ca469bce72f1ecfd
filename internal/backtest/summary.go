package backtest

// Summary 汇总一次回测，用于打印、入库和排序。
type Summary struct {
	Params      Params  `json:"params"`
	Points      int     `json:"points"`
	FinalHold   float64 `json:"final_hold"`
	FinalTrade  float64 `json:"final_trade"`
	Excess      float64 `json:"excess"` // FinalTrade/FinalHold - 1
	MaxDrawdown float64 `json:"max_drawdown"`
	LongSteps   int     `json:"long_steps"`
	ShortSteps  int     `json:"short_steps"`
	FlatSteps   int     `json:"flat_steps"`
}

func (r Result) Summary() Summary {
	s := Summary{
		Params:      r.Params,
		Points:      r.Len(),
		FinalHold:   r.Hold.Final(),
		FinalTrade:  r.Trade.Final(),
		MaxDrawdown: MaxDrawdown(r.Trade),
	}
	if s.FinalHold != 0 {
		s.Excess = s.FinalTrade/s.FinalHold - 1
	}
	for _, sig := range r.Signals {
		switch sig {
		case Long:
			s.LongSteps++
		case Short:
			s.ShortSteps++
		default:
			s.FlatSteps++
		}
	}
	return s
}

// MaxDrawdown 返回累计收益曲线的最大回撤比例（0~1）。
func MaxDrawdown(curve []float64) float64 {
	peak := 0.0
	worst := 0.0
	for _, v := range curve {
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		if dd := 1 - v/peak; dd > worst {
			worst = dd
		}
	}
	return worst
}
