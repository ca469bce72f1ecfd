package market

import "context"

// FetchRequest 描述一次历史价格拉取。
type FetchRequest struct {
	Symbol   string // coingecko 为币种 id（bitcoin），binance 为交易对（BTCUSDT）
	Days     string // coingecko 的时间范围：max 或天数
	Interval string // binance K 线周期
	Limit    int
}

// HistorySource 统一不同数据源的历史价格拉取。
type HistorySource interface {
	Name() string
	FetchSeries(ctx context.Context, req FetchRequest) (PriceSeries, error)
}
