package app

import (
	"fmt"
	"time"

	"coinbt/internal/config"
	"coinbt/internal/gateway/binance"
	"coinbt/internal/market"
	"coinbt/internal/market/coingecko"
)

func buildHistorySource(cfg config.SourceConfig) (market.HistorySource, error) {
	switch cfg.Name {
	case config.SourceBinance:
		return binance.New(binance.Config{
			RESTBaseURL: cfg.Binance.BaseURL,
			HTTPTimeout: time.Duration(cfg.Binance.TimeoutSeconds) * time.Second,
			Interval:    cfg.Binance.Interval,
			Limit:       cfg.Binance.Limit,
		})
	case config.SourceCoinGecko, "":
		return coingecko.New(coingecko.Config{
			BaseURL:  cfg.BaseURL,
			Currency: cfg.Currency,
			Timeout:  cfg.Timeout(),
		}), nil
	default:
		return nil, fmt.Errorf("unknown source %q", cfg.Name)
	}
}

// fetchRequest 把配置映射为价格源请求；binance 用 symbol，coingecko 用 ticker。
func fetchRequest(cfg config.SourceConfig) market.FetchRequest {
	if cfg.Name == config.SourceBinance {
		return market.FetchRequest{
			Symbol:   cfg.Binance.Symbol,
			Interval: cfg.Binance.Interval,
			Limit:    cfg.Binance.Limit,
		}
	}
	return market.FetchRequest{Symbol: cfg.Ticker, Days: cfg.Days}
}
