package config

import (
	"strings"

	"coinbt/internal/backtest"
	"coinbt/internal/sweep"
)

const (
	defaultAppEnv          = "dev"
	defaultAppLogLevel     = "info"
	defaultAppLogFormat    = "text"
	defaultSourceName      = SourceCoinGecko
	defaultSourceTicker    = "bitcoin"
	defaultSourceDays      = "max"
	defaultSourceCurrency  = "jpy"
	defaultSourceBaseURL   = "https://api.coingecko.com/api/v3"
	defaultBinanceBaseURL  = "https://fapi.binance.com"
	defaultBinanceSymbol   = "BTCUSDT"
	defaultBinanceInterval = "1d"
	defaultBinanceLimit    = 1500
	defaultBinanceTimeout  = 15
	defaultSweepWorkers    = 1
	defaultSweepPrintRows  = 3
	defaultChartHTMLPath   = "data/returns.html"
	defaultChartTitle      = "トレードリターンの比較"
	defaultChartWidth      = 1500
	defaultChartHeight     = 500
	defaultStorePath       = "data/coinbt.db"
	defaultHTTPAddr        = ":9991"
)

// applyDefaults 为所有子配置应用默认值，配置文件中显式写出的键不覆盖。
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Source.applyDefaults(keys)
	applyParamsDefaults(keys, &c.Strategy)
	c.Sweep.applyDefaults(keys)
	c.Chart.applyDefaults(keys)
	c.Store.applyDefaults(keys)
	c.HTTP.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.log_format", &a.LogFormat, defaultAppLogFormat),
	)
}

func (s *SourceConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		stringFieldDefault("source.name", &s.Name, defaultSourceName),
		stringFieldDefault("source.ticker", &s.Ticker, defaultSourceTicker),
		stringFieldDefault("source.days", &s.Days, defaultSourceDays),
		stringFieldDefault("source.currency", &s.Currency, defaultSourceCurrency),
		stringFieldDefault("source.base_url", &s.BaseURL, defaultSourceBaseURL),
		stringFieldDefault("source.binance.base_url", &s.Binance.BaseURL, defaultBinanceBaseURL),
		stringFieldDefault("source.binance.symbol", &s.Binance.Symbol, defaultBinanceSymbol),
		stringFieldDefault("source.binance.interval", &s.Binance.Interval, defaultBinanceInterval),
		intFieldDefault("source.binance.limit", &s.Binance.Limit, defaultBinanceLimit),
		intFieldDefault("source.binance.timeout_seconds", &s.Binance.TimeoutSeconds, defaultBinanceTimeout),
	)
	s.Name = strings.ToLower(strings.TrimSpace(s.Name))
	s.Currency = strings.ToLower(strings.TrimSpace(s.Currency))
}

func applyParamsDefaults(keys keySet, p *backtest.Params) {
	def := backtest.DefaultParams()
	applyFieldDefaults(keys,
		intFieldDefault("strategy.fast", &p.Fast, def.Fast),
		intFieldDefault("strategy.slow", &p.Slow, def.Slow),
		intFieldDefault("strategy.signal", &p.Signal, def.Signal),
		intFieldDefault("strategy.momentum", &p.Momentum, def.Momentum),
	)
}

func (s *SweepConfig) applyDefaults(keys keySet) {
	def := sweep.DefaultGrid()
	applyFieldDefaults(keys,
		rangeFieldDefault(keys, "sweep.grid.signal", &s.Grid.Signal, def.Signal),
		rangeFieldDefault(keys, "sweep.grid.momentum", &s.Grid.Momentum, def.Momentum),
		rangeFieldDefault(keys, "sweep.grid.fast", &s.Grid.Fast, def.Fast),
		rangeFieldDefault(keys, "sweep.grid.slow", &s.Grid.Slow, def.Slow),
		intFieldDefault("sweep.workers", &s.Workers, defaultSweepWorkers),
		intFieldDefault("sweep.print_rows", &s.PrintRows, defaultSweepPrintRows),
	)
}

func (c *ChartConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		stringFieldDefault("chart.html_path", &c.HTMLPath, defaultChartHTMLPath),
		stringFieldDefault("chart.title", &c.Title, defaultChartTitle),
		intFieldDefault("chart.width", &c.Width, defaultChartWidth),
		intFieldDefault("chart.height", &c.Height, defaultChartHeight),
	)
}

func (s *StoreConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		stringFieldDefault("store.path", &s.Path, defaultStorePath),
	)
}

func (h *HTTPConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		stringFieldDefault("http.addr", &h.Addr, defaultHTTPAddr),
	)
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key:   key,
		need:  func() bool { return target != nil && strings.TrimSpace(*target) == "" },
		apply: func() { *target = def },
	}
}

func intFieldDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key:   key,
		need:  func() bool { return target != nil && *target == 0 },
		apply: func() { *target = def },
	}
}

// rangeFieldDefault 只要 from/to 任一被显式设置就保留用户的区间。
func rangeFieldDefault(keys keySet, key string, target *sweep.Range, def sweep.Range) fieldDefault {
	return fieldDefault{
		need: func() bool {
			return target != nil && !keys.isSet(key+".from") && !keys.isSet(key+".to")
		},
		apply: func() { *target = def },
	}
}
