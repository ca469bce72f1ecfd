package config

import (
	"fmt"
	"strings"

	"coinbt/internal/sweep"

	"github.com/robfig/cron/v3"
)

// validate 对配置进行基础校验。
func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Source.validate(); err != nil {
		return err
	}
	if err := c.Strategy.Validate(); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	if err := c.Sweep.validate(); err != nil {
		return err
	}
	if c.Chart.Width < 0 || c.Chart.Height < 0 {
		return fmt.Errorf("chart.width/height must be >= 0")
	}
	if c.Store.Enabled && strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("store.path is required when store is enabled")
	}
	if spec := strings.TrimSpace(c.Schedule.Cron); spec != "" {
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("schedule.cron invalid: %w", err)
		}
		if !c.Store.Enabled {
			return fmt.Errorf("schedule.cron requires store.enabled")
		}
	}
	return nil
}

func (a *AppConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(a.LogFormat)) {
	case "text", "json":
	default:
		return fmt.Errorf("app.log_format must be text or json, got %q", a.LogFormat)
	}
	return nil
}

func (s *SourceConfig) validate() error {
	switch s.Name {
	case SourceCoinGecko:
		if strings.TrimSpace(s.Ticker) == "" {
			return fmt.Errorf("source.ticker is required")
		}
		if strings.TrimSpace(s.Days) == "" {
			return fmt.Errorf("source.days is required")
		}
		if strings.TrimSpace(s.Currency) == "" {
			return fmt.Errorf("source.currency is required")
		}
	case SourceBinance:
		if strings.TrimSpace(s.Binance.Symbol) == "" {
			return fmt.Errorf("source.binance.symbol is required")
		}
		if !IsValidInterval(s.Binance.Interval) {
			return fmt.Errorf("source.binance.interval invalid: %s", s.Binance.Interval)
		}
		if s.Binance.Limit < 1 {
			return fmt.Errorf("source.binance.limit must be >= 1")
		}
	default:
		return fmt.Errorf("source.name must be %s or %s, got %q", SourceCoinGecko, SourceBinance, s.Name)
	}
	if s.TimeoutSeconds < 0 {
		return fmt.Errorf("source.timeout_seconds must be >= 0")
	}
	return nil
}

func (s *SweepConfig) validate() error {
	ranges := map[string]sweep.Range{
		"signal":   s.Grid.Signal,
		"momentum": s.Grid.Momentum,
		"fast":     s.Grid.Fast,
		"slow":     s.Grid.Slow,
	}
	for name, r := range ranges {
		if r.Len() > 0 && r.From < 1 {
			return fmt.Errorf("sweep.grid.%s.from must be >= 1", name)
		}
	}
	if s.Workers < 0 {
		return fmt.Errorf("sweep.workers must be >= 0")
	}
	if s.BatchSize < 0 {
		return fmt.Errorf("sweep.batch_size must be >= 0")
	}
	if s.PrintLimit < 0 {
		return fmt.Errorf("sweep.print_limit must be >= 0")
	}
	return nil
}

// IsValidInterval 校验 Binance K 线周期格式。
func IsValidInterval(s string) bool {
	switch strings.TrimSpace(s) {
	case "1m", "3m", "5m", "15m", "30m", "1h", "2h", "4h", "6h", "8h", "12h", "1d", "3d", "1w", "1M":
		return true
	}
	return false
}
