package config

import (
	"strings"
	"time"

	"coinbt/internal/backtest"
	"coinbt/internal/sweep"
)

// Config 是 coinbt 的主配置载体。
type Config struct {
	App      AppConfig       `toml:"app"`
	Source   SourceConfig    `toml:"source"`
	Strategy backtest.Params `toml:"strategy"`
	Sweep    SweepConfig     `toml:"sweep"`
	Chart    ChartConfig     `toml:"chart"`
	Store    StoreConfig     `toml:"store"`
	HTTP     HTTPConfig      `toml:"http"`
	Schedule ScheduleConfig  `toml:"schedule"`
}

type AppConfig struct {
	Env       string `toml:"env"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogPath   string `toml:"log_path"`
}

// SourceConfig 选择历史价格来源：coingecko（默认）或 binance。
type SourceConfig struct {
	Name           string        `toml:"name"`
	Ticker         string        `toml:"ticker"`
	Days           string        `toml:"days"`
	Currency       string        `toml:"currency"`
	BaseURL        string        `toml:"base_url"`
	TimeoutSeconds int           `toml:"timeout_seconds"` // 0 表示不设超时
	Binance        BinanceConfig `toml:"binance"`
}

// Timeout 把秒数转换为 Duration。
func (s SourceConfig) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Label 返回用于日志与入库的标的描述。
func (s SourceConfig) Label() string {
	if strings.EqualFold(s.Name, SourceBinance) {
		return s.Binance.Symbol + "@" + s.Binance.Interval
	}
	return s.Ticker
}

type BinanceConfig struct {
	BaseURL        string `toml:"base_url"`
	Symbol         string `toml:"symbol"`
	Interval       string `toml:"interval"`
	Limit          int    `toml:"limit"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type SweepConfig struct {
	Grid           sweep.Grid `toml:"grid"`
	Workers        int        `toml:"workers"`
	BatchSize      int        `toml:"batch_size"`
	PrintLimit     int        `toml:"print_limit"` // 0 表示全部打印
	PrintRows      int        `toml:"print_rows"`
	BestParamsPath string     `toml:"best_params_path"`
}

type ChartConfig struct {
	HTMLPath string `toml:"html_path"`
	PNGPath  string `toml:"png_path"`
	Title    string `toml:"title"`
	Width    int    `toml:"width"`
	Height   int    `toml:"height"`
}

type StoreConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type HTTPConfig struct {
	Addr    string `toml:"addr"`
	Metrics bool   `toml:"metrics"`
}

// ScheduleConfig 让 serve 按 cron 表达式周期性执行扫描，Cron 为空则不调度。
type ScheduleConfig struct {
	Cron           string `toml:"cron"`
	RunImmediately bool   `toml:"run_immediately"`
}

const (
	SourceCoinGecko = "coingecko"
	SourceBinance   = "binance"
)

// keySet 用于追踪配置文件中显式设置的字段路径。
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	_, ok := k[strings.ToLower(strings.TrimSpace(path))]
	return ok
}

// fieldDefault 描述单个字段的默认值设置规则。
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
