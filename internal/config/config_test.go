package config

import (
	"os"
	"path/filepath"
	"testing"

	"coinbt/internal/backtest"
	"coinbt/internal/sweep"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, SourceCoinGecko, cfg.Source.Name)
	assert.Equal(t, "bitcoin", cfg.Source.Ticker)
	assert.Equal(t, "max", cfg.Source.Days)
	assert.Equal(t, "jpy", cfg.Source.Currency)
	assert.Equal(t, backtest.DefaultParams(), cfg.Strategy)
	assert.Equal(t, sweep.DefaultGrid(), cfg.Sweep.Grid)
	assert.Equal(t, 1, cfg.Sweep.Workers)
	assert.Equal(t, 0, cfg.Sweep.PrintLimit)
	assert.False(t, cfg.Store.Enabled)
	assert.NoError(t, validate(cfg))
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
source:
  ticker: ethereum
  days: 365
strategy:
  fast: 8
sweep:
  workers: 4
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ethereum", cfg.Source.Ticker)
	assert.Equal(t, "365", cfg.Source.Days)
	assert.Equal(t, 8, cfg.Strategy.Fast)
	assert.Equal(t, 26, cfg.Strategy.Slow)
	assert.Equal(t, 4, cfg.Sweep.Workers)
	assert.Equal(t, sweep.DefaultGrid(), cfg.Sweep.Grid)
}

func TestLoad_ExplicitRangeNotOverwritten(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
sweep:
  grid:
    signal: {from: 2, to: 3}
    momentum: {from: 2, to: 3}
    fast: {from: 5, to: 6}
    slow: {from: 6, to: 7}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Sweep.Grid.Size())
	assert.Equal(t, sweep.Range{From: 6, To: 7}, cfg.Sweep.Grid.Slow)
}

func TestLoad_IncludeMergesInOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "best.yaml", `
strategy:
  fast: 9
  slow: 21
  signal: 4
  momentum: 3
`)
	path := writeFile(t, dir, "config.yaml", `
include:
  - best.yaml
source:
  ticker: ripple
strategy:
  momentum: 7
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ripple", cfg.Source.Ticker)
	assert.Equal(t, backtest.Params{Fast: 9, Slow: 21, Signal: 4, Momentum: 7}, cfg.Strategy)
}

func TestLoad_SingleIncludeOfExportedParams(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "best.yaml", `# generated by coinbt sweep
strategy:
  fast: 7
  slow: 11
  signal: 3
  momentum: 4
`)
	path := writeFile(t, dir, "config.yaml", "include: best.yaml\nsource:\n  days: \"90\"\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, backtest.Params{Fast: 7, Slow: 11, Signal: 3, Momentum: 4}, cfg.Strategy)
	assert.Equal(t, "90", cfg.Source.Days)
}

func TestLoad_NestedIncludesReadInDependencyOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "source:\n  ticker: ethereum\n  currency: usd\n")
	writeFile(t, dir, "mid.yaml", "include:\n  - base.yaml\nsource:\n  ticker: solana\n")
	path := writeFile(t, dir, "config.yaml", "include:\n  - mid.yaml\n  - base.yaml\n")

	files, err := configFiles(path)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, []string{"base.yaml", "mid.yaml", "config.yaml"},
		[]string{filepath.Base(files[0]), filepath.Base(files[1]), filepath.Base(files[2])})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "solana", cfg.Source.Ticker)
	assert.Equal(t, "usd", cfg.Source.Currency)
}

func TestLoad_IncludeRejectsNonStrings(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "include:\n  - 42\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "include only supports strings")

	path = writeFile(t, dir, "map.yaml", "include:\n  file: best.yaml\n")
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "include must be")
}

func TestLoad_IncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "include:\n  - b.yaml\n")
	writeFile(t, dir, "b.yaml", "include:\n  - a.yaml\n")
	_, err := Load(filepath.Join(dir, "a.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "include cycle")
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := map[string]string{
		"bad source":     "source:\n  name: kraken\n",
		"bad format":     "app:\n  log_format: xml\n",
		"negative":       "sweep:\n  workers: -1\n",
		"zero period":    "sweep:\n  grid:\n    fast: {from: 0, to: 3}\n",
		"bad strategy":   "strategy:\n  fast: -2\n",
		"bad interval":   "source:\n  name: binance\n  binance:\n    interval: 7x\n",
		"store no path":  "store:\n  enabled: true\n  path: \" \"\n",
		"negative limit": "sweep:\n  print_limit: -5\n",
		"bad cron":       "store:\n  enabled: true\nschedule:\n  cron: \"every day\"\n",
		"cron no store":  "schedule:\n  cron: \"0 6 * * *\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.yaml", body)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_Schedule(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
store:
  enabled: true
  path: runs.db
schedule:
  cron: "0 6 * * *"
  run_immediately: true
http:
  metrics: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0 6 * * *", cfg.Schedule.Cron)
	assert.True(t, cfg.Schedule.RunImmediately)
	assert.True(t, cfg.HTTP.Metrics)
	assert.Equal(t, ":9991", cfg.HTTP.Addr)
}

func TestLoadOrDefault(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, path, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, Default(), cfg)

	_, _, err = LoadOrDefault("missing.yaml")
	assert.Error(t, err)

	envPath := writeFile(t, t.TempDir(), "env.yaml", "source:\n  ticker: solana\n")
	t.Setenv(EnvConfigPath, envPath)
	cfg, path, err = LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, envPath, path)
	assert.Equal(t, "solana", cfg.Source.Ticker)
}

func TestSourceConfigHelpers(t *testing.T) {
	s := SourceConfig{Name: SourceBinance, Ticker: "bitcoin", TimeoutSeconds: 3,
		Binance: BinanceConfig{Symbol: "ETHUSDT", Interval: "4h"}}
	assert.Equal(t, "ETHUSDT@4h", s.Label())
	assert.Equal(t, "3s", s.Timeout().String())
	s.Name = SourceCoinGecko
	s.TimeoutSeconds = 0
	assert.Equal(t, "bitcoin", s.Label())
	assert.Zero(t, s.Timeout())
}

func TestIsValidInterval(t *testing.T) {
	assert.True(t, IsValidInterval("1d"))
	assert.True(t, IsValidInterval("15m"))
	assert.False(t, IsValidInterval(""))
	assert.False(t, IsValidInterval("2d"))
}
