package main

import (
	"fmt"
	"os"
	"strings"

	"coinbt/internal/app"
	"coinbt/internal/config"
	"coinbt/internal/logger"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	ticker     string
	days       string
	workers    int
	printLimit int
	watch      bool
	loadedPath string

	cfg     *config.Config
	logFile *os.File

	rootCmd = &cobra.Command{
		Use:   "coinbt",
		Short: "Momentum + MACD backtester for CoinGecko price history",
		Long: `coinbt fetches historical crypto prices, compares a momentum + MACD
signal strategy against buy-and-hold, and grid-searches the strategy periods.`,
		SilenceUsage:       true,
		PersistentPreRunE:  loadConfig,
		PersistentPostRunE: closeLogFile,
	}

	backtestCmd = &cobra.Command{
		Use:   "backtest",
		Short: "Evaluate the configured strategy once and render the returns chart",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if watch {
				return a.BacktestWatch(cmd.Context(), loadedPath)
			}
			_, err = a.Backtest(cmd.Context())
			return err
		},
	}

	sweepCmd = &cobra.Command{
		Use:   "sweep",
		Short: "Run the full parameter grid and print every result",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			a.Summary.Print(cmd.OutOrStdout())
			_, err = a.Sweep(cmd.Context())
			return err
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve stored sweep results over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Serve(cmd.Context())
		},
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default $"+config.EnvConfigPath+" or "+config.DefaultPath+")")
	pf.StringVar(&logLevel, "log-level", "", "override app.log_level (debug|info|warn|error)")
	pf.StringVar(&ticker, "ticker", "", "override source.ticker (CoinGecko coin id)")
	pf.StringVar(&days, "days", "", "override source.days (number of days or \"max\")")

	backtestCmd.Flags().BoolVar(&watch, "watch", false, "re-evaluate whenever the config file or its includes change")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "override sweep.workers")
	sweepCmd.Flags().IntVar(&printLimit, "print-limit", -1, "override sweep.print_limit (0 prints every result)")

	rootCmd.AddCommand(backtestCmd, sweepCmd, serveCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, path, err := config.LoadOrDefault(configPath)
	if err != nil {
		return fmt.Errorf("读取配置失败: %w", err)
	}
	applyFlagOverrides(cmd, loaded)

	logFile, err = setupLogOutput(loaded.App.LogPath)
	if err != nil {
		return fmt.Errorf("初始化日志文件失败: %w", err)
	}
	logger.SetFormat(loaded.App.LogFormat)
	logger.SetLevel(loaded.App.LogLevel)
	shown := path
	if shown == "" {
		shown = "(defaults)"
	}
	logger.Infof("✓ 配置加载成功（环境=%s，配置=%s）", loaded.App.Env, shown)
	cfg = loaded
	loadedPath = path
	return nil
}

func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	if v := strings.TrimSpace(logLevel); v != "" {
		c.App.LogLevel = v
	}
	if v := strings.TrimSpace(ticker); v != "" {
		c.Source.Ticker = v
	}
	if v := strings.TrimSpace(days); v != "" {
		c.Source.Days = v
	}
	if cmd.Flags().Changed("workers") && workers > 0 {
		c.Sweep.Workers = workers
	}
	if cmd.Flags().Changed("print-limit") && printLimit >= 0 {
		c.Sweep.PrintLimit = printLimit
	}
}

func closeLogFile(cmd *cobra.Command, args []string) error {
	if logFile == nil {
		return nil
	}
	return logFile.Close()
}

func newApp() (*app.App, error) {
	a, err := app.NewApp(cfg)
	if err != nil {
		return nil, fmt.Errorf("初始化应用失败: %w", err)
	}
	return a, nil
}
