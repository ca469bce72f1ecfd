package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"coinbt/internal/config"
	"coinbt/internal/logger"
	"coinbt/internal/market"
	"coinbt/internal/store/gormstore"
	"coinbt/internal/sweep"
)

type AppBuilder struct {
	cfg *config.Config

	sourceFn func(config.SourceConfig) (market.HistorySource, error)
	storeFn  func(config.StoreConfig) (*gormstore.GormStore, error)
	out      io.Writer
}

type AppBuilderOption func(*AppBuilder)

// WithSource 使用给定的价格源替代配置中的来源。
func WithSource(src market.HistorySource) AppBuilderOption {
	return func(b *AppBuilder) {
		b.sourceFn = func(config.SourceConfig) (market.HistorySource, error) { return src, nil }
	}
}

// WithOutput 指定报告输出位置，默认 stdout。
func WithOutput(w io.Writer) AppBuilderOption {
	return func(b *AppBuilder) {
		if w != nil {
			b.out = w
		}
	}
}

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:      cfg,
		sourceFn: buildHistorySource,
		storeFn:  buildResultStore,
		out:      os.Stdout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	src, err := b.sourceFn(b.cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("初始化价格源失败: %w", err)
	}
	st, err := b.storeFn(b.cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("初始化结果存储失败: %w", err)
	}
	runner := sweep.NewRunner(sweep.Options{
		Workers:   b.cfg.Sweep.Workers,
		BatchSize: b.cfg.Sweep.BatchSize,
	})
	app := &App{
		cfg:    b.cfg,
		source: src,
		runner: runner,
		store:  st,
		out:    b.out,
		Summary: &StartupSummary{
			Source:   src.Name(),
			Target:   b.cfg.Source.Label(),
			Days:     b.cfg.Source.Days,
			Strategy: b.cfg.Strategy,
			Grid:     b.cfg.Sweep.Grid,
			Workers:  b.cfg.Sweep.Workers,
			Store:    storeLabel(b.cfg.Store),
			Chart:    b.cfg.Chart.HTMLPath,
		},
	}
	logger.Debugf("app 构建完成: source=%s store=%v", src.Name(), st != nil)
	return app, nil
}

func buildResultStore(cfg config.StoreConfig) (*gormstore.GormStore, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	return gormstore.NewGormStore(cfg.Path)
}

func storeLabel(cfg config.StoreConfig) string {
	if !cfg.Enabled {
		return "disabled"
	}
	return cfg.Path
}

type appBuilderDeps interface {
	Build(context.Context) (*App, error)
}

func provideAppFromBuilder(b appBuilderDeps, ctx context.Context) (*App, error) {
	return b.Build(ctx)
}

func provideAppBuilder(cfg *config.Config, opts []AppBuilderOption) *AppBuilder {
	return NewAppBuilder(cfg, opts...)
}
