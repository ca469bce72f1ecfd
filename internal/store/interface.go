package store

import (
	"context"
	"time"

	"coinbt/internal/backtest"
	"coinbt/internal/store/model"
	"coinbt/internal/sweep"
)

// Run 是一次扫描的元数据。
type Run struct {
	ID           string          `json:"id"`
	Source       string          `json:"source"`
	Ticker       string          `json:"ticker"`
	Days         string          `json:"days"`
	Grid         sweep.Grid      `json:"grid"`
	Points       int             `json:"points"`
	Combinations int             `json:"combinations"`
	Emitted      int             `json:"emitted"`
	Status       model.RunStatus `json:"status"`
	Message      string          `json:"message,omitempty"`
	BestIndex    int             `json:"best_index"`
	BestTrade    float64         `json:"best_trade"`
	CreatedAt    time.Time       `json:"created_at"`
	FinishedAt   *time.Time      `json:"finished_at,omitempty"`
}

// ResultRow 是入库的单组合摘要。
type ResultRow struct {
	Index int `json:"index"`
	backtest.Summary
}

// ResultOrder 决定 TopResults 的排序字段。
type ResultOrder string

const (
	OrderByTrade  ResultOrder = "trade"
	OrderByExcess ResultOrder = "excess"
	OrderByIndex  ResultOrder = "index"
)

// RunReader 是只读查询接口，HTTP 层依赖它。
type RunReader interface {
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	GetRun(ctx context.Context, id string) (Run, bool, error)
	TopResults(ctx context.Context, runID string, order ResultOrder, limit int) ([]ResultRow, error)
}

// RunWriter 记录扫描过程。
type RunWriter interface {
	BeginRun(ctx context.Context, meta Run) (Run, error)
	FinishRun(ctx context.Context, id string, emitted int, best *ResultRow, runErr error) error
	Recorder(ctx context.Context, runID string, batch int) ResultRecorder
}

// ResultRecorder 作为扫描的 Sink 按批写入结果，结束时需 Flush。
type ResultRecorder interface {
	sweep.Sink
	Flush() error
}
