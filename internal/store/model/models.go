package model

import (
	"gorm.io/datatypes"
)

type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusDone    RunStatus = "done"
	RunStatusFailed  RunStatus = "failed"
)

// RunModel 对应一次参数扫描。
type RunModel struct {
	ID           string         `gorm:"column:id;primaryKey"`
	Source       string         `gorm:"column:source"`
	Ticker       string         `gorm:"column:ticker;index"`
	Days         string         `gorm:"column:days"`
	Grid         datatypes.JSON `gorm:"column:grid_json"`
	Points       int            `gorm:"column:points"`
	Combinations int            `gorm:"column:combinations"`
	Emitted      int            `gorm:"column:emitted"`
	Status       RunStatus      `gorm:"column:status"`
	Message      string         `gorm:"column:message"`
	BestIndex    int            `gorm:"column:best_index"`
	BestTrade    float64        `gorm:"column:best_trade"`
	CreatedAt    int64          `gorm:"column:created_at;autoCreateTime:milli"`
	UpdatedAt    int64          `gorm:"column:updated_at;autoUpdateTime:milli"`
	FinishedAt   int64          `gorm:"column:finished_at"`
}

func (RunModel) TableName() string { return "sweep_runs" }

// ResultModel 是单个参数组合的回测摘要。
type ResultModel struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement"`
	RunID       string  `gorm:"column:run_id;index:idx_run_idx,priority:1"`
	Idx         int     `gorm:"column:idx;index:idx_run_idx,priority:2"`
	Fast        int     `gorm:"column:fast"`
	Slow        int     `gorm:"column:slow"`
	Signal      int     `gorm:"column:signal"`
	Momentum    int     `gorm:"column:momentum"`
	Points      int     `gorm:"column:points"`
	FinalHold   float64 `gorm:"column:final_hold"`
	FinalTrade  float64 `gorm:"column:final_trade"`
	Excess      float64 `gorm:"column:excess"`
	MaxDrawdown float64 `gorm:"column:max_drawdown"`
	LongSteps   int     `gorm:"column:long_steps"`
	ShortSteps  int     `gorm:"column:short_steps"`
	FlatSteps   int     `gorm:"column:flat_steps"`
}

func (ResultModel) TableName() string { return "sweep_results" }
