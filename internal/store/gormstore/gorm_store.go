package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"coinbt/internal/logger"
	"coinbt/internal/store"
	storemodel "coinbt/internal/store/model"
	"coinbt/internal/sweep"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	_ "modernc.org/sqlite"
)

type runModel = storemodel.RunModel
type resultModel = storemodel.ResultModel

const (
	defaultRecordBatch = 500
	maxListLimit       = 500
)

// GormStore 基于 Gorm + SQLite 保存扫描运行与结果。
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

var (
	_ store.RunReader = (*GormStore)(nil)
	_ store.RunWriter = (*GormStore)(nil)
)

// NewGormStore 打开（必要时创建）path 处的数据库并迁移表结构。
func NewGormStore(path string) (*GormStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("gorm store: 数据库路径不能为空")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&runModel{}, &resultModel{}); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite + WAL：单写，少量并发读供 HTTP 使用。
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &GormStore{db: db, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *GormStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// --------------------- Runs -------------------------

// BeginRun 以 running 状态登记一次扫描，ID 为空时生成 uuid。
func (s *GormStore) BeginRun(ctx context.Context, meta store.Run) (store.Run, error) {
	if s == nil || s.db == nil {
		return store.Run{}, fmt.Errorf("gorm store 未初始化")
	}
	if strings.TrimSpace(meta.ID) == "" {
		meta.ID = uuid.NewString()
	}
	grid, err := json.Marshal(meta.Grid)
	if err != nil {
		return store.Run{}, err
	}
	m := runModel{
		ID:           meta.ID,
		Source:       meta.Source,
		Ticker:       meta.Ticker,
		Days:         meta.Days,
		Grid:         datatypes.JSON(grid),
		Points:       meta.Points,
		Combinations: meta.Combinations,
		Status:       storemodel.RunStatusRunning,
		BestIndex:    -1,
		CreatedAt:    s.now().UnixMilli(),
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return store.Run{}, err
	}
	return runModelToRecord(m), nil
}

// FinishRun 写入结束状态；runErr 非空时标记为 failed。
func (s *GormStore) FinishRun(ctx context.Context, id string, emitted int, best *store.ResultRow, runErr error) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("gorm store 未初始化")
	}
	updates := map[string]any{
		"emitted":     emitted,
		"status":      storemodel.RunStatusDone,
		"finished_at": s.now().UnixMilli(),
	}
	if runErr != nil {
		updates["status"] = storemodel.RunStatusFailed
		updates["message"] = runErr.Error()
	}
	if best != nil {
		updates["best_index"] = best.Index
		updates["best_trade"] = finite(best.FinalTrade)
	}
	res := s.db.WithContext(ctx).Model(&runModel{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

func (s *GormStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("gorm store 未初始化")
	}
	if limit <= 0 || limit > maxListLimit {
		limit = 50
	}
	var models []runModel
	if err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]store.Run, 0, len(models))
	for _, m := range models {
		out = append(out, runModelToRecord(m))
	}
	return out, nil
}

func (s *GormStore) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	if s == nil || s.db == nil {
		return store.Run{}, false, fmt.Errorf("gorm store 未初始化")
	}
	var m runModel
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.Run{}, false, nil
	}
	if err != nil {
		return store.Run{}, false, err
	}
	return runModelToRecord(m), true, nil
}

// --------------------- Results -------------------------

// TopResults 返回某次扫描按 order 降序（index 为升序）的前 limit 条结果。
func (s *GormStore) TopResults(ctx context.Context, runID string, order store.ResultOrder, limit int) ([]store.ResultRow, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("gorm store 未初始化")
	}
	if limit <= 0 || limit > maxListLimit {
		limit = 20
	}
	var orderBy string
	switch order {
	case store.OrderByExcess:
		orderBy = "excess DESC, idx ASC"
	case store.OrderByIndex:
		orderBy = "idx ASC"
	case store.OrderByTrade, "":
		orderBy = "final_trade DESC, idx ASC"
	default:
		return nil, fmt.Errorf("unsupported order %q", order)
	}
	var models []resultModel
	if err := s.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order(orderBy).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]store.ResultRow, 0, len(models))
	for _, m := range models {
		out = append(out, resultModelToRow(m))
	}
	return out, nil
}

// Recorder 返回把扫描结果按批写入 runID 的 Sink。
func (s *GormStore) Recorder(ctx context.Context, runID string, batch int) store.ResultRecorder {
	if batch <= 0 {
		batch = defaultRecordBatch
	}
	return &recorder{ctx: ctx, db: s.db, runID: runID, batch: batch}
}

type recorder struct {
	ctx     context.Context
	db      *gorm.DB
	runID   string
	batch   int
	pending []resultModel
	written int
}

func (r *recorder) Consume(e sweep.Entry) error {
	sum := e.Result.Summary()
	r.pending = append(r.pending, newResultModel(r.runID, store.ResultRow{Index: e.Index, Summary: sum}))
	if len(r.pending) >= r.batch {
		return r.Flush()
	}
	return nil
}

func (r *recorder) Flush() error {
	if len(r.pending) == 0 {
		return nil
	}
	if err := r.db.WithContext(r.ctx).CreateInBatches(r.pending, r.batch).Error; err != nil {
		return fmt.Errorf("store results: %w", err)
	}
	r.written += len(r.pending)
	logger.Debugf("gorm store: run %s 已写入 %d 条结果", r.runID, r.written)
	r.pending = r.pending[:0]
	return nil
}

// --------------------- Mapping -------------------------

func newResultModel(runID string, row store.ResultRow) resultModel {
	return resultModel{
		RunID:       runID,
		Idx:         row.Index,
		Fast:        row.Params.Fast,
		Slow:        row.Params.Slow,
		Signal:      row.Params.Signal,
		Momentum:    row.Params.Momentum,
		Points:      row.Points,
		FinalHold:   finite(row.FinalHold),
		FinalTrade:  finite(row.FinalTrade),
		Excess:      finite(row.Excess),
		MaxDrawdown: finite(row.MaxDrawdown),
		LongSteps:   row.LongSteps,
		ShortSteps:  row.ShortSteps,
		FlatSteps:   row.FlatSteps,
	}
}

func resultModelToRow(m resultModel) store.ResultRow {
	row := store.ResultRow{Index: m.Idx}
	row.Params.Fast = m.Fast
	row.Params.Slow = m.Slow
	row.Params.Signal = m.Signal
	row.Params.Momentum = m.Momentum
	row.Points = m.Points
	row.FinalHold = m.FinalHold
	row.FinalTrade = m.FinalTrade
	row.Excess = m.Excess
	row.MaxDrawdown = m.MaxDrawdown
	row.LongSteps = m.LongSteps
	row.ShortSteps = m.ShortSteps
	row.FlatSteps = m.FlatSteps
	return row
}

func runModelToRecord(m runModel) store.Run {
	rec := store.Run{
		ID:           m.ID,
		Source:       m.Source,
		Ticker:       m.Ticker,
		Days:         m.Days,
		Points:       m.Points,
		Combinations: m.Combinations,
		Emitted:      m.Emitted,
		Status:       m.Status,
		Message:      m.Message,
		BestIndex:    m.BestIndex,
		BestTrade:    m.BestTrade,
		CreatedAt:    time.UnixMilli(m.CreatedAt).UTC(),
	}
	if len(m.Grid) > 0 {
		_ = json.Unmarshal(m.Grid, &rec.Grid)
	}
	if m.FinishedAt > 0 {
		t := time.UnixMilli(m.FinishedAt).UTC()
		rec.FinishedAt = &t
	}
	return rec
}

// finite 把 NaN/Inf 落成 0，SQLite 无法保存它们。
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
