package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coinbt/internal/logger"

	"github.com/robfig/cron/v3"
)

// CronScheduler 按标准 5 段 cron 表达式周期执行任务；上一轮未结束时跳过本轮。
type CronScheduler struct {
	Spec           string
	RunImmediately bool

	cron     *cron.Cron
	schedule cron.Schedule
}

func NewCronScheduler(spec string) (*CronScheduler, error) {
	spec = strings.TrimSpace(spec)
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	l := cronLogger{}
	return &CronScheduler{
		Spec:     spec,
		schedule: sched,
		cron:     cron.New(cron.WithLogger(l), cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l))),
	}, nil
}

// Next 返回 now 之后的下一次触发时间。
func (s *CronScheduler) Next(now time.Time) time.Time {
	return s.schedule.Next(now)
}

// Start 注册任务并阻塞到 ctx 取消；返回前等待正在执行的任务结束。
func (s *CronScheduler) Start(ctx context.Context, task func(context.Context)) error {
	if s == nil || s.cron == nil {
		return fmt.Errorf("scheduler not initialized")
	}
	if task == nil {
		return fmt.Errorf("scheduler task is nil")
	}
	s.cron.Schedule(s.schedule, cron.FuncJob(func() { task(ctx) }))
	logger.Infof("CronScheduler: started spec=%q run_immediately=%v next=%s",
		s.Spec, s.RunImmediately, s.Next(time.Now()).Format(time.RFC3339))
	if s.RunImmediately {
		task(ctx)
	}
	s.cron.Start()
	<-ctx.Done()
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	logger.Infof("CronScheduler: ctx done, exit")
	return nil
}

// cronLogger 把 cron 内部日志接到项目 logger。
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	logger.With(keysAndValues...).Debug("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logger.With(keysAndValues...).Error("cron: "+msg, "error", err)
}
