// Package scheduler 后台定时任务(过期预约、逾期标记、到期提醒)
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job 一个定时任务
type Job struct {
	Name    string
	Spec    string        // cron表达式或@every 5m
	Timeout time.Duration // 单次执行超时,0表示不限
	Run     func(ctx context.Context) error
}

// Scheduler 基于robfig/cron
// 同一任务上一次还没跑完时跳过本次触发
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger

	mu    sync.Mutex
	names map[string]cron.EntryID

	ctx    context.Context
	cancel context.CancelFunc
}

// New 创建调度器
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := cronLogger{logger.Sugar().Named("cron")}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		names:  make(map[string]cron.EntryID),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add 注册任务,表达式非法或重名时返回错误
func (s *Scheduler) Add(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.names[job.Name]; ok {
		return fmt.Errorf("任务已存在: %s", job.Name)
	}
	id, err := s.cron.AddFunc(job.Spec, s.wrap(job))
	if err != nil {
		return fmt.Errorf("任务%s的调度表达式非法(%q): %w", job.Name, job.Spec, err)
	}
	s.names[job.Name] = id
	return nil
}

// wrap 每次执行带上超时并记录耗时
func (s *Scheduler) wrap(job Job) func() {
	return func() {
		ctx := s.ctx
		if job.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, job.Timeout)
			defer cancel()
		}

		start := time.Now()
		err := job.Run(ctx)
		fields := []zap.Field{zap.String("job", job.Name), zap.Duration("took", time.Since(start))}
		if err != nil {
			s.logger.Error("定时任务失败", append(fields, zap.Error(err))...)
			return
		}
		s.logger.Debug("定时任务完成", fields...)
	}
}

// Next 任务的下次触发时间,未启动或不存在时为零值
func (s *Scheduler) Next(name string) time.Time {
	s.mu.Lock()
	id, ok := s.names[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// Start 异步启动
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止触发并等待正在执行的任务,ctx到期时取消任务的ctx
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		<-done.Done()
		return ctx.Err()
	}
}

// cronLogger 把cron的日志接到zap
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
