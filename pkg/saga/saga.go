// Package saga 跨事务的多步操作编排
//
// 每一步是一个独立的本地事务,附带补偿操作。
// 某一步失败时按逆序补偿已完成的步骤。
// 补偿尽力而为,失败只记日志并汇总到返回的错误里。
package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/circulation/pkg/metrics"
)

// Step Saga中的一个步骤
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error // 可为nil
}

// StepError 某一步执行失败
type StepError struct {
	Saga string
	Step string
	Err  error

	// CompensateErr 补偿阶段的错误,为nil说明补偿全部成功
	CompensateErr error
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("saga[%s]步骤[%s]失败: %v", e.Saga, e.Step, e.Err)
	if e.CompensateErr != nil {
		msg += fmt.Sprintf("; 补偿失败: %v", e.CompensateErr)
	}
	return msg
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Saga 一次编排
// 不可复用,每次Execute前新建
type Saga struct {
	name    string
	steps   []Step
	timeout time.Duration
	logger  *zap.Logger
}

// New 创建Saga,timeout<=0表示不限时
func New(name string, timeout time.Duration, logger *zap.Logger) *Saga {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Saga{
		name:    name,
		timeout: timeout,
		logger:  logger.With(zap.String("saga", name)),
	}
}

// AddStep 追加步骤,按添加顺序执行
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) *Saga {
	s.steps = append(s.steps, Step{Name: name, Action: action, Compensate: compensate})
	return s
}

// Execute 执行全部步骤
// 失败时返回*StepError,errors.Is可以穿透到步骤本身的错误
func (s *Saga) Execute(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	done := make([]Step, 0, len(s.steps))
	for _, step := range s.steps {
		err := ctx.Err()
		if err == nil && step.Action != nil {
			err = step.Action(ctx)
		}
		if err != nil {
			metrics.IncCounterVec(metrics.SagaExecutionsTotal, s.name, "compensated")
			s.logger.Warn("saga步骤失败,开始补偿",
				zap.String("step", step.Name),
				zap.Int("completed", len(done)),
				zap.Error(err),
			)
			// 补偿不受原ctx超时影响
			compErr := s.compensate(context.WithoutCancel(ctx), done)
			return &StepError{Saga: s.name, Step: step.Name, Err: err, CompensateErr: compErr}
		}
		done = append(done, step)
	}

	metrics.IncCounterVec(metrics.SagaExecutionsTotal, s.name, "success")
	return nil
}

func (s *Saga) compensate(ctx context.Context, done []Step) error {
	var errs []error
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Compensate == nil {
			continue
		}
		metrics.IncCounterVec(metrics.SagaCompensationsTotal, s.name)
		if err := step.Compensate(ctx); err != nil {
			s.logger.Error("saga补偿失败,需要人工处理",
				zap.String("step", step.Name),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", step.Name, err))
		}
	}
	return errors.Join(errs...)
}
