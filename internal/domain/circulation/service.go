// Package circulation 流通引擎: 库存账本、借阅跟踪、预约队列和预约生命周期
//
// 所有会改动某本书库存或队列的操作都在同一个事务里先锁住这本书(Title行),
// 不同的书互不阻塞。通知先写入本次调用的outbox,事务提交后才发送。
package circulation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/circulation/internal/domain/checkout"
	"github.com/xiebiao/circulation/internal/domain/hold"
	"github.com/xiebiao/circulation/internal/domain/title"
)

// Transactor 事务边界
// fn返回error时回滚,返回nil时提交;仓储从ctx中取事务
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service 流通领域服务接口
type Service interface {
	// CreateHold 读者预约
	// 有可借副本时直接生效并保留一本,否则进入队尾
	CreateHold(ctx context.Context, titleID, holderID uint) (*hold.Hold, error)

	// CancelHold 读者取消自己的预约(→cancelled)
	CancelHold(ctx context.Context, holdID, holderID uint) (*hold.Hold, error)

	// RemoveHold 馆员移除预约(→removed)
	RemoveHold(ctx context.Context, holdID uint) (*hold.Hold, error)

	// ConfirmHold 读者取书: 预约→confirmed并开出借阅,保留的那本直接转给借阅
	ConfirmHold(ctx context.Context, holdID uint, loanPeriodDays int) (*checkout.Checkout, error)

	// PromoteNext 把队首的pending预约提升为active
	// 没有可借副本或队列为空时返回(nil, nil)
	PromoteNext(ctx context.Context, titleID uint) (*hold.Hold, error)

	// OpenCheckout 直接借出
	OpenCheckout(ctx context.Context, titleID, holderID uint, loanPeriodDays int) (*checkout.Checkout, error)

	// CloseCheckout 归还并尝试推进队列
	CloseCheckout(ctx context.Context, checkoutID uint) (*checkout.Checkout, error)

	// AdjustStock 馆员校正库存
	AdjustStock(ctx context.Context, titleID uint, total, available int) (*title.Title, error)

	// AddCopies 补货
	AddCopies(ctx context.Context, titleID uint, n int) (*title.Title, error)

	// WithdrawTitle 下架,排队中的预约全部移除
	WithdrawTitle(ctx context.Context, titleID uint) (*title.Title, error)

	// ExpireSweep 过期保留期已过的active预约,释放副本并推进队列
	ExpireSweep(ctx context.Context, asOf time.Time) (*SweepReport, error)

	// MarkOverdue 到期未还的借阅标记为overdue
	MarkOverdue(ctx context.Context, asOf time.Time) (*SweepReport, error)

	// DueReminders 给当天到期的借阅发提醒,返回发送数量
	DueReminders(ctx context.Context, day time.Time) (int, error)

	// QueueState 某书的队列快照(不加锁)
	QueueState(ctx context.Context, titleID uint) (*QueueState, error)

	// HolderHistory 读者的预约与借阅历史
	HolderHistory(ctx context.Context, holderID uint) (*History, error)
}

// Options 引擎参数
type Options struct {
	LoanPeriodDays int              // 默认借期(天)
	HoldWindow     time.Duration    // 预约保留期
	Notifier       Notifier         // 可为nil
	Logger         *zap.Logger      // 可为nil
	Clock          func() time.Time // 测试注入,默认time.Now
}

type service struct {
	titles    title.Repository
	checkouts checkout.Repository
	holds     hold.Repository
	tx        Transactor

	notifier       Notifier
	logger         *zap.Logger
	now            func() time.Time
	loanPeriodDays int
	holdWindow     time.Duration
}

// NewService 创建流通领域服务
func NewService(titles title.Repository, checkouts checkout.Repository, holds hold.Repository, tx Transactor, opts Options) Service {
	s := &service{
		titles:         titles,
		checkouts:      checkouts,
		holds:          holds,
		tx:             tx,
		notifier:       opts.Notifier,
		logger:         opts.Logger,
		now:            opts.Clock,
		loanPeriodDays: opts.LoanPeriodDays,
		holdWindow:     opts.HoldWindow,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.loanPeriodDays <= 0 {
		s.loanPeriodDays = checkout.DefaultLoanPeriodDays
	}
	if s.holdWindow <= 0 {
		s.holdWindow = hold.DefaultWindow
	}
	return s
}

// withTitle 开启事务,锁住图书后执行fn;提交成功后发送outbox中的通知
func (s *service) withTitle(ctx context.Context, titleID uint, fn func(ctx context.Context, t *title.Title) error) error {
	txCtx, box := withOutbox(ctx)
	err := s.tx.Transaction(txCtx, func(ctx context.Context) error {
		t, err := s.titles.LockByID(ctx, titleID)
		if err != nil {
			return err
		}
		return fn(ctx, t)
	})
	if err != nil {
		box.drain()
		return err
	}
	s.dispatch(ctx, box.drain())
	return nil
}

// loanDays 调用方未指定借期时使用配置值
func (s *service) loanDays(days int) int {
	if days <= 0 {
		return s.loanPeriodDays
	}
	return days
}
