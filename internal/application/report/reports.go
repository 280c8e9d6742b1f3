// Package report 报表与读者历史查询用例
package report

import (
	"context"
	"time"

	"github.com/xiebiao/circulation/internal/application/view"
	"github.com/xiebiao/circulation/internal/domain/circulation"
	"github.com/xiebiao/circulation/internal/domain/hold"
	"github.com/xiebiao/circulation/internal/domain/report"
	"github.com/xiebiao/circulation/internal/domain/title"
	apperrors "github.com/xiebiao/circulation/pkg/errors"
	"github.com/xiebiao/circulation/pkg/tracing"
)

const tracerName = "application/report"

// 默认统计区间与条数
const (
	DefaultPopularWindow = 30 * 24 * time.Hour
	DefaultPopularLimit  = 10
	MaxPopularLimit      = 100
	DefaultMonthlySpan   = 12 // 月
)

// ReportsUseCase 只读报表
type ReportsUseCase struct {
	repo report.Repository
	now  func() time.Time
}

// NewReportsUseCase 创建报表用例
func NewReportsUseCase(repo report.Repository) *ReportsUseCase {
	return &ReportsUseCase{repo: repo, now: time.Now}
}

// PopularRequest 热门图书请求
type PopularRequest struct {
	Since time.Time // 零值取最近30天
	Limit int
}

// Popular 热门图书
func (uc *ReportsUseCase) Popular(ctx context.Context, req PopularRequest) (rows []report.PopularTitle, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "report.Popular")
	defer func() { tracing.End(span, err) }()

	if req.Since.IsZero() {
		req.Since = uc.now().Add(-DefaultPopularWindow)
	}
	switch {
	case req.Limit <= 0:
		req.Limit = DefaultPopularLimit
	case req.Limit > MaxPopularLimit:
		req.Limit = MaxPopularLimit
	}
	return uc.repo.Popular(ctx, req.Since, req.Limit)
}

// Overdue 逾期未还,asOf为零值时取当前时间
func (uc *ReportsUseCase) Overdue(ctx context.Context, asOf time.Time) (rows []report.OverdueCheckout, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "report.Overdue")
	defer func() { tracing.End(span, err) }()

	if asOf.IsZero() {
		asOf = uc.now()
	}
	return uc.repo.Overdue(ctx, asOf)
}

// MonthlyRequest 月度借出量请求,[From, To)
type MonthlyRequest struct {
	From time.Time // 零值取To往前12个月的月初
	To   time.Time // 零值取下个月月初
}

// Monthly 月度借出量
func (uc *ReportsUseCase) Monthly(ctx context.Context, req MonthlyRequest) (rows []report.MonthlyLoans, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "report.Monthly")
	defer func() { tracing.End(span, err) }()

	if req.To.IsZero() {
		now := uc.now()
		req.To = time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
	}
	if req.From.IsZero() {
		req.From = time.Date(req.To.Year(), req.To.Month()-DefaultMonthlySpan, 1, 0, 0, 0, 0, req.To.Location())
	}
	if !req.From.Before(req.To) {
		return nil, title.ErrInvalidRange
	}
	return uc.repo.MonthlyLoans(ctx, req.From, req.To)
}

// LoansRequest 借阅台账请求,[From, To),零值表示不限
type LoansRequest struct {
	From time.Time
	To   time.Time
}

// Loans 借阅台账: 每次借出及归还日期
func (uc *ReportsUseCase) Loans(ctx context.Context, req LoansRequest) (rows []report.LoanRecord, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "report.Loans")
	defer func() { tracing.End(span, err) }()

	if !req.From.IsZero() && !req.To.IsZero() && !req.From.Before(req.To) {
		return nil, title.ErrInvalidRange
	}
	return uc.repo.Loans(ctx, req.From, req.To)
}

// Holds 预约台账,status为空时不过滤
func (uc *ReportsUseCase) Holds(ctx context.Context, status string) (rows []report.HoldRecord, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "report.Holds")
	defer func() { tracing.End(span, err) }()

	switch hold.Status(status) {
	case "", hold.StatusPending, hold.StatusActive, hold.StatusConfirmed,
		hold.StatusExpired, hold.StatusCancelled, hold.StatusRemoved:
	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "未知的预约状态: "+status)
	}
	return uc.repo.Holds(ctx, status)
}

// HolderHistoryUseCase 读者的预约与借阅历史
type HolderHistoryUseCase struct {
	engine circulation.Service
}

// NewHolderHistoryUseCase 创建历史查询用例
func NewHolderHistoryUseCase(engine circulation.Service) *HolderHistoryUseCase {
	return &HolderHistoryUseCase{engine: engine}
}

// Execute 查询历史
func (uc *HolderHistoryUseCase) Execute(ctx context.Context, holderID uint) (resp *view.History, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "report.HolderHistory")
	defer func() { tracing.End(span, err) }()

	h, err := uc.engine.HolderHistory(ctx, holderID)
	if err != nil {
		return nil, err
	}
	v := view.FromHistory(h)
	return &v, nil
}
