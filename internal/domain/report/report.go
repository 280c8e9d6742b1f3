// Package report 流通报表(只读快照)
package report

import (
	"context"
	"time"
)

// PopularTitle 热门图书: 统计区间内的借出次数加当前排队人数
type PopularTitle struct {
	TitleID      uint   `db:"title_id" json:"title_id"`
	ISBN         string `db:"isbn" json:"isbn"`
	Name         string `db:"name" json:"name"`
	Loans        int    `db:"loans" json:"loans"`
	PendingHolds int    `db:"pending_holds" json:"pending_holds"`
}

// OverdueCheckout 逾期未还
type OverdueCheckout struct {
	CheckoutID  uint      `db:"checkout_id" json:"checkout_id"`
	TitleID     uint      `db:"title_id" json:"title_id"`
	Name        string    `db:"name" json:"name"`
	HolderID    uint      `db:"holder_id" json:"holder_id"`
	DueDate     time.Time `db:"due_date" json:"due_date"`
	DaysOverdue int       `db:"-" json:"days_overdue"`
}

// MonthlyLoans 每月借出量,Month格式为2006-01
type MonthlyLoans struct {
	Month string `db:"month" json:"month"`
	Loans int    `db:"loans" json:"loans"`
}

// LoanRecord 借阅台账的一行,未归还时ReturnDate为空
type LoanRecord struct {
	CheckoutID   uint       `db:"checkout_id" json:"checkout_id"`
	TitleID      uint       `db:"title_id" json:"title_id"`
	Name         string     `db:"name" json:"name"`
	HolderID     uint       `db:"holder_id" json:"holder_id"`
	CheckoutDate time.Time  `db:"checkout_date" json:"checkout_date"`
	DueDate      time.Time  `db:"due_date" json:"due_date"`
	ReturnDate   *time.Time `db:"return_date" json:"return_date,omitempty"`
	Status       string     `db:"status" json:"status"`
}

// HoldRecord 预约台账的一行
type HoldRecord struct {
	HoldID        uint       `db:"hold_id" json:"hold_id"`
	TitleID       uint       `db:"title_id" json:"title_id"`
	Name          string     `db:"name" json:"name"`
	HolderID      uint       `db:"holder_id" json:"holder_id"`
	Status        string     `db:"status" json:"status"`
	QueuePosition *int       `db:"queue_position" json:"queue_position,omitempty"`
	RequestedAt   time.Time  `db:"requested_at" json:"requested_at"`
	ExpiresAt     *time.Time `db:"expires_at" json:"expires_at,omitempty"`
}

// Repository 报表查询
type Repository interface {
	// Popular 按Loans+PendingHolds降序,只返回大于0的
	Popular(ctx context.Context, since time.Time, limit int) ([]PopularTitle, error)

	// Overdue DueDate早于asOf且未归还的借阅,按DueDate升序
	Overdue(ctx context.Context, asOf time.Time) ([]OverdueCheckout, error)

	// MonthlyLoans [from, to)区间内按月统计,按月份升序,没有借出的月份不出现
	MonthlyLoans(ctx context.Context, from, to time.Time) ([]MonthlyLoans, error)

	// Loans CheckoutDate在[from, to)内的全部借阅,零值表示不限,按CheckoutDate升序
	Loans(ctx context.Context, from, to time.Time) ([]LoanRecord, error)

	// Holds 指定状态的预约,status为空返回全部,按图书、申请时间排序
	Holds(ctx context.Context, status string) ([]HoldRecord, error)
}

// DaysOverdue 截止asOf已逾期的整天数,与借阅实体的口径一致
func DaysOverdue(due, asOf time.Time) int {
	if !due.Before(asOf) {
		return 0
	}
	return int(asOf.Sub(due).Hours() / 24)
}
