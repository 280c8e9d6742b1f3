package checkout

import (
	"time"
)

// Status 借阅状态
type Status string

const (
	StatusActive   Status = "active"   // 借出中
	StatusReturned Status = "returned" // 已归还(终态)
	StatusOverdue  Status = "overdue"  // 已逾期,仍未归还
)

// DefaultLoanPeriodDays 未指定借期时的默认天数
const DefaultLoanPeriodDays = 7

// Checkout 借阅记录
// 不变量: 同一(TitleID, HolderID)最多一条未归还(active/overdue)记录
type Checkout struct {
	ID           uint
	TitleID      uint
	HolderID     uint
	CheckoutDate time.Time
	DueDate      time.Time
	ReturnDate   *time.Time
	Status       Status
	UpdatedAt    time.Time
}

// NewCheckout 创建借阅记录
// loanPeriodDays<=0时使用默认借期
func NewCheckout(titleID, holderID uint, now time.Time, loanPeriodDays int) *Checkout {
	if loanPeriodDays <= 0 {
		loanPeriodDays = DefaultLoanPeriodDays
	}
	return &Checkout{
		TitleID:      titleID,
		HolderID:     holderID,
		CheckoutDate: now,
		DueDate:      now.AddDate(0, 0, loanPeriodDays),
		Status:       StatusActive,
		UpdatedAt:    now,
	}
}

// IsOpen 是否未归还
func (c *Checkout) IsOpen() bool {
	return c.ReturnDate == nil && (c.Status == StatusActive || c.Status == StatusOverdue)
}

// Close 归还
func (c *Checkout) Close(now time.Time) error {
	if c.ReturnDate != nil || c.Status == StatusReturned {
		return ErrAlreadyReturned
	}
	c.ReturnDate = &now
	c.Status = StatusReturned
	c.UpdatedAt = now
	return nil
}

// MarkOverdue 到期未还标记为逾期
// 只处理active且DueDate早于asOf的记录,重复调用不会重复生效
func (c *Checkout) MarkOverdue(asOf time.Time) bool {
	if c.Status != StatusActive || !c.DueDate.Before(asOf) {
		return false
	}
	c.Status = StatusOverdue
	c.UpdatedAt = asOf
	return true
}

// DaysOverdue 截止asOf已逾期的整天数
func (c *Checkout) DaysOverdue(asOf time.Time) int {
	if !c.DueDate.Before(asOf) {
		return 0
	}
	return int(asOf.Sub(c.DueDate).Hours() / 24)
}

// IsOwnedBy 是否属于指定借阅人
func (c *Checkout) IsOwnedBy(holderID uint) bool {
	return c.HolderID == holderID
}
