package checkout

import (
	"context"
	"time"
)

// Repository 借阅仓储接口
type Repository interface {
	// Create 创建借阅记录
	Create(ctx context.Context, c *Checkout) error

	// FindByID 根据ID查找
	FindByID(ctx context.Context, id uint) (*Checkout, error)

	// FindOpen 查找读者对某书未归还的借阅,不存在返回ErrCheckoutNotFound
	FindOpen(ctx context.Context, titleID, holderID uint) (*Checkout, error)

	// Update 保存状态与归还时间
	Update(ctx context.Context, c *Checkout) error

	// ListOverdueCandidates 列出DueDate早于asOf的active记录
	ListOverdueCandidates(ctx context.Context, asOf time.Time) ([]*Checkout, error)

	// ListDueBetween 列出DueDate落在[from, to)的active记录
	ListDueBetween(ctx context.Context, from, to time.Time) ([]*Checkout, error)

	// ListByHolder 读者的全部借阅(按借出时间倒序)
	ListByHolder(ctx context.Context, holderID uint) ([]*Checkout, error)
}
