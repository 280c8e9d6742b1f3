package hold

import (
	"context"
	"time"
)

// Repository 预约仓储接口
// 预约只做逻辑删除(cancelled/removed),不物理删除
type Repository interface {
	// Create 创建预约
	Create(ctx context.Context, h *Hold) error

	// FindByID 根据ID查找
	FindByID(ctx context.Context, id uint) (*Hold, error)

	// FindLive 查找读者对某书pending/active的预约,不存在返回ErrHoldNotFound
	FindLive(ctx context.Context, titleID, holderID uint) (*Hold, error)

	// Update 保存状态、队列位置和时间戳
	Update(ctx context.Context, h *Hold) error

	// ListPending 某书的pending预约,按RequestedAt, ID升序
	ListPending(ctx context.Context, titleID uint) ([]*Hold, error)

	// ListActive 某书的active预约,按ExpiresAt升序
	ListActive(ctx context.Context, titleID uint) ([]*Hold, error)

	// ListExpired 保留期早于asOf的active预约,按TitleID, RequestedAt, ID升序
	ListExpired(ctx context.Context, asOf time.Time) ([]*Hold, error)

	// ListByHolder 读者的全部预约(按申请时间倒序)
	ListByHolder(ctx context.Context, holderID uint) ([]*Hold, error)
}
