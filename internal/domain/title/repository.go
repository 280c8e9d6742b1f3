package title

import (
	"context"
)

// Repository 图书仓储接口
// 由domain层定义接口,infrastructure层实现(gorm / 内存)
type Repository interface {
	// Create 创建图书
	Create(ctx context.Context, t *Title) error

	// FindByID 根据ID查找图书(不加锁,可能读到旧值)
	FindByID(ctx context.Context, id uint) (*Title, error)

	// FindByISBN 根据ISBN查找图书
	FindByISBN(ctx context.Context, isbn string) (*Title, error)

	// LockByID 在当前事务内锁定图书
	// 同一本书的所有库存/预约变更都必须先拿到这把锁
	// MySQL/PostgreSQL: SELECT ... FOR UPDATE; 内存实现: 按ID加互斥锁直到事务结束
	LockByID(ctx context.Context, id uint) (*Title, error)

	// Update 保存计数器、下架标记与元数据
	Update(ctx context.Context, t *Title) error

	// List 分页查询图书
	List(ctx context.Context, params ListParams) ([]*Title, int64, error)
}

// ListParams 列表查询参数
type ListParams struct {
	Page     int    // 页码(从1开始)
	PageSize int    // 每页数量
	Keyword  string // 搜索书名、作者
}
