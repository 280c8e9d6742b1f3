package title

import (
	"regexp"
	"time"
)

// Status 图书流通状态
// 设计说明:
// 1. 状态由两个计数器加下架标记推导,不单独存储
// 2. withdrawn是终态,覆盖推导值
type Status string

const (
	StatusAvailable     Status = "available"       // 有可借副本
	StatusAllCheckedOut Status = "all_checked_out" // 副本全部借出或被预约占用
	StatusWithdrawn     Status = "withdrawn"       // 已下架
)

// Title 图书实体(聚合根,拥有库存)
// 不变量: 0 <= AvailableCopies <= TotalCopies
type Title struct {
	ID              uint
	ISBN            string
	Name            string
	Author          string
	Category        string
	Publisher       string
	CoverURL        string
	Description     string
	TotalCopies     int
	AvailableCopies int
	Withdrawn       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewTitle 创建图书(工厂方法)
// 新入库的副本全部可借
func NewTitle(isbn, name, author string, copies int) (*Title, error) {
	if copies < 0 {
		return nil, ErrInvalidRange
	}
	isbn = NormalizeISBN(isbn)
	if !IsValidISBN(isbn) {
		return nil, ErrInvalidISBN
	}
	if name == "" {
		return nil, ErrNameRequired
	}
	now := time.Now()
	return &Title{
		ISBN:            isbn,
		Name:            name,
		Author:          author,
		TotalCopies:     copies,
		AvailableCopies: copies,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Status 推导当前状态
func (t *Title) Status() Status {
	switch {
	case t.Withdrawn:
		return StatusWithdrawn
	case t.AvailableCopies > 0:
		return StatusAvailable
	default:
		return StatusAllCheckedOut
	}
}

// IsWithdrawn 是否已下架
func (t *Title) IsWithdrawn() bool {
	return t.Withdrawn
}

// Decrement 占用一个副本(借出或预约保留)
func (t *Title) Decrement() error {
	if t.AvailableCopies == 0 {
		return ErrOutOfStock
	}
	t.AvailableCopies--
	t.UpdatedAt = time.Now()
	return nil
}

// Increment 归还一个副本
// 下架后仍允许归还
func (t *Title) Increment() error {
	if t.AvailableCopies+1 > t.TotalCopies {
		return ErrInvariantViolation
	}
	t.AvailableCopies++
	t.UpdatedAt = time.Now()
	return nil
}

// SetCounts 馆员直接校正库存
// 返回可借数的增量(>0时调用方需要尝试推进队列)
func (t *Title) SetCounts(total, available int) (int, error) {
	if t.Withdrawn {
		return 0, ErrTitleWithdrawn
	}
	if total < 0 || available < 0 || available > total {
		return 0, ErrInvalidRange
	}
	delta := available - t.AvailableCopies
	t.TotalCopies = total
	t.AvailableCopies = available
	t.UpdatedAt = time.Now()
	return delta, nil
}

// AddCopies 补货n本
func (t *Title) AddCopies(n int) error {
	if t.Withdrawn {
		return ErrTitleWithdrawn
	}
	if n <= 0 {
		return ErrInvalidRange
	}
	t.TotalCopies += n
	t.AvailableCopies += n
	t.UpdatedAt = time.Now()
	return nil
}

// Withdraw 下架(终态)
func (t *Title) Withdraw() error {
	if t.Withdrawn {
		return ErrTitleWithdrawn
	}
	t.Withdrawn = true
	t.UpdatedAt = time.Now()
	return nil
}

// UpdateMetadata 用外部目录数据补全空字段
func (t *Title) UpdateMetadata(author, category, publisher, coverURL, description string) {
	if t.Author == "" {
		t.Author = author
	}
	if t.Category == "" {
		t.Category = category
	}
	if t.Publisher == "" {
		t.Publisher = publisher
	}
	if t.CoverURL == "" {
		t.CoverURL = coverURL
	}
	if t.Description == "" {
		t.Description = description
	}
	t.UpdatedAt = time.Now()
}

var nonDigit = regexp.MustCompile(`[^0-9Xx]`)

// NormalizeISBN 去掉分隔符(978-7-115-42802-8 → 9787115428028)
func NormalizeISBN(isbn string) string {
	return nonDigit.ReplaceAllString(isbn, "")
}

// IsValidISBN 只检查位数,不校验校验位
func IsValidISBN(isbn string) bool {
	n := len(NormalizeISBN(isbn))
	return n == 10 || n == 13
}
