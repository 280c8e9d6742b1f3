package hold

import (
	"time"
)

// Status 预约状态
type Status string

const (
	StatusPending   Status = "pending"   // 排队中
	StatusActive    Status = "active"    // 已为读者保留一本,等待取书
	StatusConfirmed Status = "confirmed" // 已取书,转为借阅(终态)
	StatusExpired   Status = "expired"   // 保留期内未取书(终态)
	StatusCancelled Status = "cancelled" // 读者主动取消(终态)
	StatusRemoved   Status = "removed"   // 馆员移除或图书下架(终态)
)

// DefaultWindow 保留期
const DefaultWindow = 7 * 24 * time.Hour

// transitions 合法的状态转换
// 不在表中的转换一律返回ErrInvalidTransition
var transitions = map[Status][]Status{
	StatusPending:   {StatusActive, StatusCancelled, StatusRemoved},
	StatusActive:    {StatusConfirmed, StatusExpired, StatusCancelled, StatusRemoved},
	StatusConfirmed: {},
	StatusExpired:   {},
	StatusCancelled: {},
	StatusRemoved:   {},
}

// IsTerminal 是否终态
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Hold 预约
// 不变量:
// 1. 同一(TitleID, HolderID)最多一条pending/active预约
// 2. QueuePosition只在pending时有值,同一本书的pending预约按RequestedAt排成1..N
type Hold struct {
	ID            uint
	TitleID       uint
	HolderID      uint
	RequestedAt   time.Time
	QueuePosition *int
	ActivatedAt   *time.Time
	ExpiresAt     *time.Time
	ClosedAt      *time.Time
	Status        Status
	UpdatedAt     time.Time
}

// NewHold 创建排队中的预约,队列位置由调用方分配
func NewHold(titleID, holderID uint, now time.Time) *Hold {
	return &Hold{
		TitleID:     titleID,
		HolderID:    holderID,
		RequestedAt: now,
		Status:      StatusPending,
		UpdatedAt:   now,
	}
}

// CanTransitionTo 检查是否可以转换到目标状态
func (h *Hold) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[h.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (h *Hold) transitionTo(target Status, now time.Time) error {
	if !h.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	h.Status = target
	h.QueuePosition = nil
	h.UpdatedAt = now
	if target.IsTerminal() {
		h.ClosedAt = &now
	}
	return nil
}

// Activate pending → active,开始保留期
func (h *Hold) Activate(now time.Time, window time.Duration) error {
	if window <= 0 {
		window = DefaultWindow
	}
	if err := h.transitionTo(StatusActive, now); err != nil {
		return err
	}
	expires := now.Add(window)
	h.ActivatedAt = &now
	h.ExpiresAt = &expires
	return nil
}

// Confirm active → confirmed
// 保留的那本转给借阅记录,不归还库存
func (h *Hold) Confirm(now time.Time) error {
	return h.transitionTo(StatusConfirmed, now)
}

// Expire active → expired
func (h *Hold) Expire(now time.Time) error {
	return h.transitionTo(StatusExpired, now)
}

// Cancel pending|active → cancelled
func (h *Hold) Cancel(now time.Time) error {
	return h.transitionTo(StatusCancelled, now)
}

// Remove pending|active → removed
func (h *Hold) Remove(now time.Time) error {
	return h.transitionTo(StatusRemoved, now)
}

// IsLive pending或active
func (h *Hold) IsLive() bool {
	return h.Status == StatusPending || h.Status == StatusActive
}

// IsExpiredAt active且保留期已过
func (h *Hold) IsExpiredAt(asOf time.Time) bool {
	return h.Status == StatusActive && h.ExpiresAt != nil && h.ExpiresAt.Before(asOf)
}

// IsOwnedBy 是否属于指定读者
func (h *Hold) IsOwnedBy(holderID uint) bool {
	return h.HolderID == holderID
}

// Position 队列位置,非pending返回0
func (h *Hold) Position() int {
	if h.QueuePosition == nil {
		return 0
	}
	return *h.QueuePosition
}
