package circulation

import (
	"context"
	"time"

	"github.com/xiebiao/circulation/internal/domain/checkout"
	"github.com/xiebiao/circulation/internal/domain/hold"
	"github.com/xiebiao/circulation/internal/domain/title"
)

// QueueState 某书的队列快照
// 不加锁读取,与正在进行的变更之间可能短暂不一致
type QueueState struct {
	Title   *title.Title
	Pending []*hold.Hold // 按队列位置
	Active  []*hold.Hold // 按过期时间
}

// History 读者历史
type History struct {
	HolderID  uint
	Holds     []*hold.Hold
	Checkouts []*checkout.Checkout
}

// SweepKind 批处理类型
type SweepKind string

const (
	SweepExpireHolds SweepKind = "expire_holds"
	SweepMarkOverdue SweepKind = "mark_overdue"
)

// SweepReport 一次批处理的结果
type SweepReport struct {
	Kind     SweepKind     `json:"kind"`
	AsOf     time.Time     `json:"as_of"`
	Scanned  int           `json:"scanned"`
	Applied  int           `json:"applied"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`

	// TitleIDs 本次有变更的图书,调用方据此失效队列缓存
	TitleIDs []uint `json:"title_ids,omitempty"`
}

func (r *SweepReport) finish(started, now time.Time) *SweepReport {
	r.Duration = now.Sub(started)
	return r
}

// QueueState 读取队列快照
func (s *service) QueueState(ctx context.Context, titleID uint) (*QueueState, error) {
	t, err := s.titles.FindByID(ctx, titleID)
	if err != nil {
		return nil, err
	}
	pending, err := s.holds.ListPending(ctx, titleID)
	if err != nil {
		return nil, err
	}
	active, err := s.holds.ListActive(ctx, titleID)
	if err != nil {
		return nil, err
	}
	hold.SortQueue(pending)
	return &QueueState{Title: t, Pending: pending, Active: active}, nil
}

// HolderHistory 读取读者历史
func (s *service) HolderHistory(ctx context.Context, holderID uint) (*History, error) {
	holds, err := s.holds.ListByHolder(ctx, holderID)
	if err != nil {
		return nil, err
	}
	checkouts, err := s.checkouts.ListByHolder(ctx, holderID)
	if err != nil {
		return nil, err
	}
	return &History{HolderID: holderID, Holds: holds, Checkouts: checkouts}, nil
}
