package circulation

import (
	"context"
	"errors"

	"github.com/xiebiao/circulation/internal/domain/hold"
	"github.com/xiebiao/circulation/internal/domain/title"
)

// CreateHold 读者预约
func (s *service) CreateHold(ctx context.Context, titleID, holderID uint) (*hold.Hold, error) {
	var result *hold.Hold
	err := s.withTitle(ctx, titleID, func(ctx context.Context, t *title.Title) error {
		h, err := s.enqueue(ctx, t, holderID)
		result = h
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) enqueue(ctx context.Context, t *title.Title, holderID uint) (*hold.Hold, error) {
	if t.IsWithdrawn() {
		return nil, title.ErrTitleWithdrawn
	}

	_, err := s.holds.FindLive(ctx, t.ID, holderID)
	if err == nil {
		return nil, hold.ErrDuplicateHold
	}
	if !errors.Is(err, hold.ErrHoldNotFound) {
		return nil, err
	}

	now := s.now()
	h := hold.NewHold(t.ID, holderID, now)

	// 有副本: 跳过排队直接保留一本
	if t.AvailableCopies > 0 {
		if err := s.reserve(ctx, t); err != nil {
			return nil, err
		}
		if err := h.Activate(now, s.holdWindow); err != nil {
			return nil, err
		}
		if err := s.holds.Create(ctx, h); err != nil {
			return nil, err
		}
		s.enqueueNotice(ctx, activatedNotice(h))
		return h, nil
	}

	pending, err := s.holds.ListPending(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	pos := len(pending) + 1
	h.QueuePosition = &pos
	if err := s.holds.Create(ctx, h); err != nil {
		return nil, err
	}
	s.enqueueNotice(ctx, Notice{
		Kind:     NoticeHoldQueued,
		HolderID: holderID,
		TitleID:  t.ID,
		Context:  map[string]any{"hold_id": h.ID, "queue_position": pos},
	})
	return h, nil
}

// PromoteNext 对外暴露的单次推进
func (s *service) PromoteNext(ctx context.Context, titleID uint) (*hold.Hold, error) {
	var result *hold.Hold
	err := s.withTitle(ctx, titleID, func(ctx context.Context, t *title.Title) error {
		h, err := s.promoteNext(ctx, t)
		result = h
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// promoteNext 队首pending → active,保留一本,其余重新编号
// 下架、无副本、队列为空时什么都不做
func (s *service) promoteNext(ctx context.Context, t *title.Title) (*hold.Hold, error) {
	if t.IsWithdrawn() || t.AvailableCopies == 0 {
		return nil, nil
	}
	pending, err := s.holds.ListPending(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, nil
	}
	hold.SortQueue(pending)
	head := pending[0]

	if err := head.Activate(s.now(), s.holdWindow); err != nil {
		return nil, err
	}
	if err := s.reserve(ctx, t); err != nil {
		return nil, err
	}
	if err := s.holds.Update(ctx, head); err != nil {
		return nil, err
	}
	if err := s.renumber(ctx, pending[1:]); err != nil {
		return nil, err
	}
	s.enqueueNotice(ctx, activatedNotice(head))
	return head, nil
}

// renumber 把剩余pending预约压缩成1..N,只写回位置变化的记录
func (s *service) renumber(ctx context.Context, pending []*hold.Hold) error {
	for _, h := range hold.Renumber(pending) {
		if err := s.holds.Update(ctx, h); err != nil {
			return err
		}
	}
	return nil
}

// CancelHold 读者取消自己的预约
func (s *service) CancelHold(ctx context.Context, holdID, holderID uint) (*hold.Hold, error) {
	return s.closeHold(ctx, holdID, func(h *hold.Hold) error {
		if !h.IsOwnedBy(holderID) {
			return hold.ErrNotOwner
		}
		return h.Cancel(s.now())
	})
}

// RemoveHold 馆员移除预约
func (s *service) RemoveHold(ctx context.Context, holdID uint) (*hold.Hold, error) {
	return s.closeHold(ctx, holdID, func(h *hold.Hold) error {
		return h.Remove(s.now())
	})
}

// closeHold 取消/移除的公共流程
// pending: 其余排队者重新编号; active: 释放保留的副本并推进队首
func (s *service) closeHold(ctx context.Context, holdID uint, transition func(h *hold.Hold) error) (*hold.Hold, error) {
	titleID, err := s.holdTitle(ctx, holdID)
	if err != nil {
		return nil, err
	}

	var result *hold.Hold
	err = s.withTitle(ctx, titleID, func(ctx context.Context, t *title.Title) error {
		h, err := s.holds.FindByID(ctx, holdID)
		if err != nil {
			return err
		}
		wasActive := h.Status == hold.StatusActive
		if err := transition(h); err != nil {
			return err
		}
		if err := s.holds.Update(ctx, h); err != nil {
			return err
		}

		if wasActive {
			if err := s.release(ctx, t); err != nil {
				return err
			}
		} else {
			pending, err := s.holds.ListPending(ctx, t.ID)
			if err != nil {
				return err
			}
			if err := s.renumber(ctx, pending); err != nil {
				return err
			}
		}

		s.enqueueNotice(ctx, Notice{
			Kind:     NoticeHoldCancelled,
			HolderID: h.HolderID,
			TitleID:  t.ID,
			Context:  map[string]any{"hold_id": h.ID, "reason": string(h.Status)},
		})
		result = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// holdTitle 锁外读取预约所属的图书,锁内会重新读取预约
func (s *service) holdTitle(ctx context.Context, holdID uint) (uint, error) {
	h, err := s.holds.FindByID(ctx, holdID)
	if err != nil {
		return 0, err
	}
	return h.TitleID, nil
}

func activatedNotice(h *hold.Hold) Notice {
	return Notice{
		Kind:     NoticeHoldActivated,
		HolderID: h.HolderID,
		TitleID:  h.TitleID,
		Context: map[string]any{
			"hold_id":    h.ID,
			"expires_at": *h.ExpiresAt,
		},
	}
}
