package circulation

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/circulation/internal/domain/hold"
	"github.com/xiebiao/circulation/internal/domain/title"
)

// 库存账本
// 以下方法都要求调用方已经在withTitle内持有t的锁

// reserve 占用一本(借出或为预约保留)
func (s *service) reserve(ctx context.Context, t *title.Title) error {
	if err := t.Decrement(); err != nil {
		return err
	}
	return s.titles.Update(ctx, t)
}

// release 归还一本,然后尝试把它交给队首
func (s *service) release(ctx context.Context, t *title.Title) error {
	if err := t.Increment(); err != nil {
		return err
	}
	if err := s.titles.Update(ctx, t); err != nil {
		return err
	}
	_, err := s.promote(ctx, t, 1)
	return err
}

// promote 最多推进k次,队列空或没有副本时提前结束
func (s *service) promote(ctx context.Context, t *title.Title, k int) ([]*hold.Hold, error) {
	var promoted []*hold.Hold
	for i := 0; i < k; i++ {
		h, err := s.promoteNext(ctx, t)
		if err != nil {
			return promoted, err
		}
		if h == nil {
			break
		}
		promoted = append(promoted, h)
	}
	return promoted, nil
}

// AdjustStock 馆员校正库存
func (s *service) AdjustStock(ctx context.Context, titleID uint, total, available int) (*title.Title, error) {
	var result *title.Title
	err := s.withTitle(ctx, titleID, func(ctx context.Context, t *title.Title) error {
		delta, err := t.SetCounts(total, available)
		if err != nil {
			return err
		}
		if err := s.titles.Update(ctx, t); err != nil {
			return err
		}
		if delta > 0 {
			if _, err := s.promote(ctx, t, delta); err != nil {
				return err
			}
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AddCopies 补货n本,随后最多推进n个预约
func (s *service) AddCopies(ctx context.Context, titleID uint, n int) (*title.Title, error) {
	var result *title.Title
	err := s.withTitle(ctx, titleID, func(ctx context.Context, t *title.Title) error {
		if err := t.AddCopies(n); err != nil {
			return err
		}
		if err := s.titles.Update(ctx, t); err != nil {
			return err
		}
		if _, err := s.promote(ctx, t, n); err != nil {
			return err
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// WithdrawTitle 下架
// 排队中的预约永远等不到副本,全部移除;已生效的预约和未还的借阅照常走完
func (s *service) WithdrawTitle(ctx context.Context, titleID uint) (*title.Title, error) {
	var result *title.Title
	err := s.withTitle(ctx, titleID, func(ctx context.Context, t *title.Title) error {
		if err := t.Withdraw(); err != nil {
			return err
		}
		if err := s.titles.Update(ctx, t); err != nil {
			return err
		}

		pending, err := s.holds.ListPending(ctx, t.ID)
		if err != nil {
			return err
		}
		now := s.now()
		for _, h := range pending {
			if err := h.Remove(now); err != nil {
				return err
			}
			if err := s.holds.Update(ctx, h); err != nil {
				return err
			}
			s.enqueueNotice(ctx, Notice{
				Kind:     NoticeHoldCancelled,
				HolderID: h.HolderID,
				TitleID:  t.ID,
				Context:  map[string]any{"hold_id": h.ID, "reason": "withdrawn"},
			})
		}
		s.logger.Info("图书已下架",
			zap.Uint("title_id", t.ID),
			zap.Int("removed_holds", len(pending)),
		)
		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
