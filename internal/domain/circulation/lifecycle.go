package circulation

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/circulation/internal/domain/checkout"
	"github.com/xiebiao/circulation/internal/domain/hold"
	"github.com/xiebiao/circulation/internal/domain/title"
)

// ConfirmHold 读者到馆取书
// 预约保留的那本直接转给借阅记录,库存不再扣减;之后照常尝试推进队列
func (s *service) ConfirmHold(ctx context.Context, holdID uint, loanPeriodDays int) (*checkout.Checkout, error) {
	titleID, err := s.holdTitle(ctx, holdID)
	if err != nil {
		return nil, err
	}

	var result *checkout.Checkout
	err = s.withTitle(ctx, titleID, func(ctx context.Context, t *title.Title) error {
		h, err := s.holds.FindByID(ctx, holdID)
		if err != nil {
			return err
		}
		now := s.now()
		if err := h.Confirm(now); err != nil {
			return err
		}
		if err := s.ensureNoOpenCheckout(ctx, t.ID, h.HolderID); err != nil {
			return err
		}

		c := checkout.NewCheckout(t.ID, h.HolderID, now, s.loanDays(loanPeriodDays))
		if err := s.checkouts.Create(ctx, c); err != nil {
			return err
		}
		if err := s.holds.Update(ctx, h); err != nil {
			return err
		}
		if _, err := s.promoteNext(ctx, t); err != nil {
			return err
		}

		s.enqueueNotice(ctx, openedNotice(c, h.ID))
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ExpireSweep 过期未取书的预约
// 每条预约一个事务;同一本书按RequestedAt先后处理,单条失败记日志后继续
func (s *service) ExpireSweep(ctx context.Context, asOf time.Time) (*SweepReport, error) {
	started := s.now()
	expired, err := s.holds.ListExpired(ctx, asOf)
	if err != nil {
		return nil, err
	}

	report := &SweepReport{Kind: SweepExpireHolds, AsOf: asOf, Scanned: len(expired)}
	for _, batch := range groupByTitle(expired) {
		touched := false
		for _, candidate := range batch {
			if ctx.Err() != nil {
				return report.finish(started, s.now()), ctx.Err()
			}
			applied, err := s.expireOne(ctx, candidate.TitleID, candidate.ID, asOf)
			if err != nil {
				report.Failed++
				s.logger.Error("过期预约失败",
					zap.Uint("hold_id", candidate.ID),
					zap.Uint("title_id", candidate.TitleID),
					zap.Error(err),
				)
				continue
			}
			if applied {
				report.Applied++
				touched = true
			}
		}
		if touched {
			report.TitleIDs = append(report.TitleIDs, batch[0].TitleID)
		}
	}
	return report.finish(started, s.now()), nil
}

// expireOne 锁内重新确认预约仍是active且已过期,避免和取书/取消并发时重复处理
func (s *service) expireOne(ctx context.Context, titleID, holdID uint, asOf time.Time) (bool, error) {
	applied := false
	err := s.withTitle(ctx, titleID, func(ctx context.Context, t *title.Title) error {
		h, err := s.holds.FindByID(ctx, holdID)
		if err != nil {
			return err
		}
		if !h.IsExpiredAt(asOf) {
			return nil
		}
		if err := h.Expire(s.now()); err != nil {
			return err
		}
		if err := s.holds.Update(ctx, h); err != nil {
			return err
		}
		if err := s.release(ctx, t); err != nil {
			return err
		}
		s.enqueueNotice(ctx, Notice{
			Kind:     NoticeHoldExpired,
			HolderID: h.HolderID,
			TitleID:  t.ID,
			Context:  map[string]any{"hold_id": h.ID},
		})
		applied = true
		return nil
	})
	return applied, err
}

func (s *service) ensureNoOpenCheckout(ctx context.Context, titleID, holderID uint) error {
	_, err := s.checkouts.FindOpen(ctx, titleID, holderID)
	if err == nil {
		return checkout.ErrDuplicateCheckout
	}
	if errors.Is(err, checkout.ErrCheckoutNotFound) {
		return nil
	}
	return err
}

// groupByTitle 保持输入顺序分组,输入已按TitleID, RequestedAt排好
func groupByTitle(holds []*hold.Hold) [][]*hold.Hold {
	var (
		groups [][]*hold.Hold
		index  = make(map[uint]int)
	)
	for _, h := range holds {
		i, ok := index[h.TitleID]
		if !ok {
			i = len(groups)
			index[h.TitleID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], h)
	}
	for _, g := range groups {
		hold.SortQueue(g)
	}
	return groups
}
