package circulation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/circulation/internal/domain/checkout"
	"github.com/xiebiao/circulation/internal/domain/title"
)

// OpenCheckout 直接借出一本
func (s *service) OpenCheckout(ctx context.Context, titleID, holderID uint, loanPeriodDays int) (*checkout.Checkout, error) {
	var result *checkout.Checkout
	err := s.withTitle(ctx, titleID, func(ctx context.Context, t *title.Title) error {
		if t.IsWithdrawn() {
			return title.ErrTitleWithdrawn
		}
		if err := s.ensureNoOpenCheckout(ctx, t.ID, holderID); err != nil {
			return err
		}
		if err := s.reserve(ctx, t); err != nil {
			return err
		}

		c := checkout.NewCheckout(t.ID, holderID, s.now(), s.loanDays(loanPeriodDays))
		if err := s.checkouts.Create(ctx, c); err != nil {
			return err
		}
		s.enqueueNotice(ctx, openedNotice(c, 0))
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CloseCheckout 归还,副本优先交给排队的读者
func (s *service) CloseCheckout(ctx context.Context, checkoutID uint) (*checkout.Checkout, error) {
	c, err := s.checkouts.FindByID(ctx, checkoutID)
	if err != nil {
		return nil, err
	}

	var result *checkout.Checkout
	err = s.withTitle(ctx, c.TitleID, func(ctx context.Context, t *title.Title) error {
		c, err := s.checkouts.FindByID(ctx, checkoutID)
		if err != nil {
			return err
		}
		if err := c.Close(s.now()); err != nil {
			return err
		}
		if err := s.checkouts.Update(ctx, c); err != nil {
			return err
		}
		if err := s.release(ctx, t); err != nil {
			return err
		}
		s.enqueueNotice(ctx, Notice{
			Kind:     NoticeCheckoutClosed,
			HolderID: c.HolderID,
			TitleID:  t.ID,
			Context:  map[string]any{"checkout_id": c.ID, "return_date": *c.ReturnDate},
		})
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MarkOverdue 到期未还标记为逾期,可重复执行
func (s *service) MarkOverdue(ctx context.Context, asOf time.Time) (*SweepReport, error) {
	started := s.now()
	candidates, err := s.checkouts.ListOverdueCandidates(ctx, asOf)
	if err != nil {
		return nil, err
	}

	report := &SweepReport{Kind: SweepMarkOverdue, AsOf: asOf, Scanned: len(candidates)}
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return report.finish(started, s.now()), ctx.Err()
		}
		applied, err := s.markOverdueOne(ctx, candidate.TitleID, candidate.ID, asOf)
		if err != nil {
			report.Failed++
			s.logger.Error("标记逾期失败",
				zap.Uint("checkout_id", candidate.ID),
				zap.Uint("title_id", candidate.TitleID),
				zap.Error(err),
			)
			continue
		}
		if applied {
			report.Applied++
		}
	}
	return report.finish(started, s.now()), nil
}

func (s *service) markOverdueOne(ctx context.Context, titleID, checkoutID uint, asOf time.Time) (bool, error) {
	applied := false
	err := s.withTitle(ctx, titleID, func(ctx context.Context, t *title.Title) error {
		c, err := s.checkouts.FindByID(ctx, checkoutID)
		if err != nil {
			return err
		}
		if !c.MarkOverdue(asOf) {
			return nil
		}
		if err := s.checkouts.Update(ctx, c); err != nil {
			return err
		}
		s.enqueueNotice(ctx, Notice{
			Kind:     NoticeCheckoutOverdue,
			HolderID: c.HolderID,
			TitleID:  t.ID,
			Context:  map[string]any{"checkout_id": c.ID, "due_date": c.DueDate},
		})
		applied = true
		return nil
	})
	return applied, err
}

// DueReminders 给day当天到期的借阅发提醒
// 只读,不需要锁
func (s *service) DueReminders(ctx context.Context, day time.Time) (int, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	due, err := s.checkouts.ListDueBetween(ctx, from, from.AddDate(0, 0, 1))
	if err != nil {
		return 0, err
	}
	for _, c := range due {
		s.enqueueNotice(ctx, Notice{
			Kind:     NoticeDueReminder,
			HolderID: c.HolderID,
			TitleID:  c.TitleID,
			Context:  map[string]any{"checkout_id": c.ID, "due_date": c.DueDate},
		})
	}
	return len(due), nil
}

func openedNotice(c *checkout.Checkout, holdID uint) Notice {
	ctx := map[string]any{"checkout_id": c.ID, "due_date": c.DueDate}
	if holdID != 0 {
		ctx["hold_id"] = holdID
	}
	return Notice{
		Kind:     NoticeCheckoutOpened,
		HolderID: c.HolderID,
		TitleID:  c.TitleID,
		Context:  ctx,
	}
}
