package memory

import (
	"context"
	"sort"
	"time"

	"github.com/xiebiao/circulation/internal/domain/checkout"
)

type checkoutRepository struct {
	s *Store
}

// NewCheckoutRepository 创建借阅仓储(内存)
func NewCheckoutRepository(s *Store) checkout.Repository {
	return &checkoutRepository{s: s}
}

func (r *checkoutRepository) Create(ctx context.Context, c *checkout.Checkout) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.seq.checkout++
	c.ID = r.s.seq.checkout
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now()
	}

	id := c.ID
	r.s.checkouts[id] = cloneCheckout(c)
	recordUndo(ctx, func() { delete(r.s.checkouts, id) })
	return nil
}

func (r *checkoutRepository) FindByID(ctx context.Context, id uint) (*checkout.Checkout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.checkouts[id]
	if !ok {
		return nil, checkout.ErrCheckoutNotFound
	}
	return cloneCheckout(c), nil
}

func (r *checkoutRepository) FindOpen(ctx context.Context, titleID, holderID uint) (*checkout.Checkout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.checkouts {
		if c.TitleID == titleID && c.HolderID == holderID && c.IsOpen() {
			return cloneCheckout(c), nil
		}
	}
	return nil, checkout.ErrCheckoutNotFound
}

func (r *checkoutRepository) Update(ctx context.Context, c *checkout.Checkout) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.checkouts[c.ID]
	if !ok {
		return checkout.ErrCheckoutNotFound
	}
	r.s.checkouts[c.ID] = cloneCheckout(c)
	recordUndo(ctx, func() { r.s.checkouts[prev.ID] = prev })
	return nil
}

func (r *checkoutRepository) ListOverdueCandidates(ctx context.Context, asOf time.Time) ([]*checkout.Checkout, error) {
	return r.filter(func(c *checkout.Checkout) bool {
		return c.Status == checkout.StatusActive && c.DueDate.Before(asOf)
	}, byDueDate), nil
}

func (r *checkoutRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]*checkout.Checkout, error) {
	return r.filter(func(c *checkout.Checkout) bool {
		return c.Status == checkout.StatusActive && !c.DueDate.Before(from) && c.DueDate.Before(to)
	}, byDueDate), nil
}

func (r *checkoutRepository) ListByHolder(ctx context.Context, holderID uint) ([]*checkout.Checkout, error) {
	return r.filter(func(c *checkout.Checkout) bool {
		return c.HolderID == holderID
	}, func(a, b *checkout.Checkout) bool {
		if !a.CheckoutDate.Equal(b.CheckoutDate) {
			return a.CheckoutDate.After(b.CheckoutDate)
		}
		return a.ID > b.ID
	}), nil
}

func (r *checkoutRepository) filter(keep func(*checkout.Checkout) bool, less func(a, b *checkout.Checkout) bool) []*checkout.Checkout {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*checkout.Checkout
	for _, c := range r.s.checkouts {
		if keep(c) {
			out = append(out, cloneCheckout(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func byDueDate(a, b *checkout.Checkout) bool {
	if !a.DueDate.Equal(b.DueDate) {
		return a.DueDate.Before(b.DueDate)
	}
	return a.ID < b.ID
}
