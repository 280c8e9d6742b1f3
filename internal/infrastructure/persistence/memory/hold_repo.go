package memory

import (
	"context"
	"sort"
	"time"

	"github.com/xiebiao/circulation/internal/domain/hold"
)

type holdRepository struct {
	s *Store
}

// NewHoldRepository 创建预约仓储(内存)
func NewHoldRepository(s *Store) hold.Repository {
	return &holdRepository{s: s}
}

func (r *holdRepository) Create(ctx context.Context, h *hold.Hold) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.seq.hold++
	h.ID = r.s.seq.hold
	if h.UpdatedAt.IsZero() {
		h.UpdatedAt = time.Now()
	}

	id := h.ID
	r.s.holds[id] = cloneHold(h)
	recordUndo(ctx, func() { delete(r.s.holds, id) })
	return nil
}

func (r *holdRepository) FindByID(ctx context.Context, id uint) (*hold.Hold, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	h, ok := r.s.holds[id]
	if !ok {
		return nil, hold.ErrHoldNotFound
	}
	return cloneHold(h), nil
}

func (r *holdRepository) FindLive(ctx context.Context, titleID, holderID uint) (*hold.Hold, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, h := range r.s.holds {
		if h.TitleID == titleID && h.HolderID == holderID && h.IsLive() {
			return cloneHold(h), nil
		}
	}
	return nil, hold.ErrHoldNotFound
}

func (r *holdRepository) Update(ctx context.Context, h *hold.Hold) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.holds[h.ID]
	if !ok {
		return hold.ErrHoldNotFound
	}
	r.s.holds[h.ID] = cloneHold(h)
	recordUndo(ctx, func() { r.s.holds[prev.ID] = prev })
	return nil
}

func (r *holdRepository) ListPending(ctx context.Context, titleID uint) ([]*hold.Hold, error) {
	out := r.filter(func(h *hold.Hold) bool {
		return h.TitleID == titleID && h.Status == hold.StatusPending
	})
	hold.SortQueue(out)
	return out, nil
}

func (r *holdRepository) ListActive(ctx context.Context, titleID uint) ([]*hold.Hold, error) {
	out := r.filter(func(h *hold.Hold) bool {
		return h.TitleID == titleID && h.Status == hold.StatusActive
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExpiresAt.Equal(*out[j].ExpiresAt) {
			return out[i].ExpiresAt.Before(*out[j].ExpiresAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *holdRepository) ListExpired(ctx context.Context, asOf time.Time) ([]*hold.Hold, error) {
	out := r.filter(func(h *hold.Hold) bool {
		return h.IsExpiredAt(asOf)
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TitleID != b.TitleID {
			return a.TitleID < b.TitleID
		}
		if !a.RequestedAt.Equal(b.RequestedAt) {
			return a.RequestedAt.Before(b.RequestedAt)
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (r *holdRepository) ListByHolder(ctx context.Context, holderID uint) ([]*hold.Hold, error) {
	out := r.filter(func(h *hold.Hold) bool {
		return h.HolderID == holderID
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].RequestedAt.After(out[j].RequestedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *holdRepository) filter(keep func(*hold.Hold) bool) []*hold.Hold {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*hold.Hold
	for _, h := range r.s.holds {
		if keep(h) {
			out = append(out, cloneHold(h))
		}
	}
	return out
}
