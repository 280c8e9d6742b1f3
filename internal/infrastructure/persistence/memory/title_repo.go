package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/xiebiao/circulation/internal/domain/title"
)

type titleRepository struct {
	s *Store
}

// NewTitleRepository 创建图书仓储(内存)
func NewTitleRepository(s *Store) title.Repository {
	return &titleRepository{s: s}
}

func (r *titleRepository) Create(ctx context.Context, t *title.Title) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.titles {
		if existing.ISBN == t.ISBN {
			return title.ErrISBNDuplicate
		}
	}

	r.s.seq.title++
	t.ID = r.s.seq.title
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	id := t.ID
	r.s.titles[id] = cloneTitle(t)
	recordUndo(ctx, func() { delete(r.s.titles, id) })
	return nil
}

func (r *titleRepository) FindByID(ctx context.Context, id uint) (*title.Title, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.titles[id]
	if !ok {
		return nil, title.ErrTitleNotFound
	}
	return cloneTitle(t), nil
}

func (r *titleRepository) FindByISBN(ctx context.Context, isbn string) (*title.Title, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, t := range r.s.titles {
		if t.ISBN == isbn {
			return cloneTitle(t), nil
		}
	}
	return nil, title.ErrTitleNotFound
}

// LockByID 先拿到按ID的锁再读,保证读到的是上一个事务提交后的值
func (r *titleRepository) LockByID(ctx context.Context, id uint) (*title.Title, error) {
	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if err := r.s.lockTitle(ctx, id); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *titleRepository) Update(ctx context.Context, t *title.Title) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.titles[t.ID]
	if !ok {
		return title.ErrTitleNotFound
	}
	r.s.titles[t.ID] = cloneTitle(t)
	recordUndo(ctx, func() { r.s.titles[prev.ID] = prev })
	return nil
}

func (r *titleRepository) List(ctx context.Context, params title.ListParams) ([]*title.Title, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	keyword := strings.ToLower(params.Keyword)
	var matched []*title.Title
	for _, t := range r.s.titles {
		if keyword != "" &&
			!strings.Contains(strings.ToLower(t.Name), keyword) &&
			!strings.Contains(strings.ToLower(t.Author), keyword) {
			continue
		}
		matched = append(matched, cloneTitle(t))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := int64(len(matched))
	return paginate(matched, params.Page, params.PageSize), total, nil
}

func paginate[T any](items []T, page, pageSize int) []T {
	if page <= 0 || pageSize <= 0 {
		return items
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
