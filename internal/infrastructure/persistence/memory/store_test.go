package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/circulation/internal/domain/checkout"
	"github.com/xiebiao/circulation/internal/domain/hold"
	"github.com/xiebiao/circulation/internal/domain/title"
)

func newTitle(t *testing.T, repo title.Repository, isbn string, copies int) *title.Title {
	t.Helper()
	tt, err := title.NewTitle(isbn, "Go语言圣经", "Donovan", copies)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), tt))
	return tt
}

func TestTransaction_RollbackRestoresState(t *testing.T) {
	s := NewStore()
	titles := NewTitleRepository(s)
	holds := NewHoldRepository(s)
	ctx := context.Background()
	tt := newTitle(t, titles, "9787115428028", 2)

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(ctx context.Context) error {
		locked, err := titles.LockByID(ctx, tt.ID)
		require.NoError(t, err)
		require.NoError(t, locked.Decrement())
		require.NoError(t, titles.Update(ctx, locked))
		require.NoError(t, holds.Create(ctx, hold.NewHold(tt.ID, 7, time.Now())))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := titles.FindByID(ctx, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableCopies)

	_, err = holds.FindLive(ctx, tt.ID, 7)
	assert.ErrorIs(t, err, hold.ErrHoldNotFound)
}

func TestTransaction_CommitKeepsState(t *testing.T) {
	s := NewStore()
	checkouts := NewCheckoutRepository(s)
	ctx := context.Background()

	var id uint
	err := s.Transaction(ctx, func(ctx context.Context) error {
		c := checkout.NewCheckout(1, 2, time.Now(), 7)
		if err := checkouts.Create(ctx, c); err != nil {
			return err
		}
		id = c.ID
		return nil
	})
	require.NoError(t, err)

	got, err := checkouts.FindByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.IsOpen())
}

func TestTransaction_NestedJoinsOuter(t *testing.T) {
	s := NewStore()
	titles := NewTitleRepository(s)
	ctx := context.Background()
	tt := newTitle(t, titles, "9787115428028", 1)

	err := s.Transaction(ctx, func(ctx context.Context) error {
		_, err := titles.LockByID(ctx, tt.ID)
		require.NoError(t, err)
		// 内层事务再次锁同一本书不能死锁
		return s.Transaction(ctx, func(ctx context.Context) error {
			_, err := titles.LockByID(ctx, tt.ID)
			return err
		})
	})
	assert.NoError(t, err)
}

func TestLockByID_SerializesSameTitle(t *testing.T) {
	s := NewStore()
	titles := NewTitleRepository(s)
	ctx := context.Background()
	tt := newTitle(t, titles, "9787115428028", 1)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Transaction(ctx, func(ctx context.Context) error {
				locked, err := titles.LockByID(ctx, tt.ID)
				if err != nil {
					return err
				}
				if err := locked.Decrement(); err != nil {
					return err
				}
				return titles.Update(ctx, locked)
			})
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	got, err := titles.FindByID(ctx, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableCopies)
}

func TestLockByID_RespectsContext(t *testing.T) {
	s := NewStore()
	titles := NewTitleRepository(s)
	tt := newTitle(t, titles, "9787115428028", 1)

	locked := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = s.Transaction(context.Background(), func(ctx context.Context) error {
			_, err := titles.LockByID(ctx, tt.ID)
			close(locked)
			<-release
			return err
		})
	}()
	<-locked
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := s.Transaction(ctx, func(ctx context.Context) error {
		_, err := titles.LockByID(ctx, tt.ID)
		return err
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTitleRepository_DuplicateISBN(t *testing.T) {
	s := NewStore()
	titles := NewTitleRepository(s)
	newTitle(t, titles, "9787115428028", 1)

	dup, err := title.NewTitle("978-7-115-42802-8", "另一本", "", 1)
	require.NoError(t, err)
	assert.ErrorIs(t, titles.Create(context.Background(), dup), title.ErrISBNDuplicate)
}

func TestTitleRepository_List(t *testing.T) {
	s := NewStore()
	titles := NewTitleRepository(s)
	newTitle(t, titles, "9787115428028", 1)
	newTitle(t, titles, "9787115428029", 1)
	newTitle(t, titles, "9787115428020", 1)

	page, total, err := titles.List(context.Background(), title.ListParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 1)
	assert.Equal(t, uint(1), page[0].ID)
}

func TestHoldRepository_ReturnsCopies(t *testing.T) {
	s := NewStore()
	holds := NewHoldRepository(s)
	ctx := context.Background()

	h := hold.NewHold(1, 2, time.Now())
	pos := 1
	h.QueuePosition = &pos
	require.NoError(t, holds.Create(ctx, h))

	got, err := holds.FindByID(ctx, h.ID)
	require.NoError(t, err)
	*got.QueuePosition = 9

	again, err := holds.FindByID(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Position())
}

func TestHoldRepository_ListExpiredOrder(t *testing.T) {
	s := NewStore()
	holds := NewHoldRepository(s)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mk := func(titleID uint, requested time.Time) *hold.Hold {
		h := hold.NewHold(titleID, uint(requested.Unix()), requested)
		require.NoError(t, h.Activate(requested, time.Hour))
		require.NoError(t, holds.Create(ctx, h))
		return h
	}
	b2 := mk(2, base.Add(time.Minute))
	a1 := mk(1, base.Add(2*time.Minute))
	b1 := mk(2, base)
	mk(3, base.Add(48*time.Hour)) // 未过期

	got, err := holds.ListExpired(ctx, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []uint{a1.ID, b1.ID, b2.ID}, []uint{got[0].ID, got[1].ID, got[2].ID})
}
