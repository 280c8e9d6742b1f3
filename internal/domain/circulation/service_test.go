package circulation_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/circulation/internal/domain/checkout"
	"github.com/xiebiao/circulation/internal/domain/circulation"
	"github.com/xiebiao/circulation/internal/domain/hold"
	"github.com/xiebiao/circulation/internal/domain/title"
	"github.com/xiebiao/circulation/internal/infrastructure/persistence/memory"
)

const (
	holderX uint = 101
	holderY uint = 102
	holderZ uint = 103
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recorder struct {
	mu      sync.Mutex
	notices []circulation.Notice
	fail    bool
}

func (r *recorder) Send(_ context.Context, n circulation.Notice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
	if r.fail {
		return errors.New("smtp down")
	}
	return nil
}

func (r *recorder) kinds() []circulation.NoticeKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]circulation.NoticeKind, len(r.notices))
	for i, n := range r.notices {
		out[i] = n.Kind
	}
	return out
}

type env struct {
	svc       circulation.Service
	titles    title.Repository
	checkouts checkout.Repository
	holds     hold.Repository
	clock     *fakeClock
	notices   *recorder
	seq       int
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	e := &env{
		titles:    memory.NewTitleRepository(store),
		checkouts: memory.NewCheckoutRepository(store),
		holds:     memory.NewHoldRepository(store),
		clock:     &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)},
		notices:   &recorder{},
	}
	e.svc = circulation.NewService(e.titles, e.checkouts, e.holds, store, circulation.Options{
		LoanPeriodDays: 14,
		HoldWindow:     hold.DefaultWindow,
		Notifier:       e.notices,
		Clock:          e.clock.Now,
	})
	return e
}

func (e *env) title(t *testing.T, total, available int) *title.Title {
	t.Helper()
	e.seq++
	tt, err := title.NewTitle(fmt.Sprintf("978711542%04d", e.seq), "Go语言圣经", "Donovan", total)
	require.NoError(t, err)
	tt.AvailableCopies = available
	require.NoError(t, e.titles.Create(context.Background(), tt))
	e.clock.Advance(time.Second)
	return tt
}

func (e *env) reload(t *testing.T, id uint) *title.Title {
	t.Helper()
	tt, err := e.titles.FindByID(context.Background(), id)
	require.NoError(t, err)
	return tt
}

func (e *env) hold(t *testing.T, id uint) *hold.Hold {
	t.Helper()
	h, err := e.holds.FindByID(context.Background(), id)
	require.NoError(t, err)
	return h
}

// createHold 每次预约后时钟前进1秒,保证RequestedAt严格递增
func (e *env) createHold(t *testing.T, titleID, holderID uint) *hold.Hold {
	t.Helper()
	h, err := e.svc.CreateHold(context.Background(), titleID, holderID)
	require.NoError(t, err)
	e.clock.Advance(time.Second)
	return h
}

// assertInvariants 库存边界、队列位置连续、每对(书,读者)最多一条未结束记录
func (e *env) assertInvariants(t *testing.T, titleID uint, holders ...uint) {
	t.Helper()
	ctx := context.Background()
	tt := e.reload(t, titleID)
	assert.GreaterOrEqual(t, tt.AvailableCopies, 0)
	assert.LessOrEqual(t, tt.AvailableCopies, tt.TotalCopies)

	pending, err := e.holds.ListPending(ctx, titleID)
	require.NoError(t, err)
	for i, h := range pending {
		require.NotNil(t, h.QueuePosition, "pending hold %d has no position", h.ID)
		assert.Equal(t, i+1, *h.QueuePosition)
		if i > 0 {
			assert.False(t, h.RequestedAt.Before(pending[i-1].RequestedAt))
		}
	}

	for _, holderID := range holders {
		holds, err := e.holds.ListByHolder(ctx, holderID)
		require.NoError(t, err)
		live := 0
		for _, h := range holds {
			if h.TitleID != titleID {
				continue
			}
			if h.IsLive() {
				live++
			}
			if h.Status != hold.StatusPending {
				assert.Nil(t, h.QueuePosition)
			}
		}
		assert.LessOrEqual(t, live, 1)

		checkouts, err := e.checkouts.ListByHolder(ctx, holderID)
		require.NoError(t, err)
		open := 0
		for _, c := range checkouts {
			if c.TitleID == titleID && c.IsOpen() {
				open++
			}
		}
		assert.LessOrEqual(t, open, 1)
	}
}

func TestScenarioA_ActiveThenPending(t *testing.T) {
	e := newEnv(t)
	tt := e.title(t, 1, 1)

	hx := e.createHold(t, tt.ID, holderX)
	assert.Equal(t, hold.StatusActive, hx.Status)
	assert.Nil(t, hx.QueuePosition)
	require.NotNil(t, hx.ExpiresAt)
	assert.Equal(t, 0, e.reload(t, tt.ID).AvailableCopies)
	assert.Equal(t, title.StatusAllCheckedOut, e.reload(t, tt.ID).Status())

	hy := e.createHold(t, tt.ID, holderY)
	assert.Equal(t, hold.StatusPending, hy.Status)
	assert.Equal(t, 1, hy.Position())

	e.assertInvariants(t, tt.ID, holderX, holderY)
	assert.Equal(t, []circulation.NoticeKind{circulation.NoticeHoldActivated, circulation.NoticeHoldQueued}, e.notices.kinds())
}

func TestScenarioB_ReturnPromotesNext(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tt := e.title(t, 1, 1)
	hx := e.createHold(t, tt.ID, holderX)
	hy := e.createHold(t, tt.ID, holderY)

	c, err := e.svc.ConfirmHold(ctx, hx.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, checkout.StatusActive, c.Status)
	assert.Equal(t, c.CheckoutDate.AddDate(0, 0, 14), c.DueDate)
	assert.Equal(t, hold.StatusConfirmed, e.hold(t, hx.ID).Status)
	// 确认不归还库存,Y仍在排队
	assert.Equal(t, 0, e.reload(t, tt.ID).AvailableCopies)
	assert.Equal(t, hold.StatusPending, e.hold(t, hy.ID).Status)

	closed, err := e.svc.CloseCheckout(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, checkout.StatusReturned, closed.Status)

	promoted := e.hold(t, hy.ID)
	assert.Equal(t, hold.StatusActive, promoted.Status)
	assert.Nil(t, promoted.QueuePosition)
	require.NotNil(t, promoted.ActivatedAt)
	assert.Equal(t, promoted.ActivatedAt.Add(hold.DefaultWindow), *promoted.ExpiresAt)
	assert.Equal(t, 0, e.reload(t, tt.ID).AvailableCopies)

	e.assertInvariants(t, tt.ID, holderX, holderY)
}

func TestScenarioC_ExpireSweepReleasesUnit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tt := e.title(t, 1, 1)
	hy := e.createHold(t, tt.ID, holderY)
	require.Equal(t, hold.StatusActive, hy.Status)

	e.clock.Advance(hold.DefaultWindow + time.Minute)
	report, err := e.svc.ExpireSweep(ctx, e.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scanned)
	assert.Equal(t, 1, report.Applied)
	assert.Equal(t, 0, report.Failed)

	assert.Equal(t, hold.StatusExpired, e.hold(t, hy.ID).Status)
	got := e.reload(t, tt.ID)
	assert.Equal(t, 1, got.AvailableCopies)
	assert.Equal(t, title.StatusAvailable, got.Status())

	// 再跑一次不会重复释放
	report, err = e.svc.ExpireSweep(ctx, e.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Applied)
	assert.Equal(t, 1, e.reload(t, tt.ID).AvailableCopies)
	e.assertInvariants(t, tt.ID, holderY)
}

func TestScenarioD_CancelRenumbers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tt := e.title(t, 1, 0)

	h1 := e.createHold(t, tt.ID, holderX)
	h2 := e.createHold(t, tt.ID, holderY)
	h3 := e.createHold(t, tt.ID, holderZ)
	assert.Equal(t, []int{1, 2, 3}, []int{h1.Position(), h2.Position(), h3.Position()})

	cancelled, err := e.svc.CancelHold(ctx, h2.ID, holderY)
	require.NoError(t, err)
	assert.Equal(t, hold.StatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.QueuePosition)

	assert.Equal(t, 1, e.hold(t, h1.ID).Position())
	assert.Equal(t, 2, e.hold(t, h3.ID).Position())
	e.assertInvariants(t, tt.ID, holderX, holderY, holderZ)
}

func TestScenarioE_AdjustStockInvalidRange(t *testing.T) {
	e := newEnv(t)
	tt := e.title(t, 2, 1)

	_, err := e.svc.AdjustStock(context.Background(), tt.ID, 3, 5)
	assert.ErrorIs(t, err, title.ErrInvalidRange)

	got := e.reload(t, tt.ID)
	assert.Equal(t, 2, got.TotalCopies)
	assert.Equal(t, 1, got.AvailableCopies)
}

func TestPromoteNext_NoStockIsNoop(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tt := e.title(t, 1, 0)
	h := e.createHold(t, tt.ID, holderX)

	promoted, err := e.svc.PromoteNext(ctx, tt.ID)
	require.NoError(t, err)
	assert.Nil(t, promoted)
	assert.Equal(t, hold.StatusPending, e.hold(t, h.ID).Status)
	assert.Equal(t, 1, e.hold(t, h.ID).Position())
	assert.Equal(t, 0, e.reload(t, tt.ID).AvailableCopies)
}

func TestPromoteNext_EmptyQueueIsNoop(t *testing.T) {
	e := newEnv(t)
	tt := e.title(t, 2, 2)

	promoted, err := e.svc.PromoteNext(context.Background(), tt.ID)
	require.NoError(t, err)
	assert.Nil(t, promoted)
	assert.Equal(t, 2, e.reload(t, tt.ID).AvailableCopies)
}

func TestAdjustStock_PromotesUpToIncrease(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tt := e.title(t, 1, 0)
	h1 := e.createHold(t, tt.ID, holderX)
	h2 := e.createHold(t, tt.ID, holderY)
	h3 := e.createHold(t, tt.ID, holderZ)

	got, err := e.svc.AdjustStock(ctx, tt.ID, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableCopies)

	assert.Equal(t, hold.StatusActive, e.hold(t, h1.ID).Status)
	assert.Equal(t, hold.StatusActive, e.hold(t, h2.ID).Status)
	assert.Equal(t, hold.StatusPending, e.hold(t, h3.ID).Status)
	assert.Equal(t, 1, e.hold(t, h3.ID).Position())
	e.assertInvariants(t, tt.ID, holderX, holderY, holderZ)
}

func TestAddCopies_PromotesAndKeepsRemainder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tt := e.title(t, 1, 0)
	h1 := e.createHold(t, tt.ID, holderX)

	got, err := e.svc.AddCopies(ctx, tt.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, got.TotalCopies)
	assert.Equal(t, 2, got.AvailableCopies)
	assert.Equal(t, hold.StatusActive, e.hold(t, h1.ID).Status)

	_, err = e.svc.AddCopies(ctx, tt.ID, 0)
	assert.ErrorIs(t, err, title.ErrInvalidRange)
}

func TestCreateHold_Duplicate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tt := e.title(t, 1, 1)
	e.createHold(t, tt.ID, holderX)

	_, err := e.svc.CreateHold(ctx, tt.ID, holderX)
	assert.ErrorIs(t, err, hold.ErrDuplicateHold)
	assert.Equal(t, 0, e.reload(t, tt.ID).AvailableCopies)
}

func TestCreateHold_UnknownTitle(t *testing.T) {
	e := newEnv(t)
	_, err := e.svc.CreateHold(context.Background(), 999, holderX)
	assert.ErrorIs(t, err, title.ErrTitleNotFound)
}

func TestCancelHold_ActiveReleasesToNext(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tt := e.title(t, 1, 1)
	hx := e.createHold(t, tt.ID, holderX)
	hy := e.createHold(t, tt.ID, holderY)
	hz := e.createHold(t, tt.ID, holderZ)

	_, err := e.svc.CancelHold(ctx, hx.ID, holderX)
	require.NoError(t, err)

	assert.Equal(t, hold.StatusCancelled, e.hold(t, hx.ID).Status)
	assert.Equal(t, hold.StatusActive, e.hold(t, hy.ID).Status)
	assert.Equal(t, 1, e.hold(t, hz.ID).Position())
	assert.Equal(t, 0, e.reload(t, tt.ID).AvailableCopies)
	e.assertInvariants(t, tt.ID, holderX, holderY, holderZ)
}

func TestCancelHold_NotOwner(t *testing.T) {
	e := newEnv(t)
	tt := e.title(t, 1, 1)
	hx := e.createHold(t, tt.ID, holderX)

	_, err := e.svc.CancelHold(context.Background(), hx.ID, holderY)
	assert.ErrorIs(t, err, hold.ErrNotOwner)
	assert.Equal(t, hold.StatusActive, e.hold(t, hx.ID).Status)
}

func TestCancelHold_TerminalIsInvalidTransition(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tt := e.title(t, 1, 1)
	hx := e.createHold(t, tt.ID, holderX)
	_, err := e.svc.ConfirmHold(ctx, hx.ID, 7)
	require.NoError(t, err)

	_, err = e.svc.CancelHold(ctx, hx.ID, holderX)
	assert.ErrorIs(t, err, hold.ErrInvalidTransition)
	_, err = e.svc.ConfirmHold(ctx, hx.ID, 7)
	assert.ErrorIs(t, err, hold.ErrInvalidTransition)
}

func TestRemoveHold_PendingMarksRemoved(t *testing.T) {
	e := newEnv(t)
	tt := e.title(t, 1, 0)
	h1 := e.createHold(t, tt.ID, holderX)
	h2 := e.createHold(t, tt.ID, holderY)

	removed, err := e.svc.RemoveHold(context.Background(), h1.ID)
	require.NoError(t, err)
	assert.Equal(t, hold.StatusRemoved, removed.Status)
	assert.Equal(t, 1, e.hold(t, h2.ID).Position())
}

func TestConfirmHold_PendingIsInvalidTransition(t *testing.T) {
	e := newEnv(t)
	tt := e.title(t, 1, 0)
	h := e.createHold(t, tt.ID, holderX)

	_, err := e.svc.ConfirmHold(context.Background(), h.ID, 7)
	assert.ErrorIs(t, err, hold.ErrInvalidTransition)
	assert.Equal(t, hold.StatusPending, e.hold(t, h.ID).Status)
	assert.Equal(t, 1, e.hold(t, h.ID).Position())
}

func TestConfirmHold_DuplicateCheckoutRollsBack(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tt := e.title(t, 2, 2)
	_, err := e.svc.OpenCheckout(ctx, tt.ID, holderX, 7)
	require.NoError(t, err)
	hx := e.createHold(t, tt.ID, holderX)

	_, err = e.svc.ConfirmHold(ctx, hx.ID, 7)
	assert.ErrorIs(t, err, checkout.ErrDuplicateCheckout)
	assert.Equal(t, hold.StatusActive, e.hold(t, hx.ID).Status)
	assert.Equal(t, 0, e.reload(t, tt.ID).AvailableCopies)
}

func TestOpenCheckout(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tt := e.title(t, 1, 1)

	c, err := e.svc.OpenCheckout(ctx, tt.ID, holderX, 0)
	require.NoError(t, err)
	assert.Equal(t, c.CheckoutDate.AddDate(0, 0, 14), c.DueDate)
	assert.Equal(t, 0, e.reload(t, tt.ID).AvailableCopies)

	_, err = e.svc.OpenCheckout(ctx, tt.ID, holderX, 7)
	assert.ErrorIs(t, err, checkout.ErrDuplicateCheckout)

	_, err = e.svc.OpenCheckout(ctx, tt.ID, holderY, 7)
	assert.ErrorIs(t, err, title.ErrOutOfStock)
	e.assertInvariants(t, tt.ID, holderX, holderY)
}

func TestCloseCheckout_AlreadyReturned(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tt := e.title(t, 1, 1)
	c, err := e.svc.OpenCheckout(ctx, tt.ID, holderX, 7)
	require.NoError(t, err)

	_, err = e.svc.CloseCheckout(ctx, c.ID)
	require.NoError(t, err)
	_, err = e.svc.CloseCheckout(ctx, c.ID)
	assert.ErrorIs(t, err, checkout.ErrAlreadyReturned)
	assert.Equal(t, 1, e.reload(t, tt.ID).AvailableCopies)
}

func TestCloseCheckout_InvariantViolationRollsBack(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tt := e.title(t, 1, 1)
	c, err := e.svc.OpenCheckout(ctx, tt.ID, holderX, 7)
	require.NoError(t, err)

	// 馆员把库存校正成满的,归还会超出总数
	_, err = e.svc.AdjustStock(ctx, tt.ID, 1, 1)
	require.NoError(t, err)

	_, err = e.svc.CloseCheckout(ctx, c.ID)
	assert.ErrorIs(t, err, title.ErrInvariantViolation)

	got, err := e.checkouts.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.IsOpen())
}

func TestMarkOverdue_Idempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tt := e.title(t, 2, 2)
	c1, err := e.svc.OpenCheckout(ctx, tt.ID, holderX, 3)
	require.NoError(t, err)
	c2, err := e.svc.OpenCheckout(ctx, tt.ID, holderY, 30)
	require.NoError(t, err)

	asOf := e.clock.Now().AddDate(0, 0, 5)
	report, err := e.svc.MarkOverdue(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Applied)

	report, err = e.svc.MarkOverdue(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Scanned)
	assert.Equal(t, 0, report.Applied)

	got1, _ := e.checkouts.FindByID(ctx, c1.ID)
	got2, _ := e.checkouts.FindByID(ctx, c2.ID)
	assert.Equal(t, checkout.StatusOverdue, got1.Status)
	assert.Equal(t, checkout.StatusActive, got2.Status)

	// 逾期的仍可归还
	_, err = e.svc.CloseCheckout(ctx, c1.ID)
	assert.NoError(t, err)
}

func TestExpireSweep_PromotesInRequestOrder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tt := e.title(t, 2, 2)
	hx := e.createHold(t, tt.ID, holderX)
	hy := e.createHold(t, tt.ID, holderY)
	hz := e.createHold(t, tt.ID, holderZ)
	other := e.title(t, 1, 1)
	ho := e.createHold(t, other.ID, holderZ)

	e.clock.Advance(hold.DefaultWindow + time.Hour)
	report, err := e.svc.ExpireSweep(ctx, e.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Applied)
	assert.ElementsMatch(t, []uint{tt.ID, other.ID}, report.TitleIDs)

	assert.Equal(t, hold.StatusExpired, e.hold(t, hx.ID).Status)
	assert.Equal(t, hold.StatusExpired, e.hold(t, hy.ID).Status)
	assert.Equal(t, hold.StatusExpired, e.hold(t, ho.ID).Status)
	// Z排在后面,释放出来的第一本就轮到它
	assert.Equal(t, hold.StatusActive, e.hold(t, hz.ID).Status)
	assert.Equal(t, 1, e.reload(t, tt.ID).AvailableCopies)
	assert.Equal(t, 1, e.reload(t, other.ID).AvailableCopies)
	e.assertInvariants(t, tt.ID, holderX, holderY, holderZ)
}

func TestWithdrawTitle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tt := e.title(t, 1, 1)
	hx := e.createHold(t, tt.ID, holderX)
	hy := e.createHold(t, tt.ID, holderY)

	got, err := e.svc.WithdrawTitle(ctx, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, title.StatusWithdrawn, got.Status())

	assert.Equal(t, hold.StatusActive, e.hold(t, hx.ID).Status)
	assert.Equal(t, hold.StatusRemoved, e.hold(t, hy.ID).Status)
	assert.Nil(t, e.hold(t, hy.ID).QueuePosition)

	_, err = e.svc.CreateHold(ctx, tt.ID, holderZ)
	assert.ErrorIs(t, err, title.ErrTitleWithdrawn)
	_, err = e.svc.OpenCheckout(ctx, tt.ID, holderZ, 7)
	assert.ErrorIs(t, err, title.ErrTitleWithdrawn)
	_, err = e.svc.WithdrawTitle(ctx, tt.ID)
	assert.ErrorIs(t, err, title.ErrTitleWithdrawn)

	// 已生效的预约照常取书
	c, err := e.svc.ConfirmHold(ctx, hx.ID, 7)
	require.NoError(t, err)
	_, err = e.svc.CloseCheckout(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, e.reload(t, tt.ID).AvailableCopies)
}

func TestConcurrentLastUnit_OnlyOneWins(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tt := e.title(t, 1, 1)

	const n = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		pending int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(holderID uint) {
			defer wg.Done()
			h, err := e.svc.CreateHold(ctx, tt.ID, holderID)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if h.Status == hold.StatusActive {
				active++
			} else {
				pending++
			}
		}(uint(1000 + i))
	}
	wg.Wait()

	assert.Equal(t, 1, active)
	assert.Equal(t, n-1, pending)
	assert.Equal(t, 0, e.reload(t, tt.ID).AvailableCopies)
	e.assertInvariants(t, tt.ID)
}

func TestConcurrentCheckouts_NeverOversell(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tt := e.title(t, 3, 3)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(holderID uint) {
			defer wg.Done()
			_, err := e.svc.OpenCheckout(ctx, tt.ID, holderID, 7)
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, title.ErrOutOfStock)
		}(uint(2000 + i))
	}
	wg.Wait()

	assert.Equal(t, 3, wins)
	assert.Equal(t, 0, e.reload(t, tt.ID).AvailableCopies)
}

func TestNotices_SentOnlyAfterCommit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tt := e.title(t, 1, 1)
	e.createHold(t, tt.ID, holderX)
	before := len(e.notices.kinds())

	_, err := e.svc.CreateHold(ctx, tt.ID, holderX)
	require.ErrorIs(t, err, hold.ErrDuplicateHold)
	assert.Len(t, e.notices.kinds(), before)
}

func TestNotices_FailureIsNotFatal(t *testing.T) {
	e := newEnv(t)
	e.notices.fail = true
	tt := e.title(t, 1, 1)

	h, err := e.svc.CreateHold(context.Background(), tt.ID, holderX)
	require.NoError(t, err)
	assert.Equal(t, hold.StatusActive, h.Status)
	assert.Equal(t, []circulation.NoticeKind{circulation.NoticeHoldActivated}, e.notices.kinds())
}

func TestDueReminders(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tt := e.title(t, 2, 2)
	c, err := e.svc.OpenCheckout(ctx, tt.ID, holderX, 3)
	require.NoError(t, err)
	_, err = e.svc.OpenCheckout(ctx, tt.ID, holderY, 10)
	require.NoError(t, err)

	n, err := e.svc.DueReminders(ctx, c.DueDate)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	kinds := e.notices.kinds()
	assert.Equal(t, circulation.NoticeDueReminder, kinds[len(kinds)-1])
}

func TestQueueStateAndHistory(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tt := e.title(t, 1, 1)
	e.createHold(t, tt.ID, holderX)
	e.createHold(t, tt.ID, holderY)
	e.createHold(t, tt.ID, holderZ)

	state, err := e.svc.QueueState(ctx, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, tt.ID, state.Title.ID)
	require.Len(t, state.Active, 1)
	assert.Equal(t, holderX, state.Active[0].HolderID)
	require.Len(t, state.Pending, 2)
	assert.Equal(t, []uint{holderY, holderZ}, []uint{state.Pending[0].HolderID, state.Pending[1].HolderID})

	history, err := e.svc.HolderHistory(ctx, holderX)
	require.NoError(t, err)
	assert.Len(t, history.Holds, 1)
	assert.Empty(t, history.Checkouts)
}
