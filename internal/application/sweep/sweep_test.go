package sweep

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/circulation/internal/domain/checkout"
	"github.com/xiebiao/circulation/internal/domain/circulation"
	"github.com/xiebiao/circulation/internal/domain/hold"
	"github.com/xiebiao/circulation/internal/domain/title"
	"github.com/xiebiao/circulation/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/circulation/internal/infrastructure/persistence/redis"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type noticeLog struct {
	mu    sync.Mutex
	kinds []circulation.NoticeKind
}

func (n *noticeLog) Send(_ context.Context, notice circulation.Notice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, notice.Kind)
	return nil
}

func (n *noticeLog) count(kind circulation.NoticeKind) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, k := range n.kinds {
		if k == kind {
			c++
		}
	}
	return c
}

type invalidations struct {
	ids []uint
}

func (c *invalidations) Get(context.Context, uint) (*circulation.QueueState, int64, bool, error) {
	return nil, 0, false, nil
}

func (c *invalidations) Set(context.Context, uint, int64, *circulation.QueueState) error { return nil }

func (c *invalidations) Invalidate(_ context.Context, ids ...uint) error {
	c.ids = append(c.ids, ids...)
	return nil
}

type stubLocker struct {
	ok       bool
	err      error
	released int
}

func (l *stubLocker) TryAcquire(context.Context, time.Duration) (func(), bool, error) {
	return func() { l.released++ }, l.ok, l.err
}

type fixture struct {
	titles  title.Repository
	holds   hold.Repository
	checks  checkout.Repository
	engine  circulation.Service
	clock   *clock
	notices *noticeLog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		titles:  memory.NewTitleRepository(store),
		holds:   memory.NewHoldRepository(store),
		checks:  memory.NewCheckoutRepository(store),
		clock:   &clock{now: time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)},
		notices: &noticeLog{},
	}
	f.engine = circulation.NewService(f.titles, f.checks, f.holds, store, circulation.Options{
		LoanPeriodDays: 7,
		Notifier:       f.notices,
		Clock:          f.clock.Now,
	})
	return f
}

func (f *fixture) title(t *testing.T, isbn string, copies int) *title.Title {
	t.Helper()
	tt, err := title.NewTitle(isbn, "Go语言圣经", "Donovan", copies)
	require.NoError(t, err)
	require.NoError(t, f.titles.Create(context.Background(), tt))
	return tt
}

// seed 一本书: 一个已保留的预约,一个排队的预约;另一本书: 一笔借阅
func (f *fixture) seed(t *testing.T) (active, pending *hold.Hold, loan *checkout.Checkout, held, lent *title.Title) {
	t.Helper()
	ctx := context.Background()
	held = f.title(t, "9787115428028", 1)
	lent = f.title(t, "9787115428029", 1)

	var err error
	active, err = f.engine.CreateHold(ctx, held.ID, 1)
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	pending, err = f.engine.CreateHold(ctx, held.ID, 2)
	require.NoError(t, err)
	loan, err = f.engine.OpenCheckout(ctx, lent.ID, 3, 0)
	require.NoError(t, err)
	return active, pending, loan, held, lent
}

func TestRunSweep_ExpiresAndMarksOverdue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	active, pending, loan, held, _ := f.seed(t)
	cache := &invalidations{}
	locker := &stubLocker{ok: true}
	uc := NewRunSweepUseCase(f.engine, locker, cache, time.Minute, nil)

	f.clock.Advance(hold.DefaultWindow + time.Hour)
	resp, err := uc.Execute(ctx, RunSweepRequest{AsOf: f.clock.Now()})
	require.NoError(t, err)
	require.False(t, resp.Skipped)
	require.Len(t, resp.Reports, 2)

	assert.Equal(t, circulation.SweepExpireHolds, resp.Reports[0].Kind)
	assert.Equal(t, 1, resp.Reports[0].Applied)
	assert.Equal(t, circulation.SweepMarkOverdue, resp.Reports[1].Kind)
	assert.Equal(t, 1, resp.Reports[1].Applied)
	assert.Equal(t, []uint{held.ID}, cache.ids)
	assert.Equal(t, 1, locker.released)

	h, err := f.holds.FindByID(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, hold.StatusExpired, h.Status)
	h, err = f.holds.FindByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, hold.StatusActive, h.Status)
	c, err := f.checks.FindByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, checkout.StatusOverdue, c.Status)

	// 再跑一次没有新的变更
	resp, err = uc.Execute(ctx, RunSweepRequest{AsOf: f.clock.Now()})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Reports[0].Applied)
	assert.Equal(t, 0, resp.Reports[1].Applied)
	assert.Equal(t, 1, f.notices.count(circulation.NoticeCheckoutOverdue))
}

func TestRunSweep_SkipsWhenLockHeldElsewhere(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	locker := &stubLocker{ok: false}

	f.clock.Advance(hold.DefaultWindow + time.Hour)
	resp, err := NewRunSweepUseCase(f.engine, locker, nil, time.Minute, nil).Execute(context.Background(), RunSweepRequest{AsOf: f.clock.Now()})
	require.NoError(t, err)
	assert.True(t, resp.Skipped)
	assert.Empty(t, resp.Reports)
	assert.Equal(t, 0, locker.released)
	assert.Equal(t, 0, f.notices.count(circulation.NoticeHoldExpired))
}

func TestRunSweep_LockErrorStillSweeps(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	locker := &stubLocker{err: errors.New("redis down")}

	f.clock.Advance(hold.DefaultWindow + time.Hour)
	resp, err := NewRunSweepUseCase(f.engine, locker, nil, time.Minute, nil).Execute(context.Background(), RunSweepRequest{AsOf: f.clock.Now()})
	require.NoError(t, err)
	assert.False(t, resp.Skipped)
	assert.Equal(t, 1, resp.Reports[0].Applied)
	assert.Equal(t, 0, locker.released)
}

func TestRunSweep_RedisLockSerializesInstances(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	// 另一个实例持有锁
	other := redis.NewSweepLock(client, "", nil)
	release, ok, err := other.TryAcquire(context.Background(), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	uc := NewRunSweepUseCase(f.engine, redis.NewSweepLock(client, "", nil), nil, time.Minute, nil)
	f.clock.Advance(hold.DefaultWindow + time.Hour)
	resp, err := uc.Execute(context.Background(), RunSweepRequest{AsOf: f.clock.Now()})
	require.NoError(t, err)
	assert.True(t, resp.Skipped)

	release()
	resp, err = uc.Execute(context.Background(), RunSweepRequest{AsOf: f.clock.Now()})
	require.NoError(t, err)
	assert.False(t, resp.Skipped)
	assert.Equal(t, 1, resp.Reports[0].Applied)
}

func TestDueReminders(t *testing.T) {
	f := newFixture(t)
	_, _, loan, _, _ := f.seed(t)
	uc := NewDueRemindersUseCase(f.engine, nil, 0, nil)

	resp, err := uc.Execute(context.Background(), loan.DueDate)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Sent)
	assert.Equal(t, loan.DueDate.Format("2006-01-02"), resp.Day)
	assert.Equal(t, 1, f.notices.count(circulation.NoticeDueReminder))

	resp, err = NewDueRemindersUseCase(f.engine, &stubLocker{ok: false}, 0, nil).Execute(context.Background(), loan.DueDate)
	require.NoError(t, err)
	assert.True(t, resp.Skipped)
	assert.Equal(t, 1, f.notices.count(circulation.NoticeDueReminder))
}

func TestJobs(t *testing.T) {
	f := newFixture(t)
	sweep := NewRunSweepUseCase(f.engine, nil, nil, 0, nil)
	reminders := NewDueRemindersUseCase(f.engine, nil, 0, nil)

	jobs := Jobs(sweep, reminders, "@every 5m", "0 8 * * *")
	require.Len(t, jobs, 2)
	assert.Equal(t, JobSweep, jobs[0].Name)
	assert.Equal(t, JobReminders, jobs[1].Name)
	require.NoError(t, jobs[0].Run(context.Background()))
	require.NoError(t, jobs[1].Run(context.Background()))

	assert.Len(t, Jobs(sweep, reminders, "@every 5m", ""), 1)
	assert.Empty(t, Jobs(nil, nil, "@every 5m", "0 8 * * *"))
}
