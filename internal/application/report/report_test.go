package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/circulation/internal/domain/circulation"
	"github.com/xiebiao/circulation/internal/domain/report"
	"github.com/xiebiao/circulation/internal/domain/title"
	"github.com/xiebiao/circulation/internal/infrastructure/persistence/memory"
	apperrors "github.com/xiebiao/circulation/pkg/errors"
)

// captureRepo 记录调用参数
type captureRepo struct {
	since    time.Time
	limit    int
	asOf     time.Time
	from, to time.Time
	status   string
	calls    int
}

func (r *captureRepo) Popular(_ context.Context, since time.Time, limit int) ([]report.PopularTitle, error) {
	r.since, r.limit = since, limit
	return []report.PopularTitle{{TitleID: 1, ISBN: "9787115428028", Name: "Go, 语言", Loans: 3, PendingHolds: 2}}, nil
}

func (r *captureRepo) Overdue(_ context.Context, asOf time.Time) ([]report.OverdueCheckout, error) {
	r.asOf = asOf
	return nil, nil
}

func (r *captureRepo) MonthlyLoans(_ context.Context, from, to time.Time) ([]report.MonthlyLoans, error) {
	r.from, r.to = from, to
	return nil, nil
}

func (r *captureRepo) Loans(_ context.Context, from, to time.Time) ([]report.LoanRecord, error) {
	r.from, r.to = from, to
	r.calls++
	return nil, nil
}

func (r *captureRepo) Holds(_ context.Context, status string) ([]report.HoldRecord, error) {
	r.status = status
	r.calls++
	return nil, nil
}

func newReports(repo report.Repository, now time.Time) *ReportsUseCase {
	uc := NewReportsUseCase(repo)
	uc.now = func() time.Time { return now }
	return uc
}

func TestPopular_Defaults(t *testing.T) {
	now := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		req       PopularRequest
		wantLimit int
		wantSince time.Time
	}{
		{name: "默认值", req: PopularRequest{}, wantLimit: DefaultPopularLimit, wantSince: now.Add(-DefaultPopularWindow)},
		{name: "上限", req: PopularRequest{Limit: 1000, Since: now.AddDate(0, -1, 0)}, wantLimit: MaxPopularLimit, wantSince: now.AddDate(0, -1, 0)},
		{name: "指定", req: PopularRequest{Limit: 5, Since: now.AddDate(-1, 0, 0)}, wantLimit: 5, wantSince: now.AddDate(-1, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &captureRepo{}
			rows, err := newReports(repo, now).Popular(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Len(t, rows, 1)
			assert.Equal(t, tt.wantLimit, repo.limit)
			assert.True(t, tt.wantSince.Equal(repo.since))
		})
	}
}

func TestOverdueAndMonthly_Defaults(t *testing.T) {
	now := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)
	repo := &captureRepo{}
	uc := newReports(repo, now)

	_, err := uc.Overdue(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.True(t, now.Equal(repo.asOf))

	_, err = uc.Monthly(context.Background(), MonthlyRequest{})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), repo.to)
	assert.Equal(t, time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC), repo.from)

	_, err = uc.Monthly(context.Background(), MonthlyRequest{From: now, To: now})
	assert.ErrorIs(t, err, title.ErrInvalidRange)
}

func TestLoans_Range(t *testing.T) {
	day := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		req     LoansRequest
		wantErr error
	}{
		{name: "不限区间", req: LoansRequest{}},
		{name: "只有起点", req: LoansRequest{From: day}},
		{name: "只有终点", req: LoansRequest{To: day}},
		{name: "正常区间", req: LoansRequest{From: day, To: day.AddDate(0, 1, 0)}},
		{name: "起点不早于终点", req: LoansRequest{From: day, To: day}, wantErr: title.ErrInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &captureRepo{}
			_, err := newReports(repo, day).Loans(context.Background(), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, repo.calls)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.req.From.Equal(repo.from))
			assert.True(t, tt.req.To.Equal(repo.to))
		})
	}
}

func TestHolds_StatusFilter(t *testing.T) {
	for _, status := range []string{"", "pending", "active", "confirmed", "expired", "cancelled", "removed"} {
		repo := &captureRepo{}
		_, err := newReports(repo, time.Now()).Holds(context.Background(), status)
		require.NoError(t, err, status)
		assert.Equal(t, status, repo.status)
	}

	repo := &captureRepo{}
	_, err := newReports(repo, time.Now()).Holds(context.Background(), "borrowed")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeInvalidParams, appErr.Code)
	assert.Zero(t, repo.calls)
}

func TestTables_WriteCSV(t *testing.T) {
	due := time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC)
	returned := time.Date(2024, 7, 5, 18, 0, 0, 0, time.UTC)
	position := 2
	tests := []struct {
		name  string
		table *Table
		want  string
	}{
		{
			name:  "热门",
			table: PopularTable([]report.PopularTitle{{TitleID: 1, ISBN: "9787115428028", Name: "Go, 语言", Loans: 3, PendingHolds: 2}}),
			want:  "title_id,isbn,name,loans,pending_holds\n1,9787115428028,\"Go, 语言\",3,2\n",
		},
		{
			name:  "逾期",
			table: OverdueTable([]report.OverdueCheckout{{CheckoutID: 9, TitleID: 1, Name: "Go", HolderID: 42, DueDate: due, DaysOverdue: 4}}),
			want:  "checkout_id,title_id,name,holder_id,due_date,days_overdue\n9,1,Go,42,2024-07-01 09:30:00,4\n",
		},
		{
			name:  "月度",
			table: MonthlyTable([]report.MonthlyLoans{{Month: "2024-06", Loans: 12}, {Month: "2024-07", Loans: 3}}),
			want:  "month,loans\n2024-06,12\n2024-07,3\n",
		},
		{
			name: "借阅台账",
			table: LoansTable([]report.LoanRecord{
				{CheckoutID: 3, TitleID: 1, Name: "Go", HolderID: 42, CheckoutDate: due, DueDate: due.AddDate(0, 0, 7), ReturnDate: &returned, Status: "returned"},
				{CheckoutID: 4, TitleID: 1, Name: "Go", HolderID: 43, CheckoutDate: due, DueDate: due.AddDate(0, 0, 7), Status: "active"},
			}),
			want: "checkout_id,title_id,name,holder_id,checkout_date,due_date,return_date,status\n" +
				"3,1,Go,42,2024-07-01 09:30:00,2024-07-08 09:30:00,2024-07-05 18:00:00,returned\n" +
				"4,1,Go,43,2024-07-01 09:30:00,2024-07-08 09:30:00,,active\n",
		},
		{
			name: "预约台账",
			table: HoldsTable([]report.HoldRecord{
				{HoldID: 7, TitleID: 1, Name: "Go", HolderID: 5, Status: "pending", QueuePosition: &position, RequestedAt: due},
				{HoldID: 8, TitleID: 1, Name: "Go", HolderID: 6, Status: "active", RequestedAt: due, ExpiresAt: &returned},
			}),
			want: "hold_id,title_id,name,holder_id,status,queue_position,requested_at,expires_at\n" +
				"7,1,Go,5,pending,2,2024-07-01 09:30:00,\n" +
				"8,1,Go,6,active,,2024-07-01 09:30:00,2024-07-05 18:00:00\n",
		},
		{
			name:  "空表只有表头",
			table: MonthlyTable(nil),
			want:  "month,loans\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tt.table.WriteCSV(&buf))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestHolderHistory(t *testing.T) {
	store := memory.NewStore()
	titles := memory.NewTitleRepository(store)
	engine := circulation.NewService(titles, memory.NewCheckoutRepository(store), memory.NewHoldRepository(store), store, circulation.Options{})
	ctx := context.Background()

	tt, err := title.NewTitle("9787115428028", "Go语言圣经", "Donovan", 2)
	require.NoError(t, err)
	require.NoError(t, titles.Create(ctx, tt))
	_, err = engine.CreateHold(ctx, tt.ID, 5)
	require.NoError(t, err)
	_, err = engine.OpenCheckout(ctx, tt.ID, 5, 0)
	require.NoError(t, err)

	h, err := NewHolderHistoryUseCase(engine).Execute(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, uint(5), h.HolderID)
	assert.Len(t, h.Holds, 1)
	assert.Len(t, h.Checkouts, 1)

	empty, err := NewHolderHistoryUseCase(engine).Execute(ctx, 6)
	require.NoError(t, err)
	assert.Empty(t, empty.Holds)
	assert.Empty(t, empty.Checkouts)
}
