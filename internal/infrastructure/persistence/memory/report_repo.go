package memory

import (
	"context"
	"sort"
	"time"

	"github.com/xiebiao/circulation/internal/domain/hold"
	"github.com/xiebiao/circulation/internal/domain/report"
)

type reportRepository struct {
	s *Store
}

// NewReportRepository 创建报表查询(内存)
func NewReportRepository(s *Store) report.Repository {
	return &reportRepository{s: s}
}

func (r *reportRepository) Popular(ctx context.Context, since time.Time, limit int) ([]report.PopularTitle, error) {
	if limit <= 0 {
		limit = 10
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make(map[uint]*report.PopularTitle)
	row := func(titleID uint) *report.PopularTitle {
		if p, ok := rows[titleID]; ok {
			return p
		}
		p := &report.PopularTitle{TitleID: titleID}
		if t, ok := r.s.titles[titleID]; ok {
			p.ISBN, p.Name = t.ISBN, t.Name
		}
		rows[titleID] = p
		return p
	}
	for _, c := range r.s.checkouts {
		if !c.CheckoutDate.Before(since) {
			row(c.TitleID).Loans++
		}
	}
	for _, h := range r.s.holds {
		if h.Status == hold.StatusPending {
			row(h.TitleID).PendingHolds++
		}
	}

	out := make([]report.PopularTitle, 0, len(rows))
	for _, p := range rows {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := out[i].Loans+out[i].PendingHolds, out[j].Loans+out[j].PendingHolds
		if si != sj {
			return si > sj
		}
		return out[i].TitleID < out[j].TitleID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *reportRepository) Overdue(ctx context.Context, asOf time.Time) ([]report.OverdueCheckout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []report.OverdueCheckout
	for _, c := range r.s.checkouts {
		if !c.IsOpen() || !c.DueDate.Before(asOf) {
			continue
		}
		row := report.OverdueCheckout{
			CheckoutID:  c.ID,
			TitleID:     c.TitleID,
			HolderID:    c.HolderID,
			DueDate:     c.DueDate,
			DaysOverdue: report.DaysOverdue(c.DueDate, asOf),
		}
		if t, ok := r.s.titles[c.TitleID]; ok {
			row.Name = t.Name
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].CheckoutID < out[j].CheckoutID
	})
	return out, nil
}

func (r *reportRepository) MonthlyLoans(ctx context.Context, from, to time.Time) ([]report.MonthlyLoans, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[string]int)
	for _, c := range r.s.checkouts {
		if c.CheckoutDate.Before(from) || !c.CheckoutDate.Before(to) {
			continue
		}
		counts[c.CheckoutDate.Format("2006-01")]++
	}

	out := make([]report.MonthlyLoans, 0, len(counts))
	for month, n := range counts {
		out = append(out, report.MonthlyLoans{Month: month, Loans: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (r *reportRepository) Loans(ctx context.Context, from, to time.Time) ([]report.LoanRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []report.LoanRecord
	for _, c := range r.s.checkouts {
		if !from.IsZero() && c.CheckoutDate.Before(from) {
			continue
		}
		if !to.IsZero() && !c.CheckoutDate.Before(to) {
			continue
		}
		row := report.LoanRecord{
			CheckoutID:   c.ID,
			TitleID:      c.TitleID,
			HolderID:     c.HolderID,
			CheckoutDate: c.CheckoutDate,
			DueDate:      c.DueDate,
			ReturnDate:   cloneTime(c.ReturnDate),
			Status:       string(c.Status),
		}
		if t, ok := r.s.titles[c.TitleID]; ok {
			row.Name = t.Name
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CheckoutDate.Equal(out[j].CheckoutDate) {
			return out[i].CheckoutDate.Before(out[j].CheckoutDate)
		}
		return out[i].CheckoutID < out[j].CheckoutID
	})
	return out, nil
}

func (r *reportRepository) Holds(ctx context.Context, status string) ([]report.HoldRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []report.HoldRecord
	for _, h := range r.s.holds {
		if status != "" && string(h.Status) != status {
			continue
		}
		row := report.HoldRecord{
			HoldID:        h.ID,
			TitleID:       h.TitleID,
			HolderID:      h.HolderID,
			Status:        string(h.Status),
			QueuePosition: cloneTime(h.QueuePosition),
			RequestedAt:   h.RequestedAt,
			ExpiresAt:     cloneTime(h.ExpiresAt),
		}
		if t, ok := r.s.titles[h.TitleID]; ok {
			row.Name = t.Name
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TitleID != b.TitleID {
			return a.TitleID < b.TitleID
		}
		if !a.RequestedAt.Equal(b.RequestedAt) {
			return a.RequestedAt.Before(b.RequestedAt)
		}
		return a.HoldID < b.HoldID
	})
	return out, nil
}
