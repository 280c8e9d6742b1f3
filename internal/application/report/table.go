package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/xiebiao/circulation/internal/application/view"
	"github.com/xiebiao/circulation/internal/domain/report"
)

// Table 报表的表格形式,用于CSV导出
type Table struct {
	Header []string
	Rows   [][]string
}

// WriteCSV 写出带表头的CSV
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// PopularTable 热门图书表
func PopularTable(rows []report.PopularTitle) *Table {
	t := &Table{Header: []string{"title_id", "isbn", "name", "loans", "pending_holds"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			uintStr(r.TitleID), r.ISBN, r.Name, strconv.Itoa(r.Loans), strconv.Itoa(r.PendingHolds),
		})
	}
	return t
}

// OverdueTable 逾期表
func OverdueTable(rows []report.OverdueCheckout) *Table {
	t := &Table{Header: []string{"checkout_id", "title_id", "name", "holder_id", "due_date", "days_overdue"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			uintStr(r.CheckoutID), uintStr(r.TitleID), r.Name, uintStr(r.HolderID),
			r.DueDate.Format(view.TimeLayout), strconv.Itoa(r.DaysOverdue),
		})
	}
	return t
}

// MonthlyTable 月度借出表
func MonthlyTable(rows []report.MonthlyLoans) *Table {
	t := &Table{Header: []string{"month", "loans"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Month, strconv.Itoa(r.Loans)})
	}
	return t
}

func uintStr(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

// LoansTable 借阅台账,未归还的return_date为空
func LoansTable(rows []report.LoanRecord) *Table {
	t := &Table{Header: []string{"checkout_id", "title_id", "name", "holder_id", "checkout_date", "due_date", "return_date", "status"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			uintStr(r.CheckoutID), uintStr(r.TitleID), r.Name, uintStr(r.HolderID),
			r.CheckoutDate.Format(view.TimeLayout), r.DueDate.Format(view.TimeLayout),
			timePtrStr(r.ReturnDate), r.Status,
		})
	}
	return t
}

// HoldsTable 预约台账
func HoldsTable(rows []report.HoldRecord) *Table {
	t := &Table{Header: []string{"hold_id", "title_id", "name", "holder_id", "status", "queue_position", "requested_at", "expires_at"}}
	for _, r := range rows {
		position := ""
		if r.QueuePosition != nil {
			position = strconv.Itoa(*r.QueuePosition)
		}
		t.Rows = append(t.Rows, []string{
			uintStr(r.HoldID), uintStr(r.TitleID), r.Name, uintStr(r.HolderID), r.Status,
			position, r.RequestedAt.Format(view.TimeLayout), timePtrStr(r.ExpiresAt),
		})
	}
	return t
}

func timePtrStr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(view.TimeLayout)
}
