// Package report 报表查询: goqu拼SQL,sqlx扫描结果
// 与gorm共用同一个连接池,只读
package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"    // 注册方言
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // 注册方言
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // 注册方言
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"

	"github.com/xiebiao/circulation/internal/domain/checkout"
	"github.com/xiebiao/circulation/internal/domain/hold"
	"github.com/xiebiao/circulation/internal/domain/report"
	"github.com/xiebiao/circulation/internal/infrastructure/config"
	apperrors "github.com/xiebiao/circulation/pkg/errors"
)

const (
	tblTitles    = "titles"
	tblCheckouts = "checkouts"
	tblHolds     = "holds"
)

// sqlRepository 基于SQL的报表实现
type sqlRepository struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
	month   func(col string) exp.LiteralExpression
}

// NewSQLRepository driver取config中的mysql/postgres/sqlite
func NewSQLRepository(db *sql.DB, driver string) (report.Repository, error) {
	var (
		dialect    string
		driverName string
		month      func(col string) exp.LiteralExpression
	)
	switch driver {
	case config.DriverMySQL:
		dialect, driverName = "mysql", "mysql"
		month = func(col string) exp.LiteralExpression { return goqu.L("DATE_FORMAT(?, '%Y-%m')", goqu.I(col)) }
	case config.DriverPostgres:
		dialect, driverName = "postgres", "pgx"
		month = func(col string) exp.LiteralExpression { return goqu.L("to_char(?, 'YYYY-MM')", goqu.I(col)) }
	case config.DriverSQLite:
		dialect, driverName = "sqlite3", "sqlite3"
		month = func(col string) exp.LiteralExpression { return goqu.L("strftime('%Y-%m', ?)", goqu.I(col)) }
	default:
		return nil, fmt.Errorf("报表不支持的数据库驱动: %s", driver)
	}

	return &sqlRepository{
		db:      sqlx.NewDb(db, driverName),
		dialect: goqu.Dialect(dialect),
		month:   month,
	}, nil
}

func (r *sqlRepository) Popular(ctx context.Context, since time.Time, limit int) ([]report.PopularTitle, error) {
	if limit <= 0 {
		limit = 10
	}

	loans := r.dialect.From(goqu.T(tblCheckouts).As("c")).
		Select(goqu.COUNT(goqu.Star())).
		Where(
			goqu.I("c.title_id").Eq(goqu.I("t.id")),
			goqu.I("c.checkout_date").Gte(since.UTC()),
		)
	pending := r.dialect.From(goqu.T(tblHolds).As("h")).
		Select(goqu.COUNT(goqu.Star())).
		Where(
			goqu.I("h.title_id").Eq(goqu.I("t.id")),
			goqu.I("h.status").Eq(string(hold.StatusPending)),
		)

	perTitle := r.dialect.From(goqu.T(tblTitles).As("t")).
		Select(
			goqu.I("t.id").As("title_id"),
			goqu.I("t.isbn").As("isbn"),
			goqu.I("t.name").As("name"),
			loans.As("loans"),
			pending.As("pending_holds"),
		)

	// 外层再套一层,别名才能在ORDER BY的表达式里使用(PostgreSQL)
	ds := r.dialect.From(perTitle.As("p")).
		Select("title_id", "isbn", "name", "loans", "pending_holds").
		Where(goqu.L("? + ? > 0", goqu.I("p.loans"), goqu.I("p.pending_holds"))).
		Order(goqu.L("? + ?", goqu.I("p.loans"), goqu.I("p.pending_holds")).Desc(), goqu.I("p.title_id").Asc()).
		Limit(uint(limit))

	var rows []report.PopularTitle
	if err := r.selectInto(ctx, &rows, ds); err != nil {
		return nil, apperrors.Wrap(err, "查询热门图书失败")
	}
	return rows, nil
}

func (r *sqlRepository) Overdue(ctx context.Context, asOf time.Time) ([]report.OverdueCheckout, error) {
	ds := r.dialect.From(goqu.T(tblCheckouts).As("c")).
		InnerJoin(goqu.T(tblTitles).As("t"), goqu.On(goqu.I("t.id").Eq(goqu.I("c.title_id")))).
		Select(
			goqu.I("c.id").As("checkout_id"),
			goqu.I("c.title_id").As("title_id"),
			goqu.I("t.name").As("name"),
			goqu.I("c.holder_id").As("holder_id"),
			goqu.I("c.due_date").As("due_date"),
		).
		Where(
			goqu.I("c.status").In(string(checkout.StatusActive), string(checkout.StatusOverdue)),
			goqu.I("c.due_date").Lt(asOf.UTC()),
		).
		Order(goqu.I("c.due_date").Asc(), goqu.I("c.id").Asc())

	var rows []report.OverdueCheckout
	if err := r.selectInto(ctx, &rows, ds); err != nil {
		return nil, apperrors.Wrap(err, "查询逾期借阅失败")
	}
	for i := range rows {
		rows[i].DueDate = rows[i].DueDate.Local()
		rows[i].DaysOverdue = report.DaysOverdue(rows[i].DueDate, asOf)
	}
	return rows, nil
}

func (r *sqlRepository) MonthlyLoans(ctx context.Context, from, to time.Time) ([]report.MonthlyLoans, error) {
	month := r.month("checkout_date")
	ds := r.dialect.From(tblCheckouts).
		Select(month.As("month"), goqu.COUNT(goqu.Star()).As("loans")).
		Where(
			goqu.C("checkout_date").Gte(from.UTC()),
			goqu.C("checkout_date").Lt(to.UTC()),
		).
		GroupBy(month).
		Order(goqu.I("month").Asc())

	var rows []report.MonthlyLoans
	if err := r.selectInto(ctx, &rows, ds); err != nil {
		return nil, apperrors.Wrap(err, "查询月度借阅失败")
	}
	return rows, nil
}

func (r *sqlRepository) Loans(ctx context.Context, from, to time.Time) ([]report.LoanRecord, error) {
	ds := r.dialect.From(goqu.T(tblCheckouts).As("c")).
		InnerJoin(goqu.T(tblTitles).As("t"), goqu.On(goqu.I("t.id").Eq(goqu.I("c.title_id")))).
		Select(
			goqu.I("c.id").As("checkout_id"),
			goqu.I("c.title_id").As("title_id"),
			goqu.I("t.name").As("name"),
			goqu.I("c.holder_id").As("holder_id"),
			goqu.I("c.checkout_date").As("checkout_date"),
			goqu.I("c.due_date").As("due_date"),
			goqu.I("c.return_date").As("return_date"),
			goqu.I("c.status").As("status"),
		).
		Order(goqu.I("c.checkout_date").Asc(), goqu.I("c.id").Asc())
	if !from.IsZero() {
		ds = ds.Where(goqu.I("c.checkout_date").Gte(from.UTC()))
	}
	if !to.IsZero() {
		ds = ds.Where(goqu.I("c.checkout_date").Lt(to.UTC()))
	}

	var rows []report.LoanRecord
	if err := r.selectInto(ctx, &rows, ds); err != nil {
		return nil, apperrors.Wrap(err, "查询借阅台账失败")
	}
	for i := range rows {
		rows[i].CheckoutDate = rows[i].CheckoutDate.Local()
		rows[i].DueDate = rows[i].DueDate.Local()
		rows[i].ReturnDate = localPtr(rows[i].ReturnDate)
	}
	return rows, nil
}

func (r *sqlRepository) Holds(ctx context.Context, status string) ([]report.HoldRecord, error) {
	ds := r.dialect.From(goqu.T(tblHolds).As("h")).
		InnerJoin(goqu.T(tblTitles).As("t"), goqu.On(goqu.I("t.id").Eq(goqu.I("h.title_id")))).
		Select(
			goqu.I("h.id").As("hold_id"),
			goqu.I("h.title_id").As("title_id"),
			goqu.I("t.name").As("name"),
			goqu.I("h.holder_id").As("holder_id"),
			goqu.I("h.status").As("status"),
			goqu.I("h.queue_position").As("queue_position"),
			goqu.I("h.requested_at").As("requested_at"),
			goqu.I("h.expires_at").As("expires_at"),
		).
		Order(goqu.I("h.title_id").Asc(), goqu.I("h.requested_at").Asc(), goqu.I("h.id").Asc())
	if status != "" {
		ds = ds.Where(goqu.I("h.status").Eq(status))
	}

	var rows []report.HoldRecord
	if err := r.selectInto(ctx, &rows, ds); err != nil {
		return nil, apperrors.Wrap(err, "查询预约台账失败")
	}
	for i := range rows {
		rows[i].RequestedAt = rows[i].RequestedAt.Local()
		rows[i].ExpiresAt = localPtr(rows[i].ExpiresAt)
	}
	return rows, nil
}

// selectInto 参数走占位符绑定,时间值交给驱动格式化
func (r *sqlRepository) selectInto(ctx context.Context, dest any, ds *goqu.SelectDataset) error {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("构建SQL失败: %w", err)
	}
	return r.db.SelectContext(ctx, dest, query, args...)
}

// localPtr 库里按UTC存储,展示时转回本地时区
func localPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	l := t.Local()
	return &l
}
