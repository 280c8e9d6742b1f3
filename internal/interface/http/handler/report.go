package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appreport "github.com/xiebiao/circulation/internal/application/report"
	"github.com/xiebiao/circulation/internal/interface/http/dto"
	"github.com/xiebiao/circulation/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/circulation/pkg/errors"
	"github.com/xiebiao/circulation/pkg/response"
)

const formatCSV = "csv"

// ReportHandler 报表HTTP处理器
type ReportHandler struct {
	reports *appreport.ReportsUseCase
	history *appreport.HolderHistoryUseCase
}

// NewReportHandler 创建报表处理器
func NewReportHandler(reports *appreport.ReportsUseCase, history *appreport.HolderHistoryUseCase) *ReportHandler {
	return &ReportHandler{reports: reports, history: history}
}

// Popular 热门图书
// @Summary      热门图书
// @Description  按since之后的借出次数排序,format=csv时下载CSV
// @Tags         报表
// @Produce      json
// @Produce      text/csv
// @Security     BearerAuth
// @Param        since query string false "起始日期 2006-01-02"
// @Param        limit query int false "条数,最多100"
// @Param        format query string false "json或csv"
// @Success      200 {object} response.Response{data=[]report.PopularTitle}
// @Router       /reports/popular [get]
func (h *ReportHandler) Popular(c *gin.Context) {
	var q dto.PopularQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}
	dates, ok := queryDates(c, "2006-01-02", q.Since)
	if !ok {
		return
	}

	rows, err := h.reports.Popular(c.Request.Context(), appreport.PopularRequest{Since: dates[0], Limit: q.Limit})
	if err != nil {
		response.Error(c, err)
		return
	}
	if q.Format == formatCSV {
		writeCSV(c, "popular", appreport.PopularTable(rows))
		return
	}
	response.Success(c, rows)
}

// Overdue 逾期未还
// @Summary      逾期报表
// @Tags         报表
// @Produce      json
// @Produce      text/csv
// @Security     BearerAuth
// @Param        as_of query string false "基准日期 2006-01-02"
// @Param        format query string false "json或csv"
// @Success      200 {object} response.Response{data=[]report.OverdueCheckout}
// @Router       /reports/overdue [get]
func (h *ReportHandler) Overdue(c *gin.Context) {
	var q dto.OverdueQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}
	dates, ok := queryDates(c, "2006-01-02", q.AsOf)
	if !ok {
		return
	}

	rows, err := h.reports.Overdue(c.Request.Context(), dates[0])
	if err != nil {
		response.Error(c, err)
		return
	}
	if q.Format == formatCSV {
		writeCSV(c, "overdue", appreport.OverdueTable(rows))
		return
	}
	response.Success(c, rows)
}

// Monthly 月度借出量
// @Summary      月度借出量
// @Description  区间为[from, to),默认最近12个月
// @Tags         报表
// @Produce      json
// @Produce      text/csv
// @Security     BearerAuth
// @Param        from query string false "起始月份 2006-01"
// @Param        to query string false "结束月份(不含) 2006-01"
// @Param        format query string false "json或csv"
// @Success      200 {object} response.Response{data=[]report.MonthlyLoans}
// @Failure      200 {object} response.Response "40011 区间非法"
// @Router       /reports/monthly [get]
func (h *ReportHandler) Monthly(c *gin.Context) {
	var q dto.MonthlyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}
	dates, ok := queryDates(c, "2006-01", q.From, q.To)
	if !ok {
		return
	}

	rows, err := h.reports.Monthly(c.Request.Context(), appreport.MonthlyRequest{From: dates[0], To: dates[1]})
	if err != nil {
		response.Error(c, err)
		return
	}
	if q.Format == formatCSV {
		writeCSV(c, "monthly", appreport.MonthlyTable(rows))
		return
	}
	response.Success(c, rows)
}

// Loans 借阅台账
// @Summary      借阅台账
// @Description  每次借出的借阅日、应还日与归还日,区间为[from, to)
// @Tags         报表
// @Produce      json
// @Produce      text/csv
// @Security     BearerAuth
// @Param        from query string false "起始日期 2006-01-02"
// @Param        to query string false "结束日期(不含) 2006-01-02"
// @Param        format query string false "json或csv"
// @Success      200 {object} response.Response{data=[]report.LoanRecord}
// @Failure      200 {object} response.Response "40011 区间非法"
// @Router       /reports/loans [get]
func (h *ReportHandler) Loans(c *gin.Context) {
	var q dto.LoansQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}
	dates, ok := queryDates(c, "2006-01-02", q.From, q.To)
	if !ok {
		return
	}

	rows, err := h.reports.Loans(c.Request.Context(), appreport.LoansRequest{From: dates[0], To: dates[1]})
	if err != nil {
		response.Error(c, err)
		return
	}
	if q.Format == formatCSV {
		writeCSV(c, "loans", appreport.LoansTable(rows))
		return
	}
	response.Success(c, rows)
}

// Holds 预约台账
// @Summary      预约台账
// @Tags         报表
// @Produce      json
// @Produce      text/csv
// @Security     BearerAuth
// @Param        status query string false "pending|active|confirmed|expired|cancelled|removed"
// @Param        format query string false "json或csv"
// @Success      200 {object} response.Response{data=[]report.HoldRecord}
// @Router       /reports/holds [get]
func (h *ReportHandler) Holds(c *gin.Context) {
	var q dto.HoldsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	rows, err := h.reports.Holds(c.Request.Context(), q.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	if q.Format == formatCSV {
		writeCSV(c, "holds", appreport.HoldsTable(rows))
		return
	}
	response.Success(c, rows)
}

// History 读者历史
// @Summary      读者历史
// @Description  馆员可查任意读者,读者只能查自己
// @Tags         报表
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "读者ID"
// @Success      200 {object} response.Response{data=view.History}
// @Failure      200 {object} response.Response "40104 权限不足"
// @Router       /holders/{id}/history [get]
func (h *ReportHandler) History(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if id != middleware.MustGetHolderID(c) && !middleware.IsLibrarian(c) {
		response.Error(c, apperrors.ErrForbidden)
		return
	}
	h.writeHistory(c, id)
}

// MyHistory 当前读者的历史
// @Summary      我的历史
// @Tags         报表
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=view.History}
// @Router       /me/history [get]
func (h *ReportHandler) MyHistory(c *gin.Context) {
	h.writeHistory(c, middleware.MustGetHolderID(c))
}

func (h *ReportHandler) writeHistory(c *gin.Context, holderID uint) {
	result, err := h.history.Execute(c.Request.Context(), holderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// queryDates 按本地时区解析日期参数,空串为零值
// 解析失败时已写出响应,返回false
func queryDates(c *gin.Context, layout string, values ...string) ([]time.Time, bool) {
	dates := make([]time.Time, len(values))
	for i, v := range values {
		if v == "" {
			continue
		}
		t, err := time.ParseInLocation(layout, v, time.Local)
		if err != nil {
			bindFailed(c, err)
			return nil, false
		}
		dates[i] = t
	}
	return dates, true
}

func writeCSV(c *gin.Context, name string, table *appreport.Table) {
	response.CSV(c, name, table.WriteCSV)
}
