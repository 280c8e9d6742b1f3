package dto

import "time"

// CreateHoldRequest HTTP预约请求
// holder_id只有馆员代约时才需要,读者只能给自己预约
type CreateHoldRequest struct {
	TitleID  uint `json:"title_id" binding:"required" example:"1"`
	HolderID uint `json:"holder_id" example:"1001"`
}

// ConfirmHoldRequest HTTP取书请求,请求体可省略
type ConfirmHoldRequest struct {
	LoanPeriodDays int `json:"loan_period_days" binding:"omitempty,min=1,max=365" example:"14"`
}

// TransferHoldRequest HTTP预约转移请求
type TransferHoldRequest struct {
	TitleID uint `json:"title_id" binding:"required" example:"2"`
}

// OpenCheckoutRequest HTTP借出请求
type OpenCheckoutRequest struct {
	TitleID        uint `json:"title_id" binding:"required" example:"1"`
	HolderID       uint `json:"holder_id" binding:"required" example:"1001"`
	LoanPeriodDays int  `json:"loan_period_days" binding:"omitempty,min=1,max=365" example:"14"`
}

// RunSweepRequest HTTP批处理请求,as_of省略时取当前时间
type RunSweepRequest struct {
	AsOf *time.Time `json:"as_of" example:"2024-06-01T00:00:00Z"`
}

// PopularQuery 热门图书查询参数
type PopularQuery struct {
	Since  string `form:"since" binding:"omitempty,datetime=2006-01-02" example:"2024-05-01"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100" example:"10"`
	Format string `form:"format" binding:"omitempty,oneof=json csv" example:"json"`
}

// OverdueQuery 逾期报表查询参数
type OverdueQuery struct {
	AsOf   string `form:"as_of" binding:"omitempty,datetime=2006-01-02" example:"2024-06-01"`
	Format string `form:"format" binding:"omitempty,oneof=json csv" example:"csv"`
}

// LoansQuery 借阅台账查询参数,[from, to)
type LoansQuery struct {
	From   string `form:"from" binding:"omitempty,datetime=2006-01-02" example:"2024-01-01"`
	To     string `form:"to" binding:"omitempty,datetime=2006-01-02" example:"2024-07-01"`
	Format string `form:"format" binding:"omitempty,oneof=json csv" example:"csv"`
}

// HoldsQuery 预约台账查询参数
type HoldsQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending active confirmed expired cancelled removed" example:"pending"`
	Format string `form:"format" binding:"omitempty,oneof=json csv" example:"json"`
}

// MonthlyQuery 月度报表查询参数,[from, to)
type MonthlyQuery struct {
	From   string `form:"from" binding:"omitempty,datetime=2006-01" example:"2024-01"`
	To     string `form:"to" binding:"omitempty,datetime=2006-01" example:"2024-07"`
	Format string `form:"format" binding:"omitempty,oneof=json csv" example:"json"`
}
