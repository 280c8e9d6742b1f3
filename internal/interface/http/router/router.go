// Package router 组装Gin引擎和全部路由
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/xiebiao/circulation/docs"
	"github.com/xiebiao/circulation/internal/interface/http/handler"
	"github.com/xiebiao/circulation/internal/interface/http/middleware"
	"github.com/xiebiao/circulation/pkg/response"
)

// Options 引擎配置
type Options struct {
	Mode        string // debug | release | test
	MetricsPath string // 为空则不暴露/metrics
	Swagger     bool
	TracerName  string // 为空则不创建请求span
	Logger      *zap.Logger
}

// Handlers 全部HTTP处理器
type Handlers struct {
	Title    *handler.TitleHandler
	Hold     *handler.HoldHandler
	Checkout *handler.CheckoutHandler
	Sweep    *handler.SweepHandler
	Report   *handler.ReportHandler
}

// New 创建Gin引擎并注册路由
func New(opts Options, h Handlers, auth *middleware.AuthMiddleware) *gin.Engine {
	switch opts.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(opts.Mode)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))
	if opts.TracerName != "" {
		r.Use(middleware.Tracing(opts.TracerName))
	}
	if opts.MetricsPath != "" {
		r.Use(middleware.Metrics())
		r.GET(opts.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// 生产环境建议关闭或加访问控制
	if opts.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	registerTitles(v1, h, auth)
	registerHolds(v1, h, auth)

	librarian := v1.Group("", auth.RequireAuth(), auth.RequireLibrarian())
	{
		librarian.POST("/checkouts", h.Checkout.Open)
		librarian.POST("/checkouts/:id/return", h.Checkout.Close)

		librarian.POST("/sweeps", h.Sweep.Run)
		librarian.POST("/sweeps/reminders", h.Sweep.Reminders)

		reports := librarian.Group("/reports")
		reports.GET("/popular", h.Report.Popular)
		reports.GET("/overdue", h.Report.Overdue)
		reports.GET("/monthly", h.Report.Monthly)
		reports.GET("/loans", h.Report.Loans)
		reports.GET("/holds", h.Report.Holds)
	}

	// 读者查自己,馆员查任意读者,由Handler判断
	authorized := v1.Group("", auth.RequireAuth())
	{
		authorized.GET("/holders/:id/history", h.Report.History)
		authorized.GET("/me/history", h.Report.MyHistory)
	}

	return r
}

func registerTitles(v1 *gin.RouterGroup, h Handlers, auth *middleware.AuthMiddleware) {
	titles := v1.Group("/titles")

	// 公开接口
	titles.GET("", h.Title.List)
	titles.GET("/:id", h.Title.Get)

	titles.GET("/:id/queue", auth.RequireAuth(), h.Title.Queue)

	admin := titles.Group("", auth.RequireAuth(), auth.RequireLibrarian())
	admin.POST("", h.Title.Register)
	admin.PUT("/:id/stock", h.Title.AdjustStock)
	admin.POST("/:id/copies", h.Title.AddCopies)
	admin.DELETE("/:id", h.Title.Withdraw)
}

func registerHolds(v1 *gin.RouterGroup, h Handlers, auth *middleware.AuthMiddleware) {
	holds := v1.Group("/holds", auth.RequireAuth())
	holds.POST("", h.Hold.Create)
	holds.POST("/:id/cancel", h.Hold.Cancel)

	admin := holds.Group("", auth.RequireLibrarian())
	admin.DELETE("/:id", h.Hold.Remove)
	admin.POST("/:id/confirm", h.Hold.Confirm)
	admin.POST("/:id/transfer", h.Hold.Transfer)
}
