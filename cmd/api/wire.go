//go:build wireinject
// +build wireinject

// Wire依赖注入配置
// 修改Provider后运行 `wire gen ./cmd/api` 重新生成wire_gen.go

package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	appcheckout "github.com/xiebiao/circulation/internal/application/checkout"
	apphold "github.com/xiebiao/circulation/internal/application/hold"
	appreport "github.com/xiebiao/circulation/internal/application/report"
	apptitle "github.com/xiebiao/circulation/internal/application/title"
	"github.com/xiebiao/circulation/internal/infrastructure/config"
	"github.com/xiebiao/circulation/internal/interface/http/handler"
	"github.com/xiebiao/circulation/internal/interface/http/middleware"
	"github.com/xiebiao/circulation/internal/interface/http/router"
)

// infrastructureSet 存储、缓存、锁、消息与外部目录
var infrastructureSet = wire.NewSet(
	provideStorage,
	wire.FieldsOf(new(*Storage), "Titles", "Holds", "Reports"),
	provideRedis,
	provideQueueCache,
	provideSweepLocks,
	provideNotifier,
	provideCatalog,
)

// domainSet 流通引擎
var domainSet = wire.NewSet(
	provideEngine,
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	apptitle.NewRegisterTitleUseCase,
	apptitle.NewGetTitleUseCase,
	apptitle.NewListTitlesUseCase,
	apptitle.NewAdjustStockUseCase,
	apptitle.NewAddCopiesUseCase,
	apptitle.NewWithdrawTitleUseCase,
	apptitle.NewQueueStateUseCase,
	apphold.NewCreateHoldUseCase,
	apphold.NewCancelHoldUseCase,
	apphold.NewRemoveHoldUseCase,
	apphold.NewConfirmHoldUseCase,
	apphold.NewTransferHoldUseCase,
	appcheckout.NewOpenCheckoutUseCase,
	appcheckout.NewCloseCheckoutUseCase,
	appreport.NewReportsUseCase,
	appreport.NewHolderHistoryUseCase,
	provideRunSweep,
	provideDueReminders,
)

// interfaceSet 中间件、处理器和路由
var interfaceSet = wire.NewSet(
	provideJWTManager,
	middleware.NewAuthMiddleware,
	handler.NewTitleHandler,
	handler.NewHoldHandler,
	handler.NewCheckoutHandler,
	handler.NewSweepHandler,
	handler.NewReportHandler,
	wire.Struct(new(router.Handlers), "*"),
	provideRouter,
)

// InitializeApp 组装整个应用
// cleanup按创建的逆序释放数据库、Redis和MQ连接
func InitializeApp(cfg *config.Config, log *zap.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		domainSet,
		applicationSet,
		interfaceSet,
		provideScheduler,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
