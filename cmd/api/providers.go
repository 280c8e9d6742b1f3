package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xiebiao/circulation/internal/application/port"
	appsweep "github.com/xiebiao/circulation/internal/application/sweep"
	apptitle "github.com/xiebiao/circulation/internal/application/title"
	"github.com/xiebiao/circulation/internal/domain/checkout"
	"github.com/xiebiao/circulation/internal/domain/circulation"
	"github.com/xiebiao/circulation/internal/domain/hold"
	"github.com/xiebiao/circulation/internal/domain/report"
	"github.com/xiebiao/circulation/internal/domain/title"
	"github.com/xiebiao/circulation/internal/infrastructure/catalog"
	"github.com/xiebiao/circulation/internal/infrastructure/config"
	"github.com/xiebiao/circulation/internal/infrastructure/notify"
	"github.com/xiebiao/circulation/internal/infrastructure/persistence/gormdb"
	"github.com/xiebiao/circulation/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/circulation/internal/infrastructure/persistence/redis"
	sqlreport "github.com/xiebiao/circulation/internal/infrastructure/persistence/report"
	"github.com/xiebiao/circulation/internal/infrastructure/scheduler"
	"github.com/xiebiao/circulation/internal/interface/http/middleware"
	"github.com/xiebiao/circulation/internal/interface/http/router"
	"github.com/xiebiao/circulation/pkg/jwt"
	"github.com/xiebiao/circulation/pkg/mq"
)

// reminderLockKey 到期提醒使用独立的锁
const reminderLockKey = "circulation:reminder:lock"

// App 启动所需的全部组件
type App struct {
	Engine    *gin.Engine
	Scheduler *scheduler.Scheduler
}

// Storage 按配置选择的存储实现
type Storage struct {
	Titles    title.Repository
	Checkouts checkout.Repository
	Holds     hold.Repository
	Reports   report.Repository
	Tx        circulation.Transactor
}

// SweepLocks 两个批处理各自的锁
type SweepLocks struct {
	Sweep    port.SweepLocker
	Reminder port.SweepLocker
}

// provideStorage memory驱动用进程内存储,其余走gorm,报表走goqu
func provideStorage(cfg *config.Config, log *zap.Logger) (*Storage, func(), error) {
	if cfg.Database.Driver == config.DriverMemory {
		log.Warn("使用进程内存储,重启后数据丢失")
		store := memory.NewStore()
		return &Storage{
			Titles:    memory.NewTitleRepository(store),
			Checkouts: memory.NewCheckoutRepository(store),
			Holds:     memory.NewHoldRepository(store),
			Reports:   memory.NewReportRepository(store),
			Tx:        store,
		}, func() {}, nil
	}

	db, err := gormdb.NewDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := sqlDB.Close(); err != nil {
			log.Warn("关闭数据库失败", zap.Error(err))
		}
	}
	reports, err := sqlreport.NewSQLRepository(sqlDB, cfg.Database.Driver)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return &Storage{
		Titles:    gormdb.NewTitleRepository(db),
		Checkouts: gormdb.NewCheckoutRepository(db),
		Holds:     gormdb.NewHoldRepository(db),
		Reports:   reports,
		Tx:        gormdb.NewTxManager(db),
	}, cleanup, nil
}

// provideRedis 未启用时返回nil
func provideRedis(cfg *config.Config, log *zap.Logger) (*goredis.Client, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Redis.DialTimeout+time.Second)
	defer cancel()

	client, err := redis.NewClient(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

func provideQueueCache(cfg *config.Config, client *goredis.Client) port.QueueCache {
	if client == nil || cfg.Circulation.QueueCacheTTL <= 0 {
		return port.NopQueueCache{}
	}
	return redis.NewQueueCache(client, cfg.Circulation.QueueCacheTTL)
}

func provideSweepLocks(client *goredis.Client, log *zap.Logger) SweepLocks {
	if client == nil {
		return SweepLocks{Sweep: port.LocalSweepLocker{}, Reminder: port.LocalSweepLocker{}}
	}
	return SweepLocks{
		Sweep:    redis.NewSweepLock(client, "", log),
		Reminder: redis.NewSweepLock(client, reminderLockKey, log),
	}
}

// provideNotifier 启用MQ时发布到RabbitMQ,否则只写日志
func provideNotifier(cfg *config.Config, log *zap.Logger) (circulation.Notifier, func(), error) {
	if !cfg.MQ.Enabled {
		return notify.Metered(notify.NewLogNotifier(log)), func() {}, nil
	}
	publisher, err := mq.Dial(cfg.MQ.URL, cfg.MQ.Exchange, "topic", log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := publisher.Close(); err != nil {
			log.Warn("关闭消息发布者失败", zap.Error(err))
		}
	}
	return notify.Metered(notify.NewMQNotifier(publisher, log)), cleanup, nil
}

// provideCatalog 未启用时返回nil接口,登记图书不查外部目录
func provideCatalog(cfg *config.Config, log *zap.Logger) apptitle.MetadataFetcher {
	if !cfg.Catalog.Enabled {
		return nil
	}
	return catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout, log)
}

func provideEngine(cfg *config.Config, st *Storage, notifier circulation.Notifier, log *zap.Logger) circulation.Service {
	return circulation.NewService(st.Titles, st.Checkouts, st.Holds, st.Tx, circulation.Options{
		LoanPeriodDays: cfg.Circulation.LoanPeriodDays,
		HoldWindow:     cfg.Circulation.HoldWindow,
		Notifier:       notifier,
		Logger:         log.Named("circulation"),
	})
}

func provideRunSweep(cfg *config.Config, engine circulation.Service, locks SweepLocks, cache port.QueueCache, log *zap.Logger) *appsweep.RunSweepUseCase {
	return appsweep.NewRunSweepUseCase(engine, locks.Sweep, cache, cfg.Circulation.SweepLockTTL, log.Named("sweep"))
}

func provideDueReminders(cfg *config.Config, engine circulation.Service, locks SweepLocks, log *zap.Logger) *appsweep.DueRemindersUseCase {
	return appsweep.NewDueRemindersUseCase(engine, locks.Reminder, cfg.Circulation.SweepLockTTL, log.Named("reminders"))
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TokenExpire)
}

func provideRouter(cfg *config.Config, log *zap.Logger, handlers router.Handlers, auth *middleware.AuthMiddleware) *gin.Engine {
	opts := router.Options{
		Mode:    cfg.Server.Mode,
		Swagger: cfg.Server.Mode != gin.ReleaseMode,
		Logger:  log,
	}
	if cfg.Metrics.Enabled {
		opts.MetricsPath = cfg.Metrics.Path
	}
	if cfg.Tracing.Enabled {
		opts.TracerName = cfg.Tracing.ServiceName + "/http"
	}
	return router.New(opts, handlers, auth)
}

// provideScheduler 注册过期/逾期批处理和到期提醒
func provideScheduler(cfg *config.Config, log *zap.Logger, sweep *appsweep.RunSweepUseCase, reminders *appsweep.DueRemindersUseCase) (*scheduler.Scheduler, error) {
	s := scheduler.New(log.Named("scheduler"))
	for _, job := range appsweep.Jobs(sweep, reminders, cfg.Circulation.SweepSchedule, cfg.Circulation.ReminderSchedule) {
		if err := s.Add(job); err != nil {
			return nil, err
		}
	}
	return s, nil
}
