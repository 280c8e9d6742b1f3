// Package gormdb 基于GORM的仓储实现,支持MySQL、PostgreSQL和SQLite
package gormdb

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/circulation/internal/infrastructure/config"
)

// NewDB 按配置的驱动打开数据库,配置连接池并迁移表结构
func NewDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.Database)
	if err != nil {
		return nil, err
	}

	// 开发环境打印SQL
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, GormConfig(logLevel))
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	if cfg.Database.Driver == config.DriverSQLite {
		// 单文件数据库,多连接只会互相等待写锁
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	log.Info("数据库连接成功", zap.String("driver", cfg.Database.Driver))
	return db, nil
}

// GormConfig 三种驱动共用的GORM配置
// 自动填充的时间戳同样按UTC写入
func GormConfig(logLevel logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		return mysql.Open(cfg.DSN()), nil
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN()), nil
	case config.DriverSQLite:
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Driver)
	}
}

// AutoMigrate 迁移表结构
// 只会建表和加字段,生产环境的结构变更走迁移脚本
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&TitleModel{},
		&CheckoutModel{},
		&HoldModel{},
	)
}

// TitleModel 图书表
// 计数器的上下界由check约束兜底,业务层在锁内先行校验
type TitleModel struct {
	ID              uint      `gorm:"primaryKey"`
	ISBN            string    `gorm:"uniqueIndex;size:20;not null;comment:ISBN"`
	Name            string    `gorm:"index:idx_title_search;size:200;not null;comment:书名"`
	Author          string    `gorm:"index:idx_title_search;size:100;comment:作者"`
	Category        string    `gorm:"size:50;comment:分类"`
	Publisher       string    `gorm:"size:100;comment:出版社"`
	CoverURL        string    `gorm:"size:500;comment:封面URL"`
	Description     string    `gorm:"type:text;comment:简介"`
	TotalCopies     int       `gorm:"not null;default:0;check:chk_titles_total,total_copies >= 0;comment:馆藏总数"`
	AvailableCopies int       `gorm:"not null;default:0;check:chk_titles_available,available_copies >= 0 AND available_copies <= total_copies;comment:可借数"`
	Withdrawn       bool      `gorm:"not null;default:false;comment:是否下架"`
	CreatedAt       time.Time `gorm:"index"`
	UpdatedAt       time.Time
}

// TableName 指定表名
func (TitleModel) TableName() string {
	return "titles"
}

// CheckoutModel 借阅表
type CheckoutModel struct {
	ID           uint       `gorm:"primaryKey"`
	TitleID      uint       `gorm:"index:idx_checkouts_pair;not null"`
	HolderID     uint       `gorm:"index:idx_checkouts_pair;index:idx_checkouts_holder;not null"`
	CheckoutDate time.Time  `gorm:"not null;index:idx_checkouts_holder"`
	DueDate      time.Time  `gorm:"not null;index:idx_checkouts_due"`
	ReturnDate   *time.Time `gorm:"comment:归还时间"`
	Status       string     `gorm:"size:16;not null;index:idx_checkouts_due;comment:active|returned|overdue"`
	UpdatedAt    time.Time
}

// TableName 指定表名
func (CheckoutModel) TableName() string {
	return "checkouts"
}

// HoldModel 预约表
// 队列顺序以requested_at, id为准,queue_position只是稠密编号的缓存
type HoldModel struct {
	ID            uint       `gorm:"primaryKey"`
	TitleID       uint       `gorm:"index:idx_holds_queue;not null"`
	HolderID      uint       `gorm:"index:idx_holds_holder;not null"`
	RequestedAt   time.Time  `gorm:"index:idx_holds_queue;index:idx_holds_holder;not null"`
	QueuePosition *int       `gorm:"comment:排队位置,非pending为NULL"`
	ActivatedAt   *time.Time `gorm:"comment:生效时间"`
	ExpiresAt     *time.Time `gorm:"index:idx_holds_expiry;comment:保留截止时间"`
	ClosedAt      *time.Time `gorm:"comment:进入终态的时间"`
	Status        string     `gorm:"size:16;not null;index:idx_holds_queue;index:idx_holds_expiry"`
	UpdatedAt     time.Time
}

// TableName 指定表名
func (HoldModel) TableName() string {
	return "holds"
}
