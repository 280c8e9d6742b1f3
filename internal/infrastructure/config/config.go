package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构
// 来源优先级: 环境变量 > config.<env>.yaml > config.yaml > 默认值
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	Log         LogConfig         `mapstructure:"log"`
	Circulation CirculationConfig `mapstructure:"circulation"`
	MQ          MQConfig          `mapstructure:"mq"`
	Catalog     CatalogConfig     `mapstructure:"catalog"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port" validate:"min=1,max=65535"`
	Mode         string        `mapstructure:"mode" validate:"oneof=debug release test"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// 支持的数据库驱动
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory" // 进程内存储,仅用于开发和演示
)

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" validate:"oneof=mysql postgres sqlite memory"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	Path            string        `mapstructure:"path"` // sqlite文件路径
	Charset         string        `mapstructure:"charset"`
	ParseTime       bool          `mapstructure:"parse_time"`
	Loc             string        `mapstructure:"loc"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN 按驱动生成连接字符串
func (d DatabaseConfig) DSN() string {
	switch d.Driver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
			d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode, d.Loc)
	case DriverSQLite:
		// 写事务用BEGIN IMMEDIATE,SQLite没有行锁,事务之间串行
		return d.Path + "?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
	default:
		// loc需要URL编码(Asia/Shanghai → Asia%2FShanghai)
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
			d.User, d.Password, d.Host, d.Port, d.DBName, d.Charset, d.ParseTime, url.QueryEscape(d.Loc))
	}
}

type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr 返回Redis地址
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret      string        `mapstructure:"secret" validate:"required,min=16"`
	TokenExpire time.Duration `mapstructure:"token_expire" validate:"gt=0"`
}

type LogConfig struct {
	Level        string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format       string `mapstructure:"format" validate:"oneof=console json"`
	Output       string `mapstructure:"output"` // stdout | stderr | /path/to/file
	EnableCaller bool   `mapstructure:"enable_caller"`
}

// CirculationConfig 流通规则与后台任务
type CirculationConfig struct {
	LoanPeriodDays   int           `mapstructure:"loan_period_days" validate:"min=1,max=365"`
	HoldWindow       time.Duration `mapstructure:"hold_window" validate:"gt=0"`
	SweepSchedule    string        `mapstructure:"sweep_schedule" validate:"required"`
	ReminderSchedule string        `mapstructure:"reminder_schedule"` // 为空则不发送到期提醒
	SweepLockTTL     time.Duration `mapstructure:"sweep_lock_ttl" validate:"gt=0"`
	QueueCacheTTL    time.Duration `mapstructure:"queue_cache_ttl"`
}

type MQConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url" validate:"required_if=Enabled true"`
	Exchange string `mapstructure:"exchange" validate:"required_if=Enabled true"`
}

type CatalogConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"endpoint" validate:"required_if=Enabled true"`
	SampleRatio float64 `mapstructure:"sample_ratio" validate:"min=0,max=1"`
	Insecure    bool    `mapstructure:"insecure"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load 加载配置
// 1. 存在.env时先载入环境变量
// 2. 读取./config/config.yaml,CIRCULATION_ENV指定环境时叠加config.<env>.yaml
// 3. 环境变量覆盖,如CIRCULATION_DATABASE_PASSWORD → database.password
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("读取.env失败: %w", err)
	}
	return LoadFrom("")
}

// LoadFrom 从指定文件加载,path为空时按默认路径查找
// 找不到配置文件时只使用默认值和环境变量
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CIRCULATION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("读取配置文件失败: %w", err)
			}
		}

		// 环境特定配置(如config.prod.yaml)叠加在基础配置之上
		if env := v.GetString("env"); env != "" {
			v.SetConfigName("config." + env)
			if err := v.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("读取环境配置config.%s失败: %w", env, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)

	v.SetDefault("database.driver", DriverMemory)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "circulation")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parse_time", true)
	v.SetDefault("database.loc", "Local")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "circulation.db")
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.min_idle_conns", 5)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("jwt.secret", "dev-secret-change-in-production")
	v.SetDefault("jwt.token_expire", 2*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.enable_caller", false)

	v.SetDefault("circulation.loan_period_days", 7)
	v.SetDefault("circulation.hold_window", 7*24*time.Hour)
	v.SetDefault("circulation.sweep_schedule", "@every 5m")
	v.SetDefault("circulation.reminder_schedule", "0 8 * * *")
	v.SetDefault("circulation.sweep_lock_ttl", 4*time.Minute)
	v.SetDefault("circulation.queue_cache_ttl", 30*time.Second)

	v.SetDefault("mq.enabled", false)
	v.SetDefault("mq.url", "")
	v.SetDefault("mq.exchange", "circulation.notices")

	v.SetDefault("catalog.enabled", false)
	v.SetDefault("catalog.base_url", "https://openlibrary.org")
	v.SetDefault("catalog.timeout", 5*time.Second)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.service_name", "circulation")
	v.SetDefault("tracing.sample_ratio", 1.0)
	v.SetDefault("tracing.insecure", true)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// validate 配置校验
func validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}

	if strings.HasPrefix(cfg.JWT.Secret, "dev-") && cfg.Server.Mode == "release" {
		return fmt.Errorf("生产环境必须修改JWT密钥")
	}

	if cfg.Server.Mode == "release" && cfg.Database.Driver == DriverMemory {
		return fmt.Errorf("生产环境不能使用memory存储")
	}
	return nil
}
