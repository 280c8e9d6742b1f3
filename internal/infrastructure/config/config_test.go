package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFrom_Defaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, 7, cfg.Circulation.LoanPeriodDays)
	assert.Equal(t, 7*24*time.Hour, cfg.Circulation.HoldWindow)
	assert.Equal(t, "@every 5m", cfg.Circulation.SweepSchedule)
	assert.Equal(t, "circulation.notices", cfg.MQ.Exchange)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadFrom_EnvOverride(t *testing.T) {
	path := writeConfig(t, "database:\n  driver: sqlite\n")
	t.Setenv("CIRCULATION_DATABASE_PATH", "/tmp/override.db")
	t.Setenv("CIRCULATION_CIRCULATION_LOAN_PERIOD_DAYS", "14")
	t.Setenv("CIRCULATION_REDIS_ENABLED", "true")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/override.db", cfg.Database.Path)
	assert.Equal(t, 14, cfg.Circulation.LoanPeriodDays)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "端口越界", content: "server:\n  port: 70000\n"},
		{name: "未知驱动", content: "database:\n  driver: oracle\n"},
		{name: "借期为0", content: "circulation:\n  loan_period_days: 0\n"},
		{name: "MQ开启但无地址", content: "mq:\n  enabled: true\n"},
		{name: "生产环境默认密钥", content: "server:\n  mode: release\ndatabase:\n  driver: sqlite\n"},
		{name: "生产环境内存存储", content: "server:\n  mode: release\njwt:\n  secret: a-very-long-production-secret\n"},
		{name: "日志格式", content: "log:\n  format: xml\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	mysql := DatabaseConfig{
		Driver: DriverMySQL, User: "root", Password: "pw", Host: "db", Port: 3306,
		DBName: "circulation", Charset: "utf8mb4", ParseTime: true, Loc: "Asia/Shanghai",
	}
	assert.Equal(t, "root:pw@tcp(db:3306)/circulation?charset=utf8mb4&parseTime=true&loc=Asia%2FShanghai", mysql.DSN())

	pg := DatabaseConfig{
		Driver: DriverPostgres, User: "app", Password: "pw", Host: "pg", Port: 5432,
		DBName: "circulation", SSLMode: "disable", Loc: "UTC",
	}
	assert.Equal(t, "host=pg port=5432 user=app password=pw dbname=circulation sslmode=disable TimeZone=UTC", pg.DSN())

	lite := DatabaseConfig{Driver: DriverSQLite, Path: "file.db"}
	assert.Contains(t, lite.DSN(), "file.db?")
}
