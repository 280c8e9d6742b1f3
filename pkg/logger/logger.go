// Package logger 基于zap的结构化日志
//
// 配置项与config.LogConfig一一对应：
//   - Level:  debug | info | warn | error
//   - Format: console | json
//   - Output: stdout | stderr | /path/to/file
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options 日志配置
type Options struct {
	Level        string
	Format       string
	Output       string
	EnableCaller bool
}

// New 创建zap Logger
func New(opts Options) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(defaultString(opts.Level, "info"))
	if err != nil {
		return nil, fmt.Errorf("无效的日志级别 %q: %w", opts.Level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableCaller = !opts.EnableCaller
	cfg.DisableStacktrace = level > zapcore.DebugLevel

	switch strings.ToLower(defaultString(opts.Format, "console")) {
	case "json":
		cfg.Encoding = "json"
	case "console":
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	default:
		return nil, fmt.Errorf("无效的日志格式: %s", opts.Format)
	}

	output := defaultString(opts.Output, "stdout")
	cfg.OutputPaths = []string{output}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}

// Init 创建Logger并替换zap全局Logger
// 返回的sync函数应在进程退出前调用
func Init(opts Options) (*zap.Logger, func(), error) {
	l, err := New(opts)
	if err != nil {
		return nil, nil, err
	}
	restore := zap.ReplaceGlobals(l)
	return l, func() {
		_ = l.Sync()
		restore()
	}, nil
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
