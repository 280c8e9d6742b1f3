package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiebiao/circulation/pkg/tracing"
)

// HeaderRequestID 请求ID头
const HeaderRequestID = "X-Request-ID"

// slowRequest 超过这个耗时记warn
const slowRequest = 3 * time.Second

// RequestLogger 请求日志
// 沿用上游传来的X-Request-ID,没有时生成一个
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(HeaderRequestID, requestID)

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		}
		if holderID := GetHolderID(c); holderID != 0 {
			fields = append(fields, zap.Uint("holder_id", holderID))
		}
		if traceID := tracing.ExtractTraceID(c.Request.Context()); traceID != "" {
			fields = append(fields, zap.String("trace_id", traceID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.Error("request", fields...)
		case latency > slowRequest:
			logger.Warn("slow request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// Tracing 每个请求一个Span,未初始化TracerProvider时是空操作
func Tracing(tracerName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.FullPath()
		if name == "" {
			name = "unmatched"
		}
		ctx, span := tracing.StartSpan(c.Request.Context(), tracerName, c.Request.Method+" "+name)
		c.Request = c.Request.WithContext(ctx)
		c.Next()

		var err error
		if len(c.Errors) > 0 {
			err = c.Errors.Last()
		}
		tracing.End(span, err)
	}
}
