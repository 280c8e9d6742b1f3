package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/circulation/pkg/metrics"
)

// Metrics HTTP请求指标
// path使用路由模板(/api/v1/titles/:id),避免ID导致标签爆炸
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.HTTPRequestsInProgress.Inc()
		defer metrics.HTTPRequestsInProgress.Dec()

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.IncCounterVec(metrics.HTTPRequestsTotal, c.Request.Method, path, status)
		metrics.ObserveHistogramVec(metrics.HTTPRequestDuration, time.Since(start).Seconds(), c.Request.Method, path)
	}
}
