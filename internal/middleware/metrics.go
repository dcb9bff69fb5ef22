package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP 请求总数
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "enteacher",
			Name:      "http_requests_total",
			Help:      "HTTP 请求总数",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP 请求持续时间
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "enteacher",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP 请求持续时间（秒）",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// 当前正在处理的请求数
	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "enteacher",
			Name:      "http_requests_in_flight",
			Help:      "当前正在处理的 HTTP 请求数",
		},
	)

	// 返回 503 的请求数（数据库不可用）
	httpUnavailableTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "enteacher",
			Name:      "http_service_unavailable_total",
			Help:      "因数据库不可用返回 503 的请求数",
		},
		[]string{"path"},
	)
)

// Metrics Prometheus 监控中间件
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 跳过健康检查和监控端点
		if c.Request.URL.Path == "/health" || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			// 未匹配路由统一归类，避免标签基数膨胀
			path = "unmatched"
		}

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		c.Next()

		status := c.Writer.Status()
		statusLabel := strconv.Itoa(status)
		httpRequestsTotal.WithLabelValues(method, path, statusLabel).Inc()
		httpRequestDuration.WithLabelValues(method, path, statusLabel).Observe(time.Since(start).Seconds())
		if status == 503 {
			httpUnavailableTotal.WithLabelValues(path).Inc()
		}
	}
}

// PrometheusHandler Prometheus 指标端点处理器
func PrometheusHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
