package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const routeKey = "route_name"

// Metrics are the application's prometheus collectors.
type Metrics struct {
	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	adminActions *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "webcourse_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"method", "route", "status"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "webcourse_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		adminActions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "webcourse_admin_action_rows_total",
			Help: "Rows touched by admin bulk actions",
		}, []string{"model", "action"}),
	}
}

// Handler records every request under its route name.
func (m *Metrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := RouteName(c)
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) AdminAction(model, action string, rows int64) {
	m.adminActions.WithLabelValues(model, action).Add(float64(rows))
}

// SetRouteName labels the request for logs and metrics when gin's own route is not the one that served it.
func SetRouteName(c *gin.Context, name string) {
	c.Set(routeKey, name)
}

// RouteName is the resolver route name, else gin's route pattern, else "unmatched".
func RouteName(c *gin.Context) string {
	if name := c.GetString(routeKey); name != "" {
		return name
	}
	if p := c.FullPath(); p != "" {
		return p
	}
	return "unmatched"
}
