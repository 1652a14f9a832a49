package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cft_http_requests_total",
	Help: "The total number of HTTP requests by method, route and status",
}, []string{"method", "route", "status"})

var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "cft_http_request_duration_seconds",
	Help:    "Duration of HTTP requests in seconds",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "route"})

// WorkflowTransitions counts terminal transitions of pending rows.
// kind is "project" or "document"; outcome is "approved" or "rejected".
var WorkflowTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cft_pending_transitions_total",
	Help: "The total number of pending submissions approved or rejected",
}, []string{"kind", "outcome"})

var Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cft_pending_submissions_total",
	Help: "The total number of public submissions received",
}, []string{"kind"})

var UploadedBytes = promauto.NewCounter(prometheus.CounterOpts{
	Name: "cft_uploaded_bytes_total",
	Help: "The total number of bytes written to the upload directory",
})

// Middleware records request counts and latencies keyed by the matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
