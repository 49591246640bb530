// Package metrics exposes request counters on a separate listener.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"
)

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "uproject_http_requests_total",
		Help: "HTTP requests by method, path template and status code.",
	},
	[]string{"method", "path", "status"},
)

// RequestCounter counts every handled request.
func RequestCounter() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		requestsTotal.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}

// Serve blocks serving /metrics on addr. Call in a goroutine.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		klog.Error("metrics server: ", err)
	}
}
