package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics creates a middleware recording request counts and latency on
// the given meter. Instruments follow the semconv http.server names so
// the Prometheus exporter produces conventional series.
func Metrics(meter metric.Meter, logger *slog.Logger) gin.HandlerFunc {
	requests, err := meter.Int64Counter("http.server.request.count",
		metric.WithDescription("Number of HTTP requests handled"),
	)
	if err != nil {
		logger.Error("failed to create request counter", slog.String("error", err.Error()))
	}
	duration, err := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		logger.Error("failed to create duration histogram", slog.String("error", err.Error()))
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		attrs := metric.WithAttributes(
			attribute.String("http.request.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.String("http.response.status_code", strconv.Itoa(c.Writer.Status())),
		)

		ctx := c.Request.Context()
		if requests != nil {
			requests.Add(ctx, 1, attrs)
		}
		if duration != nil {
			duration.Record(ctx, time.Since(start).Seconds(), attrs)
		}
	}
}
