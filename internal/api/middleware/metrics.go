package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/folio-backend/internal/metrics"
)

// Metrics records Prometheus request counters and latency histograms.
// Requests are labelled by route template to keep cardinality bounded.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			path := routePath(c)
			method := c.Request().Method

			metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// routePath returns the matched route template, or "unmatched"
func routePath(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	return "unmatched"
}
