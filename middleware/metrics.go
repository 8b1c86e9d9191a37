// middleware/metrics.go
package middleware

import (
	"strconv"
	"time"

	"github.com/Sarthaklad1034/HackMatrix/metrics"
	"github.com/gofiber/fiber/v2"
)

// Metrics records request counts and latency by route pattern.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := c.Method()
		metrics.RequestInProgress.WithLabelValues(method).Inc()
		defer metrics.RequestInProgress.WithLabelValues(method).Dec()

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// the error handler has not written the response yet
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = statusFor(err)
			}
		}
		path := c.Route().Path
		if path == "" || path == "/" {
			path = "unmatched"
		}
		labels := []string{strconv.Itoa(status), method, path}
		metrics.RequestCounter.WithLabelValues(labels...).Inc()
		metrics.RequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return err
	}
}
