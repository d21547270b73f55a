package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "interviewd",
		Name:      "bookings_total",
		Help:      "Booking attempts by outcome.",
	}, []string{"outcome"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "interviewd",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "status"})
)

const (
	outcomeScheduled = "scheduled"
	outcomeConflict  = "conflict"
	outcomeContended = "contended"
	outcomeError     = "error"
)

func observeRequests(c *fiber.Ctx) error {
	started := time.Now()
	err := c.Next()

	route := c.Route().Path
	requestDuration.
		WithLabelValues(route, strconv.Itoa(c.Response().StatusCode())).
		Observe(time.Since(started).Seconds())

	return err
}
