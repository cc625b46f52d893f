package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login tiers and outcomes.
const (
	TierMaster = "master"
	TierUser   = "user"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeRevoked = "revoked"
	OutcomeExpired = "expired"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

var (
	logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "starwars_auth_logins_total",
		Help: "Total number of login attempts by identity tier and outcome",
	}, []string{"tier", "outcome"})

	verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "starwars_auth_verifications_total",
		Help: "Total number of bearer token verifications by outcome",
	}, []string{"outcome"})

	revocations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "starwars_auth_revocations_total",
		Help: "Total number of tokens revoked through logout",
	})

	blacklistEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "starwars_auth_blacklist_entries",
		Help: "Number of revoked tokens currently held by the blacklist",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "starwars_http_requests_total",
		Help: "Total number of HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "starwars_http_request_duration_seconds",
		Help:    "Histogram of HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// RecordLogin counts a login attempt.
func RecordLogin(tier, outcome string) {
	logins.WithLabelValues(tier, outcome).Inc()
}

// RecordVerification counts a token verification.
func RecordVerification(outcome string) {
	verifications.WithLabelValues(outcome).Inc()
}

// RecordRevocation counts a logout.
func RecordRevocation() {
	revocations.Inc()
}

// SetBlacklistSize publishes the current blacklist size.
func SetBlacklistSize(n int) {
	blacklistEntries.Set(float64(n))
}

// Middleware records request counts and latency per route template.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if status < 400 {
					status = 500
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			httpRequests.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			httpDuration.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
