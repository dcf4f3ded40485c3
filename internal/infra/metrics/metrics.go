// Package metrics exposes Prometheus collectors for auth and notification flows.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storehub_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storehub_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storehub_login_attempts_total",
		Help: "Login attempts by guard and result",
	}, []string{"guard", "result"})

	twoFactorChallenges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storehub_two_factor_challenges_total",
		Help: "Two-factor verifications by channel and result",
	}, []string{"channel", "result"})

	authorizationDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storehub_authorization_denials_total",
		Help: "Requests denied by the permission evaluator",
	}, []string{"guard", "permission"})

	notificationJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storehub_notification_jobs_total",
		Help: "Notification job attempts by outcome",
	}, []string{"outcome"})

	notificationJobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storehub_notification_job_duration_seconds",
		Help:    "Duration of notification job attempts",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	pdfCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storehub_pdf_cache_lookups_total",
		Help: "Rendered order document lookups by result",
	}, []string{"result"})

	dbPoolWaits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storehub_db_pool_waits_total",
		Help: "Connections the Postgres pool had to wait for",
	})

	dbPoolWaitSeconds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storehub_db_pool_wait_seconds_total",
		Help: "Time spent waiting for Postgres pool connections",
	})

	dbPoolInUse = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storehub_db_pool_in_use_connections",
		Help: "Postgres connections currently in use",
	})
)

// ObserveHTTPRequest records an HTTP request metric.
func ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, path, code).Inc()
	httpRequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

// ObserveLogin counts a login attempt. Result is one of authenticated, challenged, rejected or throttled.
func ObserveLogin(guard, result string) {
	loginAttempts.WithLabelValues(guard, result).Inc()
}

// ObserveTwoFactor counts a two-factor verification.
func ObserveTwoFactor(channel, result string) {
	twoFactorChallenges.WithLabelValues(channel, result).Inc()
}

// ObserveDenial counts a request rejected by the permission evaluator.
func ObserveDenial(guard, permission string) {
	authorizationDenials.WithLabelValues(guard, permission).Inc()
}

// ObserveJob records a notification job attempt.
func ObserveJob(outcome string, duration time.Duration) {
	notificationJobs.WithLabelValues(outcome).Inc()
	notificationJobDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// ObservePDFCache counts a rendered document lookup as hit or miss.
func ObservePDFCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	pdfCacheLookups.WithLabelValues(result).Inc()
}

// ObserveDBPool records pool waits since the previous sample and the current usage.
func ObserveDBPool(waits int64, waited time.Duration, inUse int) {
	dbPoolWaits.Add(float64(waits))
	dbPoolWaitSeconds.Add(waited.Seconds())
	dbPoolInUse.Set(float64(inUse))
}
