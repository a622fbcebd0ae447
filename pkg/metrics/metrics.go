package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Business metrics
	ReferralSignups     prometheus.Counter
	ReferralConversions prometheus.Counter
	CheckoutSessions    *prometheus.CounterVec
	ContactSubmissions  prometheus.Counter
	WebhookEvents       *prometheus.CounterVec
	EmailsSent          *prometheus.CounterVec
	LoginAttempts       *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	m := &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		// Business metrics
		ReferralSignups: promauto.NewCounter(prometheus.CounterOpts{
			Name: "referral_signups_total",
			Help: "Total number of referral program signups",
		}),
		ReferralConversions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "referral_conversions_total",
			Help: "Total number of referral-attributed bookings",
		}),
		CheckoutSessions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_sessions_total",
				Help: "Total number of checkout sessions created",
			},
			[]string{"product"},
		),
		ContactSubmissions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Total number of contact form submissions",
		}),
		WebhookEvents: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_events_total",
				Help: "Total number of webhook events received",
			},
			[]string{"outcome"}, // recorded, duplicate, no_referral, ignored, error
		),
		EmailsSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emails_sent_total",
				Help: "Total number of notification emails attempted",
			},
			[]string{"status"}, // sent, failed
		),
		LoginAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "login_attempts_total",
				Help: "Total number of admin login attempts",
			},
			[]string{"status"}, // success, failed
		),
	}

	return m
}

// Middleware creates an Echo middleware for Prometheus metrics
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			path := c.Path() // Use route pattern, not actual path

			err := next(c)

			status := c.Response().Status
			duration := time.Since(start).Seconds()

			m.HTTPRequestsTotal.WithLabelValues(req.Method, path, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(req.Method, path, strconv.Itoa(status)).Observe(duration)

			return err
		}
	}
}

// RecordReferralSignup increments the referral signup counter
func (m *Metrics) RecordReferralSignup() {
	m.ReferralSignups.Inc()
}

// RecordReferralConversion increments the referral conversion counter
func (m *Metrics) RecordReferralConversion() {
	m.ReferralConversions.Inc()
}

// RecordCheckoutSession increments the checkout session counter
func (m *Metrics) RecordCheckoutSession(product string) {
	m.CheckoutSessions.WithLabelValues(product).Inc()
}

// RecordContactSubmission increments the contact submission counter
func (m *Metrics) RecordContactSubmission() {
	m.ContactSubmissions.Inc()
}

// RecordWebhookEvent increments the webhook event counter
func (m *Metrics) RecordWebhookEvent(outcome string) {
	m.WebhookEvents.WithLabelValues(outcome).Inc()
}

// RecordLoginAttempt increments the login attempt counter
func (m *Metrics) RecordLoginAttempt(success bool) {
	status := "failed"
	if success {
		status = "success"
	}
	m.LoginAttempts.WithLabelValues(status).Inc()
}
