// Package metrics exposes Prometheus counters for the registration flow.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	SignupsStarted      *prometheus.CounterVec
	UsersRegistered     *prometheus.CounterVec
	OTPsSent            prometheus.Counter
	OTPDeliveryFailures prometheus.Counter
	IDCardsApproved     prometheus.Counter
	Logins              *prometheus.CounterVec
	PendingPurged       prometheus.Counter
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		SignupsStarted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sportsreg_signups_started_total",
			Help: "Signups staged, by verification method",
		}, []string{"method"}),
		UsersRegistered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sportsreg_users_registered_total",
			Help: "Pending signups promoted to users, by verification method",
		}, []string{"method"}),
		OTPsSent: f.NewCounter(prometheus.CounterOpts{
			Name: "sportsreg_otps_sent_total",
			Help: "One-time codes handed to the mailer successfully",
		}),
		OTPDeliveryFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "sportsreg_otp_delivery_failures_total",
			Help: "One-time codes the mailer failed to deliver",
		}),
		IDCardsApproved: f.NewCounter(prometheus.CounterOpts{
			Name: "sportsreg_id_cards_approved_total",
			Help: "University ID cards approved by an administrator",
		}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sportsreg_logins_total",
			Help: "Login attempts, by result",
		}, []string{"result"}),
		PendingPurged: f.NewCounter(prometheus.CounterOpts{
			Name: "sportsreg_pending_purged_total",
			Help: "Expired pending signups removed by the purge loop",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sportsreg_http_requests_total",
			Help: "HTTP requests, by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sportsreg_http_request_duration_seconds",
			Help:    "HTTP request latency, by route",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route"}),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) IncSignupStarted(method string) {
	if m == nil {
		return
	}
	m.SignupsStarted.WithLabelValues(method).Inc()
}

func (m *Metrics) IncUserRegistered(method string) {
	if m == nil {
		return
	}
	m.UsersRegistered.WithLabelValues(method).Inc()
}

func (m *Metrics) IncOTPSent() {
	if m == nil {
		return
	}
	m.OTPsSent.Inc()
}

func (m *Metrics) IncOTPDeliveryFailure() {
	if m == nil {
		return
	}
	m.OTPDeliveryFailures.Inc()
}

func (m *Metrics) IncIDCardApproved() {
	if m == nil {
		return
	}
	m.IDCardsApproved.Inc()
}

// IncLogin records a login attempt. result is "success" or "failure".
func (m *Metrics) IncLogin(result string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(result).Inc()
}

func (m *Metrics) AddPendingPurged(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.PendingPurged.Add(float64(n))
}

// ObserveHTTP records one served request. Call with time.Now() taken before the handler ran.
func (m *Metrics) ObserveHTTP(method, route string, status int, start time.Time) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
}
