package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the identity core.
type Metrics struct {
	ProfilesResolved   *prometheus.CounterVec
	ProfilesCreated    prometheus.Counter
	ResolutionFallback *prometheus.CounterVec
	ResolutionLatency  prometheus.Histogram
	AuthFailures       prometheus.Counter
	SignIns            prometheus.Counter
	SignOuts           prometheus.Counter

	Heartbeats      prometheus.Counter
	OnlineUsers     prometheus.Gauge
	LivenessSwept   prometheus.Counter
	PresenceErrors  prometheus.Counter
	ListingsDenied  prometheus.Counter
	ListingsServed  *prometheus.CounterVec
	EndpointLatency *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ProfilesResolved: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chemconsole_profiles_resolved_total",
			Help: "Total number of profile resolutions, labeled by outcome (resolved, fallback, unauthenticated)",
		}, []string{"outcome"}),
		ProfilesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chemconsole_profiles_created_total",
			Help: "Total number of first-time profiles created during resolution",
		}),
		ResolutionFallback: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chemconsole_resolution_fallbacks_total",
			Help: "Total number of claim-synthesized profiles, labeled by cause (timeout, store_error)",
		}, []string{"cause"}),
		ResolutionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "chemconsole_resolution_latency_seconds",
			Help:    "Latency of profile resolution in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		AuthFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chemconsole_auth_failures_total",
			Help: "Total number of authentication failures",
		}),
		SignIns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chemconsole_sign_ins_total",
			Help: "Total number of successful sign-ins",
		}),
		SignOuts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chemconsole_sign_outs_total",
			Help: "Total number of sign-outs",
		}),
		Heartbeats: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chemconsole_heartbeats_total",
			Help: "Total number of presence heartbeats received",
		}),
		OnlineUsers: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "chemconsole_online_users",
			Help: "Current number of live presence records",
		}),
		LivenessSwept: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chemconsole_liveness_swept_total",
			Help: "Total number of liveness records removed by TTL sweeps",
		}),
		PresenceErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chemconsole_presence_errors_total",
			Help: "Total number of presence store errors degraded to empty results",
		}),
		ListingsDenied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chemconsole_listings_denied_total",
			Help: "Total number of directory listings rejected by the access gateway",
		}),
		ListingsServed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chemconsole_listings_served_total",
			Help: "Total number of directory listings served, labeled by actor role class",
		}, []string{"role_class"}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chemconsole_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

// IncrementResolved increments the resolution counter for an outcome.
func (m *Metrics) IncrementResolved(outcome string) {
	m.ProfilesResolved.WithLabelValues(outcome).Inc()
}

// IncrementFallback increments the fallback counter for a cause.
func (m *Metrics) IncrementFallback(cause string) {
	m.ResolutionFallback.WithLabelValues(cause).Inc()
}

func (m *Metrics) IncrementProfilesCreated() {
	m.ProfilesCreated.Inc()
}

func (m *Metrics) IncrementAuthFailures() {
	m.AuthFailures.Inc()
}

func (m *Metrics) IncrementSignIns() {
	m.SignIns.Inc()
}

func (m *Metrics) IncrementSignOuts() {
	m.SignOuts.Inc()
}

func (m *Metrics) IncrementHeartbeats() {
	m.Heartbeats.Inc()
}

func (m *Metrics) SetOnlineUsers(count int) {
	m.OnlineUsers.Set(float64(count))
}

func (m *Metrics) AddLivenessSwept(count int) {
	m.LivenessSwept.Add(float64(count))
}

func (m *Metrics) IncrementPresenceErrors() {
	m.PresenceErrors.Inc()
}

func (m *Metrics) IncrementListingsDenied() {
	m.ListingsDenied.Inc()
}

func (m *Metrics) IncrementListingsServed(roleClass string) {
	m.ListingsServed.WithLabelValues(roleClass).Inc()
}
