package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Raft Core metrics
	RaftIsLeader = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_raft_is_leader",
			Help: "Whether this node currently believes itself Raft leader (1) or not (0)",
		},
	)

	RaftTerm = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_raft_term",
			Help: "Current Raft term",
		},
	)

	RaftCommitIndex = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_raft_commit_index",
			Help: "Highest log index known to be committed",
		},
	)

	RaftAppliedIndex = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_raft_applied_index",
			Help: "Highest log index applied to the Application State",
		},
	)

	RaftPeersTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_raft_peers_total",
			Help: "Number of peers in this node's cluster, excluding itself",
		},
	)

	RaftElectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_raft_elections_total",
			Help: "Total number of elections this node has started",
		},
	)

	RaftApplyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_raft_apply_duration_seconds",
			Help:    "Time taken by the Command Applier to apply one log entry",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Service Façade metrics
	FacadeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_facade_requests_total",
			Help: "Total Messaging RPCs served, by method and error kind (\"ok\" on success)",
		},
		[]string{"method", "kind"},
	)

	FacadeRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_facade_request_duration_seconds",
			Help:    "Messaging RPC duration by method, including any commit-wait",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	FacadeCommitWaitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_facade_commit_wait_duration_seconds",
			Help:    "Time a mutating RPC spent blocked in WaitApplied",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Application State metrics
	UsersTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_users_total",
			Help: "Total number of accounts currently present",
		},
	)

	MessagesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_messages_total",
			Help: "Total number of messages currently present",
		},
	)

	SessionsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_sessions_total",
			Help: "Total number of non-expired sessions",
		},
	)
)

func init() {
	prometheus.MustRegister(RaftIsLeader)
	prometheus.MustRegister(RaftTerm)
	prometheus.MustRegister(RaftCommitIndex)
	prometheus.MustRegister(RaftAppliedIndex)
	prometheus.MustRegister(RaftPeersTotal)
	prometheus.MustRegister(RaftElectionsTotal)
	prometheus.MustRegister(RaftApplyDuration)

	prometheus.MustRegister(FacadeRequestsTotal)
	prometheus.MustRegister(FacadeRequestDuration)
	prometheus.MustRegister(FacadeCommitWaitDuration)

	prometheus.MustRegister(UsersTotal)
	prometheus.MustRegister(MessagesTotal)
	prometheus.MustRegister(SessionsTotal)
}

// Handler returns the Prometheus HTTP handler for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing an operation and observing its duration
// into a histogram once it completes.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time to histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed time to a label combination of histogram.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
