/*
Package metrics exposes Relay's Prometheus surface and the
health/readiness/liveness HTTP handlers a node serves alongside it.

# Architecture

	┌──────────────────────────── METRICS ───────────────────────────┐
	│                                                                   │
	│   metrics.go: package-var-block + init() registration          │
	│     Raft gauges: RaftIsLeader, RaftTerm, RaftCommitIndex,       │
	│       RaftAppliedIndex, RaftPeersTotal                          │
	│     Raft counters/histograms: RaftElectionsTotal,               │
	│       RaftApplyDuration                                         │
	│     Façade: FacadeRequestsTotal, FacadeRequestDuration,         │
	│       FacadeCommitWaitDuration                                  │
	│     State sizes: UsersTotal, MessagesTotal, SessionsTotal       │
	│                                                                   │
	│   collector.go: Collector                                       │
	│     ticker (15s) -> collect() -> reads *raftcore.Node and       │
	│     *state.State, sets the gauges above                         │
	│                                                                   │
	│   health.go: HealthChecker                                      │
	│     static components (storage, rpcapi): RegisterComponent      │
	│     "raft" component: live, computed from a registered          │
	│       *raftcore.Node (RegisterRaftNode) on every request        │
	│     GetHealth/GetReadiness -> HTTP handlers -> /health /ready /live│
	└────────────────────────────────────────────────────────────────────┘

# Prometheus surface

Every metric is a package-level var, registered once in init() — the
idiomatic client_golang shape, as opposed to a struct carrying its own
registry.
Handler() returns promhttp's standard handler for the /metrics scrape
endpoint. Timer is a small stopwatch helper: NewTimer() captures a start
time, Duration() returns elapsed time, and ObserveDuration/
ObserveDurationVec report that elapsed time directly into a given
histogram (or vector, keyed by a label such as RPC method name) so
call sites don't each re-derive time.Since(start).Seconds().

Only the gauges are fed at run time (by the Collector below).
RaftElectionsTotal, RaftApplyDuration, FacadeRequestsTotal,
FacadeRequestDuration and FacadeCommitWaitDuration are registered and
scraped, but no package in this module increments or observes them, so
they stay at zero.

# Collector

Collector polls rather than being pushed to: Raft Core and Application
State don't emit events on every change, so a ticker-driven Start/Stop/
collect loop reads their current values every 15 seconds and writes them
into the gauges above. This trades a small reporting delay for not
having to instrument every single internal state transition.

# Health checking

HealthChecker tracks named components. Most (storage, rpcapi) are a
plain registered boolean set once at startup via RegisterComponent —
there's no cheap way to continuously verify "is bbolt open" beyond
"did opening it fail". The "raft" component is different: RegisterRaftNode
wires in a live *raftcore.Node, and raftComponentLocked recomputes its
health on every call from the node's actual term, leadership, and
commit/applied indices, rather than trusting whatever boolean was true
at startup. See health.go's doc comments for the exact unhealthy/
degraded thresholds.

GetHealth (liveness-oriented: is anything failed) and GetReadiness
(readiness-oriented: are the handful of components traffic depends on,
named in criticalComponents, actually up) differ in which components
they weigh and how they phrase the result, matching the
liveness-vs-readiness distinction Kubernetes probes expect.

# Exported surface

	// Prometheus metrics (package vars, see metrics.go)
	var RaftIsLeader, RaftTerm, RaftCommitIndex, RaftAppliedIndex,
		RaftPeersTotal, RaftElectionsTotal prometheus.{Gauge,Counter}
	var RaftApplyDuration, FacadeRequestDuration, FacadeCommitWaitDuration prometheus.*Histogram*
	var FacadeRequestsTotal *prometheus.CounterVec
	var UsersTotal, MessagesTotal, SessionsTotal prometheus.Gauge
	func Handler() http.Handler
	type Timer struct{ ... }
	func NewTimer() *Timer
	func (t *Timer) Duration() time.Duration
	func (t *Timer) ObserveDuration(h prometheus.Histogram)
	func (t *Timer) ObserveDurationVec(h prometheus.ObserverVec, labels ...string)

	type Collector struct{ ... }
	func NewCollector(node *raftcore.Node, st *state.State, peerCount int) *Collector
	func (c *Collector) Start()
	func (c *Collector) Stop()

	type HealthStatus struct{ ... }
	type ComponentHealth struct{ ... }
	func SetVersion(version string)
	func RegisterComponent(name string, healthy bool, message string)
	func UpdateComponent(name string, healthy bool, message string)
	func RegisterRaftNode(node *raftcore.Node, lagLimit int64)
	func GetHealth() HealthStatus
	func GetReadiness() HealthStatus
	func HealthHandler() http.HandlerFunc
	func ReadyHandler() http.HandlerFunc
	func LivenessHandler() http.HandlerFunc
*/
package metrics
