package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cuemby/relay/pkg/raftcore"
)

// HealthStatus represents the health status of a component
type HealthStatus struct {
	Status     string            `json:"status"` // "healthy", "degraded", "unhealthy"
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components,omitempty"`
	Message    string            `json:"message,omitempty"`
	Version    string            `json:"version,omitempty"`
	Uptime     string            `json:"uptime,omitempty"`
	StartTime  time.Time         `json:"-"`
}

var (
	healthChecker = &HealthChecker{
		components: make(map[string]ComponentHealth),
		startTime:  time.Now(),
	}
)

// ComponentHealth tracks the health of a single component
type ComponentHealth struct {
	Name    string
	Healthy bool
	Message string
	Updated time.Time
}

// HealthChecker manages health checks for various components. Most
// components (storage, rpcapi) are plain registered booleans, but the
// Raft Core component is computed live from a *raftcore.Node so that a
// stuck Command Applier or a lost election shows up without anyone
// having to remember to call UpdateComponent after every tick.
type HealthChecker struct {
	mu         sync.RWMutex
	components map[string]ComponentHealth
	startTime  time.Time
	version    string

	raftNode     *raftcore.Node
	raftLagLimit int64
}

// SetVersion sets the version string for health responses
func SetVersion(version string) {
	healthChecker.mu.Lock()
	defer healthChecker.mu.Unlock()
	healthChecker.version = version
}

// RegisterComponent registers a component for health checking
func RegisterComponent(name string, healthy bool, message string) {
	healthChecker.mu.Lock()
	defer healthChecker.mu.Unlock()

	healthChecker.components[name] = ComponentHealth{
		Name:    name,
		Healthy: healthy,
		Message: message,
		Updated: time.Now(),
	}
}

// UpdateComponent updates the health status of a component
func UpdateComponent(name string, healthy bool, message string) {
	RegisterComponent(name, healthy, message) // Same implementation
}

// RegisterRaftNode wires the "raft" health component to live Raft Core
// state instead of a fixed boolean registered once at startup. A node is
// unhealthy only while its term is still 0 and it is not leader, i.e. it
// has neither started nor observed an election; otherwise it is healthy unless
// its Command Applier has fallen lagLimit or more entries behind the
// commit index, which is reported as degraded-but-ready — a real but
// recoverable symptom, not a reason to fail liveness.
func RegisterRaftNode(node *raftcore.Node, lagLimit int64) {
	healthChecker.mu.Lock()
	defer healthChecker.mu.Unlock()
	healthChecker.raftNode = node
	healthChecker.raftLagLimit = lagLimit
}

// raftComponentLocked computes the current "raft" component, or reports
// ok=false if no node has been registered yet (falls back to whatever
// RegisterComponent("raft", ...) set, if anything). Caller must hold
// healthChecker.mu for reading.
func raftComponentLocked() (ComponentHealth, bool) {
	node := healthChecker.raftNode
	if node == nil {
		return ComponentHealth{}, false
	}

	term := node.Term()
	commit := node.CommitIndex()
	applied := node.LastApplied()
	lag := commit - applied

	role := "follower"
	if node.IsLeader() {
		role = "leader"
	}

	healthy := term > 0 || node.IsLeader()
	msg := fmt.Sprintf("%s, term=%d, commit_lag=%d", role, term, lag)
	if healthy && lag >= healthChecker.raftLagLimit {
		msg = fmt.Sprintf("%s, term=%d, commit_lag=%d (degraded: applier behind by %d)", role, term, lag, lag)
	}
	if !healthy {
		msg = fmt.Sprintf("no leader elected yet, term=%d", term)
	}

	return ComponentHealth{Name: "raft", Healthy: healthy, Message: msg, Updated: time.Now()}, true
}

// GetHealth returns the overall health status
func GetHealth() HealthStatus {
	healthChecker.mu.RLock()
	defer healthChecker.mu.RUnlock()

	status := "healthy"
	components := make(map[string]string)

	if raft, ok := raftComponentLocked(); ok {
		if !raft.Healthy {
			status = "unhealthy"
		}
		components["raft"] = raft.Message
	}

	for name, comp := range healthChecker.components {
		if name == "raft" && healthChecker.raftNode != nil {
			continue // superseded by the live raftComponentLocked check above
		}
		if !comp.Healthy {
			status = "unhealthy"
			components[name] = "unhealthy: " + comp.Message
		} else {
			components[name] = "healthy"
		}
	}

	uptime := time.Since(healthChecker.startTime)

	return HealthStatus{
		Status:     status,
		Timestamp:  time.Now(),
		Components: components,
		Version:    healthChecker.version,
		Uptime:     uptime.String(),
		StartTime:  healthChecker.startTime,
	}
}

// GetReadiness returns readiness status (checks if critical components are ready)
func GetReadiness() HealthStatus {
	healthChecker.mu.RLock()
	defer healthChecker.mu.RUnlock()

	status := "ready"
	message := ""
	components := make(map[string]string)

	criticalComponents := []string{"raft", "storage", "rpcapi"}

	for _, name := range criticalComponents {
		if name == "raft" {
			if raft, ok := raftComponentLocked(); ok {
				if !raft.Healthy {
					status = "not_ready"
					message = "waiting for raft leader election"
				}
				components["raft"] = raft.Message
				continue
			}
		}

		if comp, exists := healthChecker.components[name]; exists {
			if !comp.Healthy {
				status = "not_ready"
				message = "waiting for " + name
				components[name] = "not ready: " + comp.Message
			} else {
				components[name] = "ready"
			}
		} else {
			status = "not_ready"
			message = "waiting for " + name + " initialization"
			components[name] = "not registered"
		}
	}

	uptime := time.Since(healthChecker.startTime)

	return HealthStatus{
		Status:     status,
		Timestamp:  time.Now(),
		Components: components,
		Message:    message,
		Version:    healthChecker.version,
		Uptime:     uptime.String(),
		StartTime:  healthChecker.startTime,
	}
}

// HealthHandler returns an HTTP handler for the /health endpoint
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := GetHealth()

		w.Header().Set("Content-Type", "application/json")

		statusCode := http.StatusOK
		if health.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}
		w.WriteHeader(statusCode)

		_ = json.NewEncoder(w).Encode(health)
	}
}

// ReadyHandler returns an HTTP handler for the /ready endpoint
func ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		readiness := GetReadiness()

		w.Header().Set("Content-Type", "application/json")

		statusCode := http.StatusOK
		if readiness.Status != "ready" {
			statusCode = http.StatusServiceUnavailable
		}
		w.WriteHeader(statusCode)

		_ = json.NewEncoder(w).Encode(readiness)
	}
}

// LivenessHandler returns a simple liveness check (always returns 200 if process is running)
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "alive",
			"uptime": time.Since(healthChecker.startTime).String(),
		})
	}
}
