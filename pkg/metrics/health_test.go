package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cuemby/relay/pkg/raftcore"
	"github.com/stretchr/testify/require"
)

func resetHealthChecker() {
	healthChecker = &HealthChecker{
		components: make(map[string]ComponentHealth),
		startTime:  time.Now(),
	}
}

// newUnstartedRaftNode builds a real zero-peer *raftcore.Node sharing
// newTestCollector's noopTransport, without calling Start(), so term stays 0
// and no leader is ever known.
func newUnstartedRaftNode(t *testing.T) *raftcore.Node {
	t.Helper()
	_, node := newTestCollector(t)
	return node
}

// newElectedRaftNode builds a real zero-peer *raftcore.Node, starts it, and
// waits for it to self-elect leader (a lone node always wins its own
// election once started).
func newElectedRaftNode(t *testing.T) *raftcore.Node {
	t.Helper()
	node := newUnstartedRaftNode(t)
	node.Start()
	t.Cleanup(node.Stop)
	require.Eventually(t, node.IsLeader, 2*time.Second, 5*time.Millisecond, "node never became leader")
	return node
}

func TestRegisterComponent(t *testing.T) {
	resetHealthChecker()

	RegisterComponent("test-component", true, "running")

	if len(healthChecker.components) != 1 {
		t.Errorf("expected 1 component, got %d", len(healthChecker.components))
	}

	comp := healthChecker.components["test-component"]
	if !comp.Healthy {
		t.Error("component should be healthy")
	}

	if comp.Message != "running" {
		t.Errorf("expected message 'running', got '%s'", comp.Message)
	}
}

func TestGetHealth_AllHealthy(t *testing.T) {
	resetHealthChecker()
	healthChecker.version = "1.0.0"

	RegisterComponent("api", true, "")
	RegisterRaftNode(newElectedRaftNode(t), 100)

	health := GetHealth()

	if health.Status != "healthy" {
		t.Errorf("expected status 'healthy', got '%s'", health.Status)
	}

	if len(health.Components) != 2 {
		t.Errorf("expected 2 components, got %d", len(health.Components))
	}

	if health.Version != "1.0.0" {
		t.Errorf("expected version '1.0.0', got '%s'", health.Version)
	}
}

func TestGetHealth_OneUnhealthy(t *testing.T) {
	resetHealthChecker()

	RegisterComponent("api", true, "")
	RegisterComponent("storage", false, "not connected")

	health := GetHealth()

	if health.Status != "unhealthy" {
		t.Errorf("expected status 'unhealthy', got '%s'", health.Status)
	}

	if health.Components["storage"] != "unhealthy: not connected" {
		t.Errorf("unexpected storage status: %s", health.Components["storage"])
	}
}

// TestGetHealth_RaftNodeNeverElected covers a node registered before it has
// ever won an election: term 0, no leader known, so the raft component is
// reported unhealthy rather than silently "healthy" until someone remembers
// to flip a boolean.
func TestGetHealth_RaftNodeNeverElected(t *testing.T) {
	resetHealthChecker()

	RegisterRaftNode(newUnstartedRaftNode(t), 100)

	health := GetHealth()

	if health.Status != "unhealthy" {
		t.Errorf("expected status 'unhealthy', got '%s'", health.Status)
	}
	if health.Components["raft"] == "" {
		t.Error("expected a raft component message")
	}
}

// TestGetHealth_RaftCommitLagDegradesButStaysHealthy exercises the
// commit-lag threshold: a freshly elected leader with an empty log has
// commitIndex -1 and lastApplied -1 (lag 0), so a lag limit of 0 puts it
// at the threshold and reports it as degraded in the message while
// overall status stays "healthy" — a stuck applier is a readiness
// concern, not a liveness failure.
func TestGetHealth_RaftCommitLagDegradesButStaysHealthy(t *testing.T) {
	resetHealthChecker()

	RegisterRaftNode(newElectedRaftNode(t), 0)

	health := GetHealth()

	if health.Status != "healthy" {
		t.Errorf("expected status 'healthy' even when lagging, got '%s'", health.Status)
	}
	if got := health.Components["raft"]; got == "" {
		t.Error("expected a raft component message")
	} else if !strings.Contains(got, "degraded") {
		t.Errorf("expected a degraded raft message, got %q", got)
	}
}

func TestGetReadiness_AllReady(t *testing.T) {
	resetHealthChecker()

	RegisterRaftNode(newElectedRaftNode(t), 100)
	RegisterComponent("storage", true, "")
	RegisterComponent("rpcapi", true, "")

	readiness := GetReadiness()

	if readiness.Status != "ready" {
		t.Errorf("expected status 'ready', got '%s'", readiness.Status)
	}
}

func TestGetReadiness_MissingCriticalComponent(t *testing.T) {
	resetHealthChecker()

	RegisterComponent("api", true, "")
	// raft, storage, rpcapi not registered

	readiness := GetReadiness()

	if readiness.Status != "not_ready" {
		t.Errorf("expected status 'not_ready', got '%s'", readiness.Status)
	}

	if readiness.Message == "" {
		t.Error("expected message explaining why not ready")
	}
}

// TestGetReadiness_RaftNoLeaderNotReady covers the readiness-gating case the
// "raft" critical component exists for: a node that has never completed an
// election must block readiness, not just liveness.
func TestGetReadiness_RaftNoLeaderNotReady(t *testing.T) {
	resetHealthChecker()

	RegisterRaftNode(newUnstartedRaftNode(t), 100)
	RegisterComponent("storage", true, "")
	RegisterComponent("rpcapi", true, "")

	readiness := GetReadiness()

	if readiness.Status != "not_ready" {
		t.Errorf("expected status 'not_ready', got '%s'", readiness.Status)
	}
}

func TestGetReadiness_CriticalComponentUnhealthy(t *testing.T) {
	resetHealthChecker()

	RegisterRaftNode(newElectedRaftNode(t), 100)
	RegisterComponent("storage", false, "disk full")
	RegisterComponent("rpcapi", true, "")

	readiness := GetReadiness()

	if readiness.Status != "not_ready" {
		t.Errorf("expected status 'not_ready', got '%s'", readiness.Status)
	}
}

func TestHealthHandler(t *testing.T) {
	resetHealthChecker()
	healthChecker.version = "test"

	RegisterComponent("test", true, "")

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	handler := HealthHandler()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var health HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&health); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if health.Status != "healthy" {
		t.Errorf("expected healthy status, got %s", health.Status)
	}

	if health.Version != "test" {
		t.Errorf("expected version 'test', got %s", health.Version)
	}
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	resetHealthChecker()

	RegisterRaftNode(newUnstartedRaftNode(t), 100)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	handler := HealthHandler()
	handler(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}

	var health HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&health); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if health.Status != "unhealthy" {
		t.Errorf("expected unhealthy status, got %s", health.Status)
	}
}

func TestReadyHandler(t *testing.T) {
	resetHealthChecker()

	RegisterRaftNode(newElectedRaftNode(t), 100)
	RegisterComponent("storage", true, "")
	RegisterComponent("rpcapi", true, "")

	req := httptest.NewRequest("GET", "/ready", nil)
	w := httptest.NewRecorder()

	handler := ReadyHandler()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var readiness HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&readiness); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if readiness.Status != "ready" {
		t.Errorf("expected ready status, got %s", readiness.Status)
	}
}

func TestReadyHandler_NotReady(t *testing.T) {
	resetHealthChecker()

	RegisterComponent("api", true, "")
	// raft not registered

	req := httptest.NewRequest("GET", "/ready", nil)
	w := httptest.NewRecorder()

	handler := ReadyHandler()
	handler(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}

	var readiness HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&readiness); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if readiness.Status != "not_ready" {
		t.Errorf("expected not_ready status, got %s", readiness.Status)
	}
}

func TestLivenessHandler(t *testing.T) {
	resetHealthChecker()

	req := httptest.NewRequest("GET", "/live", nil)
	w := httptest.NewRecorder()

	handler := LivenessHandler()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response["status"] != "alive" {
		t.Errorf("expected status 'alive', got '%s'", response["status"])
	}

	if response["uptime"] == "" {
		t.Error("uptime should not be empty")
	}
}

func TestUpdateComponent(t *testing.T) {
	resetHealthChecker()

	RegisterComponent("test", true, "ok")
	UpdateComponent("test", false, "error")

	comp := healthChecker.components["test"]
	if comp.Healthy {
		t.Error("component should be unhealthy after update")
	}

	if comp.Message != "error" {
		t.Errorf("expected message 'error', got '%s'", comp.Message)
	}
}
