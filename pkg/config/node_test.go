package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadNode(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "node.yaml", `
log_level: debug
log_json: true
data_dir: /var/lib/relay
election_timeout_min: 150ms
election_timeout_max: 300ms
heartbeat_interval: 50ms
rpc_timeout: 150ms
commit_wait_timeout: 5s
`)

	n, err := LoadNode(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", n.LogLevel)
	assert.True(t, n.LogJSON)
	assert.Equal(t, "/var/lib/relay", n.DataDir)
	assert.Equal(t, 150*time.Millisecond, n.ElectionTimeoutMin)
	assert.Equal(t, 300*time.Millisecond, n.ElectionTimeoutMax)
	assert.Equal(t, 50*time.Millisecond, n.HeartbeatInterval)
	assert.Equal(t, 150*time.Millisecond, n.RPCTimeout)
	assert.Equal(t, 5*time.Second, n.CommitWaitTimeout)
}

func TestLoadNode_MissingFileIsNotAnError(t *testing.T) {
	n, err := LoadNode(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Node{}, n)
}

func TestLoadNode_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "node.yaml", "log_level: [unterminated")

	_, err := LoadNode(path)
	assert.Error(t, err)
}
