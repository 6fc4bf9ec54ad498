package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadCluster(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{
			name:    "valid membership map",
			content: `{"n1": "127.0.0.1:7001", "n2": "127.0.0.1:7002"}`,
		},
		{
			name:    "empty map is rejected",
			content: `{}`,
			wantErr: true,
		},
		{
			name:    "malformed json is rejected",
			content: `not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.name+".json", tt.content)
			c, err := LoadCluster(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "127.0.0.1:7001", c["n1"])
			assert.Equal(t, "127.0.0.1:7002", c["n2"])
		})
	}
}

func TestLoadCluster_MissingFile(t *testing.T) {
	_, err := LoadCluster(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestClusterPeers(t *testing.T) {
	c := Cluster{
		"n1": "127.0.0.1:7001",
		"n2": "127.0.0.1:7002",
		"n3": "127.0.0.1:7003",
	}

	peers := c.Peers("n1")

	assert.Len(t, peers, 2)
	assert.NotContains(t, peers, "n1")
	assert.Equal(t, "127.0.0.1:7002", peers["n2"])
	assert.Equal(t, "127.0.0.1:7003", peers["n3"])
}

func TestClusterPeers_SingleNode(t *testing.T) {
	c := Cluster{"n1": "127.0.0.1:7001"}
	assert.Empty(t, c.Peers("n1"))
}
