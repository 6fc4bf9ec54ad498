package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Cluster is the membership map every node and client loads identically:
// node id -> host:port.
type Cluster map[string]string

// LoadCluster reads and parses a cluster.json file.
func LoadCluster(path string) (Cluster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read cluster file: %w", err)
	}
	var c Cluster
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parse cluster file: %w", err)
	}
	if len(c) == 0 {
		return nil, fmt.Errorf("config: cluster file %s defines no nodes", path)
	}
	return c, nil
}

// Peers returns every member's address except selfID, for wiring
// raftcore.Config.Peers.
func (c Cluster) Peers(selfID string) map[string]string {
	peers := make(map[string]string, len(c)-1)
	for id, addr := range c {
		if id != selfID {
			peers[id] = addr
		}
	}
	return peers
}
