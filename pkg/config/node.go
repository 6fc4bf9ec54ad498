package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Node holds one replica's own runtime tunables. Every field is optional;
// zero values fall back to pkg/raftcore's and pkg/log's own defaults.
// CLI flags on cmd/relayd take precedence over whatever this file sets.
type Node struct {
	LogLevel  string `yaml:"log_level"`
	LogJSON   bool   `yaml:"log_json"`
	DataDir   string `yaml:"data_dir"`

	ElectionTimeoutMin time.Duration `yaml:"election_timeout_min"`
	ElectionTimeoutMax time.Duration `yaml:"election_timeout_max"`
	HeartbeatInterval  time.Duration `yaml:"heartbeat_interval"`
	RPCTimeout         time.Duration `yaml:"rpc_timeout"`
	CommitWaitTimeout  time.Duration `yaml:"commit_wait_timeout"`
}

// LoadNode reads and parses a node.yaml file. A missing file is not an
// error — it returns the zero Node, letting every tunable fall back to
// its package default.
func LoadNode(path string) (Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Node{}, nil
		}
		return Node{}, fmt.Errorf("config: read node file: %w", err)
	}
	var n Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return Node{}, fmt.Errorf("config: parse node file: %w", err)
	}
	return n, nil
}
