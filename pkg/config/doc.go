/*
Package config loads the two files a Relay node starts from: the cluster
membership map, identical on every node and every client, and a node's
own local runtime tunables.

# Architecture

	┌──────────────────────────── CONFIG ────────────────────────────┐
	│                                                                   │
	│   cluster.json  (map[string]string, node id -> host:port)       │
	│        │  encoding/json                                         │
	│        ▼                                                         │
	│   Cluster.Peers(selfID) -> map[string]string minus selfID       │
	│        │  fed into raftcore.Config.Peers / rpcapi.NewPeerClient │
	│                                                                   │
	│   node.yaml  (optional; log level, data dir, timeouts)          │
	│        │  gopkg.in/yaml.v3                                      │
	│        ▼                                                         │
	│   Node{...}  zero value == every tunable falls back to its      │
	│               package's own default (raftcore.Config.withDefaults,│
	│               log.Init's defaults)                               │
	└────────────────────────────────────────────────────────────────────┘

cmd/relayd's run subcommand loads both before constructing anything
else; CLI flags (--data-dir, --log-level) override whatever node.yaml
sets, which in turn overrides each package's own zero-value default.

# Cluster membership

Cluster is a plain map[string]string keyed by node id. LoadCluster reads
and json.Unmarshals the file directly — spec §6 mandates this exact
shape and encoding, so there is no schema beyond "valid JSON object of
strings to strings". Peers(selfID) returns every entry except selfID,
the map raftcore.Config and rpcapi.NewPeerClient both expect.

# Node-local config

Node carries the tunables spec.md leaves to the implementation: log
level/format, data directory, election timeout range, heartbeat
interval, RPC dial timeout, and the commit-wait bound pkg/facade uses.
LoadNode treats a missing file as "use every default" rather than an
error, since a single-node demo cluster needs no node.yaml at all.

# Exported surface

	type Cluster map[string]string
	func LoadCluster(path string) (Cluster, error)
	func (c Cluster) Peers(selfID string) map[string]string

	type Node struct {
		LogLevel, LogJSON, DataDir                                      string/bool/string
		ElectionTimeoutMin, ElectionTimeoutMax, HeartbeatInterval,
		RPCTimeout, CommitWaitTimeout                                   time.Duration
	}
	func LoadNode(path string) (Node, error)
*/
package config
