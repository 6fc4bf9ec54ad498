/*
Package log configures the process-wide zerolog logger and hands out
component- or node-scoped child loggers, so every Relay package logs
through the same sink and level without importing zerolog directly at
call sites or constructing its own writer.

# Architecture

	┌───────────────────────────── LOG ──────────────────────────────┐
	│                                                                   │
	│   init()  -> Init(Config{Level: InfoLevel})   (safe pre-main    │
	│              default, in case something logs before cmd/relayd  │
	│              parses flags)                                       │
	│                                                                   │
	│   cmd/relayd: Init(Config{Level: flag, JSONOutput: flag})        │
	│                     │                                             │
	│                     ▼                                            │
	│         package-level Logger zerolog.Logger                     │
	│          /                    \                                  │
	│   WithComponent(name)     WithNode(nodeID)                      │
	│   (used by pkg/rpcapi's    (used by cmd/relayd and by            │
	│    PeerClient)             raftcore.NewNode; stamps node_id)     │
	└────────────────────────────────────────────────────────────────────┘

# Sinks

Init switches between two zerolog writers depending on Config.JSONOutput:
a zerolog.ConsoleWriter (human-readable, RFC3339 timestamps, the default
for interactive/dev use) or a plain JSON stream (for production log
aggregation). Both always carry a Timestamp() field. Config.Output
defaults to os.Stdout but accepts any io.Writer, which is what tests use
to redirect logging to a buffer or io.Discard instead of spamming test
output.

# Levels

Level is a string enum (debug/info/warn/error) so it can come straight
off a CLI flag or a node.yaml field without a lookup table at the call
site; Init maps it onto zerolog's own Level type and calls
zerolog.SetGlobalLevel, which also gates zerolog's own internal
allocation-avoidance for disabled levels.

# Child loggers

Loggers are derived, not injected: no constructor takes a
zerolog.Logger. raftcore.NewNode builds its own with WithNode(cfg.NodeID),
and cmd/relayd does the same at startup, so their lines carry the node's
id. pkg/rpcapi's PeerClient uses WithComponent("peer-transport") and so
gets a "component" field on every line. The Command Applier and the
Durable Store do not log.

# Exported surface

	type Level string
	const (
		DebugLevel Level = "debug"
		InfoLevel  Level = "info"
		WarnLevel  Level = "warn"
		ErrorLevel Level = "error"
	)
	type Config struct {
		Level      Level
		JSONOutput bool
		Output     io.Writer
	}
	var Logger zerolog.Logger
	func Init(cfg Config)
	func WithComponent(component string) zerolog.Logger
	func WithNode(nodeID string) zerolog.Logger
*/
package log
