/*
Package apply implements the Command Applier: the single place a
committed log entry turns into an actual mutation of account, message,
and session state, applied once, in order, and never out of sequence.

# Architecture

	┌─────────────────────────── APPLIER ───────────────────────────┐
	│                                                                  │
	│   raftcore.Node.applyCommitted() calls, in log order:          │
	│                     │                                            │
	│                     ▼                                           │
	│   Apply(index, *types.LogEntry)                                │
	│       │                                                          │
	│       ├─ opID already in the ops dedup table? -> skip, only     │
	│       │  lastApplied advances (e.g. the log replayed at start) │
	│       │                                                          │
	│       ▼ dispatch(cmd) switches on cmd.Kind                      │
	│   ┌───────────────────────────────────────────────────┐        │
	│   │ applyCreateAccount / applyDeleteAccount /           │        │
	│   │ applySendMessage / applyMarkRead /                  │        │
	│   │ applyReadMessages / applyDeleteMessage /            │        │
	│   │ applyLogin                                          │        │
	│   └───────┬──────────────────────────┬─────────────────┘        │
	│           ▼                          ▼                           │
	│   pkg/state (in-memory,       pkg/storage (durable,              │
	│   what reads are served from)  survives a restart)               │
	│                     │                                            │
	│                     ▼                                            │
	│   store.MarkOpApplied(opID); results[opID] = value;            │
	│   lastApplied = index                                          │
	└────────────────────────────────────────────────────────────────────┘

# Determinism and ordering

Apply is only ever called with strictly increasing index values, one at
a time, by raftcore.Node's single apply loop — there is no concurrent
entry into dispatch. Every apply* method is a deterministic function of
its payload and current state: no clock reads, no randomness, nothing
that could make the same committed entry produce different results on
two different replicas. (Login is the one exception worth noting: the
session token and expiry are generated once on the leader before
Propose, carried inside the LoginPayload itself, and merely installed
identically by every replica's applyLogin — the nondeterministic part
never crosses the log.)

# Result cache and de-duplication

Result(opID) returns whatever dispatch produced for that op, so
pkg/facade's commit-wait caller can map a just-applied index back to a
response value without re-deriving it. The same opID is also recorded
in storage.Store's ops bucket (MarkOpApplied/IsOpApplied) before Apply
returns, so a log entry whose opID is already recorded — for instance
when a restarted node replays its log over state it already persisted —
is skipped rather than applied twice. The opID is a fresh uuid minted by
pkg/facade for each proposal; requests carry no op id of their own, so a
client that resends a request after a commit-wait timeout produces a new
opID, and the table does not recognise the resend as a duplicate. The
in-memory results map only survives for the lifetime of the process.

# Per-command semantics

applyCreateAccount/applyDeleteAccount mutate pkg/state's user index and
the Durable Store's users bucket together; delete does not cascade to
messages (an explicit open-question resolution — dangling sender/
receiver ids are expected and handled at read time). applySendMessage
records each user as the other's conversant and appends the message to
the receiver's unread queue only. applyReadMessages pops up to
n unread ids in FIFO order and is silent, not an error, if fewer than n
are unread. applyMarkRead/applyDeleteMessage are no-ops (not errors) on
a missing message id, matching the idempotent-retry requirement above.

# Exported surface

	type Applier struct{ ... }
	func New(store storage.Store, st *state.State) *Applier
	func (a *Applier) Apply(index uint64, entry *types.LogEntry) error
	func (a *Applier) Result(opID string) (interface{}, bool)
	func (a *Applier) LastApplied() uint64

# Testing

applier_test.go drives Apply against a real storage.BoltStore (a temp
directory per test) and a real state.State, not fakes, covering account
creation, send/read/delete message flows, duplicate-opID idempotency,
delete-does-not-cascade, and unknown-command-kind errors.
*/
package apply
