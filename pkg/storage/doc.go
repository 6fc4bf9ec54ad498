/*
Package storage provides the Durable Store, a bbolt-backed persistence
layer for a single Relay node: raft metadata, the replicated log, and the
applied application state (users, messages, sessions) plus an operation
de-duplication table.

# Architecture

	┌──────────────────── BOLTDB STORAGE ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            BoltStore                        │          │
	│  │  - File: <dataDir>/relay.db                 │          │
	│  │  - Format: B+tree with MVCC                 │          │
	│  │  - Transactions: ACID with fsync            │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │              Bucket Structure                │          │
	│  │  ┌────────────────────────────┐             │          │
	│  │  │ meta    (term, vote, commit)│             │          │
	│  │  │ log     (big-endian index)  │             │          │
	│  │  │ users   (User ID)           │             │          │
	│  │  │ messages(Message UID)       │             │          │
	│  │  │ sessions(User ID)           │             │          │
	│  │  │ ops     (op id, dedup)      │             │          │
	│  │  └────────────────────────────┘             │          │
	│  └────────────────────────────────────────────┘          │
	└────────────────────────────────────────────────────────┘

# Buckets

  - meta: raft term, votedFor and commitIndex, each under a fixed key
  - log: one entry per replicated log position, keyed by an 8-byte
    big-endian index so cursor order matches log order
  - users, messages, sessions: one JSON record per entity, keyed by id
  - ops: marks operation ids (assigned per proposal by the Service
    Façade) already applied, so an entry is never applied twice

# Transaction Model

Reads use db.View for concurrent, consistent snapshots; writes use
db.Update, serialized and fsynced on commit. Records are JSON, matching
the rest of the node's wire and storage formats.

# No tombstones

Deleting a user, message, or session is a hard delete: the bucket entry
is removed, full stop. There is no tombstones_user/tombstones_msg
bucket recording that an id once existed. This matches spec §4.3's
literal "Messages owned by the account are retained" (messages are
never deleted just because their sender or receiver account was), and
avoids a compaction problem a tombstone design would otherwise need to
solve for (a cluster that never gets told to forget a tombstone grows
its deleted-id bookkeeping forever). A DeleteUser/DeleteMessage/
DeleteSession call is the Command Applier's job (pkg/apply), not
BoltStore's: this package only ever does exactly what it's told.

# Exported surface

	type BoltStore struct{ ... }
	func NewBoltStore(dataDir string) (*BoltStore, error)
	func (s *BoltStore) Close() error

	// Store interface (pkg/storage/store.go) — raft metadata, log,
	// users, messages, sessions, op de-duplication — implemented by
	// *BoltStore and by any fake a test substitutes in its place.
*/
package storage
