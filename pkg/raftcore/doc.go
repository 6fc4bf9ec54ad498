/*
Package raftcore implements the Raft Core: a hand-rolled per-node consensus
state machine that keeps a replicated command log consistent across every
node in a Relay cluster, and drives the Command Applier forward as entries
commit.

# Architecture

	┌───────────────────────────── NODE ─────────────────────────────┐
	│                                                                  │
	│  ┌────────────────────────────────────────────────┐            │
	│  │                   Node                           │            │
	│  │  - role: Follower | Candidate | Leader           │            │
	│  │  - currentTerm, votedFor                         │            │
	│  │  - entries []types.LogEntry  (0-based index)     │            │
	│  │  - commitIndex, lastApplied                      │            │
	│  │  - nextIndex[peer], matchIndex[peer]  (leader)   │            │
	│  │  - single mutex n.mu serializes all of the above │            │
	│  └──────────────────┬───────────────────┬──────────┘            │
	│                     │                   │                       │
	│  ┌──────────────────▼─────┐   ┌─────────▼─────────────┐        │
	│  │   election.go           │   │   replication.go       │        │
	│  │  - randomized timeout   │   │  - leader-only ticker   │        │
	│  │  - RequestVote RPC      │   │  - AppendEntries RPC    │        │
	│  │  - startElection        │   │  - advanceCommitIndex   │        │
	│  │  - becomeLeaderLocked   │   │  - log-conflict rollback│        │
	│  └──────────────────┬─────┘   └─────────┬─────────────┘        │
	│                     │                   │                       │
	│                     ▼                   ▼                       │
	│            ┌──────────────────────────────────┐                │
	│            │        PeerTransport (interface)   │                │
	│            │  implemented by pkg/rpcapi's       │                │
	│            │  PeerClient over real gRPC dials   │                │
	│            └──────────────────────────────────┘                │
	│                                                                  │
	│  applyCommitted() replays entries[lastApplied+1 .. commitIndex]  │
	│  through the Applier interface, one at a time, in order.        │
	└──────────────────────────────────────────────────────────────────┘

The algorithm is grounded on a from-scratch, MIT 6.824-style raft.go: a
single goroutine's tick() driving both the election timer and, on a
leader, the heartbeat/replication ticker, with every read or write of
Node's fields taking n.mu first. There is no separate RPC-handling
goroutine pool; RequestVote and AppendEntries are plain methods on *Node
called directly by whatever transport received the RPC (pkg/rpcapi's
gRPC server in production, an in-process caller in tests).

# Roles and transitions

Role is one of Follower, Candidate, Leader (node.go's Role, with a
String() method for log output). A node starts Follower. The only
transitions are:

  - Follower/Candidate -> Candidate: election timeout fires with no
    AppendEntries or granted vote seen (startElection).
  - Candidate -> Leader: startElection's RequestVote replies carry a
    majority of votes at the requesting term (becomeLeaderLocked).
  - any role -> Follower: any RPC or reply carries a term greater than
    currentTerm (demoteLocked) — the highest term anyone has seen wins.

A zero-peer node (no entries in Config.Peers) completes its own election
immediately: majority of a 1-node cluster is 1, and a candidate always
votes for itself, so single-node test harnesses and demo clusters
self-elect leader without any peer traffic.

# Election (election.go)

RequestVote grants a vote only if the candidate's term is at least
currentTerm and the candidate's log is at least as up to date as the
voter's (last log term, then last log index — the two-part comparison
that keeps committed entries from being overwritten by a less-current
leader). A granted vote resets the node's own election deadline, since
acknowledging a legitimate candidate is itself evidence the cluster is
alive. majority(clusterSize) is the usual clusterSize/2 + 1.

# Replication (replication.go)

Only a Leader runs broadcastAppendEntries, on every heartbeat tick.
Each peer gets whatever entries follow that peer's nextIndex, or a bare
heartbeat (empty Entries) if it is caught up. A follower's conflicting
log is truncated from the first mismatching index (TruncateLogFrom on
pkg/storage, mirrored in entries) and nextIndex backs off by one,
retried on the next tick. advanceCommitIndexLocked recomputes
commitIndex as the highest index present on a majority of nodes that is
also at the current term (Raft's safety rule against committing a
previous term's entry by replication count alone).

# Interaction with the Command Applier

Node does not apply commands itself; it holds the replicated log and
calls out to an injected Applier (the interface in rpc.go, satisfied by
pkg/apply's *Applier) once commitIndex advances past lastApplied.
Propose appends a new command to the leader's own log and immediately
returns its (index, term); callers needing durability call
WaitApplied(ctx, index) to block until that index has been applied —
the commit-wait contract pkg/facade relies on for every mutating RPC.

# Durability

Every term/vote change and every log append or truncation goes through
the injected storage.Store before the in-memory entries slice is
considered authoritative, so a crash between the two never loses a
commitment the leader already reported to a client, and a restarted
node reloads term, vote and the full log from the store in NewNode
before Start() is ever called.

# Exported surface

	type Role int                                 // Follower, Candidate, Leader
	type Config struct{ NodeID, Peers, timeouts }  // withDefaults fills in zero fields
	type Node struct{ ... }                        // the consensus state machine
	func NewNode(cfg, store, applier, transport) (*Node, error)
	func (n *Node) Start()
	func (n *Node) Stop()
	func (n *Node) IsLeader() bool
	func (n *Node) LeaderID() string
	func (n *Node) LeaderAddr(selfAddr string) string
	func (n *Node) Term() int64
	func (n *Node) CommitIndex() int64
	func (n *Node) LastApplied() int64
	func (n *Node) Propose(cmd types.Command) (index, term int64, isLeader bool)
	func (n *Node) WaitApplied(ctx context.Context, index int64) error
	func (n *Node) RequestVote(*RequestVoteArgs) *RequestVoteReply
	func (n *Node) AppendEntries(*AppendEntriesArgs) *AppendEntriesReply

	type PeerTransport interface {
		RequestVote(ctx, peerAddr string, args *RequestVoteArgs) (*RequestVoteReply, error)
		AppendEntries(ctx, peerAddr string, args *AppendEntriesArgs) (*AppendEntriesReply, error)
	}
	type Applier interface {
		Apply(index uint64, entry *types.LogEntry) error
	}

# Testing

pkg/raftcore/harness_test.go builds whole multi-node clusters over real
loopback TCP sockets (pkg/rpcapi's actual Server/PeerClient, not a mock
transport), so election and replication are exercised the same way they
run in production: TestHarness_ElectsExactlyOneLeader,
TestHarness_ProposeReplicatesToAllNodes,
TestHarness_FollowerRejectsProposal.
*/
package raftcore
