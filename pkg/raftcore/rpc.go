package raftcore

import (
	"context"

	"github.com/cuemby/relay/pkg/types"
)

// RequestVoteArgs is the payload of a RequestVote RPC (spec §4.4).
type RequestVoteArgs struct {
	Term         int64  `json:"term"`
	CandidateID  string `json:"candidate_id"`
	LastLogIndex int64  `json:"last_log_index"`
	LastLogTerm  int64  `json:"last_log_term"`
}

// RequestVoteReply is the response to a RequestVote RPC.
type RequestVoteReply struct {
	Term        int64 `json:"term"`
	VoteGranted bool  `json:"vote_granted"`
}

// AppendEntriesArgs is the payload of an AppendEntries RPC (spec §4.4).
// PrevLogIndex == -1 denotes "before the first entry".
type AppendEntriesArgs struct {
	Term         int64            `json:"term"`
	LeaderID     string           `json:"leader_id"`
	PrevLogIndex int64            `json:"prev_log_index"`
	PrevLogTerm  int64            `json:"prev_log_term"`
	Entries      []types.LogEntry `json:"entries,omitempty"`
	LeaderCommit int64            `json:"leader_commit"`
}

// AppendEntriesReply is the response to an AppendEntries RPC.
type AppendEntriesReply struct {
	Term    int64 `json:"term"`
	Success bool  `json:"success"`
}

// PeerTransport issues outbound Raft RPCs to a named peer. Implementations
// own connection lifecycle (pkg/rpcapi's peer client maintains one
// long-lived gRPC connection per peer with automatic reconnect); a
// PeerTransport call failing or timing out is reported as a plain error,
// never as a term change — the caller treats it as a soft RPC failure.
type PeerTransport interface {
	RequestVote(ctx context.Context, peer string, args *RequestVoteArgs) (*RequestVoteReply, error)
	AppendEntries(ctx context.Context, peer string, args *AppendEntriesArgs) (*AppendEntriesReply, error)
}

// Applier applies a committed log entry to the Application State and
// Durable Store. pkg/apply.Applier satisfies this.
type Applier interface {
	Apply(index uint64, entry *types.LogEntry) error
}
