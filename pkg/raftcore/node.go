package raftcore

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/cuemby/relay/pkg/log"
	"github.com/cuemby/relay/pkg/storage"
	"github.com/cuemby/relay/pkg/types"
	"github.com/rs/zerolog"
)

// Role is a node's position in the Raft state machine.
type Role int

const (
	Follower Role = iota
	Candidate
	Leader
)

func (r Role) String() string {
	switch r {
	case Follower:
		return "follower"
	case Candidate:
		return "candidate"
	case Leader:
		return "leader"
	default:
		return "unknown"
	}
}

// Config holds the tunables spec §4.4/§4.5/§5 leaves to the implementer.
type Config struct {
	NodeID             string
	Peers              map[string]string // peer id -> host:port, excludes self
	ElectionTimeoutMin time.Duration
	ElectionTimeoutMax time.Duration
	HeartbeatInterval  time.Duration
	TickInterval       time.Duration
	RPCTimeout         time.Duration
}

func (c Config) withDefaults() Config {
	if c.ElectionTimeoutMin == 0 {
		c.ElectionTimeoutMin = 150 * time.Millisecond
	}
	if c.ElectionTimeoutMax == 0 {
		c.ElectionTimeoutMax = 300 * time.Millisecond
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = 50 * time.Millisecond
	}
	if c.TickInterval == 0 {
		c.TickInterval = 50 * time.Millisecond
	}
	if c.RPCTimeout == 0 {
		c.RPCTimeout = 3 * c.HeartbeatInterval
	}
	return c
}

// Node is a single replica's Raft Core. Every field below is shared
// between the control loop, inbound RPC handlers, and Propose/WaitApplied
// callers from the Service Façade; all access goes through mu, per
// spec §5's single-serializing-lock requirement.
type Node struct {
	cfg       Config
	store     storage.Store
	applier   Applier
	transport PeerTransport
	logger    zerolog.Logger

	mu          sync.Mutex
	currentTerm int64
	votedFor    string
	entries     []types.LogEntry // entries[i] is the command at log index i
	commitIndex int64
	lastApplied int64
	role        Role
	leaderID    string

	electionDeadline  time.Time
	lastHeartbeatSent time.Time
	votesGranted      map[string]bool

	nextIndex  map[string]int64
	matchIndex map[string]int64

	waiters map[int64][]chan error

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewNode constructs a Node, restoring term, vote, and the log from the
// Durable Store. It does not start the control loop; call Start for that.
func NewNode(cfg Config, store storage.Store, applier Applier, transport PeerTransport) (*Node, error) {
	cfg = cfg.withDefaults()

	term, votedFor, err := store.LoadTermAndVote()
	if err != nil {
		return nil, fmt.Errorf("raftcore: load term/vote: %w", err)
	}

	raw, err := store.LoadAllLogEntries()
	if err != nil {
		return nil, fmt.Errorf("raftcore: load log: %w", err)
	}
	entries := make([]types.LogEntry, len(raw))
	for i, e := range raw {
		entries[i] = *e
	}

	commitIndex, err := store.LoadCommitIndex()
	if err != nil {
		return nil, fmt.Errorf("raftcore: load commit index: %w", err)
	}
	// A store that has never committed anything also reports 0; never
	// count more entries as committed than the log holds (-1 when empty).
	commit := int64(commitIndex)
	if last := int64(len(entries)) - 1; commit > last {
		commit = last
	}

	n := &Node{
		cfg:         cfg,
		store:       store,
		applier:     applier,
		transport:   transport,
		logger:      log.WithNode(cfg.NodeID),
		currentTerm: term,
		votedFor:    votedFor,
		entries:     entries,
		commitIndex: commit,
		lastApplied: -1,
		role:        Follower,
		nextIndex:   make(map[string]int64),
		matchIndex:  make(map[string]int64),
		waiters:     make(map[int64][]chan error),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	n.resetElectionDeadlineLocked()
	return n, nil
}

// Start launches the background control loop. It returns immediately.
func (n *Node) Start() {
	go n.run()
}

// Stop signals the control loop to exit and waits for it to do so.
func (n *Node) Stop() {
	close(n.stopCh)
	<-n.doneCh
}

func (n *Node) run() {
	defer close(n.doneCh)
	ticker := time.NewTicker(n.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-n.stopCh:
			return
		case <-ticker.C:
			n.tick()
		}
	}
}

func (n *Node) tick() {
	n.mu.Lock()
	role := n.role
	electionDue := !time.Now().Before(n.electionDeadline)
	var heartbeatDue bool
	if role == Leader {
		heartbeatDue = time.Since(n.lastHeartbeatSent) >= n.cfg.HeartbeatInterval
	}
	n.mu.Unlock()

	if role != Leader && electionDue {
		n.startElection()
		return
	}
	if role == Leader && heartbeatDue {
		n.broadcastAppendEntries()
	}
	n.applyCommitted()
}

// IsLeader reports whether this node currently believes itself leader.
func (n *Node) IsLeader() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.role == Leader
}

// LeaderID returns the node id of the last known leader, or "".
func (n *Node) LeaderID() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.leaderID
}

// LeaderAddr returns the host:port of the last known leader, or "" if
// unknown. Resolves through cfg.Peers, or to selfAddr if self is leader.
func (n *Node) LeaderAddr(selfAddr string) string {
	n.mu.Lock()
	id := n.leaderID
	n.mu.Unlock()
	if id == "" {
		return ""
	}
	if id == n.cfg.NodeID {
		return selfAddr
	}
	return n.cfg.Peers[id]
}

// Term returns the current term.
func (n *Node) Term() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.currentTerm
}

// LastApplied returns the highest log index applied to the state machine.
func (n *Node) LastApplied() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lastApplied
}

// CommitIndex returns the highest log index known to be committed. The
// gap between this and LastApplied is the Command Applier's backlog.
func (n *Node) CommitIndex() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.commitIndex
}

// Propose appends cmd to the log if this node is leader, returning the
// assigned index and current term. Callers use WaitApplied to block for
// commit+apply.
func (n *Node) Propose(cmd types.Command) (index int64, term int64, isLeader bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.role != Leader {
		return -1, n.currentTerm, false
	}
	entry := types.LogEntry{Term: n.currentTerm, Command: cmd}
	n.entries = append(n.entries, entry)
	idx := int64(len(n.entries) - 1)
	if err := n.store.AppendLogEntry(uint64(idx), &entry); err != nil {
		n.logger.Error().Err(err).Msg("failed to persist proposed entry")
	}
	n.nextIndex[n.cfg.NodeID] = idx + 1
	n.matchIndex[n.cfg.NodeID] = idx
	// A zero-peer leader is its own majority and gets no AppendEntries
	// replies, so the commit rule has to be evaluated here too.
	n.advanceCommitIndexLocked()
	return idx, n.currentTerm, true
}

// WaitApplied blocks until index has been applied to the state machine or
// ctx is done, whichever comes first.
func (n *Node) WaitApplied(ctx context.Context, index int64) error {
	n.mu.Lock()
	if n.lastApplied >= index {
		n.mu.Unlock()
		return nil
	}
	ch := make(chan error, 1)
	n.waiters[index] = append(n.waiters[index], ch)
	n.mu.Unlock()

	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *Node) resetElectionDeadlineLocked() {
	spread := n.cfg.ElectionTimeoutMax - n.cfg.ElectionTimeoutMin
	jitter := time.Duration(0)
	if spread > 0 {
		jitter = time.Duration(rand.Int63n(int64(spread)))
	}
	n.electionDeadline = time.Now().Add(n.cfg.ElectionTimeoutMin + jitter)
}

// demoteLocked converts the node to Follower at the given term, clearing
// votedFor, persisting, and resetting the election timer. Called whenever
// any RPC reveals a higher term, per spec §4.4's demotion rule.
func (n *Node) demoteLocked(term int64) {
	n.currentTerm = term
	n.votedFor = ""
	n.role = Follower
	n.resetElectionDeadlineLocked()
	if err := n.store.SaveTermAndVote(n.currentTerm, n.votedFor); err != nil {
		n.logger.Error().Err(err).Msg("failed to persist term/vote on demotion")
	}
}

// lastLogIndexLocked and lastLogTermLocked describe the tail of the log,
// with -1/0 denoting an empty log.
func (n *Node) lastLogIndexLocked() int64 {
	return int64(len(n.entries)) - 1
}

func (n *Node) lastLogTermLocked() int64 {
	if len(n.entries) == 0 {
		return 0
	}
	return n.entries[len(n.entries)-1].Term
}

// applyCommitted applies every entry between lastApplied+1 and commitIndex,
// in order, and wakes any WaitApplied callers for indices now satisfied.
func (n *Node) applyCommitted() {
	n.mu.Lock()
	var toApply []struct {
		index int64
		entry types.LogEntry
	}
	for n.lastApplied < n.commitIndex {
		n.lastApplied++
		toApply = append(toApply, struct {
			index int64
			entry types.LogEntry
		}{n.lastApplied, n.entries[n.lastApplied]})
	}
	n.mu.Unlock()

	for _, item := range toApply {
		err := n.applier.Apply(uint64(item.index), &item.entry)
		if err != nil {
			n.logger.Error().Err(err).Int64("index", item.index).Msg("apply failed")
		}
		n.mu.Lock()
		for _, ch := range n.waiters[item.index] {
			ch <- err
		}
		delete(n.waiters, item.index)
		n.mu.Unlock()
	}
}
