package raftcore

import (
	"context"
	"time"

	"github.com/cuemby/relay/pkg/types"
)

// AppendEntries handles an inbound AppendEntries RPC per spec §4.4.
func (n *Node) AppendEntries(args *AppendEntriesArgs) *AppendEntriesReply {
	n.mu.Lock()
	defer n.mu.Unlock()

	if args.Term < n.currentTerm {
		return &AppendEntriesReply{Term: n.currentTerm, Success: false}
	}
	if args.Term > n.currentTerm {
		n.demoteLocked(args.Term)
	} else if n.role != Follower {
		n.role = Follower
	}
	n.leaderID = args.LeaderID
	n.resetElectionDeadlineLocked()

	if args.PrevLogIndex >= 0 {
		if n.lastLogIndexLocked() < args.PrevLogIndex ||
			n.entries[args.PrevLogIndex].Term != args.PrevLogTerm {
			return &AppendEntriesReply{Term: n.currentTerm, Success: false}
		}
	}

	for i, entry := range args.Entries {
		idx := args.PrevLogIndex + 1 + int64(i)
		if idx <= n.lastLogIndexLocked() {
			if n.entries[idx].Term == entry.Term {
				continue
			}
			n.entries = n.entries[:idx]
			if err := n.store.TruncateLogFrom(uint64(idx)); err != nil {
				n.logger.Error().Err(err).Msg("failed to truncate conflicting log tail")
			}
		}
		n.entries = append(n.entries, entry)
		if err := n.store.AppendLogEntry(uint64(idx), &entry); err != nil {
			n.logger.Error().Err(err).Msg("failed to persist replicated entry")
		}
	}

	if args.LeaderCommit > n.commitIndex {
		last := n.lastLogIndexLocked()
		if args.LeaderCommit < last {
			n.commitIndex = args.LeaderCommit
		} else {
			n.commitIndex = last
		}
		if err := n.store.SaveCommitIndex(uint64(n.commitIndex)); err != nil {
			n.logger.Error().Err(err).Msg("failed to persist commit index")
		}
	}

	return &AppendEntriesReply{Term: n.currentTerm, Success: true}
}

// broadcastAppendEntries sends a replication or heartbeat message to every
// peer concurrently, per spec §4.4.
func (n *Node) broadcastAppendEntries() {
	n.mu.Lock()
	if n.role != Leader {
		n.mu.Unlock()
		return
	}
	n.lastHeartbeatSent = time.Now()
	term := n.currentTerm
	peers := make([]string, 0, len(n.cfg.Peers))
	type outbound struct {
		peer string
		args *AppendEntriesArgs
	}
	var batch []outbound
	for id := range n.cfg.Peers {
		peers = append(peers, id)
		next := n.nextIndex[id]
		prevIndex := next - 1
		var prevTerm int64
		if prevIndex >= 0 && prevIndex <= n.lastLogIndexLocked() {
			prevTerm = n.entries[prevIndex].Term
		}
		var entries []types.LogEntry
		if next <= n.lastLogIndexLocked() {
			entries = append(entries, n.entries[next:]...)
		}
		batch = append(batch, outbound{peer: id, args: &AppendEntriesArgs{
			Term:         term,
			LeaderID:     n.cfg.NodeID,
			PrevLogIndex: prevIndex,
			PrevLogTerm:  prevTerm,
			Entries:      entries,
			LeaderCommit: n.commitIndex,
		}})
	}
	n.mu.Unlock()

	for _, ob := range batch {
		go n.sendAppendEntries(ob.peer, ob.args)
	}
}

func (n *Node) sendAppendEntries(peer string, args *AppendEntriesArgs) {
	ctx, cancel := context.WithTimeout(context.Background(), n.cfg.RPCTimeout)
	defer cancel()
	reply, err := n.transport.AppendEntries(ctx, peer, args)
	if err != nil {
		return // soft failure; retried on the next heartbeat cycle
	}
	n.handleAppendEntriesReply(peer, args, reply)
}

func (n *Node) handleAppendEntriesReply(peer string, args *AppendEntriesArgs, reply *AppendEntriesReply) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if reply.Term > n.currentTerm {
		n.demoteLocked(reply.Term)
		return
	}
	if n.role != Leader || n.currentTerm != args.Term {
		return
	}

	if reply.Success {
		matched := args.PrevLogIndex + int64(len(args.Entries))
		if matched > n.matchIndex[peer] {
			n.matchIndex[peer] = matched
		}
		n.nextIndex[peer] = matched + 1
		n.advanceCommitIndexLocked()
		return
	}

	if n.nextIndex[peer] > 0 {
		n.nextIndex[peer]--
	}
}

// advanceCommitIndexLocked implements spec §4.4's commit rule: the highest
// N > commitIndex such that a majority of matchIndex[*] (including self) is
// >= N AND log[N].Term == currentTerm. Must be called with mu held.
func (n *Node) advanceCommitIndexLocked() {
	last := n.lastLogIndexLocked()
	for N := last; N > n.commitIndex; N-- {
		if n.entries[N].Term != n.currentTerm {
			continue
		}
		count := 0
		for id := range n.cfg.Peers {
			if n.matchIndex[id] >= N {
				count++
			}
		}
		if n.matchIndex[n.cfg.NodeID] >= N {
			count++
		}
		if count >= majority(len(n.cfg.Peers)+1) {
			n.commitIndex = N
			if err := n.store.SaveCommitIndex(uint64(n.commitIndex)); err != nil {
				n.logger.Error().Err(err).Msg("failed to persist commit index")
			}
			return
		}
	}
}
