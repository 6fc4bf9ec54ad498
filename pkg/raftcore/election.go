package raftcore

import (
	"context"
)

// RequestVote handles an inbound RequestVote RPC per spec §4.4.
func (n *Node) RequestVote(args *RequestVoteArgs) *RequestVoteReply {
	n.mu.Lock()
	defer n.mu.Unlock()

	if args.Term < n.currentTerm {
		return &RequestVoteReply{Term: n.currentTerm, VoteGranted: false}
	}
	if args.Term > n.currentTerm {
		n.demoteLocked(args.Term)
	}

	upToDate := args.LastLogTerm > n.lastLogTermLocked() ||
		(args.LastLogTerm == n.lastLogTermLocked() && args.LastLogIndex >= n.lastLogIndexLocked())

	canVote := n.votedFor == "" || n.votedFor == args.CandidateID
	grant := canVote && upToDate
	if grant {
		n.votedFor = args.CandidateID
		if err := n.store.SaveTermAndVote(n.currentTerm, n.votedFor); err != nil {
			n.logger.Error().Err(err).Msg("failed to persist vote")
		}
		n.resetElectionDeadlineLocked()
	}
	return &RequestVoteReply{Term: n.currentTerm, VoteGranted: grant}
}

// startElection transitions to Candidate and solicits votes from every
// peer concurrently, per spec §4.4's "Transition to Candidate".
func (n *Node) startElection() {
	n.mu.Lock()
	n.role = Candidate
	n.currentTerm++
	n.votedFor = n.cfg.NodeID
	n.votesGranted = map[string]bool{n.cfg.NodeID: true}
	term := n.currentTerm
	args := &RequestVoteArgs{
		Term:         term,
		CandidateID:  n.cfg.NodeID,
		LastLogIndex: n.lastLogIndexLocked(),
		LastLogTerm:  n.lastLogTermLocked(),
	}
	n.resetElectionDeadlineLocked()
	if err := n.store.SaveTermAndVote(n.currentTerm, n.votedFor); err != nil {
		n.logger.Error().Err(err).Msg("failed to persist candidacy")
	}
	peers := make([]string, 0, len(n.cfg.Peers))
	for id := range n.cfg.Peers {
		peers = append(peers, id)
	}
	n.logger.Info().Int64("term", term).Msg("starting election")
	// A single-node cluster's self-vote already satisfies majority(1) — no
	// peer reply will ever arrive to trigger the check in handleVoteReply.
	if len(peers) == 0 && len(n.votesGranted) >= majority(1) {
		n.becomeLeaderLocked()
	}
	n.mu.Unlock()

	for _, peer := range peers {
		go n.sendRequestVote(peer, args)
	}
}

func (n *Node) sendRequestVote(peer string, args *RequestVoteArgs) {
	ctx, cancel := context.WithTimeout(context.Background(), n.cfg.RPCTimeout)
	defer cancel()
	reply, err := n.transport.RequestVote(ctx, peer, args)
	if err != nil {
		return
	}
	n.handleVoteReply(peer, args.Term, reply)
}

func (n *Node) handleVoteReply(peer string, requestTerm int64, reply *RequestVoteReply) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if reply.Term > n.currentTerm {
		n.demoteLocked(reply.Term)
		return
	}
	if n.role != Candidate || n.currentTerm != requestTerm || !reply.VoteGranted {
		return
	}

	n.votesGranted[peer] = true
	if len(n.votesGranted) >= majority(len(n.cfg.Peers)+1) {
		n.becomeLeaderLocked()
	}
}

func majority(clusterSize int) int {
	return clusterSize/2 + 1
}

// becomeLeaderLocked transitions to Leader. Must be called with mu held.
func (n *Node) becomeLeaderLocked() {
	n.role = Leader
	n.leaderID = n.cfg.NodeID
	lastIndex := n.lastLogIndexLocked()
	for id := range n.cfg.Peers {
		n.nextIndex[id] = lastIndex + 1
		n.matchIndex[id] = -1
	}
	n.matchIndex[n.cfg.NodeID] = lastIndex
	n.logger.Info().Int64("term", n.currentTerm).Msg("became leader")
	go n.broadcastAppendEntries()
}
