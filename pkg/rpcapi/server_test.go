package rpcapi

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/cuemby/relay/pkg/apply"
	"github.com/cuemby/relay/pkg/raftcore"
	"github.com/cuemby/relay/pkg/state"
	"github.com/cuemby/relay/pkg/storage"
	"github.com/stretchr/testify/require"
)

type stubMessaging struct{ MessagingServer }

// newTestNode builds a lone, peerless Raft node so the gRPC layer has a
// real RequestVote/AppendEntries handler to dispatch into, without pulling
// in a second process.
func newTestNode(t *testing.T) *raftcore.Node {
	t.Helper()
	store, err := storage.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	st := state.New()
	applier := apply.New(store, st)
	node, err := raftcore.NewNode(raftcore.Config{NodeID: "n1"}, store, applier, noopTransport{})
	require.NoError(t, err)
	return node
}

type noopTransport struct{}

func (noopTransport) RequestVote(context.Context, string, *raftcore.RequestVoteArgs) (*raftcore.RequestVoteReply, error) {
	return nil, context.DeadlineExceeded
}

func (noopTransport) AppendEntries(context.Context, string, *raftcore.AppendEntriesArgs) (*raftcore.AppendEntriesReply, error) {
	return nil, context.DeadlineExceeded
}

func TestServer_RequestVoteOverRealSocket(t *testing.T) {
	node := newTestNode(t)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(&stubMessaging{}, node)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	client := NewPeerClient(map[string]string{"n1": lis.Addr().String()})
	t.Cleanup(client.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	reply, err := client.RequestVote(ctx, "n1", &raftcore.RequestVoteArgs{
		Term: 1, CandidateID: "candidate", LastLogIndex: -1, LastLogTerm: 0,
	})
	require.NoError(t, err)
	require.True(t, reply.VoteGranted)
	require.Equal(t, int64(1), reply.Term)
}

func TestServer_AppendEntriesHeartbeatOverRealSocket(t *testing.T) {
	node := newTestNode(t)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(&stubMessaging{}, node)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	client := NewPeerClient(map[string]string{"n1": lis.Addr().String()})
	t.Cleanup(client.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// An empty heartbeat from a not-yet-known leader at term 1 should be
	// accepted since the node starts at term 0.
	reply, err := client.AppendEntries(ctx, "n1", &raftcore.AppendEntriesArgs{
		Term: 1, LeaderID: "leader", PrevLogIndex: -1, PrevLogTerm: 0, LeaderCommit: -1,
	})
	require.NoError(t, err)
	require.True(t, reply.Success)
}
