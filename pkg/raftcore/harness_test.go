package raftcore_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/cuemby/relay/pkg/apply"
	"github.com/cuemby/relay/pkg/raftcore"
	"github.com/cuemby/relay/pkg/rpcapi"
	"github.com/cuemby/relay/pkg/state"
	"github.com/cuemby/relay/pkg/storage"
	"github.com/cuemby/relay/pkg/types"
	"github.com/stretchr/testify/require"
)

// noopMessaging satisfies rpcapi.MessagingServer with unused stubs — the
// harness only exercises the Raft-internal RPCs, dialed over the same
// real loopback listener a node's Messaging service would share.
type noopMessaging struct{ rpcapi.MessagingServer }

// harnessNode bundles one replica's full stack, wired exactly as
// cmd/relayd wires it, over a real TCP listener.
type harnessNode struct {
	id      string
	node    *raftcore.Node
	applier *apply.Applier
	state   *state.State
	store   storage.Store
	server  *rpcapi.Server
	addr    string
}

// newHarness builds n nodes forming a full-mesh cluster over real
// loopback sockets, preferring integration-style tests over mocked
// transports.
func newHarness(t *testing.T, n int) []*harnessNode {
	t.Helper()

	listeners := make([]net.Listener, n)
	addrs := make(map[string]string, n)
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		lis, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		listeners[i] = lis
		id := string(rune('a' + i))
		ids[i] = id
		addrs[id] = lis.Addr().String()
	}

	nodes := make([]*harnessNode, n)
	for i := 0; i < n; i++ {
		id := ids[i]
		store, err := storage.NewBoltStore(t.TempDir())
		require.NoError(t, err)

		st := state.New()
		applier := apply.New(store, st)

		peers := make(map[string]string, n-1)
		for id2, addr := range addrs {
			if id2 != id {
				peers[id2] = addr
			}
		}
		transport := rpcapi.NewPeerClient(peers)
		t.Cleanup(transport.Close)

		node, err := raftcore.NewNode(raftcore.Config{
			NodeID:             id,
			Peers:              peers,
			ElectionTimeoutMin: 50 * time.Millisecond,
			ElectionTimeoutMax: 100 * time.Millisecond,
			HeartbeatInterval:  20 * time.Millisecond,
			TickInterval:       10 * time.Millisecond,
			RPCTimeout:         200 * time.Millisecond,
		}, store, applier, transport)
		require.NoError(t, err)

		server := rpcapi.NewServer(&noopMessaging{}, node)
		go func(lis net.Listener) { _ = server.Serve(lis) }(listeners[i])
		t.Cleanup(server.Stop)

		nodes[i] = &harnessNode{id: id, node: node, applier: applier, state: st, store: store, addr: addrs[id], server: server}
	}

	for _, hn := range nodes {
		hn.node.Start()
		t.Cleanup(hn.node.Stop)
	}

	return nodes
}

func awaitLeader(t *testing.T, nodes []*harnessNode) *harnessNode {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		for _, hn := range nodes {
			if hn.node.IsLeader() {
				return hn
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("no leader elected within deadline")
	return nil
}

func TestHarness_ElectsExactlyOneLeader(t *testing.T) {
	nodes := newHarness(t, 3)
	leader := awaitLeader(t, nodes)

	count := 0
	for _, hn := range nodes {
		if hn.node.IsLeader() {
			count++
		}
		if hn.id != leader.id {
			require.Equal(t, leader.node.LeaderID(), hn.node.LeaderID())
		}
	}
	require.Equal(t, 1, count)
}

func TestHarness_ProposeReplicatesToAllNodes(t *testing.T) {
	nodes := newHarness(t, 3)
	leader := awaitLeader(t, nodes)

	cmd, err := types.Encode("op-1", types.CmdCreateAccount, types.CreateAccountPayload{
		UserID: 1, Username: "alice", Credential: []byte("secret"),
	})
	require.NoError(t, err)

	index, _, isLeader := leader.node.Propose(cmd)
	require.True(t, isLeader)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, leader.node.WaitApplied(ctx, index))

	require.Eventually(t, func() bool {
		for _, hn := range nodes {
			if _, ok := hn.state.GetUser(1); !ok {
				return false
			}
		}
		return true
	}, 3*time.Second, 20*time.Millisecond, "every replica should eventually see the new user")

	for _, hn := range nodes {
		user, ok := hn.state.GetUser(1)
		require.True(t, ok)
		require.Equal(t, "alice", user.Username)
	}
}

func TestHarness_FollowerRejectsProposal(t *testing.T) {
	nodes := newHarness(t, 3)
	leader := awaitLeader(t, nodes)

	var follower *harnessNode
	for _, hn := range nodes {
		if hn.id != leader.id {
			follower = hn
			break
		}
	}
	require.NotNil(t, follower)

	cmd, err := types.Encode("op-2", types.CmdCreateAccount, types.CreateAccountPayload{UserID: 2, Username: "bob"})
	require.NoError(t, err)

	_, _, isLeader := follower.node.Propose(cmd)
	require.False(t, isLeader)
}
