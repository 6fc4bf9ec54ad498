package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/cuemby/relay/pkg/apply"
	"github.com/cuemby/relay/pkg/raftcore"
	"github.com/cuemby/relay/pkg/state"
	"github.com/cuemby/relay/pkg/storage"
	"github.com/cuemby/relay/pkg/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// noopTransport answers every RPC with "peer unreachable". The test nodes
// have no peers, so it is never actually called: an unstarted node stays
// a term-0 follower, and a started one self-elects without it.
type noopTransport struct{}

func (noopTransport) RequestVote(context.Context, string, *raftcore.RequestVoteArgs) (*raftcore.RequestVoteReply, error) {
	return nil, context.DeadlineExceeded
}

func (noopTransport) AppendEntries(context.Context, string, *raftcore.AppendEntriesArgs) (*raftcore.AppendEntriesReply, error) {
	return nil, context.DeadlineExceeded
}

func newTestCollector(t *testing.T) (*Collector, *raftcore.Node) {
	t.Helper()
	store, err := storage.NewBoltStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBoltStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	st := state.New()
	applier := apply.New(store, st)

	node, err := raftcore.NewNode(raftcore.Config{NodeID: "n1"}, store, applier, noopTransport{})
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}

	st.CreateUser(&types.User{ID: 1, Username: "alice"})
	st.CreateUser(&types.User{ID: 2, Username: "bob"})
	st.CreateMessage(&types.Message{UID: 1, SenderID: 1, ReceiverID: 2, Timestamp: 1})
	st.PutSession(&types.Session{UserID: 1, Token: "tok", ExpiresAt: time.Now().Add(time.Hour).Unix()})

	return NewCollector(node, st, 2), node
}

func TestCollectorCollect(t *testing.T) {
	c, node := newTestCollector(t)

	c.collect()

	if node.IsLeader() {
		t.Fatal("a freshly constructed node should not be leader")
	}
	if got := testutil.ToFloat64(RaftIsLeader); got != 0 {
		t.Errorf("RaftIsLeader = %v, want 0", got)
	}
	if got := testutil.ToFloat64(RaftPeersTotal); got != 2 {
		t.Errorf("RaftPeersTotal = %v, want 2", got)
	}
	if got := testutil.ToFloat64(UsersTotal); got != 2 {
		t.Errorf("UsersTotal = %v, want 2", got)
	}
	if got := testutil.ToFloat64(MessagesTotal); got != 1 {
		t.Errorf("MessagesTotal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(SessionsTotal); got != 1 {
		t.Errorf("SessionsTotal = %v, want 1", got)
	}
}

func TestCollectorStartStop(t *testing.T) {
	c, _ := newTestCollector(t)
	c.Start()
	c.Stop()
}
