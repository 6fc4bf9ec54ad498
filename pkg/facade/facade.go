package facade

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/cuemby/relay/pkg/apierr"
	"github.com/cuemby/relay/pkg/apply"
	"github.com/cuemby/relay/pkg/raftcore"
	"github.com/cuemby/relay/pkg/rpcapi"
	"github.com/cuemby/relay/pkg/state"
	"github.com/cuemby/relay/pkg/types"
	"github.com/google/uuid"
)

const defaultSessionTTL = 24 * time.Hour

// Facade implements rpcapi.MessagingServer: the fourteen RPCs of spec §6.
// Mutations are routed to the leader, appended to the Raft Core, and
// blocked on with WaitApplied before a response is built; reads are
// served straight out of the Application State, on any node.
type Facade struct {
	node    *raftcore.Node
	applier *apply.Applier
	state   *state.State

	selfAddr          string
	commitWaitTimeout time.Duration
	sessionTTL        time.Duration

	userIDs *idAllocator
	msgIDs  *idAllocator
	syncMu  sync.Mutex
	syncedTerm int64
}

// New builds a Facade. selfAddr is this node's own host:port, used to
// resolve LeaderAddr when this node happens to be the leader itself.
func New(node *raftcore.Node, applier *apply.Applier, st *state.State, selfAddr string) *Facade {
	return &Facade{
		node:              node,
		applier:           applier,
		state:             st,
		selfAddr:          selfAddr,
		commitWaitTimeout: 5 * time.Second,
		sessionTTL:        defaultSessionTTL,
		userIDs:           newIDAllocator(),
		msgIDs:            newIDAllocator(),
		syncedTerm:        -1,
	}
}

var _ rpcapi.MessagingServer = (*Facade)(nil)

// SetCommitWaitTimeout overrides the default commit-wait timeout, for
// cmd/relayd to apply a node.yaml/CLI-supplied value.
func (f *Facade) SetCommitWaitTimeout(d time.Duration) {
	if d > 0 {
		f.commitWaitTimeout = d
	}
}

func nowUnix() int64 { return time.Now().Unix() }

// ensureLeader reports an apierr.NotLeader/Unavailable error when this
// node cannot append to the Raft Core itself.
func (f *Facade) ensureLeader() *apierr.Error {
	if f.node.IsLeader() {
		return nil
	}
	return apierr.NotLeaderError(f.node.LeaderAddr(f.selfAddr))
}

// ensureIDsSynced resyncs both id allocators' high-water marks from the
// Application State the first time this node is observed leading a given
// term — covering both a fresh election and a restart that replayed the
// log before Start. Cheap to call on every mutating RPC: the check is a
// single int64 comparison once synced.
func (f *Facade) ensureIDsSynced() {
	term := f.node.Term()
	f.syncMu.Lock()
	defer f.syncMu.Unlock()
	if f.syncedTerm == term {
		return
	}
	f.userIDs.Resync(f.state.UserIDs())
	f.msgIDs.Resync(f.state.MessageUIDs())
	f.syncedTerm = term
}

// authenticate validates a session token, the same check spec §6 requires
// before any RPC other than CreateAccount/Login/ListAccounts/LeaderPing
// proceeds.
func (f *Facade) authenticate(userID uint32, token string) *apierr.Error {
	sess, ok := f.state.GetSession(userID)
	if !ok || sess.Token != token {
		return apierr.New(apierr.Unauthenticated, "invalid session")
	}
	if sess.Expired(nowUnix()) {
		return apierr.New(apierr.Unauthenticated, "session expired")
	}
	return nil
}

// generateToken mints a random session token.
func generateToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// propose appends a command to the Raft Core and blocks for its commit
// and apply, returning whatever the Command Applier reported back for
// this op id (non-nil only for ReadMessages).
func (f *Facade) propose(ctx context.Context, kind types.CommandKind, payload interface{}) (interface{}, *apierr.Error) {
	opID := uuid.NewString()
	cmd, err := types.Encode(opID, kind, payload)
	if err != nil {
		return nil, apierr.New(apierr.Internal, "encode command: %v", err)
	}

	index, _, isLeader := f.node.Propose(cmd)
	if !isLeader {
		return nil, apierr.NotLeaderError(f.node.LeaderAddr(f.selfAddr))
	}

	waitCtx, cancel := context.WithTimeout(ctx, f.commitWaitTimeout)
	defer cancel()
	if err := f.node.WaitApplied(waitCtx, index); err != nil {
		return nil, apierr.New(apierr.Unavailable, "commit wait: %v", err)
	}

	result, _ := f.applier.Result(opID)
	return result, nil
}

func messageView(m *types.Message) rpcapi.MessageView {
	return rpcapi.MessageView{
		UID:       m.UID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		Read:      m.Read,
		Timestamp: m.Timestamp,
	}
}
