package facade

import (
	"context"
	"testing"
	"time"

	"github.com/cuemby/relay/pkg/apierr"
	"github.com/cuemby/relay/pkg/apply"
	"github.com/cuemby/relay/pkg/raftcore"
	"github.com/cuemby/relay/pkg/rpcapi"
	"github.com/cuemby/relay/pkg/state"
	"github.com/cuemby/relay/pkg/storage"
	"github.com/stretchr/testify/require"
)

// newTestFacade builds a Facade over a single real, peerless Raft node.
// A zero-peer cluster elects itself leader on its own first election
// timeout, so this gives every mutating RPC a real commit path without
// standing up a multi-node mesh.
func newTestFacade(t *testing.T) *Facade {
	t.Helper()
	store, err := storage.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	st := state.New()
	applier := apply.New(store, st)

	node, err := raftcore.NewNode(raftcore.Config{
		NodeID:             "solo",
		ElectionTimeoutMin: 20 * time.Millisecond,
		ElectionTimeoutMax: 40 * time.Millisecond,
		HeartbeatInterval:  10 * time.Millisecond,
		TickInterval:       5 * time.Millisecond,
	}, store, applier, deadTransport{})
	require.NoError(t, err)
	node.Start()
	t.Cleanup(node.Stop)

	require.Eventually(t, node.IsLeader, 2*time.Second, 5*time.Millisecond, "solo node should elect itself leader")

	f := New(node, applier, st, "solo-addr")
	f.SetCommitWaitTimeout(2 * time.Second)
	return f
}

type deadTransport struct{}

func (deadTransport) RequestVote(context.Context, string, *raftcore.RequestVoteArgs) (*raftcore.RequestVoteReply, error) {
	return nil, context.DeadlineExceeded
}

func (deadTransport) AppendEntries(context.Context, string, *raftcore.AppendEntriesArgs) (*raftcore.AppendEntriesReply, error) {
	return nil, context.DeadlineExceeded
}

func statusCode(t *testing.T, err error) apierr.Kind {
	t.Helper()
	return apierr.FromStatus(err).Kind
}

func TestFacade_CreateAccountLoginAndSendMessage(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	aliceResp, err := f.CreateAccount(ctx, &rpcapi.CreateAccountRequest{Username: "alice", Credential: []byte("secret")})
	require.NoError(t, err)
	require.Equal(t, uint32(1), aliceResp.UserID)

	bobResp, err := f.CreateAccount(ctx, &rpcapi.CreateAccountRequest{Username: "bob", Credential: []byte("hunter2")})
	require.NoError(t, err)
	require.Equal(t, uint32(2), bobResp.UserID)

	loginResp, err := f.Login(ctx, &rpcapi.LoginRequest{Username: "alice", Credential: []byte("secret")})
	require.NoError(t, err)
	require.Equal(t, aliceResp.UserID, loginResp.UserID)
	require.NotEmpty(t, loginResp.Token)

	sendResp, err := f.SendMessage(ctx, &rpcapi.SendMessageRequest{
		UserID: loginResp.UserID, Token: loginResp.Token, ReceiverID: bobResp.UserID, Content: "hi bob",
	})
	require.NoError(t, err)
	require.Equal(t, uint32(1), sendResp.MessageID)

	bobLogin, err := f.Login(ctx, &rpcapi.LoginRequest{Username: "bob", Credential: []byte("hunter2")})
	require.NoError(t, err)

	readResp, err := f.ReadMessages(ctx, &rpcapi.ReadMessagesRequest{UserID: bobLogin.UserID, Token: bobLogin.Token, N: 10})
	require.NoError(t, err)
	require.Equal(t, []uint32{1}, readResp.MessageIDs)

	// A second ReadMessages finds nothing left — underflow is silent.
	readAgain, err := f.ReadMessages(ctx, &rpcapi.ReadMessagesRequest{UserID: bobLogin.UserID, Token: bobLogin.Token, N: 10})
	require.NoError(t, err)
	require.Empty(t, readAgain.MessageIDs)
}

func TestFacade_DuplicateUsernameRejected(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	_, err := f.CreateAccount(ctx, &rpcapi.CreateAccountRequest{Username: "alice", Credential: []byte("x")})
	require.NoError(t, err)

	_, err = f.CreateAccount(ctx, &rpcapi.CreateAccountRequest{Username: "alice", Credential: []byte("y")})
	require.Error(t, err)
	require.Equal(t, apierr.AlreadyExists, statusCode(t, err))
}

func TestFacade_LoginWithBadCredentialUnauthenticated(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	_, err := f.CreateAccount(ctx, &rpcapi.CreateAccountRequest{Username: "alice", Credential: []byte("secret")})
	require.NoError(t, err)

	_, err = f.Login(ctx, &rpcapi.LoginRequest{Username: "alice", Credential: []byte("wrong")})
	require.Error(t, err)
	require.Equal(t, apierr.Unauthenticated, statusCode(t, err))
}

func TestFacade_RejectsRPCsWithBadSessionToken(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	_, err := f.GetUnreadMessages(ctx, &rpcapi.GetUnreadMessagesRequest{UserID: 1, Token: "nonsense"})
	require.Error(t, err)
	require.Equal(t, apierr.Unauthenticated, statusCode(t, err))
}

func TestFacade_DeleteAccountDoesNotCascadeMessages(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	alice, err := f.CreateAccount(ctx, &rpcapi.CreateAccountRequest{Username: "alice", Credential: []byte("secret")})
	require.NoError(t, err)
	bob, err := f.CreateAccount(ctx, &rpcapi.CreateAccountRequest{Username: "bob", Credential: []byte("hunter2")})
	require.NoError(t, err)

	aliceLogin, err := f.Login(ctx, &rpcapi.LoginRequest{Username: "alice", Credential: []byte("secret")})
	require.NoError(t, err)

	sendResp, err := f.SendMessage(ctx, &rpcapi.SendMessageRequest{
		UserID: aliceLogin.UserID, Token: aliceLogin.Token, ReceiverID: bob.UserID, Content: "hello",
	})
	require.NoError(t, err)

	_, err = f.DeleteAccount(ctx, &rpcapi.DeleteAccountRequest{UserID: aliceLogin.UserID, Token: aliceLogin.Token})
	require.NoError(t, err)

	// Bob can still log in; the message alice sent is still readable by id.
	bobLogin, err := f.Login(ctx, &rpcapi.LoginRequest{Username: "bob", Credential: []byte("hunter2")})
	require.NoError(t, err)

	info, err := f.GetMessageInformation(ctx, &rpcapi.GetMessageInformationRequest{
		UserID: bobLogin.UserID, Token: bobLogin.Token, MessageID: sendResp.MessageID,
	})
	require.NoError(t, err)
	require.Equal(t, "hello", info.Message.Content)

	_ = alice
}

func TestFacade_ListAccountsMatchesGlobPattern(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	_, err := f.CreateAccount(ctx, &rpcapi.CreateAccountRequest{Username: "alice", Credential: []byte("x")})
	require.NoError(t, err)
	_, err = f.CreateAccount(ctx, &rpcapi.CreateAccountRequest{Username: "alfred", Credential: []byte("x")})
	require.NoError(t, err)
	_, err = f.CreateAccount(ctx, &rpcapi.CreateAccountRequest{Username: "bob", Credential: []byte("x")})
	require.NoError(t, err)

	resp, err := f.ListAccounts(ctx, &rpcapi.ListAccountsRequest{Pattern: "al*"})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"alice", "alfred"}, resp.Usernames)
}

func TestFacade_LeaderPingReportsSelf(t *testing.T) {
	f := newTestFacade(t)
	resp, err := f.LeaderPing(context.Background(), &rpcapi.LeaderPingRequest{})
	require.NoError(t, err)
	require.True(t, resp.IsLeader)
}
