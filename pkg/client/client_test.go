package client

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/cuemby/relay/pkg/apierr"
	"github.com/cuemby/relay/pkg/rpcapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMessagingServer is an in-memory stand-in for pkg/facade, enough to
// drive pkg/client's redirect-following and happy-path call shapes without
// a real Raft Core.
type fakeMessagingServer struct {
	redirectTo string // non-empty: every RPC answers NotLeader once
	redirected bool
}

func (f *fakeMessagingServer) maybeRedirect() error {
	if f.redirectTo != "" && !f.redirected {
		f.redirected = true
		return apierr.ToStatus(apierr.NotLeaderError(f.redirectTo))
	}
	return nil
}

func (f *fakeMessagingServer) CreateAccount(ctx context.Context, req *rpcapi.CreateAccountRequest) (*rpcapi.CreateAccountResponse, error) {
	if err := f.maybeRedirect(); err != nil {
		return nil, err
	}
	return &rpcapi.CreateAccountResponse{UserID: 7}, nil
}

func (f *fakeMessagingServer) Login(ctx context.Context, req *rpcapi.LoginRequest) (*rpcapi.LoginResponse, error) {
	if err := f.maybeRedirect(); err != nil {
		return nil, err
	}
	return &rpcapi.LoginResponse{UserID: 7, Token: "tok-123"}, nil
}

func (f *fakeMessagingServer) ListAccounts(ctx context.Context, req *rpcapi.ListAccountsRequest) (*rpcapi.ListAccountsResponse, error) {
	return &rpcapi.ListAccountsResponse{Usernames: []string{"alice", "bob"}}, nil
}

func (f *fakeMessagingServer) DisplayConversation(ctx context.Context, req *rpcapi.DisplayConversationRequest) (*rpcapi.DisplayConversationResponse, error) {
	return &rpcapi.DisplayConversationResponse{Messages: []rpcapi.MessageView{{UID: 1, SenderID: req.UserID, Content: "hi"}}}, nil
}

func (f *fakeMessagingServer) SendMessage(ctx context.Context, req *rpcapi.SendMessageRequest) (*rpcapi.SendMessageResponse, error) {
	if err := f.maybeRedirect(); err != nil {
		return nil, err
	}
	return &rpcapi.SendMessageResponse{MessageID: 42}, nil
}

func (f *fakeMessagingServer) ReadMessages(ctx context.Context, req *rpcapi.ReadMessagesRequest) (*rpcapi.ReadMessagesResponse, error) {
	return &rpcapi.ReadMessagesResponse{MessageIDs: []uint32{1, 2}}, nil
}

func (f *fakeMessagingServer) DeleteMessage(ctx context.Context, req *rpcapi.DeleteMessageRequest) (*rpcapi.DeleteMessageResponse, error) {
	return &rpcapi.DeleteMessageResponse{Ok: true}, nil
}

func (f *fakeMessagingServer) DeleteAccount(ctx context.Context, req *rpcapi.DeleteAccountRequest) (*rpcapi.DeleteAccountResponse, error) {
	return &rpcapi.DeleteAccountResponse{Ok: true}, nil
}

func (f *fakeMessagingServer) GetUnreadMessages(ctx context.Context, req *rpcapi.GetUnreadMessagesRequest) (*rpcapi.GetUnreadMessagesResponse, error) {
	return &rpcapi.GetUnreadMessagesResponse{MessageIDs: []uint32{3}}, nil
}

func (f *fakeMessagingServer) GetMessageInformation(ctx context.Context, req *rpcapi.GetMessageInformationRequest) (*rpcapi.GetMessageInformationResponse, error) {
	return &rpcapi.GetMessageInformationResponse{Message: rpcapi.MessageView{UID: req.MessageID, Content: "hello"}}, nil
}

func (f *fakeMessagingServer) GetUsernameByID(ctx context.Context, req *rpcapi.GetUsernameByIDRequest) (*rpcapi.GetUsernameByIDResponse, error) {
	return &rpcapi.GetUsernameByIDResponse{Username: "bob"}, nil
}

func (f *fakeMessagingServer) MarkMessageAsRead(ctx context.Context, req *rpcapi.MarkMessageAsReadRequest) (*rpcapi.MarkMessageAsReadResponse, error) {
	return &rpcapi.MarkMessageAsReadResponse{Ok: true}, nil
}

func (f *fakeMessagingServer) GetUserByUsername(ctx context.Context, req *rpcapi.GetUserByUsernameRequest) (*rpcapi.GetUserByUsernameResponse, error) {
	return &rpcapi.GetUserByUsernameResponse{TargetID: 9}, nil
}

func (f *fakeMessagingServer) LeaderPing(ctx context.Context, req *rpcapi.LeaderPingRequest) (*rpcapi.LeaderPingResponse, error) {
	return &rpcapi.LeaderPingResponse{IsLeader: true, LeaderAddr: "self"}, nil
}

var _ rpcapi.MessagingServer = (*fakeMessagingServer)(nil)

// startFakeServer serves facade on a loopback port and returns its
// address. The server and its listener are torn down on test cleanup.
func startFakeServer(t *testing.T, facade rpcapi.MessagingServer) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := rpcapi.NewServer(facade, nil)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	return lis.Addr().String()
}

func TestClient_HappyPath(t *testing.T) {
	addr := startFakeServer(t, &fakeMessagingServer{})
	c := NewClient(addr)
	defer c.Close()
	ctx := context.Background()

	id, err := c.CreateAccount(ctx, "alice", []byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, uint32(7), id)

	uid, token, err := c.Login(ctx, "alice", []byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, uint32(7), uid)
	assert.Equal(t, "tok-123", token)

	names, err := c.ListAccounts(ctx, "*")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, names)

	msgID, err := c.SendMessage(ctx, uid, token, 2, "hello")
	require.NoError(t, err)
	assert.Equal(t, uint32(42), msgID)

	ids, err := c.ReadMessages(ctx, uid, token, 5)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2}, ids)
}

func TestClient_FollowsNotLeaderRedirect(t *testing.T) {
	leaderAddr := startFakeServer(t, &fakeMessagingServer{})
	followerAddr := startFakeServer(t, &fakeMessagingServer{redirectTo: leaderAddr})

	c := NewClient(followerAddr)
	defer c.Close()

	id, err := c.CreateAccount(context.Background(), "alice", []byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, uint32(7), id)
}

func TestClient_UnreachableServerReturnsError(t *testing.T) {
	deadClient := NewClient("127.0.0.1:1")
	defer deadClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := deadClient.CreateAccount(ctx, "x", []byte("y"))
	assert.Error(t, err)
}

func TestClient_LeaderPingBypassesRedirect(t *testing.T) {
	addr := startFakeServer(t, &fakeMessagingServer{})
	c := NewClient(addr)
	defer c.Close()

	resp, err := c.LeaderPing(context.Background(), addr)
	require.NoError(t, err)
	assert.True(t, resp.IsLeader)
}
