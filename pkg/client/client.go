package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cuemby/relay/pkg/apierr"
	"github.com/cuemby/relay/pkg/rpcapi"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	defaultCallTimeout = 10 * time.Second
	maxRedirects       = 5
)

// Client is a cluster-aware Relay client: it keeps one lazily-dialed
// connection per address it has ever talked to, remembers the last
// address that answered as leader, and follows NotLeader redirects
// automatically.
type Client struct {
	mu      sync.Mutex
	conns   map[string]*grpc.ClientConn
	leader  string
	timeout time.Duration
}

// NewClient builds a Client seeded with any one known node address —
// it does not need to be the leader; the first call that requires one
// will discover it via a NotLeader redirect.
func NewClient(seedAddr string) *Client {
	return &Client{
		conns:   make(map[string]*grpc.ClientConn),
		leader:  seedAddr,
		timeout: defaultCallTimeout,
	}
}

// Close tears down every connection this client has opened.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for addr, conn := range c.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(c.conns, addr)
	}
	return firstErr
}

func (c *Client) stubFor(addr string) (rpcapi.MessagingServer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	conn, ok := c.conns[addr]
	if !ok {
		var err error
		conn, err = grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, fmt.Errorf("client: dial %s: %w", addr, err)
		}
		c.conns[addr] = conn
	}
	return rpcapi.NewMessagingClient(conn), nil
}

// call invokes fn against the presumed leader, following NotLeader
// redirects up to maxRedirects times and giving up immediately on any
// other error kind.
func (c *Client) call(ctx context.Context, fn func(context.Context, rpcapi.MessagingServer) error) error {
	c.mu.Lock()
	addr := c.leader
	c.mu.Unlock()
	if addr == "" {
		return apierr.New(apierr.Unavailable, "client: no known server address")
	}

	var lastErr error
	for attempt := 0; attempt < maxRedirects; attempt++ {
		stub, err := c.stubFor(addr)
		if err != nil {
			return err
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err = fn(callCtx, stub)
		cancel()
		if err == nil {
			c.mu.Lock()
			c.leader = addr
			c.mu.Unlock()
			return nil
		}

		apiErr := apierr.FromStatus(err)
		lastErr = apiErr
		if apiErr.Kind == apierr.NotLeader && apiErr.LeaderHint != "" {
			addr = apiErr.LeaderHint
			continue
		}
		return apiErr
	}
	return lastErr
}

func (c *Client) CreateAccount(ctx context.Context, username string, credential []byte) (uint32, error) {
	var resp *rpcapi.CreateAccountResponse
	err := c.call(ctx, func(ctx context.Context, s rpcapi.MessagingServer) error {
		var err error
		resp, err = s.CreateAccount(ctx, &rpcapi.CreateAccountRequest{Username: username, Credential: credential})
		return err
	})
	if err != nil {
		return 0, err
	}
	return resp.UserID, nil
}

func (c *Client) Login(ctx context.Context, username string, credential []byte) (uint32, string, error) {
	var resp *rpcapi.LoginResponse
	err := c.call(ctx, func(ctx context.Context, s rpcapi.MessagingServer) error {
		var err error
		resp, err = s.Login(ctx, &rpcapi.LoginRequest{Username: username, Credential: credential})
		return err
	})
	if err != nil {
		return 0, "", err
	}
	return resp.UserID, resp.Token, nil
}

func (c *Client) ListAccounts(ctx context.Context, pattern string) ([]string, error) {
	var resp *rpcapi.ListAccountsResponse
	err := c.call(ctx, func(ctx context.Context, s rpcapi.MessagingServer) error {
		var err error
		resp, err = s.ListAccounts(ctx, &rpcapi.ListAccountsRequest{Pattern: pattern})
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp.Usernames, nil
}

func (c *Client) DisplayConversation(ctx context.Context, userID uint32, token string, peerID uint32) ([]rpcapi.MessageView, error) {
	var resp *rpcapi.DisplayConversationResponse
	err := c.call(ctx, func(ctx context.Context, s rpcapi.MessagingServer) error {
		var err error
		resp, err = s.DisplayConversation(ctx, &rpcapi.DisplayConversationRequest{UserID: userID, Token: token, PeerID: peerID})
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

func (c *Client) SendMessage(ctx context.Context, userID uint32, token string, receiverID uint32, content string) (uint32, error) {
	var resp *rpcapi.SendMessageResponse
	err := c.call(ctx, func(ctx context.Context, s rpcapi.MessagingServer) error {
		var err error
		resp, err = s.SendMessage(ctx, &rpcapi.SendMessageRequest{UserID: userID, Token: token, ReceiverID: receiverID, Content: content})
		return err
	})
	if err != nil {
		return 0, err
	}
	return resp.MessageID, nil
}

func (c *Client) ReadMessages(ctx context.Context, userID uint32, token string, n int32) ([]uint32, error) {
	var resp *rpcapi.ReadMessagesResponse
	err := c.call(ctx, func(ctx context.Context, s rpcapi.MessagingServer) error {
		var err error
		resp, err = s.ReadMessages(ctx, &rpcapi.ReadMessagesRequest{UserID: userID, Token: token, N: n})
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp.MessageIDs, nil
}

func (c *Client) DeleteMessage(ctx context.Context, userID uint32, token string, messageID uint32) error {
	return c.call(ctx, func(ctx context.Context, s rpcapi.MessagingServer) error {
		_, err := s.DeleteMessage(ctx, &rpcapi.DeleteMessageRequest{UserID: userID, Token: token, MessageID: messageID})
		return err
	})
}

func (c *Client) DeleteAccount(ctx context.Context, userID uint32, token string) error {
	return c.call(ctx, func(ctx context.Context, s rpcapi.MessagingServer) error {
		_, err := s.DeleteAccount(ctx, &rpcapi.DeleteAccountRequest{UserID: userID, Token: token})
		return err
	})
}

func (c *Client) GetUnreadMessages(ctx context.Context, userID uint32, token string) ([]uint32, error) {
	var resp *rpcapi.GetUnreadMessagesResponse
	err := c.call(ctx, func(ctx context.Context, s rpcapi.MessagingServer) error {
		var err error
		resp, err = s.GetUnreadMessages(ctx, &rpcapi.GetUnreadMessagesRequest{UserID: userID, Token: token})
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp.MessageIDs, nil
}

func (c *Client) GetMessageInformation(ctx context.Context, userID uint32, token string, messageID uint32) (rpcapi.MessageView, error) {
	var resp *rpcapi.GetMessageInformationResponse
	err := c.call(ctx, func(ctx context.Context, s rpcapi.MessagingServer) error {
		var err error
		resp, err = s.GetMessageInformation(ctx, &rpcapi.GetMessageInformationRequest{UserID: userID, Token: token, MessageID: messageID})
		return err
	})
	if err != nil {
		return rpcapi.MessageView{}, err
	}
	return resp.Message, nil
}

func (c *Client) GetUsernameByID(ctx context.Context, userID uint32, token string, targetID uint32) (string, error) {
	var resp *rpcapi.GetUsernameByIDResponse
	err := c.call(ctx, func(ctx context.Context, s rpcapi.MessagingServer) error {
		var err error
		resp, err = s.GetUsernameByID(ctx, &rpcapi.GetUsernameByIDRequest{UserID: userID, Token: token, TargetID: targetID})
		return err
	})
	if err != nil {
		return "", err
	}
	return resp.Username, nil
}

func (c *Client) MarkMessageAsRead(ctx context.Context, userID uint32, token string, messageID uint32) error {
	return c.call(ctx, func(ctx context.Context, s rpcapi.MessagingServer) error {
		_, err := s.MarkMessageAsRead(ctx, &rpcapi.MarkMessageAsReadRequest{UserID: userID, Token: token, MessageID: messageID})
		return err
	})
}

func (c *Client) GetUserByUsername(ctx context.Context, userID uint32, token string, username string) (uint32, error) {
	var resp *rpcapi.GetUserByUsernameResponse
	err := c.call(ctx, func(ctx context.Context, s rpcapi.MessagingServer) error {
		var err error
		resp, err = s.GetUserByUsername(ctx, &rpcapi.GetUserByUsernameRequest{UserID: userID, Token: token, Username: username})
		return err
	})
	if err != nil {
		return 0, err
	}
	return resp.TargetID, nil
}

// LeaderPing asks addr directly (bypassing the redirect loop) whether it
// believes itself leader, and who it thinks the leader is otherwise. Used
// by cmd/relayctl and tests to probe cluster state without first needing
// a session.
func (c *Client) LeaderPing(ctx context.Context, addr string) (*rpcapi.LeaderPingResponse, error) {
	stub, err := c.stubFor(addr)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return stub.LeaderPing(ctx, &rpcapi.LeaderPingRequest{})
}
