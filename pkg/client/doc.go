/*
Package client is a Go client library for a Relay cluster: every one of
the fourteen Messaging RPCs as a plain method, with leader discovery and
redirect-following retried underneath so a caller never has to parse a
NotLeader error itself.

# Architecture

	┌──────────────────────────── CLIENT ────────────────────────────┐
	│                                                                   │
	│   Client                                                        │
	│     - leader   (best-known leader address)                      │
	│     - conns map[addr]*grpc.ClientConn  (address book)           │
	│                                                                   │
	│   call(ctx, fn), up to maxRedirects attempts:                   │
	│     stub := stubFor(addr)                                       │
	│     err := fn(ctx, stub)                                        │
	│       NotLeader with hint? -> addr = hint, try again            │
	│       any other error      -> return as-is                      │
	│                                                                   │
	│   CreateAccount/Login/SendMessage/... each just call call(...)  │
	│   with a small closure invoking the matching MessagingServer     │
	│   method and unpacking its response.                            │
	└────────────────────────────────────────────────────────────────────┘

Any RPC may come back redirecting to a different address, so the client
keeps a small address book (stubFor lazily dials and caches one
*grpc.ClientConn per address) rather than a single fixed server
connection.

# Construction

NewClient(seedAddr) opens with exactly one address — any live member of
the cluster works as a seed, since a non-leader's NotLeader redirect is
enough to find the real leader on the first call. There is no separate
"discover the cluster" step: discovery and retry are the same mechanism.

# Retry policy

call follows redirects only: a NotLeader error that carries a hint
(decoded via apierr.FromStatus) switches to that address and tries again
at once, for at most maxRedirects (5) attempts in all; a successful call
remembers its address as the leader. Every other error kind, Unavailable
included, is returned to the caller unchanged: call does not retry it,
does not back off, and does not use LeaderPing to look for a new leader.

# Exported surface

	type Client struct{ ... }
	func NewClient(seedAddr string) *Client
	func (c *Client) Close() error

	// one method per Messaging RPC, spec types (no rpcapi.*Request/Response
	// in the signature, except LeaderPing's response):
	func (c *Client) CreateAccount(ctx, username string, credential []byte) (uint32, error)
	func (c *Client) Login(ctx, username string, credential []byte) (uint32, string, error)
	func (c *Client) ListAccounts(ctx, pattern string) ([]string, error)
	func (c *Client) DisplayConversation(ctx, userID uint32, token string, peerID uint32) ([]rpcapi.MessageView, error)
	func (c *Client) SendMessage(ctx, userID uint32, token string, receiverID uint32, content string) (uint32, error)
	func (c *Client) ReadMessages(ctx, userID uint32, token string, n int32) ([]uint32, error)
	func (c *Client) DeleteMessage(ctx, userID uint32, token string, messageID uint32) error
	func (c *Client) DeleteAccount(ctx, userID uint32, token string) error
	func (c *Client) GetUnreadMessages(ctx, userID uint32, token string) ([]uint32, error)
	func (c *Client) GetMessageInformation(ctx, userID uint32, token string, messageID uint32) (rpcapi.MessageView, error)
	func (c *Client) GetUsernameByID(ctx, userID uint32, token string, targetID uint32) (string, error)
	func (c *Client) MarkMessageAsRead(ctx, userID uint32, token string, messageID uint32) error
	func (c *Client) GetUserByUsername(ctx, userID uint32, token string, username string) (uint32, error)
	func (c *Client) LeaderPing(ctx, addr string) (*rpcapi.LeaderPingResponse, error)

cmd/relayctl is a thin cobra CLI built directly on top of this package,
one subcommand per method above.
*/
package client
