/*
Package facade implements the Service Façade: the fourteen Messaging RPCs
a Relay client calls (account, session, and messaging operations), and the
glue between the client-facing gRPC surface and the cluster's replicated
state.

# Architecture

	┌───────────────────────────── FACADE ─────────────────────────────┐
	│                                                                   │
	│        rpcapi.MessagingServer (incoming RPC)                     │
	│                     │                                             │
	│                     ▼                                             │
	│  ┌──────────────────────────────────────────────────┐           │
	│  │                   Facade                           │           │
	│  │  - authenticate(userID, token)  — session check     │           │
	│  │  - ensureLeader()  — redirect non-leaders            │           │
	│  │  - propose(kind, payload)  — write path               │           │
	│  │  - read handlers call pkg/state directly              │           │
	│  └───────┬────────────────────────────────┬───────────┘           │
	│          │ writes                          │ reads                │
	│          ▼                                  ▼                      │
	│  ┌──────────────────┐             ┌──────────────────────┐        │
	│  │  raftcore.Node     │             │   state.State          │        │
	│  │  Propose+WaitApplied│◄───applies──┤  (read directly,       │        │
	│  │  (commit-wait bound) │  via apply  │   no commit-wait)      │        │
	│  └──────────────────┘   .Applier    └──────────────────────┘        │
	└────────────────────────────────────────────────────────────────────┘

Every mutating RPC (CreateAccount, Login, SendMessage, ReadMessages,
DeleteMessage, DeleteAccount, MarkMessageAsRead) follows the same path:
check leadership, authenticate the session if the RPC needs one, encode
the command, propose(), wait for it to apply, then shape the applier's
result into the RPC's response type. Every read-only RPC (ListAccounts,
DisplayConversation, GetUnreadMessages, GetMessageInformation,
GetUsernameByID, GetUserByUsername, LeaderPing) is served directly from
state.State without touching Raft Core at all — reads may be stale per
spec §6, a deliberate trade-off against paying commit-wait latency on
every lookup.

# Leader routing

ensureLeader returns an *apierr.Error whenever the local node isn't
leader, before any write is attempted: Kind NotLeader with a LeaderHint
(the current leader's address, from raftcore.Node.LeaderAddr) when a
leader is known, Kind Unavailable when none is. Facade RPC handlers
translate that into a gRPC status via apierr.ToStatus so pkg/client's
retry loop can parse the hint out of the status message and redial the
right node without the caller doing anything manual.

# Commit-wait

propose() is the single write choke point: it encodes a types.Command,
calls node.Propose to append it to the leader's own log, then blocks on
node.WaitApplied(ctx, index) with a context bounded by
SetCommitWaitTimeout (defaulting to a few seconds). A timeout surfaces
as apierr.Unavailable rather than a hard failure, since the command may
still commit later. Every propose() call mints a fresh operation id, and
requests carry none of their own, so a client that resends a mutation
after an Unavailable commit-wait proposes a second, distinct command:
pkg/apply's de-duplication table only stops the same log entry from
being applied twice, not a resent request.

# Authentication

authenticate(userID, token) looks up the session pkg/state holds for
userID and compares the token and expiry; a missing or mismatched
session is apierr.Unauthenticated. Login is itself routed through
propose() (see DESIGN.md's open-question resolution on replicated
sessions) so a session created on the leader is visible on every
follower immediately after apply, not just on the node that handled the
RPC.

# ID allocation

idalloc.go's idAllocator hands out the small integer user/message ids
the wire protocol and spec use in place of opaque strings. Resync runs
whenever the observed Raft term changes: it sets the counter to one past
the highest id present in state and empties the free list. Next hands
out the lowest released id, else the counter. Release is called only
when a proposal that took an id fails with an error other than
Unavailable, i.e. when the command cannot still commit; deleting an
account or message does not release its id, so deleted ids are not
handed out again.

# Exported surface

	type Facade struct{ ... }
	func New(node *raftcore.Node, applier *apply.Applier, st *state.State, selfAddr string) *Facade
	func (f *Facade) SetCommitWaitTimeout(d time.Duration)

	// rpcapi.MessagingServer implementation, one method per spec RPC:
	func (f *Facade) CreateAccount(ctx, *rpcapi.CreateAccountRequest) (*rpcapi.CreateAccountResponse, error)
	func (f *Facade) Login(ctx, *rpcapi.LoginRequest) (*rpcapi.LoginResponse, error)
	func (f *Facade) ListAccounts(ctx, *rpcapi.ListAccountsRequest) (*rpcapi.ListAccountsResponse, error)
	func (f *Facade) DisplayConversation(ctx, *rpcapi.DisplayConversationRequest) (*rpcapi.DisplayConversationResponse, error)
	func (f *Facade) SendMessage(ctx, *rpcapi.SendMessageRequest) (*rpcapi.SendMessageResponse, error)
	func (f *Facade) ReadMessages(ctx, *rpcapi.ReadMessagesRequest) (*rpcapi.ReadMessagesResponse, error)
	func (f *Facade) DeleteMessage(ctx, *rpcapi.DeleteMessageRequest) (*rpcapi.DeleteMessageResponse, error)
	func (f *Facade) DeleteAccount(ctx, *rpcapi.DeleteAccountRequest) (*rpcapi.DeleteAccountResponse, error)
	func (f *Facade) GetUnreadMessages(ctx, *rpcapi.GetUnreadMessagesRequest) (*rpcapi.GetUnreadMessagesResponse, error)
	func (f *Facade) GetMessageInformation(ctx, *rpcapi.GetMessageInformationRequest) (*rpcapi.GetMessageInformationResponse, error)
	func (f *Facade) GetUsernameByID(ctx, *rpcapi.GetUsernameByIDRequest) (*rpcapi.GetUsernameByIDResponse, error)
	func (f *Facade) MarkMessageAsRead(ctx, *rpcapi.MarkMessageAsReadRequest) (*rpcapi.MarkMessageAsReadResponse, error)
	func (f *Facade) GetUserByUsername(ctx, *rpcapi.GetUserByUsernameRequest) (*rpcapi.GetUserByUsernameResponse, error)
	func (f *Facade) LeaderPing(ctx, *rpcapi.LeaderPingRequest) (*rpcapi.LeaderPingResponse, error)

# Testing

facade_test.go builds a real single-node raftcore.Node (short election
timeouts, a transport that always errors so the node stays peerless-leader
once elected) rather than mocking Raft Core, and drives full RPC
round-trips through it: TestFacade_CreateAccountLoginAndSendMessage,
TestFacade_DuplicateUsernameRejected,
TestFacade_LoginWithBadCredentialUnauthenticated,
TestFacade_RejectsRPCsWithBadSessionToken,
TestFacade_DeleteAccountDoesNotCascadeMessages,
TestFacade_ListAccountsMatchesGlobPattern, TestFacade_LeaderPingReportsSelf.
*/
package facade
