/*
Package state holds the Application State: the in-memory indices the
Service Façade reads directly and the Command Applier mutates. State is
reconstructed from pkg/storage on startup and is otherwise a pure
function of the committed log prefix — nothing in this package ever
touches disk itself.

# Architecture

	┌──────────────────────────── STATE ─────────────────────────────┐
	│                                                                   │
	│  State (sync.RWMutex-guarded)                                   │
	│   ┌─────────────┐  ┌─────────────┐  ┌──────────────┐           │
	│   │ users        │  │ messages     │  │ sessions      │           │
	│   │ id -> *User  │  │ uid -> *Msg  │  │ userID -> *Sess│          │
	│   │ usernames    │  │              │  │               │           │
	│   │ -> id index  │  │              │  │               │           │
	│   └─────────────┘  └─────────────┘  └──────────────┘           │
	│                                                                   │
	│  Load(store, now)  — replay everything persisted in pkg/storage  │
	│  on process start, dropping sessions already expired as of now   │
	│                                                                   │
	│  Writers (pkg/apply only): CreateUser, DeleteUser, CreateMessage, │
	│  DeleteMessage, MarkRead, PopUnread, PutSession, DeleteSession   │
	│                                                                   │
	│  Readers (pkg/facade, pkg/metrics): GetUser, GetUserByUsername,  │
	│  UsernameExists, MatchUsernames, Conversation, UnreadIDs, ...    │
	└────────────────────────────────────────────────────────────────────┘

# Concurrency

A single sync.RWMutex guards every field. Readers (every Facade RPC that
doesn't mutate) take RLock; the Command Applier, the only writer, takes
Lock. There is exactly one Applier per node and it only ever runs from
raftcore.Node's apply loop, so writes are already serialized before they
reach State — the mutex exists for readers racing concurrent RPC
goroutines, not for writer/writer exclusion.

# Reconstruction on startup

Load(store, now) is the only way State is populated outside of live
Apply calls: it range-scans every user, message, and session out of the
Durable Store and rebuilds the in-memory indices (including the
username and conversation secondary indices that pkg/storage itself
doesn't maintain; unread queues come back inside the User records),
dropping any session whose expiry is already
in the past as of now. This makes State fully derivable from the
Durable Store at any point — there is no state this package holds that
isn't also, in some form, in pkg/storage.

# Username matching

MatchUsernames implements spec.md/original_source's glob-style account
search (`*`/`?` wildcards) with matchGlob, a small iterative two-pointer matcher
over the username set — a hash map scan is an acceptable cost at this
system's scale (see SPEC_FULL.md's supplemented-features list).

# Unread-message queues

Each User carries its own ordered unread-id slice (PushUnread,
RemoveUnread, PopUnread on pkg/types.User); PopUnread here is the
State-level wrapper the applier's READ_MESSAGES command calls, dequeuing
up to n ids in FIFO (oldest-unread-first) order and returning fewer than
n, silently, if that's all there are.

# Exported surface

	type State struct{ ... }
	func New() *State
	func (s *State) Load(store storage.Store, now int64) error

	func (s *State) CreateUser(user *types.User)
	func (s *State) DeleteUser(id uint32) (*types.User, bool)
	func (s *State) GetUser(id uint32) (*types.User, bool)
	func (s *State) GetUserByUsername(username string) (*types.User, bool)
	func (s *State) UsernameExists(username string) bool
	func (s *State) UserIDs() []uint32
	func (s *State) MatchUsernames(pattern string) []string

	func (s *State) MarkRead(userID, messageID uint32) bool
	func (s *State) PopUnread(userID uint32, n int) []uint32
	func (s *State) UnreadIDs(userID uint32) []uint32
	func (s *State) CreateMessage(msg *types.Message)
	func (s *State) GetMessage(uid uint32) (*types.Message, bool)
	func (s *State) DeleteMessage(uid uint32) (*types.Message, bool)
	func (s *State) MessageUIDs() []uint32
	func (s *State) Conversation(a, b uint32) []*types.Message

	func (s *State) PutSession(session *types.Session)
	func (s *State) GetSession(userID uint32) (*types.Session, bool)
	func (s *State) DeleteSession(userID uint32)
	func (s *State) SessionCount() int
*/
package state
