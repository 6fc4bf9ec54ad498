/*
Package types defines the domain model shared by every layer of Relay:
the durable store, the in-memory application state, the command
applier, and the service façade all operate on these structures rather
than redefining their own copies.

# Architecture

	┌──────────────────────────── TYPES ─────────────────────────────┐
	│                                                                   │
	│   Domain entities (persisted + held in memory):                │
	│     User, Message, Session, ConversationKey                    │
	│                                                                   │
	│   Replicated-log entities (what actually crosses the wire and   │
	│   the log):                                                      │
	│     CommandKind, Command, LogEntry                              │
	│     *Payload structs, one per CommandKind                       │
	│                                                                   │
	│   Encode(opID, kind, payload) -> Command                        │
	│     json.Marshal(payload) into Command.Data, stamped with       │
	│     an idempotency opID the Command Applier's dedup table keys  │
	│     on                                                          │
	└────────────────────────────────────────────────────────────────────┘

# Domain entities

User carries its id, username, credential, and two mutable bookkeeping
slices: Conversants (who it has exchanged messages with, maintained by
TouchConversant) and an ordered Unread queue (PushUnread/RemoveUnread/
PopUnread) — keeping the queue on the User itself instead of a separate
index means a single JSON record fully describes a user's messaging
state. Message is a flat record (uid, sender, receiver, content,
timestamp, read flag). ConversationKey normalizes a pair of user ids
(NewConversationKey always orders the smaller id first) so a
conversation between A and B is stored and looked up exactly once
regardless of call order. Session is a bearer token with an expiry;
Expired(now) is the single place that check happens.

# Commands and the replicated log

CommandKind is a small closed string enum — CreateAccount, DeleteAccount,
SendMessage, MarkRead, ReadMessages, DeleteMessage, Login — one per
spec.md mutation. Command is the generic envelope every Raft Core log
entry carries: an opID (for the Command Applier's de-duplication table),
a Kind, and an opaque json.RawMessage Data. LogEntry pairs a Command
with the Raft term it was proposed in, the unit raftcore.Node actually
appends to and replicates.

Each CommandKind has a matching typed Payload struct (CreateAccountPayload,
DeleteAccountPayload, SendMessagePayload, MarkReadPayload,
ReadMessagesPayload, DeleteMessagePayload, LoginPayload) — pkg/facade
builds one of these directly rather than hand-assembling JSON, and
pkg/apply's dispatch unmarshals Command.Data back into the matching
struct before calling the matching apply* method.

Encode(opID, kind, payload) is the one place a Command gets built: it
marshals payload into Command.Data and returns the envelope, so
pkg/facade and test code never construct a Command by hand.

# Exported surface

	type User struct{ ID, Username, Credential, Conversants, Unread }
	func (u *User) TouchConversant(id uint32)
	func (u *User) PushUnread(uid uint32)
	func (u *User) RemoveUnread(uid uint32)
	func (u *User) PopUnread(n int) []uint32

	type Message struct{ UID, SenderID, ReceiverID, Content, Timestamp, Read }
	type ConversationKey struct{ Low, High uint32 }
	func NewConversationKey(a, b uint32) ConversationKey

	type Session struct{ UserID, Token, ExpiresAt }
	func (s *Session) Expired(now int64) bool

	type CommandKind string
	type Command struct{ OpID string; Kind CommandKind; Data json.RawMessage }
	type LogEntry struct{ Term int64; Command Command }
	func Encode(opID string, kind CommandKind, payload interface{}) (Command, error)

	type CreateAccountPayload, DeleteAccountPayload, SendMessagePayload,
		MarkReadPayload, ReadMessagesPayload, DeleteMessagePayload,
		LoginPayload struct{ ... }
*/
package types
