package storage

import (
	"github.com/cuemby/relay/pkg/types"
)

// Store is the Durable Store: everything a node must persist to survive a
// restart without losing committed state. The Raft Core only ever appends
// to or truncates the log through this interface; the Application State
// only ever reconstructs itself by replaying users/messages/sessions read
// back from it.
type Store interface {
	// Raft metadata
	SaveTermAndVote(term int64, votedFor string) error
	LoadTermAndVote() (term int64, votedFor string, err error)
	SaveCommitIndex(index uint64) error
	LoadCommitIndex() (uint64, error)

	// Replicated log, keyed by 0-based log index.
	AppendLogEntry(index uint64, entry *types.LogEntry) error
	GetLogEntry(index uint64) (*types.LogEntry, error)
	LastLogIndex() (uint64, error)
	LoadAllLogEntries() ([]*types.LogEntry, error)
	// TruncateLogFrom deletes every entry at or after index, used when a
	// follower's log conflicts with the leader's and must be rolled back.
	TruncateLogFrom(index uint64) error

	// Users
	PutUser(user *types.User) error
	GetUser(id uint32) (*types.User, error)
	GetUserByUsername(username string) (*types.User, error)
	ListUsers() ([]*types.User, error)
	DeleteUser(id uint32) error

	// Messages
	PutMessage(msg *types.Message) error
	GetMessage(uid uint32) (*types.Message, error)
	ListMessages() ([]*types.Message, error)
	DeleteMessage(uid uint32) error

	// Sessions
	PutSession(session *types.Session) error
	GetSession(userID uint32) (*types.Session, error)
	ListSessions() ([]*types.Session, error)
	DeleteSession(userID uint32) error

	// Op de-duplication table: records which operation ids (assigned by
	// the Service Façade per proposal) have already been applied, so the
	// same log entry is never applied twice (open-question resolution 4).
	MarkOpApplied(opID string) error
	IsOpApplied(opID string) (bool, error)

	Close() error
}
