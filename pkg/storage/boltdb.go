package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/cuemby/relay/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketMeta     = []byte("meta")
	bucketLog      = []byte("log")
	bucketUsers    = []byte("users")
	bucketMessages = []byte("messages")
	bucketSessions = []byte("sessions")
	bucketOps      = []byte("ops")
)

var (
	keyTerm        = []byte("term")
	keyVotedFor    = []byte("voted_for")
	keyCommitIndex = []byte("commit_index")
)

// BoltStore implements Store using bbolt.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (creating if necessary) a node's database file under
// dataDir and ensures every bucket exists.
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "relay.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		buckets := [][]byte{
			bucketMeta,
			bucketLog,
			bucketUsers,
			bucketMessages,
			bucketSessions,
			bucketOps,
		}
		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Raft metadata

func (s *BoltStore) SaveTermAndVote(term int64, votedFor string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(term))
		if err := b.Put(keyTerm, buf[:]); err != nil {
			return err
		}
		return b.Put(keyVotedFor, []byte(votedFor))
	})
}

func (s *BoltStore) LoadTermAndVote() (int64, string, error) {
	var term int64
	var votedFor string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		if data := b.Get(keyTerm); data != nil {
			term = int64(binary.BigEndian.Uint64(data))
		}
		if data := b.Get(keyVotedFor); data != nil {
			votedFor = string(data)
		}
		return nil
	})
	return term, votedFor, err
}

func (s *BoltStore) SaveCommitIndex(index uint64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], index)
		return b.Put(keyCommitIndex, buf[:])
	})
}

func (s *BoltStore) LoadCommitIndex() (uint64, error) {
	var index uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		if data := b.Get(keyCommitIndex); data != nil {
			index = binary.BigEndian.Uint64(data)
		}
		return nil
	})
	return index, err
}

// Replicated log

func logKey(index uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], index)
	return buf[:]
}

func (s *BoltStore) AppendLogEntry(index uint64, entry *types.LogEntry) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketLog)
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return b.Put(logKey(index), data)
	})
}

func (s *BoltStore) GetLogEntry(index uint64) (*types.LogEntry, error) {
	var entry types.LogEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketLog)
		data := b.Get(logKey(index))
		if data == nil {
			return fmt.Errorf("log entry not found: %d", index)
		}
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *BoltStore) LastLogIndex() (uint64, error) {
	var last uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketLog)
		k, _ := b.Cursor().Last()
		if k != nil {
			last = binary.BigEndian.Uint64(k)
		}
		return nil
	})
	return last, err
}

func (s *BoltStore) LoadAllLogEntries() ([]*types.LogEntry, error) {
	var entries []*types.LogEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketLog)
		return b.ForEach(func(k, v []byte) error {
			var entry types.LogEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			entries = append(entries, &entry)
			return nil
		})
	})
	return entries, err
}

func (s *BoltStore) TruncateLogFrom(index uint64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketLog)
		c := b.Cursor()
		var doomed [][]byte
		for k, _ := c.Seek(logKey(index)); k != nil; k, _ = c.Next() {
			doomed = append(doomed, append([]byte(nil), k...))
		}
		for _, k := range doomed {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// Users

func (s *BoltStore) PutUser(user *types.User) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketUsers)
		data, err := json.Marshal(user)
		if err != nil {
			return err
		}
		return b.Put(userKey(user.ID), data)
	})
}

func userKey(id uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], id)
	return buf[:]
}

func (s *BoltStore) GetUser(id uint32) (*types.User, error) {
	var user types.User
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketUsers)
		data := b.Get(userKey(id))
		if data == nil {
			return fmt.Errorf("user not found: %d", id)
		}
		return json.Unmarshal(data, &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *BoltStore) GetUserByUsername(username string) (*types.User, error) {
	var found *types.User
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketUsers)
		return b.ForEach(func(k, v []byte) error {
			var user types.User
			if err := json.Unmarshal(v, &user); err != nil {
				return err
			}
			if user.Username == username {
				u := user
				found = &u
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("user not found: %s", username)
	}
	return found, nil
}

func (s *BoltStore) ListUsers() ([]*types.User, error) {
	var users []*types.User
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketUsers)
		return b.ForEach(func(k, v []byte) error {
			var user types.User
			if err := json.Unmarshal(v, &user); err != nil {
				return err
			}
			users = append(users, &user)
			return nil
		})
	})
	return users, err
}

func (s *BoltStore) DeleteUser(id uint32) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketUsers)
		return b.Delete(userKey(id))
	})
}

// Messages

func messageKey(uid uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uid)
	return buf[:]
}

func (s *BoltStore) PutMessage(msg *types.Message) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMessages)
		data, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		return b.Put(messageKey(msg.UID), data)
	})
}

func (s *BoltStore) GetMessage(uid uint32) (*types.Message, error) {
	var msg types.Message
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMessages)
		data := b.Get(messageKey(uid))
		if data == nil {
			return fmt.Errorf("message not found: %d", uid)
		}
		return json.Unmarshal(data, &msg)
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *BoltStore) ListMessages() ([]*types.Message, error) {
	var messages []*types.Message
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMessages)
		return b.ForEach(func(k, v []byte) error {
			var msg types.Message
			if err := json.Unmarshal(v, &msg); err != nil {
				return err
			}
			messages = append(messages, &msg)
			return nil
		})
	})
	return messages, err
}

func (s *BoltStore) DeleteMessage(uid uint32) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMessages)
		return b.Delete(messageKey(uid))
	})
}

// Sessions

func (s *BoltStore) PutSession(session *types.Session) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		data, err := json.Marshal(session)
		if err != nil {
			return err
		}
		return b.Put(userKey(session.UserID), data)
	})
}

func (s *BoltStore) GetSession(userID uint32) (*types.Session, error) {
	var session types.Session
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		data := b.Get(userKey(userID))
		if data == nil {
			return fmt.Errorf("session not found: %d", userID)
		}
		return json.Unmarshal(data, &session)
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *BoltStore) ListSessions() ([]*types.Session, error) {
	var sessions []*types.Session
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		return b.ForEach(func(k, v []byte) error {
			var session types.Session
			if err := json.Unmarshal(v, &session); err != nil {
				return err
			}
			sessions = append(sessions, &session)
			return nil
		})
	})
	return sessions, err
}

func (s *BoltStore) DeleteSession(userID uint32) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		return b.Delete(userKey(userID))
	})
}

// Op de-duplication

func (s *BoltStore) MarkOpApplied(opID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketOps)
		return b.Put([]byte(opID), []byte{1})
	})
}

func (s *BoltStore) IsOpApplied(opID string) (bool, error) {
	var applied bool
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketOps)
		applied = b.Get([]byte(opID)) != nil
		return nil
	})
	return applied, err
}
