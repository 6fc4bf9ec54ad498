package types

// User is an account in the cluster. IDs are assigned by the leader,
// monotonically; the id of a deleted account is not handed out again.
type User struct {
	ID          uint32   `json:"id"`
	Username    string   `json:"username"`
	Credential  []byte   `json:"credential"` // opaque, typically a SHA-256 digest
	Unread      []uint32 `json:"unread"`     // message uids, FIFO order
	Conversants []uint32 `json:"conversants"` // most-recent-first, deduplicated
}

// TouchConversant moves id to the front of the recent-conversant list,
// inserting it if absent and dropping any older duplicate.
func (u *User) TouchConversant(id uint32) {
	next := make([]uint32, 0, len(u.Conversants)+1)
	next = append(next, id)
	for _, existing := range u.Conversants {
		if existing != id {
			next = append(next, existing)
		}
	}
	u.Conversants = next
}

// PushUnread appends uid to the unread queue if not already present.
func (u *User) PushUnread(uid uint32) {
	for _, existing := range u.Unread {
		if existing == uid {
			return
		}
	}
	u.Unread = append(u.Unread, uid)
}

// RemoveUnread drops uid from the unread queue, if present.
func (u *User) RemoveUnread(uid uint32) {
	for i, existing := range u.Unread {
		if existing == uid {
			u.Unread = append(u.Unread[:i], u.Unread[i+1:]...)
			return
		}
	}
}

// PopUnread dequeues up to n unread ids, FIFO, silent on underflow.
func (u *User) PopUnread(n int) []uint32 {
	if n > len(u.Unread) {
		n = len(u.Unread)
	}
	popped := make([]uint32, n)
	copy(popped, u.Unread[:n])
	u.Unread = u.Unread[n:]
	return popped
}

// Message is a single chat message between two users.
type Message struct {
	UID        uint32 `json:"uid"`
	SenderID   uint32 `json:"sender_id"`
	ReceiverID uint32 `json:"receiver_id"`
	Content    string `json:"content"`
	Read       bool   `json:"read"`
	Timestamp  int64  `json:"timestamp"` // seconds since epoch, leader-assigned
}

// ConversationKey canonicalizes an unordered pair of user ids as the sorted
// tuple, so {a,b} and {b,a} resolve to the same conversation.
type ConversationKey struct {
	Low  uint32 `json:"low"`
	High uint32 `json:"high"`
}

// NewConversationKey builds the canonical key for the pair (a, b).
func NewConversationKey(a, b uint32) ConversationKey {
	if a <= b {
		return ConversationKey{Low: a, High: b}
	}
	return ConversationKey{Low: b, High: a}
}

// Session binds a user id to the single currently-valid token.
type Session struct {
	UserID    uint32 `json:"user_id"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"` // seconds since epoch
}

// Expired reports whether the session is no longer valid at instant now
// (unix seconds).
func (s *Session) Expired(now int64) bool {
	return s.ExpiresAt > 0 && now >= s.ExpiresAt
}
