package state

import (
	"sort"
	"sync"

	"github.com/cuemby/relay/pkg/storage"
	"github.com/cuemby/relay/pkg/types"
)

// State is the in-memory Application State. Every exported method takes
// and releases the internal lock itself; callers never hold it across
// calls. Durable persistence is the Command Applier's job, not State's —
// State only ever reflects what has already been written through.
type State struct {
	mu sync.RWMutex

	usersByID   map[uint32]*types.User
	usersByName map[string]*types.User

	messagesByUID map[uint32]*types.Message
	conversations map[types.ConversationKey][]*types.Message

	sessions map[uint32]*types.Session
}

// New returns an empty Application State.
func New() *State {
	return &State{
		usersByID:     make(map[uint32]*types.User),
		usersByName:   make(map[string]*types.User),
		messagesByUID: make(map[uint32]*types.Message),
		conversations: make(map[types.ConversationKey][]*types.Message),
		sessions:      make(map[uint32]*types.Session),
	}
}

// Load reconstructs the Application State from the Durable Store, in the
// order spec §4.2 requires: Users, then Messages (rebuilding the
// conversation index; unread queues travel inside the User records
// themselves), then non-expired Sessions.
func (s *State) Load(store storage.Store, now int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := store.ListUsers()
	if err != nil {
		return err
	}
	for _, u := range users {
		s.usersByID[u.ID] = u
		s.usersByName[u.Username] = u
	}

	messages, err := store.ListMessages()
	if err != nil {
		return err
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].Timestamp < messages[j].Timestamp })
	for _, m := range messages {
		s.messagesByUID[m.UID] = m
		key := types.NewConversationKey(m.SenderID, m.ReceiverID)
		s.conversations[key] = append(s.conversations[key], m)
	}

	sessions, err := store.ListSessions()
	if err != nil {
		return err
	}
	for _, sess := range sessions {
		if !sess.Expired(now) {
			s.sessions[sess.UserID] = sess
		}
	}

	return nil
}

// Users

func (s *State) CreateUser(user *types.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usersByID[user.ID] = user
	s.usersByName[user.Username] = user
}

func (s *State) DeleteUser(id uint32) (*types.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.usersByID[id]
	if !ok {
		return nil, false
	}
	delete(s.usersByID, id)
	delete(s.usersByName, user.Username)
	delete(s.sessions, id)
	return user, true
}

func (s *State) GetUser(id uint32) (*types.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.usersByID[id]
	return u, ok
}

func (s *State) GetUserByUsername(username string) (*types.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.usersByName[username]
	return u, ok
}

func (s *State) UsernameExists(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.usersByName[username]
	return ok
}

// UserIDs returns every currently present user id, ascending. The leader's
// id allocator uses this to resync its next-id counter to max+1, per
// spec §4.2's reload policy: tombstones are not carried across a restart,
// only the high-water mark is.
func (s *State) UserIDs() []uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uint32, 0, len(s.usersByID))
	for id := range s.usersByID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// MatchUsernames returns every username matching pattern, where '*' matches
// any run of characters (including none) and '?' matches exactly one.
func (s *State) MatchUsernames(pattern string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matches []string
	for name := range s.usersByName {
		if matchGlob(pattern, name) {
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)
	return matches
}

// MarkRead flips a message's read flag and removes it from the owning
// user's unread queue. Reports false if the message does not exist.
func (s *State) MarkRead(userID, messageID uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.messagesByUID[messageID]
	if !ok {
		return false
	}
	msg.Read = true
	if u, ok := s.usersByID[userID]; ok {
		u.RemoveUnread(messageID)
	}
	return true
}

// PopUnread dequeues up to n unread message ids for userID in FIFO order,
// flipping each message's read flag, silent if the queue holds fewer than n.
func (s *State) PopUnread(userID uint32, n int) []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.usersByID[userID]
	if !ok {
		return nil
	}
	ids := u.PopUnread(n)
	for _, id := range ids {
		if msg, ok := s.messagesByUID[id]; ok {
			msg.Read = true
		}
	}
	return ids
}

// UnreadIDs returns a copy of userID's unread queue without consuming it,
// for the read-only GetUnreadMessages RPC.
func (s *State) UnreadIDs(userID uint32) []uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.usersByID[userID]
	if !ok {
		return nil
	}
	out := make([]uint32, len(u.Unread))
	copy(out, u.Unread)
	return out
}

// Messages

func (s *State) CreateMessage(msg *types.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messagesByUID[msg.UID] = msg
	key := types.NewConversationKey(msg.SenderID, msg.ReceiverID)
	s.conversations[key] = append(s.conversations[key], msg)
	if receiver, ok := s.usersByID[msg.ReceiverID]; ok {
		receiver.PushUnread(msg.UID)
		receiver.TouchConversant(msg.SenderID)
	}
	if sender, ok := s.usersByID[msg.SenderID]; ok {
		sender.TouchConversant(msg.ReceiverID)
	}
}

func (s *State) GetMessage(uid uint32) (*types.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messagesByUID[uid]
	return m, ok
}

func (s *State) DeleteMessage(uid uint32) (*types.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.messagesByUID[uid]
	if !ok {
		return nil, false
	}
	delete(s.messagesByUID, uid)

	key := types.NewConversationKey(msg.SenderID, msg.ReceiverID)
	conv := s.conversations[key]
	for i, m := range conv {
		if m.UID == uid {
			s.conversations[key] = append(conv[:i], conv[i+1:]...)
			break
		}
	}

	if receiver, ok := s.usersByID[msg.ReceiverID]; ok {
		receiver.RemoveUnread(uid)
	}
	return msg, true
}

// MessageUIDs returns every currently present message uid, ascending.
func (s *State) MessageUIDs() []uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uids := make([]uint32, 0, len(s.messagesByUID))
	for uid := range s.messagesByUID {
		uids = append(uids, uid)
	}
	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })
	return uids
}

// Conversation returns the ordered message history between a and b.
func (s *State) Conversation(a, b uint32) []*types.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := types.NewConversationKey(a, b)
	conv := s.conversations[key]
	out := make([]*types.Message, len(conv))
	copy(out, conv)
	return out
}

// Sessions

func (s *State) PutSession(session *types.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.UserID] = session
}

func (s *State) GetSession(userID uint32) (*types.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	return sess, ok
}

func (s *State) DeleteSession(userID uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// SessionCount returns the number of sessions currently held, for metrics.
func (s *State) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// matchGlob reports whether s matches pattern, where '*' matches any run
// of characters (including the empty run) and '?' matches exactly one
// character. Implemented as a direct scan rather than compiling a regexp,
// per the allowance for a hash-map-scan implementation.
func matchGlob(pattern, s string) bool {
	var pIdx, sIdx, starIdx, sMatch int
	starIdx, sMatch = -1, 0
	for sIdx < len(s) {
		if pIdx < len(pattern) && (pattern[pIdx] == '?' || pattern[pIdx] == s[sIdx]) {
			pIdx++
			sIdx++
		} else if pIdx < len(pattern) && pattern[pIdx] == '*' {
			starIdx = pIdx
			sMatch = sIdx
			pIdx++
		} else if starIdx != -1 {
			pIdx = starIdx + 1
			sMatch++
			sIdx = sMatch
		} else {
			return false
		}
	}
	for pIdx < len(pattern) && pattern[pIdx] == '*' {
		pIdx++
	}
	return pIdx == len(pattern)
}
