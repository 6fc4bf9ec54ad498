package apply

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cuemby/relay/pkg/state"
	"github.com/cuemby/relay/pkg/storage"
	"github.com/cuemby/relay/pkg/types"
)

// Applier deterministically applies committed log entries to the
// Application State and writes the same effects through to the Durable
// Store, strictly in log order.
type Applier struct {
	mu          sync.Mutex
	store       storage.Store
	state       *state.State
	lastApplied uint64
	results     map[string]interface{}
}

// New builds an Applier over the given Durable Store and Application
// State. lastApplied starts at 0; callers restoring from a restart should
// re-apply every persisted log entry up to the persisted commit index
// before serving requests.
func New(store storage.Store, st *state.State) *Applier {
	return &Applier{store: store, state: st, results: make(map[string]interface{})}
}

// Result returns, and clears, the value a prior Apply call for opID
// produced. The Command Applier has no return channel of its own — most
// commands are replayable from the Application State after the fact, but
// ReadMessages consumes the unread queue it reports, so the caller has no
// other way to learn which ids were popped once Apply has run.
func (a *Applier) Result(opID string) (interface{}, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, ok := a.results[opID]
	delete(a.results, opID)
	return v, ok
}

// LastApplied returns the highest log index applied so far.
func (a *Applier) LastApplied() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastApplied
}

// Apply executes the command at the given log index. It is idempotent:
// if entry.Command.OpID was already marked applied (the same entry seen
// again, e.g. on log replay after a restart), Apply only advances lastApplied
// and performs no further mutation, per open-question resolution 4.
func (a *Applier) Apply(index uint64, entry *types.LogEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if entry.Command.OpID != "" {
		done, err := a.store.IsOpApplied(entry.Command.OpID)
		if err != nil {
			return fmt.Errorf("apply: dedup check failed: %w", err)
		}
		if done {
			a.lastApplied = index
			return nil
		}
	}

	result, err := a.dispatch(entry.Command)
	if err != nil {
		return fmt.Errorf("apply: %s failed: %w", entry.Command.Kind, err)
	}

	if entry.Command.OpID != "" {
		if err := a.store.MarkOpApplied(entry.Command.OpID); err != nil {
			return fmt.Errorf("apply: mark op applied failed: %w", err)
		}
		if result != nil {
			a.results[entry.Command.OpID] = result
		}
	}

	a.lastApplied = index
	return nil
}

func (a *Applier) dispatch(cmd types.Command) (interface{}, error) {
	switch cmd.Kind {
	case types.CmdCreateAccount:
		var p types.CreateAccountPayload
		if err := json.Unmarshal(cmd.Data, &p); err != nil {
			return nil, err
		}
		return nil, a.applyCreateAccount(p)

	case types.CmdDeleteAccount:
		var p types.DeleteAccountPayload
		if err := json.Unmarshal(cmd.Data, &p); err != nil {
			return nil, err
		}
		return nil, a.applyDeleteAccount(p)

	case types.CmdSendMessage:
		var p types.SendMessagePayload
		if err := json.Unmarshal(cmd.Data, &p); err != nil {
			return nil, err
		}
		return nil, a.applySendMessage(p)

	case types.CmdMarkRead:
		var p types.MarkReadPayload
		if err := json.Unmarshal(cmd.Data, &p); err != nil {
			return nil, err
		}
		return nil, a.applyMarkRead(p)

	case types.CmdReadMessages:
		var p types.ReadMessagesPayload
		if err := json.Unmarshal(cmd.Data, &p); err != nil {
			return nil, err
		}
		return a.applyReadMessages(p)

	case types.CmdDeleteMessage:
		var p types.DeleteMessagePayload
		if err := json.Unmarshal(cmd.Data, &p); err != nil {
			return nil, err
		}
		return nil, a.applyDeleteMessage(p)

	case types.CmdLogin:
		var p types.LoginPayload
		if err := json.Unmarshal(cmd.Data, &p); err != nil {
			return nil, err
		}
		return nil, a.applyLogin(p)

	default:
		return nil, fmt.Errorf("unknown command kind: %s", cmd.Kind)
	}
}

func (a *Applier) applyCreateAccount(p types.CreateAccountPayload) error {
	user := &types.User{
		ID:         p.UserID,
		Username:   p.Username,
		Credential: p.Credential,
	}
	if err := a.store.PutUser(user); err != nil {
		return err
	}
	a.state.CreateUser(user)
	return nil
}

// applyDeleteAccount removes the user and its session. Messages the
// account sent or received are retained with a dangling id — §9's
// DELETE_ACCOUNT open question is resolved as "no cascade" in
// SPEC_FULL.md, so there is nothing further to clean up here.
func (a *Applier) applyDeleteAccount(p types.DeleteAccountPayload) error {
	if err := a.store.DeleteUser(p.UserID); err != nil {
		return err
	}
	if err := a.store.DeleteSession(p.UserID); err != nil {
		return err
	}
	a.state.DeleteUser(p.UserID)
	return nil
}

func (a *Applier) applySendMessage(p types.SendMessagePayload) error {
	msg := &types.Message{
		UID:        p.MessageID,
		SenderID:   p.SenderID,
		ReceiverID: p.ReceiverID,
		Content:    p.Content,
		Timestamp:  p.Timestamp,
	}
	if err := a.store.PutMessage(msg); err != nil {
		return err
	}
	a.state.CreateMessage(msg)

	if receiver, ok := a.state.GetUser(p.ReceiverID); ok {
		if err := a.store.PutUser(receiver); err != nil {
			return err
		}
	}
	if sender, ok := a.state.GetUser(p.SenderID); ok {
		if err := a.store.PutUser(sender); err != nil {
			return err
		}
	}
	return nil
}

func (a *Applier) applyMarkRead(p types.MarkReadPayload) error {
	if !a.state.MarkRead(p.UserID, p.MessageID) {
		return nil // no-op if the message is absent, per spec §4.3
	}
	if msg, ok := a.state.GetMessage(p.MessageID); ok {
		if err := a.store.PutMessage(msg); err != nil {
			return err
		}
	}
	if user, ok := a.state.GetUser(p.UserID); ok {
		if err := a.store.PutUser(user); err != nil {
			return err
		}
	}
	return nil
}

// applyReadMessages dequeues up to p.N unread ids and returns them, since
// popping is destructive and the Service Façade has no other way to learn
// which ids a ReadMessages command actually consumed once it commits.
func (a *Applier) applyReadMessages(p types.ReadMessagesPayload) ([]uint32, error) {
	ids := a.state.PopUnread(p.UserID, p.N)
	if user, ok := a.state.GetUser(p.UserID); ok {
		if err := a.store.PutUser(user); err != nil {
			return nil, err
		}
	}
	for _, id := range ids {
		if msg, ok := a.state.GetMessage(id); ok {
			if err := a.store.PutMessage(msg); err != nil {
				return nil, err
			}
		}
	}
	return ids, nil
}

func (a *Applier) applyDeleteMessage(p types.DeleteMessagePayload) error {
	msg, ok := a.state.DeleteMessage(p.MessageID)
	if !ok {
		return nil
	}
	if err := a.store.DeleteMessage(p.MessageID); err != nil {
		return err
	}
	if receiver, ok := a.state.GetUser(msg.ReceiverID); ok {
		if err := a.store.PutUser(receiver); err != nil {
			return err
		}
	}
	return nil
}

// applyLogin installs a replicated session so every replica recognizes the
// token after a leader failover (open-question resolution 1).
func (a *Applier) applyLogin(p types.LoginPayload) error {
	session := &types.Session{UserID: p.UserID, Token: p.Token, ExpiresAt: p.ExpiresAt}
	if err := a.store.PutSession(session); err != nil {
		return err
	}
	a.state.PutSession(session)
	return nil
}
