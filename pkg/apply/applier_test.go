package apply

import (
	"testing"

	"github.com/cuemby/relay/pkg/state"
	"github.com/cuemby/relay/pkg/storage"
	"github.com/cuemby/relay/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApplier(t *testing.T) (*Applier, *state.State, storage.Store) {
	t.Helper()
	store, err := storage.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	st := state.New()
	return New(store, st), st, store
}

func encode(t *testing.T, opID string, kind types.CommandKind, payload interface{}) *types.LogEntry {
	t.Helper()
	cmd, err := types.Encode(opID, kind, payload)
	require.NoError(t, err)
	return &types.LogEntry{Term: 1, Command: cmd}
}

func TestApply_CreateAccount(t *testing.T) {
	a, st, store := newTestApplier(t)

	entry := encode(t, "op-1", types.CmdCreateAccount, types.CreateAccountPayload{
		UserID: 1, Username: "alice", Credential: []byte("secret"),
	})
	require.NoError(t, a.Apply(1, entry))

	user, ok := st.GetUser(1)
	require.True(t, ok)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, uint64(1), a.LastApplied())

	stored, err := store.GetUser(1)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Username)
}

func TestApply_SendMessageAndReadMessages(t *testing.T) {
	a, st, _ := newTestApplier(t)

	require.NoError(t, a.Apply(1, encode(t, "op-1", types.CmdCreateAccount, types.CreateAccountPayload{UserID: 1, Username: "alice"})))
	require.NoError(t, a.Apply(2, encode(t, "op-2", types.CmdCreateAccount, types.CreateAccountPayload{UserID: 2, Username: "bob"})))

	require.NoError(t, a.Apply(3, encode(t, "op-3", types.CmdSendMessage, types.SendMessagePayload{
		MessageID: 100, SenderID: 1, ReceiverID: 2, Content: "hi bob", Timestamp: 1000,
	})))

	msg, ok := st.GetMessage(100)
	require.True(t, ok)
	assert.Equal(t, "hi bob", msg.Content)

	readEntry := encode(t, "op-4", types.CmdReadMessages, types.ReadMessagesPayload{UserID: 2, N: 5})
	require.NoError(t, a.Apply(4, readEntry))

	result, ok := a.Result("op-4")
	require.True(t, ok)
	ids, ok := result.([]uint32)
	require.True(t, ok)
	assert.Equal(t, []uint32{100}, ids)

	// Result is cleared once read.
	_, ok = a.Result("op-4")
	assert.False(t, ok)
}

func TestApply_ReadMessagesUnderflowIsSilent(t *testing.T) {
	a, st, _ := newTestApplier(t)
	require.NoError(t, a.Apply(1, encode(t, "op-1", types.CmdCreateAccount, types.CreateAccountPayload{UserID: 1, Username: "alice"})))

	entry := encode(t, "op-2", types.CmdReadMessages, types.ReadMessagesPayload{UserID: 1, N: 10})
	require.NoError(t, a.Apply(2, entry))

	result, ok := a.Result("op-2")
	require.True(t, ok)
	ids, ok := result.([]uint32)
	require.True(t, ok)
	assert.Empty(t, ids)
	_ = st
}

func TestApply_DuplicateOpIDIsIdempotent(t *testing.T) {
	a, st, _ := newTestApplier(t)

	entry := encode(t, "op-dup", types.CmdCreateAccount, types.CreateAccountPayload{UserID: 1, Username: "alice"})
	require.NoError(t, a.Apply(1, entry))

	// The identical command (same opID) appearing again at a later index
	// must not double-apply.
	retry := encode(t, "op-dup", types.CmdCreateAccount, types.CreateAccountPayload{UserID: 1, Username: "alice"})
	require.NoError(t, a.Apply(2, retry))

	assert.Equal(t, uint64(2), a.LastApplied())
	user, ok := st.GetUser(1)
	require.True(t, ok)
	assert.Equal(t, "alice", user.Username)
}

func TestApply_DeleteAccountDoesNotCascadeMessages(t *testing.T) {
	a, st, _ := newTestApplier(t)
	require.NoError(t, a.Apply(1, encode(t, "op-1", types.CmdCreateAccount, types.CreateAccountPayload{UserID: 1, Username: "alice"})))
	require.NoError(t, a.Apply(2, encode(t, "op-2", types.CmdCreateAccount, types.CreateAccountPayload{UserID: 2, Username: "bob"})))
	require.NoError(t, a.Apply(3, encode(t, "op-3", types.CmdSendMessage, types.SendMessagePayload{
		MessageID: 50, SenderID: 1, ReceiverID: 2, Content: "hello", Timestamp: 1,
	})))

	require.NoError(t, a.Apply(4, encode(t, "op-4", types.CmdDeleteAccount, types.DeleteAccountPayload{UserID: 1})))

	_, ok := st.GetUser(1)
	assert.False(t, ok)

	msg, ok := st.GetMessage(50)
	require.True(t, ok, "messages survive account deletion per the no-cascade resolution")
	assert.Equal(t, "hello", msg.Content)
}

func TestApply_MarkReadNoOpOnMissingMessage(t *testing.T) {
	a, st, _ := newTestApplier(t)
	require.NoError(t, a.Apply(1, encode(t, "op-1", types.CmdCreateAccount, types.CreateAccountPayload{UserID: 1, Username: "alice"})))

	err := a.Apply(2, encode(t, "op-2", types.CmdMarkRead, types.MarkReadPayload{UserID: 1, MessageID: 999}))
	assert.NoError(t, err)
	_ = st
}

func TestApply_DeleteMessage(t *testing.T) {
	a, st, _ := newTestApplier(t)
	require.NoError(t, a.Apply(1, encode(t, "op-1", types.CmdCreateAccount, types.CreateAccountPayload{UserID: 1, Username: "alice"})))
	require.NoError(t, a.Apply(2, encode(t, "op-2", types.CmdCreateAccount, types.CreateAccountPayload{UserID: 2, Username: "bob"})))
	require.NoError(t, a.Apply(3, encode(t, "op-3", types.CmdSendMessage, types.SendMessagePayload{
		MessageID: 10, SenderID: 1, ReceiverID: 2, Content: "x", Timestamp: 1,
	})))

	require.NoError(t, a.Apply(4, encode(t, "op-4", types.CmdDeleteMessage, types.DeleteMessagePayload{MessageID: 10})))

	_, ok := st.GetMessage(10)
	assert.False(t, ok)
}

func TestApply_LoginReplicatesSession(t *testing.T) {
	a, st, store := newTestApplier(t)
	require.NoError(t, a.Apply(1, encode(t, "op-1", types.CmdCreateAccount, types.CreateAccountPayload{UserID: 1, Username: "alice"})))

	require.NoError(t, a.Apply(2, encode(t, "op-2", types.CmdLogin, types.LoginPayload{UserID: 1, Token: "tok-abc", ExpiresAt: 99999})))

	session, ok := st.GetSession(1)
	require.True(t, ok)
	assert.Equal(t, "tok-abc", session.Token)

	stored, err := store.GetSession(1)
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", stored.Token)
}

func TestApply_UnknownCommandKindErrors(t *testing.T) {
	a, _, _ := newTestApplier(t)
	entry := &types.LogEntry{Term: 1, Command: types.Command{OpID: "op-x", Kind: "BOGUS", Data: []byte("{}")}}
	err := a.Apply(1, entry)
	assert.Error(t, err)
}
