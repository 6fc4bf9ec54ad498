package types

import "encoding/json"

// CommandKind identifies the operation a replicated Command performs.
// The set mirrors the Command Applier's switch.
type CommandKind string

const (
	CmdCreateAccount CommandKind = "CREATE_ACCOUNT"
	CmdDeleteAccount CommandKind = "DELETE_ACCOUNT"
	CmdSendMessage   CommandKind = "SEND_MESSAGE"
	CmdMarkRead      CommandKind = "MARK_READ"
	CmdReadMessages  CommandKind = "READ_MESSAGES"
	CmdDeleteMessage CommandKind = "DELETE_MESSAGE"
	// CmdLogin replicates a leader-issued session token so every replica
	// recognizes it after failover (SPEC_FULL.md open-question resolution 1).
	CmdLogin CommandKind = "LOGIN"
)

// Command is the opaque payload stored at each log position. OpID is a
// uuid the leader's Service Façade generates for each proposal, used by
// the applier's de-duplication table so an entry is never applied twice.
type Command struct {
	OpID string          `json:"op_id"`
	Kind CommandKind     `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// LogEntry is one position in the replicated log.
type LogEntry struct {
	Term    int64   `json:"term"`
	Command Command `json:"command"`
}

// CreateAccountPayload backs CmdCreateAccount.
type CreateAccountPayload struct {
	UserID     uint32 `json:"user_id"`
	Username   string `json:"username"`
	Credential []byte `json:"credential"`
}

// DeleteAccountPayload backs CmdDeleteAccount.
type DeleteAccountPayload struct {
	UserID uint32 `json:"user_id"`
}

// SendMessagePayload backs CmdSendMessage.
type SendMessagePayload struct {
	MessageID  uint32 `json:"message_id"`
	SenderID   uint32 `json:"sender_id"`
	ReceiverID uint32 `json:"receiver_id"`
	Content    string `json:"content"`
	Timestamp  int64  `json:"timestamp"`
}

// MarkReadPayload backs CmdMarkRead.
type MarkReadPayload struct {
	UserID    uint32 `json:"user_id"`
	MessageID uint32 `json:"message_id"`
}

// ReadMessagesPayload backs CmdReadMessages.
type ReadMessagesPayload struct {
	UserID uint32 `json:"user_id"`
	N      int    `json:"n"`
}

// DeleteMessagePayload backs CmdDeleteMessage.
type DeleteMessagePayload struct {
	MessageID uint32 `json:"message_id"`
}

// LoginPayload backs CmdLogin.
type LoginPayload struct {
	UserID    uint32 `json:"user_id"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// Encode marshals a payload into a Command of the given kind.
func Encode(opID string, kind CommandKind, payload interface{}) (Command, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Command{}, err
	}
	return Command{OpID: opID, Kind: kind, Data: data}, nil
}
