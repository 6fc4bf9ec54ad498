package facade

import (
	"bytes"
	"context"

	"github.com/cuemby/relay/pkg/apierr"
	"github.com/cuemby/relay/pkg/rpcapi"
	"github.com/cuemby/relay/pkg/types"
)

func (f *Facade) CreateAccount(ctx context.Context, req *rpcapi.CreateAccountRequest) (*rpcapi.CreateAccountResponse, error) {
	if lerr := f.ensureLeader(); lerr != nil {
		return nil, apierr.ToStatus(lerr)
	}
	if req.Username == "" {
		return nil, apierr.ToStatus(apierr.New(apierr.Internal, "username must not be empty"))
	}
	if f.state.UsernameExists(req.Username) {
		return nil, apierr.ToStatus(apierr.New(apierr.AlreadyExists, "username %q already exists", req.Username))
	}

	f.ensureIDsSynced()
	id := f.userIDs.Next()

	payload := types.CreateAccountPayload{UserID: id, Username: req.Username, Credential: req.Credential}
	if _, lerr := f.propose(ctx, types.CmdCreateAccount, payload); lerr != nil {
		if lerr.Kind != apierr.Unavailable { // a timed-out entry may still commit
			f.userIDs.Release(id)
		}
		return nil, apierr.ToStatus(lerr)
	}
	return &rpcapi.CreateAccountResponse{UserID: id}, nil
}

func (f *Facade) Login(ctx context.Context, req *rpcapi.LoginRequest) (*rpcapi.LoginResponse, error) {
	if lerr := f.ensureLeader(); lerr != nil {
		return nil, apierr.ToStatus(lerr)
	}
	user, ok := f.state.GetUserByUsername(req.Username)
	if !ok || !bytes.Equal(user.Credential, req.Credential) {
		return nil, apierr.ToStatus(apierr.New(apierr.Unauthenticated, "invalid username or credential"))
	}

	token, err := generateToken()
	if err != nil {
		return nil, apierr.ToStatus(apierr.New(apierr.Internal, "generate token: %v", err))
	}
	payload := types.LoginPayload{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: nowUnix() + int64(f.sessionTTL.Seconds()),
	}
	if _, lerr := f.propose(ctx, types.CmdLogin, payload); lerr != nil {
		return nil, apierr.ToStatus(lerr)
	}
	return &rpcapi.LoginResponse{UserID: user.ID, Token: token}, nil
}

func (f *Facade) ListAccounts(_ context.Context, req *rpcapi.ListAccountsRequest) (*rpcapi.ListAccountsResponse, error) {
	pattern := req.Pattern
	if pattern == "" {
		pattern = "*"
	}
	return &rpcapi.ListAccountsResponse{Usernames: f.state.MatchUsernames(pattern)}, nil
}

func (f *Facade) DisplayConversation(_ context.Context, req *rpcapi.DisplayConversationRequest) (*rpcapi.DisplayConversationResponse, error) {
	if lerr := f.authenticate(req.UserID, req.Token); lerr != nil {
		return nil, apierr.ToStatus(lerr)
	}
	msgs := f.state.Conversation(req.UserID, req.PeerID)
	views := make([]rpcapi.MessageView, len(msgs))
	for i, m := range msgs {
		views[i] = messageView(m)
	}
	return &rpcapi.DisplayConversationResponse{Messages: views}, nil
}

func (f *Facade) SendMessage(ctx context.Context, req *rpcapi.SendMessageRequest) (*rpcapi.SendMessageResponse, error) {
	if lerr := f.ensureLeader(); lerr != nil {
		return nil, apierr.ToStatus(lerr)
	}
	if lerr := f.authenticate(req.UserID, req.Token); lerr != nil {
		return nil, apierr.ToStatus(lerr)
	}
	if _, ok := f.state.GetUser(req.ReceiverID); !ok {
		return nil, apierr.ToStatus(apierr.New(apierr.NotFound, "no such user %d", req.ReceiverID))
	}

	f.ensureIDsSynced()
	id := f.msgIDs.Next()

	payload := types.SendMessagePayload{
		MessageID:  id,
		SenderID:   req.UserID,
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
		Timestamp:  nowUnix(),
	}
	if _, lerr := f.propose(ctx, types.CmdSendMessage, payload); lerr != nil {
		if lerr.Kind != apierr.Unavailable { // a timed-out entry may still commit
			f.msgIDs.Release(id)
		}
		return nil, apierr.ToStatus(lerr)
	}
	return &rpcapi.SendMessageResponse{MessageID: id}, nil
}

func (f *Facade) ReadMessages(ctx context.Context, req *rpcapi.ReadMessagesRequest) (*rpcapi.ReadMessagesResponse, error) {
	if lerr := f.ensureLeader(); lerr != nil {
		return nil, apierr.ToStatus(lerr)
	}
	if lerr := f.authenticate(req.UserID, req.Token); lerr != nil {
		return nil, apierr.ToStatus(lerr)
	}

	payload := types.ReadMessagesPayload{UserID: req.UserID, N: int(req.N)}
	result, lerr := f.propose(ctx, types.CmdReadMessages, payload)
	if lerr != nil {
		return nil, apierr.ToStatus(lerr)
	}
	ids, _ := result.([]uint32)
	return &rpcapi.ReadMessagesResponse{MessageIDs: ids}, nil
}

func (f *Facade) DeleteMessage(ctx context.Context, req *rpcapi.DeleteMessageRequest) (*rpcapi.DeleteMessageResponse, error) {
	if lerr := f.ensureLeader(); lerr != nil {
		return nil, apierr.ToStatus(lerr)
	}
	if lerr := f.authenticate(req.UserID, req.Token); lerr != nil {
		return nil, apierr.ToStatus(lerr)
	}
	if _, ok := f.state.GetMessage(req.MessageID); !ok {
		return nil, apierr.ToStatus(apierr.New(apierr.NotFound, "no such message %d", req.MessageID))
	}

	payload := types.DeleteMessagePayload{MessageID: req.MessageID}
	if _, lerr := f.propose(ctx, types.CmdDeleteMessage, payload); lerr != nil {
		return nil, apierr.ToStatus(lerr)
	}
	return &rpcapi.DeleteMessageResponse{Ok: true}, nil
}

func (f *Facade) DeleteAccount(ctx context.Context, req *rpcapi.DeleteAccountRequest) (*rpcapi.DeleteAccountResponse, error) {
	if lerr := f.ensureLeader(); lerr != nil {
		return nil, apierr.ToStatus(lerr)
	}
	if lerr := f.authenticate(req.UserID, req.Token); lerr != nil {
		return nil, apierr.ToStatus(lerr)
	}

	payload := types.DeleteAccountPayload{UserID: req.UserID}
	if _, lerr := f.propose(ctx, types.CmdDeleteAccount, payload); lerr != nil {
		return nil, apierr.ToStatus(lerr)
	}
	return &rpcapi.DeleteAccountResponse{Ok: true}, nil
}

func (f *Facade) GetUnreadMessages(_ context.Context, req *rpcapi.GetUnreadMessagesRequest) (*rpcapi.GetUnreadMessagesResponse, error) {
	if lerr := f.authenticate(req.UserID, req.Token); lerr != nil {
		return nil, apierr.ToStatus(lerr)
	}
	return &rpcapi.GetUnreadMessagesResponse{MessageIDs: f.state.UnreadIDs(req.UserID)}, nil
}

func (f *Facade) GetMessageInformation(_ context.Context, req *rpcapi.GetMessageInformationRequest) (*rpcapi.GetMessageInformationResponse, error) {
	if lerr := f.authenticate(req.UserID, req.Token); lerr != nil {
		return nil, apierr.ToStatus(lerr)
	}
	msg, ok := f.state.GetMessage(req.MessageID)
	if !ok {
		return nil, apierr.ToStatus(apierr.New(apierr.NotFound, "no such message %d", req.MessageID))
	}
	return &rpcapi.GetMessageInformationResponse{Message: messageView(msg)}, nil
}

func (f *Facade) GetUsernameByID(_ context.Context, req *rpcapi.GetUsernameByIDRequest) (*rpcapi.GetUsernameByIDResponse, error) {
	if lerr := f.authenticate(req.UserID, req.Token); lerr != nil {
		return nil, apierr.ToStatus(lerr)
	}
	user, ok := f.state.GetUser(req.TargetID)
	if !ok {
		return nil, apierr.ToStatus(apierr.New(apierr.NotFound, "no such user %d", req.TargetID))
	}
	return &rpcapi.GetUsernameByIDResponse{Username: user.Username}, nil
}

func (f *Facade) MarkMessageAsRead(ctx context.Context, req *rpcapi.MarkMessageAsReadRequest) (*rpcapi.MarkMessageAsReadResponse, error) {
	if lerr := f.ensureLeader(); lerr != nil {
		return nil, apierr.ToStatus(lerr)
	}
	if lerr := f.authenticate(req.UserID, req.Token); lerr != nil {
		return nil, apierr.ToStatus(lerr)
	}

	payload := types.MarkReadPayload{UserID: req.UserID, MessageID: req.MessageID}
	if _, lerr := f.propose(ctx, types.CmdMarkRead, payload); lerr != nil {
		return nil, apierr.ToStatus(lerr)
	}
	return &rpcapi.MarkMessageAsReadResponse{Ok: true}, nil
}

func (f *Facade) GetUserByUsername(_ context.Context, req *rpcapi.GetUserByUsernameRequest) (*rpcapi.GetUserByUsernameResponse, error) {
	if lerr := f.authenticate(req.UserID, req.Token); lerr != nil {
		return nil, apierr.ToStatus(lerr)
	}
	user, ok := f.state.GetUserByUsername(req.Username)
	if !ok {
		return nil, apierr.ToStatus(apierr.New(apierr.NotFound, "no such user %q", req.Username))
	}
	return &rpcapi.GetUserByUsernameResponse{TargetID: user.ID}, nil
}

func (f *Facade) LeaderPing(_ context.Context, _ *rpcapi.LeaderPingRequest) (*rpcapi.LeaderPingResponse, error) {
	return &rpcapi.LeaderPingResponse{
		IsLeader:   f.node.IsLeader(),
		LeaderAddr: f.node.LeaderAddr(f.selfAddr),
	}, nil
}
