package rpcapi

import (
	"context"

	"google.golang.org/grpc"
)

// MessageView is the wire projection of a types.Message: uid, sender id,
// content, read flag and timestamp. The receiver id is not included.
type MessageView struct {
	UID       uint32 `json:"uid"`
	SenderID  uint32 `json:"sender_id"`
	Content   string `json:"content"`
	Read      bool   `json:"read"`
	Timestamp int64  `json:"timestamp"`
}

type CreateAccountRequest struct {
	Username   string `json:"username"`
	Credential []byte `json:"credential"`
}
type CreateAccountResponse struct {
	UserID uint32 `json:"user_id"`
}

type LoginRequest struct {
	Username   string `json:"username"`
	Credential []byte `json:"credential"`
}
type LoginResponse struct {
	UserID uint32 `json:"user_id"`
	Token  string `json:"token"`
}

type ListAccountsRequest struct {
	Pattern string `json:"pattern"`
}
type ListAccountsResponse struct {
	Usernames []string `json:"usernames"`
}

type DisplayConversationRequest struct {
	UserID uint32 `json:"user_id"`
	Token  string `json:"token"`
	PeerID uint32 `json:"peer_id"`
}
type DisplayConversationResponse struct {
	Messages []MessageView `json:"messages"`
}

type SendMessageRequest struct {
	UserID     uint32 `json:"user_id"`
	Token      string `json:"token"`
	ReceiverID uint32 `json:"receiver_id"`
	Content    string `json:"content"`
}
type SendMessageResponse struct {
	MessageID uint32 `json:"message_id"`
}

type ReadMessagesRequest struct {
	UserID uint32 `json:"user_id"`
	Token  string `json:"token"`
	N      int32  `json:"n"`
}
type ReadMessagesResponse struct {
	MessageIDs []uint32 `json:"message_ids"`
}

type DeleteMessageRequest struct {
	UserID    uint32 `json:"user_id"`
	Token     string `json:"token"`
	MessageID uint32 `json:"message_id"`
}
type DeleteMessageResponse struct {
	Ok bool `json:"ok"`
}

type DeleteAccountRequest struct {
	UserID uint32 `json:"user_id"`
	Token  string `json:"token"`
}
type DeleteAccountResponse struct {
	Ok bool `json:"ok"`
}

type GetUnreadMessagesRequest struct {
	UserID uint32 `json:"user_id"`
	Token  string `json:"token"`
}
type GetUnreadMessagesResponse struct {
	MessageIDs []uint32 `json:"message_ids"`
}

type GetMessageInformationRequest struct {
	UserID    uint32 `json:"user_id"`
	Token     string `json:"token"`
	MessageID uint32 `json:"message_id"`
}
type GetMessageInformationResponse struct {
	Message MessageView `json:"message"`
}

type GetUsernameByIDRequest struct {
	UserID   uint32 `json:"user_id"`
	Token    string `json:"token"`
	TargetID uint32 `json:"target_id"`
}
type GetUsernameByIDResponse struct {
	Username string `json:"username"`
}

type MarkMessageAsReadRequest struct {
	UserID    uint32 `json:"user_id"`
	Token     string `json:"token"`
	MessageID uint32 `json:"message_id"`
}
type MarkMessageAsReadResponse struct {
	Ok bool `json:"ok"`
}

type GetUserByUsernameRequest struct {
	UserID   uint32 `json:"user_id"`
	Token    string `json:"token"`
	Username string `json:"username"`
}
type GetUserByUsernameResponse struct {
	TargetID uint32 `json:"target_id"`
}

type LeaderPingRequest struct{}
type LeaderPingResponse struct {
	IsLeader   bool   `json:"is_leader"`
	LeaderAddr string `json:"leader_addr"`
}

// MessagingServer is the Service Façade's RPC surface (spec §6, group 1).
type MessagingServer interface {
	CreateAccount(context.Context, *CreateAccountRequest) (*CreateAccountResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	ListAccounts(context.Context, *ListAccountsRequest) (*ListAccountsResponse, error)
	DisplayConversation(context.Context, *DisplayConversationRequest) (*DisplayConversationResponse, error)
	SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error)
	ReadMessages(context.Context, *ReadMessagesRequest) (*ReadMessagesResponse, error)
	DeleteMessage(context.Context, *DeleteMessageRequest) (*DeleteMessageResponse, error)
	DeleteAccount(context.Context, *DeleteAccountRequest) (*DeleteAccountResponse, error)
	GetUnreadMessages(context.Context, *GetUnreadMessagesRequest) (*GetUnreadMessagesResponse, error)
	GetMessageInformation(context.Context, *GetMessageInformationRequest) (*GetMessageInformationResponse, error)
	GetUsernameByID(context.Context, *GetUsernameByIDRequest) (*GetUsernameByIDResponse, error)
	MarkMessageAsRead(context.Context, *MarkMessageAsReadRequest) (*MarkMessageAsReadResponse, error)
	GetUserByUsername(context.Context, *GetUserByUsernameRequest) (*GetUserByUsernameResponse, error)
	LeaderPing(context.Context, *LeaderPingRequest) (*LeaderPingResponse, error)
}

const messagingServiceName = "relay.Messaging"

func messagingHandler(method string, newReq func() interface{}, call func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			req := newReq()
			if err := dec(req); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv, ctx, req)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + messagingServiceName + "/" + method}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv, ctx, req)
			}
			return interceptor(ctx, req, info, handler)
		},
	}
}

// MessagingServiceDesc is the grpc.ServiceDesc a generated _grpc.pb.go
// would normally provide.
var MessagingServiceDesc = grpc.ServiceDesc{
	ServiceName: messagingServiceName,
	HandlerType: (*MessagingServer)(nil),
	Methods: []grpc.MethodDesc{
		messagingHandler("CreateAccount", func() interface{} { return new(CreateAccountRequest) },
			func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(MessagingServer).CreateAccount(ctx, req.(*CreateAccountRequest))
			}),
		messagingHandler("Login", func() interface{} { return new(LoginRequest) },
			func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(MessagingServer).Login(ctx, req.(*LoginRequest))
			}),
		messagingHandler("ListAccounts", func() interface{} { return new(ListAccountsRequest) },
			func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(MessagingServer).ListAccounts(ctx, req.(*ListAccountsRequest))
			}),
		messagingHandler("DisplayConversation", func() interface{} { return new(DisplayConversationRequest) },
			func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(MessagingServer).DisplayConversation(ctx, req.(*DisplayConversationRequest))
			}),
		messagingHandler("SendMessage", func() interface{} { return new(SendMessageRequest) },
			func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(MessagingServer).SendMessage(ctx, req.(*SendMessageRequest))
			}),
		messagingHandler("ReadMessages", func() interface{} { return new(ReadMessagesRequest) },
			func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(MessagingServer).ReadMessages(ctx, req.(*ReadMessagesRequest))
			}),
		messagingHandler("DeleteMessage", func() interface{} { return new(DeleteMessageRequest) },
			func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(MessagingServer).DeleteMessage(ctx, req.(*DeleteMessageRequest))
			}),
		messagingHandler("DeleteAccount", func() interface{} { return new(DeleteAccountRequest) },
			func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(MessagingServer).DeleteAccount(ctx, req.(*DeleteAccountRequest))
			}),
		messagingHandler("GetUnreadMessages", func() interface{} { return new(GetUnreadMessagesRequest) },
			func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(MessagingServer).GetUnreadMessages(ctx, req.(*GetUnreadMessagesRequest))
			}),
		messagingHandler("GetMessageInformation", func() interface{} { return new(GetMessageInformationRequest) },
			func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(MessagingServer).GetMessageInformation(ctx, req.(*GetMessageInformationRequest))
			}),
		messagingHandler("GetUsernameByID", func() interface{} { return new(GetUsernameByIDRequest) },
			func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(MessagingServer).GetUsernameByID(ctx, req.(*GetUsernameByIDRequest))
			}),
		messagingHandler("MarkMessageAsRead", func() interface{} { return new(MarkMessageAsReadRequest) },
			func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(MessagingServer).MarkMessageAsRead(ctx, req.(*MarkMessageAsReadRequest))
			}),
		messagingHandler("GetUserByUsername", func() interface{} { return new(GetUserByUsernameRequest) },
			func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(MessagingServer).GetUserByUsername(ctx, req.(*GetUserByUsernameRequest))
			}),
		messagingHandler("LeaderPing", func() interface{} { return new(LeaderPingRequest) },
			func(srv interface{}, ctx context.Context, req interface{}) (interface{}, error) {
				return srv.(MessagingServer).LeaderPing(ctx, req.(*LeaderPingRequest))
			}),
	},
	Metadata: "relay/messaging.proto",
}

// RegisterMessagingServer registers srv's handlers on s.
func RegisterMessagingServer(s grpc.ServiceRegistrar, srv MessagingServer) {
	s.RegisterService(&MessagingServiceDesc, srv)
}

// messagingClient is the hand-written stub a protoc-gen-go-grpc client
// file would otherwise generate.
type messagingClient struct {
	cc grpc.ClientConnInterface
}

// NewMessagingClient wraps an established connection in the Messaging
// client stub.
func NewMessagingClient(cc grpc.ClientConnInterface) MessagingServer {
	return &messagingClient{cc: cc}
}

func (c *messagingClient) invoke(ctx context.Context, method string, req, reply interface{}) error {
	return c.cc.Invoke(ctx, "/"+messagingServiceName+"/"+method, req, reply)
}

func (c *messagingClient) CreateAccount(ctx context.Context, req *CreateAccountRequest) (*CreateAccountResponse, error) {
	reply := new(CreateAccountResponse)
	if err := c.invoke(ctx, "CreateAccount", req, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *messagingClient) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	reply := new(LoginResponse)
	if err := c.invoke(ctx, "Login", req, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *messagingClient) ListAccounts(ctx context.Context, req *ListAccountsRequest) (*ListAccountsResponse, error) {
	reply := new(ListAccountsResponse)
	if err := c.invoke(ctx, "ListAccounts", req, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *messagingClient) DisplayConversation(ctx context.Context, req *DisplayConversationRequest) (*DisplayConversationResponse, error) {
	reply := new(DisplayConversationResponse)
	if err := c.invoke(ctx, "DisplayConversation", req, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *messagingClient) SendMessage(ctx context.Context, req *SendMessageRequest) (*SendMessageResponse, error) {
	reply := new(SendMessageResponse)
	if err := c.invoke(ctx, "SendMessage", req, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *messagingClient) ReadMessages(ctx context.Context, req *ReadMessagesRequest) (*ReadMessagesResponse, error) {
	reply := new(ReadMessagesResponse)
	if err := c.invoke(ctx, "ReadMessages", req, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *messagingClient) DeleteMessage(ctx context.Context, req *DeleteMessageRequest) (*DeleteMessageResponse, error) {
	reply := new(DeleteMessageResponse)
	if err := c.invoke(ctx, "DeleteMessage", req, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *messagingClient) DeleteAccount(ctx context.Context, req *DeleteAccountRequest) (*DeleteAccountResponse, error) {
	reply := new(DeleteAccountResponse)
	if err := c.invoke(ctx, "DeleteAccount", req, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *messagingClient) GetUnreadMessages(ctx context.Context, req *GetUnreadMessagesRequest) (*GetUnreadMessagesResponse, error) {
	reply := new(GetUnreadMessagesResponse)
	if err := c.invoke(ctx, "GetUnreadMessages", req, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *messagingClient) GetMessageInformation(ctx context.Context, req *GetMessageInformationRequest) (*GetMessageInformationResponse, error) {
	reply := new(GetMessageInformationResponse)
	if err := c.invoke(ctx, "GetMessageInformation", req, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *messagingClient) GetUsernameByID(ctx context.Context, req *GetUsernameByIDRequest) (*GetUsernameByIDResponse, error) {
	reply := new(GetUsernameByIDResponse)
	if err := c.invoke(ctx, "GetUsernameByID", req, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *messagingClient) MarkMessageAsRead(ctx context.Context, req *MarkMessageAsReadRequest) (*MarkMessageAsReadResponse, error) {
	reply := new(MarkMessageAsReadResponse)
	if err := c.invoke(ctx, "MarkMessageAsRead", req, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *messagingClient) GetUserByUsername(ctx context.Context, req *GetUserByUsernameRequest) (*GetUserByUsernameResponse, error) {
	reply := new(GetUserByUsernameResponse)
	if err := c.invoke(ctx, "GetUserByUsername", req, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *messagingClient) LeaderPing(ctx context.Context, req *LeaderPingRequest) (*LeaderPingResponse, error) {
	reply := new(LeaderPingResponse)
	if err := c.invoke(ctx, "LeaderPing", req, reply); err != nil {
		return nil, err
	}
	return reply, nil
}
