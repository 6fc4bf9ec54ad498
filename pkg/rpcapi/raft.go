package rpcapi

import (
	"context"

	"github.com/cuemby/relay/pkg/raftcore"
	"google.golang.org/grpc"
)

// RaftServer is the Raft-internal RPC surface (spec §6, group 2).
type RaftServer interface {
	RequestVote(context.Context, *raftcore.RequestVoteArgs) (*raftcore.RequestVoteReply, error)
	AppendEntries(context.Context, *raftcore.AppendEntriesArgs) (*raftcore.AppendEntriesReply, error)
}

const raftServiceName = "relay.Raft"

// RaftServiceDesc is the grpc.ServiceDesc a generated _grpc.pb.go would
// normally provide for the Raft-internal service.
var RaftServiceDesc = grpc.ServiceDesc{
	ServiceName: raftServiceName,
	HandlerType: (*RaftServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "RequestVote",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				req := new(raftcore.RequestVoteArgs)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(RaftServer).RequestVote(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + raftServiceName + "/RequestVote"}
				handler := func(ctx context.Context, req interface{}) (interface{}, error) {
					return srv.(RaftServer).RequestVote(ctx, req.(*raftcore.RequestVoteArgs))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
		{
			MethodName: "AppendEntries",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				req := new(raftcore.AppendEntriesArgs)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(RaftServer).AppendEntries(ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + raftServiceName + "/AppendEntries"}
				handler := func(ctx context.Context, req interface{}) (interface{}, error) {
					return srv.(RaftServer).AppendEntries(ctx, req.(*raftcore.AppendEntriesArgs))
				}
				return interceptor(ctx, req, info, handler)
			},
		},
	},
	Metadata: "relay/raft.proto",
}

// RegisterRaftServer registers srv's handlers on s.
func RegisterRaftServer(s grpc.ServiceRegistrar, srv RaftServer) {
	s.RegisterService(&RaftServiceDesc, srv)
}

// NodeRaftServer adapts a *raftcore.Node to RaftServer, so the gRPC layer
// can dispatch inbound peer RPCs straight into the Raft Core under its own
// single serializing lock (spec §4.5).
type NodeRaftServer struct {
	Node *raftcore.Node
}

func (s *NodeRaftServer) RequestVote(_ context.Context, args *raftcore.RequestVoteArgs) (*raftcore.RequestVoteReply, error) {
	return s.Node.RequestVote(args), nil
}

func (s *NodeRaftServer) AppendEntries(_ context.Context, args *raftcore.AppendEntriesArgs) (*raftcore.AppendEntriesReply, error) {
	return s.Node.AppendEntries(args), nil
}

// raftClient is the hand-written stub for the Raft-internal service.
type raftClient struct {
	cc grpc.ClientConnInterface
}

// NewRaftClient wraps an established connection in the Raft client stub.
func NewRaftClient(cc grpc.ClientConnInterface) RaftServer {
	return &raftClient{cc: cc}
}

func (c *raftClient) RequestVote(ctx context.Context, args *raftcore.RequestVoteArgs) (*raftcore.RequestVoteReply, error) {
	reply := new(raftcore.RequestVoteReply)
	if err := c.cc.Invoke(ctx, "/"+raftServiceName+"/RequestVote", args, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *raftClient) AppendEntries(ctx context.Context, args *raftcore.AppendEntriesArgs) (*raftcore.AppendEntriesReply, error) {
	reply := new(raftcore.AppendEntriesReply)
	if err := c.cc.Invoke(ctx, "/"+raftServiceName+"/AppendEntries", args, reply); err != nil {
		return nil, err
	}
	return reply, nil
}
