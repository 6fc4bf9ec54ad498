package rpcapi

import (
	"fmt"
	"net"

	"github.com/cuemby/relay/pkg/raftcore"
	"google.golang.org/grpc"
)

// Server bundles the Messaging and Raft-internal services behind one
// gRPC listener per node. No mTLS plumbing: spec §6 names no
// transport-security requirement for this cluster.
type Server struct {
	grpc *grpc.Server
}

// NewServer constructs a Server exposing messaging on facade and the Raft
// RPCs on node.
func NewServer(facade MessagingServer, node *raftcore.Node) *Server {
	s := grpc.NewServer()
	RegisterMessagingServer(s, facade)
	RegisterRaftServer(s, &NodeRaftServer{Node: node})
	return &Server{grpc: s}
}

// Start listens on addr and serves until Stop is called or Serve errors.
func (s *Server) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("rpcapi: listen on %s: %w", addr, err)
	}
	return s.Serve(lis)
}

// Serve runs the gRPC services over an already-bound listener, for
// callers that need the OS-assigned address before Serve blocks (tests
// dialing "127.0.0.1:0").
func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Stop gracefully drains in-flight RPCs and shuts the listener down.
func (s *Server) Stop() {
	s.grpc.GracefulStop()
}
