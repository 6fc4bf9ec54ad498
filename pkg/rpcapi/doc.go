/*
Package rpcapi is the wire layer shared by the Service Façade's
client-facing RPCs and Raft Core's peer-to-peer RPCs: one gRPC server
per node serving two services, plus the client stubs both directions
need to call it.

# Architecture

	┌─────────────────────────── RPCAPI ────────────────────────────┐
	│                                                                 │
	│  ┌───────────────────────────────────────────────┐            │
	│  │                  grpc.Server                    │            │
	│  │     (registered with jsonCodec, "proto" subtype)│            │
	│  └───────────────┬───────────────────┬────────────┘            │
	│                  │                   │                          │
	│   MessagingServer│                   │RaftServer                │
	│   (14 methods)   │                   │(RequestVote,             │
	│                  ▼                   ▼ AppendEntries)           │
	│         ┌────────────────┐  ┌──────────────────────┐           │
	│         │ pkg/facade.Facade│  │ NodeRaftServer         │           │
	│         │  (client RPCs)   │  │ (wraps *raftcore.Node) │           │
	│         └────────────────┘  └──────────────────────┘           │
	│                                                                 │
	│   Client side:                                                  │
	│   ┌──────────────────┐          ┌──────────────────────┐       │
	│   │  messagingClient   │          │     PeerClient          │       │
	│   │  (pkg/client uses)  │          │  (raftcore.PeerTransport)│       │
	│   └──────────────────┘          └──────────────────────┘       │
	└─────────────────────────────────────────────────────────────────┘

Messaging and Raft-internal traffic share one net.Listener and one
*grpc.Server per node (Server.Serve/Start registers both service
descriptors on the same server) since a Relay node is both a client
endpoint and a Raft peer at once; there is no separate port for cluster
traffic.

# Why a hand-written codec instead of protoc

There is no .proto file or protoc-gen-go-grpc toolchain step for this
service set, so messaging.go and raft.go hand-write what protoc would
otherwise generate: the grpc.ServiceDesc, the method table
(messagingHandler wraps each RPC method into a grpc.MethodDesc), and a
thin client stub (messagingClient, raftClient) that calls
grpc.ClientConnInterface.Invoke directly. What protoc normally wires to
a protobuf Marshal/Unmarshal pair is instead handled by codec.go's
jsonCodec, registered under the content-subtype "proto" (the subtype
gRPC looks up when no subtype is specified on the call), so every
request and response struct defined in messaging.go and raft.go is
plain Go struct tags's worth of JSON rather than a .pb.go type. The
dependency itself — google.golang.org/grpc's Server, ClientConn and
dialing machinery — is real and exercised; only the
wire encoding differs from a typical generated-stub service.

# Messaging service (messaging.go)

Fourteen request/response struct pairs (CreateAccountRequest/Response
through LeaderPingRequest/Response) plus MessagingServer, the interface
pkg/facade.Facade implements and pkg/client's messagingClient calls.
RegisterMessagingServer wires all fourteen into a grpc.ServiceDesc;
NewMessagingClient wraps a grpc.ClientConnInterface for the caller side.
MessageView is the wire shape for a single message, shared by every RPC
response that returns message data.

# Raft-internal service (raft.go)

RaftServer is the two-method interface (RequestVote, AppendEntries)
a Relay node exposes to its peers. NodeRaftServer adapts a live
*raftcore.Node to that interface for the server side; raftClient (via
NewRaftClient) adapts a grpc.ClientConnInterface to it for dialing out.
RegisterRaftServer wires it into the same *grpc.Server as the messaging
service.

# Peer transport (peerclient.go)

PeerClient implements raftcore.PeerTransport: one lazily-dialed
*grpc.ClientConn per peer address (connFor), reused across RPCs and
torn down by Close. This is the transport raftcore.Node is constructed
with in production; tests substitute a stub transport that never
dials out.

# Exported surface

	type jsonCodec struct{}                 // registered under subtype "proto"
	type MessageView struct{ ... }
	type MessagingServer interface{ ... }    // 14 methods, implemented by pkg/facade.Facade
	func RegisterMessagingServer(s grpc.ServiceRegistrar, srv MessagingServer)
	func NewMessagingClient(cc grpc.ClientConnInterface) MessagingServer

	type RaftServer interface{ ... }         // RequestVote, AppendEntries
	func RegisterRaftServer(s grpc.ServiceRegistrar, srv RaftServer)
	type NodeRaftServer struct{ ... }        // adapts *raftcore.Node to RaftServer
	func NewRaftClient(cc grpc.ClientConnInterface) RaftServer

	type PeerClient struct{ ... }            // raftcore.PeerTransport over real gRPC
	func NewPeerClient(addrs map[string]string) *PeerClient
	func (p *PeerClient) Close()

	type Server struct{ ... }
	func NewServer(facade MessagingServer, node *raftcore.Node) *Server
	func (s *Server) Start(addr string) error
	func (s *Server) Serve(lis net.Listener) error
	func (s *Server) Stop()

# Testing

codec_test.go round-trips a request struct through jsonCodec directly.
server_test.go binds a real net.Listener on 127.0.0.1:0, serves a Server
over it, and dials back in with a real PeerClient, asserting on actual
RequestVote/AppendEntries RPC replies rather than in-process mocks —
the loopback-socket style also used by pkg/raftcore/harness_test.go and
pkg/client/client_test.go.
*/
package rpcapi
