package rpcapi

import (
	"context"
	"fmt"
	"sync"

	"github.com/cuemby/relay/pkg/log"
	"github.com/cuemby/relay/pkg/raftcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
)

// PeerClient implements raftcore.PeerTransport over gRPC: one long-lived
// ClientConn per peer, dialed lazily and redialed automatically whenever a
// call observes the connection is gone.
type PeerClient struct {
	addrs map[string]string // peer id -> host:port

	mu    sync.Mutex
	conns map[string]*grpc.ClientConn
}

// NewPeerClient builds a PeerClient over the given peer address table.
func NewPeerClient(addrs map[string]string) *PeerClient {
	return &PeerClient{addrs: addrs, conns: make(map[string]*grpc.ClientConn)}
}

// Close tears down every outbound connection.
func (p *PeerClient) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, conn := range p.conns {
		conn.Close()
		delete(p.conns, id)
	}
}

func (p *PeerClient) connFor(peer string) (*grpc.ClientConn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if conn, ok := p.conns[peer]; ok && conn.GetState() != connectivity.Shutdown {
		return conn, nil
	}

	addr, ok := p.addrs[peer]
	if !ok {
		return nil, fmt.Errorf("rpcapi: unknown peer %q", peer)
	}
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("rpcapi: dial peer %s: %w", peer, err)
	}
	p.conns[peer] = conn
	return conn, nil
}

func (p *PeerClient) RequestVote(ctx context.Context, peer string, args *raftcore.RequestVoteArgs) (*raftcore.RequestVoteReply, error) {
	conn, err := p.connFor(peer)
	if err != nil {
		return nil, err
	}
	reply, err := NewRaftClient(conn).RequestVote(ctx, args)
	if err != nil {
		log.WithComponent("peer-transport").Debug().Err(err).Str("peer", peer).Msg("RequestVote RPC failed")
	}
	return reply, err
}

func (p *PeerClient) AppendEntries(ctx context.Context, peer string, args *raftcore.AppendEntriesArgs) (*raftcore.AppendEntriesReply, error) {
	conn, err := p.connFor(peer)
	if err != nil {
		return nil, err
	}
	reply, err := NewRaftClient(conn).AppendEntries(ctx, args)
	if err != nil {
		log.WithComponent("peer-transport").Debug().Err(err).Str("peer", peer).Msg("AppendEntries RPC failed")
	}
	return reply, err
}
