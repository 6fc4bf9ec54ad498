package metrics

import (
	"time"

	"github.com/cuemby/relay/pkg/raftcore"
	"github.com/cuemby/relay/pkg/state"
)

// Collector periodically samples the Raft Core and Application State into
// the package's gauges on a ticker-driven poll loop.
type Collector struct {
	node  *raftcore.Node
	state *state.State

	peerCount int
	stopCh    chan struct{}
}

// NewCollector builds a Collector. peerCount is the cluster size minus
// this node, for the constant RaftPeersTotal gauge.
func NewCollector(node *raftcore.Node, st *state.State, peerCount int) *Collector {
	return &Collector{node: node, state: st, peerCount: peerCount, stopCh: make(chan struct{})}
}

// Start begins sampling every 15 seconds, in a background goroutine.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop halts sampling.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	if c.node.IsLeader() {
		RaftIsLeader.Set(1)
	} else {
		RaftIsLeader.Set(0)
	}
	RaftTerm.Set(float64(c.node.Term()))
	RaftCommitIndex.Set(float64(c.node.CommitIndex()))
	RaftAppliedIndex.Set(float64(c.node.LastApplied()))
	RaftPeersTotal.Set(float64(c.peerCount))

	UsersTotal.Set(float64(len(c.state.UserIDs())))
	MessagesTotal.Set(float64(len(c.state.MessageUIDs())))
	SessionsTotal.Set(float64(c.state.SessionCount()))
}
