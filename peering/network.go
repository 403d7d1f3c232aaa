package peering

import (
	"context"
	"fmt"

	"github.com/opd-ai/kadtopo/identity"
	"github.com/opd-ai/kadtopo/interfaces"
	"github.com/opd-ai/kadtopo/strategy"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// RoundObserver is called after every completed negotiation pass with the
// 1-based round number and the connections made in it.
type RoundObserver func(round, connections int)

// Network maps node IDs to connection nodes. Iteration follows insertion
// order, which is the bootstrap order.
type Network struct {
	order     []*Node
	nodes     map[string]*Node
	processor interfaces.IMessageProcessor
}

// NewNetwork creates an empty network. processor drains the routing
// substrate after lookups and may be nil.
func NewNetwork(processor interfaces.IMessageProcessor) *Network {
	return &Network{
		nodes:     make(map[string]*Node),
		processor: processor,
	}
}

// Add appends node to the network.
func (nw *Network) Add(node *Node) error {
	key := node.id.Key()
	if _, exists := nw.nodes[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, node.id)
	}
	node.network = nw
	nw.nodes[key] = node
	nw.order = append(nw.order, node)
	return nil
}

// Get returns the node with the given ID, or nil.
func (nw *Network) Get(id identity.ID) *Node {
	if nw == nil {
		return nil
	}
	return nw.nodes[id.Key()]
}

// Nodes returns the nodes in bootstrap order.
func (nw *Network) Nodes() []*Node {
	out := make([]*Node, len(nw.order))
	copy(out, nw.order)
	return out
}

func (nw *Network) Len() int { return len(nw.order) }

// Process drains the message processor, if any.
func (nw *Network) Process() int {
	if nw.processor == nil {
		return 0
	}
	return nw.processor.Process()
}

// SetupTargets runs s on every node.
func (nw *Network) SetupTargets(s strategy.Strategy) {
	for _, node := range nw.order {
		node.SetupTargets(s)
	}
}

// FindTargets runs the target lookup phase on every node and returns the
// number of lookups issued.
func (nw *Network) FindTargets(ctx context.Context) (int, error) {
	lookups := 0
	for _, node := range nw.order {
		if err := ctx.Err(); err != nil {
			return lookups, err
		}
		lookups += node.FindTargets()
	}
	return lookups, nil
}

// RunRound gives every node, in order, one ConnectPeers pass and returns
// the connections made.
func (nw *Network) RunRound(maxConnects int) int {
	total := 0
	for _, node := range nw.order {
		total += node.ConnectPeers(maxConnects)
	}
	return total
}

// Converge repeats rounds until one makes no connection. It returns the
// number of rounds run, including the final empty one, and the connections
// made. ctx is checked between rounds.
func (nw *Network) Converge(ctx context.Context, maxConnects int, observer RoundObserver) (rounds, connections int, err error) {
	for {
		if err := ctx.Err(); err != nil {
			return rounds, connections, err
		}

		made := nw.RunRound(maxConnects)
		rounds++
		connections += made

		logrus.WithFields(logrus.Fields{
			"function":    "Network.Converge",
			"round":       rounds,
			"connections": made,
			"total":       connections,
		}).Debug("Completed negotiation round")

		if observer != nil {
			observer(rounds, made)
		}
		if made == 0 {
			return rounds, connections, nil
		}
	}
}

// TotalConnections counts undirected connections.
func (nw *Network) TotalConnections() int {
	ends := 0
	for _, node := range nw.order {
		ends += len(node.connections)
	}
	return ends / 2
}

// Validate checks capacity, symmetry and target causality across the
// network and reports every violation.
func (nw *Network) Validate() error {
	var err error
	for _, node := range nw.order {
		if len(node.connections) > node.maxPeers {
			err = multierr.Append(err, fmt.Errorf("node %s has %d connections, max %d",
				node.id, len(node.connections), node.maxPeers))
		}

		seen := make(map[*Node]bool, len(node.connections))
		for _, peer := range node.connections {
			if seen[peer] {
				err = multierr.Append(err, fmt.Errorf("node %s lists %s twice", node.id, peer.id))
			}
			seen[peer] = true

			if nw.Get(peer.id) != peer {
				err = multierr.Append(err, fmt.Errorf("node %s connected to %s outside the network", node.id, peer.id))
			}
			if !peer.IsConnected(node) {
				err = multierr.Append(err, fmt.Errorf("connection %s -> %s is not symmetric", node.id, peer.id))
			}
		}

		for _, t := range node.targets {
			if !t.Connected {
				continue
			}
			peer := nw.Get(t.Peer)
			if peer == nil || !node.IsConnected(peer) {
				err = multierr.Append(err, fmt.Errorf("node %s target %s matched to absent peer %s",
					node.id, t.Address, t.Peer))
				continue
			}
			if !t.Accepts(t.Peer) {
				err = multierr.Append(err, fmt.Errorf("node %s target %s matched to %s outside tolerance",
					node.id, t.Address, t.Peer))
			}
		}
	}
	return err
}
