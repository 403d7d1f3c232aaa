package peering

import (
	"github.com/opd-ai/kadtopo/identity"
	"github.com/opd-ai/kadtopo/interfaces"
	"github.com/opd-ai/kadtopo/strategy"
	"github.com/sirupsen/logrus"
)

// Node is the simulation-side wrapper around one routing protocol instance.
type Node struct {
	id          identity.ID
	routing     interfaces.IRouting
	network     *Network
	connections []*Node
	targets     []*strategy.Target
	ready       bool
	minPeers    int
	maxPeers    int
}

var _ strategy.Subject = (*Node)(nil)

// NewNode creates a connection node for routing. Bounds are not validated
// here; see limits.ValidatePeerBounds.
func NewNode(routing interfaces.IRouting, minPeers, maxPeers int) *Node {
	return &Node{
		id:          routing.Self(),
		routing:     routing,
		connections: make([]*Node, 0, maxPeers),
		minPeers:    minPeers,
		maxPeers:    maxPeers,
	}
}

func (n *Node) ID() identity.ID { return n.id }

func (n *Node) MinPeers() int { return n.minPeers }

func (n *Node) MaxPeers() int { return n.maxPeers }

func (n *Node) Routing() interfaces.IRouting { return n.routing }

// Targets returns the node's targets. The slice is shared with the node.
func (n *Node) Targets() []*strategy.Target { return n.targets }

// Peers returns the connected nodes in connection order.
func (n *Node) Peers() []*Node {
	out := make([]*Node, len(n.connections))
	copy(out, n.connections)
	return out
}

// Connections returns the IDs of the connected nodes in connection order.
func (n *Node) Connections() []identity.ID {
	ids := make([]identity.ID, len(n.connections))
	for i, peer := range n.connections {
		ids[i] = peer.id
	}
	return ids
}

// NumConnections returns the size of the connection set.
func (n *Node) NumConnections() int { return len(n.connections) }

// IsConnected reports whether other is in the connection set.
func (n *Node) IsConnected(other *Node) bool {
	return n.indexOf(other) >= 0
}

// UnmetTargets counts targets not yet satisfied.
func (n *Node) UnmetTargets() int {
	unmet := 0
	for _, t := range n.targets {
		if !t.Connected {
			unmet++
		}
	}
	return unmet
}

func (n *Node) indexOf(other *Node) int {
	for i, peer := range n.connections {
		if peer == other {
			return i
		}
	}
	return -1
}

// ReceiveConnect accepts a connection request from other. It returns false
// when the node is at capacity.
func (n *Node) ReceiveConnect(other *Node) bool {
	if len(n.connections) >= n.maxPeers {
		return false
	}
	if other == n {
		panic(invariantf("node %s asked to connect to itself", n.id))
	}
	if n.IsConnected(other) {
		panic(invariantf("node %s already connected to %s", n.id, other.id))
	}

	n.connections = append(n.connections, other)
	return true
}

// ReceiveDisconnect removes other from the connection set and re-opens any
// target other was satisfying.
func (n *Node) ReceiveDisconnect(other *Node) {
	i := n.indexOf(other)
	if i < 0 {
		panic(invariantf("node %s asked to disconnect absent peer %s", n.id, other.id))
	}
	n.connections = append(n.connections[:i], n.connections[i+1:]...)

	for _, t := range n.targets {
		if t.Connected && t.Peer.Equal(other.id) {
			t.Reopen()
		}
	}
}

// Disconnect tears down the connection with other on both sides.
func (n *Node) Disconnect(other *Node) {
	other.ReceiveDisconnect(n)
	n.ReceiveDisconnect(other)

	logrus.WithFields(logrus.Fields{
		"function": "Node.Disconnect",
		"node":     n.id.String(),
		"peer":     other.id.String(),
	}).Debug("Disconnected peers")
}

// SetupTargets asks s for the node's targets. It may only run once.
func (n *Node) SetupTargets(s strategy.Strategy) {
	if n.ready {
		panic(invariantf("targets of node %s already set up", n.id))
	}
	n.targets = s.SetupTargets(n)
	n.ready = true
}

// FindTargets looks up every unmet target address so the routing table
// learns candidates near it. Each lookup is drained before the next one is
// issued. It returns the number of lookups issued.
func (n *Node) FindTargets() int {
	lookups := 0
	for _, t := range n.targets {
		if t.Connected {
			continue
		}
		n.routing.FindNode(t.Address)
		if n.network != nil {
			n.network.Process()
		}
		lookups++
	}
	return lookups
}

// ConnectPeers runs one negotiation pass over the node's unmet targets and
// returns the number of connections made. A positive maxConnects ends the
// pass as soon as that many connections were made.
func (n *Node) ConnectPeers(maxConnects int) int {
	if !n.ready {
		panic(invariantf("node %s negotiating before target setup", n.id))
	}

	connected := 0
	for _, t := range n.targets {
		if t.Connected {
			continue
		}
		if len(n.connections) >= n.maxPeers {
			break
		}

		for _, candidate := range n.routing.Neighbours(t.Address) {
			if !t.Accepts(candidate) {
				continue
			}
			remote := n.network.Get(candidate)
			if remote == nil || remote == n || n.IsConnected(remote) {
				continue
			}
			if !remote.ReceiveConnect(n) {
				continue
			}

			t.Match(candidate)
			n.connections = append(n.connections, remote)
			connected++

			logrus.WithFields(logrus.Fields{
				"function": "Node.ConnectPeers",
				"node":     n.id.String(),
				"peer":     candidate.String(),
				"target":   t.Address.String(),
				"peers":    len(n.connections),
			}).Debug("Connected to peer")

			if maxConnects > 0 && connected == maxConnects {
				return connected
			}
			break
		}
	}
	return connected
}
