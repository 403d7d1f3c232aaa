package dht

import (
	"errors"
	"fmt"

	"github.com/opd-ai/kadtopo/identity"
	"github.com/opd-ai/kadtopo/interfaces"
	"github.com/sirupsen/logrus"
)

// ErrUnsolicitedResponse is returned for send_nodes packets that answer no lookup.
var ErrUnsolicitedResponse = errors.New("unsolicited send_nodes response")

// lookup tracks one iterative node lookup.
type lookup struct {
	target  identity.ID
	queried map[string]bool
}

// Protocol is one node's Kademlia discovery protocol running on a shared Wire.
// It implements interfaces.IRouting.
type Protocol struct {
	self    *Node
	space   identity.Space
	routing *RoutingTable
	wire    *Wire
	config  *interfaces.RoutingConfig
	lookups map[string]*lookup
}

var _ interfaces.IRouting = (*Protocol)(nil)

// NewProtocol creates a protocol for self and registers it on the wire.
func NewProtocol(self *Node, space identity.Space, wire *Wire, config *interfaces.RoutingConfig) (*Protocol, error) {
	if config == nil {
		config = interfaces.DefaultRoutingConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid routing config: %w", err)
	}
	if !space.Contains(self.ID) {
		return nil, fmt.Errorf("node id %s outside id space of %d bits", self.ID, space.Bits())
	}

	p := &Protocol{
		self:    self,
		space:   space,
		routing: NewRoutingTable(self.ID, space, config.BucketSize),
		wire:    wire,
		config:  config,
		lookups: make(map[string]*lookup),
	}
	wire.Register(p)
	return p, nil
}

// Self returns the protocol's own node ID.
func (p *Protocol) Self() identity.ID {
	return p.self.ID
}

// Node returns the protocol's own node.
func (p *Protocol) Node() *Node {
	return p.self
}

// RoutingTable returns the local routing table.
func (p *Protocol) RoutingTable() *RoutingTable {
	return p.routing
}

// Neighbours returns up to BucketSize known nodes, closest to target first.
func (p *Protocol) Neighbours(target identity.ID) []identity.ID {
	nodes := p.routing.FindClosestNodes(target, p.config.BucketSize)
	ids := make([]identity.ID, len(nodes))
	for i, node := range nodes {
		ids[i] = node.ID
	}
	return ids
}

// FindNode starts (or resumes) an iterative lookup for target by querying
// the Alpha closest known nodes that have not yet been queried for it.
func (p *Protocol) FindNode(target identity.ID) {
	l, ok := p.lookups[target.Key()]
	if !ok {
		l = &lookup{target: target, queried: make(map[string]bool)}
		p.lookups[target.Key()] = l
	}

	sent := p.advance(l)

	logrus.WithFields(logrus.Fields{
		"function": "Protocol.FindNode",
		"self":     p.self.ID.String(),
		"target":   target.String(),
		"queries":  sent,
	}).Debug("Issued node lookup")
}

// Bootstrap seeds the routing table with known nodes and looks up our own ID.
func (p *Protocol) Bootstrap(seeds []*Node) {
	for _, seed := range seeds {
		p.learn(seed)
	}
	p.FindNode(p.self.ID)
}

// HandlePacket dispatches a packet delivered by the wire.
func (p *Protocol) HandlePacket(packet *Packet) error {
	if packet.Sender == nil {
		return errors.New("packet without sender")
	}

	switch packet.Type {
	case PacketGetNodes:
		return p.handleGetNodes(packet)
	case PacketSendNodes:
		return p.handleSendNodes(packet)
	default:
		return fmt.Errorf("unknown packet type: %d", packet.Type)
	}
}

// handleGetNodes learns the requester and answers with our closest nodes to the target.
func (p *Protocol) handleGetNodes(packet *Packet) error {
	p.learn(packet.Sender)

	closest := p.routing.FindClosestNodes(packet.Target, p.config.BucketSize)
	nodes := make([]*Node, 0, len(closest))
	for _, node := range closest {
		if node.ID.Equal(packet.Sender.ID) {
			continue
		}
		nodes = append(nodes, node.Clone())
	}

	p.wire.Send(&Packet{
		Type:   PacketSendNodes,
		Sender: p.self.Clone(),
		To:     packet.Sender.ID,
		Target: packet.Target,
		Nodes:  nodes,
	})
	return nil
}

// handleSendNodes learns the responder and the returned nodes, then continues
// the lookup towards any closer node not yet queried.
func (p *Protocol) handleSendNodes(packet *Packet) error {
	p.learn(packet.Sender)

	l, ok := p.lookups[packet.Target.Key()]
	if !ok {
		return ErrUnsolicitedResponse
	}

	for _, node := range packet.Nodes {
		if node.ID.Equal(p.self.ID) {
			continue
		}
		p.learn(node)
	}

	p.advance(l)
	return nil
}

// advance queries the Alpha closest known nodes to the lookup target that
// have not been queried yet. Each node is queried at most once per target,
// so every lookup terminates.
func (p *Protocol) advance(l *lookup) int {
	sent := 0
	for _, node := range p.routing.FindClosestNodes(l.target, p.config.Alpha) {
		key := node.ID.Key()
		if l.queried[key] {
			continue
		}
		l.queried[key] = true
		p.wire.Send(&Packet{
			Type:   PacketGetNodes,
			Sender: p.self.Clone(),
			To:     node.ID,
			Target: l.target,
		})
		sent++
	}
	return sent
}

// learn inserts a copy of node into the routing table.
func (p *Protocol) learn(node *Node) {
	if node == nil || node.ID.Equal(p.self.ID) || !p.space.Contains(node.ID) {
		return
	}
	p.routing.AddNode(node.Clone())
}
