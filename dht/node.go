package dht

import (
	"github.com/opd-ai/kadtopo/identity"
)

// NodeStatus represents the liveness status of a node as seen by one routing table.
type NodeStatus uint8

const (
	StatusUnknown NodeStatus = iota
	StatusBad
	StatusGood
)

// String returns a human readable status.
func (s NodeStatus) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusBad:
		return "bad"
	case StatusGood:
		return "good"
	default:
		return "invalid"
	}
}

// Node represents a peer in the simulated DHT.
//
// Every routing table holds its own Node values, so status and sighting
// counts are local to the table that recorded them.
type Node struct {
	ID        identity.ID
	PublicKey [32]byte
	Status    NodeStatus
	Seen      uint64
}

// NewNode creates a node object with the given ID and public key.
func NewNode(id identity.ID, publicKey [32]byte) *Node {
	return &Node{
		ID:        id,
		PublicKey: publicKey,
		Status:    StatusUnknown,
	}
}

// Clone returns a copy suitable for insertion into another routing table.
func (n *Node) Clone() *Node {
	return NewNode(n.ID, n.PublicKey)
}

// Distance calculates the XOR distance between this node and another node.
func (n *Node) Distance(other *Node) identity.ID {
	return identity.Distance(n.ID, other.ID)
}

// DistanceTo calculates the XOR distance between this node and an address.
func (n *Node) DistanceTo(target identity.ID) identity.ID {
	return identity.Distance(n.ID, target)
}

// Update marks the node as seen and updates its status.
func (n *Node) Update(status NodeStatus) {
	n.Seen++
	n.Status = status
}
