package strategy

import (
	"fmt"

	"github.com/opd-ai/kadtopo/identity"
	"github.com/opd-ai/kadtopo/interfaces"
)

// Target is a desired peer address and the radius within which a found peer
// counts as a match.
type Target struct {
	Address   identity.ID
	Tolerance identity.ID
	Connected bool
	// Peer is the node that satisfied the target; only meaningful while
	// Connected is true.
	Peer identity.ID
}

// Accepts reports whether candidate lies strictly within tolerance of the
// target address.
func (t *Target) Accepts(candidate identity.ID) bool {
	return identity.Distance(candidate, t.Address).Less(t.Tolerance)
}

// Match marks the target as satisfied by peer.
func (t *Target) Match(peer identity.ID) {
	t.Connected = true
	t.Peer = peer
}

// Reopen clears a previous match.
func (t *Target) Reopen() {
	t.Connected = false
	t.Peer = identity.ID{}
}

func (t *Target) String() string {
	return fmt.Sprintf("target{address=%s tolerance=%s connected=%t}", t.Address, t.Tolerance, t.Connected)
}

// Subject is the view of a connection node a strategy needs.
type Subject interface {
	ID() identity.ID
	MinPeers() int
	Routing() interfaces.IRouting
}
