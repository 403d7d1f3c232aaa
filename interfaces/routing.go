package interfaces

import (
	"fmt"

	"github.com/opd-ai/kadtopo/identity"
	"github.com/opd-ai/kadtopo/limits"
)

// IRouting is the view a connection node has of its own DHT routing state.
// This abstraction allows the connection strategies to run against the
// simulated Kademlia substrate or any other routing implementation.
type IRouting interface {
	// Self returns the routing protocol's own identity
	Self() identity.ID

	// Neighbours returns known nodes ordered by increasing distance to target.
	// Ties keep the order of the local routing table.
	Neighbours(target identity.ID) []identity.ID

	// FindNode issues an asynchronous lookup for target. Its effects become
	// visible only after the message processor has drained.
	FindNode(target identity.ID)
}

// IMessageProcessor delivers simulated network messages.
type IMessageProcessor interface {
	// Process delivers every queued message, including messages queued while
	// processing, and returns how many were delivered
	Process() int
}

// RoutingConfig holds configuration for routing substrate implementations
type RoutingConfig struct {
	// BucketSize is the Kademlia k: bucket capacity and neighbour list length
	BucketSize int

	// Alpha is the number of nodes queried in parallel by a lookup
	Alpha int

	// MaxMessagesPerDrain bounds a single Process call; 0 means unbounded
	MaxMessagesPerDrain int
}

// DefaultRoutingConfig returns the devp2p discovery parameters (k=16, alpha=3).
func DefaultRoutingConfig() *RoutingConfig {
	return &RoutingConfig{
		BucketSize:          16,
		Alpha:               3,
		MaxMessagesPerDrain: 0,
	}
}

// Validate checks that the configuration is within limits.
func (c *RoutingConfig) Validate() error {
	if err := limits.ValidateBucketSize(c.BucketSize); err != nil {
		return err
	}
	if err := limits.ValidateAlpha(c.Alpha); err != nil {
		return err
	}
	if c.MaxMessagesPerDrain < 0 {
		return fmt.Errorf("max messages per drain cannot be negative: %d", c.MaxMessagesPerDrain)
	}
	return nil
}
