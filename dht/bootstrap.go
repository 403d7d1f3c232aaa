package dht

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/opd-ai/kadtopo/identity"
	"github.com/opd-ai/kadtopo/interfaces"
	"github.com/sirupsen/logrus"
)

// maxIdentityAttempts bounds key generation retries when derived IDs collide.
const maxIdentityAttempts = 64

// ErrIDSpaceExhausted is returned when no unused ID could be generated.
var ErrIDSpaceExhausted = errors.New("could not generate a unique node id")

// Population is a set of protocols sharing one wire, in bootstrap order.
type Population struct {
	Protocols []*Protocol
	Wire      *Wire
}

// Spawn creates count protocols with identities derived from key pairs read
// from rng, then bootstraps them. The same seed always yields the same
// population and routing tables.
func Spawn(space identity.Space, rng *rand.Rand, count int, config *interfaces.RoutingConfig) (*Population, error) {
	if config == nil {
		config = interfaces.DefaultRoutingConfig()
	}

	wire := NewWire(config.MaxMessagesPerDrain)
	used := make(map[string]bool, count)
	protocols := make([]*Protocol, 0, count)

	for i := 0; i < count; i++ {
		node, err := newUniqueNode(space, rng, used)
		if err != nil {
			return nil, fmt.Errorf("failed to create node %d: %w", i, err)
		}
		p, err := NewProtocol(node, space, wire, config)
		if err != nil {
			return nil, fmt.Errorf("failed to create protocol %d: %w", i, err)
		}
		protocols = append(protocols, p)
	}

	pop := &Population{Protocols: protocols, Wire: wire}
	pop.Bootstrap()
	return pop, nil
}

// SpawnWithIDs creates one protocol per explicit ID and bootstraps them.
func SpawnWithIDs(space identity.Space, ids []identity.ID, config *interfaces.RoutingConfig) (*Population, error) {
	if config == nil {
		config = interfaces.DefaultRoutingConfig()
	}

	wire := NewWire(config.MaxMessagesPerDrain)
	used := make(map[string]bool, len(ids))
	protocols := make([]*Protocol, 0, len(ids))

	for i, id := range ids {
		if used[id.Key()] {
			return nil, fmt.Errorf("duplicate node id %s at index %d", id, i)
		}
		used[id.Key()] = true

		p, err := NewProtocol(NewNode(id, [32]byte{}), space, wire, config)
		if err != nil {
			return nil, fmt.Errorf("failed to create protocol %d: %w", i, err)
		}
		protocols = append(protocols, p)
	}

	pop := &Population{Protocols: protocols, Wire: wire}
	pop.Bootstrap()
	return pop, nil
}

// Bootstrap joins every protocol after the first through the first one:
// it learns the bootstrap node, looks up its own ID and the wire drains
// before the next node joins.
func (pop *Population) Bootstrap() int {
	if len(pop.Protocols) == 0 {
		return 0
	}

	seed := pop.Protocols[0].Node()
	delivered := 0
	for _, p := range pop.Protocols[1:] {
		p.Bootstrap([]*Node{seed})
		delivered += pop.Wire.Process()
	}

	logrus.WithFields(logrus.Fields{
		"function":  "Population.Bootstrap",
		"nodes":     len(pop.Protocols),
		"delivered": delivered,
	}).Info("Bootstrapped discovery protocols")

	return delivered
}

// Process drains the shared wire.
func (pop *Population) Process() int {
	return pop.Wire.Process()
}

func newUniqueNode(space identity.Space, rng *rand.Rand, used map[string]bool) (*Node, error) {
	for attempt := 0; attempt < maxIdentityAttempts; attempt++ {
		keys, err := identity.GenerateKeyPair(rng)
		if err != nil {
			continue
		}
		id := space.FromPublicKey(keys.Public)
		if used[id.Key()] {
			continue
		}
		used[id.Key()] = true
		return NewNode(id, keys.Public), nil
	}
	return nil, ErrIDSpaceExhausted
}
