package strategy

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/opd-ai/kadtopo/identity"
	"github.com/sirupsen/logrus"
)

// ErrUnknownStrategy is returned for a kind name no strategy is registered under.
var ErrUnknownStrategy = errors.New("unknown strategy")

// ErrNilRandom is returned when a randomized strategy is built without a source.
var ErrNilRandom = errors.New("strategy requires a random source")

// Strategy produces the targets of a node. SetupTargets is called exactly
// once per node, before any negotiation.
type Strategy interface {
	Name() string
	SetupTargets(self Subject) []*Target
}

// Kind names a strategy variant.
type Kind string

const (
	KindRandom          Kind = "random"
	KindRandomClose     Kind = "random-close"
	KindRandomClosest   Kind = "random-closest"
	KindEqualFingers    Kind = "equal-fingers"
	KindKademlia        Kind = "kademlia"
	KindKademliaClosest Kind = "kademlia-closest"
)

// Kinds lists every strategy kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindRandom,
		KindRandomClose,
		KindRandomClosest,
		KindEqualFingers,
		KindKademlia,
		KindKademliaClosest,
	}
}

// ParseKind validates a kind name.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Options tunes strategy construction.
type Options struct {
	// LegacyTolerance makes the hybrid strategy use the neighbour's own ID
	// as tolerance for neighbour-derived targets instead of K/min_peers.
	LegacyTolerance bool
}

// New builds the strategy registered under kind.
func New(kind Kind, space identity.Space, rng *rand.Rand, opts Options) (Strategy, error) {
	b := base{space: space, rng: rng}

	switch kind {
	case KindRandom, KindRandomClose:
		if rng == nil {
			return nil, fmt.Errorf("%s: %w", kind, ErrNilRandom)
		}
	}

	switch kind {
	case KindRandom:
		return &RandomUniform{base: b}, nil
	case KindRandomClose:
		return &RandomClose{base: b}, nil
	case KindRandomClosest:
		return &RandomClosest{base: b}, nil
	case KindEqualFingers:
		return &EqualFingers{base: b}, nil
	case KindKademlia:
		return &KademliaHalving{base: b}, nil
	case KindKademliaClosest:
		return &KademliaAndClosest{base: b, legacyTolerance: opts.LegacyTolerance}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, kind)
	}
}

// base holds what every variant shares: the ID space and the random source.
type base struct {
	space identity.Space
	rng   *rand.Rand
}

// uniformTolerance is K / min_peers.
func (b base) uniformTolerance(minPeers int) identity.ID {
	return b.space.Fraction(b.space.Max(), 1, int64(minPeers))
}

// halving appends count targets at successively halved distances from self,
// each with its distance as tolerance.
func (b base) halving(self identity.ID, count int, targets []*Target) []*Target {
	distance := b.space.Max()
	for i := 0; i < count; i++ {
		distance = b.space.Fraction(distance, 1, 2)
		targets = append(targets, &Target{
			Address:   b.space.Add(self, distance),
			Tolerance: distance,
		})
	}
	return targets
}

func logTargets(name string, self Subject, targets []*Target) {
	logrus.WithFields(logrus.Fields{
		"function":  "SetupTargets",
		"strategy":  name,
		"node":      self.ID().String(),
		"min_peers": self.MinPeers(),
		"targets":   len(targets),
	}).Debug("Selected connection targets")
}
