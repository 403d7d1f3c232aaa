package strategy

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/opd-ai/kadtopo/identity"
	"github.com/opd-ai/kadtopo/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRouting struct {
	self  identity.ID
	known []identity.ID
}

func (r *fakeRouting) Self() identity.ID { return r.self }

func (r *fakeRouting) Neighbours(target identity.ID) []identity.ID {
	out := append([]identity.ID(nil), r.known...)
	sort.SliceStable(out, func(i, j int) bool {
		return identity.CloserTo(target, out[i], out[j])
	})
	return out
}

func (r *fakeRouting) FindNode(identity.ID) {}

type fakeSubject struct {
	id       identity.ID
	minPeers int
	routing  interfaces.IRouting
}

func (s *fakeSubject) ID() identity.ID { return s.id }
func (s *fakeSubject) MinPeers() int { return s.minPeers }
func (s *fakeSubject) Routing() interfaces.IRouting { return s.routing }

func subject(space identity.Space, id uint64, minPeers int, known ...uint64) *fakeSubject {
	r := &fakeRouting{self: space.FromUint64(id)}
	for _, k := range known {
		r.known = append(r.known, space.FromUint64(k))
	}
	return &fakeSubject{id: r.self, minPeers: minPeers, routing: r}
}

func values(targets []*Target) (addresses, tolerances []uint64) {
	for _, t := range targets {
		addresses = append(addresses, t.Address.Uint64())
		tolerances = append(tolerances, t.Tolerance.Uint64())
	}
	return addresses, tolerances
}

func mustNew(t *testing.T, kind Kind, space identity.Space, opts Options) Strategy {
	t.Helper()
	s, err := New(kind, space, rand.New(rand.NewSource(42)), opts)
	require.NoError(t, err)
	return s
}

func TestOutputContract(t *testing.T) {
	for _, bits := range []int{4, 16, 512} {
		space := identity.MustSpace(bits)
		for _, kind := range Kinds() {
			for _, minPeers := range []int{1, 2, 5, 9} {
				s := mustNew(t, kind, space, Options{})
				self := &fakeSubject{
					id:       space.Max(),
					minPeers: minPeers,
					routing:  &fakeRouting{known: []identity.ID{space.FromUint64(1), space.FromUint64(2)}},
				}

				targets := s.SetupTargets(self)
				require.Len(t, targets, minPeers, "%s bits=%d min=%d", kind, bits, minPeers)
				for _, target := range targets {
					assert.True(t, space.Contains(target.Address), "%s produced address outside the space", kind)
					assert.False(t, target.Connected)
				}
				assert.Equal(t, string(kind), s.Name())
			}
		}
	}
}

func TestRandomClosest(t *testing.T) {
	space := identity.MustSpace(4)
	s := mustNew(t, KindRandomClosest, space, Options{})

	addresses, tolerances := values(s.SetupTargets(subject(space, 15, 2)))
	assert.Equal(t, []uint64{0, 1}, addresses, "addresses wrap modulo K+1")
	assert.Equal(t, []uint64{7, 7}, tolerances)

	addresses, _ = values(s.SetupTargets(subject(space, 5, 3)))
	assert.Equal(t, []uint64{6, 7, 8}, addresses)
}

func TestEqualFingers(t *testing.T) {
	space := identity.MustSpace(4)
	s := mustNew(t, KindEqualFingers, space, Options{})

	addresses, tolerances := values(s.SetupTargets(subject(space, 0, 2)))
	assert.Equal(t, []uint64{5, 10}, addresses)
	assert.Equal(t, []uint64{5, 10}, tolerances)

	addresses, _ = values(s.SetupTargets(subject(space, 12, 2)))
	assert.Equal(t, []uint64{1, 6}, addresses)
}

func TestKademliaHalving(t *testing.T) {
	space := identity.MustSpace(4)
	s := mustNew(t, KindKademlia, space, Options{})

	addresses, tolerances := values(s.SetupTargets(subject(space, 10, 3)))
	assert.Equal(t, []uint64{1, 13, 11}, addresses)
	assert.Equal(t, []uint64{7, 3, 1}, tolerances)
}

func TestKademliaAndClosest(t *testing.T) {
	space := identity.MustSpace(8)

	tests := []struct {
		name       string
		opts       Options
		minPeers   int
		known      []uint64
		addresses  []uint64
		tolerances []uint64
	}{
		{
			name:       "DistanceTolerance",
			minPeers:   5,
			known:      []uint64{200, 9, 3},
			addresses:  []uint64{3, 9, 127, 63, 31},
			tolerances: []uint64{51, 51, 127, 63, 31},
		},
		{
			name:       "LegacyTolerance",
			opts:       Options{LegacyTolerance: true},
			minPeers:   5,
			known:      []uint64{200, 9, 3},
			addresses:  []uint64{3, 9, 127, 63, 31},
			tolerances: []uint64{3, 9, 127, 63, 31},
		},
		{
			name:       "OddMinPeersRoundsDown",
			minPeers:   3,
			known:      []uint64{200, 9, 3},
			addresses:  []uint64{3, 127, 63},
			tolerances: []uint64{85, 127, 63},
		},
		{
			name:       "HalvingFillsShortfall",
			minPeers:   5,
			known:      []uint64{3},
			addresses:  []uint64{3, 127, 63, 31, 15},
			tolerances: []uint64{51, 127, 63, 31, 15},
		},
		{
			name:       "SinglePeerUsesHalvingOnly",
			minPeers:   1,
			known:      []uint64{3},
			addresses:  []uint64{127},
			tolerances: []uint64{127},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustNew(t, KindKademliaClosest, space, tt.opts)
			addresses, tolerances := values(s.SetupTargets(subject(space, 0, tt.minPeers, tt.known...)))
			assert.Equal(t, tt.addresses, addresses)
			assert.Equal(t, tt.tolerances, tolerances)
		})
	}
}

func TestRandomStrategiesAreReproducible(t *testing.T) {
	space := identity.MustSpace(64)

	for _, kind := range []Kind{KindRandom, KindRandomClose} {
		t.Run(string(kind), func(t *testing.T) {
			a := mustNew(t, kind, space, Options{}).SetupTargets(subject(space, 0, 6))
			b := mustNew(t, kind, space, Options{}).SetupTargets(subject(space, 0, 6))

			addrA, _ := values(a)
			addrB, _ := values(b)
			assert.Equal(t, addrA, addrB)
		})
	}
}

func TestRandomCloseStaysInNeighbourhood(t *testing.T) {
	space := identity.MustSpace(64)
	limit := space.Fraction(space.Max(), 1, 20)
	s := mustNew(t, KindRandomClose, space, Options{})

	for _, target := range s.SetupTargets(subject(space, 0, 50)) {
		assert.False(t, limit.Less(target.Address), "address %s beyond K/20", target.Address)
		assert.Equal(t, space.Fraction(space.Max(), 1, 50), target.Tolerance)
	}
}

func TestNewErrors(t *testing.T) {
	space := identity.MustSpace(8)

	_, err := New("ring", space, rand.New(rand.NewSource(1)), Options{})
	assert.ErrorIs(t, err, ErrUnknownStrategy)

	_, err = New(KindRandom, space, nil, Options{})
	assert.ErrorIs(t, err, ErrNilRandom)

	_, err = New(KindKademlia, space, nil, Options{})
	assert.NoError(t, err, "deterministic strategies do not need a random source")

	kind, err := ParseKind("equal-fingers")
	require.NoError(t, err)
	assert.Equal(t, KindEqualFingers, kind)

	_, err = ParseKind("")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestTargetAccepts(t *testing.T) {
	space := identity.MustSpace(4)
	target := &Target{Address: space.FromUint64(5), Tolerance: space.FromUint64(3)}

	assert.True(t, target.Accepts(space.FromUint64(4)))
	assert.True(t, target.Accepts(space.FromUint64(5)))
	assert.False(t, target.Accepts(space.FromUint64(6)), "distance equal to tolerance is rejected")
	assert.False(t, target.Accepts(space.FromUint64(10)))

	target.Match(space.FromUint64(4))
	assert.True(t, target.Connected)
	assert.Equal(t, uint64(4), target.Peer.Uint64())

	target.Reopen()
	assert.False(t, target.Connected)
}
