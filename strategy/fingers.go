package strategy

// EqualFingers spaces min_peers targets evenly around the ID space, the way
// a finger table would. Each target tolerates up to its own distance.
type EqualFingers struct {
	base
}

func (s *EqualFingers) Name() string { return string(KindEqualFingers) }

func (s *EqualFingers) SetupTargets(self Subject) []*Target {
	minPeers := self.MinPeers()
	if minPeers <= 0 {
		return nil
	}

	targets := make([]*Target, 0, minPeers)
	for i := 0; i < minPeers; i++ {
		distance := s.space.Fraction(s.space.Max(), int64(i+1), int64(minPeers+1))
		targets = append(targets, &Target{
			Address:   s.space.Add(self.ID(), distance),
			Tolerance: distance,
		})
	}

	logTargets(s.Name(), self, targets)
	return targets
}

// KademliaHalving places targets at K/2, K/4, K/8, ... from self, one per
// bucket from the far end of the routing table inwards.
type KademliaHalving struct {
	base
}

func (s *KademliaHalving) Name() string { return string(KindKademlia) }

func (s *KademliaHalving) SetupTargets(self Subject) []*Target {
	minPeers := self.MinPeers()
	if minPeers <= 0 {
		return nil
	}

	targets := s.halving(self.ID(), minPeers, make([]*Target, 0, minPeers))
	logTargets(s.Name(), self, targets)
	return targets
}

// KademliaAndClosest takes floor(min_peers/2) targets from the node's current
// nearest routing neighbours and fills the rest by halving. When the routing
// table knows fewer neighbours, halving covers the shortfall.
type KademliaAndClosest struct {
	base
	legacyTolerance bool
}

func (s *KademliaAndClosest) Name() string { return string(KindKademliaClosest) }

func (s *KademliaAndClosest) SetupTargets(self Subject) []*Target {
	minPeers := self.MinPeers()
	if minPeers <= 0 {
		return nil
	}

	half := minPeers / 2
	targets := make([]*Target, 0, minPeers)

	if routing := self.Routing(); routing != nil && half > 0 {
		tolerance := s.uniformTolerance(minPeers)
		for _, neighbour := range routing.Neighbours(self.ID()) {
			if len(targets) == half {
				break
			}
			if neighbour.Equal(self.ID()) {
				continue
			}
			t := &Target{Address: neighbour, Tolerance: tolerance}
			if s.legacyTolerance {
				t.Tolerance = neighbour
			}
			targets = append(targets, t)
		}
	}

	targets = s.halving(self.ID(), minPeers-len(targets), targets)
	logTargets(s.Name(), self, targets)
	return targets
}
