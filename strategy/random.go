package strategy

import "github.com/opd-ai/kadtopo/identity"

// RandomUniform picks min_peers addresses at uniformly random distance from
// self anywhere in the ID space.
type RandomUniform struct {
	base
}

func (s *RandomUniform) Name() string { return string(KindRandom) }

func (s *RandomUniform) SetupTargets(self Subject) []*Target {
	targets := s.random(self, s.space.Max())
	logTargets(s.Name(), self, targets)
	return targets
}

// RandomClose picks min_peers addresses at random distance no further than
// K/20 from self.
type RandomClose struct {
	base
}

func (s *RandomClose) Name() string { return string(KindRandomClose) }

func (s *RandomClose) SetupTargets(self Subject) []*Target {
	targets := s.random(self, s.space.Fraction(s.space.Max(), 1, 20))
	logTargets(s.Name(), self, targets)
	return targets
}

// RandomClosest targets the min_peers IDs immediately following self.
type RandomClosest struct {
	base
}

func (s *RandomClosest) Name() string { return string(KindRandomClosest) }

func (s *RandomClosest) SetupTargets(self Subject) []*Target {
	minPeers := self.MinPeers()
	if minPeers <= 0 {
		return nil
	}

	tolerance := s.uniformTolerance(minPeers)
	targets := make([]*Target, 0, minPeers)
	for i := 1; i <= minPeers; i++ {
		targets = append(targets, &Target{
			Address:   s.space.Add(self.ID(), s.space.FromUint64(uint64(i))),
			Tolerance: tolerance,
		})
	}

	logTargets(s.Name(), self, targets)
	return targets
}

func (b base) random(self Subject, limit identity.ID) []*Target {
	minPeers := self.MinPeers()
	if minPeers <= 0 {
		return nil
	}

	tolerance := b.uniformTolerance(minPeers)
	targets := make([]*Target, 0, minPeers)
	for i := 0; i < minPeers; i++ {
		distance := b.space.Random(b.rng, limit)
		targets = append(targets, &Target{
			Address:   b.space.Add(self.ID(), distance),
			Tolerance: tolerance,
		})
	}
	return targets
}
