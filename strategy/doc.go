// Package strategy implements the target selection policies a connection
// node uses to decide which regions of the ID space it wants peers in.
//
// A strategy turns a node's identity (and, for the hybrid variant, its
// current routing state) into an ordered list of targets. Each target is an
// address plus a tolerance: a live connection to any peer whose XOR distance
// to the address is strictly below the tolerance satisfies it.
//
// Six variants are provided:
//
//	random            min_peers addresses at uniformly random distance in [0, K]
//	random-close      min_peers addresses at random distance in [0, K/20]
//	random-closest    the adjacent IDs self+1 .. self+min_peers
//	equal-fingers     addresses spaced K/(min_peers+1) apart
//	kademlia          addresses at K/2, K/4, K/8, ...
//	kademlia-closest  half from the nearest routing neighbours, rest by halving
//
// All randomness comes from the *rand.Rand passed at construction, so a
// seeded source reproduces a run exactly.
//
// Example:
//
//	s, err := strategy.New(strategy.KindKademlia, space, rng, strategy.Options{})
//	if err != nil {
//	    return err
//	}
//	targets := s.SetupTargets(node)
package strategy
