// Package factory builds connection strategies from configuration in
// kadtopo.
//
// The factory decouples the simulation driver from the concrete strategy
// types: the driver asks for a strategy by kind name and gets back a
// strategy.Strategy wired to the run's ID space and random source.
//
// # Configuration
//
// The default configuration can be overridden with environment variables:
//   - KADTOPO_STRATEGY: strategy kind used when a run does not name one
//     (random, random-close, random-closest, equal-fingers, kademlia,
//     kademlia-closest)
//   - KADTOPO_LEGACY_HYBRID_TOLERANCE: "true" or "false"; when true the
//     kademlia-closest strategy uses a neighbour's own ID as the tolerance of
//     neighbour-derived targets
//
// Invalid values are logged and ignored.
//
// # Usage
//
//	f := factory.NewStrategyFactory()
//
//	// Strategy from the factory defaults
//	s, err := f.CreateStrategy(space, rng)
//
//	// Or override per run
//	s, err = f.CreateStrategyWithOptions(space, rng, factory.WithKind(strategy.KindKademlia))
package factory
