// Package limits provides centralized bounds and validation functions for
// simulation parameters. Every entry point (the CLI, YAML batch files and the
// strategy factory) validates through this package so a value rejected in one
// place is rejected everywhere.
//
// # Bounds
//
//   - Node count: [MinNodeCount, MaxNodeCount]. Two nodes are the smallest
//     population that can form a connection.
//
//   - Peer bounds: min_peers must be positive and not exceed max_peers;
//     max_peers lies in [0, MaxPeers]. A node with max_peers = 0 is legal and
//     rejects every connection request.
//
//   - ID space width: [MinIDBits, MaxIDBits] bits, so K = 2^bits - 1.
//
//   - Routing parameters: bucket size k and lookup concurrency alpha.
//
// # Error Types
//
// Each validator wraps a sentinel so callers can match with errors.Is:
//
//	if err := limits.ValidatePeerBounds(7, 3); errors.Is(err, limits.ErrPeerBounds) {
//	    // reject configuration
//	}
package limits
