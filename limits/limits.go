// Package limits provides centralized bounds for simulation parameters.
// This ensures consistent validation across the driver, the factory and the CLI.
package limits

import (
	"errors"
	"fmt"
)

const (
	// MinNodeCount is the smallest population that can form a connection
	MinNodeCount = 2

	// MaxNodeCount bounds the simulated population.
	// Lookups and graph metrics are quadratic in the node count, so larger
	// populations take hours rather than minutes.
	MaxNodeCount = 20000

	// MinIDBits is the narrowest ID space (K = 3)
	MinIDBits = 2

	// MaxIDBits matches the 512-bit node IDs derived from SHA3-512
	MaxIDBits = 512

	// DefaultIDBits is the width used when no explicit width is configured
	DefaultIDBits = 512

	// MaxPeers is the largest connection capacity a single node may declare
	MaxPeers = 1024

	// MinBucketSize and MaxBucketSize bound the k parameter of the routing table
	MinBucketSize = 1
	MaxBucketSize = 256

	// MinAlpha and MaxAlpha bound the lookup concurrency parameter
	MinAlpha = 1
	MaxAlpha = 16

	// MaxWorkers bounds how many independent runs a batch executes at once
	MaxWorkers = 64
)

var (
	// ErrNodeCount indicates a population size outside [MinNodeCount, MaxNodeCount]
	ErrNodeCount = errors.New("invalid node count")

	// ErrPeerBounds indicates min/max peer settings that cannot be satisfied
	ErrPeerBounds = errors.New("invalid peer bounds")

	// ErrIDBits indicates an ID space width outside [MinIDBits, MaxIDBits]
	ErrIDBits = errors.New("invalid id space width")

	// ErrBucketSize indicates a k-bucket size outside [MinBucketSize, MaxBucketSize]
	ErrBucketSize = errors.New("invalid bucket size")

	// ErrAlpha indicates a lookup concurrency outside [MinAlpha, MaxAlpha]
	ErrAlpha = errors.New("invalid lookup concurrency")

	// ErrWorkers indicates a worker count outside [1, MaxWorkers]
	ErrWorkers = errors.New("invalid worker count")
)

// ValidateNodeCount validates the size of a simulated population.
func ValidateNodeCount(n int) error {
	if n < MinNodeCount || n > MaxNodeCount {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrNodeCount, n, MinNodeCount, MaxNodeCount)
	}
	return nil
}

// ValidatePeerBounds validates a (min_peers, max_peers) pair.
// A zero max is allowed: such a node rejects every connection request.
// min_peers must be positive so every strategy produces at least one target.
func ValidatePeerBounds(minPeers, maxPeers int) error {
	if minPeers < 1 {
		return fmt.Errorf("%w: min_peers %d must be positive", ErrPeerBounds, minPeers)
	}
	if maxPeers < 0 || maxPeers > MaxPeers {
		return fmt.Errorf("%w: max_peers %d not in [0, %d]", ErrPeerBounds, maxPeers, MaxPeers)
	}
	if minPeers > maxPeers {
		return fmt.Errorf("%w: min_peers %d exceeds max_peers %d", ErrPeerBounds, minPeers, maxPeers)
	}
	return nil
}

// ValidateIDBits validates the width of the ID space.
func ValidateIDBits(bits int) error {
	if bits < MinIDBits || bits > MaxIDBits {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrIDBits, bits, MinIDBits, MaxIDBits)
	}
	return nil
}

// ValidateBucketSize validates the routing table k parameter.
func ValidateBucketSize(k int) error {
	if k < MinBucketSize || k > MaxBucketSize {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrBucketSize, k, MinBucketSize, MaxBucketSize)
	}
	return nil
}

// ValidateAlpha validates the lookup concurrency parameter.
func ValidateAlpha(alpha int) error {
	if alpha < MinAlpha || alpha > MaxAlpha {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrAlpha, alpha, MinAlpha, MaxAlpha)
	}
	return nil
}

// ValidateWorkers validates the batch worker count.
func ValidateWorkers(workers int) error {
	if workers < 1 || workers > MaxWorkers {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrWorkers, workers, MaxWorkers)
	}
	return nil
}
