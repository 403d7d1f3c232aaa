// Package identity implements node identifiers and the XOR distance metric
// over a fixed-size ID space.
//
// An ID space of width b bits holds the integers [0, K] with K = 2^b - 1.
// Every node identifier, target address, distance and tolerance used by the
// simulator lives in that range. IDs are immutable values backed by
// math/big so the same code serves a 4-bit toy space and the 512-bit space
// produced by hashing public keys with SHA3-512.
//
// Example:
//
//	space, err := identity.NewSpace(512)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	keys, err := identity.GenerateKeyPair(rng)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	id := space.FromPublicKey(keys.Public)
//	d := identity.Distance(id, space.Add(id, space.FromUint64(1)))
package identity
