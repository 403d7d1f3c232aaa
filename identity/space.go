package identity

import (
	"math/big"
	"math/rand"

	"github.com/opd-ai/kadtopo/limits"
	"golang.org/x/crypto/sha3"
)

// Space describes the ID space [0, K] with K = 2^bits - 1.
// A Space is safe for concurrent use; it is never modified after creation.
type Space struct {
	bits    int
	max     *big.Int
	modulus *big.Int
}

// NewSpace creates an ID space of the given width in bits.
func NewSpace(bits int) (Space, error) {
	if err := limits.ValidateIDBits(bits); err != nil {
		return Space{}, err
	}
	modulus := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	return Space{
		bits:    bits,
		max:     new(big.Int).Sub(modulus, big.NewInt(1)),
		modulus: modulus,
	}, nil
}

// MustSpace is like NewSpace but panics on an invalid width.
func MustSpace(bits int) Space {
	s, err := NewSpace(bits)
	if err != nil {
		panic(err)
	}
	return s
}

// Bits returns the width of the space in bits.
func (s Space) Bits() int {
	return s.bits
}

// Max returns K, the largest ID in the space.
func (s Space) Max() ID {
	return ID{v: new(big.Int).Set(s.max)}
}

// Contains reports whether id lies in [0, K].
func (s Space) Contains(id ID) bool {
	return id.int().Sign() >= 0 && id.int().Cmp(s.max) <= 0
}

// Wrap reduces x modulo K+1.
func (s Space) Wrap(x *big.Int) ID {
	return ID{v: new(big.Int).Mod(x, s.modulus)}
}

// Add returns (a + b) mod (K+1).
func (s Space) Add(a, b ID) ID {
	return s.Wrap(new(big.Int).Add(a.int(), b.int()))
}

// Fraction returns a*num/den using integer division. den must be positive.
func (s Space) Fraction(a ID, num, den int64) ID {
	v := new(big.Int).Mul(a.int(), big.NewInt(num))
	return s.Wrap(v.Quo(v, big.NewInt(den)))
}

// Random returns an ID drawn uniformly from [0, limit].
func (s Space) Random(rng *rand.Rand, limit ID) ID {
	n := new(big.Int).Add(limit.int(), big.NewInt(1))
	return s.Wrap(new(big.Int).Rand(rng, n))
}

// FromUint64 returns u reduced into the space.
func (s Space) FromUint64(u uint64) ID {
	return s.Wrap(new(big.Int).SetUint64(u))
}

// FromPublicKey derives a node ID from a public key: the SHA3-512 digest of
// the key, reduced into the space.
func (s Space) FromPublicKey(pub [32]byte) ID {
	digest := sha3.Sum512(pub[:])
	return s.Wrap(new(big.Int).SetBytes(digest[:]))
}

// Ratio returns d/K as a float64.
func (s Space) Ratio(d ID) float64 {
	r, _ := new(big.Rat).SetFrac(d.int(), s.max).Float64()
	return r
}
