package identity

import (
	"math/big"
)

// ID is an unsigned integer in the ID space. The zero value is the ID 0.
//
// IDs are immutable: every operation returns a new ID and never modifies its
// receiver or arguments. Use Key when an ID is needed as a map key.
type ID struct {
	v *big.Int
}

// NewID creates an ID holding a copy of x. Negative values are rejected by
// returning the zero ID and false.
func NewID(x *big.Int) (ID, bool) {
	if x == nil || x.Sign() < 0 {
		return ID{}, false
	}
	return ID{v: new(big.Int).Set(x)}, true
}

func (id ID) int() *big.Int {
	if id.v == nil {
		return new(big.Int)
	}
	return id.v
}

// Big returns a copy of the underlying integer.
func (id ID) Big() *big.Int {
	return new(big.Int).Set(id.int())
}

// Cmp compares two IDs numerically and returns -1, 0 or +1.
func (id ID) Cmp(other ID) int {
	return id.int().Cmp(other.int())
}

// Less reports whether id < other.
func (id ID) Less(other ID) bool {
	return id.Cmp(other) < 0
}

// Equal reports whether both IDs hold the same integer.
func (id ID) Equal(other ID) bool {
	return id.Cmp(other) == 0
}

// IsZero reports whether the ID is 0.
func (id ID) IsZero() bool {
	return id.int().Sign() == 0
}

// Xor returns the bitwise exclusive-or of two IDs.
func (id ID) Xor(other ID) ID {
	return ID{v: new(big.Int).Xor(id.int(), other.int())}
}

// BitLen returns the length of the absolute value of the ID in bits.
func (id ID) BitLen() int {
	return id.int().BitLen()
}

// Uint64 returns the low 64 bits of the ID.
func (id ID) Uint64() uint64 {
	return id.int().Uint64()
}

// Key returns a canonical string form suitable as a map key.
func (id ID) Key() string {
	return id.int().Text(16)
}

// String returns the hexadecimal representation of the ID.
func (id ID) String() string {
	return "0x" + id.int().Text(16)
}

// Distance calculates the XOR distance between two IDs.
// Smaller distances are closer. The metric is symmetric and Distance(a, a) is 0.
func Distance(a, b ID) ID {
	return a.Xor(b)
}

// CloserTo reports whether a is strictly closer to target than b.
func CloserTo(target, a, b ID) bool {
	return Distance(a, target).Less(Distance(b, target))
}
