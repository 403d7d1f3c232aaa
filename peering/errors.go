package peering

import (
	"errors"
	"fmt"
)

// ErrInvariant marks a violated connection invariant. It is only ever
// delivered through a panic.
var ErrInvariant = errors.New("connection invariant violated")

// ErrDuplicateNode is returned when a node ID is added to a network twice.
var ErrDuplicateNode = errors.New("duplicate node")

func invariantf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}
