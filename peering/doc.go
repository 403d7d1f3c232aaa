// Package peering implements connection nodes and the round-based
// negotiation that drives a network of them to a stable topology.
//
// A Node wraps one routing protocol instance. It owns its connection set,
// its capacity bounds and the targets its strategy selected. Connections are
// only created through the two-sided handshake: the initiator asks the
// candidate to ReceiveConnect and, on success, records the candidate itself,
// so membership stays symmetric.
//
// A Network holds the nodes in bootstrap order and runs negotiation passes
// over them. Converge repeats passes until one makes no new connection.
//
// Violated handshake preconditions are programming errors and panic with an
// error wrapping ErrInvariant.
package peering
