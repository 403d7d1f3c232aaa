// Package interfaces defines the abstractions the connection-strategy engine
// consumes from its routing collaborator.
//
// # Core Interfaces
//
// [IRouting] is one node's view of the DHT: its identity, a closest-first
// neighbour list for any address, and asynchronous lookups:
//
//	for _, id := range routing.Neighbours(target) {
//	    if identity.Distance(id, target).Less(tolerance) {
//	        // candidate within tolerance
//	    }
//	}
//
// [IMessageProcessor] drains the simulated message substrate. Lookups issued
// through IRouting.FindNode only update routing tables once Process returns:
//
//	routing.FindNode(target)
//	delivered := processor.Process()
//
// # Configuration
//
// [RoutingConfig] carries the Kademlia parameters shared by substrate
// implementations. DefaultRoutingConfig returns the devp2p discovery values
// (bucket size 16, alpha 3).
package interfaces
