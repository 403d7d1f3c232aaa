// Package dht implements a simulated Kademlia discovery substrate used as the
// routing collaborator of the connection-strategy engine.
//
// # Architecture
//
// Every simulated node runs a Protocol holding a RoutingTable of k-buckets,
// with nodes grouped by their XOR distance from the local node ID. Protocols
// exchange get_nodes / send_nodes packets over a shared in-process Wire.
// Nothing is delivered when a packet is sent: Wire.Process drains the queue
// in FIFO order, including packets queued by handlers during the drain.
//
//	pop, err := dht.Spawn(space, rng, 20, interfaces.DefaultRoutingConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p := pop.Protocols[3]
//	p.FindNode(target)
//	pop.Process()
//	closest := p.Neighbours(target)
//
// # Routing Table
//
// The routing table has one bucket per ID bit (default 16 nodes per bucket).
// FindClosestNodes uses a max-heap to retrieve the k closest nodes to any
// target without sorting the whole table.
//
// # Lookups
//
// FindNode queries the Alpha closest known nodes. Each send_nodes answer is
// learned into the routing table and the lookup continues with the Alpha
// closest nodes not yet queried for that target, so a lookup ends once the
// closest known nodes have all answered.
//
// # Bootstrap Process
//
// Spawn derives node IDs from Curve25519 key pairs (SHA3-512 of the public
// key, reduced into the ID space) read from a seeded source, then joins each
// node through the first one and drains the wire after every join.
package dht
