// Package kadtopo simulates how Kademlia-style peer-to-peer nodes choose whom
// to connect to, and measures the overlay topology each connection strategy
// produces.
//
// Every node lives in an ID space of 2^bits identifiers where closeness is the
// XOR of two IDs. A node declares a minimum and maximum number of peers,
// derives connection targets from its own ID with a strategy, locates
// candidates through a simulated Kademlia lookup and then negotiates
// connections with them round by round until no node can make progress.
//
// # Getting Started
//
// Run a single simulation and print its metrics:
//
//	sim, err := simulation.NewSimulator(simulation.Config{
//	    Nodes:      200,
//	    MinPeers:   5,
//	    MaxPeers:   10,
//	    Strategy:   "kademlia",
//	    IDBits:     512,
//	    Seed:       simulation.DefaultSeed,
//	    BucketSize: 16,
//	    Alpha:      3,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := sim.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	simulation.WriteTable(os.Stdout, []*simulation.Result{result})
//
// Batches sweep several strategies and peer bounds, optionally in parallel:
//
//	batch := simulation.DefaultBatchConfig(200)
//	batch.Strategies = []string{"random-closest", "kademlia", "equal-fingers"}
//	batch.Workers = 4
//	results, err := simulation.RunBatch(ctx, batch)
//
// # Strategies
//
// Six target selection strategies are available by name:
//
//   - random: uniformly random addresses
//   - random-close: random addresses within 1/20 of the ID space
//   - random-closest: the addresses right after the node's own ID
//   - equal-fingers: evenly spaced fingers around the ID space
//   - kademlia: successively halved distances, one per bucket
//   - kademlia-closest: half nearest neighbours, half kademlia fingers
//
// The default strategy of a run that names none can be changed with the
// KADTOPO_STRATEGY environment variable.
//
// # Metrics
//
// Each finished topology is reported with peer degree statistics, shortest
// path lengths, closeness and load centrality, edge connectivity and
// diameter. Metrics that are undefined for the topology, such as path
// lengths of a disconnected graph, are omitted and the report carries an
// ERROR entry instead.
//
// # Deterministic Testing
//
// All randomness flows from the configured seed, so a run is reproducible.
// Timing uses an injectable clock:
//
//	sim, _ := simulation.NewSimulator(config, simulation.WithClock(clock.NewMock()))
//
// # Package Layout
//
//   - [identity]: IDs, XOR distance and the ID space
//   - [interfaces]: the routing collaborator the connection layer consumes
//   - [dht]: the simulated Kademlia substrate
//   - [strategy]: target selection strategies
//   - [factory]: strategy construction with environment overrides
//   - [peering]: connection nodes, the handshake and negotiation rounds
//   - [topology]: graph metrics of a finished network
//   - [simulation]: runs, batches and the results table
//   - [limits]: parameter bounds shared by every layer
//
// The kadtopo command in cmd/kadtopo runs batches from the command line.
package kadtopo
