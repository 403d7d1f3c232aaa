// Package simulation drives connection strategy experiments.
//
// A Simulator executes one run in five phases:
//
//  1. bootstrap: spawn the simulated DHT population and wrap every routing
//     protocol in a connection node
//  2. setup_targets: let the configured strategy choose each node's targets
//  3. find_targets: look up every target address and drain the substrate
//  4. connect_peers: negotiate rounds, one new connection per node per
//     round, until a round makes no connection
//  5. analyze: measure the resulting topology
//
// RunBatch expands a BatchConfig into one run per (peer bounds, strategy)
// pair and executes them, optionally in parallel. Every run seeds its own
// random source, so results do not depend on the worker count.
//
// WriteTable renders results as the tab-separated table printed by the CLI.
package simulation
