// Package topology measures the graph formed by a converged network.
//
// Analyze builds an undirected gonum graph with one edge per connection,
// weighted (1 - d/K) * 10 so that close pairs weigh more, and reports degree,
// shortest path, closeness and load centrality, edge connectivity and
// diameter statistics.
//
// Graph-theoretic failures such as a disconnected graph never reach the
// caller as an error return: the report carries an ERROR entry of -1 and the
// individual causes are available from Report.Errors.
package topology
