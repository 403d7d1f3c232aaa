package topology

import (
	"errors"
	"sort"
)

var (
	// ErrDisconnected is reported for metrics undefined on a disconnected graph.
	ErrDisconnected = errors.New("graph is not connected")
	// ErrEmptyGraph is reported when there is nothing to analyse.
	ErrEmptyGraph = errors.New("graph has no nodes")
)

// closeness computes the closeness centrality of every node on hop counts,
// scaled by the reachable fraction of the graph (Wasserman and Faust) so it
// stays meaningful on disconnected graphs.
func closeness(g *Graph) []float64 {
	n := g.Order()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		dist := g.distancesFrom(int64(i))
		total := 0
		for _, d := range dist {
			total += d
		}
		reached := float64(len(dist) - 1)
		if total > 0 && n > 1 {
			out[i] = reached / float64(total) * (reached / float64(n-1))
		}
	}
	return out
}

// load computes Newman's load centrality: the fraction of shortest path
// flow passing through each node, where a unit sent between each pair is
// split evenly among predecessors at every hop.
func load(g *Graph) []float64 {
	n := g.Order()
	out := make([]float64, n)

	for s := 0; s < n; s++ {
		source := int64(s)
		dist := g.distancesFrom(source)

		order := make([]int64, 0, len(dist))
		for v, d := range dist {
			if d > 0 {
				order = append(order, v)
			}
		}
		sort.Slice(order, func(i, j int) bool {
			if dist[order[i]] != dist[order[j]] {
				return dist[order[i]] > dist[order[j]]
			}
			return order[i] < order[j]
		})

		between := make(map[int64]float64, len(dist))
		for v := range dist {
			between[v] = 1
		}

		for _, v := range order {
			var preds []int64
			for _, u := range g.neighbours(v) {
				if du, ok := dist[u]; ok && du == dist[v]-1 {
					preds = append(preds, u)
				}
			}
			for _, x := range preds {
				if x == source {
					continue
				}
				between[x] += between[v] / float64(len(preds))
			}
		}

		for v, b := range between {
			out[v] += b - 1
		}
	}

	if n > 2 {
		scale := 1 / float64((n-1)*(n-2))
		for i := range out {
			out[i] *= scale
		}
	}
	return out
}

// shortestPathAverages returns, per node, the mean hop count to every node
// including itself. It fails on a disconnected graph.
func shortestPathAverages(g *Graph) ([]float64, error) {
	n := g.Order()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		dist := g.distancesFrom(int64(i))
		if len(dist) != n {
			return nil, ErrDisconnected
		}
		total := 0
		for _, d := range dist {
			total += d
		}
		out[i] = float64(total) / float64(len(dist))
	}
	return out, nil
}

// diameter is the largest eccentricity. It fails on a disconnected graph.
func diameter(g *Graph) (int, error) {
	n := g.Order()
	if n == 0 {
		return 0, ErrEmptyGraph
	}
	longest := 0
	for i := 0; i < n; i++ {
		dist := g.distancesFrom(int64(i))
		if len(dist) != n {
			return 0, ErrDisconnected
		}
		for _, d := range dist {
			if d > longest {
				longest = d
			}
		}
	}
	return longest, nil
}

// edgeConnectivity is the minimum number of edges whose removal disconnects
// the graph: 0 when already disconnected, otherwise the smallest unit
// capacity max flow from a minimum degree node to any other node.
func edgeConnectivity(g *Graph) int {
	n := g.Order()
	if n < 2 {
		return 0
	}

	adj := make([][]int, n)
	source, best := 0, -1
	for i := 0; i < n; i++ {
		for _, u := range g.neighbours(int64(i)) {
			adj[i] = append(adj[i], int(u))
		}
		if best < 0 || len(adj[i]) < best {
			source, best = i, len(adj[i])
		}
	}
	if best == 0 {
		return 0
	}

	for t := 0; t < n && best > 0; t++ {
		if t == source {
			continue
		}
		if f := maxFlow(adj, source, t, best); f < best {
			best = f
		}
	}
	return best
}

// maxFlow runs Edmonds-Karp on the undirected unit capacity graph adj and
// stops once limit units have been pushed.
func maxFlow(adj [][]int, s, t, limit int) int {
	n := len(adj)
	residual := make(map[[2]int]int)
	capacity := func(u, v int) int {
		if c, ok := residual[[2]int{u, v}]; ok {
			return c
		}
		return 1
	}

	flow := 0
	parent := make([]int, n)
	for flow < limit {
		for i := range parent {
			parent[i] = -1
		}
		parent[s] = s
		queue := []int{s}
		for len(queue) > 0 && parent[t] < 0 {
			u := queue[0]
			queue = queue[1:]
			for _, v := range adj[u] {
				if parent[v] < 0 && capacity(u, v) > 0 {
					parent[v] = u
					queue = append(queue, v)
				}
			}
		}
		if parent[t] < 0 {
			break
		}
		for v := t; v != s; v = parent[v] {
			u := parent[v]
			residual[[2]int{u, v}] = capacity(u, v) - 1
			residual[[2]int{v, u}] = capacity(v, u) + 1
		}
		flow++
	}
	return flow
}
