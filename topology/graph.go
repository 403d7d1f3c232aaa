package topology

import (
	"github.com/opd-ai/kadtopo/identity"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// Peer is a node of the analysed network.
type Peer interface {
	ID() identity.ID
	Connections() []identity.ID
}

// Graph is the undirected connection graph of a network. Graph node i
// corresponds to the i-th analysed peer.
type Graph struct {
	*simple.WeightedUndirectedGraph
	ids []identity.ID
}

// Weight is the edge weight of a connection between a and b: 10 for
// identical IDs, falling linearly to 0 at distance K.
func Weight(space identity.Space, a, b identity.ID) float64 {
	return (1 - space.Ratio(identity.Distance(a, b))) * 10
}

// BuildGraph adds every peer as a node and every connection as an edge.
// Connections to IDs outside peers are ignored.
func BuildGraph(peers []Peer, space identity.Space) *Graph {
	g := &Graph{
		WeightedUndirectedGraph: simple.NewWeightedUndirectedGraph(0, 0),
		ids:                     make([]identity.ID, len(peers)),
	}

	index := make(map[string]int64, len(peers))
	for i, p := range peers {
		g.ids[i] = p.ID()
		index[p.ID().Key()] = int64(i)
		g.AddNode(simple.Node(int64(i)))
	}

	for i, p := range peers {
		from := int64(i)
		for _, c := range p.Connections() {
			to, ok := index[c.Key()]
			if !ok || to == from || g.HasEdgeBetween(from, to) {
				continue
			}
			g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(from), simple.Node(to), Weight(space, p.ID(), c)))
		}
	}
	return g
}

// PeerID returns the identity of graph node id.
func (g *Graph) PeerID(id int64) identity.ID {
	return g.ids[id]
}

// Order returns the number of nodes.
func (g *Graph) Order() int {
	return len(g.ids)
}

// Degree returns the number of edges at node id.
func (g *Graph) Degree(id int64) int {
	return g.From(id).Len()
}

// distancesFrom returns hop counts from node id to every reachable node,
// itself included at 0.
func (g *Graph) distancesFrom(id int64) map[int64]int {
	dist := make(map[int64]int)
	var bf traverse.BreadthFirst
	bf.Walk(g, g.Node(id), func(n graph.Node, d int) bool {
		dist[n.ID()] = d
		return false
	})
	return dist
}

// neighbours lists the node IDs adjacent to id.
func (g *Graph) neighbours(id int64) []int64 {
	nodes := graph.NodesOf(g.From(id))
	out := make([]int64, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID()
	}
	return out
}
