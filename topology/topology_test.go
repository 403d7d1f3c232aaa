package topology

import (
	"errors"
	"testing"

	"github.com/opd-ai/kadtopo/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var space4 = identity.MustSpace(4)

type fakePeer struct {
	id    identity.ID
	conns []identity.ID
}

func (p *fakePeer) ID() identity.ID { return p.id }

func (p *fakePeer) Connections() []identity.ID { return p.conns }

// peersFromEdges builds n peers with IDs 0..n-1 and symmetric connections.
func peersFromEdges(n int, edges [][2]int) []Peer {
	ps := make([]*fakePeer, n)
	for i := range ps {
		ps[i] = &fakePeer{id: space4.FromUint64(uint64(i))}
	}
	for _, e := range edges {
		ps[e[0]].conns = append(ps[e[0]].conns, ps[e[1]].id)
		ps[e[1]].conns = append(ps[e[1]].conns, ps[e[0]].id)
	}
	out := make([]Peer, n)
	for i, p := range ps {
		out[i] = p
	}
	return out
}

func value(t *testing.T, r *Report, key string) float64 {
	t.Helper()
	v, ok := r.Value(key)
	require.True(t, ok, "missing metric %s", key)
	return v
}

func TestAnalyzePath(t *testing.T) {
	r := Analyze(peersFromEdges(3, [][2]int{{0, 1}, {1, 2}}), space4)

	assert.False(t, r.Failed(), "unexpected errors: %v", r.Errors())
	assert.Equal(t, []string{
		KeyNumNodes, KeyMaxPeers, KeyMinPeers, KeyAvgPeers,
		KeyAvgShortestPath, KeyRSDShortestPath,
		KeyMinCloseness, KeyAvgCloseness, KeyRSDCloseness,
		KeyMinLoad, KeyMaxLoad, KeyAvgLoad, KeyRSDLoad,
		KeyEdgeConnectivity, KeyDiameter,
	}, r.Keys())

	assert.Equal(t, 3.0, value(t, r, KeyNumNodes))
	assert.Equal(t, 2.0, value(t, r, KeyMaxPeers))
	assert.Equal(t, 1.0, value(t, r, KeyMinPeers))
	assert.InDelta(t, 4.0/3, value(t, r, KeyAvgPeers), 1e-9)
	assert.InDelta(t, 8.0/9, value(t, r, KeyAvgShortestPath), 1e-9)
	assert.InDelta(t, 0.2165, value(t, r, KeyRSDShortestPath), 1e-4)
	assert.InDelta(t, 2.0/3, value(t, r, KeyMinCloseness), 1e-9)
	assert.InDelta(t, 7.0/9, value(t, r, KeyAvgCloseness), 1e-9)
	assert.Equal(t, 0.0, value(t, r, KeyMinLoad))
	assert.InDelta(t, 1.0, value(t, r, KeyMaxLoad), 1e-9)
	assert.InDelta(t, 1.0/3, value(t, r, KeyAvgLoad), 1e-9)
	assert.InDelta(t, 1.7321, value(t, r, KeyRSDLoad), 1e-4)
	assert.Equal(t, 1.0, value(t, r, KeyEdgeConnectivity))
	assert.Equal(t, 2.0, value(t, r, KeyDiameter))
}

func TestAnalyzeCycle(t *testing.T) {
	r := Analyze(peersFromEdges(4, [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}}), space4)

	assert.False(t, r.Failed(), "unexpected errors: %v", r.Errors())
	assert.InDelta(t, 0.75, value(t, r, KeyAvgCloseness), 1e-9)
	assert.InDelta(t, 0.0, value(t, r, KeyRSDCloseness), 1e-9)
	assert.InDelta(t, 1.0/6, value(t, r, KeyAvgLoad), 1e-9)
	assert.InDelta(t, 1.0/6, value(t, r, KeyMaxLoad), 1e-9)
	assert.Equal(t, 2.0, value(t, r, KeyEdgeConnectivity))
	assert.Equal(t, 2.0, value(t, r, KeyDiameter))
}

func TestAnalyzeDisconnected(t *testing.T) {
	r := Analyze(peersFromEdges(4, [][2]int{{0, 1}, {2, 3}}), space4)

	require.True(t, r.Failed())
	assert.Equal(t, float64(ErrorValue), value(t, r, KeyError))

	assert.Equal(t, 4.0, value(t, r, KeyNumNodes))
	assert.Equal(t, 1.0, value(t, r, KeyMaxPeers))
	assert.Equal(t, 1.0, value(t, r, KeyMinPeers))
	assert.Equal(t, 1.0, value(t, r, KeyAvgPeers))
	assert.Equal(t, 0.0, value(t, r, KeyEdgeConnectivity))
	assert.InDelta(t, 1.0/3, value(t, r, KeyMinCloseness), 1e-9)

	_, ok := r.Get(KeyAvgShortestPath)
	assert.False(t, ok, "path length is undefined on a disconnected graph")
	_, ok = r.Get(KeyDiameter)
	assert.False(t, ok, "diameter is undefined on a disconnected graph")

	disconnected := false
	for _, err := range r.Errors() {
		if errors.Is(err, ErrDisconnected) {
			disconnected = true
		}
	}
	assert.True(t, disconnected, "errors: %v", r.Errors())
	assert.Error(t, r.Err())
}

func TestAnalyzeEmptyAndSingle(t *testing.T) {
	r := Analyze(nil, space4)
	assert.True(t, r.Failed())
	assert.Equal(t, 0.0, value(t, r, KeyNumNodes))
	assert.ErrorIs(t, r.Err(), ErrEmptyGraph)

	r = Analyze(peersFromEdges(1, nil), space4)
	assert.Equal(t, 0.0, value(t, r, KeyMaxPeers))
	assert.Equal(t, 0.0, value(t, r, KeyDiameter))
	assert.Equal(t, 0.0, value(t, r, KeyEdgeConnectivity))
}

func TestEdgeConnectivity(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		edges [][2]int
		want  int
	}{
		{"K4", 4, [][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}, 3},
		{"Bridge", 6, [][2]int{{0, 1}, {1, 2}, {2, 0}, {2, 3}, {3, 4}, {4, 5}, {5, 3}}, 1},
		{"Cycle", 5, [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 0}}, 2},
		{"Isolated", 3, [][2]int{{0, 1}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := BuildGraph(peersFromEdges(tt.n, tt.edges), space4)
			assert.Equal(t, tt.want, edgeConnectivity(g))
		})
	}
}

func TestBuildGraph(t *testing.T) {
	a := &fakePeer{id: space4.FromUint64(0)}
	b := &fakePeer{id: space4.FromUint64(5)}
	c := &fakePeer{id: space4.FromUint64(15)}
	a.conns = []identity.ID{b.id, c.id, space4.FromUint64(9)}
	b.conns = []identity.ID{a.id}
	c.conns = []identity.ID{a.id}

	g := BuildGraph([]Peer{a, b, c}, space4)
	assert.Equal(t, 3, g.Order())
	assert.Equal(t, 2, g.Edges().Len(), "each connection pair is one edge, unknown peers are ignored")
	assert.Equal(t, 2, g.Degree(0))
	assert.True(t, g.PeerID(1).Equal(b.id))

	w, ok := g.Weight(0, 1)
	require.True(t, ok)
	assert.InDelta(t, 20.0/3, w, 1e-9)
	w, _ = g.Weight(0, 2)
	assert.InDelta(t, 0.0, w, 1e-9)
}

func TestWeight(t *testing.T) {
	assert.InDelta(t, 10.0, Weight(space4, space4.FromUint64(3), space4.FromUint64(3)), 1e-9)
	assert.InDelta(t, 0.0, Weight(space4, space4.FromUint64(0), space4.FromUint64(15)), 1e-9)
}

func TestReport(t *testing.T) {
	r := NewReport()
	r.SetInt("b", 3)
	r.SetFloat("a", 2.0/3)
	r.SetInt("b", 4)

	assert.Equal(t, []string{"b", "a"}, r.Keys(), "overwriting keeps the original position")
	m, ok := r.Get("b")
	require.True(t, ok)
	assert.Equal(t, "4", m.String())
	m, _ = r.Get("a")
	assert.Equal(t, "0.6667", m.String())
	assert.False(t, r.Failed())
	assert.NoError(t, r.Err())

	r.Fail(errors.New("boom"))
	assert.True(t, r.Failed())
	assert.Len(t, r.Errors(), 1)
	assert.Equal(t, "ERROR", r.Keys()[2])
}
