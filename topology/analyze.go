package topology

import (
	"errors"
	"fmt"
	"math"

	"github.com/opd-ai/kadtopo/identity"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/stat"
)

// Analyze measures the topology formed by peers. It never panics or fails:
// metrics that cannot be computed are left out and recorded as errors.
func Analyze(peers []Peer, space identity.Space) *Report {
	r := NewReport()
	g := BuildGraph(peers, space)
	n := g.Order()

	r.SetInt(KeyNumNodes, n)
	if n == 0 {
		r.Fail(ErrEmptyGraph)
		return r
	}

	degrees := make([]float64, n)
	for i := range degrees {
		degrees[i] = float64(g.Degree(int64(i)))
	}
	r.SetInt(KeyMaxPeers, int(floats.Max(degrees)))
	r.SetInt(KeyMinPeers, int(floats.Min(degrees)))
	r.SetFloat(KeyAvgPeers, stat.Mean(degrees, nil))

	components := len(topo.ConnectedComponents(g))
	if components == 1 {
		if averages, err := shortestPathAverages(g); err != nil {
			r.Fail(fmt.Errorf("shortest path: %w", err))
		} else {
			recordSpread(r, KeyAvgShortestPath, KeyRSDShortestPath, averages)
		}
	}

	vs := closeness(g)
	r.SetFloat(KeyMinCloseness, floats.Min(vs))
	recordSpread(r, KeyAvgCloseness, KeyRSDCloseness, vs)

	vs = load(g)
	r.SetFloat(KeyMinLoad, floats.Min(vs))
	r.SetFloat(KeyMaxLoad, floats.Max(vs))
	recordSpread(r, KeyAvgLoad, KeyRSDLoad, vs)

	r.SetInt(KeyEdgeConnectivity, edgeConnectivity(g))

	if d, err := diameter(g); err != nil {
		r.Fail(fmt.Errorf("diameter: %w", err))
	} else {
		r.SetInt(KeyDiameter, d)
	}

	logrus.WithFields(logrus.Fields{
		"function":   "Analyze",
		"nodes":      n,
		"edges":      g.Edges().Len(),
		"components": components,
		"errors":     len(r.errs),
	}).Debug("Analyzed topology")

	return r
}

// recordSpread stores the mean of vs under avgKey and the relative standard
// deviation under rsdKey.
func recordSpread(r *Report, avgKey, rsdKey string, vs []float64) {
	mean := stat.Mean(vs, nil)
	r.SetFloat(avgKey, mean)

	rsd, err := relativeSpread(vs, mean)
	if err != nil {
		r.Fail(fmt.Errorf("%s: %w", rsdKey, err))
		return
	}
	r.SetFloat(rsdKey, rsd)
}

func relativeSpread(vs []float64, mean float64) (float64, error) {
	if len(vs) < 2 {
		return 0, errors.New("at least two values are required")
	}
	if mean == 0 {
		return 0, errors.New("mean is zero")
	}
	sd := stat.StdDev(vs, nil)
	if math.IsNaN(sd) {
		return 0, errors.New("standard deviation is undefined")
	}
	return sd / mean, nil
}
