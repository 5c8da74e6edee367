package nn

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Graph exports the network topology as a gonum weighted directed graph.
// Node ids are kept; self-loops are left out because simple graphs cannot
// hold them, and parallel links collapse to the last one added.
func (net *Network) Graph() *simple.WeightedDirectedGraph {
	g := simple.NewWeightedDirectedGraph(0, 0)
	for _, n := range net.nodes {
		g.AddNode(simple.Node(int64(n.ID)))
	}
	for _, l := range net.links {
		if l.In == l.Out {
			continue
		}
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(int64(l.In)), simple.Node(int64(l.Out)), l.Weight))
	}
	return g
}

// HasCycle reports whether the topology contains any directed cycle,
// including self-loops, regardless of the links' recurrent flags.
func (net *Network) HasCycle() bool {
	for _, l := range net.links {
		if l.In == l.Out {
			return true
		}
	}
	_, err := topo.Sort(net.Graph())
	return err != nil
}

// Order returns the node ids in a topological order. ok is false when the
// network is cyclic.
func (net *Network) Order() (ids []int, ok bool) {
	if net.HasCycle() {
		return nil, false
	}
	sorted, err := topo.Sort(net.Graph())
	if err != nil {
		return nil, false
	}
	ids = make([]int, len(sorted))
	for i, n := range sorted {
		ids[i] = int(n.ID())
	}
	return ids, true
}
