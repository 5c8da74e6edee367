package neat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// stubRandom replays scripted values, cycling when a script runs out. An
// empty script yields 0. Intn reduces its value modulo n.
type stubRandom struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (s *stubRandom) Float64() float64 {
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[s.fi%len(s.floats)]
	s.fi++
	return v
}

func (s *stubRandom) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[s.ii%len(s.ints)]
	s.ii++
	return v % n
}

type geneSpec struct {
	in, out    int
	weight     float64
	innovation int
	disabled   bool
}

// buildGenome creates a genome with the given nodes and genes. Weights
// come from each row; endpoints must be in nodes.
func buildGenome(t *testing.T, rng RandomSource, params *Parameters, nodes []NodeGene, genes []geneSpec) *Genome {
	t.Helper()
	g, err := NewGenome(rng, params)
	require.NoError(t, err)
	for _, n := range nodes {
		require.NoError(t, g.AddNode(n))
	}
	for _, gs := range genes {
		in, ok := g.NodeByID(gs.in)
		require.True(t, ok, "unknown node %d", gs.in)
		out, ok := g.NodeByID(gs.out)
		require.True(t, ok, "unknown node %d", gs.out)
		gene := NewConnectionGene(in, out, gs.weight, gs.innovation, false)
		gene.Enabled = !gs.disabled
		require.NoError(t, g.AddConnectionGene(gene))
	}
	return g
}

// paperGenomes returns the two parents of the crossover figure in the
// NEAT paper.
func paperGenomes(t *testing.T, rng RandomSource, params *Parameters) (*Genome, *Genome) {
	t.Helper()
	sensors := []NodeGene{
		NewNodeGene(1, SensorNode),
		NewNodeGene(2, SensorNode),
		NewNodeGene(3, SensorNode),
		NewNodeGene(4, OutputNode),
		NewNodeGene(5, HiddenNode),
	}
	gen1 := buildGenome(t, rng, params, sensors, []geneSpec{
		{1, 4, 0.5, 1, false},
		{2, 4, 1.0, 2, true},
		{3, 4, 1.0, 3, false},
		{2, 5, 1.0, 4, false},
		{5, 4, 1.0, 5, false},
		{1, 5, 1.0, 8, false},
	})
	gen2 := buildGenome(t, rng, params, append(sensors, NewNodeGene(6, HiddenNode)), []geneSpec{
		{1, 4, 1.0, 1, false},
		{2, 4, 1.0, 2, true},
		{3, 4, 1.0, 3, false},
		{2, 5, 1.0, 4, false},
		{5, 4, 1.0, 5, true},
		{5, 6, 1.0, 6, false},
		{6, 4, 1.0, 7, false},
		{3, 5, 1.0, 9, false},
		{1, 6, 1.0, 10, false},
	})
	return gen1, gen2
}

// seedGenome returns two sensors, a bias and one output, fully connected.
func seedGenome(t *testing.T, rng RandomSource, params *Parameters) *Genome {
	t.Helper()
	return buildGenome(t, rng, params, []NodeGene{
		NewNodeGene(1, BiasNode),
		NewNodeGene(2, SensorNode),
		NewNodeGene(3, SensorNode),
		NewNodeGene(4, OutputNode),
	}, []geneSpec{
		{1, 4, 0, 1, false},
		{2, 4, 0, 2, false},
		{3, 4, 0, 3, false},
	})
}

func innovations(g *Genome) []int {
	out := make([]int, 0, g.NumGenes())
	for _, gene := range g.Genes() {
		out = append(out, gene.Innovation)
	}
	return out
}
