package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/neatsim/neat/nn"
)

func TestNewGenome_NilRandomSource(t *testing.T) {
	_, err := NewGenome(nil, nil)
	assert.ErrorIs(t, err, ErrNilRandomSource)
}

func TestNewGenome_DefaultParameters(t *testing.T) {
	g, err := NewGenome(NewRandomSource(0), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultParameters().CompatibilityThreshold, g.Params().CompatibilityThreshold)
	assert.Zero(t, g.NumNodes())
	assert.Zero(t, g.LastInnovation())
	assert.Zero(t, g.MaxNodeID())
}

func TestGenomeConstruction(t *testing.T) {
	gen1, _ := paperGenomes(t, NewRandomSource(0), DefaultParameters())

	assert.Equal(t, 5, gen1.NumNodes())
	assert.Equal(t, 6, gen1.NumGenes())
	assert.Equal(t, 5, gen1.NumEnabledGenes())
	for id := 1; id <= 5; id++ {
		n, ok := gen1.NodeByID(id)
		require.True(t, ok)
		assert.Equal(t, id, n.ID)
	}
	_, ok := gen1.NodeByID(0)
	assert.False(t, ok)
	_, ok = gen1.NodeByID(6)
	assert.False(t, ok)

	assert.Equal(t, 8, gen1.LastInnovation())
	assert.Equal(t, 8, gen1.InnovationNumber())
	assert.Equal(t, 5, gen1.MaxNodeID())
}

func TestGenome_KeepsListsSorted(t *testing.T) {
	g, err := NewGenome(NewRandomSource(0), nil)
	require.NoError(t, err)
	for _, id := range []int{4, 1, 3, 2} {
		require.NoError(t, g.AddNode(NewNodeGene(id, SensorNode)))
	}
	in, out := NewNodeGene(1, SensorNode), NewNodeGene(9, OutputNode)
	for _, innov := range []int{7, 2, 5} {
		require.NoError(t, g.AddConnectionGene(NewConnectionGene(in, out, 0, innov, false)))
	}

	ids := make([]int, 0, g.NumNodes())
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 9}, ids, "the missing endpoint is inserted in order")
	assert.Equal(t, []int{2, 5, 7}, innovations(g))
}

func TestGenome_DuplicatesRejected(t *testing.T) {
	gen1, _ := paperGenomes(t, NewRandomSource(0), DefaultParameters())

	assert.ErrorIs(t, gen1.AddNode(NewNodeGene(3, HiddenNode)), ErrDuplicateNode)

	gene, ok := gen1.GeneByInnovation(4)
	require.True(t, ok)
	assert.ErrorIs(t, gen1.AddConnectionGene(gene), ErrDuplicateInnovation)

	assert.ErrorIs(t, gen1.AddConnection(1, 42, 0), ErrUnknownNode)
	assert.ErrorIs(t, gen1.AddConnection(42, 1, 0), ErrUnknownNode)
}

func TestGenome_AddConnectionUsesLocalCounter(t *testing.T) {
	gen1, _ := paperGenomes(t, NewRandomSource(0), DefaultParameters())

	require.NoError(t, gen1.AddConnection(3, 5, 0.25))
	gene, ok := gen1.GeneByInnovation(9)
	require.True(t, ok)
	assert.Equal(t, 3, gene.In.ID)
	assert.Equal(t, 5, gene.Out.ID)
	assert.True(t, gene.Enabled)
	assert.False(t, gene.Recurrent)
}

func TestGenome_Copy(t *testing.T) {
	gen1, _ := paperGenomes(t, NewRandomSource(0), DefaultParameters())
	gen1.Key = 7
	gen1.Fitness = 3
	gen1.Species = NewSpecies(1, NewRandomSource(0), gen1.Params())

	cp := gen1.Copy()
	assert.Equal(t, gen1.Nodes(), cp.Nodes())
	assert.Equal(t, gen1.Genes(), cp.Genes())
	assert.Equal(t, 7, cp.Key)
	assert.Equal(t, 3.0, cp.Fitness)
	assert.Nil(t, cp.Species)

	cp.genes[0].Weight = 42
	require.NoError(t, cp.AddNode(NewNodeGene(6, HiddenNode)))
	g0, _ := gen1.GeneByInnovation(1)
	assert.Equal(t, 0.5, g0.Weight, "the copy must not share genes")
	assert.Equal(t, 5, gen1.NumNodes())
}

func TestGenome_GetNetwork(t *testing.T) {
	gen1, _ := paperGenomes(t, NewRandomSource(0), DefaultParameters())

	net := gen1.GetNetwork()
	assert.Len(t, net.Nodes(), 5)
	assert.Len(t, net.Links(), 5, "disabled genes are not expressed")
	assert.Equal(t, 3, net.NumInputs())
	assert.Equal(t, 1, net.NumOutputs())

	assert.Same(t, net, gen1.GetNetwork(), "the phenotype is cached")

	gen1.MutateWeights(1.0)
	assert.NotSame(t, net, gen1.GetNetwork(), "a mutation invalidates the cache")
}

func TestNewGenomeFromNetwork(t *testing.T) {
	net := nn.NewNetwork(nn.Sigmoid())
	require.NoError(t, net.AddNodes([]nn.Node{
		nn.NewNode(nn.Sensor, 1),
		nn.NewNode(nn.Bias, 2),
		nn.NewNode(nn.Output, 3),
	}))
	require.NoError(t, net.AddLink(nn.NewLink(1, 3, 0.5, false)))
	require.NoError(t, net.AddLink(nn.NewLink(2, 3, -1.5, false)))

	g, err := NewGenomeFromNetwork(net, NewRandomSource(0), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, g.NumNodes())
	assert.Equal(t, []int{1, 2}, innovations(g))

	gene, ok := g.GeneByInnovation(2)
	require.True(t, ok)
	assert.Equal(t, BiasNode, gene.In.Kind)
	assert.Equal(t, -1.5, gene.Weight)

	_, err = NewGenomeFromNetwork(nil, NewRandomSource(0), nil)
	assert.Error(t, err)
}
