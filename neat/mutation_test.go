package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registryFor(g *Genome) *InnovationRegistry {
	reg := NewInnovationRegistry(g.LastInnovation())
	reg.SetCurrentNodeID(g.MaxNodeID())
	return reg
}

func smallGenome(t *testing.T, rng RandomSource, params *Parameters) *Genome {
	t.Helper()
	return buildGenome(t, rng, params, []NodeGene{
		NewNodeGene(1, SensorNode),
		NewNodeGene(2, SensorNode),
		NewNodeGene(3, OutputNode),
	}, []geneSpec{
		{1, 3, 0.5, 1, false},
		{2, 3, 1.0, 2, false},
	})
}

func TestAddNodeMutation(t *testing.T) {
	rng := &stubRandom{ints: []int{0}}
	g := smallGenome(t, rng, DefaultParameters())
	reg := registryFor(g)

	require.NoError(t, g.AddNodeMutation(reg))

	assert.Equal(t, 4, g.NumNodes())
	assert.Equal(t, 4, g.NumGenes())
	assert.Equal(t, 3, g.NumEnabledGenes(), "exactly one gene is disabled")

	split, _ := g.GeneByInnovation(1)
	assert.False(t, split.Enabled)

	node, ok := g.NodeByID(4)
	require.True(t, ok)
	assert.Equal(t, HiddenNode, node.Kind)

	toNew, ok := g.GeneByInnovation(3)
	require.True(t, ok)
	assert.Equal(t, 1, toNew.In.ID)
	assert.Equal(t, 4, toNew.Out.ID)
	assert.Equal(t, 1.0, toNew.Weight)

	fromNew, ok := g.GeneByInnovation(4)
	require.True(t, ok)
	assert.Equal(t, 4, fromNew.In.ID)
	assert.Equal(t, 3, fromNew.Out.ID)
	assert.Equal(t, 0.5, fromNew.Weight)
}

func TestAddNodeMutation_SameSplitSameInnovations(t *testing.T) {
	rng := &stubRandom{ints: []int{0}}
	g1 := smallGenome(t, rng, DefaultParameters())
	g2 := g1.Copy()
	reg := registryFor(g1)

	require.NoError(t, g1.AddNodeMutation(reg))
	require.NoError(t, g2.AddNodeMutation(reg))

	assert.Equal(t, g1.Genes(), g2.Genes())
	assert.Equal(t, g1.Nodes(), g2.Nodes())
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, 4, reg.CurrentID())
}

func TestAddNodeMutation_NoEnabledGene(t *testing.T) {
	rng := &stubRandom{}
	g := buildGenome(t, rng, DefaultParameters(), []NodeGene{
		NewNodeGene(1, SensorNode),
		NewNodeGene(2, OutputNode),
	}, []geneSpec{{1, 2, 1.0, 1, true}})

	require.NoError(t, g.AddNodeMutation(registryFor(g)))
	assert.Equal(t, 2, g.NumNodes())
	assert.Equal(t, 1, g.NumGenes())

	assert.ErrorIs(t, g.AddNodeMutation(nil), ErrNilRegistry)
}

func connectionGenome(t *testing.T, rng RandomSource, params *Parameters) *Genome {
	t.Helper()
	return buildGenome(t, rng, params, []NodeGene{
		NewNodeGene(1, SensorNode),
		NewNodeGene(2, SensorNode),
		NewNodeGene(3, SensorNode),
		NewNodeGene(4, OutputNode),
		NewNodeGene(5, HiddenNode),
	}, []geneSpec{
		{1, 4, 1.0, 1, false},
		{2, 4, 1.0, 2, false},
		{3, 4, 1.0, 3, false},
		{2, 5, 1.0, 4, false},
		{5, 4, 1.0, 5, false},
	})
}

func TestAddConnectionMutation(t *testing.T) {
	// No recurrency roll, then node 1 -> node 5.
	rng := &stubRandom{floats: []float64{0.9}, ints: []int{0, 1}}
	g := connectionGenome(t, rng, DefaultParameters())
	reg := registryFor(g)

	require.NoError(t, g.AddConnectionMutation(reg))

	require.Equal(t, 6, g.NumGenes())
	gene, ok := g.GeneByInnovation(6)
	require.True(t, ok)
	assert.Equal(t, 1, gene.In.ID)
	assert.Equal(t, 5, gene.Out.ID)
	assert.True(t, gene.Enabled)
	assert.False(t, gene.Recurrent)
	assert.InDelta(t, 0.8, gene.Weight, 1e-12)
}

func TestAddConnectionMutation_Recurrent(t *testing.T) {
	params := DefaultParameters()
	params.RecurrencyProbability = 1
	// Recurrency roll succeeds, no self-loop, output 4 -> hidden 5.
	rng := &stubRandom{floats: []float64{0}, ints: []int{3, 1}}
	g := connectionGenome(t, rng, params)

	require.NoError(t, g.AddConnectionMutation(registryFor(g)))

	gene, ok := g.GeneByInnovation(6)
	require.True(t, ok)
	assert.Equal(t, 4, gene.In.ID)
	assert.Equal(t, 5, gene.Out.ID)
	assert.True(t, gene.Recurrent)
}

func TestAddConnectionMutation_NeverTargetsInputs(t *testing.T) {
	rng := NewRandomSource(3)
	params := DefaultParameters()
	params.RecurrencyProbability = 0.5
	g := connectionGenome(t, rng, params)

	for i := 0; i < 50; i++ {
		require.NoError(t, g.AddConnectionMutation(registryFor(g)))
	}
	for _, gene := range g.Genes() {
		assert.False(t, gene.Out.IsInput(), "gene %s targets an input", gene)
	}
}

func TestAddConnectionMutation_InputsAfterOutput(t *testing.T) {
	params := DefaultParameters()
	params.RecurrencyProbability = 0.5
	for seed := int64(0); seed < 100; seed++ {
		g := buildGenome(t, NewRandomSource(seed), params, []NodeGene{
			NewNodeGene(1, OutputNode),
			NewNodeGene(2, SensorNode),
			NewNodeGene(3, SensorNode),
		}, nil)
		require.NoError(t, g.AddConnectionMutation(registryFor(g)))
		for _, gene := range g.Genes() {
			assert.Equal(t, 1, gene.Out.ID, "seed %d: gene %s targets an input", seed, gene)
		}
	}
}

func TestAddConnectionMutation_OnlyInputs(t *testing.T) {
	g := buildGenome(t, &stubRandom{}, DefaultParameters(), []NodeGene{
		NewNodeGene(1, SensorNode),
		NewNodeGene(2, BiasNode),
	}, nil)
	require.NoError(t, g.AddConnectionMutation(NewInnovationRegistry(0)))
	assert.Zero(t, g.NumGenes())
}

func TestToggleEnabledMutation(t *testing.T) {
	rng := &stubRandom{ints: []int{0}}
	g := smallGenome(t, rng, DefaultParameters())

	g.ToggleEnabledMutation()
	gene, _ := g.GeneByInnovation(1)
	assert.False(t, gene.Enabled, "another enabled gene still feeds node 3")

	// Gene 2 is now the only enabled input of node 3.
	rng.ints = []int{1}
	g.ToggleEnabledMutation()
	gene, _ = g.GeneByInnovation(2)
	assert.True(t, gene.Enabled)

	rng.ints = []int{0}
	g.ToggleEnabledMutation()
	gene, _ = g.GeneByInnovation(1)
	assert.True(t, gene.Enabled, "a disabled gene can always be enabled")
}

func TestToggleEnabledMutation_KeepsAnInputEnabled(t *testing.T) {
	g := connectionGenome(t, NewRandomSource(11), DefaultParameters())

	for i := 0; i < 500; i++ {
		g.ToggleEnabledMutation()
		enabledInto := map[int]int{}
		for _, gene := range g.Genes() {
			if gene.Enabled {
				enabledInto[gene.Out.ID]++
			}
		}
		require.Positive(t, enabledInto[4], "iteration %d", i)
		require.Positive(t, enabledInto[5], "iteration %d", i)
	}
}

func TestReenableMutation(t *testing.T) {
	gen1, _ := paperGenomes(t, &stubRandom{}, DefaultParameters())
	gen1.ReenableMutation()
	assert.Equal(t, gen1.NumGenes(), gen1.NumEnabledGenes())

	gen1.ReenableMutation()
	assert.Equal(t, gen1.NumGenes(), gen1.NumEnabledGenes())
}

func TestMutateWeights_Capped(t *testing.T) {
	params := DefaultParameters()
	gen1, _ := paperGenomes(t, NewRandomSource(5), params)

	for i := 0; i < 20; i++ {
		gen1.MutateWeights(100)
	}
	for _, gene := range gen1.Genes() {
		assert.LessOrEqual(t, gene.Weight, params.MaxWeight)
		assert.GreaterOrEqual(t, gene.Weight, -params.MaxWeight)
	}
}

func TestMutateWeights_Severe(t *testing.T) {
	// Severe pass; every gene gets delta 0.5 added (choice 0.9 > 0.3).
	rng := &stubRandom{floats: []float64{0.9, 0.75, 0.9, 0.75, 0.9}}
	g := smallGenome(t, rng, DefaultParameters())

	g.MutateWeights(1.0)

	genes := g.Genes()
	assert.InDelta(t, 1.0, genes[0].Weight, 1e-12)
	assert.InDelta(t, 1.5, genes[1].Weight, 1e-12)
}
