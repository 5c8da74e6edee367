package neat

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/baldhumanity/neatsim/neat/nn"
)

// MaxTries bounds the random search of the structural mutations.
const MaxTries = 20

// Genome represents an individual organism in the population: a node list
// sorted by id and a connection gene list sorted by innovation.
type Genome struct {
	Key                  int     // Population-unique serial, assigned by the Simulation.
	Fitness              float64 // Set by the caller; shared by AdjustFitness.
	OriginalFitness      float64 // Fitness before sharing.
	Error                float64 // Optional task error, informational only.
	ShouldBeEliminated   bool
	IsPopulationChampion bool

	// Species is the species the genome currently belongs to. The species
	// does not maintain it; the Simulation does.
	Species *Species

	nodes           []NodeGene
	genes           []ConnectionGene
	localInnovation int

	network *nn.Network
	dirty   bool

	params *Parameters
	rng    RandomSource
}

// NewGenome creates an empty genome. A nil params uses DefaultParameters.
func NewGenome(rng RandomSource, params *Parameters) (*Genome, error) {
	if rng == nil {
		return nil, ErrNilRandomSource
	}
	if params == nil {
		params = DefaultParameters()
	}
	return &Genome{params: params, rng: rng, dirty: true}, nil
}

// NewGenomeFromNetwork rebuilds a genome from a phenotype, for instance one
// loaded from a file. Links become enabled genes numbered by the local
// innovation counter in link order.
func NewGenomeFromNetwork(net *nn.Network, rng RandomSource, params *Parameters) (*Genome, error) {
	if net == nil {
		return nil, fmt.Errorf("network is nil")
	}
	g, err := NewGenome(rng, params)
	if err != nil {
		return nil, err
	}
	for _, n := range net.Nodes() {
		if err := g.AddNode(NewNodeGene(n.ID, n.Kind)); err != nil {
			return nil, err
		}
	}
	for _, l := range net.Links() {
		in, _ := g.NodeByID(l.In)
		out, _ := g.NodeByID(l.Out)
		gene := NewConnectionGene(in, out, l.Weight, g.NextInnovationNumber(), l.Recurrent)
		if err := g.AddConnectionGene(gene); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Params returns the parameters the genome mutates with.
func (g *Genome) Params() *Parameters { return g.params }

// Nodes returns a copy of the node list, sorted by id.
func (g *Genome) Nodes() []NodeGene { return slices.Clone(g.nodes) }

// Genes returns a copy of the connection gene list, sorted by innovation.
func (g *Genome) Genes() []ConnectionGene { return slices.Clone(g.genes) }

// NumNodes returns the number of node genes.
func (g *Genome) NumNodes() int { return len(g.nodes) }

// NumGenes returns the number of connection genes.
func (g *Genome) NumGenes() int { return len(g.genes) }

// NumEnabledGenes returns the number of enabled connection genes.
func (g *Genome) NumEnabledGenes() int {
	n := 0
	for _, gene := range g.genes {
		if gene.Enabled {
			n++
		}
	}
	return n
}

// NodeByID looks up a node gene.
func (g *Genome) NodeByID(id int) (NodeGene, bool) {
	i, ok := g.nodeIndex(id)
	if !ok {
		return NodeGene{}, false
	}
	return g.nodes[i], true
}

// GeneByInnovation looks up a connection gene.
func (g *Genome) GeneByInnovation(innovation int) (ConnectionGene, bool) {
	i, ok := g.geneIndex(innovation)
	if !ok {
		return ConnectionGene{}, false
	}
	return g.genes[i], true
}

func (g *Genome) nodeIndex(id int) (int, bool) {
	return slices.BinarySearchFunc(g.nodes, id, func(n NodeGene, id int) int { return cmp.Compare(n.ID, id) })
}

func (g *Genome) geneIndex(innovation int) (int, bool) {
	return slices.BinarySearchFunc(g.genes, innovation, func(c ConnectionGene, inn int) int { return cmp.Compare(c.Innovation, inn) })
}

// AddNode inserts a node keeping the list sorted by id.
func (g *Genome) AddNode(n NodeGene) error {
	i, found := g.nodeIndex(n.ID)
	if found {
		return fmt.Errorf("%w: %d", ErrDuplicateNode, n.ID)
	}
	g.nodes = slices.Insert(g.nodes, i, n)
	g.dirty = true
	return nil
}

// AddConnectionGene inserts a gene keeping the list sorted by innovation.
// Endpoint nodes the genome does not have yet are added.
func (g *Genome) AddConnectionGene(gene ConnectionGene) error {
	i, found := g.geneIndex(gene.Innovation)
	if found {
		return fmt.Errorf("%w: %d", ErrDuplicateInnovation, gene.Innovation)
	}
	g.genes = slices.Insert(g.genes, i, gene)

	for _, n := range []NodeGene{gene.In, gene.Out} {
		if j, ok := g.nodeIndex(n.ID); !ok {
			g.nodes = slices.Insert(g.nodes, j, n)
		}
	}
	if gene.Innovation > g.localInnovation {
		g.localInnovation = gene.Innovation
	}
	g.dirty = true
	return nil
}

// AddConnection connects two existing nodes with a non-recurrent enabled
// gene numbered by the local innovation counter. It is meant for building
// seed genomes by hand.
func (g *Genome) AddConnection(in, out int, weight float64) error {
	inNode, ok := g.NodeByID(in)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, in)
	}
	outNode, ok := g.NodeByID(out)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, out)
	}
	return g.AddConnectionGene(NewConnectionGene(inNode, outNode, weight, g.NextInnovationNumber(), false))
}

// NextInnovationNumber advances the local innovation counter.
func (g *Genome) NextInnovationNumber() int {
	g.localInnovation++
	return g.localInnovation
}

// InnovationNumber returns the local innovation counter.
func (g *Genome) InnovationNumber() int { return g.localInnovation }

// LastInnovation returns the highest innovation id in the genome, or 0.
func (g *Genome) LastInnovation() int {
	if len(g.genes) == 0 {
		return 0
	}
	return g.genes[len(g.genes)-1].Innovation
}

// MaxNodeID returns the highest node id in the genome, or 0.
func (g *Genome) MaxNodeID() int {
	if len(g.nodes) == 0 {
		return 0
	}
	return g.nodes[len(g.nodes)-1].ID
}

// Copy returns a deep copy sharing the parameters and random source. The
// species back-reference is not copied.
func (g *Genome) Copy() *Genome {
	return &Genome{
		Key:                  g.Key,
		Fitness:              g.Fitness,
		OriginalFitness:      g.OriginalFitness,
		Error:                g.Error,
		ShouldBeEliminated:   g.ShouldBeEliminated,
		IsPopulationChampion: g.IsPopulationChampion,
		nodes:                slices.Clone(g.nodes),
		genes:                slices.Clone(g.genes),
		localInnovation:      g.localInnovation,
		dirty:                true,
		params:               g.params,
		rng:                  g.rng,
	}
}

// GetNetwork returns the phenotype, rebuilding it if the genome changed
// since the last call. Only enabled genes become links.
func (g *Genome) GetNetwork() *nn.Network {
	if !g.dirty && g.network != nil {
		return g.network
	}
	net := nn.NewNetwork(g.params.Activation)
	for _, n := range g.nodes {
		if err := net.AddNode(nn.NewNode(n.Kind, n.ID)); err != nil {
			panic(fmt.Sprintf("genome %d: %v", g.Key, err))
		}
	}
	for _, gene := range g.genes {
		if !gene.Enabled {
			continue
		}
		if err := net.AddLink(nn.NewLink(gene.In.ID, gene.Out.ID, gene.Weight, gene.Recurrent)); err != nil {
			panic(fmt.Sprintf("genome %d: %v", g.Key, err))
		}
	}
	g.network = net
	g.dirty = false
	return net
}

// String returns a one-gene-per-line description of the genome.
func (g *Genome) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Genome(Key: %d, Fitness: %.4f, Nodes: %d, Genes: %d)\n", g.Key, g.Fitness, len(g.nodes), len(g.genes))
	for _, gene := range g.genes {
		sb.WriteString("  ")
		sb.WriteString(gene.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
