package neat

import (
	"fmt"

	"github.com/baldhumanity/neatsim/neat/nn"
)

// NodeKind classifies a node gene. It is the phenotype's node kind.
type NodeKind = nn.NodeKind

// Node kinds of the genotype.
const (
	HiddenNode = nn.Hidden // Added by AddNodeMutation.
	SensorNode = nn.Sensor // Receives one element of the input vector.
	OutputNode = nn.Output // Read by the task after activation.
	BiasNode   = nn.Bias   // An input fed a constant by the task.
)

// --------------------------- NodeGene ---------------------------

// NodeGene is a vertex of the genotype.
type NodeGene struct {
	ID   int
	Kind NodeKind
}

// NewNodeGene creates a node gene.
func NewNodeGene(id int, kind NodeKind) NodeGene {
	return NodeGene{ID: id, Kind: kind}
}

// String returns a string representation of the NodeGene.
func (ng NodeGene) String() string {
	return fmt.Sprintf("NodeGene(ID: %d, Kind: %s)", ng.ID, ng.Kind)
}

// IsInput reports whether the node is a sensor or bias.
func (ng NodeGene) IsInput() bool { return ng.Kind.IsInput() }

// --------------------------- ConnectionGene ---------------------------

// ConnectionGene is an edge of the genotype. Endpoints carry their kind so
// that a genome receiving the gene can create missing nodes.
type ConnectionGene struct {
	In         NodeGene
	Out        NodeGene
	Weight     float64
	Enabled    bool
	Innovation int
	Recurrent  bool
}

// NewConnectionGene creates an enabled connection gene.
func NewConnectionGene(in, out NodeGene, weight float64, innovation int, recurrent bool) ConnectionGene {
	return ConnectionGene{
		In:         in,
		Out:        out,
		Weight:     weight,
		Enabled:    true,
		Innovation: innovation,
		Recurrent:  recurrent,
	}
}

// String returns a string representation of the ConnectionGene.
func (cg ConnectionGene) String() string {
	state := "enabled"
	if !cg.Enabled {
		state = "disabled"
	}
	rec := ""
	if cg.Recurrent {
		rec = ", recurrent"
	}
	return fmt.Sprintf("ConnectionGene(%d: %d -> %d, Weight: %.3f, %s%s)",
		cg.Innovation, cg.In.ID, cg.Out.ID, cg.Weight, state, rec)
}

// conflictsWith reports whether adding cg next to other would create a
// parallel edge: same endpoints and recurrence, or the reverse of a
// non-recurrent edge.
func (cg ConnectionGene) conflictsWith(other ConnectionGene) bool {
	if cg.In.ID == other.In.ID && cg.Out.ID == other.Out.ID && cg.Recurrent == other.Recurrent {
		return true
	}
	return cg.In.ID == other.Out.ID && cg.Out.ID == other.In.ID && !cg.Recurrent && !other.Recurrent
}
