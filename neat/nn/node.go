package nn

import "fmt"

// NodeKind classifies a vertex of the phenotype graph.
type NodeKind int

// Node kinds.
const (
	Hidden NodeKind = iota
	Sensor
	Output
	Bias // Input that holds a constant.
)

// String returns the lower-case kind name.
func (k NodeKind) String() string {
	switch k {
	case Hidden:
		return "hidden"
	case Sensor:
		return "sensor"
	case Output:
		return "output"
	case Bias:
		return "bias"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// IsInput reports whether nodes of this kind receive external input.
func (k NodeKind) IsInput() bool {
	return k == Sensor || k == Bias
}

// Node is a vertex of a Network together with its activation state.
type Node struct {
	ID   int
	Kind NodeKind

	Activation      float64
	ActivationCount int
	ActivationSum   float64
	Active          bool
	LastActivation  float64
	LastActivation2 float64

	incoming []int // indices into Network.links
}

// NewNode returns a node with the initial activation of 1.0.
func NewNode(kind NodeKind, id int) Node {
	return Node{ID: id, Kind: kind, Activation: 1.0}
}

// ActivationOut is the value the node propagates along its outgoing links.
// A node that was never activated contributes nothing.
func (n *Node) ActivationOut() float64 {
	if n.ActivationCount > 0 {
		return n.Activation
	}
	return 0
}

func (n *Node) clear() {
	n.ActivationCount = 0
	n.Activation = 0
	n.ActivationSum = 0
	n.Active = false
	n.LastActivation = 0
	n.LastActivation2 = 0
}

// Link is a directed weighted edge between two nodes, identified by node ids.
type Link struct {
	In        int
	Out       int
	Weight    float64
	Recurrent bool

	from, to int // node indices, resolved by AddLink
}

// NewLink returns a link from node in to node out.
func NewLink(in, out int, weight float64, recurrent bool) Link {
	return Link{In: in, Out: out, Weight: weight, Recurrent: recurrent}
}
