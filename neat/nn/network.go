package nn

import (
	"errors"
	"fmt"
)

const (
	// MaxActivationSweeps bounds the relaxation loop of Activate.
	MaxActivationSweeps = 20
	// MaxDepthCap bounds the depth reported by MaxDepth.
	MaxDepthCap = 10
)

// Errors returned while building or feeding a Network.
var (
	ErrInputMismatch = errors.New("input vector length mismatch") // SetInput got the wrong count.
	ErrUnknownNode   = errors.New("unknown node")                 // A link endpoint is missing.
	ErrDuplicateNode = errors.New("duplicate node id")
	ErrNilNodes      = errors.New("nil node collection")
)

// Network is the executable phenotype of a genome. It owns its nodes and
// links; nothing in it is shared with the genome it was built from, so
// different networks can be activated concurrently.
type Network struct {
	nodes   []Node
	index   map[int]int // node id -> position in nodes
	inputs  []int
	outputs []int
	links   []Link

	activation Activation
}

// NewNetwork creates an empty network using the given activation function.
func NewNetwork(activation Activation) *Network {
	return &Network{
		index:      make(map[int]int),
		activation: activation,
	}
}

// Activation returns the network's activation selection.
func (net *Network) Activation() Activation { return net.activation }

// SetActivation replaces the network's activation selection.
func (net *Network) SetActivation(a Activation) { net.activation = a }

// AddNode appends a node. Sensor and bias nodes become inputs, output
// nodes become outputs, in insertion order.
func (net *Network) AddNode(n Node) error {
	if _, exists := net.index[n.ID]; exists {
		return fmt.Errorf("%w: %d", ErrDuplicateNode, n.ID)
	}
	n.incoming = nil
	idx := len(net.nodes)
	net.nodes = append(net.nodes, n)
	net.index[n.ID] = idx

	switch {
	case n.Kind.IsInput():
		net.inputs = append(net.inputs, idx)
	case n.Kind == Output:
		net.outputs = append(net.outputs, idx)
	}
	return nil
}

// AddNodes adds every node in order.
func (net *Network) AddNodes(nodes []Node) error {
	if nodes == nil {
		return ErrNilNodes
	}
	for _, n := range nodes {
		if err := net.AddNode(n); err != nil {
			return err
		}
	}
	return nil
}

// AddLink connects two existing nodes. Call it after all nodes were added.
func (net *Network) AddLink(l Link) error {
	from, ok := net.index[l.In]
	if !ok {
		return fmt.Errorf("%w: link source %d", ErrUnknownNode, l.In)
	}
	to, ok := net.index[l.Out]
	if !ok {
		return fmt.Errorf("%w: link target %d", ErrUnknownNode, l.Out)
	}
	l.from, l.to = from, to
	net.links = append(net.links, l)
	net.nodes[to].incoming = append(net.nodes[to].incoming, len(net.links)-1)
	return nil
}

// Nodes returns the network's nodes in insertion order. The slice is owned
// by the network.
func (net *Network) Nodes() []Node { return net.nodes }

// Links returns the network's links in insertion order.
func (net *Network) Links() []Link { return net.links }

// NumInputs is the number of sensor and bias nodes.
func (net *Network) NumInputs() int { return len(net.inputs) }

// NumOutputs is the number of output nodes.
func (net *Network) NumOutputs() int { return len(net.outputs) }

// Node returns a pointer to the node with the given id, or nil.
func (net *Network) Node(id int) *Node {
	idx, ok := net.index[id]
	if !ok {
		return nil
	}
	return &net.nodes[idx]
}

// Output returns the i-th output node.
func (net *Network) Output(i int) *Node { return &net.nodes[net.outputs[i]] }

// Input returns the i-th input node.
func (net *Network) Input(i int) *Node { return &net.nodes[net.inputs[i]] }

// OutputValues returns the current activation of every output node.
func (net *Network) OutputValues() []float64 {
	out := make([]float64, len(net.outputs))
	for i, idx := range net.outputs {
		out[i] = net.nodes[idx].Activation
	}
	return out
}

// SetInput loads one value per input node, in input order.
func (net *Network) SetInput(values []float64) error {
	if len(values) != len(net.inputs) {
		return fmt.Errorf("%w: expected %d, got %d", ErrInputMismatch, len(net.inputs), len(values))
	}
	for i, idx := range net.inputs {
		net.nodes[idx].Activation = values[i]
		net.nodes[idx].ActivationCount++
	}
	return nil
}

// Activate propagates the current input through the network. Sweeps are
// repeated until every output has fired at least once. It returns false if
// that takes more than MaxActivationSweeps sweeps, which means some output
// is not reachable from the inputs.
func (net *Network) Activate() bool {
	onetime := false
	for sweeps := 0; net.outputNotActivated() || !onetime; {
		if sweeps++; sweeps > MaxActivationSweeps {
			return false
		}
		net.ComputeNodesActivationSum()
		net.ComputeNodesActivationFunctionValue()
		onetime = true
	}
	return true
}

// ComputeNodesActivationSum recomputes the weighted input sum of every
// non-input node. A node becomes active when at least one of its sources is
// an input or is itself active.
func (net *Network) ComputeNodesActivationSum() {
	for i := range net.nodes {
		node := &net.nodes[i]
		if node.Kind.IsInput() {
			continue
		}
		node.ActivationSum = 0
		node.Active = false
		for _, li := range node.incoming {
			lnk := &net.links[li]
			src := &net.nodes[lnk.from]
			if src.Kind.IsInput() || src.Active {
				node.Active = true
			}
			node.ActivationSum += lnk.Weight * src.ActivationOut()
		}
	}
}

// ComputeNodesActivationFunctionValue applies the activation function to
// every active non-input node.
func (net *Network) ComputeNodesActivationFunctionValue() {
	for i := range net.nodes {
		node := &net.nodes[i]
		if node.Kind.IsInput() || !node.Active {
			continue
		}
		node.LastActivation2 = node.LastActivation
		node.LastActivation = node.Activation
		node.Activation = net.activation.Apply(node.ActivationSum)
		node.ActivationCount++
	}
}

func (net *Network) outputNotActivated() bool {
	for _, idx := range net.outputs {
		if net.nodes[idx].ActivationCount == 0 {
			return true
		}
	}
	return false
}

// Reset clears the activation state of every node so the next input starts
// from scratch. The active flags go too; a stale one would let a node fire
// on a zero sum in the first sweep.
func (net *Network) Reset() {
	for i := range net.nodes {
		net.nodes[i].clear()
	}
}

// MaxDepth returns the longest input-to-output path length, capped at
// MaxDepthCap. Callers use it to decide how many extra sweeps to run.
func (net *Network) MaxDepth() int {
	maxDepth := 0
	for _, idx := range net.outputs {
		if d := net.depth(idx, 0); d > maxDepth {
			maxDepth = d
		}
	}
	return maxDepth
}

func (net *Network) depth(idx, depth int) int {
	if depth > MaxDepthCap {
		return MaxDepthCap
	}
	node := &net.nodes[idx]
	if node.Kind.IsInput() {
		return depth
	}
	maxDepth := depth
	for _, li := range node.incoming {
		if d := net.depth(net.links[li].from, depth+1); d > maxDepth {
			maxDepth = d
		}
	}
	return maxDepth
}

// IsRecurrentConnection reports whether a new link in->out would close a
// cycle, by searching backwards from in along non-recurrent links for out.
// The search gives up, reporting false, once more than thresh nodes have
// been visited; count is the number of visits already spent.
func (net *Network) IsRecurrentConnection(in, out, count, thresh int) bool {
	from, ok := net.index[in]
	if !ok {
		return false
	}
	to, ok := net.index[out]
	if !ok {
		return false
	}
	return net.isRecurrent(from, to, &count, thresh)
}

func (net *Network) isRecurrent(from, to int, count *int, thresh int) bool {
	*count++
	if *count > thresh {
		return false
	}
	if from == to {
		return true
	}
	for _, li := range net.nodes[from].incoming {
		lnk := &net.links[li]
		if lnk.Recurrent {
			continue
		}
		if net.isRecurrent(lnk.from, to, count, thresh) {
			return true
		}
	}
	return false
}
