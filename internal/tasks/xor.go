package tasks

import (
	"math"

	"github.com/baldhumanity/neatsim/neat"
	"github.com/baldhumanity/neatsim/neat/nn"
)

// xorPatterns are bias, a, b.
var xorPatterns = [4][3]float64{
	{1, 0, 0},
	{1, 0, 1},
	{1, 1, 0},
	{1, 1, 1},
}

// XOR asks a single output to compute the exclusive or of two inputs.
type XOR struct{}

func (XOR) Name() string { return "xor" }

// SeedGenome returns bias 1, sensors 2 and 3 and output 4, each input
// linked to the output with weight 0.
func (XOR) SeedGenome(rng neat.RandomSource, params *neat.Parameters) (*neat.Genome, error) {
	return fullyConnected(rng, params, 3, 1)
}

// Evaluate feeds the four patterns. The error is the summed distance to the
// expected outputs, 4 when the network cannot be activated, and the fitness
// is (4 - error)^2.
func (XOR) Evaluate(net *nn.Network, _ neat.RandomSource) Result {
	if net == nil || net.NumOutputs() == 0 || net.NumInputs() != len(xorPatterns[0]) {
		return Result{Error: 4}
	}

	var out [4]float64
	activated := true
	for i := range xorPatterns {
		if err := net.SetInput(xorPatterns[i][:]); err != nil {
			activated = false
			break
		}
		if !net.Activate() {
			activated = false
		}
		// Let recurrent paths settle.
		for relax := net.MaxDepth() + 1; relax > 0; relax-- {
			net.Activate()
		}
		out[i] = net.Output(0).Activation
		net.Reset()
	}

	if !activated {
		return Result{Error: 4}
	}
	errorSum := math.Abs(out[0]) + math.Abs(1-out[1]) + math.Abs(1-out[2]) + math.Abs(out[3])
	return Result{
		Fitness: (4 - errorSum) * (4 - errorSum),
		Error:   errorSum,
		Solved:  out[0] < 0.5 && out[1] >= 0.5 && out[2] >= 0.5 && out[3] < 0.5,
	}
}
