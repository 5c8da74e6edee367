package tasks

import (
	"math"

	"github.com/baldhumanity/neatsim/neat"
	"github.com/baldhumanity/neatsim/neat/nn"
)

// Cart and pole constants of the Sutton and Anderson simulator.
const (
	gravity        = 9.8
	massCart       = 1.0
	massPole       = 0.1
	totalMass      = massPole + massCart
	poleHalfLength = 0.5
	poleMassLength = massPole * poleHalfLength
	forceMag       = 10.0
	tau            = 0.02 // seconds between state updates
	fourThirds     = 1.3333333333333

	trackLimit      = 2.4
	twelveDegrees   = 0.2094384
	DefaultMaxSteps = 100000
)

// PoleBalance asks a network to keep a pole upright on a cart by pushing
// the cart left or right. Fitness is the number of steps survived.
type PoleBalance struct {
	MaxSteps int
}

func NewPoleBalance() *PoleBalance {
	return &PoleBalance{MaxSteps: DefaultMaxSteps}
}

func (*PoleBalance) Name() string { return "pole" }

// SeedGenome returns bias 1, sensors 2 to 5 and outputs 6 and 7, fully
// connected with weight 0.
func (*PoleBalance) SeedGenome(rng neat.RandomSource, params *neat.Parameters) (*neat.Genome, error) {
	return fullyConnected(rng, params, 5, 2)
}

// cartState is the simulated system.
type cartState struct {
	x        float64 // cart position, meters
	xDot     float64
	theta    float64 // pole angle, radians
	thetaDot float64
}

func randomCartState(rng neat.RandomSource) cartState {
	return cartState{
		x:        float64(rng.Intn(4800))/1000 - 2.4,
		xDot:     float64(rng.Intn(2000))/1000 - 1,
		theta:    float64(rng.Intn(400))/1000 - 0.2,
		thetaDot: float64(rng.Intn(3000))/1000 - 1.5,
	}
}

// step pushes the cart right when push is true, left otherwise, and
// advances the state by tau seconds with Euler's method.
func (s *cartState) step(push bool) {
	force := -forceMag
	if push {
		force = forceMag
	}
	cosTheta, sinTheta := math.Cos(s.theta), math.Sin(s.theta)

	temp := (force + poleMassLength*s.thetaDot*s.thetaDot*sinTheta) / totalMass
	thetaAcc := (gravity*sinTheta - cosTheta*temp) /
		(poleHalfLength * (fourThirds - massPole*cosTheta*cosTheta/totalMass))
	xAcc := temp - poleMassLength*thetaAcc*cosTheta/totalMass

	s.x += tau * s.xDot
	s.xDot += tau * xAcc
	s.theta += tau * s.thetaDot
	s.thetaDot += tau * thetaAcc
}

func (s *cartState) failed() bool {
	return s.x < -trackLimit || s.x > trackLimit || s.theta < -twelveDegrees || s.theta > twelveDegrees
}

// inputs normalizes the state for the network, bias first.
func (s *cartState) inputs() []float64 {
	return []float64{
		1,
		(s.x + 2.4) / 4.8,
		(s.xDot + 0.75) / 1.5,
		(s.theta + twelveDegrees) / 0.41,
		(s.thetaDot + 1) / 2,
	}
}

// Evaluate balances from a random start state drawn from rng. The network is
// not reset between steps, so recurrent links carry memory. A network that
// cannot be activated scores 1.
func (p *PoleBalance) Evaluate(net *nn.Network, rng neat.RandomSource) Result {
	maxSteps := p.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	if net == nil || net.NumOutputs() < 2 {
		return Result{Fitness: 1, Error: float64(maxSteps - 1)}
	}

	state := randomCartState(rng)
	steps := p.balance(net, &state, maxSteps)
	return Result{
		Fitness: float64(steps),
		Error:   float64(maxSteps - steps),
		Solved:  steps >= maxSteps,
	}
}

func (p *PoleBalance) balance(net *nn.Network, state *cartState, maxSteps int) int {
	steps := 0
	for steps < maxSteps {
		steps++
		if err := net.SetInput(state.inputs()); err != nil {
			return 1
		}
		if !net.Activate() {
			return 1
		}
		state.step(net.Output(0).Activation <= net.Output(1).Activation)
		if state.failed() {
			return steps
		}
	}
	return steps
}
