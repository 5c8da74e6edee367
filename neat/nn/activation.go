package nn

import (
	"fmt"
	"math"
	"strings"
)

// SigmoidSlope is the steepness of the default logistic activation.
const SigmoidSlope = 4.924273

// ActivationKind selects one of the supported activation functions.
type ActivationKind int

// Supported activation kinds.
const (
	ActivationSigmoid ActivationKind = iota
	ActivationThreshold
	ActivationReLU
	ActivationCustom // Uses Activation.Fn.
)

// ActivationFunc maps a node's weighted input sum to its output.
type ActivationFunc func(x float64) float64

// Activation is the activation function selection of a network. Custom
// activations carry their own function and a name used for persistence.
type Activation struct {
	Kind ActivationKind
	Name string
	Fn   ActivationFunc
}

// activationNames maps configuration names to activation kinds.
var activationNames = map[string]ActivationKind{
	"sigmoid":           ActivationSigmoid,
	"steepened_sigmoid": ActivationSigmoid,
	"threshold":         ActivationThreshold,
	"step":              ActivationThreshold,
	"relu":              ActivationReLU,
}

// Sigmoid returns the steepened logistic activation. It is the default.
func Sigmoid() Activation { return Activation{Kind: ActivationSigmoid, Name: "sigmoid"} }

// Threshold returns the binary step activation.
func Threshold() Activation { return Activation{Kind: ActivationThreshold, Name: "threshold"} }

// ReLU returns the rectified linear activation.
func ReLU() Activation { return Activation{Kind: ActivationReLU, Name: "relu"} }

// Custom wraps a caller supplied function. The name is what gets persisted.
func Custom(name string, fn ActivationFunc) Activation {
	return Activation{Kind: ActivationCustom, Name: name, Fn: fn}
}

// ParseActivation resolves a built-in activation by name.
func ParseActivation(name string) (Activation, error) {
	kind, ok := activationNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Activation{}, fmt.Errorf("unknown activation function: %s", name)
	}
	return activationOf(kind), nil
}

func activationOf(kind ActivationKind) Activation {
	switch kind {
	case ActivationThreshold:
		return Threshold()
	case ActivationReLU:
		return ReLU()
	default:
		return Sigmoid()
	}
}

// Apply evaluates the activation at x.
func (a Activation) Apply(x float64) float64 {
	switch a.Kind {
	case ActivationThreshold:
		return StepFunction(x)
	case ActivationReLU:
		return RectifiedLinear(x)
	case ActivationCustom:
		return a.Fn(x)
	default:
		return SteepenedSigmoid(x)
	}
}

// String returns the activation name.
func (a Activation) String() string {
	if a.Name != "" {
		return a.Name
	}
	return activationOf(a.Kind).Name
}

// SteepenedSigmoid is 1/(1+exp(-4.924273x)).
func SteepenedSigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-SigmoidSlope*x))
}

// StepFunction returns 0 for negative input and 1 otherwise.
func StepFunction(x float64) float64 {
	if x < 0 {
		return 0
	}
	return 1
}

// RectifiedLinear returns max(0, x).
func RectifiedLinear(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}
