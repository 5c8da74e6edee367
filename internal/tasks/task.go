// Package tasks holds the benchmark problems networks are evolved on and a
// concurrent evaluator that scores a whole generation.
package tasks

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/baldhumanity/neatsim/neat"
	"github.com/baldhumanity/neatsim/neat/nn"
)

var ErrUnknownTask = errors.New("unknown task")

// Task is a problem a network can be scored on.
type Task interface {
	Name() string
	// SeedGenome returns the minimal genome a population starts from.
	SeedGenome(rng neat.RandomSource, params *neat.Parameters) (*neat.Genome, error)
	// Evaluate runs the network on the task. The network belongs to the
	// caller for the duration of the call.
	Evaluate(net *nn.Network, rng neat.RandomSource) Result
}

// Result is the outcome of one evaluation.
type Result struct {
	Fitness float64
	Error   float64
	Solved  bool
}

var registry = map[string]func() Task{
	"xor":  func() Task { return XOR{} },
	"pole": func() Task { return NewPoleBalance() },
}

// ByName returns a fresh task by its name.
func ByName(name string) (Task, error) {
	newTask, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownTask, name, strings.Join(Names(), ", "))
	}
	return newTask(), nil
}

// Names lists the known tasks in order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// fullyConnected builds a genome with a bias node 1, sensors up to
// inputs, then the outputs, every input linked to every output with
// weight 0.
func fullyConnected(rng neat.RandomSource, params *neat.Parameters, inputs, outputs int) (*neat.Genome, error) {
	g, err := neat.NewGenome(rng, params)
	if err != nil {
		return nil, err
	}
	if err := g.AddNode(neat.NewNodeGene(1, neat.BiasNode)); err != nil {
		return nil, err
	}
	for id := 2; id <= inputs; id++ {
		if err := g.AddNode(neat.NewNodeGene(id, neat.SensorNode)); err != nil {
			return nil, err
		}
	}
	for id := inputs + 1; id <= inputs+outputs; id++ {
		if err := g.AddNode(neat.NewNodeGene(id, neat.OutputNode)); err != nil {
			return nil, err
		}
	}
	for out := inputs + 1; out <= inputs+outputs; out++ {
		for in := 1; in <= inputs; in++ {
			if err := g.AddConnection(in, out, 0); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}
