package neat

import (
	"fmt"
	"math"
)

// minParentDistance is the distance below which two parents count as the
// same genome, so their child is always mutated.
const minParentDistance = 0.00001

// Reproduce appends exactly s.Offspring children to next and returns the
// extended slice. population is the full species list, used for the rare
// interspecies crossover.
//
// Champion offspring come first: the last of them is an exact clone, the
// others are mutated clones. A species with more than five offspring also
// gets one exact clone of its champion. The remaining children come from
// mutation alone or from crossover.
func (s *Species) Reproduce(next []*Genome, reg *InnovationRegistry, population []*Species) ([]*Genome, error) {
	if reg == nil {
		return next, ErrNilRegistry
	}
	if s.Offspring <= 0 || len(s.Genomes) == 0 {
		return next, nil
	}

	championCloned := false
	for i := 0; i < s.Offspring; i++ {
		var child *Genome
		var err error
		switch {
		case s.ChampionOffspring > 0:
			child = s.Champion().Copy()
			if s.ChampionOffspring > 1 {
				resetForChild(child)
				if s.rng.Float64() < s.params.MutateConnectionWeightsProbability {
					child.MutateWeights(s.params.WeightMutationPower)
				} else {
					err = child.AddConnectionMutation(reg)
				}
			} else {
				child.IsPopulationChampion = true
			}
			s.ChampionOffspring--

		case !championCloned && s.Offspring > 5:
			child = s.Champion().Copy()
			child.IsPopulationChampion = true
			championCloned = true

		case s.rng.Float64() < s.params.MutateWithoutCrossover:
			child = s.Genomes[s.rng.Intn(len(s.Genomes))].Copy()
			resetForChild(child)
			err = s.mutateChild(child, reg)

		default:
			child, err = s.mate(reg, population)
		}
		if err != nil {
			return next, fmt.Errorf("species %d failed to produce offspring: %w", s.ID, err)
		}
		child.ShouldBeEliminated = false
		next = append(next, child)
	}
	return next, nil
}

// resetForChild clears the inherited evaluation state of a copied genome.
func resetForChild(g *Genome) {
	g.IsPopulationChampion = false
	g.Fitness = 0
	g.OriginalFitness = 0
	g.Error = 0
}

// mate produces one child by crossover. The second parent comes from this
// species unless the interspecies roll succeeds.
func (s *Species) mate(reg *InnovationRegistry, population []*Species) (*Genome, error) {
	parent1 := s.Genomes[s.rng.Intn(len(s.Genomes))]
	var parent2 *Genome
	if s.rng.Float64() > s.params.InterspeciesMateRate {
		parent2 = s.Genomes[s.rng.Intn(len(s.Genomes))]
	} else {
		other := s
		for tries := 0; other == s && tries < 5 && len(population) > 0; tries++ {
			other = population[s.rng.Intn(len(population))]
		}
		if len(other.Genomes) == 0 {
			other = s
		}
		parent2 = other.Genomes[s.rng.Intn(len(other.Genomes))]
	}

	var child *Genome
	var err error
	if s.rng.Float64() > s.params.AverageCrossoverProbability {
		child, err = parent1.Crossover(parent2, s.rng)
	} else {
		child, err = parent1.CrossoverAverage(parent2, s.rng)
	}
	if err != nil {
		return nil, err
	}

	if s.rng.Float64() > s.params.MateWithoutMutatingProbability || parent1 == parent2 {
		return child, s.mutateChild(child, reg)
	}
	dist, err := parent1.CompatibilityDistance(parent2)
	if err != nil {
		return nil, err
	}
	if dist < minParentDistance {
		return child, s.mutateChild(child, reg)
	}
	return child, nil
}

// mutateChild applies one structural mutation, or else the weight, toggle
// and re-enable mutations each with its own probability.
func (s *Species) mutateChild(child *Genome, reg *InnovationRegistry) error {
	p := s.params
	if s.rng.Float64() < p.AddNodeProbability {
		return child.AddNodeMutation(reg)
	}
	if s.rng.Float64() < p.AddConnectionProbability {
		return child.AddConnectionMutation(reg)
	}
	if s.rng.Float64() < p.MutateConnectionWeightsProbability {
		child.MutateWeights(p.WeightMutationPower)
	}
	if s.rng.Float64() < p.MutateToggleEnabledProbability {
		child.ToggleEnabledMutation()
	}
	if s.rng.Float64() < p.MutateReenableProbability {
		child.ReenableMutation()
	}
	return nil
}

// CalculateSpeciesOffspring sets every species' Offspring in proportion to
// its average fitness over totalFitness, rounding to the nearest integer.
// With no positive total every species gets an equal share. A surplus goes
// to the first (best) species; a deficit is taken from the last ones,
// never driving a quota below zero.
func (sim *Simulation) CalculateSpeciesOffspring(totalFitness float64) {
	if len(sim.Species) == 0 {
		return
	}
	left := sim.populationSize
	for _, s := range sim.Species {
		if totalFitness > 0 {
			s.Offspring = int(math.Round(s.AverageFitness() / totalFitness * float64(sim.populationSize)))
		} else {
			s.Offspring = sim.populationSize / len(sim.Species)
		}
		left -= s.Offspring
	}

	if left > 0 {
		sim.Species[0].Offspring += left
		return
	}
	for i := len(sim.Species) - 1; i > 0 && left < 0; i-- {
		s := sim.Species[i]
		s.Offspring += left
		if s.Offspring >= 0 {
			return
		}
		left = s.Offspring
		s.Offspring = 0
	}
	if left < 0 {
		sim.Species[0].Offspring = max(0, sim.Species[0].Offspring+left)
	}
}
