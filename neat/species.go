package neat

import (
	"fmt"
	"math"
	"slices"
)

// fitnessEpsilon is the floor applied to fitness before sharing so that no
// genome ends up with zero or negative fitness.
const fitnessEpsilon = 0.00001

// Species represents a group of genetically similar genomes. Members are
// ordered by decreasing fitness after AdjustFitness.
type Species struct {
	ID                 int     // Unique identifier within a Simulation.
	Age                int     // Epochs survived.
	LastImprovementAge int     // Age at which MaxFitnessEver last grew.
	MaxFitnessEver     float64 // Best original fitness of any member so far.
	Offspring          int     // Children to produce in the next reproduction.
	ChampionOffspring  int     // Of those, children derived from the champion.
	ShouldBePenalized  bool    // Set once the species is singled out for stagnating.

	Genomes []*Genome

	params *Parameters
	rng    RandomSource
}

// NewSpecies creates an empty species.
func NewSpecies(id int, rng RandomSource, params *Parameters) *Species {
	return &Species{
		ID:             id,
		MaxFitnessEver: -1.0,
		params:         params,
		rng:            rng,
	}
}

// String returns a short description of the species.
func (s *Species) String() string {
	return fmt.Sprintf("Species(ID: %d, Age: %d, Members: %d, MaxFitness: %.4f, Offspring: %d)",
		s.ID, s.Age, len(s.Genomes), s.MaxFitnessEver, s.Offspring)
}

// AddGenome appends a member. The caller sets the genome's Species field.
func (s *Species) AddGenome(g *Genome) {
	s.Genomes = append(s.Genomes, g)
}

// RemoveGenome removes a member by identity. Removing a non-member is a no-op.
func (s *Species) RemoveGenome(g *Genome) {
	if i := slices.Index(s.Genomes, g); i >= 0 {
		s.Genomes = slices.Delete(s.Genomes, i, i+1)
	}
}

// AgeWithoutImprovement returns the epochs since MaxFitnessEver last grew.
func (s *Species) AgeWithoutImprovement() int {
	return s.Age - s.LastImprovementAge
}

// AverageFitness returns the mean member fitness, 0 for an empty species.
func (s *Species) AverageFitness() float64 {
	return Mean(s.fitnesses())
}

func (s *Species) fitnesses() []float64 {
	out := make([]float64, len(s.Genomes))
	for i, g := range s.Genomes {
		out[i] = g.Fitness
	}
	return out
}

// SampleGenome returns the first member, the one new genomes are compared
// against. It returns nil for an empty species.
func (s *Species) SampleGenome() *Genome {
	if len(s.Genomes) == 0 {
		return nil
	}
	return s.Genomes[0]
}

// Champion returns the fittest member: the first whose fitness is strictly
// greater than every earlier one, starting from -1. If no member beats -1
// the first member is returned.
func (s *Species) Champion() *Genome {
	maxFitness := -1.0
	var champion *Genome
	for _, g := range s.Genomes {
		if g.Fitness > maxFitness {
			maxFitness = g.Fitness
			champion = g
		}
	}
	if champion == nil {
		return s.SampleGenome()
	}
	return champion
}

// OrderGenomes sorts members by decreasing fitness. The sort is stable.
func (s *Species) OrderGenomes() {
	slices.SortStableFunc(s.Genomes, func(a, b *Genome) int {
		switch {
		case a.Fitness > b.Fitness:
			return -1
		case a.Fitness < b.Fitness:
			return 1
		}
		return 0
	})
}

// AdjustFitness applies the stagnation penalty and fitness sharing, orders
// the members, tracks improvement and marks every member past the survival
// threshold for elimination.
func (s *Species) AdjustFitness() {
	if len(s.Genomes) == 0 {
		return
	}
	ageDebt := (s.Age - s.LastImprovementAge + 1) - s.params.MaxSpeciesGenerationsWithoutImprovement
	if ageDebt == 0 {
		ageDebt = 1
	}

	count := float64(len(s.Genomes))
	for _, g := range s.Genomes {
		g.OriginalFitness = g.Fitness
		if ageDebt >= 1 || s.ShouldBePenalized {
			g.Fitness *= s.params.SpeciesStagnationPenalty
		}
		if g.Fitness < fitnessEpsilon {
			g.Fitness = fitnessEpsilon
		}
		g.Fitness /= count
	}

	s.OrderGenomes()

	if best := s.Genomes[0].OriginalFitness; best > s.MaxFitnessEver {
		s.MaxFitnessEver = best
		s.LastImprovementAge = s.Age
	}

	parents := max(1, int(math.Ceil(count*s.params.SurvivalThreshold)))
	for i := parents; i < len(s.Genomes); i++ {
		s.Genomes[i].ShouldBeEliminated = true
	}
}
