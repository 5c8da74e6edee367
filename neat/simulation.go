package neat

import (
	"cmp"
	"fmt"
	"log/slog"
	"math"
	"slices"
)

// FitnessFunc evaluates a generation. It must set Fitness on every genome.
type FitnessFunc func(genomes []*Genome) error

// Simulation holds the state of the NEAT evolutionary process: a fixed-size
// population split into species, and the innovation registry of the
// current epoch.
type Simulation struct {
	Parameters *Parameters
	Species    []*Species // Ordered best first.
	Genomes    []*Genome  // The generation awaiting evaluation.
	EpochID    int
	BestGenome *Genome // Copy of the fittest genome evaluated so far.

	// Logger receives structured progress records. It discards them by default.
	Logger *slog.Logger

	populationSize int
	registry       *InnovationRegistry
	rng            RandomSource
	seed           *Genome

	highestFitness             float64
	generationsSinceLastUpdate int
	epochsWithoutImprovement   int

	nextGenomeKey int
	nextSpeciesID int
}

// NewSimulation spawns populationSize weight-mutated copies of seed and
// splits them into species. A nil params uses DefaultParameters.
func NewSimulation(rng RandomSource, seed *Genome, populationSize int, params *Parameters) (*Simulation, error) {
	if rng == nil {
		return nil, ErrNilRandomSource
	}
	if seed == nil {
		return nil, ErrNilGenome
	}
	if populationSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPopulationSize, populationSize)
	}
	if params == nil {
		params = DefaultParameters()
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	sim := &Simulation{
		Parameters:     params,
		Logger:         slog.New(slog.DiscardHandler),
		populationSize: populationSize,
		registry:       NewInnovationRegistry(seed.LastInnovation()),
		rng:            rng,
		seed:           seed.Copy(),
		nextGenomeKey:  1,
		nextSpeciesID:  1,
	}
	sim.registry.SetCurrentNodeID(seed.MaxNodeID())
	sim.spawn()
	return sim, nil
}

// spawn replaces the population with fresh copies of the seed genome.
func (sim *Simulation) spawn() {
	sim.Genomes = make([]*Genome, 0, sim.populationSize)
	sim.Species = nil
	for i := 0; i < sim.populationSize; i++ {
		g := sim.seed.Copy()
		g.params = sim.Parameters
		g.rng = sim.rng
		g.Fitness, g.OriginalFitness = 0, 0
		g.Key = sim.nextKey()
		g.MutateWeights(1.0)
		sim.Genomes = append(sim.Genomes, g)
	}
	sim.addGenomesToSpecies(sim.Genomes)
	sim.OrderSpecies()
}

func (sim *Simulation) nextKey() int {
	key := sim.nextGenomeKey
	sim.nextGenomeKey++
	return key
}

// PopulationSize returns the fixed population size.
func (sim *Simulation) PopulationSize() int { return sim.populationSize }

// Registry returns the innovation registry.
func (sim *Simulation) Registry() *InnovationRegistry { return sim.registry }

// HighestFitness returns the best original fitness seen at an epoch start.
func (sim *Simulation) HighestFitness() float64 { return sim.highestFitness }

// GenerationsSinceLastUpdate returns the epochs since HighestFitness grew,
// reset whenever population-level stagnation is handled.
func (sim *Simulation) GenerationsSinceLastUpdate() int { return sim.generationsSinceLastUpdate }

// OrderSpecies sorts species by the original fitness of their first member,
// best first. Empty species go last.
func (sim *Simulation) OrderSpecies() {
	slices.SortStableFunc(sim.Species, func(a, b *Species) int {
		return cmp.Compare(leadFitness(b), leadFitness(a))
	})
}

func leadFitness(s *Species) float64 {
	if len(s.Genomes) == 0 {
		return math.Inf(-1)
	}
	return s.Genomes[0].OriginalFitness
}

// RemoveEmptySpecies drops species without members, unless only one
// species is left.
func (sim *Simulation) RemoveEmptySpecies() {
	if len(sim.Species) <= 1 {
		return
	}
	sim.Species = slices.DeleteFunc(sim.Species, func(s *Species) bool {
		if len(s.Genomes) == 0 {
			sim.Logger.Debug("species removed", "epoch", sim.EpochID, "species", s.ID, "age", s.Age)
			return true
		}
		return false
	})
}

// addGenomesToSpecies puts every genome into the first species whose sample
// genome is closer than CompatibilityThreshold, or into a new species.
func (sim *Simulation) addGenomesToSpecies(genomes []*Genome) {
	for _, g := range genomes {
		var home *Species
		for _, s := range sim.Species {
			sample := s.SampleGenome()
			if sample == nil {
				continue
			}
			// sample is never nil here, so the error is always nil.
			if d, _ := g.CompatibilityDistance(sample); d < sim.Parameters.CompatibilityThreshold {
				home = s
				break
			}
		}
		if home == nil {
			home = NewSpecies(sim.nextSpeciesID, sim.rng, sim.Parameters)
			sim.nextSpeciesID++
			sim.Species = append(sim.Species, home)
			sim.Logger.Debug("species created", "epoch", sim.EpochID, "species", home.ID, "genome", g.Key)
		}
		home.AddGenome(g)
		g.Species = home
	}
}

// Epoch turns the evaluated generation in Genomes into the next one.
// Fitness must have been set on every genome.
func (sim *Simulation) Epoch() error {
	if len(sim.Genomes) > sim.populationSize {
		return fmt.Errorf("epoch %d: %w: %d genomes, expected at most %d",
			sim.EpochID, ErrPopulationOverflow, len(sim.Genomes), sim.populationSize)
	}
	previous := slices.Clone(sim.Genomes)

	for _, s := range sim.Species {
		s.Age++
		s.AdjustFitness()
	}
	sim.OrderSpecies()

	if period := 2 * sim.Parameters.MaxSpeciesGenerationsWithoutImprovement; sim.EpochID > 0 && sim.EpochID%period == 0 {
		sim.PenalizeNonImprovingSpecies()
	}

	total := 0.0
	for _, s := range sim.Species {
		total += s.AverageFitness()
	}
	sim.CalculateSpeciesOffspring(total)
	sim.trackStagnation()

	for _, g := range previous {
		if g.ShouldBeEliminated && g.Species != nil {
			g.Species.RemoveGenome(g)
		}
	}

	next := make([]*Genome, 0, sim.populationSize)
	var err error
	for _, s := range sim.Species {
		if next, err = s.Reproduce(next, sim.registry, sim.Species); err != nil {
			return fmt.Errorf("epoch %d: %w", sim.EpochID, err)
		}
	}
	for _, child := range next {
		child.Key = sim.nextKey()
	}
	sim.addGenomesToSpecies(next)

	for _, g := range previous {
		if g.Species != nil {
			g.Species.RemoveGenome(g)
			g.Species = nil
		}
	}
	sim.RemoveEmptySpecies()
	for _, s := range sim.Species {
		s.OrderGenomes()
	}
	sim.OrderSpecies()
	sim.Genomes = next

	if limit := sim.Parameters.PopulationExtinctionLimit; limit > 0 && sim.epochsWithoutImprovement >= limit {
		sim.Logger.Warn("population extinct, respawning from the seed genome",
			"epoch", sim.EpochID, "epochs_without_improvement", sim.epochsWithoutImprovement,
			"highest_fitness", sim.highestFitness)
		sim.spawn()
		sim.highestFitness = 0
		sim.generationsSinceLastUpdate = 0
		sim.epochsWithoutImprovement = 0
	}

	sim.registry.Clear()
	sim.EpochID++
	return nil
}

// trackStagnation marks the population champion and hands over to
// HandlePopulationLevelStagnation once the best fitness has not grown for
// MaxGeneralGenerationsWithoutImprovement epochs.
func (sim *Simulation) trackStagnation() {
	if len(sim.Species) == 0 || len(sim.Species[0].Genomes) == 0 {
		return
	}
	champion := sim.Species[0].Genomes[0]
	champion.IsPopulationChampion = true

	if champion.OriginalFitness > sim.highestFitness {
		sim.highestFitness = champion.OriginalFitness
		sim.generationsSinceLastUpdate = 0
		sim.epochsWithoutImprovement = 0
	} else {
		sim.generationsSinceLastUpdate++
		sim.epochsWithoutImprovement++
	}

	if sim.generationsSinceLastUpdate > sim.Parameters.MaxGeneralGenerationsWithoutImprovement {
		sim.HandlePopulationLevelStagnation()
	}
}

// RunEpoch evaluates the current generation with fitness, records the
// statistics and the best genome, and then calls Epoch.
func (sim *Simulation) RunEpoch(fitness FitnessFunc) (*EpochStats, error) {
	if err := fitness(sim.Genomes); err != nil {
		return nil, fmt.Errorf("fitness evaluation failed in epoch %d: %w", sim.EpochID, err)
	}

	stats := sim.Stats()
	if stats.Best != nil && (sim.BestGenome == nil || stats.Best.Fitness > sim.BestGenome.Fitness) {
		sim.BestGenome = stats.Best
		sim.Logger.Info("new best genome", "epoch", sim.EpochID, "genome", stats.Best.Key,
			"fitness", stats.Best.Fitness, "nodes", stats.Best.NumNodes(), "genes", stats.Best.NumGenes())
	}

	if err := sim.Epoch(); err != nil {
		return stats, err
	}
	sim.Logger.Debug("epoch finished", "epoch", stats.Epoch, "species", len(sim.Species),
		"best_fitness", stats.BestFitness, "mean_fitness", stats.MeanFitness)
	return stats, nil
}
