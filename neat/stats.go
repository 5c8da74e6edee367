package neat

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// EpochStats summarizes the evaluated generation of one epoch.
type EpochStats struct {
	Epoch                       int
	Genomes                     int
	Species                     int
	BestFitness                 float64
	MeanFitness                 float64
	StdevFitness                float64
	MedianFitness               float64
	MeanGenes                   float64
	HighestFitness              float64 // Best original fitness seen at an epoch start.
	GenerationsSinceImprovement int
	SpeciesSizes                []int // Members per species, in species order.

	// Best is a copy of the fittest genome, nil for an empty population.
	Best *Genome
}

// String returns a one-line summary.
func (es *EpochStats) String() string {
	return fmt.Sprintf("epoch %d: %d genomes in %d species, best %.4f, mean %.4f (sd %.4f), mean genes %.1f",
		es.Epoch, es.Genomes, es.Species, es.BestFitness, es.MeanFitness, es.StdevFitness, es.MeanGenes)
}

// Stats summarizes the current generation. Call it after fitness has been
// assigned and before Epoch.
func (sim *Simulation) Stats() *EpochStats {
	stats := &EpochStats{
		Epoch:                       sim.EpochID,
		Genomes:                     len(sim.Genomes),
		Species:                     len(sim.Species),
		HighestFitness:              sim.highestFitness,
		GenerationsSinceImprovement: sim.generationsSinceLastUpdate,
		SpeciesSizes:                make([]int, len(sim.Species)),
	}
	for i, s := range sim.Species {
		stats.SpeciesSizes[i] = len(s.Genomes)
	}
	if len(sim.Genomes) == 0 {
		return stats
	}

	fitness := make([]float64, len(sim.Genomes))
	genes := make([]float64, len(sim.Genomes))
	for i, g := range sim.Genomes {
		fitness[i] = g.Fitness
		genes[i] = float64(g.NumGenes())
	}
	best := floats.MaxIdx(fitness)

	stats.BestFitness = fitness[best]
	stats.MeanFitness = Mean(fitness)
	stats.StdevFitness = Stdev(fitness)
	stats.MedianFitness = Median(fitness)
	stats.MeanGenes = Mean(genes)
	stats.Best = sim.Genomes[best].Copy()
	return stats
}
