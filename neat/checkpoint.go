package neat

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
)

// checkpointData holds the parts of a Simulation needed to resume it. The
// parameters are not saved; they are reloaded from the configuration, and
// the random source is supplied again by the caller.
type checkpointData struct {
	PopulationSize int
	EpochID        int
	Genomes        []genomeRecord
	Species        []speciesRecord
	Seed           genomeRecord
	Best           *genomeRecord

	HighestFitness             float64
	GenerationsSinceLastUpdate int
	EpochsWithoutImprovement   int
	NextGenomeKey              int
	NextSpeciesID              int
	InnovationID               int
	NodeID                     int
}

type genomeRecord struct {
	Key                  int
	Fitness              float64
	OriginalFitness      float64
	Error                float64
	ShouldBeEliminated   bool
	IsPopulationChampion bool
	Nodes                []NodeGene
	Genes                []ConnectionGene
	LocalInnovation      int
}

type speciesRecord struct {
	ID                 int
	Age                int
	LastImprovementAge int
	MaxFitnessEver     float64
	Offspring          int
	ChampionOffspring  int
	ShouldBePenalized  bool
	Members            []int // genome keys, in member order
}

func newGenomeRecord(g *Genome) genomeRecord {
	return genomeRecord{
		Key:                  g.Key,
		Fitness:              g.Fitness,
		OriginalFitness:      g.OriginalFitness,
		Error:                g.Error,
		ShouldBeEliminated:   g.ShouldBeEliminated,
		IsPopulationChampion: g.IsPopulationChampion,
		Nodes:                slices.Clone(g.nodes),
		Genes:                slices.Clone(g.genes),
		LocalInnovation:      g.localInnovation,
	}
}

func (r genomeRecord) genome(rng RandomSource, params *Parameters) *Genome {
	return &Genome{
		Key:                  r.Key,
		Fitness:              r.Fitness,
		OriginalFitness:      r.OriginalFitness,
		Error:                r.Error,
		ShouldBeEliminated:   r.ShouldBeEliminated,
		IsPopulationChampion: r.IsPopulationChampion,
		nodes:                r.Nodes,
		genes:                r.Genes,
		localInnovation:      r.LocalInnovation,
		dirty:                true,
		params:               params,
		rng:                  rng,
	}
}

// WriteCheckpoint writes the simulation state as gzip-compressed gob.
func (sim *Simulation) WriteCheckpoint(w io.Writer) error {
	data := checkpointData{
		PopulationSize:             sim.populationSize,
		EpochID:                    sim.EpochID,
		Genomes:                    make([]genomeRecord, len(sim.Genomes)),
		Species:                    make([]speciesRecord, len(sim.Species)),
		Seed:                       newGenomeRecord(sim.seed),
		HighestFitness:             sim.highestFitness,
		GenerationsSinceLastUpdate: sim.generationsSinceLastUpdate,
		EpochsWithoutImprovement:   sim.epochsWithoutImprovement,
		NextGenomeKey:              sim.nextGenomeKey,
		NextSpeciesID:              sim.nextSpeciesID,
		InnovationID:               sim.registry.CurrentID(),
		NodeID:                     sim.registry.CurrentNodeID(),
	}
	for i, g := range sim.Genomes {
		data.Genomes[i] = newGenomeRecord(g)
	}
	for i, s := range sim.Species {
		rec := speciesRecord{
			ID:                 s.ID,
			Age:                s.Age,
			LastImprovementAge: s.LastImprovementAge,
			MaxFitnessEver:     s.MaxFitnessEver,
			Offspring:          s.Offspring,
			ChampionOffspring:  s.ChampionOffspring,
			ShouldBePenalized:  s.ShouldBePenalized,
			Members:            make([]int, len(s.Genomes)),
		}
		for j, g := range s.Genomes {
			rec.Members[j] = g.Key
		}
		data.Species[i] = rec
	}
	if sim.BestGenome != nil {
		best := newGenomeRecord(sim.BestGenome)
		data.Best = &best
	}

	gzWriter := gzip.NewWriter(w)
	if err := gob.NewEncoder(gzWriter).Encode(data); err != nil {
		_ = gzWriter.Close()
		return fmt.Errorf("failed to encode simulation data: %w", err)
	}
	return gzWriter.Close()
}

// ReadCheckpoint restores a simulation written by WriteCheckpoint.
func ReadCheckpoint(r io.Reader, rng RandomSource, params *Parameters) (*Simulation, error) {
	if rng == nil {
		return nil, ErrNilRandomSource
	}
	if params == nil {
		params = DefaultParameters()
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	gzReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for checkpoint: %w", err)
	}
	defer gzReader.Close()

	var data checkpointData
	if err := gob.NewDecoder(gzReader).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode simulation data from checkpoint: %w", err)
	}
	if data.PopulationSize <= 0 {
		return nil, fmt.Errorf("checkpoint: %w: %d", ErrInvalidPopulationSize, data.PopulationSize)
	}

	sim := &Simulation{
		Parameters:                 params,
		EpochID:                    data.EpochID,
		Logger:                     slog.New(slog.DiscardHandler),
		populationSize:             data.PopulationSize,
		registry:                   NewInnovationRegistry(data.InnovationID),
		rng:                        rng,
		seed:                       data.Seed.genome(rng, params),
		highestFitness:             data.HighestFitness,
		generationsSinceLastUpdate: data.GenerationsSinceLastUpdate,
		epochsWithoutImprovement:   data.EpochsWithoutImprovement,
		nextGenomeKey:              data.NextGenomeKey,
		nextSpeciesID:              data.NextSpeciesID,
	}
	sim.registry.SetCurrentNodeID(data.NodeID)

	byKey := make(map[int]*Genome, len(data.Genomes))
	for _, rec := range data.Genomes {
		g := rec.genome(rng, params)
		byKey[g.Key] = g
		sim.Genomes = append(sim.Genomes, g)
	}
	for _, rec := range data.Species {
		s := NewSpecies(rec.ID, rng, params)
		s.Age = rec.Age
		s.LastImprovementAge = rec.LastImprovementAge
		s.MaxFitnessEver = rec.MaxFitnessEver
		s.Offspring = rec.Offspring
		s.ChampionOffspring = rec.ChampionOffspring
		s.ShouldBePenalized = rec.ShouldBePenalized
		for _, key := range rec.Members {
			g, ok := byKey[key]
			if !ok {
				return nil, fmt.Errorf("checkpoint: species %d references unknown genome %d", rec.ID, key)
			}
			s.AddGenome(g)
			g.Species = s
		}
		sim.Species = append(sim.Species, s)
	}
	if data.Best != nil {
		sim.BestGenome = data.Best.genome(rng, params)
	}
	return sim, nil
}

// SaveCheckpoint saves the simulation state to a file.
func (sim *Simulation) SaveCheckpoint(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	if err := sim.WriteCheckpoint(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to save checkpoint to '%s': %w", filePath, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close checkpoint file '%s': %w", filePath, err)
	}
	sim.Logger.Info("checkpoint saved", "path", filePath, "epoch", sim.EpochID)
	return nil
}

// LoadCheckpoint restores a simulation saved with SaveCheckpoint. The
// parameters come from the caller, typically reloaded with LoadConfig.
func LoadCheckpoint(filePath string, rng RandomSource, params *Parameters) (*Simulation, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	sim, err := ReadCheckpoint(file, rng, params)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint '%s': %w", filePath, err)
	}
	return sim, nil
}
