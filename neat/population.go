package neat

import (
	"context"
	"fmt"
	"time"
)

// RunOptions bound a Run.
type RunOptions struct {
	MaxEpochs        int
	FitnessThreshold float64 // Stop once a genome reaches it. 0 disables.

	// CheckpointEvery saves a checkpoint to CheckpointPath every that many
	// epochs. 0 disables.
	CheckpointEvery int
	CheckpointPath  string

	// OnEpoch, if set, receives the statistics of every evaluated generation.
	OnEpoch func(stats *EpochStats)

	// StopWhen, if set, ends the run after an epoch for which it returns
	// true, for instance once a task reports a solution.
	StopWhen func(stats *EpochStats) bool
}

// Run evolves the population until MaxEpochs epochs have passed, a genome
// reaches FitnessThreshold, StopWhen holds, or ctx is done. It returns the
// best genome found so far. A failed checkpoint is logged and does not stop
// the run.
func (sim *Simulation) Run(ctx context.Context, fitness FitnessFunc, opts RunOptions) (*Genome, error) {
	for i := 0; opts.MaxEpochs <= 0 || i < opts.MaxEpochs; i++ {
		if err := ctx.Err(); err != nil {
			return sim.BestGenome, err
		}

		start := time.Now()
		stats, err := sim.RunEpoch(fitness)
		if err != nil {
			return sim.BestGenome, err
		}
		sim.Logger.Info("epoch done", "epoch", stats.Epoch, "species", stats.Species,
			"best_fitness", stats.BestFitness, "mean_fitness", stats.MeanFitness,
			"duration", time.Since(start))
		if opts.OnEpoch != nil {
			opts.OnEpoch(stats)
		}

		if opts.CheckpointEvery > 0 && opts.CheckpointPath != "" && sim.EpochID%opts.CheckpointEvery == 0 {
			if err := sim.SaveCheckpoint(opts.CheckpointPath); err != nil {
				sim.Logger.Warn("checkpoint failed", "epoch", sim.EpochID, "err", err)
			}
		}

		if opts.FitnessThreshold > 0 && stats.BestFitness >= opts.FitnessThreshold {
			sim.Logger.Info("fitness threshold reached", "epoch", stats.Epoch,
				"fitness", stats.BestFitness, "threshold", opts.FitnessThreshold)
			return sim.BestGenome, nil
		}
		if opts.StopWhen != nil && opts.StopWhen(stats) {
			return sim.BestGenome, nil
		}
	}
	if sim.BestGenome == nil {
		return nil, fmt.Errorf("no genome evaluated after %d epochs", opts.MaxEpochs)
	}
	return sim.BestGenome, nil
}
