package tasks

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/baldhumanity/neatsim/neat"
)

// Summary describes one evaluated generation.
type Summary struct {
	Best       *neat.Genome
	BestResult Result
	Solved     bool
	Evaluated  int
}

// Evaluate scores every genome on the task using at most workers goroutines
// (GOMAXPROCS when workers <= 0). Genome i draws its randomness from a
// source seeded with seed+i, so a run is reproducible regardless of
// scheduling. Fitness and Error are written back to each genome.
func Evaluate(ctx context.Context, task Task, genomes []*neat.Genome, workers int, seed int64) (Summary, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(genomes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, genome := range genomes {
		if genome == nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// The network is cached on the genome, which only this goroutine touches.
			res := task.Evaluate(genome.GetNetwork(), neat.NewRandomSource(seed+int64(i)))
			genome.Fitness = res.Fitness
			genome.Error = res.Error
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	var sum Summary
	for i, genome := range genomes {
		if genome == nil {
			continue
		}
		sum.Evaluated++
		res := results[i]
		if res.Solved {
			sum.Solved = true
		}
		if sum.Best == nil || res.Fitness > sum.BestResult.Fitness ||
			(res.Solved && !sum.BestResult.Solved && res.Fitness == sum.BestResult.Fitness) {
			sum.Best = genome
			sum.BestResult = res
		}
	}
	return sum, nil
}

// Evaluator adapts a task to neat.FitnessFunc. Every call uses a fresh block
// of seeds so that consecutive generations see different start states.
type Evaluator struct {
	Task    Task
	Workers int
	Seed    int64

	calls int64
	last  Summary
}

// FitnessFunc returns a fitness function bound to ctx.
func (e *Evaluator) FitnessFunc(ctx context.Context) neat.FitnessFunc {
	return func(genomes []*neat.Genome) error {
		sum, err := Evaluate(ctx, e.Task, genomes, e.Workers, e.Seed+e.calls<<20)
		e.calls++
		if err != nil {
			return err
		}
		e.last = sum
		return nil
	}
}

// Last returns the summary of the most recent generation.
func (e *Evaluator) Last() Summary { return e.last }
