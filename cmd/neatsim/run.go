package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/baldhumanity/neatsim/internal/tasks"
	"github.com/baldhumanity/neatsim/neat"
	"github.com/baldhumanity/neatsim/neat/metrics"
	"github.com/baldhumanity/neatsim/neat/store"
)

type runOptions struct {
	*globalOptions

	task            string
	config          string
	epochs          int
	population      int
	seed            int64
	workers         int
	db              string
	metricsAddr     string
	save            string
	checkpoint      string
	checkpointEvery int
	resume          string
}

func newRunCmd(global *globalOptions) *cobra.Command {
	opts := &runOptions{globalOptions: global}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evolve a population on a task",
		Example: `  neatsim run --task xor --epochs 200
  neatsim run --config configs/pole.yaml --db runs.db --metrics-addr :9090 --save pole.net`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runEvolution(ctx, cmd, opts)
		},
	}

	opts.bindFlags(cmd.Flags())
	return cmd
}

func (opts *runOptions) bindFlags(f *pflag.FlagSet) {
	f.StringVar(&opts.task, "task", "", "task to evolve for: "+fmt.Sprint(tasks.Names()))
	f.StringVarP(&opts.config, "config", "c", "", "configuration file (.ini, .yaml)")
	f.IntVar(&opts.epochs, "epochs", 0, "maximum number of epochs")
	f.IntVar(&opts.population, "population", 0, "population size")
	f.Int64Var(&opts.seed, "seed", 0, "random seed")
	f.IntVar(&opts.workers, "workers", 0, "concurrent fitness evaluations")
	f.StringVar(&opts.db, "db", "", "SQLite database recording the run")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	f.StringVar(&opts.save, "save", "", "write the best network to this file")
	f.StringVar(&opts.checkpoint, "checkpoint", "", "checkpoint file written during the run")
	f.IntVar(&opts.checkpointEvery, "checkpoint-every", 0, "epochs between checkpoints")
	f.StringVar(&opts.resume, "resume", "", "resume from a checkpoint file")
}

// loadRunConfig reads the configuration file, if any, and applies the flags
// that were set on top of it.
func loadRunConfig(f *pflag.FlagSet, opts *runOptions) (*neat.Config, error) {
	cfg := neat.DefaultConfig()
	if opts.config != "" {
		var err error
		if cfg, err = neat.LoadConfig(opts.config); err != nil {
			return nil, err
		}
	}

	if f.Changed("task") {
		cfg.Run.Task = opts.task
	}
	if f.Changed("epochs") {
		cfg.Run.MaxEpochs = opts.epochs
	}
	if f.Changed("population") {
		cfg.Run.PopulationSize = opts.population
	}
	if f.Changed("seed") {
		cfg.Run.Seed = opts.seed
	}
	if f.Changed("workers") {
		cfg.Run.Workers = opts.workers
	}
	if f.Changed("checkpoint-every") {
		cfg.Run.CheckpointEvery = opts.checkpointEvery
	}
	if opts.checkpoint != "" && cfg.Run.CheckpointEvery == 0 {
		cfg.Run.CheckpointEvery = 10
	}
	if err := cfg.Run.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runEvolution(ctx context.Context, cmd *cobra.Command, opts *runOptions) error {
	logger, err := newLogger(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
	if err != nil {
		return err
	}
	cfg, err := loadRunConfig(cmd.Flags(), opts)
	if err != nil {
		return err
	}
	task, err := tasks.ByName(cfg.Run.Task)
	if err != nil {
		return err
	}

	sim, err := newSimulation(task, cfg, opts.resume)
	if err != nil {
		return err
	}
	sim.Logger = logger.With("task", task.Name())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(reg, task.Name())
	if opts.metricsAddr != "" {
		shutdown := serveMetrics(opts.metricsAddr, reg, task.Name(), logger)
		defer shutdown()
	}

	var (
		runs  *store.Store
		runID string
	)
	if opts.db != "" {
		if runs, err = store.Open(ctx, opts.db); err != nil {
			return err
		}
		defer runs.Close()
		if runID, err = runs.CreateRun(ctx, task.Name(), cfg.Run.Seed, &cfg.Parameters); err != nil {
			return err
		}
		logger.Info("recording run", "db", opts.db, "run", runID)
	}

	eval := &tasks.Evaluator{Task: task, Workers: cfg.Run.Workers, Seed: cfg.Run.Seed}
	var history []*neat.EpochStats
	best, runErr := sim.Run(ctx, eval.FitnessFunc(ctx), neat.RunOptions{
		MaxEpochs:        cfg.Run.MaxEpochs,
		FitnessThreshold: cfg.Run.FitnessThreshold,
		CheckpointEvery:  cfg.Run.CheckpointEvery,
		CheckpointPath:   opts.checkpoint,
		OnEpoch: func(stats *neat.EpochStats) {
			history = append(history, stats)
			recorder.Observe(stats)
			if runs == nil {
				return
			}
			// The run context may already be cancelled; finish the write.
			if err := runs.RecordEpoch(context.WithoutCancel(ctx), runID, stats); err != nil {
				logger.Warn("failed to record epoch", "epoch", stats.Epoch, "err", err)
			}
		},
		StopWhen: func(stats *neat.EpochStats) bool {
			if eval.Last().Solved {
				logger.Info("task solved", "epoch", stats.Epoch, "fitness", eval.Last().BestResult.Fitness)
				return true
			}
			return false
		},
	})
	switch {
	case errors.Is(runErr, context.Canceled):
		logger.Warn("run interrupted", "epoch", sim.EpochID)
	case runErr != nil:
		return runErr
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, epochTable(history))
	fmt.Fprintln(out)
	fmt.Fprintln(out, speciesTable(sim.Species))
	if best == nil {
		fmt.Fprintln(out, "\nno genome was evaluated")
		return nil
	}
	fmt.Fprintf(out, "\nbest genome %d: fitness %.4f, error %.4f, %d nodes, %d genes (%d enabled)\n",
		best.Key, best.Fitness, best.Error, best.NumNodes(), best.NumGenes(), best.NumEnabledGenes())

	saveCtx := context.WithoutCancel(ctx)
	if runs != nil {
		if err := runs.SaveChampion(saveCtx, runID, sim.EpochID, best); err != nil {
			logger.Warn("failed to store champion", "run", runID, "err", err)
		}
	}
	if opts.save != "" {
		if err := best.GetNetwork().Save(opts.save); err != nil {
			return err
		}
		logger.Info("best network saved", "path", opts.save)
	}
	if opts.checkpoint != "" {
		if err := sim.SaveCheckpoint(opts.checkpoint); err != nil {
			logger.Warn("final checkpoint failed", "err", err)
		}
	}
	return nil
}

// newSimulation starts a fresh population from the task's seed genome, or
// resumes one from a checkpoint.
func newSimulation(task tasks.Task, cfg *neat.Config, resume string) (*neat.Simulation, error) {
	rng := neat.NewRandomSource(cfg.Run.Seed)
	if resume != "" {
		return neat.LoadCheckpoint(resume, rng, &cfg.Parameters)
	}
	seed, err := task.SeedGenome(rng, &cfg.Parameters)
	if err != nil {
		return nil, fmt.Errorf("failed to build seed genome for %s: %w", task.Name(), err)
	}
	return neat.NewSimulation(rng, seed, cfg.Run.PopulationSize, &cfg.Parameters)
}
