// Package metrics exports the progress of a neat.Simulation to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/baldhumanity/neatsim/neat"
)

const (
	namespace = "neatsim"
	subsystem = "evolution"
)

// Recorder holds the evolution metrics of one run.
type Recorder struct {
	epoch                       prometheus.Gauge
	epochs                      prometheus.Counter
	bestFitness                 prometheus.Gauge
	meanFitness                 prometheus.Gauge
	highestFitness              prometheus.Gauge
	genomes                     prometheus.Gauge
	species                     prometheus.Gauge
	meanGenes                   prometheus.Gauge
	generationsSinceImprovement prometheus.Gauge
	speciesSize                 prometheus.Histogram
}

// NewRecorder registers the metrics with reg, labelled with the task name.
// Registering twice on the same registry panics.
func NewRecorder(reg prometheus.Registerer, task string) *Recorder {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"task": task}
	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}

	return &Recorder{
		epoch: gauge("epoch", "Current epoch of the simulation"),
		epochs: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "epochs_total",
			Help:        "Total epochs evaluated",
			ConstLabels: labels,
		}),
		bestFitness:                 gauge("best_fitness", "Best raw fitness of the last evaluated generation"),
		meanFitness:                 gauge("mean_fitness", "Mean raw fitness of the last evaluated generation"),
		highestFitness:              gauge("highest_fitness", "Best fitness ever seen at an epoch start"),
		genomes:                     gauge("genomes", "Genomes in the last evaluated generation"),
		species:                     gauge("species", "Species in the last evaluated generation"),
		meanGenes:                   gauge("mean_genes", "Mean connection genes per genome"),
		generationsSinceImprovement: gauge("generations_since_improvement", "Epochs since the highest fitness grew"),
		speciesSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "species_size",
			Help:        "Distribution of species sizes",
			Buckets:     []float64{1, 2, 5, 10, 20, 50, 100, 200},
			ConstLabels: labels,
		}),
	}
}

// Observe records the statistics of one epoch.
func (r *Recorder) Observe(stats *neat.EpochStats) {
	if stats == nil {
		return
	}
	r.epoch.Set(float64(stats.Epoch))
	r.epochs.Inc()
	r.bestFitness.Set(stats.BestFitness)
	r.meanFitness.Set(stats.MeanFitness)
	r.highestFitness.Set(stats.HighestFitness)
	r.genomes.Set(float64(stats.Genomes))
	r.species.Set(float64(stats.Species))
	r.meanGenes.Set(stats.MeanGenes)
	r.generationsSinceImprovement.Set(float64(stats.GenerationsSinceImprovement))
	for _, n := range stats.SpeciesSizes {
		r.speciesSize.Observe(float64(n))
	}
}
