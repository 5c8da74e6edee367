package neat

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/baldhumanity/neatsim/neat/nn"
)

// Config stores everything needed to run an evolution: the run settings and
// the algorithm parameters.
type Config struct {
	Run        RunConfig
	Parameters Parameters
}

// RunConfig holds parameters of a single run rather than of the algorithm.
type RunConfig struct {
	Task             string  `ini:"task" yaml:"task"`
	PopulationSize   int     `ini:"population_size" yaml:"population_size"`
	MaxEpochs        int     `ini:"max_epochs" yaml:"max_epochs"`
	FitnessThreshold float64 `ini:"fitness_threshold" yaml:"fitness_threshold"` // 0 disables the threshold
	Seed             int64   `ini:"seed" yaml:"seed"`
	Workers          int     `ini:"workers" yaml:"workers"`
	CheckpointEvery  int     `ini:"checkpoint_every" yaml:"checkpoint_every"` // 0 disables checkpoints
}

// MutationParameters holds the per-child mutation probabilities.
type MutationParameters struct {
	AddNodeProbability                 float64 `ini:"add_node_probability" yaml:"add_node_probability"`
	AddConnectionProbability           float64 `ini:"add_connection_probability" yaml:"add_connection_probability"`
	MutateConnectionWeightsProbability float64 `ini:"mutate_weights_probability" yaml:"mutate_weights_probability"`
	MutateToggleEnabledProbability     float64 `ini:"toggle_enabled_probability" yaml:"toggle_enabled_probability"`
	MutateReenableProbability          float64 `ini:"reenable_probability" yaml:"reenable_probability"`
	RecurrencyProbability              float64 `ini:"recurrency_probability" yaml:"recurrency_probability"`
}

// ReproductionParameters holds the probabilities that pick how a child is made.
type ReproductionParameters struct {
	MutateWithoutCrossover         float64 `ini:"mutate_without_crossover" yaml:"mutate_without_crossover"`
	MateWithoutMutatingProbability float64 `ini:"mate_without_mutating_probability" yaml:"mate_without_mutating_probability"`
	AverageCrossoverProbability    float64 `ini:"average_crossover_probability" yaml:"average_crossover_probability"`
	InterspeciesMateRate           float64 `ini:"interspecies_mate_rate" yaml:"interspecies_mate_rate"`
	SurvivalThreshold              float64 `ini:"survival_threshold" yaml:"survival_threshold"`
}

// SpeciationParameters holds the compatibility distance coefficients.
type SpeciationParameters struct {
	C1                     float64 `ini:"excess_coefficient" yaml:"excess_coefficient"`
	C2                     float64 `ini:"disjoint_coefficient" yaml:"disjoint_coefficient"`
	C3                     float64 `ini:"weight_difference_coefficient" yaml:"weight_difference_coefficient"`
	CompatibilityThreshold float64 `ini:"compatibility_threshold" yaml:"compatibility_threshold"`
}

// WeightParameters holds the connection weight policy.
type WeightParameters struct {
	AreConnectionWeightsCapped bool    `ini:"capped" yaml:"capped"`
	MaxWeight                  float64 `ini:"max_weight" yaml:"max_weight"`
	WeightMutationPower        float64 `ini:"weight_mutation_power" yaml:"weight_mutation_power"`
	DisableGeneProbability     float64 `ini:"disable_gene_probability" yaml:"disable_gene_probability"`
}

// PopulationParameters holds the stagnation and extinction policy.
type PopulationParameters struct {
	SpeciesStagnationPenalty                float64 `ini:"species_stagnation_penalty" yaml:"species_stagnation_penalty"`
	MaxSpeciesGenerationsWithoutImprovement int     `ini:"max_species_generations_without_improvement" yaml:"max_species_generations_without_improvement"`
	MaxGeneralGenerationsWithoutImprovement int     `ini:"max_general_generations_without_improvement" yaml:"max_general_generations_without_improvement"`
	PopulationExtinctionLimit               int     `ini:"population_extinction_limit" yaml:"population_extinction_limit"` // 0 disables respawn
}

// NetworkParameters selects the phenotype activation function.
type NetworkParameters struct {
	ActivationFunction string `ini:"activation_function" yaml:"activation_function"`

	// Activation is resolved from ActivationFunction by Validate, or set
	// directly to use a custom function.
	Activation nn.Activation `ini:"-" yaml:"-"`
}

// Parameters tunes the behaviour of a Simulation. Each group maps to one
// configuration section.
type Parameters struct {
	MutationParameters
	ReproductionParameters
	SpeciationParameters
	WeightParameters
	PopulationParameters
	NetworkParameters
}

// DefaultParameters returns the reference parameter set.
func DefaultParameters() *Parameters {
	return &Parameters{
		MutationParameters: MutationParameters{
			AddNodeProbability:                 0.03,
			AddConnectionProbability:           0.05,
			MutateConnectionWeightsProbability: 0.8,
		},
		ReproductionParameters: ReproductionParameters{
			MutateWithoutCrossover:         0.25,
			MateWithoutMutatingProbability: 0.2,
			AverageCrossoverProbability:    0.4,
			InterspeciesMateRate:           0.001,
			SurvivalThreshold:              0.2,
		},
		SpeciationParameters: SpeciationParameters{
			C1:                     1.0,
			C2:                     1.0,
			C3:                     0.4,
			CompatibilityThreshold: 3.0,
		},
		WeightParameters: WeightParameters{
			AreConnectionWeightsCapped: true,
			MaxWeight:                  8.0,
			WeightMutationPower:        2.5,
			DisableGeneProbability:     0.75,
		},
		PopulationParameters: PopulationParameters{
			SpeciesStagnationPenalty:                0.01,
			MaxSpeciesGenerationsWithoutImprovement: 15,
			MaxGeneralGenerationsWithoutImprovement: 20,
			PopulationExtinctionLimit:               100,
		},
		NetworkParameters: NetworkParameters{
			ActivationFunction: "sigmoid",
			Activation:         nn.Sigmoid(),
		},
	}
}

// DefaultRunConfig returns the run settings used when a file leaves them out.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Task:            "xor",
		PopulationSize:  150,
		MaxEpochs:       100,
		Seed:            1,
		Workers:         4,
		CheckpointEvery: 0,
	}
}

// DefaultConfig returns the default run settings and parameters.
func DefaultConfig() *Config {
	return &Config{Run: DefaultRunConfig(), Parameters: *DefaultParameters()}
}

// Validate checks parameter ranges and resolves the activation function.
// A custom Activation set in code is kept.
func (p *Parameters) Validate() error {
	probabilities := []struct {
		name  string
		value float64
	}{
		{"add_node_probability", p.AddNodeProbability},
		{"add_connection_probability", p.AddConnectionProbability},
		{"mutate_weights_probability", p.MutateConnectionWeightsProbability},
		{"toggle_enabled_probability", p.MutateToggleEnabledProbability},
		{"reenable_probability", p.MutateReenableProbability},
		{"recurrency_probability", p.RecurrencyProbability},
		{"mutate_without_crossover", p.MutateWithoutCrossover},
		{"mate_without_mutating_probability", p.MateWithoutMutatingProbability},
		{"average_crossover_probability", p.AverageCrossoverProbability},
		{"interspecies_mate_rate", p.InterspeciesMateRate},
		{"survival_threshold", p.SurvivalThreshold},
		{"disable_gene_probability", p.DisableGeneProbability},
		{"species_stagnation_penalty", p.SpeciesStagnationPenalty},
	}
	for _, pr := range probabilities {
		if pr.value < 0 || pr.value > 1 {
			return fmt.Errorf("config error: %s must be between 0 and 1", pr.name)
		}
	}

	if p.C1 < 0 || p.C2 < 0 || p.C3 < 0 {
		return fmt.Errorf("config error: compatibility coefficients cannot be negative")
	}
	if p.CompatibilityThreshold <= 0 {
		return fmt.Errorf("config error: compatibility_threshold must be positive")
	}
	if p.AreConnectionWeightsCapped && p.MaxWeight <= 0 {
		return fmt.Errorf("config error: max_weight must be positive when weights are capped")
	}
	if p.WeightMutationPower < 0 {
		return fmt.Errorf("config error: weight_mutation_power cannot be negative")
	}
	if p.MaxSpeciesGenerationsWithoutImprovement <= 0 {
		return fmt.Errorf("config error: max_species_generations_without_improvement must be positive")
	}
	if p.MaxGeneralGenerationsWithoutImprovement < 0 {
		return fmt.Errorf("config error: max_general_generations_without_improvement cannot be negative")
	}
	if p.PopulationExtinctionLimit < 0 {
		return fmt.Errorf("config error: population_extinction_limit cannot be negative")
	}

	if p.Activation.Kind == nn.ActivationCustom {
		if p.Activation.Fn == nil {
			return fmt.Errorf("config error: custom activation %q has no function", p.Activation.Name)
		}
		return nil
	}
	activation, err := nn.ParseActivation(p.ActivationFunction)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	p.Activation = activation
	return nil
}

// Validate checks the run settings.
func (rc *RunConfig) Validate() error {
	if rc.PopulationSize <= 0 {
		return fmt.Errorf("config error: population_size must be positive")
	}
	if rc.MaxEpochs <= 0 {
		return fmt.Errorf("config error: max_epochs must be positive")
	}
	if rc.Workers <= 0 {
		return fmt.Errorf("config error: workers must be positive")
	}
	if rc.CheckpointEvery < 0 {
		return fmt.Errorf("config error: checkpoint_every cannot be negative")
	}
	return nil
}

// LoadConfig loads a configuration file. Files ending in .yaml or .yml are
// read as YAML; anything else as INI. Keys missing from the file keep their
// default values.
func LoadConfig(filePath string) (*Config, error) {
	config := DefaultConfig()

	var err error
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		err = loadYAML(filePath, config)
	default:
		err = loadINI(filePath, config)
	}
	if err != nil {
		return nil, err
	}

	config.Run.Task = strings.ToLower(strings.TrimSpace(config.Run.Task))
	config.Parameters.ActivationFunction = strings.TrimSpace(config.Parameters.ActivationFunction)

	if err := config.Run.Validate(); err != nil {
		return nil, err
	}
	if err := config.Parameters.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func loadINI(filePath string, config *Config) error {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, filePath)
	if err != nil {
		return fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}

	p := &config.Parameters
	sections := []struct {
		name   string
		target any
	}{
		{"Run", &config.Run},
		{"Mutation", &p.MutationParameters},
		{"Reproduction", &p.ReproductionParameters},
		{"Speciation", &p.SpeciationParameters},
		{"Weights", &p.WeightParameters},
		{"Population", &p.PopulationParameters},
		{"Network", &p.NetworkParameters},
	}
	for _, s := range sections {
		if !cfg.HasSection(s.name) {
			continue
		}
		if err := cfg.Section(s.name).StrictMapTo(s.target); err != nil {
			return fmt.Errorf("failed to map [%s] section: %w", s.name, err)
		}
	}
	return nil
}

// yamlConfig mirrors the INI sections. The pointers are aimed at the
// defaults so that absent keys are left alone.
type yamlConfig struct {
	Run          *RunConfig              `yaml:"run"`
	Mutation     *MutationParameters     `yaml:"mutation"`
	Reproduction *ReproductionParameters `yaml:"reproduction"`
	Speciation   *SpeciationParameters   `yaml:"speciation"`
	Weights      *WeightParameters       `yaml:"weights"`
	Population   *PopulationParameters   `yaml:"population"`
	Network      *NetworkParameters      `yaml:"network"`
}

func loadYAML(filePath string, config *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}

	p := &config.Parameters
	doc := yamlConfig{
		Run:          &config.Run,
		Mutation:     &p.MutationParameters,
		Reproduction: &p.ReproductionParameters,
		Speciation:   &p.SpeciationParameters,
		Weights:      &p.WeightParameters,
		Population:   &p.PopulationParameters,
		Network:      &p.NetworkParameters,
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
	}
	return nil
}
