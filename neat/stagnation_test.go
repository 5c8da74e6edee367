package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlePopulationLevelStagnation(t *testing.T) {
	tests := []struct {
		name       string
		population int
		species    int
		want       []int
	}{
		{"odd population", 21, 3, []int{11, 10, 0}},
		{"even population", 20, 4, []int{10, 10, 0, 0}},
		{"two species", 7, 2, []int{4, 3}},
		{"single species", 9, 1, []int{9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			averages := make([]float64, tt.species)
			for i := range averages {
				averages[i] = float64(tt.species - i)
			}
			sim := bareSimulation(t, tt.population, averages...)
			sim.generationsSinceLastUpdate = 30
			for _, s := range sim.Species {
				s.Age = 12
				s.Offspring = 99
				s.ChampionOffspring = 99
			}

			sim.HandlePopulationLevelStagnation()

			assert.Equal(t, tt.want, offspring(sim))
			for i, s := range sim.Species {
				assert.Equal(t, tt.want[i], s.ChampionOffspring)
			}
			assert.Zero(t, sim.GenerationsSinceLastUpdate())
			assert.Equal(t, 12, sim.Species[0].LastImprovementAge)
			if tt.species > 2 {
				assert.Zero(t, sim.Species[2].LastImprovementAge)
			}
		})
	}
}

func TestPenalizeNonImprovingSpecies(t *testing.T) {
	sim := bareSimulation(t, 10, 4, 3, 2, 1)
	minAge := sim.Parameters.MaxSpeciesGenerationsWithoutImprovement + 5
	sim.Species[0].Age = minAge + 10
	sim.Species[1].Age = minAge
	sim.Species[2].Age = minAge - 1
	sim.Species[3].Age = 0

	penalized := sim.PenalizeNonImprovingSpecies()

	assert.Same(t, sim.Species[1], penalized, "the worst ranked old enough species")
	assert.True(t, sim.Species[1].ShouldBePenalized)
	assert.False(t, sim.Species[0].ShouldBePenalized)
	assert.False(t, sim.Species[2].ShouldBePenalized)
}

func TestPenalizeNonImprovingSpecies_SkipsImproving(t *testing.T) {
	sim := bareSimulation(t, 10, 3, 2, 1)
	maxStagnant := sim.Parameters.MaxSpeciesGenerationsWithoutImprovement
	for _, s := range sim.Species {
		s.Age = maxStagnant + 20
	}
	sim.Species[2].LastImprovementAge = sim.Species[2].Age - 1

	penalized := sim.PenalizeNonImprovingSpecies()

	assert.Same(t, sim.Species[1], penalized, "the worst species improved recently")
	assert.False(t, sim.Species[2].ShouldBePenalized)
}

func TestPenalizeNonImprovingSpecies_NoneOldEnough(t *testing.T) {
	sim := bareSimulation(t, 10, 2, 1)
	assert.Nil(t, sim.PenalizeNonImprovingSpecies())
}
