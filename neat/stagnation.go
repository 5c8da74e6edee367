package neat

// PenalizeNonImprovingSpecies flags the worst-ranked species that is at
// least MaxSpeciesGenerationsWithoutImprovement+5 epochs old and has not
// improved for MaxSpeciesGenerationsWithoutImprovement epochs. Its members
// get the stagnation penalty on every later AdjustFitness. Species must be
// ordered best first. It returns the flagged species, or nil.
func (sim *Simulation) PenalizeNonImprovingSpecies() *Species {
	maxStagnant := sim.Parameters.MaxSpeciesGenerationsWithoutImprovement
	minAge := maxStagnant + 5
	for i := len(sim.Species) - 1; i >= 0; i-- {
		s := sim.Species[i]
		if s.Age >= minAge && s.AgeWithoutImprovement() >= maxStagnant {
			s.ShouldBePenalized = true
			sim.Logger.Info("species penalized for stagnation",
				"epoch", sim.EpochID, "species", s.ID, "age", s.Age,
				"age_without_improvement", s.AgeWithoutImprovement())
			return s
		}
	}
	return nil
}

// HandlePopulationLevelStagnation lets only the two best species reproduce,
// entirely from their champions: the best species gets the larger half of
// the population, the runner-up the rest. A lone species gets everything.
// Both count as having just improved.
func (sim *Simulation) HandlePopulationLevelStagnation() {
	if len(sim.Species) == 0 {
		return
	}
	sim.generationsSinceLastUpdate = 0

	pop := sim.populationSize
	half := pop / 2
	best := sim.Species[0]
	best.LastImprovementAge = best.Age

	if len(sim.Species) == 1 {
		best.Offspring = pop
		best.ChampionOffspring = pop
	} else {
		best.Offspring = pop - half
		best.ChampionOffspring = pop - half

		second := sim.Species[1]
		second.Offspring = half
		second.ChampionOffspring = half
		second.LastImprovementAge = second.Age

		for _, s := range sim.Species[2:] {
			s.Offspring = 0
			s.ChampionOffspring = 0
		}
	}

	sim.Logger.Info("population stagnated, reproducing from the best species only",
		"epoch", sim.EpochID, "species", len(sim.Species), "best_species", best.ID)
}
