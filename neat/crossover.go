package neat

// moreAndLessFit orders two parents by original fitness; a tie goes to g.
func moreAndLessFit(g, other *Genome) (moreFit, lessFit *Genome) {
	if g.OriginalFitness >= other.OriginalFitness {
		return g, other
	}
	return other, g
}

// Crossover creates a child whose matching genes are copied at random from
// either parent and whose disjoint and excess genes come from the fitter
// parent only.
func (g *Genome) Crossover(other *Genome, rng RandomSource) (*Genome, error) {
	return g.crossover(other, rng, false)
}

// CrossoverAverage is Crossover with matching genes merged: the child's
// weight is the mean of both parents' and its recurrence flag is taken from
// either at random.
func (g *Genome) CrossoverAverage(other *Genome, rng RandomSource) (*Genome, error) {
	return g.crossover(other, rng, true)
}

func (g *Genome) crossover(other *Genome, rng RandomSource, average bool) (*Genome, error) {
	if other == nil {
		return nil, ErrNilGenome
	}
	child, err := NewGenome(rng, g.params)
	if err != nil {
		return nil, err
	}

	moreFit, lessFit := moreAndLessFit(g, other)
	for _, n := range moreFit.nodes {
		if n.Kind != HiddenNode {
			_ = child.AddNode(n)
		}
	}

	alignGenes(moreFit.genes, lessFit.genes, func(a, b *ConnectionGene) {
		if a == nil {
			// Only the less fit parent has it.
			return
		}
		gene := *a
		if b != nil {
			gene = g.mergeMatching(*a, *b, rng, average)
		}
		for _, existing := range child.genes {
			if gene.conflictsWith(existing) {
				return
			}
		}
		_ = child.AddConnectionGene(gene)
	})
	return child, nil
}

// mergeMatching combines the two parents' versions of one innovation.
func (g *Genome) mergeMatching(a, b ConnectionGene, rng RandomSource, average bool) ConnectionGene {
	var gene ConnectionGene
	if average {
		if rng.Float64() < 0.5 {
			gene = a
		} else {
			gene = b
		}
		gene.Weight = (a.Weight + b.Weight) / 2
		if rng.Float64() < 0.5 {
			gene.Recurrent = a.Recurrent
		} else {
			gene.Recurrent = b.Recurrent
		}
		gene.Innovation = a.Innovation
	} else if rng.Intn(2) == 0 {
		gene = a
	} else {
		gene = b
	}
	if !a.Enabled || !b.Enabled {
		gene.Enabled = rng.Float64() > g.params.DisableGeneProbability
	}
	return gene
}
