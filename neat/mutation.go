package neat

// hasGene reports whether a gene in->out with the given recurrence exists.
func (g *Genome) hasGene(in, out int, recurrent bool) bool {
	for _, gene := range g.genes {
		if gene.In.ID == in && gene.Out.ID == out && gene.Recurrent == recurrent {
			return true
		}
	}
	return false
}

// AddConnectionMutation tries to connect two unconnected nodes. With
// probability RecurrencyProbability it looks for a recurrent connection
// (a self-loop half of the time), otherwise for a forward one. Targets are
// never sensor or bias nodes. Giving up after MaxTries is not an error.
func (g *Genome) AddConnectionMutation(reg *InnovationRegistry) error {
	if reg == nil {
		return ErrNilRegistry
	}
	count := len(g.nodes)
	targets := make([]int, 0, count)
	for i, n := range g.nodes {
		if !n.IsInput() {
			targets = append(targets, i)
		}
	}
	if len(targets) == 0 {
		return nil
	}
	thresh := count * count

	doRecurrency := g.rng.Float64() < g.params.RecurrencyProbability
	var in, out NodeGene
	found, recurrent := false, false
	for tries := 0; tries < MaxTries && !found; tries++ {
		if doRecurrency {
			loop := g.rng.Float64() > 0.5
			start := g.rng.Intn(count)
			target := start
			if !loop {
				target = targets[g.rng.Intn(len(targets))]
			}
			in, out = g.nodes[start], g.nodes[target]
			if out.IsInput() || g.hasGene(in.ID, out.ID, true) {
				continue
			}
			// Anything leaving an output counts as recurrent.
			recurrent = in.Kind == OutputNode ||
				g.GetNetwork().IsRecurrentConnection(in.ID, out.ID, 0, thresh)
			found = recurrent
			continue
		}

		start := g.rng.Intn(count)
		target := targets[g.rng.Intn(len(targets))]
		if start == target {
			continue
		}
		in, out = g.nodes[start], g.nodes[target]
		if in.Kind == OutputNode || out.IsInput() || g.hasGene(in.ID, out.ID, false) {
			continue
		}
		if g.GetNetwork().IsRecurrentConnection(in.ID, out.ID, 0, thresh) {
			continue
		}
		found = true
	}
	if !found {
		return nil
	}

	innov, _ := reg.ResolveLink(in, out, func() float64 { return g.rng.Float64()*2 - 1 })
	if _, dup := g.geneIndex(innov.ID); dup {
		return nil
	}
	return g.AddConnectionGene(NewConnectionGene(in, out, innov.Weight, innov.ID, doRecurrency || recurrent))
}

// findGeneToSplit picks a random enabled gene, giving up after MaxTries.
func (g *Genome) findGeneToSplit() (int, bool) {
	if len(g.genes) == 0 {
		return -1, false
	}
	for tries := 0; tries < MaxTries; tries++ {
		i := g.rng.Intn(len(g.genes))
		if g.genes[i].Enabled {
			return i, true
		}
	}
	return -1, false
}

// AddNodeMutation splits an enabled gene in->out with a new hidden node:
// the old gene is disabled, in->new gets weight 1 and the old recurrence,
// new->out gets the old weight.
func (g *Genome) AddNodeMutation(reg *InnovationRegistry) error {
	if reg == nil {
		return ErrNilRegistry
	}
	idx, ok := g.findGeneToSplit()
	if !ok {
		return nil
	}
	old := g.genes[idx]

	innov, _ := reg.ResolveNode(old.In, old.Out, old.Innovation, g.MaxNodeID()+1)
	if _, exists := g.nodeIndex(innov.NewNode.ID); exists {
		return nil
	}
	if _, exists := g.geneIndex(innov.ID); exists {
		return nil
	}
	if _, exists := g.geneIndex(innov.ID2); exists {
		return nil
	}

	g.genes[idx].Enabled = false
	node := innov.NewNode
	if err := g.AddNode(node); err != nil {
		return err
	}
	if err := g.AddConnectionGene(NewConnectionGene(old.In, node, 1.0, innov.ID, old.Recurrent)); err != nil {
		return err
	}
	return g.AddConnectionGene(NewConnectionGene(node, old.Out, old.Weight, innov.ID2, false))
}

// MutateWeights perturbs or replaces connection weights by up to power.
// Half the time the mutation is severe; otherwise the last fifth of a long
// genome, which holds its newest genes, is mutated harder than the rest.
func (g *Genome) MutateWeights(power float64) {
	severe := g.rng.Float64() > 0.5
	n := len(g.genes)
	endpart := float64(n) * 0.8

	for i := range g.genes {
		var gausspoint, coldpoint float64
		switch {
		case severe:
			gausspoint, coldpoint = 0.3, 0.1
		case n >= 10 && float64(i) > endpart:
			gausspoint, coldpoint = 0.5, 0.3
		case g.rng.Float64() > 0.5:
			gausspoint, coldpoint = 0, -0.1
		default:
			gausspoint, coldpoint = 0, 0
		}

		delta := (g.rng.Float64()*2 - 1) * power
		choice := g.rng.Float64()
		gene := &g.genes[i]
		if choice > gausspoint {
			gene.Weight += delta
		} else if choice > coldpoint {
			gene.Weight = delta
		}

		if g.params.AreConnectionWeightsCapped {
			gene.Weight = clamp(gene.Weight, -g.params.MaxWeight, g.params.MaxWeight)
		}
	}
	g.dirty = true
}

// ToggleEnabledMutation flips the enabled flag of a random gene. A disabled
// gene can always be enabled; an enabled one is disabled only if another
// enabled gene still feeds the same node.
func (g *Genome) ToggleEnabledMutation() {
	if len(g.genes) == 0 {
		return
	}
	for tries := 0; tries < MaxTries; tries++ {
		i := g.rng.Intn(len(g.genes))
		gene := &g.genes[i]
		if !gene.Enabled || g.hasOtherEnabledInput(i) {
			gene.Enabled = !gene.Enabled
			g.dirty = true
			return
		}
	}
}

func (g *Genome) hasOtherEnabledInput(i int) bool {
	target := g.genes[i].Out.ID
	for j, other := range g.genes {
		if j != i && other.Enabled && other.Out.ID == target {
			return true
		}
	}
	return false
}

// ReenableMutation enables the first disabled gene, if any.
func (g *Genome) ReenableMutation() {
	for i := range g.genes {
		if !g.genes[i].Enabled {
			g.genes[i].Enabled = true
			g.dirty = true
			return
		}
	}
}
