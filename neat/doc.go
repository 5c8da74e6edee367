/*
Package neat implements NeuroEvolution of Augmenting Topologies: a genetic
algorithm that evolves both the weights and the structure of neural
networks, aligning genes of different genomes by their innovation numbers.

A Simulation is seeded with one hand-built Genome and keeps a fixed-size
population split into species by compatibility distance. The caller
evaluates every genome's phenotype (Genome.GetNetwork) and sets its
Fitness, then calls Epoch to breed the next generation. Run drives that
loop with a FitnessFunc and can checkpoint along the way.

Basic usage:

	rng := neat.NewRandomSource(42)
	params := neat.DefaultParameters()

	seed, _ := neat.NewGenome(rng, params)
	seed.AddNode(neat.NewNodeGene(1, neat.SensorNode))
	seed.AddNode(neat.NewNodeGene(2, neat.BiasNode))
	seed.AddNode(neat.NewNodeGene(3, neat.OutputNode))
	seed.AddConnection(1, 3, 0)
	seed.AddConnection(2, 3, 0)

	sim, err := neat.NewSimulation(rng, seed, 150, params)
	if err != nil {
		log.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		for _, g := range sim.Genomes {
			net := g.GetNetwork()
			// ... set inputs, net.Activate(), read outputs, net.Reset() ...
			g.Fitness = score
		}
		if err := sim.Epoch(); err != nil {
			log.Fatal(err)
		}
	}

Subpackage nn holds the phenotype and its relaxation activation, metrics
exports progress to Prometheus and store keeps run history in SQLite.
Parameters can be loaded from INI or YAML files with LoadConfig.
*/
package neat
