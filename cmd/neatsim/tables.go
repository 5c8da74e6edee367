package main

import (
	"fmt"

	"github.com/gosuri/uitable"

	"github.com/baldhumanity/neatsim/neat"
	"github.com/baldhumanity/neatsim/neat/nn"
)

func newTable(header ...interface{}) *uitable.Table {
	table := uitable.New()
	table.MaxColWidth = 40
	table.Wrap = false
	table.AddRow(header...)
	return table
}

func epochTable(history []*neat.EpochStats) *uitable.Table {
	table := newTable("Epoch", "Genomes", "Species", "Best", "Mean", "StdDev", "Median", "MeanGenes")
	for _, s := range history {
		table.AddRow(s.Epoch, s.Genomes, s.Species,
			fmt.Sprintf("%.4f", s.BestFitness),
			fmt.Sprintf("%.4f", s.MeanFitness),
			fmt.Sprintf("%.4f", s.StdevFitness),
			fmt.Sprintf("%.4f", s.MedianFitness),
			fmt.Sprintf("%.1f", s.MeanGenes))
	}
	return table
}

func speciesTable(species []*neat.Species) *uitable.Table {
	table := newTable("Species", "Age", "Members", "MaxFitnessEver", "Stagnancy", "Penalized")
	for _, s := range species {
		table.AddRow(s.ID, s.Age, len(s.Genomes),
			fmt.Sprintf("%.4f", s.MaxFitnessEver), s.AgeWithoutImprovement(), s.ShouldBePenalized)
	}
	return table
}

func nodeTable(net *nn.Network) *uitable.Table {
	table := newTable("Node", "Kind")
	for _, n := range net.Nodes() {
		table.AddRow(n.ID, n.Kind)
	}
	return table
}

func linkTable(net *nn.Network) *uitable.Table {
	table := newTable("In", "Out", "Weight", "Recurrent")
	for _, l := range net.Links() {
		table.AddRow(l.In, l.Out, fmt.Sprintf("%.4f", l.Weight), l.Recurrent)
	}
	return table
}
