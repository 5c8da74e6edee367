package neat

import "math"

// alignGenes walks two innovation-sorted gene lists in step. visit gets both
// genes for a matching innovation and nil for the side that lacks it.
func alignGenes(a, b []ConnectionGene, visit func(ga, gb *ConnectionGene)) {
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j >= len(b) || (i < len(a) && a[i].Innovation < b[j].Innovation):
			visit(&a[i], nil)
			i++
		case i >= len(a) || b[j].Innovation < a[i].Innovation:
			visit(nil, &b[j])
			j++
		default:
			visit(&a[i], &b[j])
			i++
			j++
		}
	}
}

// geneComparison holds the counts behind the compatibility distance.
type geneComparison struct {
	Matching   int
	Disjoint   int
	Excess     int
	WeightDiff float64 // summed over matching genes
}

// AverageWeightDiff is the mean absolute weight difference of matching genes.
func (c geneComparison) AverageWeightDiff() float64 {
	if c.Matching == 0 {
		return 0
	}
	return c.WeightDiff / float64(c.Matching)
}

// compareGenes classifies the genes of two genomes. Genes past the end of the
// shorter innovation range are excess; unmatched genes inside it are
// disjoint. When either genome has no genes everything is excess.
func compareGenes(a, b []ConnectionGene) geneComparison {
	var c geneComparison
	if len(a) == 0 || len(b) == 0 {
		c.Excess = max(len(a), len(b))
		return c
	}
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Innovation == b[j].Innovation:
			c.Matching++
			c.WeightDiff += math.Abs(a[i].Weight - b[j].Weight)
			i++
			j++
		case a[i].Innovation < b[j].Innovation:
			c.Disjoint++
			i++
		default:
			c.Disjoint++
			j++
		}
	}
	c.Excess = (len(a) - i) + (len(b) - j)
	return c
}

// ExcessGenesCount returns the number of genes beyond the other genome's
// innovation range, counting both genomes.
func (g *Genome) ExcessGenesCount(other *Genome) int {
	return compareGenes(g.genes, other.genes).Excess
}

// DisjointGenesCount returns the number of unmatched genes inside the
// shared innovation range, counting both genomes.
func (g *Genome) DisjointGenesCount(other *Genome) int {
	return compareGenes(g.genes, other.genes).Disjoint
}

// MatchingGenesCount returns the number of innovations both genomes carry.
func (g *Genome) MatchingGenesCount(other *Genome) int {
	return compareGenes(g.genes, other.genes).Matching
}

// AverageWeightDifference returns the mean absolute weight difference of the
// matching genes, or 0 if there are none.
func (g *Genome) AverageWeightDifference(other *Genome) float64 {
	return compareGenes(g.genes, other.genes).AverageWeightDiff()
}

// CompatibilityDistance is c1*excess/N + c2*disjoint/N + c3*avgWeightDiff.
// N is always 1; the default thresholds are tuned for it.
func (g *Genome) CompatibilityDistance(other *Genome) (float64, error) {
	if other == nil {
		return 0, ErrNilGenome
	}
	if len(g.genes) == 0 && len(other.genes) == 0 {
		return 0, nil
	}
	c := compareGenes(g.genes, other.genes)
	const n = 1.0
	p := g.params
	return p.C1*float64(c.Excess)/n + p.C2*float64(c.Disjoint)/n + p.C3*c.AverageWeightDiff(), nil
}
