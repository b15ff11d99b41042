package engine

import (
	"math/rand"
	"sort"

	"github.com/piwi3910/partcam/internal/model"
)

// nestSeed fixes the genetic strategy's random source so the same project
// always nests the same way.
const nestSeed = 42

// GeneticConfig holds parameters for the genetic nesting strategy.
type GeneticConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	TournamentSize int
	EliteCount     int
}

// DefaultGeneticConfig returns sensible default parameters.
func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize: 50,
		Generations:    100,
		MutationRate:   0.15,
		TournamentSize: 3,
		EliteCount:     2,
	}
}

// gene is a single placement decision: which instance, and whether to try
// it rotated first.
type gene struct {
	instIndex int
	rotated   bool
}

// chromosome is a candidate solution: an ordering of instances with
// rotation preferences.
type chromosome struct {
	genes   []gene
	fitness float64
}

// geneticNester searches part orderings with a genetic algorithm. Each
// chromosome decodes through the same first-fit placer the guillotine
// strategy uses, so every constraint (grain, rotation, margins, kerf,
// exclusions) holds for every candidate.
type geneticNester struct {
	nester    *Nester
	cfg       GeneticConfig
	instances []instance
	pool      []model.StockSheet
	rng       *rand.Rand
}

func (n *Nester) nestGenetic(parts []model.Part, stocks []model.StockSheet) model.NestingResult {
	instances := expandParts(parts)
	if len(instances) == 0 {
		return model.NestingResult{}
	}

	cfg := DefaultGeneticConfig()
	// Scale the search for larger problems
	if len(instances) > 20 {
		cfg.Generations = 150
	}
	if len(instances) > 50 {
		cfg.Generations = 200
		cfg.PopulationSize = 80
	}

	ga := &geneticNester{
		nester:    n,
		cfg:       cfg,
		instances: instances,
		pool:      expandStocks(stocks),
		rng:       rand.New(rand.NewSource(nestSeed)),
	}
	return ga.run()
}

// run executes the evolution loop and decodes the fittest chromosome.
func (g *geneticNester) run() model.NestingResult {
	population := g.initPopulation()
	for i := range population {
		population[i].fitness = g.evaluate(population[i])
	}

	for gen := 0; gen < g.cfg.Generations; gen++ {
		sort.SliceStable(population, func(i, j int) bool {
			return population[i].fitness > population[j].fitness
		})

		next := make([]chromosome, 0, g.cfg.PopulationSize)

		// Elitism: the best individuals survive unchanged
		elite := g.cfg.EliteCount
		if elite > len(population) {
			elite = len(population)
		}
		for i := 0; i < elite; i++ {
			next = append(next, g.copyChromosome(population[i]))
		}

		for len(next) < g.cfg.PopulationSize {
			parent1 := g.tournamentSelect(population)
			parent2 := g.tournamentSelect(population)
			child := g.orderCrossover(parent1, parent2)
			g.mutate(&child)
			child.fitness = g.evaluate(child)
			next = append(next, child)
		}

		population = next
	}

	sort.SliceStable(population, func(i, j int) bool {
		return population[i].fitness > population[j].fitness
	})
	return g.decode(population[0])
}

// initPopulation creates random orderings, plus one chromosome seeded with
// the largest-first order so the search never starts worse than greedy.
func (g *geneticNester) initPopulation() []chromosome {
	n := len(g.instances)
	population := make([]chromosome, g.cfg.PopulationSize)

	for i := range population {
		genes := make([]gene, n)
		perm := g.rng.Perm(n)
		for j := 0; j < n; j++ {
			canRotate := g.nester.Config.AllowRotation &&
				g.instances[perm[j]].part.Grain == model.GrainNone
			genes[j] = gene{
				instIndex: perm[j],
				rotated:   canRotate && g.rng.Float64() < 0.5,
			}
		}
		population[i] = chromosome{genes: genes}
	}

	if g.cfg.PopulationSize > 0 {
		population[0] = g.greedyChromosome()
	}
	return population
}

// greedyChromosome orders instances the way the guillotine strategy does:
// area first, longest side second, label third.
func (g *geneticNester) greedyChromosome() chromosome {
	n := len(g.instances)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(i, j int) bool {
		pi, pj := g.instances[indices[i]].part, g.instances[indices[j]].part
		if pi.Area() != pj.Area() {
			return pi.Area() > pj.Area()
		}
		if pi.MaxDim() != pj.MaxDim() {
			return pi.MaxDim() > pj.MaxDim()
		}
		return pi.Label < pj.Label
	})

	genes := make([]gene, n)
	for i, idx := range indices {
		genes[i] = gene{instIndex: idx}
	}
	return chromosome{genes: genes}
}

// evaluate scores a chromosome by decoding it and measuring material
// efficiency, with penalties for unplaced parts and extra sheets.
func (g *geneticNester) evaluate(c chromosome) float64 {
	result := g.decode(c)
	if len(result.Sheets) == 0 {
		return 0
	}

	fitness := result.OverallUtilization() / 100.0
	fitness -= float64(len(result.Unplaced)) * 0.1
	fitness -= float64(len(result.Sheets)-1) * 0.05
	if fitness < 0 {
		fitness = 0
	}
	return fitness
}

// decode turns a chromosome into a packing by replaying its order through
// the first-fit placer.
func (g *geneticNester) decode(c chromosome) model.NestingResult {
	ordered := make([]instance, len(c.genes))
	for i, gn := range c.genes {
		inst := g.instances[gn.instIndex]
		if gn.rotated {
			inst.orient = orientRotatedFirst
		} else {
			inst.orient = orientNormalFirst
		}
		ordered[i] = inst
	}

	pool := append([]model.StockSheet(nil), g.pool...)
	return g.nester.packFirstFit(ordered, pool)
}

// tournamentSelect picks the fittest of a random tournament.
func (g *geneticNester) tournamentSelect(population []chromosome) chromosome {
	best := population[g.rng.Intn(len(population))]
	for i := 1; i < g.cfg.TournamentSize; i++ {
		candidate := population[g.rng.Intn(len(population))]
		if candidate.fitness > best.fitness {
			best = candidate
		}
	}
	return g.copyChromosome(best)
}

// orderCrossover implements Order Crossover (OX1) for permutation
// chromosomes: a segment from the first parent keeps its position, the
// rest fills in following the second parent's order.
func (g *geneticNester) orderCrossover(parent1, parent2 chromosome) chromosome {
	n := len(parent1.genes)
	if n <= 2 {
		return g.copyChromosome(parent1)
	}

	point1 := g.rng.Intn(n)
	point2 := g.rng.Intn(n)
	if point1 > point2 {
		point1, point2 = point2, point1
	}

	child := chromosome{genes: make([]gene, n)}
	inSegment := make(map[int]bool)
	for i := point1; i <= point2; i++ {
		child.genes[i] = parent1.genes[i]
		inSegment[parent1.genes[i].instIndex] = true
	}

	childIdx := (point2 + 1) % n
	for _, pg := range parent2.genes {
		if !inSegment[pg.instIndex] {
			child.genes[childIdx] = pg
			childIdx = (childIdx + 1) % n
		}
	}
	return child
}

// mutate applies swap, rotation-toggle and segment-inversion mutations.
func (g *geneticNester) mutate(c *chromosome) {
	n := len(c.genes)
	if n < 2 {
		return
	}

	if g.rng.Float64() < g.cfg.MutationRate {
		i := g.rng.Intn(n)
		j := g.rng.Intn(n)
		c.genes[i], c.genes[j] = c.genes[j], c.genes[i]
	}

	if g.rng.Float64() < g.cfg.MutationRate {
		i := g.rng.Intn(n)
		part := g.instances[c.genes[i].instIndex].part
		if g.nester.Config.AllowRotation && part.Grain == model.GrainNone {
			c.genes[i].rotated = !c.genes[i].rotated
		}
	}

	if g.rng.Float64() < g.cfg.MutationRate*0.5 {
		i := g.rng.Intn(n)
		j := g.rng.Intn(n)
		if i > j {
			i, j = j, i
		}
		for i < j {
			c.genes[i], c.genes[j] = c.genes[j], c.genes[i]
			i++
			j--
		}
	}
}

func (g *geneticNester) copyChromosome(c chromosome) chromosome {
	genes := make([]gene, len(c.genes))
	copy(genes, c.genes)
	return chromosome{genes: genes, fitness: c.fitness}
}
