// Package evolution owns the organism population and drives the generation
// lifecycle: simulate a lifetime of cycles, evaluate the generation, then
// select parents and reproduce. Selection favors longevity; reproduction
// combines elitism with single-point crossover and Gaussian mutation.
package evolution

import (
	"math/rand/v2"

	"github.com/nvandessel/evoloop/internal/monitor"
	"github.com/nvandessel/evoloop/internal/oracle"
	"github.com/nvandessel/evoloop/internal/organism"
)

const (
	// mutationRate is the per-gene probability of mutation during
	// reproduction.
	mutationRate = 0.1

	// mutationStd is the standard deviation of the Gaussian noise a
	// mutation adds to a gene.
	mutationStd = 0.5
)

// Environment manages the ecosystem: the population, the oracle, the
// monitor, and the in-memory generation history.
type Environment struct {
	PopulationSize int
	GenomeSize     int
	Organisms      []*organism.Organism
	Oracle         *oracle.Oracle
	Monitor        *monitor.Monitor

	// History holds one immutable metrics record per completed
	// generation; it is the in-memory source the plotting collaborator
	// consumes.
	History []monitor.GenerationMetrics

	rng *rand.Rand
}

// NewEnvironment creates an environment with an empty population. All
// randomness (genomes, oracle draws, crossover, mutation) flows from rng,
// so a seeded source makes runs reproducible.
func NewEnvironment(populationSize, genomeSize int, rng *rand.Rand) *Environment {
	return &Environment{
		PopulationSize: populationSize,
		GenomeSize:     genomeSize,
		Oracle:         oracle.New(rng),
		Monitor:        monitor.New(),
		rng:            rng,
	}
}

// InitializePopulation replaces the population with freshly randomized
// organisms.
func (e *Environment) InitializePopulation() {
	e.Organisms = make([]*organism.Organism, e.PopulationSize)
	for i := range e.Organisms {
		e.Organisms[i] = organism.New(e.GenomeSize, e.rng)
	}
}

// Survivors returns the living members of the population.
func (e *Environment) Survivors() []*organism.Organism {
	var alive []*organism.Organism
	for _, org := range e.Organisms {
		if org.Alive {
			alive = append(alive, org)
		}
	}
	return alive
}

// Aggregates computes population-level age and discrepancy averages and the
// survivor count. Zeros for an empty population.
func (e *Environment) Aggregates() (avgAge, avgDiscrepancy float64, survivors int) {
	if len(e.Organisms) == 0 {
		return 0, 0, 0
	}
	var ageSum, discSum float64
	for _, org := range e.Organisms {
		ageSum += float64(org.Age)
		discSum += org.CumulativeDiscrepancy
		if org.Alive {
			survivors++
		}
	}
	n := float64(len(e.Organisms))
	return ageSum / n, discSum / n, survivors
}

// CrossoverAndMutate produces a child genome: single-point crossover when
// the genome has more than one gene (point drawn uniformly from
// [1, size-1]), otherwise a copy of the first parent. Each gene then
// mutates independently with probability mutationRate by adding Gaussian
// noise. The child's length always equals the configured genome size.
func (e *Environment) CrossoverAndMutate(genome1, genome2 []float64) []float64 {
	var child []float64
	if e.GenomeSize > 1 {
		point := e.rng.IntN(e.GenomeSize-1) + 1
		child = make([]float64, 0, e.GenomeSize)
		child = append(child, genome1[:point]...)
		child = append(child, genome2[point:]...)
	} else {
		child = make([]float64, len(genome1))
		copy(child, genome1)
	}

	for i := range child {
		if e.rng.Float64() < mutationRate {
			child[i] += e.rng.NormFloat64() * mutationStd
		}
	}
	return child
}
