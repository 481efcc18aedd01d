// Package organism implements a homeostasis-driven digital organism. Each
// organism maintains a small set of internal variables that the environment
// continuously pushes away from their target bands; deviation accumulates as
// squared-error "discrepancy", and too much of it is fatal. The genome is a
// vector of linear weights used to propose solutions to oracle problems.
package organism

import "math/rand/v2"

// Resource type names double as homeostatic variable names. The oracle
// rewards solved problems with one of these.
const (
	ResourceComputeLoad     = "compute_load"
	ResourceSignalIntegrity = "signal_integrity"
)

const (
	// hardDeathCeiling kills an organism before any cycle processing.
	hardDeathCeiling = 4500.0

	// softDeathCeiling kills an organism after a cycle's discrepancy
	// has been accumulated.
	softDeathCeiling = 2500.0

	// errorPenalty is the discrepancy added for an incorrect solution.
	errorPenalty = 50.0

	// stressAmplifier scales pressure when a variable is already outside
	// its target band (accelerating decay under stress).
	stressAmplifier = 1.25
)

// Variable is one homeostatic quantity with its target band and the
// directional pressure the environment applies to it every cycle.
type Variable struct {
	Name    string
	Current float64

	// Low and High bound the target band; values outside it are
	// penalized quadratically.
	Low  float64
	High float64

	// PressureDirection is +1 or -1; PressureRate is the per-cycle
	// magnitude of drift in that direction.
	PressureDirection float64
	PressureRate      float64
}

// InBand reports whether the variable currently sits inside its target band.
func (v Variable) InBand() bool {
	return v.Current >= v.Low && v.Current <= v.High
}

// Organism holds a genome and the homeostatic state it must keep stable
// to survive.
type Organism struct {
	Genome    []float64
	Variables []Variable

	// CumulativeDiscrepancy is the lifetime accumulator of squared
	// out-of-band error. It never decreases while the organism lives.
	CumulativeDiscrepancy float64

	// Age counts cycles survived; frozen once the organism dies.
	Age int

	// Alive is terminal: once false it never becomes true again.
	Alive bool
}

// DefaultVariables returns the homeostatic baseline for a fresh organism.
// Both variables drift downward: compute_load toward underutilization and
// signal_integrity toward degradation.
func DefaultVariables() []Variable {
	return []Variable{
		{
			Name:              ResourceComputeLoad,
			Current:           50,
			Low:               30,
			High:              95,
			PressureDirection: -1,
			PressureRate:      0.34,
		},
		{
			Name:              ResourceSignalIntegrity,
			Current:           90,
			Low:               70,
			High:              100,
			PressureDirection: -1,
			PressureRate:      0.14,
		},
	}
}

// New creates an organism with a random genome of genomeSize weights drawn
// uniformly from [-1, 1).
func New(genomeSize int, rng *rand.Rand) *Organism {
	genome := make([]float64, genomeSize)
	for i := range genome {
		genome[i] = rng.Float64()*2 - 1
	}
	return NewWithGenome(genome)
}

// NewWithGenome creates an organism carrying a copy of genome with all other
// state reset fresh. Used for elites and crossover children.
func NewWithGenome(genome []float64) *Organism {
	g := make([]float64, len(genome))
	copy(g, genome)
	return &Organism{
		Genome:    g,
		Variables: DefaultVariables(),
		Alive:     true,
	}
}

// ProcessCycle advances the organism one simulated cycle: directional
// pressure moves every variable, out-of-band deviation accumulates as
// squared error, and the death ceilings are enforced. No-op when dead.
func (o *Organism) ProcessCycle() {
	if o.CumulativeDiscrepancy > hardDeathCeiling {
		o.Alive = false
	}
	if !o.Alive {
		return
	}

	o.Age++

	for i := range o.Variables {
		v := &o.Variables[i]
		delta := v.PressureDirection * v.PressureRate
		if !v.InBand() {
			delta *= stressAmplifier
		}
		v.Current += delta
	}

	o.CumulativeDiscrepancy += o.discrepancy()

	if o.CumulativeDiscrepancy > softDeathCeiling {
		o.Alive = false
	}
}

// discrepancy is the instantaneous squared out-of-band error summed over
// all variables.
func (o *Organism) discrepancy() float64 {
	var total float64
	for _, v := range o.Variables {
		switch {
		case v.Current < v.Low:
			d := v.Low - v.Current
			total += d * d
		case v.Current > v.High:
			d := v.Current - v.High
			total += d * d
		}
	}
	return total
}

// GainResource applies a reward to the named homeostatic variable. A load
// reward reduces the variable (clamped to the band's lower bound); an
// integrity reward restores it (clamped to the upper bound). Unknown
// resource types are ignored so the reward path stays total.
func (o *Organism) GainResource(resourceType string, amount float64) {
	for i := range o.Variables {
		v := &o.Variables[i]
		if v.Name != resourceType {
			continue
		}
		switch resourceType {
		case ResourceComputeLoad:
			v.Current -= amount
			if v.Current < v.Low {
				v.Current = v.Low
			}
		case ResourceSignalIntegrity:
			v.Current += amount
			if v.Current > v.High {
				v.Current = v.High
			}
		}
		return
	}
}

// TriggerError penalizes an incorrect solution. The added instability may
// push the organism over a death ceiling on its next cycle check, not
// immediately.
func (o *Organism) TriggerError() {
	o.CumulativeDiscrepancy += errorPenalty
}

// SolveProblem proposes a solution as the dot product of inputs with the
// genome's leading weights. An organism whose genome is shorter than the
// input vector cannot solve the problem and proposes 0.
func (o *Organism) SolveProblem(inputs []float64) float64 {
	if len(inputs) > len(o.Genome) {
		return 0
	}
	var solution float64
	for i, value := range inputs {
		solution += value * o.Genome[i]
	}
	return solution
}
