package evolution

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/nvandessel/evoloop/internal/monitor"
	"github.com/nvandessel/evoloop/internal/oracle"
	"github.com/nvandessel/evoloop/internal/organism"
)

const (
	// interactionChance is the per-cycle probability that a living
	// organism attempts one oracle interaction.
	interactionChance = 0.25

	// answerTolerance is the absolute tolerance for judging a proposed
	// solution correct.
	answerTolerance = 0.1

	// parentFraction of the population is selected as parents, with a
	// floor of minParents.
	parentFraction = 0.2
	minParents     = 2

	// eliteFraction of the parents carry their genomes into the next
	// generation unmodified.
	eliteFraction = 0.5
)

// Recorder persists generation metrics and leap events as a side channel.
// Failures are reported, never fatal: the in-memory history is authoritative
// for the running process.
type Recorder interface {
	RecordGeneration(ctx context.Context, m monitor.GenerationMetrics) error
	RecordLeap(ctx context.Context, ev monitor.LeapEvent) error
}

// Loop drives the full simulation: one lifetime of cycles per generation,
// evaluation, then selection and reproduction.
type Loop struct {
	// Summary, Recorder and Logger are optional; nil disables them.
	Summary  *monitor.SummaryLogger
	Recorder Recorder
	Logger   *slog.Logger

	env                 *Environment
	detector            *monitor.LeapDetector
	generations         int
	cyclesPerGeneration int
}

// NewLoop creates a loop running the given number of generations, each a
// lifetime of cyclesPerGeneration cycles.
func NewLoop(env *Environment, detector *monitor.LeapDetector, generations, cyclesPerGeneration int) *Loop {
	return &Loop{
		env:                 env,
		detector:            detector,
		generations:         generations,
		cyclesPerGeneration: cyclesPerGeneration,
	}
}

// Env returns the loop's environment.
func (l *Loop) Env() *Environment {
	return l.env
}

// Run executes the complete simulation. The context is checked between
// generations; cancellation stops the run cleanly with the history
// accumulated so far intact.
func (l *Loop) Run(ctx context.Context) error {
	l.env.InitializePopulation()

	for gen := 1; gen <= l.generations; gen++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.runGenerationCycle()
		l.evaluateGeneration(ctx, gen)
		l.evolvePopulation()
	}
	return nil
}

// RunGeneration executes exactly one generation against the current
// population. The population must already be initialized.
func (l *Loop) RunGeneration(ctx context.Context, gen int) {
	l.runGenerationCycle()
	l.evaluateGeneration(ctx, gen)
	l.evolvePopulation()
}

// runGenerationCycle simulates one lifetime for the current population.
func (l *Loop) runGenerationCycle() {
	for cycle := 0; cycle < l.cyclesPerGeneration; cycle++ {
		for _, org := range l.env.Organisms {
			if !org.Alive {
				continue
			}
			org.ProcessCycle()

			if l.env.rng.Float64() < interactionChance {
				l.interact(org)
			}
		}
	}
}

// interact runs one oracle exchange: the organism proposes a solution, the
// outcome rewards or penalizes it, and the attempt is recorded either way.
func (l *Loop) interact(org *organism.Organism) {
	p := l.env.Oracle.PresentProblem()
	proposed := org.SolveProblem(p.Inputs)

	isCorrect := oracle.Judged(p.Type) && math.Abs(proposed-p.CorrectAnswer) < answerTolerance

	if isCorrect {
		org.GainResource(p.ResourceType, l.env.Oracle.RewardAmount(p.ResourceType))
	} else {
		org.TriggerError()
	}

	l.env.Monitor.RecordInteraction(p.Type, p.ResourceType, p.CorrectAnswer, proposed, isCorrect)
}

// evaluateGeneration aggregates the generation's metrics, runs leap
// detection, and appends one immutable record to the history and the
// persistent logs. The monitor's interaction buffer is reset afterwards.
func (l *Loop) evaluateGeneration(ctx context.Context, gen int) {
	defer l.env.Monitor.ResetGeneration()

	if len(l.env.Organisms) == 0 {
		return
	}

	avgAge, avgDiscrepancy, survivors := l.env.Aggregates()
	im := l.env.Monitor.GenerationMetrics()

	var accuracy *float64
	if im.Interactions > 0 {
		accuracy = &im.Accuracy
	}
	leap := l.detector.UpdateAndCheck(gen, im.CohesionMean, accuracy)

	m := monitor.GenerationMetrics{
		Generation:         gen,
		AverageAge:         avgAge,
		AverageDiscrepancy: avgDiscrepancy,
		SurvivorCount:      survivors,
		CohesionMean:       im.CohesionMean,
		CohesionMedian:     im.CohesionMedian,
		OracleAccuracy:     im.Accuracy,
		OracleInteractions: im.Interactions,
		LeapFlag:           leap != nil,
	}
	if leap != nil {
		z := leap.ZScore
		m.ZScore = &z
	}

	l.env.History = append(l.env.History, m)

	if l.Summary != nil {
		if err := l.Summary.Append(m); err != nil {
			l.warn("failed to append summary row", "generation", gen, "error", err)
		}
	}
	if l.Recorder != nil {
		if err := l.Recorder.RecordGeneration(ctx, m); err != nil {
			l.warn("failed to record generation", "generation", gen, "error", err)
		}
		if leap != nil {
			if err := l.Recorder.RecordLeap(ctx, *leap); err != nil {
				l.warn("failed to record leap", "generation", gen, "error", err)
			}
		}
	}

	l.logGeneration(gen, m, leap)
}

// logGeneration emits the per-generation operational summary.
func (l *Loop) logGeneration(gen int, m monitor.GenerationMetrics, leap *monitor.LeapEvent) {
	if l.Logger == nil {
		return
	}

	attrs := []any{
		"generation", gen,
		"avg_age", m.AverageAge,
		"avg_discrepancy", m.AverageDiscrepancy,
		"survivors", m.SurvivorCount,
		"population", l.env.PopulationSize,
		"interactions", m.OracleInteractions,
		"accuracy", m.OracleAccuracy,
	}
	if m.CohesionMean != nil {
		attrs = append(attrs, "cohesion_mean", *m.CohesionMean)
	}
	l.Logger.Info("generation complete", attrs...)

	if fittest := l.fittestSurvivor(); fittest != nil {
		l.Logger.Debug("fittest survivor", "generation", gen, "age", fittest.Age, "genome", fittest.Genome)
	}
	if leap != nil {
		l.Logger.Info("evolutionary leap detected",
			"generation", gen, "cohesion", leap.Cohesion, "z_score", leap.ZScore, "reason", leap.Reason)
	}
}

// fittestSurvivor returns the oldest living organism, or nil when none
// survive.
func (l *Loop) fittestSurvivor() *organism.Organism {
	var best *organism.Organism
	for _, org := range l.env.Organisms {
		if org.Alive && (best == nil || org.Age > best.Age) {
			best = org
		}
	}
	return best
}

// evolvePopulation selects parents and builds the next generation. Parents
// come from the survivors sorted by age; on total extinction the
// longest-lived dead organisms breed instead, which guarantees forward
// progress after a wipeout. With no parents at all (population size zero)
// the population is reinitialized from scratch.
func (l *Loop) evolvePopulation() {
	pool := l.env.Survivors()
	if len(pool) == 0 {
		l.warn("extinction event, breeding from the longest-lived organisms")
		pool = append(pool, l.env.Organisms...)
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Age > pool[j].Age
	})

	numParents := int(parentFraction * float64(l.env.PopulationSize))
	if numParents < minParents {
		numParents = minParents
	}
	if numParents > len(pool) {
		numParents = len(pool)
	}
	parents := pool[:numParents]

	if len(parents) == 0 {
		l.warn("no parents available, resetting population")
		l.env.InitializePopulation()
		return
	}

	next := make([]*organism.Organism, 0, l.env.PopulationSize)

	// Elitism: the very best parents pass their genomes on untouched.
	elites := int(eliteFraction * float64(len(parents)))
	for i := 0; i < elites && len(next) < l.env.PopulationSize; i++ {
		next = append(next, organism.NewWithGenome(parents[i].Genome))
	}

	// Fill the rest through crossover and mutation. Parent pairs are
	// drawn uniformly with replacement; a parent may pair with itself.
	for len(next) < l.env.PopulationSize {
		p1 := parents[l.env.rng.IntN(len(parents))]
		p2 := parents[l.env.rng.IntN(len(parents))]
		child := l.env.CrossoverAndMutate(p1.Genome, p2.Genome)
		next = append(next, organism.NewWithGenome(child))
	}

	l.env.Organisms = next
}

func (l *Loop) warn(msg string, args ...any) {
	if l.Logger != nil {
		l.Logger.Warn(msg, args...)
	}
}
