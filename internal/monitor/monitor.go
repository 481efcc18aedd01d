// Package monitor aggregates per-interaction outcomes into per-generation
// statistics and detects evolutionary leaps. The monitor owns the rolling
// interaction buffer for the current generation and the persistent
// generation-summary log; the leap detector turns noisy per-generation
// cohesion means into a reliable signal.
package monitor

import "math"

// Interaction records one oracle exchange within the current generation.
// Cohesion is the normalized closeness (0-1) between the proposed and
// correct answers. Interactions are ephemeral: the buffer is discarded at
// every generation boundary.
type Interaction struct {
	ProblemType  string
	ResourceType string
	Correct      bool
	AbsError     float64
	Cohesion     float64
}

// Metrics summarizes one generation's oracle interactions. The cohesion and
// error fields are nil when no interactions were recorded.
type Metrics struct {
	Interactions   int
	Accuracy       float64
	MeanAbsError   *float64
	CohesionMean   *float64
	CohesionMedian *float64
}

// Monitor buffers interaction records for the generation in flight.
// The buffer lifecycle is caller-controlled: GenerationMetrics is read-only
// and may be called repeatedly; ResetGeneration clears the buffer at
// generation boundaries.
type Monitor struct {
	interactions []Interaction
}

// New creates a monitor with an empty generation buffer.
func New() *Monitor {
	return &Monitor{}
}

// scaleFor is the per-problem-type normalization constant for cohesion.
// Heuristic, derived from the oracle's operand ranges.
func scaleFor(problemType string) float64 {
	switch problemType {
	case "math_problem", "logic_problem":
		return 20.0
	default:
		return 1.0
	}
}

// RecordInteraction computes the interaction's absolute error and cohesion
// score and appends it to the current generation's buffer.
func (m *Monitor) RecordInteraction(problemType, resourceType string, correctAnswer, proposedSolution float64, isCorrect bool) {
	absError := math.Abs(proposedSolution - correctAnswer)
	cohesion := math.Max(0, 1-absError/scaleFor(problemType))

	m.interactions = append(m.interactions, Interaction{
		ProblemType:  problemType,
		ResourceType: resourceType,
		Correct:      isCorrect,
		AbsError:     absError,
		Cohesion:     cohesion,
	})
}

// GenerationMetrics computes summary statistics over the current buffer
// without mutating it. With no interactions recorded it returns zero
// interactions, zero accuracy and nil cohesion fields.
func (m *Monitor) GenerationMetrics() Metrics {
	if len(m.interactions) == 0 {
		return Metrics{}
	}

	var correct int
	absErrors := make([]float64, 0, len(m.interactions))
	cohesions := make([]float64, 0, len(m.interactions))
	for _, it := range m.interactions {
		if it.Correct {
			correct++
		}
		absErrors = append(absErrors, it.AbsError)
		cohesions = append(cohesions, it.Cohesion)
	}

	mae := mean(absErrors)
	cohMean := mean(cohesions)
	cohMedian := median(cohesions)

	return Metrics{
		Interactions:   len(m.interactions),
		Accuracy:       float64(correct) / float64(len(m.interactions)),
		MeanAbsError:   &mae,
		CohesionMean:   &cohMean,
		CohesionMedian: &cohMedian,
	}
}

// ResetGeneration discards the interaction buffer. Called explicitly at
// generation boundaries after metrics have been computed.
func (m *Monitor) ResetGeneration() {
	m.interactions = nil
}
