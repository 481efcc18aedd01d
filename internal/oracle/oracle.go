// Package oracle generates problems for organisms to solve and maps solved
// problems to homeostatic rewards. Problem, resource and reward tables are
// immutable package data; given the injected randomness source, every call
// is a pure function of those tables.
package oracle

import (
	"math/rand/v2"

	"github.com/nvandessel/evoloop/internal/organism"
)

// Problem type names.
const (
	TypeMath  = "math_problem"
	TypeLogic = "logic_problem"
)

// Operand range for generated problems: random integers in [1, 10].
const (
	operandMin = 1
	operandMax = 10
)

// problemTypes is the fixed set a problem is drawn from, uniformly.
var problemTypes = [...]string{TypeMath, TypeLogic}

// resourceMap links each problem type to the resource solving it rewards.
var resourceMap = map[string]string{
	TypeMath:  organism.ResourceComputeLoad,
	TypeLogic: organism.ResourceSignalIntegrity,
}

// rewardAmounts is the fixed reward per resource type.
var rewardAmounts = map[string]float64{
	organism.ResourceComputeLoad:     35.0,
	organism.ResourceSignalIntegrity: 30.0,
}

// Problem is an ephemeral problem instance; it is never persisted.
type Problem struct {
	Type          string
	Inputs        []float64
	ResourceType  string
	CorrectAnswer float64
}

// Judged reports whether a problem type has a correctness check at all.
// Unjudged types are never considered correct.
func Judged(problemType string) bool {
	return problemType == TypeMath || problemType == TypeLogic
}

// Oracle emits problems and their rewards. It holds no state between calls
// beyond the shared randomness source.
type Oracle struct {
	rng *rand.Rand
}

// New creates an oracle drawing from rng.
func New(rng *rand.Rand) *Oracle {
	return &Oracle{rng: rng}
}

// PresentProblem generates one problem: a uniformly chosen type, two random
// integer operands, the resource type solving it rewards, and the correct
// answer. Math problems expect a+b; logic problems expect 2a-b.
func (o *Oracle) PresentProblem() Problem {
	problemType := problemTypes[o.rng.IntN(len(problemTypes))]

	a := float64(o.rng.IntN(operandMax-operandMin+1) + operandMin)
	b := float64(o.rng.IntN(operandMax-operandMin+1) + operandMin)

	var answer float64
	switch problemType {
	case TypeMath:
		answer = a + b
	case TypeLogic:
		answer = 2*a - b
	}

	return Problem{
		Type:          problemType,
		Inputs:        []float64{a, b},
		ResourceType:  resourceMap[problemType],
		CorrectAnswer: answer,
	}
}

// RewardAmount returns the fixed reward for a resource type, 0.0 for
// unknown types.
func (o *Oracle) RewardAmount(resourceType string) float64 {
	return rewardAmounts[resourceType]
}
