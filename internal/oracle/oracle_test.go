package oracle

import (
	"math/rand/v2"
	"testing"

	"github.com/nvandessel/evoloop/internal/organism"
)

func TestPresentProblem(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	o := New(rng)

	sawMath, sawLogic := false, false
	for i := 0; i < 200; i++ {
		p := o.PresentProblem()

		if len(p.Inputs) != 2 {
			t.Fatalf("inputs = %v, want two operands", p.Inputs)
		}
		for _, in := range p.Inputs {
			if in < 1 || in > 10 || in != float64(int(in)) {
				t.Fatalf("operand %f, want integer in [1, 10]", in)
			}
		}

		a, b := p.Inputs[0], p.Inputs[1]
		switch p.Type {
		case TypeMath:
			sawMath = true
			if p.CorrectAnswer != a+b {
				t.Errorf("math answer = %f, want %f", p.CorrectAnswer, a+b)
			}
			if p.ResourceType != organism.ResourceComputeLoad {
				t.Errorf("math resource = %q, want compute_load", p.ResourceType)
			}
		case TypeLogic:
			sawLogic = true
			if p.CorrectAnswer != 2*a-b {
				t.Errorf("logic answer = %f, want %f", p.CorrectAnswer, 2*a-b)
			}
			if p.ResourceType != organism.ResourceSignalIntegrity {
				t.Errorf("logic resource = %q, want signal_integrity", p.ResourceType)
			}
		default:
			t.Fatalf("unknown problem type %q", p.Type)
		}
	}

	if !sawMath || !sawLogic {
		t.Errorf("200 draws produced math=%v logic=%v, want both types", sawMath, sawLogic)
	}
}

func TestRewardAmount(t *testing.T) {
	o := New(rand.New(rand.NewPCG(1, 1)))

	if got := o.RewardAmount(organism.ResourceComputeLoad); got != 35.0 {
		t.Errorf("compute_load reward = %f, want 35.0", got)
	}
	if got := o.RewardAmount(organism.ResourceSignalIntegrity); got != 30.0 {
		t.Errorf("signal_integrity reward = %f, want 30.0", got)
	}
	if got := o.RewardAmount("unknown"); got != 0.0 {
		t.Errorf("unknown reward = %f, want 0.0", got)
	}
}

func TestJudged(t *testing.T) {
	if !Judged(TypeMath) || !Judged(TypeLogic) {
		t.Error("math and logic problems must be judged")
	}
	if Judged("riddle") {
		t.Error("unknown problem types must not be judged")
	}
}
