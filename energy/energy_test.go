package energy

import (
	"testing"

	"github.com/core-coin/contract-testing/simconfig"
)

func TestChargeRejectsBeforeEffect(t *testing.T) {
	var e Interpreter = 100
	if err := e.Charge(150); err != ErrOutOfEnergy {
		t.Fatalf("expected ErrOutOfEnergy, got %v", err)
	}
	if e.Remaining() != 100 {
		t.Fatalf("a failed charge must not mutate the counter, got %d", e.Remaining())
	}
}

func TestChargeDeductsOnSuccess(t *testing.T) {
	var e Interpreter = 100
	if err := e.Charge(40); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Remaining() != 60 {
		t.Fatalf("got %d want 60", e.Remaining())
	}
}

func TestToChainCeilingDivision(t *testing.T) {
	c := simconfig.EnergyConstants{InterpreterToChainDiv: 1000}
	if got := ToChain(1, c); got != 1 {
		t.Errorf("got %d want 1 (ceiling of 1/1000)", got)
	}
	if got := ToChain(1000, c); got != 1 {
		t.Errorf("got %d want 1", got)
	}
	if got := ToChain(1001, c); got != 2 {
		t.Errorf("got %d want 2", got)
	}
}

func TestMicroCCDCostNoFloatRoundUp(t *testing.T) {
	euroPerEnergy := simconfig.Rational{Numerator: 1, Denominator: 3}
	microCCDPerEuro := simconfig.Rational{Numerator: 1, Denominator: 1}
	got, err := MicroCCDCost(1, euroPerEnergy, microCCDPerEuro)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 1 * 1/3 = 0.333..., ceil => 1
	if got != 1 {
		t.Errorf("got %d want 1", got)
	}
}

func TestMicroCCDCostZeroDenominator(t *testing.T) {
	_, err := MicroCCDCost(10, simconfig.Rational{Numerator: 1}, simconfig.Rational{Numerator: 1, Denominator: 1})
	if err == nil {
		t.Fatal("expected error for zero denominator")
	}
}
