// Copyright 2020 by the Authors
// This file is part of the go-core library.
//
// The go-core library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-core library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-core library. If not, see <http://www.gnu.org/licenses/>.

// Package energy implements the Energy Accountant (§4.4 of the spec): a
// monotonically decreasing interpreter-energy counter, its charges for host
// work, and the two-step conversion down to a microtoken cost. Grounded on
// the teacher's core/vm/energy.go cost table and core/energypool.go counter.
package energy

import (
	"errors"
	"math"

	"github.com/core-coin/contract-testing/common"
	"github.com/core-coin/contract-testing/simconfig"
)

// ErrOutOfEnergy is returned whenever a charge would drive the remaining
// counter below zero (§4.4, §5 Cancellation).
var ErrOutOfEnergy = errors.New("out of energy")

// Fixed per-operation costs, named after the teacher's EnergyQuickStep-style
// constants (core/vm/energy.go).
const (
	QuickStep uint64 = 2
	FastStep  uint64 = 5
	SlowStep  uint64 = 10
)

// Interpreter is the fine-grained energy counter threaded through the
// interpreter: every interrupt the handler services charges against it.
type Interpreter uint64

// Charge deducts amount from the counter, failing with ErrOutOfEnergy
// before any effect takes place if amount exceeds what remains — "reject an
// interrupt before its effect if charge > remaining" (§4.4).
func (e *Interpreter) Charge(amount uint64) error {
	if uint64(*e) < amount {
		return ErrOutOfEnergy
	}
	*e -= Interpreter(amount)
	return nil
}

// Remaining returns the energy left in the counter.
func (e Interpreter) Remaining() uint64 { return uint64(e) }

// ToChain converts interpreter energy into the coarser chain energy via
// ceiling division by a fixed constant (§4.4).
func ToChain(interp uint64, constants simconfig.EnergyConstants) uint64 {
	div := constants.InterpreterToChainDiv
	if div == 0 {
		div = 1
	}
	return ceilDiv(interp, div)
}

// InterruptCost computes the fixed-plus-variable charge for an interrupt
// that copies n bytes of data (parameter, state, or logs) across the host
// boundary (§4.4).
func InterruptCost(n int, constants simconfig.EnergyConstants) uint64 {
	return constants.BaseInterruptCost + uint64(n)*constants.BytePerInterruptCost
}

// MicroCCDCost converts a chain-energy amount to a microtoken cost using
// integer rational exchange rates: ceil(energy * euroPerEnergy * microCCDPerEuro).
// No floating point is used anywhere in the conversion (§4.4, §9).
func MicroCCDCost(chainEnergy uint64, euroPerEnergy, microCCDPerEuro simconfig.Rational) (common.Amount, error) {
	if euroPerEnergy.Denominator == 0 || microCCDPerEuro.Denominator == 0 {
		return 0, errors.New("energy: exchange rate has a zero denominator")
	}
	// energy * (euroPerEnergy.Num / euroPerEnergy.Den) * (microCCDPerEuro.Num / microCCDPerEuro.Den)
	num, numOverflow := mulOverflow(chainEnergy, euroPerEnergy.Numerator)
	if numOverflow {
		return 0, errors.New("energy: numerator overflow converting to microtokens")
	}
	num, numOverflow = mulOverflow(num, microCCDPerEuro.Numerator)
	if numOverflow {
		return 0, errors.New("energy: numerator overflow converting to microtokens")
	}
	den := euroPerEnergy.Denominator * microCCDPerEuro.Denominator
	if den == 0 {
		return 0, errors.New("energy: denominator overflow converting to microtokens")
	}
	return common.Amount(ceilDiv(num, den)), nil
}

func ceilDiv(a, b uint64) uint64 {
	if b == 0 {
		return a
	}
	return (a + b - 1) / b
}

func mulOverflow(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}
	if a > math.MaxUint64/b {
		return 0, true
	}
	return a * b, false
}
