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

// Package interp defines the resumable, coroutine-like execution contract
// the Invocation Handler drives (§5, §9, §11 design notes). A real WASM
// interpreter is an out-of-scope collaborator (§1); this package only fixes
// the Start/Resume shape so the handler and resolver can be written and
// tested against a scripted stand-in (see interp/scripted) without ever
// depending on an actual bytecode engine.
package interp

import "github.com/core-coin/contract-testing/common"

// StepOutcome discriminates what a Start/Resume call produced.
type StepOutcome int

const (
	StepDone StepOutcome = iota
	StepInterrupt
)

// DoneKind discriminates how an interpreter run concluded.
type DoneKind int

const (
	DoneSuccess DoneKind = iota
	DoneReject
	DoneTrap
)

// Done is the terminal result of an interpreter run.
type Done struct {
	Kind           DoneKind
	ReturnValue    []byte
	HasReturnValue bool
	RejectCode     int32
}

// InterruptKind discriminates the host operations an interpreter can ask
// the Interrupt Resolver to service (§4.3).
type InterruptKind int

const (
	InterruptTransfer InterruptKind = iota
	InterruptCall
	InterruptUpgrade
	InterruptQueryAccountBalance
	InterruptQueryContractBalance
	InterruptQueryExchangeRates
	InterruptQueryBlockTime
)

// Interrupt is a host operation requested mid-execution. Only the fields
// relevant to Kind are meaningful.
type Interrupt struct {
	Kind InterruptKind

	// Transfer / Call
	To         common.AccountAddress
	Contract   common.ContractAddress
	Entrypoint common.EntrypointName
	Parameter  common.OwnedParameter
	Amount     common.Amount

	// Upgrade
	NewModule common.ModuleReference

	// QueryAccountBalance / QueryContractBalance
	QueryAccount  common.AccountAddress
	QueryContract common.ContractAddress

	// Energy the interrupt itself costs to service, independent of
	// whatever energy the resumed call spends (§4.3, §7 energy table).
	EnergyCost uint64
}

// Step is what Start/Resume returns.
type Step struct {
	Outcome   StepOutcome
	Done      Done
	Interrupt Interrupt
}

// Response is what the resolver hands back into Resume: the outcome of
// whatever interrupt was last raised.
type Response struct {
	Succeeded   bool
	ReturnValue []byte
	Balance     common.Amount
	Rates       ExchangeRatesView
	BlockTime   uint64

	// Code is the 64-bit encoded outcome of a Transfer or Call interrupt,
	// of a failed balance query, or of an unrecognised interrupt (a trap)
	// (§4.2), already computed by the Interrupt Resolver via
	// invocation.EncodeReturnCode. Kept here as a plain uint64 rather than
	// the invocation package's own InvokeResponse type to avoid an import
	// cycle (invocation depends on interp, not the other way around).
	Code uint64

	// StateChanged reports whether the callee's own contract state has a
	// different modification index after the interrupt was serviced than it
	// did before, the reentrancy signal a Call interrupt's resumed
	// interpreter consults (§3 Invariants, §4.2 step 7).
	StateChanged bool
}

// ExchangeRatesView is the payload of a successful QueryExchangeRates
// interrupt (§4.3), kept interpreter-agnostic (no simconfig dependency in
// this package) by carrying plain numerator/denominator pairs.
type ExchangeRatesView struct {
	EuroPerEnergyNumerator      uint64
	EuroPerEnergyDenominator    uint64
	MicroCCDPerEuroNumerator    uint64
	MicroCCDPerEuroDenominator  uint64
}

// Context is the initial state handed to Start: the parameter, the sender,
// amount transferred in, and the contract's own state to operate on.
type Context struct {
	Sender    common.Address
	Parameter common.OwnedParameter
	Amount    common.Amount
	State     interface{} // *state.MutableState; kept opaque to avoid an import cycle with scripted test doubles that don't need it
	Energy    uint64
}

// Interpreter models one resumable entrypoint execution (§9, §11). Start is
// called once; Resume is called once per interrupt the interpreter raised,
// in order, until it returns StepDone.
type Interpreter interface {
	Start(ctx Context) (Step, error)
	Resume(resp Response) (Step, error)
}
