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

package invocation

import (
	"encoding/binary"

	"github.com/core-coin/contract-testing/common"
)

// EnergyUsed is a chain-energy-denominated cost (§4.4's coarser unit,
// post energy.ToChain conversion), the quantity §6's contract_update and
// contract_invoke report back to a caller as energy_used.
type EnergyUsed uint64

// FailureCategory tags why an invocation or interrupt failed, the six
// category values the 64-bit return code's bits 39..32 carry (§4.2, §7).
// 0x05 is deliberately absent: it is reserved for targets that turn out to
// be v0 contracts, which this simulator does not support and which is
// folded into FailureMissingContract instead (see SPEC_FULL.md's
// resolution of the v0-contract Open Question).
type FailureCategory uint8

const (
	FailureLogicError        FailureCategory = 0x00
	FailureInsufficientFunds FailureCategory = 0x01
	FailureMissingAccount    FailureCategory = 0x02
	FailureMissingContract   FailureCategory = 0x03
	FailureInvalidEntrypoint FailureCategory = 0x04
	FailureTrap              FailureCategory = 0x06
)

// InvokeOutcome is the coarse shape of an InvokeResponse.
type InvokeOutcome uint8

const (
	OutcomeSuccess InvokeOutcome = iota
	OutcomeFailure
	OutcomeTrap
)

// InvokeResponse is the result of invoking an entrypoint or servicing an
// interrupt: either the contract ran to completion (successfully or via an
// explicit reject), or the interpreter trapped. Mirrors
// EntrypointInvocationHandler's invoke_entrypoint return type in the
// original Rust crate (InvokeEntrypointResult), collapsed to one struct
// since Go prefers a tagged struct over an algebraic enum here.
type InvokeResponse struct {
	Outcome InvokeOutcome

	// ReturnValue carries the bytes the entrypoint wrote, meaningful when
	// Outcome is OutcomeSuccess or when Outcome is OutcomeFailure with
	// Category FailureLogicError and HasReturnValue set.
	ReturnValue    []byte
	HasReturnValue bool

	// Category and RejectCode are meaningful only when Outcome is
	// OutcomeFailure; RejectCode only when Category is FailureLogicError.
	Category   FailureCategory
	RejectCode int32

	// NewStateChanged and NewBalance are meaningful only when Outcome is
	// OutcomeSuccess: whether the invocation left the target's own state
	// touched, and its resulting self-balance (§4.2 Success{return_value,
	// new_state_changed, new_balance}).
	NewStateChanged bool
	NewBalance      common.Amount
}

// EncodeReturnCode implements the bit-exact 64-bit encoding used to report
// interrupt outcomes back to the calling contract (§4.2), verified against
// every scenario in _examples/original_source/contract-testing/tests/
// error_codes.rs (e.g. a rejecting sub-call with reject code -17 and a
// produced return value encodes as 0x0100_ffff_ffef):
//
//	bits 47..40  return-value-presence flag (0x01 iff a return value exists)
//	bits 39..32  failure category tag (0x00 on success or LogicError)
//	bits 31..0   the i32 reject code, only meaningful for FailureLogicError
//
// The top two bytes (bits 63..48) are always zero.
func EncodeReturnCode(r InvokeResponse) uint64 {
	var present, category, reject uint64
	switch r.Outcome {
	case OutcomeSuccess:
		present = 1
	case OutcomeTrap:
		category = uint64(FailureTrap)
	case OutcomeFailure:
		category = uint64(r.Category)
		if r.Category == FailureLogicError {
			if r.HasReturnValue {
				present = 1
			}
			reject = uint64(uint32(r.RejectCode))
		}
	}
	return present<<40 | category<<32 | reject
}

// DecodeReturnCode is EncodeReturnCode's inverse, used by tests asserting
// the round-trip property (§8) and by any caller that only has the raw
// code (e.g. a contract that stored it and is inspecting it later).
func DecodeReturnCode(code uint64) (present bool, category FailureCategory, rejectCode int32) {
	present = (code>>40)&0xff == 1
	category = FailureCategory((code >> 32) & 0xff)
	rejectCode = int32(uint32(code))
	return
}

// EncodeReturnCodeBytes is EncodeReturnCode with the result packed as 8
// little-endian bytes, the form a scripted contract writes into its return
// buffer when forwarding a sub-call's outcome (§4.2, §8 scenarios).
func EncodeReturnCodeBytes(r InvokeResponse) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, EncodeReturnCode(r))
	return buf
}
