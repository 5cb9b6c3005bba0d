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

// Package scripted provides a hand-rolled stand-in for the WASM
// interpreter that is explicitly out of scope (§1 of the spec): a small
// state machine reproducing exactly the entrypoints the original Rust
// crate's error-code integration tests exercise (init_caller / call / fail
// / trap, see _examples/original_source/contract-testing/tests/
// error_codes.rs), enough to drive every interrupt kind the Invocation
// Handler and Interrupt Resolver need to be tested against.
package scripted

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/core-coin/contract-testing/common"
	"github.com/core-coin/contract-testing/interp"
)

// Instruction selects what the "call" entrypoint does with its single host
// interaction, mirroring error_codes.rs's instruction-tagged parameter.
type Instruction uint32

const (
	InstructionTransfer Instruction = 0
	InstructionCall     Instruction = 1
)

// CallParam is the decoded parameter passed to the "call" entrypoint.
type CallParam struct {
	Instruction    Instruction
	TransferTo     common.AccountAddress
	TransferAmount common.Amount
	CallContract   common.ContractAddress
	CallEntrypoint common.EntrypointName
	CallParameter  common.OwnedParameter
	CallAmount     common.Amount
}

// EncodeTransferParam builds the parameter bytes for instruction 0.
func EncodeTransferParam(to common.AccountAddress, amount common.Amount) common.OwnedParameter {
	buf := make([]byte, 4+common.AddressLength+8)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(InstructionTransfer))
	copy(buf[4:4+common.AddressLength], to.Bytes())
	binary.LittleEndian.PutUint64(buf[4+common.AddressLength:], uint64(amount))
	return buf
}

// EncodeCallParam builds the parameter bytes for instruction 1.
func EncodeCallParam(target common.ContractAddress, entrypoint common.EntrypointName, parameter common.OwnedParameter, amount common.Amount) common.OwnedParameter {
	name := []byte(entrypoint)
	buf := make([]byte, 0, 4+16+8+4+len(name)+4+len(parameter)+8)
	var tmp [8]byte

	binary.LittleEndian.PutUint32(tmp[:4], uint32(InstructionCall))
	buf = append(buf, tmp[:4]...)

	binary.LittleEndian.PutUint64(tmp[:], target.Index)
	buf = append(buf, tmp[:]...)
	binary.LittleEndian.PutUint64(tmp[:], target.Subindex)
	buf = append(buf, tmp[:]...)

	binary.LittleEndian.PutUint32(tmp[:4], uint32(len(name)))
	buf = append(buf, tmp[:4]...)
	buf = append(buf, name...)

	binary.LittleEndian.PutUint32(tmp[:4], uint32(len(parameter)))
	buf = append(buf, tmp[:4]...)
	buf = append(buf, parameter...)

	binary.LittleEndian.PutUint64(tmp[:], uint64(amount))
	buf = append(buf, tmp[:]...)

	return buf
}

// DecodeCallParam is the inverse of EncodeTransferParam/EncodeCallParam.
func DecodeCallParam(p common.OwnedParameter) (CallParam, error) {
	if len(p) < 4 {
		return CallParam{}, errors.New("scripted: parameter too short")
	}
	instr := Instruction(binary.LittleEndian.Uint32(p[0:4]))
	rest := p[4:]
	switch instr {
	case InstructionTransfer:
		if len(rest) != common.AddressLength+8 {
			return CallParam{}, errors.New("scripted: malformed transfer parameter")
		}
		to := common.BytesToAccountAddress(rest[:common.AddressLength])
		amount := common.Amount(binary.LittleEndian.Uint64(rest[common.AddressLength:]))
		return CallParam{Instruction: instr, TransferTo: to, TransferAmount: amount}, nil
	case InstructionCall:
		if len(rest) < 16+4 {
			return CallParam{}, errors.New("scripted: malformed call parameter")
		}
		index := binary.LittleEndian.Uint64(rest[0:8])
		subindex := binary.LittleEndian.Uint64(rest[8:16])
		rest = rest[16:]
		nameLen := binary.LittleEndian.Uint32(rest[0:4])
		rest = rest[4:]
		if uint32(len(rest)) < nameLen+4 {
			return CallParam{}, errors.New("scripted: malformed call parameter entrypoint")
		}
		name := string(rest[:nameLen])
		rest = rest[nameLen:]
		paramLen := binary.LittleEndian.Uint32(rest[0:4])
		rest = rest[4:]
		if uint32(len(rest)) < paramLen+8 {
			return CallParam{}, errors.New("scripted: malformed call parameter payload")
		}
		parameter := append([]byte{}, rest[:paramLen]...)
		rest = rest[paramLen:]
		amount := common.Amount(binary.LittleEndian.Uint64(rest))
		return CallParam{
			Instruction:    instr,
			CallContract:   common.ContractAddress{Index: index, Subindex: subindex},
			CallEntrypoint: common.EntrypointName(name),
			CallParameter:  parameter,
			CallAmount:     amount,
		}, nil
	default:
		return CallParam{}, fmt.Errorf("scripted: unknown instruction %d", instr)
	}
}

// InitCaller is the "init_caller" entrypoint: always succeeds, no state.
type InitCaller struct{}

func (InitCaller) Start(ctx interp.Context) (interp.Step, error) {
	return interp.Step{Outcome: interp.StepDone, Done: interp.Done{Kind: interp.DoneSuccess}}, nil
}

func (InitCaller) Resume(interp.Response) (interp.Step, error) {
	return interp.Step{}, errors.New("scripted: init_caller never raises an interrupt")
}

// Fail is the "fail" entrypoint: always rejects with -17, and writes a
// (possibly empty) return value, reproducing error_codes.rs's reject
// scenario exactly (reject code -17, return-value-presence bit set).
type Fail struct{}

func (Fail) Start(interp.Context) (interp.Step, error) {
	return interp.Step{Outcome: interp.StepDone, Done: interp.Done{
		Kind:           interp.DoneReject,
		RejectCode:     -17,
		HasReturnValue: true,
		ReturnValue:    []byte{},
	}}, nil
}

func (Fail) Resume(interp.Response) (interp.Step, error) {
	return interp.Step{}, errors.New("scripted: fail never raises an interrupt")
}

// Trap is the "trap" entrypoint: always traps.
type Trap struct{}

func (Trap) Start(interp.Context) (interp.Step, error) {
	return interp.Step{Outcome: interp.StepDone, Done: interp.Done{Kind: interp.DoneTrap}}, nil
}

func (Trap) Resume(interp.Response) (interp.Step, error) {
	return interp.Step{}, errors.New("scripted: trap never raises an interrupt")
}

// Call is the "call" entrypoint: decodes its parameter into exactly one
// host interrupt (Transfer or Call), then on resume writes the 64-bit
// encoded outcome of that interrupt into its own return value and succeeds
// — this is what lets a failed sub-call's return code surface unchanged as
// the outer contract_update's return_value in every error_codes.rs scenario.
type Call struct {
	awaiting bool
	param    CallParam
}

func NewCall() *Call { return &Call{} }

func (c *Call) Start(ctx interp.Context) (interp.Step, error) {
	param, err := DecodeCallParam(ctx.Parameter)
	if err != nil {
		return interp.Step{}, err
	}
	c.param = param
	c.awaiting = true
	switch param.Instruction {
	case InstructionTransfer:
		return interp.Step{Outcome: interp.StepInterrupt, Interrupt: interp.Interrupt{
			Kind: interp.InterruptTransfer,
			To:   param.TransferTo, Amount: param.TransferAmount,
		}}, nil
	case InstructionCall:
		return interp.Step{Outcome: interp.StepInterrupt, Interrupt: interp.Interrupt{
			Kind:       interp.InterruptCall,
			Contract:   param.CallContract,
			Entrypoint: param.CallEntrypoint,
			Parameter:  param.CallParameter,
			Amount:     param.CallAmount,
		}}, nil
	default:
		return interp.Step{}, fmt.Errorf("scripted: unknown instruction %d", param.Instruction)
	}
}

// Resume takes the already-encoded 64-bit return code the Interrupt
// Resolver computed for whichever interrupt Start raised, and writes it
// into this entrypoint's own return value — reproducing every
// error_codes.rs scenario, where a failed sub-call's code surfaces
// unchanged as the outer contract_update's return_value.
func (c *Call) Resume(resp interp.Response) (interp.Step, error) {
	if !c.awaiting {
		return interp.Step{}, errors.New("scripted: resume called out of order")
	}
	c.awaiting = false
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, resp.Code)
	return interp.Step{Outcome: interp.StepDone, Done: interp.Done{
		Kind:           interp.DoneSuccess,
		ReturnValue:    buf,
		HasReturnValue: true,
	}}, nil
}
