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

// Package common holds the chain-level identifiers and amount arithmetic
// shared by every other package in the simulator: account addresses,
// contract addresses, module references and microtoken amounts.
package common

import (
	"encoding/hex"
	"fmt"
)

// AddressLength is the length of an account address in bytes.
const AddressLength = 32

// ModuleRefLength is the length of a module reference (content hash) in bytes.
const ModuleRefLength = 32

// AccountAddress identifies an account on the chain.
type AccountAddress [AddressLength]byte

// Bytes returns the raw bytes of a.
func (a AccountAddress) Bytes() []byte { return a[:] }

func (a AccountAddress) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// BytesToAccountAddress interprets b as an account address, left-padding or
// truncating as needed so the result always has AddressLength bytes.
func BytesToAccountAddress(b []byte) AccountAddress {
	var a AccountAddress
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// ContractAddress identifies a contract instance on the chain by its
// (index, subindex) pair, per §3 and §6 of the spec.
type ContractAddress struct {
	Index    uint64
	Subindex uint64
}

// NewContractAddress builds a ContractAddress with subindex 0.
func NewContractAddress(index uint64) ContractAddress {
	return ContractAddress{Index: index}
}

func (c ContractAddress) String() string {
	return fmt.Sprintf("<%d,%d>", c.Index, c.Subindex)
}

// ModuleReference identifies a deployed module by the content hash of its
// compiled bytecode.
type ModuleReference [ModuleRefLength]byte

func (m ModuleReference) Bytes() []byte { return m[:] }

func (m ModuleReference) String() string {
	return "0x" + hex.EncodeToString(m[:])
}

// Amount is an unsigned microtoken amount (micro-CCD). Negative
// displacements are represented separately by AmountDelta (see the
// invocation package) — an Amount by itself is never negative.
type Amount uint64

// AmountFromCCD converts a whole-token amount to microtokens.
func AmountFromCCD(ccd uint64) Amount { return Amount(ccd) * 1_000_000 }

func (a Amount) String() string { return fmt.Sprintf("%dµ", uint64(a)) }

// EntrypointName is the externally-callable name of a contract function.
type EntrypointName string

// ContractName is the name of a contract within a module; its constructor
// entrypoint is "init_<name>".
type ContractName string

// OwnedParameter is the raw parameter bytes passed to an entrypoint.
type OwnedParameter []byte

// Address is the sender of an invocation: either an account (only possible
// at the root of an invocation tree) or a contract (every nested call, since
// a contract's own address becomes the sender of whatever it calls next).
// Mirrors the Rust crate's Address enum referenced by InvocationData (§3).
type Address struct {
	IsAccount bool
	Account   AccountAddress
	Contract  ContractAddress
}

// AddressFromAccount wraps an account address as a sender Address.
func AddressFromAccount(a AccountAddress) Address { return Address{IsAccount: true, Account: a} }

// AddressFromContract wraps a contract address as a sender Address.
func AddressFromContract(c ContractAddress) Address { return Address{Contract: c} }

func (a Address) String() string {
	if a.IsAccount {
		return a.Account.String()
	}
	return a.Contract.String()
}
