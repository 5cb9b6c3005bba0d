// Copyright 2014 The go-core Authors
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

// Package crypto provides the hash primitives the simulator needs. Real
// account/identity cryptography is an explicit out-of-scope collaborator
// (§1 of the spec); this package only derives the deterministic hashes used
// to key modules and to build test account/contract addresses, the same
// sha3 primitive the teacher's crypto.Keccak256Hash was built on.
package crypto

import (
	"golang.org/x/crypto/sha3"

	"github.com/core-coin/contract-testing/common"
)

// SHA3Hash hashes data and returns it as a 32-byte ModuleReference, the
// scheme used for content-addressing deployed module bytecode (§3, §6).
func SHA3Hash(data ...[]byte) (h common.ModuleReference) {
	d := sha3.New256()
	for _, b := range data {
		d.Write(b)
	}
	d.Sum(h[:0])
	return h
}

// SHA3 returns the raw 32-byte hash of data.
func SHA3(data ...[]byte) []byte {
	h := SHA3Hash(data...)
	return h[:]
}

// DeriveAccountAddress deterministically derives a test account address
// from a seed, for use by tests and fixtures that need distinct accounts
// without a real keypair (identity/signing is out of scope).
func DeriveAccountAddress(seed []byte) common.AccountAddress {
	h := SHA3Hash(seed)
	return common.BytesToAccountAddress(h[:])
}
