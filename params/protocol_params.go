// Copyright 2015 The go-core Authors
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

// Package params holds the protocol-level constants that bound a single
// invocation tree, trimmed down from the teacher's much larger fork-config
// parameter set (which governed an entire chain client) to the handful that
// still apply to an off-chain, single-invocation simulator.
package params

const (
	// CallCreateDepth is the maximum nesting depth of cross-contract calls
	// within one top-level invocation (§5: "no parallelism inside
	// execution", bounded recursion instead).
	CallCreateDepth uint64 = 1024

	// MaxParameterSize bounds the size of a single entrypoint parameter,
	// mirroring the teacher's MaxCodeSize bound on deployed bytecode.
	MaxParameterSize = 65535
)
