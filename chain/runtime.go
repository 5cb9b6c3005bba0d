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

package chain

import (
	"fmt"

	mapset "github.com/deckarep/golang-set"

	"github.com/core-coin/contract-testing/common"
	"github.com/core-coin/contract-testing/interp"
	"github.com/core-coin/contract-testing/interp/scripted"
)

// entrypointFactory builds a fresh interpreter instance for one call.
type entrypointFactory func() interp.Interpreter

// scriptedRuntime implements invocation.ModuleRuntime over the scripted
// stand-in interpreter (§1, §9, §11): every deployed module in this
// simulator is really just a named bundle of these factories, since a real
// WASM engine is an out-of-scope collaborator.
type scriptedRuntime struct {
	modules map[common.ModuleReference]map[common.EntrypointName]entrypointFactory
}

func newScriptedRuntime() *scriptedRuntime {
	return &scriptedRuntime{modules: make(map[common.ModuleReference]map[common.EntrypointName]entrypointFactory)}
}

// registerCallerModule wires up the "caller" test module's four
// entrypoints, reproducing _examples/original_source/contract-testing/
// tests/error_codes.rs exactly (init_caller / call / fail / trap).
func (r *scriptedRuntime) registerCallerModule(ref common.ModuleReference) {
	r.modules[ref] = map[common.EntrypointName]entrypointFactory{
		"init_caller": func() interp.Interpreter { return scripted.InitCaller{} },
		"call":        func() interp.Interpreter { return scripted.NewCall() },
		"fail":        func() interp.Interpreter { return scripted.Fail{} },
		"trap":        func() interp.Interpreter { return scripted.Trap{} },
	}
}

// entrypointSet returns the set of entrypoint names registered for ref, for
// use as a store.Module's Entrypoints set.
func (r *scriptedRuntime) entrypointSet(ref common.ModuleReference) mapset.Set {
	set := mapset.NewSet()
	for name := range r.modules[ref] {
		set.Add(name)
	}
	return set
}

func (r *scriptedRuntime) HasEntrypoint(module common.ModuleReference, entrypoint common.EntrypointName) bool {
	entries, ok := r.modules[module]
	if !ok {
		return false
	}
	_, ok = entries[entrypoint]
	return ok
}

func (r *scriptedRuntime) NewInterpreter(module common.ModuleReference, entrypoint common.EntrypointName) (interp.Interpreter, error) {
	entries, ok := r.modules[module]
	if !ok {
		return nil, fmt.Errorf("chain: module %s not registered", module)
	}
	factory, ok := entries[entrypoint]
	if !ok {
		return nil, fmt.Errorf("chain: module %s has no entrypoint %q", module, entrypoint)
	}
	return factory(), nil
}
