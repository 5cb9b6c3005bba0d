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

// Package chain is the driver facade (§6 of the spec): the single entry
// point test code uses to create accounts, deploy modules, initialise and
// update contracts, and run read-only simulations, wiring together the
// Chain State Store, Change Set / Invocation Handler, Energy Accountant
// and the scripted interpreter stand-in.
//
// Grounded on the teacher's core/blockchain.go-style "one object owns the
// whole pipeline" shape, adapted from a persistent multi-block chain to a
// single in-memory chain state built for one simulation session.
package chain

import (
	"encoding/binary"
	"fmt"

	"github.com/core-coin/contract-testing/common"
	"github.com/core-coin/contract-testing/crypto"
	"github.com/core-coin/contract-testing/interp"
	"github.com/core-coin/contract-testing/invocation"
	"github.com/core-coin/contract-testing/simconfig"
	"github.com/core-coin/contract-testing/simlog"
	"github.com/core-coin/contract-testing/state"
	"github.com/core-coin/contract-testing/store"
)

// Chain is the simulator's driver object.
type Chain struct {
	store   *store.ChainStateStore
	runtime *scriptedRuntime
	handler *invocation.Handler
	rates   simconfig.ExchangeRates
	energy  simconfig.EnergyConstants
	log     *simlog.Logger

	nextAccountSeed uint64
}

// New starts an empty chain using the default exchange rates and energy
// constants (§6 Chain::new).
func New() *Chain {
	return NewWithPreset(simconfig.DefaultExchangeRates(), simconfig.DefaultEnergyConstants())
}

// NewWithPreset starts an empty chain with caller-supplied exchange rates
// and energy constants, the shape simconfig.DecodePreset feeds into.
func NewWithPreset(rates simconfig.ExchangeRates, ec simconfig.EnergyConstants) *Chain {
	s := store.New()
	runtime := newScriptedRuntime()
	return &Chain{
		store:   s,
		runtime: runtime,
		handler: invocation.NewHandler(s, runtime, rates, ec),
		rates:   rates,
		energy:  ec,
		log:     simlog.Root().With("component", "chain"),
	}
}

// CreateAccount registers a new account with the given starting balance
// and returns its deterministically-derived address (§6 create_account).
func (c *Chain) CreateAccount(balance common.Amount) common.AccountAddress {
	var seed [8]byte
	binary.LittleEndian.PutUint64(seed[:], c.nextAccountSeed)
	c.nextAccountSeed++
	addr := crypto.DeriveAccountAddress(seed[:])
	c.store.CreateAccount(addr, balance)
	c.log.Debug("account created", "address", addr, "balance", balance)
	return addr
}

// DeployCallerModule registers the scripted stand-in for the original test
// suite's "caller" module (init_caller / call / fail / trap), returning its
// content-addressed module reference (§6 module_deploy_wasm_v1, narrowed to
// the one scripted module this simulator ships).
func (c *Chain) DeployCallerModule() common.ModuleReference {
	bytecode := []byte("scripted-module:caller")
	ref := crypto.SHA3Hash(bytecode)
	c.runtime.registerCallerModule(ref)
	c.store.PutModule(&store.Module{
		Reference:   ref,
		Bytecode:    bytecode,
		Entrypoints: c.runtime.entrypointSet(ref),
	})
	c.log.Debug("module deployed", "reference", ref)
	return ref
}

// ContractInit runs a module's "init_<name>" entrypoint and, on success,
// registers the resulting contract instance in the store (§6
// contract_init_v1). Init entrypoints in this simulator never raise
// interrupts, matching the original test suite's init_caller.
func (c *Chain) ContractInit(owner common.AccountAddress, module common.ModuleReference, name common.ContractName, parameter common.OwnedParameter, amount common.Amount) (common.ContractAddress, error) {
	entry := common.EntrypointName("init_" + string(name))
	if !c.runtime.HasEntrypoint(module, entry) {
		return common.ContractAddress{}, fmt.Errorf("chain: module %s has no init entrypoint for %q", module, name)
	}
	interpreter, err := c.runtime.NewInterpreter(module, entry)
	if err != nil {
		return common.ContractAddress{}, err
	}
	initial := state.New()
	step, err := interpreter.Start(interp.Context{
		Sender:    common.AddressFromAccount(owner),
		Parameter: parameter,
		Amount:    amount,
		State:     initial,
	})
	if err != nil {
		return common.ContractAddress{}, err
	}
	if step.Outcome != interp.StepDone || step.Done.Kind != interp.DoneSuccess {
		return common.ContractAddress{}, fmt.Errorf("chain: init entrypoint for %q did not succeed", name)
	}

	addr := c.store.NextContractAddress()
	c.store.PutContract(addr, &store.Contract{
		Owner:       owner,
		Name:        name,
		SelfBalance: amount,
		Module:      module,
		State:       initial,
	})
	c.log.Debug("contract initialised", "address", addr, "name", name)
	return addr, nil
}

// ContractUpdate runs a top-level invocation against target, committing
// its effects into the store on success (§6 contract_update_v1).
func (c *Chain) ContractUpdate(invoker common.AccountAddress, target common.ContractAddress, entrypoint common.EntrypointName, parameter common.OwnedParameter, amount common.Amount, energyBudget uint64) (invocation.InvokeResponse, []invocation.ChainEvent, invocation.EnergyUsed, error) {
	return c.handler.InvokeTopLevel(invocation.InvokeEntrypointRequest{
		Invoker:    invoker,
		Sender:     common.AddressFromAccount(invoker),
		Target:     target,
		Entrypoint: entrypoint,
		Parameter:  parameter,
		Amount:     amount,
		Energy:     energyBudget,
	})
}

// ContractInvoke runs the same algorithm as ContractUpdate but always
// discards its outer frame, the read-only simulation operation added in
// §4.6 of SPEC_FULL.md.
func (c *Chain) ContractInvoke(invoker common.AccountAddress, target common.ContractAddress, entrypoint common.EntrypointName, parameter common.OwnedParameter, amount common.Amount, energyBudget uint64) (invocation.InvokeResponse, []invocation.ChainEvent, invocation.EnergyUsed, error) {
	return c.handler.InvokeReadOnly(invocation.InvokeEntrypointRequest{
		Invoker:    invoker,
		Sender:     common.AddressFromAccount(invoker),
		Target:     target,
		Entrypoint: entrypoint,
		Parameter:  parameter,
		Amount:     amount,
		Energy:     energyBudget,
	})
}

// SetBlockTime sets the simulated block time consulted by QueryBlockTime
// interrupts (§4.7 of SPEC_FULL.md).
func (c *Chain) SetBlockTime(t uint64) { c.store.SetBlockTime(t) }

// BlockTime returns the simulated block time.
func (c *Chain) BlockTime() uint64 { return c.store.BlockTime() }

// AccountBalance returns an account's current committed balance.
func (c *Chain) AccountBalance(addr common.AccountAddress) (common.Amount, bool) {
	return c.store.AccountBalance(addr)
}

// ContractSelfBalance returns a contract's current committed self-balance.
func (c *Chain) ContractSelfBalance(addr common.ContractAddress) (common.Amount, bool) {
	contract, ok := c.store.GetContract(addr)
	if !ok {
		return 0, false
	}
	return contract.SelfBalance, true
}
