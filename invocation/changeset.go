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

// Package invocation implements the Change Set and Invocation Handler
// (§2-§4 of the spec): the nested, rollback-capable view of tentative
// mutations a single top-level invocation accumulates before it either
// commits into the store.ChainStateStore or discards entirely.
//
// Grounded on the teacher's core/vm/cvm.go Call/Create snapshot-then-revert
// pattern (cvm.StateDB.Snapshot() / RevertToSnapshot(id)) and on the
// original Rust crate's src/invocation/types.rs ChangeSet/Changes model,
// adapted from Ethereum's single flat StateDB to an explicit frame stack so
// a discarded sub-call can never leak a partial mutation into its caller.
package invocation

import (
	"github.com/core-coin/contract-testing/common"
	"github.com/core-coin/contract-testing/state"
	"github.com/core-coin/contract-testing/store"
)

// AccountChange is the tentative mutation recorded for one account within a
// single change frame.
type AccountChange struct {
	OriginalBalance common.Amount
	BalanceDelta    AmountDelta
}

// ContractChange is the tentative mutation recorded for one contract
// instance within a single change frame. State and Module are nil when the
// frame doesn't override them; ModificationIndex only increases.
type ContractChange struct {
	ModificationIndex   uint32
	SelfBalanceDelta    AmountDelta
	SelfBalanceOriginal common.Amount
	State               *state.MutableState
	Module              *common.ModuleReference
}

// ChangeFrame is one level of the Change Set's stack. Frames are cheap to
// push: a new frame starts with empty maps and reads fall through to the
// frames below it, so save() never has to copy existing entries (§9: "all
// reads are O(stack depth)").
type ChangeFrame struct {
	Contracts map[common.ContractAddress]*ContractChange
	Accounts  map[common.AccountAddress]*AccountChange
}

func newChangeFrame() *ChangeFrame {
	return &ChangeFrame{
		Contracts: make(map[common.ContractAddress]*ContractChange),
		Accounts:  make(map[common.AccountAddress]*AccountChange),
	}
}

// ChangeSet is the stack of change frames backing one top-level invocation
// (§3). Index 0 is the base frame and is never committed or discarded.
type ChangeSet struct {
	store *store.ChainStateStore
	stack []*ChangeFrame
}

// NewChangeSet starts a fresh Change Set over s, with a single base frame.
func NewChangeSet(s *store.ChainStateStore) *ChangeSet {
	return &ChangeSet{store: s, stack: []*ChangeFrame{newChangeFrame()}}
}

// Depth returns the number of frames currently on the stack (1 means only
// the base frame is present).
func (c *ChangeSet) Depth() int { return len(c.stack) }

func (c *ChangeSet) top() *ChangeFrame { return c.stack[len(c.stack)-1] }

// Save pushes a new, empty frame above the current top (§4.1 save()). Used
// before any operation that may need to be rolled back, such as entering a
// nested call.
func (c *ChangeSet) Save() { c.stack = append(c.stack, newChangeFrame()) }

// Commit folds the top frame's contents into the frame below it and pops
// the stack (§4.1 commit()). Deltas compose by signed addition; tentative
// state/module overrides and the higher modification index win.
func (c *ChangeSet) Commit() error {
	if len(c.stack) < 2 {
		return ErrNoFrameToCommit
	}
	top := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	below := c.top()

	for addr, ac := range top.Accounts {
		if existing, ok := below.Accounts[addr]; ok {
			existing.BalanceDelta = existing.BalanceDelta.Add(ac.BalanceDelta)
		} else {
			below.Accounts[addr] = ac
		}
	}
	for addr, cc := range top.Contracts {
		existing, ok := below.Contracts[addr]
		if !ok {
			below.Contracts[addr] = cc
			continue
		}
		existing.SelfBalanceDelta = existing.SelfBalanceDelta.Add(cc.SelfBalanceDelta)
		if cc.State != nil {
			existing.State = cc.State
		}
		if cc.Module != nil {
			existing.Module = cc.Module
		}
		if cc.ModificationIndex > existing.ModificationIndex {
			existing.ModificationIndex = cc.ModificationIndex
		}
	}
	return nil
}

// Discard drops the top frame entirely (§4.1 discard()): none of its
// mutations are ever observed again.
func (c *ChangeSet) Discard() error {
	if len(c.stack) < 2 {
		return ErrNoFrameToDiscard
	}
	c.stack = c.stack[:len(c.stack)-1]
	return nil
}

// EffectiveBalance returns an account's balance as seen by the current top
// frame: the store's committed balance displaced by the signed sum of every
// frame's recorded delta for that account (§4.1, §8 testable property).
func (c *ChangeSet) EffectiveBalance(addr common.AccountAddress) (common.Amount, error) {
	base, ok := c.store.AccountBalance(addr)
	if !ok {
		return 0, store.ErrMissingAccount
	}
	return c.sumAccountDelta(addr, 0).Apply(base)
}

// sumAccountDelta sums the recorded delta for addr across every frame on
// the stack, top included. Its int argument is ignored.
func (c *ChangeSet) sumAccountDelta(addr common.AccountAddress, _ int) AmountDelta {
	sum := ZeroDelta()
	for _, frame := range c.stack {
		if ac, ok := frame.Accounts[addr]; ok {
			sum = sum.Add(ac.BalanceDelta)
		}
	}
	return sum
}

// EffectiveSelfBalance is the contract analogue of EffectiveBalance.
func (c *ChangeSet) EffectiveSelfBalance(addr common.ContractAddress) (common.Amount, error) {
	contract, ok := c.store.GetContract(addr)
	if !ok {
		return 0, store.ErrMissingContract
	}
	sum := ZeroDelta()
	for _, frame := range c.stack {
		if cc, ok := frame.Contracts[addr]; ok {
			sum = sum.Add(cc.SelfBalanceDelta)
		}
	}
	return sum.Apply(contract.SelfBalance)
}

// EffectiveState returns the tentative state for addr if any frame (scanned
// top-down) has overridden it, else the store's committed state (§4.1).
func (c *ChangeSet) EffectiveState(addr common.ContractAddress) (*state.MutableState, error) {
	for i := len(c.stack) - 1; i >= 0; i-- {
		if cc, ok := c.stack[i].Contracts[addr]; ok && cc.State != nil {
			return cc.State, nil
		}
	}
	contract, ok := c.store.GetContract(addr)
	if !ok {
		return nil, store.ErrMissingContract
	}
	return contract.State, nil
}

// EffectiveModule returns the tentative module reference for addr if any
// frame has overridden it (an Upgrade interrupt having taken effect), else
// the store's committed module.
func (c *ChangeSet) EffectiveModule(addr common.ContractAddress) (common.ModuleReference, error) {
	for i := len(c.stack) - 1; i >= 0; i-- {
		if cc, ok := c.stack[i].Contracts[addr]; ok && cc.Module != nil {
			return *cc.Module, nil
		}
	}
	contract, ok := c.store.GetContract(addr)
	if !ok {
		return common.ModuleReference{}, store.ErrMissingContract
	}
	return contract.Module, nil
}

// CurrentModIndex reads the top-most recorded modification index for addr,
// zero if the contract has not been touched within this Change Set (§4.1).
func (c *ChangeSet) CurrentModIndex(addr common.ContractAddress) uint32 {
	for i := len(c.stack) - 1; i >= 0; i-- {
		if cc, ok := c.stack[i].Contracts[addr]; ok {
			return cc.ModificationIndex
		}
	}
	return 0
}

// ApplyAccountDelta records delta against addr in the top frame, creating
// the entry (with OriginalBalance captured from the store) on first touch.
// The combined effective balance is validated before the delta is recorded,
// so a would-be underflow never mutates the frame (§4.1 guarantee).
func (c *ChangeSet) ApplyAccountDelta(addr common.AccountAddress, delta AmountDelta) error {
	base, ok := c.store.AccountBalance(addr)
	if !ok {
		return store.ErrMissingAccount
	}
	top := c.top()
	entry, ok := top.Accounts[addr]
	if !ok {
		entry = &AccountChange{OriginalBalance: base}
	}
	prospective := entry.BalanceDelta.Add(delta)

	sum := ZeroDelta()
	for i := 0; i < len(c.stack)-1; i++ {
		if ac, ok := c.stack[i].Accounts[addr]; ok {
			sum = sum.Add(ac.BalanceDelta)
		}
	}
	sum = sum.Add(prospective)
	if _, err := sum.Apply(base); err != nil {
		return err
	}

	entry.BalanceDelta = prospective
	top.Accounts[addr] = entry
	return nil
}

// ApplyContractDelta is the contract analogue of ApplyAccountDelta, applied
// against the contract's self-balance.
func (c *ChangeSet) ApplyContractDelta(addr common.ContractAddress, delta AmountDelta) error {
	contract, ok := c.store.GetContract(addr)
	if !ok {
		return store.ErrMissingContract
	}
	top := c.top()
	entry := c.contractEntry(top, addr, contract.SelfBalance)
	prospective := entry.SelfBalanceDelta.Add(delta)

	sum := ZeroDelta()
	for i := 0; i < len(c.stack)-1; i++ {
		if cc, ok := c.stack[i].Contracts[addr]; ok {
			sum = sum.Add(cc.SelfBalanceDelta)
		}
	}
	sum = sum.Add(prospective)
	if _, err := sum.Apply(contract.SelfBalance); err != nil {
		return err
	}

	entry.SelfBalanceDelta = prospective
	return nil
}

// SetState overrides addr's tentative state in the top frame and bumps its
// modification index.
func (c *ChangeSet) SetState(addr common.ContractAddress, s *state.MutableState) error {
	contract, ok := c.store.GetContract(addr)
	if !ok {
		return store.ErrMissingContract
	}
	top := c.top()
	entry := c.contractEntry(top, addr, contract.SelfBalance)
	entry.State = s
	entry.ModificationIndex = c.CurrentModIndex(addr) + 1
	return nil
}

// SetModule overrides addr's tentative module reference in the top frame
// (the effect of a successful Upgrade interrupt) and bumps its modification
// index.
func (c *ChangeSet) SetModule(addr common.ContractAddress, ref common.ModuleReference) error {
	contract, ok := c.store.GetContract(addr)
	if !ok {
		return store.ErrMissingContract
	}
	top := c.top()
	entry := c.contractEntry(top, addr, contract.SelfBalance)
	entry.Module = &ref
	entry.ModificationIndex = c.CurrentModIndex(addr) + 1
	return nil
}

func (c *ChangeSet) contractEntry(frame *ChangeFrame, addr common.ContractAddress, selfBalanceOriginal common.Amount) *ContractChange {
	entry, ok := frame.Contracts[addr]
	if !ok {
		entry = &ContractChange{SelfBalanceOriginal: selfBalanceOriginal, ModificationIndex: c.CurrentModIndex(addr)}
		frame.Contracts[addr] = entry
	}
	return entry
}

// CommitToStore folds the base frame's accumulated deltas and overrides
// into the Chain State Store. Called once by the Handler after a top-level
// invocation's outermost frame has succeeded (§4.2 step 8).
func (c *ChangeSet) CommitToStore() error {
	base := c.stack[0]
	for addr, ac := range base.Accounts {
		balance, err := ac.BalanceDelta.Apply(ac.OriginalBalance)
		if err != nil {
			return err
		}
		c.store.SetAccountBalance(addr, balance)
	}
	for addr, cc := range base.Contracts {
		contract, ok := c.store.GetContract(addr)
		if !ok {
			return store.ErrMissingContract
		}
		balance, err := cc.SelfBalanceDelta.Apply(cc.SelfBalanceOriginal)
		if err != nil {
			return err
		}
		contract.SelfBalance = balance
		if cc.State != nil {
			contract.State = cc.State
		}
		if cc.Module != nil {
			contract.Module = *cc.Module
		}
	}
	return nil
}
