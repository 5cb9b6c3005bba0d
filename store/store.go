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

// Package store implements the Chain State Store (§3 of the spec): the
// authoritative, store-owned maps from account/contract/module identifiers
// to their current, committed data. Only a successful top-level invocation
// (via the invocation package's Handler) is allowed to mutate it.
//
// Grounded on the teacher's core/vm/cvm.go StateDB usage (Exist, GetCode,
// AddBalance, ...) and on core/vm/interface.go's StateDB contract, adapted
// from single-level Ethereum accounts to the spec's three-map model
// (accounts, contracts, modules) plus module/bytecode caches.
package store

import (
	"sort"
	"sync"

	"github.com/VictoriaMetrics/fastcache"
	lru "github.com/hashicorp/golang-lru"
	mapset "github.com/deckarep/golang-set"

	"github.com/core-coin/contract-testing/common"
	"github.com/core-coin/contract-testing/state"
)

// Account is the store's record for a single account (§3).
type Account struct {
	Balance common.Amount
}

// Contract is the store's record for a single contract instance (§3).
type Contract struct {
	Owner       common.AccountAddress
	Name        common.ContractName
	SelfBalance common.Amount
	Module      common.ModuleReference
	State       *state.MutableState
}

// Module is the store's record for a deployed module (§3): compiled
// bytecode (opaque here — module validation/parsing is an out-of-scope
// collaborator per §1) plus the set of entrypoints it exposes.
type Module struct {
	Reference   common.ModuleReference
	Bytecode    []byte
	Entrypoints mapset.Set
}

// HasEntrypoint reports whether name is one of m's exposed entrypoints.
func (m *Module) HasEntrypoint(name common.EntrypointName) bool {
	return m.Entrypoints != nil && m.Entrypoints.Contains(name)
}

// ChainStateStore is the authoritative chain state (§2 component 1).
type ChainStateStore struct {
	Accounts  map[common.AccountAddress]*Account
	Contracts map[common.ContractAddress]*Contract
	Modules   map[common.ModuleReference]*Module

	// moduleCache and bytecodeCache are pure speed shortcuts around the
	// maps above; they are never consulted for correctness, only to avoid
	// re-deriving a reference from bytes that were already hashed once
	// (§8 DOMAIN STACK of SPEC_FULL.md).
	moduleCache   *lru.Cache
	bytecodeCache *fastcache.Cache

	nextContractIndex uint64
	blockTime         uint64

	mu sync.Mutex
}

// New returns an empty Chain State Store (Chain::new in the spec's §6).
func New() *ChainStateStore {
	cache, err := lru.New(256)
	if err != nil {
		panic(err) // only fails for a non-positive size, which 256 never is
	}
	return &ChainStateStore{
		Accounts:      make(map[common.AccountAddress]*Account),
		Contracts:     make(map[common.ContractAddress]*Contract),
		Modules:       make(map[common.ModuleReference]*Module),
		moduleCache:   cache,
		bytecodeCache: fastcache.New(1 << 20),
	}
}

// CreateAccount registers a new account with the given starting balance.
func (s *ChainStateStore) CreateAccount(addr common.AccountAddress, balance common.Amount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Accounts[addr] = &Account{Balance: balance}
}

// AccountExists reports whether addr has been created.
func (s *ChainStateStore) AccountExists(addr common.AccountAddress) bool {
	_, ok := s.Accounts[addr]
	return ok
}

// AccountBalance returns the account's current committed balance.
func (s *ChainStateStore) AccountBalance(addr common.AccountAddress) (common.Amount, bool) {
	a, ok := s.Accounts[addr]
	if !ok {
		return 0, false
	}
	return a.Balance, true
}

// SetAccountBalance overwrites an account's committed balance; only called
// by the invocation Handler when folding a successful top-level commit.
func (s *ChainStateStore) SetAccountBalance(addr common.AccountAddress, balance common.Amount) {
	a, ok := s.Accounts[addr]
	if !ok {
		a = &Account{}
		s.Accounts[addr] = a
	}
	a.Balance = balance
}

// GetContract returns the contract at addr, if any.
func (s *ChainStateStore) GetContract(addr common.ContractAddress) (*Contract, bool) {
	c, ok := s.Contracts[addr]
	return c, ok
}

// NextContractAddress allocates the next (index, 0) contract address,
// mirroring go-core's nonce-based CreateAddress but specialised to the
// spec's (index, subindex) identifier scheme (§3, §6).
func (s *ChainStateStore) NextContractAddress() common.ContractAddress {
	addr := common.ContractAddress{Index: s.nextContractIndex}
	s.nextContractIndex++
	return addr
}

// PutContract registers a newly-initialised contract instance.
func (s *ChainStateStore) PutContract(addr common.ContractAddress, c *Contract) {
	s.Contracts[addr] = c
}

// GetModule returns the module registered under ref, consulting the LRU
// cache before the authoritative map.
func (s *ChainStateStore) GetModule(ref common.ModuleReference) (*Module, bool) {
	if cached, ok := s.moduleCache.Get(ref); ok {
		return cached.(*Module), true
	}
	m, ok := s.Modules[ref]
	if ok {
		s.moduleCache.Add(ref, m)
	}
	return m, ok
}

// PutModule registers a deployed module's bytecode and entrypoint set,
// caching the raw bytecode in the byte-keyed fastcache alongside the
// authoritative map.
func (s *ChainStateStore) PutModule(m *Module) {
	s.Modules[m.Reference] = m
	s.moduleCache.Add(m.Reference, m)
	s.bytecodeCache.Set(m.Reference.Bytes(), m.Bytecode)
}

// CachedBytecode returns the bytecode for ref via the fastcache shortcut,
// without touching the authoritative Modules map.
func (s *ChainStateStore) CachedBytecode(ref common.ModuleReference) ([]byte, bool) {
	return s.bytecodeCache.HasGet(nil, ref.Bytes())
}

// SetBlockTime sets the simulated block time consulted by QueryBlockTime
// interrupts (§4.7 of SPEC_FULL.md).
func (s *ChainStateStore) SetBlockTime(t uint64) { s.blockTime = t }

// BlockTime returns the simulated block time.
func (s *ChainStateStore) BlockTime() uint64 { return s.blockTime }

// SortedAccountAddresses returns every known account address in ascending
// order, the deterministic iteration the design notes require (§9): "all
// map iteration over account/contract maps uses the ordered representation".
func (s *ChainStateStore) SortedAccountAddresses() []common.AccountAddress {
	out := make([]common.AccountAddress, 0, len(s.Accounts))
	for a := range s.Accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return lessAccount(out[i], out[j]) })
	return out
}

// SortedContractAddresses returns every known contract address in
// ascending (index, subindex) order.
func (s *ChainStateStore) SortedContractAddresses() []common.ContractAddress {
	out := make([]common.ContractAddress, 0, len(s.Contracts))
	for a := range s.Contracts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Index != out[j].Index {
			return out[i].Index < out[j].Index
		}
		return out[i].Subindex < out[j].Subindex
	})
	return out
}

func lessAccount(a, b common.AccountAddress) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
