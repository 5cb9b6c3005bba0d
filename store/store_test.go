package store

import (
	"testing"

	"github.com/core-coin/contract-testing/common"
)

func TestCreateAccountAndBalance(t *testing.T) {
	s := New()
	addr := common.BytesToAccountAddress([]byte{1})
	s.CreateAccount(addr, 500)
	got, ok := s.AccountBalance(addr)
	if !ok || got != 500 {
		t.Fatalf("got %d, %v", got, ok)
	}
}

func TestGetModuleUsesCacheAfterFirstLookup(t *testing.T) {
	s := New()
	ref := common.ModuleReference{1}
	s.PutModule(&Module{Reference: ref, Bytecode: []byte("x")})
	if _, ok := s.GetModule(ref); !ok {
		t.Fatal("expected module to be found")
	}
	bytecode, ok := s.CachedBytecode(ref)
	if !ok || string(bytecode) != "x" {
		t.Fatalf("got %q, %v", bytecode, ok)
	}
}

func TestSortedAccountAddressesAreDeterministic(t *testing.T) {
	s := New()
	a := common.BytesToAccountAddress([]byte{2})
	b := common.BytesToAccountAddress([]byte{1})
	s.CreateAccount(a, 0)
	s.CreateAccount(b, 0)
	sorted := s.SortedAccountAddresses()
	if len(sorted) != 2 || sorted[0] != b || sorted[1] != a {
		t.Fatalf("expected ascending order, got %v", sorted)
	}
}
