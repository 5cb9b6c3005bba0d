package crypto

import "testing"

func TestSHA3HashDeterministic(t *testing.T) {
	a := SHA3Hash([]byte("module bytecode"))
	b := SHA3Hash([]byte("module bytecode"))
	if a != b {
		t.Fatal("expected deterministic hash")
	}
}

func TestSHA3HashDiffers(t *testing.T) {
	a := SHA3Hash([]byte("module a"))
	b := SHA3Hash([]byte("module b"))
	if a == b {
		t.Fatal("expected different bytecode to hash differently")
	}
}

func TestDeriveAccountAddressDeterministic(t *testing.T) {
	a := DeriveAccountAddress([]byte("acc-0"))
	b := DeriveAccountAddress([]byte("acc-0"))
	if a != b {
		t.Fatal("expected deterministic derivation")
	}
}
