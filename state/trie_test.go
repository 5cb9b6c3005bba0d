package state

import (
	"bytes"
	"testing"
)

func TestGetMissingKey(t *testing.T) {
	s := New()
	if _, ok := s.Get([]byte("missing")); ok {
		t.Fatal("expected miss on empty state")
	}
}

func TestPutThenGet(t *testing.T) {
	s := New().Put([]byte("k"), []byte("v1"))
	got, ok := s.Get([]byte("k"))
	if !ok || !bytes.Equal(got, []byte("v1")) {
		t.Fatalf("got %q, %v", got, ok)
	}
}

func TestPutReturnsNewStateLeavesOriginalUntouched(t *testing.T) {
	s0 := New().Put([]byte("k"), []byte("v1"))
	s1 := s0.Put([]byte("k"), []byte("v2"))

	v0, _ := s0.Get([]byte("k"))
	v1, _ := s1.Get([]byte("k"))
	if !bytes.Equal(v0, []byte("v1")) {
		t.Errorf("s0 mutated: got %q", v0)
	}
	if !bytes.Equal(v1, []byte("v2")) {
		t.Errorf("s1 wrong: got %q", v1)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s0 := New().Put([]byte("k"), []byte("v1"))
	clone := s0.Clone()
	mutated := clone.Put([]byte("k"), []byte("v2"))

	v0, _ := s0.Get([]byte("k"))
	if !bytes.Equal(v0, []byte("v1")) {
		t.Fatalf("clone mutation leaked into original: %q", v0)
	}
	v1, _ := mutated.Get([]byte("k"))
	if !bytes.Equal(v1, []byte("v2")) {
		t.Fatalf("mutated clone missing write: %q", v1)
	}
}

func TestDeleteRemovesValueKeepsSiblings(t *testing.T) {
	s := New().Put([]byte("a"), []byte("1")).Put([]byte("b"), []byte("2"))
	s = s.Delete([]byte("a"))
	if _, ok := s.Get([]byte("a")); ok {
		t.Fatal("expected a to be deleted")
	}
	v, ok := s.Get([]byte("b"))
	if !ok || !bytes.Equal(v, []byte("2")) {
		t.Fatalf("sibling b was affected by delete of a: %q, %v", v, ok)
	}
}

func TestIterateOrdersByKey(t *testing.T) {
	s := New().Put([]byte{0x02}, []byte("two")).Put([]byte{0x01}, []byte("one")).Put([]byte{0x03}, []byte("three"))
	var keys [][]byte
	s.Iterate(func(key, value []byte) bool {
		keys = append(keys, append([]byte{}, key...))
		return true
	})
	if len(keys) != 3 {
		t.Fatalf("expected 3 keys, got %d", len(keys))
	}
	for i := 0; i < len(keys)-1; i++ {
		if bytes.Compare(keys[i], keys[i+1]) >= 0 {
			t.Fatalf("keys not ascending: %x then %x", keys[i], keys[i+1])
		}
	}
}

func TestIterateStopsEarly(t *testing.T) {
	s := New().Put([]byte{1}, []byte("a")).Put([]byte{2}, []byte("b"))
	count := 0
	s.Iterate(func(key, value []byte) bool {
		count++
		return false
	})
	if count != 1 {
		t.Fatalf("expected iteration to stop after first entry, got %d calls", count)
	}
}
