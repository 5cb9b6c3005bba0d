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

// Package state implements the persistent, structurally-shared contract
// state the spec requires (§3, §9): "tentative state must be a
// persistent/structurally-shared trie so clone on save() is O(1) amortized;
// naive deep copy is disqualifying at realistic state sizes." It is a
// nibble-indexed immutable trie grounded on the shape of the teacher's
// (unseen-source, but well-documented-API) trie.Trie: Get/Update-style
// accessors over byte keys, here made persistent so Clone never walks the
// tree.
package state

// node is an immutable trie node. Once constructed a node is never mutated;
// Put always returns a new node, reusing any child that was not on the
// write path. That sharing is what makes Clone O(1).
type node struct {
	children [16]*node
	value    []byte
	hasValue bool
}

// MutableState is the cloneable snapshot referenced by a Change Frame's
// ContractChanges.State (§3). The zero value is an empty state.
type MutableState struct {
	root *node
}

// New returns an empty persistent state.
func New() *MutableState {
	return &MutableState{}
}

// Clone returns a snapshot sharing all existing nodes with s. It is O(1):
// only the MutableState header is copied, never the tree itself.
func (s *MutableState) Clone() *MutableState {
	if s == nil {
		return New()
	}
	return &MutableState{root: s.root}
}

// Get looks up key, returning (value, true) if present.
func (s *MutableState) Get(key []byte) ([]byte, bool) {
	if s == nil || s.root == nil {
		return nil, false
	}
	n := s.root
	for _, nib := range toNibbles(key) {
		if n == nil {
			return nil, false
		}
		n = n.children[nib]
	}
	if n == nil || !n.hasValue {
		return nil, false
	}
	out := make([]byte, len(n.value))
	copy(out, n.value)
	return out, true
}

// Put returns a new MutableState with key set to value, sharing every node
// not on the path to key with the receiver.
func (s *MutableState) Put(key, value []byte) *MutableState {
	nibbles := toNibbles(key)
	v := make([]byte, len(value))
	copy(v, value)
	var base *node
	if s != nil {
		base = s.root
	}
	return &MutableState{root: putPath(base, nibbles, v)}
}

// Delete returns a new MutableState with key removed, if present.
func (s *MutableState) Delete(key []byte) *MutableState {
	if s == nil || s.root == nil {
		return New()
	}
	return &MutableState{root: deletePath(s.root, toNibbles(key))}
}

// Iterate walks every stored key/value pair in ascending key order,
// matching the "determinism: all map iteration ... uses the ordered
// representation" design note (§9). It calls fn for each entry and stops
// early if fn returns false.
func (s *MutableState) Iterate(fn func(key, value []byte) bool) {
	if s == nil || s.root == nil {
		return
	}
	walk(s.root, nil, fn)
}

func putPath(n *node, nibbles []byte, value []byte) *node {
	if len(nibbles) == 0 {
		next := &node{value: value, hasValue: true}
		if n != nil {
			next.children = n.children
		}
		return next
	}
	next := &node{}
	if n != nil {
		next.children = n.children
		next.value, next.hasValue = n.value, n.hasValue
	}
	child := next.children[nibbles[0]]
	next.children[nibbles[0]] = putPath(child, nibbles[1:], value)
	return next
}

func deletePath(n *node, nibbles []byte) *node {
	if n == nil {
		return nil
	}
	if len(nibbles) == 0 {
		next := *n
		next.hasValue = false
		next.value = nil
		return &next
	}
	next := *n
	next.children[nibbles[0]] = deletePath(n.children[nibbles[0]], nibbles[1:])
	return &next
}

func walk(n *node, prefix []byte, fn func(key, value []byte) bool) bool {
	if n == nil {
		return true
	}
	if n.hasValue {
		if !fn(fromNibbles(prefix), n.value) {
			return false
		}
	}
	for i, child := range n.children {
		if child == nil {
			continue
		}
		if !walk(child, append(prefix, byte(i)), fn) {
			return false
		}
	}
	return true
}

func toNibbles(key []byte) []byte {
	out := make([]byte, 0, len(key)*2)
	for _, b := range key {
		out = append(out, b>>4, b&0x0f)
	}
	return out
}

func fromNibbles(nibbles []byte) []byte {
	out := make([]byte, len(nibbles)/2)
	for i := range out {
		out[i] = nibbles[2*i]<<4 | nibbles[2*i+1]
	}
	return out
}
