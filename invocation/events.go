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

package invocation

import "github.com/core-coin/contract-testing/common"

// ChainEventKind discriminates the ChainEvent variants an invocation can
// emit (§3). Events are accumulated per change frame and either spliced
// into the caller's event log on commit or dropped entirely on discard —
// the same rollback rule the Change Set applies to balances and state.
type ChainEventKind int

const (
	EventInterrupted ChainEventKind = iota
	EventResumed
	EventUpdated
	EventTransferred
	EventUpgraded
)

// ChainEvent records one observable step of an invocation.
type ChainEvent struct {
	Kind ChainEventKind

	Address  common.ContractAddress
	From     common.Address
	To       common.AccountAddress
	Amount   common.Amount
	Entry    common.EntrypointName
	Success  bool
	OldModule common.ModuleReference
	NewModule common.ModuleReference
}

// EventLog accumulates ChainEvents per change frame, mirroring the Change
// Set's own save/commit/discard stack so a discarded sub-call's events
// never surface (§3: "chain_events... dropped wholesale on discard").
type EventLog struct {
	stack [][]ChainEvent
}

// NewEventLog starts an event log with one empty base frame.
func NewEventLog() *EventLog {
	return &EventLog{stack: [][]ChainEvent{nil}}
}

// Save pushes a new empty event frame.
func (l *EventLog) Save() { l.stack = append(l.stack, nil) }

// Emit appends e to the current top frame.
func (l *EventLog) Emit(e ChainEvent) {
	top := len(l.stack) - 1
	l.stack[top] = append(l.stack[top], e)
}

// Commit splices the top frame's events onto the end of the frame below it.
func (l *EventLog) Commit() error {
	if len(l.stack) < 2 {
		return ErrNoFrameToCommit
	}
	top := l.stack[len(l.stack)-1]
	l.stack = l.stack[:len(l.stack)-1]
	below := len(l.stack) - 1
	l.stack[below] = append(l.stack[below], top...)
	return nil
}

// Discard drops the top frame's events entirely.
func (l *EventLog) Discard() error {
	if len(l.stack) < 2 {
		return ErrNoFrameToDiscard
	}
	l.stack = l.stack[:len(l.stack)-1]
	return nil
}

// All returns the base frame's accumulated events, valid once every nested
// frame has been committed or discarded.
func (l *EventLog) All() []ChainEvent { return l.stack[0] }
