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

import "errors"

// ErrNoFrameToCommit/ErrNoFrameToDiscard guard the Change Set's stack
// invariant: the base frame (index 0) is never folded or dropped, mirroring
// the teacher's StateDB.RevertToSnapshot panicking on an unknown snapshot id.
var (
	ErrNoFrameToCommit  = errors.New("invocation: no frame above the base to commit")
	ErrNoFrameToDiscard = errors.New("invocation: no frame above the base to discard")
)

// ErrCallDepthExceeded is returned when a cross-contract call would nest
// deeper than params.CallCreateDepth (§5, §9).
var ErrCallDepthExceeded = errors.New("invocation: maximum call depth exceeded")
