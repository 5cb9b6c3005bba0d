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

// AmountDelta is a signed displacement of an Amount, represented as a sign
// plus an unsigned magnitude rather than a wider signed integer so it can
// never silently wrap: applying it against a base Amount is the only place
// an underflow can surface, and it surfaces as common.ErrUnderflow (§3,
// mirroring the Rust crate's AmountDelta::Positive/Negative enum).
type AmountDelta struct {
	negative  bool
	magnitude common.Amount
}

// ZeroDelta is the identity AmountDelta.
func ZeroDelta() AmountDelta { return AmountDelta{} }

// PositiveDelta builds a positive displacement of a.
func PositiveDelta(a common.Amount) AmountDelta { return AmountDelta{magnitude: a} }

// NegativeDelta builds a negative displacement of a.
func NegativeDelta(a common.Amount) AmountDelta { return AmountDelta{negative: true, magnitude: a} }

// Add composes two deltas by signed addition.
func (d AmountDelta) Add(other AmountDelta) AmountDelta {
	if d.negative == other.negative {
		return AmountDelta{negative: d.negative, magnitude: d.magnitude + other.magnitude}
	}
	if d.magnitude >= other.magnitude {
		return AmountDelta{negative: d.negative, magnitude: d.magnitude - other.magnitude}
	}
	return AmountDelta{negative: other.negative, magnitude: other.magnitude - d.magnitude}
}

// Apply returns base displaced by d, or common.ErrUnderflow if the result
// would be negative.
func (d AmountDelta) Apply(base common.Amount) (common.Amount, error) {
	if !d.negative {
		return base + d.magnitude, nil
	}
	if d.magnitude > base {
		return 0, common.ErrUnderflow
	}
	return base - d.magnitude, nil
}

// IsZero reports whether d displaces by nothing.
func (d AmountDelta) IsZero() bool { return d.magnitude == 0 }
