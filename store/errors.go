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

package store

import "errors"

// These sentinels name the store-level lookup failures the invocation
// Handler maps onto return-code failure categories (§4.2, §7).
var (
	ErrMissingAccount    = errors.New("store: account does not exist")
	ErrMissingContract   = errors.New("store: contract instance does not exist")
	ErrMissingModule     = errors.New("store: module is not deployed")
	ErrInvalidEntrypoint = errors.New("store: module does not expose entrypoint")
)
