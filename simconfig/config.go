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

// Package simconfig holds the simulator's ambient configuration: default
// exchange rates and energy constants, loadable from TOML presets the way
// go-core's node configuration is decoded with github.com/naoina/toml.
package simconfig

import (
	"fmt"

	"github.com/naoina/toml"
)

// Rational is a numerator/denominator pair used for exchange-rate math so
// conversions never touch floating point (§4.4, §9 of the spec).
type Rational struct {
	Numerator   uint64 `toml:"numerator"`
	Denominator uint64 `toml:"denominator"`
}

// ExchangeRates bundles the two rates threaded through energy-to-microtoken
// conversion (§4.4, §6).
type ExchangeRates struct {
	EuroPerEnergy   Rational `toml:"euro_per_energy"`
	MicroCCDPerEuro Rational `toml:"micro_ccd_per_euro"`
}

// DefaultExchangeRates mirrors the values the original simulator ships as
// its out-of-the-box chain defaults.
func DefaultExchangeRates() ExchangeRates {
	return ExchangeRates{
		EuroPerEnergy:   Rational{Numerator: 1, Denominator: 50000},
		MicroCCDPerEuro: Rational{Numerator: 5_0000_0000, Denominator: 1},
	}
}

// EnergyConstants groups the fixed per-interrupt costs charged by the
// Energy Accountant (§4.4).
type EnergyConstants struct {
	BaseInterruptCost     uint64 `toml:"base_interrupt_cost"`
	BytePerInterruptCost  uint64 `toml:"byte_per_interrupt_cost"`
	InterpreterToChainDiv uint64 `toml:"interpreter_to_chain_div"`
}

// DefaultEnergyConstants are the constants used when a Chain is constructed
// with no explicit overrides.
func DefaultEnergyConstants() EnergyConstants {
	return EnergyConstants{
		BaseInterruptCost:     200,
		BytePerInterruptCost:  1,
		InterpreterToChainDiv: 1000,
	}
}

// Preset bundles exchange rates and energy constants under a name, for
// loading from an embedded TOML fixture (test tooling, not the excluded
// CLI front-end).
type Preset struct {
	Name          string        `toml:"name"`
	ExchangeRates ExchangeRates `toml:"exchange_rates"`
	Energy        EnergyConstants `toml:"energy"`
}

// DecodePreset parses a single TOML-encoded preset document.
func DecodePreset(data []byte) (Preset, error) {
	var p Preset
	if err := toml.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("simconfig: decode preset: %w", err)
	}
	return p, nil
}
