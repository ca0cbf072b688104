// This file is part of Lockstep.
//
// Lockstep is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Lockstep is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Lockstep.  If not, see <https://www.gnu.org/licenses/>.

// Package clocks defines the clock rates of the emulated console and the
// TimeBase type, which converts between the local cycle counts of each
// processing unit and a common virtual time.
//
// The common unit of virtual time is chosen so that every registered rate
// divides it exactly, when that is possible. In that case a local cycle count
// converts to virtual time with a single multiplication and the conversion is
// exact in both directions. When the least common multiple of the rates is
// too large the unit is fixed at MaxExactUnit ticks per second and
// conversions are rounded.
//
// The rounding rule is the same for both directions. Results are truncated
// toward zero and conversions are only ever applied to absolute counters,
// never to accumulated deltas. A round trip from local cycles to virtual time
// and back will therefore return the original count or one less, and the
// error never grows over the lifetime of the emulation.
package clocks
