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

package clocks

import (
	"fmt"
	"math"
	"math/bits"
	"strings"

	"github.com/jetsetilly/lockstep/curated"
)

// MaxExactUnit is the largest common unit (in ticks per second) for which
// conversions are exact. It also serves as the fallback unit.
const MaxExactUnit = 1 << 40

// RateError is returned when a clock rate cannot be used.
const RateError = "clocks: invalid rate for unit %d (%d Hz)"

// TimeBase converts between local cycle counts and virtual time.
type TimeBase struct {
	rates []Rate

	// number of virtual time ticks in one second
	unit uint64

	// whether every rate divides unit exactly
	exact bool
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// NewTimeBase is the preferred method of initialisation for the TimeBase type.
// The index of a rate in the argument list is the identifier used with the
// conversion functions.
func NewTimeBase(rates ...Rate) (*TimeBase, error) {
	tb := &TimeBase{
		rates: make([]Rate, len(rates)),
		unit:  1,
		exact: true,
	}
	copy(tb.rates, rates)

	for i, r := range rates {
		if r == 0 || r > MaxExactUnit {
			return nil, curated.Errorf(RateError, i, r)
		}

		if tb.exact {
			g := gcd(tb.unit, uint64(r))
			hi, lcm := bits.Mul64(tb.unit/g, uint64(r))
			if hi != 0 || lcm > MaxExactUnit {
				tb.exact = false
			} else {
				tb.unit = lcm
			}
		}
	}

	if !tb.exact {
		tb.unit = MaxExactUnit
	}

	return tb, nil
}

func (tb *TimeBase) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("unit: %d ticks/sec", tb.unit))
	if !tb.exact {
		s.WriteString(" (rounded)")
	}
	for i, r := range tb.rates {
		s.WriteString(fmt.Sprintf("\n%d: %d Hz", i, r))
	}
	return s.String()
}

// Unit returns the number of virtual time ticks in one second.
func (tb *TimeBase) Unit() uint64 {
	return tb.unit
}

// Exact returns true if conversions are exact.
func (tb *TimeBase) Exact() bool {
	return tb.exact
}

// Len returns the number of rates in the time base.
func (tb *TimeBase) Len() int {
	return len(tb.rates)
}

// Rate returns the clock rate of the identified unit.
func (tb *TimeBase) Rate(id int) Rate {
	return tb.rates[id]
}

// muldiv returns floor(a*b/c) using a 128 bit intermediate. the result
// saturates if it doesn't fit in 64 bits
func muldiv(a, b, c uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi >= c {
		return math.MaxUint64
	}
	q, _ := bits.Div64(hi, lo, c)
	return q
}

// ToCommon converts an absolute local cycle count to virtual time.
func (tb *TimeBase) ToCommon(id int, local uint64) Time {
	r := uint64(tb.rates[id])
	if tb.exact {
		hi, lo := bits.Mul64(local, tb.unit/r)
		if hi != 0 {
			return Time(math.MaxUint64)
		}
		return Time(lo)
	}
	return Time(muldiv(local, tb.unit, r))
}

// ToLocal converts virtual time to the number of whole local cycles that have
// elapsed by that time.
func (tb *TimeBase) ToLocal(id int, t Time) uint64 {
	r := uint64(tb.rates[id])
	if tb.exact {
		return uint64(t) / (tb.unit / r)
	}
	return muldiv(uint64(t), r, tb.unit)
}

// CyclesUntil returns the number of local cycles required for a unit with the
// current absolute count of local cycles to reach at least the target time.
func (tb *TimeBase) CyclesUntil(id int, local uint64, target Time) uint64 {
	if tb.ToCommon(id, local) >= target {
		return 0
	}
	n := tb.ToLocal(id, target)
	if tb.ToCommon(id, n) < target {
		n++
	}
	return n - local
}

// Convert an absolute local cycle count of one unit to the equivalent count
// of another unit.
func (tb *TimeBase) Convert(from int, to int, local uint64) uint64 {
	return tb.ToLocal(to, tb.ToCommon(from, local))
}

// FromMicroseconds converts a duration in microseconds to virtual time ticks.
func (tb *TimeBase) FromMicroseconds(us uint64) Time {
	return Time(muldiv(us, tb.unit, Microsecond))
}
