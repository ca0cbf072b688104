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

package clocks_test

import (
	"math"
	"testing"

	"github.com/jetsetilly/lockstep/curated"
	"github.com/jetsetilly/lockstep/hardware/clocks"
	"github.com/jetsetilly/lockstep/test"
)

func TestExactUnit(t *testing.T) {
	tb, err := clocks.NewTimeBase(4, 6, 10)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, tb.Exact())
	test.ExpectEquality(t, tb.Unit(), uint64(60))

	test.ExpectEquality(t, tb.ToCommon(0, 1), clocks.Time(15))
	test.ExpectEquality(t, tb.ToCommon(1, 1), clocks.Time(10))
	test.ExpectEquality(t, tb.ToCommon(2, 3), clocks.Time(18))
	test.ExpectEquality(t, tb.ToLocal(2, 18), uint64(3))
	test.ExpectEquality(t, tb.ToLocal(2, 17), uint64(2))

	// 4 cycles of the first unit is one second, the same as 6 cycles of the
	// second unit
	test.ExpectEquality(t, tb.Convert(0, 1, 4), uint64(6))
}

func TestRoundedUnit(t *testing.T) {
	tb, err := clocks.NewTimeBase(clocks.NTSC, clocks.APU, clocks.NTSC/5)
	test.DemandSuccess(t, err)
	test.ExpectFailure(t, tb.Exact())
	test.ExpectEquality(t, tb.Unit(), uint64(clocks.MaxExactUnit))

	// one second of each clock is one second of virtual time
	for id := range tb.Len() {
		v := tb.ToCommon(id, uint64(tb.Rate(id)))
		test.ExpectEquality(t, v, clocks.Time(clocks.MaxExactUnit), id)
	}
}

func TestInvalidRate(t *testing.T) {
	_, err := clocks.NewTimeBase(clocks.NTSC, 0)
	test.ExpectSuccess(t, curated.Is(err, clocks.RateError))
	_, err = clocks.NewTimeBase(clocks.MaxExactUnit + 1)
	test.ExpectSuccess(t, curated.Is(err, clocks.RateError))
}

// converting from local to common and back again must not drift, regardless
// of how many cycles have elapsed
func TestRoundTrip(t *testing.T) {
	tb, err := clocks.NewTimeBase(clocks.NTSC, clocks.APU, clocks.NTSC/5, 7600000)
	test.DemandSuccess(t, err)

	for id := range tb.Len() {
		for x := uint64(0); x < 1000000000; x += 999983 {
			y := tb.ToLocal(id, tb.ToCommon(id, x))
			if y != x && y != x-1 {
				t.Fatalf("round trip error for unit %d: %d became %d", id, x, y)
			}
		}
	}
}

func TestCyclesUntil(t *testing.T) {
	tb, err := clocks.NewTimeBase(clocks.NTSC, clocks.APU)
	test.DemandSuccess(t, err)

	target := tb.ToCommon(0, 1000)
	n := tb.CyclesUntil(1, 0, target)
	test.ExpectSuccess(t, tb.ToCommon(1, n) >= target)
	test.ExpectSuccess(t, tb.ToCommon(1, n-1) < target)

	// already reached
	test.ExpectEquality(t, tb.CyclesUntil(0, 1000, target), uint64(0))
}

func TestMicroseconds(t *testing.T) {
	tb, err := clocks.NewTimeBase(1000, 2000)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, tb.FromMicroseconds(clocks.Microsecond), clocks.Time(tb.Unit()))
	test.ExpectEquality(t, tb.FromMicroseconds(500000), clocks.Time(1000))
}

func TestSaturation(t *testing.T) {
	exact, err := clocks.NewTimeBase(4, 6, 10)
	test.DemandSuccess(t, err)
	rounded, err := clocks.NewTimeBase(clocks.NTSC, clocks.APU)
	test.DemandSuccess(t, err)

	// the largest count that converts without overflow
	edge := uint64(math.MaxUint64) / 15
	test.ExpectEquality(t, exact.ToCommon(0, edge), clocks.Time(edge*15))

	// conversions at the top of the range saturate rather than wrap in both
	// kinds of time base
	for _, tb := range []*clocks.TimeBase{exact, rounded} {
		test.ExpectEquality(t, tb.ToCommon(0, math.MaxUint64), clocks.Time(math.MaxUint64))
		test.ExpectEquality(t, tb.ToCommon(0, math.MaxUint64/2), clocks.Time(math.MaxUint64))

		var prev clocks.Time
		for _, n := range []uint64{1, 1 << 32, 1 << 60, 1 << 62, math.MaxUint64} {
			v := tb.ToCommon(0, n)
			test.ExpectSuccess(t, v >= prev, n)
			prev = v
		}
	}

	test.ExpectEquality(t, exact.ToCommon(0, edge+1), clocks.Time(math.MaxUint64))
}
