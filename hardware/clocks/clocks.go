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

// Rate is a clock rate in Hz.
type Rate uint64

// Time is a point in virtual time, measured in ticks of the common unit since
// power on.
type Time uint64

// Clock rates of the main processing units.
const (
	NTSC Rate = 21477272
	PAL  Rate = 21281370
	APU  Rate = 24607104
)

// Length of a video frame measured in main CPU cycles.
const (
	NTSCFrame = 357368
	PALFrame  = 425568
)

// the number of APU cycles in one APU instruction cycle. the APU rate above
// is the rate of the oscillator
const APUDivider = 24

// Microsecond is the number of microseconds in a second.
const Microsecond = 1000000
