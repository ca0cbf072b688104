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

// Package audio defines the interface between the emulation and whatever is
// consuming the audio produced by coprocessors. Generating and mixing the
// main audio is outside of the scope of the emulation core.
package audio

// Sink receives audio samples from coprocessors.
type Sink interface {
	// the rate at which samples will be sent to CoprocessorSample()
	SetCoprocessorFrequency(hz uint32)

	// a single stereo sample
	CoprocessorSample(left int16, right int16)
}

// NullSink discards all audio.
type NullSink struct{}

// SetCoprocessorFrequency implements the Sink interface.
func (NullSink) SetCoprocessorFrequency(_ uint32) {}

// CoprocessorSample implements the Sink interface.
func (NullSink) CoprocessorSample(_ int16, _ int16) {}

// Counter is a Sink that counts samples. Useful for testing and for
// statistics.
type Counter struct {
	Frequency uint32
	Samples   int
	Silent    int
}

// SetCoprocessorFrequency implements the Sink interface.
func (c *Counter) SetCoprocessorFrequency(hz uint32) {
	c.Frequency = hz
}

// CoprocessorSample implements the Sink interface.
func (c *Counter) CoprocessorSample(left int16, right int16) {
	c.Samples++
	if left == 0 && right == 0 {
		c.Silent++
	}
}
