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

// Package wavwriter allows writing of coprocessor audio to disk as a WAV
// file. Note that audio data is buffered in memory in its entirety, and
// written to disk when End() is called. It is therefore probably only
// suitable for testing purposes.
package wavwriter

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/jetsetilly/lockstep/curated"
	"github.com/jetsetilly/lockstep/logger"
)

// the frequency used if the coprocessors never set one
const defaultFrequency = 44100

// WavWriter implements the audio.Sink interface.
type WavWriter struct {
	filename  string
	frequency uint32
	buffer    []int
}

// New is the preferred method of initialisation for the WavWriter type.
func New(filename string) (*WavWriter, error) {
	aw := &WavWriter{
		filename:  filename,
		frequency: defaultFrequency,
		buffer:    make([]int, 0),
	}

	return aw, nil
}

// SetCoprocessorFrequency implements the audio.Sink interface.
func (aw *WavWriter) SetCoprocessorFrequency(hz uint32) {
	aw.frequency = hz
}

// CoprocessorSample implements the audio.Sink interface.
func (aw *WavWriter) CoprocessorSample(left int16, right int16) {
	aw.buffer = append(aw.buffer, int(left), int(right))
}

// Samples returns the number of stereo samples buffered so far.
func (aw *WavWriter) Samples() int {
	return len(aw.buffer) / 2
}

// End writes the buffered audio to disk.
func (aw *WavWriter) End() (rerr error) {
	f, err := os.Create(aw.filename)
	if err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}
	defer func() {
		err := f.Close()
		if err != nil && rerr == nil {
			rerr = curated.Errorf("wavwriter: %v", err)
		}
	}()

	enc := wav.NewEncoder(f, int(aw.frequency), 16, 2, 1)
	if enc == nil {
		return curated.Errorf("wavwriter: %v", "bad parameters for wav encoding")
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 2,
			SampleRate:  int(aw.frequency),
		},
		Data:           aw.buffer,
		SourceBitDepth: 16,
	}

	logger.Logf(logger.Allow, "wavwriter", "writing audio to %s", aw.filename)

	err = enc.Write(buf)
	if err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}

	err = enc.Close()
	if err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}

	return nil
}
