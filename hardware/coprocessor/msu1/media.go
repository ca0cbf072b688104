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

package msu1

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"

	"github.com/jetsetilly/lockstep/curated"
)

// MediaError is returned when a track cannot be decoded.
const MediaError = "msu1: media: %v"

// Media provides the data file and the audio tracks of the cartridge.
type Media interface {
	// the contents of the data file. can be empty
	Data() []byte

	// the encoded audio track. the extension of the name decides how the
	// track is decoded. an error matching fs.ErrNotExist means that there is
	// no such track
	Track(n uint16) (name string, data []byte, err error)
}

// NoMedia is media with no data and no audio tracks.
type NoMedia struct{}

// Data implements the Media interface.
func (NoMedia) Data() []byte {
	return nil
}

// Track implements the Media interface.
func (NoMedia) Track(n uint16) (string, []byte, error) {
	return "", nil, fs.ErrNotExist
}

// Dir is media stored in a directory. The data file is named Base with the
// extension ".msu" and the audio tracks are named Base followed by a hyphen,
// the track number and either a ".wav" or ".mp3" extension.
type Dir struct {
	Path string
	Base string
}

// Data implements the Media interface.
func (d Dir) Data() []byte {
	data, err := os.ReadFile(filepath.Join(d.Path, d.Base+".msu"))
	if err != nil {
		return nil
	}
	return data
}

// Track implements the Media interface.
func (d Dir) Track(n uint16) (string, []byte, error) {
	for _, ext := range []string{".wav", ".mp3"} {
		name := filepath.Join(d.Path, fmt.Sprintf("%s-%d%s", d.Base, n, ext))
		data, err := os.ReadFile(name)
		if err == nil {
			return name, data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return name, nil, err
		}
	}
	return "", nil, fs.ErrNotExist
}

// track is decoded audio as interleaved 16 bit stereo samples at SampleRate
type track []int16

func (t track) frames() uint32 {
	return uint32(len(t) / 2)
}

// decode the audio track according to the extension of the name
func decode(name string, data []byte) (track, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav":
		return decodeWAV(data)
	case ".mp3":
		return decodeMP3(data)
	}
	return nil, curated.Errorf(MediaError, fmt.Sprintf("unsupported format (%s)", name))
}

func decodeWAV(data []byte) (track, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, curated.Errorf(MediaError, "not a valid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, curated.Errorf(MediaError, err)
	}

	chans := int(dec.NumChans)
	if chans == 0 {
		return nil, curated.Errorf(MediaError, "no audio channels")
	}

	// reduce every sample to 16 bits
	scale := func(v int) int16 {
		switch dec.BitDepth {
		case 8:
			return int16((v - 128) << 8)
		case 24:
			return int16(v >> 8)
		case 32:
			return int16(v >> 16)
		}
		return int16(v)
	}

	t := make(track, 0, len(buf.Data)/chans*2)
	for i := 0; i+chans <= len(buf.Data); i += chans {
		l := scale(buf.Data[i])
		r := l
		if chans > 1 {
			r = scale(buf.Data[i+1])
		}
		t = append(t, l, r)
	}

	return resample(t, int(dec.SampleRate)), nil
}

func decodeMP3(data []byte) (track, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, curated.Errorf(MediaError, err)
	}

	// the decoded stream is always 16 bit little endian stereo
	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, curated.Errorf(MediaError, err)
	}

	t := make(track, len(pcm)/2)
	for i := range t {
		t[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}

	return resample(t, dec.SampleRate()), nil
}

// resample the track to SampleRate. the nearest sample is used
func resample(t track, rate int) track {
	if rate == SampleRate || rate <= 0 {
		return t
	}

	frames := int(uint64(t.frames()) * SampleRate / uint64(rate))
	r := make(track, frames*2)
	for i := range frames {
		j := int(uint64(i) * uint64(rate) / SampleRate)
		r[i*2] = t[j*2]
		r[i*2+1] = t[j*2+1]
	}
	return r
}
