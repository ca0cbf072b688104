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

// Package msu1 implements the MSU-1 enhancement chip. The chip gives the
// cartridge access to a large data file and streams CD quality audio tracks,
// both of which are provided by the Media interface.
//
// The chip is a core clocked at the audio sample rate. Every cycle produces
// one stereo sample for the audio sink of the host.
package msu1

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/jetsetilly/lockstep/curated"
	"github.com/jetsetilly/lockstep/hardware/bus"
	"github.com/jetsetilly/lockstep/hardware/cartridge"
	"github.com/jetsetilly/lockstep/hardware/coprocessor"
	"github.com/jetsetilly/lockstep/hardware/coprocessor/chip"
	"github.com/jetsetilly/lockstep/hardware/scheduler"
	"github.com/jetsetilly/lockstep/hardware/serialize"
)

// MapError is returned when the chip cannot be mapped.
const MapError = "msu1: %v"

// SampleRate of the audio produced by the chip.
const SampleRate = 44100

// Revision of the chip reported by the status register.
const Revision = 0x02

// Identifier returned by registers 2 to 7.
const Identifier = "S-MSU1"

// status register bits
const (
	statusAudioRepeat  = 0x20
	statusAudioPlaying = 0x10
	statusAudioMissing = 0x08
)

// control register bits
const (
	controlPlay   = 0x01
	controlRepeat = 0x02
)

// MSU1 implements the coprocessor.Core interface.
type MSU1 struct {
	host  coprocessor.Host
	def   chip.Definition
	media Media
	ctx   *scheduler.Context

	// the data file is read-only and is not part of the save state
	data []byte

	// the decoded audio track and the number of the track it was decoded
	// from. recreated by Plumb() after loading a state
	track      track
	decodedNum uint16
	decoded    bool

	// the track selected by the most recent write to the track register
	trackNum    uint16
	trackLoaded bool

	dataSeek    uint32
	dataOffset  uint32
	audioTrack  uint16
	audioOffset uint32
	volume      uint8
	playing     bool
	repeat      bool
	missing     bool
}

// NewMSU1 is the preferred method of initialisation for the MSU1 type. The
// chip is added to the host's scheduler. If media is nil then NoMedia is
// used.
func NewMSU1(host coprocessor.Host, media Media) *MSU1 {
	if media == nil {
		media = NoMedia{}
	}

	msu := &MSU1{
		host:  host,
		def:   chip.Definitions[cartridge.ChipMSU1],
		media: media,
	}
	msu.ctx = host.Scheduler().Add(msu.Label(), msu.def.Frequency)

	return msu
}

func (msu *MSU1) String() string {
	return fmt.Sprintf("msu1: track %d (%d/%d) playing=%v repeat=%v volume=%d",
		msu.audioTrack, msu.audioOffset, msu.track.frames(), msu.playing, msu.repeat, msu.volume)
}

// Label implements the coprocessor.Component interface.
func (msu *MSU1) Label() string {
	return msu.def.Chip.String()
}

// Tag implements the coprocessor.Component interface.
func (msu *MSU1) Tag() string {
	return msu.def.Tag
}

// Context implements the coprocessor.Core interface.
func (msu *MSU1) Context() *scheduler.Context {
	return msu.ctx
}

// Map implements the coprocessor.Component interface.
func (msu *MSU1) Map() error {
	for _, w := range msu.def.Windows {
		err := msu.host.Bus().Map(msu.Label(), bus.Direct, w.BankLo, w.BankHi, w.AddrLo, w.AddrHi,
			func(addr uint32) uint8 {
				return msu.read(uint16(addr) - w.AddrLo)
			},
			func(addr uint32, data uint8) {
				msu.write(uint16(addr)-w.AddrLo, data)
			})
		if err != nil {
			return curated.Errorf(MapError, err)
		}
	}
	return nil
}

// Power implements the coprocessor.Component interface.
func (msu *MSU1) Power() {
	msu.host.Audio().SetCoprocessorFrequency(SampleRate)
	msu.data = msu.media.Data()
	msu.Reset()
}

// Reset implements the coprocessor.Component interface.
func (msu *MSU1) Reset() {
	msu.ctx.Create(msu.entry, 0)

	msu.dataSeek = 0
	msu.dataOffset = 0
	msu.audioTrack = 0
	msu.audioOffset = 0
	msu.volume = 0
	msu.playing = false
	msu.repeat = false
	msu.missing = false
	msu.trackNum = 0
	msu.trackLoaded = false
	msu.track = nil
	msu.decoded = false
}

// Data returns the data file.
func (msu *MSU1) Data() []byte {
	return msu.data
}

// the step function of the chip. every cycle is one sample
func (msu *MSU1) entry(ctx *scheduler.Context) error {
	budget := ctx.Budget()
	audio := msu.host.Audio()

	for range budget {
		audio.CoprocessorSample(msu.sample())
	}
	ctx.Step(budget)

	return nil
}

func (msu *MSU1) sample() (int16, int16) {
	if !msu.playing || msu.audioOffset >= msu.track.frames() {
		return 0, 0
	}

	l := msu.track[msu.audioOffset*2]
	r := msu.track[msu.audioOffset*2+1]
	l = int16(int32(l) * int32(msu.volume) / 255)
	r = int16(int32(r) * int32(msu.volume) / 255)

	msu.audioOffset++
	if msu.audioOffset >= msu.track.frames() {
		msu.audioOffset = 0
		msu.playing = msu.repeat
	}

	return l, r
}

// load the audio track. sets the missing flag if there is no such track
func (msu *MSU1) loadTrack(n uint16) {
	msu.trackNum = n
	msu.trackLoaded = true
	msu.missing = !msu.decodeTrack()
}

// decode the selected track. returns false if the track is missing or cannot
// be decoded
func (msu *MSU1) decodeTrack() bool {
	msu.track = nil
	msu.decodedNum = msu.trackNum
	msu.decoded = true

	name, data, err := msu.media.Track(msu.trackNum)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			msu.host.Env().Logf("msu1", "track %d: %v", msu.trackNum, err)
		}
		return false
	}

	t, err := decode(name, data)
	if err != nil {
		msu.host.Env().Logf("msu1", "track %d: %v", msu.trackNum, err)
		return false
	}

	msu.track = t
	return true
}

// bring the chip up to the time of the core accessing the registers
func (msu *MSU1) catchUp() {
	_ = msu.host.Scheduler().CatchUp(msu.ctx.ID())
}

func (msu *MSU1) read(reg uint16) uint8 {
	msu.catchUp()

	switch reg {
	case 0:
		v := uint8(Revision)
		if msu.repeat {
			v |= statusAudioRepeat
		}
		if msu.playing {
			v |= statusAudioPlaying
		}
		if msu.missing {
			v |= statusAudioMissing
		}
		return v
	case 1:
		var v uint8
		if int(msu.dataOffset) < len(msu.data) {
			v = msu.data[msu.dataOffset]
		}
		msu.dataOffset++
		return v
	}

	return Identifier[reg-2]
}

func (msu *MSU1) write(reg uint16, data uint8) {
	msu.catchUp()

	switch reg {
	case 0, 1, 2:
		shift := reg * 8
		msu.dataSeek = msu.dataSeek&^(0xff<<shift) | uint32(data)<<shift
	case 3:
		msu.dataSeek = msu.dataSeek&0x00ffffff | uint32(data)<<24
		msu.dataOffset = msu.dataSeek
	case 4:
		msu.audioTrack = msu.audioTrack&0xff00 | uint16(data)
	case 5:
		msu.audioTrack = msu.audioTrack&0x00ff | uint16(data)<<8
		msu.audioOffset = 0
		msu.playing = false
		msu.repeat = false
		msu.loadTrack(msu.audioTrack)
	case 6:
		msu.volume = data
	case 7:
		if msu.missing {
			return
		}
		msu.playing = data&controlPlay == controlPlay
		msu.repeat = data&controlRepeat == controlRepeat
	}
}

// Serialize implements the serialize.Serializable interface.
func (msu *MSU1) Serialize(s *serialize.State) {
	s.Uint32(&msu.dataSeek)
	s.Uint32(&msu.dataOffset)
	s.Uint16(&msu.audioTrack)
	s.Uint16(&msu.trackNum)
	s.Bool(&msu.trackLoaded)
	s.Uint32(&msu.audioOffset)
	s.Uint8(&msu.volume)
	s.Bool(&msu.playing)
	s.Bool(&msu.repeat)
	s.Bool(&msu.missing)
}

// Plumb implements the serialize.Plumber interface. The audio track selected
// in the loaded state is decoded if it is not already.
func (msu *MSU1) Plumb() {
	if !msu.trackLoaded {
		msu.track = nil
		msu.decoded = false
		return
	}
	if msu.decoded && msu.decodedNum == msu.trackNum {
		return
	}
	msu.decodeTrack()
}
