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

// Package rewind keeps a history of save states, one for every few frames of
// the emulation. The emulation can be returned to any frame in the history.
//
// States are created with the Serialize() function of the emulation and so
// the size of every state in the history is the same for the loaded
// cartridge.
package rewind

import (
	"fmt"

	"github.com/jetsetilly/lockstep/curated"
	"github.com/jetsetilly/lockstep/environment"
)

// Sentinal errors.
const (
	RewindError = "rewind: %v"
	EmptyError  = "rewind: history is empty"
)

// Emulation is the part of the emulation that the rewind system needs.
type Emulation interface {
	Env() *environment.Environment
	Frames() uint64
	Serialize() ([]byte, error)
	Unserialize(data []byte) error
}

// State is an entry in the rewind history.
type State struct {
	Frame uint64
	data  []byte
}

func (s *State) String() string {
	return fmt.Sprintf("%d", s.Frame)
}

// Data returns the save state. The data must not be changed.
func (s *State) Data() []byte {
	return s.data
}

// Rewind contains a history of states for the emulation.
type Rewind struct {
	emulation Emulation

	// circular array of entries. end is the position of the next entry to be
	// added
	entries []*State
	start   int
	end     int

	// the position of the entry most recently added or plumbed in
	curr int

	// the state against which the current state can be compared
	comparison       *State
	comparisonLocked bool

	timeline Timeline
}

// NewRewind is the preferred method of initialisation for the Rewind type.
// The history is empty until Reset() is called.
func NewRewind(emulation Emulation) *Rewind {
	return &Rewind{
		emulation: emulation,
		timeline:  newTimeline(),
	}
}

func (r *Rewind) String() string {
	if r.Len() == 0 {
		return "empty"
	}
	f := r.GetFrames()
	return fmt.Sprintf("%d to %d (%d)", f.Start, f.End, f.Current)
}

// allocate the circular array with the depth set in the preferences. one
// extra entry is needed to distinguish a full array from an empty array
func (r *Rewind) allocate() {
	depth := r.emulation.Env().Prefs.RewindDepth.Get().(int)
	r.entries = make([]*State, depth+1)
	r.start = 0
	r.end = 0
	r.curr = 0
}

// Reset removes all entries and takes a snapshot of the emulation as it is
// now. This should be called whenever the emulation is powered on.
func (r *Rewind) Reset() error {
	r.allocate()
	r.comparison = nil
	r.timeline = newTimeline()

	s, err := r.snapshot()
	if err != nil {
		return err
	}
	r.append(s)
	r.comparison = s

	return nil
}

func (r *Rewind) snapshot() (*State, error) {
	data, err := r.emulation.Serialize()
	if err != nil {
		return nil, curated.Errorf(RewindError, err)
	}
	return &State{Frame: r.emulation.Frames(), data: data}, nil
}

// RecordFrameState should be called by the host after every frame event. A
// snapshot is taken if the frame number matches the frequency set in the
// preferences.
//
// If the emulation has been returned to an earlier point in the history then
// all later entries are discarded first.
func (r *Rewind) RecordFrameState() error {
	if len(r.entries) == 0 {
		return curated.Errorf(EmptyError)
	}

	frame := r.emulation.Frames()

	// discard the future
	if r.curr != r.last() {
		for i := r.next(r.curr); i != r.end; i = r.next(i) {
			r.entries[i] = nil
		}
		r.end = r.next(r.curr)
	}
	r.timeline.splice(frame)
	r.timeline.add(frame)

	freq := uint64(r.emulation.Env().Prefs.RewindFrequency.Get().(int))
	if frame%freq != 0 {
		return nil
	}

	s, err := r.snapshot()
	if err != nil {
		return err
	}
	r.append(s)

	if !r.comparisonLocked {
		r.comparison = s
	}

	return nil
}

func (r *Rewind) next(idx int) int {
	idx++
	if idx >= len(r.entries) {
		idx = 0
	}
	return idx
}

// the index of the most recent entry
func (r *Rewind) last() int {
	e := r.end - 1
	if e < 0 {
		e += len(r.entries)
	}
	return e
}

// the index of the nth entry from the start
func (r *Rewind) index(n int) int {
	return (r.start + n) % len(r.entries)
}

func (r *Rewind) append(s *State) {
	r.entries[r.end] = s
	r.curr = r.end
	r.end = r.next(r.end)

	// push the start along if the array is full
	if r.end == r.start {
		r.entries[r.start] = nil
		r.start = r.next(r.start)
	}
}

// Len returns the number of entries in the history.
func (r *Rewind) Len() int {
	if len(r.entries) == 0 {
		return 0
	}
	n := r.end - r.start
	if n < 0 {
		n += len(r.entries)
	}
	return n
}

// Frames of the current state of the rewind system.
type Frames struct {
	Start   uint64
	End     uint64
	Current uint64
}

// GetFrames returns the frame numbers of the earliest and the latest entries
// in the history and the current frame of the emulation.
func (r *Rewind) GetFrames() Frames {
	f := Frames{Current: r.emulation.Frames()}
	if r.Len() > 0 {
		f.Start = r.entries[r.start].Frame
		f.End = r.entries[r.last()].Frame
	}
	return f
}

// GetCurrentState returns the entry most recently added or plumbed in.
// Returns nil if the history is empty.
func (r *Rewind) GetCurrentState() *State {
	if r.Len() == 0 {
		return nil
	}
	return r.entries[r.curr]
}

func (r *Rewind) plumb(idx int) error {
	err := r.emulation.Unserialize(r.entries[idx].data)
	if err != nil {
		return curated.Errorf(RewindError, err)
	}
	r.curr = idx
	return nil
}

// GotoLast returns the emulation to the most recent entry in the history.
func (r *Rewind) GotoLast() error {
	if r.Len() == 0 {
		return curated.Errorf(EmptyError)
	}
	return r.plumb(r.last())
}

// GotoFrame returns the emulation to the frame. If there is no entry for the
// frame then the nearest earlier entry is used. Frames outside the history
// are clamped to the earliest and latest entries. Returns the frame number of
// the entry that was plumbed in.
func (r *Rewind) GotoFrame(frame uint64) (uint64, error) {
	if r.Len() == 0 {
		return 0, curated.Errorf(EmptyError)
	}

	// binary search for the last entry that is not later than the frame
	lo := 0
	hi := r.Len() - 1
	if frame <= r.entries[r.index(lo)].Frame {
		hi = lo
	}
	for lo < hi {
		m := (lo + hi + 1) / 2
		if r.entries[r.index(m)].Frame <= frame {
			lo = m
		} else {
			hi = m - 1
		}
	}

	idx := r.index(lo)
	return r.entries[idx].Frame, r.plumb(idx)
}
