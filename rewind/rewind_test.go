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

package rewind_test

import (
	"bytes"
	"testing"

	"github.com/jetsetilly/lockstep/curated"
	"github.com/jetsetilly/lockstep/environment"
	"github.com/jetsetilly/lockstep/hardware"
	"github.com/jetsetilly/lockstep/hardware/cartridge"
	"github.com/jetsetilly/lockstep/hardware/cpu/scripted"
	"github.com/jetsetilly/lockstep/rewind"
	"github.com/jetsetilly/lockstep/test"
)

func newSystem(t *testing.T, depth int, freq int) *hardware.System {
	t.Helper()

	env, err := environment.NewEnvironment("rewind", nil)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, env.Prefs.RewindDepth.Set(depth))
	test.DemandSuccess(t, env.Prefs.RewindFrequency.Set(freq))

	prg := scripted.Program{}.
		LDA(0x7e0000).ADD(0x03).STA(0x7e0000).
		JMP(hardware.ResetVector)
	rom := make([]byte, 0x8000)
	copy(rom, prg)

	sys, err := hardware.NewSystem(env, hardware.Options{})
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, sys.Load(cartridge.Description{ROM: rom, RAMSize: 0x800}))
	test.DemandSuccess(t, sys.Power())

	return sys
}

// run the number of frames and record each one
func record(t *testing.T, sys *hardware.System, r *rewind.Rewind, frames int) {
	t.Helper()
	err := sys.RunForFrameCount(frames, func(_ int) (bool, error) {
		return true, r.RecordFrameState()
	})
	test.DemandSuccess(t, err)
}

func TestEmpty(t *testing.T) {
	sys := newSystem(t, 10, 1)
	r := rewind.NewRewind(sys)

	test.ExpectEquality(t, r.Len(), 0)
	test.ExpectEquality(t, r.GetCurrentState() == nil, true)
	test.ExpectSuccess(t, curated.Is(r.GotoLast(), rewind.EmptyError))
	test.ExpectSuccess(t, curated.Is(r.RecordFrameState(), rewind.EmptyError))

	_, err := r.GotoFrame(0)
	test.ExpectFailure(t, err)
}

func TestGotoFrame(t *testing.T) {
	sys := newSystem(t, 100, 1)
	r := rewind.NewRewind(sys)
	test.DemandSuccess(t, r.Reset())

	record(t, sys, r, 10)
	test.ExpectEquality(t, r.Len(), 11)
	test.ExpectEquality(t, r.GetFrames(), rewind.Frames{Start: 0, End: 10, Current: 10})

	fn, err := r.GotoFrame(5)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, fn, uint64(5))
	test.ExpectEquality(t, sys.Frames(), uint64(5))
	state5 := bytes.Clone(r.GetCurrentState().Data())

	// running forward from an earlier frame gives the same states as before
	fn, err = r.GotoFrame(4)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, fn, uint64(4))
	test.DemandSuccess(t, sys.RunForFrameCount(1, nil))
	state, err := sys.Serialize()
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, bytes.Equal(state, state5))

	// requests outside of the history are clamped
	fn, err = r.GotoFrame(100)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, fn, uint64(10))

	fn, err = r.GotoFrame(0)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, fn, uint64(0))
	test.ExpectEquality(t, sys.Frames(), uint64(0))

	test.DemandSuccess(t, r.GotoLast())
	test.ExpectEquality(t, sys.Frames(), uint64(10))
}

func TestFrequency(t *testing.T) {
	sys := newSystem(t, 100, 3)
	r := rewind.NewRewind(sys)
	test.DemandSuccess(t, r.Reset())

	record(t, sys, r, 10)

	// entries for frames 0, 3, 6 and 9
	test.ExpectEquality(t, r.Len(), 4)

	// the nearest earlier entry is used
	fn, err := r.GotoFrame(8)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, fn, uint64(6))

	tl, err := r.GetTimeline()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(tl.FrameNum), 10)
	test.ExpectEquality(t, tl.AvailableStart, uint64(0))
	test.ExpectEquality(t, tl.AvailableEnd, uint64(9))
}

func TestDepth(t *testing.T) {
	sys := newSystem(t, 5, 1)
	r := rewind.NewRewind(sys)
	test.DemandSuccess(t, r.Reset())

	record(t, sys, r, 12)
	test.ExpectEquality(t, r.Len(), 5)
	test.ExpectEquality(t, r.GetFrames(), rewind.Frames{Start: 8, End: 12, Current: 12})

	fn, err := r.GotoFrame(2)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, fn, uint64(8))
}

func TestDiscardFuture(t *testing.T) {
	sys := newSystem(t, 100, 1)
	r := rewind.NewRewind(sys)
	test.DemandSuccess(t, r.Reset())

	record(t, sys, r, 10)

	_, err := r.GotoFrame(3)
	test.DemandSuccess(t, err)

	record(t, sys, r, 2)
	test.ExpectEquality(t, r.Len(), 6)
	test.ExpectEquality(t, r.GetFrames(), rewind.Frames{Start: 0, End: 5, Current: 5})

	tl, err := r.GetTimeline()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(tl.FrameNum), 5)
	test.ExpectEquality(t, tl.FrameNum[4], uint64(5))
}

func TestComparison(t *testing.T) {
	sys := newSystem(t, 100, 1)
	r := rewind.NewRewind(sys)
	test.DemandSuccess(t, r.Reset())

	test.ExpectEquality(t, r.GetComparison().Frame, uint64(0))

	record(t, sys, r, 3)
	test.ExpectEquality(t, r.GetComparison().Frame, uint64(3))

	r.SetComparison(1)
	r.LockComparison(true)
	record(t, sys, r, 2)
	test.ExpectEquality(t, r.GetComparison().Frame, uint64(1))

	// the cartridge RAM is never written by the program
	diff, err := r.Differences()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(diff), 2)
	test.ExpectEquality(t, diff[0], "SYST")
	test.ExpectEquality(t, diff[1], "CPU ")
}
