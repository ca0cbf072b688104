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

package rewind

import (
	"github.com/jetsetilly/lockstep/curated"
)

// Timeline is a summary of the frames seen by the rewind system. Not every
// frame in the timeline will have an entry in the history.
//
// Useful for presenting the range of frames that are available.
type Timeline struct {
	FrameNum []uint64

	// the earliest and latest frames that are available in the history. the
	// FrameNum array may begin earlier
	AvailableStart uint64
	AvailableEnd   uint64
}

const timelineLength = 1000

func newTimeline() Timeline {
	return Timeline{
		FrameNum: make([]uint64, 0, timelineLength),
	}
}

func (tl *Timeline) add(frame uint64) {
	tl.FrameNum = append(tl.FrameNum, frame)
	if len(tl.FrameNum) > timelineLength {
		tl.FrameNum = tl.FrameNum[1:]
	}
}

// remove the frame and everything after it
func (tl *Timeline) splice(frame uint64) {
	for i := range tl.FrameNum {
		if tl.FrameNum[i] >= frame {
			tl.FrameNum = tl.FrameNum[:i]
			return
		}
	}
}

func (tl *Timeline) checkIntegrity() error {
	if len(tl.FrameNum) == 0 {
		return nil
	}

	if tl.AvailableEnd > tl.FrameNum[len(tl.FrameNum)-1] {
		return curated.Errorf("timeline: most recent state not in timeline")
	}

	prev := tl.FrameNum[0]
	for _, fn := range tl.FrameNum[1:] {
		if fn != prev+1 {
			return curated.Errorf("timeline: frame numbers are not consecutive")
		}
		prev = fn
	}

	return nil
}

// GetTimeline returns a copy of the timeline.
func (r *Rewind) GetTimeline() (Timeline, error) {
	f := r.GetFrames()
	tl := Timeline{
		FrameNum:       append([]uint64(nil), r.timeline.FrameNum...),
		AvailableStart: f.Start,
		AvailableEnd:   f.End,
	}
	if err := tl.checkIntegrity(); err != nil {
		return Timeline{}, err
	}
	return tl, nil
}
