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

package hardware

import (
	"github.com/jetsetilly/lockstep/curated"
	"github.com/jetsetilly/lockstep/hardware/scheduler"
)

// Run the emulation until the end of the frame or until an exit is requested
// by the host or by a debugger. A fault is returned until the next call to
// Power() or Reset().
func (sys *System) Run() (scheduler.ExitReason, error) {
	if !sys.powered {
		return scheduler.ExitReason{}, curated.Errorf(NotPoweredError)
	}
	return sys.sch.Run()
}

// RunForFrameCount runs the emulation for the number of frames. The
// continueCheck function is called after every exit from Run() and can end
// the emulation early by returning false. A nil continueCheck function is
// allowed.
func (sys *System) RunForFrameCount(numFrames int, continueCheck func(frame int) (bool, error)) error {
	if continueCheck == nil {
		continueCheck = func(_ int) (bool, error) { return true, nil }
	}

	var frame int
	for frame < numFrames {
		r, err := sys.Run()
		if err != nil {
			return err
		}

		if r.Type == scheduler.ExitFrameEvent {
			frame++
		}

		cont, err := continueCheck(frame)
		if err != nil {
			return err
		}
		if !cont {
			break
		}
	}

	return nil
}

// RequestExit asks Run() to return at the next opportunity. Safe to call
// from any goroutine.
func (sys *System) RequestExit() {
	sys.sch.RequestExit(scheduler.ExitUserRequest)
}

// RunToSave brings every core to the same point in time and gives
// components that buffer work the opportunity to complete it. After
// RunToSave() the state of the system can be saved without losing any
// information.
func (sys *System) RunToSave() error {
	if !sys.powered {
		return curated.Errorf(NotPoweredError)
	}
	return sys.sch.SynchronizeAll()
}
