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

package scheduler

import "fmt"

// ExitType is the reason the scheduler has returned control to the host.
type ExitType int

// List of valid ExitType values.
const (
	ExitNone ExitType = iota
	ExitFrameEvent
	ExitSynchronizeEvent
	ExitDebuggerBreak
	ExitUserRequest
)

func (e ExitType) String() string {
	switch e {
	case ExitNone:
		return "none"
	case ExitFrameEvent:
		return "frame"
	case ExitSynchronizeEvent:
		return "synchronize"
	case ExitDebuggerBreak:
		return "debugger break"
	case ExitUserRequest:
		return "user request"
	}
	return fmt.Sprintf("exit(%d)", int(e))
}

// ExitReason is returned by Run(). The Core field is the id of the core that
// raised the exit. For exits requested by the host the Core field is -1.
type ExitReason struct {
	Type ExitType
	Core int
}

func (e ExitReason) String() string {
	if e.Core < 0 {
		return e.Type.String()
	}
	return fmt.Sprintf("%s (core %d)", e.Type, e.Core)
}

// State of the scheduler.
type State int

// List of valid State values.
const (
	Idle State = iota
	Running
	SynchronizingAll
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case SynchronizingAll:
		return "synchronizing"
	case Paused:
		return "paused"
	}
	return fmt.Sprintf("state(%d)", int(s))
}
