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

// Package coprocessor defines the interfaces between the session and the
// components found on a cartridge. The components are implemented in the
// sub-packages.
//
// A component is created with a Host, which is the capability interface
// implemented by the session. A component that is also a core adds its
// context to the scheduler when it is created, so the order of creation is
// the order of the core ids.
package coprocessor

import (
	"github.com/jetsetilly/lockstep/environment"
	"github.com/jetsetilly/lockstep/hardware/audio"
	"github.com/jetsetilly/lockstep/hardware/bus"
	"github.com/jetsetilly/lockstep/hardware/cartridge"
	"github.com/jetsetilly/lockstep/hardware/clocks"
	"github.com/jetsetilly/lockstep/hardware/scheduler"
	"github.com/jetsetilly/lockstep/hardware/serialize"
)

// Host is the part of the session that a component is allowed to see.
type Host interface {
	Env() *environment.Environment
	Bus() *bus.Bus
	Scheduler() *scheduler.Scheduler
	Cartridge() *cartridge.Cartridge
	Audio() audio.Sink

	// the region and frequency of the main core. both are fixed for the
	// lifetime of the loaded cartridge
	Region() cartridge.Region
	CPUFrequency() clocks.Rate
}

// Component is a part of the cartridge with state of its own.
type Component interface {
	// name of the component as used in log entries and error messages
	Label() string

	// the tag of the component's serialization segment. must be four
	// characters long
	Tag() string

	// map the registers and memory of the component into the address space
	Map() error

	// power on the component. called after the main core has been powered
	Power()

	// reset the component
	Reset()

	serialize.Serializable
}

// Core is implemented by components that are clocked by the scheduler.
type Core interface {
	Component
	Context() *scheduler.Context
}

// NVRAM is implemented by components with memory that should be preserved
// between sessions.
type NVRAM interface {
	NVRAM() []cartridge.NVRAM
}

// RunToSave is implemented by components with subsystems that buffer work.
// The work is completed so that the state of the component can be saved.
type RunToSave interface {
	RunToSave() error
}
