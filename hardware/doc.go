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

// Package hardware is the emulation session. The System type owns every
// component of the emulated console: the bus, the scheduler, the main core
// and the components of the loaded cartridge.
//
// The lifecycle of a session is:
//
//	sys, _ := hardware.NewSystem(env, hardware.Options{})
//	_ = sys.Load(desc)
//	_ = sys.Power()
//	for {
//		reason, err := sys.Run()
//		...
//	}
//	sys.Unload()
//
// Run() returns at every frame boundary and whenever the host requests an
// exit with RequestExit(). RequestExit() is the only function that can be
// called from a goroutine other than the one calling Run().
//
// The state of the session can be saved with Serialize() and restored with
// Unserialize(). Both are only allowed between calls to Run(). The layout of
// the saved state is determined by the loaded cartridge: every component
// present in the session has a segment and no other segments exist. The
// order of the segments is:
//
//	SYST	scheduler state and open bus
//	CPU	main core and audio core
//	CART	cartridge RAM (if the cartridge has RAM)
//	ICD2	handheld bridge (super game boy mode)
//	chips	one segment per enhancement chip, in flag order
//	SUFA	sufami turbo slots (sufami turbo mode)
//
// Independent sessions share no state and can run concurrently.
package hardware
