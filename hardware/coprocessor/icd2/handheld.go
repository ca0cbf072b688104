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

// Package icd2 is the bridge between the console and a handheld subsystem
// running on a cartridge. The handheld has its own clock and buffers its own
// work. It is driven by the bridge, which is a core clocked at a fifth of the
// main core's frequency.
//
// When bit 7 of register 6003 is clear the handheld is halted and the bridge
// outputs silence.
package icd2

import (
	"github.com/jetsetilly/lockstep/hardware/serialize"
)

// Link is the interface the bridge presents to the handheld.
type Link interface {
	// the state of the joypad connected to the port
	Joypad(port int) uint8

	// read and write the handheld's joypad register. the joypad that is read
	// is selected by the sequence of writes to the select lines
	JoypRead() uint8
	JoypWrite(p15 bool, p14 bool)

	// an audio sample generated by the handheld
	Sample(left int16, right int16)

	// a command packet sent by the handheld
	Packet(data [PacketSize]uint8)

	// a row of the handheld's display
	Row(data []uint8)
}

// Handheld is the subsystem driven by the bridge.
type Handheld interface {
	// power on the handheld
	Power()

	// run the handheld for up to budget clocks. returns the number of clocks
	// actually executed
	Run(link Link, budget uint64) (uint64, error)

	// complete any buffered work so that the state can be saved
	RunToSave() error

	// the display line the handheld is currently drawing
	LY() uint8

	serialize.Serializable
}

// NullHandheld is a Handheld that does nothing except consume the clocks it
// is given.
type NullHandheld struct{}

// Power implements the Handheld interface.
func (NullHandheld) Power() {}

// Run implements the Handheld interface.
func (NullHandheld) Run(_ Link, budget uint64) (uint64, error) {
	return budget, nil
}

// RunToSave implements the Handheld interface.
func (NullHandheld) RunToSave() error {
	return nil
}

// LY implements the Handheld interface.
func (NullHandheld) LY() uint8 {
	return 0
}

// Serialize implements the Handheld interface.
func (NullHandheld) Serialize(_ *serialize.State) {}
