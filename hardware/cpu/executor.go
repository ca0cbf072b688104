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

package cpu

import "github.com/jetsetilly/lockstep/hardware/serialize"

// Bus is the memory interface used by an Executor.
type Bus interface {
	Read(addr uint32) uint8
	Write(addr uint32, data uint8)
}

// Result of a call to Execute().
type Result struct {
	// number of cycles actually consumed. can be more than the budget if the
	// executor cannot stop part way through an instruction
	Cycles uint64

	// the executor wants every other core to be brought up to the current
	// time before it continues
	Sync bool
}

// Executor is the instruction decoder of a core.
type Executor interface {
	// Reset the executor to its power on state
	Reset()

	// Execute instructions until at least budget cycles have been consumed or
	// until the executor needs to synchronize. Returning an error is a fatal
	// fault
	Execute(mem Bus, budget uint64) (Result, error)

	// Serialize the state of the executor
	serialize.Serializable
}

// Idle is an Executor that consumes every cycle it is given and does nothing
// else. It has no state.
type Idle struct{}

// Reset implements the Executor interface.
func (Idle) Reset() {}

// Execute implements the Executor interface.
func (Idle) Execute(_ Bus, budget uint64) (Result, error) {
	return Result{Cycles: budget}, nil
}

// Serialize implements the Executor interface.
func (Idle) Serialize(_ *serialize.State) {}
