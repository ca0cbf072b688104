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

package scripted

import (
	"fmt"

	"github.com/jetsetilly/lockstep/hardware/cpu"
	"github.com/jetsetilly/lockstep/hardware/serialize"
)

// List of opcodes.
const (
	NOP uint8 = iota
	LDA
	STA
	ADD
	JMP
	BNE
	DEC
	WAI
	SYN
	LDI
)

// Interpreter implements the cpu.Executor interface.
type Interpreter struct {
	// address of the first instruction after a reset
	resetPC uint32

	// only the low 24 bits are used
	PC uint32
	A  uint8

	// number of instructions executed since the last reset
	Instructions uint64
}

// NewInterpreter is the preferred method of initialisation for the
// Interpreter type.
func NewInterpreter(resetPC uint32) *Interpreter {
	itp := &Interpreter{resetPC: resetPC & 0xffffff}
	itp.Reset()
	return itp
}

func (itp *Interpreter) String() string {
	return fmt.Sprintf("PC=%06x A=%02x (%d instructions)", itp.PC, itp.A, itp.Instructions)
}

// Reset implements the cpu.Executor interface.
func (itp *Interpreter) Reset() {
	itp.PC = itp.resetPC
	itp.A = 0
	itp.Instructions = 0
}

func (itp *Interpreter) fetch(mem cpu.Bus) uint8 {
	v := mem.Read(itp.PC)
	itp.PC = (itp.PC + 1) & 0xffffff
	return v
}

func (itp *Interpreter) fetchAddress(mem cpu.Bus) uint32 {
	lo := uint32(itp.fetch(mem))
	mid := uint32(itp.fetch(mem))
	hi := uint32(itp.fetch(mem))
	return hi<<16 | mid<<8 | lo
}

// Execute implements the cpu.Executor interface.
func (itp *Interpreter) Execute(mem cpu.Bus, budget uint64) (cpu.Result, error) {
	var res cpu.Result

	for res.Cycles < budget {
		itp.Instructions++

		switch itp.fetch(mem) {
		case LDA:
			itp.A = mem.Read(itp.fetchAddress(mem))
			res.Cycles += 6
		case STA:
			mem.Write(itp.fetchAddress(mem), itp.A)
			res.Cycles += 6
		case ADD:
			itp.A += itp.fetch(mem)
			res.Cycles += 4
		case JMP:
			itp.PC = itp.fetchAddress(mem)
			res.Cycles += 4
		case BNE:
			addr := itp.fetchAddress(mem)
			if itp.A != 0 {
				itp.PC = addr
			}
			res.Cycles += 4
		case DEC:
			itp.A--
			res.Cycles += 2
		case WAI:
			res.Cycles = budget
		case SYN:
			res.Cycles += 2
			res.Sync = true
			return res, nil
		case LDI:
			itp.A = itp.fetch(mem)
			res.Cycles += 2
		default:
			res.Cycles += 2
		}
	}

	return res, nil
}

// Serialize implements the cpu.Executor interface.
func (itp *Interpreter) Serialize(s *serialize.State) {
	s.Uint32(&itp.PC)
	s.Uint8(&itp.A)
	s.Uint64(&itp.Instructions)
}
