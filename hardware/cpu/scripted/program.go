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

// Program is a sequence of instructions. Instructions are appended with the
// methods of the type, each of which returns the extended Program.
//
//	prg := scripted.Program{}.LDI(0x10).DEC().BNE(0x008002).WAI()
type Program []byte

func (p Program) op(op uint8) Program {
	return append(p, op)
}

func (p Program) imm(op uint8, v uint8) Program {
	return append(p, op, v)
}

func (p Program) addr(op uint8, addr uint32) Program {
	return append(p, op, uint8(addr), uint8(addr>>8), uint8(addr>>16))
}

// NOP appends a NOP instruction.
func (p Program) NOP() Program { return p.op(NOP) }

// LDA appends a LDA instruction.
func (p Program) LDA(addr uint32) Program { return p.addr(LDA, addr) }

// STA appends a STA instruction.
func (p Program) STA(addr uint32) Program { return p.addr(STA, addr) }

// ADD appends an ADD instruction.
func (p Program) ADD(v uint8) Program { return p.imm(ADD, v) }

// JMP appends a JMP instruction.
func (p Program) JMP(addr uint32) Program { return p.addr(JMP, addr) }

// BNE appends a BNE instruction.
func (p Program) BNE(addr uint32) Program { return p.addr(BNE, addr) }

// DEC appends a DEC instruction.
func (p Program) DEC() Program { return p.op(DEC) }

// WAI appends a WAI instruction.
func (p Program) WAI() Program { return p.op(WAI) }

// SYN appends a SYN instruction.
func (p Program) SYN() Program { return p.op(SYN) }

// LDI appends a LDI instruction.
func (p Program) LDI(v uint8) Program { return p.imm(LDI, v) }
