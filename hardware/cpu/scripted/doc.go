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

// Package scripted is a small deterministic instruction interpreter. It
// implements the cpu.Executor interface and is used when no real decoder is
// attached to a core, and for testing.
//
// Instructions are a single opcode byte, optionally followed by an 8 bit
// immediate value or a 24 bit little-endian address.
//
//	op    mnemonic  operand  cycles  effect
//	0x00  NOP       -        2
//	0x01  LDA       addr24   6       A = [addr]
//	0x02  STA       addr24   6       [addr] = A
//	0x03  ADD       imm8     4       A = A + imm
//	0x04  JMP       addr24   4       PC = addr
//	0x05  BNE       addr24   4       PC = addr if A != 0
//	0x06  DEC       -        2       A = A - 1
//	0x07  WAI       -        *       consumes the remainder of the budget
//	0x08  SYN       -        2       ends execution and asks for synchronization
//	0x09  LDI       imm8     2       A = imm
//
// Unknown opcodes are treated as NOP.
package scripted
