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

// Package chip implements the enhancement chips that can be present on a
// cartridge. Every chip is described by an entry in a table: its presence
// flag, its frequency and the windows of the address space occupied by its
// registers.
//
// A chip with a frequency is a core and its registers are brought up to date
// by catching the chip up to the core accessing them. The work of such a chip
// is done by a cpu.Executor. A chip without a frequency is purely a set of
// registers.
package chip
