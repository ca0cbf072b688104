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

// Package bus implements the dispatch table for the 24 bit address space of
// the console. Regions of the address space are mapped to the read and write
// handlers of the component that owns them.
//
// An address is made up of an 8 bit bank number and a 16 bit address within
// the bank. A region covers a range of banks and the same range of addresses
// in every one of those banks. How a bus address is translated to the offset
// passed to the handlers is decided by the region's MapMode.
//
// Regions are indexed by page (256 bytes). Looking up the handler for an
// address only considers the regions that touch the page and so takes the
// same time however many regions are mapped.
//
// Regions may not overlap except that a Direct region may be mapped over
// regions that are not Direct. The Direct region takes priority. This allows
// a coprocessor to intercept a small number of registers inside a larger
// window owned by another component.
//
// Reading an address that is not mapped returns the last value seen on the
// data bus (the open bus value). Writing to an unmapped address does nothing.
package bus
