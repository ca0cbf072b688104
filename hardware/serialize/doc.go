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

// Package serialize implements the deterministic save state format.
//
// Components describe their state with a single Serialize() function that
// takes a State instance. The State walks the fields of the component in one
// of three modes: Sizing, Saving and Loading. Because the same function is
// used for all three modes the order of fields can never differ between
// saving and loading.
//
// A save state is a header followed by an ordered list of segments. The
// header contains a magic number, the format version, the total size of the
// state and the number of segments. Each segment is a four byte tag, the
// length of the segment data and the data itself:
//
//	magic   [4]byte   "LKST"
//	version uint32
//	size    uint32    total size in bytes, including the header
//	count   uint32
//	{
//		tag    [4]byte
//		length uint32
//		data   [length]byte
//	} * count
//
// All integers are little-endian. There is no compression and there are no
// optional segments. The list of segments is decided by the hardware
// configuration and a state can only be loaded into a system with the same
// configuration.
//
// Loading is all or nothing. The entire state is validated against the
// current configuration before any component is changed.
package serialize
