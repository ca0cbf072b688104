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

package bus

import "fmt"

// MapMode specifies how a bus address is translated into an offset for the
// handlers of a region.
type MapMode int

// List of valid MapMode values.
const (
	// the offset is the full 24 bit address
	Direct MapMode = iota

	// the offset counts linearly through the region, starting at zero at the
	// first address of the first bank. the offset wraps at the size of the
	// region's memory
	Linear

	// the offset is the address relative to the start of the address range.
	// the bank is ignored so every bank in the range is a mirror
	Shadow
)

func (m MapMode) String() string {
	switch m {
	case Direct:
		return "direct"
	case Linear:
		return "linear"
	case Shadow:
		return "shadow"
	}
	return fmt.Sprintf("mapmode(%d)", int(m))
}

// Reader handles a read from the bus. The offset has been translated
// according to the region's MapMode.
type Reader func(offset uint32) uint8

// Writer handles a write to the bus. The offset has been translated according
// to the region's MapMode.
type Writer func(offset uint32, data uint8)

// Region is a mapped area of the address space.
type Region struct {
	// the label of the component that owns the region
	Owner string

	Mode MapMode

	BankLo uint8
	BankHi uint8
	AddrLo uint16
	AddrHi uint16

	// size of the memory behind a Linear region. the offset wraps at this
	// size. a value of zero means no wrapping
	Size uint32

	// either handler can be nil. reading with a nil handler returns the open
	// bus value and writing with a nil handler is ignored
	Read  Reader
	Write Writer
}

func (r *Region) String() string {
	return fmt.Sprintf("%02x-%02x:%04x-%04x %s [%s]", r.BankLo, r.BankHi, r.AddrLo, r.AddrHi, r.Mode, r.Owner)
}

// Contains returns true if the 24 bit address is in the region.
func (r *Region) Contains(addr uint32) bool {
	bank := uint8(addr >> 16)
	a := uint16(addr)
	return bank >= r.BankLo && bank <= r.BankHi && a >= r.AddrLo && a <= r.AddrHi
}

// Offset translates a 24 bit address into the offset passed to the handlers.
// The address is assumed to be in the region.
func (r *Region) Offset(addr uint32) uint32 {
	switch r.Mode {
	case Linear:
		bank := uint32(uint8(addr>>16) - r.BankLo)
		width := uint32(r.AddrHi) - uint32(r.AddrLo) + 1
		o := bank*width + uint32(uint16(addr)-r.AddrLo)
		if r.Size > 0 {
			o %= r.Size
		}
		return o
	case Shadow:
		return uint32(uint16(addr) - r.AddrLo)
	}
	return addr & 0xffffff
}

// overlaps returns true if any address is in both regions.
func (r *Region) overlaps(o *Region) bool {
	return r.BankLo <= o.BankHi && o.BankLo <= r.BankHi &&
		r.AddrLo <= o.AddrHi && o.AddrLo <= r.AddrHi
}
