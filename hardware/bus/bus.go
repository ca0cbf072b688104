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

import (
	"fmt"
	"strings"

	"github.com/jetsetilly/lockstep/curated"
)

// Sentinal errors.
const (
	OverlapError = "bus: %s overlaps %s"
	BoundsError  = "bus: invalid bounds (%s)"
	SealedError  = "bus: sealed (cannot map %s)"
)

// OpenBus is the value on the data bus before anything has driven it.
const OpenBus = uint8(0x00)

// number of pages in the address space and the number of bits to shift an
// address by to get the page number
const (
	numPages  = 0x10000
	pageShift = 8
)

// ReadHook is called with the address and the value of every read. The value
// returned by the hook is the value seen by the reader.
type ReadHook func(addr uint32, data uint8) uint8

// Bus is the dispatch table for the address space.
type Bus struct {
	regions []*Region

	// the regions touching each page. Direct regions are always at the front
	// of the list
	pages [numPages][]*Region

	// the last value driven on the data bus
	openBus uint8

	sealed bool

	hook ReadHook
}

// NewBus is the preferred method of initialisation for the Bus type.
func NewBus() *Bus {
	return &Bus{
		openBus: OpenBus,
	}
}

// Reset unmaps every region and unseals the bus.
func (b *Bus) Reset() {
	b.regions = b.regions[:0]
	for i := range b.pages {
		b.pages[i] = nil
	}
	b.openBus = OpenBus
	b.sealed = false
}

// Seal the bus. No further regions can be mapped until Reset().
func (b *Bus) Seal() {
	b.sealed = true
}

// Sealed returns true if Seal() has been called since the last Reset().
func (b *Bus) Sealed() bool {
	return b.sealed
}

// Map a region of the address space. The region covers the addresses addrLo
// to addrHi (inclusive) in every bank from bankLo to bankHi (inclusive).
func (b *Bus) Map(owner string, mode MapMode, bankLo, bankHi uint8, addrLo, addrHi uint16, read Reader, write Writer) error {
	return b.MapRegion(Region{
		Owner:  owner,
		Mode:   mode,
		BankLo: bankLo,
		BankHi: bankHi,
		AddrLo: addrLo,
		AddrHi: addrHi,
		Read:   read,
		Write:  write,
	})
}

// MapRegion is the same as Map() but with the region described by a Region
// instance. Useful when specifying a Size for a Linear region.
func (b *Bus) MapRegion(reg Region) error {
	r := &reg

	if b.sealed {
		return curated.Errorf(SealedError, r)
	}

	if r.BankLo > r.BankHi || r.AddrLo > r.AddrHi {
		return curated.Errorf(BoundsError, r)
	}
	switch r.Mode {
	case Direct, Linear, Shadow:
	default:
		return curated.Errorf(BoundsError, r)
	}

	for _, o := range b.regions {
		if !r.overlaps(o) {
			continue
		}
		if r.Mode == Direct && o.Mode != Direct {
			continue
		}
		return curated.Errorf(OverlapError, r, o)
	}

	b.regions = append(b.regions, r)

	for bank := int(r.BankLo); bank <= int(r.BankHi); bank++ {
		for pg := int(r.AddrLo >> pageShift); pg <= int(r.AddrHi>>pageShift); pg++ {
			p := bank<<8 | pg
			if r.Mode == Direct {
				b.pages[p] = append([]*Region{r}, b.pages[p]...)
			} else {
				b.pages[p] = append(b.pages[p], r)
			}
		}
	}

	return nil
}

// Resolve returns the region that handles the address. Returns false if the
// address is not mapped.
func (b *Bus) Resolve(addr uint32) (*Region, bool) {
	addr &= 0xffffff
	for _, r := range b.pages[addr>>pageShift] {
		if r.Contains(addr) {
			return r, true
		}
	}
	return nil, false
}

// SetReadHook installs a function that can substitute the value of any read.
// A nil hook removes any existing hook.
func (b *Bus) SetReadHook(hook ReadHook) {
	b.hook = hook
}

// Read the 24 bit address.
func (b *Bus) Read(addr uint32) uint8 {
	addr &= 0xffffff
	if r, ok := b.Resolve(addr); ok && r.Read != nil {
		b.openBus = r.Read(r.Offset(addr))
	}
	if b.hook != nil {
		b.openBus = b.hook(addr, b.openBus)
	}
	return b.openBus
}

// Write the data to the 24 bit address.
func (b *Bus) Write(addr uint32, data uint8) {
	addr &= 0xffffff
	b.openBus = data
	if r, ok := b.Resolve(addr); ok && r.Write != nil {
		r.Write(r.Offset(addr), data)
	}
}

// Peek reads the 24 bit address without affecting the open bus value and
// without calling the read hook. Peek will still call the region's read
// handler so it should not be used for addresses with read side effects.
func (b *Bus) Peek(addr uint32) uint8 {
	addr &= 0xffffff
	if r, ok := b.Resolve(addr); ok && r.Read != nil {
		return r.Read(r.Offset(addr))
	}
	return b.openBus
}

// OpenBus returns the last value driven on the data bus.
func (b *Bus) OpenBus() uint8 {
	return b.openBus
}

// SetOpenBus sets the open bus value. Used when restoring state.
func (b *Bus) SetOpenBus(v uint8) {
	b.openBus = v
}

// Summary returns a list of the mapped regions in the order they were mapped.
func (b *Bus) Summary() string {
	s := strings.Builder{}
	for _, r := range b.regions {
		s.WriteString(fmt.Sprintf("%s\n", r))
	}
	return s.String()
}
