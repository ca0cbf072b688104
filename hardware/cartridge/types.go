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

package cartridge

import (
	"fmt"
	"strings"
)

// Mode of the cartridge. Some cartridges are adaptors for other media.
type Mode int

// List of valid Mode values.
const (
	ModeNormal Mode = iota
	ModeBsxSlotted
	ModeBsx
	ModeSufamiTurbo
	ModeSuperGameBoy
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeBsxSlotted:
		return "bsx slotted"
	case ModeBsx:
		return "bsx"
	case ModeSufamiTurbo:
		return "sufami turbo"
	case ModeSuperGameBoy:
		return "super game boy"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode returns the mode with the name. Spaces in the name are optional
// and case is ignored.
func ParseMode(name string) (Mode, bool) {
	name = strings.ReplaceAll(strings.ToLower(name), " ", "")
	for m := ModeNormal; m <= ModeSuperGameBoy; m++ {
		if strings.ReplaceAll(m.String(), " ", "") == name {
			return m, true
		}
	}
	return ModeNormal, false
}

// Region of the cartridge.
type Region int

// List of valid Region values.
const (
	RegionNTSC Region = iota
	RegionPAL
)

func (r Region) String() string {
	switch r {
	case RegionNTSC:
		return "NTSC"
	case RegionPAL:
		return "PAL"
	}
	return fmt.Sprintf("region(%d)", int(r))
}

// Chip is a coprocessor that can be present on a cartridge.
type Chip int

// List of valid Chip values. The order of the list is the order in which the
// coprocessors are mapped and serialized.
const (
	ChipBsxSlot Chip = iota
	ChipSuperFX
	ChipSA1
	ChipNECDSP
	ChipSRTC
	ChipSDD1
	ChipSPC7110
	ChipSPC7110RTC
	ChipCX4
	ChipOBC1
	ChipST0018
	ChipMSU1
	ChipSerial

	NumChips int = iota
)

var chipNames = [...]string{
	"bsx slot", "superfx", "sa1", "necdsp", "srtc", "sdd1", "spc7110",
	"spc7110 rtc", "cx4", "obc1", "st0018", "msu1", "serial",
}

func (c Chip) String() string {
	if int(c) >= 0 && int(c) < NumChips {
		return chipNames[c]
	}
	return fmt.Sprintf("chip(%d)", int(c))
}

// Chips is the set of coprocessors present on a cartridge.
type Chips uint32

// NewChips creates a set from a list of chips.
func NewChips(chips ...Chip) Chips {
	var c Chips
	for _, ch := range chips {
		c |= 1 << ch
	}
	return c
}

// Has returns true if the chip is in the set.
func (c Chips) Has(ch Chip) bool {
	return c&(1<<ch) != 0
}

// List returns the chips in the set in flag order.
func (c Chips) List() []Chip {
	var l []Chip
	for i := range NumChips {
		if c.Has(Chip(i)) {
			l = append(l, Chip(i))
		}
	}
	return l
}

func (c Chips) String() string {
	l := c.List()
	if len(l) == 0 {
		return "none"
	}
	s := make([]string, len(l))
	for i, ch := range l {
		s[i] = ch.String()
	}
	return strings.Join(s, ", ")
}

// ParseChip returns the Chip with the name. The name is case insensitive.
func ParseChip(name string) (Chip, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range chipNames {
		if n == name || strings.ReplaceAll(n, " ", "") == name {
			return Chip(i), true
		}
	}
	return 0, false
}

// Window is an area of the address space. The window covers the addresses
// AddrLo to AddrHi in every bank from BankLo to BankHi.
type Window struct {
	BankLo uint8
	BankHi uint8
	AddrLo uint16
	AddrHi uint16
}

func (w Window) String() string {
	return fmt.Sprintf("%02x-%02x:%04x-%04x", w.BankLo, w.BankHi, w.AddrLo, w.AddrHi)
}

// NVRAM is a region of memory that should be preserved between sessions. The
// Data is owned by the emulation and must not be resized.
type NVRAM struct {
	ID   string
	Data []byte

	// zero for the cartridge itself. non-zero for memory in a slot of an
	// adaptor cartridge
	Slot int
}
