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

// Package sufamiturbo is the slot adaptor that accepts two mini-cartridges.
// Each slot has its own ROM and RAM. An empty slot behaves as if it contains
// a ROM filled with 0xff. The RAM of a slot is only preserved between
// sessions if the slot contains a cartridge.
package sufamiturbo

import (
	"fmt"

	"github.com/jetsetilly/lockstep/curated"
	"github.com/jetsetilly/lockstep/hardware/bus"
	"github.com/jetsetilly/lockstep/hardware/cartridge"
	"github.com/jetsetilly/lockstep/hardware/coprocessor"
	"github.com/jetsetilly/lockstep/hardware/serialize"
)

// Sentinal errors.
const (
	MapError = "sufami turbo: %v"
)

// size of the RAM in each slot and the size of the ROM in an empty slot
const (
	RAMSize      = 128 * 1024
	EmptyROMSize = 128 * 1024
)

const fill = 0xff

// Slot is one of the two mini-cartridge slots.
type Slot struct {
	id      int
	rom     []byte
	ram     []byte
	present bool

	romWindow cartridge.Window
	ramWindow cartridge.Window
}

func newSlot(id int, rom []byte, romWindow cartridge.Window, ramWindow cartridge.Window) *Slot {
	s := &Slot{
		id:        id,
		ram:       make([]byte, RAMSize),
		romWindow: romWindow,
		ramWindow: ramWindow,
	}

	if len(rom) > 0 {
		s.rom = rom
		s.present = true
	} else {
		s.rom = make([]byte, EmptyROMSize)
		for i := range s.rom {
			s.rom[i] = fill
		}
	}

	for i := range s.ram {
		s.ram[i] = fill
	}

	return s
}

// Present returns true if there is a cartridge in the slot.
func (s *Slot) Present() bool {
	return s.present
}

// ROM returns the ROM data in the slot.
func (s *Slot) ROM() []byte {
	return s.rom
}

// RAM returns the RAM of the slot.
func (s *Slot) RAM() []byte {
	return s.ram
}

func (s *Slot) mapMemory(mem *bus.Bus) error {
	err := mem.MapRegion(bus.Region{
		Owner:  fmt.Sprintf("sufami turbo slot %d rom", s.id),
		Mode:   bus.Linear,
		BankLo: s.romWindow.BankLo,
		BankHi: s.romWindow.BankHi,
		AddrLo: s.romWindow.AddrLo,
		AddrHi: s.romWindow.AddrHi,
		Size:   uint32(len(s.rom)),
		Read: func(offset uint32) uint8 {
			return s.rom[offset]
		},
	})
	if err != nil {
		return curated.Errorf(MapError, err)
	}

	err = mem.MapRegion(bus.Region{
		Owner:  fmt.Sprintf("sufami turbo slot %d ram", s.id),
		Mode:   bus.Linear,
		BankLo: s.ramWindow.BankLo,
		BankHi: s.ramWindow.BankHi,
		AddrLo: s.ramWindow.AddrLo,
		AddrHi: s.ramWindow.AddrHi,
		Size:   uint32(len(s.ram)),
		Read: func(offset uint32) uint8 {
			return s.ram[offset]
		},
		Write: func(offset uint32, data uint8) {
			s.ram[offset] = data
		},
	})
	if err != nil {
		return curated.Errorf(MapError, err)
	}

	return nil
}

// SufamiTurbo implements the coprocessor.Component interface.
type SufamiTurbo struct {
	host  coprocessor.Host
	SlotA *Slot
	SlotB *Slot
}

// NewSufamiTurbo is the preferred method of initialisation for the
// SufamiTurbo type. Either ROM can be empty.
func NewSufamiTurbo(host coprocessor.Host, romA []byte, romB []byte) *SufamiTurbo {
	return &SufamiTurbo{
		host: host,
		SlotA: newSlot(1, romA,
			cartridge.Window{BankLo: 0x20, BankHi: 0x3f, AddrLo: 0x8000, AddrHi: 0xffff},
			cartridge.Window{BankLo: 0x60, BankHi: 0x63, AddrLo: 0x8000, AddrHi: 0xffff}),
		SlotB: newSlot(2, romB,
			cartridge.Window{BankLo: 0x40, BankHi: 0x5f, AddrLo: 0x8000, AddrHi: 0xffff},
			cartridge.Window{BankLo: 0x70, BankHi: 0x73, AddrLo: 0x8000, AddrHi: 0xffff}),
	}
}

func (st *SufamiTurbo) String() string {
	return fmt.Sprintf("sufami turbo: slot A %v, slot B %v", st.SlotA.present, st.SlotB.present)
}

// Label implements the coprocessor.Component interface.
func (st *SufamiTurbo) Label() string {
	return "sufami turbo"
}

// Tag implements the coprocessor.Component interface.
func (st *SufamiTurbo) Tag() string {
	return "SUFA"
}

// Map implements the coprocessor.Component interface.
func (st *SufamiTurbo) Map() error {
	if err := st.SlotA.mapMemory(st.host.Bus()); err != nil {
		return err
	}
	return st.SlotB.mapMemory(st.host.Bus())
}

// Power implements the coprocessor.Component interface.
func (st *SufamiTurbo) Power() {
}

// Reset implements the coprocessor.Component interface.
func (st *SufamiTurbo) Reset() {
}

// NVRAM implements the coprocessor.NVRAM interface. The RAM of a slot is
// only listed if there is a cartridge in the slot.
func (st *SufamiTurbo) NVRAM() []cartridge.NVRAM {
	var nv []cartridge.NVRAM
	for _, s := range []*Slot{st.SlotA, st.SlotB} {
		if s.present {
			nv = append(nv, cartridge.NVRAM{ID: "srm", Data: s.ram, Slot: s.id})
		}
	}
	return nv
}

// Serialize implements the serialize.Serializable interface.
func (st *SufamiTurbo) Serialize(s *serialize.State) {
	s.Bytes(st.SlotA.ram)
	s.Bytes(st.SlotB.ram)
}
