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

// Package cartridge holds the state of the loaded cartridge. The cartridge is
// described by a Description, which is the result of parsing the cartridge
// header or any accompanying metadata. Parsing is not part of the emulation
// core.
//
// The cartridge computes the identity of the content (CRC32 and SHA-256) when
// it is created. The identity is fixed for the lifetime of the cartridge.
package cartridge

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/crc32"
	"strings"

	"github.com/jetsetilly/lockstep/curated"
	"github.com/jetsetilly/lockstep/hardware/bus"
	"github.com/jetsetilly/lockstep/hardware/serialize"
)

// Sentinal errors.
const (
	LoadError = "cartridge: %v"
)

// the value of uninitialised cartridge memory
const fill = 0xff

// Description of a cartridge. The result of parsing the cartridge header or
// metadata.
type Description struct {
	Name   string
	Mode   Mode
	Region Region

	ROM     []byte
	RAMSize int
	Chips   Chips

	// the windows for the ROM and RAM. if the lists are empty a default list
	// is used according to the cartridge mode
	ROMMap []Window
	RAMMap []Window

	// the contents of the slots of a Sufami Turbo adaptor. either slot can be
	// empty
	SlotA []byte
	SlotB []byte
}

// default windows for the cartridge modes
var (
	defaultROMMap = []Window{
		{BankLo: 0x00, BankHi: 0x3f, AddrLo: 0x8000, AddrHi: 0xffff},
		{BankLo: 0x80, BankHi: 0xbf, AddrLo: 0x8000, AddrHi: 0xffff},
	}
	sufamiTurboROMMap = []Window{
		{BankLo: 0x00, BankHi: 0x1f, AddrLo: 0x8000, AddrHi: 0xffff},
		{BankLo: 0x80, BankHi: 0x9f, AddrLo: 0x8000, AddrHi: 0xffff},
	}
	defaultRAMMap = []Window{
		{BankLo: 0x70, BankHi: 0x7d, AddrLo: 0x0000, AddrHi: 0x7fff},
		{BankLo: 0xf0, BankHi: 0xff, AddrLo: 0x0000, AddrHi: 0x7fff},
	}
)

// Cartridge is the loaded cartridge.
type Cartridge struct {
	Name    string
	Mode    Mode
	Region  Region
	RAMSize int
	Chips   Chips

	// identity of the ROM data
	CRC32  uint32
	SHA256 string

	// slot contents for Sufami Turbo cartridges
	SlotA []byte
	SlotB []byte

	rom []byte
	ram []byte

	romMap []Window
	ramMap []Window
}

// NewCartridge is the preferred method of initialisation for the Cartridge
// type. The ROM data is copied.
func NewCartridge(desc Description) (*Cartridge, error) {
	if len(desc.ROM) == 0 {
		return nil, curated.Errorf(LoadError, "no ROM data")
	}
	if desc.RAMSize < 0 {
		return nil, curated.Errorf(LoadError, fmt.Sprintf("invalid RAM size (%d)", desc.RAMSize))
	}
	switch desc.Mode {
	case ModeNormal, ModeBsxSlotted, ModeBsx, ModeSufamiTurbo, ModeSuperGameBoy:
	default:
		return nil, curated.Errorf(LoadError, fmt.Sprintf("invalid mode (%v)", desc.Mode))
	}
	switch desc.Region {
	case RegionNTSC, RegionPAL:
	default:
		return nil, curated.Errorf(LoadError, fmt.Sprintf("invalid region (%v)", desc.Region))
	}
	if desc.Mode != ModeSufamiTurbo && (len(desc.SlotA) > 0 || len(desc.SlotB) > 0) {
		return nil, curated.Errorf(LoadError, "slot data requires sufami turbo mode")
	}

	cart := &Cartridge{
		Name:    desc.Name,
		Mode:    desc.Mode,
		Region:  desc.Region,
		RAMSize: desc.RAMSize,
		Chips:   desc.Chips,
		rom:     make([]byte, len(desc.ROM)),
		ram:     make([]byte, desc.RAMSize),
		romMap:  desc.ROMMap,
		ramMap:  desc.RAMMap,
	}
	copy(cart.rom, desc.ROM)

	if len(desc.SlotA) > 0 {
		cart.SlotA = append([]byte{}, desc.SlotA...)
	}
	if len(desc.SlotB) > 0 {
		cart.SlotB = append([]byte{}, desc.SlotB...)
	}

	for i := range cart.ram {
		cart.ram[i] = fill
	}

	if len(cart.romMap) == 0 {
		if cart.Mode == ModeSufamiTurbo {
			cart.romMap = sufamiTurboROMMap
		} else {
			cart.romMap = defaultROMMap
		}
	}
	if len(cart.ramMap) == 0 {
		cart.ramMap = defaultRAMMap
	}

	cart.CRC32 = crc32.ChecksumIEEE(cart.rom)
	sum := sha256.Sum256(cart.rom)
	cart.SHA256 = hex.EncodeToString(sum[:])

	return cart, nil
}

func (cart *Cartridge) String() string {
	s := strings.Builder{}
	if cart.Name != "" {
		s.WriteString(fmt.Sprintf("%s ", cart.Name))
	}
	s.WriteString(fmt.Sprintf("[%s %s] crc32=%08x", cart.Mode, cart.Region, cart.CRC32))
	if cart.RAMSize > 0 {
		s.WriteString(fmt.Sprintf(" ram=%d", cart.RAMSize))
	}
	if cart.Chips != 0 {
		s.WriteString(fmt.Sprintf(" chips=%s", cart.Chips))
	}
	return s.String()
}

// ROM returns the ROM data.
func (cart *Cartridge) ROM() []byte {
	return cart.rom
}

// RAM returns the cartridge RAM. The slice will be empty if the cartridge has
// no RAM.
func (cart *Cartridge) RAM() []byte {
	return cart.ram
}

// Map the ROM and RAM of the cartridge into the address space.
func (cart *Cartridge) Map(b *bus.Bus) error {
	for _, w := range cart.romMap {
		err := b.MapRegion(bus.Region{
			Owner:  "cartridge rom",
			Mode:   bus.Linear,
			BankLo: w.BankLo,
			BankHi: w.BankHi,
			AddrLo: w.AddrLo,
			AddrHi: w.AddrHi,
			Size:   uint32(len(cart.rom)),
			Read: func(offset uint32) uint8 {
				return cart.rom[offset]
			},
		})
		if err != nil {
			return curated.Errorf(LoadError, err)
		}
	}

	if cart.RAMSize == 0 {
		return nil
	}

	for _, w := range cart.ramMap {
		err := b.MapRegion(bus.Region{
			Owner:  "cartridge ram",
			Mode:   bus.Linear,
			BankLo: w.BankLo,
			BankHi: w.BankHi,
			AddrLo: w.AddrLo,
			AddrHi: w.AddrHi,
			Size:   uint32(len(cart.ram)),
			Read: func(offset uint32) uint8 {
				return cart.ram[offset]
			},
			Write: func(offset uint32, data uint8) {
				cart.ram[offset] = data
			},
		})
		if err != nil {
			return curated.Errorf(LoadError, err)
		}
	}

	return nil
}

// NVRAM returns the list of memory areas that should be preserved between
// sessions.
func (cart *Cartridge) NVRAM() []NVRAM {
	if cart.RAMSize == 0 {
		return nil
	}
	return []NVRAM{{ID: "srm", Data: cart.ram, Slot: 0}}
}

// Serialize implements the serialize.Serializable interface. Only the RAM of
// the cartridge is serialized.
func (cart *Cartridge) Serialize(s *serialize.State) {
	s.Bytes(cart.ram)
}
