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

package cartridge_test

import (
	"testing"

	"github.com/jetsetilly/lockstep/curated"
	"github.com/jetsetilly/lockstep/hardware/bus"
	"github.com/jetsetilly/lockstep/hardware/cartridge"
	"github.com/jetsetilly/lockstep/hardware/serialize"
	"github.com/jetsetilly/lockstep/test"
)

func newROM(size int) []byte {
	rom := make([]byte, size)
	for i := range rom {
		rom[i] = uint8(i)
	}
	return rom
}

func TestIdentity(t *testing.T) {
	cart, err := cartridge.NewCartridge(cartridge.Description{
		ROM: []byte("123456789"),
	})
	test.DemandSuccess(t, err)

	// check values for the string "123456789"
	test.ExpectEquality(t, cart.CRC32, uint32(0xcbf43926))
	test.ExpectEquality(t, cart.SHA256, "15e2b0d3c33891ebb0f1ef609ec419420c20e320ce94c65fbc8c3312448eb225")
}

func TestInvalid(t *testing.T) {
	_, err := cartridge.NewCartridge(cartridge.Description{})
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, cartridge.LoadError))

	_, err = cartridge.NewCartridge(cartridge.Description{ROM: newROM(16), RAMSize: -1})
	test.ExpectFailure(t, err)

	_, err = cartridge.NewCartridge(cartridge.Description{ROM: newROM(16), SlotA: newROM(16)})
	test.ExpectFailure(t, err)

	_, err = cartridge.NewCartridge(cartridge.Description{ROM: newROM(16), Mode: cartridge.ModeSufamiTurbo, SlotA: newROM(16)})
	test.ExpectSuccess(t, err)
}

func TestRAM(t *testing.T) {
	cart, err := cartridge.NewCartridge(cartridge.Description{
		ROM:     newROM(0x10000),
		RAMSize: 0x2000,
	})
	test.DemandSuccess(t, err)

	for _, v := range cart.RAM() {
		if v != 0xff {
			t.Fatalf("uninitialised RAM should be 0xff")
		}
	}

	nv := cart.NVRAM()
	test.DemandEquality(t, len(nv), 1)
	test.ExpectEquality(t, nv[0].ID, "srm")
	test.ExpectEquality(t, nv[0].Slot, 0)
	test.ExpectEquality(t, len(nv[0].Data), 0x2000)

	// the NVRAM entry is borrowed from the cartridge
	nv[0].Data[0] = 0x12
	test.ExpectEquality(t, cart.RAM()[0], uint8(0x12))

	cart, err = cartridge.NewCartridge(cartridge.Description{ROM: newROM(16)})
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(cart.NVRAM()), 0)
}

func TestMapping(t *testing.T) {
	cart, err := cartridge.NewCartridge(cartridge.Description{
		ROM:     newROM(0x10000),
		RAMSize: 0x2000,
	})
	test.DemandSuccess(t, err)

	b := bus.NewBus()
	test.DemandSuccess(t, cart.Map(b))

	// first bank of ROM
	test.ExpectEquality(t, b.Read(0x008000), uint8(0x00))
	test.ExpectEquality(t, b.Read(0x0080ff), uint8(0xff))

	// second bank continues from the first
	test.ExpectEquality(t, b.Read(0x018001), uint8(0x01))

	// the ROM is mirrored after two banks
	test.ExpectEquality(t, b.Read(0x028003), uint8(0x03))

	// upper mirror of the ROM
	test.ExpectEquality(t, b.Read(0x808004), uint8(0x04))

	// ROM is write protected
	b.Write(0x008010, 0xaa)
	test.ExpectEquality(t, b.Read(0x008010), uint8(0x10))

	// RAM is writable and mirrored every 0x2000 bytes
	b.Write(0x700000, 0x55)
	test.ExpectEquality(t, b.Read(0x700000), uint8(0x55))
	test.ExpectEquality(t, b.Read(0x702000), uint8(0x55))
	test.ExpectEquality(t, cart.RAM()[0], uint8(0x55))

	// mapping a second time is an overlap
	test.ExpectFailure(t, cart.Map(b))
}

func TestChips(t *testing.T) {
	c := cartridge.NewChips(cartridge.ChipMSU1, cartridge.ChipSA1)
	test.ExpectEquality(t, c.Has(cartridge.ChipSA1), true)
	test.ExpectEquality(t, c.Has(cartridge.ChipSuperFX), false)

	// list is in flag order
	l := c.List()
	test.DemandEquality(t, len(l), 2)
	test.ExpectEquality(t, l[0], cartridge.ChipSA1)
	test.ExpectEquality(t, l[1], cartridge.ChipMSU1)
	test.ExpectEquality(t, c.String(), "sa1, msu1")

	ch, ok := cartridge.ParseChip("SPC7110RTC")
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, ch, cartridge.ChipSPC7110RTC)

	_, ok = cartridge.ParseChip("6507")
	test.ExpectFailure(t, ok)
}

func TestParseMode(t *testing.T) {
	m, ok := cartridge.ParseMode("SuperGameBoy")
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, m, cartridge.ModeSuperGameBoy)

	m, ok = cartridge.ParseMode("sufami turbo")
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, m, cartridge.ModeSufamiTurbo)

	_, ok = cartridge.ParseMode("supercharger")
	test.ExpectFailure(t, ok)
}

func TestSerialize(t *testing.T) {
	cart, err := cartridge.NewCartridge(cartridge.Description{
		ROM:     newROM(16),
		RAMSize: 4,
	})
	test.DemandSuccess(t, err)

	sz := serialize.NewSizer()
	cart.Serialize(sz)
	test.ExpectEquality(t, sz.Size(), 4)

	cart.RAM()[2] = 0x99
	sv := serialize.NewSaver(sz.Size())
	cart.Serialize(sv)
	test.DemandSuccess(t, sv.Err())

	cart.RAM()[2] = 0x00
	ld := serialize.NewLoader(sv.Data())
	cart.Serialize(ld)
	test.DemandSuccess(t, ld.Err())
	test.ExpectEquality(t, cart.RAM()[2], uint8(0x99))
}
