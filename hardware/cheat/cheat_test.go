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

package cheat_test

import (
	"testing"

	"github.com/jetsetilly/lockstep/curated"
	"github.com/jetsetilly/lockstep/hardware/bus"
	"github.com/jetsetilly/lockstep/hardware/cheat"
	"github.com/jetsetilly/lockstep/test"
)

func TestDecode(t *testing.T) {
	c, err := cheat.Decode("7e0010ff")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, c, cheat.Code{Addr: 0x7e0010, Data: 0xff})

	c, err = cheat.Decode(" 008000:ea ")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, c, cheat.Code{Addr: 0x008000, Data: 0xea})
	test.ExpectEquality(t, c.String(), "008000:ea")

	for _, s := range []string{"", "7e0010", "7e00100ff", "zz0010:ff", "7e0010:100", "1000000:00"} {
		_, err = cheat.Decode(s)
		test.ExpectFailure(t, err, s)
		test.ExpectSuccess(t, curated.Is(err, cheat.DecodeError), s)
	}
}

func TestReadHook(t *testing.T) {
	mem := bus.NewBus()
	ram := make([]uint8, 0x20000)
	test.DemandSuccess(t, mem.MapRegion(bus.Region{
		Owner:  "wram",
		Mode:   bus.Linear,
		BankLo: 0x7e,
		BankHi: 0x7f,
		AddrLo: 0x0000,
		AddrHi: 0xffff,
		Size:   uint32(len(ram)),
		Read:   func(o uint32) uint8 { return ram[o] },
		Write:  func(o uint32, d uint8) { ram[o] = d },
	}))
	test.DemandSuccess(t, mem.Map("mirror", bus.Shadow, 0x00, 0x3f, 0x0000, 0x1fff,
		func(o uint32) uint8 { return ram[o] },
		func(o uint32, d uint8) { ram[o] = d }))

	ch := cheat.NewCheat()
	ch.Attach(mem)

	mem.Write(0x7e0010, 0x01)
	test.ExpectEquality(t, mem.Read(0x7e0010), uint8(0x01))

	// a code for a mirror affects the canonical address and every other mirror
	ch.Add(cheat.Code{Addr: 0x000010, Data: 0x99})
	test.ExpectEquality(t, mem.Read(0x7e0010), uint8(0x99))
	test.ExpectEquality(t, mem.Read(0x200010), uint8(0x99))

	// writes are not affected
	test.ExpectEquality(t, ram[0x10], uint8(0x01))

	ch.Enable(false)
	test.ExpectEquality(t, mem.Read(0x7e0010), uint8(0x01))
	ch.Enable(true)
	test.ExpectEquality(t, mem.Read(0x7e0010), uint8(0x99))

	test.ExpectEquality(t, len(ch.Codes()), 1)
	ch.Clear()
	test.ExpectEquality(t, mem.Read(0x7e0010), uint8(0x01))

	// detaching removes the hook
	ch.Add(cheat.Code{Addr: 0x7e0010, Data: 0x42})
	ch.Attach(nil)
	test.ExpectEquality(t, mem.Read(0x7e0010), uint8(0x01))
}
