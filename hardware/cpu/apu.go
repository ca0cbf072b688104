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

package cpu

import (
	"github.com/jetsetilly/lockstep/curated"
	"github.com/jetsetilly/lockstep/hardware/bus"
	"github.com/jetsetilly/lockstep/hardware/clocks"
	"github.com/jetsetilly/lockstep/hardware/scheduler"
	"github.com/jetsetilly/lockstep/hardware/serialize"
)

// APURAMSize is the size of the APU's RAM in bytes.
const APURAMSize = 0x10000

// APU is the audio core. It has an address space of its own, separate from
// the main bus.
type APU struct {
	ctx  *scheduler.Context
	mem  *bus.Bus
	exec Executor

	ram [APURAMSize]uint8

	// the communication ports. the CPU writes to fromCPU and reads from toCPU
	fromCPU [4]uint8
	toCPU   [4]uint8
}

func newAPU(sch *scheduler.Scheduler, exec Executor) *APU {
	if exec == nil {
		exec = Idle{}
	}
	return &APU{
		ctx:  sch.Add("apu", clocks.APU),
		mem:  bus.NewBus(),
		exec: exec,
	}
}

// Context returns the scheduling context of the APU.
func (apu *APU) Context() *scheduler.Context {
	return apu.ctx
}

// Bus returns the address space of the APU.
func (apu *APU) Bus() *bus.Bus {
	return apu.mem
}

// RAM returns the APU's RAM.
func (apu *APU) RAM() []uint8 {
	return apu.ram[:]
}

// Ports returns the current value of the communication ports, as seen by the
// APU and by the CPU.
func (apu *APU) Ports() (fromCPU [4]uint8, toCPU [4]uint8) {
	return apu.fromCPU, apu.toCPU
}

func (apu *APU) mapMemory() error {
	apu.mem.Reset()

	err := apu.mem.MapRegion(bus.Region{
		Owner:  "apu ram",
		Mode:   bus.Linear,
		BankLo: 0x00,
		BankHi: 0x00,
		AddrLo: 0x0000,
		AddrHi: 0xffff,
		Size:   APURAMSize,
		Read: func(offset uint32) uint8 {
			return apu.ram[offset]
		},
		Write: func(offset uint32, data uint8) {
			apu.ram[offset] = data
		},
	})
	if err != nil {
		return curated.Errorf(MapError, err)
	}

	err = apu.mem.Map("apu ports", bus.Direct, 0x00, 0x00, 0x00f4, 0x00f7,
		func(addr uint32) uint8 {
			return apu.fromCPU[addr&0x03]
		},
		func(addr uint32, data uint8) {
			apu.toCPU[addr&0x03] = data
		})
	if err != nil {
		return curated.Errorf(MapError, err)
	}

	apu.mem.Seal()
	return nil
}

func (apu *APU) power() {
	clear(apu.ram[:])
}

func (apu *APU) reset() {
	apu.ctx.Create(apu.entry, 0)
	apu.exec.Reset()
	apu.fromCPU = [4]uint8{}
	apu.toCPU = [4]uint8{}
}

// the step function of the APU. the executor counts cycles of the audio
// processor, which is clocked at a fraction of the APU clock
func (apu *APU) entry(ctx *scheduler.Context) error {
	budget := max(ctx.Budget()/clocks.APUDivider, 1)

	res, err := apu.exec.Execute(apu.mem, budget)
	if err != nil {
		return err
	}
	ctx.Step(res.Cycles * clocks.APUDivider)

	if res.Sync {
		ctx.Synchronize()
	}

	return nil
}

// Serialize implements the serialize.Serializable interface.
func (apu *APU) Serialize(s *serialize.State) {
	apu.exec.Serialize(s)
	s.Bytes(apu.ram[:])
	s.Bytes(apu.fromCPU[:])
	s.Bytes(apu.toCPU[:])
}
