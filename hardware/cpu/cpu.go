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
	"fmt"

	"github.com/jetsetilly/lockstep/curated"
	"github.com/jetsetilly/lockstep/hardware/bus"
	"github.com/jetsetilly/lockstep/hardware/clocks"
	"github.com/jetsetilly/lockstep/hardware/scheduler"
	"github.com/jetsetilly/lockstep/hardware/serialize"
)

// Sentinal errors.
const (
	MapError = "cpu: %v"
)

// WRAMSize is the size of the work RAM in bytes.
const WRAMSize = 0x20000

// value of the work RAM after power on
const wramFill = 0x55

// register offsets from the start of the B-bus window (2100-21ff)
const (
	regAPULo  = 0x40
	regAPUHi  = 0x7f
	regWMDATA = 0x80
	regWMADDL = 0x81
	regWMADDM = 0x82
	regWMADDH = 0x83
)

// register offsets from the start of the CPU register window (4200-43ff)
const (
	regRDNMI  = 0x10
	regTIMEUP = 0x11
)

const (
	nmiFlag    = 0x80
	timeUpFlag = 0x80
)

// CPU is the main core. It should be the first core added to the scheduler.
type CPU struct {
	sch *scheduler.Scheduler
	ctx *scheduler.Context
	mem *bus.Bus

	exec Executor

	// length of a frame in cycles
	frameLength uint64

	// number of frames completed since power on
	frames uint64

	wram [WRAMSize]uint8

	// address used by the work RAM port. 17 bits
	wramAddr uint32

	// set at every frame boundary and cleared when read
	nmi bool

	apu *APU
}

// NewCPU is the preferred method of initialisation for the CPU type. The
// cores are added to the scheduler in the order CPU then APU. The CPU is
// clocked at the rate and the APU at clocks.APU.
func NewCPU(sch *scheduler.Scheduler, mem *bus.Bus, rate clocks.Rate, frameLength uint64, exec Executor, apuExec Executor) *CPU {
	if exec == nil {
		exec = Idle{}
	}
	cpu := &CPU{
		sch:         sch,
		mem:         mem,
		exec:        exec,
		frameLength: frameLength,
	}
	cpu.ctx = sch.Add("cpu", rate)
	cpu.apu = newAPU(sch, apuExec)
	return cpu
}

func (cpu *CPU) String() string {
	return fmt.Sprintf("cpu: %d cycles, frame %d, wram %05x", cpu.ctx.Clock(), cpu.frames, cpu.wramAddr)
}

// Context returns the scheduling context of the CPU.
func (cpu *CPU) Context() *scheduler.Context {
	return cpu.ctx
}

// APU returns the audio core.
func (cpu *CPU) APU() *APU {
	return cpu.apu
}

// Frames returns the number of frames completed since power on.
func (cpu *CPU) Frames() uint64 {
	return cpu.frames
}

// FrameLength returns the length of a frame in cycles.
func (cpu *CPU) FrameLength() uint64 {
	return cpu.frameLength
}

// WRAM returns the work RAM.
func (cpu *CPU) WRAM() []uint8 {
	return cpu.wram[:]
}

// Map the work RAM and registers of the CPU into the address space. The APU's
// address space is also prepared.
func (cpu *CPU) Map() error {
	err := cpu.mem.MapRegion(bus.Region{
		Owner:  "wram",
		Mode:   bus.Linear,
		BankLo: 0x7e,
		BankHi: 0x7f,
		AddrLo: 0x0000,
		AddrHi: 0xffff,
		Size:   WRAMSize,
		Read:   cpu.readWRAM,
		Write:  cpu.writeWRAM,
	})
	if err != nil {
		return curated.Errorf(MapError, err)
	}

	for _, b := range [][2]uint8{{0x00, 0x3f}, {0x80, 0xbf}} {
		// the first 8k of work RAM is mirrored in the lower half of the system
		// banks
		err = cpu.mem.Map("wram mirror", bus.Shadow, b[0], b[1], 0x0000, 0x1fff, cpu.readWRAM, cpu.writeWRAM)
		if err != nil {
			return curated.Errorf(MapError, err)
		}

		err = cpu.mem.Map("b-bus", bus.Shadow, b[0], b[1], 0x2100, 0x21ff, cpu.readBBus, cpu.writeBBus)
		if err != nil {
			return curated.Errorf(MapError, err)
		}

		err = cpu.mem.Map("cpu", bus.Shadow, b[0], b[1], 0x4200, 0x43ff, cpu.readRegister, cpu.writeRegister)
		if err != nil {
			return curated.Errorf(MapError, err)
		}
	}

	return cpu.apu.mapMemory()
}

// Power on the CPU and APU. The work RAM is cleared.
func (cpu *CPU) Power() {
	for i := range cpu.wram {
		cpu.wram[i] = wramFill
	}
	cpu.apu.power()
	cpu.Reset()
}

// Reset the CPU and APU. The contents of the work RAM are preserved.
func (cpu *CPU) Reset() {
	cpu.ctx.Create(cpu.entry, 0)
	cpu.exec.Reset()
	cpu.frames = 0
	cpu.wramAddr = 0
	cpu.nmi = false
	cpu.apu.reset()
}

// the step function of the CPU
func (cpu *CPU) entry(ctx *scheduler.Context) error {
	budget := ctx.Budget()

	// never run past the frame boundary
	var before uint64
	if cpu.frameLength > 0 {
		before = ctx.Clock() / cpu.frameLength
		budget = min(budget, (before+1)*cpu.frameLength-ctx.Clock())
	}

	res, err := cpu.exec.Execute(cpu.mem, budget)
	if err != nil {
		return err
	}
	ctx.Step(res.Cycles)

	if cpu.frameLength > 0 && ctx.Clock()/cpu.frameLength > before {
		cpu.frames++
		cpu.nmi = true
		ctx.Exit(scheduler.ExitFrameEvent)
	}

	if res.Sync {
		ctx.Synchronize()
	}

	return nil
}

func (cpu *CPU) readWRAM(offset uint32) uint8 {
	return cpu.wram[offset]
}

func (cpu *CPU) writeWRAM(offset uint32, data uint8) {
	cpu.wram[offset] = data
}

// bring the APU up to the time of the CPU. the conversion to APU cycles means
// there is no need to call the scheduler when the APU is already current
func (cpu *CPU) syncAPU() {
	tb := cpu.sch.TimeBase()
	if tb == nil || !cpu.apu.ctx.Active() {
		return
	}
	if cpu.apu.ctx.Clock() > tb.Convert(cpu.ctx.ID(), cpu.apu.ctx.ID(), cpu.ctx.Clock()) {
		return
	}

	// a fault is recorded by the scheduler and ends the turn of the CPU
	_ = cpu.sch.CatchUp(cpu.apu.ctx.ID())
}

func (cpu *CPU) readBBus(offset uint32) uint8 {
	switch {
	case offset >= regAPULo && offset <= regAPUHi:
		cpu.syncAPU()
		return cpu.apu.toCPU[offset&0x03]
	case offset == regWMDATA:
		v := cpu.wram[cpu.wramAddr]
		cpu.wramAddr = (cpu.wramAddr + 1) & (WRAMSize - 1)
		return v
	}
	return cpu.mem.OpenBus()
}

func (cpu *CPU) writeBBus(offset uint32, data uint8) {
	switch {
	case offset >= regAPULo && offset <= regAPUHi:
		cpu.syncAPU()
		cpu.apu.fromCPU[offset&0x03] = data
	case offset == regWMDATA:
		cpu.wram[cpu.wramAddr] = data
		cpu.wramAddr = (cpu.wramAddr + 1) & (WRAMSize - 1)
	case offset == regWMADDL:
		cpu.wramAddr = cpu.wramAddr&0x1ff00 | uint32(data)
	case offset == regWMADDM:
		cpu.wramAddr = cpu.wramAddr&0x100ff | uint32(data)<<8
	case offset == regWMADDH:
		cpu.wramAddr = cpu.wramAddr&0x0ffff | uint32(data&0x01)<<16
	}
}

func (cpu *CPU) readRegister(offset uint32) uint8 {
	switch offset {
	case regRDNMI:
		v := cpu.mem.OpenBus() & 0x7f
		if cpu.nmi {
			v |= nmiFlag
		}
		cpu.nmi = false
		return v
	case regTIMEUP:
		return cpu.mem.OpenBus() & ^uint8(timeUpFlag)
	}
	return cpu.mem.OpenBus()
}

func (cpu *CPU) writeRegister(_ uint32, _ uint8) {
}

// Serialize implements the serialize.Serializable interface. The APU is
// included.
func (cpu *CPU) Serialize(s *serialize.State) {
	cpu.exec.Serialize(s)
	s.Uint64(&cpu.frames)
	s.Bytes(cpu.wram[:])
	s.Uint32(&cpu.wramAddr)
	s.Bool(&cpu.nmi)
	cpu.apu.Serialize(s)
}
