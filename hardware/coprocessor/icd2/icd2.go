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

package icd2

import (
	"fmt"

	"github.com/jetsetilly/lockstep/curated"
	"github.com/jetsetilly/lockstep/hardware/bus"
	"github.com/jetsetilly/lockstep/hardware/coprocessor"
	"github.com/jetsetilly/lockstep/hardware/scheduler"
	"github.com/jetsetilly/lockstep/hardware/serialize"
)

// Sentinal errors.
const (
	MapError = "icd2: %v"
)

// Divider of the main core's frequency.
const Divider = 5

// AudioFrequency is the rate of the samples produced by the handheld.
const AudioFrequency = 4 * 1024 * 1024

// size of a command packet and the number of packets that can be queued
const (
	PacketSize = 16
	maxPackets = 64
)

// number of bytes in the VRAM port buffer
const vramSize = 320

// revision of the bridge as reported by register 600f
const revision = 0x21

// ICD2 implements the coprocessor.Core interface.
type ICD2 struct {
	host     coprocessor.Host
	ctx      *scheduler.Context
	handheld Handheld

	// snooped registers of the main core
	r2181 uint8
	r2182 uint8

	r6000 uint8
	r6001 uint8
	r6003 uint8
	r6004 [4]uint8
	r7000 [PacketSize]uint8
	r7800 uint16

	// number of joypads in use
	mltReq uint8
	joypID uint8

	// edge latches of the select lines of the handheld's joypad register
	joyp15lock bool
	joyp14lock bool

	// packets sent bit by bit through the joypad register. a packet is only
	// accepted after a reset pulse with both select lines low
	pulselock    bool
	strobelock   bool
	packetlock   bool
	joypPacket   [PacketSize]uint8
	packetOffset uint8
	bitOffset    uint8
	bitData      uint8

	// row of the display buffer being transferred by DMA
	row uint8

	vram [vramSize]uint8

	packets    [maxPackets][PacketSize]uint8
	packetSize uint32
}

// NewICD2 is the preferred method of initialisation for the ICD2 type. The
// bridge is added to the host's scheduler. If handheld is nil a NullHandheld
// is used.
func NewICD2(host coprocessor.Host, handheld Handheld) *ICD2 {
	if handheld == nil {
		handheld = NullHandheld{}
	}
	icd := &ICD2{
		host:     host,
		handheld: handheld,
	}
	icd.ctx = host.Scheduler().Add(icd.Label(), host.CPUFrequency()/Divider)
	return icd
}

func (icd *ICD2) String() string {
	return fmt.Sprintf("icd2: r6003=%02x packets=%d", icd.r6003, icd.packetSize)
}

// Label implements the coprocessor.Component interface.
func (icd *ICD2) Label() string {
	return "icd2"
}

// Tag implements the coprocessor.Component interface.
func (icd *ICD2) Tag() string {
	return "ICD2"
}

// Context implements the coprocessor.Core interface.
func (icd *ICD2) Context() *scheduler.Context {
	return icd.ctx
}

// Handheld returns the handheld subsystem driven by the bridge.
func (icd *ICD2) Handheld() Handheld {
	return icd.handheld
}

// Map implements the coprocessor.Component interface. The registers of the
// main core at 2181, 2182 and 420b are snooped. Accesses are forwarded to the
// region that was mapped to the address beforehand.
func (icd *ICD2) Map() error {
	mem := icd.host.Bus()

	for _, b := range [][2]uint8{{0x00, 0x3f}, {0x80, 0xbf}} {
		for _, a := range [][2]uint16{{0x2181, 0x2182}, {0x420b, 0x420b}} {
			prev, _ := mem.Resolve(uint32(b[0])<<16 | uint32(a[0]))
			err := mem.Map(icd.Label(), bus.Direct, b[0], b[1], a[0], a[1],
				func(addr uint32) uint8 {
					return icd.readSnoop(prev, addr)
				},
				func(addr uint32, data uint8) {
					icd.writeSnoop(prev, addr, data)
				})
			if err != nil {
				return curated.Errorf(MapError, err)
			}
		}

		err := mem.Map(icd.Label(), bus.Direct, b[0], b[1], 0x6000, 0x7fff, icd.read, icd.write)
		if err != nil {
			return curated.Errorf(MapError, err)
		}
	}

	return nil
}

// Power implements the coprocessor.Component interface.
func (icd *ICD2) Power() {
	icd.host.Audio().SetCoprocessorFrequency(AudioFrequency)
	icd.Reset()
}

// Reset implements the coprocessor.Component interface.
func (icd *ICD2) Reset() {
	icd.ctx.Create(icd.entry, 0)
	icd.ctx.SetDrain(icd.RunToSave)

	icd.r2181 = 0x00
	icd.r2182 = 0x00
	icd.r6000 = 0x00
	icd.r6001 = 0x00
	icd.r6003 = 0x00
	icd.r6004 = [4]uint8{0xff, 0xff, 0xff, 0xff}
	icd.r7000 = [PacketSize]uint8{}
	icd.r7800 = 0x0000
	icd.mltReq = 0
	icd.joypID = 3
	icd.joyp15lock = false
	icd.joyp14lock = false
	icd.pulselock = true
	icd.strobelock = false
	icd.packetlock = false
	icd.joypPacket = [PacketSize]uint8{}
	icd.packetOffset = 0
	icd.bitOffset = 0
	icd.bitData = 0
	icd.row = 0

	for i := range icd.vram {
		icd.vram[i] = 0xff
	}

	icd.packetSize = 0

	icd.handheld.Power()
}

// RunToSave implements the coprocessor.RunToSave interface.
func (icd *ICD2) RunToSave() error {
	return icd.handheld.RunToSave()
}

// the step function of the bridge
func (icd *ICD2) entry(ctx *scheduler.Context) error {
	budget := ctx.Budget()

	if icd.r6003&0x80 == 0x80 {
		n, err := icd.handheld.Run(icd, budget)
		if err != nil {
			return err
		}
		ctx.Step(n)
		return nil
	}

	// the handheld is halted
	sink := icd.host.Audio()
	for range budget {
		sink.CoprocessorSample(0, 0)
	}
	ctx.Step(budget)

	return nil
}

// bring the bridge up to the time of the core accessing the registers
func (icd *ICD2) catchUp() {
	// a fault is recorded by the scheduler and ends the turn of the core
	_ = icd.host.Scheduler().CatchUp(icd.ctx.ID())
}

func (icd *ICD2) readSnoop(prev *bus.Region, addr uint32) uint8 {
	if prev == nil || prev.Read == nil {
		return icd.host.Bus().OpenBus()
	}
	return prev.Read(prev.Offset(addr))
}

func (icd *ICD2) writeSnoop(prev *bus.Region, addr uint32, data uint8) {
	switch uint16(addr) {
	case 0x2181:
		icd.r2181 = data
	case 0x2182:
		icd.r2182 = data
	case 0x420b:
		// a transfer from the VRAM port selects the next row of the display
		if data == 0x10 && icd.r2181 == 0x00 && icd.r2182 == 0x60 {
			icd.row = (icd.row + 1) & 0x03
		}
	}

	if prev != nil && prev.Write != nil {
		prev.Write(prev.Offset(addr), data)
	}
}

func (icd *ICD2) read(addr uint32) uint8 {
	icd.catchUp()

	addr &= 0xffff

	switch {
	case addr == 0x6000:
		icd.r6000 = icd.handheld.LY()&0xf8 | icd.row
		return icd.r6000
	case addr == 0x6002:
		if icd.packetSize == 0 {
			return 0x00
		}
		icd.r7000 = icd.packets[0]
		copy(icd.packets[:], icd.packets[1:icd.packetSize])
		icd.packetSize--
		return 0x01
	case addr == 0x600f:
		return revision
	case addr&0xfff0 == 0x7000:
		return icd.r7000[addr&0x0f]
	case addr == 0x7800:
		v := icd.vram[icd.r7800]
		icd.r7800 = (icd.r7800 + 1) % vramSize
		return v
	}

	return 0x00
}

func (icd *ICD2) write(addr uint32, data uint8) {
	icd.catchUp()

	addr &= 0xffff

	switch {
	case addr == 0x6001:
		icd.r6001 = data
		icd.r7800 = 0
	case addr == 0x6003:
		// the handheld is powered on the rising edge of bit 7
		if icd.r6003&0x80 == 0x00 && data&0x80 == 0x80 {
			icd.handheld.Power()
			icd.packetSize = 0
			icd.joypID = 3
		}
		switch data & 0x03 {
		case 0:
			icd.mltReq = 0
		case 1:
			icd.mltReq = 1
		case 2:
			icd.mltReq = 1
		case 3:
			icd.mltReq = 3
		}
		icd.r6003 = data
	case addr >= 0x6004 && addr <= 0x6007:
		icd.r6004[addr-0x6004] = data
	}
}

// Joypad implements the Link interface.
func (icd *ICD2) Joypad(port int) uint8 {
	return icd.r6004[uint8(port)&icd.mltReq]
}

// JoypRead implements the Link interface.
func (icd *ICD2) JoypRead() uint8 {
	return icd.r6004[icd.joypID&icd.mltReq]
}

// JoypWrite implements the Link interface. Raising both select lines moves to
// the next joypad. A reset pulse followed by 128 bits and a stop bit sends a
// command packet.
func (icd *ICD2) JoypWrite(p15 bool, p14 bool) {
	if p15 && p14 {
		if !icd.joyp15lock && !icd.joyp14lock {
			icd.joyp15lock = true
			icd.joyp14lock = true
			icd.joypID = (icd.joypID + 1) & 0x03
		}
	}
	if !p15 && p14 {
		icd.joyp15lock = false
	}
	if p15 && !p14 {
		icd.joyp14lock = false
	}

	// reset pulse
	if !p15 && !p14 {
		icd.pulselock = false
		icd.packetOffset = 0
		icd.bitOffset = 0
		icd.strobelock = true
		icd.packetlock = false
		return
	}

	if icd.pulselock {
		return
	}

	if p15 && p14 {
		icd.strobelock = false
		return
	}

	if icd.strobelock {
		// malformed packet
		icd.packetlock = false
		icd.pulselock = true
		icd.bitOffset = 0
		icd.packetOffset = 0
		return
	}

	// p15 low is a one and p14 low is a zero
	bit := !p15
	icd.strobelock = true

	if icd.packetlock {
		// the stop bit is a zero
		if p15 && !p14 {
			if icd.joypPacket[0]>>3 == 0x11 {
				icd.mltReq = icd.joypPacket[1] & 0x03
				if icd.mltReq == 2 {
					icd.mltReq = 3
				}
				icd.joypID = 0
			}
			icd.Packet(icd.joypPacket)
			icd.packetlock = false
			icd.pulselock = true
		}
		return
	}

	icd.bitData >>= 1
	if bit {
		icd.bitData |= 0x80
	}
	icd.bitOffset++
	if icd.bitOffset < 8 {
		return
	}

	icd.bitOffset = 0
	icd.joypPacket[icd.packetOffset] = icd.bitData
	icd.packetOffset++
	if icd.packetOffset < PacketSize {
		return
	}
	icd.packetlock = true
}

// Sample implements the Link interface.
func (icd *ICD2) Sample(left int16, right int16) {
	icd.host.Audio().CoprocessorSample(left, right)
}

// Packet implements the Link interface. Packets are dropped if the queue is
// full.
func (icd *ICD2) Packet(data [PacketSize]uint8) {
	if icd.packetSize >= maxPackets {
		return
	}
	icd.packets[icd.packetSize] = data
	icd.packetSize++
}

// Row implements the Link interface.
func (icd *ICD2) Row(data []uint8) {
	copy(icd.vram[:], data)
}

// Serialize implements the serialize.Serializable interface.
func (icd *ICD2) Serialize(s *serialize.State) {
	s.Uint8(&icd.r2181)
	s.Uint8(&icd.r2182)
	s.Uint8(&icd.r6000)
	s.Uint8(&icd.r6001)
	s.Uint8(&icd.r6003)
	s.Bytes(icd.r6004[:])
	s.Bytes(icd.r7000[:])
	s.Uint16(&icd.r7800)
	s.Uint8(&icd.mltReq)
	s.Uint8(&icd.joypID)
	s.Bool(&icd.joyp15lock)
	s.Bool(&icd.joyp14lock)
	s.Bool(&icd.pulselock)
	s.Bool(&icd.strobelock)
	s.Bool(&icd.packetlock)
	s.Bytes(icd.joypPacket[:])
	s.Uint8(&icd.packetOffset)
	s.Uint8(&icd.bitOffset)
	s.Uint8(&icd.bitData)
	s.Uint8(&icd.row)
	s.Bytes(icd.vram[:])
	for i := range icd.packets {
		s.Bytes(icd.packets[i][:])
	}
	s.Uint32(&icd.packetSize)
	icd.handheld.Serialize(s)
}

// Plumb implements the serialize.Plumber interface.
func (icd *ICD2) Plumb() {
	if icd.packetSize > maxPackets {
		icd.packetSize = maxPackets
	}
	icd.r7800 %= vramSize
	if icd.packetOffset >= PacketSize {
		icd.packetOffset = 0
		icd.packetlock = true
	}
	icd.bitOffset &= 0x07
}
