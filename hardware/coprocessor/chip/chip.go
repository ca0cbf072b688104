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

package chip

import (
	"fmt"

	"github.com/jetsetilly/lockstep/curated"
	"github.com/jetsetilly/lockstep/hardware/bus"
	"github.com/jetsetilly/lockstep/hardware/cartridge"
	"github.com/jetsetilly/lockstep/hardware/coprocessor"
	"github.com/jetsetilly/lockstep/hardware/cpu"
	"github.com/jetsetilly/lockstep/hardware/scheduler"
	"github.com/jetsetilly/lockstep/hardware/serialize"
)

// Sentinal errors.
const (
	ChipError = "chip: %s: %v"
)

// Chip implements the coprocessor.Component interface. Chips with a
// frequency also implement the coprocessor.Core interface.
type Chip struct {
	host coprocessor.Host
	def  Definition

	// nil if the chip is not a core
	ctx  *scheduler.Context
	exec cpu.Executor

	regs []uint8
}

// NewChip is the preferred method of initialisation for the Chip type. If
// the chip is a core it is added to the host's scheduler. The executor is
// ignored if the chip is not a core. If it is nil the Idle executor is used.
func NewChip(host coprocessor.Host, ch cartridge.Chip, exec cpu.Executor) (*Chip, error) {
	if int(ch) < 0 || int(ch) >= cartridge.NumChips {
		return nil, curated.Errorf(ChipError, ch, "unknown chip")
	}

	c := &Chip{
		host: host,
		def:  Definitions[ch],
	}

	var size int
	for _, w := range c.def.Windows {
		size = max(size, int(w.AddrHi)-int(w.AddrLo)+1)
	}
	c.regs = make([]uint8, size)

	if c.def.Frequency > 0 {
		if exec == nil {
			exec = cpu.Idle{}
		}
		c.exec = exec
		c.ctx = host.Scheduler().Add(c.Label(), c.def.Frequency)
	}

	return c, nil
}

func (c *Chip) String() string {
	if c.ctx == nil {
		return c.Label()
	}
	return fmt.Sprintf("%s: %d cycles", c.Label(), c.ctx.Clock())
}

// Label implements the coprocessor.Component interface.
func (c *Chip) Label() string {
	return c.def.Chip.String()
}

// Tag implements the coprocessor.Component interface.
func (c *Chip) Tag() string {
	return c.def.Tag
}

// Definition returns the definition of the chip.
func (c *Chip) Definition() Definition {
	return c.def
}

// Context returns the scheduling context of the chip. The context is nil if
// the chip is not a core.
func (c *Chip) Context() *scheduler.Context {
	return c.ctx
}

// Registers returns the register file of the chip.
func (c *Chip) Registers() []uint8 {
	return c.regs
}

// Map implements the coprocessor.Component interface.
func (c *Chip) Map() error {
	for _, w := range c.def.Windows {
		err := c.host.Bus().Map(c.Label(), bus.Direct, w.BankLo, w.BankHi, w.AddrLo, w.AddrHi,
			func(addr uint32) uint8 {
				return c.read(uint32(uint16(addr) - w.AddrLo))
			},
			func(addr uint32, data uint8) {
				c.write(uint32(uint16(addr)-w.AddrLo), data)
			})
		if err != nil {
			return curated.Errorf(ChipError, c.Label(), err)
		}
	}
	return nil
}

// Power implements the coprocessor.Component interface.
func (c *Chip) Power() {
	clear(c.regs)
	c.Reset()
}

// Reset implements the coprocessor.Component interface.
func (c *Chip) Reset() {
	if c.ctx == nil {
		return
	}
	c.ctx.Create(c.entry, 0)
	c.exec.Reset()
}

// the step function of a chip that is a core
func (c *Chip) entry(ctx *scheduler.Context) error {
	res, err := c.exec.Execute(c.host.Bus(), ctx.Budget())
	if err != nil {
		return err
	}
	ctx.Step(res.Cycles)
	if res.Sync {
		ctx.Synchronize()
	}
	return nil
}

// bring the chip up to the time of the core accessing the registers
func (c *Chip) catchUp() {
	if c.ctx == nil {
		return
	}

	// a fault is recorded by the scheduler and ends the turn of the core
	_ = c.host.Scheduler().CatchUp(c.ctx.ID())
}

func (c *Chip) read(reg uint32) uint8 {
	c.catchUp()
	return c.regs[reg]
}

func (c *Chip) write(reg uint32, data uint8) {
	c.catchUp()
	c.regs[reg] = data
}

// Serialize implements the serialize.Serializable interface.
func (c *Chip) Serialize(s *serialize.State) {
	if c.exec != nil {
		c.exec.Serialize(s)
	}
	s.Bytes(c.regs)
}
