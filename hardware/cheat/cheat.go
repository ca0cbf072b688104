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

// Package cheat substitutes the values read from the bus. Codes are installed
// as a read hook on the bus and have no effect on writes.
//
// The first 8k of work RAM is visible in more than one bank. A code for any
// of the mirrors affects reads from all of them.
package cheat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jetsetilly/lockstep/curated"
	"github.com/jetsetilly/lockstep/hardware/bus"
)

// Sentinal errors.
const (
	DecodeError = "cheat: cannot decode %q"
)

// Code is a single cheat code.
type Code struct {
	Addr uint32
	Data uint8
}

func (c Code) String() string {
	return fmt.Sprintf("%06x:%02x", c.Addr, c.Data)
}

// Decode a code. Codes are either eight hex digits, the address followed by
// the data, or the address and data separated by a colon.
func Decode(s string) (Code, error) {
	s = strings.TrimSpace(s)

	var a, d string
	if strings.Contains(s, ":") {
		a, d, _ = strings.Cut(s, ":")
	} else if len(s) == 8 {
		a, d = s[:6], s[6:]
	} else {
		return Code{}, curated.Errorf(DecodeError, s)
	}

	addr, err := strconv.ParseUint(a, 16, 24)
	if err != nil {
		return Code{}, curated.Errorf(DecodeError, s)
	}
	data, err := strconv.ParseUint(d, 16, 8)
	if err != nil {
		return Code{}, curated.Errorf(DecodeError, s)
	}

	return Code{Addr: uint32(addr), Data: uint8(data)}, nil
}

// mirror returns the canonical address for the address
func mirror(addr uint32) uint32 {
	addr &= 0xffffff
	bank := uint8(addr >> 16)
	if (bank <= 0x3f || (bank >= 0x80 && bank <= 0xbf)) && addr&0xffff < 0x2000 {
		return 0x7e0000 | addr&0xffff
	}
	return addr
}

// Cheat is the list of codes applied to a bus.
type Cheat struct {
	enabled bool
	codes   []Code

	// canonical address to data
	lookup map[uint32]uint8

	mem *bus.Bus
}

// NewCheat is the preferred method of initialisation for the Cheat type.
// Cheats are enabled by default but there are no codes.
func NewCheat() *Cheat {
	return &Cheat{
		enabled: true,
		lookup:  make(map[uint32]uint8),
	}
}

func (ch *Cheat) String() string {
	s := strings.Builder{}
	if !ch.enabled {
		s.WriteString("disabled ")
	}
	for i, c := range ch.codes {
		if i > 0 {
			s.WriteString(" ")
		}
		s.WriteString(c.String())
	}
	return s.String()
}

// Attach the cheats to the bus. Any previously attached bus is detached. A
// nil bus detaches the cheats.
func (ch *Cheat) Attach(mem *bus.Bus) {
	if ch.mem != nil {
		ch.mem.SetReadHook(nil)
	}
	ch.mem = mem
	ch.synchronise()
}

// Enabled returns true if the cheats are enabled.
func (ch *Cheat) Enabled() bool {
	return ch.enabled
}

// Enable or disable the cheats without removing the codes.
func (ch *Cheat) Enable(enable bool) {
	ch.enabled = enable
	ch.synchronise()
}

// Add codes to the list.
func (ch *Cheat) Add(codes ...Code) {
	ch.codes = append(ch.codes, codes...)
	ch.synchronise()
}

// Clear all codes.
func (ch *Cheat) Clear() {
	ch.codes = ch.codes[:0]
	ch.synchronise()
}

// Codes returns a copy of the list of codes.
func (ch *Cheat) Codes() []Code {
	return append([]Code{}, ch.codes...)
}

// rebuild the lookup table and install or remove the read hook. the hook is
// only installed when it would have an effect
func (ch *Cheat) synchronise() {
	clear(ch.lookup)
	for _, c := range ch.codes {
		ch.lookup[mirror(c.Addr)] = c.Data
	}

	if ch.mem == nil {
		return
	}

	if ch.enabled && len(ch.lookup) > 0 {
		ch.mem.SetReadHook(ch.read)
	} else {
		ch.mem.SetReadHook(nil)
	}
}

func (ch *Cheat) read(addr uint32, data uint8) uint8 {
	if v, ok := ch.lookup[mirror(addr)]; ok {
		return v
	}
	return data
}
