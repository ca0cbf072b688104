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

package hardware

import (
	"github.com/jetsetilly/lockstep/curated"
	"github.com/jetsetilly/lockstep/hardware/scheduler"
	"github.com/jetsetilly/lockstep/hardware/serialize"
)

// the state of the system that is not owned by any component
type systemState struct {
	sys *System
}

// Serialize implements the serialize.Serializable interface. The bus mapping
// is fixed for the loaded cartridge so the open bus value is the only state of
// the bus.
func (st systemState) Serialize(s *serialize.State) {
	st.sys.sch.Serialize(s)

	v := st.sys.mem.OpenBus()
	s.Uint8(&v)
	if s.Mode() == serialize.Loading {
		st.sys.mem.SetOpenBus(v)
	}
}

// Plumb implements the serialize.Plumber interface.
func (st systemState) Plumb() {
	st.sys.sch.Plumb()
}

// the list of segments is decided by the components that are present
func (sys *System) buildSerializer() {
	sys.serializer.Clear()
	sys.serializer.Add("SYST", systemState{sys: sys})
	sys.serializer.Add("CPU ", sys.cpu)
	if sys.cart.RAMSize > 0 {
		sys.serializer.Add("CART", sys.cart)
	}
	for _, c := range sys.components {
		sys.serializer.Add(c.Tag(), c)
	}
}

// SerializeSize returns the size of the state created by Serialize() for the
// loaded cartridge. Returns zero if no cartridge is loaded.
func (sys *System) SerializeSize() int {
	if sys.cart == nil {
		return 0
	}
	return sys.serializer.Size()
}

// Segments returns the tags of the segments in the state created by
// Serialize(), in order.
func (sys *System) Segments() []string {
	var tags []string
	for _, s := range sys.serializer.Segments() {
		tags = append(tags, s.Tag.String())
	}
	return tags
}

func (sys *System) quiesced() error {
	if !sys.powered {
		return curated.Errorf(NotPoweredError)
	}
	if !sys.sch.Quiesced() {
		return curated.Errorf(scheduler.NotQuiescedError, sys.sch.State())
	}
	return nil
}

// Serialize the state of the system. The system must not be running. If the
// system is powered every core is brought to the same point in time with
// RunToSave() before the state is saved. A system that has been loaded but
// not powered can also be saved.
func (sys *System) Serialize() ([]byte, error) {
	if sys.cart == nil {
		return nil, curated.Errorf(NotLoadedError)
	}
	if !sys.powered {
		return sys.serializer.Save()
	}
	if err := sys.quiesced(); err != nil {
		return nil, err
	}
	if err := sys.RunToSave(); err != nil {
		return nil, err
	}
	return sys.serializer.Save()
}

// Unserialize restores a state created by Serialize(). The state must have
// been created with the same cartridge configuration. If the state is
// rejected the state of the system is unchanged.
func (sys *System) Unserialize(data []byte) error {
	if err := sys.quiesced(); err != nil {
		return err
	}
	return sys.serializer.Load(data)
}
