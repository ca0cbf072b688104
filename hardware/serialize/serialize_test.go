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

package serialize_test

import (
	"encoding/binary"
	"testing"

	"github.com/jetsetilly/lockstep/curated"
	"github.com/jetsetilly/lockstep/hardware/serialize"
	"github.com/jetsetilly/lockstep/test"
)

type component struct {
	a   uint8
	b   uint16
	c   uint32
	d   uint64
	e   bool
	f   int
	ram []byte
	w   []uint16

	// derived state, recreated by Plumb()
	sum     int
	plumbed int
}

func newComponent(ramSize int) *component {
	return &component{
		ram: make([]byte, ramSize),
		w:   make([]uint16, 3),
	}
}

func (c *component) Serialize(s *serialize.State) {
	s.Uint8(&c.a)
	s.Uint16(&c.b)
	s.Uint32(&c.c)
	s.Uint64(&c.d)
	s.Bool(&c.e)
	s.Int(&c.f)
	s.Bytes(c.ram)
	s.Uint16s(c.w)
}

func (c *component) Plumb() {
	c.plumbed++
	c.sum = 0
	for _, v := range c.ram {
		c.sum += int(v)
	}
}

func TestSize(t *testing.T) {
	c := newComponent(16)
	s := serialize.NewSizer()
	c.Serialize(s)
	test.ExpectEquality(t, s.Size(), 1+2+4+8+1+8+16+6)

	sr := serialize.NewSerializer()
	sr.Add("TEST", c)
	sr.Add("TST2", newComponent(0))
	test.ExpectEquality(t, sr.Size(), 16+(8+46)+(8+30))
}

func TestRoundTrip(t *testing.T) {
	c := newComponent(4)
	c.a = 1
	c.b = 0x0203
	c.c = 0x04050607
	c.d = 0x08090a0b0c0d0e0f
	c.e = true
	c.f = -10
	copy(c.ram, []byte{1, 2, 3, 4})
	c.w[2] = 0xbeef

	sr := serialize.NewSerializer()
	sr.Add("TEST", c)

	data, err := sr.Save()
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(data), sr.Size())
	test.ExpectEquality(t, string(data[:4]), serialize.Magic)
	test.ExpectEquality(t, string(data[16:20]), "TEST")

	d := newComponent(4)
	sr = serialize.NewSerializer()
	sr.Add("TEST", d)
	test.DemandSuccess(t, sr.Load(data))

	test.ExpectEquality(t, d.a, c.a)
	test.ExpectEquality(t, d.b, c.b)
	test.ExpectEquality(t, d.c, c.c)
	test.ExpectEquality(t, d.d, c.d)
	test.ExpectEquality(t, d.e, c.e)
	test.ExpectEquality(t, d.f, c.f)
	test.ExpectEquality(t, string(d.ram), string(c.ram))
	test.ExpectEquality(t, d.w[2], uint16(0xbeef))
	test.ExpectEquality(t, d.plumbed, 1)
	test.ExpectEquality(t, d.sum, 10)

	// saving again gives an identical state
	again, err := sr.Save()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, string(again), string(data))
}

// a state that doesn't match the configuration is rejected and nothing is
// changed
func TestRejection(t *testing.T) {
	c := newComponent(4)
	c.a = 0x55
	sr := serialize.NewSerializer()
	sr.Add("TEST", c)
	data, err := sr.Save()
	test.DemandSuccess(t, err)

	// a different configuration
	d := newComponent(8)
	d.a = 0x11
	other := serialize.NewSerializer()
	other.Add("TEST", d)
	err = other.Load(data)
	test.ExpectSuccess(t, curated.Is(err, serialize.SizeError))
	test.ExpectEquality(t, d.a, uint8(0x11))
	test.ExpectEquality(t, d.plumbed, 0)

	// a different tag
	e := newComponent(4)
	other = serialize.NewSerializer()
	other.Add("XXXX", e)
	err = other.Load(data)
	test.ExpectSuccess(t, curated.Is(err, serialize.SegmentError))
	test.ExpectEquality(t, e.plumbed, 0)

	// a different version
	bad := append([]byte{}, data...)
	binary.LittleEndian.PutUint32(bad[4:], serialize.Version+1)
	err = sr.Load(bad)
	test.ExpectSuccess(t, curated.Is(err, serialize.VersionError))

	// a bad magic number
	bad = append([]byte{}, data...)
	bad[0] = 'X'
	err = sr.Load(bad)
	test.ExpectSuccess(t, curated.Is(err, serialize.VersionError))

	// truncated
	err = sr.Load(data[:len(data)-1])
	test.ExpectSuccess(t, curated.Is(err, serialize.SizeError))
	err = sr.Load(data[:3])
	test.ExpectSuccess(t, curated.Is(err, serialize.VersionError))

	test.ExpectEquality(t, c.plumbed, 0)
}

func TestShortData(t *testing.T) {
	var v uint32
	s := serialize.NewLoader([]byte{1, 2})
	s.Uint32(&v)
	test.ExpectFailure(t, s.Err())
	test.ExpectEquality(t, v, uint32(0))
}

func TestTag(t *testing.T) {
	test.ExpectEquality(t, serialize.NewTag("CPU").String(), "CPU ")
	test.ExpectEquality(t, serialize.NewTag("TOOLONG").String(), "TOOL")
}

func TestSplit(t *testing.T) {
	a := newComponent(4)
	b := newComponent(0)
	a.ram[2] = 0x99

	sr := serialize.NewSerializer()
	sr.Add("AAAA", a)
	sr.Add("BB", b)
	data, err := sr.Save()
	test.DemandSuccess(t, err)

	blobs, err := serialize.Split(data)
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(blobs), 2)
	test.ExpectEquality(t, blobs[0].Tag.String(), "AAAA")
	test.ExpectEquality(t, blobs[1].Tag.String(), "BB  ")
	test.ExpectEquality(t, len(blobs[0].Data), 34)
	test.ExpectEquality(t, len(blobs[1].Data), 30)
	test.ExpectEquality(t, blobs[0].Data[24+2], uint8(0x99))

	_, err = serialize.Split(data[:len(data)-1])
	test.ExpectSuccess(t, curated.Is(err, serialize.SizeError))
	_, err = serialize.Split([]byte("LKS"))
	test.ExpectSuccess(t, curated.Is(err, serialize.VersionError))
}
