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

package serialize

import (
	"encoding/binary"
	"fmt"

	"github.com/jetsetilly/lockstep/curated"
)

// Magic identifies a save state.
const Magic = "LKST"

// Version of the save state format. The version must be incremented whenever
// the state of any component changes shape.
const Version = uint32(1)

// the size of the header and of each segment header
const (
	headerSize        = 16
	segmentHeaderSize = 8
)

// Sentinal errors.
const (
	VersionError = "serialize: incompatible state (%v)"
	SizeError    = "serialize: state size mismatch (%d bytes, expected %d)"
	SegmentError = "serialize: segment %d: %v"
	ApplyError   = "serialize: applying segment %s: %v"
)

// Serializable is implemented by any component that has state that must be
// saved.
type Serializable interface {
	Serialize(s *State)
}

// Plumber is implemented by components that have derived state that needs
// to be recreated after a state has been loaded. For example, the pointer to
// a memory bank.
type Plumber interface {
	Plumb()
}

// Tag identifies a segment in the save state.
type Tag [4]byte

// NewTag creates a tag from a string. The string is truncated or padded with
// spaces to fit.
func NewTag(s string) Tag {
	t := Tag{' ', ' ', ' ', ' '}
	copy(t[:], s)
	return t
}

func (t Tag) String() string {
	return string(t[:])
}

// Segment is a component of the save state and the tag it is stored under.
type Segment struct {
	Tag       Tag
	Component Serializable
}

// Serializer describes the layout of a save state for a hardware
// configuration.
type Serializer struct {
	segments []Segment
}

// NewSerializer is the preferred method of initialisation for the Serializer
// type.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// Clear all segments.
func (sr *Serializer) Clear() {
	sr.segments = sr.segments[:0]
}

// Add a segment to the end of the layout.
func (sr *Serializer) Add(tag string, c Serializable) {
	sr.segments = append(sr.segments, Segment{Tag: NewTag(tag), Component: c})
}

// Segments returns the list of segments in the order they appear in the
// state.
func (sr *Serializer) Segments() []Segment {
	return sr.segments
}

func (sr *Serializer) String() string {
	s := fmt.Sprintf("%d bytes:", sr.Size())
	for _, seg := range sr.segments {
		s = fmt.Sprintf("%s %s", s, seg.Tag)
	}
	return s
}

func segmentSize(c Serializable) int {
	s := NewSizer()
	c.Serialize(s)
	return s.Size()
}

// Size returns the size of the save state for the current configuration.
func (sr *Serializer) Size() int {
	n := headerSize
	for _, seg := range sr.segments {
		n += segmentHeaderSize + segmentSize(seg.Component)
	}
	return n
}

// Save the state of all segments.
func (sr *Serializer) Save() ([]byte, error) {
	size := sr.Size()

	data := make([]byte, headerSize, size)
	copy(data[0:4], Magic)
	binary.LittleEndian.PutUint32(data[4:], Version)
	binary.LittleEndian.PutUint32(data[8:], uint32(size))
	binary.LittleEndian.PutUint32(data[12:], uint32(len(sr.segments)))

	for i, seg := range sr.segments {
		s := NewSaver(segmentSize(seg.Component))
		seg.Component.Serialize(s)
		if s.Err() != nil {
			return nil, curated.Errorf(SegmentError, i, s.Err())
		}

		var hdr [segmentHeaderSize]byte
		copy(hdr[0:4], seg.Tag[:])
		binary.LittleEndian.PutUint32(hdr[4:], uint32(len(s.Data())))
		data = append(data, hdr[:]...)
		data = append(data, s.Data()...)
	}

	if len(data) != size {
		return nil, curated.Errorf(SizeError, len(data), size)
	}

	return data, nil
}

// Validate checks that the data is a save state for the current
// configuration. No component is changed.
func (sr *Serializer) Validate(data []byte) error {
	if len(data) < headerSize {
		return curated.Errorf(VersionError, "too short")
	}
	if string(data[0:4]) != Magic {
		return curated.Errorf(VersionError, "not a save state")
	}
	if v := binary.LittleEndian.Uint32(data[4:]); v != Version {
		return curated.Errorf(VersionError, fmt.Sprintf("version %d", v))
	}

	size := sr.Size()
	if n := binary.LittleEndian.Uint32(data[8:]); int(n) != size || len(data) != size {
		return curated.Errorf(SizeError, len(data), size)
	}
	if n := binary.LittleEndian.Uint32(data[12:]); int(n) != len(sr.segments) {
		return curated.Errorf(VersionError, fmt.Sprintf("%d segments, expected %d", n, len(sr.segments)))
	}

	pos := headerSize
	for i, seg := range sr.segments {
		var tag Tag
		copy(tag[:], data[pos:pos+4])
		if tag != seg.Tag {
			return curated.Errorf(SegmentError, i, fmt.Sprintf("tag %q, expected %q", tag, seg.Tag))
		}
		l := int(binary.LittleEndian.Uint32(data[pos+4:]))
		if l != segmentSize(seg.Component) {
			return curated.Errorf(SegmentError, i, fmt.Sprintf("length %d, expected %d", l, segmentSize(seg.Component)))
		}
		pos += segmentHeaderSize + l
	}

	return nil
}

// Load a save state. The state is validated before any component is changed.
// After loading, all components implementing the Plumber interface are
// plumbed in the order of the segments.
func (sr *Serializer) Load(data []byte) error {
	err := sr.Validate(data)
	if err != nil {
		return err
	}

	pos := headerSize
	for _, seg := range sr.segments {
		l := int(binary.LittleEndian.Uint32(data[pos+4:]))
		pos += segmentHeaderSize

		s := NewLoader(data[pos : pos+l])
		seg.Component.Serialize(s)
		if s.Err() != nil {
			return curated.Errorf(ApplyError, seg.Tag, s.Err())
		}

		pos += l
	}

	for _, seg := range sr.segments {
		if p, ok := seg.Component.(Plumber); ok {
			p.Plumb()
		}
	}

	return nil
}

// Blob is the raw data of one segment of a save state.
type Blob struct {
	Tag  Tag
	Data []byte
}

// Split a save state into its segments without applying them to any
// component. The Data field of each Blob refers to the data argument.
func Split(data []byte) ([]Blob, error) {
	if len(data) < headerSize || string(data[0:4]) != Magic {
		return nil, curated.Errorf(VersionError, "not a save state")
	}
	if n := binary.LittleEndian.Uint32(data[8:]); int(n) != len(data) {
		return nil, curated.Errorf(SizeError, len(data), n)
	}

	count := int(binary.LittleEndian.Uint32(data[12:]))
	blobs := make([]Blob, 0, count)

	pos := headerSize
	for i := range count {
		if pos+segmentHeaderSize > len(data) {
			return nil, curated.Errorf(SegmentError, i, "truncated")
		}
		var b Blob
		copy(b.Tag[:], data[pos:pos+4])
		l := int(binary.LittleEndian.Uint32(data[pos+4:]))
		pos += segmentHeaderSize
		if pos+l > len(data) {
			return nil, curated.Errorf(SegmentError, i, "truncated")
		}
		b.Data = data[pos : pos+l]
		blobs = append(blobs, b)
		pos += l
	}

	return blobs, nil
}
