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
)

// Mode of the State type.
type Mode int

// List of valid Mode values.
const (
	Sizing Mode = iota
	Saving
	Loading
)

func (m Mode) String() string {
	switch m {
	case Sizing:
		return "sizing"
	case Saving:
		return "saving"
	case Loading:
		return "loading"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// State walks the fields of a component. Depending on the mode the fields are
// either counted, written to a buffer or read from a buffer.
//
// Errors are sticky. Once an error has occurred all further calls do nothing
// and the error is returned by Err().
type State struct {
	mode Mode
	data []byte
	pos  int
	err  error
}

// NewSizer creates a State in the Sizing mode.
func NewSizer() *State {
	return &State{mode: Sizing}
}

// NewSaver creates a State in the Saving mode. The capacity is a hint for the
// size of the data.
func NewSaver(capacity int) *State {
	return &State{mode: Saving, data: make([]byte, 0, capacity)}
}

// NewLoader creates a State in the Loading mode.
func NewLoader(data []byte) *State {
	return &State{mode: Loading, data: data}
}

// Mode returns the mode of the State.
func (s *State) Mode() Mode {
	return s.mode
}

// Size returns the number of bytes sized, written or read so far.
func (s *State) Size() int {
	return s.pos
}

// Data returns the bytes written so far in the Saving mode.
func (s *State) Data() []byte {
	return s.data
}

// Err returns the first error that occurred.
func (s *State) Err() error {
	return s.err
}

// next returns the slice of the buffer for the next n bytes. in the sizing
// mode the returned slice is nil
func (s *State) next(n int) []byte {
	if s.err != nil {
		return nil
	}

	switch s.mode {
	case Sizing:
		s.pos += n
		return nil
	case Saving:
		s.data = append(s.data, make([]byte, n)...)
	case Loading:
		if s.pos+n > len(s.data) {
			s.err = fmt.Errorf("serialize: short data (need %d bytes at %d of %d)", n, s.pos, len(s.data))
			return nil
		}
	}

	b := s.data[s.pos : s.pos+n]
	s.pos += n
	return b
}

// Uint8 walks a single byte.
func (s *State) Uint8(v *uint8) {
	b := s.next(1)
	if b == nil {
		return
	}
	if s.mode == Saving {
		b[0] = *v
	} else {
		*v = b[0]
	}
}

// Uint16 walks a 16 bit value.
func (s *State) Uint16(v *uint16) {
	b := s.next(2)
	if b == nil {
		return
	}
	if s.mode == Saving {
		binary.LittleEndian.PutUint16(b, *v)
	} else {
		*v = binary.LittleEndian.Uint16(b)
	}
}

// Uint32 walks a 32 bit value.
func (s *State) Uint32(v *uint32) {
	b := s.next(4)
	if b == nil {
		return
	}
	if s.mode == Saving {
		binary.LittleEndian.PutUint32(b, *v)
	} else {
		*v = binary.LittleEndian.Uint32(b)
	}
}

// Uint64 walks a 64 bit value.
func (s *State) Uint64(v *uint64) {
	b := s.next(8)
	if b == nil {
		return
	}
	if s.mode == Saving {
		binary.LittleEndian.PutUint64(b, *v)
	} else {
		*v = binary.LittleEndian.Uint64(b)
	}
}

// Int64 walks a signed 64 bit value.
func (s *State) Int64(v *int64) {
	u := uint64(*v)
	s.Uint64(&u)
	*v = int64(u)
}

// Int walks an int as a signed 64 bit value.
func (s *State) Int(v *int) {
	i := int64(*v)
	s.Int64(&i)
	*v = int(i)
}

// Bool walks a boolean value, stored as a single byte.
func (s *State) Bool(v *bool) {
	var u uint8
	if *v {
		u = 1
	}
	s.Uint8(&u)
	*v = u != 0
}

// Bytes walks a fixed length byte slice. The length of the slice is not
// stored. The slice must be the same length when loading as it was when
// saving.
func (s *State) Bytes(v []byte) {
	b := s.next(len(v))
	if b == nil {
		return
	}
	if s.mode == Saving {
		copy(b, v)
	} else {
		copy(v, b)
	}
}

// Uint16s walks a fixed length slice of 16 bit values.
func (s *State) Uint16s(v []uint16) {
	for i := range v {
		s.Uint16(&v[i])
	}
}
