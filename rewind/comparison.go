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

package rewind

import (
	"github.com/jetsetilly/lockstep/curated"
	"github.com/jetsetilly/lockstep/hardware/serialize"
)

// GetComparison returns the comparison state. Returns nil if there is no
// comparison state.
func (r *Rewind) GetComparison() *State {
	return r.comparison
}

// SetComparison sets the comparison state to the entry for the frame, or the
// nearest earlier entry.
func (r *Rewind) SetComparison(frame uint64) {
	for n := r.Len() - 1; n >= 0; n-- {
		s := r.entries[r.index(n)]
		if s.Frame <= frame {
			r.comparison = s
			return
		}
	}
}

// LockComparison stops the comparison state being updated by
// RecordFrameState().
func (r *Rewind) LockComparison(locked bool) {
	r.comparisonLocked = locked
}

// Differences returns the tags of the segments that differ between the
// comparison state and the current entry.
func (r *Rewind) Differences() ([]string, error) {
	if r.comparison == nil || r.Len() == 0 {
		return nil, curated.Errorf(EmptyError)
	}

	a, err := serialize.Split(r.comparison.data)
	if err != nil {
		return nil, curated.Errorf(RewindError, err)
	}
	b, err := serialize.Split(r.entries[r.curr].data)
	if err != nil {
		return nil, curated.Errorf(RewindError, err)
	}
	if len(a) != len(b) {
		return nil, curated.Errorf(RewindError, "states are for different cartridges")
	}

	var diff []string
	for i := range a {
		if a[i].Tag != b[i].Tag || string(a[i].Data) != string(b[i].Data) {
			diff = append(diff, b[i].Tag.String())
		}
	}
	return diff, nil
}
