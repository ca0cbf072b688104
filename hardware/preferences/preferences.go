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

// Package preferences contains the preference values that affect the
// emulated hardware. The values are stored on disk with the prefs package.
package preferences

import (
	"strings"

	"github.com/jetsetilly/lockstep/curated"
	"github.com/jetsetilly/lockstep/prefs"
)

// InvalidPreference is returned when a preference value is out of range.
const InvalidPreference = "preferences: invalid value for %s (%v)"

// Default values for the hardware preferences.
const (
	DefaultRegion          = "AUTO"
	DefaultQuantum         = 1364
	DefaultRunawayLimit    = 100000
	DefaultRewindDepth     = 100
	DefaultRewindFrequency = 1
)

// Preferences defines and collates all the preference values used by the
// hardware.
type Preferences struct {
	dsk *prefs.Disk

	// the region of the console. "AUTO" uses the region of the loaded
	// cartridge
	Region prefs.String

	// the number of main CPU cycles a core may run ahead of the most lagging
	// core before the scheduler switches cores
	Quantum prefs.Int

	// the longest a core may run between yields, in microseconds of emulated
	// time, before it is considered to have run away
	RunawayLimit prefs.Int

	// number of frame snapshots kept by the rewind system and how many frames
	// between each snapshot
	RewindDepth     prefs.Int
	RewindFrequency prefs.Int
}

func (p *Preferences) String() string {
	return p.dsk.String()
}

// NewPreferences is the preferred method of initialisation for the
// Preferences type. The path argument can be empty, in which case the values
// will never be stored on disk.
func NewPreferences(path string) (*Preferences, error) {
	p := &Preferences{}
	p.SetDefaults()

	p.Region.SetHookPre(func(v prefs.Value) error {
		switch strings.ToUpper(v.(string)) {
		case "AUTO", "NTSC", "PAL":
			return nil
		}
		return curated.Errorf(InvalidPreference, "region", v)
	})

	positive := func(name string) func(v prefs.Value) error {
		return func(v prefs.Value) error {
			if v.(int) <= 0 {
				return curated.Errorf(InvalidPreference, name, v)
			}
			return nil
		}
	}
	p.Quantum.SetHookPre(positive("quantum"))
	p.RunawayLimit.SetHookPre(positive("runaway limit"))
	p.RewindDepth.SetHookPre(positive("rewind depth"))
	p.RewindFrequency.SetHookPre(positive("rewind frequency"))

	var err error

	p.dsk, err = prefs.NewDisk(path)
	if err != nil {
		return nil, err
	}

	err = p.dsk.Add("hardware.region", &p.Region)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("hardware.quantum", &p.Quantum)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("hardware.runawaylimit", &p.RunawayLimit)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("hardware.rewind.depth", &p.RewindDepth)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("hardware.rewind.frequency", &p.RewindFrequency)
	if err != nil {
		return nil, err
	}

	err = p.dsk.Load()
	if err != nil {
		// ignore missing prefs file errors
		if !curated.Is(err, prefs.NoPrefsFile) {
			return nil, err
		}
	}

	return p, nil
}

// SetDefaults reverts all hardware preferences to the default values.
func (p *Preferences) SetDefaults() {
	p.Region.Set(DefaultRegion)
	p.Quantum.Set(DefaultQuantum)
	p.RunawayLimit.Set(DefaultRunawayLimit)
	p.RewindDepth.Set(DefaultRewindDepth)
	p.RewindFrequency.Set(DefaultRewindFrequency)
}

// Load current hardware preference from disk.
func (p *Preferences) Load() error {
	err := p.dsk.Load()
	if curated.Is(err, prefs.NoPrefsFile) {
		return nil
	}
	return err
}

// Save current hardware preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}
