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

// Package environment provides the context for an emulation. Components of
// the emulation are given the Environment instead of reaching for package
// level state. This allows more than one emulation to run in the same process
// without interfering with each other.
package environment

import (
	"github.com/jetsetilly/lockstep/hardware/preferences"
	"github.com/jetsetilly/lockstep/logger"
)

// Label is used to name the environment
type Label string

// MainEmulation is the label used for the main emulation in the program.
const MainEmulation = Label("")

// Environment is used to provide context for an emulation. Particularly useful
// when using multiple emulations
type Environment struct {
	Label Label

	// the emulation preferences
	Prefs *preferences.Preferences

	// log entries are made to this logger. by default this is the central
	// logger
	Log *logger.Logger
}

// NewEnvironment is the preferred method of initialisation for the Environment
// type.
//
// The prefs argument can be nil and a new Preferences instance will be created
// that is never saved to disk. Providing a non-nil value allows the
// preferences of more than one emulation to be synchronised.
func NewEnvironment(label Label, prefs *preferences.Preferences) (*Environment, error) {
	env := &Environment{
		Label: label,
	}

	var err error

	if prefs == nil {
		prefs, err = preferences.NewPreferences("")
		if err != nil {
			return nil, err
		}
	}

	env.Prefs = prefs

	return env, nil
}

// Normalise ensures the environment is in an known default state. Useful for
// testing where the initial state must be the same for every run.
func (env *Environment) Normalise() {
	env.Prefs.SetDefaults()
}

// IsMainEmulation returns true if the environment is intended for the main
// emulation in the system
func (env *Environment) IsMainEmulation() bool {
	return env.Label == MainEmulation
}

// AllowLogging implements the logger.Permission interface. Only the main
// emulation is allowed to make log entries
func (env *Environment) AllowLogging() bool {
	return env.IsMainEmulation()
}

// Logf makes a log entry if the environment allows it. Entries are made to the
// environment's logger if one has been set, otherwise to the central logger
func (env *Environment) Logf(tag string, pattern string, args ...any) {
	if env.Log != nil {
		env.Log.Logf(env, tag, pattern, args...)
		return
	}
	logger.Logf(env, tag, pattern, args...)
}
