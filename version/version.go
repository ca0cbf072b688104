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

// Package version reports the version of the program. A release build sets
// the number with the linker:
//
//	go build -ldflags "-X github.com/jetsetilly/lockstep/version.number=v0.1.0"
//
// Other builds report "unreleased" if VCS information is present in the
// binary or "local" if it is not.
package version

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// ApplicationName is used when referring to the program.
const ApplicationName = "Lockstep"

// set by the linker for release builds
var number string

type info struct {
	version  string
	revision string
}

var build = sync.OnceValue(func() info {
	var vcs bool
	var rev string
	var modified bool

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs":
				vcs = true
			case "vcs.revision":
				rev = s.Value
			case "vcs.modified":
				modified = s.Value == "true"
			}
		}
	}

	var inf info

	switch {
	case rev == "":
		inf.revision = "no revision information"
	case modified:
		inf.revision = fmt.Sprintf("%s+dirty", rev)
	default:
		inf.revision = rev
	}

	switch {
	case number != "":
		inf.version = number
	case vcs:
		inf.version = "unreleased"
	default:
		inf.version = "local"
	}

	return inf
})

// Version returns the version string, the revision string and whether this
// is a numbered release.
func Version() (string, string, bool) {
	inf := build()
	return inf.version, inf.revision, number != ""
}

// String returns a single line summary suitable for the VERSION mode of the
// program.
func String() string {
	v, r, release := Version()
	if release {
		return fmt.Sprintf("%s %s", ApplicationName, v)
	}
	return fmt.Sprintf("%s %s (%s)", ApplicationName, v, r)
}
