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

// Package prefs facilitates the storage of preference values. Preference
// values are declared with one of the types in the package (Bool, Int, Float
// and String) and added to a Disk instance with a unique key.
//
// Values are stored on disk as simple key/value lines, sorted by key. More
// than one Disk instance can share a file without clobbering the values of
// the other.
//
// Values can also be specified on the command line with
// PushCommandLineStack(). Command line values take priority over values
// stored on disk the next time Disk.Load() is called.
package prefs
