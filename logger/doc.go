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

// Package logger is the logging package used throughout the emulator. Log
// entries are made up of a tag and a detail string. Entries that repeat the
// previous entry exactly are collapsed into a single entry with a repeat
// count.
//
// A central logger is provided through the package level functions. Separate
// loggers can be created with NewLogger(), which is useful for testing or for
// emulation instances that should keep their own record.
//
// Every call to Log() and Logf() requires a Permission. Emulation instances
// that are not the main emulation (eg. a rewind replay or a comparison
// emulation) can refuse permission and so keep the log free of duplicate
// entries.
package logger
