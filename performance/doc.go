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

// Package performance measures the speed of the emulation.
//
// Check() runs a loaded system for a fixed length of real time and reports
// the number of frames per second achieved, along with that figure as a
// percentage of the nominal frame rate of the cartridge's region.
//
// RunProfiler() wraps any function with the profilers named by a Profile
// value. On its own it does not limit how long the function runs for.
package performance
