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

// Package cpu is the main core of the console and the audio core that is
// paired with it. The instruction decoders of the two cores are not part of
// this package. Each core is driven by an Executor, which is asked to run for
// a number of cycles and to report how many cycles were actually consumed.
//
// The main core owns the work RAM and the memory mapped registers that are
// not owned by a coprocessor. It is also responsible for raising the frame
// event at every frame boundary.
//
// The audio core has its own address space. The only connection between the
// two cores is the four byte communication port. An access to the port by the
// main core brings the audio core up to the same point in time before the
// access takes place.
//
// The scripted sub-package contains a small deterministic Executor that is
// used when no real decoder is attached.
package cpu
