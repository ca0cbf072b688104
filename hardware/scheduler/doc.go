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

// Package scheduler runs the processing units of the console in lock-step.
//
// Each processing unit (a core) is represented by a Context. The core's work
// is done by an Entry function, which is called repeatedly by the scheduler.
// Every return from the Entry function is a yield point. The core keeps all
// of its state in its own structures so that there is nothing on the stack
// between calls. This means the state of every core can be saved whenever the
// scheduler is not running.
//
// The scheduler always runs the core that is furthest behind in virtual time.
// The core is allowed to run until it is a quantum ahead of the next most
// lagging core, or until the end of the frame, whichever is sooner.
//
// A core can ask for all the other cores to be brought up to its own time
// (a synchronize event). A bus handler for a register owned by another core
// can bring that core up to the time of the running core with CatchUp(). This
// means a core never sees the state of another core from the past.
//
// The main core (id zero) marks the end of each frame. When the main core
// raises a frame event every other core is brought up to the end of the frame
// and Run() returns.
//
// A core that runs for too long without yielding, or that yields repeatedly
// without making progress, has run away. This is a fatal fault and the
// scheduler will not run again until it is powered or reset.
package scheduler
