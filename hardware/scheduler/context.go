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

package scheduler

import (
	"github.com/jetsetilly/lockstep/curated"
	"github.com/jetsetilly/lockstep/hardware/clocks"
)

// Entry is the step function of a core. It is called repeatedly by the
// scheduler until the core's virtual time reaches the target set by the
// scheduler. The function should execute at most Budget() cycles, account for
// them with Step() and return.
//
// Returning an error is a fatal fault.
type Entry func(ctx *Context) error

// Context is the scheduling state of a single core.
type Context struct {
	sch   *Scheduler
	id    int
	label string
	rate  clocks.Rate

	entry Entry

	// maximum number of local cycles granted to a single call to the entry
	// function. zero means no limit
	budget uint64

	// absolute number of local cycles since power on
	clock uint64

	// local cycles since the last synchronize event
	sinceSync uint64

	active  bool
	running bool

	// the time the core should reach before yielding to the scheduler
	target clocks.Time

	// exits raised by the core during the most recent call to the entry
	// function. one bit per ExitType
	exits uint8

	// consecutive calls to the entry function that did not advance the clock
	stalls uint32

	// called after all cores have been synchronized. allows a core to finish
	// any buffered work
	drain func() error
}

// ID returns the identifier of the core.
func (ctx *Context) ID() int {
	return ctx.id
}

// Label returns the name of the core.
func (ctx *Context) Label() string {
	return ctx.label
}

func (ctx *Context) String() string {
	return ctx.label
}

// Rate returns the clock rate of the core.
func (ctx *Context) Rate() clocks.Rate {
	return ctx.rate
}

// Clock returns the number of local cycles since power on.
func (ctx *Context) Clock() uint64 {
	return ctx.clock
}

// SinceSync returns the number of local cycles since the most recent
// synchronize event.
func (ctx *Context) SinceSync() uint64 {
	return ctx.sinceSync
}

// Active returns true if the core is being scheduled.
func (ctx *Context) Active() bool {
	return ctx.active
}

// SetActive adds or removes the core from scheduling. An inactive core keeps
// its clock but is ignored by the scheduler.
func (ctx *Context) SetActive(active bool) {
	ctx.active = active
}

// Running returns true if the core's entry function is on the call stack.
func (ctx *Context) Running() bool {
	return ctx.running
}

// Scheduler returns the scheduler that the core belongs to.
func (ctx *Context) Scheduler() *Scheduler {
	return ctx.sch
}

// Time returns the current virtual time of the core.
func (ctx *Context) Time() clocks.Time {
	if ctx.sch.tb == nil {
		return 0
	}
	return ctx.sch.tb.ToCommon(ctx.id, ctx.clock)
}

// Create (re)initialises the context. The clock is set to zero and the core
// becomes active. Should be called by the core when it is powered on or reset.
//
// The budget is the maximum number of local cycles that will be granted to a
// single call of the entry function. A value of zero means no maximum.
func (ctx *Context) Create(entry Entry, budget uint64) {
	ctx.entry = entry
	ctx.budget = budget
	ctx.clock = 0
	ctx.sinceSync = 0
	ctx.exits = 0
	ctx.stalls = 0
	ctx.active = true
}

// SetDrain sets the function to be called after a synchronize event. A nil
// function removes any existing function.
func (ctx *Context) SetDrain(drain func() error) {
	ctx.drain = drain
}

// Budget returns the number of local cycles the core should execute before
// returning from the entry function. The value will be zero if the core has
// already reached the target.
func (ctx *Context) Budget() uint64 {
	n := ctx.sch.tb.CyclesUntil(ctx.id, ctx.clock, ctx.target)
	if ctx.budget > 0 && n > ctx.budget {
		n = ctx.budget
	}
	return n
}

// Step accounts for cycles executed by the core.
func (ctx *Context) Step(cycles uint64) {
	ctx.clock += cycles
	ctx.sinceSync += cycles
}

// Synchronize asks the scheduler to bring every other core up to the time of
// this core. The core should return from the entry function as soon as
// possible.
func (ctx *Context) Synchronize() {
	ctx.Exit(ExitSynchronizeEvent)
}

// Exit asks the scheduler to handle the exit when the core returns from the
// entry function. More than one exit can be raised during a single call.
func (ctx *Context) Exit(t ExitType) {
	if t == ExitNone {
		return
	}
	ctx.exits |= 1 << t
}

// CatchUp brings another core up to the time of this core.
func (ctx *Context) CatchUp(id int) error {
	return ctx.sch.CatchUp(id)
}

// enter calls the entry function repeatedly until the target time is reached
// or the core raises an exit. returns the exits raised by the core
func (ctx *Context) enter(target clocks.Time) (uint8, error) {
	if ctx.running {
		return 0, curated.Errorf(ReentryError, ctx.label)
	}
	if ctx.entry == nil {
		return 0, curated.Errorf(CoreError, ctx.label, "no entry function")
	}

	ctx.running = true
	defer func() {
		ctx.running = false
	}()

	ctx.target = target

	for ctx.Time() < target {
		before := ctx.clock
		beforeTime := ctx.Time()
		ctx.exits = 0

		if err := ctx.entry(ctx); err != nil {
			return 0, curated.Errorf(CoreError, ctx.label, err)
		}

		// a fault in a nested catch-up is recorded by the scheduler
		if ctx.sch.fault != nil {
			return 0, ctx.sch.fault
		}

		if ctx.clock == before {
			ctx.stalls++
			if ctx.stalls > MaxStalls {
				return 0, curated.Errorf(RunawayError, ctx.label, "no progress")
			}
		} else {
			ctx.stalls = 0
			if ctx.Time()-beforeTime > ctx.sch.runawayLimit {
				return 0, curated.Errorf(RunawayError, ctx.label, "no yield")
			}
		}

		if ctx.exits != 0 {
			return ctx.exits, nil
		}

		// the outermost core yields to the scheduler as soon as there are
		// exits from nested cores to handle. requests from the host are also
		// only honoured by the outermost core and never during synchronization
		if ctx.sch.state == Running && len(ctx.sch.stack) == 1 {
			if len(ctx.sch.pending) > 0 || ctx.sch.request.Load() != int32(ExitNone) {
				return 0, nil
			}
		}
	}

	return 0, nil
}
