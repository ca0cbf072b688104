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
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	"github.com/jetsetilly/lockstep/curated"
	"github.com/jetsetilly/lockstep/environment"
	"github.com/jetsetilly/lockstep/hardware/clocks"
	"github.com/jetsetilly/lockstep/hardware/serialize"
)

// Sentinal errors.
const (
	RunawayError     = "scheduler: %s has run away (%s)"
	ReentryError     = "scheduler: %s re-entered"
	CoreError        = "scheduler: %s: %v"
	NotQuiescedError = "scheduler: not quiesced (%s)"
	NoCoresError     = "scheduler: no active cores"
	NotPoweredError  = "scheduler: not powered"
)

// MaxStalls is the number of consecutive calls to a core's entry function
// that can pass without the core making progress.
const MaxStalls = 1000

// the number of exit types that can be deferred. ExitNone is never deferred
const numExitTypes = int(ExitUserRequest) + 1

// Scheduler runs the cores of the console in lock-step.
type Scheduler struct {
	env *environment.Environment

	contexts []*Context

	// time base created from the rates of the contexts when powered
	tb *clocks.TimeBase

	state State

	// ids of the cores whose entry function is on the call stack. the last
	// entry is the active core
	stack []int

	// how far ahead of the next most lagging core a core is allowed to run
	quantum clocks.Time

	// the longest a core can run without yielding
	runawayLimit clocks.Time

	// length of a frame in main core cycles. zero if there is no frame
	frameLength uint64

	// exits raised by cores that have yet to be handled
	pending []ExitReason

	// exits that have been handled but which have not yet been returned by
	// Run(). this happens when more than one exit is raised at the same time
	deferred [numExitTypes]bool
	deferredCore [numExitTypes]int

	// a fault is sticky and prevents the scheduler from running
	fault error

	// exit requested by the host. the only field that can be accessed from
	// another goroutine
	request atomic.Int32
}

// NewScheduler is the preferred method of initialisation for the Scheduler
// type.
func NewScheduler(env *environment.Environment) *Scheduler {
	return &Scheduler{
		env:   env,
		state: Idle,
	}
}

func (sch *Scheduler) String() string {
	s := strings.Builder{}
	s.WriteString(sch.state.String())
	for _, ctx := range sch.contexts {
		s.WriteString(fmt.Sprintf("\n%d %s: %d cycles", ctx.id, ctx.label, ctx.clock))
		if !ctx.active {
			s.WriteString(" (inactive)")
		}
	}
	return s.String()
}

// Add a new core to the scheduler. The first core added is the main core.
// Cores can only be added when the scheduler is quiesced and do not take part
// in scheduling until Power() has been called and the core has called
// Create() on the returned Context.
func (sch *Scheduler) Add(label string, rate clocks.Rate) *Context {
	ctx := &Context{
		sch:   sch,
		id:    len(sch.contexts),
		label: label,
		rate:  rate,
	}
	sch.contexts = append(sch.contexts, ctx)
	sch.tb = nil
	return ctx
}

// Clear removes all cores from the scheduler.
func (sch *Scheduler) Clear() {
	sch.contexts = sch.contexts[:0]
	sch.tb = nil
	sch.state = Idle
	sch.fault = nil
}

// Power prepares the scheduler for a new emulation session. The time base is
// created from the rates of the cores and any fault is cleared. Every core
// is inactive until it calls Create().
func (sch *Scheduler) Power() error {
	rates := make([]clocks.Rate, len(sch.contexts))
	for i, ctx := range sch.contexts {
		rates[i] = ctx.rate
	}

	tb, err := clocks.NewTimeBase(rates...)
	if err != nil {
		return curated.Errorf("scheduler: %v", err)
	}
	sch.tb = tb

	for _, ctx := range sch.contexts {
		ctx.clock = 0
		ctx.sinceSync = 0
		ctx.active = false
		ctx.running = false
		ctx.exits = 0
		ctx.stalls = 0
	}

	sch.state = Idle
	sch.stack = sch.stack[:0]
	sch.pending = sch.pending[:0]
	sch.deferred = [numExitTypes]bool{}
	sch.fault = nil
	sch.request.Store(int32(ExitNone))

	quantum := uint64(DefaultQuantum)
	runaway := uint64(DefaultRunawayLimit)
	if sch.env != nil {
		quantum = uint64(sch.env.Prefs.Quantum.Get().(int))
		runaway = uint64(sch.env.Prefs.RunawayLimit.Get().(int))
	}
	if len(sch.contexts) > 0 {
		sch.quantum = tb.ToCommon(0, quantum)
	}
	sch.runawayLimit = tb.FromMicroseconds(runaway)

	return nil
}

// Default values used when the scheduler has no environment.
const (
	DefaultQuantum      = 1364
	DefaultRunawayLimit = 100000
)

// SetFrameLength sets the length of a frame in main core cycles. A value of
// zero means the scheduler will not limit cores to the end of the frame.
func (sch *Scheduler) SetFrameLength(length uint64) {
	sch.frameLength = length
}

// TimeBase returns the time base created by Power(). Returns nil if the
// scheduler has not been powered.
func (sch *Scheduler) TimeBase() *clocks.TimeBase {
	return sch.tb
}

// Len returns the number of cores.
func (sch *Scheduler) Len() int {
	return len(sch.contexts)
}

// Context returns the context of the identified core.
func (sch *Scheduler) Context(id int) *Context {
	return sch.contexts[id]
}

// State returns the current state of the scheduler.
func (sch *Scheduler) State() State {
	return sch.state
}

// Current returns the id of the active core. Returns -1 if no core is active.
func (sch *Scheduler) Current() int {
	if len(sch.stack) == 0 {
		return -1
	}
	return sch.stack[len(sch.stack)-1]
}

// Quiesced returns true if no core is running. Only when the scheduler is
// quiesced can the state of the emulation be saved or loaded.
func (sch *Scheduler) Quiesced() bool {
	return sch.state == Idle || sch.state == Paused
}

// Fault returns the fault that stopped the scheduler. Returns nil if there is
// no fault.
func (sch *Scheduler) Fault() error {
	return sch.fault
}

// RequestExit asks the scheduler to return from Run() at the next yield
// point. If the scheduler is not running the next call to Run() will return
// immediately. Safe to call from any goroutine.
func (sch *Scheduler) RequestExit(t ExitType) {
	sch.request.Store(int32(t))
}

func (sch *Scheduler) setFault(err error) error {
	sch.recordFault(err)
	sch.stack = sch.stack[:0]
	sch.pending = sch.pending[:0]
	sch.state = Paused
	return sch.fault
}

// enter the core with the target time, keeping the stack of running cores
func (sch *Scheduler) enter(id int, target clocks.Time) error {
	sch.stack = append(sch.stack, id)
	exits, err := sch.contexts[id].enter(target)
	sch.stack = sch.stack[:len(sch.stack)-1]
	if err != nil {
		return err
	}

	for t := ExitFrameEvent; t <= ExitUserRequest; t++ {
		if exits&(1<<t) != 0 {
			sch.pending = append(sch.pending, ExitReason{Type: t, Core: id})
		}
	}

	return nil
}

// laggard returns the id of the active core that is furthest behind. ties are
// resolved in favour of the lowest id
func (sch *Scheduler) laggard() int {
	id := -1
	var t clocks.Time
	for _, ctx := range sch.contexts {
		if !ctx.active {
			continue
		}
		if ct := ctx.Time(); id == -1 || ct < t {
			id = ctx.id
			t = ct
		}
	}
	return id
}

// frameBoundary returns the time of the end of the current frame
func (sch *Scheduler) frameBoundary() clocks.Time {
	if sch.frameLength == 0 || len(sch.contexts) == 0 {
		return math.MaxUint64
	}
	main := sch.contexts[0]
	return sch.tb.ToCommon(0, (main.clock/sch.frameLength+1)*sch.frameLength)
}

// target returns the time the core is allowed to run to
func (sch *Scheduler) target(id int) clocks.Time {
	own := sch.contexts[id].Time()

	next := clocks.Time(math.MaxUint64)
	for _, ctx := range sch.contexts {
		if ctx.id != id && ctx.active {
			next = min(next, ctx.Time())
		}
	}
	if next == math.MaxUint64 {
		next = own
	}

	target := next + sch.quantum
	target = min(target, sch.frameBoundary())
	if target <= own {
		target = own + 1
	}

	return target
}

// hostRequest returns the exit requested by the host, if any
func (sch *Scheduler) hostRequest() (ExitReason, bool) {
	t := ExitType(sch.request.Swap(int32(ExitNone)))
	if t == ExitNone {
		return ExitReason{}, false
	}
	return ExitReason{Type: t, Core: -1}, true
}

// returnDeferred returns the highest priority deferred exit
func (sch *Scheduler) returnDeferred() (ExitReason, bool) {
	for t := ExitFrameEvent; t <= ExitUserRequest; t++ {
		if sch.deferred[t] {
			sch.deferred[t] = false
			return ExitReason{Type: t, Core: sch.deferredCore[t]}, true
		}
	}
	return ExitReason{}, false
}

// Run the emulation until a frame event, a debugger break or a request from
// the host. The scheduler is Paused when the function returns.
func (sch *Scheduler) Run() (ExitReason, error) {
	if sch.fault != nil {
		return ExitReason{}, sch.fault
	}
	if sch.tb == nil {
		return ExitReason{}, curated.Errorf(NotPoweredError)
	}
	if !sch.Quiesced() {
		return ExitReason{}, curated.Errorf(ReentryError, "run")
	}

	if r, ok := sch.returnDeferred(); ok {
		sch.state = Paused
		return r, nil
	}

	sch.state = Running

	for {
		if r, ok := sch.hostRequest(); ok {
			sch.state = Paused
			return r, nil
		}

		id := sch.laggard()
		if id == -1 {
			sch.state = Paused
			return ExitReason{}, curated.Errorf(NoCoresError)
		}

		if err := sch.enter(id, sch.target(id)); err != nil {
			return ExitReason{}, sch.setFault(err)
		}

		if err := sch.handlePending(); err != nil {
			return ExitReason{}, sch.setFault(err)
		}

		if r, ok := sch.returnDeferred(); ok {
			sch.state = Paused
			return r, nil
		}
	}
}

// handle every pending exit. synchronize events are dealt with immediately,
// other exits are deferred until they can be returned by Run()
func (sch *Scheduler) handlePending() error {
	for len(sch.pending) > 0 {
		r := sch.pending[0]
		sch.pending = sch.pending[1:]

		switch r.Type {
		case ExitSynchronizeEvent:
			if err := sch.synchronize(sch.contexts[r.Core].Time()); err != nil {
				return err
			}
		case ExitFrameEvent:
			// every core is brought up to the end of the frame before
			// returning to the host
			if err := sch.synchronize(sch.contexts[r.Core].Time()); err != nil {
				return err
			}
			fallthrough
		default:
			sch.deferred[r.Type] = true
			sch.deferredCore[r.Type] = r.Core
		}
	}
	return nil
}

// synchronize brings every active core up to the target time and then gives
// each core the opportunity to finish buffered work
func (sch *Scheduler) synchronize(target clocks.Time) error {
	prev := sch.state
	sch.state = SynchronizingAll
	defer func() {
		sch.state = prev
	}()

	// a core returns early when it raises an exit. the exit is left pending
	// and the core is entered again until it reaches the target
	for _, ctx := range sch.contexts {
		for ctx.active && ctx.Time() < target {
			if err := sch.enter(ctx.id, target); err != nil {
				return err
			}
		}
	}

	for _, ctx := range sch.contexts {
		if !ctx.active {
			continue
		}
		if ctx.drain != nil {
			if err := ctx.drain(); err != nil {
				return curated.Errorf(CoreError, ctx.label, err)
			}
		}
		ctx.sinceSync = 0
	}

	return nil
}

// SynchronizeAll brings every core up to the time of the core that is
// furthest ahead. Cores are given the opportunity to finish buffered work.
// Exits raised by cores during synchronization are returned by the next call
// to Run().
//
// Useful before saving state, to make sure every core is at the same point in
// time.
func (sch *Scheduler) SynchronizeAll() error {
	if sch.fault != nil {
		return sch.fault
	}
	if sch.tb == nil {
		return curated.Errorf(NotPoweredError)
	}
	if !sch.Quiesced() {
		return curated.Errorf(NotQuiescedError, sch.state)
	}

	var target clocks.Time
	for _, ctx := range sch.contexts {
		if ctx.active {
			target = max(target, ctx.Time())
		}
	}

	if err := sch.synchronize(target); err != nil {
		return sch.setFault(err)
	}

	// synchronize events raised during the synchronization are satisfied
	// already. anything else is deferred
	if err := sch.handlePending(); err != nil {
		return sch.setFault(err)
	}

	return nil
}

// CatchUp brings the identified core up to the time of the active core. It is
// intended to be called by bus handlers, before accessing the registers of a
// core, so that the state of the registers is current.
//
// Exits raised by the core during the catch-up are handled after the active
// core yields. A fault during the catch-up is recorded and will stop the
// scheduler at the next yield point.
func (sch *Scheduler) CatchUp(id int) error {
	if sch.state != Running && sch.state != SynchronizingAll {
		return nil
	}
	if sch.fault != nil {
		return sch.fault
	}

	cur := sch.Current()
	if cur == -1 || cur == id {
		return nil
	}

	ctx := sch.contexts[id]
	if !ctx.active {
		return nil
	}

	target := sch.contexts[cur].Time()
	if ctx.Time() >= target {
		return nil
	}

	// the core is suspended on the call stack and cannot be entered again
	if ctx.running {
		return sch.recordFault(curated.Errorf(ReentryError, ctx.label))
	}

	// exits raised by the core stay pending until the active core yields
	for ctx.active && ctx.Time() < target {
		if err := sch.enter(id, target); err != nil {
			return sch.recordFault(err)
		}
	}

	return nil
}

// recordFault notes the fault without unwinding the stack. the fault will be
// returned by the outermost core at its next yield point
func (sch *Scheduler) recordFault(err error) error {
	if sch.fault == nil {
		sch.fault = err
		if sch.env != nil {
			sch.env.Logf("scheduler", "%v", err)
		}
	}
	return sch.fault
}

// Serialize implements the serialize.Serializable interface.
func (sch *Scheduler) Serialize(s *serialize.State) {
	for _, ctx := range sch.contexts {
		s.Uint64(&ctx.clock)
		s.Uint64(&ctx.sinceSync)
		s.Bool(&ctx.active)
		s.Uint32(&ctx.stalls)
	}
	for t := range sch.deferred {
		s.Bool(&sch.deferred[t])
		s.Int(&sch.deferredCore[t])
	}
}

// Plumb implements the serialize.Plumber interface.
func (sch *Scheduler) Plumb() {
	sch.state = Paused
	sch.pending = sch.pending[:0]
	sch.stack = sch.stack[:0]
}
