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

package hardware

import (
	"fmt"
	"strings"

	"github.com/jetsetilly/lockstep/curated"
	"github.com/jetsetilly/lockstep/environment"
	"github.com/jetsetilly/lockstep/hardware/audio"
	"github.com/jetsetilly/lockstep/hardware/bus"
	"github.com/jetsetilly/lockstep/hardware/cartridge"
	"github.com/jetsetilly/lockstep/hardware/cheat"
	"github.com/jetsetilly/lockstep/hardware/clocks"
	"github.com/jetsetilly/lockstep/hardware/coprocessor"
	"github.com/jetsetilly/lockstep/hardware/coprocessor/chip"
	"github.com/jetsetilly/lockstep/hardware/coprocessor/icd2"
	"github.com/jetsetilly/lockstep/hardware/coprocessor/msu1"
	"github.com/jetsetilly/lockstep/hardware/coprocessor/sufamiturbo"
	"github.com/jetsetilly/lockstep/hardware/cpu"
	"github.com/jetsetilly/lockstep/hardware/cpu/scripted"
	"github.com/jetsetilly/lockstep/hardware/scheduler"
	"github.com/jetsetilly/lockstep/hardware/serialize"
)

// Sentinal errors.
const (
	LoadError       = "system: load: %v"
	NotLoadedError  = "system: no cartridge loaded"
	NotPoweredError = "system: not powered"
)

// ResetVector is the address of the first instruction executed by the default
// executor of the main core.
const ResetVector = 0x008000

// Options for a new System. The zero value is usable.
type Options struct {
	// executor of the main core. if nil a scripted.Interpreter starting at
	// ResetVector is used
	CPU cpu.Executor

	// executor of the audio core. if nil the cpu.Idle executor is used
	APU cpu.Executor

	// executors of the enhancement chips that are cores. chips without an
	// entry use the cpu.Idle executor
	Chips map[cartridge.Chip]cpu.Executor

	// the subsystem driven by the handheld bridge. if nil the
	// icd2.NullHandheld is used
	Handheld icd2.Handheld

	// the data file and audio tracks of a cartridge with the MSU-1 chip. if
	// nil the msu1.NoMedia is used
	MSU1 msu1.Media

	// destination of coprocessor audio. if nil audio is discarded
	Audio audio.Sink
}

// System is the emulation session.
type System struct {
	env  *environment.Environment
	opts Options

	mem   *bus.Bus
	sch   *scheduler.Scheduler
	cheat *cheat.Cheat

	cart *cartridge.Cartridge
	cpu  *cpu.CPU

	// components of the loaded cartridge in serialization order
	components []coprocessor.Component

	icd2        *icd2.ICD2
	sufamiTurbo *sufamiturbo.SufamiTurbo
	chips       []*chip.Chip

	region      cartridge.Region
	rate        clocks.Rate
	frameLength uint64

	powered bool

	serializer *serialize.Serializer
}

// NewSystem is the preferred method of initialisation for the System type.
// If env is nil an environment for the main emulation is created.
func NewSystem(env *environment.Environment, opts Options) (*System, error) {
	if env == nil {
		var err error
		env, err = environment.NewEnvironment(environment.MainEmulation, nil)
		if err != nil {
			return nil, curated.Errorf("system: %v", err)
		}
	}

	if opts.Audio == nil {
		opts.Audio = audio.NullSink{}
	}

	sys := &System{
		env:        env,
		opts:       opts,
		mem:        bus.NewBus(),
		cheat:      cheat.NewCheat(),
		serializer: serialize.NewSerializer(),
	}
	sys.sch = scheduler.NewScheduler(env)

	return sys, nil
}

func (sys *System) String() string {
	s := strings.Builder{}
	if sys.cart == nil {
		s.WriteString("no cartridge")
		return s.String()
	}
	s.WriteString(sys.cart.String())
	s.WriteString(fmt.Sprintf("\n%s %d Hz", sys.region, sys.rate))
	for _, c := range sys.components {
		s.WriteString(fmt.Sprintf("\n%s", c.Label()))
	}
	return s.String()
}

// Env implements the coprocessor.Host interface.
func (sys *System) Env() *environment.Environment {
	return sys.env
}

// Bus implements the coprocessor.Host interface.
func (sys *System) Bus() *bus.Bus {
	return sys.mem
}

// Scheduler implements the coprocessor.Host interface.
func (sys *System) Scheduler() *scheduler.Scheduler {
	return sys.sch
}

// Cartridge implements the coprocessor.Host interface. Returns nil if no
// cartridge is loaded.
func (sys *System) Cartridge() *cartridge.Cartridge {
	return sys.cart
}

// Audio implements the coprocessor.Host interface.
func (sys *System) Audio() audio.Sink {
	return sys.opts.Audio
}

// Region implements the coprocessor.Host interface.
func (sys *System) Region() cartridge.Region {
	return sys.region
}

// CPUFrequency implements the coprocessor.Host interface.
func (sys *System) CPUFrequency() clocks.Rate {
	return sys.rate
}

// CPU returns the main core. Returns nil if no cartridge is loaded.
func (sys *System) CPU() *cpu.CPU {
	return sys.cpu
}

// Frames returns the number of frames completed by the main core since power
// on. Returns zero if no cartridge is loaded.
func (sys *System) Frames() uint64 {
	if sys.cpu == nil {
		return 0
	}
	return sys.cpu.Frames()
}

// FrameRate returns the nominal number of frames per second for the region
// of the loaded cartridge. Returns zero if no cartridge is loaded.
func (sys *System) FrameRate() float64 {
	if sys.frameLength == 0 {
		return 0
	}
	return float64(sys.rate) / float64(sys.frameLength)
}

// Cheat returns the cheat codes applied to the bus.
func (sys *System) Cheat() *cheat.Cheat {
	return sys.cheat
}

// Components returns the components of the loaded cartridge in serialization
// order.
func (sys *System) Components() []coprocessor.Component {
	return sys.components
}

// Loaded returns true if a cartridge is loaded.
func (sys *System) Loaded() bool {
	return sys.cart != nil
}

// resolve the region from the preferences and the cartridge
func (sys *System) resolveRegion(cart *cartridge.Cartridge) cartridge.Region {
	switch strings.ToUpper(sys.env.Prefs.Region.Get().(string)) {
	case "NTSC":
		return cartridge.RegionNTSC
	case "PAL":
		return cartridge.RegionPAL
	}
	return cart.Region
}

// Load the cartridge. Any previously loaded cartridge is unloaded. The system
// must be powered before it can run.
func (sys *System) Load(desc cartridge.Description) error {
	sys.Unload()

	cart, err := cartridge.NewCartridge(desc)
	if err != nil {
		return curated.Errorf(LoadError, err)
	}

	sys.region = sys.resolveRegion(cart)
	switch sys.region {
	case cartridge.RegionPAL:
		sys.rate = clocks.PAL
		sys.frameLength = clocks.PALFrame
	default:
		sys.rate = clocks.NTSC
		sys.frameLength = clocks.NTSCFrame
	}

	exec := sys.opts.CPU
	if exec == nil {
		exec = scripted.NewInterpreter(ResetVector)
	}

	// the order in which the cores are created is the order of the core ids.
	// the main core must be first
	sys.cart = cart
	sys.cpu = cpu.NewCPU(sys.sch, sys.mem, sys.rate, sys.frameLength, exec, sys.opts.APU)

	if cart.Mode == cartridge.ModeSuperGameBoy {
		sys.icd2 = icd2.NewICD2(sys, sys.opts.Handheld)
		sys.components = append(sys.components, sys.icd2)
	}

	for _, ch := range cart.Chips.List() {
		if ch == cartridge.ChipMSU1 {
			sys.components = append(sys.components, msu1.NewMSU1(sys, sys.opts.MSU1))
			continue
		}

		c, err := chip.NewChip(sys, ch, sys.opts.Chips[ch])
		if err != nil {
			sys.Unload()
			return curated.Errorf(LoadError, err)
		}
		sys.chips = append(sys.chips, c)
		sys.components = append(sys.components, c)
	}

	if cart.Mode == cartridge.ModeSufamiTurbo {
		sys.sufamiTurbo = sufamiturbo.NewSufamiTurbo(sys, cart.SlotA, cart.SlotB)
		sys.components = append(sys.components, sys.sufamiTurbo)
	}

	if err := sys.mapMemory(); err != nil {
		sys.Unload()
		return curated.Errorf(LoadError, err)
	}

	sys.buildSerializer()

	sys.env.Logf("system", "loaded %s", cart)

	return nil
}

// map the address space. the main core is mapped first so that components
// can see what they are mapped over
func (sys *System) mapMemory() error {
	sys.mem.Reset()

	if err := sys.cpu.Map(); err != nil {
		return err
	}
	if err := sys.cart.Map(sys.mem); err != nil {
		return err
	}
	for _, c := range sys.components {
		if err := c.Map(); err != nil {
			return err
		}
	}

	sys.mem.Seal()
	return nil
}

// Unload the cartridge. The system is left without any cores.
func (sys *System) Unload() {
	if sys.cart != nil {
		sys.env.Logf("system", "unloaded %s", sys.cart.Name)
	}

	sys.cheat.Attach(nil)
	sys.sch.Clear()
	sys.mem.Reset()
	sys.serializer.Clear()

	sys.cart = nil
	sys.cpu = nil
	sys.icd2 = nil
	sys.sufamiTurbo = nil
	sys.chips = sys.chips[:0]
	sys.components = sys.components[:0]
	sys.frameLength = 0
	sys.powered = false
}

// Power on the system. Every core starts from the beginning of time and the
// contents of every memory are reinitialised except for the cartridge's
// non-volatile memory.
func (sys *System) Power() error {
	if sys.cart == nil {
		return curated.Errorf(NotLoadedError)
	}

	if err := sys.sch.Power(); err != nil {
		return err
	}
	sys.sch.SetFrameLength(sys.frameLength)
	sys.mem.SetOpenBus(bus.OpenBus)

	sys.cpu.Power()
	for _, c := range sys.components {
		c.Power()
	}

	sys.cheat.Attach(sys.mem)
	sys.powered = true

	return nil
}

// Reset the system. Every core starts from the beginning of time but the
// contents of memory are preserved. A fault in the scheduler is cleared.
func (sys *System) Reset() error {
	if !sys.powered {
		return curated.Errorf(NotPoweredError)
	}

	if err := sys.sch.Power(); err != nil {
		return err
	}
	sys.sch.SetFrameLength(sys.frameLength)

	sys.cpu.Reset()
	for _, c := range sys.components {
		c.Reset()
	}

	return nil
}

// NVRAM returns the non-volatile memory of the cartridge and its components.
// The data of each entry is borrowed from the system and must not be resized.
func (sys *System) NVRAM() []cartridge.NVRAM {
	if sys.cart == nil {
		return nil
	}

	nv := sys.cart.NVRAM()
	for _, c := range sys.components {
		if n, ok := c.(coprocessor.NVRAM); ok {
			nv = append(nv, n.NVRAM()...)
		}
	}
	return nv
}
