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

package hardware_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/jetsetilly/lockstep/curated"
	"github.com/jetsetilly/lockstep/environment"
	"github.com/jetsetilly/lockstep/hardware"
	"github.com/jetsetilly/lockstep/hardware/audio"
	"github.com/jetsetilly/lockstep/hardware/cartridge"
	"github.com/jetsetilly/lockstep/hardware/cheat"
	"github.com/jetsetilly/lockstep/hardware/clocks"
	"github.com/jetsetilly/lockstep/hardware/cpu"
	"github.com/jetsetilly/lockstep/hardware/cpu/scripted"
	"github.com/jetsetilly/lockstep/hardware/scheduler"
	"github.com/jetsetilly/lockstep/hardware/serialize"
	"github.com/jetsetilly/lockstep/test"
)

// the test program increments a counter in work RAM, exchanges values with
// the APU through the communication ports and copies the last byte of the
// first ROM bank to work RAM
func testROM() []byte {
	prg := scripted.Program{}.
		LDA(0x7e0100).ADD(0x01).STA(0x7e0100).
		LDA(0x002140).ADD(0x05).STA(0x002141).
		LDA(0x00ffff).STA(0x7e0200).
		JMP(hardware.ResetVector)

	rom := make([]byte, 0x10000)
	copy(rom, prg)
	rom[0x7fff] = 0x33
	return rom
}

// the APU program adds to the value written by the CPU
var apuProgram = scripted.Program{}.
	LDA(0x0000f5).ADD(0x07).STA(0x0000f4).
	JMP(0x000000)

func newEnvironment(t *testing.T, label string) *environment.Environment {
	t.Helper()
	env, err := environment.NewEnvironment(environment.Label(label), nil)
	test.DemandSuccess(t, err)
	return env
}

// create a powered system with the description. the ROM of the description
// is set to the test ROM if it is empty
func newSystem(t *testing.T, env *environment.Environment, opts hardware.Options, desc cartridge.Description) *hardware.System {
	t.Helper()

	if env == nil {
		env = newEnvironment(t, "test")
	}
	if opts.APU == nil {
		opts.APU = scripted.NewInterpreter(0x000000)
	}
	if len(desc.ROM) == 0 {
		desc.ROM = testROM()
	}

	sys, err := hardware.NewSystem(env, opts)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, sys.Load(desc))
	test.DemandSuccess(t, sys.Power())
	copy(sys.CPU().APU().RAM(), apuProgram)

	return sys
}

func frame(t *testing.T, sys *hardware.System) {
	t.Helper()
	r, err := sys.Run()
	test.DemandSuccess(t, err)
	test.DemandEquality(t, r.Type, scheduler.ExitFrameEvent)
}

// the observable state of the system
func observe(sys *hardware.System) []byte {
	s := fmt.Sprintf("%d %d", sys.CPU().Context().Clock(), sys.CPU().APU().Context().Clock())
	b := append([]byte(s), sys.CPU().WRAM()...)
	return append(b, sys.CPU().APU().RAM()...)
}

func TestLifecycle(t *testing.T) {
	sys, err := hardware.NewSystem(nil, hardware.Options{})
	test.DemandSuccess(t, err)

	_, err = sys.Run()
	test.ExpectSuccess(t, curated.Is(err, hardware.NotPoweredError))
	test.ExpectSuccess(t, curated.Is(sys.Power(), hardware.NotLoadedError))
	test.ExpectEquality(t, sys.SerializeSize(), 0)

	err = sys.Load(cartridge.Description{})
	test.ExpectSuccess(t, curated.Is(err, hardware.LoadError))
	test.ExpectEquality(t, sys.Loaded(), false)

	test.DemandSuccess(t, sys.Load(cartridge.Description{ROM: testROM()}))
	test.ExpectEquality(t, sys.Loaded(), true)

	_, err = sys.Run()
	test.ExpectFailure(t, err)

	test.DemandSuccess(t, sys.Power())
	frame(t, sys)

	sys.Unload()
	test.ExpectEquality(t, sys.Loaded(), false)
	test.ExpectEquality(t, sys.SerializeSize(), 0)
	test.ExpectEquality(t, sys.Scheduler().Len(), 0)
	_, err = sys.Run()
	test.ExpectFailure(t, err)
}

func TestOneFrame(t *testing.T) {
	main := scripted.NewInterpreter(hardware.ResetVector)
	apu := scripted.NewInterpreter(0x000000)
	sys := newSystem(t, nil, hardware.Options{CPU: main, APU: apu}, cartridge.Description{})

	frame(t, sys)

	test.ExpectEquality(t, sys.CPU().Frames(), uint64(1))
	test.ExpectEquality(t, sys.CPU().Context().Clock(), uint64(clocks.NTSCFrame))

	// every core has advanced by one frame at its own rate
	tb := sys.Scheduler().TimeBase()
	frameTime := sys.CPU().Context().Time()
	for id := range sys.Scheduler().Len() {
		ctx := sys.Scheduler().Context(id)
		test.ExpectSuccess(t, ctx.Time() >= frameTime, ctx)
		exp := tb.Convert(0, id, clocks.NTSCFrame)
		test.ExpectSuccess(t, ctx.Clock()-exp < 2*clocks.APUDivider, ctx)
	}

	// both programs have been running
	test.ExpectSuccess(t, main.Instructions > 0)
	test.ExpectSuccess(t, apu.Instructions > 0)
	test.ExpectEquality(t, sys.CPU().WRAM()[0x200], uint8(0x33))
}

func TestMinimalState(t *testing.T) {
	sys := newSystem(t, nil, hardware.Options{}, cartridge.Description{})

	segs := sys.Segments()
	test.DemandEquality(t, len(segs), 2)
	test.ExpectEquality(t, segs[0], "SYST")
	test.ExpectEquality(t, segs[1], "CPU ")

	sched := serialize.NewSizer()
	sys.Scheduler().Serialize(sched)
	main := serialize.NewSizer()
	sys.CPU().Serialize(main)

	// header, two segment headers, the scheduler, the open bus and the main
	// core
	exp := 16 + 8 + sched.Size() + 1 + 8 + main.Size()
	test.ExpectEquality(t, sys.SerializeSize(), exp)

	state, err := sys.Serialize()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(state), exp)
	test.ExpectEquality(t, string(state[:4]), serialize.Magic)
}

func TestSerializeBeforePower(t *testing.T) {
	sys, err := hardware.NewSystem(newEnvironment(t, "test"), hardware.Options{
		APU: scripted.NewInterpreter(0x000000),
	})
	test.DemandSuccess(t, err)

	_, err = sys.Serialize()
	test.ExpectSuccess(t, curated.Is(err, hardware.NotLoadedError))

	test.DemandSuccess(t, sys.Load(cartridge.Description{ROM: testROM()}))

	// a loaded system can be saved before it is powered
	state, err := sys.Serialize()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(state), sys.SerializeSize())
	test.ExpectEquality(t, string(state[:4]), serialize.Magic)

	segs := sys.Segments()
	test.DemandEquality(t, len(segs), 2)
	test.ExpectEquality(t, segs[0], "SYST")
	test.ExpectEquality(t, segs[1], "CPU ")

	// and the system is still usable afterwards
	test.DemandSuccess(t, sys.Power())
	copy(sys.CPU().APU().RAM(), apuProgram)
	frame(t, sys)
}

func TestCoprocessorWindow(t *testing.T) {
	sys := newSystem(t, nil, hardware.Options{}, cartridge.Description{
		RAMSize: 128 * 1024,
		Chips:   cartridge.NewChips(cartridge.ChipSA1),
	})

	test.ExpectEquality(t, sys.Segments()[2], "CART")
	test.ExpectEquality(t, sys.Segments()[3], "SA1 ")
	test.ExpectEquality(t, sys.Scheduler().Len(), 3)

	r, ok := sys.Bus().Resolve(0x002200)
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, r.Owner, "sa1")

	// every address of the RAM window belongs to the cartridge RAM
	for _, b := range [][2]int{{0x70, 0x7d}, {0xf0, 0xff}} {
		for bank := b[0]; bank <= b[1]; bank++ {
			for addr := 0x0000; addr <= 0x7fff; addr++ {
				r, ok := sys.Bus().Resolve(uint32(bank<<16 | addr))
				if !ok || r.Owner != "cartridge ram" {
					t.Fatalf("%02x:%04x is not cartridge RAM", bank, addr)
				}
			}
		}
	}

	// and no address of the register window of the chip is cartridge RAM
	for _, w := range []uint32{0x002200, 0x0023ff, 0x802200, 0xbf23ff} {
		r, ok := sys.Bus().Resolve(w)
		test.DemandSuccess(t, ok)
		test.ExpectEquality(t, r.Owner, "sa1")
	}

	frame(t, sys)
}

func TestDeterminism(t *testing.T) {
	sys := newSystem(t, nil, hardware.Options{}, cartridge.Description{
		RAMSize: 0x2000,
		Chips:   cartridge.NewChips(cartridge.ChipSuperFX, cartridge.ChipMSU1),
	})

	for range 2 {
		frame(t, sys)
	}

	state, err := sys.Serialize()
	test.DemandSuccess(t, err)

	run := func() []byte {
		for range 5 {
			frame(t, sys)
		}
		return observe(sys)
	}

	a := run()
	test.DemandSuccess(t, sys.Unserialize(state))
	b := run()
	test.ExpectSuccess(t, bytes.Equal(a, b))

	// the state saved after the two runs is the same
	sa, err := sys.Serialize()
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, sys.Unserialize(state))
	run()
	sb, err := sys.Serialize()
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, bytes.Equal(sa, sb))
}

func TestVersioning(t *testing.T) {
	sys := newSystem(t, nil, hardware.Options{}, cartridge.Description{})
	frame(t, sys)

	other := newSystem(t, nil, hardware.Options{}, cartridge.Description{RAMSize: 0x800})
	frame(t, other)
	otherState, err := other.Serialize()
	test.DemandSuccess(t, err)

	frame(t, sys)
	before := observe(sys)

	// a state for a different configuration
	err = sys.Unserialize(otherState)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Has(err, serialize.SizeError))
	test.ExpectSuccess(t, bytes.Equal(before, observe(sys)))

	// a truncated state
	state, err := sys.Serialize()
	test.DemandSuccess(t, err)
	before = observe(sys)
	err = sys.Unserialize(state[:len(state)-1])
	test.ExpectSuccess(t, curated.Has(err, serialize.SizeError))
	test.ExpectSuccess(t, bytes.Equal(before, observe(sys)))

	// a state with the wrong version
	state[4] = 0xff
	err = sys.Unserialize(state)
	test.ExpectSuccess(t, curated.Has(err, serialize.VersionError))
	test.ExpectSuccess(t, bytes.Equal(before, observe(sys)))
}

func TestSuperGameBoy(t *testing.T) {
	sink := &audio.Counter{}
	sys := newSystem(t, nil, hardware.Options{Audio: sink}, cartridge.Description{
		Mode: cartridge.ModeSuperGameBoy,
	})

	test.ExpectEquality(t, sys.Segments()[2], "ICD2")
	test.ExpectEquality(t, sys.Scheduler().Context(2).Label(), "icd2")
	test.ExpectEquality(t, sink.Frequency, uint32(4194304))

	frame(t, sys)

	// the handheld is halted so the bridge produces silence
	test.ExpectSuccess(t, sink.Samples > 0)
	test.ExpectEquality(t, sink.Silent, sink.Samples)

	// writes to the WRAM address registers are seen by the bridge and by the
	// CPU
	sys.Bus().Write(0x002181, 0x20)
	sys.Bus().Write(0x002182, 0x00)
	sys.Bus().Write(0x002183, 0x00)
	sys.Bus().Write(0x002180, 0xee)
	test.ExpectEquality(t, sys.CPU().WRAM()[0x20], uint8(0xee))
}

func TestSufamiTurbo(t *testing.T) {
	sys := newSystem(t, nil, hardware.Options{}, cartridge.Description{
		Mode:  cartridge.ModeSufamiTurbo,
		SlotB: []byte{0x01, 0x02},
	})

	test.ExpectEquality(t, sys.Segments()[len(sys.Segments())-1], "SUFA")

	nv := sys.NVRAM()
	test.DemandEquality(t, len(nv), 1)
	test.ExpectEquality(t, nv[0].Slot, 2)

	test.ExpectEquality(t, sys.Bus().Read(0x408001), uint8(0x02))
	test.ExpectEquality(t, sys.Bus().Read(0x208001), uint8(0xff))

	frame(t, sys)
}

func TestNVRAM(t *testing.T) {
	sys := newSystem(t, nil, hardware.Options{}, cartridge.Description{RAMSize: 0x800})

	nv := sys.NVRAM()
	test.DemandEquality(t, len(nv), 1)
	test.ExpectEquality(t, nv[0].ID, "srm")
	test.ExpectEquality(t, nv[0].Slot, 0)

	// non-volatile memory is not affected by power
	nv[0].Data[0] = 0x12
	test.DemandSuccess(t, sys.Power())
	test.ExpectEquality(t, sys.Bus().Read(0x700000), uint8(0x12))
}

func TestRegion(t *testing.T) {
	env := newEnvironment(t, "test")

	sys := newSystem(t, env, hardware.Options{}, cartridge.Description{Region: cartridge.RegionPAL})
	test.ExpectEquality(t, sys.Region(), cartridge.RegionPAL)
	test.ExpectEquality(t, sys.CPUFrequency(), clocks.PAL)

	frame(t, sys)
	test.ExpectEquality(t, sys.CPU().Context().Clock(), uint64(clocks.PALFrame))

	// the preference overrides the region of the cartridge
	test.DemandSuccess(t, env.Prefs.Region.Set("ntsc"))
	test.DemandSuccess(t, sys.Load(cartridge.Description{ROM: testROM(), Region: cartridge.RegionPAL}))
	test.ExpectEquality(t, sys.Region(), cartridge.RegionNTSC)
	test.ExpectEquality(t, sys.CPUFrequency(), clocks.NTSC)
}

func TestRequestExit(t *testing.T) {
	sys := newSystem(t, nil, hardware.Options{}, cartridge.Description{})

	sys.RequestExit()
	r, err := sys.Run()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, r, scheduler.ExitReason{Type: scheduler.ExitUserRequest, Core: -1})

	frame(t, sys)
}

func TestRunForFrameCount(t *testing.T) {
	sys := newSystem(t, nil, hardware.Options{}, cartridge.Description{})

	var calls int
	err := sys.RunForFrameCount(3, func(frame int) (bool, error) {
		calls++
		return true, nil
	})
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, calls, 3)
	test.ExpectEquality(t, sys.CPU().Frames(), uint64(3))

	err = sys.RunForFrameCount(3, func(frame int) (bool, error) {
		return frame < 1, nil
	})
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, sys.CPU().Frames(), uint64(4))
}

func TestReset(t *testing.T) {
	sys := newSystem(t, nil, hardware.Options{}, cartridge.Description{})
	frame(t, sys)

	counter := sys.CPU().WRAM()[0x100]
	test.DemandSuccess(t, sys.Reset())
	test.ExpectEquality(t, sys.CPU().Context().Clock(), uint64(0))
	test.ExpectEquality(t, sys.CPU().WRAM()[0x100], counter)

	frame(t, sys)
}

// faulty fails on the first call to Execute()
type faulty struct {
	failed bool
}

func (f *faulty) Reset() {}

func (f *faulty) Execute(_ cpu.Bus, budget uint64) (cpu.Result, error) {
	if !f.failed {
		f.failed = true
		return cpu.Result{}, errors.New("bad opcode")
	}
	return cpu.Result{Cycles: budget}, nil
}

func (f *faulty) Serialize(_ *serialize.State) {}

func TestFault(t *testing.T) {
	sys := newSystem(t, nil, hardware.Options{CPU: &faulty{}}, cartridge.Description{})

	_, err := sys.Run()
	test.ExpectSuccess(t, curated.Has(err, scheduler.CoreError))

	// the fault is sticky
	_, err = sys.Run()
	test.ExpectSuccess(t, curated.Has(err, scheduler.CoreError))

	// state cannot be saved or restored while the scheduler has a fault
	_, err = sys.Serialize()
	test.ExpectFailure(t, err)

	// until the system is reset
	test.DemandSuccess(t, sys.Reset())
	frame(t, sys)
}

func TestCheat(t *testing.T) {
	sys := newSystem(t, nil, hardware.Options{}, cartridge.Description{})

	code, err := cheat.Decode("00ffff:44")
	test.DemandSuccess(t, err)
	sys.Cheat().Add(code)
	frame(t, sys)
	test.ExpectEquality(t, sys.CPU().WRAM()[0x200], uint8(0x44))

	sys.Cheat().Enable(false)
	frame(t, sys)
	test.ExpectEquality(t, sys.CPU().WRAM()[0x200], uint8(0x33))
}

func TestConcurrentSessions(t *testing.T) {
	const numSessions = 4

	states := make([][]byte, numSessions)

	var g errgroup.Group
	for i := range numSessions {
		env := newEnvironment(t, fmt.Sprintf("session %d", i))
		sys := newSystem(t, env, hardware.Options{}, cartridge.Description{
			Mode:    cartridge.ModeSuperGameBoy,
			RAMSize: 0x2000,
		})
		g.Go(func() error {
			err := sys.RunForFrameCount(3, nil)
			if err != nil {
				return err
			}
			states[i], err = sys.Serialize()
			return err
		})
	}
	test.DemandSuccess(t, g.Wait())

	for i := 1; i < numSessions; i++ {
		test.ExpectSuccess(t, bytes.Equal(states[0], states[i]), i)
	}
}

func TestOpenBus(t *testing.T) {
	sys := newSystem(t, nil, hardware.Options{}, cartridge.Description{})

	// an unmapped address returns the last value on the bus
	_ = sys.Bus().Read(0x008000 + 0x7fff)
	test.ExpectEquality(t, sys.Bus().Read(0x500000), uint8(0x33))

	_, ok := sys.Bus().Resolve(0x500000)
	test.ExpectFailure(t, ok)
	test.ExpectEquality(t, sys.Bus().OpenBus(), uint8(0x33))

	// the open bus value is part of the saved state
	state, err := sys.Serialize()
	test.DemandSuccess(t, err)
	sys.Bus().Write(0x500000, 0x01)
	test.ExpectEquality(t, sys.Bus().OpenBus(), uint8(0x01))
	test.DemandSuccess(t, sys.Unserialize(state))
	test.ExpectEquality(t, sys.Bus().OpenBus(), uint8(0x33))
}
