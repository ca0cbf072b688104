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

package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/bradleyjkemp/memviz"
	"golang.org/x/term"

	"github.com/jetsetilly/lockstep/environment"
	"github.com/jetsetilly/lockstep/hardware"
	"github.com/jetsetilly/lockstep/hardware/audio"
	"github.com/jetsetilly/lockstep/hardware/cartridge"
	"github.com/jetsetilly/lockstep/hardware/cheat"
	"github.com/jetsetilly/lockstep/hardware/coprocessor/msu1"
	"github.com/jetsetilly/lockstep/hardware/preferences"
	"github.com/jetsetilly/lockstep/logger"
	"github.com/jetsetilly/lockstep/modalflag"
	"github.com/jetsetilly/lockstep/performance"
	"github.com/jetsetilly/lockstep/prefs"
	"github.com/jetsetilly/lockstep/rewind"
	"github.com/jetsetilly/lockstep/statsview"
	"github.com/jetsetilly/lockstep/version"
	"github.com/jetsetilly/lockstep/wavwriter"
)

func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.NewMode()
	md.AddSubModes("RUN", "INFO", "PERFORMANCE", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		os.Exit(0)

	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		os.Exit(10)
	}

	switch md.Mode() {
	case "RUN":
		err = run(md)
	case "INFO":
		err = info(md)
	case "PERFORMANCE":
		err = perform(md)
	case "VERSION":
		err = showVersion(md)
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		os.Exit(20)
	}
}

// cartridge flags are shared by every mode
type cartridgeFlags struct {
	mode    *string
	region  *string
	ram     *int
	chips   *[]string
	slotA   *string
	slotB   *string
	prefs   *string
	set     *string
	verbose *bool
}

func addCartridgeFlags(md *modalflag.Modes) cartridgeFlags {
	return cartridgeFlags{
		mode:    md.AddString("mode", "normal", "cartridge mode: normal, bsx, bsxslotted, sufamiturbo, supergameboy"),
		region:  md.AddString("region", "", "region of the cartridge: NTSC, PAL (overrides preferences)"),
		ram:     md.AddInt("ram", 0, "size of cartridge RAM in bytes"),
		chips:   md.AddList("chips", "comma separated list of enhancement chips"),
		slotA:   md.AddString("slota", "", "ROM in slot A of a sufami turbo cartridge"),
		slotB:   md.AddString("slotb", "", "ROM in slot B of a sufami turbo cartridge"),
		prefs:   md.AddString("prefs", "", "preferences file"),
		set:     md.AddString("set", "", "preference values. for example: hardware.quantum::256; hardware.rewind.depth::20"),
		verbose: md.AddBool("verbose", false, "echo log entries to the terminal"),
	}
}

// create a system with the cartridge named on the command line
func newSystem(md *modalflag.Modes, cf cartridgeFlags, opts hardware.Options) (*hardware.System, error) {
	switch len(md.RemainingArgs()) {
	case 0:
		return nil, fmt.Errorf("cartridge required for %s mode", md)
	case 1:
	default:
		return nil, fmt.Errorf("too many arguments for %s mode", md)
	}

	if *cf.verbose && term.IsTerminal(int(os.Stderr.Fd())) {
		logger.SetEcho(os.Stderr)
	}

	if *cf.set != "" {
		prefs.PushCommandLineStack(*cf.set)
		defer func() {
			if unused := prefs.PopCommandLineStack(); unused != "" {
				logger.Logf(logger.Allow, "lockstep", "unused preferences: %s", unused)
			}
		}()
	}

	hwprefs, err := preferences.NewPreferences(*cf.prefs)
	if err != nil {
		return nil, err
	}
	if *cf.region != "" {
		err = hwprefs.Region.Set(*cf.region)
		if err != nil {
			return nil, err
		}
	}

	env, err := environment.NewEnvironment(environment.MainEmulation, hwprefs)
	if err != nil {
		return nil, err
	}

	desc := cartridge.Description{
		Name:    filepath.Base(md.GetArg(0)),
		RAMSize: *cf.ram,
	}

	desc.ROM, err = os.ReadFile(md.GetArg(0))
	if err != nil {
		return nil, err
	}

	var ok bool
	desc.Mode, ok = cartridge.ParseMode(*cf.mode)
	if !ok {
		return nil, fmt.Errorf("unknown cartridge mode: %s", *cf.mode)
	}

	var chips []cartridge.Chip
	for _, c := range *cf.chips {
		ch, ok := cartridge.ParseChip(c)
		if !ok {
			return nil, fmt.Errorf("unknown chip: %s", c)
		}
		chips = append(chips, ch)
	}
	desc.Chips = cartridge.NewChips(chips...)

	if *cf.slotA != "" {
		desc.SlotA, err = os.ReadFile(*cf.slotA)
		if err != nil {
			return nil, err
		}
	}
	if *cf.slotB != "" {
		desc.SlotB, err = os.ReadFile(*cf.slotB)
		if err != nil {
			return nil, err
		}
	}

	sys, err := hardware.NewSystem(env, opts)
	if err != nil {
		return nil, err
	}

	err = sys.Load(desc)
	if err != nil {
		return nil, err
	}

	return sys, nil
}

func run(md *modalflag.Modes) error {
	md.NewMode()

	cf := addCartridgeFlags(md)
	frames := md.AddInt("frames", 60, "number of frames to run")
	loadState := md.AddString("loadstate", "", "load state before running")
	saveState := md.AddString("savestate", "", "save state after running")
	rewindTo := md.AddInt("rewind", -1, "rewind to frame before saving state")
	cheats := md.AddList("cheats", "comma separated list of cheat codes")
	wav := md.AddString("wav", "", "record coprocessor audio to WAV file")
	msu := md.AddString("msu", "", "MSU-1 data file. audio tracks are found alongside")
	mem := md.AddString("memviz", "", "write the structure of the scheduler to a DOT file")
	stats := md.AddString("statsview", "", fmt.Sprintf("run stats server on address. for example: %s", statsview.DefaultAddress))

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *stats != "" {
		if !statsview.Available() {
			return fmt.Errorf("statsview not available in this build")
		}
		defer statsview.Launch(md.Output, *stats)()
	}

	var opts hardware.Options

	var ww *wavwriter.WavWriter
	if *wav != "" {
		ww, err = wavwriter.New(*wav)
		if err != nil {
			return err
		}
		opts.Audio = ww
	} else {
		opts.Audio = audio.NullSink{}
	}

	if *msu != "" {
		opts.MSU1 = msu1.Dir{
			Path: filepath.Dir(*msu),
			Base: strings.TrimSuffix(filepath.Base(*msu), filepath.Ext(*msu)),
		}
	}

	sys, err := newSystem(md, cf, opts)
	if err != nil {
		return err
	}

	err = sys.Power()
	if err != nil {
		return err
	}

	for _, c := range *cheats {
		code, err := cheat.Decode(c)
		if err != nil {
			return err
		}
		sys.Cheat().Add(code)
	}

	if *loadState != "" {
		data, err := os.ReadFile(*loadState)
		if err != nil {
			return err
		}
		err = sys.Unserialize(data)
		if err != nil {
			return err
		}
	}

	// end the run early on an interrupt
	var interrupted atomic.Bool
	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)
	defer func() {
		signal.Stop(intChan)
		close(intChan)
	}()
	go func() {
		for range intChan {
			interrupted.Store(true)
			sys.RequestExit()
		}
	}()

	var rw *rewind.Rewind
	if *rewindTo >= 0 {
		rw = rewind.NewRewind(sys)
		err = rw.Reset()
		if err != nil {
			return err
		}
	}

	var recorded int
	err = sys.RunForFrameCount(*frames, func(frame int) (bool, error) {
		if rw != nil && frame > recorded {
			recorded = frame
			if err := rw.RecordFrameState(); err != nil {
				return false, err
			}
		}
		return !interrupted.Load(), nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(md.Output, "%d frames\n", sys.Frames())

	if rw != nil {
		fn, err := rw.GotoFrame(uint64(*rewindTo))
		if err != nil {
			return err
		}
		fmt.Fprintf(md.Output, "rewound to frame %d\n", fn)
	}

	if *saveState != "" {
		data, err := sys.Serialize()
		if err != nil {
			return err
		}
		err = os.WriteFile(*saveState, data, 0o644)
		if err != nil {
			return err
		}
	}

	if ww != nil {
		err = ww.End()
		if err != nil {
			return err
		}
	}

	if *mem != "" {
		err = writeMemviz(*mem, sys)
		if err != nil {
			return err
		}
	}

	return nil
}

func writeMemviz(filename string, sys *hardware.System) (rerr error) {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		err := f.Close()
		if err != nil && rerr == nil {
			rerr = err
		}
	}()

	memviz.Map(f, sys.Scheduler())

	return nil
}

func info(md *modalflag.Modes) error {
	md.NewMode()

	cf := addCartridgeFlags(md)
	mapping := md.AddBool("mapping", false, "list the regions of the address space")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	sys, err := newSystem(md, cf, hardware.Options{})
	if err != nil {
		return err
	}

	printInfo(md.Output, sys, *mapping)

	return nil
}

func perform(md *modalflag.Modes) error {
	md.NewMode()

	cf := addCartridgeFlags(md)
	duration := md.AddString("duration", "5s", "length of time to run the emulation for")
	profile := md.AddString("profile", "none", "create profiling data: cpu, mem, trace, all")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	prf, err := performance.ParseProfile(*profile)
	if err != nil {
		return err
	}

	sys, err := newSystem(md, cf, hardware.Options{Audio: audio.NullSink{}})
	if err != nil {
		return err
	}

	err = sys.Power()
	if err != nil {
		return err
	}

	return performance.Check(md.Output, prf, sys, *duration)
}

func showVersion(md *modalflag.Modes) error {
	md.NewMode()

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	fmt.Fprintln(md.Output, version.String())
	return nil
}

func printInfo(output io.Writer, sys *hardware.System, mapping bool) {
	fmt.Fprintln(output, sys)
	fmt.Fprintf(output, "state: %d bytes [%s]\n", sys.SerializeSize(), strings.Join(sys.Segments(), "|"))
	for _, nv := range sys.NVRAM() {
		fmt.Fprintf(output, "nvram: %s slot %d (%d bytes)\n", nv.ID, nv.Slot, len(nv.Data))
	}
	if mapping {
		fmt.Fprintln(output, sys.Bus().Summary())
	}
}
