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

package performance

import (
	"fmt"
	"io"
	"math"
	"sync/atomic"
	"time"

	"github.com/jetsetilly/lockstep/curated"
	"github.com/jetsetilly/lockstep/hardware"
)

// Sentinal errors.
const (
	CheckError = "performance: %v"
)

// the number of frames to run before measurement begins. gives the host a
// chance to settle.
const warmupFrames = 10

// Check the performance of the emulation. The system must have been loaded
// and powered. The emulation runs for the duration, for example "5s", and
// the result is written to output.
func Check(output io.Writer, profile Profile, sys *hardware.System, duration string) error {
	dur, err := time.ParseDuration(duration)
	if err != nil {
		return curated.Errorf(CheckError, err)
	}

	err = sys.RunForFrameCount(warmupFrames, nil)
	if err != nil {
		return curated.Errorf(CheckError, err)
	}

	startFrame := sys.Frames()
	startTime := time.Now()

	var timesUp atomic.Bool
	timer := time.AfterFunc(dur, func() {
		timesUp.Store(true)
		sys.RequestExit()
	})
	defer timer.Stop()

	runner := func() error {
		return sys.RunForFrameCount(math.MaxInt, func(_ int) (bool, error) {
			return !timesUp.Load(), nil
		})
	}

	err = RunProfiler(profile, "performance", runner)
	if err != nil {
		return curated.Errorf(CheckError, err)
	}

	numFrames := sys.Frames() - startFrame
	elapsed := time.Since(startTime).Seconds()

	fps, accuracy := CalcFPS(numFrames, elapsed, sys.FrameRate())
	fmt.Fprintf(output, "%.2f fps (%d frames in %.2f seconds) %.1f%%\n", fps, numFrames, elapsed, accuracy)

	return nil
}

// CalcFPS takes the number of frames and the duration (in seconds) and
// returns the frames-per-second and the accuracy of that value as a
// percentage of the nominal frame rate.
func CalcFPS(numFrames uint64, duration float64, nominal float64) (fps float64, accuracy float64) {
	if duration <= 0 {
		return 0, 0
	}
	fps = float64(numFrames) / duration
	if nominal > 0 {
		accuracy = 100 * fps / nominal
	}
	return fps, accuracy
}
