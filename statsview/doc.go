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

// Package statsview serves runtime statistics of the emulator process over
// HTTP. Useful when profiling long runs of the scheduler. The server is only
// built with the statsview build tag:
//
//	go build -tags statsview
//
// Without the tag Launch() does nothing and Available() returns false.
//
// The server is provided by "github.com/go-echarts/statsview". Standard pprof
// pages are served alongside the charts under /debug/pprof/.
package statsview
