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

// Package test bundles a collection of helper functions that remove common
// boilerplate from the tests of other packages. It is intended to be used in
// conjunction with the standard go test harness.
//
// The Expect*() functions test a value and report a test error on failure.
// The Demand*() functions are similar but will stop the test immediately. Use
// them when further tests depend on the value being correct.
//
// ExpectSuccess() and ExpectFailure() test for success or failure according
// to the type of the value. See the function documentation for the supported
// types.
//
// It is worth describing how these functions handle the nil type because it
// is not obvious. The nil type is considered a success and consequently will
// cause ExpectFailure to fail and ExpectSuccess to succeed. This is consistent
// with how errors usually work, where nil indicates no error.
//
// The CompareWriter and RingWriter types implement the io.Writer interface
// and should be used to capture output for comparison.
package test
