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

package prefs

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jetsetilly/lockstep/curated"
)

// WarningBoilerPlate is inserted at the beginning of a preferences file.
const WarningBoilerPlate = "*** do not edit this file by hand ***"

// separator between key and value in the prefs file
const separator = " :: "

// Sentinal errors.
const (
	NoPrefsFile  = "prefs: no prefs file (%s)"
	PrefsFileErr = "prefs: %v"
	DuplicateKey = "prefs: duplicate key (%s)"
	InvalidEntry = "prefs: invalid entry (%s)"
)

// Disk represents preference values as stored on disk. A single prefs file can
// be shared by more than one Disk instance. Entries in the file that the Disk
// does not know about are preserved on Save().
type Disk struct {
	path    string
	entries map[string]pref
}

func (dsk *Disk) String() string {
	s := strings.Builder{}
	for _, k := range dsk.keys() {
		s.WriteString(fmt.Sprintf("%s%s%s\n", k, separator, dsk.entries[k]))
	}
	return s.String()
}

// NewDisk is the preferred method of initialisation for the Disk type. An
// empty path indicates that the values are never stored on disk. Calls to
// Save() and Load() will do nothing except apply command line values.
func NewDisk(path string) (*Disk, error) {
	return &Disk{
		path:    path,
		entries: make(map[string]pref),
	}, nil
}

func (dsk *Disk) keys() []string {
	k := make([]string, 0, len(dsk.entries))
	for key := range dsk.entries {
		k = append(k, key)
	}
	sort.Strings(k)
	return k
}

// Add preference value to list of values to store/load from Disk. The key
// value is used to identify the value in the prefs file.
func (dsk *Disk) Add(key string, p pref) error {
	if _, ok := dsk.entries[key]; ok {
		return curated.Errorf(DuplicateKey, key)
	}
	if strings.Contains(key, separator) || strings.TrimSpace(key) != key || key == "" {
		return curated.Errorf(InvalidEntry, key)
	}
	dsk.entries[key] = p
	return nil
}

// read the prefs file into a map of key/value strings
func (dsk *Disk) read() (map[string]string, error) {
	f, err := os.Open(dsk.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, curated.Errorf(NoPrefsFile, dsk.path)
		}
		return nil, curated.Errorf(PrefsFileErr, err)
	}
	defer f.Close()

	values := make(map[string]string)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == WarningBoilerPlate || strings.TrimSpace(line) == "" {
			continue
		}
		kv := strings.SplitN(line, separator, 2)
		if len(kv) != 2 {
			return nil, curated.Errorf(InvalidEntry, line)
		}
		values[kv[0]] = kv[1]
	}

	if err := scanner.Err(); err != nil {
		return nil, curated.Errorf(PrefsFileErr, err)
	}

	return values, nil
}

// Save current preference values to disk.
func (dsk *Disk) Save() error {
	if dsk.path == "" {
		return nil
	}

	values, err := dsk.read()
	if err != nil && !curated.Is(err, NoPrefsFile) {
		return err
	}
	if values == nil {
		values = make(map[string]string)
	}

	for k, p := range dsk.entries {
		values[k] = p.String()
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := strings.Builder{}
	s.WriteString(WarningBoilerPlate)
	s.WriteString("\n")
	for _, k := range keys {
		s.WriteString(fmt.Sprintf("%s%s%s\n", k, separator, values[k]))
	}

	if err := os.WriteFile(dsk.path, []byte(s.String()), 0o600); err != nil {
		return curated.Errorf(PrefsFileErr, err)
	}

	return nil
}

// Load preference values from disk. Values in the most recent command line
// group take priority over values on disk.
//
// If the prefs file does not exist, the NoPrefsFile error is returned after
// the command line values have been applied. Callers will often want to
// ignore that error.
func (dsk *Disk) Load() error {
	var values map[string]string
	var rerr error

	if dsk.path != "" {
		var err error
		values, err = dsk.read()
		if err != nil {
			if !curated.Is(err, NoPrefsFile) {
				return err
			}
			rerr = err
		}
	}

	for _, k := range dsk.keys() {
		p := dsk.entries[k]
		if ok, v := GetCommandLinePref(k); ok {
			if err := p.Set(v); err != nil {
				return curated.Errorf(PrefsFileErr, err)
			}
			continue
		}
		if v, ok := values[k]; ok {
			if err := p.Set(v); err != nil {
				return curated.Errorf(PrefsFileErr, err)
			}
		}
	}

	return rerr
}
