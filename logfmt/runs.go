// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logfmt

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// A Run is one benchmark run found in a result directory: a
// run-<index>.toml configuration and its run-<index>.toml.txt log.
type Run struct {
	// Index is the integer parsed from the file name.
	Index int
	// Config is the path of the run's .toml file.
	Config string
	// Log is the path of the run's log, Config + ".txt".
	Log string
}

// LogSuffix is appended to a run's configuration path to name its log.
const LogSuffix = ".txt"

var (
	runConfigPattern = regexp.MustCompile(`^run-.*?toml$`)
	runIndexPattern  = regexp.MustCompile(`^run-(.*?)\.toml$`)
)

// A RunNameError reports a file that looks like a run configuration
// but whose name has no integer index.
type RunNameError struct {
	Path string
	Msg  string
}

func (e *RunNameError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

// ParseRunName parses the run index from the base name of a run
// configuration file. ok is false if name is not a run configuration
// at all; err is non-nil if it is one but its index is not an integer.
func ParseRunName(name string) (index int, ok bool, err error) {
	if !runConfigPattern.MatchString(name) {
		return 0, false, nil
	}
	m := runIndexPattern.FindStringSubmatch(name)
	if m == nil {
		return 0, true, fmt.Errorf("run file name is not of the form run-<index>.toml")
	}
	index, err = strconv.Atoi(strings.TrimSpace(m[1]))
	if err != nil {
		return 0, true, fmt.Errorf("run index %q is not an integer", m[1])
	}
	return index, true, nil
}

// FindRuns lists the runs in dir, sorted by index and then by file
// name. Only dir itself is searched, not its subdirectories.
//
// Files that look like run configurations but have a malformed name
// are skipped and returned as *RunNameError warnings. The existence of
// each run's log is not checked here.
func FindRuns(dir string) (runs []Run, warnings []error, err error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	for _, ent := range ents {
		if ent.IsDir() {
			continue
		}
		name := ent.Name()
		index, ok, err := ParseRunName(name)
		if !ok {
			continue
		}
		path := filepath.Join(dir, name)
		if err != nil {
			warnings = append(warnings, &RunNameError{path, err.Error()})
			continue
		}
		runs = append(runs, Run{Index: index, Config: path, Log: path + LogSuffix})
	}
	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Index != runs[j].Index {
			return runs[i].Index < runs[j].Index
		}
		return runs[i].Config < runs[j].Config
	})
	return runs, warnings, nil
}

// SplitLabel splits a command-line input of the form label=path. If
// arg has no '=', the label is the base name of the path.
func SplitLabel(arg string) (label, path string) {
	if i := strings.Index(arg, "="); i >= 0 {
		return arg[:i], arg[i+1:]
	}
	return filepath.Base(arg), arg
}
