// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logfmt

import (
	"bufio"
	"fmt"
	"io"
)

// maxLineLen bounds the length of a single log line. Harness logs
// occasionally contain long stack dumps; lines beyond this limit stop
// the Reader with an I/O error.
const maxLineLen = 1 << 20

// A Reader reads a harness log in one Mode.
//
// Its API is modeled on bufio.Scanner. To construct a new Reader,
// either call NewReader, or call Reset on a zeroed Reader.
type Reader struct {
	s        *bufio.Scanner
	mode     Mode
	fileName string
	line     int
	err      error // current I/O error

	rec Record
}

// A Record is a single record read from a log. It is a *Sample, a
// *Marker, or a *SyntaxError.
type Record interface {
	// Pos returns the position of this record as a file name and a
	// 1-based line number within that file. If this record was not
	// read from a file, it returns "", 0.
	Pos() (fileName string, line int)
}

var _ Record = (*Sample)(nil)
var _ Record = (*Marker)(nil)
var _ Record = (*SyntaxError)(nil)

// A MarkerKind identifies a marker line.
type MarkerKind int

const (
	// Exit marks the end of the useful part of a throughput log.
	Exit MarkerKind = iota
	// Trigger marks the trigger event in a timeline log.
	Trigger
)

func (k MarkerKind) String() string {
	switch k {
	case Exit:
		return "exit"
	case Trigger:
		return "trigger"
	}
	return fmt.Sprintf("MarkerKind(%d)", int(k))
}

// A Marker is a control line in a log. Marker lines never carry
// samples.
type Marker struct {
	Kind MarkerKind

	fileName string
	line     int
}

func (m *Marker) Pos() (fileName string, line int) {
	return m.fileName, m.line
}

// A SyntaxError represents a data line that could not be parsed.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (e *SyntaxError) Pos() (fileName string, line int) {
	return e.FileName, e.Line
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
}

var noResult = &SyntaxError{"", 0, "Reader.Scan has not been called"}

// NewReader constructs a reader to parse the log in r in the given
// mode. fileName is used in error messages; it is purely diagnostic.
func NewReader(r io.Reader, fileName string, mode Mode) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName, mode)
	return reader
}

// Reset resets the reader to begin reading from a new input.
func (r *Reader) Reset(ior io.Reader, fileName string, mode Mode) {
	r.s = bufio.NewScanner(ior)
	r.s.Buffer(nil, maxLineLen)
	if fileName == "" {
		fileName = "<unknown>"
	}
	r.fileName = fileName
	r.mode = mode
	r.line = 0
	r.err = nil
	r.rec = nil
}

// Scan advances the reader to the next record and reports whether a
// record was read. The caller should use the Result method to get the
// record. If Scan reaches EOF or an I/O error occurs, it returns false,
// in which case the caller should use the Err method to check for
// errors.
//
// In ThroughputMode, exit lines are reported as Exit markers; in
// TimelineMode, trigger lines are reported as Trigger markers. Lines
// that are neither markers nor data lines are skipped.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	for r.s.Scan() {
		r.line++
		line := r.s.Text()
		switch r.mode {
		case ThroughputMode:
			if IsExit(line) {
				r.rec = &Marker{Exit, r.fileName, r.line}
				return true
			}
			s, ok, err := ParseThroughputLine(line)
			if r.record(s, ok, err) {
				return true
			}
		case TimelineMode:
			if IsTrigger(line) {
				r.rec = &Marker{Trigger, r.fileName, r.line}
				return true
			}
			s, ok, err := ParseTimelineLine(line)
			if r.record(s, ok, err) {
				return true
			}
		default:
			panic(fmt.Sprintf("bad Mode %v", r.mode))
		}
	}
	if err := r.s.Err(); err != nil {
		r.err = fmt.Errorf("%s:%d: %w", r.fileName, r.line+1, err)
	}
	return false
}

// record sets r.rec from the result of a line parser and reports
// whether the line produced a record.
func (r *Reader) record(s Sample, ok bool, err error) bool {
	if err != nil {
		r.rec = &SyntaxError{r.fileName, r.line, err.Error()}
		return true
	}
	if !ok {
		return false
	}
	s.fileName, s.line = r.fileName, r.line
	r.rec = &s
	return true
}

// Result returns the record that was just read by Scan. This is
// either a *Sample, a *Marker, or a *SyntaxError indicating a
// malformed data line.
//
// Syntax errors are non-fatal, so the caller can continue to call
// Scan. Each record is freshly allocated and may be retained.
func (r *Reader) Result() Record {
	if r.rec == nil {
		// This should only happen if Scan has never been called.
		return noResult
	}
	return r.rec
}

// Err returns the first non-EOF I/O error that was encountered by the
// Reader.
func (r *Reader) Err() error {
	return r.err
}
