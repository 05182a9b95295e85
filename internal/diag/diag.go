// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diag defines the abstract diagnostics surface the symbol
// resolution core reports through. The core never decides how a diagnostic
// is displayed or whether it's fatal to the overall link; it only reports.
package diag

import (
	"fmt"
	"log"
)

// A Sink receives diagnostics from the resolution core.
//
// Error logs a user-attributable, fatal-but-deferred error: the caller
// should continue processing so it can report as many errors as possible,
// but the link as a whole must ultimately fail.
//
// Warning logs a non-fatal observation (e.g. a TLS/non-TLS mismatch between
// two definitions of the same symbol) that never changes a resolution
// decision.
//
// Unreachable reports an internal invariant violation: a decision-matrix
// cell the fingerprint encoder cannot produce, or a precondition failure on
// an override. Implementations should treat this as fatal to the process,
// not just the link.
type Sink interface {
	Error(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Unreachable(format string, args ...interface{})
}

// Stable, user-visible diagnostic strings (spec §6). Callers format these
// with fmt.Sprintf and pass the result to Sink.Error/Warning.
const (
	MultipleDefinition   = "%s: multiple definition of %s"
	PreviousDefinition   = "%s: previous definition here"
	InvalidLocalBinding  = "%s: invalid STB_LOCAL symbol %s in external symbols"
	UnsupportedBinding   = "%s: unsupported symbol binding %d for symbol %s"
	TLSMismatch          = "%s: TLS definition of %s mismatches non-TLS definition in %s"
	UnsupportedXindex    = "%s: symbol %s uses SHN_XINDEX extended section indices, which are not supported"
	CommandLineOrigin    = "command line"
)

// LogSink reports diagnostics through a *log.Logger. Errors and warnings are
// printed, never fatal to the process; Unreachable calls log.Logger.Panicf
// so a programming error halts instead of silently corrupting the table.
type LogSink struct {
	Logger *log.Logger
}

// NewLogSink returns a Sink that writes to logger. If logger is nil,
// log.Default() is used.
func NewLogSink(logger *log.Logger) *LogSink {
	if logger == nil {
		logger = log.Default()
	}
	return &LogSink{logger}
}

func (s *LogSink) Error(format string, args ...interface{}) {
	s.Logger.Printf("error: "+format, args...)
}

func (s *LogSink) Warning(format string, args ...interface{}) {
	s.Logger.Printf("warning: "+format, args...)
}

func (s *LogSink) Unreachable(format string, args ...interface{}) {
	s.Logger.Panicf("internal error: "+format, args...)
}

// Diagnostic is one recorded message from a RecordingSink.
type Diagnostic struct {
	Level   string // "error" or "warning"
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Level, d.Message)
}

// RecordingSink accumulates diagnostics in memory instead of printing them,
// for use by tests and by callers (like the CLI) that want to summarize
// errors after a batch of resolutions. Unreachable still panics: there's no
// sensible way to "record and continue" from an internal invariant
// violation.
type RecordingSink struct {
	Diagnostics []Diagnostic
}

func (s *RecordingSink) Error(format string, args ...interface{}) {
	s.Diagnostics = append(s.Diagnostics, Diagnostic{"error", fmt.Sprintf(format, args...)})
}

func (s *RecordingSink) Warning(format string, args ...interface{}) {
	s.Diagnostics = append(s.Diagnostics, Diagnostic{"warning", fmt.Sprintf(format, args...)})
}

func (s *RecordingSink) Unreachable(format string, args ...interface{}) {
	panic(fmt.Sprintf("internal error: "+format, args...))
}

// HasErrors reports whether any Error (not Warning) diagnostics were
// recorded, the condition under which a real linker driver should exit
// non-zero once all objects have been processed.
func (s *RecordingSink) HasErrors() bool {
	for _, d := range s.Diagnostics {
		if d.Level == "error" {
			return true
		}
	}
	return false
}
