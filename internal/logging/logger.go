// Package logging provides the hierarchical, nil-safe logger used
// throughout the client. It mirrors the logger used by the file
// synchronization client this package is descended from: a thin wrapper
// around the standard log package with colorized warnings and a
// package-level debug gate.
package logging

import (
	"fmt"
	"io"
	"log"

	"github.com/fatih/color"
)

// DebugEnabled controls whether Debug/Debugf/Debugln calls produce output.
// It is a package-level flag (rather than per-logger state) so that a
// single environment variable or flag can toggle debug output globally,
// matching the teacher's own global debug switch.
var DebugEnabled bool

// Logger is the main logger type. A nil *Logger is valid and silently
// discards all output, so components can be constructed without a logger
// in tests without special-casing nil checks at every call site.
type Logger struct {
	prefix string
}

// RootLogger is the root logger from which all other loggers derive.
var RootLogger = &Logger{}

// Sublogger creates a new logger whose prefix is composed with this
// logger's prefix, joined by a dot.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}
	return &Logger{prefix: prefix}
}

func (l *Logger) output(calldepth int, line string) {
	if l.prefix != "" {
		line = fmt.Sprintf("[%s] %s", l.prefix, line)
	}
	log.Output(calldepth, line)
}

// Print logs with fmt.Print semantics.
func (l *Logger) Print(v ...interface{}) {
	if l != nil {
		l.output(3, fmt.Sprint(v...))
	}
}

// Printf logs with fmt.Printf semantics.
func (l *Logger) Printf(format string, v ...interface{}) {
	if l != nil {
		l.output(3, fmt.Sprintf(format, v...))
	}
}

// Println logs with fmt.Println semantics.
func (l *Logger) Println(v ...interface{}) {
	if l != nil {
		l.output(3, fmt.Sprintln(v...))
	}
}

// Debug logs with fmt.Print semantics, but only if debugging is enabled.
func (l *Logger) Debug(v ...interface{}) {
	if l != nil && DebugEnabled {
		l.output(3, fmt.Sprint(v...))
	}
}

// Debugf logs with fmt.Printf semantics, but only if debugging is enabled.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if l != nil && DebugEnabled {
		l.output(3, fmt.Sprintf(format, v...))
	}
}

// Debugln logs with fmt.Println semantics, but only if debugging is enabled.
func (l *Logger) Debugln(v ...interface{}) {
	if l != nil && DebugEnabled {
		l.output(3, fmt.Sprintln(v...))
	}
}

// Warn logs error information with a yellow "Warning:" prefix.
func (l *Logger) Warn(err error) {
	if l != nil {
		l.output(3, color.YellowString("Warning: %v", err))
	}
}

// Warnf logs formatted warning information with a yellow prefix.
func (l *Logger) Warnf(format string, v ...interface{}) {
	if l != nil {
		l.output(3, color.YellowString("Warning: "+format, v...))
	}
}

// Error logs error information with a red "Error:" prefix.
func (l *Logger) Error(err error) {
	if l != nil {
		l.output(3, color.RedString("Error: %v", err))
	}
}

// discard is an io.Writer that drops everything written to it. Nothing in
// this package uses it at present; a nil Logger discards output by
// returning early from each method.
var discard io.Writer = io.Discard
