// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rtlog is the runtime's own logger: the internal packages that log
// (multiplexer, relay) do so through a named instance of it rather
// than the standard library's log package, so V-leveled diagnostics about
// hardware-timer rearms and relay chopping can be switched on per subsystem
// without recompiling.
package rtlog

import (
	"fmt"
	"sync"

	"github.com/cosmosnicolaou/llog"
)

// Level is the V-level a diagnostic is logged at. Higher levels are more
// verbose; 0 is always enabled.
type Level llog.Level

// Set implements flag.Value, so a Level can be bound directly to a
// command-line flag.
func (l *Level) Set(v string) error { return (*llog.Level)(l).Set(v) }

// String implements flag.Value.
func (l *Level) String() string { return (*llog.Level)(l).String() }

// Logger is a named diagnostic stream for one runtime subsystem.
type Logger struct {
	name string
	mu   sync.Mutex
	log  *llog.Log
}

var (
	mu      sync.Mutex
	loggers = make(map[string]*Logger)
)

// Named returns the Logger for subsystem name, creating it on first use.
// Repeated calls with the same name return the same instance, so the
// multiplexer and relay packages can each just ask for their own logger in a
// package-level var, without a separate registration step.
func Named(name string) *Logger {
	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[name]; ok {
		return l
	}
	l := &Logger{name: name, log: llog.NewLogger(name, 1)}
	loggers[name] = l
	return l
}

// SetLogToStderr routes every named logger's output to stderr instead of a
// log file, which is what both tests and the cmd/crtsim demo want.
func SetLogToStderr(v bool) {
	mu.Lock()
	defer mu.Unlock()
	for _, l := range loggers {
		l.log.SetLogToStderr(v)
	}
}

// SetLevel sets the V-level threshold shared by every named logger.
func SetLevel(v Level) {
	mu.Lock()
	defer mu.Unlock()
	for _, l := range loggers {
		l.log.SetV(llog.Level(v))
	}
}

// V reports whether logging at level is currently enabled for l.
func (l *Logger) V(level Level) bool {
	return l.log.V(llog.Level(level))
}

// Info logs a message unconditionally, in the manner of fmt.Print.
func (l *Logger) Info(args ...interface{}) {
	l.log.Print(llog.InfoLog, args...)
}

// Infof logs a message unconditionally, in the manner of fmt.Printf.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.log.Printf(llog.InfoLog, format, args...)
}

// V2 logs at level only if it is currently enabled, avoiding the
// fmt.Sprintf cost on the common path where it is not.
func (l *Logger) V2(level Level, format string, args ...interface{}) {
	if l.log.V(llog.Level(level)) {
		l.log.Printf(llog.InfoLog, format, args...)
	}
}

// Error logs to the ERROR and INFO streams, in the manner of fmt.Print.
func (l *Logger) Error(args ...interface{}) {
	l.log.Print(llog.ErrorLog, args...)
}

// Errorf logs to the ERROR and INFO streams, in the manner of fmt.Printf.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log.Printf(llog.ErrorLog, format, args...)
}

// Panic logs an error then panics with the same message, for the
// programmer-error class of failure (capacity exhausted, order violated,
// relay queue full) the runtime never tries to recover from.
func (l *Logger) Panic(args ...interface{}) {
	l.Error(args...)
	panic(fmt.Sprint(args...))
}

// Flush flushes this logger's pending I/O.
func (l *Logger) Flush() {
	l.log.Flush()
}
