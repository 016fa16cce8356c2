// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package vlog provides the optional debug-trace logging used by the
// parser and change engine while walking a VCD file.
package vlog

import (
	"log"
	"os"
	"sync/atomic"
)

// LogProvider is the set of levels a Log can emit. The parser itself
// only emits Error.
type LogProvider interface {
	Error(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Debug(format string, v ...interface{})
}

// Log is the internal debugging logger embedded by Parser.
type Log struct {
	provider LogProvider
	has      uint32 // 1: enabled, 0: disabled
}

// New creates a logger with the given line prefix, disabled by default.
func New(prefix string) Log {
	return Log{
		provider: defaultLogger{log.New(os.Stdout, prefix, log.LstdFlags)},
	}
}

// SetEnabled turns debug-trace output on or off.
func (sf *Log) SetEnabled(enable bool) {
	if enable {
		atomic.StoreUint32(&sf.has, 1)
	} else {
		atomic.StoreUint32(&sf.has, 0)
	}
}

// SetProvider overrides where log lines are sent.
func (sf *Log) SetProvider(p LogProvider) {
	if p != nil {
		sf.provider = p
	}
}

// Error logs an ERROR level message.
func (sf Log) Error(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Error(format, v...)
	}
}

// Warn logs a WARN level message.
func (sf Log) Warn(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Warn(format, v...)
	}
}

// Debug logs a DEBUG level message.
func (sf Log) Debug(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Debug(format, v...)
	}
}

type defaultLogger struct {
	*log.Logger
}

var _ LogProvider = (*defaultLogger)(nil)

func (sf defaultLogger) Error(format string, v ...interface{}) { sf.Printf("[E]: "+format, v...) }
func (sf defaultLogger) Warn(format string, v ...interface{})  { sf.Printf("[W]: "+format, v...) }
func (sf defaultLogger) Debug(format string, v ...interface{}) { sf.Printf("[D]: "+format, v...) }
