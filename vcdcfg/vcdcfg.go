// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package vcdcfg defines the Parser's optional configuration, following
// the teacher's Config-with-Valid()-and-defaults convention (cs104.Config).
package vcdcfg

import "errors"

// defines the accepted range for TokenBufferBytes.
const (
	TokenBufferBytesMin = 4 * 1024
	TokenBufferBytesMax = 16 * 1024 * 1024
)

// Config defines an optional Parser configuration. The zero Config is
// valid and uses sane defaults -- every field is optional.
type Config struct {
	// TokenBufferBytes sizes the tokeniser's read buffer. 0 selects the
	// default (64KiB).
	TokenBufferBytes int

	// LogEnabled turns on the parser's debug-trace logging (the Engine
	// and header dispatch loop do not log by default).
	LogEnabled bool
}

// Default returns the zero-value Config, provided for symmetry with the
// teacher's DefaultConfig-style constructors even though Go's zero
// value already means "use the defaults".
func Default() Config { return Config{} }

// Valid checks Config is within accepted ranges. A zero TokenBufferBytes
// is always valid (it selects the tokeniser's built-in default).
func (c Config) Valid() error {
	if c.TokenBufferBytes == 0 {
		return nil
	}
	if c.TokenBufferBytes < TokenBufferBytesMin || c.TokenBufferBytes > TokenBufferBytesMax {
		return errors.New("vcd: TokenBufferBytes out of range [4KiB, 16MiB]")
	}
	return nil
}
