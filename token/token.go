// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package token implements the VCD tokeniser: a lazy, forward-only
// stream of whitespace-delimited lexemes.
package token

import (
	"bufio"
	"io"

	"github.com/rob-gra/vcd/vcderr"
)

// Scanner splits an input stream into non-empty whitespace-separated
// lexemes. It reads ahead through a bufio.Reader buffer but hands out
// one lexeme at a time, and never seeks.
type Scanner struct {
	r   *bufio.Reader
	pos int
}

// defaultBufferBytes is the tokeniser's read-ahead buffer size.
const defaultBufferBytes = 64 * 1024

// NewScanner wraps r in a Scanner using the default buffer size.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReaderSize(r, defaultBufferBytes)}
}

// NewScannerSize wraps r in a Scanner with an explicit read-ahead
// buffer size. size <= 0 selects the default.
func NewScannerSize(r io.Reader, size int) *Scanner {
	if size <= 0 {
		size = defaultBufferBytes
	}
	return &Scanner{r: bufio.NewReaderSize(r, size)}
}

// Pos returns the count of lexemes returned so far, for error reporting.
func (sf *Scanner) Pos() int { return sf.pos }

// Next returns the next lexeme, or io.EOF when the stream is exhausted.
// A read failure from the underlying reader is reported as *vcderr.IOError.
func (sf *Scanner) Next() (string, error) {
	// skip leading whitespace
	var b byte
	var err error
	for {
		b, err = sf.r.ReadByte()
		if err != nil {
			return "", wrapErr(err)
		}
		if !isSpace(b) {
			break
		}
	}

	buf := make([]byte, 0, 16)
	buf = append(buf, b)
	for {
		b, err = sf.r.ReadByte()
		if err != nil {
			if err == io.EOF {
				break
			}
			return "", wrapErr(err)
		}
		if isSpace(b) {
			break
		}
		buf = append(buf, b)
	}
	sf.pos++
	return string(buf), nil
}

func wrapErr(err error) error {
	if err == io.EOF {
		return io.EOF
	}
	return &vcderr.IOError{Err: err}
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}
