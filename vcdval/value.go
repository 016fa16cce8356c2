// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package vcdval holds the VCD Value tagged union and the boundary
// helper that turns a scalar/vector value into an integer or real.
package vcdval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rob-gra/vcd/vcderr"
)

// Kind distinguishes a scalar from a vector value.
type Kind uint8

const (
	// KindScalar is a single-bit value: 0, 1, x or z.
	KindScalar Kind = iota
	// KindVector is a multi-bit binary or real value.
	KindVector
)

func (k Kind) String() string {
	if k == KindVector {
		return "vector"
	}
	return "scalar"
}

// Radix distinguishes a vector's digit encoding.
type Radix uint8

const (
	// RadixNone applies to scalar values.
	RadixNone Radix = iota
	// RadixBinary is 'b'/'B' vectors: binary digits, possibly with x/z bits.
	RadixBinary
	// RadixReal is 'r'/'R' vectors: a real number printed per VCD rules.
	RadixReal
)

// Value is the tagged union decoded from a VCD value-change token.
// The zero Value is a scalar whose Scalar byte is 0, not 'x'; the
// watched-values store's initial-x convention (spec invariant I4 / P5)
// uses ScalarX instead.
type Value struct {
	Kind   Kind
	Scalar byte // '0', '1', 'x', 'X', 'z', 'Z' -- valid when Kind == KindScalar
	Radix  Radix
	Digits string // valid when Kind == KindVector
}

// ScalarX is the initial value every watched signal holds before its
// first recorded change.
var ScalarX = Value{Kind: KindScalar, Scalar: 'x'}

// NewScalar builds a scalar Value. c must be one of 0,1,x,X,z,Z.
func NewScalar(c byte) Value {
	return Value{Kind: KindScalar, Scalar: c}
}

// NewVector builds a vector Value with the given radix character
// ('b' or 'r', already lower-cased by the caller) and digit string.
func NewVector(radix byte, digits string) Value {
	r := RadixBinary
	if radix == 'r' {
		r = RadixReal
	}
	return Value{Kind: KindVector, Radix: r, Digits: digits}
}

// Equal reports whether two values carry the same encoding.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	if v.Kind == KindScalar {
		return foldScalar(v.Scalar) == foldScalar(o.Scalar)
	}
	return v.Radix == o.Radix && v.Digits == o.Digits
}

func foldScalar(c byte) byte {
	switch c {
	case 'X':
		return 'x'
	case 'Z':
		return 'z'
	default:
		return c
	}
}

// String renders the value the way it would appear after a VCD
// value-change token's leading character, for logging and test output.
func (v Value) String() string {
	if v.Kind == KindScalar {
		return string(v.Scalar)
	}
	tag := "b"
	if v.Radix == RadixReal {
		tag = "r"
	}
	return fmt.Sprintf("%s%s", tag, v.Digits)
}

// Decode turns a Scalar or binary Vector into an unsigned integer.
// Scalar 'x'/'X'/'z'/'Z' and any x/z bit within a binary vector are
// definite-value errors (vcderr.ErrValue). Real vectors are rejected;
// use DecodeReal for those.
func Decode(v Value) (uint64, error) {
	switch v.Kind {
	case KindScalar:
		switch v.Scalar {
		case '0':
			return 0, nil
		case '1':
			return 1, nil
		default:
			return 0, vcderr.ErrValue
		}
	case KindVector:
		if v.Radix != RadixBinary {
			return 0, fmt.Errorf("vcd: %w: real vector, use DecodeReal", vcderr.ErrValue)
		}
		return decodeBinaryDigits(v.Digits)
	default:
		return 0, vcderr.ErrValue
	}
}

// decodeBinaryDigits scans the digit string one character at a time
// (rather than evaluating it as a numeric literal) so an x/z bit can be
// rejected explicitly instead of silently producing a garbage integer.
func decodeBinaryDigits(digits string) (uint64, error) {
	if digits == "" {
		return 0, vcderr.ErrValue
	}
	var n uint64
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		n <<= 1
		switch c {
		case '0':
		case '1':
			n |= 1
		default:
			return 0, vcderr.ErrValue
		}
	}
	return n, nil
}

// DecodeReal parses a RadixReal vector's digits as a float64, per the
// VCD rules for 'r' values (a plain decimal/exponential literal).
func DecodeReal(v Value) (float64, error) {
	if v.Kind != KindVector || v.Radix != RadixReal {
		return 0, fmt.Errorf("vcd: %w: not a real vector", vcderr.ErrValue)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.Digits), 64)
	if err != nil {
		return 0, fmt.Errorf("vcd: %w: %v", vcderr.ErrValue, err)
	}
	return f, nil
}
