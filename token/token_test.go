// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package token

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScannerNext(t *testing.T) {
	sc := NewScanner(strings.NewReader("  $date\n today $end\t#10\n1!\n"))

	want := []string{"$date", "today", "$end", "#10", "1!"}
	for _, w := range want {
		tok, err := sc.Next()
		require.NoError(t, err)
		require.Equal(t, w, tok)
	}

	_, err := sc.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestScannerPosCounts(t *testing.T) {
	sc := NewScanner(strings.NewReader("a b c"))
	require.Equal(t, 0, sc.Pos())
	_, err := sc.Next()
	require.NoError(t, err)
	require.Equal(t, 1, sc.Pos())
}

func TestScannerSizeSelectsDefaultWhenNonPositive(t *testing.T) {
	sc := NewScannerSize(strings.NewReader("x"), 0)
	tok, err := sc.Next()
	require.NoError(t, err)
	require.Equal(t, "x", tok)
}

func TestScannerEmptyInputIsImmediateEOF(t *testing.T) {
	sc := NewScanner(strings.NewReader(""))
	_, err := sc.Next()
	require.ErrorIs(t, err, io.EOF)
}
