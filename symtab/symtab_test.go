// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package symtab

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetXMRJoinsCanonicalDeclaration(t *testing.T) {
	tab := New()
	tab.AddVar("!", Variable{VarType: "reg", Width: 1, Reference: []string{"top", "clk"}})

	assert.Equal(t, "top.clk", tab.GetXMR("!"))
}

func TestGetIDIgnoresScopeTypeNameOnlyMatch(t *testing.T) {
	tab := New()
	tab.AddVar("!", Variable{VarType: "reg", Width: 1, Reference: []string{"top", "clk"}})

	id, err := tab.GetID("top.clk")
	require.NoError(t, err)
	assert.Equal(t, IdCode("!"), id)
}

func TestGetIDUnknownXmr(t *testing.T) {
	tab := New()
	tab.AddVar("!", Variable{VarType: "reg", Width: 1, Reference: []string{"top", "clk"}})

	_, err := tab.GetID("top.reset")
	assert.Error(t, err)
}

func TestAliasingKeepsFirstDeclarationCanonical(t *testing.T) {
	tab := New()
	tab.AddVar("!", Variable{VarType: "reg", Width: 1, Reference: []string{"top", "clk"}})
	tab.AddVar("!", Variable{VarType: "reg", Width: 1, Reference: []string{"top", "alias_clk"}})

	assert.Equal(t, "top.clk", tab.GetXMR("!"))

	id, err := tab.GetID("top.alias_clk")
	require.NoError(t, err)
	assert.Equal(t, IdCode("!"), id)

	require.Len(t, tab.Declarations("!"), 2)
}

func TestShowNetsFirstDeclaredOrder(t *testing.T) {
	tab := New()
	tab.AddVar("!", Variable{VarType: "reg", Width: 1, Reference: []string{"top", "clk"}})
	tab.AddVar("#", Variable{VarType: "reg", Width: 1, Reference: []string{"top", "reset"}})

	var buf bytes.Buffer
	tab.ShowNets(&buf)
	assert.Equal(t, "top.clk\ntop.reset\n", buf.String())
}

func TestBitRangeString(t *testing.T) {
	assert.Equal(t, "[7:0]", BitRange{High: 7, Low: 0}.String())
	assert.Equal(t, "[3]", BitRange{High: 3, Low: 3, Single: true}.String())
}
