// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package vcd_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vcd "github.com/rob-gra/vcd"
	"github.com/rob-gra/vcd/vcdval"
	"github.com/rob-gra/vcd/watch"
)

type recordingWatcher struct {
	*watch.Base
	seen []watch.Values
}

func newRecordingWatcher(hierarchy, signal string) *recordingWatcher {
	w := &recordingWatcher{}
	w.Base = watch.NewBase(w)
	w.SetHierarchy(hierarchy)
	w.AddSensitive(signal)
	return w
}

func (w *recordingWatcher) Notify(activity, values watch.Values, parser watch.ParserView) {
	w.seen = append(w.seen, activity)
}

func TestParseMinimalClockToggle(t *testing.T) {
	src := `
$scope module top $end
$var reg 1 ! clk $end
$upscope $end
$enddefinitions $end
#0
0!
#5
1!
#10
0!
#15
`
	p := vcd.New()
	w := newRecordingWatcher("top", "clk")
	p.RegisterWatcher(w)

	require.NoError(t, p.Parse(strings.NewReader(src)))

	require.Len(t, w.seen, 3)
	clkID, err := p.GetID("top.clk")
	require.NoError(t, err)
	assert.Equal(t, byte('0'), w.seen[0][clkID].Scalar)
	assert.Equal(t, byte('1'), w.seen[1][clkID].Scalar)
	assert.Equal(t, byte('0'), w.seen[2][clkID].Scalar)
	assert.Equal(t, int64(15), p.Now())
}

func TestParseAliasedIdCodeResolvesBothNames(t *testing.T) {
	src := `
$scope module top $end
$var reg 1 ! clk $end
$var reg 1 ! alias_clk $end
$upscope $end
$enddefinitions $end
#0
1!
#5
`
	p := vcd.New()
	require.NoError(t, p.Parse(strings.NewReader(src)))

	canonical, err := p.GetID("top.clk")
	require.NoError(t, err)
	alias, err := p.GetID("top.alias_clk")
	require.NoError(t, err)
	assert.Equal(t, canonical, alias)
	assert.Equal(t, "top.clk", p.GetXMR(canonical))
}

func TestParseVectorValueDecodes(t *testing.T) {
	src := `
$scope module top $end
$var wire 8 @ data $end
$upscope $end
$enddefinitions $end
#0
b00101010 @
#5
`
	p := vcd.New()
	w := newRecordingWatcher("top", "data")
	p.RegisterWatcher(w)

	require.NoError(t, p.Parse(strings.NewReader(src)))

	require.Len(t, w.seen, 1)
	dataID, err := p.GetID("top.data")
	require.NoError(t, err)
	n, err := vcdval.Decode(w.seen[0][dataID])
	require.NoError(t, err)
	assert.Equal(t, uint64(42), n)
}

func TestParseMultipleWritesInOneTimestepCollapseToLast(t *testing.T) {
	src := `
$scope module top $end
$var reg 1 ! clk $end
$upscope $end
$enddefinitions $end
#0
0!
1!
0!
#5
`
	p := vcd.New()
	w := newRecordingWatcher("top", "clk")
	p.RegisterWatcher(w)

	require.NoError(t, p.Parse(strings.NewReader(src)))

	require.Len(t, w.seen, 1)
	clkID, err := p.GetID("top.clk")
	require.NoError(t, err)
	assert.Equal(t, byte('0'), w.seen[0][clkID].Scalar)
}

func TestParseRejectsUnknownIdCodeInSimulationSection(t *testing.T) {
	src := `
$scope module top $end
$var reg 1 ! clk $end
$upscope $end
$enddefinitions $end
#0
1&
`
	p := vcd.New()
	err := p.Parse(strings.NewReader(src))
	assert.Error(t, err)
}

func TestDeregisterWatcherStopsFurtherNotifications(t *testing.T) {
	src := `
$scope module top $end
$var reg 1 ! clk $end
$upscope $end
$enddefinitions $end
#0
1!
#5
0!
#10
`
	p := vcd.New()
	w := newRecordingWatcher("top", "clk")
	p.RegisterWatcher(w)
	p.DeregisterWatcher(w)

	require.NoError(t, p.Parse(strings.NewReader(src)))
	assert.Empty(t, w.seen)
}
