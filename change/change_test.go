// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package change

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rob-gra/vcd/header"
	"github.com/rob-gra/vcd/symtab"
	"github.com/rob-gra/vcd/token"
	"github.com/rob-gra/vcd/vcdval"
	"github.com/rob-gra/vcd/watch"
)

// recordingWatcher keeps the activity/values maps of every notification
// it receives (the engine builds fresh maps for each commit), so tests
// can assert on the exact per-timestep content delivered.
type recordingWatcher struct {
	*watch.Base
	notifications []notification
}

type notification struct {
	activity watch.Values
	values   watch.Values
}

func newRecordingWatcher() *recordingWatcher {
	w := &recordingWatcher{}
	w.Base = watch.NewBase(w)
	w.SetHierarchy("top")
	w.AddSensitive("clk")
	return w
}

func (w *recordingWatcher) Notify(activity, values watch.Values, parser watch.ParserView) {
	w.notifications = append(w.notifications, notification{activity: activity, values: values})
}

func mustTable(t *testing.T, src string) *symtab.Table {
	t.Helper()
	sc := token.NewScanner(strings.NewReader(src))
	res, err := header.Parse(sc)
	require.NoError(t, err)
	return res.Table
}

const minimalHeader = `
$scope module top $end
$var reg 1 ! clk $end
$upscope $end
$enddefinitions $end
`

func TestRunDeliversPreStepValuesThenAdvances(t *testing.T) {
	tab := mustTable(t, minimalHeader)
	w := newRecordingWatcher()
	require.NoError(t, w.Bind(tab))

	watched := watch.Values{}
	clkID, err := tab.GetID("top.clk")
	require.NoError(t, err)
	watched[clkID] = vcdval.ScalarX

	e := NewEngine(tab, watched)

	body := "#0 0! #5 1! #10 0! #15\n"
	sc := token.NewScanner(strings.NewReader(body))
	require.NoError(t, e.Run(sc, []watch.Watcher{w}))

	require.Len(t, w.notifications, 3)

	assert.Equal(t, byte('0'), w.notifications[0].activity[clkID].Scalar)
	assert.Equal(t, byte('x'), w.notifications[0].values[clkID].Scalar)

	assert.Equal(t, byte('1'), w.notifications[1].activity[clkID].Scalar)
	assert.Equal(t, byte('0'), w.notifications[1].values[clkID].Scalar)

	assert.Equal(t, byte('0'), w.notifications[2].activity[clkID].Scalar)
	assert.Equal(t, byte('1'), w.notifications[2].values[clkID].Scalar)

	assert.Equal(t, int64(15), e.Now())
	assert.Equal(t, byte('0'), watched[clkID].Scalar)
}

func TestRunSkipsNotifyWhenNoSensitiveActivity(t *testing.T) {
	tab := mustTable(t, minimalHeader)
	w := newRecordingWatcher()
	require.NoError(t, w.Bind(tab))

	watched := watch.Values{}
	e := NewEngine(tab, watched)

	body := "#0 #5 #10\n"
	sc := token.NewScanner(strings.NewReader(body))
	require.NoError(t, e.Run(sc, []watch.Watcher{w}))

	assert.Empty(t, w.notifications)
}

func TestRunRejectsUnknownIdCode(t *testing.T) {
	tab := mustTable(t, minimalHeader)
	watched := watch.Values{}
	e := NewEngine(tab, watched)

	body := "#0 1& #5\n"
	sc := token.NewScanner(strings.NewReader(body))
	err := e.Run(sc, nil)
	assert.Error(t, err)
}

func TestRunDecodesVectorValues(t *testing.T) {
	src := `
$scope module top $end
$var wire 4 @ data $end
$upscope $end
$enddefinitions $end
`
	tab := mustTable(t, src)
	watched := watch.Values{}
	dataID, err := tab.GetID("top.data")
	require.NoError(t, err)
	watched[dataID] = vcdval.ScalarX

	e := NewEngine(tab, watched)
	body := "#0 b1010 @ #5\n"
	sc := token.NewScanner(strings.NewReader(body))
	require.NoError(t, e.Run(sc, nil))

	assert.Equal(t, "b1010", watched[dataID].String())
}
