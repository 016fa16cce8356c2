// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package ubus is the worked example watcher/tracker pair for a
// simple synchronous bus: a clock-gated watcher that only runs its
// trackers on a rising edge while the bus is out of reset, and a
// tracker that recognises the start/read-or-write/data transaction
// shape described in SPEC_FULL §4.5 and demonstrated by the original's
// ubus_test.py.
package ubus

import (
	"fmt"

	"github.com/rob-gra/vcd/vcdval"
	"github.com/rob-gra/vcd/watch"
)

// watched is every bus signal the example tracks, beyond the clock and
// reset used for gating.
var watched = []string{
	"sig_request",
	"sig_grant",
	"sig_addr",
	"sig_size",
	"sig_read",
	"sig_write",
	"sig_start",
	"sig_bip",
	"sig_data",
	"sig_data_out",
	"sig_wait",
	"sig_error",
}

// Watcher tracks ubus transactions under a single hierarchy path. It
// only runs its tracker population on a rising sig_clock edge while
// sig_reset is low -- the reset-gating and clock-edge-gating behaviour
// of the original's UbusWatcher.update.
type Watcher struct {
	*watch.Base
	inReset bool

	// Log accumulates every event emitted by every tracker this watcher
	// has ever created, including ones already retired -- Base.Trackers
	// only reports the live population, so completed transactions would
	// otherwise be lost the moment they retire.
	Log []string
}

// NewWatcher builds a Watcher observing the bus instance rooted at hierarchy.
func NewWatcher(hierarchy string) *Watcher {
	w := &Watcher{}
	w.Base = watch.NewBase(w)
	w.SetHierarchy(hierarchy)
	w.AddSensitive("sig_clock")
	w.AddSensitive("sig_reset")
	for _, name := range watched {
		w.AddWatching(name)
	}
	w.SetTracker(func(b *watch.Base) watch.Tracker {
		return &Tracker{
			TrackerBase: watch.NewTrackerBase(b),
			onEvent:     func(line string) { w.Log = append(w.Log, line) },
		}
	})
	return w
}

// Notify overrides Base.Notify to gate ManageTrackers on the reset and
// clock lines: while the bus is in reset no transaction can be in
// progress, and trackers only ever advance on a rising clock edge.
func (w *Watcher) Notify(activity, values watch.Values, parser watch.ParserView) {
	resetID, hasReset := w.GetID("sig_reset")
	if hasReset {
		if v, ok := activity[resetID]; ok {
			w.inReset = isHigh(v)
		}
	}
	if w.inReset {
		return
	}

	clockID, hasClock := w.GetID("sig_clock")
	if !hasClock {
		return
	}
	v, ok := activity[clockID]
	if !ok || !isHigh(v) {
		return
	}
	w.ManageTrackers(activity, values, parser)
}

// StartTracker instantiates a new tracker exactly when sig_start is
// asserted -- the tracker's own Update call this same timestep carries
// it from idle into the start state.
func (w *Watcher) StartTracker(activity, values watch.Values, parser watch.ParserView) bool {
	v, ok := w.Get("sig_start")
	return ok && isHigh(v)
}

func isHigh(v vcdval.Value) bool {
	return v.Kind == vcdval.KindScalar && v.Scalar == '1'
}

func isLow(v vcdval.Value) bool {
	return v.Kind == vcdval.KindScalar && v.Scalar == '0'
}

// State is one stage of a transaction's lifecycle.
type State int

const (
	StateIdle State = iota
	StateStart
	StateRead
	StateWrite
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateStart:
		return "START"
	case StateRead:
		return "READ"
	case StateWrite:
		return "WRITE"
	default:
		return "UNKNOWN"
	}
}

// Tracker records one ubus transaction, from its asserted start through
// the resolved read or write and its completing data phase. Events
// holds the emitted log lines in order, standing in for the original's
// print-to-stdout tracing.
type Tracker struct {
	watch.TrackerBase
	state   State
	Events  []string
	onEvent func(string)
}

// State returns the tracker's current lifecycle stage.
func (t *Tracker) State() State { return t.state }

// Update advances the transaction state machine by one clock edge, per
// the table in SPEC_FULL §4.5.
func (t *Tracker) Update(activity, values watch.Values, parser watch.ParserView) {
	switch t.state {
	case StateIdle:
		if v, ok := t.Get("sig_start"); ok && isHigh(v) {
			t.state = StateStart
			t.emit(parser, "START")
		}
	case StateStart:
		switch {
		case isAsserted(t, "sig_write"):
			t.state = StateWrite
			t.emit(parser, "WRITE addr=%s", t.hex("sig_addr"))
		case isAsserted(t, "sig_read"):
			t.state = StateRead
			t.emit(parser, "READ addr=%s", t.hex("sig_addr"))
		default:
			t.state = StateIdle
			t.SetFinished()
		}
	case StateRead, StateWrite:
		if v, ok := t.Get("sig_wait"); ok && isLow(v) {
			t.emit(parser, "DATA=%s", t.hex("sig_data"))
			t.SetFinished()
		}
	}
}

func isAsserted(t *Tracker, name string) bool {
	v, ok := t.Get(name)
	return ok && isHigh(v)
}

func (t *Tracker) hex(name string) string {
	v, ok := t.Get(name)
	if !ok {
		return "?"
	}
	n, err := vcdval.Decode(v)
	if err != nil {
		return v.String()
	}
	return fmt.Sprintf("0x%x", n)
}

func (t *Tracker) emit(parser watch.ParserView, format string, args ...interface{}) {
	var at int64
	if parser != nil {
		// parser.Now() during a notification is the simulation time the
		// notification's content describes -- the engine only advances
		// Now/Then once every watcher has been notified.
		at = parser.Now()
	}
	line := fmt.Sprintf("%s@%d", fmt.Sprintf(format, args...), at)
	t.Events = append(t.Events, line)
	if t.onEvent != nil {
		t.onEvent(line)
	}
}
