// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package watch is the watcher/tracker runtime: sensitivity and watch
// sets, the tracker population with its create/update/retire lifecycle,
// and the dotted-name value-access capability handed to hooks.
package watch

import (
	"github.com/rob-gra/vcd/symtab"
	"github.com/rob-gra/vcd/vcdval"
)

// Values is a snapshot of signal values keyed by resolved IdCode -- the
// shape of both the activity map and the watch-set view handed to
// Notify.
type Values map[symtab.IdCode]vcdval.Value

// ParserView is the subset of Parser's API made available inside
// watcher/tracker hooks, mirroring the original's notify(changes, vcd)
// convention of handing the whole parser down to user code.
type ParserView interface {
	// Now returns the simulation time of the most recent time marker.
	Now() int64
	// Then returns the simulation time prior to the most recent advance
	// -- the time the values snapshot handed to this notification
	// actually describes (SPEC_FULL P4).
	Then() int64
	// GetXMR returns the canonical hierarchical reference for id.
	GetXMR(id symtab.IdCode) string
}

// Watcher is the parser-facing contract: the change engine calls Notify
// whenever sensitivity intersects the current timestep's changes, and
// the parser calls Bind once, after $enddefinitions, to resolve declared
// signal names.
//
// Base implements every method below; embedding *Base and overriding
// Notify (and, from within an overridden Notify, StartTracker) is how a
// user type customises behaviour -- the re-architecture of the
// original's subclass-and-override model described in design note
// "dynamic attribute access" and the watcher override points in SPEC_FULL §6.
type Watcher interface {
	Notify(activity, values Values, parser ParserView)
	Bind(table *symtab.Table) error
	SensitiveIDs() []symtab.IdCode
	WatchingIDs() []symtab.IdCode
}

// StartTrackerer is the optional override point a Watcher implementation
// may satisfy to gate tracker creation. Base's ManageTrackers checks for
// it via the self reference captured at construction, since Go has no
// virtual dispatch for methods called from an embedded type.
type StartTrackerer interface {
	StartTracker(activity, values Values, parser ParserView) bool
}

// TrackerFactory builds a new Tracker bound to its owning watcher. Set
// via Base.SetTracker.
type TrackerFactory func(w *Base) Tracker

// Tracker is a short-lived transaction-recording state machine created
// by a watcher's start phase and retired once IsFinished reports true.
// Start is the post-construct hook: ManageTrackers calls it exactly
// once, during the update pass of the notification that created the
// tracker, immediately before that tracker's first Update (trackers
// ahead of it in the live list have already been updated by then),
// mirroring the create->start->update ordering of SPEC_FULL §4.5.
type Tracker interface {
	Start(activity, values Values, parser ParserView)
	Update(activity, values Values, parser ParserView)
	IsFinished() bool
}

// recorder is satisfied automatically by any Tracker that embeds
// TrackerBase: ManageTrackers uses it to store the bookkeeping
// (activity, values, trigger count) the spec requires before invoking
// the tracker's own Update.
type recorder interface {
	record(activity, values Values)
}

// Base is the embeddable implementation of Watcher. It holds declared
// sensitivity/watch XMRs, their resolved IdCodes, the tracker factory
// and the live tracker population -- all as per-instance fields (never
// package- or type-level state, per design note on class-mutable
// defaults).
type Base struct {
	self StartTrackerer // set by NewBase; nil unless the embedding type implements StartTracker

	hierarchy string

	sensitiveXMRs []string
	watchingXMRs  []string
	idByXMR       map[string]symtab.IdCode

	sensitiveIDs []symtab.IdCode
	watchingIDs  []symtab.IdCode

	trackerFactory TrackerFactory
	trackers       []Tracker

	activity Values
	values   Values
}

// NewBase constructs a Base bound to self, the embedding watcher value.
// self is used solely so that ManageTrackers can honour a StartTracker
// override defined on the embedding type; pass the same pointer you
// embed Base into, e.g.:
//
//	w := &MyWatcher{}
//	w.Base = watch.NewBase(w)
func NewBase(self Watcher) *Base {
	b := &Base{idByXMR: make(map[string]symtab.IdCode)}
	if st, ok := self.(StartTrackerer); ok {
		b.self = st
	}
	return b
}

// SetHierarchy sets the default prefix path signals are resolved under
// when no explicit hierarchy is supplied to AddSensitive/AddWatching/GetID.
func (b *Base) SetHierarchy(prefix string) { b.hierarchy = prefix }

// Hierarchy returns the default prefix path.
func (b *Base) Hierarchy() string { return b.hierarchy }

func (b *Base) resolveHierarchy(hierarchy []string) string {
	if len(hierarchy) > 0 && hierarchy[0] != "" {
		return hierarchy[0]
	}
	return b.hierarchy
}

// AddSensitive registers signal under the watcher's sensitivity set.
// Registering a sensitive signal implicitly adds it to the watch set
// too (invariant: sensitivity subseteq watch).
func (b *Base) AddSensitive(signal string, hierarchy ...string) {
	xmr := b.resolveHierarchy(hierarchy) + "." + signal
	b.sensitiveXMRs = append(b.sensitiveXMRs, xmr)
	b.watchingXMRs = append(b.watchingXMRs, xmr)
}

// AddWatching registers signal in the watch set only.
func (b *Base) AddWatching(signal string, hierarchy ...string) {
	xmr := b.resolveHierarchy(hierarchy) + "." + signal
	b.watchingXMRs = append(b.watchingXMRs, xmr)
}

// SetTracker sets the factory used to build a new tracker each time
// StartTracker reports true.
func (b *Base) SetTracker(factory TrackerFactory) { b.trackerFactory = factory }

// Bind resolves every declared sensitivity/watch XMR against table.
// Called once, at $enddefinitions; fails with *vcderr.UnknownXmr if any
// declared signal has no matching declaration (invariant I2).
func (b *Base) Bind(table *symtab.Table) error {
	ids := make([]symtab.IdCode, 0, len(b.sensitiveXMRs))
	for _, xmr := range b.sensitiveXMRs {
		id, err := b.resolve(table, xmr)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	b.sensitiveIDs = ids

	watching := make([]symtab.IdCode, 0, len(b.watchingXMRs))
	for _, xmr := range b.watchingXMRs {
		id, err := b.resolve(table, xmr)
		if err != nil {
			return err
		}
		watching = append(watching, id)
	}
	b.watchingIDs = watching
	return nil
}

func (b *Base) resolve(table *symtab.Table, xmr string) (symtab.IdCode, error) {
	if id, ok := b.idByXMR[xmr]; ok {
		return id, nil
	}
	id, err := table.GetID(xmr)
	if err != nil {
		return "", err
	}
	b.idByXMR[xmr] = id
	return id, nil
}

// SensitiveIDs returns the resolved sensitivity set, in registration order.
func (b *Base) SensitiveIDs() []symtab.IdCode { return b.sensitiveIDs }

// WatchingIDs returns the resolved watch set, in registration order.
func (b *Base) WatchingIDs() []symtab.IdCode { return b.watchingIDs }

// GetID looks up the resolved IdCode for a bare signal name, optionally
// under an explicit hierarchy override.
func (b *Base) GetID(signal string, hierarchy ...string) (symtab.IdCode, bool) {
	xmr := b.resolveHierarchy(hierarchy) + "." + signal
	id, ok := b.idByXMR[xmr]
	return id, ok
}

// Get resolves a bare signal name under the default hierarchy and
// returns its current value from the most recent watch-set snapshot.
// This is the explicit value-accessor capability substituting for the
// original's dynamic attribute interception (design note).
func (b *Base) Get(name string) (vcdval.Value, bool) {
	id, ok := b.GetID(name)
	if !ok {
		return vcdval.Value{}, false
	}
	v, ok := b.values[id]
	return v, ok
}

// Activity returns the most recent activity map handed to Notify.
func (b *Base) Activity() Values { return b.activity }

// Values returns the most recent watch-set snapshot handed to Notify.
func (b *Base) Values() Values { return b.values }

// Notify is the default update hook: it simply calls ManageTrackers.
// Override Notify on the embedding type to gate on clock edges, resets,
// etc. before (or instead of) calling ManageTrackers.
func (b *Base) Notify(activity, values Values, parser ParserView) {
	b.ManageTrackers(activity, values, parser)
}

// ManageTrackers runs the three-phase tracker lifecycle described in
// SPEC_FULL §4.5: start, update, retire. Retirement only ever happens
// here, in its own pass after every live tracker has been updated, so a
// tracker's Update may safely set itself finished mid-iteration without
// corrupting the live list.
func (b *Base) ManageTrackers(activity, values Values, parser ParserView) {
	b.activity, b.values = activity, values

	start := false
	if b.self != nil {
		start = b.self.StartTracker(activity, values, parser)
	}
	var justStarted Tracker
	if start && b.trackerFactory != nil {
		justStarted = b.trackerFactory(b)
		b.trackers = append(b.trackers, justStarted)
	}

	for _, t := range b.trackers {
		if r, ok := t.(recorder); ok {
			r.record(activity, values)
		}
		if t == justStarted {
			t.Start(activity, values, parser)
		}
		t.Update(activity, values, parser)
	}

	live := b.trackers[:0]
	for _, t := range b.trackers {
		if !t.IsFinished() {
			live = append(live, t)
		}
	}
	b.trackers = live
}

// Trackers returns the current live tracker population, in insertion order.
func (b *Base) Trackers() []Tracker {
	out := make([]Tracker, len(b.trackers))
	copy(out, b.trackers)
	return out
}

// TrackerBase is the embeddable implementation shared by concrete
// Tracker types: it records activity/values/trigger-count bookkeeping
// and the monotonic finished flag (invariant I5), and provides the
// same dotted-name value accessor as Base.Get.
type TrackerBase struct {
	Watcher      *Base
	ActivityView Values
	ValuesView   Values
	TriggerCount int
	finished     bool
}

// NewTrackerBase binds a TrackerBase to its owning watcher.
func NewTrackerBase(w *Base) TrackerBase { return TrackerBase{Watcher: w} }

// record stores the bookkeeping ManageTrackers guarantees is in place
// before a tracker's own Update runs. It is unexported and satisfied via
// embedding (any Tracker embedding TrackerBase promotes it), which is
// how ManageTrackers finds it without a public API a user type could
// forget to call.
func (t *TrackerBase) record(activity, values Values) {
	t.ActivityView = activity
	t.ValuesView = values
	t.TriggerCount++
}

// Start is the default post-construct hook: a no-op. Concrete tracker
// types override it on the embedding type when they need one-time setup
// before their first Update.
func (t *TrackerBase) Start(activity, values Values, parser ParserView) {}

// IsFinished reports whether the tracker has completed its transaction.
func (t *TrackerBase) IsFinished() bool { return t.finished }

// SetFinished marks the tracker complete. Idempotent: once set, it stays
// set (invariant I5).
func (t *TrackerBase) SetFinished() { t.finished = true }

// Get resolves a bare signal name under the owning watcher's default
// hierarchy, returning the tracker's own watch-set snapshot (not the
// watcher's -- they coincide within a timestep, but a tracker should
// never read ahead of the notification it was given).
func (t *TrackerBase) Get(name string) (vcdval.Value, bool) {
	if t.Watcher == nil {
		return vcdval.Value{}, false
	}
	id, ok := t.Watcher.GetID(name)
	if !ok {
		return vcdval.Value{}, false
	}
	v, ok := t.ValuesView[id]
	return v, ok
}
