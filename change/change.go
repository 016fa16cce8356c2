// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package change implements the simulation-section decode loop and the
// per-timestep commit protocol that fans buffered deltas out to
// registered watchers.
package change

import (
	"fmt"
	"io"
	"strconv"

	"github.com/rob-gra/vcd/symtab"
	"github.com/rob-gra/vcd/token"
	"github.com/rob-gra/vcd/vcderr"
	"github.com/rob-gra/vcd/vcdval"
	"github.com/rob-gra/vcd/vlog"
	"github.com/rob-gra/vcd/watch"
)

// Engine consumes the simulation section: it buffers value changes by
// IdCode and, on each time marker, runs the timestep-commit protocol
// (SPEC_FULL §4.4) against the supplied watchers.
type Engine struct {
	table   *symtab.Table
	watched watch.Values // the persistent watched-values store, shared with the owning parser
	buffer  watch.Values
	now     int64
	then    int64
	ctx     watch.ParserView

	Log vlog.Log
}

// NewEngine builds an Engine over table, sharing (not copying) the
// watched-values store so Parser observes every timestep's updates.
func NewEngine(table *symtab.Table, watched watch.Values) *Engine {
	return &Engine{
		table:   table,
		watched: watched,
		buffer:  make(watch.Values),
	}
}

// SetContext sets the ParserView handed to every watcher's Notify, so
// hooks can read Now/Then/GetXMR the way the original's notify(changes,
// vcd) handed down the whole parser.
func (e *Engine) SetContext(ctx watch.ParserView) { e.ctx = ctx }

// Now returns the simulation time of the most recent time marker.
func (e *Engine) Now() int64 { return e.now }

// Then returns the simulation time prior to the most recent advance.
func (e *Engine) Then() int64 { return e.then }

// Run drains sc to EOF, dispatching each token by its leading
// character and committing a timestep on every "#<time>" marker. It
// returns nil at a clean EOF; any other error is fatal per SPEC_FULL §4.6.
func (e *Engine) Run(sc *token.Scanner, watchers []watch.Watcher) error {
	for {
		tok, err := sc.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if err := e.dispatch(tok, sc, watchers); err != nil {
			return err
		}
	}
}

func (e *Engine) dispatch(tok string, sc *token.Scanner, watchers []watch.Watcher) error {
	c := tok[0]
	switch {
	case c == '$':
		// $dumpall/$dumpoff/$dumpon/$dumpvars/$end delimit value blocks
		// without altering semantics at this level -- transparent (design
		// note c).
		return nil
	case c == '#':
		t, err := strconv.ParseInt(tok[1:], 10, 64)
		if err != nil {
			return &vcderr.ParseError{Token: tok}
		}
		e.commit(t, watchers)
		return nil
	case isScalarChar(c):
		id := symtab.IdCode(tok[1:])
		if err := e.checkKnown(id); err != nil {
			return err
		}
		e.buffer[id] = vcdval.NewScalar(c)
		return nil
	case c == 'b' || c == 'B' || c == 'r' || c == 'R':
		idTok, err := sc.Next()
		if err != nil {
			if err == io.EOF {
				return &vcderr.ParseError{Token: tok}
			}
			return err
		}
		id := symtab.IdCode(idTok)
		if err := e.checkKnown(id); err != nil {
			return err
		}
		radix := byte('b')
		if c == 'r' || c == 'R' {
			radix = 'r'
		}
		e.buffer[id] = vcdval.NewVector(radix, tok[1:])
		return nil
	default:
		return fmt.Errorf("%w: %q", vcderr.ErrUnrecognisedToken, tok)
	}
}

func (e *Engine) checkKnown(id symtab.IdCode) error {
	if e.table.Declarations(id) == nil {
		return &vcderr.UnknownIdCode{ID: string(id)}
	}
	return nil
}

func isScalarChar(c byte) bool {
	switch c {
	case '0', '1', 'x', 'X', 'z', 'Z':
		return true
	default:
		return false
	}
}

// commit runs the timestep-commit protocol (SPEC_FULL §4.4):
//  1. notify every watcher whose sensitivity intersects the buffered
//     changes, handing it the pre-step watched-values view;
//  2. only once every watcher has been notified, fold the buffered
//     changes into the watched-values store;
//  3. clear the buffer and advance the clock.
func (e *Engine) commit(newTime int64, watchers []watch.Watcher) {
	for _, w := range watchers {
		activity := make(watch.Values)
		for _, id := range w.SensitiveIDs() {
			if v, ok := e.buffer[id]; ok {
				activity[id] = v
			}
		}
		if len(activity) == 0 {
			continue
		}

		values := make(watch.Values, len(w.WatchingIDs()))
		for _, id := range w.WatchingIDs() {
			values[id] = e.watched[id]
		}
		w.Notify(activity, values, e.ctx)
	}

	for id := range e.watched {
		if v, ok := e.buffer[id]; ok {
			e.watched[id] = v
		}
	}
	e.buffer = make(watch.Values)
	e.then = e.now
	e.now = newTime
}
