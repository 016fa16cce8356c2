// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package vcd parses IEEE 1800-2009 §21.7 Value Change Dump files and
// drives a user-supplied watcher/tracker observation pipeline over the
// decoded value-change stream.
package vcd

import (
	"io"

	"github.com/rob-gra/vcd/change"
	"github.com/rob-gra/vcd/header"
	"github.com/rob-gra/vcd/symtab"
	"github.com/rob-gra/vcd/token"
	"github.com/rob-gra/vcd/vcdcfg"
	"github.com/rob-gra/vcd/vcdval"
	"github.com/rob-gra/vcd/vlog"
	"github.com/rob-gra/vcd/watch"
)

// Parser owns the symbol table, the change buffer, the registered
// watchers and the watched-values store for the duration of one Parse
// call. It is single-threaded and synchronous (SPEC_FULL §5): an
// instance must not be shared across goroutines without external
// synchronisation.
type Parser struct {
	cfg vcdcfg.Config
	log vlog.Log

	table        *symtab.Table
	declarations map[string]string
	watchers     []watch.Watcher
	watched      watch.Values
	engine       *change.Engine
}

// New creates a parser with default configuration.
func New() *Parser {
	p, err := NewWithConfig(vcdcfg.Default())
	if err != nil {
		// Default() is the zero Config, always valid.
		panic(err)
	}
	return p
}

// NewWithConfig creates a parser with an explicit configuration. It
// returns an error if cfg is not within the ranges vcdcfg.Config
// documents.
func NewWithConfig(cfg vcdcfg.Config) (*Parser, error) {
	if err := cfg.Valid(); err != nil {
		return nil, err
	}
	p := &Parser{
		cfg:     cfg,
		log:     vlog.New("[vcd] "),
		watched: make(watch.Values),
	}
	p.log.SetEnabled(cfg.LogEnabled)
	return p, nil
}

// RegisterWatcher adds w to the set notified at each timestep commit,
// in registration order (invariant P8).
func (p *Parser) RegisterWatcher(w watch.Watcher) {
	p.watchers = append(p.watchers, w)
}

// DeregisterWatcher removes w. A no-op if w was never registered.
func (p *Parser) DeregisterWatcher(w watch.Watcher) {
	for i, existing := range p.watchers {
		if existing == w {
			p.watchers = append(p.watchers[:i], p.watchers[i+1:]...)
			return
		}
	}
}

// GetID resolves a hierarchical reference to its IdCode. Valid only
// after a header has been parsed (i.e. from inside or after Parse).
func (p *Parser) GetID(xmr string) (symtab.IdCode, error) {
	return p.table.GetID(xmr)
}

// GetXMR returns the canonical hierarchical reference for id. Valid
// only after a header has been parsed.
func (p *Parser) GetXMR(id symtab.IdCode) string {
	return p.table.GetXMR(id)
}

// ShowNets writes every declared signal's canonical XMR to w, one per line.
func (p *Parser) ShowNets(w io.Writer) {
	p.table.ShowNets(w)
}

// Declaration returns the concatenated payload of a declaration-bearing
// header keyword ("date", "version", "timescale"), if present.
func (p *Parser) Declaration(keyword string) (string, bool) {
	v, ok := p.declarations[keyword]
	return v, ok
}

// Now returns the simulation time of the most recent time marker seen.
func (p *Parser) Now() int64 {
	if p.engine == nil {
		return 0
	}
	return p.engine.Now()
}

// Then returns the simulation time prior to the most recent advance --
// the time the values snapshot handed to the current notification
// actually describes.
func (p *Parser) Then() int64 {
	if p.engine == nil {
		return 0
	}
	return p.engine.Then()
}

// Parse reads r to completion: first the declaration section (building
// the symbol table and resolving every registered watcher's
// sensitivity/watch sets), then the simulation section, committing a
// timestep and fanning out notifications on every time marker.
//
// Parse either runs to EOF and returns nil, or returns one of the error
// kinds in package vcderr; any notifications already delivered remain
// committed (SPEC_FULL §7). The caller owns r and must close it on all
// exit paths -- Parse neither opens nor closes it.
func (p *Parser) Parse(r io.Reader) error {
	sc := token.NewScannerSize(r, p.cfg.TokenBufferBytes)

	hdr, err := header.Parse(sc)
	if err != nil {
		p.log.Error("header parse failed: %v", err)
		return err
	}
	p.table = hdr.Table
	p.declarations = hdr.Declarations

	for _, w := range p.watchers {
		if err := w.Bind(p.table); err != nil {
			p.log.Error("watcher bind failed: %v", err)
			return err
		}
		for _, id := range w.WatchingIDs() {
			if _, ok := p.watched[id]; !ok {
				p.watched[id] = vcdval.ScalarX
			}
		}
	}

	p.engine = change.NewEngine(p.table, p.watched)
	p.engine.Log = p.log
	p.engine.SetContext(p)
	if err := p.engine.Run(sc, p.watchers); err != nil {
		p.log.Error("simulation section failed: %v", err)
		return err
	}
	return nil
}
