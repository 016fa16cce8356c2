// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package header implements the VCD declaration-section parser: the
// keyword-dispatch loop active until $enddefinitions, building the
// symbol table as it walks $scope/$var/$upscope.
package header

import (
	"io"
	"strconv"
	"strings"

	"github.com/rob-gra/vcd/symtab"
	"github.com/rob-gra/vcd/token"
	"github.com/rob-gra/vcd/vcderr"
)

// Result is everything the header phase produced: the symbol table and
// the concatenated payload of every declaration-bearing keyword seen
// ($comment is dropped, the rest are kept under their bare name).
type Result struct {
	Table        *symtab.Table
	Declarations map[string]string
}

// Parse runs the keyword-dispatch loop over sc until $enddefinitions'
// trailing $end has been consumed, and returns the built symbol table.
// Resolving watcher sensitivity/watch sets and seeding the
// watched-values store happens one layer up, once this returns --
// those are parser-level concerns, not header-grammar concerns.
func Parse(sc *token.Scanner) (*Result, error) {
	p := &parser{
		sc:     sc,
		table:  symtab.New(),
		result: &Result{Declarations: make(map[string]string)},
	}
	p.result.Table = p.table
	for {
		tok, err := sc.Next()
		if err != nil {
			return nil, wrapEOF(err)
		}
		if !strings.HasPrefix(tok, "$") {
			return nil, &vcderr.ParseError{Token: tok, Position: sc.Pos()}
		}
		done, err := p.dispatch(tok)
		if err != nil {
			return nil, err
		}
		if done {
			return p.result, nil
		}
	}
}

type parser struct {
	sc         *token.Scanner
	table      *symtab.Table
	result     *Result
	scopeStack []string
}

func (p *parser) dispatch(keyword string) (done bool, err error) {
	switch keyword {
	case "$comment":
		err = p.dropDeclaration()
	case "$date", "$version", "$timescale":
		err = p.saveDeclaration(keyword)
	case "$scope":
		err = p.scope()
	case "$upscope":
		err = p.upscope()
	case "$var":
		err = p.variable()
	case "$enddefinitions":
		err = p.dropDeclaration()
		done = true
	case "$end":
		// A bare $end only belongs inside a block consumed by one of the
		// handlers above; reaching the dispatcher directly means it is
		// stray, since header parsing never runs after $enddefinitions.
		err = &vcderr.ParseError{Keyword: keyword, Position: p.sc.Pos()}
	default:
		err = &vcderr.ParseError{Keyword: keyword, Position: p.sc.Pos()}
	}
	return done, err
}

// readUntilEnd collects tokens up to (but not including) the next
// literal "$end", consuming the "$end" itself.
func (p *parser) readUntilEnd() ([]string, error) {
	var out []string
	for {
		tok, err := p.sc.Next()
		if err != nil {
			return nil, wrapEOF(err)
		}
		if tok == "$end" {
			return out, nil
		}
		out = append(out, tok)
	}
}

func (p *parser) dropDeclaration() error {
	_, err := p.readUntilEnd()
	return err
}

func (p *parser) saveDeclaration(keyword string) error {
	toks, err := p.readUntilEnd()
	if err != nil {
		return err
	}
	p.result.Declarations[strings.TrimPrefix(keyword, "$")] = strings.Join(toks, " ")
	return nil
}

func (p *parser) scope() error {
	toks, err := p.readUntilEnd()
	if err != nil {
		return err
	}
	if len(toks) == 0 {
		return &vcderr.ParseError{Keyword: "$scope", Position: p.sc.Pos()}
	}
	p.scopeStack = append(p.scopeStack, toks[len(toks)-1])
	return nil
}

func (p *parser) upscope() error {
	if len(p.scopeStack) == 0 {
		return &vcderr.ParseError{Keyword: "$upscope", Position: p.sc.Pos()}
	}
	p.scopeStack = p.scopeStack[:len(p.scopeStack)-1]
	tok, err := p.sc.Next()
	if err != nil {
		return wrapEOF(err)
	}
	if tok != "$end" {
		return &vcderr.ParseError{Token: tok, Position: p.sc.Pos()}
	}
	return nil
}

func (p *parser) variable() error {
	toks, err := p.readUntilEnd()
	if err != nil {
		return err
	}
	if len(toks) < 4 {
		return &vcderr.ParseError{Keyword: "$var", Position: p.sc.Pos()}
	}
	varType, widthTok, idTok, refTok := toks[0], toks[1], toks[2], toks[3]
	width, err := strconv.Atoi(widthTok)
	if err != nil {
		return &vcderr.ParseError{Keyword: "$var", Position: p.sc.Pos()}
	}
	name, bitRange := splitBitRange(refTok)
	ref := make([]string, 0, len(p.scopeStack)+1)
	ref = append(ref, p.scopeStack...)
	ref = append(ref, name)

	p.table.AddVar(symtab.IdCode(idTok), symtab.Variable{
		VarType:   varType,
		Width:     width,
		Reference: ref,
		BitRange:  bitRange,
	})
	return nil
}

// splitBitRange pulls a trailing "[h:l]" or "[n]" suffix off a $var
// reference token and preserves it, per design note (a), instead of
// dropping it.
func splitBitRange(ref string) (string, *symtab.BitRange) {
	i := strings.IndexByte(ref, '[')
	if i < 0 || !strings.HasSuffix(ref, "]") {
		return ref, nil
	}
	inner := ref[i+1 : len(ref)-1]
	name := ref[:i]
	if colon := strings.IndexByte(inner, ':'); colon >= 0 {
		hi, errH := strconv.Atoi(inner[:colon])
		lo, errL := strconv.Atoi(inner[colon+1:])
		if errH != nil || errL != nil {
			return ref, nil
		}
		return name, &symtab.BitRange{High: hi, Low: lo}
	}
	n, err := strconv.Atoi(inner)
	if err != nil {
		return ref, nil
	}
	return name, &symtab.BitRange{High: n, Low: n, Single: true}
}

func wrapEOF(err error) error {
	if err == io.EOF {
		return &vcderr.ParseError{Token: "<eof>"}
	}
	return err
}
