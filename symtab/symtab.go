// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package symtab is the VCD symbol table: the idcode<->hierarchical-name
// mapping built while the header parser walks $scope/$var/$upscope, and
// the XMR resolution procedure used once at $enddefinitions.
package symtab

import (
	"fmt"
	"io"
	"strings"

	"github.com/rob-gra/vcd/vcderr"
)

// IdCode is the short opaque identifier a simulator assigns a signal.
type IdCode string

// BitRange preserves a $var reference's optional bit-range suffix
// (e.g. "data[7:0]" or "data[3]"). The core never interprets it
// arithmetically -- see design note (a).
type BitRange struct {
	High   int
	Low    int
	Single bool // true when the declaration named a single bit, e.g. "[3]"
}

func (b BitRange) String() string {
	if b.Single {
		return fmt.Sprintf("[%d]", b.High)
	}
	return fmt.Sprintf("[%d:%d]", b.High, b.Low)
}

// Variable is one $var declaration: a (var_type, width, reference_path)
// tuple. reference_path is the scope stack at declaration time plus the
// variable's own name.
type Variable struct {
	VarType   string
	Width     int
	Reference []string // scope names followed by the variable's own name
	BitRange  *BitRange
}

// XMR renders the dotted hierarchical reference for this declaration.
func (v Variable) XMR() string { return strings.Join(v.Reference, ".") }

// Table is the symbol table: idcode -> list of declarations (first is
// canonical), plus a read-through idcode->XMR materialisation cache.
type Table struct {
	entries map[IdCode][]Variable
	order   []IdCode // first-seen order, for ShowNets determinism
	xmrCache map[IdCode]string
}

// New builds an empty symbol table.
func New() *Table {
	return &Table{
		entries:  make(map[IdCode][]Variable),
		xmrCache: make(map[IdCode]string),
	}
}

// AddVar appends a declaration for idcode. Because one idcode may back
// multiple hierarchical names (aliasing), declarations accumulate; the
// first one added is canonical for GetXMR.
func (sf *Table) AddVar(id IdCode, v Variable) {
	if _, ok := sf.entries[id]; !ok {
		sf.order = append(sf.order, id)
	}
	sf.entries[id] = append(sf.entries[id], v)
}

// IDs returns every idcode known to the table, in first-declared order.
func (sf *Table) IDs() []IdCode {
	out := make([]IdCode, len(sf.order))
	copy(out, sf.order)
	return out
}

// Declarations returns the declaration list for id (nil if unknown).
func (sf *Table) Declarations(id IdCode) []Variable {
	return sf.entries[id]
}

// GetID searches the table for the idcode backing the given XMR: for
// each idcode, every declaration's reference path (aliases included) is
// compared positionally, by name only (scope type is ignored -- design
// note (b)), against the dotted components of xmr. Complexity is
// O(N*D); acceptable since this only runs at header completion.
func (sf *Table) GetID(xmr string) (IdCode, error) {
	search := strings.Split(xmr, ".")
	for _, id := range sf.order {
		for _, decl := range sf.entries[id] {
			ref := decl.Reference
			if len(ref) != len(search) {
				continue
			}
			match := true
			for depth, name := range search {
				if ref[depth] != name {
					match = false
					break
				}
			}
			if match {
				return id, nil
			}
		}
	}
	return "", &vcderr.UnknownXmr{Path: xmr}
}

// GetXMR joins the first-declared reference path's names with "." and
// memoises the result.
func (sf *Table) GetXMR(id IdCode) string {
	if xmr, ok := sf.xmrCache[id]; ok {
		return xmr
	}
	decls := sf.entries[id]
	if len(decls) == 0 {
		return ""
	}
	xmr := decls[0].XMR()
	sf.xmrCache[id] = xmr
	return xmr
}

// ShowNets writes every known idcode's canonical XMR, one per line, in
// first-declared order.
func (sf *Table) ShowNets(w io.Writer) {
	for _, id := range sf.order {
		fmt.Fprintln(w, sf.GetXMR(id))
	}
}
