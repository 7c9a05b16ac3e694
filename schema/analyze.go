// seehuhn.de/go/otf - tools for reading, generating and subsetting OpenType fonts
// Copyright (C) 2024  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package schema

import "strings"

// classifyFieldUse scans every field's expression attributes for `$name`
// sibling references and records, on the referenced field, whether it is
// needed while reading (Count/Available govern the shape of a read in
// progress, so the referenced value must exist as a local variable),
// while writing (Compile/OffsetGetter/OffsetDataMethod/OffsetAdjustment/
// TraverseWith/ToOwned/Validate run against a fully built value, so the
// referenced value is read back off the receiver as self.Name), or both.
//
// The result is stored in each Field's Use; codegen does not consult it.
func classifyFieldUse(items []Item) {
	for i := range items {
		it := &items[i]
		byName := make(map[string]*Field, len(it.Fields))
		for j := range it.Fields {
			byName[it.Fields[j].Name] = &it.Fields[j]
		}

		for j := range it.Fields {
			f := &it.Fields[j]
			for _, name := range references(f.Count) {
				mark(byName, name, UseParse)
			}
			for _, name := range references(f.Available) {
				mark(byName, name, UseParse)
			}
			for _, name := range references(f.Compile) {
				mark(byName, name, UseRuntime)
			}
			for _, name := range references(f.OffsetGetter) {
				mark(byName, name, UseRuntime)
			}
			for _, name := range references(f.OffsetDataMethod) {
				mark(byName, name, UseRuntime)
			}
			for _, name := range references(f.OffsetAdjustment) {
				mark(byName, name, UseRuntime)
			}
			for _, name := range references(f.TraverseWith) {
				mark(byName, name, UseRuntime)
			}
			for _, name := range references(f.ToOwned) {
				mark(byName, name, UseRuntime)
			}
			for _, name := range references(f.Validate) {
				mark(byName, name, UseRuntime)
			}
			for _, arg := range f.ReadArgs {
				for _, name := range references(arg) {
					mark(byName, name, UseParse)
				}
			}
		}
	}
}

// checkVariants rejects a format_group variant whose target item declares
// no field carrying the `format` attribute: without one, the generated
// reader would have no way to tell this variant apart from its siblings.
func (p *parser) checkVariants(items []Item) {
	byName := make(map[string]*Item, len(items))
	for i := range items {
		byName[items[i].Name] = &items[i]
	}
	for i := range items {
		it := &items[i]
		if it.Kind != KindFormatGroup {
			continue
		}
		for _, v := range it.Variants {
			target, ok := byName[v.ItemName]
			if !ok {
				p.fatal(ErrSyntax, v.Span, it.Name, "", "variant refers to undeclared item %q", v.ItemName)
			}
			hasFormat := false
			for _, f := range target.Fields {
				if f.Format != nil {
					hasFormat = true
					break
				}
			}
			if !hasFormat {
				p.fatal(ErrMissingAttribute, v.Span, it.Name, "", "variant item %q has no field with a format attribute", v.ItemName)
			}
		}
	}
}

// checkForwardReferences rejects a count/available/read_args expression
// that names a field declared later in the same item: such a field's
// value does not exist yet as a local variable when the reader needs it.
func (p *parser) checkForwardReferences(it *Item) {
	pos := make(map[string]int, len(it.Fields))
	for i, f := range it.Fields {
		pos[f.Name] = i
	}
	for i := range it.Fields {
		f := &it.Fields[i]
		check := func(expr string) {
			for _, name := range references(expr) {
				j, ok := pos[name]
				if ok && j > i {
					p.fatal(ErrForwardReference, f.Span, it.Name, f.Name,
						"references field %q, declared later in %s", name, it.Name)
				}
			}
		}
		check(f.Count)
		check(f.Available)
		for _, arg := range f.ReadArgs {
			check(arg)
		}
	}
}

func mark(byName map[string]*Field, name string, use FieldUse) {
	f, ok := byName[name]
	if !ok {
		return
	}
	if f.Use == UseNeither {
		f.Use = use
	} else if f.Use != use {
		f.Use = UseBoth
	}
}

// references extracts the sibling field names a `$name` expression names.
func references(expr string) []string {
	if expr == "" || !strings.Contains(expr, "$") {
		return nil
	}
	var names []string
	parts := strings.Split(expr, "$")
	for _, part := range parts[1:] {
		end := 0
		for end < len(part) && isNameByte(part[end]) {
			end++
		}
		if end > 0 {
			names = append(names, part[:end])
		}
	}
	return names
}

func isNameByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
