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

package subset

import (
	"fmt"

	"seehuhn.de/go/otf"
	"seehuhn.de/go/otf/cmap"
	"seehuhn.de/go/otf/glyph"
)

// SubsetCmap rebuilds a "cmap" table against a new glyph numbering.
// Every subtable format this package knows how to decode is rewritten in
// its original format, so a format 6 input subtable stays format 6, a
// format 12 input subtable stays format 12, and so on: dropping a format
// the input actually used would silently change which platform/encoding
// pairs resolve for a client that only understands that format. A
// subtable this package cannot decode is dropped rather than carried
// forward unchanged, since its bytes directly embed the old glyph
// numbering and would silently reference the wrong glyphs once
// renumbered.
//
// The returned Errors lists one entry per subtable that could not be
// rebuilt; these are not fatal by themselves. The returned error is
// non-nil only when no subtable survived at all, since a font with no
// usable cmap cannot be shaped and callers should treat this as fatal.
func SubsetCmap(table cmap.Table, newGID map[glyph.ID]glyph.ID) (cmap.Table, Errors, error) {
	out := make(cmap.Table)
	var errs Errors

	for key, raw := range table {
		if len(raw) < 2 {
			errs = errs.Add("cmap", &otf.InvalidFontError{Table: "cmap", Reason: "subtable too short"})
			continue
		}
		format := uint16(raw[0])<<8 | uint16(raw[1])

		sub, err := table.Get(key)
		if err != nil {
			errs = errs.Add("cmap", err)
			continue
		}

		if format == 14 {
			vs, ok := sub.(cmap.Format14)
			if !ok {
				errs = errs.Add("cmap", fmt.Errorf("unexpected type for format 14 subtable"))
				continue
			}
			rebuilt := subsetVariationSubtable(vs, newGID)
			if len(rebuilt) == 0 {
				continue
			}
			out[key] = rebuilt.Encode(key.Language)
			continue
		}

		pairs := make(map[rune]glyph.ID)
		low, high := sub.CodeRange()
		for r := low; r <= high; r++ {
			gid := sub.Lookup(r)
			if gid == 0 {
				continue
			}
			if ng, ok := newGID[gid]; ok {
				pairs[r] = ng
			}
		}
		if len(pairs) == 0 {
			continue
		}

		var rebuilt cmap.Subtable
		switch format {
		case 0:
			rebuilt = cmap.NewFormat0(pairs)
		case 4:
			f4 := make(cmap.Format4, len(pairs))
			for r, gid := range pairs {
				f4[uint16(r)] = gid
			}
			rebuilt = f4
		case 6:
			f6 := make(cmap.Format6, len(pairs))
			for r, gid := range pairs {
				f6[r] = gid
			}
			rebuilt = f6
		case 12:
			rebuilt = cmap.NewFormat12(pairs)
		default:
			errs = errs.Add("cmap", &otf.NotSupportedError{
				Table:   "cmap",
				Feature: fmt.Sprintf("subsetting format %d subtables", format),
			})
			continue
		}

		out[key] = rebuilt.Encode(key.Language)
	}

	if len(out) == 0 {
		return nil, errs, &otf.MissingTableError{Table: "cmap"}
	}
	return out, errs, nil
}

// subsetVariationSubtable rewrites a format 14 subtable's explicit
// (base, selector) -> glyph overrides through newGID, dropping any whose
// target glyph did not survive. Default ranges carry no glyph ID of
// their own (they mean "use the font's ordinary cmap entry for this base
// character"), so they need no rewriting and are kept unchanged. A
// selector entry that ends up with neither overrides nor default ranges
// is dropped.
func subsetVariationSubtable(vs cmap.Format14, newGID map[glyph.ID]glyph.ID) cmap.Format14 {
	out := make(cmap.Format14)
	for selector, sel := range vs {
		var nonDefault map[rune]glyph.ID
		for base, gid := range sel.NonDefault {
			if ng, ok := newGID[gid]; ok {
				if nonDefault == nil {
					nonDefault = make(map[rune]glyph.ID)
				}
				nonDefault[base] = ng
			}
		}
		if len(nonDefault) == 0 && len(sel.Default) == 0 {
			continue
		}
		out[selector] = cmap.VariationSelector{Default: sel.Default, NonDefault: nonDefault}
	}
	return out
}
