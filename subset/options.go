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

// Package subset computes, from a set of glyphs or code points a caller
// wants to keep, a renumbering plan for a font, and applies that plan to
// the tables this module knows how to decode.
package subset

import "seehuhn.de/go/otf/glyph"

// Options controls which glyphs a subset keeps and how aggressively it
// prunes auxiliary data.
type Options struct {
	// Retain lists glyph IDs that must survive subsetting, independent of
	// any code point mapping.
	Retain map[glyph.ID]bool

	// Unicodes lists code points that must survive subsetting; each is
	// resolved to a glyph ID via the input font's best cmap subtable.
	Unicodes map[rune]bool

	// KeepNames preserves the "post" table's per-glyph PostScript names.
	// When false, the subset "post" table carries no name data at all.
	KeepNames bool

	// KeepHinting preserves TrueType instruction bytecode on retained
	// glyphs. When false, a subsetter is expected to strip it (hinting
	// programs routinely reference cvt/storage indices and function
	// numbers that assume the full glyph set is present, and dropping
	// them is the conservative default).
	KeepHinting bool

	// Desubroutinize flattens CFF subroutine calls before subsetting.
	// This module only decodes "glyf"-flavored outlines, so this field
	// has no effect; it is kept so that Options has the same shape a
	// CFF-capable build of this package would use.
	Desubroutinize bool

	// LookupClosure additionally retains every glyph reachable from the
	// initial set through the font's GSUB lookups (see GlyphClosure).
	// Without it, a subset keeps exactly the glyphs named by Retain and
	// Unicodes (plus their composite-glyph dependencies), which is
	// cheaper but can drop ligatures, alternates, and contextual
	// substitutes a shaper would otherwise have reached.
	LookupClosure bool
}
