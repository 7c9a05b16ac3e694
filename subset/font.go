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
	"sort"

	"seehuhn.de/go/otf/cmap"
	"seehuhn.de/go/otf/glyf"
	"seehuhn.de/go/otf/glyph"
	"seehuhn.de/go/otf/hhea"
	"seehuhn.de/go/otf/hmtx"
	"seehuhn.de/go/otf/maxp"
	"seehuhn.de/go/otf/opentype/coverage"
	"seehuhn.de/go/otf/opentype/gdef"
	"seehuhn.de/go/otf/opentype/gtab"
	"seehuhn.de/go/otf/post"
	"seehuhn.de/go/otf/varc"
)

// Tables is the set of decoded font tables a subset operation reads and
// rewrites. Tables whose content does not depend on the glyph numbering
// (name, os2, the font-wide parts of head) are left for the caller to
// copy over separately; Font only touches the tables that need
// renumbering.
type Tables struct {
	Glyf glyf.Glyphs
	Hmtx *hmtx.Info
	Post *post.Info
	Maxp *maxp.Info
	Hhea *hhea.Info
	Cmap cmap.Table
	GSUB *gtab.Info
	GPOS *gtab.Info
	GDEF *gdef.Table
	VARC *varc.Table
}

// Font applies plan to in, returning the renumbered tables. Errs
// collects non-fatal per-table failures (a VARC table none of whose
// covered glyphs keeps a surviving component is dropped from the output;
// GSUB and GPOS are always carried, with rules that name dropped glyphs
// removed by RenumberGSUB). A non-nil error return means the
// subset ended up with no usable "cmap" table, which callers should
// treat as fatal: the caller's hhea.NumOfLongHorMetrics and
// head.IndexToLocFormat still need to be recomputed from out.Hmtx and
// out.Glyf once those are encoded, since both depend on the encoded byte
// layout rather than anything Font itself decides.
func Font(in *Tables, plan *Plan) (*Tables, Errors, error) {
	var errs Errors
	out := &Tables{}

	keep := func(g glyph.ID) bool {
		_, ok := plan.NewGID[g]
		return ok
	}

	if in.Glyf != nil {
		out.Glyf = in.Glyf.Subset(keep, plan.NewGID)
		if !plan.Options.KeepHinting {
			stripHinting(out.Glyf)
		}
	}

	newGIDOrder := make([]uint16, len(plan.OldGID))
	for i, g := range plan.OldGID {
		newGIDOrder[i] = uint16(g)
	}

	if in.Hmtx != nil {
		out.Hmtx = in.Hmtx.Subset(newGIDOrder)
	}

	if in.Post != nil {
		p := in.Post
		if !plan.Options.KeepNames {
			stripped := *p
			stripped.Names = nil
			p = &stripped
		}
		out.Post = p.Subset(newGIDOrder)
	}

	if in.Maxp != nil {
		m := *in.Maxp
		m.NumGlyphs = len(plan.OldGID)
		out.Maxp = &m
	}

	if in.Hhea != nil {
		h := *in.Hhea
		out.Hhea = &h
	}

	if in.Cmap != nil {
		cm, cmErrs, err := SubsetCmap(in.Cmap, plan.NewGID)
		errs = append(errs, cmErrs...)
		if err != nil {
			return nil, errs, err
		}
		out.Cmap = cm
	}

	if in.GSUB != nil {
		out.GSUB = &gtab.Info{
			ScriptList:        in.GSUB.ScriptList,
			FeatureList:       in.GSUB.FeatureList,
			LookupList:        RenumberGSUB(in.GSUB.LookupList, plan.NewGID),
			FeatureVariations: in.GSUB.FeatureVariations,
		}
	}

	if in.GPOS != nil {
		out.GPOS = &gtab.Info{
			ScriptList:        in.GPOS.ScriptList,
			FeatureList:       in.GPOS.FeatureList,
			LookupList:        RenumberGSUB(in.GPOS.LookupList, plan.NewGID),
			FeatureVariations: in.GPOS.FeatureVariations,
		}
	}

	if in.GDEF != nil {
		out.GDEF = RenumberGDEF(in.GDEF, plan.NewGID)
	}

	if in.VARC != nil {
		if v := subsetVARC(in.VARC, plan.NewGID); v != nil {
			out.VARC = v
		} else {
			errs = errs.Add("VARC", errNoVARCGlyphsSurvived)
		}
	}

	return out, errs, nil
}

// stripHinting zeroes the TrueType instruction bytecode embedded in every
// simple glyph's Tail. Composite glyphs carry no bytecode of their own
// in this package's decoded representation, so they are left alone.
func stripHinting(gg glyf.Glyphs) {
	for i, g := range gg {
		if g == nil || g.NumContours < 0 {
			continue
		}
		stripped := stripGlyphHinting(g)
		if stripped != g {
			gg[i] = stripped
		}
	}
}

// stripGlyphHinting returns a copy of g with its instruction bytes
// removed from Tail. The simple-glyph body starts with numContours
// endPtsOfContours entries (2 bytes each), then a 2-byte instruction
// length, then that many instruction bytes, then the flags/coordinate
// data this package does not otherwise need to touch.
// https://learn.microsoft.com/en-us/typography/opentype/spec/glyf#simple-glyph-description
func stripGlyphHinting(g *glyf.Glyph) *glyf.Glyph {
	endPtsLen := 2 * int(g.NumContours)
	if len(g.Tail) < endPtsLen+2 {
		return g
	}
	instrLenOffset := endPtsLen
	instrLen := int(g.Tail[instrLenOffset])<<8 | int(g.Tail[instrLenOffset+1])
	instrEnd := instrLenOffset + 2 + instrLen
	if instrLen == 0 || instrEnd > len(g.Tail) {
		return g
	}

	newTail := make([]byte, 0, len(g.Tail)-instrLen)
	newTail = append(newTail, g.Tail[:instrLenOffset]...)
	newTail = append(newTail, 0, 0)
	newTail = append(newTail, g.Tail[instrEnd:]...)

	cp := *g
	cp.Tail = newTail
	return &cp
}

var errNoVARCGlyphsSurvived = &TableError{Tag: "VARC", Cause: errEmptyVARC}

type emptyVARCError struct{}

func (emptyVARCError) Error() string { return "no variable composite glyph survived subsetting" }

var errEmptyVARC = emptyVARCError{}

// subsetVARC renumbers a "VARC" table's coverage and per-glyph component
// lists. The shared ConditionSets and AxisIndices lists are carried over
// unchanged: they are addressed by plain integer index, not glyph ID, so
// subsetting never invalidates them, it can just leave a few entries
// unreferenced. A component whose target glyph did not survive
// subsetting is dropped; a covered glyph left with no surviving
// components is dropped entirely. Returns nil if no covered glyph
// survives.
func subsetVARC(t *varc.Table, newGID map[glyph.ID]glyph.ID) *varc.Table {
	type entry struct {
		newGid glyph.ID
		comps  []varc.Component
	}
	var entries []entry
	for oldGid, idx := range t.Coverage {
		ng, ok := newGID[oldGid]
		if !ok || idx < 0 || idx >= len(t.Glyphs) {
			continue
		}
		var comps []varc.Component
		for _, c := range t.Glyphs[idx] {
			if ng2, ok := newGID[c.Glyph]; ok {
				c.Glyph = ng2
				comps = append(comps, c)
			}
		}
		if len(comps) == 0 {
			continue
		}
		entries = append(entries, entry{newGid: ng, comps: comps})
	}
	if len(entries) == 0 {
		return nil
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].newGid < entries[j].newGid })

	cov := make(coverage.Table, len(entries))
	glyphs := make([][]varc.Component, len(entries))
	for i, e := range entries {
		cov[e.newGid] = i
		glyphs[i] = e.comps
	}
	return &varc.Table{
		Coverage:      cov,
		Glyphs:        glyphs,
		ConditionSets: t.ConditionSets,
		AxisIndices:   t.AxisIndices,
		Store:         t.Store,
	}
}
