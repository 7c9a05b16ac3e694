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

	"golang.org/x/exp/maps"

	"seehuhn.de/go/otf/cmap"
	"seehuhn.de/go/otf/glyf"
	"seehuhn.de/go/otf/glyph"
	"seehuhn.de/go/otf/opentype/gtab"
	"seehuhn.de/go/otf/varc"
)

// Plan is the outcome of deciding which glyphs survive subsetting and
// what glyph ID each one gets in the output font. Every other table a
// subsetter rewrites (glyf, hmtx, post, cmap, GSUB/GPOS) is driven by
// this one renumbering.
type Plan struct {
	Options Options

	// NewGID maps each retained old glyph ID to its new glyph ID.
	NewGID map[glyph.ID]glyph.ID

	// OldGID lists, in new-glyph-ID order, which old glyph ID each new
	// glyph ID was renumbered from. OldGID[0] is always 0, the
	// ".notdef" glyph, which is retained unconditionally.
	OldGID []glyph.ID
}

// NewPlan computes which glyphs survive subsetting and assigns them new,
// densely packed glyph IDs. cm resolves the code points in opt.Unicodes;
// glyphs supplies composite-glyph dependencies; gsub and varcTable, when
// non-nil, contribute further dependencies (GSUB lookup closure and VARC
// component references respectively) and may each be nil if the font
// lacks that table.
func NewPlan(opt Options, cm cmap.Table, glyphs glyf.Glyphs, gsub *gtab.Info, varcTable *varc.Table) (*Plan, error) {
	keep := map[glyph.ID]bool{0: true}
	for gid := range opt.Retain {
		keep[gid] = true
	}

	if len(opt.Unicodes) > 0 && cm != nil {
		best, err := cm.GetBest()
		if err != nil {
			return nil, &TableError{Tag: "cmap", Cause: err}
		}
		for r := range opt.Unicodes {
			if gid := best.Lookup(r); gid != 0 {
				keep[gid] = true
			}
		}
	}

	keep = closeComposites(glyphs, keep)

	if varcTable != nil {
		keep = closeVARC(varcTable, glyphs, keep)
	}

	if opt.LookupClosure && gsub != nil {
		indices := allFeatureIndices(len(gsub.FeatureList))
		lookups := FeatureLookups(gsub.FeatureList, indices, gsub.FeatureVariations)
		keep = GlyphClosure(gsub.LookupList, lookups, keep)
		keep = closeComposites(glyphs, keep)
		if varcTable != nil {
			keep = closeVARC(varcTable, glyphs, keep)
		}
	}

	ordered := maps.Keys(keep)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	newGID := make(map[glyph.ID]glyph.ID, len(ordered))
	for i, g := range ordered {
		newGID[g] = glyph.ID(i)
	}

	return &Plan{Options: opt, NewGID: newGID, OldGID: ordered}, nil
}

// closeComposites extends keep with every glyph referenced, directly or
// transitively, by a composite glyph already in keep.
func closeComposites(glyphs glyf.Glyphs, keep map[glyph.ID]bool) map[glyph.ID]bool {
	if glyphs == nil {
		return keep
	}
	return glyphs.Closure(maps.Keys(keep))
}

// closeVARC extends keep with every glyph a VARC component of a kept
// glyph refers to, then re-closes over composite glyph references since
// a VARC-referenced glyph can itself be a composite, repeating until no
// new glyph is added (a referenced glyph can itself be a VARC glyph).
func closeVARC(varcTable *varc.Table, glyphs glyf.Glyphs, keep map[glyph.ID]bool) map[glyph.ID]bool {
	for {
		referenced := make(map[glyph.ID]bool)
		for g := range keep {
			if varcTable.Coverage.Contains(g) {
				varcTable.Closure([]glyph.ID{g}, referenced)
			}
		}
		added := false
		for g := range referenced {
			if !keep[g] {
				keep[g] = true
				added = true
			}
		}
		if !added {
			return keep
		}
		keep = closeComposites(glyphs, keep)
	}
}

// allFeatureIndices lists every feature index 0..n-1. Options has no
// per-feature selection of its own, so a lookup closure walks every
// feature the font defines rather than a caller-chosen subset.
func allFeatureIndices(n int) []gtab.FeatureIndex {
	out := make([]gtab.FeatureIndex, n)
	for i := range out {
		out[i] = gtab.FeatureIndex(i)
	}
	return out
}
