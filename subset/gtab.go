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

	"seehuhn.de/go/otf/glyph"
	"seehuhn.de/go/otf/opentype/classdef"
	"seehuhn.de/go/otf/opentype/coverage"
	"seehuhn.de/go/otf/opentype/gtab"
)

// RenumberGSUB rewrites a GSUB lookup list to use new glyph IDs, dropping
// every rule and subtable that referenced a glyph newGID does not
// contain. Lookups keep their original index and position in the list
// (only their Subtables shrink, possibly to nil) rather than being
// removed and the list compacted: compacting would require rewriting
// every LookupListIndex a nested contextual action refers to, and the
// Script/FeatureList tables that are passed through unchanged still name
// lookups by their original index. An emptied lookup is inert, not
// invalid.
//
// Only the subtable types otf/opentype/gtab exposes as concrete types
// are handled (the GSUB-specific single/multiple/alternate/ligature/
// reverse-chaining formats, plus the contextual and chaining-contextual
// formats shared with GPOS); any other Subtable implementation is
// dropped unchanged, since this package has no way to inspect it.
func RenumberGSUB(lookups gtab.LookupList, newGID map[glyph.ID]glyph.ID) gtab.LookupList {
	out := make(gtab.LookupList, len(lookups))
	for i, lk := range lookups {
		if lk == nil {
			continue
		}
		var kept gtab.Subtables
		for _, st := range lk.Subtables {
			if ns := renumberSubtable(st, newGID); ns != nil {
				kept = append(kept, ns)
			}
		}
		out[i] = &gtab.LookupTable{Meta: lk.Meta, Subtables: kept}
	}
	return out
}

type covEntry struct {
	oldGid glyph.ID
	newGid glyph.ID
	oldIdx int
}

// sortedEntries lists, in increasing new-glyph-ID order, every coverage
// entry whose glyph survives in newGID and for which ok (given the
// entry's original glyph ID and coverage index) reports true.
func sortedEntries(cov coverage.Table, newGID map[glyph.ID]glyph.ID, ok func(oldGid glyph.ID, oldIdx int) bool) []covEntry {
	var entries []covEntry
	for oldGid, idx := range cov {
		ng, present := newGID[oldGid]
		if !present || !ok(oldGid, idx) {
			continue
		}
		entries = append(entries, covEntry{oldGid: oldGid, newGid: ng, oldIdx: idx})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].newGid < entries[j].newGid })
	return entries
}

func coverageFromEntries(entries []covEntry) coverage.Table {
	out := make(coverage.Table, len(entries))
	for i, e := range entries {
		out[e.newGid] = i
	}
	return out
}

// remapGlyphSet rewrites a coverage table's glyph IDs through newGID,
// dropping glyphs that did not survive and renumbering the remaining
// coverage indices to stay sequential. Unlike sortedEntries, this is for
// coverage tables that are not parallel to some other indexed slice
// (format 3 per-position coverage, and GSUB 8.1's backtrack/lookahead).
func remapGlyphSet(cov coverage.Table, newGID map[glyph.ID]glyph.ID) coverage.Table {
	kept := make([]glyph.ID, 0, len(cov))
	for g := range cov {
		if ng, ok := newGID[g]; ok {
			kept = append(kept, ng)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i] < kept[j] })
	out := make(coverage.Table, len(kept))
	for i, g := range kept {
		out[g] = i
	}
	return out
}

// remapCovList applies remapGlyphSet to every table in covs, failing if
// any position becomes empty (an empty coverage table can never match,
// which would make the whole rule permanently inert rather than merely
// narrower).
func remapCovList(covs []coverage.Table, newGID map[glyph.ID]glyph.ID) ([]coverage.Table, bool) {
	out := make([]coverage.Table, len(covs))
	for i, cov := range covs {
		nc := remapGlyphSet(cov, newGID)
		if len(nc) == 0 {
			return nil, false
		}
		out[i] = nc
	}
	return out, true
}

// remapSeq rewrites a literal glyph ID sequence through newGID, failing
// if any glyph in it was dropped.
func remapSeq(ids []glyph.ID, newGID map[glyph.ID]glyph.ID) ([]glyph.ID, bool) {
	if len(ids) == 0 {
		return nil, true
	}
	out := make([]glyph.ID, len(ids))
	for i, g := range ids {
		ng, ok := newGID[g]
		if !ok {
			return nil, false
		}
		out[i] = ng
	}
	return out, true
}

// remapClasses rewrites a class-definition table's glyph-ID keys through
// newGID; class numbers themselves are opaque and never renumbered.
func remapClasses(info classdef.Info, newGID map[glyph.ID]glyph.ID) classdef.Info {
	out := make(classdef.Info, len(info))
	for g, c := range info {
		if ng, ok := newGID[g]; ok {
			out[ng] = c
		}
	}
	return out
}

func renumberSubtable(st gtab.Subtable, newGID map[glyph.ID]glyph.ID) gtab.Subtable {
	switch l := st.(type) {
	case *gtab.Gsub1_1:
		// A single uniform Delta cannot survive an arbitrary glyph
		// renumbering (the new input/output IDs are no longer related
		// by a constant offset in general), so format 1 is rebuilt as
		// the equivalent explicit format 2 table.
		entries := sortedEntries(l.Cov, newGID, func(oldGid glyph.ID, _ int) bool {
			_, ok := newGID[oldGid+l.Delta]
			return ok
		})
		if len(entries) == 0 {
			return nil
		}
		subs := make([]glyph.ID, len(entries))
		for i, e := range entries {
			subs[i] = newGID[e.oldGid+l.Delta]
		}
		return &gtab.Gsub1_2{Cov: coverageFromEntries(entries), SubstituteGlyphIDs: subs}

	case *gtab.Gsub1_2:
		entries := sortedEntries(l.Cov, newGID, func(_ glyph.ID, idx int) bool {
			return idx < len(l.SubstituteGlyphIDs)
		})
		var kept []covEntry
		var subs []glyph.ID
		for _, e := range entries {
			ng, ok := newGID[l.SubstituteGlyphIDs[e.oldIdx]]
			if !ok {
				continue
			}
			kept = append(kept, e)
			subs = append(subs, ng)
		}
		if len(kept) == 0 {
			return nil
		}
		return &gtab.Gsub1_2{Cov: coverageFromEntries(kept), SubstituteGlyphIDs: subs}

	case *gtab.Gsub2_1:
		entries := sortedEntries(l.Cov, newGID, func(_ glyph.ID, idx int) bool { return idx < len(l.Repl) })
		var kept []covEntry
		var repl [][]glyph.ID
		for _, e := range entries {
			out, ok := remapSeq(l.Repl[e.oldIdx], newGID)
			if !ok {
				continue
			}
			kept = append(kept, e)
			repl = append(repl, out)
		}
		if len(kept) == 0 {
			return nil
		}
		return &gtab.Gsub2_1{Cov: coverageFromEntries(kept), Repl: repl}

	case *gtab.Gsub3_1:
		entries := sortedEntries(l.Cov, newGID, func(_ glyph.ID, idx int) bool { return idx < len(l.Alt) })
		var kept []covEntry
		var alt [][]glyph.ID
		for _, e := range entries {
			out, ok := remapSeq(l.Alt[e.oldIdx], newGID)
			if !ok || len(out) == 0 {
				continue
			}
			kept = append(kept, e)
			alt = append(alt, out)
		}
		if len(kept) == 0 {
			return nil
		}
		return &gtab.Gsub3_1{Cov: coverageFromEntries(kept), Alt: alt}

	case *gtab.Gsub4_1:
		entries := sortedEntries(l.Cov, newGID, func(_ glyph.ID, idx int) bool { return idx < len(l.Repl) })
		var kept []covEntry
		var repl [][]gtab.Ligature
		for _, e := range entries {
			var ligs []gtab.Ligature
			for _, lig := range l.Repl[e.oldIdx] {
				in, ok := remapSeq(lig.In, newGID)
				if !ok {
					continue
				}
				out, ok := newGID[lig.Out]
				if !ok {
					continue
				}
				ligs = append(ligs, gtab.Ligature{In: in, Out: out})
			}
			if len(ligs) == 0 {
				continue
			}
			kept = append(kept, e)
			repl = append(repl, ligs)
		}
		if len(kept) == 0 {
			return nil
		}
		return &gtab.Gsub4_1{Cov: coverageFromEntries(kept), Repl: repl}

	case *gtab.Gsub8_1:
		backtrack, ok := remapCovList(l.Backtrack, newGID)
		if !ok {
			return nil
		}
		lookahead, ok := remapCovList(l.Lookahead, newGID)
		if !ok {
			return nil
		}
		entries := sortedEntries(l.Cov, newGID, func(_ glyph.ID, idx int) bool { return idx < len(l.Substitutes) })
		var kept []covEntry
		var subs []glyph.ID
		for _, e := range entries {
			ng, ok := newGID[l.Substitutes[e.oldIdx]]
			if !ok {
				continue
			}
			kept = append(kept, e)
			subs = append(subs, ng)
		}
		if len(kept) == 0 {
			return nil
		}
		return &gtab.Gsub8_1{Cov: coverageFromEntries(kept), Backtrack: backtrack, Lookahead: lookahead, Substitutes: subs}

	case *gtab.SeqContext1:
		entries := sortedEntries(l.Cov, newGID, func(_ glyph.ID, idx int) bool { return idx < len(l.Rules) })
		if len(entries) == 0 {
			return nil
		}
		rules := make([][]*gtab.SeqRule, len(entries))
		any := false
		for i, e := range entries {
			for _, r := range l.Rules[e.oldIdx] {
				if r == nil {
					continue
				}
				in, ok := remapSeq(r.Input, newGID)
				if !ok {
					continue
				}
				rules[i] = append(rules[i], &gtab.SeqRule{Input: in, Actions: r.Actions})
				any = true
			}
		}
		if !any {
			return nil
		}
		return &gtab.SeqContext1{Cov: coverageFromEntries(entries), Rules: rules}

	case *gtab.SeqContext2:
		entries := sortedEntries(l.Cov, newGID, func(_ glyph.ID, idx int) bool { return idx < len(l.Rules) })
		if len(entries) == 0 {
			return nil
		}
		rules := make([][]*gtab.ClassSequenceRule, len(entries))
		any := false
		for i, e := range entries {
			for _, r := range l.Rules[e.oldIdx] {
				if r == nil {
					continue
				}
				rules[i] = append(rules[i], &gtab.ClassSequenceRule{Input: r.Input, Actions: r.Actions})
				any = true
			}
		}
		if !any {
			return nil
		}
		return &gtab.SeqContext2{
			Cov:     coverageFromEntries(entries),
			Classes: remapClasses(l.Classes, newGID),
			Rules:   rules,
		}

	case *gtab.SeqContext3:
		if len(l.Covv) == 0 {
			return nil
		}
		covv := make([]coverage.Table, len(l.Covv))
		for i, cov := range l.Covv {
			nc := remapGlyphSet(cov, newGID)
			if len(nc) == 0 {
				return nil
			}
			covv[i] = nc
		}
		return &gtab.SeqContext3{Covv: covv, Actions: l.Actions}

	case *gtab.ChainedSeqContext1:
		entries := sortedEntries(l.Cov, newGID, func(_ glyph.ID, idx int) bool { return idx < len(l.Rules) })
		if len(entries) == 0 {
			return nil
		}
		rules := make([][]*gtab.ChainedSeqRule, len(entries))
		any := false
		for i, e := range entries {
			for _, r := range l.Rules[e.oldIdx] {
				if r == nil {
					continue
				}
				in, ok1 := remapSeq(r.Input, newGID)
				bt, ok2 := remapSeq(r.Backtrack, newGID)
				la, ok3 := remapSeq(r.Lookahead, newGID)
				if !ok1 || !ok2 || !ok3 {
					continue
				}
				rules[i] = append(rules[i], &gtab.ChainedSeqRule{Input: in, Backtrack: bt, Lookahead: la, Actions: r.Actions})
				any = true
			}
		}
		if !any {
			return nil
		}
		return &gtab.ChainedSeqContext1{Cov: coverageFromEntries(entries), Rules: rules}

	case *gtab.ChainedSeqContext2:
		entries := sortedEntries(l.Cov, newGID, func(_ glyph.ID, idx int) bool { return idx < len(l.Rules) })
		if len(entries) == 0 {
			return nil
		}
		rules := make([][]*gtab.ChainedClassSequenceRule, len(entries))
		any := false
		for i, e := range entries {
			for _, r := range l.Rules[e.oldIdx] {
				if r == nil {
					continue
				}
				rules[i] = append(rules[i], &gtab.ChainedClassSequenceRule{
					Backtrack: r.Backtrack,
					Input:     r.Input,
					Lookahead: r.Lookahead,
					Actions:   r.Actions,
				})
				any = true
			}
		}
		if !any {
			return nil
		}
		return &gtab.ChainedSeqContext2{
			Cov:               coverageFromEntries(entries),
			BacktrackClasses:  remapClasses(l.BacktrackClasses, newGID),
			InputClasses:      remapClasses(l.InputClasses, newGID),
			LookaheadClasses:  remapClasses(l.LookaheadClasses, newGID),
			Rules:             rules,
		}

	case *gtab.ChainedSeqContext3:
		backtrack, ok1 := remapCovList(l.Backtrack, newGID)
		input, ok2 := remapCovList(l.Input, newGID)
		lookahead, ok3 := remapCovList(l.Lookahead, newGID)
		if !ok1 || !ok2 || !ok3 {
			return nil
		}
		return &gtab.ChainedSeqContext3{Backtrack: backtrack, Input: input, Lookahead: lookahead, Actions: l.Actions}
	}

	return nil
}
