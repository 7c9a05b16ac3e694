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
	"golang.org/x/exp/maps"

	"seehuhn.de/go/otf/glyph"
	"seehuhn.de/go/otf/opentype/classdef"
	"seehuhn.de/go/otf/opentype/coverage"
	"seehuhn.de/go/otf/opentype/gtab"
)

// maxClosureIterations bounds the fixed-point loop below. Twelve rounds
// is enough for every chain of lookups a real layout engine will follow
// (Unicode normalisation plus the standard Latin/Arabic/Indic feature
// chains nest at most a handful of lookups deep); it also keeps a
// pathological or adversarial lookup graph from looping forever.
const maxClosureIterations = 12

// FeatureLookups returns, in first-use order and without duplicates,
// every LookupIndex referenced by the features at featureIndices, plus
// (when variations is non-nil) every lookup that a feature-variation
// record substitutes in for one of those features. A variable font's
// FeatureVariations table swaps in an alternate lookup list only at
// specific points in the design-variation space, but a subset has to
// serve the whole space, so every alternate a kept feature can select is
// retained unconditionally.
func FeatureLookups(features gtab.FeatureListInfo, featureIndices []gtab.FeatureIndex, variations *gtab.FeatureVariations) []gtab.LookupIndex {
	seen := make(map[gtab.LookupIndex]bool)
	var out []gtab.LookupIndex
	add := func(ls []gtab.LookupIndex) {
		for _, l := range ls {
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
	}

	wanted := make(map[gtab.FeatureIndex]bool, len(featureIndices))
	for _, fi := range featureIndices {
		wanted[fi] = true
		if int(fi) >= 0 && int(fi) < len(features) {
			add(features[fi].Lookups)
		}
	}

	if variations != nil {
		for _, rec := range variations.Records {
			for _, sub := range rec.Substitutions {
				if wanted[gtab.FeatureIndex(sub.FeatureIndex)] {
					add(sub.AlternateFeature.Lookups)
				}
			}
		}
	}

	return out
}

// GlyphClosure computes the transitive closure of glyphs under the GSUB
// substitution lookups at lookupIndices, starting from the glyphs
// already in the set. The returned set always contains every glyph
// passed in (the closure is monotonic), and calling GlyphClosure again
// on its own result is a no-op (the closure is idempotent): both
// properties follow from the loop below running substitutions forward
// only, to a fixed point, never removing a glyph once added.
//
// lookups is the GSUB table's full lookup list; lookupIndices names the
// subset reachable from the retained features (see FeatureLookups).
func GlyphClosure(lookups gtab.LookupList, lookupIndices []gtab.LookupIndex, glyphs map[glyph.ID]bool) map[glyph.ID]bool {
	closure := make(map[glyph.ID]bool, len(glyphs))
	maps.Copy(closure, glyphs)

	visited := make(map[gtab.LookupIndex]bool)

	for iter := 0; iter < maxClosureIterations; iter++ {
		changed := false
		for _, li := range lookupIndices {
			if closeLookup(lookups, li, closure, visited) {
				changed = true
			}
		}
		if !changed {
			break
		}
		// A subtable that produced a new glyph this round may now match
		// glyphs it previously couldn't reach; let every lookup try
		// again next round instead of treating "visited" as "done".
		maps.Clear(visited)
	}

	return closure
}

// closeLookup applies every subtable of the lookup at li once, adding
// any glyph it can produce from the current closure. It returns whether
// it added anything. visited guards against a lookup list that cycles
// back on itself through nested contextual actions.
func closeLookup(lookups gtab.LookupList, li gtab.LookupIndex, closure map[glyph.ID]bool, visited map[gtab.LookupIndex]bool) bool {
	if int(li) < 0 || int(li) >= len(lookups) || visited[li] {
		return false
	}
	visited[li] = true

	lookup := lookups[li]
	if lookup == nil {
		return false
	}

	changed := false
	for _, st := range lookup.Subtables {
		if closeSubtable(lookups, st, closure, visited) {
			changed = true
		}
	}
	return changed
}

// closeSubtable dispatches on the concrete GSUB subtable type, adding
// every glyph the subtable can substitute given the glyphs already in
// closure. Nested lookups are only reachable through a contextual or
// chaining-contextual rule whose context is satisfied by the current
// closure, and are applied via closeLookup so a nested action's own
// nested actions are followed in turn.
func closeSubtable(lookups gtab.LookupList, st gtab.Subtable, closure map[glyph.ID]bool, visited map[gtab.LookupIndex]bool) bool {
	changed := false
	add := func(g glyph.ID) {
		if !closure[g] {
			closure[g] = true
			changed = true
		}
	}
	addAll := func(gs []glyph.ID) {
		for _, g := range gs {
			add(g)
		}
	}
	runNested := func(actions gtab.Nested) {
		for _, action := range actions {
			if closeLookup(lookups, action.LookupListIndex, closure, visited) {
				changed = true
			}
		}
	}

	switch l := st.(type) {
	case *gtab.Gsub1_1:
		for _, g := range l.Cov.Glyphs() {
			if closure[g] {
				add(g + l.Delta) // wraps modulo 65536, per the format's definition
			}
		}

	case *gtab.Gsub1_2:
		for g, idx := range l.Cov {
			if closure[g] && idx < len(l.SubstituteGlyphIDs) {
				add(l.SubstituteGlyphIDs[idx])
			}
		}

	case *gtab.Gsub2_1:
		for g, idx := range l.Cov {
			if closure[g] && idx < len(l.Repl) {
				addAll(l.Repl[idx])
			}
		}

	case *gtab.Gsub3_1:
		for g, idx := range l.Cov {
			if closure[g] && idx < len(l.Alt) {
				addAll(l.Alt[idx])
			}
		}

	case *gtab.Gsub4_1:
		for g, idx := range l.Cov {
			if !closure[g] || idx >= len(l.Repl) {
				continue
			}
			for _, lig := range l.Repl[idx] {
				if allInClosure(lig.In, closure) {
					add(lig.Out)
				}
			}
		}

	case *gtab.Gsub8_1:
		if !coverageContextHolds(l.Backtrack, closure) || !coverageContextHolds(l.Lookahead, closure) {
			break
		}
		for g, idx := range l.Cov {
			if closure[g] && idx < len(l.Substitutes) {
				add(l.Substitutes[idx])
			}
		}

	case *gtab.SeqContext1:
		for g, idx := range l.Cov {
			if !closure[g] || idx >= len(l.Rules) {
				continue
			}
			for _, rule := range l.Rules[idx] {
				if rule != nil && allInClosure(rule.Input, closure) {
					runNested(rule.Actions)
				}
			}
		}

	case *gtab.SeqContext2:
		classGlyphs := invertClasses(l.Classes)
		for g, idx := range l.Cov {
			if !closure[g] || idx >= len(l.Rules) {
				continue
			}
			for _, rule := range l.Rules[idx] {
				if rule != nil && allClassesInClosure(rule.Input, classGlyphs, closure) {
					runNested(rule.Actions)
				}
			}
		}

	case *gtab.SeqContext3:
		if len(l.Covv) > 0 && covIntersectsClosure(l.Covv[0], closure) &&
			coverageContextHolds(l.Covv[1:], closure) {
			runNested(l.Actions)
		}

	case *gtab.ChainedSeqContext1:
		for g, idx := range l.Cov {
			if !closure[g] || idx >= len(l.Rules) {
				continue
			}
			for _, rule := range l.Rules[idx] {
				if rule == nil {
					continue
				}
				if allInClosure(rule.Input, closure) &&
					allInClosure(rule.Backtrack, closure) &&
					allInClosure(rule.Lookahead, closure) {
					runNested(rule.Actions)
				}
			}
		}

	case *gtab.ChainedSeqContext2:
		inputClasses := invertClasses(l.InputClasses)
		backtrackClasses := invertClasses(l.BacktrackClasses)
		lookaheadClasses := invertClasses(l.LookaheadClasses)
		for g, idx := range l.Cov {
			if !closure[g] || idx >= len(l.Rules) {
				continue
			}
			for _, rule := range l.Rules[idx] {
				if rule == nil {
					continue
				}
				if allClassesInClosure(rule.Input, inputClasses, closure) &&
					allClassesInClosure(rule.Backtrack, backtrackClasses, closure) &&
					allClassesInClosure(rule.Lookahead, lookaheadClasses, closure) {
					runNested(rule.Actions)
				}
			}
		}

	case *gtab.ChainedSeqContext3:
		if len(l.Input) > 0 && covIntersectsClosure(l.Input[0], closure) &&
			coverageContextHolds(l.Input[1:], closure) &&
			coverageContextHolds(l.Backtrack, closure) &&
			coverageContextHolds(l.Lookahead, closure) {
			runNested(l.Actions)
		}
	}

	return changed
}

// allInClosure reports whether every glyph in ids is already in closure.
// An empty sequence trivially holds.
func allInClosure(ids []glyph.ID, closure map[glyph.ID]bool) bool {
	for _, g := range ids {
		if !closure[g] {
			return false
		}
	}
	return true
}

// covIntersectsClosure reports whether any glyph covered by cov is in
// closure.
func covIntersectsClosure(cov coverage.Table, closure map[glyph.ID]bool) bool {
	for g := range cov {
		if closure[g] {
			return true
		}
	}
	return false
}

// coverageContextHolds reports whether every coverage table in the
// sequence has at least one covered glyph in closure: this is the
// containment test for backtrack/lookahead/input positions given as
// per-position coverage tables (format 3 contextual and chaining
// contextual subtables, and the reverse-chaining format 8.1 subtable).
func coverageContextHolds(covs []coverage.Table, closure map[glyph.ID]bool) bool {
	for _, cov := range covs {
		if !covIntersectsClosure(cov, closure) {
			return false
		}
	}
	return true
}

// invertClasses builds, for a class-definition table, the set of
// glyphs assigned to each non-zero class. Class 0 is the implicit
// "every glyph not otherwise listed" class; without the font's total
// glyph count this function cannot enumerate it, so a rule position
// that requires class 0 only matches glyphs this class-def explicitly
// maps to 0 (a conservative, documented simplification: it can miss a
// class-0 match, never fabricate one that doesn't exist).
func invertClasses(classes classdef.Info) map[uint16][]glyph.ID {
	out := make(map[uint16][]glyph.ID)
	for g, c := range classes {
		out[c] = append(out[c], g)
	}
	return out
}

// allClassesInClosure reports whether, for every class in classSeq,
// the class-def assigns at least one glyph of that class that is
// already in closure.
func allClassesInClosure(classSeq []uint16, classGlyphs map[uint16][]glyph.ID, closure map[glyph.ID]bool) bool {
	for _, c := range classSeq {
		ok := false
		for _, g := range classGlyphs[c] {
			if closure[g] {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}
