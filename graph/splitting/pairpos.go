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

// Package splitting partitions pair-positioning lookups that are too
// large to fit any single subtable — the escape hatch spec.md §4.B
// reserves for PairPos format 1 and format 2 — into several subtables
// that together cover the same rules. It is invoked only after
// otf/graph.Pack has already failed to find a legal node ordering for
// the table as a whole.
package splitting

// MaxSubtableBytes is the conservative size ceiling spec.md §4.B gives
// for a single emitted subtable; real fonts stay well under the 64KiB
// offset range, but device tables and shared subgraphs eat into the
// margin, so splits trigger before the hard limit.
const MaxSubtableBytes = 65536

// Gpos2_1Split describes one output subtable's worth of first-glyph
// indices from a format 1 (glyph pair) PairPos lookup.
type Gpos2_1Split struct {
	FirstGlyphs []int // indices into the original coverage, in order
}

// Gpos2_1CostFunc returns the incremental byte cost of including the
// pair set at coverage index i: its own PairValueRecord array plus any
// device-table subgraph referenced from it that the partition being built
// has not already charged for (sharedSeen tracks node keys already
// counted within the partition currently accumulating).
type Gpos2_1CostFunc func(i int, sharedSeen map[string]bool) int

// SplitGpos2_1 walks pair sets by coverage index, accumulating a running
// byte estimate (the per-set cost, plus the shared base overhead every
// subtable pays once for its own header and coverage table). When the
// running cost would exceed max, it closes the current partition and
// starts a new one at the current index, per spec.md §4.B's "accumulate,
// split when it would overflow" rule for PairPos format 1.
func SplitGpos2_1(n int, baseOverhead int, cost Gpos2_1CostFunc, max int) []Gpos2_1Split {
	if max <= 0 {
		max = MaxSubtableBytes
	}

	var splits []Gpos2_1Split
	var cur []int
	seen := map[string]bool{}
	running := baseOverhead

	flush := func() {
		if len(cur) > 0 {
			splits = append(splits, Gpos2_1Split{FirstGlyphs: cur})
		}
		cur = nil
		seen = map[string]bool{}
		running = baseOverhead
	}

	for i := 0; i < n; i++ {
		c := cost(i, seen)
		if len(cur) > 0 && running+c > max {
			flush()
		}
		cur = append(cur, i)
		running += c
	}
	flush()

	return splits
}

// Gpos2_2Split describes one output subtable's worth of class1 indices
// from a format 2 (class pair) PairPos lookup. SplitGpos2_2 fills in only
// Class1Indices; it leaves Glyphs nil.
type Gpos2_2Split struct {
	Class1Indices []int
	Glyphs        []int // coverage glyph indices whose class1 falls in this split; not set by SplitGpos2_2
}

// Gpos2_2CostFunc returns the incremental byte cost of including class1
// index i: one matrix row (class2Count*recordSize*2) plus any
// newly-referenced device-table subgraph, not already charged for within
// the partition (sharedSeen, as in Gpos2_1CostFunc).
type Gpos2_2CostFunc func(class1 int, sharedSeen map[string]bool) int

// SplitGpos2_2 walks class1 indices, accumulating coverage/class-def/
// matrix-row cost exactly as SplitGpos2_1 does for pair sets, splitting
// when the running estimate would exceed max.
func SplitGpos2_2(class1Count int, baseOverhead int, cost Gpos2_2CostFunc, max int) []Gpos2_2Split {
	if max <= 0 {
		max = MaxSubtableBytes
	}

	var splits []Gpos2_2Split
	var cur []int
	seen := map[string]bool{}
	running := baseOverhead

	flush := func() {
		if len(cur) > 0 {
			splits = append(splits, Gpos2_2Split{Class1Indices: cur})
		}
		cur = nil
		seen = map[string]bool{}
		running = baseOverhead
	}

	for c1 := 0; c1 < class1Count; c1++ {
		c := cost(c1, seen)
		if len(cur) > 0 && running+c > max {
			flush()
		}
		cur = append(cur, c1)
		running += c
	}
	flush()

	return splits
}
