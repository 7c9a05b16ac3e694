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

package varc

import (
	"bytes"
	"testing"

	"seehuhn.de/go/otf/funit"
	"seehuhn.de/go/otf/glyph"
	"seehuhn.de/go/otf/opentype/coverage"
	"seehuhn.de/go/otf/varstore"
)

type sizedReader struct{ *bytes.Reader }

func (s sizedReader) Size() int64 { return s.Reader.Size() }

func f2d(v float64) funit.F2Dot14 { return funit.F2Dot14FromFloat64(v) }

// buildStore returns a one-region, one-VarData item variation store whose
// single region ramps linearly from scalar 0 at coordinate 0 to scalar 1
// at coordinate 1, so tests can predict exact output values.
func buildStore(deltas [][]int32) *varstore.ItemVariationStore {
	regions := &varstore.RegionList{
		AxisCount: 1,
		Regions: []varstore.Region{
			{Axes: []varstore.RegionAxis{{Start: f2d(0), Peak: f2d(1), End: f2d(1)}}},
		},
	}
	return &varstore.ItemVariationStore{
		Regions: regions,
		Data:    []*varstore.VarData{varstore.NewVarData([]int{0}, deltas)},
	}
}

func TestTransformFieldCount(t *testing.T) {
	f := HaveTranslateX | HaveRotation | HaveScaleY | HaveCondition
	if got := f.transformFieldCount(); got != 3 {
		t.Errorf("transformFieldCount() = %d, want 3", got)
	}
	if got := Flags(0).transformFieldCount(); got != 0 {
		t.Errorf("transformFieldCount() = %d, want 0", got)
	}
}

func TestConditionSetHolds(t *testing.T) {
	cs := ConditionSet{Conditions: []Condition{
		{Axis: 0, Min: f2d(-1), Peak: f2d(0), Max: f2d(1)},
		{Axis: 2, Min: f2d(0.5), Peak: f2d(0.5), Max: f2d(0.5)},
	}}

	cases := []struct {
		coords []funit.F2Dot14
		want   bool
	}{
		{[]funit.F2Dot14{f2d(0), 0, f2d(0.5)}, true},
		{[]funit.F2Dot14{f2d(2), 0, f2d(0.5)}, false}, // axis 0 out of range
		{[]funit.F2Dot14{f2d(0), 0, f2d(0.1)}, false}, // axis 2 out of range
		{[]funit.F2Dot14{f2d(0)}, false},              // axis 2 unmentioned -> coord 0, outside [0.5,0.5]
	}
	for i, c := range cases {
		if got := cs.Holds(c.coords); got != c.want {
			t.Errorf("case %d: Holds() = %v, want %v", i, got, c.want)
		}
	}
}

func TestTransformApplyVariation(t *testing.T) {
	store := buildStore([][]int32{
		{1000}, // row 0: delta for TranslateX at peak coord
		{2000}, // row 1: delta for Rotation at peak coord
	})

	base := Transform{TranslateX: funit.FixedFromFloat64(10), Rotation: funit.FixedFromFloat64(5)}
	flags := HaveTranslateX | HaveRotation
	idx := varstore.Pack(0, 0)

	coords := []funit.F2Dot14{f2d(1)} // at the region's peak: scalar 1
	out := base.ApplyVariation(store, idx, flags, coords)

	wantX := 10 + funit.Fixed(1000).Float64()
	if got := out.TranslateX.Float64(); got < wantX-1e-6 || got > wantX+1e-6 {
		t.Errorf("TranslateX = %v, want %v", got, wantX)
	}
	wantRot := 5 + funit.Fixed(2000).Float64()
	if got := out.Rotation.Float64(); got < wantRot-1e-6 || got > wantRot+1e-6 {
		t.Errorf("Rotation = %v, want %v", got, wantRot)
	}
	// ScaleX was never flagged as variable, so it stays zero.
	if out.ScaleX != 0 {
		t.Errorf("ScaleX = %v, want 0", out.ScaleX)
	}

	// Off-peak coordinate scales the delta down proportionally.
	half := base.ApplyVariation(store, idx, flags, []funit.F2Dot14{f2d(0.5)})
	wantHalfX := 10 + funit.Fixed(1000).Float64()*0.5
	if got := half.TranslateX.Float64(); got < wantHalfX-1e-6 || got > wantHalfX+1e-6 {
		t.Errorf("half TranslateX = %v, want %v", got, wantHalfX)
	}
}

func TestTableEffectiveAxisCoords(t *testing.T) {
	table := &Table{
		AxisIndices: [][]int{{1}},
	}

	parent := []funit.F2Dot14{f2d(0.1), f2d(0.2), f2d(0.3)}

	c := Component{
		Flags:            HaveAxes,
		AxisIndicesIndex: 0,
		AxisValues:       []funit.F2Dot14{f2d(0.9)},
		AxisValuesVarIdx: varstore.NoVariation,
	}
	got := table.EffectiveAxisCoords(c, parent)
	want := []funit.F2Dot14{f2d(0.1), f2d(0.9), f2d(0.3)}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("coord %d = %v, want %v", i, got[i], want[i])
		}
	}

	c.Flags |= ResetUnspecifiedAxes
	got = table.EffectiveAxisCoords(c, parent)
	want = []funit.F2Dot14{0, f2d(0.9), 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("reset coord %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTableClosure(t *testing.T) {
	table := &Table{
		Coverage: coverage.Table{10: 0, 20: 1},
		Glyphs: [][]Component{
			{{Glyph: 100, ConditionSetIndex: -1, AxisIndicesIndex: -1}, {Glyph: 101, ConditionSetIndex: -1, AxisIndicesIndex: -1}},
			{{Glyph: 102, ConditionSetIndex: -1, AxisIndicesIndex: -1}},
		},
	}

	referenced := map[glyph.ID]bool{}
	table.Closure([]glyph.ID{10, 20}, referenced)

	for _, want := range []glyph.ID{100, 101, 102} {
		if !referenced[want] {
			t.Errorf("Closure() did not reference glyph %d", want)
		}
	}
	if referenced[10] || referenced[20] {
		t.Errorf("Closure() should not mark the covered glyphs themselves")
	}
}

func TestTableReadWriteRoundTrip(t *testing.T) {
	store := buildStore([][]int32{
		{500},  // row 0: TranslateX delta
		{-250}, // row 1: AxisValues[0] delta
	})

	tbl := &Table{
		Coverage: coverage.Table{5: 0},
		ConditionSets: []ConditionSet{
			{Conditions: []Condition{{Axis: 0, Min: f2d(-1), Peak: f2d(0), Max: f2d(1)}}},
		},
		AxisIndices: [][]int{{2}},
		Store:       store,
		Glyphs: [][]Component{
			{
				{
					Glyph:             7,
					Flags:             HaveCondition | HaveAxes | HaveGlyphVarIdx | HaveTranslateX,
					ConditionSetIndex: 0,
					AxisIndicesIndex:  0,
					AxisValues:        []funit.F2Dot14{f2d(0.25)},
					AxisValuesVarIdx:  varstore.Pack(0, 1),
					Transform:         Transform{TranslateX: funit.FixedFromFloat64(3)},
					TransformVarIdx:   varstore.Pack(0, 0),
				},
				{
					Glyph:             8,
					ConditionSetIndex: -1,
					AxisIndicesIndex:  -1,
					AxisValuesVarIdx:  varstore.NoVariation,
					TransformVarIdx:   varstore.NoVariation,
				},
			},
		},
	}

	data := tbl.Encode()
	if n := tbl.EncodeLen(); n != len(data) {
		t.Fatalf("EncodeLen() = %d, len(Encode()) = %d", n, len(data))
	}

	got, err := Read(sizedReader{bytes.NewReader(data)})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if !got.Coverage.Contains(5) {
		t.Fatalf("round-tripped table does not cover glyph 5")
	}
	comps := got.Components(5)
	if len(comps) != 2 {
		t.Fatalf("len(Components(5)) = %d, want 2", len(comps))
	}

	c0 := comps[0]
	if c0.Glyph != 7 {
		t.Errorf("Glyph = %d, want 7", c0.Glyph)
	}
	if c0.Flags&HaveCondition == 0 || c0.Flags&HaveAxes == 0 || c0.Flags&HaveGlyphVarIdx == 0 || c0.Flags&HaveTranslateX == 0 {
		t.Errorf("Flags = %v, missing expected bits", c0.Flags)
	}
	if c0.ConditionSetIndex != 0 {
		t.Errorf("ConditionSetIndex = %d, want 0", c0.ConditionSetIndex)
	}
	if c0.AxisIndicesIndex != 0 {
		t.Errorf("AxisIndicesIndex = %d, want 0", c0.AxisIndicesIndex)
	}
	if len(c0.AxisValues) != 1 || c0.AxisValues[0] != f2d(0.25) {
		t.Errorf("AxisValues = %v, want [0.25]", c0.AxisValues)
	}
	if c0.AxisValuesVarIdx != varstore.Pack(0, 1) {
		t.Errorf("AxisValuesVarIdx = %v, want Pack(0,1)", c0.AxisValuesVarIdx)
	}
	if got, want := c0.Transform.TranslateX.Float64(), 3.0; got < want-1e-6 || got > want+1e-6 {
		t.Errorf("TranslateX = %v, want %v", got, want)
	}
	if c0.TransformVarIdx != varstore.Pack(0, 0) {
		t.Errorf("TransformVarIdx = %v, want Pack(0,0)", c0.TransformVarIdx)
	}

	c1 := comps[1]
	if c1.Glyph != 8 {
		t.Errorf("Glyph = %d, want 8", c1.Glyph)
	}
	if c1.ConditionSetIndex != -1 || c1.AxisIndicesIndex != -1 {
		t.Errorf("unconditional/no-axis component got ConditionSetIndex=%d AxisIndicesIndex=%d, want -1,-1",
			c1.ConditionSetIndex, c1.AxisIndicesIndex)
	}

	if !got.ConditionHolds(c0, []funit.F2Dot14{f2d(0)}) {
		t.Errorf("ConditionHolds() = false at a coordinate inside the range")
	}
	if got.ConditionHolds(c0, []funit.F2Dot14{f2d(2)}) {
		t.Errorf("ConditionHolds() = true at a coordinate outside the range")
	}

	axisCoords := got.EffectiveAxisCoords(c0, []funit.F2Dot14{0, 0, 0})
	wantAxis := c0.AxisValues[0].Float64()
	if g := axisCoords[2].Float64(); g < wantAxis-1e-6 || g > wantAxis+1e-6 {
		t.Errorf("EffectiveAxisCoords()[2] = %v, want ~%v (before variation delta)", g, wantAxis)
	}
}
