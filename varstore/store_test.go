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

package varstore

import (
	"reflect"
	"testing"

	"seehuhn.de/go/otf/funit"
)

func oneAxisStore(deltas [][]int32) *ItemVariationStore {
	rl := &RegionList{
		AxisCount: 1,
		Regions: []Region{
			{Axes: []RegionAxis{{Start: f2d(0), Peak: f2d(1), End: f2d(1)}}},
		},
	}
	vd := NewVarData([]int{0}, deltas)
	return &ItemVariationStore{Regions: rl, Data: []*VarData{vd}}
}

func TestItemVariationStoreGetDelta(t *testing.T) {
	s := oneAxisStore([][]int32{{100}, {-50}})

	got := s.GetDelta(Pack(0, 0), []funit.F2Dot14{f2d(1)})
	if got != 100 {
		t.Errorf("GetDelta at peak = %v, want 100", got)
	}

	got = s.GetDelta(Pack(0, 0), []funit.F2Dot14{f2d(0.5)})
	if got != 50 {
		t.Errorf("GetDelta at half-way = %v, want 50", got)
	}

	got = s.GetDelta(Pack(0, 1), []funit.F2Dot14{f2d(1)})
	if got != -50 {
		t.Errorf("GetDelta item 1 at peak = %v, want -50", got)
	}
}

func TestItemVariationStoreGetDeltaNoVariation(t *testing.T) {
	s := oneAxisStore([][]int32{{100}})
	if got := s.GetDelta(NoVariation, []funit.F2Dot14{f2d(1)}); got != 0 {
		t.Errorf("GetDelta(NoVariation) = %v, want 0", got)
	}
	if got := s.GetDelta(Pack(5, 0), []funit.F2Dot14{f2d(1)}); got != 0 {
		t.Errorf("GetDelta with out-of-range outer = %v, want 0", got)
	}
}

func TestItemVariationStoreRoundTrip(t *testing.T) {
	rl := &RegionList{
		AxisCount: 1,
		Regions: []Region{
			{Axes: []RegionAxis{{Start: f2d(0), Peak: f2d(1), End: f2d(1)}}},
			{Axes: []RegionAxis{{Start: f2d(-1), Peak: f2d(-1), End: f2d(0)}}},
		},
	}
	vd1 := NewVarData([]int{0, 1}, [][]int32{{10, -5}, {20, -15}})
	s := &ItemVariationStore{Regions: rl, Data: []*VarData{vd1}}

	enc := s.Encode()
	if len(enc) != s.EncodeLen() {
		t.Fatalf("EncodeLen() = %d, Encode() produced %d bytes", s.EncodeLen(), len(enc))
	}

	got, err := ReadItemVariationStore(newParser(enc), 0)
	if err != nil {
		t.Fatalf("ReadItemVariationStore: %v", err)
	}
	if !reflect.DeepEqual(got.Regions, s.Regions) {
		t.Errorf("region list round trip mismatch: got %+v, want %+v", got.Regions, s.Regions)
	}
	if len(got.Data) != 1 || !reflect.DeepEqual(got.Data[0].DeltaSets, vd1.DeltaSets) {
		t.Errorf("delta sets round trip mismatch: got %+v", got.Data)
	}
}

func TestItemVariationStoreRoundTripLongWords(t *testing.T) {
	rl := &RegionList{
		AxisCount: 1,
		Regions:   []Region{{Axes: []RegionAxis{{Start: f2d(0), Peak: f2d(1), End: f2d(1)}}}},
	}
	vd := &VarData{
		RegionIndexes: []int{0},
		DeltaSets:     [][]int32{{100000}, {-100000}},
		LongWords:     true,
		WordCount:     1,
	}
	s := &ItemVariationStore{Regions: rl, Data: []*VarData{vd}}

	enc := s.Encode()
	got, err := ReadItemVariationStore(newParser(enc), 0)
	if err != nil {
		t.Fatalf("ReadItemVariationStore: %v", err)
	}
	if !reflect.DeepEqual(got.Data[0].DeltaSets, vd.DeltaSets) {
		t.Errorf("long-word delta sets round trip mismatch: got %+v, want %+v", got.Data[0].DeltaSets, vd.DeltaSets)
	}
}
