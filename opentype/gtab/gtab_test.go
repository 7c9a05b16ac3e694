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

package gtab

import (
	"bytes"
	"reflect"
	"testing"
)

type sizedReader struct{ *bytes.Reader }

func (s sizedReader) Size() int64 { return s.Reader.Size() }

func FuzzGtab(f *testing.F) {
	info := &Info{}
	f.Add(info.Encode())

	info.ScriptList = ScriptListInfo{
		{Script: "DFLT", Lang: LangDefault}: {
			Required: 0xFFFF,
			Optional: []FeatureIndex{1, 2, 3, 4},
		},
		{Script: "latn", Lang: LangDefault}: {
			Required: 0,
			Optional: []FeatureIndex{2, 4, 5},
		},
		{Script: "latn", Lang: "DEU "}: {
			Required: 6,
		},
	}
	info.FeatureList = FeatureListInfo{
		{Tag: "kern", Lookups: []LookupIndex{0, 1}},
		{Tag: "liga", Lookups: []LookupIndex{2, 3, 4}},
		{Tag: "frac", Lookups: []LookupIndex{1, 5}},
		{Tag: "locl", Lookups: []LookupIndex{2, 6}},
		{Tag: "onum", Lookups: []LookupIndex{3, 7}},
	}
	info.LookupList = LookupList{
		&LookupTable{
			Meta: &LookupMetaInfo{LookupType: 1},
			Subtables: Subtables{
				dummySubTable{0},
				dummySubTable{1},
				dummySubTable{2},
			},
		},
		&LookupTable{
			Meta: &LookupMetaInfo{LookupType: 2, LookupFlag: LookupUseMarkFilteringSet, MarkFilteringSet: 7},
			Subtables: Subtables{
				dummySubTable{3, 4},
				dummySubTable{5, 6},
			},
		},
		&LookupTable{
			Meta: &LookupMetaInfo{LookupType: 3},
			Subtables: Subtables{
				dummySubTable{7, 8, 9},
			},
		},
	}
	f.Add(info.Encode())

	f.Fuzz(func(t *testing.T, data1 []byte) {
		info1, err := doRead("test", sizedReader{bytes.NewReader(data1)}, readDummySubtable)
		if err != nil {
			return
		}

		data2 := info1.Encode()

		info2, err := doRead("test", sizedReader{bytes.NewReader(data2)}, readDummySubtable)
		if err != nil {
			t.Fatal(err)
		}

		if !reflect.DeepEqual(info1, info2) {
			t.Error("different")
		}
	})
}

func TestInfoEncodeFeatureVariations(t *testing.T) {
	info := &Info{
		FeatureList: FeatureListInfo{
			{Tag: "rlig", Lookups: []LookupIndex{0}},
		},
		LookupList: LookupList{
			&LookupTable{
				Meta:      &LookupMetaInfo{LookupType: 1},
				Subtables: Subtables{dummySubTable{1}},
			},
		},
		FeatureVariations: &FeatureVariations{
			Records: []FeatureVariationRecord{
				{
					Conditions: []Condition{
						{AxisIndex: 0, FilterRangeMinValue: 500, FilterRangeMaxValue: 1000},
					},
					Substitutions: []FeatureSubstitution{
						{FeatureIndex: 0, AlternateFeature: Feature{Tag: "rlig", Lookups: []LookupIndex{0}}},
					},
				},
			},
		},
	}

	data := info.Encode()

	info2, err := doRead("test", sizedReader{bytes.NewReader(data)}, readDummySubtable)
	if err != nil {
		t.Fatal(err)
	}
	if info2.FeatureVariations == nil {
		t.Fatal("FeatureVariations lost in round trip")
	}
	if len(info2.FeatureVariations.Records) != 1 {
		t.Fatalf("expected 1 feature variation record, got %d",
			len(info2.FeatureVariations.Records))
	}
	rec := info2.FeatureVariations.Records[0]
	if len(rec.Conditions) != 1 || rec.Conditions[0].AxisIndex != 0 {
		t.Errorf("wrong condition: %+v", rec.Conditions)
	}
	if len(rec.Substitutions) != 1 || rec.Substitutions[0].AlternateFeature.Tag != "rlig" {
		t.Errorf("wrong substitution: %+v", rec.Substitutions)
	}
}
