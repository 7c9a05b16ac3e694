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

	"seehuhn.de/go/otf/glyph"
	"seehuhn.de/go/otf/opentype/classdef"
	"seehuhn.de/go/otf/opentype/coverage"
	"seehuhn.de/go/otf/parser"
)

func TestGpos2_2(t *testing.T) {
	l1 := &Gpos2_2{
		Cov:    coverage.Set{1: true, 12: true},
		Class1: classdef.Info{1: 1, 2: 1, 12: 2},
		Class2: classdef.Info{3: 1, 4: 2},
		Adjust: [][]*PairAdjust{
			{
				{
					First: &GposValueRecord{
						XPlacement: 1,
						YPlacement: 2,
						XAdvance:   3,
						YAdvance:   4,
					},
					Second: &GposValueRecord{
						XPlacement: 5,
						YPlacement: 6,
						XAdvance:   7,
						YAdvance:   8,
					},
				},
				{
					First: &GposValueRecord{
						XPlacement: 1000,
						YPlacement: 2000,
						XAdvance:   3000,
						YAdvance:   4000,
					},
					Second: &GposValueRecord{
						XPlacement: 5000,
						YPlacement: 6000,
						XAdvance:   7000,
						YAdvance:   8000,
					},
				},
			},
		},
	}
	data := l1.Encode()
	p := parser.New("test", sizedReader{bytes.NewReader(data)})
	if _, err := p.ReadUInt16(); err != nil {
		t.Fatal(err)
	}
	l2, err := readGpos2_2(p, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(l1, l2) {
		t.Errorf("round trip mismatch:\n%+v\n%+v", l1, l2)
	}
}

func FuzzGpos1_1(f *testing.F) {
	l := &Gpos1_1{
		Cov: coverage.Table{8: 0, 9: 1},
		Adjust: &GposValueRecord{
			XAdvance: 100,
		},
	}
	f.Add(l.Encode())

	f.Fuzz(func(t *testing.T, data []byte) {
		p := parser.New("test", sizedReader{bytes.NewReader(data)})
		format, err := p.ReadUInt16()
		if err != nil || format != 1 {
			return
		}

		l1, err := readGpos1_1(p, 0)
		if err != nil {
			return
		}

		data2 := l1.(*Gpos1_1).Encode()
		if len(data2) != l1.EncodeLen() {
			t.Errorf("encodeLen mismatch: %d != %d", len(data2), l1.EncodeLen())
		}

		p = parser.New("test", sizedReader{bytes.NewReader(data2)})
		l2, err := readGpos1_1(p, 0)
		if err != nil {
			t.Fatal(err)
		}

		if !reflect.DeepEqual(l1, l2) {
			t.Error("different")
		}
	})
}

func FuzzGpos1_2(f *testing.F) {
	l := &Gpos1_2{}
	f.Add(l.Encode())
	l = &Gpos1_2{
		Cov: coverage.Table{8: 0, 9: 1},
		Adjust: []*GposValueRecord{
			{XAdvance: 100},
			{XAdvance: 50, XPlacement: -50},
		},
	}
	f.Add(l.Encode())

	f.Fuzz(func(t *testing.T, data []byte) {
		p := parser.New("test", sizedReader{bytes.NewReader(data)})
		format, err := p.ReadUInt16()
		if err != nil || format != 2 {
			return
		}

		l1, err := readGpos1_2(p, 0)
		if err != nil {
			return
		}

		data2 := l1.(*Gpos1_2).Encode()
		if len(data2) != l1.EncodeLen() {
			t.Errorf("encodeLen mismatch: %d != %d", len(data2), l1.EncodeLen())
		}

		p = parser.New("test", sizedReader{bytes.NewReader(data2)})
		l2, err := readGpos1_2(p, 0)
		if err != nil {
			t.Fatal(err)
		}

		if !reflect.DeepEqual(l1, l2) {
			t.Error("different")
		}
	})
}

func FuzzGpos2_1(f *testing.F) {
	l := &Gpos2_1{}
	f.Add(l.Encode())
	l = &Gpos2_1{
		Cov: coverage.Table{1: 0, 3: 1},
		Adjust: []map[glyph.ID]*PairAdjust{
			{
				2: {
					First: &GposValueRecord{
						XAdvance: -10,
					},
				},
			},
		},
	}
	f.Add(l.Encode())
	l.Adjust = []map[glyph.ID]*PairAdjust{
		{
			2: {
				First: &GposValueRecord{
					XAdvance: -10,
				},
			},
			4: {
				First: &GposValueRecord{
					XAdvance: -10,
				},
				Second: &GposValueRecord{
					XPlacement: 5,
				},
			},
			6: {
				First: &GposValueRecord{
					XAdvance: -10,
				},
				Second: &GposValueRecord{
					XPlacement:        1,
					YPlacement:        2,
					XAdvance:          3,
					YAdvance:          4,
					XPlacementDevOffs: 5,
					YPlacementDevOffs: 6,
					XAdvanceDevOffs:   7,
					YAdvanceDevOffs:   8,
				},
			},
		},
	}
	f.Add(l.Encode())

	f.Fuzz(func(t *testing.T, data []byte) {
		p := parser.New("test", sizedReader{bytes.NewReader(data)})
		format, err := p.ReadUInt16()
		if err != nil || format != 1 {
			return
		}

		l1, err := readGpos2_1(p, 0)
		if err != nil {
			return
		}

		data2 := l1.(*Gpos2_1).Encode()
		if len(data2) != l1.EncodeLen() {
			t.Errorf("encodeLen mismatch: %d != %d", len(data2), l1.EncodeLen())
		}

		p = parser.New("test", sizedReader{bytes.NewReader(data2)})
		l2, err := readGpos2_1(p, 0)
		if err != nil {
			t.Fatal(err)
		}

		if !reflect.DeepEqual(l1, l2) {
			t.Error("different")
		}
	})
}
