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
	"seehuhn.de/go/otf/opentype/coverage"
	"seehuhn.de/go/otf/parser"
)

func FuzzGsub1_1(f *testing.F) {
	l := &Gsub1_1{
		Cov:   coverage.Table{3: 0},
		Delta: 26,
	}
	f.Add(l.Encode())

	f.Fuzz(func(t *testing.T, data []byte) {
		p := parser.New("test", sizedReader{bytes.NewReader(data)})
		format, err := p.ReadUInt16()
		if err != nil || format != 1 {
			return
		}

		l1, err := readGsub1_1(p, 0)
		if err != nil {
			return
		}

		data2 := l1.(*Gsub1_1).Encode()
		if len(data2) != l1.EncodeLen() {
			t.Errorf("encodeLen mismatch: %d != %d", len(data2), l1.EncodeLen())
		}

		p = parser.New("test", sizedReader{bytes.NewReader(data2)})
		format, err = p.ReadUInt16()
		if err != nil {
			t.Fatal(err)
		} else if format != 1 {
			t.Fatalf("unexpected format: %d", format)
		}
		l2, err := readGsub1_1(p, 0)
		if err != nil {
			t.Fatal(err)
		}

		if !reflect.DeepEqual(l1, l2) {
			t.Error("different")
		}
	})
}

func FuzzGsub1_2(f *testing.F) {
	l := &Gsub1_2{
		Cov:                coverage.Table{3: 0, 2: 1},
		SubstituteGlyphIDs: []glyph.ID{6, 7},
	}
	f.Add(l.Encode())

	f.Fuzz(func(t *testing.T, data []byte) {
		p := parser.New("test", sizedReader{bytes.NewReader(data)})
		format, err := p.ReadUInt16()
		if err != nil || format != 2 {
			return
		}

		l1, err := readGsub1_2(p, 0)
		if err != nil {
			return
		}

		data2 := l1.(*Gsub1_2).Encode()
		if len(data2) != l1.EncodeLen() {
			t.Errorf("encodeLen mismatch: %d != %d", len(data2), l1.EncodeLen())
		}

		p = parser.New("test", sizedReader{bytes.NewReader(data2)})
		l2, err := readGsub1_2(p, 0)
		if err != nil {
			t.Fatal(err)
		}

		if !reflect.DeepEqual(l1, l2) {
			t.Error("different")
		}
	})
}

func FuzzGsub2_1(f *testing.F) {
	l := &Gsub2_1{
		Cov:  coverage.Table{5: 0},
		Repl: [][]glyph.ID{{1, 2}},
	}
	f.Add(l.Encode())

	f.Fuzz(func(t *testing.T, data []byte) {
		p := parser.New("test", sizedReader{bytes.NewReader(data)})
		format, err := p.ReadUInt16()
		if err != nil || format != 1 {
			return
		}

		l1, err := readGsub2_1(p, 0)
		if err != nil {
			return
		}

		data2 := l1.(*Gsub2_1).Encode()
		if len(data2) != l1.EncodeLen() {
			t.Errorf("encodeLen mismatch: %d != %d", len(data2), l1.EncodeLen())
		}

		p = parser.New("test", sizedReader{bytes.NewReader(data2)})
		l2, err := readGsub2_1(p, 0)
		if err != nil {
			t.Fatal(err)
		}

		if !reflect.DeepEqual(l1, l2) {
			t.Error("different")
		}
	})
}

func FuzzGsub3_1(f *testing.F) {
	l := &Gsub3_1{
		Cov: coverage.Table{5: 0},
		Alt: [][]glyph.ID{{1, 2, 3}},
	}
	f.Add(l.Encode())

	f.Fuzz(func(t *testing.T, data []byte) {
		p := parser.New("test", sizedReader{bytes.NewReader(data)})
		format, err := p.ReadUInt16()
		if err != nil || format != 1 {
			return
		}

		l1, err := readGsub3_1(p, 0)
		if err != nil {
			return
		}

		data2 := l1.(*Gsub3_1).Encode()
		if len(data2) != l1.EncodeLen() {
			t.Errorf("encodeLen mismatch: %d != %d", len(data2), l1.EncodeLen())
		}

		p = parser.New("test", sizedReader{bytes.NewReader(data2)})
		l2, err := readGsub3_1(p, 0)
		if err != nil {
			t.Fatal(err)
		}

		if !reflect.DeepEqual(l1, l2) {
			t.Error("different")
		}
	})
}

func FuzzGsub4_1(f *testing.F) {
	l := &Gsub4_1{
		Cov: coverage.Table{5: 0, 8: 1},
		Repl: [][]Ligature{
			{{In: []glyph.ID{6, 7}, Out: 100}},
			{{In: []glyph.ID{9}, Out: 101}, {In: []glyph.ID{9, 10}, Out: 102}},
		},
	}
	f.Add(l.Encode())

	f.Fuzz(func(t *testing.T, data []byte) {
		p := parser.New("test", sizedReader{bytes.NewReader(data)})
		format, err := p.ReadUInt16()
		if err != nil || format != 1 {
			return
		}

		l1, err := readGsub4_1(p, 0)
		if err != nil {
			return
		}

		data2 := l1.(*Gsub4_1).Encode()
		if len(data2) != l1.EncodeLen() {
			t.Errorf("encodeLen mismatch: %d != %d", len(data2), l1.EncodeLen())
		}

		p = parser.New("test", sizedReader{bytes.NewReader(data2)})
		l2, err := readGsub4_1(p, 0)
		if err != nil {
			t.Fatal(err)
		}

		if !reflect.DeepEqual(l1, l2) {
			t.Error("different")
		}
	})
}
