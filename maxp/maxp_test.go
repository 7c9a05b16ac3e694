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

package maxp

import (
	"bytes"
	"reflect"
	"testing"
)

func TestMaxpV05(t *testing.T) {
	for _, numGlyphs := range []int{1, 2, 3, 255, 256, 1000, 65535} {
		info := &Info{NumGlyphs: numGlyphs}
		data, err := info.Encode()
		if err != nil {
			t.Errorf("Encode(%d): %v", numGlyphs, err)
			continue
		}
		got, err := Read(bytes.NewReader(data))
		if err != nil {
			t.Errorf("Read(%d): %v", numGlyphs, err)
			continue
		}
		if got.NumGlyphs != numGlyphs || got.TrueType {
			t.Errorf("Read(%d): got %+v", numGlyphs, got)
		}
	}
}

func TestMaxpV10RoundTrip(t *testing.T) {
	info := &Info{
		NumGlyphs:            42,
		TrueType:             true,
		MaxPoints:            100,
		MaxContours:          5,
		MaxCompositePoints:   20,
		MaxCompositeContours: 2,
		MaxZones:             2,
		MaxStorage:           8,
		MaxFunctionDefs:      10,
		MaxStackElements:     64,
		MaxComponentElements: 3,
		MaxComponentDepth:    2,
	}
	data, err := info.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 32 {
		t.Fatalf("expected 32 bytes, got %d", len(data))
	}

	got, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, info) {
		t.Errorf("got %+v, want %+v", got, info)
	}
}

func TestMaxpInvalidNumGlyphs(t *testing.T) {
	info := &Info{NumGlyphs: 0}
	if _, err := info.Encode(); err == nil {
		t.Error("expected error for NumGlyphs=0")
	}
}

func FuzzMaxp(f *testing.F) {
	info := &Info{NumGlyphs: 10, TrueType: true, MaxPoints: 50}
	data, _ := info.Encode()
	f.Add(data)

	f.Fuzz(func(t *testing.T, d1 []byte) {
		i1, err := Read(bytes.NewReader(d1))
		if err != nil {
			return
		}

		d2, err := i1.Encode()
		if err != nil {
			t.Fatal(err)
		}
		i2, err := Read(bytes.NewReader(d2))
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(i1, i2) {
			t.Fatal("not equal")
		}
	})
}
