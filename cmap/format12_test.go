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

package cmap

import (
	"reflect"
	"testing"
)

func TestFormat12RoundTrip(t *testing.T) {
	sub := format12{
		{startCharCode: 0x41, endCharCode: 0x5A, startGlyphID: 10},
		{startCharCode: 0x1F600, endCharCode: 0x1F602, startGlyphID: 100},
	}
	data := sub.Encode(0)
	got, err := decodeFormat12(data, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(sub, got) {
		t.Errorf("round trip mismatch: %#v != %#v", sub, got)
	}
	if g := sub.Lookup(0x1F601); g != 101 {
		t.Errorf("Lookup(0x1F601) = %d, want 101", g)
	}
	if g := sub.Lookup(0x100); g != 0 {
		t.Errorf("Lookup(0x100) = %d, want 0", g)
	}
}

func FuzzFormat12(f *testing.F) {
	sub := format12{{startCharCode: 0x41, endCharCode: 0x5A, startGlyphID: 10}}
	f.Add(sub.Encode(0))

	f.Fuzz(func(t *testing.T, data []byte) {
		sub, err := decodeFormat12(data, nil)
		if err != nil {
			return
		}
		data2 := sub.Encode(0)
		sub2, err := decodeFormat12(data2, nil)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(sub, sub2) {
			t.Error("not equal")
		}
	})
}
