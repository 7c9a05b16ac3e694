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

func TestFormat0RoundTrip(t *testing.T) {
	sub := &format0{}
	sub.glyphIDArray[65] = 10
	sub.glyphIDArray[66] = 11

	data := sub.Encode(0)
	got, err := decodeFormat0(data, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(sub, got) {
		t.Errorf("round trip mismatch")
	}
	if got.Lookup(65) != 10 {
		t.Errorf("Lookup(65) = %d, want 10", got.Lookup(65))
	}
	if lo, hi := got.CodeRange(); lo != 65 || hi != 66 {
		t.Errorf("CodeRange() = %d, %d, want 65, 66", lo, hi)
	}
}

func FuzzFormat0(f *testing.F) {
	sub := &format0{}
	sub.glyphIDArray[32] = 3
	f.Add(sub.Encode(0))

	f.Fuzz(func(t *testing.T, data []byte) {
		sub, err := decodeFormat0(data, nil)
		if err != nil {
			return
		}
		data2 := sub.Encode(0)
		sub2, err := decodeFormat0(data2, nil)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(sub, sub2) {
			t.Error("not equal")
		}
	})
}
