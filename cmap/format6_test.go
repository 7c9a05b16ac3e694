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

import "testing"

func TestDecodeFormat6(t *testing.T) {
	data := []byte{
		0, 6, // format
		0, 14, // length
		0, 0, // language
		0, 65, // first code
		0, 2, // entry count
		0, 10,
		0, 11,
	}
	sub, err := decodeFormat6(data, nil)
	if err != nil {
		t.Fatal(err)
	}
	if g := sub.Lookup(65); g != 10 {
		t.Errorf("Lookup(65) = %d, want 10", g)
	}
	if g := sub.Lookup(66); g != 11 {
		t.Errorf("Lookup(66) = %d, want 11", g)
	}
	if g := sub.Lookup(67); g != 0 {
		t.Errorf("Lookup(67) = %d, want 0", g)
	}
}

func TestDecodeFormat6TrailingZero(t *testing.T) {
	data := []byte{
		0, 6,
		0, 16,
		0, 0,
		0, 65,
		0, 2,
		0, 10,
		0, 11,
		0, 0, // excess padding some fonts include
	}
	if _, err := decodeFormat6(data, nil); err != nil {
		t.Fatal(err)
	}
}
