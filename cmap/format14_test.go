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

	"seehuhn.de/go/otf/glyph"
)

func TestFormat14RoundTrip(t *testing.T) {
	vs := Format14{
		0xFE00: {
			Default: []UnicodeRange{{Start: 0x4E00, Count: 5}},
		},
		0xE0100: {
			NonDefault: map[rune]glyph.ID{0x4E00: 500, 0x4E9C: 501},
		},
	}
	data := vs.Encode(0)
	sub, err := decodeFormat14(data, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := sub.(Format14)
	if !reflect.DeepEqual(vs, got) {
		t.Errorf("round trip mismatch:\n%#v\n%#v", vs, got)
	}
}

func TestResolveVariant(t *testing.T) {
	vs := Format14{
		0xFE00: {
			Default:    []UnicodeRange{{Start: 0x4E00, Count: 2}},
			NonDefault: map[rune]glyph.ID{0x4E03: 77},
		},
	}

	if g, ok := vs.ResolveVariant(0x4E03, 0xFE00); !ok || g != 77 {
		t.Errorf("ResolveVariant non-default = %d, %v, want 77, true", g, ok)
	}
	if _, ok := vs.ResolveVariant(0x4E01, 0xFE00); ok {
		t.Errorf("ResolveVariant for a Default-range entry should report no explicit mapping")
	}
	if _, ok := vs.ResolveVariant(0x4E01, 0xFE01); ok {
		t.Errorf("ResolveVariant for an unknown selector should report false")
	}
}
