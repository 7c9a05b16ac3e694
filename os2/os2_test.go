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

package os2

import (
	"bytes"
	"reflect"
	"testing"

	"seehuhn.de/go/otf/glyph"
)

// fakeSubtable is a minimal cmap.Subtable stand-in used only to exercise
// Encode's FirstCharIndex/LastCharIndex derivation.
type fakeSubtable struct {
	lo, hi rune
}

func (f fakeSubtable) Lookup(r rune) glyph.ID     { return 0 }
func (f fakeSubtable) Encode(language uint16) []byte { return nil }
func (f fakeSubtable) CodeRange() (low, high rune) { return f.lo, f.hi }

func TestRoundTrip(t *testing.T) {
	info := &Info{
		WeightClass: 400,
		WidthClass:  5,
		IsRegular:   true,
		Ascent:      800,
		Descent:     -200,
		WinAscent:   900,
		WinDescent:  250,
		CapHeight:   700,
		XHeight:     500,
		Vendor:      "TEST",
		PermUse:     PermInstall,
	}

	data := info.Encode(fakeSubtable{lo: 0x20, hi: 0x2122})
	got, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	if got.FirstCharIndex != 0x20 || got.LastCharIndex != 0x2122 {
		t.Errorf("char range = %#x, %#x", got.FirstCharIndex, got.LastCharIndex)
	}
	if got.Ascent != info.Ascent || got.Descent != info.Descent {
		t.Errorf("typo metrics: got asc=%d desc=%d", got.Ascent, got.Descent)
	}
	if got.CapHeight != info.CapHeight || got.XHeight != info.XHeight {
		t.Errorf("x/cap height: got %d/%d", got.XHeight, got.CapHeight)
	}
	if !got.IsRegular {
		t.Error("expected IsRegular to survive round trip")
	}
}

func TestVersionTooNew(t *testing.T) {
	data := make([]byte, 100)
	data[1] = 6 // version 6, not supported
	if _, err := Read(bytes.NewReader(data)); err == nil {
		t.Error("expected an error for an unsupported OS/2 version")
	}
}

func FuzzOS2(f *testing.F) {
	f.Fuzz(func(t *testing.T, in []byte) {
		i1, err := Read(bytes.NewReader(in))
		if err != nil {
			return
		}

		buf := i1.Encode(nil)
		i2, err := Read(bytes.NewReader(buf))
		if err != nil {
			t.Fatal(err)
		}

		if !reflect.DeepEqual(i1, i2) {
			t.Fatal("not equal")
		}
	})
}
