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

package kern

import (
	"bytes"
	"reflect"
	"testing"

	"seehuhn.de/go/otf/glyph"
)

type sizedReader struct {
	*bytes.Reader
}

func (s sizedReader) Size() int64 { return s.Reader.Size() }

func newReader(data []byte) sizedReader {
	return sizedReader{bytes.NewReader(data)}
}

func TestRoundTrip(t *testing.T) {
	info := Info{
		{Left: 3, Right: 5}:  -20,
		{Left: 10, Right: 2}: 15,
	}
	data := info.Encode()

	got, err := Read(newReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(info, got) {
		t.Errorf("got %v, want %v", got, info)
	}
}

func TestSubset(t *testing.T) {
	info := Info{
		{Left: 3, Right: 5}: -20,
		{Left: 3, Right: 9}: 10,
	}
	keep := map[glyph.ID]glyph.ID{3: 0, 5: 1}
	sub := info.Subset(keep)
	want := Info{{Left: 0, Right: 1}: -20}
	if !reflect.DeepEqual(sub, want) {
		t.Errorf("got %v, want %v", sub, want)
	}
}

func FuzzKern(f *testing.F) {
	info := Info{{Left: 1, Right: 2}: 5}
	f.Add(info.Encode())

	f.Fuzz(func(t *testing.T, in []byte) {
		i1, err := Read(newReader(in))
		if err != nil {
			return
		}
		data := i1.Encode()
		i2, err := Read(newReader(data))
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(i1, i2) {
			t.Fatal("not equal")
		}
	})
}
