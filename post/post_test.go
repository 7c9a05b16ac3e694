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

package post

import (
	"bytes"
	"reflect"
	"testing"
)

func TestRoundTripV3(t *testing.T) {
	info := &Info{
		ItalicAngle:        -9,
		UnderlinePosition:  -50,
		UnderlineThickness: 10,
	}
	data := info.Encode()
	got, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(info, got) {
		t.Errorf("got %+v, want %+v", got, info)
	}
}

func TestRoundTripV2Names(t *testing.T) {
	info := &Info{
		Names: []string{".notdef", "A", "myCustomGlyph", "A"},
	}
	data := info.Encode()
	got, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(info.Names, got.Names) {
		t.Errorf("got %v, want %v", got.Names, info.Names)
	}
}

func TestSubset(t *testing.T) {
	info := &Info{Names: []string{".notdef", "A", "B", "C"}}
	sub := info.Subset([]uint16{0, 2})
	want := []string{".notdef", "B"}
	if !reflect.DeepEqual(sub.Names, want) {
		t.Errorf("got %v, want %v", sub.Names, want)
	}
}

func FuzzPost(f *testing.F) {
	f.Add((&Info{
		ItalicAngle:        -9,
		UnderlinePosition:  -50,
		UnderlineThickness: 10,
	}).Encode())
	f.Add((&Info{Names: []string{".notdef", "A", "custom"}}).Encode())

	f.Fuzz(func(t *testing.T, in []byte) {
		i1, err := Read(bytes.NewReader(in))
		if err != nil {
			return
		}

		buf := i1.Encode()
		i2, err := Read(bytes.NewReader(buf))
		if err != nil {
			t.Fatal(err)
		}

		if !reflect.DeepEqual(i1, i2) {
			t.Fatal("not equal")
		}
	})
}
