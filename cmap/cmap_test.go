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
	"bytes"
	"reflect"
	"testing"
)

func FuzzCmapHeader(f *testing.F) {
	f.Add([]byte{
		0, 0,
		0, 2,
		0, 0, 0, 4, 0, 0, 0, 20,
		0, 3, 0, 10, 0, 0, 0, 20,
		0, 6, 0, 10, 0, 0, 0, 0,
	})
	buf := bytes.Buffer{}
	ss := Table{
		{PlatformID: 3, EncodingID: 10}: []byte{0, 1, 0, 8, 1, 2, 3, 4, 101, 102, 103, 104},
		{PlatformID: 0, EncodingID: 4}:  []byte{0, 1, 0, 8, 5, 6, 7, 8, 101, 102, 103, 104},
	}
	ss.Write(&buf)
	f.Add(buf.Bytes())

	f.Fuzz(func(t *testing.T, data []byte) {
		ss, err := Decode(data)
		if err != nil {
			return
		}
		buf := bytes.Buffer{}
		if err := ss.Write(&buf); err != nil {
			t.Fatal(err)
		}
		if len(buf.Bytes()) > len(data) {
			t.Errorf("re-encoded table is longer than the original")
		}
		ss2, err := Decode(buf.Bytes())
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(ss, ss2) {
			t.Errorf("ss != ss2")
		}
	})
}

func TestGetBestPrefersFullUnicode(t *testing.T) {
	bmp := Format4{65: 1}.Encode(0)
	full := format12{{startCharCode: 0x1F600, endCharCode: 0x1F600, startGlyphID: 2}}.Encode(0)

	ss := Table{
		{PlatformID: 3, EncodingID: 1}:  bmp,
		{PlatformID: 3, EncodingID: 10}: full,
	}
	sub, err := ss.GetBest()
	if err != nil {
		t.Fatal(err)
	}
	if got := sub.Lookup(0x1F600); got != 2 {
		t.Errorf("GetBest did not select the full-Unicode subtable, got glyph %d", got)
	}
}

func TestGetMissingKey(t *testing.T) {
	ss := Table{}
	if _, err := ss.Get(Key{PlatformID: 3, EncodingID: 1}); err == nil {
		t.Error("expected an error for a missing subtable")
	}
}
