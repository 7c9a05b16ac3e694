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

package name

import (
	"reflect"
	"testing"

	"golang.org/x/text/language"
	"seehuhn.de/go/otf/cmap"
)

func TestRoundTrip(t *testing.T) {
	tt := Tables{
		"en-US": {Family: "Test Sans", Subfamily: "Regular", PostScriptName: "TestSans-Regular"},
		"de":    {Family: "Test Sans (DE)"},
	}
	cm := cmap.Table{
		{PlatformID: 3, EncodingID: 1, Language: 0}: {0, 0},
		{PlatformID: 1, EncodingID: 0, Language: 0}: {0, 0},
	}

	data := tt.Encode(cm)
	got, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(got["en-US"], tt["en-US"]) {
		t.Errorf("en-US: got %+v, want %+v", got["en-US"], tt["en-US"])
	}
	if !reflect.DeepEqual(got["de"], tt["de"]) {
		t.Errorf("de: got %+v, want %+v", got["de"], tt["de"])
	}
}

func TestChoose(t *testing.T) {
	tt := Tables{}
	makeTable := func(lang string, numEntries int) {
		tbl := &Table{}
		for i := 0; i < numEntries; i++ {
			tbl.set(ID(i), "x")
		}
		tbl.set(1000, lang)
		tt[lang] = tbl
	}
	makeTable("en-GB", 3)
	makeTable("en-US", 2)

	table, conf := tt.Choose(language.AmericanEnglish)
	if got := table.get(1000); got != "en-US" || conf != language.Exact {
		t.Errorf("%q %d", got, conf)
	}

	table, conf = tt.Choose(language.BritishEnglish)
	if got := table.get(1000); got != "en-GB" || conf != language.Exact {
		t.Errorf("%q %d", got, conf)
	}

	table, conf = tt.Choose(language.German)
	if got := table.get(1000); got != "en-US" || conf != language.No {
		t.Errorf("%q %d", got, conf)
	}
}

func TestLangIDTables(t *testing.T) {
	if _, ok := appleLangID("en"); !ok {
		t.Error("expected Macintosh English to resolve")
	}
	if _, ok := msLangID("en-US"); !ok {
		t.Error("expected Windows en-US to resolve")
	}
	if _, ok := msLangID("xx-ZZ"); ok {
		t.Error("expected unknown BCP-47 tag to fail")
	}
}

func FuzzDecode(f *testing.F) {
	tt := Tables{"en-US": {Family: "Seed"}}
	cm := cmap.Table{{PlatformID: 3, EncodingID: 1, Language: 0}: {0, 0}}
	f.Add(tt.Encode(cm))

	f.Fuzz(func(t *testing.T, data []byte) {
		tt, err := Decode(data)
		if err != nil {
			return
		}
		_ = tt.Encode(cm)
	})
}
