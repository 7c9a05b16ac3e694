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

package gtab

import (
	"bytes"
	"reflect"
	"testing"

	"seehuhn.de/go/otf/parser"
)

func FuzzScriptList(f *testing.F) {
	info := ScriptListInfo{}
	info[ScriptLang{Script: "DFLT", Lang: LangDefault}] = &Features{
		Required: 0xFFFF,
		Optional: []FeatureIndex{0},
	}
	f.Add(info.encode())

	info = ScriptListInfo{}
	info[ScriptLang{Script: "latn", Lang: "ENG "}] = &Features{
		Required: 0xFFFF,
		Optional: []FeatureIndex{1, 2, 3, 4},
	}
	info[ScriptLang{Script: "latn", Lang: LangDefault}] = &Features{
		Required: 7,
		Optional: []FeatureIndex{5, 6},
	}
	f.Add(info.encode())

	info = ScriptListInfo{}
	info[ScriptLang{Script: "arab", Lang: LangDefault}] = &Features{
		Required: 0,
		Optional: []FeatureIndex{1, 2},
	}
	f.Add(info.encode())

	info = ScriptListInfo{}
	info[ScriptLang{Script: "DFLT", Lang: "ARA "}] = &Features{
		Required: 0xFFFF,
		Optional: []FeatureIndex{1, 3, 5},
	}
	info[ScriptLang{Script: "DFLT", Lang: "AZE "}] = &Features{
		Required: 0xFFFF,
		Optional: []FeatureIndex{2, 4, 6},
	}
	f.Add(info.encode())

	f.Fuzz(func(t *testing.T, data []byte) {
		p := parser.New("scriptList test", sizedReader{bytes.NewReader(data)})
		info, err := readScriptList(p, 0)
		if err != nil {
			return
		}

		data2 := info.encode()

		p = parser.New("scriptList test", sizedReader{bytes.NewReader(data2)})
		info2, err := readScriptList(p, 0)
		if err != nil {
			t.Fatal(err)
		}

		if !reflect.DeepEqual(info, info2) {
			t.Error("different")
		}
	})
}
