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

package codegen

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"seehuhn.de/go/otf/schema"
)

// fixtureSchema mirrors the shape of a small sfnt table: a fixed header,
// an inline count-delimited array, and a nullable offset to a nested
// record, plus a standalone flags item.
const fixtureSchema = `
table Ranking {
	tag = "rank"
	field majorVersion: uint16;
	field minorVersion: uint16;
	field numEntries: uint16;
	field scores: [uint16]($numEntries);
	field extra: offset16(Extra, nullable);
}

record Extra {
	field note: uint16;
}

flags RankFlags {
	base = uint16
	Locked = 0x0001
	Hidden = 0x0002
}
`

func TestGenerateProducesValidGo(t *testing.T) {
	items, err := schema.Parse(fixtureSchema)
	if err != nil {
		t.Fatalf("schema.Parse failed: %v", err)
	}

	out, err := Generate("rank", items)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	fset := token.NewFileSet()
	if _, err := parser.ParseFile(fset, "ranking_generated.go", out, 0); err != nil {
		t.Fatalf("generated source does not parse: %v\n%s", err, out)
	}

	for _, want := range []string{
		"type Ranking struct",
		"func ParseRanking(data []byte) (*Ranking, error)",
		"func (v *Ranking) Encode() []byte",
		"func (v *Ranking) EncodeLen() int",
		"func (v *Ranking) Validate() error",
		"type Extra struct",
		"type RankFlags uint16",
		"RankFlagsLocked RankFlags = 1",
		"func (f RankFlags) Has(mask RankFlags) bool",
	} {
		if !strings.Contains(string(out), want) {
			t.Errorf("generated source missing %q\n%s", want, out)
		}
	}
}

func TestGenerateEmptyDocument(t *testing.T) {
	out, err := Generate("empty", nil)
	if err != nil {
		t.Fatalf("Generate failed on empty item list: %v", err)
	}
	if !strings.Contains(string(out), "package empty") {
		t.Errorf("generated source missing package clause:\n%s", out)
	}
}

func TestSortByName(t *testing.T) {
	items := []schema.Item{{Name: "Zeta"}, {Name: "Alpha"}, {Name: "Mu"}}
	sorted := SortByName(items)
	if sorted[0].Name != "Alpha" || sorted[1].Name != "Mu" || sorted[2].Name != "Zeta" {
		t.Errorf("SortByName did not sort: %v", sorted)
	}
	if items[0].Name != "Zeta" {
		t.Error("SortByName mutated its input slice")
	}
}
