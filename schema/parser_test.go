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

package schema

import (
	"errors"
	"testing"
)

// sampleSchema is a miniature version of an OpenType `hhea`-shaped table
// plus an offset-addressed record and a two-variant format group, chosen
// to exercise scalar, offset and array fields and the table, record,
// format group, flags and enum item kinds.
const sampleSchema = `
table Hhea {
	tag = "hhea"
	doc = "Horizontal header table."

	field version: uint16 version;
	field ascender: int16;
	field descender: int16;
	field lineGap: int16;
	field numberOfHMetrics: uint16;
	field metrics: offset16(HmtxTable);
}

record HmtxTable {
	lifetime
	read_args(numGlyphs: uint16)
	field entries: [uint16]($numberOfHMetrics);
}

format_group ValueFormat {
	variant 1: SmallValue
	variant 2: BigValue
}

record SmallValue {
	field format: uint16 format = 1;
	field value: int16;
}

record BigValue {
	field format: uint16 format = 2;
	field value: int32;
}

flags RangeFlags {
	base = uint16
	Bold = 0x0001
	Italic = 0x0002
}

enum NameID {
	Copyright = 0
	FontFamily = 1
}
`

func TestParseSample(t *testing.T) {
	items, err := Parse(sampleSchema)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(items) != 6 {
		t.Fatalf("got %d items, want 6", len(items))
	}

	byName := make(map[string]*Item)
	for i := range items {
		byName[items[i].Name] = &items[i]
	}

	hhea, ok := byName["Hhea"]
	if !ok {
		t.Fatal("missing Hhea item")
	}
	if hhea.Kind != KindTable {
		t.Errorf("Hhea.Kind = %v, want KindTable", hhea.Kind)
	}
	if hhea.Tag != "hhea" {
		t.Errorf("Hhea.Tag = %q, want %q", hhea.Tag, "hhea")
	}
	if len(hhea.Fields) != 6 {
		t.Fatalf("Hhea has %d fields, want 6", len(hhea.Fields))
	}
	metrics := hhea.Fields[5]
	if metrics.Kind != FieldOffset || metrics.OffsetWidth != 16 || metrics.OffsetTarget != "HmtxTable" {
		t.Errorf("metrics field parsed wrong: %+v", metrics)
	}

	hmtx, ok := byName["HmtxTable"]
	if !ok {
		t.Fatal("missing HmtxTable item")
	}
	if !hmtx.Lifetime {
		t.Error("HmtxTable.Lifetime = false, want true")
	}
	if len(hmtx.ReadArgs) != 1 || hmtx.ReadArgs[0].Name != "numGlyphs" || hmtx.ReadArgs[0].Type != "uint16" {
		t.Errorf("HmtxTable.ReadArgs = %+v", hmtx.ReadArgs)
	}
	entries := hmtx.Fields[0]
	if entries.Kind != FieldArray || entries.ElemKind != FieldScalar || entries.ElemType != "uint16" {
		t.Errorf("entries field parsed wrong: %+v", entries)
	}
	if entries.Count != "$numberOfHMetrics" {
		t.Errorf("entries.Count = %q, want %q", entries.Count, "$numberOfHMetrics")
	}

	vf, ok := byName["ValueFormat"]
	if !ok {
		t.Fatal("missing ValueFormat item")
	}
	if vf.Kind != KindFormatGroup || len(vf.Variants) != 2 {
		t.Fatalf("ValueFormat parsed wrong: %+v", vf)
	}
	if vf.Variants[0].Format != 1 || vf.Variants[0].ItemName != "SmallValue" {
		t.Errorf("ValueFormat.Variants[0] = %+v", vf.Variants[0])
	}

	flags, ok := byName["RangeFlags"]
	if !ok {
		t.Fatal("missing RangeFlags item")
	}
	if flags.BaseType != "uint16" || len(flags.Values) != 2 {
		t.Fatalf("RangeFlags parsed wrong: %+v", flags)
	}
	if flags.Values[0].Name != "Bold" || flags.Values[0].Value != 1 {
		t.Errorf("RangeFlags.Values[0] = %+v", flags.Values[0])
	}
	if flags.Values[1].Value != 2 {
		t.Errorf("RangeFlags.Values[1].Value = %d, want 2", flags.Values[1].Value)
	}

	nameID, ok := byName["NameID"]
	if !ok {
		t.Fatal("missing NameID item")
	}
	if len(nameID.Values) != 2 || nameID.Values[1].Value != 1 {
		t.Errorf("NameID parsed wrong: %+v", nameID)
	}
}

func TestParseFieldUseClassification(t *testing.T) {
	const src = `
table Box {
	field count: uint16;
	field items: [uint16]($count);
	field scale: uint16 compile($count);
}
`
	items, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	box := items[0]
	var count *Field
	for i := range box.Fields {
		if box.Fields[i].Name == "count" {
			count = &box.Fields[i]
		}
	}
	if count == nil {
		t.Fatal("missing count field")
	}
	if count.Use != UseBoth {
		t.Errorf("count.Use = %v, want UseBoth (named by both count(..) and compile($count))", count.Use)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		kind ErrorKind
	}{
		{
			name: "unknown item attribute",
			src: `table Foo {
				bogus_attr = "x"
				field a: uint16;
			}`,
			kind: ErrUnknownAttribute,
		},
		{
			name: "unknown field attribute",
			src: `table Foo {
				field a: uint16 bogus_attr;
			}`,
			kind: ErrUnknownAttribute,
		},
		{
			name: "missing format attribute on variant",
			src: `format_group FG {
				variant 1: Plain
			}
			record Plain {
				field a: uint16;
			}`,
			kind: ErrMissingAttribute,
		},
		{
			name: "count(..) not last",
			src: `table Foo {
				field a: [uint16](..);
				field b: uint16;
			}`,
			kind: ErrCountNotLast,
		},
		{
			name: "forward reference",
			src: `table Foo {
				field a: [uint16]($b);
				field b: uint16;
			}`,
			kind: ErrForwardReference,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse(c.src)
			if err == nil {
				t.Fatalf("Parse succeeded, want error of kind %v", c.kind)
			}
			var se *Error
			if !errors.As(err, &se) {
				t.Fatalf("error is not *schema.Error: %v", err)
			}
			if se.Kind != c.kind {
				t.Errorf("error kind = %v, want %v (%v)", se.Kind, c.kind, se)
			}
		})
	}
}
