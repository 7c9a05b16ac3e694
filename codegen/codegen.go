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

// Package codegen renders a parsed schema (seehuhn.de/go/otf/schema)
// into Go source: for every table/record item a struct type with an eager
// Parse function (fields are copied out of the input bytes), EncodeLen, a
// forward-accumulating Encode and a Validate routine; for every format or
// generic group an interface, plus a format-dispatching Parse function for
// format groups; for every enum/flags item a named integer type with its
// constants. The generated code has no zero-copy reader views, no separate
// builder type and no FromObjRef bridge, and Encode does not go through
// the offset graph (seehuhn.de/go/otf/graph).
//
// The generation shape — a text/template body rendered into a buffer,
// then passed through go/format.Source before being written out — follows
// font/pdfenc/generate.go and the teacher's own font/cmap template-driven
// stream writers.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strings"
	"text/template"

	"seehuhn.de/go/otf/schema"
)

// Generate renders every item into one Go source file belonging to
// package pkg. Items are rendered in the order given; callers that need
// deterministic diffs across regenerations should pass items already
// sorted by name.
func Generate(pkg string, items []schema.Item) ([]byte, error) {
	data := documentData{Package: pkg}
	byName := make(map[string]schema.Item, len(items))
	for _, it := range items {
		byName[it.Name] = it
	}

	for _, it := range items {
		switch it.Kind {
		case schema.KindEnum, schema.KindFlags:
			data.Enums = append(data.Enums, newEnumData(it))
		default:
			data.Items = append(data.Items, newItemData(it, byName))
		}
	}

	var buf bytes.Buffer
	if err := documentTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("codegen: executing template: %w", err)
	}

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("codegen: formatting generated source (%w):\n%s", err, buf.String())
	}
	return out, nil
}

type documentData struct {
	Package string
	Enums   []enumData
	Items   []itemData
}

type enumData struct {
	Name     string
	BaseType string
	IsFlags  bool
	Doc      string
	Values   []schema.EnumValue
}

func newEnumData(it schema.Item) enumData {
	base := it.BaseType
	if base == "" {
		base = "uint16"
	}
	return enumData{
		Name:     it.Name,
		BaseType: base,
		IsFlags:  it.Kind == schema.KindFlags,
		Doc:      it.Doc,
		Values:   it.Values,
	}
}

type itemData struct {
	Name          string
	Doc           string
	Tag           string
	Lifetime      bool
	SkipFontWrite bool
	SkipFromObj   bool
	IsFormatGroup bool
	IsGeneric     bool
	ReadArgs      []schema.Arg
	Fields        []fieldData
	Variants      []variantData
}

type fieldData struct {
	schema.Field
	GoName      string
	GoType      string
	ElemGoType  string
	Getter      string
	CountGoName string // Go field name the array's element count is read from, "" if count(..)
}

type variantData struct {
	schema.Variant
	GoName string
}

func newItemData(it schema.Item, byName map[string]schema.Item) itemData {
	d := itemData{
		Name:          it.Name,
		Doc:           it.Doc,
		Tag:           it.Tag,
		Lifetime:      it.Lifetime,
		SkipFontWrite: it.SkipFontWrite,
		SkipFromObj:   it.SkipFromObj,
		IsFormatGroup: it.Kind == schema.KindFormatGroup,
		IsGeneric:     it.Kind == schema.KindGenericGroup,
		ReadArgs:      it.ReadArgs,
	}
	for _, f := range it.Fields {
		d.Fields = append(d.Fields, newFieldData(f, byName))
	}
	for _, v := range it.Variants {
		d.Variants = append(d.Variants, variantData{Variant: v, GoName: exportName(v.ItemName)})
	}
	return d
}

func newFieldData(f schema.Field, byName map[string]schema.Item) fieldData {
	fd := fieldData{Field: f, GoName: exportName(f.Name), Getter: exportName(f.Name)}
	switch f.Kind {
	case schema.FieldScalar:
		fd.GoType = goScalarType(f.ScalarType)
	case schema.FieldOffset:
		fd.ElemGoType = exportName(f.OffsetTarget)
		fd.GoType = "*" + fd.ElemGoType
	case schema.FieldRecord:
		fd.GoType = exportName(f.RecordTarget)
	case schema.FieldArray:
		switch f.ElemKind {
		case schema.FieldScalar:
			fd.ElemGoType = goScalarType(f.ElemType)
		case schema.FieldRecord, schema.FieldOffset:
			fd.ElemGoType = exportName(f.ElemTarget)
		}
		fd.GoType = "[]" + fd.ElemGoType
		if !f.CountToEnd {
			fd.CountGoName = exportName(strings.TrimPrefix(f.Count, "$"))
		}
	case schema.FieldComputed:
		fd.GoType = goScalarType(f.CompileType)
	}
	_ = byName
	return fd
}

// goScalarType maps a schema wire-scalar name to the plain Go type the
// generated reader/builder uses for it. Generated files stay free of
// cross-package imports so that a schema document never has to know, in
// advance, which concrete funit/header/glyph aliases a hand-written
// caller prefers; callers convert at the call site instead.
func goScalarType(name string) string {
	switch name {
	case "uint8", "int8", "uint16", "int16", "uint32", "int32":
		return name
	case "uint24":
		return "uint32"
	case "Fixed", "F26Dot6":
		return "int32"
	case "F2Dot14":
		return "int16"
	case "Tag":
		return "uint32"
	case "GlyphID":
		return "uint16"
	case "":
		return "uint32"
	default:
		return name
	}
}

// exportName turns a schema identifier into an exported Go identifier.
// Schema identifiers are already written in upper- or lowerCamelCase, so
// this only needs to capitalise the first rune.
func exportName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func fieldWidth(f schema.Field) int {
	switch f.Kind {
	case schema.FieldOffset:
		return f.OffsetWidth / 8
	case schema.FieldScalar:
		return scalarWidth(f.ScalarType)
	default:
		return 0
	}
}

func elemWidth(f schema.Field) int {
	if f.ElemKind != schema.FieldScalar {
		return 0
	}
	return scalarWidth(f.ElemType)
}

func scalarWidth(name string) int {
	switch name {
	case "uint8", "int8":
		return 1
	case "uint16", "int16", "F2Dot14", "GlyphID":
		return 2
	case "uint24":
		return 3
	default:
		return 4
	}
}

// SortByName orders items for deterministic output; codegen never relies
// on schema source order for generated identifier layout.
func SortByName(items []schema.Item) []schema.Item {
	out := make([]schema.Item, len(items))
	copy(out, items)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

var funcMap = template.FuncMap{
	"width":     fieldWidth,
	"elemWidth": elemWidth,
}
