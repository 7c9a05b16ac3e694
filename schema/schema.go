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

// Package schema holds the data model for table/record/enum/flags/format-group
// declarations parsed from a schema source document, and the recursive-descent
// parser that produces it. otf/codegen walks this model to emit, for each
// item, a Go type with Parse, EncodeLen, Encode and Validate code.
package schema

// ItemKind classifies a top-level schema declaration.
type ItemKind int

const (
	// KindTable is a fixed-layout record with a tag identifying an sfnt
	// table, or a nested record referenced only by offset fields.
	KindTable ItemKind = iota
	// KindRecord is an inline struct used inside arrays or as a field value;
	// it never carries a top-level 4-byte tag.
	KindRecord
	// KindFormatGroup is a tagged union discriminated by a leading integer
	// "format" field; each variant is itself a Table or Record item.
	KindFormatGroup
	// KindEnum is a small integer-valued enumeration.
	KindEnum
	// KindFlags is a bitmask over a small integer type.
	KindFlags
	// KindGenericGroup is a union whose variants select a generic type
	// parameter rather than a format discriminator.
	KindGenericGroup
)

func (k ItemKind) String() string {
	switch k {
	case KindTable:
		return "table"
	case KindRecord:
		return "record"
	case KindFormatGroup:
		return "format_group"
	case KindEnum:
		return "enum"
	case KindFlags:
		return "flags"
	case KindGenericGroup:
		return "generic_group"
	default:
		return "unknown"
	}
}

// Item is one schema declaration: a table, record, format group, enum,
// flags set, or generic group.
type Item struct {
	Name string
	Kind ItemKind
	Span Span

	Doc string

	// Tag is the 4-byte top-level sfnt table tag, set only when the `tag`
	// attribute is present on a table item.
	Tag string

	// Lifetime records the `lifetime` attribute. Generated code copies
	// every field out of the input, so codegen does not act on it.
	Lifetime bool

	// SkipFontWrite records the `skip_font_write` attribute (the item is
	// read-only in this module); codegen does not act on it.
	SkipFontWrite bool
	// SkipFromObj omits the generated Parse function (the item is
	// write-only; it has no read-side binary layout to parse).
	SkipFromObj bool
	// GenericOffset marks a container item whose offset-target field is
	// emitted generic over the target type, rather than fixed to one Item.
	GenericOffset bool
	// Phantom marks a marker type carrying no wire representation of its
	// own (used as a read_args/type-parameter placeholder).
	Phantom bool

	// ReadArgs lists extra parameters the generated reader needs beyond the
	// byte slice itself (e.g. a sibling table's glyph count).
	ReadArgs []Arg

	// Fields holds the ordered field list for KindTable/KindRecord items.
	Fields []Field

	// Variants holds the discriminated alternatives for KindFormatGroup and
	// KindGenericGroup items.
	Variants []Variant

	// Values holds the name/value pairs for KindEnum and KindFlags items,
	// and BaseType holds their wire integer type (e.g. "uint16").
	Values   []EnumValue
	BaseType string
}

// Arg is a named, typed parameter required to parse a table with read-time
// arguments (the schema's `read_args` attribute).
type Arg struct {
	Name string
	Type string
}

// Variant is one alternative of a format group or generic group: a format
// (or type-parameter) discriminator paired with the item it selects.
type Variant struct {
	Format   int64  // the `format` attribute's literal value, for format groups
	TypeArg  string // the selected generic type parameter, for generic groups
	ItemName string // name of the Table/Record item providing the variant's fields
	Span     Span
}

// EnumValue is one named constant of an enum or flags item.
type EnumValue struct {
	Name  string
	Value int64
	Doc   string
}

// FieldKind distinguishes the field-type shapes spec.md §3 enumerates.
type FieldKind int

const (
	// FieldScalar is a big-endian integer or fixed-point wire type.
	FieldScalar FieldKind = iota
	// FieldOffset is an offset (16/24/32-bit) to a target item.
	FieldOffset
	// FieldArray is a count-delimited array of inner field types.
	FieldArray
	// FieldRecord is an inline reference to a Record/FormatGroup item,
	// optionally with read-time arguments.
	FieldRecord
	// FieldComputed is `compile`-only: present in the builder, absent from
	// the reader, its value is computed from other fields when writing.
	FieldComputed
)

// Field is one named member of a Table or Record item.
type Field struct {
	Name string
	Kind FieldKind
	Span Span
	Doc  string

	// ScalarType names the wire scalar type (e.g. "uint16", "int16",
	// "Fixed", "F2Dot14", "Tag") for FieldScalar, and the element type
	// for FieldArray when the elements are themselves scalars.
	ScalarType string

	// OffsetWidth is 16, 24, or 32 for FieldOffset.
	OffsetWidth int
	// OffsetTarget names the Item the offset resolves to.
	OffsetTarget string
	// Nullable marks an offset field whose zero value means "absent"
	// rather than "points at the start of the containing table".
	Nullable bool

	// ElemKind/ElemType/ElemTarget describe a FieldArray's element: either
	// a scalar (ElemKind==FieldScalar, ElemType set), an inline record
	// (ElemKind==FieldRecord, ElemTarget set), or an offset
	// (ElemKind==FieldOffset, ElemTarget/OffsetWidth set).
	ElemKind   FieldKind
	ElemType   string
	ElemTarget string

	// RecordTarget names the Item a FieldRecord field's inline value comes
	// from.
	RecordTarget string
	// ReadArgs supplies values for the target's read_args, by expression.
	ReadArgs []string

	// Attributes recognised per spec.md §4.A.
	Format      *int64  // `format = <literal>`: this field is a format group's discriminator
	Version     bool    // `version`: conditional on the table's version field
	Available   string  // `available(<expr>)`: raw condition expression
	Count       string  // `count(<expr>)`; the literal ".." means "to end of parent"
	CountToEnd  bool
	Compile     string // `compile(<expr>)`; the literal "skip" omits write-side computation
	CompileSkip bool
	CompileType string
	OffsetGetter     string
	OffsetDataMethod string
	OffsetAdjustment string
	ReadWith         []string
	ReadOffsetWith   []string
	TraverseWith     string
	ToOwned          string
	Validate         string
	ValidateSkip     bool
	SkipGetter       bool
	Hidden           bool

	// Use classifies when an expression field (one referenced by a
	// sibling's count/available/compile expression) is needed: Parse (only
	// while reading), Runtime (only while writing), or Both.
	Use FieldUse
}

// FieldUse classifies whether a field referenced by a `$name` expression
// is needed while reading, while writing, or both.
type FieldUse int

const (
	UseNeither FieldUse = iota
	UseParse
	UseRuntime
	UseBoth
)

// Span locates a schema error in the source document, 1-based.
type Span struct {
	Line, Col int
}
