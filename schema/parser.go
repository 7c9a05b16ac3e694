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
	"fmt"
	"strconv"
	"strings"
)

// Parse decodes a schema source document into its items. The parser is
// recursive descent; errors are raised as panics carrying an *Error and
// recovered here.
func Parse(input string) (items []Item, err error) {
	_, tokens := lex(input)
	p := &parser{tokens: tokens}

	defer func() {
		if r := recover(); r != nil {
			for range tokens {
				// drain the lexer goroutine
			}
			if e, ok := r.(*Error); ok {
				err = e
			} else {
				panic(r)
			}
		}
	}()

	items = p.parseDocument()
	p.checkVariants(items)
	classifyFieldUse(items)
	return items, nil
}

type parser struct {
	tokens  <-chan item
	backlog []item
}

func (p *parser) readItem() item {
	if n := len(p.backlog); n > 0 {
		it := p.backlog[n-1]
		p.backlog = p.backlog[:n-1]
		return it
	}
	it, ok := <-p.tokens
	if !ok {
		return item{typ: itemEOF}
	}
	return it
}

func (p *parser) unread(it item) {
	p.backlog = append(p.backlog, it)
}

func (p *parser) fatal(kind ErrorKind, span Span, itemName, fieldName, format string, args ...interface{}) {
	panic(&Error{Kind: kind, Span: span, Item: itemName, Field: fieldName, Message: fmt.Sprintf(format, args...)})
}

func (p *parser) expect(t itemType, what string) item {
	it := p.readItem()
	if it.typ != t {
		p.fatal(ErrSyntax, it.span(), "", "", "expected %s, got %s", what, it)
	}
	return it
}

func (p *parser) accept(t itemType) (item, bool) {
	it := p.readItem()
	if it.typ == t {
		return it, true
	}
	p.unread(it)
	return item{}, false
}

// parseDocument reads a sequence of top-level item declarations until EOF.
func (p *parser) parseDocument() []Item {
	var items []Item
	for {
		it := p.readItem()
		if it.typ == itemEOF {
			return items
		}
		if it.typ == itemError {
			p.fatal(ErrSyntax, it.span(), "", "", "%s", it.val)
		}
		if it.typ != itemIdentifier {
			p.fatal(ErrSyntax, it.span(), "", "", "expected item kind keyword, got %s", it)
		}
		items = append(items, p.parseItem(it))
	}
}

var kindKeywords = map[string]ItemKind{
	"table":         KindTable,
	"record":        KindRecord,
	"format_group":  KindFormatGroup,
	"enum":          KindEnum,
	"flags":         KindFlags,
	"generic_group": KindGenericGroup,
}

func (p *parser) parseItem(kw item) Item {
	kind, ok := kindKeywords[kw.val]
	if !ok {
		p.fatal(ErrSyntax, kw.span(), "", "", "unknown item kind %q", kw.val)
	}

	nameTok := p.expect(itemIdentifier, "item name")
	it := Item{Name: nameTok.val, Kind: kind, Span: kw.span()}

	p.expect(itemBraceOpen, "'{'")

	switch kind {
	case KindEnum, KindFlags:
		p.parseEnumBody(&it)
	default:
		p.parseStructBody(&it)
		p.checkForwardReferences(&it)
	}

	p.expect(itemBraceClose, "'}'")
	return it
}

func (p *parser) parseEnumBody(it *Item) {
	for {
		tok := p.readItem()
		if tok.typ == itemBraceClose {
			p.unread(tok)
			return
		}
		if tok.typ != itemIdentifier {
			p.fatal(ErrSyntax, tok.span(), it.Name, "", "expected enum member or attribute, got %s", tok)
		}
		if tok.val == "base" {
			p.expect(itemEqual, "'='")
			typeTok := p.expect(itemIdentifier, "base type")
			it.BaseType = typeTok.val
			p.optionalSemicolon()
			continue
		}
		p.expect(itemEqual, "'='")
		valTok := p.expect(itemInteger, "integer value")
		n, err := parseInt(valTok.val)
		if err != nil {
			p.fatal(ErrSyntax, valTok.span(), it.Name, tok.val, "invalid integer literal %q", valTok.val)
		}
		it.Values = append(it.Values, EnumValue{Name: tok.val, Value: n})
		p.optionalSemicolon()
	}
}

func (p *parser) parseStructBody(it *Item) {
	for {
		tok := p.readItem()
		if tok.typ == itemBraceClose {
			p.unread(tok)
			return
		}
		switch {
		case tok.typ == itemIdentifier && tok.val == "field":
			f := p.parseField(it)
			if len(it.Fields) > 0 && it.Fields[len(it.Fields)-1].CountToEnd {
				p.fatal(ErrCountNotLast, f.Span, it.Name, f.Name, "a count(..) field must be the last field in %s", it.Name)
			}
			it.Fields = append(it.Fields, f)
		case tok.typ == itemIdentifier && tok.val == "variant":
			it.Variants = append(it.Variants, p.parseVariant())
		case tok.typ == itemIdentifier:
			p.parseItemAttribute(it, tok)
		default:
			p.fatal(ErrSyntax, tok.span(), it.Name, "", "expected field, variant or attribute, got %s", tok)
		}
	}
}

func (p *parser) parseItemAttribute(it *Item, nameTok item) {
	name := nameTok.val
	switch name {
	case "tag":
		p.expect(itemEqual, "'='")
		it.Tag = unquote(p.expect(itemString, "string").val)
	case "doc":
		p.expect(itemEqual, "'='")
		it.Doc = unquote(p.expect(itemString, "string").val)
	case "lifetime":
		it.Lifetime = true
	case "skip_font_write":
		it.SkipFontWrite = true
	case "skip_from_obj":
		it.SkipFromObj = true
	case "generic_offset":
		it.GenericOffset = true
	case "phantom":
		it.Phantom = true
	case "read_args":
		it.ReadArgs = p.parseArgList()
	default:
		p.fatal(ErrUnknownAttribute, nameTok.span(), it.Name, "", "unknown item attribute %q", name)
	}
	p.optionalSemicolon()
}

func (p *parser) parseArgList() []Arg {
	p.expect(itemParenOpen, "'('")
	var args []Arg
	for {
		tok := p.readItem()
		if tok.typ == itemParenClose {
			return args
		}
		if tok.typ != itemIdentifier {
			p.fatal(ErrSyntax, tok.span(), "", "", "expected argument name, got %s", tok)
		}
		p.expect(itemColon, "':'")
		typeTok := p.expect(itemIdentifier, "argument type")
		args = append(args, Arg{Name: tok.val, Type: typeTok.val})
		if c, ok := p.accept(itemComma); ok {
			_ = c
			continue
		}
	}
}

func (p *parser) parseVariant() Variant {
	v := Variant{}
	tok := p.readItem()
	v.Span = tok.span()
	if tok.typ == itemInteger {
		n, err := parseInt(tok.val)
		if err != nil {
			p.fatal(ErrSyntax, tok.span(), "", "", "invalid format literal %q", tok.val)
		}
		v.Format = n
	} else if tok.typ == itemIdentifier {
		v.TypeArg = tok.val
	} else {
		p.fatal(ErrSyntax, tok.span(), "", "", "expected format literal or type parameter, got %s", tok)
	}
	p.expect(itemColon, "':'")
	nameTok := p.expect(itemIdentifier, "variant item name")
	v.ItemName = nameTok.val
	p.optionalSemicolon()
	return v
}

func (p *parser) parseField(it *Item) Field {
	nameTok := p.expect(itemIdentifier, "field name")
	f := Field{Name: nameTok.val, Span: nameTok.span()}

	p.expect(itemColon, "':'")
	p.parseFieldType(&f)

	for {
		tok := p.readItem()
		if tok.typ == itemSemicolon || tok.typ == itemBraceClose {
			p.unread(tok)
			break
		}
		if tok.typ != itemIdentifier {
			p.fatal(ErrSyntax, tok.span(), it.Name, f.Name, "expected field attribute, got %s", tok)
		}
		p.parseFieldAttribute(it, &f, tok)
	}
	p.optionalSemicolon()
	return f
}

// parseFieldType parses the scalar/offset/array/record type grammar:
//
//	uint16 | Fixed | Tag                         (scalar)
//	offset16(Target) | offset32(Target, nullable) (offset)
//	[uint16] | [Target]                          (array of scalar/record)
//	Target(arg, ...)                              (inline record, read_args)
//	compile                                       (FieldComputed, no wire shape)
func (p *parser) parseFieldType(f *Field) {
	tok := p.readItem()
	switch {
	case tok.typ == itemBracketOpen:
		f.Kind = FieldArray
		p.parseElemType(f)
		p.expect(itemBracketClose, "']'")
		p.expect(itemParenOpen, "'('")
		f.Count = p.parseExprUntil(itemParenClose)
		if f.Count == ".." {
			f.CountToEnd = true
		}
	case tok.typ == itemIdentifier && strings.HasPrefix(tok.val, "offset"):
		f.Kind = FieldOffset
		width, err := strconv.Atoi(strings.TrimPrefix(tok.val, "offset"))
		if err != nil || (width != 16 && width != 24 && width != 32) {
			p.fatal(ErrSyntax, tok.span(), "", f.Name, "invalid offset width in %q", tok.val)
		}
		f.OffsetWidth = width
		p.expect(itemParenOpen, "'('")
		targetTok := p.expect(itemIdentifier, "offset target")
		f.OffsetTarget = targetTok.val
		if _, ok := p.accept(itemComma); ok {
			nullTok := p.expect(itemIdentifier, "\"nullable\"")
			if nullTok.val != "nullable" {
				p.fatal(ErrSyntax, nullTok.span(), "", f.Name, "expected \"nullable\", got %s", nullTok)
			}
			f.Nullable = true
		}
		p.expect(itemParenClose, "')'")
	case tok.typ == itemIdentifier && tok.val == "compile":
		f.Kind = FieldComputed
	case tok.typ == itemIdentifier:
		// Either a bare scalar type name, or an inline record reference
		// optionally followed by a read_args argument list.
		next := p.readItem()
		if next.typ == itemParenOpen {
			f.Kind = FieldRecord
			f.RecordTarget = tok.val
			for {
				arg := p.readItem()
				if arg.typ == itemParenClose {
					break
				}
				p.unread(arg)
				f.ReadArgs = append(f.ReadArgs, p.parseExprUntilAny(itemComma, itemParenClose))
				if c := p.readItem(); c.typ == itemParenClose {
					break
				}
			}
		} else {
			p.unread(next)
			f.Kind = FieldScalar
			f.ScalarType = tok.val
		}
	default:
		p.fatal(ErrSyntax, tok.span(), "", f.Name, "expected a field type, got %s", tok)
	}
}

func (p *parser) parseElemType(f *Field) {
	tok := p.expect(itemIdentifier, "element type")
	next := p.readItem()
	if next.typ == itemIdentifier && next.val == "offset" {
		// not reached: offsets inside arrays are written as offsetNN, handled below
	}
	p.unread(next)
	if strings.HasPrefix(tok.val, "offset") {
		f.ElemKind = FieldOffset
		width, err := strconv.Atoi(strings.TrimPrefix(tok.val, "offset"))
		if err != nil {
			p.fatal(ErrSyntax, tok.span(), "", f.Name, "invalid offset width in %q", tok.val)
		}
		f.OffsetWidth = width
		p.expect(itemParenOpen, "'('")
		targetTok := p.expect(itemIdentifier, "offset target")
		f.ElemTarget = targetTok.val
		p.expect(itemParenClose, "')'")
		return
	}
	if isKnownScalar(tok.val) {
		f.ElemKind = FieldScalar
		f.ElemType = tok.val
		return
	}
	f.ElemKind = FieldRecord
	f.ElemTarget = tok.val
}

var knownScalars = map[string]bool{
	"uint8": true, "int8": true, "uint16": true, "int16": true,
	"uint24": true, "uint32": true, "int32": true,
	"Fixed": true, "F2Dot14": true, "F26Dot6": true, "Tag": true,
	"GlyphID": true,
}

func isKnownScalar(name string) bool { return knownScalars[name] }

func (p *parser) parseFieldAttribute(it *Item, f *Field, nameTok item) {
	name := nameTok.val
	switch name {
	case "nullable":
		f.Nullable = true
	case "version":
		f.Version = true
	case "skip_getter":
		f.SkipGetter = true
	case "hidden":
		f.Hidden = true
	case "format":
		p.expect(itemEqual, "'='")
		valTok := p.expect(itemInteger, "integer literal")
		n, err := parseInt(valTok.val)
		if err != nil {
			p.fatal(ErrSyntax, valTok.span(), it.Name, f.Name, "invalid format literal %q", valTok.val)
		}
		f.Format = &n
	case "available":
		f.Available = p.parseParenExpr()
	case "count":
		f.Count = p.parseParenExpr()
		if f.Count == ".." {
			f.CountToEnd = true
		}
	case "compile":
		f.Compile = p.parseParenExpr()
		if f.Compile == "skip" {
			f.CompileSkip = true
		}
	case "compile_type":
		f.CompileType = p.parseParenExpr()
	case "offset_getter":
		f.OffsetGetter = p.parseParenExpr()
	case "offset_data_method":
		f.OffsetDataMethod = p.parseParenExpr()
	case "offset_adjustment":
		f.OffsetAdjustment = p.parseParenExpr()
	case "read_with":
		f.ReadWith = p.parseIdentList()
	case "read_offset_with":
		f.ReadOffsetWith = p.parseIdentList()
	case "traverse_with":
		f.TraverseWith = p.parseParenExpr()
	case "to_owned":
		f.ToOwned = p.parseParenExpr()
	case "validate":
		f.Validate = p.parseParenExpr()
		if f.Validate == "skip" {
			f.ValidateSkip = true
		}
	default:
		p.fatal(ErrUnknownAttribute, nameTok.span(), it.Name, f.Name, "unknown field attribute %q", name)
	}
}

func (p *parser) parseParenExpr() string {
	p.expect(itemParenOpen, "'('")
	return p.parseExprUntil(itemParenClose)
}

func (p *parser) parseIdentList() []string {
	p.expect(itemParenOpen, "'('")
	var names []string
	for {
		tok := p.expect(itemIdentifier, "identifier")
		names = append(names, tok.val)
		if _, ok := p.accept(itemComma); !ok {
			break
		}
	}
	p.expect(itemParenClose, "')'")
	return names
}

// parseExprUntil reconstructs the raw token text of a count/available/
// compile expression up to (and consuming) the closing delimiter. The
// generator re-parses this text itself when it needs to resolve `$name`
// references; the schema package's job ends at preserving it verbatim.
func (p *parser) parseExprUntil(end itemType) string {
	return p.parseExprUntilAny(end)
}

func (p *parser) parseExprUntilAny(ends ...itemType) string {
	var b strings.Builder
	depth := 0
	afterDollar := false
	for {
		tok := p.readItem()
		isEnd := false
		for _, e := range ends {
			if tok.typ == e && depth == 0 {
				isEnd = true
			}
		}
		if isEnd {
			return b.String()
		}
		if tok.typ == itemParenOpen {
			depth++
		} else if tok.typ == itemParenClose {
			depth--
		}
		if tok.typ == itemEOF {
			p.fatal(ErrSyntax, tok.span(), "", "", "unterminated expression")
		}
		if tok.typ == itemDollar {
			if b.Len() > 0 {
				b.WriteString(" ")
			}
			b.WriteString("$")
			afterDollar = true
			continue
		}
		if b.Len() > 0 && !afterDollar {
			b.WriteString(" ")
		}
		afterDollar = false
		if tok.typ == itemDotDot {
			b.WriteString("..")
		} else {
			b.WriteString(tok.val)
		}
	}
}

func (p *parser) optionalSemicolon() {
	p.accept(itemSemicolon)
}

func unquote(s string) string {
	s = strings.TrimPrefix(s, "\"")
	s = strings.TrimSuffix(s, "\"")
	return s
}

func parseInt(s string) (int64, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseInt(s[2:], 16, 64)
	}
	return strconv.ParseInt(s, 10, 64)
}
