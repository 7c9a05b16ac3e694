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

import "fmt"

// ErrorKind classifies a schema source document defect.
type ErrorKind int

const (
	// ErrUnknownAttribute: an attribute name not in the recognised set.
	ErrUnknownAttribute ErrorKind = iota
	// ErrMissingAttribute: a required attribute is absent (e.g. `format`
	// on a format group variant).
	ErrMissingAttribute
	// ErrCountNotLast: a `count(..)` ("to end of parent") field is
	// followed by further fields.
	ErrCountNotLast
	// ErrForwardReference: a field's count/available/read_args expression
	// names a sibling field that is declared later and needed at parse
	// time, so it cannot yet have a value when the reference is reached.
	ErrForwardReference
	// ErrSyntax: a lexical or grammatical defect in the source document.
	ErrSyntax
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnknownAttribute:
		return "unknown attribute"
	case ErrMissingAttribute:
		return "missing required attribute"
	case ErrCountNotLast:
		return "count(..) field is not the last field"
	case ErrForwardReference:
		return "forward reference to a field needed at parse time"
	case ErrSyntax:
		return "syntax error"
	default:
		return "schema error"
	}
}

// Error reports a defect found while lexing, parsing or validating a schema
// source document.
type Error struct {
	Kind    ErrorKind
	Span    Span
	Item    string // enclosing item name, if any
	Field   string // enclosing field name, if any
	Message string
}

func (e *Error) Error() string {
	loc := fmt.Sprintf("%d:%d", e.Span.Line, e.Span.Col)
	switch {
	case e.Item != "" && e.Field != "":
		return fmt.Sprintf("%s: %s: %s.%s: %s", loc, e.Kind, e.Item, e.Field, e.Message)
	case e.Item != "":
		return fmt.Sprintf("%s: %s: %s: %s", loc, e.Kind, e.Item, e.Message)
	default:
		return fmt.Sprintf("%s: %s: %s", loc, e.Kind, e.Message)
	}
}
