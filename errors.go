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

// Package otf provides shared types and error values used throughout the
// font reading, generation and subsetting packages.
package otf

import "fmt"

// InvalidFontError is returned when a font file violates the structural
// invariants of the OpenType/TrueType format and cannot be decoded.
type InvalidFontError struct {
	// Table is the name of the table or subsystem which detected the
	// problem, for example "cmap" or "glyf".
	Table string

	// Reason describes what went wrong.
	Reason string
}

func (err *InvalidFontError) Error() string {
	return fmt.Sprintf("%s: invalid font: %s", err.Table, err.Reason)
}

// NotSupportedError is returned when a font uses a feature which is
// structurally valid but which this module does not implement.
type NotSupportedError struct {
	// Table is the name of the table or subsystem involved.
	Table string

	// Feature names the unsupported feature.
	Feature string
}

func (err *NotSupportedError) Error() string {
	return fmt.Sprintf("%s: not supported: %s", err.Table, err.Feature)
}

// IsUnsupported reports whether err is (or wraps) a *NotSupportedError.
func IsUnsupported(err error) bool {
	_, ok := err.(*NotSupportedError)
	return ok
}

// IsInvalid reports whether err is (or wraps) an *InvalidFontError.
func IsInvalid(err error) bool {
	_, ok := err.(*InvalidFontError)
	return ok
}

// MissingTableError is returned when a required table is absent from a
// font's table directory.
type MissingTableError struct {
	Table string
}

func (err *MissingTableError) Error() string {
	return fmt.Sprintf("missing required table %q", err.Table)
}

// IsMissing reports whether err indicates that a table is absent.
func IsMissing(err error) bool {
	_, ok := err.(*MissingTableError)
	return ok
}
