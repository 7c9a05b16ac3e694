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

package subset

import "fmt"

// TableError records a failure while subsetting a single table. Most
// tables can simply be dropped or passed through unchanged when they
// fail to subset cleanly; only "cmap" failures are fatal to the whole
// operation, since a font without a usable cmap cannot be shaped at all.
type TableError struct {
	Tag   string
	Cause error
}

func (e *TableError) Error() string {
	return fmt.Sprintf("subset %q: %v", e.Tag, e.Cause)
}

func (e *TableError) Unwrap() error {
	return e.Cause
}

// Errors collects the non-fatal TableErrors encountered while building a
// subset font. The caller decides whether any of them matter; Font itself
// only treats a "cmap" failure as fatal and returns it directly instead of
// appending it here.
type Errors []*TableError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "no errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%v (and %d more errors)", e[0], len(e)-1)
}

// Add appends a new TableError built from tag and cause, unless cause is
// nil, and returns the updated slice.
func (e Errors) Add(tag string, cause error) Errors {
	if cause == nil {
		return e
	}
	return append(e, &TableError{Tag: tag, Cause: cause})
}
