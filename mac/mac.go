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

// Package mac converts between the Macintosh Roman encoding (platform 1,
// encoding 0, used by some legacy "cmap", "name" and "post" subtables) and
// Unicode.
package mac

import (
	"golang.org/x/text/encoding/charmap"
)

// Decode converts a string of Macintosh Roman encoded bytes to a Go string.
func Decode(s []byte) string {
	out, _ := charmap.MacintoshRoman.NewDecoder().Bytes(s)
	return string(out)
}

// DecodeOne decodes a single Macintosh Roman code point.
func DecodeOne(c byte) rune {
	r := []rune(Decode([]byte{c}))
	if len(r) != 1 {
		return 0xFFFD
	}
	return r[0]
}

// Encode converts a Go string to Macintosh Roman encoded bytes.  Runes
// which cannot be represented are dropped.
func Encode(s string) []byte {
	out, _ := charmap.MacintoshRoman.NewEncoder().Bytes([]byte(s))
	return out
}
