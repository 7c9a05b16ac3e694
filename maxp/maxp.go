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

// Package maxp reads and writes the OpenType "maxp" table.
// https://learn.microsoft.com/en-us/typography/opentype/spec/maxp
//
// Fonts with CFF/CFF2 outlines use table version 0.5, which stores only
// the glyph count. Fonts with TrueType ("glyf") outlines use version
// 1.0, which additionally records the resource limits a TrueType
// rasterizer must be prepared for (maximum points per glyph, maximum
// component nesting depth, and so on).
package maxp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"seehuhn.de/go/otf"
)

// Info represents the information in a font's "maxp" table.
type Info struct {
	NumGlyphs int

	// TrueType is set for version 1.0 tables (fonts with "glyf" outlines).
	// When false, only NumGlyphs is meaningful and Encode writes a
	// version 0.5 table.
	TrueType bool

	MaxPoints             uint16
	MaxContours           uint16
	MaxCompositePoints    uint16
	MaxCompositeContours  uint16
	MaxZones              uint16
	MaxTwilightPoints     uint16
	MaxStorage            uint16
	MaxFunctionDefs       uint16
	MaxInstructionDefs    uint16
	MaxStackElements      uint16
	MaxSizeOfInstructions uint16
	MaxComponentElements  uint16
	MaxComponentDepth     uint16
}

// Read decodes the binary representation of the "maxp" table.
func Read(r io.Reader) (*Info, error) {
	var header [6]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	version := binary.BigEndian.Uint32(header[0:4])
	numGlyphs := int(binary.BigEndian.Uint16(header[4:6]))

	info := &Info{NumGlyphs: numGlyphs}

	switch version {
	case 0x00005000: // 0.5
		return info, nil
	case 0x00010000: // 1.0
		info.TrueType = true
		var rest binaryMaxpV1Tail
		if err := binary.Read(r, binary.BigEndian, &rest); err != nil {
			return nil, err
		}
		info.MaxPoints = rest.MaxPoints
		info.MaxContours = rest.MaxContours
		info.MaxCompositePoints = rest.MaxCompositePoints
		info.MaxCompositeContours = rest.MaxCompositeContours
		info.MaxZones = rest.MaxZones
		info.MaxTwilightPoints = rest.MaxTwilightPoints
		info.MaxStorage = rest.MaxStorage
		info.MaxFunctionDefs = rest.MaxFunctionDefs
		info.MaxInstructionDefs = rest.MaxInstructionDefs
		info.MaxStackElements = rest.MaxStackElements
		info.MaxSizeOfInstructions = rest.MaxSizeOfInstructions
		info.MaxComponentElements = rest.MaxComponentElements
		info.MaxComponentDepth = rest.MaxComponentDepth
		return info, nil
	default:
		return nil, &otf.NotSupportedError{
			Table:   "maxp",
			Feature: fmt.Sprintf("table version %08x", version),
		}
	}
}

// Encode returns the binary representation of the "maxp" table.
func (info *Info) Encode() ([]byte, error) {
	if info.NumGlyphs < 1 || info.NumGlyphs >= 1<<16 {
		return nil, &otf.InvalidFontError{
			Table:  "maxp",
			Reason: "NumGlyphs out of range",
		}
	}

	buf := &bytes.Buffer{}
	if !info.TrueType {
		var header [6]byte
		binary.BigEndian.PutUint32(header[0:4], 0x00005000)
		binary.BigEndian.PutUint16(header[4:6], uint16(info.NumGlyphs))
		buf.Write(header[:])
		return buf.Bytes(), nil
	}

	var header [6]byte
	binary.BigEndian.PutUint32(header[0:4], 0x00010000)
	binary.BigEndian.PutUint16(header[4:6], uint16(info.NumGlyphs))
	buf.Write(header[:])

	tail := binaryMaxpV1Tail{
		MaxPoints:             info.MaxPoints,
		MaxContours:           info.MaxContours,
		MaxCompositePoints:    info.MaxCompositePoints,
		MaxCompositeContours:  info.MaxCompositeContours,
		MaxZones:              info.MaxZones,
		MaxTwilightPoints:     info.MaxTwilightPoints,
		MaxStorage:            info.MaxStorage,
		MaxFunctionDefs:       info.MaxFunctionDefs,
		MaxInstructionDefs:    info.MaxInstructionDefs,
		MaxStackElements:      info.MaxStackElements,
		MaxSizeOfInstructions: info.MaxSizeOfInstructions,
		MaxComponentElements:  info.MaxComponentElements,
		MaxComponentDepth:     info.MaxComponentDepth,
	}
	_ = binary.Write(buf, binary.BigEndian, &tail)
	return buf.Bytes(), nil
}

type binaryMaxpV1Tail struct {
	MaxPoints             uint16
	MaxContours           uint16
	MaxCompositePoints    uint16
	MaxCompositeContours  uint16
	MaxZones              uint16
	MaxTwilightPoints     uint16
	MaxStorage            uint16
	MaxFunctionDefs       uint16
	MaxInstructionDefs    uint16
	MaxStackElements      uint16
	MaxSizeOfInstructions uint16
	MaxComponentElements  uint16
	MaxComponentDepth     uint16
}
