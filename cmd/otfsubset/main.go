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

// Command otfsubset reads an OpenType/TrueType font, keeps only the
// glyphs named by -gids and -text (plus whatever they pull in through
// composite glyphs, VARC components, and optionally GSUB lookups), and
// writes the result to a new font file.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"seehuhn.de/go/otf/glyph"
	"seehuhn.de/go/otf/sfnt"
	"seehuhn.de/go/otf/subset"
)

func main() {
	gidList := flag.String("gids", "", "comma-separated glyph IDs/ranges to keep, e.g. 1,3,10-20 (always includes glyph 0)")
	text := flag.String("text", "", "characters whose glyphs must be kept")
	keepNames := flag.Bool("keep-names", false, "preserve PostScript glyph names in the \"post\" table")
	keepHinting := flag.Bool("keep-hinting", false, "preserve TrueType instruction bytecode")
	lookupClosure := flag.Bool("lookup-closure", false, "also keep every glyph reachable through GSUB substitution rules")
	out := flag.String("o", "", "output path (required)")
	flag.Parse()

	if flag.NArg() != 1 || *out == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] -o OUTPUT input-font\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	inputFile := flag.Arg(0)

	retain, err := parseGIDs(*gidList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -gids: %v\n", err)
		os.Exit(1)
	}
	retain[0] = true // .notdef

	unicodes := make(map[rune]bool)
	for _, r := range *text {
		unicodes[r] = true
	}

	data, err := os.ReadFile(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", inputFile, err)
		os.Exit(1)
	}

	in, err := sfnt.Read(bytes.NewReader(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading font: %v\n", err)
		os.Exit(1)
	}

	opt := subset.Options{
		Retain:        retain,
		Unicodes:      unicodes,
		KeepNames:     *keepNames,
		KeepHinting:   *keepHinting,
		LookupClosure: *lookupClosure,
	}

	plan, err := subset.NewPlan(opt, in.Cmap, in.Glyf, in.GSUB, in.VARC)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error planning subset: %v\n", err)
		os.Exit(1)
	}

	inTables := &subset.Tables{
		Glyf: in.Glyf,
		Hmtx: in.Hmtx,
		Post: in.Post,
		Maxp: in.Maxp,
		Hhea: in.Hhea,
		Cmap: in.Cmap,
		GSUB: in.GSUB,
		GPOS: in.GPOS,
		GDEF: in.GDEF,
		VARC: in.VARC,
	}
	outTables, errs, err := subset.Font(inTables, plan)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error subsetting font: %v\n", err)
		os.Exit(1)
	}
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "warning: %s: %v\n", e.Tag, e.Cause)
	}

	result := &sfnt.Font{
		ScalerType: in.ScalerType,
		Head:       in.Head,
		Hhea:       outTables.Hhea,
		Maxp:       outTables.Maxp,
		Hmtx:       outTables.Hmtx,
		OS2:        in.OS2,
		Name:       in.Name,
		Post:       outTables.Post,
		Cmap:       outTables.Cmap,
		Glyf:       outTables.Glyf,
		GSUB:       outTables.GSUB,
		GPOS:       outTables.GPOS,
		GDEF:       outTables.GDEF,
		VARC:       outTables.VARC,
	}
	if len(in.Kern) != 0 {
		result.Kern = in.Kern.Subset(plan.NewGID)
	}

	outFile, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", *out, err)
		os.Exit(1)
	}
	defer outFile.Close()

	n, err := result.Write(outFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%d bytes, %d glyphs)\n", *out, n, len(plan.OldGID))
}

// parseGIDs parses a comma-separated list of glyph IDs and inclusive
// ranges ("3,10-20") into a keep-set. An empty string yields an empty,
// non-nil set.
func parseGIDs(s string) (map[glyph.ID]bool, error) {
	keep := make(map[glyph.ID]bool)
	s = strings.TrimSpace(s)
	if s == "" {
		return keep, nil
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			loN, err := strconv.ParseUint(lo, 10, 16)
			if err != nil {
				return nil, err
			}
			hiN, err := strconv.ParseUint(hi, 10, 16)
			if err != nil {
				return nil, err
			}
			for g := loN; g <= hiN; g++ {
				keep[glyph.ID(g)] = true
			}
			continue
		}
		n, err := strconv.ParseUint(part, 10, 16)
		if err != nil {
			return nil, err
		}
		keep[glyph.ID(n)] = true
	}
	return keep, nil
}
