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

// Command otfgen reads a schema source file and writes the Go source
// otf/codegen renders from it. It is meant to be invoked from a
// //go:generate directive next to the schema it compiles, e.g.
//
//	//go:generate go run seehuhn.de/go/otf/cmd/otfgen -pkg os2 -o tables_generated.go os2.schema
package main

import (
	"flag"
	"fmt"
	"os"

	"seehuhn.de/go/otf/codegen"
	"seehuhn.de/go/otf/schema"
)

func main() {
	pkg := flag.String("pkg", "", "package name for the generated file (required)")
	out := flag.String("o", "", "output path (default: stdout)")
	flag.Parse()

	if flag.NArg() != 1 || *pkg == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -pkg NAME [-o OUTPUT] schema-file\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	schemaFile := flag.Arg(0)

	src, err := os.ReadFile(schemaFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading schema file: %v\n", err)
		os.Exit(1)
	}

	items, err := schema.Parse(string(src))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing %s: %v\n", schemaFile, err)
		os.Exit(1)
	}

	code, err := codegen.Generate(*pkg, codegen.SortByName(items))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating code for %s: %v\n", schemaFile, err)
		os.Exit(1)
	}

	if *out == "" {
		os.Stdout.Write(code)
		return
	}

	if err := os.WriteFile(*out, code, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%d bytes) from %s\n", *out, len(code), schemaFile)
}
