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

package graph

import (
	"bytes"
	"testing"
)

func TestInternDeduplicates(t *testing.T) {
	s := NewStore()
	a := s.Intern([]byte{1, 2, 3}, nil)
	b := s.Intern([]byte{1, 2, 3}, nil)
	if a != b {
		t.Errorf("Intern returned distinct ids for identical objects: %v != %v", a, b)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}

	c := s.Intern([]byte{1, 2, 3}, []Edge{{Pos: 0, Width: Width16, Target: a}})
	if c == a {
		t.Error("objects with different edges were not distinguished")
	}
}

func TestSortAndSerializeSimpleTree(t *testing.T) {
	s := NewStore()

	leaf := s.Intern([]byte{0xAA, 0xBB}, nil)
	// a 4-byte head with one 16-bit offset at position 2
	head := make([]byte, 4)
	root := s.Intern(head, []Edge{{Pos: 2, Width: Width16, Target: leaf}})

	layout, err := Sort(s, root)
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	out := Serialize(s, layout)

	want := []byte{0, 0, 0, 4, 0xAA, 0xBB}
	if !bytes.Equal(out, want) {
		t.Errorf("Serialize = %v, want %v", out, want)
	}
}

func TestSortSharedSubtreeWrittenOnce(t *testing.T) {
	s := NewStore()

	shared := s.Intern([]byte{0x11, 0x22}, nil)
	left := s.Intern([]byte{0, 0}, []Edge{{Pos: 0, Width: Width16, Target: shared}})
	right := s.Intern([]byte{0x33, 0, 0}, []Edge{{Pos: 1, Width: Width16, Target: shared}})
	root := s.Intern([]byte{0, 0, 0, 0}, []Edge{
		{Pos: 0, Width: Width16, Target: left},
		{Pos: 2, Width: Width16, Target: right},
	})

	layout, err := Sort(s, root)
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	if len(layout.Order) != 4 {
		t.Fatalf("got %d nodes in layout, want 4 (root, left, right, shared once)", len(layout.Order))
	}

	out := Serialize(s, layout)
	// root(4) + left(2) + right(3) + shared(2) = 11 bytes total, and the
	// shared node appears exactly once.
	if len(out) != 11 {
		t.Errorf("Serialize produced %d bytes, want 11", len(out))
	}
}

func TestSortOverflow(t *testing.T) {
	s := NewStore()
	big := s.Intern(make([]byte, 70000), nil)
	bigger := s.Intern(make([]byte, 70001), nil)
	// Whichever large child is placed second starts more than 0xFFFF
	// bytes after the root, in every ordering.
	root := s.Intern(make([]byte, 4), []Edge{
		{Pos: 0, Width: Width16, Target: big},
		{Pos: 2, Width: Width16, Target: bigger},
	})

	_, err := Sort(s, root)
	if err == nil {
		t.Fatal("Sort succeeded for an edge that cannot fit a 16-bit offset")
	}
	var overflow *OverflowError
	if !asOverflow(err, &overflow) {
		t.Fatalf("error is not *OverflowError: %v", err)
	}
	if len(overflow.Edges) == 0 {
		t.Error("OverflowError carries no edges")
	}
}

func asOverflow(err error, target **OverflowError) bool {
	oe, ok := err.(*OverflowError)
	if ok {
		*target = oe
	}
	return ok
}

func TestPackMatchesSortForGraphsWithoutOverflow(t *testing.T) {
	s := NewStore()
	leaf := s.Intern([]byte{0xAA, 0xBB}, nil)
	head := make([]byte, 4)
	root := s.Intern(head, []Edge{{Pos: 2, Width: Width16, Target: leaf}})

	out, err := Pack(s, root)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	want := []byte{0, 0, 0, 4, 0xAA, 0xBB}
	if !bytes.Equal(out, want) {
		t.Errorf("Pack = %v, want %v", out, want)
	}
}

func TestAssignSpacesPartitionsWideAndNarrow(t *testing.T) {
	s := NewStore()
	narrowLeaf := s.Intern([]byte{1, 2}, nil)
	wideLeaf := s.Intern([]byte{3, 4}, nil)
	root := s.Intern(make([]byte, 8), []Edge{
		{Pos: 0, Width: Width16, Target: narrowLeaf},
		{Pos: 4, Width: Width32, Target: wideLeaf},
	})

	spaces, dup := AssignSpaces(s, root)

	var dupNarrow, dupWide NodeID = -1, -1
	for id := 0; id < dup.Len(); id++ {
		obj := dup.Object(NodeID(id))
		if bytes.Equal(obj.Bytes, []byte{1, 2}) {
			dupNarrow = NodeID(id)
		}
		if bytes.Equal(obj.Bytes, []byte{3, 4}) {
			dupWide = NodeID(id)
		}
	}
	if dupNarrow < 0 || dupWide < 0 {
		t.Fatal("rebuilt store is missing the narrow or wide leaf")
	}
	if spaces[dupNarrow] != ShortReachable {
		t.Errorf("narrow-only leaf assigned to space %v, want ShortReachable", spaces[dupNarrow])
	}
	if spaces[dupWide] == ShortReachable {
		t.Error("wide-only leaf was left in ShortReachable")
	}
}
