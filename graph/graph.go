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

// Package graph packs a rooted directed graph of generated-code objects,
// connected by typed outgoing offset edges of width 16, 24 or 32 bits,
// into a single flat byte stream. Every object is written once; every
// offset field is patched with the relative distance, in bytes, from the
// start of the object that holds it to the start of its target.
package graph

import (
	"encoding/binary"
	"fmt"
)

// NodeID identifies an interned object within a Store.
type NodeID int

// Offset field widths recognised by the packer, matching OpenType's
// Offset16/Offset24/Offset32 field types.
const (
	Width16 = 16
	Width24 = 24
	Width32 = 32
)

// Edge is an outgoing offset field: Pos is the byte position, within the
// owning Object's own Bytes, where the offset value must be patched;
// Width is its wire width in bits; Target is the node it points to.
type Edge struct {
	Pos    int
	Width  int
	Target NodeID
}

// Object is one interned node: its own serialized bytes (with each Edge's
// Pos left zero-filled, to be patched during Serialize) plus the outgoing
// offset edges those bytes contain.
type Object struct {
	ID    NodeID
	Bytes []byte
	Edges []Edge
}

// Store interns objects by the exact content of their bytes and edges, so
// that two structurally identical subtrees collapse to a single node.
// Builders must intern an object's children before the object itself, so
// that the object's Edges already refer to final, canonical node IDs —
// the same bottom-up order every write routine in this module already
// uses to build a byte buffer depth-first.
type Store struct {
	byKey   map[string]NodeID
	objects []*Object
}

// NewStore returns an empty object store.
func NewStore() *Store {
	return &Store{byKey: make(map[string]NodeID)}
}

// Intern records an object's bytes and outgoing edges, returning its
// canonical node ID. A structurally identical object interned earlier is
// reused instead of creating a duplicate.
func (s *Store) Intern(data []byte, edges []Edge) NodeID {
	key := objectKey(data, edges)
	if id, ok := s.byKey[key]; ok {
		return id
	}
	id := NodeID(len(s.objects))
	obj := &Object{
		ID:    id,
		Bytes: append([]byte(nil), data...),
		Edges: append([]Edge(nil), edges...),
	}
	s.objects = append(s.objects, obj)
	s.byKey[key] = id
	return id
}

// Object returns the interned object for id.
func (s *Store) Object(id NodeID) *Object {
	return s.objects[id]
}

// Len returns the number of distinct interned objects.
func (s *Store) Len() int {
	return len(s.objects)
}

// objectKey produces a content key that is equal for two objects exactly
// when their bytes and edges (including edge targets, which are already
// canonical node IDs by the time a parent is interned) are equal.
func objectKey(data []byte, edges []Edge) string {
	key := make([]byte, 0, len(data)+9*len(edges)+1)
	key = append(key, data...)
	key = append(key, 0)
	for _, e := range edges {
		var tmp [9]byte
		binary.BigEndian.PutUint32(tmp[0:4], uint32(e.Pos))
		binary.BigEndian.PutUint32(tmp[4:8], uint32(e.Target))
		tmp[8] = byte(e.Width)
		key = append(key, tmp[:]...)
	}
	return string(key)
}

// fits reports whether a non-negative byte distance is representable in
// an offset field of the given wire width.
func fits(delta, width int) bool {
	if delta < 0 {
		return false
	}
	switch width {
	case Width16:
		return delta <= 0xFFFF
	case Width24:
		return delta <= 0xFFFFFF
	default:
		return uint64(delta) <= 0xFFFFFFFF
	}
}

// OverflowError reports that no node ordering this packer tried kept
// every offset edge within its declared width.
type OverflowError struct {
	Edges []Edge
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("graph: %d offset edge(s) do not fit any node ordering tried", len(e.Edges))
}
