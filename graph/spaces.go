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

import "sort"

// Space identifies a packing partition: a contiguous run of the output
// that a node ordering is allowed to share. ShortReachable holds every
// node still reachable using only narrow (16- or 24-bit) offsets;
// distinct wide-offset subgraphs each get their own space starting at
// InitialSpace, so that a Sort over one space never has to consider nodes
// that belong to another.
type Space int

const (
	ShortReachable Space = 0
	InitialSpace   Space = 1
)

// AssignSpaces partitions the subgraph reachable from root. A node that
// some reachable 32-bit edge targets is a space root; the connected
// component it dominates (the set of nodes reachable from it without
// re-entering a part of the graph already reachable through a narrower
// offset) is assigned a fresh space. A space root that is also reachable
// from outside its own component through another edge is duplicated in
// the store first, so every space ends up reachable through exactly one
// incoming wide offset.
//
// This realizes spec.md §4.B's space-isolation rule as a single pass: it
// does not re-run the iterative "isolate, re-sort, re-check" loop the
// specification describes for continued overflow within one space: that
// loop lives in Pack, which re-invokes AssignSpaces against a
// freshly duplicated store rather than mutating space assignments
// in place.
func AssignSpaces(s *Store, root NodeID) (map[NodeID]Space, *Store) {
	narrow := narrowReachable(s, root)

	spaceRoots := wideTargets(s, root, narrow)
	sort.Slice(spaceRoots, func(i, j int) bool { return spaceRoots[i] < spaceRoots[j] })

	dup := duplicateExternallyReferenced(s, root, narrow, spaceRoots)

	spaces := make(map[NodeID]Space, dup.store.Len())
	for id := range narrow {
		if r, ok := dup.remap[id]; ok {
			spaces[r] = ShortReachable
		}
	}

	next := InitialSpace
	assigned := make(map[NodeID]bool)
	for _, origRoot := range spaceRoots {
		r := dup.remap[origRoot]
		if assigned[r] {
			continue
		}
		comp := componentFrom(dup.store, r)
		for _, id := range comp {
			spaces[id] = next
			assigned[id] = true
		}
		next++
	}

	if _, ok := spaces[dup.newRoot]; !ok {
		spaces[dup.newRoot] = ShortReachable
	}

	return spaces, dup.store
}

// narrowReachable returns every node reachable from root using only
// 16- or 24-bit offset edges.
func narrowReachable(s *Store, root NodeID) map[NodeID]bool {
	seen := map[NodeID]bool{root: true}
	queue := []NodeID{root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, e := range s.Object(id).Edges {
			if e.Width == Width32 || seen[e.Target] {
				continue
			}
			seen[e.Target] = true
			queue = append(queue, e.Target)
		}
	}
	return seen
}

// wideTargets returns, in discovery order, every node reachable from root
// through at least one 32-bit edge and not already in narrow.
func wideTargets(s *Store, root NodeID, narrow map[NodeID]bool) []NodeID {
	var out []NodeID
	seen := map[NodeID]bool{}
	visited := map[NodeID]bool{}
	var walk func(NodeID)
	walk = func(id NodeID) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, e := range s.Object(id).Edges {
			if e.Width == Width32 && !narrow[e.Target] && !seen[e.Target] {
				seen[e.Target] = true
				out = append(out, e.Target)
			}
			walk(e.Target)
		}
	}
	walk(root)
	return out
}

// componentFrom returns every node reachable from start by following
// edges forward, without crossing back into ShortReachable territory
// (the caller only calls this on nodes outside narrow already).
func componentFrom(s *Store, start NodeID) []NodeID {
	seen := map[NodeID]bool{start: true}
	queue := []NodeID{start}
	var out []NodeID
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		out = append(out, id)
		for _, e := range s.Object(id).Edges {
			if !seen[e.Target] {
				seen[e.Target] = true
				queue = append(queue, e.Target)
			}
		}
	}
	return out
}

type duplication struct {
	store   *Store
	remap   map[NodeID]NodeID
	newRoot NodeID
}

// duplicateExternallyReferenced rebuilds the store reachable from root,
// cloning any wide-offset space root that a second, independent path also
// reaches narrowly — so that, in the rebuilt store, each space is
// reachable only through its one wide offset.
func duplicateExternallyReferenced(s *Store, root NodeID, narrow map[NodeID]bool, spaceRoots []NodeID) duplication {
	isSpaceRoot := make(map[NodeID]bool, len(spaceRoots))
	for _, id := range spaceRoots {
		isSpaceRoot[id] = true
	}

	// A space root also in narrow is reachable both narrowly and widely:
	// it must be duplicated so the narrow path keeps a copy that is not
	// also the wide space's unique entry point.
	dup := &Store{byKey: make(map[string]NodeID)}
	remap := make(map[NodeID]NodeID)

	var clone func(NodeID, bool) NodeID
	clone = func(id NodeID, viaWide bool) NodeID {
		needsSplit := isSpaceRoot[id] && narrow[id]
		key := id
		if needsSplit && !viaWide {
			key = -1 // placeholder, never matches a real NodeID
		}
		if !needsSplit {
			if r, ok := remap[id]; ok {
				return r
			}
		}
		_ = key

		obj := s.Object(id)
		edges := make([]Edge, len(obj.Edges))
		for i, e := range obj.Edges {
			edges[i] = Edge{Pos: e.Pos, Width: e.Width, Target: clone(e.Target, viaWide || e.Width == Width32)}
		}
		newID := dup.Intern(obj.Bytes, edges)
		if !needsSplit {
			remap[id] = newID
		}
		return newID
	}

	newRoot := clone(root, false)
	for _, id := range spaceRoots {
		if _, ok := remap[id]; !ok {
			remap[id] = clone(id, true)
		}
	}

	return duplication{store: dup, remap: remap, newRoot: newRoot}
}
