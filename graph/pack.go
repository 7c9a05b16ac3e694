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

// maxSpaceAttempts bounds the isolate/re-sort/re-check loop spec.md §4.B
// describes for continued overflow within a space; a real font's object
// graph converges in one or two iterations, so this is a guard against a
// pathological graph looping forever, not a tuning knob callers need.
const maxSpaceAttempts = 4

// Pack lays out and serializes the subgraph reachable from root. It tries
// Sort's baseline (topological, then shortest-distance) orderings first;
// if both overflow, it isolates 32-bit subgraphs into their own packing
// spaces via AssignSpaces and retries per space, duplicating space roots
// that need it along the way. It returns an *OverflowError naming the
// unresolved edges if no strategy succeeds.
func Pack(s *Store, root NodeID) ([]byte, error) {
	if layout, err := Sort(s, root); err == nil {
		return Serialize(s, layout), nil
	}

	cur, curRoot := s, root
	var lastErr error
	for attempt := 0; attempt < maxSpaceAttempts; attempt++ {
		spaces, dup := AssignSpaces(cur, curRoot)

		bySpace := make(map[Space][]NodeID)
		for id, sp := range spaces {
			bySpace[sp] = append(bySpace[sp], id)
		}

		out, err := packSpaces(dup, spaces, bySpace, curRoot)
		if err == nil {
			return out, nil
		}
		lastErr = err
		cur, curRoot = dup, curRoot
	}
	return nil, lastErr
}

// packSpaces lays out each space independently (in space ID order,
// ShortReachable first) — mirroring the requirement that entire spaces
// sit contiguously in the output — then patches every edge, including
// ones that cross from a narrow space into a wide one, against the
// global position each node ends up at once every space's bytes are
// concatenated. Within one space it uses Sort's same
// topological/shortest-distance fallback.
func packSpaces(s *Store, spaces map[NodeID]Space, bySpace map[Space][]NodeID, root NodeID) ([]byte, error) {
	spaceIDs := make([]Space, 0, len(bySpace))
	for sp := range bySpace {
		spaceIDs = append(spaceIDs, sp)
	}
	sortSpaces(spaceIDs)

	globalPos := make(map[NodeID]int)
	order := make([]NodeID, 0, len(spaces))

	base := 0
	var bad []Edge
	for _, sp := range spaceIDs {
		members := bySpace[sp]
		spaceRoot := pickSpaceRoot(s, members, root)

		local := assignPositions(s, kahnOrder(s, spaceRoot))
		if overflow := overflowing(s, local); len(overflow) > 0 {
			local = assignPositions(s, shortestDistanceOrder(s, spaceRoot))
		}
		if overflow := overflowing(s, local); len(overflow) > 0 {
			bad = append(bad, overflow...)
			continue
		}

		for _, id := range local.Order {
			globalPos[id] = base + local.Pos[id]
			order = append(order, id)
		}
		size := 0
		for _, id := range local.Order {
			size += len(s.Object(id).Bytes)
		}
		base += size
	}
	if len(bad) > 0 {
		return nil, &OverflowError{Edges: bad}
	}

	out := make([]byte, base)
	for _, id := range order {
		obj := s.Object(id)
		pos := globalPos[id]
		copy(out[pos:], obj.Bytes)
		for _, e := range obj.Edges {
			delta := globalPos[e.Target] - pos
			if !fits(delta, e.Width) {
				bad = append(bad, e)
				continue
			}
			patchOffset(out[pos+e.Pos:], e.Width, delta)
		}
	}
	if len(bad) > 0 {
		return nil, &OverflowError{Edges: bad}
	}
	return out, nil
}

func sortSpaces(spaces []Space) {
	for i := 1; i < len(spaces); i++ {
		for j := i; j > 0 && spaces[j] < spaces[j-1]; j-- {
			spaces[j], spaces[j-1] = spaces[j-1], spaces[j]
		}
	}
}

// pickSpaceRoot returns a node from members to seed the within-space
// layout at: the graph root itself if it belongs to this space, otherwise
// an arbitrary member (every remaining space is entered through exactly
// one node by construction of AssignSpaces).
func pickSpaceRoot(s *Store, members []NodeID, root NodeID) NodeID {
	for _, id := range members {
		if id == root {
			return root
		}
	}
	return members[0]
}
