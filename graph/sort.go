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

import "container/heap"

// Layout is the result of a successful Sort: the node visitation order
// Serialize must write in, and each node's absolute byte position in that
// order.
type Layout struct {
	Order []NodeID
	Pos   map[NodeID]int
}

// Sort computes byte positions for every node reachable from root. It
// first tries the natural topological (Kahn) order seeded at root; if
// every offset edge fits its declared width under that order, it is
// returned as is. Otherwise it retries with a shortest-distance order,
// which tends to place small, root-adjacent nodes earlier and resolves
// most overflows that a naive depth-first layout would hit.
func Sort(s *Store, root NodeID) (*Layout, error) {
	if layout := assignPositions(s, kahnOrder(s, root)); len(overflowing(s, layout)) == 0 {
		return layout, nil
	}

	layout := assignPositions(s, shortestDistanceOrder(s, root))
	if bad := overflowing(s, layout); len(bad) > 0 {
		return nil, &OverflowError{Edges: bad}
	}
	return layout, nil
}

// kahnOrder produces a topological order of the subgraph reachable from
// root: root first, then every node once all of its in-graph parents
// (restricted to the reachable subgraph) have already been emitted. Two
// nodes shared by several parents are only ever visited once, at the
// point their last reachable parent is processed.
func kahnOrder(s *Store, root NodeID) []NodeID {
	indeg := reachableIndegree(s, root)

	queue := []NodeID{root}
	seen := map[NodeID]bool{root: true}
	order := make([]NodeID, 0, len(indeg))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, e := range s.Object(id).Edges {
			indeg[e.Target]--
			if indeg[e.Target] == 0 && !seen[e.Target] {
				seen[e.Target] = true
				queue = append(queue, e.Target)
			}
		}
	}
	return order
}

// reachableIndegree walks the subgraph reachable from root and counts, for
// every node in it, how many reachable edges target it.
func reachableIndegree(s *Store, root NodeID) map[NodeID]int {
	indeg := map[NodeID]int{root: 0}
	visited := map[NodeID]bool{}
	var walk func(NodeID)
	walk = func(id NodeID) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, e := range s.Object(id).Edges {
			indeg[e.Target]++
			walk(e.Target)
		}
	}
	walk(root)
	return indeg
}

// shortestDistanceOrder lays out nodes by distance from root, where a
// node's distance is its parent's distance plus the node's own byte size.
// This runs Dijkstra's algorithm directly over the reachable subgraph
// rather than through a shortest-path library: seehuhn.de/go/dijkstra
// solves a single start/end pair and seehuhn.de/go/dag solves the
// interval-graph case of a path from node 0 to node n, while this needs
// the distance to every reachable node from one root, so neither shape
// fits.
func shortestDistanceOrder(s *Store, root NodeID) []NodeID {
	dist := map[NodeID]int{root: 0}
	done := map[NodeID]bool{}
	order := make([]NodeID, 0)

	pq := &distQueue{{id: root, dist: 0}}
	for pq.Len() > 0 {
		top := heap.Pop(pq).(distItem)
		if done[top.id] {
			continue
		}
		done[top.id] = true
		order = append(order, top.id)

		for _, e := range s.Object(top.id).Edges {
			nd := top.dist + len(s.Object(e.Target).Bytes)
			if d, ok := dist[e.Target]; !ok || nd < d {
				dist[e.Target] = nd
				heap.Push(pq, distItem{id: e.Target, dist: nd})
			}
		}
	}
	return order
}

type distItem struct {
	id   NodeID
	dist int
}

type distQueue []distItem

func (q distQueue) Len() int            { return len(q) }
func (q distQueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q distQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *distQueue) Push(x interface{}) { *q = append(*q, x.(distItem)) }
func (q *distQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

func assignPositions(s *Store, order []NodeID) *Layout {
	pos := make(map[NodeID]int, len(order))
	offset := 0
	for _, id := range order {
		pos[id] = offset
		offset += len(s.Object(id).Bytes)
	}
	return &Layout{Order: order, Pos: pos}
}

// overflowing reports every edge whose target, under layout, is not
// representable in the edge's declared width measured from the start of
// the object that holds it.
func overflowing(s *Store, layout *Layout) []Edge {
	var bad []Edge
	for _, id := range layout.Order {
		base := layout.Pos[id]
		for _, e := range s.Object(id).Edges {
			if !fits(layout.Pos[e.Target]-base, e.Width) {
				bad = append(bad, e)
			}
		}
	}
	return bad
}

// Serialize concatenates every node's bytes in layout.Order, patching each
// edge's offset field in place with the final relative distance.
func Serialize(s *Store, layout *Layout) []byte {
	total := 0
	for _, id := range layout.Order {
		total += len(s.Object(id).Bytes)
	}

	out := make([]byte, total)
	for _, id := range layout.Order {
		obj := s.Object(id)
		base := layout.Pos[id]
		copy(out[base:], obj.Bytes)
		for _, e := range obj.Edges {
			delta := layout.Pos[e.Target] - base
			patchOffset(out[base+e.Pos:], e.Width, delta)
		}
	}
	return out
}

func patchOffset(b []byte, width, value int) {
	switch width {
	case Width16:
		b[0] = byte(value >> 8)
		b[1] = byte(value)
	case Width24:
		b[0] = byte(value >> 16)
		b[1] = byte(value >> 8)
		b[2] = byte(value)
	default:
		b[0] = byte(value >> 24)
		b[1] = byte(value >> 16)
		b[2] = byte(value >> 8)
		b[3] = byte(value)
	}
}
