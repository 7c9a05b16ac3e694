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

package varstore

// InterpolateUntouched fills in the deltas of points a gvar/VARC glyph
// variation tuple does not list explicitly. orig holds the points'
// undeltad coordinates (one axis at a time: call twice, once for X, once
// for Y), touched reports which points carry an explicit delta, and delta
// holds those explicit deltas at the touched indices; the function
// returns a full per-point delta slice with every untouched point's delta
// filled in by the standard TrueType IUP rule.
//
// Contours are closed loops: ends marks, for each contour, the index of
// its last point (so contour i spans (ends[i-1], ends[i]], with
// ends[-1] == -1 implied).
func InterpolateUntouched(orig []int16, touched []bool, delta []int16, ends []int) []int16 {
	out := make([]int16, len(delta))
	copy(out, delta)

	start := 0
	for _, end := range ends {
		interpolateContour(orig[start:end+1], touched[start:end+1], out[start:end+1])
		start = end + 1
	}
	return out
}

// interpolateContour runs IUP over a single contour's points, in place on
// out (which already holds the touched points' deltas).
func interpolateContour(orig []int16, touched []bool, out []int16) {
	n := len(orig)
	if n == 0 {
		return
	}

	first := -1
	count := 0
	for i, t := range touched {
		if t {
			if first < 0 {
				first = i
			}
			count++
		}
	}
	if count == 0 {
		// no anchor point: the whole contour shifts by nothing, matching
		// readers that leave such contours at their default position.
		return
	}
	if count == n {
		return
	}

	// walk forward from each touched point to the next touched point,
	// interpolating (or, if the pair wraps the whole contour, shifting)
	// every untouched point strictly between them.
	prev := first
	for steps := 0; steps < n; steps++ {
		cur := (prev + 1) % n
		if touched[cur] {
			prev = cur
			continue
		}

		next := cur
		for !touched[next] {
			next = (next + 1) % n
		}
		fillRun(orig, out, touched, prev, next, n)
		prev = next
	}
}

// fillRun interpolates every untouched point strictly between the touched
// indices a and b (walking forward from a to b around the ring of size
// n), using the two touched points' original coordinates and deltas.
func fillRun(orig []int16, out []int16, touched []bool, a, b, n int) {
	oa, ob := orig[a], orig[b]
	da, db := out[a], out[b]

	lo, hi := oa, ob
	dlo, dhi := da, db
	if lo > hi {
		lo, hi = hi, lo
		dlo, dhi = dhi, dlo
	}

	for i := (a + 1) % n; i != b; i = (i + 1) % n {
		if touched[i] {
			continue
		}
		x := orig[i]
		switch {
		case lo == hi:
			out[i] = dlo
		case x <= lo:
			out[i] = dlo + (x - lo)
		case x >= hi:
			out[i] = dhi + (x - hi)
		default:
			// linear interpolation between the two touched deltas,
			// proportional to original position between them.
			num := int32(x-lo) * int32(dhi-dlo)
			den := int32(hi - lo)
			out[i] = dlo + int16(num/den)
		}
	}
}
