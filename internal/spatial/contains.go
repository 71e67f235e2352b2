// Package spatial implements the point-in-polygon containment test and the
// polygon-based rollup of project point datasets.
package spatial

import "github.com/chiri-lab/atlas-cli/internal/model"

// IsInside reports whether the point lies inside the ring using the even-odd
// ray-casting rule over planar lat/lng. Rings with fewer than 3 vertices are
// a caller-side precondition violation: the result is unspecified but the
// function never panics. Points exactly on a vertex or edge are likewise
// unspecified.
func IsInside(lat, lng float64, ring model.Ring) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi, vj := ring[i], ring[j]
		if (vi.Lng > lng) != (vj.Lng > lng) {
			cross := (vj.Lat-vi.Lat)*(lng-vi.Lng)/(vj.Lng-vi.Lng) + vi.Lat
			if cross > lat {
				inside = !inside
			}
		}
	}
	return inside
}
