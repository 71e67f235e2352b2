// Package model holds the shared data types exchanged between the join,
// classification, and spatial aggregation components.
package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// LatLng is a geographic coordinate. All computation in this system treats
// lat/lng as planar coordinates; no projection or ellipsoidal correction.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Ring is an ordered sequence of vertices forming a single outer ring.
// Rings are not required to repeat the first vertex at the end.
type Ring []LatLng

// Polygon is a single outer ring with no holes. It is used both for saved
// areas and for ephemeral drawn areas; the two differ only in lifecycle.
type Polygon struct {
	Vertices Ring `json:"vertices"`
}

// Validate checks that the polygon has enough vertices to enclose area.
// Containment tests on an invalid polygon are undefined but non-crashing;
// callers must validate before aggregating.
func (p Polygon) Validate() error {
	if len(p.Vertices) < 3 {
		return eris.Errorf("model: polygon needs at least 3 vertices, got %d", len(p.Vertices))
	}
	return nil
}

// SavedArea is a persisted polygon with metadata. The geometry is identical
// to a drawn polygon; persistence adds only identity and a name.
type SavedArea struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Polygon   Polygon   `json:"polygon"`
	CreatedAt time.Time `json:"created_at"`
}
