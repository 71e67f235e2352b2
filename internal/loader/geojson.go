package loader

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/chiri-lab/atlas-cli/internal/model"
)

// GeoJSON property keys carrying the place attributes.
const (
	PropPrefecture = "pref_name"
	PropCity       = "city_name"
)

// ReadFeaturesGeoJSON decodes boundary features from a GeoJSON
// FeatureCollection. Only the outer ring of each (multi)polygon is kept;
// holes and additional parts are ignored by design and counted in a debug
// log. Features with no usable ring or missing place attributes are skipped.
func ReadFeaturesGeoJSON(r io.Reader) ([]model.GeometryFeature, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "loader: read GeoJSON")
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrap(err, "loader: parse GeoJSON")
	}

	var (
		features []model.GeometryFeature
		skipped  int
	)
	for _, f := range fc.Features {
		pref := stringProp(f.Properties, PropPrefecture)
		city := stringProp(f.Properties, PropCity)
		ring := outerRing(f.Geometry)
		if pref == "" || city == "" || len(ring) < 3 {
			skipped++
			continue
		}
		features = append(features, model.GeometryFeature{
			Prefecture: pref,
			City:       city,
			Ring:       ring,
		})
	}

	if skipped > 0 {
		zap.L().Debug("loader: skipped GeoJSON features", zap.Int("skipped", skipped))
	}
	return features, nil
}

// outerRing extracts the outer ring of a polygonal geometry as lat/lng
// vertices. GeoJSON coordinates are (lng, lat) order.
func outerRing(g geom.T) model.Ring {
	var poly *geom.Polygon
	switch t := g.(type) {
	case *geom.Polygon:
		poly = t
	case *geom.MultiPolygon:
		if t.NumPolygons() == 0 {
			return nil
		}
		poly = t.Polygon(0)
	default:
		return nil
	}

	if poly.NumLinearRings() == 0 {
		return nil
	}
	coords := poly.LinearRing(0).Coords()

	ring := make(model.Ring, 0, len(coords))
	for _, c := range coords {
		ring = append(ring, model.LatLng{Lat: c.Y(), Lng: c.X()})
	}
	// Drop the closing vertex GeoJSON repeats.
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	return ring
}

func stringProp(props map[string]any, key string) string {
	v, ok := props[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
