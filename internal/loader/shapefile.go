package loader

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/chiri-lab/atlas-cli/internal/model"
)

// ReadFeaturesShapefile reads boundary features from a shapefile, taking the
// place attributes from the named DBF fields. Only the first ring of each
// polygon is kept; records with nil shapes or missing attributes are skipped
// and counted.
func ReadFeaturesShapefile(path, prefField, cityField string) ([]model.GeometryFeature, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	// Build field name → index map.
	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	prefIdx, ok := fieldIdx[strings.ToLower(prefField)]
	if !ok {
		return nil, eris.Errorf("loader: shapefile missing field %q", prefField)
	}
	cityIdx, ok := fieldIdx[strings.ToLower(cityField)]
	if !ok {
		return nil, eris.Errorf("loader: shapefile missing field %q", cityField)
	}

	var (
		features []model.GeometryFeature
		skipped  int
	)
	for reader.Next() {
		_, shape := reader.Shape()

		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			skipped++
			continue
		}

		ring := shpOuterRing(poly)
		pref := strings.TrimSpace(strings.TrimRight(reader.Attribute(prefIdx), "\x00"))
		city := strings.TrimSpace(strings.TrimRight(reader.Attribute(cityIdx), "\x00"))
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
		zap.L().Debug("loader: skipped shapefile records", zap.Int("skipped", skipped))
	}
	return features, nil
}

// shpOuterRing extracts the first ring of a shapefile polygon as lat/lng
// vertices. Shapefile points are (X=lng, Y=lat).
func shpOuterRing(p *shp.Polygon) model.Ring {
	if p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	start := p.Parts[0]
	end := int32(len(p.Points))
	if p.NumParts > 1 {
		end = p.Parts[1]
	}

	ring := make(model.Ring, 0, end-start)
	for i := start; i < end; i++ {
		ring = append(ring, model.LatLng{Lat: p.Points[i].Y, Lng: p.Points[i].X})
	}
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	return ring
}
