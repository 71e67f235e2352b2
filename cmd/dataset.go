package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/chiri-lab/atlas-cli/internal/choropleth"
	"github.com/chiri-lab/atlas-cli/internal/config"
	"github.com/chiri-lab/atlas-cli/internal/loader"
	"github.com/chiri-lab/atlas-cli/internal/model"
	"github.com/chiri-lab/atlas-cli/internal/spatial"
	"github.com/chiri-lab/atlas-cli/internal/statjoin"
	"github.com/chiri-lab/atlas-cli/internal/unitcost"
)

// loadStats reads the statistic CSV configured under data.stats_path.
func loadStats(data config.DataConfig) ([]statjoin.Row, error) {
	if data.StatsPath == "" {
		return nil, eris.New("cmd: data.stats_path is not set")
	}
	f, err := os.Open(data.StatsPath)
	if err != nil {
		return nil, eris.Wrapf(err, "cmd: open stats %s", data.StatsPath)
	}
	defer func() { _ = f.Close() }()

	return loader.ReadStatCSV(f, loader.StatCSVOptions{ShiftJIS: data.StatsSJIS})
}

// loadBoundaries reads boundary features, dispatching on file extension:
// .shp goes through the shapefile reader, anything else is parsed as GeoJSON.
func loadBoundaries(data config.DataConfig) ([]model.GeometryFeature, error) {
	if data.BoundaryPath == "" {
		return nil, eris.New("cmd: data.boundary_path is not set")
	}

	if strings.EqualFold(filepath.Ext(data.BoundaryPath), ".shp") {
		return loader.ReadFeaturesShapefile(data.BoundaryPath, loader.PropPrefecture, loader.PropCity)
	}

	f, err := os.Open(data.BoundaryPath)
	if err != nil {
		return nil, eris.Wrapf(err, "cmd: open boundaries %s", data.BoundaryPath)
	}
	defer func() { _ = f.Close() }()

	return loader.ReadFeaturesGeoJSON(f)
}

// loadResolver builds the unit cost resolver, from the configured workbook
// when one is set and the built-in table otherwise.
func loadResolver(data config.DataConfig) (*unitcost.Resolver, error) {
	if data.UnitCostPath == "" {
		return unitcost.NewResolver(unitcost.DefaultTable()), nil
	}
	rates, err := unitcost.LoadXLSX(data.UnitCostPath, 0, 1)
	if err != nil {
		return nil, err
	}
	return unitcost.NewResolver(rates), nil
}

// loadPalette returns the configured palette file or the built-in one.
func loadPalette(data config.DataConfig) (choropleth.Palette, string, error) {
	if data.PalettePath == "" {
		return choropleth.DefaultPalette(), choropleth.DefaultNoDataColor, nil
	}
	return choropleth.LoadPalette(data.PalettePath)
}

// loadRules returns the configured usage taxonomy or the built-in one.
func loadRules(data config.DataConfig) ([]spatial.UsageRule, error) {
	if data.TaxonomyPath == "" {
		return spatial.DefaultRules(), nil
	}
	return spatial.LoadRules(data.TaxonomyPath)
}

// loadPoints reads the project point CSV configured under data.points_path.
func loadPoints(data config.DataConfig) ([]model.ProjectPoint, error) {
	if data.PointsPath == "" {
		return nil, eris.New("cmd: data.points_path is not set")
	}
	f, err := os.Open(data.PointsPath)
	if err != nil {
		return nil, eris.Wrapf(err, "cmd: open points %s", data.PointsPath)
	}
	defer func() { _ = f.Close() }()

	return loader.ReadPointsCSV(f, loader.PointCSVOptions{ShiftJIS: data.StatsSJIS})
}

// readPolygonFile parses a drawn polygon from a JSON file of the form
// {"vertices": [{"lat": ..., "lng": ...}, ...]}.
func readPolygonFile(path string) (model.Polygon, error) {
	var polygon model.Polygon

	data, err := os.ReadFile(path)
	if err != nil {
		return polygon, eris.Wrapf(err, "cmd: read polygon %s", path)
	}
	if err := json.Unmarshal(data, &polygon); err != nil {
		return polygon, eris.Wrapf(err, "cmd: parse polygon %s", path)
	}
	if err := polygon.Validate(); err != nil {
		return polygon, err
	}
	return polygon, nil
}

// writeJSON marshals v with indentation to the given path, or stdout when the
// path is empty.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "cmd: marshal output")
	}
	data = append(data, '\n')

	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "cmd: write %s", path)
	}
	return nil
}
