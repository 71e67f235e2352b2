package choropleth

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// DefaultNoDataColor renders features with no joined statistic.
const DefaultNoDataColor = "#d9d9d9"

// DefaultPalette returns the built-in sequential palette, lowest bucket first.
func DefaultPalette() Palette {
	return Palette{"#ffffcc", "#a1dab4", "#41b6c4", "#2c7fb8", "#253494"}
}

type paletteFile struct {
	Colors      []string `yaml:"colors"`
	NoDataColor string   `yaml:"no_data_color"`
}

// LoadPalette reads a palette definition from a YAML file. The file must
// list exactly BucketCount colors; the no-data color is optional.
func LoadPalette(path string) (Palette, string, error) {
	var p Palette

	data, err := os.ReadFile(path)
	if err != nil {
		return p, "", eris.Wrap(err, "choropleth: read palette file")
	}

	var pf paletteFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return p, "", eris.Wrap(err, "choropleth: parse palette file")
	}
	if len(pf.Colors) != BucketCount {
		return p, "", eris.Errorf("choropleth: palette needs %d colors, got %d", BucketCount, len(pf.Colors))
	}

	copy(p[:], pf.Colors)
	noData := pf.NoDataColor
	if noData == "" {
		noData = DefaultNoDataColor
	}
	return p, noData, nil
}
