// Package loader decodes the external datasets (statistic CSVs, boundary
// GeoJSON and shapefiles, project point CSVs) into the in-memory records the
// core packages operate on.
package loader

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/chiri-lab/atlas-cli/internal/statjoin"
)

// StatCSVOptions configures the statistic CSV decoder. Column names default
// to the published dataset's header when left empty.
type StatCSVOptions struct {
	ShiftJIS       bool // government CSVs ship as Shift_JIS
	PrefectureCol  string
	CityCol        string
	YearCol        string
	MonthCol       string
	BuildingCol    string
	FloorAreaCol   string
	ResidenceCol   string
}

func (o *StatCSVOptions) applyDefaults() {
	if o.PrefectureCol == "" {
		o.PrefectureCol = "pref_name"
	}
	if o.CityCol == "" {
		o.CityCol = "city_name"
	}
	if o.YearCol == "" {
		o.YearCol = "year"
	}
	if o.MonthCol == "" {
		o.MonthCol = "month"
	}
	if o.BuildingCol == "" {
		o.BuildingCol = "building_count_A_Residence"
	}
	if o.FloorAreaCol == "" {
		o.FloorAreaCol = "floor_area_total"
	}
	if o.ResidenceCol == "" {
		o.ResidenceCol = "A_Residence_Area"
	}
}

// ReadStatCSV decodes statistic rows from a headered CSV stream. Numeric
// cells that fail to parse degrade to 0; rows shorter than the header are
// skipped and counted. Key-field completeness is not checked here, the join
// index drops incomplete rows itself.
func ReadStatCSV(r io.Reader, opts StatCSVOptions) ([]statjoin.Row, error) {
	opts.applyDefaults()
	if opts.ShiftJIS {
		r = transform.NewReader(r, japanese.ShiftJIS.NewDecoder())
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "loader: read stat CSV header")
	}
	col := headerIndex(header)

	required := []string{opts.PrefectureCol, opts.CityCol, opts.YearCol, opts.MonthCol}
	for _, name := range required {
		if _, ok := col[strings.ToLower(name)]; !ok {
			return nil, eris.Errorf("loader: stat CSV missing column %q", name)
		}
	}

	var (
		rows    []statjoin.Row
		skipped int
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "loader: read stat CSV row")
		}

		get := func(name string) string {
			idx, ok := col[strings.ToLower(name)]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		if get(opts.PrefectureCol) == "" && get(opts.CityCol) == "" {
			skipped++
			continue
		}

		rows = append(rows, statjoin.Row{
			Prefecture:     get(opts.PrefectureCol),
			City:           get(opts.CityCol),
			Year:           get(opts.YearCol),
			Month:          get(opts.MonthCol),
			BuildingCount:  parseNumber(get(opts.BuildingCol)),
			FloorAreaTotal: parseNumber(get(opts.FloorAreaCol)),
			ResidenceArea:  parseNumber(get(opts.ResidenceCol)),
		})
	}

	if skipped > 0 {
		zap.L().Debug("loader: skipped blank stat CSV rows", zap.Int("skipped", skipped))
	}
	return rows, nil
}

// headerIndex builds a case-insensitive column name to index map.
func headerIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return col
}

// parseNumber parses a numeric cell, tolerating thousands separators.
// Unparsable cells degrade to 0.
func parseNumber(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
