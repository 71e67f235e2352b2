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

	"github.com/chiri-lab/atlas-cli/internal/model"
)

// PointCSVOptions configures the project point decoder.
type PointCSVOptions struct {
	ShiftJIS      bool
	LatCol        string
	LngCol        string
	UsageCol      string
	TypeCol       string
	FloorAreaCol  string
	PermitCol     string
	CompletionCol string
}

func (o *PointCSVOptions) applyDefaults() {
	if o.LatCol == "" {
		o.LatCol = "lat"
	}
	if o.LngCol == "" {
		o.LngCol = "lng"
	}
	if o.UsageCol == "" {
		o.UsageCol = "usage"
	}
	if o.TypeCol == "" {
		o.TypeCol = "construction_type"
	}
	if o.FloorAreaCol == "" {
		o.FloorAreaCol = "floor_area"
	}
	if o.PermitCol == "" {
		o.PermitCol = "permit_date"
	}
	if o.CompletionCol == "" {
		o.CompletionCol = "completion_date"
	}
}

// ReadPointsCSV decodes project points from a headered CSV stream. Free-text
// fields are carried verbatim; rows whose coordinates do not parse are
// dropped and counted, since a point without a location cannot join any
// spatial rollup.
func ReadPointsCSV(r io.Reader, opts PointCSVOptions) ([]model.ProjectPoint, error) {
	opts.applyDefaults()
	if opts.ShiftJIS {
		r = transform.NewReader(r, japanese.ShiftJIS.NewDecoder())
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "loader: read point CSV header")
	}
	col := headerIndex(header)

	for _, name := range []string{opts.LatCol, opts.LngCol} {
		if _, ok := col[strings.ToLower(name)]; !ok {
			return nil, eris.Errorf("loader: point CSV missing column %q", name)
		}
	}

	var (
		points  []model.ProjectPoint
		dropped int
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "loader: read point CSV row")
		}

		get := func(name string) string {
			idx, ok := col[strings.ToLower(name)]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		lat, latErr := strconv.ParseFloat(get(opts.LatCol), 64)
		lng, lngErr := strconv.ParseFloat(get(opts.LngCol), 64)
		if latErr != nil || lngErr != nil {
			dropped++
			continue
		}

		points = append(points, model.ProjectPoint{
			Lat:              lat,
			Lng:              lng,
			Usage:            get(opts.UsageCol),
			ConstructionType: get(opts.TypeCol),
			FloorAreaText:    get(opts.FloorAreaCol),
			PermitDate:       get(opts.PermitCol),
			CompletionDate:   get(opts.CompletionCol),
		})
	}

	if dropped > 0 {
		zap.L().Info("loader: dropped points with unparsable coordinates", zap.Int("dropped", dropped))
	}
	return points, nil
}
