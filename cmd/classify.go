package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chiri-lab/atlas-cli/internal/choropleth"
	"github.com/chiri-lab/atlas-cli/internal/model"
	"github.com/chiri-lab/atlas-cli/internal/statjoin"
)

var classifyFlags struct {
	year  string
	month string
	field string
	out   string
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Join statistics onto boundaries and compute choropleth buckets",
	Long:  "Loads the statistic CSV and the boundary file, joins them for one year/month, computes equal-interval breakpoints over the selected indicator, and emits the colored features as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		year := classifyFlags.year
		month := classifyFlags.month
		field := classifyFlags.field
		if year == "" {
			year = cfg.Classify.Year
		}
		if month == "" {
			month = cfg.Classify.Month
		}
		if field == "" {
			field = cfg.Classify.Field
		}

		result, err := runClassification(year, month, choropleth.Indicator(field))
		if err != nil {
			return err
		}
		return writeJSON(classifyFlags.out, result)
	},
}

func init() {
	classifyCmd.Flags().StringVar(&classifyFlags.year, "year", "", "statistics year (defaults to classify.year)")
	classifyCmd.Flags().StringVar(&classifyFlags.month, "month", "", "statistics month (defaults to classify.month)")
	classifyCmd.Flags().StringVar(&classifyFlags.field, "field", "", "indicator: building_count, floor_area_total, or estimated_amount")
	classifyCmd.Flags().StringVar(&classifyFlags.out, "out", "", "output file (default stdout)")
	rootCmd.AddCommand(classifyCmd)
}

// classification is the JSON shape emitted by the classify command and the
// classify API endpoint.
type classification struct {
	Year        string             `json:"year"`
	Month       string             `json:"month"`
	Field       string             `json:"field"`
	Breaks      choropleth.Breaks  `json:"breaks"`
	Palette     choropleth.Palette `json:"palette"`
	NoDataColor string             `json:"no_data_color"`
	Features    []coloredFeature   `json:"features"`
}

type coloredFeature struct {
	Prefecture      string     `json:"prefecture"`
	City            string     `json:"city"`
	Ring            model.Ring `json:"ring"`
	BuildingCount   *float64   `json:"building_count"`
	FloorAreaTotal  *float64   `json:"floor_area_total"`
	EstimatedAmount *float64   `json:"estimated_amount"`
	Color           string     `json:"color"`
}

// runClassification loads both datasets in parallel, joins them for the
// requested period, and colors every feature.
func runClassification(year, month string, field choropleth.Indicator) (*classification, error) {
	var (
		rows     []statjoin.Row
		features []model.GeometryFeature
	)

	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		rows, err = loadStats(cfg.Data)
		return err
	})
	g.Go(func() error {
		var err error
		features, err = loadBoundaries(cfg.Data)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resolver, err := loadResolver(cfg.Data)
	if err != nil {
		return nil, err
	}
	palette, noData, err := loadPalette(cfg.Data)
	if err != nil {
		return nil, err
	}

	idx := statjoin.Build(rows, resolver)
	zap.L().Info("classify: built statistic index",
		zap.Int("records", idx.Len()),
		zap.Int("dropped", idx.Dropped()),
		zap.Int("duplicates", idx.Duplicates()),
	)

	enriched := statjoin.Attach(features, idx, year, month)
	breaks := choropleth.ComputeBreaks(enriched, field)

	out := &classification{
		Year:        year,
		Month:       month,
		Field:       string(field),
		Breaks:      breaks,
		Palette:     palette,
		NoDataColor: noData,
		Features:    make([]coloredFeature, 0, len(enriched)),
	}
	for _, f := range enriched {
		var v *float64
		switch field {
		case choropleth.IndicatorFloorAreaTotal:
			v = f.FloorAreaTotal
		case choropleth.IndicatorEstimatedAmount:
			v = f.EstimatedAmount
		default:
			v = f.BuildingCount
		}
		out.Features = append(out.Features, coloredFeature{
			Prefecture:      f.Prefecture,
			City:            f.City,
			Ring:            f.Ring,
			BuildingCount:   f.BuildingCount,
			FloorAreaTotal:  f.FloorAreaTotal,
			EstimatedAmount: f.EstimatedAmount,
			Color:           choropleth.ColorFor(v, breaks, palette, noData),
		})
	}
	return out, nil
}
