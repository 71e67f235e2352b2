// Package choropleth computes equal-interval breakpoints over feature
// indicator values and maps a value to a five-bucket color palette.
package choropleth

import (
	"math"

	"github.com/chiri-lab/atlas-cli/internal/model"
)

// Indicator selects which joined statistic a classification runs over.
type Indicator string

const (
	IndicatorBuildingCount   Indicator = "building_count"
	IndicatorFloorAreaTotal  Indicator = "floor_area_total"
	IndicatorEstimatedAmount Indicator = "estimated_amount"
)

// BucketCount is the number of color buckets; breakpoints are BucketCount+1.
const BucketCount = 5

// Breaks holds the six breakpoints of an equal-interval classification.
type Breaks [BucketCount + 1]float64

// Palette holds one color per bucket, lowest bucket first.
type Palette [BucketCount]string

// value extracts the selected indicator from a feature, nil when no data.
func value(f model.GeometryFeature, ind Indicator) *float64 {
	switch ind {
	case IndicatorBuildingCount:
		return f.BuildingCount
	case IndicatorFloorAreaTotal:
		return f.FloorAreaTotal
	case IndicatorEstimatedAmount:
		return f.EstimatedAmount
	default:
		return nil
	}
}

// ComputeBreaks collects every non-null, numeric indicator value and splits
// the [min, max] range into five equal intervals. An empty value set yields
// all-zero breakpoints, the degenerate state in which every feature
// classifies into the lowest bucket. Equal-interval, not quantile: bucket
// populations can be very unequal on skewed distributions.
func ComputeBreaks(features []model.GeometryFeature, ind Indicator) Breaks {
	var vals []float64
	for _, f := range features {
		v := value(f, ind)
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			continue
		}
		vals = append(vals, *v)
	}

	var breaks Breaks
	if len(vals) == 0 {
		return breaks
	}

	minV, maxV := vals[0], vals[0]
	for _, v := range vals[1:] {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}

	span := maxV - minV
	for i := range breaks {
		breaks[i] = minV + span*float64(i)/float64(BucketCount)
	}
	return breaks
}

// ColorFor maps a value to its bucket color. A nil or NaN value gets the
// no-data color. The scan runs from the highest breakpoint down, so a value
// exactly equal to a breakpoint lands in the bucket whose lower bound is that
// breakpoint, never the bucket below. The top two breakpoints share the top
// palette entry (six breakpoints, five colors).
func ColorFor(v *float64, breaks Breaks, palette Palette, noDataColor string) string {
	if v == nil || math.IsNaN(*v) {
		return noDataColor
	}
	for i := len(breaks) - 1; i >= 0; i-- {
		if *v >= breaks[i] {
			if i > BucketCount-1 {
				i = BucketCount - 1
			}
			return palette[i]
		}
	}
	// Below the lowest breakpoint; clamp into the bottom bucket.
	return palette[0]
}
