package spatial

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/chiri-lab/atlas-cli/internal/model"
)

// ParseArea extracts a numeric floor area from free text by keeping only
// digits and decimal points. Unparsable remainders degrade to 0 rather than
// propagating a parse failure.
func ParseArea(text string) float64 {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Aggregate filters points to those inside the polygon and rolls up counts,
// floor areas, and category frequencies. Zero matched points is a valid
// outcome: the result carries zero counts and empty (non-nil) breakdown maps,
// never a division error. The polygon must already be validated; degenerate
// rings simply match nothing.
func Aggregate(points []model.ProjectPoint, polygon model.Polygon, rules []UsageRule) model.AnalysisResult {
	result := model.AnalysisResult{
		UsageBreakdown:            map[string]int{},
		ConstructionTypeBreakdown: map[string]int{},
	}

	for _, p := range points {
		if !IsInside(p.Lat, p.Lng, polygon.Vertices) {
			continue
		}
		result.MatchedPoints = append(result.MatchedPoints, p)
		result.TotalArea += ParseArea(p.FloorAreaText)

		result.UsageBreakdown[Categorize(p.Usage, rules)]++

		ctype := p.ConstructionType
		if ctype == "" {
			ctype = CategoryOther
		}
		result.ConstructionTypeBreakdown[ctype]++
	}

	result.Count = len(result.MatchedPoints)
	if result.Count > 0 {
		result.AvgArea = result.TotalArea / float64(result.Count)
	}
	return result
}

// BreakdownEntry is one row of a rendered frequency table.
type BreakdownEntry struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// SortedBreakdown flattens a frequency map into entries sorted descending by
// count (label ascending on ties, for stable output) with each bucket's share
// of total rounded to one decimal place.
func SortedBreakdown(counts map[string]int, total int) []BreakdownEntry {
	entries := make([]BreakdownEntry, 0, len(counts))
	for label, n := range counts {
		pct := 0.0
		if total > 0 {
			pct = math.Round(float64(n)/float64(total)*1000) / 10
		}
		entries = append(entries, BreakdownEntry{Label: label, Count: n, Percent: pct})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Label < entries[j].Label
	})
	return entries
}
