package spatial

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiri-lab/atlas-cli/internal/model"
)

func squarePolygon() model.Polygon {
	return model.Polygon{Vertices: squareRing()}
}

func TestParseArea(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{name: "plain number", input: "120.5", expected: 120.5},
		{name: "unit suffix", input: "120.5㎡", expected: 120.5},
		{name: "annotated text", input: "延べ面積 98.4 m2", expected: 98.42},
		{name: "comma thousands", input: "1,234.5", expected: 1234.5},
		{name: "no digits", input: "不明", expected: 0},
		{name: "empty", input: "", expected: 0},
		{name: "multiple dots unparsable", input: "1.2.3", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, ParseArea(tt.input), 1e-9)
		})
	}
}

func TestCategorizeFirstRuleWins(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name     string
		usage    string
		expected string
	}{
		{name: "residential keyword", usage: "専用住宅", expected: "住宅"},
		{name: "commercial keyword", usage: "飲食店舗", expected: "商業"},
		{name: "business keyword", usage: "事務所ビル", expected: "業務"},
		{name: "industrial keyword", usage: "倉庫", expected: "工業"},
		{name: "public keyword", usage: "小学校", expected: "公共"},
		{name: "unmatched falls through to other", usage: "畜舎", expected: CategoryOther},
		{name: "empty is other", usage: "", expected: CategoryOther},
		// Order sensitivity: text matches both residential and commercial,
		// residential is checked first.
		{name: "mixed usage resolves to first rule", usage: "店舗併用住宅", expected: "住宅"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Categorize(tt.usage, rules))
		})
	}
}

func TestCategorizeInjectedOrder(t *testing.T) {
	// Swapping rule order flips the winner for ambiguous text.
	reversed := []UsageRule{
		{Category: "商業", Keywords: []string{"店舗"}},
		{Category: "住宅", Keywords: []string{"住宅"}},
	}
	assert.Equal(t, "商業", Categorize("店舗併用住宅", reversed))
}

func TestAggregate(t *testing.T) {
	points := []model.ProjectPoint{
		{Lat: 2, Lng: 2, Usage: "専用住宅", ConstructionType: "木造", FloorAreaText: "100㎡"},
		{Lat: 3, Lng: 3, Usage: "共同住宅", ConstructionType: "木造", FloorAreaText: "200"},
		{Lat: 4, Lng: 4, Usage: "飲食店舗", ConstructionType: "鉄骨造", FloorAreaText: "300.5 m2"},
		{Lat: 5, Lng: 5, Usage: "畜舎", ConstructionType: "", FloorAreaText: "なし"},
		{Lat: 50, Lng: 50, Usage: "専用住宅", ConstructionType: "木造", FloorAreaText: "999"},
	}

	result := Aggregate(points, squarePolygon(), DefaultRules())

	assert.Equal(t, 4, result.Count)
	assert.InDelta(t, 100+200+300.52, result.TotalArea, 1e-9)
	assert.InDelta(t, result.TotalArea/4, result.AvgArea, 1e-9)
	assert.Len(t, result.MatchedPoints, 4)

	assert.Equal(t, map[string]int{
		"住宅":          2,
		"商業":          1,
		CategoryOther: 1,
	}, result.UsageBreakdown)

	assert.Equal(t, map[string]int{
		"木造":          2,
		"鉄骨造":         1,
		CategoryOther: 1,
	}, result.ConstructionTypeBreakdown)
}

func TestAggregateZeroMatches(t *testing.T) {
	points := []model.ProjectPoint{
		{Lat: 50, Lng: 50, Usage: "専用住宅", FloorAreaText: "100"},
	}

	result := Aggregate(points, squarePolygon(), DefaultRules())

	assert.Equal(t, 0, result.Count)
	assert.Equal(t, 0.0, result.TotalArea)
	assert.Equal(t, 0.0, result.AvgArea)
	assert.NotNil(t, result.UsageBreakdown)
	assert.Empty(t, result.UsageBreakdown)
	assert.NotNil(t, result.ConstructionTypeBreakdown)
	assert.Empty(t, result.ConstructionTypeBreakdown)
	assert.Empty(t, result.MatchedPoints)
}

func TestAggregateEmptyPointSet(t *testing.T) {
	result := Aggregate(nil, squarePolygon(), DefaultRules())
	assert.Equal(t, 0, result.Count)
}

func TestSortedBreakdown(t *testing.T) {
	entries := SortedBreakdown(map[string]int{"a": 1, "b": 6, "c": 3}, 10)

	require.Len(t, entries, 3)
	assert.Equal(t, BreakdownEntry{Label: "b", Count: 6, Percent: 60.0}, entries[0])
	assert.Equal(t, BreakdownEntry{Label: "c", Count: 3, Percent: 30.0}, entries[1])
	assert.Equal(t, BreakdownEntry{Label: "a", Count: 1, Percent: 10.0}, entries[2])
}

func TestSortedBreakdownRoundsToOneDecimal(t *testing.T) {
	entries := SortedBreakdown(map[string]int{"a": 1}, 3)
	require.Len(t, entries, 1)
	assert.InDelta(t, 33.3, entries[0].Percent, 1e-9)
}

func TestSortedBreakdownZeroTotal(t *testing.T) {
	entries := SortedBreakdown(map[string]int{}, 0)
	assert.Empty(t, entries)
}

func TestSortedBreakdownTieBreaksByLabel(t *testing.T) {
	entries := SortedBreakdown(map[string]int{"b": 2, "a": 2}, 4)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Label)
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.yaml")
	yaml := "- category: 商業\n  keywords: [店舗]\n- category: 住宅\n  keywords: [住宅]\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "商業", rules[0].Category)
}

func TestLoadRulesEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("[]\n"), 0o644))

	_, err := LoadRules(path)
	assert.Error(t, err)
}
