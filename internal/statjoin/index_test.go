package statjoin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiri-lab/atlas-cli/internal/model"
	"github.com/chiri-lab/atlas-cli/internal/unitcost"
)

func testResolver() *unitcost.Resolver {
	return unitcost.NewResolver([]unitcost.Rate{
		{Prefecture: "東京都", CostPerArea: 24.5},
		{Prefecture: "大阪府", CostPerArea: 20.9},
	})
}

func TestBuildComputesEstimatedAmount(t *testing.T) {
	idx := Build([]Row{
		{Prefecture: "東京都", City: "千代田区", Year: "2023", Month: "4", BuildingCount: 12, FloorAreaTotal: 3400, ResidenceArea: 2000},
	}, testResolver())

	rec, ok := idx.Lookup("東京都", "千代田区", "2023", "4")
	require.True(t, ok)
	assert.InDelta(t, 2000*24.5, rec.EstimatedAmount, 1e-9)
	assert.Equal(t, 12.0, rec.BuildingCount)
}

func TestBuildUnknownPrefectureZeroesAmount(t *testing.T) {
	idx := Build([]Row{
		{Prefecture: "unknownPref", City: "somewhere", Year: "2023", Month: "4", ResidenceArea: 9999},
	}, testResolver())

	rec, ok := idx.Lookup("unknownPref", "somewhere", "2023", "4")
	require.True(t, ok)
	assert.Equal(t, 0.0, rec.EstimatedAmount)
}

func TestBuildDropsRowsMissingKeyFields(t *testing.T) {
	idx := Build([]Row{
		{Prefecture: "", City: "千代田区", Year: "2023", Month: "4"},
		{Prefecture: "東京都", City: "  ", Year: "2023", Month: "4"},
		{Prefecture: "東京都", City: "千代田区", Year: "", Month: "4"},
		{Prefecture: "東京都", City: "千代田区", Year: "2023", Month: "4"},
	}, testResolver())

	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, 3, idx.Dropped())
}

func TestBuildDuplicateKeysLastWriteWins(t *testing.T) {
	idx := Build([]Row{
		{Prefecture: "東京都", City: "千代田区", Year: "2023", Month: "4", BuildingCount: 1},
		{Prefecture: " 東京都", City: "千代田　区", Year: "2023", Month: "4", BuildingCount: 2},
	}, testResolver())

	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, 1, idx.Duplicates())

	rec, ok := idx.Lookup("東京都", "千代田区", "2023", "4")
	require.True(t, ok)
	assert.Equal(t, 2.0, rec.BuildingCount)
}

func TestLookupWhitespaceTolerant(t *testing.T) {
	idx := Build([]Row{
		{Prefecture: "東京都", City: "千代田区", Year: "2023", Month: "4", BuildingCount: 7},
	}, testResolver())

	_, ok := idx.Lookup("東京 都", "千代田　区", "2023", "4")
	assert.True(t, ok)

	_, ok = idx.Lookup("東京都", "千代田区", "2023", "5")
	assert.False(t, ok)
}

func TestAttach(t *testing.T) {
	idx := Build([]Row{
		{Prefecture: "東京都", City: "千代田区", Year: "2023", Month: "4", BuildingCount: 12, FloorAreaTotal: 3400, ResidenceArea: 2000},
	}, testResolver())

	features := []model.GeometryFeature{
		{Prefecture: "東京都", City: "千代田区"},
		{Prefecture: "東京都", City: "港区"},
	}

	out := Attach(features, idx, "2023", "4")
	require.Len(t, out, 2)

	require.NotNil(t, out[0].BuildingCount)
	assert.Equal(t, 12.0, *out[0].BuildingCount)
	require.NotNil(t, out[0].EstimatedAmount)
	assert.InDelta(t, 2000*24.5, *out[0].EstimatedAmount, 1e-9)

	// Unmatched feature carries no-data sentinels, not zeros.
	assert.Nil(t, out[1].BuildingCount)
	assert.Nil(t, out[1].FloorAreaTotal)
	assert.Nil(t, out[1].EstimatedAmount)

	// Input slice is untouched.
	assert.Nil(t, features[0].BuildingCount)
}

func TestAttachIdempotent(t *testing.T) {
	idx := Build([]Row{
		{Prefecture: "東京都", City: "千代田区", Year: "2023", Month: "4", BuildingCount: 12},
	}, testResolver())

	features := []model.GeometryFeature{{Prefecture: "東京都", City: "千代田区"}}

	first := Attach(features, idx, "2023", "4")
	second := Attach(first, idx, "2023", "4")

	require.NotNil(t, second[0].BuildingCount)
	assert.Equal(t, *first[0].BuildingCount, *second[0].BuildingCount)
}

func TestAttachStalePeriodClearsIndicators(t *testing.T) {
	idx := Build([]Row{
		{Prefecture: "東京都", City: "千代田区", Year: "2023", Month: "4", BuildingCount: 12},
	}, testResolver())

	bc := 99.0
	features := []model.GeometryFeature{{Prefecture: "東京都", City: "千代田区", BuildingCount: &bc}}

	out := Attach(features, idx, "2023", "5")
	assert.Nil(t, out[0].BuildingCount)
}
