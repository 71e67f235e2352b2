package loader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPointsCSV(t *testing.T) {
	csv := "lat,lng,usage,construction_type,floor_area,permit_date,completion_date\n" +
		"35.68,139.74,専用住宅,木造,120.5㎡,2023-04-01,2023-10-01\n" +
		"35.69,139.75,飲食店舗,鉄骨造,300,2023-05-01,\n"

	points, err := ReadPointsCSV(strings.NewReader(csv), PointCSVOptions{})
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, 35.68, points[0].Lat)
	assert.Equal(t, "専用住宅", points[0].Usage)
	assert.Equal(t, "120.5㎡", points[0].FloorAreaText)
	assert.Equal(t, "2023-10-01", points[0].CompletionDate)
	assert.Empty(t, points[1].CompletionDate)
}

func TestReadPointsCSVDropsUnparsableCoordinates(t *testing.T) {
	csv := "lat,lng,usage\n" +
		"nan?,139.74,専用住宅\n" +
		"35.68,,専用住宅\n" +
		"35.68,139.74,専用住宅\n"

	points, err := ReadPointsCSV(strings.NewReader(csv), PointCSVOptions{})
	require.NoError(t, err)
	assert.Len(t, points, 1)
}

func TestReadPointsCSVMissingCoordinateColumn(t *testing.T) {
	_, err := ReadPointsCSV(strings.NewReader("lat,usage\n35.68,住宅\n"), PointCSVOptions{})
	assert.Error(t, err)
}
