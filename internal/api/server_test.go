package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiri-lab/atlas-cli/internal/model"
	"github.com/chiri-lab/atlas-cli/internal/spatial"
	"github.com/chiri-lab/atlas-cli/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()

	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })

	points := []model.ProjectPoint{
		{Lat: 5, Lng: 5, Usage: "専用住宅", ConstructionType: "新築", FloorAreaText: "100"},
		{Lat: 6, Lng: 4, Usage: "店舗", ConstructionType: "新築", FloorAreaText: "200"},
		{Lat: 50, Lng: 50, Usage: "工場", ConstructionType: "増築", FloorAreaText: "999"},
	}

	classify := func(year, month, field string) (any, error) {
		if year == "2023" && month == "10" {
			return map[string]string{"year": year, "month": month, "field": field}, nil
		}
		return nil, eris.New("classify failed")
	}

	srv := NewServer(s, points, spatial.DefaultRules(), classify)
	ts := httptest.NewServer(srv.Router([]string{"*"}))
	t.Cleanup(ts.Close)
	return ts, s
}

func testSquare() model.Polygon {
	return model.Polygon{Vertices: model.Ring{
		{Lat: 0, Lng: 0}, {Lat: 0, Lng: 10}, {Lat: 10, Lng: 10}, {Lat: 10, Lng: 0},
	}}
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClassifyRequiresPeriod(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/classify?year=2023")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestClassify(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/classify?year=2023&month=10&field=estimated_amount")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "estimated_amount", body["field"])
}

func TestAnalyze(t *testing.T) {
	ts, _ := newTestServer(t)

	payload, err := json.Marshal(map[string]any{"polygon": testSquare()})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/analyze", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result model.AnalysisResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 2, result.Count)
	assert.InDelta(t, 300.0, result.TotalArea, 1e-9)
	assert.Equal(t, 1, result.UsageBreakdown["住宅"])
	assert.Equal(t, 1, result.UsageBreakdown["商業"])
}

func TestAnalyzeRejectsDegeneratePolygon(t *testing.T) {
	ts, _ := newTestServer(t)

	payload := `{"polygon":{"vertices":[{"lat":0,"lng":0},{"lat":1,"lng":1}]}}`
	resp, err := http.Post(ts.URL+"/analyze", "application/json", bytes.NewReader([]byte(payload)))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAreaLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)

	// Save
	payload, err := json.Marshal(map[string]any{"name": "渋谷区調査", "polygon": testSquare()})
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+"/areas", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var area model.SavedArea
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&area))
	resp.Body.Close()
	require.NotEmpty(t, area.ID)
	assert.Equal(t, "渋谷区調査", area.Name)

	// Get
	resp, err = http.Get(ts.URL + "/areas/" + area.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Analyze the saved area; a snapshot is persisted.
	resp, err = http.Post(ts.URL+"/areas/"+area.ID+"/analyze", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snapshot store.AnalysisSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snapshot))
	resp.Body.Close()
	assert.Equal(t, 2, snapshot.Result.Count)

	// History lists the snapshot.
	resp, err = http.Get(ts.URL + "/areas/" + area.ID + "/analyses")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snapshots []store.AnalysisSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snapshots))
	resp.Body.Close()
	assert.Len(t, snapshots, 1)

	// Delete
	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/areas/"+area.ID, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// Gone now.
	resp, err = http.Get(ts.URL + "/areas/" + area.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestGetAreaNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/areas/no-such-id")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
