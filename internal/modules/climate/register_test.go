package climate

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hawaii-climate-server/internal/modules/climate/climatetest"
)

func newSeededServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	RegisterFeature(mux, climatetest.NewSeededDB(t))
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, ts *httptest.Server, path string, out any) {
	t.Helper()
	resp, err := ts.Client().Get(ts.URL + path)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode, path)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

type stats struct {
	Min *float64 `json:"min_temp"`
	Avg *float64 `json:"avg_temp"`
	Max *float64 `json:"max_temp"`
}

func TestRoutes_AgainstSeededStore(t *testing.T) {
	ts := newSeededServer(t)

	var precip []struct {
		Date string   `json:"date"`
		Prcp *float64 `json:"prcp"`
	}
	getJSON(t, ts, "/api/v1.0/precipitation", &precip)
	require.Len(t, precip, 6)
	for i := 1; i < len(precip); i++ {
		assert.LessOrEqual(t, precip[i-1].Date, precip[i].Date)
	}

	var stations [][]string
	getJSON(t, ts, "/api/v1.0/stations", &stations)
	require.Len(t, stations, len(climatetest.Stations))
	for _, s := range stations {
		assert.Len(t, s, 1)
	}

	var tobs []struct {
		Date string  `json:"date"`
		Tobs float64 `json:"tobs"`
	}
	getJSON(t, ts, "/api/v1.0/tobs", &tobs)
	assert.Len(t, tobs, 4)

	var start, startEnd []stats
	getJSON(t, ts, "/api/v1.0/start", &start)
	getJSON(t, ts, "/api/v1.0/start/end", &startEnd)
	require.Len(t, start, 1)
	require.Len(t, startEnd, 1)
	require.NotNil(t, start[0].Max)
	require.NotNil(t, startEnd[0].Max)
	assert.Equal(t, 90.0, *start[0].Max)
	assert.Equal(t, 81.0, *startEnd[0].Max)
	assert.LessOrEqual(t, *startEnd[0].Max, *start[0].Max)
}

func TestRoutes_StartIsIdempotent(t *testing.T) {
	ts := newSeededServer(t)

	var first, second []stats
	getJSON(t, ts, "/api/v1.0/start", &first)
	getJSON(t, ts, "/api/v1.0/start", &second)
	assert.Equal(t, first, second)
	require.NotNil(t, first[0].Min)
	require.NotNil(t, first[0].Avg)
	require.NotNil(t, first[0].Max)
}

func TestRoutes_PathDates(t *testing.T) {
	ts := newSeededServer(t)

	var empty []stats
	getJSON(t, ts, "/api/v1.0/2030-01-01", &empty)
	require.Len(t, empty, 1)
	assert.Nil(t, empty[0].Min)
	assert.Nil(t, empty[0].Avg)
	assert.Nil(t, empty[0].Max)

	var literal, explicit []stats
	getJSON(t, ts, "/api/v1.0/start/end", &literal)
	getJSON(t, ts, "/api/v1.0/2016-01-01/2017-08-23", &explicit)
	assert.Equal(t, literal, explicit)
}
