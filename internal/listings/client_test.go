package listings

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *Client {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewClient(serverURL, logger)
}

func TestSearchProperties(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/properties/search", r.URL.Path)
		assert.Equal(t, "33.75", r.URL.Query().Get("latitude"))
		assert.Equal(t, "-84.39", r.URL.Query().Get("longitude"))
		assert.Equal(t, "3", r.URL.Query().Get("radius"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"p1","name":"Midtown Lofts","latitude":33.76,"longitude":-84.39,
			 "min_price":1400,"max_price":1600,"min_bedrooms":1,"max_bedrooms":2,
			 "min_square_feet":700,"occupancy_rate":93.5,"year_built":2021},
			{"id":"p2","name":"Old Fourth Ward Flats","latitude":33.77,"longitude":-84.37,
			 "min_price":1100,"max_price":1200,"min_bedrooms":0,"max_bedrooms":0}
		]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	candidates, err := client.SearchProperties(33.75, -84.39, 3, 50)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "p1", candidates[0].ID)
	assert.Equal(t, "Midtown Lofts", candidates[0].Name)
	assert.Equal(t, 1400.0, candidates[0].MinPrice)
	require.NotNil(t, candidates[0].OccupancyRate)
	assert.Equal(t, 93.5, *candidates[0].OccupancyRate)
	require.NotNil(t, candidates[0].YearBuilt)
	assert.Equal(t, 2021, *candidates[0].YearBuilt)

	// Optional fields stay nil when the provider omits them
	assert.Nil(t, candidates[1].OccupancyRate)
	assert.Nil(t, candidates[1].YearBuilt)
}

func TestSearchProperties_EmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	candidates, err := client.SearchProperties(33.75, -84.39, 3, 50)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestSearchProperties_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.SearchProperties(33.75, -84.39, 3, 50)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestSearchProperties_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.SearchProperties(33.75, -84.39, 3, 50)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse listings response")
}

func TestSearchProperties_ConnectionRefused(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1")
	_, err := client.SearchProperties(33.75, -84.39, 3, 50)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listings request failed")
}

func TestSearchEndpoint(t *testing.T) {
	client := newTestClient("http://localhost:8081")
	assert.Equal(t, "http://localhost:8081/properties/search", client.SearchEndpoint())
}
