package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceMiles_IdenticalPoints(t *testing.T) {
	assert.Equal(t, 0.0, DistanceMiles(33.75, -84.39, 33.75, -84.39))
	assert.Equal(t, 0.0, DistanceMiles(0, 0, 0, 0))
	assert.Equal(t, 0.0, DistanceMiles(-45.5, 170.2, -45.5, 170.2))
}

func TestDistanceMiles_KnownDistance(t *testing.T) {
	// Atlanta to Dallas is roughly 720 miles great-circle
	d := DistanceMiles(33.7490, -84.3880, 32.7767, -96.7970)
	assert.InDelta(t, 720, d, 15)
}

func TestDistanceMiles_ShortDistance(t *testing.T) {
	// One degree of latitude is about 69 miles
	d := DistanceMiles(33.0, -84.0, 34.0, -84.0)
	assert.InDelta(t, 69.1, d, 0.5)
}

func TestDistanceMiles_Symmetric(t *testing.T) {
	a := DistanceMiles(33.75, -84.39, 33.80, -84.40)
	b := DistanceMiles(33.80, -84.40, 33.75, -84.39)
	assert.InDelta(t, a, b, 1e-9)
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, ValidCoordinates(33.75, -84.39))
	assert.False(t, ValidCoordinates(0, 0))
	assert.False(t, ValidCoordinates(91, 0))
	assert.False(t, ValidCoordinates(0, -181))
}

func TestCentroid_Point(t *testing.T) {
	lat, lon, err := Centroid(`{"type":"Point","coordinates":[-84.39,33.75]}`)
	require.NoError(t, err)
	assert.InDelta(t, 33.75, lat, 1e-9)
	assert.InDelta(t, -84.39, lon, 1e-9)
}

func TestCentroid_Polygon(t *testing.T) {
	// Unit square centered on (0.5, 0.5)
	poly := `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}`
	lat, lon, err := Centroid(poly)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, lat, 1e-9)
	assert.InDelta(t, 0.5, lon, 1e-9)
}

func TestCentroid_InvalidGeometry(t *testing.T) {
	_, _, err := Centroid("")
	assert.Error(t, err)

	_, _, err = Centroid("not geojson")
	assert.Error(t, err)
}
