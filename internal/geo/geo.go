package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// earthRadiusMiles is the mean Earth radius used for great-circle distances.
const earthRadiusMiles = 3959.0

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// DistanceMiles returns the haversine great-circle distance between two
// points given in decimal degrees.
func DistanceMiles(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(lat1))*math.Cos(degreesToRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

// ValidCoordinates reports whether a lat/lon pair is a usable anchor point.
// (0, 0) is rejected: it only ever shows up as an unpopulated default.
func ValidCoordinates(lat, lon float64) bool {
	if lat == 0 && lon == 0 {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Centroid resolves a GeoJSON geometry to a single lat/lon point. Points pass
// through unchanged; polygons and multipolygons use the planar area centroid,
// which is accurate enough at trade-area scale.
func Centroid(rawGeoJSON string) (lat, lon float64, err error) {
	if rawGeoJSON == "" {
		return 0, 0, fmt.Errorf("empty geometry")
	}

	g, err := geojson.UnmarshalGeometry([]byte(rawGeoJSON))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse geometry: %w", err)
	}

	switch geom := g.Geometry().(type) {
	case orb.Point:
		return geom.Lat(), geom.Lon(), nil
	case orb.Polygon, orb.MultiPolygon:
		center, _ := planar.CentroidArea(geom)
		return center.Lat(), center.Lon(), nil
	default:
		center, _ := planar.CentroidArea(g.Geometry())
		return center.Lat(), center.Lon(), nil
	}
}
