package geo

import (
	"fmt"
	"strings"

	orbgeo "github.com/paulmach/orb/geo"
	"github.com/tidwall/geodesic"
)

// Method selects how distances between geographic points are measured.
type Method string

const (
	// Geodesic solves the inverse problem on the WGS84 ellipsoid.
	Geodesic Method = "geodesic"
	// Spherical uses the haversine formula on a sphere of EarthRadius.
	Spherical Method = "spherical"
)

// ParseMethod accepts "geodesic" or "spherical" (case-insensitive).
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case Geodesic, Spherical:
		return m, nil
	default:
		return "", fmt.Errorf("unknown distance method %q", s)
	}
}

// InverseResult is the solution of the inverse geodesic problem between two points.
type InverseResult struct {
	Distance    float64 // meters
	Azimuth     float64 // forward azimuth at the first point, degrees clockwise from north
	BackAzimuth float64 // azimuth from the second point back to the first
}

// Inverse returns distance and azimuths from p1 to p2.
func (m Method) Inverse(p1, p2 GeoPoint) InverseResult {
	if m == Spherical {
		az := orbgeo.Bearing(p1.Orb(), p2.Orb())
		baz := orbgeo.Bearing(p2.Orb(), p1.Orb())
		return InverseResult{
			Distance:    orbgeo.DistanceHaversine(p1.Orb(), p2.Orb()),
			Azimuth:     normalizeAzimuth(az),
			BackAzimuth: normalizeAzimuth(baz),
		}
	}

	var s12, azi1, azi2 float64
	geodesic.WGS84.Inverse(p1.Lat, p1.Lon, p2.Lat, p2.Lon, &s12, &azi1, &azi2)
	return InverseResult{
		Distance:    s12,
		Azimuth:     normalizeAzimuth(azi1),
		BackAzimuth: normalizeAzimuth(azi2 + 180),
	}
}

// Distance returns the distance in meters between p1 and p2. It is symmetric.
func (m Method) Distance(p1, p2 GeoPoint) float64 {
	if m == Spherical {
		return orbgeo.DistanceHaversine(p1.Orb(), p2.Orb())
	}
	var s12 float64
	geodesic.WGS84.Inverse(p1.Lat, p1.Lon, p2.Lat, p2.Lon, &s12, nil, nil)
	return s12
}

// Distance measures p1 to p2 on the WGS84 ellipsoid.
func Distance(p1, p2 GeoPoint) float64 {
	return Geodesic.Distance(p1, p2)
}

func normalizeAzimuth(az float64) float64 {
	for az < 0 {
		az += 360
	}
	for az >= 360 {
		az -= 360
	}
	return az
}
