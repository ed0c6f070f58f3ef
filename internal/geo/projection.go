// Package geo converts between geographic and spherical-Mercator planar
// coordinates and measures distances between geographic points.
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	// EarthRadius is the WGS84 equatorial radius in meters, the spherical-Mercator sphere.
	EarthRadius = 6378137.0

	// MaxLatitude bounds the forward projection; Mercator diverges at the poles.
	MaxLatitude = 89.5
)

// GeoPoint is a longitude/latitude pair in degrees.
type GeoPoint struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Orb returns the point in orb's [lon, lat] order.
func (p GeoPoint) Orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// PlanarPoint is a spherical-Mercator coordinate in meters.
type PlanarPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ClampLatitude limits lat to [-MaxLatitude, MaxLatitude].
func ClampLatitude(lat float64) float64 {
	return math.Max(-MaxLatitude, math.Min(MaxLatitude, lat))
}

// ToPlanar projects a geographic point. Longitude is passed through unbounded.
func ToPlanar(p GeoPoint) PlanarPoint {
	lat := ClampLatitude(p.Lat)
	return PlanarPoint{
		X: EarthRadius * radians(p.Lon),
		Y: EarthRadius * math.Log(math.Tan(math.Pi/4+radians(lat)/2)),
	}
}

// ToGeographic is the inverse of ToPlanar.
func ToGeographic(p PlanarPoint) GeoPoint {
	return GeoPoint{
		Lon: degrees(p.X / EarthRadius),
		Lat: degrees(2*math.Atan(math.Exp(p.Y/EarthRadius)) - math.Pi/2),
	}
}

// ToPlanarBatch projects points element-wise, preserving order.
func ToPlanarBatch(points []GeoPoint) []PlanarPoint {
	out := make([]PlanarPoint, len(points))
	for i, p := range points {
		out[i] = ToPlanar(p)
	}
	return out
}

// ToGeographicBatch unprojects points element-wise, preserving order.
func ToGeographicBatch(points []PlanarPoint) []GeoPoint {
	out := make([]GeoPoint, len(points))
	for i, p := range points {
		out[i] = ToGeographic(p)
	}
	return out
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
