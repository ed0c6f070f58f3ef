package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjection_RoundTrip(t *testing.T) {
	for lon := -180.0; lon <= 180; lon += 7.5 {
		for lat := -89.5; lat <= 89.5; lat += 0.5 {
			p := GeoPoint{Lon: lon, Lat: lat}
			back := ToGeographic(ToPlanar(p))
			assert.InDelta(t, p.Lon, back.Lon, 1e-6, "lon at %v", p)
			assert.InDelta(t, p.Lat, back.Lat, 1e-6, "lat at %v", p)
		}
	}
}

func TestToPlanar_PolarClamp(t *testing.T) {
	assert.Equal(t, ToPlanar(GeoPoint{Lon: 10, Lat: 89.5}), ToPlanar(GeoPoint{Lon: 10, Lat: 90}))
	assert.Equal(t, ToPlanar(GeoPoint{Lon: 10, Lat: -89.5}), ToPlanar(GeoPoint{Lon: 10, Lat: -90}))
	assert.False(t, math.IsInf(ToPlanar(GeoPoint{Lat: 90}).Y, 0))
}

func TestToPlanar_KnownValues(t *testing.T) {
	origin := ToPlanar(GeoPoint{})
	assert.InDelta(t, 0, origin.X, 1e-9)
	assert.InDelta(t, 0, origin.Y, 1e-6)

	// 180 degrees maps to half the equator.
	edge := ToPlanar(GeoPoint{Lon: 180})
	assert.InDelta(t, math.Pi*EarthRadius, edge.X, 1e-6)

	// Longitude is not wrapped.
	beyond := ToPlanar(GeoPoint{Lon: 540})
	assert.InDelta(t, 3*math.Pi*EarthRadius, beyond.X, 1e-6)
}

func TestBatch_PreservesOrder(t *testing.T) {
	in := []GeoPoint{{Lon: 90, Lat: 62}, {Lon: 152, Lat: 78}, {Lon: -10, Lat: -45}}
	planar := ToPlanarBatch(in)
	require.Len(t, planar, 3)
	for i := range in {
		assert.Equal(t, ToPlanar(in[i]), planar[i])
	}

	back := ToGeographicBatch(planar)
	require.Len(t, back, 3)
	for i := range in {
		assert.InDelta(t, in[i].Lat, back[i].Lat, 1e-9)
	}

	assert.Empty(t, ToPlanarBatch(nil))
	assert.Empty(t, ToGeographicBatch([]PlanarPoint{}))
}

func TestDistance_Symmetric(t *testing.T) {
	a := GeoPoint{Lon: 120.5, Lat: 70.1}
	b := GeoPoint{Lon: 130.2, Lat: 65.7}

	for _, m := range []Method{Geodesic, Spherical} {
		t.Run(string(m), func(t *testing.T) {
			assert.InDelta(t, m.Distance(a, b), m.Distance(b, a), 1e-6)
			assert.Zero(t, m.Distance(a, a))
		})
	}
}

func TestDistance_OneDegreeOnEquator(t *testing.T) {
	a := GeoPoint{Lon: 0, Lat: 0}
	b := GeoPoint{Lon: 1, Lat: 0}

	// WGS84 equatorial arc: a * pi / 180.
	assert.InDelta(t, 111319.49, Distance(a, b), 0.01)
	assert.InDelta(t, 111319.49, Spherical.Distance(a, b), 0.01)
}

func TestInverse_Azimuths(t *testing.T) {
	a := GeoPoint{Lon: 0, Lat: 0}
	east := GeoPoint{Lon: 1, Lat: 0}
	north := GeoPoint{Lon: 0, Lat: 1}

	for _, m := range []Method{Geodesic, Spherical} {
		t.Run(string(m), func(t *testing.T) {
			r := m.Inverse(a, east)
			assert.InDelta(t, 90, r.Azimuth, 1e-6)
			assert.InDelta(t, 270, r.BackAzimuth, 1e-6)
			assert.InDelta(t, m.Distance(a, east), r.Distance, 1e-9)

			r = m.Inverse(a, north)
			assert.InDelta(t, 0, r.Azimuth, 1e-6)
			assert.InDelta(t, 180, r.BackAzimuth, 1e-6)
		})
	}
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod(" Geodesic ")
	require.NoError(t, err)
	assert.Equal(t, Geodesic, m)

	m, err = ParseMethod("spherical")
	require.NoError(t, err)
	assert.Equal(t, Spherical, m)

	_, err = ParseMethod("flat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flat")
}
