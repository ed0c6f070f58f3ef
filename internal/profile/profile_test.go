package profile

import (
	"testing"

	"github.com/couchcryptid/quake-profile-service/internal/domain"
	"github.com/couchcryptid/quake-profile-service/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planar(lon, lat float64) geo.PlanarPoint {
	return geo.ToPlanar(geo.GeoPoint{Lon: lon, Lat: lat})
}

func event(id string, lon, lat, depth float64) domain.SeismicEvent {
	origin := geo.GeoPoint{Lon: lon, Lat: lat}
	return domain.SeismicEvent{ID: id, Origin: origin, Position: geo.ToPlanar(origin), Depth: depth}
}

func ids(points []Point) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.EventID
	}
	return out
}

func TestExtract_VertexCount(t *testing.T) {
	events := []domain.SeismicEvent{event("a", 0.5, 0.001, 10)}

	tests := []struct {
		name     string
		vertices []geo.PlanarPoint
	}{
		{"no vertices", nil},
		{"one vertex", []geo.PlanarPoint{planar(0, 0)}},
		{"three vertices", []geo.PlanarPoint{planar(0, 0), planar(1, 0), planar(2, 0)}},
		{"zero length", []geo.PlanarPoint{planar(1, 1), planar(1, 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := Extract(tt.vertices, events, DefaultOptions())
			assert.False(t, ok)
			assert.Empty(t, p.Points)
		})
	}
}

func TestExtract_EquatorMidpoint(t *testing.T) {
	vertices := []geo.PlanarPoint{planar(0, 0), planar(1, 0)}
	events := []domain.SeismicEvent{
		event("mid", 0.5, 0.001, 50),
		event("far", 0.5, 1.0, 10),
		event("west", -0.2, 0.001, 30),
	}

	p, ok := Extract(vertices, events, DefaultOptions())
	require.True(t, ok)
	assert.InDelta(t, 111319.49, p.Length, 0.01)

	require.Len(t, p.Points, 1)
	assert.Equal(t, "mid", p.Points[0].EventID)
	assert.Equal(t, 50.0, p.Points[0].Depth)
	assert.InDelta(t, p.Length/2, p.Points[0].Distance, p.Length*1e-3)
	assert.Less(t, p.Points[0].Offset, 0.01*p.Length)
}

func TestExtract_NoEvents(t *testing.T) {
	p, ok := Extract([]geo.PlanarPoint{planar(0, 0), planar(1, 0)}, nil, DefaultOptions())
	require.True(t, ok)
	assert.Empty(t, p.Points)
	assert.Equal(t, Range{}, p.YRange)
}

func TestExtract_SwappedEndpointsMirror(t *testing.T) {
	a, b := planar(120, 65), planar(130, 70)
	events := []domain.SeismicEvent{
		event("e1", 121, 65.6, 5),
		event("e2", 125, 67.8, 15),
		event("e3", 129, 69.4, 25),
		event("off", 125, 66.0, 35),
		event("outside", 135, 67, 45),
	}

	fwd, ok := Extract([]geo.PlanarPoint{a, b}, events, DefaultOptions())
	require.True(t, ok)
	rev, ok := Extract([]geo.PlanarPoint{b, a}, events, DefaultOptions())
	require.True(t, ok)

	assert.InDelta(t, fwd.Length, rev.Length, 1e-6)
	require.Equal(t, ids(fwd.Points), ids(rev.Points))
	require.NotEmpty(t, fwd.Points)
	assert.NotContains(t, ids(fwd.Points), "outside")

	for i := range fwd.Points {
		assert.InDelta(t, fwd.Length-fwd.Points[i].Distance, rev.Points[i].Distance, 1e-3)
		assert.InDelta(t, fwd.Points[i].Offset, rev.Points[i].Offset, 1e-3)
	}
}

func TestExtract_BoundingBoxEdgeExcluded(t *testing.T) {
	a, b := planar(120, 65), planar(130, 70)

	onEdge := domain.SeismicEvent{ID: "edge", Position: geo.PlanarPoint{X: a.X, Y: planar(120, 65.01).Y}, Depth: 7}
	inside := event("inside", 120.3, 65.16, 9)

	p, ok := Extract([]geo.PlanarPoint{a, b}, []domain.SeismicEvent{onEdge, inside}, DefaultOptions())
	require.True(t, ok)
	assert.Equal(t, []string{"inside"}, ids(p.Points))
}

func TestExtract_HalfWidth(t *testing.T) {
	vertices := []geo.PlanarPoint{planar(0, 0), planar(1, 0)}
	events := []domain.SeismicEvent{event("e", 0.5, 0.03, 12)}

	wide, ok := Extract(vertices, events, Options{HalfWidth: 0.05, Method: geo.Geodesic})
	require.True(t, ok)
	require.Len(t, wide.Points, 1)

	// Offset is about 3.3 km, or 3% of the profile.
	narrow, ok := Extract(vertices, events, Options{HalfWidth: 0.02, Method: geo.Geodesic})
	require.True(t, ok)
	assert.Empty(t, narrow.Points)
}

func TestExtract_SphericalMethod(t *testing.T) {
	vertices := []geo.PlanarPoint{planar(0, 0), planar(1, 0)}
	events := []domain.SeismicEvent{event("mid", 0.5, 0.001, 50)}

	p, ok := Extract(vertices, events, Options{HalfWidth: 0.05, Method: geo.Spherical})
	require.True(t, ok)
	require.Len(t, p.Points, 1)
	assert.InDelta(t, p.Length/2, p.Points[0].Distance, p.Length*1e-3)
}

func TestExtract_AxisRanges(t *testing.T) {
	vertices := []geo.PlanarPoint{planar(0, 0), planar(1, 0)}
	events := []domain.SeismicEvent{
		event("shallow", 0.3, 0.001, 10),
		event("deep", 0.6, -0.002, 40),
	}

	p, ok := Extract(vertices, events, DefaultOptions())
	require.True(t, ok)
	require.Len(t, p.Points, 2)
	assert.Equal(t, []string{"shallow", "deep"}, ids(p.Points))

	assert.InDelta(t, -0.05*p.Length, p.XRange.Start, 1e-9)
	assert.InDelta(t, 1.05*p.Length, p.XRange.End, 1e-9)
	assert.InDelta(t, 42.0, p.YRange.Start, 1e-9)
	assert.InDelta(t, -2.0, p.YRange.End, 1e-9)
}

func TestProject(t *testing.T) {
	along, offset, ok := project(5, 3, 4)
	require.True(t, ok)
	assert.InDelta(t, 1.8, along, 1e-12)
	assert.InDelta(t, 2.4, offset, 1e-12)

	_, _, ok = project(5, 0, 5)
	assert.False(t, ok, "zero distance to the first endpoint")

	_, _, ok = project(5, 1, 10)
	assert.False(t, ok, "impossible triangle")
}

func TestInCorridor_StrictBoundary(t *testing.T) {
	assert.True(t, inCorridor(4.999, 5))
	assert.False(t, inCorridor(5, 5))
	assert.False(t, inCorridor(5.001, 5))
}

func TestOptions_Validate(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())
	assert.Error(t, Options{HalfWidth: 0}.Validate())
	assert.Error(t, Options{HalfWidth: 1}.Validate())
}
