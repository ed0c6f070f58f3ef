// Package profile extracts a depth cross-section from an event catalog along
// a two-point line drawn on the map.
package profile

import (
	"errors"
	"math"

	"github.com/couchcryptid/quake-profile-service/internal/domain"
	"github.com/couchcryptid/quake-profile-service/internal/geo"
	"github.com/paulmach/orb"
)

// DefaultHalfWidth is the corridor half-width as a fraction of the profile length.
const DefaultHalfWidth = 0.05

// metersPerDegree is the length of one degree of latitude used to pad a flat bounding box.
const metersPerDegree = 111320.0

// Options tune the corridor.
type Options struct {
	// HalfWidth is the maximum perpendicular offset, as a fraction of the profile length.
	HalfWidth float64
	// Method measures distances between geographic points.
	Method geo.Method
}

// DefaultOptions returns the 5% geodesic corridor.
func DefaultOptions() Options {
	return Options{HalfWidth: DefaultHalfWidth, Method: geo.Geodesic}
}

// Validate requires a half-width fraction in (0, 1).
func (o Options) Validate() error {
	if !(o.HalfWidth > 0 && o.HalfWidth < 1) {
		return errors.New("corridor half-width must be between 0 and 1")
	}
	return nil
}

// Line is a profile cut between two geographic endpoints.
type Line struct {
	From geo.GeoPoint `json:"from"`
	To   geo.GeoPoint `json:"to"`
}

// Point is an event projected onto the profile axis.
type Point struct {
	EventID  string  `json:"event_id,omitempty"`
	Distance float64 `json:"x"` // meters from Line.From along the profile
	Depth    float64 `json:"y"` // kilometers, positive downward
	Offset   float64 `json:"offset"`
}

// Range is a display axis interval. Start may exceed End for inverted axes.
type Range struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Profile is the depth-vs-distance series of the events inside the corridor.
type Profile struct {
	Line   Line    `json:"line"`
	Length float64 `json:"length"`
	Points []Point `json:"points"`
	XRange Range   `json:"x_range"`
	YRange Range   `json:"y_range"`
}

// Extract builds the cross-section for a drawn polyline. It reports false
// ("no profile") unless vertices holds exactly two distinct points. Events
// keep their input order.
func Extract(vertices []geo.PlanarPoint, events []domain.SeismicEvent, opts Options) (Profile, bool) {
	if len(vertices) != 2 {
		return Profile{}, false
	}

	line := Line{From: geo.ToGeographic(vertices[0]), To: geo.ToGeographic(vertices[1])}
	length := opts.Method.Distance(line.From, line.To)
	if !(length > 0) {
		return Profile{}, false
	}

	p := Profile{
		Line:   line,
		Length: length,
		Points: []Point{},
		XRange: Range{Start: -0.05 * length, End: length * 1.05},
	}

	halfWidth := opts.HalfWidth * length
	box := corridorBound(line, halfWidth)
	for _, e := range events {
		at := geo.ToGeographic(e.Position)
		if !strictlyInside(box, at) {
			continue
		}

		d1 := opts.Method.Distance(line.From, at)
		d2 := opts.Method.Distance(line.To, at)
		along, offset, ok := project(length, d1, d2)
		if !ok || !inCorridor(offset, halfWidth) {
			continue
		}
		p.Points = append(p.Points, Point{
			EventID:  e.ID,
			Distance: along,
			Depth:    e.Depth,
			Offset:   offset,
		})
	}

	p.YRange = depthRange(p.Points)
	return p, true
}

// project places an event on the profile axis from the triangle side lengths
// (profile length, distance to the first and to the second endpoint) using
// the law of cosines. It reports false when the angle is undefined.
func project(length, d1, d2 float64) (along, offset float64, ok bool) {
	cos := (length*length + d1*d1 - d2*d2) / (2 * length * d1)
	sin2 := 1 - cos*cos
	if math.IsNaN(sin2) || math.IsInf(cos, 0) || sin2 < 0 {
		return 0, 0, false
	}
	return d1 * cos, d1 * math.Sqrt(sin2), true
}

func inCorridor(offset, halfWidth float64) bool {
	return offset < halfWidth
}

// corridorBound is the bounding box of the two endpoints. An axis of zero
// extent (a due east-west or north-south line) is widened by the corridor
// half-width so the strict containment test can admit events at all.
func corridorBound(line Line, halfWidth float64) orb.Bound {
	box := orb.MultiPoint{line.From.Orb(), line.To.Orb()}.Bound()
	if box.Min.Lat() == box.Max.Lat() {
		d := halfWidth / metersPerDegree
		box.Min[1] -= d
		box.Max[1] += d
	}
	if box.Min.Lon() == box.Max.Lon() {
		d := halfWidth / (metersPerDegree * math.Cos(box.Min.Lat()*math.Pi/180))
		box.Min[0] -= d
		box.Max[0] += d
	}
	return box
}

// strictlyInside excludes points lying on the box edges.
func strictlyInside(b orb.Bound, p geo.GeoPoint) bool {
	return p.Lon > b.Min.Lon() && p.Lon < b.Max.Lon() &&
		p.Lat > b.Min.Lat() && p.Lat < b.Max.Lat()
}

// depthRange is the inverted depth axis with a 5% margin on both sides.
func depthRange(points []Point) Range {
	if len(points) == 0 {
		return Range{}
	}
	maxDepth := points[0].Depth
	for _, pt := range points[1:] {
		maxDepth = math.Max(maxDepth, pt.Depth)
	}
	return Range{Start: maxDepth * 1.05, End: -0.05 * maxDepth}
}
