package session

import (
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/quake-profile-service/internal/domain"
)

// StationFeatures renders stations as GeoJSON points in geographic coordinates.
// Planar map coordinates travel as x/y properties.
func StationFeatures(stations []domain.Station) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, s := range stations {
		f := geojson.NewFeature(s.Origin.Orb())
		f.ID = s.Network + "." + s.Name
		f.Properties["name"] = s.Name
		f.Properties["network"] = s.Network
		f.Properties["x"] = s.Position.X
		f.Properties["y"] = s.Position.Y
		fc.Append(f)
	}
	return fc
}

// EventFeatures renders sized events as GeoJSON points.
func EventFeatures(events []domain.SeismicEvent) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, e := range events {
		f := geojson.NewFeature(e.Origin.Orb())
		f.ID = e.ID
		f.Properties["time"] = e.Time
		f.Properties["mag"] = e.Magnitude
		f.Properties["mag_type"] = e.MagType
		f.Properties["depth"] = e.Depth
		f.Properties["size"] = e.Size
		f.Properties["x"] = e.Position.X
		f.Properties["y"] = e.Position.Y
		if e.Region != "" {
			f.Properties["region"] = e.Region
		}
		fc.Append(f)
	}
	return fc
}
