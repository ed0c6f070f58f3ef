package domain

import (
	"time"

	"github.com/couchcryptid/quake-profile-service/internal/geo"
)

// Network is an FDSN network as listed by the station service.
type Network struct {
	Code          string `json:"code"`
	Description   string `json:"description,omitempty"`
	TotalStations int    `json:"total_stations,omitempty"`
}

// RawStation is one row of a station-level FDSN text response.
type RawStation struct {
	Network   string
	Code      string
	Lat       float64
	Lon       float64
	Elevation float64
	SiteName  string
}

// RawEvent is one row of an FDSN event text response.
type RawEvent struct {
	ID           string
	Time         time.Time
	Lat          float64
	Lon          float64
	DepthKm      float64
	Author       string
	MagType      string
	Magnitude    float64
	LocationName string
}

// Station is a seismic station placed on the map.
type Station struct {
	Name     string          `json:"name"`
	Network  string          `json:"network,omitempty"`
	Origin   geo.GeoPoint    `json:"origin"`
	Position geo.PlanarPoint `json:"position"`
}

// SeismicEvent is an earthquake placed on the map.
type SeismicEvent struct {
	ID        string          `json:"id"`
	Time      time.Time       `json:"time"`
	Magnitude float64         `json:"mag"`
	MagType   string          `json:"mag_type,omitempty"`
	Depth     float64         `json:"depth"`
	Origin    geo.GeoPoint    `json:"origin"`
	Position  geo.PlanarPoint `json:"position"`
	Size      float64         `json:"size"`
	Region    string          `json:"region,omitempty"`
}

// DateRange is an inclusive event query window.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
