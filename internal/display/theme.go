// Package display holds styling for the map and charts. Nothing in the
// computation packages reads it; it is served to the browser as-is.
package display

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/couchcryptid/quake-profile-service/internal/geo"
)

// Theme is the dashboard styling.
type Theme struct {
	Font        string  `mapstructure:"font" json:"font"`
	FontSize    string  `mapstructure:"font_size" json:"font_size"`
	StationSize float64 `mapstructure:"station_size" json:"station_size"`
	TextSize    float64 `mapstructure:"text_size" json:"text_size"`
	TextOffset  float64 `mapstructure:"text_offset" json:"text_offset"`
	Colors      Colors  `mapstructure:"colors" json:"colors"`
	Extent      Extent  `mapstructure:"extent" json:"extent"`
}

// Colors of the map and chart glyphs.
type Colors struct {
	Station string `mapstructure:"station" json:"station"`
	Event   string `mapstructure:"event" json:"event"`
	Profile string `mapstructure:"profile" json:"profile"`
	Depth   string `mapstructure:"depth" json:"depth"`
	Fit     string `mapstructure:"fit" json:"fit"`
}

// Extent is the initial map window in degrees.
type Extent struct {
	MinLon float64 `mapstructure:"min_lon" json:"min_lon"`
	MaxLon float64 `mapstructure:"max_lon" json:"max_lon"`
	MinLat float64 `mapstructure:"min_lat" json:"min_lat"`
	MaxLat float64 `mapstructure:"max_lat" json:"max_lat"`
}

// Planar returns the south-west and north-east corners of the extent in map coordinates.
func (e Extent) Planar() [2]geo.PlanarPoint {
	corners := geo.ToPlanarBatch([]geo.GeoPoint{
		{Lon: e.MinLon, Lat: e.MinLat},
		{Lon: e.MaxLon, Lat: e.MaxLat},
	})
	return [2]geo.PlanarPoint{corners[0], corners[1]}
}

// LoadTheme reads the theme from an optional YAML file at path, then from
// QUAKE_THEME_* environment variables (QUAKE_THEME_EXTENT_MIN_LON -> extent.min_lon).
func LoadTheme(path string) (Theme, error) {
	v := viper.New()

	v.SetDefault("font", "tahoma")
	v.SetDefault("font_size", "15px")
	v.SetDefault("station_size", 25)
	v.SetDefault("text_size", 10)
	v.SetDefault("text_offset", -15)
	v.SetDefault("colors.station", "blue")
	v.SetDefault("colors.event", "red")
	v.SetDefault("colors.profile", "green")
	v.SetDefault("colors.depth", "red")
	v.SetDefault("colors.fit", "firebrick")
	v.SetDefault("extent.min_lon", 90)
	v.SetDefault("extent.max_lon", 152)
	v.SetDefault("extent.min_lat", 62)
	v.SetDefault("extent.max_lat", 78)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Theme{}, fmt.Errorf("read theme %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("QUAKE_THEME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var t Theme
	if err := v.Unmarshal(&t); err != nil {
		return Theme{}, fmt.Errorf("unmarshal theme: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Theme{}, err
	}
	return t, nil
}

// Validate checks sizes and the extent.
func (t Theme) Validate() error {
	var errs []string
	if t.StationSize < 5 || t.StationSize > 50 {
		errs = append(errs, fmt.Sprintf("station_size must be 5-50, got %g", t.StationSize))
	}
	if t.TextSize < 0 || t.TextSize > 20 {
		errs = append(errs, fmt.Sprintf("text_size must be 0-20, got %g", t.TextSize))
	}
	if t.TextOffset < -50 || t.TextOffset > 50 {
		errs = append(errs, fmt.Sprintf("text_offset must be -50-50, got %g", t.TextOffset))
	}
	if !(t.Extent.MinLon < t.Extent.MaxLon) || !(t.Extent.MinLat < t.Extent.MaxLat) {
		errs = append(errs, "extent min must be below max")
	}
	if t.Extent.MinLat < -geo.MaxLatitude || t.Extent.MaxLat > geo.MaxLatitude {
		errs = append(errs, fmt.Sprintf("extent latitude must be within ±%g", geo.MaxLatitude))
	}

	if len(errs) > 0 {
		return fmt.Errorf("theme validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
