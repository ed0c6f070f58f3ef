package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/couchcryptid/quake-profile-service/internal/geo"
)

// DefaultSizeScale is the marker size per unit of magnitude.
const DefaultSizeScale = 6.0

const dateLayout = "2006-01-02"

// NormalizeStations projects raw stations onto the map, preserving order.
func NormalizeStations(raw []RawStation) []Station {
	stations := make([]Station, len(raw))
	for i, r := range raw {
		origin := geo.GeoPoint{Lon: r.Lon, Lat: r.Lat}
		stations[i] = Station{
			Name:     r.Code,
			Network:  r.Network,
			Origin:   origin,
			Position: geo.ToPlanar(origin),
		}
	}
	return stations
}

// NormalizeEvents projects raw events onto the map, clamps non-positive
// magnitudes to 0 and sizes markers by magnitude × scale.
func NormalizeEvents(raw []RawEvent, scale float64) []SeismicEvent {
	events := make([]SeismicEvent, len(raw))
	for i, r := range raw {
		origin := geo.GeoPoint{Lon: r.Lon, Lat: r.Lat}
		mag := normalizeMagnitude(r.Magnitude)
		events[i] = SeismicEvent{
			ID:        r.ID,
			Time:      r.Time.UTC(),
			Magnitude: mag,
			MagType:   r.MagType,
			Depth:     r.DepthKm,
			Origin:    origin,
			Position:  geo.ToPlanar(origin),
			Size:      mag * scale,
			Region:    r.LocationName,
		}
	}
	return events
}

// Rescale returns a copy of events with marker sizes recomputed for scale.
func Rescale(events []SeismicEvent, scale float64) []SeismicEvent {
	out := make([]SeismicEvent, len(events))
	for i, e := range events {
		e.Size = e.Magnitude * scale
		out[i] = e
	}
	return out
}

// Magnitudes extracts event magnitudes in order.
func Magnitudes(events []SeismicEvent) []float64 {
	mags := make([]float64, len(events))
	for i, e := range events {
		mags[i] = e.Magnitude
	}
	return mags
}

// normalizeMagnitude maps non-positive and NaN magnitudes to 0.
func normalizeMagnitude(m float64) float64 {
	if m > 0 && !math.IsInf(m, 1) {
		return m
	}
	return 0
}

// ParseDateRange parses ISO 8601 dates (YYYY-MM-DD) or RFC 3339 timestamps.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := parseDate(start)
	if err != nil {
		return DateRange{}, fmt.Errorf("parse start date: %w", err)
	}
	e, err := parseDate(end)
	if err != nil {
		return DateRange{}, fmt.Errorf("parse end date: %w", err)
	}
	r := DateRange{Start: s, End: e}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// Validate rejects zero and reversed ranges.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return errors.New("date range requires start and end")
	}
	if r.End.Before(r.Start) {
		return errors.New("date range end is before start")
	}
	return nil
}

// DefaultDateRange is the window from two days ago to yesterday, in UTC dates.
func DefaultDateRange() DateRange {
	today := clock.Now().UTC().Truncate(24 * time.Hour)
	return DateRange{
		Start: today.AddDate(0, 0, -2),
		End:   today.AddDate(0, 0, -1),
	}
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t.UTC(), nil
}
