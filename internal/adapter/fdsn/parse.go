package fdsn

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/quake-profile-service/internal/domain"
)

// FDSN text format column positions.
//
//	network: Network|Description|StartTime|EndTime|TotalStations
//	station: Network|Station|Latitude|Longitude|Elevation|SiteName|StartTime|EndTime
//	event:   EventID|Time|Latitude|Longitude|Depth/km|Author|Catalog|Contributor|
//	         ContributorID|MagType|Magnitude|MagAuthor|EventLocationName
const (
	networkColumns = 1
	stationColumns = 4
	eventColumns   = 11
)

var timeLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// readRecords splits a pipe-separated body, dropping the "#" header line.
func readRecords(body []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.Comma = '|'
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read text response: %w", err)
		}
		records = append(records, rec)
	}
}

func parseNetworks(body []byte) ([]domain.Network, error) {
	records, err := readRecords(body)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(records))
	networks := make([]domain.Network, 0, len(records))
	for _, rec := range records {
		if len(rec) < networkColumns {
			continue
		}
		code := strings.TrimSpace(rec[0])
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		n := domain.Network{Code: code}
		if len(rec) > 1 {
			n.Description = strings.TrimSpace(rec[1])
		}
		if len(rec) > 4 {
			n.TotalStations, _ = strconv.Atoi(strings.TrimSpace(rec[4]))
		}
		networks = append(networks, n)
	}
	return networks, nil
}

func parseStations(body []byte, logger *slog.Logger) ([]domain.RawStation, error) {
	records, err := readRecords(body)
	if err != nil {
		return nil, err
	}

	stations := make([]domain.RawStation, 0, len(records))
	for _, rec := range records {
		if len(rec) < stationColumns {
			continue
		}
		lat, errLat := parseFloat(rec[2])
		lon, errLon := parseFloat(rec[3])
		if errLat != nil || errLon != nil {
			logger.Debug("skipping station without coordinates", "network", rec[0], "station", rec[1])
			continue
		}
		s := domain.RawStation{
			Network: strings.TrimSpace(rec[0]),
			Code:    strings.TrimSpace(rec[1]),
			Lat:     lat,
			Lon:     lon,
		}
		if len(rec) > 4 {
			s.Elevation, _ = parseOptionalFloat(rec[4])
		}
		if len(rec) > 5 {
			s.SiteName = strings.TrimSpace(rec[5])
		}
		stations = append(stations, s)
	}
	return stations, nil
}

// ParseEvents parses an FDSN text event listing, such as a saved event query
// response. Rows without a valid time or coordinates are skipped.
func ParseEvents(body []byte, logger *slog.Logger) ([]domain.RawEvent, error) {
	records, err := readRecords(body)
	if err != nil {
		return nil, err
	}

	events := make([]domain.RawEvent, 0, len(records))
	for _, rec := range records {
		if len(rec) < eventColumns {
			continue
		}
		originTime, errT := parseTime(rec[1])
		lat, errLat := parseFloat(rec[2])
		lon, errLon := parseFloat(rec[3])
		depth, errDepth := parseOptionalFloat(rec[4])
		if errT != nil || errLat != nil || errLon != nil || errDepth != nil {
			logger.Debug("skipping malformed event row", "event_id", rec[0])
			continue
		}
		// A missing or non-finite magnitude reads as 0.
		mag, _ := parseOptionalFloat(rec[10])

		e := domain.RawEvent{
			ID:        strings.TrimSpace(rec[0]),
			Time:      originTime,
			Lat:       lat,
			Lon:       lon,
			DepthKm:   depth,
			Author:    strings.TrimSpace(rec[5]),
			MagType:   strings.TrimSpace(rec[9]),
			Magnitude: mag,
		}
		if len(rec) > 12 {
			e.LocationName = strings.TrimSpace(rec[12])
		}
		events = append(events, e)
	}
	return events, nil
}

// parseFloat rejects NaN and infinities, which strconv accepts but JSON cannot carry.
func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}

// parseOptionalFloat treats an empty field as 0.
func parseOptionalFloat(s string) (float64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return parseFloat(s)
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}
