// Command profile computes a depth cross-section and a Gutenberg-Richter fit
// from a saved FDSN text event listing, without running the service.
//
// Usage:
//
//	curl -o events.txt 'http://84.237.52.214:8080/fdsnws/event/1/query?format=text&starttime=2024-04-25&endtime=2024-04-26'
//	go run ./cmd/profile \
//	  -events events.txt \
//	  -from 125.0,70.0 -to 130.0,72.0 \
//	  -fit-min 1.0 -fit-max 3.0
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/quake-profile-service/internal/adapter/fdsn"
	"github.com/couchcryptid/quake-profile-service/internal/domain"
	"github.com/couchcryptid/quake-profile-service/internal/geo"
	"github.com/couchcryptid/quake-profile-service/internal/gr"
	"github.com/couchcryptid/quake-profile-service/internal/profile"
)

type output struct {
	Events   int              `json:"events"`
	Profile  *profile.Profile `json:"profile"`
	Curve    []gr.CurvePoint  `json:"curve"`
	Fit      *gr.Result       `json:"fit,omitempty"`
	FitLabel string           `json:"fit_label,omitempty"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	eventsPath := fs.String("events", "", "FDSN text event file")
	from := fs.String("from", "", "profile start as lon,lat")
	to := fs.String("to", "", "profile end as lon,lat")
	halfWidth := fs.Float64("half-width", profile.DefaultHalfWidth, "corridor half-width as a fraction of the profile length")
	method := fs.String("method", string(geo.Geodesic), "distance method: geodesic or spherical")
	fitMin := fs.Float64("fit-min", 0, "lowest magnitude bin of the fit")
	fitMax := fs.Float64("fit-max", -1, "highest magnitude bin of the fit; negative disables the fit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *eventsPath == "" || *from == "" || *to == "" {
		fs.Usage()
		return errors.New("missing required flags: -events, -from, -to")
	}

	m, err := geo.ParseMethod(*method)
	if err != nil {
		return err
	}
	opts := profile.Options{HalfWidth: *halfWidth, Method: m}
	if err := opts.Validate(); err != nil {
		return err
	}

	start, err := parsePoint(*from)
	if err != nil {
		return fmt.Errorf("parse -from: %w", err)
	}
	end, err := parsePoint(*to)
	if err != nil {
		return fmt.Errorf("parse -to: %w", err)
	}

	body, err := os.ReadFile(*eventsPath)
	if err != nil {
		return fmt.Errorf("read events: %w", err)
	}
	raw, err := fdsn.ParseEvents(body, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return err
	}
	events := domain.NormalizeEvents(raw, domain.DefaultSizeScale)

	res := output{
		Events: len(events),
		Curve:  gr.Cumulative(domain.Magnitudes(events), gr.DefaultBins),
	}

	vertices := geo.ToPlanarBatch([]geo.GeoPoint{start, end})
	if p, ok := profile.Extract(vertices, events, opts); ok {
		res.Profile = &p
	}

	if *fitMax >= 0 {
		fit := gr.Fit(res.Curve, selectRange(res.Curve, *fitMin, *fitMax))
		res.Fit = &fit
		res.FitLabel = fit.Label()
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func parsePoint(s string) (geo.GeoPoint, error) {
	lon, lat, ok := strings.Cut(s, ",")
	if !ok {
		return geo.GeoPoint{}, fmt.Errorf("expected lon,lat, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return geo.GeoPoint{}, fmt.Errorf("invalid longitude %q", lon)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return geo.GeoPoint{}, fmt.Errorf("invalid latitude %q", lat)
	}
	return geo.GeoPoint{Lon: x, Lat: y}, nil
}

// selectRange returns the indices of curve bins with magnitude in [lo, hi].
func selectRange(curve []gr.CurvePoint, lo, hi float64) []int {
	var idx []int
	for i, p := range curve {
		if p.Magnitude >= lo-1e-9 && p.Magnitude <= hi+1e-9 {
			idx = append(idx, i)
		}
	}
	return idx
}
