package domain

import (
	"context"
	"errors"
)

// ErrNoData reports that the upstream service has nothing for the query.
var ErrNoData = errors.New("no data")

// Source fetches raw catalog records from an upstream seismic data service.
type Source interface {
	// Networks lists the networks known to the station service.
	Networks(ctx context.Context) ([]Network, error)

	// Stations returns stations of the given network codes. "*" selects all networks.
	Stations(ctx context.Context, networks []string) ([]RawStation, error)

	// Events returns events with origin times inside r.
	Events(ctx context.Context, r DateRange) ([]RawEvent, error)
}
