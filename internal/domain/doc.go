// Package domain models seismic station and earthquake catalog data as served
// by an FDSN web service, and shapes it into the series a map dashboard draws.
//
// # Data Source
//
// Stations and events come from the FDSN station and event web services
// (https://www.fdsn.org/webservices/). Both are queried in the pipe-separated
// "text" format. The event service is queried with nodata=404, so an empty
// date range is a 404 (or 204) rather than an empty body.
//
// # FDSN Data Conventions
//
// Coordinates:
//
//	WGS84 latitude and longitude in decimal degrees.
//	Map positions are spherical Mercator meters (see package geo), with
//	latitude clamped to ±89.5° before projection.
//
// Depth:
//
//	Kilometers below the surface, positive downward. Depth charts keep the
//	value positive and invert the axis instead of negating depths.
//
// Magnitude:
//
//	The preferred magnitude of the event. Non-positive and missing values
//	are normalized to exactly 0; there is no minimum size.
//
// Marker size:
//
//	size = magnitude × scale, where scale defaults to 6 and is adjustable
//	per session. Rescaling never refetches data.
//
// Network selection:
//
//	Station queries take a comma-separated list of network codes, or "*"
//	for every network. No selected network means no stations.
//
// # Failure Handling
//
// [Catalog] is the boundary to the upstream service. Every upstream failure,
// including the no-data condition, is logged and turned into an empty
// collection so the dashboard degrades to a cleared view.
package domain
