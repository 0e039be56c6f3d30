// Package source fetches topology data from the router's administration
// API and normalizes it into builder input.
//
// Four endpoints feed the dashboard: router info, the client device list,
// the mesh peer list and the feature flags. Each is polled independently;
// a failed endpoint leaves its slice of the payload zero rather than
// failing the whole refresh, so the builder can still produce a renderable
// model from partial data.
package source

import (
	"context"
)

// Endpoint names, used for cache keys and log fields.
const (
	EndpointRouter   = "router"
	EndpointDevices  = "devices"
	EndpointMesh     = "mesh"
	EndpointFeatures = "features"
)

// Provider supplies one full topology payload per call. Implementations:
// [Client] for the live router API, [FileSource] for a payload stored on
// disk.
type Provider interface {
	Fetch(ctx context.Context) (Payload, error)
}
