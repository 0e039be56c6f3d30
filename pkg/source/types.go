package source

import (
	"github.com/topoview/topoview/pkg/topo"
)

// Connection type strings used by the device-list endpoint.
const (
	ConnectionWired    = "wired"
	ConnectionWireless = "wireless"
)

// RouterInfo is the router-info endpoint response.
type RouterInfo struct {
	Model     string `json:"model"`
	IPAddress string `json:"ipAddress"`
	IsOnline  bool   `json:"isOnline"`
}

// DeviceInfo is one entry of the device-list endpoint response. Devices
// arrive in the order the router reports them; that order is significant
// for id synthesis downstream.
type DeviceInfo struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	IsOnline       bool    `json:"isOnline"`
	ConnectionType string  `json:"connectionType"`
	DeviceType     string  `json:"deviceType"`
	IPAddress      string  `json:"ipAddress"`
	MACAddress     string  `json:"macAddress"`
	DownloadSpeed  float64 `json:"downloadSpeed"`
	UploadSpeed    float64 `json:"uploadSpeed"`
	MeshPeerID     string  `json:"meshPeerId,omitempty"`
}

// MeshInfo is the mesh endpoint response.
type MeshInfo struct {
	Peers []string `json:"peers"`
}

// FeatureFlags is the feature-flags endpoint response.
type FeatureFlags struct {
	MeshIsActive bool `json:"meshIsActive"`
}

// Payload aggregates one fetch across all endpoints. A nil Router means
// the router-info endpoint failed or has not been fetched.
type Payload struct {
	Router   *RouterInfo  `json:"router,omitempty"`
	Devices  []DeviceInfo `json:"devices"`
	Mesh     MeshInfo     `json:"mesh"`
	Features FeatureFlags `json:"features"`
}

// Empty reports whether no endpoint returned any data, i.e. the fetch
// failed entirely rather than partially.
func (p Payload) Empty() bool {
	return p.Router == nil && len(p.Devices) == 0 && len(p.Mesh.Peers) == 0
}

// ToBuildInput converts the wire payload into builder input, preserving
// device order.
func (p Payload) ToBuildInput() topo.BuildInput {
	in := topo.BuildInput{
		MeshPeers:  p.Mesh.Peers,
		MeshActive: p.Features.MeshIsActive,
	}
	if p.Router != nil {
		in.Router = &topo.RouterDescriptor{
			Model:     p.Router.Model,
			IPAddress: p.Router.IPAddress,
			Online:    p.Router.IsOnline,
		}
	}
	in.Devices = make([]topo.DeviceRecord, 0, len(p.Devices))
	for _, d := range p.Devices {
		in.Devices = append(in.Devices, topo.DeviceRecord{
			ID:           d.ID,
			Name:         d.Name,
			Online:       d.IsOnline,
			Wireless:     d.ConnectionType == ConnectionWireless,
			Category:     d.DeviceType,
			IPAddress:    d.IPAddress,
			MACAddress:   d.MACAddress,
			DownloadRate: d.DownloadSpeed,
			UploadRate:   d.UploadSpeed,
			PeerID:       d.MeshPeerID,
		})
	}
	return in
}
