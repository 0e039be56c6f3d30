package simulator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/topoview/topoview/pkg/source"
	"github.com/topoview/topoview/pkg/topo"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(42, nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestEndpointsServeWireFormat(t *testing.T) {
	srv := newTestServer(t)

	var router source.RouterInfo
	getJSON(t, srv.URL+"/api/router", &router)
	if router.Model == "" || !router.IsOnline {
		t.Errorf("router = %+v", router)
	}

	var devices []source.DeviceInfo
	getJSON(t, srv.URL+"/api/devices", &devices)
	if len(devices) != 8 {
		t.Fatalf("devices = %d, want 8", len(devices))
	}
	for _, d := range devices {
		if d.ID == "" || d.Name == "" {
			t.Errorf("incomplete device: %+v", d)
		}
	}

	var mesh source.MeshInfo
	getJSON(t, srv.URL+"/api/mesh", &mesh)
	if len(mesh.Peers) != 2 {
		t.Errorf("peers = %v", mesh.Peers)
	}

	var flags source.FeatureFlags
	getJSON(t, srv.URL+"/api/features", &flags)
	if !flags.MeshIsActive {
		t.Error("mesh flag off")
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestClientBuildsTopologyFromSimulator(t *testing.T) {
	srv := newTestServer(t)

	client, err := source.NewClient(source.ClientOptions{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	payload, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	snap := topo.Build(payload.ToBuildInput())
	if err := snap.Validate(); err != nil {
		t.Fatalf("snapshot invalid: %v", err)
	}
	// root + 2 mesh peers + 8 devices
	if len(snap.Nodes) != 11 {
		t.Errorf("nodes = %d, want 11", len(snap.Nodes))
	}
	if snap.Root() == nil {
		t.Fatal("no root")
	}
	if snap.Root().Name != "TV-Home Hub" {
		t.Errorf("root name = %q", snap.Root().Name)
	}
}

func TestTrafficDriftsBetweenPolls(t *testing.T) {
	srv := newTestServer(t)

	var first, second []source.DeviceInfo
	getJSON(t, srv.URL+"/api/devices", &first)
	getJSON(t, srv.URL+"/api/devices", &second)

	changed := false
	for i := range first {
		if first[i].DownloadSpeed != second[i].DownloadSpeed {
			changed = true
		}
	}
	if !changed {
		t.Error("no traffic movement between polls")
	}
}

func TestSameSeedReplaysSameTraffic(t *testing.T) {
	srvA := httptest.NewServer(New(7, nil).Handler())
	defer srvA.Close()
	srvB := httptest.NewServer(New(7, nil).Handler())
	defer srvB.Close()

	var a, b []source.DeviceInfo
	getJSON(t, srvA.URL+"/api/devices", &a)
	getJSON(t, srvB.URL+"/api/devices", &b)

	for i := range a {
		if a[i].DownloadSpeed != b[i].DownloadSpeed || a[i].IsOnline != b[i].IsOnline {
			t.Fatalf("device %d diverged: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestOfflineDevicesReportZeroTraffic(t *testing.T) {
	srv := newTestServer(t)

	var devices []source.DeviceInfo
	getJSON(t, srv.URL+"/api/devices", &devices)
	for _, d := range devices {
		if !d.IsOnline && (d.DownloadSpeed != 0 || d.UploadSpeed != 0) {
			t.Errorf("offline %q carries traffic: %+v", d.Name, d)
		}
	}
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}
