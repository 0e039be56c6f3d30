package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/topoview/topoview/pkg/cache"
	apperrors "github.com/topoview/topoview/pkg/errors"
	"github.com/topoview/topoview/pkg/topo"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/router", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"model":"RT-AX88U","ipAddress":"192.168.1.1","isOnline":true}`))
	})
	mux.HandleFunc("/api/devices", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id":"aa:bb","name":"laptop","isOnline":true,"connectionType":"wireless","deviceType":"laptop","downloadSpeed":12.5,"uploadSpeed":1.5},
			{"id":"cc:dd","name":"desk","isOnline":true,"connectionType":"wired","deviceType":"computer","meshPeerId":"peer-1"}
		]`))
	})
	mux.HandleFunc("/api/mesh", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"peers":["peer-1"]}`))
	})
	mux.HandleFunc("/api/features", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meshIsActive":true}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientFetch(t *testing.T) {
	srv := testServer(t)
	c, err := NewClient(ClientOptions{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	p, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if p.Router == nil || p.Router.Model != "RT-AX88U" {
		t.Errorf("router = %+v", p.Router)
	}
	if len(p.Devices) != 2 || p.Devices[0].Name != "laptop" {
		t.Errorf("devices = %+v", p.Devices)
	}
	if !p.Features.MeshIsActive || len(p.Mesh.Peers) != 1 {
		t.Errorf("mesh = %+v features = %+v", p.Mesh, p.Features)
	}
}

func TestClientFetchPartialFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/devices", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"x","name":"x","isOnline":true,"connectionType":"wired"}]`))
	})
	// router, mesh and features all 404
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := NewClient(ClientOptions{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	p, err := c.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected aggregated error for failed endpoints")
	}
	if p.Router != nil {
		t.Error("failed router endpoint produced a descriptor")
	}
	if len(p.Devices) != 1 {
		t.Errorf("devices = %+v, want the one fetched entry", p.Devices)
	}

	// A partial payload still builds a renderable model with a placeholder
	// root.
	snap := topo.Build(p.ToBuildInput())
	root := snap.Root()
	if root == nil || root.Name != topo.PlaceholderRouterName {
		t.Errorf("root = %+v, want placeholder", root)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/features", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"meshIsActive":false}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := NewClient(ClientOptions{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	var flags FeatureFlags
	if err := c.get(context.Background(), EndpointFeatures, "/api/features", &flags); err != nil {
		t.Fatalf("get after retries: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestClientDoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/mesh", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := NewClient(ClientOptions{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	var mesh MeshInfo
	err = c.get(context.Background(), EndpointMesh, "/api/mesh", &mesh)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1 (404 must not retry)", got)
	}
}

func TestClientServesFromCache(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/router", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"model":"M","ipAddress":"1.2.3.4","isOnline":true}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := NewClient(ClientOptions{
		BaseURL:  srv.URL,
		Cache:    cache.NewMemoryCache(),
		CacheTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	ctx := context.Background()
	var info RouterInfo
	for i := 0; i < 3; i++ {
		if err := c.get(ctx, EndpointRouter, "/api/router", &info); err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("origin calls = %d, want 1 with warm cache", got)
	}
}

func TestNewClientRejectsBadURL(t *testing.T) {
	if _, err := NewClient(ClientOptions{BaseURL: "ftp://router"}); err == nil {
		t.Error("ftp URL accepted")
	}
	if _, err := NewClient(ClientOptions{BaseURL: ""}); err == nil {
		t.Error("empty URL accepted")
	}
}

func TestToBuildInput(t *testing.T) {
	p := Payload{
		Router: &RouterInfo{Model: "M", IPAddress: "1.1.1.1", IsOnline: true},
		Devices: []DeviceInfo{
			{ID: "a", Name: "A", IsOnline: true, ConnectionType: ConnectionWireless, DeviceType: "phone",
				DownloadSpeed: 3, UploadSpeed: 1, MeshPeerID: "peer-1"},
			{ID: "b", Name: "B", ConnectionType: ConnectionWired},
		},
		Mesh:     MeshInfo{Peers: []string{"peer-1"}},
		Features: FeatureFlags{MeshIsActive: true},
	}

	in := p.ToBuildInput()
	if in.Router == nil || in.Router.Model != "M" || !in.Router.Online {
		t.Errorf("router = %+v", in.Router)
	}
	if !in.MeshActive || len(in.MeshPeers) != 1 {
		t.Errorf("mesh = %+v active=%v", in.MeshPeers, in.MeshActive)
	}
	if len(in.Devices) != 2 {
		t.Fatalf("devices = %d, want 2", len(in.Devices))
	}
	if !in.Devices[0].Wireless || in.Devices[0].PeerID != "peer-1" || in.Devices[0].DownloadRate != 3 {
		t.Errorf("device[0] = %+v", in.Devices[0])
	}
	if in.Devices[1].Wireless {
		t.Error("wired device marked wireless")
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload.json")
	data := `{"router":{"model":"M","isOnline":true},"devices":[{"id":"a","name":"A","isOnline":true,"connectionType":"wired"}],"mesh":{"peers":[]},"features":{"meshIsActive":false}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := NewFileSource(path).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if p.Router == nil || p.Router.Model != "M" || len(p.Devices) != 1 {
		t.Errorf("payload = %+v", p)
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "nope.json")).Fetch(context.Background())
	if !apperrors.Is(err, apperrors.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}
