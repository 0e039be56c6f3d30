// Package simulator serves a fake router administration API for demos and
// development without real hardware.
//
// The simulated home network has a fixed device fleet whose traffic rates
// drift every poll and whose devices occasionally drop offline, so the
// dashboard shows realistic movement. All randomness comes from a seeded
// generator: the same seed replays the same network.
package simulator

import (
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/topoview/topoview/pkg/source"
)

// Simulator holds the mutable state of the fake network.
type Simulator struct {
	mu      sync.Mutex
	rng     *rand.Rand
	logger  *log.Logger
	router  source.RouterInfo
	devices []source.DeviceInfo
	peers   []string
	mesh    bool
}

// New creates a simulator with the standard demo fleet. The same seed
// produces the same traffic pattern.
func New(seed int64, logger *log.Logger) *Simulator {
	if logger == nil {
		logger = log.Default()
	}
	return &Simulator{
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger,
		router: source.RouterInfo{Model: "TV-Home Hub", IPAddress: "192.168.1.1", IsOnline: true},
		peers:  []string{"mesh-livingroom", "mesh-attic"},
		mesh:   true,
		devices: []source.DeviceInfo{
			{ID: "3c:22:fb:aa:01:01", Name: "work-laptop", IsOnline: true, ConnectionType: source.ConnectionWireless,
				DeviceType: "laptop", IPAddress: "192.168.1.20", MACAddress: "3c:22:fb:aa:01:01"},
			{ID: "3c:22:fb:aa:01:02", Name: "family-tv", IsOnline: true, ConnectionType: source.ConnectionWired,
				DeviceType: "tv", IPAddress: "192.168.1.21", MACAddress: "3c:22:fb:aa:01:02"},
			{ID: "3c:22:fb:aa:01:03", Name: "phone", IsOnline: true, ConnectionType: source.ConnectionWireless,
				DeviceType: "phone", IPAddress: "192.168.1.22", MACAddress: "3c:22:fb:aa:01:03",
				MeshPeerID: "mesh-livingroom"},
			{ID: "3c:22:fb:aa:01:04", Name: "game-console", IsOnline: true, ConnectionType: source.ConnectionWired,
				DeviceType: "console", IPAddress: "192.168.1.23", MACAddress: "3c:22:fb:aa:01:04"},
			{ID: "3c:22:fb:aa:01:05", Name: "hall-printer", IsOnline: false, ConnectionType: source.ConnectionWireless,
				DeviceType: "printer", IPAddress: "192.168.1.24", MACAddress: "3c:22:fb:aa:01:05"},
			{ID: "3c:22:fb:aa:01:06", Name: "nas", IsOnline: true, ConnectionType: source.ConnectionWired,
				DeviceType: "nas", IPAddress: "192.168.1.25", MACAddress: "3c:22:fb:aa:01:06"},
			{ID: "3c:22:fb:aa:01:07", Name: "doorbell-cam", IsOnline: true, ConnectionType: source.ConnectionWireless,
				DeviceType: "camera", IPAddress: "192.168.1.26", MACAddress: "3c:22:fb:aa:01:07",
				MeshPeerID: "mesh-attic"},
			{ID: "3c:22:fb:aa:01:08", Name: "thermostat", IsOnline: true, ConnectionType: source.ConnectionWireless,
				DeviceType: "iot", IPAddress: "192.168.1.27", MACAddress: "3c:22:fb:aa:01:08"},
		},
	}
}

// Handler returns the HTTP handler serving the simulated API.
func (s *Simulator) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))
	r.Use(s.accessLog)

	r.Get("/healthz", s.handleHealthz)
	r.Route("/api", func(r chi.Router) {
		r.Get("/router", s.handleRouter)
		r.Get("/devices", s.handleDevices)
		r.Get("/mesh", s.handleMesh)
		r.Get("/features", s.handleFeatures)
	})

	return r
}

func (s *Simulator) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Debug("request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

func (s *Simulator) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Simulator) handleRouter(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	router := s.router
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, router)
}

func (s *Simulator) handleDevices(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.step()
	out := make([]source.DeviceInfo, len(s.devices))
	copy(out, s.devices)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Simulator) handleMesh(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	mesh := source.MeshInfo{Peers: append([]string(nil), s.peers...)}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, mesh)
}

func (s *Simulator) handleFeatures(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	flags := source.FeatureFlags{MeshIsActive: s.mesh}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, flags)
}

// step advances the simulation: traffic rates random-walk within device
// class bounds and roughly one poll in fifty flips a device's link state.
// Called with the mutex held.
func (s *Simulator) step() {
	for i := range s.devices {
		d := &s.devices[i]

		if s.rng.Intn(50) == 0 {
			d.IsOnline = !d.IsOnline
		}
		if !d.IsOnline {
			d.DownloadSpeed, d.UploadSpeed = 0, 0
			continue
		}

		ceiling := trafficCeiling(d.DeviceType)
		d.DownloadSpeed = drift(s.rng, d.DownloadSpeed, ceiling)
		d.UploadSpeed = drift(s.rng, d.UploadSpeed, ceiling/4)
	}
}

// trafficCeiling returns the rough Mbps ceiling per device class.
func trafficCeiling(deviceType string) float64 {
	switch deviceType {
	case "tv", "console":
		return 120
	case "laptop", "computer", "nas":
		return 80
	case "phone", "tablet":
		return 40
	case "camera":
		return 8
	default:
		return 2
	}
}

// drift random-walks a rate, clamped to [0, ceiling].
func drift(rng *rand.Rand, current, ceiling float64) float64 {
	next := current + (rng.Float64()-0.45)*ceiling/5
	if next < 0 {
		return 0
	}
	if next > ceiling {
		return ceiling
	}
	return next
}
