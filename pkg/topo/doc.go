// Package topo defines the topology graph model: nodes, edges, snapshots
// and the builder that derives them from raw router, mesh-peer and
// client-device records.
//
// A Snapshot is rebuilt from scratch every refresh. Session state that must
// survive rebuilds (dragged positions, selection, pan/zoom) lives in
// pkg/view and is merged back in by the pipeline, keyed by node id.
//
// The builder never fails: missing upstream data yields a placeholder root
// and an empty device list, and malformed records are skipped rather than
// aborting the whole model.
package topo
