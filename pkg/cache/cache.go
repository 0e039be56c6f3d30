// Package cache provides pluggable byte caching for fetched router data and
// rendered exports.
//
// Backends:
//   - file: directory-backed cache for CLI usage
//   - memory: in-process cache for tests and short-lived runs
//   - redis: shared cache for multi-instance deployments
//   - null: caching disabled
//
// Keys are produced by a [Keyer] so every component hashes its inputs the
// same way; [ScopedKeyer] prefixes keys to isolate multiple routers sharing
// one backend.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache is the interface all backends implement. Values are opaque bytes;
// callers marshal/unmarshal themselves. A zero ttl means no expiration.
type Cache interface {
	// Get retrieves a value. The second return reports a hit; a miss is
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given time-to-live.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// =============================================================================
// Keys
// =============================================================================

// ExportKeyOpts distinguishes export artifacts rendered from the same
// snapshot.
type ExportKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed"`
}

// Keyer generates cache keys for the cacheable artifact classes.
type Keyer interface {
	// SourceKey keys a raw data-source response by endpoint name and URL.
	SourceKey(endpoint, url string) string

	// SnapshotKey keys a built topology snapshot by its content hash.
	SnapshotKey(hash string) string

	// ExportKey keys a rendered export artifact.
	ExportKey(snapshotHash string, opts ExportKeyOpts) string
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SourceKey returns "source:<endpoint>:<hash(url)>".
func (k *DefaultKeyer) SourceKey(endpoint, url string) string {
	return fmt.Sprintf("source:%s:%s", endpoint, Hash([]byte(url)))
}

// SnapshotKey returns "snapshot:<hash>".
func (k *DefaultKeyer) SnapshotKey(hash string) string {
	return "snapshot:" + hash
}

// ExportKey returns "export:<hash(snapshot hash + options)>".
func (k *DefaultKeyer) ExportKey(snapshotHash string, opts ExportKeyOpts) string {
	return hashKey("export", snapshotHash, opts)
}

// hashKey builds "prefix:sha256(parts)" so arbitrary option structs become
// filesystem- and redis-safe keys.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash returns the full 64-character hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
