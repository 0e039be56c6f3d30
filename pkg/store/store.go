// Package store persists named layout saves so a hand-arranged topology
// survives restarts.
//
// A save captures the user-visible arrangement: remembered node positions,
// zoom and pan. Backends:
//   - memory: for tests and throwaway sessions
//   - file: one JSON file per save, for the CLI
//   - mongo: shared storage for multi-instance deployments
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/topoview/topoview/pkg/errors"
	"github.com/topoview/topoview/pkg/topo"
)

// Save is one named layout arrangement.
type Save struct {
	ID        string                `json:"id" bson:"_id"`
	Name      string                `json:"name" bson:"name"`
	CreatedAt time.Time             `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time             `json:"updated_at" bson:"updated_at"`
	Positions map[string]topo.Point `json:"positions" bson:"positions"`
	Zoom      float64               `json:"zoom" bson:"zoom"`
	Pan       topo.Point            `json:"pan" bson:"pan"`
}

// Store is the interface for layout-save backends. Saves are addressed by
// user-chosen name; ids exist for backend bookkeeping only.
type Store interface {
	// Put stores a save, overwriting any save with the same name.
	// A missing ID is assigned; UpdatedAt is always refreshed.
	Put(ctx context.Context, save *Save) error

	// Get retrieves a save by name. Returns a NOT_FOUND error when no
	// save with that name exists.
	Get(ctx context.Context, name string) (*Save, error)

	// List returns all saves ordered by most recently updated first.
	List(ctx context.Context) ([]*Save, error)

	// Delete removes a save by name. Deleting a missing save returns a
	// NOT_FOUND error so the CLI can report it.
	Delete(ctx context.Context, name string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// prepare validates the save name and fills bookkeeping fields.
func prepare(save *Save) error {
	if err := apperrors.ValidateSaveName(save.Name); err != nil {
		return err
	}
	now := time.Now().UTC()
	if save.ID == "" {
		save.ID = uuid.NewString()
	}
	if save.CreatedAt.IsZero() {
		save.CreatedAt = now
	}
	save.UpdatedAt = now
	return nil
}

// notFound builds the standard missing-save error.
func notFound(name string) error {
	return apperrors.New(apperrors.ErrCodeLayoutNotFound, "no layout save named %q", name)
}
