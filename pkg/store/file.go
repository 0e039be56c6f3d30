package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileStore keeps one JSON file per save in a directory. Save names map
// directly to file names, which ValidateSaveName keeps path-safe.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed store rooted at dir, creating the
// directory when missing.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// Put stores a save.
func (s *FileStore) Put(ctx context.Context, save *Save) error {
	if err := prepare(save); err != nil {
		return err
	}
	if prev, err := s.Get(ctx, save.Name); err == nil {
		save.ID = prev.ID
		save.CreatedAt = prev.CreatedAt
	}

	data, err := json.MarshalIndent(save, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(save.Name), data, 0o644)
}

// Get retrieves a save by name.
func (s *FileStore) Get(ctx context.Context, name string) (*Save, error) {
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, err
	}

	var save Save
	if err := json.Unmarshal(data, &save); err != nil {
		return nil, err
	}
	return &save, nil
}

// List returns all saves, most recently updated first.
func (s *FileStore) List(ctx context.Context) ([]*Save, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var out []*Save
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		save, err := s.Get(ctx, strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			continue // skip corrupt entries
		}
		out = append(out, save)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Delete removes a save by name.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return notFound(name)
	}
	return err
}

// Close does nothing for the file backend.
func (s *FileStore) Close(ctx context.Context) error {
	return nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

var _ Store = (*FileStore)(nil)
