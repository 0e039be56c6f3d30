package source

import (
	"context"
	"encoding/json"
	"os"

	apperrors "github.com/topoview/topoview/pkg/errors"
)

// FileSource reads a payload from a JSON file on disk. Used for demos and
// for inspecting a topology exported from another machine; the file is
// re-read on every fetch so edits show up on the next refresh.
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed provider.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Fetch reads and decodes the payload file.
func (s *FileSource) Fetch(ctx context.Context) (Payload, error) {
	var p Payload

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return p, apperrors.New(apperrors.ErrCodeNotFound, "payload file %s does not exist", s.path)
	}
	if err != nil {
		return p, err
	}

	if err := json.Unmarshal(data, &p); err != nil {
		return p, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode payload file %s", s.path)
	}
	return p, nil
}

var (
	_ Provider = (*FileSource)(nil)
	_ Provider = (*Client)(nil)
)
