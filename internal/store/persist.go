package store

import (
	"errors"
	"os"
	"path/filepath"
)

// Persister is the store's view of document persistence: one well-known blob,
// read and written whole.
type Persister interface {
	// Read returns the persisted document bytes, or ok=false when nothing
	// has been persisted yet.
	Read() (data []byte, ok bool, err error)
	Write(data []byte) error
}

// FilePersister persists the document as a single file, written atomically
// (tmp + rename) so a crash mid-write never leaves a truncated document.
type FilePersister struct {
	Path string
}

func (p FilePersister) Read() ([]byte, bool, error) {
	b, err := os.ReadFile(p.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (p FilePersister) Write(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o755); err != nil {
		return err
	}
	tmp := p.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, p.Path)
}
