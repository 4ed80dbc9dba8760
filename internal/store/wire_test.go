package store

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func loadBlob(t *testing.T, blob string) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), DataFileName)
	s := New(blobPersister{data: []byte(blob), path: path}, zerolog.Nop())
	s.Load()
	return s, path
}

// blobPersister serves a fixed blob on read and discards writes; migration
// tests only care about the in-memory result.
type blobPersister struct {
	data []byte
	path string
}

func (p blobPersister) Read() ([]byte, bool, error) { return p.data, true, nil }
func (p blobPersister) Write([]byte) error          { return nil }

func TestMigrate_FlatWorkspacePreservesContent(t *testing.T) {
	s, _ := loadBlob(t, `{
		"teamA": {
			"mainPrompt": "P",
			"cells": [ { "id": 1, "title": "T", "content": "C", "created": 123 } ]
		}
	}`)

	doc := s.Document()
	if doc.Version != Version {
		t.Fatalf("migrated version: %q", doc.Version)
	}
	p, ok := doc.Projects["teama"]
	if !ok {
		t.Fatalf("expected project id teama (lower-cased), got %v", s.ProjectIDs())
	}
	if p.Name != "teamA" {
		t.Fatalf("name must stay the original key, got %q", p.Name)
	}
	if p.MainPrompt != "P" {
		t.Fatalf("mainPrompt lost: %q", p.MainPrompt)
	}
	if len(p.Cells) != 1 || p.Cells[0].ID != 1 || p.Cells[0].Title != "T" || p.Cells[0].Content != "C" {
		t.Fatalf("cells not preserved verbatim: %+v", p.Cells)
	}
	if p.Created == 0 || p.LastModified == 0 {
		t.Fatalf("created/lastModified must be synthesized")
	}
	if doc.ActiveProject != "teama" {
		t.Fatalf("active project must be repaired to an existing id, got %q", doc.ActiveProject)
	}

	// The id counter accounts for migrated cells.
	if cell := s.AddCell(); cell.ID != 2 {
		t.Fatalf("expected next id 2 after migration, got %d", cell.ID)
	}
}

func TestMigrate_FlatWorkspaceMultipleEntries(t *testing.T) {
	s, _ := loadBlob(t, `{
		"Alpha": { "mainPrompt": "a", "cells": [] },
		"Beta":  { "cells": [ { "id": 7, "title": "x", "content": "y", "created": 1 } ] },
		"stray": "not a workspace"
	}`)

	doc := s.Document()
	if len(doc.Projects) != 2 {
		t.Fatalf("expected 2 migrated projects, got %v", s.ProjectIDs())
	}
	if _, ok := doc.Projects["alpha"]; !ok {
		t.Fatalf("alpha missing")
	}
	b, ok := doc.Projects["beta"]
	if !ok {
		t.Fatalf("beta missing")
	}
	if b.MainPrompt != "" {
		t.Fatalf("absent mainPrompt must default empty, got %q", b.MainPrompt)
	}
}

func TestMigrate_FlatWorkspaceNullCellsPreserved(t *testing.T) {
	s, _ := loadBlob(t, `{
		"teamA": { "mainPrompt": "P", "cells": null }
	}`)

	doc := s.Document()
	p, ok := doc.Projects["teama"]
	if !ok {
		t.Fatalf("workspace with null cells must still migrate, got %v", s.ProjectIDs())
	}
	if p.MainPrompt != "P" {
		t.Fatalf("mainPrompt lost: %q", p.MainPrompt)
	}
	if p.Cells == nil || len(p.Cells) != 0 {
		t.Fatalf("null cells must become an empty slice, got %#v", p.Cells)
	}
}

func TestDecode_CurrentVersionNullCellsNormalized(t *testing.T) {
	s, _ := loadBlob(t, `{
		"version": "2.1",
		"activeProject": "a",
		"projects": {
			"a": { "name": "A", "mainPrompt": "", "cells": null, "created": 1, "lastModified": 1 }
		}
	}`)

	p := s.Document().Projects["a"]
	if p.Cells == nil {
		t.Fatalf("cells must be normalized to an empty slice on load")
	}
	// Normalized cells marshal as [] rather than null.
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"cells":[]`) {
		t.Fatalf("expected cells to persist as [], got %s", b)
	}
}

func TestMigrate_ProjectsWrapperAdoptedDirectly(t *testing.T) {
	s, _ := loadBlob(t, `{
		"version": "2.0",
		"activeProject": "keep",
		"projects": {
			"keep": { "name": "Keep", "mainPrompt": "m", "cells": [], "created": 5, "lastModified": 6 }
		}
	}`)

	doc := s.Document()
	p, ok := doc.Projects["keep"]
	if !ok {
		t.Fatalf("wrapper projects must be adopted, got %v", s.ProjectIDs())
	}
	if p.Name != "Keep" || p.MainPrompt != "m" || p.Created != 5 {
		t.Fatalf("wrapper project reinterpreted: %+v", p)
	}
	if doc.ActiveProject != "keep" {
		t.Fatalf("activeProject must be adopted, got %q", doc.ActiveProject)
	}
	if doc.Version != Version {
		t.Fatalf("version must be bumped, got %q", doc.Version)
	}
}

func TestMigrate_UnrecognizedShapeFallsBackToDefault(t *testing.T) {
	s, _ := loadBlob(t, `{ "something": 42 }`)

	doc := s.Document()
	if _, ok := doc.Projects["my-first-project"]; !ok {
		t.Fatalf("unrecognized legacy data must fall back to the default document, got %v", s.ProjectIDs())
	}
}

func TestMigrate_IdentifierCollisionLastWriteWins(t *testing.T) {
	// "Team A" and "team-a" both derive id "team-a"; keys are walked sorted,
	// so the later key ("team-a") wins deterministically.
	s, _ := loadBlob(t, `{
		"Team A": { "mainPrompt": "first", "cells": [] },
		"team-a": { "mainPrompt": "second", "cells": [] }
	}`)

	doc := s.Document()
	if len(doc.Projects) != 1 {
		t.Fatalf("colliding ids must merge, got %v", s.ProjectIDs())
	}
	if got := doc.Projects["team-a"].MainPrompt; got != "second" {
		t.Fatalf("expected last write to win, got %q", got)
	}
}

func TestMigrate_PersistsImmediately(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DataFileName)
	p := FilePersister{Path: path}
	if err := p.Write([]byte(`{ "ws": { "mainPrompt": "x", "cells": [] } }`)); err != nil {
		t.Fatal(err)
	}

	s := New(p, zerolog.Nop())
	s.Load()

	// The file on disk must now be the current format (self-healing).
	b, ok, err := p.Read()
	if err != nil || !ok {
		t.Fatalf("read back: %v", err)
	}
	var onDisk struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(b, &onDisk); err != nil {
		t.Fatal(err)
	}
	if onDisk.Version != Version {
		t.Fatalf("migrated document must be persisted immediately, on-disk version %q", onDisk.Version)
	}
}
