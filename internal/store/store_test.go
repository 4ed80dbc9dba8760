package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), DataFileName)
	s := New(FilePersister{Path: path}, zerolog.Nop())
	s.Load()
	return s, path
}

func TestLoad_FreshDocumentHasDefaultProject(t *testing.T) {
	s, path := newTestStore(t)

	doc := s.Document()
	if len(doc.Projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(doc.Projects))
	}
	p, ok := doc.Projects["my-first-project"]
	if !ok {
		t.Fatalf("expected default project id my-first-project, got %v", s.ProjectIDs())
	}
	if p.Name != "My First Project" {
		t.Fatalf("unexpected default project name %q", p.Name)
	}
	if doc.ActiveProject != "my-first-project" {
		t.Fatalf("expected default project active, got %q", doc.ActiveProject)
	}
	if doc.Version != Version {
		t.Fatalf("expected version %q, got %q", Version, doc.Version)
	}

	// The fresh document is persisted immediately.
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected document file to exist: %v", err)
	}
}

func TestLoad_CorruptDataFallsBackToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), DataFileName)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New(FilePersister{Path: path}, zerolog.Nop())
	doc := s.Load()
	if len(doc.Projects) != 1 {
		t.Fatalf("expected fallback default document, got %d projects", len(doc.Projects))
	}
	if _, ok := doc.Projects["my-first-project"]; !ok {
		t.Fatalf("expected default project after corrupt load")
	}
}

func TestCellIDs_MonotonicAcrossDeleteAndReload(t *testing.T) {
	s, path := newTestStore(t)

	a := s.AddCell()
	b := s.AddCell()
	c := s.AddCell()
	if a.ID != 1 || b.ID != 2 || c.ID != 3 {
		t.Fatalf("expected ids 1,2,3 got %d,%d,%d", a.ID, b.ID, c.ID)
	}

	s.DeleteCell(b.ID)
	d := s.AddCell()
	if d.ID != 4 {
		t.Fatalf("deleted ids must not be reused: got %d, want 4", d.ID)
	}

	// A reload recomputes the counter from the persisted cells.
	s2 := New(FilePersister{Path: path}, zerolog.Nop())
	s2.Load()
	e := s2.AddCell()
	if e.ID != 5 {
		t.Fatalf("counter after reload: got %d, want 5", e.ID)
	}
}

func TestDeleteProject_LastProjectForbidden(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.DeleteProject(s.ActiveProjectID())
	var last *LastProjectError
	if !errors.As(err, &last) {
		t.Fatalf("expected LastProjectError, got %v", err)
	}
	if len(s.Document().Projects) != 1 {
		t.Fatalf("document must still hold 1 project")
	}
}

func TestDeleteProject_ActiveSuccessorIsDeterministic(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.CreateProject("Zeta"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateProject("Alpha"); err != nil {
		t.Fatal(err)
	}
	if got := s.ActiveProjectID(); got != "alpha" {
		t.Fatalf("create must activate the new project, got %q", got)
	}

	if err := s.DeleteProject("alpha"); err != nil {
		t.Fatal(err)
	}
	// Lexicographically smallest remaining id.
	if got := s.ActiveProjectID(); got != "my-first-project" {
		t.Fatalf("expected my-first-project active, got %q", got)
	}
	if _, ok := s.Document().Projects[s.ActiveProjectID()]; !ok {
		t.Fatalf("active project must exist")
	}
}

func TestDeleteProject_UnknownIDIsNoOp(t *testing.T) {
	s, _ := newTestStore(t)
	if _, err := s.CreateProject("Other"); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteProject("nope"); err != nil {
		t.Fatalf("unknown id must be a silent no-op, got %v", err)
	}
	if len(s.Document().Projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(s.Document().Projects))
	}
}

func TestCreateProject_DuplicateRejectedWithoutMutation(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.CreateProject("Alpha"); err != nil {
		t.Fatal(err)
	}
	before := len(s.Document().Projects)

	_, err := s.CreateProject("alpha") // same derived id
	var dup *DuplicateProjectError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateProjectError, got %v", err)
	}
	if dup.ID != "alpha" {
		t.Fatalf("unexpected id in error: %q", dup.ID)
	}
	if len(s.Document().Projects) != before {
		t.Fatalf("document must be unchanged after rejected create")
	}
	if s.ActiveProjectID() != "alpha" {
		t.Fatalf("active project must be unchanged, got %q", s.ActiveProjectID())
	}
}

func TestSwitchProject_UnknownIDIsNoOp(t *testing.T) {
	s, _ := newTestStore(t)
	active := s.ActiveProjectID()
	s.SwitchProject("ghost")
	if s.ActiveProjectID() != active {
		t.Fatalf("unknown switch must not change the active project")
	}
}

func TestMoveCell_BoundariesAndSwap(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.AddCell()
	b := s.AddCell()
	c := s.AddCell()

	ids := func() []int {
		cells := s.CurrentProject().Cells
		out := make([]int, len(cells))
		for i, cell := range cells {
			out[i] = cell.ID
		}
		return out
	}

	s.MoveCell(a.ID, -1) // first up: no-op
	if got := ids(); got[0] != a.ID || got[1] != b.ID || got[2] != c.ID {
		t.Fatalf("move up on first cell must be a no-op, got %v", got)
	}

	s.MoveCell(c.ID, 1) // last down: no-op
	if got := ids(); got[2] != c.ID {
		t.Fatalf("move down on last cell must be a no-op, got %v", got)
	}

	s.MoveCell(b.ID, -1)
	if got := ids(); got[0] != b.ID || got[1] != a.ID || got[2] != c.ID {
		t.Fatalf("expected swap of first two, got %v", got)
	}

	s.MoveCell(99, 1) // unknown id: no-op
	if got := ids(); got[0] != b.ID || got[1] != a.ID || got[2] != c.ID {
		t.Fatalf("unknown id move must be a no-op, got %v", got)
	}
}

func TestUpdateCell_PartialMerge(t *testing.T) {
	s, _ := newTestStore(t)
	cell := s.AddCell()

	content := "some content"
	s.UpdateCell(cell.ID, CellPatch{Content: &content})

	got := s.CurrentProject().Cells[0]
	if got.Content != content {
		t.Fatalf("content not updated: %q", got.Content)
	}
	if got.Title != cell.Title {
		t.Fatalf("title must be untouched by a content-only patch: %q", got.Title)
	}

	title := "renamed"
	s.UpdateCell(cell.ID, CellPatch{Title: &title})
	got = s.CurrentProject().Cells[0]
	if got.Title != title || got.Content != content {
		t.Fatalf("patch merge broken: %+v", got)
	}
}

func TestUpdateMainPrompt_VerbatimWhitespace(t *testing.T) {
	s, _ := newTestStore(t)
	s.UpdateMainPrompt("  \n\t ")
	if got := s.CurrentProject().MainPrompt; got != "  \n\t " {
		t.Fatalf("main prompt must be stored verbatim, got %q", got)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s, path := newTestStore(t)

	if _, err := s.CreateProject("Work"); err != nil {
		t.Fatal(err)
	}
	cell := s.AddCell()
	content := "line one\nline two"
	s.UpdateCell(cell.ID, CellPatch{Content: &content})
	s.UpdateMainPrompt("the prompt")

	s2 := New(FilePersister{Path: path}, zerolog.Nop())
	doc := s2.Load()

	if doc.ActiveProject != "work" {
		t.Fatalf("active project lost: %q", doc.ActiveProject)
	}
	if len(doc.Projects) != 2 {
		t.Fatalf("projects lost: %d", len(doc.Projects))
	}
	p := doc.Projects["work"]
	if p.MainPrompt != "the prompt" {
		t.Fatalf("main prompt lost: %q", p.MainPrompt)
	}
	if len(p.Cells) != 1 || p.Cells[0].Content != content || p.Cells[0].ID != cell.ID {
		t.Fatalf("cells lost: %+v", p.Cells)
	}
}

func TestEvents_OrderAndPersistBeforeEmit(t *testing.T) {
	s, path := newTestStore(t)

	var kinds []string
	s.Subscribe(func(ev Event) {
		kinds = append(kinds, ev.EventKind())
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("document must exist when events fire: %v", err)
		}
	})

	if _, err := s.CreateProject("Beta"); err != nil {
		t.Fatal(err)
	}
	want := []string{"data:saved", "project:created", "project:switched"}
	if len(kinds) != len(want) {
		t.Fatalf("expected %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("event order: expected %v, got %v", want, kinds)
		}
	}

	kinds = nil
	s.AddCell()
	if len(kinds) != 2 || kinds[0] != "data:saved" || kinds[1] != "cell:added" {
		t.Fatalf("expected [data:saved cell:added], got %v", kinds)
	}
}

func TestEvents_PanickingHandlerIsIsolated(t *testing.T) {
	s, _ := newTestStore(t)

	var reached bool
	s.Subscribe(func(Event) { panic("bad handler") })
	s.Subscribe(func(Event) { reached = true })

	s.AddCell()
	if !reached {
		t.Fatalf("a panicking handler must not abort the emission chain")
	}
}

type failingPersister struct {
	reads []byte
}

func (f *failingPersister) Read() ([]byte, bool, error) {
	if f.reads == nil {
		return nil, false, nil
	}
	return f.reads, true, nil
}

func (f *failingPersister) Write([]byte) error {
	return errors.New("disk full")
}

func TestSaveError_ReportedViaEventAndDocumentKept(t *testing.T) {
	s := New(&failingPersister{}, zerolog.Nop())
	s.Load()

	var gotSaveError bool
	s.Subscribe(func(ev Event) {
		if e, ok := ev.(DataSaveError); ok {
			var se *SaveError
			if !errors.As(e.Err, &se) {
				t.Fatalf("expected SaveError payload, got %v", e.Err)
			}
			gotSaveError = true
		}
	})

	cell := s.AddCell()
	if !gotSaveError {
		t.Fatalf("expected data:save-error event")
	}
	// The in-memory document keeps the mutation.
	if len(s.CurrentProject().Cells) != 1 || s.CurrentProject().Cells[0].ID != cell.ID {
		t.Fatalf("in-memory document must retain the unsaved mutation")
	}
}

func TestProjectID_Derivation(t *testing.T) {
	cases := map[string]string{
		"My First Project": "my-first-project",
		"teamA":            "teama",
		"a_b-c":            "a_b-c",
		"Hello, World!":    "hello--world-",
		"Ünicode":          "-nicode",
	}
	for in, want := range cases {
		if got := ProjectID(in); got != want {
			t.Fatalf("ProjectID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAddCell_DefaultTitleCarriesDate(t *testing.T) {
	s, _ := newTestStore(t)
	fixed := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	cell := s.AddCell()
	if cell.Title != "New Cell (2026-09-01)" {
		t.Fatalf("unexpected default title %q", cell.Title)
	}
	if cell.Created != fixed.UnixMilli() {
		t.Fatalf("unexpected created %d", cell.Created)
	}
}

func TestLastModified_OnlyActiveProjectAdvances(t *testing.T) {
	s, _ := newTestStore(t)
	if _, err := s.CreateProject("Other"); err != nil {
		t.Fatal(err)
	}

	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	s.AddCell() // touches "other" only

	later := base.Add(time.Hour)
	s.now = func() time.Time { return later }
	s.AddCell()

	doc := s.Document()
	if doc.Projects["other"].LastModified != later.UnixMilli() {
		t.Fatalf("active project lastModified must advance")
	}
	if doc.Projects["my-first-project"].LastModified == later.UnixMilli() {
		t.Fatalf("inactive project lastModified must not advance")
	}
}
