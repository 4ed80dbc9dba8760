package store

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"curator-cli/internal/model"
)

const (
	// Version is the current persisted document format.
	Version = "2.1"

	// DataFileName is the well-known document blob inside the data dir.
	DataFileName = "curator-data.json"

	defaultProjectName = "My First Project"
)

// Store is the single source of truth for the persisted document. All
// mutations go through it, are persisted immediately, and are announced to
// subscribers (persist first, then emit).
//
// The store is single-threaded by design: every operation runs to completion
// before returning and there is no background work.
type Store struct {
	p   Persister
	log zerolog.Logger
	now func() time.Time

	doc *model.Document
	// nextCellID is not persisted; Load recomputes it from the cells found in
	// the document so ids stay strictly increasing across restarts.
	nextCellID int
	handlers   []Handler
}

func New(p Persister, log zerolog.Logger) *Store {
	return &Store{p: p, log: log, now: time.Now, nextCellID: 1}
}

// Document returns the working document. Callers must not mutate it directly;
// reads are fine.
func (s *Store) Document() *model.Document { return s.doc }

func (s *Store) ActiveProjectID() string { return s.doc.ActiveProject }

// CurrentProject returns the active project, or nil when there is none.
func (s *Store) CurrentProject() *model.Project {
	if s.doc == nil {
		return nil
	}
	return s.doc.Projects[s.doc.ActiveProject]
}

// ProjectIDs returns all project identifiers, sorted.
func (s *Store) ProjectIDs() []string {
	ids := make([]string, 0, len(s.doc.Projects))
	for id := range s.doc.Projects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Load establishes the working document:
//   - nothing persisted: a fresh document with one default project;
//   - persisted at the current version: adopted as-is;
//   - persisted at an older version: migrated, then persisted back
//     immediately so the file self-heals;
//   - unreadable or unparseable: logged as a LoadError and replaced with the
//     fresh default document (deliberate: never crash the app over a corrupt
//     file, never pretend it parsed).
//
// It then recomputes the next-cell-id counter and repairs the active-project
// pointer if it is unset or dangling.
func (s *Store) Load() *model.Document {
	b, ok, err := s.p.Read()
	if err != nil {
		s.reportLoadError(err)
		return s.initializeDefault()
	}
	if !ok {
		return s.initializeDefault()
	}

	doc, fromVersion, migrated, err := decodeDocument(b, s.nowMillis())
	if err != nil {
		s.reportLoadError(err)
		return s.initializeDefault()
	}
	if len(doc.Projects) == 0 {
		// Covers both an empty current-version document and a legacy blob
		// migrate could not recognize.
		return s.initializeDefault()
	}

	s.doc = doc
	s.recomputeNextCellID()
	s.repairActiveProject()
	if migrated {
		s.log.Info().Str("from", fromVersion).Str("to", Version).Msg("migrated document")
		s.emit(DataMigrated{FromVersion: fromVersion})
		s.save()
	}
	return s.doc
}

func (s *Store) reportLoadError(err error) {
	le := &LoadError{Err: err}
	s.log.Error().Err(le).Msg("failed to load document, starting fresh")
}

func (s *Store) initializeDefault() *model.Document {
	now := s.nowMillis()
	id := ProjectID(defaultProjectName)
	s.doc = &model.Document{
		Version:       Version,
		ActiveProject: id,
		Projects: map[string]*model.Project{
			id: {
				Name:         defaultProjectName,
				MainPrompt:   "",
				Cells:        []model.Cell{},
				Created:      now,
				LastModified: now,
			},
		},
	}
	s.nextCellID = 1
	s.save()
	return s.doc
}

func (s *Store) recomputeNextCellID() {
	max := 0
	for _, p := range s.doc.Projects {
		for _, c := range p.Cells {
			if c.ID > max {
				max = c.ID
			}
		}
	}
	s.nextCellID = max + 1
}

func (s *Store) repairActiveProject() {
	if len(s.doc.Projects) == 0 {
		s.doc.ActiveProject = ""
		return
	}
	if _, ok := s.doc.Projects[s.doc.ActiveProject]; ok {
		return
	}
	s.doc.ActiveProject = s.ProjectIDs()[0]
}

// save persists the whole document and announces the outcome. Writes are
// fire-and-forget from the model's perspective: on failure the in-memory
// document stays the working state and the error travels via DataSaveError,
// so the user keeps their data and the next mutation retries the write.
func (s *Store) save() {
	if p := s.CurrentProject(); p != nil {
		p.LastModified = s.nowMillis()
	}

	b, err := json.MarshalIndent(s.doc, "", "  ")
	if err == nil {
		err = s.p.Write(b)
	}
	if err != nil {
		se := &SaveError{Err: err}
		s.log.Error().Err(se).Msg("failed to persist document")
		s.emit(DataSaveError{Err: se})
		return
	}
	s.emit(DataSaved{})
}

// CreateProject inserts a new empty project named name and makes it active.
// The identifier is derived from the trimmed name; a collision with an
// existing project is rejected without touching the document.
func (s *Store) CreateProject(name string) (string, error) {
	name = strings.TrimSpace(name)
	id := ProjectID(name)
	if _, exists := s.doc.Projects[id]; exists {
		return "", &DuplicateProjectError{ID: id, Name: name}
	}

	now := s.nowMillis()
	s.doc.Projects[id] = &model.Project{
		Name:         name,
		MainPrompt:   "",
		Cells:        []model.Cell{},
		Created:      now,
		LastModified: now,
	}
	s.doc.ActiveProject = id
	s.save()
	s.emit(ProjectCreated{ID: id}, ProjectSwitched{ID: id})
	return id, nil
}

// SwitchProject makes id the active project. Unknown ids are a silent no-op
// so stale references (e.g. a project deleted moments ago) don't blow up.
func (s *Store) SwitchProject(id string) {
	if _, ok := s.doc.Projects[id]; !ok {
		return
	}
	s.doc.ActiveProject = id
	s.save()
	s.emit(ProjectSwitched{ID: id})
}

// DeleteProject removes the project. Deleting the last remaining project is
// forbidden; deleting the active project activates the lexicographically
// smallest remaining id (deterministic successor).
func (s *Store) DeleteProject(id string) error {
	if len(s.doc.Projects) <= 1 {
		return &LastProjectError{}
	}
	if _, ok := s.doc.Projects[id]; !ok {
		return nil
	}

	delete(s.doc.Projects, id)
	if s.doc.ActiveProject == id {
		s.doc.ActiveProject = s.ProjectIDs()[0]
	}
	s.save()
	s.emit(ProjectDeleted{ID: id}, ProjectSwitched{ID: s.doc.ActiveProject})
	return nil
}

// UpdateMainPrompt sets the active project's main prompt verbatim; whitespace
// is preserved.
func (s *Store) UpdateMainPrompt(text string) {
	p := s.CurrentProject()
	if p == nil {
		return
	}
	p.MainPrompt = text
	s.save()
	s.emit(MainPromptUpdated{ProjectID: s.doc.ActiveProject})
}

// AddCell appends a new empty cell to the active project and returns it. The
// id comes from the monotonic counter; the default title carries the creation
// date.
func (s *Store) AddCell() *model.Cell {
	p := s.CurrentProject()
	if p == nil {
		return nil
	}

	cell := model.Cell{
		ID:      s.nextCellID,
		Title:   "New Cell (" + s.now().Format("2006-01-02") + ")",
		Content: "",
		Created: s.nowMillis(),
	}
	s.nextCellID++
	p.Cells = append(p.Cells, cell)
	s.save()
	s.emit(CellAdded{ProjectID: s.doc.ActiveProject, Cell: cell})
	return &cell
}

// CellPatch is a partial cell update; nil fields are left untouched.
type CellPatch struct {
	Title   *string
	Content *string
}

// UpdateCell merges patch into the cell with the given id in the active
// project. Unknown ids are a silent no-op.
func (s *Store) UpdateCell(id int, patch CellPatch) {
	p := s.CurrentProject()
	if p == nil {
		return
	}
	i := findCell(p, id)
	if i < 0 {
		return
	}

	if patch.Title != nil {
		p.Cells[i].Title = *patch.Title
	}
	if patch.Content != nil {
		p.Cells[i].Content = *patch.Content
	}
	s.save()
	s.emit(CellUpdated{ProjectID: s.doc.ActiveProject, ID: id})
}

// DeleteCell removes the cell from the active project's sequence. The id
// counter is unaffected: ids are never reused.
func (s *Store) DeleteCell(id int) {
	p := s.CurrentProject()
	if p == nil {
		return
	}
	i := findCell(p, id)
	if i < 0 {
		return
	}

	p.Cells = append(p.Cells[:i], p.Cells[i+1:]...)
	s.save()
	s.emit(CellDeleted{ProjectID: s.doc.ActiveProject, ID: id})
}

// MoveCell swaps the cell with its neighbor: direction -1 moves it up, +1
// down. Moves past either end are silent no-ops.
func (s *Store) MoveCell(id int, direction int) {
	p := s.CurrentProject()
	if p == nil {
		return
	}
	i := findCell(p, id)
	if i < 0 {
		return
	}
	j := i + direction
	if j < 0 || j >= len(p.Cells) {
		return
	}

	p.Cells[i], p.Cells[j] = p.Cells[j], p.Cells[i]
	s.save()
	s.emit(CellsReordered{ProjectID: s.doc.ActiveProject})
}

func findCell(p *model.Project, id int) int {
	for i := range p.Cells {
		if p.Cells[i].ID == id {
			return i
		}
	}
	return -1
}

// ProjectID derives a project identifier from a display name: lower-cased,
// with every character outside [a-z0-9-_] replaced by '-'.
func ProjectID(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

func (s *Store) nowMillis() int64 {
	return s.now().UnixMilli()
}
