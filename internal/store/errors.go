package store

import "fmt"

// LoadError wraps a failure to read or parse the persisted document. It is
// never returned to callers: Load falls back to a fresh default document and
// logs the error instead, so a corrupt file degrades to a first-run rather
// than a crash.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load document: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SaveError wraps a failed persistence write. It is reported through the
// DataSaveError event rather than returned; the in-memory document is kept so
// the next mutation retries the write.
type SaveError struct {
	Err error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save document: %v", e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// DuplicateProjectError is returned by CreateProject when the identifier
// derived from the name is already taken.
type DuplicateProjectError struct {
	ID   string
	Name string
}

func (e *DuplicateProjectError) Error() string {
	return fmt.Sprintf("project with similar name already exists: %q (id %s)", e.Name, e.ID)
}

// LastProjectError is returned by DeleteProject when the document holds a
// single project; the document may never have zero projects.
type LastProjectError struct{}

func (e *LastProjectError) Error() string {
	return "cannot delete the last project"
}
