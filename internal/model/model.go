package model

// Document is the root of the persisted data: every project the user has,
// plus which one is currently open. It is read and written as a single JSON
// blob. All timestamps are Unix milliseconds, for compatibility with
// documents written by earlier versions of the app.
type Document struct {
	Version       string              `json:"version"`
	ActiveProject string              `json:"activeProject,omitempty"`
	Projects      map[string]*Project `json:"projects"`
}

type Project struct {
	Name       string `json:"name"`
	MainPrompt string `json:"mainPrompt"`
	// Cells is display order; reordering swaps entries in place.
	Cells        []Cell `json:"cells"`
	Created      int64  `json:"created"`
	LastModified int64  `json:"lastModified"`
}

// Cell is a titled block of freeform text. IDs are unique across the whole
// document and are never reused, even after deletion.
type Cell struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Created int64  `json:"created"`
}
