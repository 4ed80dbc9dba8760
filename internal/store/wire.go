package store

import (
	"encoding/json"
	"sort"
	"strings"

	"curator-cli/internal/model"
)

// decodeDocument parses a persisted blob. Documents already at the current
// version are adopted as-is; anything else goes through migrate. The returned
// fromVersion is the version tag found in the blob ("" when absent).
func decodeDocument(b []byte, now int64) (doc *model.Document, fromVersion string, migrated bool, err error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, "", false, err
	}

	if v, ok := raw["version"]; ok {
		_ = json.Unmarshal(v, &fromVersion)
	}
	if fromVersion == Version {
		var d model.Document
		if err := json.Unmarshal(b, &d); err != nil {
			return nil, fromVersion, false, err
		}
		if d.Projects == nil {
			d.Projects = map[string]*model.Project{}
		}
		for _, p := range d.Projects {
			if p != nil && p.Cells == nil {
				p.Cells = []model.Cell{}
			}
		}
		return &d, fromVersion, false, nil
	}

	return migrate(raw, now), fromVersion, true, nil
}

// migrate converts a prior-format blob into the current shape, preserving all
// user content. Two legacy shapes are recognized:
//
//   - "projects-wrapper": the blob already has a projects mapping (and maybe
//     an activeProject). Adopted directly, no reinterpretation.
//   - "flat workspace": a top-level mapping whose values directly hold
//     mainPrompt/cells. Each such entry becomes one project; the identifier
//     is derived from the key, the key itself becomes the display name, and
//     created/lastModified are synthesized as now (the legacy shape had
//     neither).
//
// Anything else yields an empty projects mapping and the load path falls back
// to the default document. Flat keys are walked in sorted order so an
// identifier collision resolves deterministically (last write wins).
func migrate(raw map[string]json.RawMessage, now int64) *model.Document {
	doc := &model.Document{
		Version:  Version,
		Projects: map[string]*model.Project{},
	}
	if v, ok := raw["activeProject"]; ok {
		_ = json.Unmarshal(v, &doc.ActiveProject)
	}

	if v, ok := raw["projects"]; ok && !isNullOrEmpty(v) {
		if err := json.Unmarshal(v, &doc.Projects); err != nil {
			doc.Projects = map[string]*model.Project{}
		}
		for _, p := range doc.Projects {
			if p != nil && p.Cells == nil {
				p.Cells = []model.Cell{}
			}
		}
		return doc
	}

	type flatWorkspace struct {
		MainPrompt string `json:"mainPrompt"`
		// Cells stays raw so a present-but-null field is distinguishable
		// from an absent one; any entry carrying a cells key is a workspace.
		Cells json.RawMessage `json:"cells"`
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		var ws flatWorkspace
		if err := json.Unmarshal(raw[key], &ws); err != nil {
			continue
		}
		if ws.Cells == nil {
			// Entries without a cells field are not workspaces (stray
			// scalars, the old activeProject pointer, ...).
			continue
		}
		// Presence of the cells key makes the entry a workspace; null or
		// unusable cell data degrades to an empty list, never a dropped
		// project.
		var cells []model.Cell
		if err := json.Unmarshal(ws.Cells, &cells); err != nil || cells == nil {
			cells = []model.Cell{}
		}
		doc.Projects[ProjectID(key)] = &model.Project{
			Name:         key,
			MainPrompt:   ws.MainPrompt,
			Cells:        cells,
			Created:      now,
			LastModified: now,
		}
	}
	return doc
}

func isNullOrEmpty(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	s := strings.TrimSpace(string(b))
	return s == "" || s == "null"
}
