// Package taxonomy resolves area references into need levels.
package taxonomy

import (
	"github.com/harrisonrobin/eisen/pkg/model"
)

// Taxonomy maps area identifiers to their name and need level. It is built
// once per run and is read-only afterwards.
type Taxonomy struct {
	areas  map[string]model.Area
	levels []string
}

// Build indexes areas by ID. Later duplicates of an ID are ignored.
func Build(areas []model.Area) *Taxonomy {
	t := &Taxonomy{areas: make(map[string]model.Area, len(areas))}
	seen := make(map[string]bool)
	for _, a := range areas {
		if _, dup := t.areas[a.ID]; dup || a.ID == "" {
			continue
		}
		if a.NeedLevel == "" {
			a.NeedLevel = model.Uncategorized
		}
		t.areas[a.ID] = a
		if !seen[a.NeedLevel] {
			seen[a.NeedLevel] = true
			t.levels = append(t.levels, a.NeedLevel)
		}
	}
	return t
}

// Len returns the number of indexed areas.
func (t *Taxonomy) Len() int {
	if t == nil {
		return 0
	}
	return len(t.areas)
}

// Levels returns the distinct need levels in the order the areas declared them.
func (t *Taxonomy) Levels() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.levels...)
}

// Lookup returns the area with the given ID.
func (t *Taxonomy) Lookup(id string) (model.Area, bool) {
	if t == nil || id == "" {
		return model.Area{}, false
	}
	a, ok := t.areas[id]
	return a, ok
}

// ResolveNeedLevel returns the need level of the first reference in refs, or
// Uncategorized when there is none or it is unknown.
func (t *Taxonomy) ResolveNeedLevel(refs []string) string {
	level, _ := t.Resolve(refs)
	return level
}

// Resolve returns the need level and area name of the first reference in refs.
// Only the first reference is considered; an unresolvable one yields
// Uncategorized and an empty name.
func (t *Taxonomy) Resolve(refs []string) (level, areaName string) {
	if len(refs) == 0 {
		return model.Uncategorized, ""
	}
	a, ok := t.Lookup(refs[0])
	if !ok {
		return model.Uncategorized, ""
	}
	return a.NeedLevel, a.Name
}

// Apply sets NeedLevel and AreaName on task.
func (t *Taxonomy) Apply(task model.TaskRecord) model.TaskRecord {
	task.NeedLevel, task.AreaName = t.Resolve(task.AreaRefs)
	return task
}
