// Package source defines the task data source collaborator and helpers shared
// by its implementations.
package source

import (
	"context"
	"errors"
	"sort"

	"github.com/harrisonrobin/eisen/pkg/model"
	"github.com/harrisonrobin/eisen/pkg/normalize"
)

var (
	// ErrUnavailable wraps failures to fetch tasks or areas.
	ErrUnavailable = errors.New("task source unavailable")
	// ErrUpdateFailed wraps failures to write properties back.
	ErrUpdateFailed = errors.New("task update failed")
	// ErrReadOnly is returned by sources that cannot store updates.
	ErrReadOnly = errors.New("task source is read-only")
)

// Kind names a data source implementation.
type Kind string

const (
	KindNotion      Kind = "notion"
	KindTaskwarrior Kind = "taskwarrior"
	KindOrgMode     Kind = "orgmode"
	KindGoogleTasks Kind = "gtasks"
)

// Kinds lists the supported source kinds.
var Kinds = []Kind{KindNotion, KindTaskwarrior, KindOrgMode, KindGoogleTasks}

// Filter restricts which tasks are fetched. Lifecycle filtering (completed,
// archived) is the source's job.
type Filter struct {
	ExcludeStatuses []string
}

// DefaultFilter excludes finished work.
func DefaultFilter() Filter {
	return Filter{ExcludeStatuses: []string{"Completed", "Archived"}}
}

// Update carries the values to persist for one task. Nil fields are left alone.
type Update struct {
	Importance *model.Level
	Urgency    *model.Level
	Energy     *model.Level
}

// Empty reports whether u changes nothing.
func (u Update) Empty() bool {
	return u.Importance == nil && u.Urgency == nil && u.Energy == nil
}

// DataSource fetches raw task and area records and stores enriched values.
type DataSource interface {
	FetchTasks(ctx context.Context, filter Filter) ([]normalize.Record, error)
	FetchAreas(ctx context.Context) ([]normalize.Record, error)
	UpdateTask(ctx context.Context, id string, update Update) error
}

// StaticAreas turns an area name -> need level map into area records whose ID
// is the area name, sorted by name. Sources without an area dataset of their
// own use it with the configured map.
func StaticAreas(levels map[string]string, schema normalize.AreaSchema) []normalize.Record {
	names := make([]string, 0, len(levels))
	for name := range levels {
		names = append(names, name)
	}
	sort.Strings(names)

	recs := make([]normalize.Record, 0, len(names))
	for _, name := range names {
		recs = append(recs, normalize.Record{
			ID: name,
			Properties: map[string]any{
				schema.Name:  normalize.Title(name),
				schema.Level: normalize.Select(levels[name]),
			},
		})
	}
	return recs
}

// LevelLabel renders a level the way task sources store select values.
func LevelLabel(l model.Level) string {
	switch l {
	case model.LevelHigh:
		return "High"
	case model.LevelMedium:
		return "Medium"
	case model.LevelLow:
		return "Low"
	}
	return ""
}
