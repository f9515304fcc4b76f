// Package gtasks implements the task data source on top of Google Tasks.
// Task lists are the areas; importance and urgency live in the task notes as
// "Importance: High" style lines.
package gtasks

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/tasks/v1"

	"github.com/harrisonrobin/eisen/pkg/logger"
	"github.com/harrisonrobin/eisen/pkg/normalize"
	"github.com/harrisonrobin/eisen/pkg/source"
)

// Property names of records produced from Google tasks.
const (
	PropTitle      = "title"
	PropDue        = "due"
	PropImportance = "importance"
	PropUrgency    = "urgency"
	PropList       = "list"

	noteEnergy = "energy"
	idSep      = "/"
)

// Client is a Google Tasks data source.
type Client struct {
	srv *tasks.Service
	// Lists restricts the source to the task lists with these titles.
	Lists []string
	// Areas maps task list titles to need levels.
	Areas      map[string]string
	AreaSchema normalize.AreaSchema
}

func NewClient(srv *tasks.Service, lists []string, areas map[string]string, areaSchema normalize.AreaSchema) *Client {
	return &Client{srv: srv, Lists: lists, Areas: areas, AreaSchema: areaSchema}
}

// FetchTasks returns the open tasks of every selected task list.
func (c *Client) FetchTasks(ctx context.Context, _ source.Filter) ([]normalize.Record, error) {
	lists, err := c.taskLists(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", source.ErrUnavailable, err)
	}

	var recs []normalize.Record
	for _, list := range lists {
		err := c.srv.Tasks.List(list.Id).
			ShowCompleted(false).
			ShowHidden(false).
			Pages(ctx, func(page *tasks.Tasks) error {
				for _, t := range page.Items {
					if t.Deleted || t.Status == "completed" {
						continue
					}
					recs = append(recs, Record(list, t))
				}
				return nil
			})
		if err != nil {
			return nil, fmt.Errorf("%w: list %q: %w", source.ErrUnavailable, list.Title, err)
		}
	}
	logger.FromContext(ctx).Info("Fetched tasks from Google Tasks", "lists", len(lists), "count", len(recs))
	return recs, nil
}

func (c *Client) taskLists(ctx context.Context) ([]*tasks.TaskList, error) {
	var lists []*tasks.TaskList
	err := c.srv.Tasklists.List().Pages(ctx, func(page *tasks.TaskLists) error {
		for _, l := range page.Items {
			if c.selected(l.Title) {
				lists = append(lists, l)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve task lists: %w", err)
	}
	return lists, nil
}

func (c *Client) selected(title string) bool {
	if len(c.Lists) == 0 {
		return true
	}
	for _, l := range c.Lists {
		if strings.EqualFold(l, title) {
			return true
		}
	}
	return false
}

// FetchAreas returns the configured list -> need level map as area records.
func (c *Client) FetchAreas(_ context.Context) ([]normalize.Record, error) {
	return source.StaticAreas(c.Areas, c.AreaSchema), nil
}

// UpdateTask rewrites the importance, urgency and energy lines of the task notes.
func (c *Client) UpdateTask(ctx context.Context, id string, update source.Update) error {
	values := make(map[string]string)
	if update.Importance != nil && update.Importance.IsSet() {
		values[PropImportance] = source.LevelLabel(*update.Importance)
	}
	if update.Urgency != nil && update.Urgency.IsSet() {
		values[PropUrgency] = source.LevelLabel(*update.Urgency)
	}
	if update.Energy != nil && update.Energy.IsSet() {
		values[noteEnergy] = source.LevelLabel(*update.Energy)
	}
	if len(values) == 0 {
		return nil
	}

	listID, taskID, ok := strings.Cut(id, idSep)
	if !ok {
		return fmt.Errorf("%w: malformed task id %q", source.ErrUpdateFailed, id)
	}
	task, err := c.srv.Tasks.Get(listID, taskID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: task %s: %w", source.ErrUpdateFailed, id, err)
	}
	patch := &tasks.Task{Notes: SetNoteValues(task.Notes, values)}
	if _, err := c.srv.Tasks.Patch(listID, taskID, patch).Context(ctx).Do(); err != nil {
		return fmt.Errorf("%w: task %s: %w", source.ErrUpdateFailed, id, err)
	}
	logger.FromContext(ctx).Info("Task updated", "id", id)
	return nil
}

// Record converts a task of list into the normalizer's property-bag shape.
// The record ID is "<list id>/<task id>".
func Record(list *tasks.TaskList, t *tasks.Task) normalize.Record {
	notes := NoteValues(t.Notes)
	return normalize.Record{
		ID: list.Id + idSep + t.Id,
		Properties: map[string]any{
			PropTitle:      normalize.Title(t.Title),
			PropDue:        normalize.Date(t.Due),
			PropImportance: normalize.RichText(notes[PropImportance]),
			PropUrgency:    normalize.RichText(notes[PropUrgency]),
			PropList:       normalize.Relation(list.Title),
		},
	}
}

// Schema is the normalizer schema matching Record.
func Schema() normalize.Schema {
	return normalize.Schema{
		Title:      PropTitle,
		Due:        PropDue,
		Importance: PropImportance,
		Urgency:    PropUrgency,
		Area:       PropList,
	}
}

// NoteValues reads "Key: value" lines from notes. Keys are lower-cased;
// the first occurrence of a key wins.
func NoteValues(notes string) map[string]string {
	values := make(map[string]string)
	for _, line := range strings.Split(notes, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" || strings.ContainsAny(key, " \t") {
			continue
		}
		if _, seen := values[key]; !seen {
			values[key] = strings.TrimSpace(value)
		}
	}
	return values
}

// SetNoteValues replaces the "Key: value" lines named by values and appends
// the missing ones in importance, urgency, energy order. Other lines are kept.
func SetNoteValues(notes string, values map[string]string) string {
	done := make(map[string]bool, len(values))
	var lines []string
	if notes != "" {
		lines = strings.Split(notes, "\n")
	}
	for i, line := range lines {
		key, _, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if v, want := values[key]; want && !done[key] {
			lines[i] = noteKey(key) + ": " + v
			done[key] = true
		}
	}
	for _, key := range []string{PropImportance, PropUrgency, noteEnergy} {
		if v, want := values[key]; want && !done[key] {
			lines = append(lines, noteKey(key)+": "+v)
		}
	}
	return strings.Join(lines, "\n")
}

func noteKey(key string) string {
	return strings.ToUpper(key[:1]) + key[1:]
}
