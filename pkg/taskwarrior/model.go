package taskwarrior

import (
	"fmt"
	"strings"
	"time"

	"github.com/harrisonrobin/eisen/pkg/normalize"
)

const (
	PENDING   = "pending"
	COMPLETED = "completed"
	WAITING   = "waiting"
	DELETED   = "deleted"
)

type CustomTime struct {
	time.Time
}

const taskwarriorTimeLayout = "20060102T150405Z" // YYYYMMDDTHHMMSSZ, 'Z' indicates UTC

// UnmarshalJSON implements the json.Unmarshaler interface for CustomTime.
func (ct *CustomTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "0" {
		ct.Time = time.Time{}
		return nil
	}

	t, err := time.Parse(taskwarriorTimeLayout, s)
	if err != nil {
		return fmt.Errorf("failed to parse Taskwarrior time string '%s': %w", s, err)
	}
	ct.Time = t
	return nil
}

// MarshalJSON implements the json.Marshaler interface for CustomTime.
func (ct CustomTime) MarshalJSON() ([]byte, error) {
	if ct.Time.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + ct.Format() + `"`), nil
}

// Format renders the time in Taskwarrior's export layout.
func (ct CustomTime) Format() string {
	return ct.Time.UTC().Format(taskwarriorTimeLayout)
}

// Task is one entry of `task export`. Importance and Urgency are the
// `importance` and `urgency` UDAs; Priority is the built-in H/M/L field.
type Task struct {
	UUID        string      `json:"uuid"`
	Description string      `json:"description"`
	Due         *CustomTime `json:"due,omitempty"`
	Status      string      `json:"status"`
	Project     string      `json:"project,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	Priority    string      `json:"priority,omitempty"`
	Importance  string      `json:"importance,omitempty"`
	Urgency     string      `json:"urgency,omitempty"`
}

// Property names of records produced from Taskwarrior tasks.
const (
	PropDescription = "description"
	PropDue         = "due"
	PropImportance  = "importance"
	PropUrgency     = "urgency"
	PropProject     = "project"
	PropStatus      = "status"
)

// Record converts t into the normalizer's property-bag shape. The importance
// UDA wins over the built-in priority; the project is the area reference.
func (t Task) Record() normalize.Record {
	importance := t.Importance
	if importance == "" {
		importance = t.Priority
	}
	due := ""
	if t.Due != nil && !t.Due.IsZero() {
		due = t.Due.Format()
	}
	props := map[string]any{
		PropDescription: normalize.Title(t.Description),
		PropDue:         normalize.Date(due),
		PropImportance:  normalize.Select(importance),
		PropUrgency:     normalize.Select(t.Urgency),
		PropStatus:      normalize.Status(t.Status),
	}
	if t.Project != "" {
		props[PropProject] = normalize.Relation(t.Project)
	} else {
		props[PropProject] = normalize.Relation()
	}
	return normalize.Record{ID: t.UUID, Properties: props}
}

// Schema is the normalizer schema matching Record.
func Schema() normalize.Schema {
	return normalize.Schema{
		Title:      PropDescription,
		Due:        PropDue,
		Importance: PropImportance,
		Urgency:    PropUrgency,
		Area:       PropProject,
	}
}
