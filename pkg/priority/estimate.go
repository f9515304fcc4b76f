package priority

import (
	"strings"
	"time"

	"github.com/harrisonrobin/eisen/pkg/model"
	"github.com/harrisonrobin/eisen/pkg/util"
)

var (
	DefaultImportanceKeywords = []string{
		"essential", "critical", "key", "main", "major", "primary",
		"deadline", "install", "setup", "configure", "implement",
	}
	DefaultUrgencyKeywords = []string{
		"asap", "immediately", "urgent", "deadline", "due", "today", "tomorrow",
	}
)

const (
	// Inclusive upper bounds, in days until due, of the high and medium urgency bands.
	highUrgencyDays   = 3
	mediumUrgencyDays = 7
)

// Estimator fills in importance and urgency that the data source left unset.
type Estimator struct {
	ImportanceKeywords []string
	UrgencyKeywords    []string
	// Now returns the current time; its location decides what "today" is.
	Now func() time.Time
}

func NewEstimator() *Estimator {
	return &Estimator{
		ImportanceKeywords: DefaultImportanceKeywords,
		UrgencyKeywords:    DefaultUrgencyKeywords,
		Now:                time.Now,
	}
}

// EstimateUrgency returns explicit when set, otherwise derives urgency from the
// due date, otherwise from keywords in name.
func (e *Estimator) EstimateUrgency(due, name string, explicit model.Level) model.Level {
	level, _ := e.urgency(due, name, explicit)
	return level
}

// EstimateImportance returns explicit when set, otherwise derives importance from keywords in name.
func (e *Estimator) EstimateImportance(name string, explicit model.Level) model.Level {
	level, _ := e.importance(name, explicit)
	return level
}

// Resolve fills every unset axis of task and records where the values came from.
func (e *Estimator) Resolve(task model.TaskRecord) model.TaskRecord {
	if !task.Importance.IsSet() {
		task.Importance, task.Flags.Importance = e.importance(task.Name, model.LevelUnset)
	}
	if !task.Urgency.IsSet() {
		task.Urgency, task.Flags.Urgency = e.urgency(task.Due, task.Name, model.LevelUnset)
	}
	return task
}

func (e *Estimator) urgency(due, name string, explicit model.Level) (model.Level, model.Origin) {
	if explicit.IsSet() {
		return explicit, model.OriginExplicit
	}
	if strings.TrimSpace(due) != "" {
		return UrgencyForDays(e.daysUntil(due)), model.OriginDueDate
	}
	if matchesAny(name, e.UrgencyKeywords) {
		return model.LevelHigh, model.OriginKeyword
	}
	return model.LevelMedium, model.OriginDefault
}

func (e *Estimator) importance(name string, explicit model.Level) (model.Level, model.Origin) {
	if explicit.IsSet() {
		return explicit, model.OriginExplicit
	}
	if matchesAny(name, e.ImportanceKeywords) {
		return model.LevelHigh, model.OriginKeyword
	}
	return model.LevelMedium, model.OriginDefault
}

// daysUntil treats an unparseable due date as mediumUrgencyDays away, which
// lands in the medium band.
func (e *Estimator) daysUntil(due string) int {
	now := e.now()
	t, ok := util.ParseDate(due, now.Location())
	if !ok {
		return mediumUrgencyDays
	}
	return util.DaysUntil(now, t)
}

func (e *Estimator) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// UrgencyForDays maps a day offset onto an urgency band.
func UrgencyForDays(days int) model.Level {
	switch {
	case days <= highUrgencyDays:
		return model.LevelHigh
	case days <= mediumUrgencyDays:
		return model.LevelMedium
	default:
		return model.LevelLow
	}
}

func matchesAny(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
