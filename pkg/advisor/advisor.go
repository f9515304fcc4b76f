// Package advisor asks an external service for importance, urgency and
// energy suggestions for a task name.
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/harrisonrobin/eisen/pkg/model"
	"github.com/harrisonrobin/eisen/pkg/priority"
)

// ErrUnusableResponse marks an advisory call that failed or whose answer
// could not be read.
var ErrUnusableResponse = errors.New("unusable advisory response")

// Advisor suggests levels for a task from its name.
type Advisor interface {
	Analyze(ctx context.Context, taskName string) (Suggestion, error)
}

// Suggestion holds the levels an advisor proposed. Nil fields were not proposed.
type Suggestion struct {
	Importance *model.Level `json:"importance,omitempty"`
	Urgency    *model.Level `json:"urgency,omitempty"`
	Energy     *model.Level `json:"energy,omitempty"`
}

// Empty reports whether s proposes nothing.
func (s Suggestion) Empty() bool {
	return s.Importance == nil && s.Urgency == nil && s.Energy == nil
}

var energyVocabulary = priority.Vocabulary{
	High:   []string{"high", "h"},
	Medium: []string{"medium", "med", "normal", "m"},
	Low:    []string{"low", "l", "none"},
}

// ParseResponse reads a suggestion from an advisory answer: a JSON object
// (possibly fenced or surrounded by prose) or "Key: value" lines. "impact" is
// read as importance and "energy required" as energy.
func ParseResponse(text string) (Suggestion, error) {
	values := jsonValues(text)
	if len(values) == 0 {
		values = lineValues(text)
	}

	normalized := make(map[string]string, len(values))
	for key, raw := range values {
		normalized[normalizeKey(key)] = raw
	}
	pick := func(v priority.Vocabulary, keys ...string) *model.Level {
		for _, k := range keys {
			if raw, ok := normalized[k]; ok {
				return level(v, raw)
			}
		}
		return nil
	}

	s := Suggestion{
		Importance: pick(priority.ImportanceVocabulary, "importance", "impact"),
		Urgency:    pick(priority.UrgencyVocabulary, "urgency"),
		Energy:     pick(energyVocabulary, "energy", "energy_required"),
	}
	if s.Empty() {
		return Suggestion{}, ErrUnusableResponse
	}
	return s, nil
}

func level(v priority.Vocabulary, raw string) *model.Level {
	l := v.Parse(raw)
	if !l.IsSet() {
		return nil
	}
	return &l
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.Trim(key, "*-# ")
	return strings.Join(strings.Fields(key), "_")
}

// jsonValues extracts the string values of the first JSON object in text.
func jsonValues(text string) map[string]string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &obj); err != nil {
		return nil
	}
	values := make(map[string]string, len(obj))
	for k, v := range obj {
		if s, ok := v.(string); ok {
			values[k] = s
		}
	}
	return values
}

func lineValues(text string) map[string]string {
	values := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), "*.\"'")
		if value == "" {
			continue
		}
		values[key] = value
	}
	return values
}
