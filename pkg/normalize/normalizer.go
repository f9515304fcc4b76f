package normalize

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/harrisonrobin/eisen/pkg/logger"
	"github.com/harrisonrobin/eisen/pkg/model"
	"github.com/harrisonrobin/eisen/pkg/priority"
)

var (
	// ErrMissingName marks a record discarded because it has no title.
	ErrMissingName = errors.New("record has no name")
	// ErrMalformedProperty marks a record discarded because a property it needs has an unexpected shape.
	ErrMalformedProperty = errors.New("malformed property")
)

// Schema names the properties the normalizer reads. Names match case-insensitively.
// An empty Title or Due selects the first property of that type in key order.
type Schema struct {
	Title      string `json:"title"`
	Due        string `json:"due"`
	Importance string `json:"importance"`
	Urgency    string `json:"urgency"`
	Area       string `json:"area"`
}

// AreaSchema names the properties of an area record.
type AreaSchema struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

func DefaultSchema() Schema {
	return Schema{
		Due:        "Due",
		Importance: "Importance",
		Urgency:    "Urgency",
		Area:       "Areas",
	}
}

func DefaultAreaSchema() AreaSchema {
	return AreaSchema{Name: "Name", Level: "Maslow Level"}
}

// Normalizer turns raw records into TaskRecords.
type Normalizer struct {
	Schema               Schema
	AreaSchema           AreaSchema
	ImportanceVocabulary priority.Vocabulary
	UrgencyVocabulary    priority.Vocabulary
}

func NewNormalizer(schema Schema, areaSchema AreaSchema) *Normalizer {
	return &Normalizer{
		Schema:               schema,
		AreaSchema:           areaSchema,
		ImportanceVocabulary: priority.ImportanceVocabulary,
		UrgencyVocabulary:    priority.UrgencyVocabulary,
	}
}

// Normalize extracts a TaskRecord from rec. Explicit importance and urgency
// are flagged as such; everything else is left for the estimators.
func (n *Normalizer) Normalize(rec Record) (model.TaskRecord, error) {
	task := model.TaskRecord{ID: rec.ID}

	for _, name := range sortedKeys(rec.Properties) {
		p, err := decodeProperty(rec.Properties[name])
		if err != nil {
			if n.wants(name) {
				return model.TaskRecord{}, fmt.Errorf("%w %q: %v", ErrMalformedProperty, name, err)
			}
			continue
		}

		switch {
		case p.Type == TypeTitle && matches(n.Schema.Title, name):
			if task.Name == "" {
				task.Name = joinText(p.Title)
			}
		case p.Type == TypeDate && matches(n.Schema.Due, name):
			if task.Due == "" && p.Date != nil {
				task.Due = strings.TrimSpace(p.Date.Start)
			}
		case strings.EqualFold(name, n.Schema.Importance):
			label, ok := p.label()
			if !ok {
				return model.TaskRecord{}, fmt.Errorf("%w %q: unexpected type %q", ErrMalformedProperty, name, p.Type)
			}
			if lvl := n.ImportanceVocabulary.Parse(label); lvl.IsSet() {
				task.Importance, task.Flags.Importance = lvl, model.OriginExplicit
			}
		case strings.EqualFold(name, n.Schema.Urgency):
			label, ok := p.label()
			if !ok {
				return model.TaskRecord{}, fmt.Errorf("%w %q: unexpected type %q", ErrMalformedProperty, name, p.Type)
			}
			if lvl := n.UrgencyVocabulary.Parse(label); lvl.IsSet() {
				task.Urgency, task.Flags.Urgency = lvl, model.OriginExplicit
			}
		case strings.EqualFold(name, n.Schema.Area):
			refs, err := areaRefs(p)
			if err != nil {
				return model.TaskRecord{}, fmt.Errorf("%w %q: %v", ErrMalformedProperty, name, err)
			}
			task.AreaRefs = refs
		}
	}

	if task.Name == "" {
		return model.TaskRecord{}, ErrMissingName
	}
	return task, nil
}

// NormalizeAll normalizes recs in order and drops the ones that cannot be used.
func (n *Normalizer) NormalizeAll(recs []Record, log logger.Logger) []model.TaskRecord {
	tasks := make([]model.TaskRecord, 0, len(recs))
	for _, rec := range recs {
		task, err := n.Normalize(rec)
		if err != nil {
			log.Debug("Discarding task record", "id", rec.ID, "reason", err)
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks
}

// NormalizeArea extracts an Area from rec. An area without a level is Uncategorized.
func (n *Normalizer) NormalizeArea(rec Record) (model.Area, error) {
	area := model.Area{ID: rec.ID, NeedLevel: model.Uncategorized}

	for _, name := range sortedKeys(rec.Properties) {
		isName := strings.EqualFold(name, n.AreaSchema.Name)
		isLevel := strings.EqualFold(name, n.AreaSchema.Level)
		if !isName && !isLevel {
			continue
		}
		p, err := decodeProperty(rec.Properties[name])
		if err != nil {
			if isName {
				return model.Area{}, fmt.Errorf("%w %q: %v", ErrMalformedProperty, name, err)
			}
			continue
		}
		if isName {
			if p.Type == TypeTitle {
				area.Name = joinText(p.Title)
			} else if label, ok := p.label(); ok {
				area.Name = strings.TrimSpace(label)
			}
		}
		if isLevel {
			if label, ok := p.label(); ok && strings.TrimSpace(label) != "" {
				area.NeedLevel = strings.TrimSpace(label)
			}
		}
	}

	if area.Name == "" {
		return model.Area{}, ErrMissingName
	}
	return area, nil
}

// NormalizeAreas normalizes area records in order, skipping unnamed ones.
func (n *Normalizer) NormalizeAreas(recs []Record, log logger.Logger) []model.Area {
	areas := make([]model.Area, 0, len(recs))
	for _, rec := range recs {
		area, err := n.NormalizeArea(rec)
		if err != nil {
			log.Warn("Could not read area", "id", rec.ID, "reason", err)
			continue
		}
		log.Debug("Mapped area", "area", area.Name, "level", area.NeedLevel)
		areas = append(areas, area)
	}
	return areas
}

// wants reports whether the property called name feeds a TaskRecord field by name.
func (n *Normalizer) wants(name string) bool {
	for _, want := range []string{n.Schema.Title, n.Schema.Due, n.Schema.Importance, n.Schema.Urgency, n.Schema.Area} {
		if want != "" && strings.EqualFold(want, name) {
			return true
		}
	}
	return false
}

func decodeProperty(raw any) (property, error) {
	var p property
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &p,
		TagName: "mapstructure",
	})
	if err != nil {
		return p, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return p, err
	}
	return p, nil
}

func areaRefs(p property) ([]string, error) {
	switch p.Type {
	case TypeRelation:
		refs := make([]string, 0, len(p.Relation))
		for _, r := range p.Relation {
			if r.ID != "" {
				refs = append(refs, r.ID)
			}
		}
		return refs, nil
	case TypeSelect, TypeStatus, TypeRichText:
		label, _ := p.label()
		if label = strings.TrimSpace(label); label == "" {
			return nil, nil
		}
		return []string{label}, nil
	}
	return nil, fmt.Errorf("unexpected type %q", p.Type)
}

// matches reports whether the property called name is the one selected by want.
// An empty want selects any property.
func matches(want, name string) bool {
	return want == "" || strings.EqualFold(want, name)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
