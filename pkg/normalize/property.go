package normalize

import "strings"

// Record is a raw task or area as delivered by a data source: an identifier
// and an open-ended property bag. Every source emits properties in the same
// typed shape ({"type": "select", "select": {"name": "High"}}, ...), built
// with the constructors below or taken verbatim from the Notion API.
type Record struct {
	ID         string
	Properties map[string]any
}

// Property types understood by the normalizer.
const (
	TypeTitle    = "title"
	TypeRichText = "rich_text"
	TypeDate     = "date"
	TypeSelect   = "select"
	TypeStatus   = "status"
	TypeRelation = "relation"
)

type textContent struct {
	Content string `mapstructure:"content"`
}

type richText struct {
	PlainText string      `mapstructure:"plain_text"`
	Text      textContent `mapstructure:"text"`
}

type dateValue struct {
	Start string `mapstructure:"start"`
}

type option struct {
	Name string `mapstructure:"name"`
}

type relationRef struct {
	ID string `mapstructure:"id"`
}

// property is the typed view of one entry of a Record's property bag.
type property struct {
	Type     string        `mapstructure:"type"`
	Title    []richText    `mapstructure:"title"`
	RichText []richText    `mapstructure:"rich_text"`
	Date     *dateValue    `mapstructure:"date"`
	Select   *option       `mapstructure:"select"`
	Status   *option       `mapstructure:"status"`
	Relation []relationRef `mapstructure:"relation"`
}

func joinText(parts []richText) string {
	var b strings.Builder
	for _, p := range parts {
		if p.PlainText != "" {
			b.WriteString(p.PlainText)
		} else {
			b.WriteString(p.Text.Content)
		}
	}
	return strings.TrimSpace(b.String())
}

// label returns the textual value of a select, status or rich_text property.
func (p property) label() (string, bool) {
	switch p.Type {
	case TypeSelect:
		if p.Select == nil {
			return "", true
		}
		return p.Select.Name, true
	case TypeStatus:
		if p.Status == nil {
			return "", true
		}
		return p.Status.Name, true
	case TypeRichText:
		return joinText(p.RichText), true
	}
	return "", false
}

func textParts(s string) []any {
	return []any{map[string]any{"plain_text": s, "text": map[string]any{"content": s}}}
}

// Title builds a title property.
func Title(s string) map[string]any {
	return map[string]any{"type": TypeTitle, TypeTitle: textParts(s)}
}

// RichText builds a rich_text property.
func RichText(s string) map[string]any {
	return map[string]any{"type": TypeRichText, TypeRichText: textParts(s)}
}

// Date builds a date property; an empty start yields an empty date.
func Date(start string) map[string]any {
	if start == "" {
		return map[string]any{"type": TypeDate, TypeDate: nil}
	}
	return map[string]any{"type": TypeDate, TypeDate: map[string]any{"start": start}}
}

// Select builds a select property; an empty name yields an empty selection.
func Select(name string) map[string]any {
	if name == "" {
		return map[string]any{"type": TypeSelect, TypeSelect: nil}
	}
	return map[string]any{"type": TypeSelect, TypeSelect: map[string]any{"name": name}}
}

// Status builds a status property.
func Status(name string) map[string]any {
	return map[string]any{"type": TypeStatus, TypeStatus: map[string]any{"name": name}}
}

// Relation builds a relation property referencing ids.
func Relation(ids ...string) map[string]any {
	refs := make([]any, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, map[string]any{"id": id})
	}
	return map[string]any{"type": TypeRelation, TypeRelation: refs}
}
