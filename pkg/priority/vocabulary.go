package priority

import (
	"strings"

	"github.com/harrisonrobin/eisen/pkg/model"
)

// Vocabulary maps free-form labels onto levels for one axis.
type Vocabulary struct {
	High   []string `json:"high"`
	Medium []string `json:"medium"`
	Low    []string `json:"low"`
}

var (
	ImportanceVocabulary = Vocabulary{
		High:   []string{"high", "important", "yes", "h"},
		Medium: []string{"medium", "med", "normal", "m"},
		Low:    []string{"low", "no", "l", "none"},
	}
	UrgencyVocabulary = Vocabulary{
		High:   []string{"high", "urgent", "yes", "h"},
		Medium: []string{"medium", "med", "normal", "m"},
		Low:    []string{"low", "no", "l", "none"},
	}
)

// Parse returns the level for label. An empty label is unset; a label that is
// present but unknown is medium, so it never passes the high gate.
func (v Vocabulary) Parse(label string) model.Level {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return model.LevelUnset
	}
	switch {
	case contains(v.High, label):
		return model.LevelHigh
	case contains(v.Low, label):
		return model.LevelLow
	default:
		return model.LevelMedium
	}
}

func contains(set []string, label string) bool {
	for _, s := range set {
		if strings.EqualFold(s, label) {
			return true
		}
	}
	return false
}
