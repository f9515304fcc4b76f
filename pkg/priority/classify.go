package priority

import "github.com/harrisonrobin/eisen/pkg/model"

// IsHighImportance is the importance gate of the classifier.
func IsHighImportance(l model.Level) bool {
	return l == model.LevelHigh
}

// IsHighUrgency is the urgency gate of the classifier.
func IsHighUrgency(l model.Level) bool {
	return l == model.LevelHigh
}

// Classify places an (importance, urgency) pair in its quadrant. Medium and low
// are both "not high".
func Classify(importance, urgency model.Level) model.Quadrant {
	important := IsHighImportance(importance)
	urgent := IsHighUrgency(urgency)
	switch {
	case important && urgent:
		return model.DoFirst
	case important:
		return model.Schedule
	case urgent:
		return model.Delegate
	default:
		return model.Eliminate
	}
}
