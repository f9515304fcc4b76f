package priority

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/eisen/pkg/model"
)

var fixedNow = time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)

func newTestEstimator() *Estimator {
	e := NewEstimator()
	e.Now = func() time.Time { return fixedNow }
	return e
}

func dueIn(days int) string {
	return fixedNow.AddDate(0, 0, days).Format("2006-01-02")
}

func TestUrgencyForDays(t *testing.T) {
	t.Run("Should honor inclusive band boundaries", func(t *testing.T) {
		cases := map[int]model.Level{
			-5: model.LevelHigh,
			0:  model.LevelHigh,
			3:  model.LevelHigh,
			4:  model.LevelMedium,
			7:  model.LevelMedium,
			8:  model.LevelLow,
			90: model.LevelLow,
		}
		for days, want := range cases {
			assert.Equal(t, want, UrgencyForDays(days), "days=%d", days)
		}
	})
}

func TestEstimator_EstimateUrgency(t *testing.T) {
	e := newTestEstimator()

	t.Run("Should keep an explicit value", func(t *testing.T) {
		assert.Equal(t, model.LevelLow, e.EstimateUrgency(dueIn(0), "urgent thing", model.LevelLow))
	})

	t.Run("Should derive urgency from the due date", func(t *testing.T) {
		assert.Equal(t, model.LevelHigh, e.EstimateUrgency(dueIn(3), "water plants", model.LevelUnset))
		assert.Equal(t, model.LevelMedium, e.EstimateUrgency(dueIn(7), "water plants", model.LevelUnset))
		assert.Equal(t, model.LevelLow, e.EstimateUrgency(dueIn(8), "water plants", model.LevelUnset))
		assert.Equal(t, model.LevelHigh, e.EstimateUrgency(dueIn(-2), "water plants", model.LevelUnset))
	})

	t.Run("Should prefer the due date over keywords", func(t *testing.T) {
		assert.Equal(t, model.LevelLow, e.EstimateUrgency(dueIn(30), "urgent report", model.LevelUnset))
	})

	t.Run("Should fall back to medium for unparseable dates", func(t *testing.T) {
		assert.Equal(t, model.LevelMedium, e.EstimateUrgency("someday", "urgent report", model.LevelUnset))
	})

	t.Run("Should use keywords case-insensitively without a due date", func(t *testing.T) {
		assert.Equal(t, model.LevelHigh, e.EstimateUrgency("", "Call bank ASAP", model.LevelUnset))
		assert.Equal(t, model.LevelHigh, e.EstimateUrgency("", "Submit Tomorrow", model.LevelUnset))
	})

	t.Run("Should never default to low", func(t *testing.T) {
		assert.Equal(t, model.LevelMedium, e.EstimateUrgency("", "read a book", model.LevelUnset))
	})
}

func TestEstimator_EstimateImportance(t *testing.T) {
	e := newTestEstimator()

	t.Run("Should keep an explicit value", func(t *testing.T) {
		assert.Equal(t, model.LevelLow, e.EstimateImportance("critical fix", model.LevelLow))
	})

	t.Run("Should match importance keywords", func(t *testing.T) {
		assert.Equal(t, model.LevelHigh, e.EstimateImportance("Install new router", model.LevelUnset))
		assert.Equal(t, model.LevelHigh, e.EstimateImportance("CRITICAL patch", model.LevelUnset))
	})

	t.Run("Should default to medium", func(t *testing.T) {
		assert.Equal(t, model.LevelMedium, e.EstimateImportance("Renew certificate", model.LevelUnset))
	})
}

func TestEstimator_Resolve(t *testing.T) {
	e := newTestEstimator()

	t.Run("Should record the origin of each inferred axis", func(t *testing.T) {
		task := e.Resolve(model.TaskRecord{Name: "Renew certificate", Due: dueIn(2)})

		assert.Equal(t, model.LevelMedium, task.Importance)
		assert.Equal(t, model.OriginDefault, task.Flags.Importance)
		assert.Equal(t, model.LevelHigh, task.Urgency)
		assert.Equal(t, model.OriginDueDate, task.Flags.Urgency)
		assert.False(t, task.Flags.Explicit())
	})

	t.Run("Should leave explicit axes untouched", func(t *testing.T) {
		in := model.TaskRecord{
			Name:       "Anything",
			Importance: model.LevelLow,
			Urgency:    model.LevelHigh,
			Flags:      model.SourceFlags{Importance: model.OriginExplicit, Urgency: model.OriginExplicit},
		}
		assert.Equal(t, in, e.Resolve(in))
	})
}

func TestClassify(t *testing.T) {
	t.Run("Should map the two gates onto quadrants", func(t *testing.T) {
		assert.Equal(t, model.DoFirst, Classify(model.LevelHigh, model.LevelHigh))
		assert.Equal(t, model.Schedule, Classify(model.LevelHigh, model.LevelMedium))
		assert.Equal(t, model.Delegate, Classify(model.LevelLow, model.LevelHigh))
		assert.Equal(t, model.Eliminate, Classify(model.LevelMedium, model.LevelLow))
	})

	t.Run("Should be deterministic", func(t *testing.T) {
		levels := []model.Level{model.LevelLow, model.LevelMedium, model.LevelHigh}
		for _, i := range levels {
			for _, u := range levels {
				assert.Equal(t, Classify(i, u), Classify(i, u))
			}
		}
	})
}

func TestVocabulary_Parse(t *testing.T) {
	t.Run("Should accept axis-specific synonyms", func(t *testing.T) {
		assert.Equal(t, model.LevelHigh, ImportanceVocabulary.Parse("Important"))
		assert.Equal(t, model.LevelHigh, UrgencyVocabulary.Parse(" urgent "))
		assert.Equal(t, model.LevelHigh, UrgencyVocabulary.Parse("YES"))
		assert.Equal(t, model.LevelMedium, ImportanceVocabulary.Parse("urgent"))
	})

	t.Run("Should treat unknown labels as medium and empty as unset", func(t *testing.T) {
		assert.Equal(t, model.LevelMedium, ImportanceVocabulary.Parse("P2"))
		assert.Equal(t, model.LevelLow, ImportanceVocabulary.Parse("Low"))
		assert.Equal(t, model.LevelUnset, ImportanceVocabulary.Parse("  "))
	})
}

func TestEstimator_Classify_EndToEnd(t *testing.T) {
	e := newTestEstimator()

	t.Run("Should delegate a near-due task without keywords", func(t *testing.T) {
		task := e.Resolve(model.TaskRecord{Name: "Renew certificate", Due: dueIn(2)})
		assert.Equal(t, model.Delegate, Classify(task.Importance, task.Urgency))
	})

	t.Run("Should do first a task with importance and urgency keywords", func(t *testing.T) {
		task := e.Resolve(model.TaskRecord{Name: "Critical deadline setup"})
		assert.Equal(t, model.LevelHigh, task.Importance)
		assert.Equal(t, model.LevelHigh, task.Urgency)
		assert.Equal(t, model.DoFirst, Classify(task.Importance, task.Urgency))
	})
}

func explicitTask(name string, imp, urg model.Level, level string) model.TaskRecord {
	return model.TaskRecord{
		Name:       name,
		Importance: imp,
		Urgency:    urg,
		NeedLevel:  level,
		Flags:      model.SourceFlags{Importance: model.OriginExplicit, Urgency: model.OriginExplicit},
	}
}

func TestMatrix(t *testing.T) {
	tasks := []model.TaskRecord{
		explicitTask("a", model.LevelHigh, model.LevelHigh, "Safety"),
		explicitTask("b", model.LevelHigh, model.LevelLow, "Esteem"),
		explicitTask("c", model.LevelLow, model.LevelHigh, "Safety"),
		explicitTask("d", model.LevelLow, model.LevelLow, ""),
		explicitTask("e", model.LevelHigh, model.LevelHigh, "Esteem"),
	}

	t.Run("Should place every task in exactly one quadrant", func(t *testing.T) {
		m, err := Build(tasks)
		require.NoError(t, err)

		sum := 0
		for _, q := range model.Quadrants {
			sum += m.Count(q)
		}
		assert.Equal(t, len(tasks), sum)
		assert.Equal(t, len(tasks), m.Total())
		require.Len(t, m.Tasks(model.DoFirst), 2)
		assert.Equal(t, "a", m.Tasks(model.DoFirst)[0].Name)
		assert.Equal(t, "e", m.Tasks(model.DoFirst)[1].Name)
	})

	t.Run("Should reject unresolved tasks", func(t *testing.T) {
		_, err := Build([]model.TaskRecord{{Name: "x", Importance: model.LevelHigh}})
		assert.ErrorIs(t, err, ErrUnresolved)
	})

	t.Run("Should group by need level in first-seen order", func(t *testing.T) {
		g, err := GroupByLevel(tasks)
		require.NoError(t, err)

		groups := g.Groups()
		require.Len(t, groups, 3)
		assert.Equal(t, "Safety", groups[0].Level)
		assert.Equal(t, "Esteem", groups[1].Level)
		assert.Equal(t, model.Uncategorized, groups[2].Level)
		assert.Equal(t, 2, groups[0].Matrix.Total())
	})

	t.Run("Should render all quadrants as JSON", func(t *testing.T) {
		m, err := Build(nil)
		require.NoError(t, err)

		raw, err := json.Marshal(m)
		require.NoError(t, err)

		var decoded map[string][]model.TaskRecord
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.Len(t, decoded, 4)
		assert.Empty(t, decoded["do_first"])
	})

	t.Run("Should emit quadrants in report order", func(t *testing.T) {
		m, err := Build([]model.TaskRecord{explicitTask("Sweep", model.LevelLow, model.LevelLow, "")})
		require.NoError(t, err)

		raw, err := json.Marshal(m)
		require.NoError(t, err)

		s := string(raw)
		first := strings.Index(s, `"do_first"`)
		second := strings.Index(s, `"schedule"`)
		third := strings.Index(s, `"delegate"`)
		fourth := strings.Index(s, `"eliminate"`)
		assert.True(t, first >= 0 && first < second && second < third && third < fourth, s)
		assert.Contains(t, s, `"eliminate":[{`)
	})
}
