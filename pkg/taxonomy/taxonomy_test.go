package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harrisonrobin/eisen/pkg/model"
)

func testAreas() []model.Area {
	return []model.Area{
		{ID: "a1", Name: "Health", NeedLevel: "Physiological"},
		{ID: "a2", Name: "Finances", NeedLevel: "Safety"},
		{ID: "a3", Name: "Gym", NeedLevel: "Physiological"},
		{ID: "a4", Name: "Hobbies"},
		{ID: "a1", Name: "Duplicate", NeedLevel: "Esteem"},
	}
}

func TestTaxonomy_Resolve(t *testing.T) {
	tax := Build(testAreas())

	t.Run("Should resolve the first reference only", func(t *testing.T) {
		level, name := tax.Resolve([]string{"a2", "a1"})
		assert.Equal(t, "Safety", level)
		assert.Equal(t, "Finances", name)
	})

	t.Run("Should fall back to Uncategorized", func(t *testing.T) {
		assert.Equal(t, model.Uncategorized, tax.ResolveNeedLevel(nil))
		assert.Equal(t, model.Uncategorized, tax.ResolveNeedLevel([]string{"missing", "a1"}))
		assert.Equal(t, model.Uncategorized, tax.ResolveNeedLevel([]string{"a4"}))
	})

	t.Run("Should keep the first definition of a duplicated ID", func(t *testing.T) {
		a, ok := tax.Lookup("a1")
		assert.True(t, ok)
		assert.Equal(t, "Health", a.Name)
		assert.Equal(t, 4, tax.Len())
	})

	t.Run("Should list levels in declaration order", func(t *testing.T) {
		assert.Equal(t, []string{"Physiological", "Safety", model.Uncategorized}, tax.Levels())
	})

	t.Run("Should tolerate an empty taxonomy", func(t *testing.T) {
		empty := Build(nil)
		assert.Equal(t, model.Uncategorized, empty.ResolveNeedLevel([]string{"a1"}))
		assert.Empty(t, empty.Levels())
	})
}

func TestTaxonomy_Apply(t *testing.T) {
	tax := Build(testAreas())

	task := tax.Apply(model.TaskRecord{Name: "Run", AreaRefs: []string{"a3"}})

	assert.Equal(t, "Physiological", task.NeedLevel)
	assert.Equal(t, "Gym", task.AreaName)
}
