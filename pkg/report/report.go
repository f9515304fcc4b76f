// Package report renders prioritization matrices as text.
package report

import (
	"fmt"
	"strings"

	"github.com/harrisonrobin/eisen/pkg/model"
	"github.com/harrisonrobin/eisen/pkg/priority"
	"github.com/harrisonrobin/eisen/pkg/util"
)

const (
	matrixTitle    = "📊 Task Recommendations (Eisenhower Matrix)"
	byLevelTitle   = "🎯 Task Recommendations by Development Area"
	suggestedTitle = "Suggested tasks (need priority setting):"
	emptyQuadrant  = "- No tasks in this category"
	emptyLevels    = "- No tasks in any need level"
)

// Format renders the four quadrant sections of m, in fixed order.
func Format(m *priority.Matrix) string {
	var b strings.Builder
	b.WriteString(matrixTitle)
	b.WriteString("\n\n")
	writeQuadrants(&b, m)
	return b.String()
}

// FormatByLevel renders the quadrant sections once per need level. Levels
// without tasks are left out.
func FormatByLevel(g *priority.Grouping) string {
	var b strings.Builder
	b.WriteString(byLevelTitle)
	b.WriteString("\n")

	groups := g.Groups()
	if len(groups) == 0 {
		b.WriteString("\n")
		b.WriteString(emptyLevels)
		b.WriteString("\n")
		return b.String()
	}
	for _, group := range groups {
		fmt.Fprintf(&b, "\n== %s ==\n\n", group.Level)
		writeQuadrants(&b, group.Matrix)
	}
	return b.String()
}

func writeQuadrants(b *strings.Builder, m *priority.Matrix) {
	for _, q := range model.Quadrants {
		b.WriteString(q.Title())
		b.WriteString(":\n")
		writeTasks(b, m.Tasks(q))
		b.WriteString("\n")
	}
}

// writeTasks lists manually prioritized tasks first, then the inferred ones
// under their own heading.
func writeTasks(b *strings.Builder, tasks []model.TaskRecord) {
	if len(tasks) == 0 {
		b.WriteString(emptyQuadrant)
		b.WriteString("\n")
		return
	}

	var suggested []model.TaskRecord
	for _, t := range tasks {
		if !t.Flags.Explicit() {
			suggested = append(suggested, t)
			continue
		}
		writeTask(b, t)
	}
	if len(suggested) == 0 {
		return
	}
	if len(suggested) < len(tasks) {
		b.WriteString("\n")
	}
	b.WriteString(suggestedTitle)
	b.WriteString("\n")
	for _, t := range suggested {
		writeTask(b, t)
	}
}

func writeTask(b *strings.Builder, t model.TaskRecord) {
	b.WriteString("- ")
	b.WriteString(t.Name)
	if t.AreaName != "" {
		fmt.Fprintf(b, " [%s]", t.AreaName)
	}
	if t.Due != "" {
		fmt.Fprintf(b, " (Due: %s)", util.DisplayDate(t.Due))
	}
	b.WriteString("\n")
}
