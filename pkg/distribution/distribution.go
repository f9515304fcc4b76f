package distribution

import (
	"fmt"
	"math"
	"strings"

	"github.com/harrisonrobin/eisen/pkg/model"
)

// Entry is the share of tasks at one need level.
type Entry struct {
	Level      string  `json:"level"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Distribution lists the need levels in first-seen order.
type Distribution struct {
	Total   int     `json:"total"`
	Entries []Entry `json:"entries"`
}

// Analyze counts tasks per need level. Seed levels are listed first, in the
// given order, even when no task references them.
func Analyze(tasks []model.TaskRecord, seed ...string) Distribution {
	index := make(map[string]int)
	var entries []Entry
	entry := func(level string) *Entry {
		if level == "" {
			level = model.Uncategorized
		}
		i, ok := index[level]
		if !ok {
			i = len(entries)
			index[level] = i
			entries = append(entries, Entry{Level: level})
		}
		return &entries[i]
	}

	for _, level := range seed {
		entry(level)
	}
	for _, t := range tasks {
		entry(t.NeedLevel).Count++
	}

	total := len(tasks)
	for i := range entries {
		entries[i].Percentage = percentage(entries[i].Count, total)
	}
	return Distribution{Total: total, Entries: entries}
}

// percentage is count/total*100 rounded to one decimal, 0 when total is 0.
func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}

// Lookup returns the entry for level.
func (d Distribution) Lookup(level string) (Entry, bool) {
	for _, e := range d.Entries {
		if e.Level == level {
			return e, true
		}
	}
	return Entry{}, false
}

// Format renders the distribution as a report section.
func (d Distribution) Format() string {
	var b strings.Builder
	b.WriteString("📊 Task Distribution Analysis:\n")
	if len(d.Entries) == 0 {
		b.WriteString("\nNo need levels to report\n")
		return b.String()
	}
	for _, e := range d.Entries {
		fmt.Fprintf(&b, "\n%s: %d tasks (%.1f%%)", e.Level, e.Count, e.Percentage)
	}
	b.WriteString("\n")
	return b.String()
}
