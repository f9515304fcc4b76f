package orgmode

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/harrisonrobin/eisen/pkg/logger"
	"github.com/harrisonrobin/eisen/pkg/normalize"
	"github.com/harrisonrobin/eisen/pkg/source"
)

const (
	PENDING   = "pending"
	COMPLETED = "completed"
)

// Entry is one TODO or DONE heading of an Org file.
type Entry struct {
	ID          string
	Description string
	// Deadline is the date of the DEADLINE timestamp, YYYY-MM-DD.
	Deadline string
	Priority string
	Tags     []string
	Status   string
	Source   string
}

var (
	headingRegex  = regexp.MustCompile(`^\*+\s+(TODO|DONE)\s*(?:\[#([A-Z])\])?\s*(.*?)(?:\s+(:(?:[\w@#%]+:)+))?\s*$`)
	deadlineRegex = regexp.MustCompile(`DEADLINE:\s+<(\d{4}-\d{2}-\d{2})(?:\s+[A-Za-z]{2,3})?(?:\s+\d{1,2}:\d{2})?[^>]*>`)
	idRegex       = regexp.MustCompile(`^:ID:\s+(\S+)`)
	outlineRegex  = regexp.MustCompile(`^\*+\s`)
)

// parseFile parses an Org-mode file and returns its entries.
func parseFile(ctx context.Context, filePath string) ([]Entry, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Parse(ctx, file, filePath)
}

// ParseFiles parses multiple Org-mode files in order.
func ParseFiles(ctx context.Context, filePaths []string) ([]Entry, error) {
	var all []Entry
	for _, filePath := range filePaths {
		entries, err := parseFile(ctx, filePath)
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
	}
	return all, nil
}

// Parse reads TODO and DONE headings from r. An entry without an :ID:
// property is identified by its source and line number.
func Parse(ctx context.Context, r io.Reader, source string) ([]Entry, error) {
	logger.FromContext(ctx).Debug("Parsing org file", "file", source)
	scanner := bufio.NewScanner(r)
	var entries []Entry
	var current *Entry

	flush := func() {
		if current != nil && current.Description != "" {
			entries = append(entries, *current)
		}
		current = nil
	}

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimSpace(raw)

		if outlineRegex.MatchString(raw) {
			flush()
			matches := headingRegex.FindStringSubmatch(line)
			if matches == nil {
				continue
			}
			current = &Entry{
				ID:          fmt.Sprintf("%s:%d", source, lineNo),
				Priority:    matches[2],
				Description: strings.TrimSpace(matches[3]),
				Source:      source,
				Status:      PENDING,
			}
			if matches[1] == "DONE" {
				current.Status = COMPLETED
			}
			if tags := strings.Trim(matches[4], ":"); tags != "" {
				current.Tags = strings.Split(tags, ":")
			}
			continue
		}
		if current == nil {
			continue
		}
		if matches := deadlineRegex.FindStringSubmatch(line); matches != nil {
			current.Deadline = matches[1]
		} else if matches := idRegex.FindStringSubmatch(line); matches != nil {
			current.ID = matches[1]
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// FilterTasks keeps the entries carrying tag.
func FilterTasks(entries []Entry, tag string) []Entry {
	var filtered []Entry
	for _, e := range entries {
		for _, t := range e.Tags {
			if t == tag {
				filtered = append(filtered, e)
				break
			}
		}
	}
	return filtered
}

// Property names of records produced from Org entries.
const (
	PropHeading  = "heading"
	PropDeadline = "deadline"
	PropPriority = "priority"
	PropTags     = "tags"
)

// priorityLabels maps Org priority cookies onto importance labels.
var priorityLabels = map[string]string{"A": "high", "B": "medium", "C": "low"}

// Record converts e into the normalizer's property-bag shape. The priority
// cookie is the importance; the tags are area references.
func (e Entry) Record() normalize.Record {
	return normalize.Record{
		ID: e.ID,
		Properties: map[string]any{
			PropHeading:  normalize.Title(e.Description),
			PropDeadline: normalize.Date(e.Deadline),
			PropPriority: normalize.Select(priorityLabels[e.Priority]),
			PropTags:     normalize.Relation(e.Tags...),
		},
	}
}

// Schema is the normalizer schema matching Record. Org has no urgency field.
func Schema() normalize.Schema {
	return normalize.Schema{
		Title:      PropHeading,
		Due:        PropDeadline,
		Importance: PropPriority,
		Area:       PropTags,
	}
}

// Source is a read-only data source over a set of Org files.
type Source struct {
	Files []string
	// Tag, when set, restricts the source to headings carrying it.
	Tag string
	// Areas maps tags to need levels.
	Areas      map[string]string
	AreaSchema normalize.AreaSchema
}

func NewSource(files []string, tag string, areas map[string]string, areaSchema normalize.AreaSchema) *Source {
	return &Source{Files: files, Tag: tag, Areas: areas, AreaSchema: areaSchema}
}

// FetchTasks returns the open headings of every configured file.
func (s *Source) FetchTasks(ctx context.Context, _ source.Filter) ([]normalize.Record, error) {
	entries, err := ParseFiles(ctx, s.Files)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", source.ErrUnavailable, err)
	}
	if s.Tag != "" {
		entries = FilterTasks(entries, s.Tag)
	}
	recs := make([]normalize.Record, 0, len(entries))
	for _, e := range entries {
		if e.Status == COMPLETED {
			continue
		}
		recs = append(recs, e.Record())
	}
	logger.FromContext(ctx).Info("Fetched tasks from org files", "files", len(s.Files), "count", len(recs))
	return recs, nil
}

// FetchAreas returns the configured tag -> need level map as area records.
func (s *Source) FetchAreas(_ context.Context) ([]normalize.Record, error) {
	return source.StaticAreas(s.Areas, s.AreaSchema), nil
}

// UpdateTask always fails: Org files are never rewritten.
func (s *Source) UpdateTask(_ context.Context, id string, _ source.Update) error {
	return fmt.Errorf("%w: org entry %s", source.ErrReadOnly, id)
}
