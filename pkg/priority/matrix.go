package priority

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harrisonrobin/eisen/pkg/model"
)

// ErrUnresolved is returned when a task reaches the classifier with an unset axis.
var ErrUnresolved = errors.New("task importance or urgency is unset")

// Matrix holds tasks per quadrant in insertion order.
type Matrix struct {
	cells map[model.Quadrant][]model.TaskRecord
	total int
}

func NewMatrix() *Matrix {
	return &Matrix{cells: make(map[model.Quadrant][]model.TaskRecord, len(model.Quadrants))}
}

// Add classifies task and appends it to its quadrant.
func (m *Matrix) Add(task model.TaskRecord) (model.Quadrant, error) {
	if !task.Resolved() {
		return "", fmt.Errorf("%w: %q", ErrUnresolved, task.Name)
	}
	q := Classify(task.Importance, task.Urgency)
	m.cells[q] = append(m.cells[q], task)
	m.total++
	return q, nil
}

// Tasks returns the tasks of q in insertion order.
func (m *Matrix) Tasks(q model.Quadrant) []model.TaskRecord {
	return m.cells[q]
}

// Count returns the number of tasks in q.
func (m *Matrix) Count(q model.Quadrant) int {
	return len(m.cells[q])
}

// Total returns the number of tasks across all quadrants.
func (m *Matrix) Total() int {
	return m.total
}

type matrixJSON struct {
	DoFirst   []model.TaskRecord `json:"do_first"`
	Schedule  []model.TaskRecord `json:"schedule"`
	Delegate  []model.TaskRecord `json:"delegate"`
	Eliminate []model.TaskRecord `json:"eliminate"`
}

// MarshalJSON renders every quadrant, empty ones included, as a JSON object
// with keys in report order.
func (m *Matrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(matrixJSON{
		DoFirst:   m.cellJSON(model.DoFirst),
		Schedule:  m.cellJSON(model.Schedule),
		Delegate:  m.cellJSON(model.Delegate),
		Eliminate: m.cellJSON(model.Eliminate),
	})
}

func (m *Matrix) cellJSON(q model.Quadrant) []model.TaskRecord {
	if tasks := m.cells[q]; tasks != nil {
		return tasks
	}
	return []model.TaskRecord{}
}

// Build classifies tasks into a fresh matrix.
func Build(tasks []model.TaskRecord) (*Matrix, error) {
	m := NewMatrix()
	for _, t := range tasks {
		if _, err := m.Add(t); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// LevelGroup is the matrix of a single need level.
type LevelGroup struct {
	Level  string  `json:"level"`
	Matrix *Matrix `json:"matrix"`
}

// Grouping is need level -> quadrant -> tasks, with levels in first-seen order.
type Grouping struct {
	order  []string
	levels map[string]*Matrix
}

func NewGrouping() *Grouping {
	return &Grouping{levels: make(map[string]*Matrix)}
}

// Add classifies task into the matrix of its need level.
func (g *Grouping) Add(task model.TaskRecord) (model.Quadrant, error) {
	level := task.NeedLevel
	if level == "" {
		level = model.Uncategorized
	}
	return g.matrix(level).Add(task)
}

// matrix returns the matrix for level, creating it on first use.
func (g *Grouping) matrix(level string) *Matrix {
	m, ok := g.levels[level]
	if !ok {
		m = NewMatrix()
		g.levels[level] = m
		g.order = append(g.order, level)
	}
	return m
}

// Groups returns the non-empty levels in first-seen order.
func (g *Grouping) Groups() []LevelGroup {
	groups := make([]LevelGroup, 0, len(g.order))
	for _, level := range g.order {
		m := g.levels[level]
		if m.Total() == 0 {
			continue
		}
		groups = append(groups, LevelGroup{Level: level, Matrix: m})
	}
	return groups
}

// GroupByLevel classifies tasks into per-level matrices.
func GroupByLevel(tasks []model.TaskRecord) (*Grouping, error) {
	g := NewGrouping()
	for _, t := range tasks {
		if _, err := g.Add(t); err != nil {
			return nil, err
		}
	}
	return g, nil
}
