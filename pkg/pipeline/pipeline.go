// Package pipeline runs one prioritization pass: fetch, normalize, enrich,
// estimate, group, classify and format.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harrisonrobin/eisen/pkg/advisor"
	"github.com/harrisonrobin/eisen/pkg/distribution"
	"github.com/harrisonrobin/eisen/pkg/logger"
	"github.com/harrisonrobin/eisen/pkg/model"
	"github.com/harrisonrobin/eisen/pkg/normalize"
	"github.com/harrisonrobin/eisen/pkg/priority"
	"github.com/harrisonrobin/eisen/pkg/report"
	"github.com/harrisonrobin/eisen/pkg/source"
	"github.com/harrisonrobin/eisen/pkg/taxonomy"
)

// Options selects the optional stages of a run.
type Options struct {
	// ByLevel groups the report by need level.
	ByLevel bool
	// Distribution appends the need-level distribution to the report.
	Distribution bool
	// Enrich asks the advisor about tasks missing importance or urgency.
	Enrich bool
	// Persist writes advisory values back to the source.
	Persist bool
}

// Result is everything a run produced.
type Result struct {
	Tasks        []model.TaskRecord        `json:"tasks"`
	Matrix       *priority.Matrix          `json:"matrix"`
	Grouping     *priority.Grouping        `json:"-"`
	Distribution distribution.Distribution `json:"distribution"`
	Report       string                    `json:"-"`
}

// Pipeline holds the collaborators of a run. Advisor and Throttle are optional.
type Pipeline struct {
	Source     source.DataSource
	Advisor    advisor.Advisor
	Normalizer *normalize.Normalizer
	Estimator  *priority.Estimator
	Throttle   *Throttle
	Filter     source.Filter
}

func New(src source.DataSource, n *normalize.Normalizer) *Pipeline {
	return &Pipeline{
		Source:     src,
		Normalizer: n,
		Estimator:  priority.NewEstimator(),
		Filter:     source.DefaultFilter(),
	}
}

// cacher is implemented by advisors that can answer without an external call.
type cacher interface {
	Cached(taskName string) bool
}

// Run executes one pass. Source, advisory and persistence failures are logged
// and the run continues with what it has; only cancellation of ctx aborts it.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	log := logger.FromContext(ctx)

	tax := p.buildTaxonomy(ctx)

	recs, err := p.Source.FetchTasks(ctx, p.Filter)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Error("Could not fetch tasks", "error", err)
		recs = nil
	}
	tasks := p.Normalizer.NormalizeAll(recs, log)
	if len(recs) > len(tasks) {
		log.Info("Discarded unusable task records", "count", len(recs)-len(tasks))
	}
	if len(tasks) == 0 {
		log.Info("No active tasks found")
	}

	if opts.Enrich && p.Advisor != nil {
		if err := p.enrich(ctx, tasks, opts.Persist); err != nil {
			return nil, err
		}
	}

	for i := range tasks {
		tasks[i] = tax.Apply(p.Estimator.Resolve(tasks[i]))
	}

	res := &Result{Tasks: tasks}
	if res.Matrix, err = priority.Build(tasks); err != nil {
		return nil, fmt.Errorf("failed to build matrix: %w", err)
	}
	if opts.ByLevel {
		if res.Grouping, err = priority.GroupByLevel(tasks); err != nil {
			return nil, fmt.Errorf("failed to group tasks: %w", err)
		}
	}
	res.Distribution = distribution.Analyze(tasks, tax.Levels()...)

	var b strings.Builder
	if opts.ByLevel {
		b.WriteString(report.FormatByLevel(res.Grouping))
	} else {
		b.WriteString(report.Format(res.Matrix))
	}
	if opts.Distribution {
		b.WriteString("\n")
		b.WriteString(res.Distribution.Format())
	}
	res.Report = b.String()
	return res, nil
}

func (p *Pipeline) buildTaxonomy(ctx context.Context) *taxonomy.Taxonomy {
	log := logger.FromContext(ctx)
	recs, err := p.Source.FetchAreas(ctx)
	if err != nil {
		log.Warn("Could not fetch areas, every task will be Uncategorized", "error", err)
		recs = nil
	}
	tax := taxonomy.Build(p.Normalizer.NormalizeAreas(recs, log))
	log.Info("Built area taxonomy", "areas", tax.Len(), "levels", len(tax.Levels()))
	return tax
}

// enrich fills unset axes from the advisor, task by task in source order.
func (p *Pipeline) enrich(ctx context.Context, tasks []model.TaskRecord, persist bool) error {
	log := logger.FromContext(ctx)
	calls := 0
	pause := func() error {
		defer func() { calls++ }()
		if calls == 0 {
			return nil
		}
		return p.Throttle.Wait(ctx)
	}

	for i := range tasks {
		t := &tasks[i]
		if !needsAdvice(*t) {
			continue
		}
		if c, ok := p.Advisor.(cacher); !ok || !c.Cached(t.Name) {
			if err := pause(); err != nil {
				return err
			}
		}

		s, err := p.Advisor.Analyze(ctx, t.Name)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			log.Warn("Advisory failed, keeping known values", "task", t.Name, "error", err)
			continue
		}
		update := apply(t, s)
		log.Debug("Enriched task", "task", t.Name, "importance", t.Importance, "urgency", t.Urgency)

		if !persist || update.Empty() || t.ID == "" {
			continue
		}
		if err := pause(); err != nil {
			return err
		}
		if err := p.Source.UpdateTask(ctx, t.ID, update); err != nil {
			if errors.Is(err, source.ErrReadOnly) {
				log.Debug("Source is read-only, not persisting", "task", t.Name)
				continue
			}
			log.Warn("Could not persist advisory values", "task", t.Name, "error", err)
		}
	}
	return nil
}

// datedUrgency reports whether t's urgency follows from its due date.
func datedUrgency(t model.TaskRecord) bool {
	return !t.Urgency.IsSet() && strings.TrimSpace(t.Due) != ""
}

// needsAdvice reports whether an axis of t is left for the advisor to fill.
// A due date settles urgency.
func needsAdvice(t model.TaskRecord) bool {
	return !t.Importance.IsSet() || (!t.Urgency.IsSet() && !datedUrgency(t))
}

// apply copies suggested values onto the unset axes of t and returns what
// should be written back to the source.
func apply(t *model.TaskRecord, s advisor.Suggestion) source.Update {
	var update source.Update
	if !t.Importance.IsSet() && s.Importance != nil && s.Importance.IsSet() {
		t.Importance, t.Flags.Importance = *s.Importance, model.OriginAdvisor
		update.Importance = s.Importance
	}
	if !t.Urgency.IsSet() && !datedUrgency(*t) && s.Urgency != nil && s.Urgency.IsSet() {
		t.Urgency, t.Flags.Urgency = *s.Urgency, model.OriginAdvisor
		update.Urgency = s.Urgency
	}
	if s.Energy != nil && s.Energy.IsSet() {
		update.Energy = s.Energy
	}
	return update
}
