package taskwarrior

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/harrisonrobin/eisen/pkg/logger"
	"github.com/harrisonrobin/eisen/pkg/model"
	"github.com/harrisonrobin/eisen/pkg/normalize"
	"github.com/harrisonrobin/eisen/pkg/source"
)

// runFunc executes the task binary with args and returns its stdout.
type runFunc func(ctx context.Context, args ...string) ([]byte, error)

// Client reads and modifies tasks through the `task` command.
type Client struct {
	run runFunc
	// Areas maps project names to need levels.
	Areas      map[string]string
	AreaSchema normalize.AreaSchema
}

func NewClient(areas map[string]string, areaSchema normalize.AreaSchema) *Client {
	return &Client{run: runTask, Areas: areas, AreaSchema: areaSchema}
}

func runTask(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "task", args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("taskwarrior command failed: exit code %d, %s, stderr: %s",
				exitErr.ExitCode(), err, exitErr.Stderr)
		}
		return nil, fmt.Errorf("taskwarrior command failed: %w", err)
	}
	return output, nil
}

// GetTasks runs `task <filter> export` and decodes the result.
func (c *Client) GetTasks(ctx context.Context, filter []string) ([]Task, error) {
	args := append(append([]string{}, filter...), "export", "rc.hooks=0")
	output, err := c.run(ctx, args...)
	if err != nil {
		return nil, err
	}

	var tasks []Task
	if err := json.Unmarshal(output, &tasks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal taskwarrior output: %w", err)
	}
	return tasks, nil
}

// ParseTasks parses tasks from r, either a `task export` array or a stream of
// JSON objects (e.g. the lines a hook receives).
func (c *Client) ParseTasks(r io.Reader) ([]Task, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var tasks []Task
		if err := json.Unmarshal(trimmed, &tasks); err != nil {
			return nil, fmt.Errorf("failed to decode task json: %w", err)
		}
		return tasks, nil
	}

	var tasks []Task
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	for {
		var task Task
		if err := decoder.Decode(&task); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to decode task json: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// FetchTasks returns pending and waiting tasks. Completed and deleted tasks
// never reach the pipeline.
func (c *Client) FetchTasks(ctx context.Context, _ source.Filter) ([]normalize.Record, error) {
	tasks, err := c.GetTasks(ctx, []string{"(", "status:pending", "or", "status:waiting", ")"})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", source.ErrUnavailable, err)
	}
	recs := make([]normalize.Record, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == COMPLETED || t.Status == DELETED {
			continue
		}
		recs = append(recs, t.Record())
	}
	logger.FromContext(ctx).Info("Fetched tasks from Taskwarrior", "count", len(recs))
	return recs, nil
}

// FetchAreas returns the configured project -> need level map as area records.
func (c *Client) FetchAreas(_ context.Context) ([]normalize.Record, error) {
	return source.StaticAreas(c.Areas, c.AreaSchema), nil
}

// UpdateTask writes the update into the importance, urgency and energy UDAs.
// The UDAs must be declared in the user's taskrc.
func (c *Client) UpdateTask(ctx context.Context, id string, update source.Update) error {
	mods := modifications(update)
	if len(mods) == 0 {
		return nil
	}
	args := append([]string{"rc.confirmation=no", "rc.hooks=0", id, "modify"}, mods...)
	if _, err := c.run(ctx, args...); err != nil {
		return fmt.Errorf("%w: task %s: %w", source.ErrUpdateFailed, id, err)
	}
	logger.FromContext(ctx).Info("Task updated", "id", id, "modifications", strings.Join(mods, " "))
	return nil
}

func modifications(update source.Update) []string {
	var mods []string
	add := func(name string, l *model.Level) {
		if l != nil && l.IsSet() {
			mods = append(mods, name+":"+string(*l))
		}
	}
	add(PropImportance, update.Importance)
	add(PropUrgency, update.Urgency)
	add("energy", update.Energy)
	return mods
}
