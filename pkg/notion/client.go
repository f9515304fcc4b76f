// Package notion implements the task data source on top of the Notion REST API.
package notion

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/harrisonrobin/eisen/pkg/logger"
	"github.com/harrisonrobin/eisen/pkg/normalize"
	"github.com/harrisonrobin/eisen/pkg/source"
)

const (
	DefaultBaseURL = "https://api.notion.com/v1"
	DefaultVersion = "2022-06-28"
	defaultTimeout = 30 * time.Second
	pageSize       = 100
)

// Config configures the Notion client.
type Config struct {
	APIKey          string
	DatabaseID      string
	AreasDatabaseID string
	BaseURL         string
	Version         string
	Timeout         time.Duration
	// StatusProperty is the property used to filter out finished tasks;
	// StatusType is its Notion type, "status" or "select".
	StatusProperty string
	StatusType     string
	// Property names written by UpdateTask. An empty name is never written.
	ImportanceProperty string
	UrgencyProperty    string
	EnergyProperty     string
}

// Client is a Notion API client.
type Client struct {
	http *resty.Client
	cfg  Config
}

// APIError is the error object returned by the Notion API.
type APIError struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion %s (%d): %s", e.Code, e.Status, e.Message)
}

// NewClient creates a new Notion client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("notion API key is required")
	}
	if cfg.DatabaseID == "" {
		return nil, fmt.Errorf("notion database ID is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.StatusType == "" {
		cfg.StatusType = normalize.TypeStatus
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("Authorization", "Bearer "+cfg.APIKey).
		SetHeader("Notion-Version", cfg.Version)

	return &Client{http: client, cfg: cfg}, nil
}

type page struct {
	ID         string         `json:"id"`
	Archived   bool           `json:"archived"`
	Properties map[string]any `json:"properties"`
}

type queryResponse struct {
	Results    []page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// FetchTasks returns every page of the task database that passes filter.
func (c *Client) FetchTasks(ctx context.Context, filter source.Filter) ([]normalize.Record, error) {
	recs, err := c.queryDatabase(ctx, c.cfg.DatabaseID, c.statusFilter(filter))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", source.ErrUnavailable, err)
	}
	logger.FromContext(ctx).Info("Fetched tasks from Notion", "count", len(recs))
	return recs, nil
}

// FetchAreas returns every page of the areas database, or nothing when no
// areas database is configured.
func (c *Client) FetchAreas(ctx context.Context) ([]normalize.Record, error) {
	if c.cfg.AreasDatabaseID == "" {
		return nil, nil
	}
	recs, err := c.queryDatabase(ctx, c.cfg.AreasDatabaseID, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", source.ErrUnavailable, err)
	}
	logger.FromContext(ctx).Info("Fetched areas from Notion", "count", len(recs))
	return recs, nil
}

// UpdateTask writes the update as select properties of the page.
func (c *Client) UpdateTask(ctx context.Context, id string, update source.Update) error {
	props := make(map[string]any)
	set := func(name string, level any) {
		if name == "" {
			return
		}
		props[name] = level
	}
	if update.Importance != nil {
		set(c.cfg.ImportanceProperty, selectValue(source.LevelLabel(*update.Importance)))
	}
	if update.Urgency != nil {
		set(c.cfg.UrgencyProperty, selectValue(source.LevelLabel(*update.Urgency)))
	}
	if update.Energy != nil {
		set(c.cfg.EnergyProperty, selectValue(source.LevelLabel(*update.Energy)))
	}
	if len(props) == 0 {
		return nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetBody(map[string]any{"properties": props}).
		SetError(&APIError{}).
		Patch("/pages/{id}")
	if err := responseError(resp, err); err != nil {
		return fmt.Errorf("%w: page %s: %w", source.ErrUpdateFailed, id, err)
	}
	logger.FromContext(ctx).Info("Task updated", "id", id)
	return nil
}

func (c *Client) queryDatabase(ctx context.Context, databaseID string, filter map[string]any) ([]normalize.Record, error) {
	var recs []normalize.Record
	cursor := ""
	for {
		body := map[string]any{"page_size": pageSize}
		if filter != nil {
			body["filter"] = filter
		}
		if cursor != "" {
			body["start_cursor"] = cursor
		}

		var out queryResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetPathParam("id", databaseID).
			SetBody(body).
			SetResult(&out).
			SetError(&APIError{}).
			Post("/databases/{id}/query")
		if err := responseError(resp, err); err != nil {
			return nil, fmt.Errorf("query database %s: %w", databaseID, err)
		}

		for _, p := range out.Results {
			if p.Archived {
				continue
			}
			recs = append(recs, normalize.Record{ID: p.ID, Properties: p.Properties})
		}
		if !out.HasMore || out.NextCursor == "" {
			return recs, nil
		}
		cursor = out.NextCursor
	}
}

// statusFilter builds the database filter that excludes the given statuses.
func (c *Client) statusFilter(filter source.Filter) map[string]any {
	if c.cfg.StatusProperty == "" || len(filter.ExcludeStatuses) == 0 {
		return nil
	}
	conds := make([]any, 0, len(filter.ExcludeStatuses))
	for _, status := range filter.ExcludeStatuses {
		conds = append(conds, map[string]any{
			"property":       c.cfg.StatusProperty,
			c.cfg.StatusType: map[string]any{"does_not_equal": status},
		})
	}
	if len(conds) == 1 {
		return conds[0].(map[string]any)
	}
	return map[string]any{"and": conds}
}

func selectValue(name string) map[string]any {
	return map[string]any{"select": map[string]any{"name": name}}
}

func responseError(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.StatusCode() < 400 {
		return nil
	}
	if apiErr, ok := resp.Error().(*APIError); ok && apiErr != nil && apiErr.Message != "" {
		return apiErr
	}
	return fmt.Errorf("notion API error: %s (status %d)", resp.String(), resp.StatusCode())
}
