package gtasks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"

	"github.com/harrisonrobin/eisen/pkg/model"
	"github.com/harrisonrobin/eisen/pkg/normalize"
	"github.com/harrisonrobin/eisen/pkg/source"
)

func TestNoteValues(t *testing.T) {
	notes := "Call before noon\nImportance: High\nurgency:low\nImportance: Low\nsee: https://example.com"

	values := NoteValues(notes)
	assert.Equal(t, "High", values["importance"])
	assert.Equal(t, "low", values["urgency"])
	assert.NotContains(t, values, "call before noon")
}

func TestSetNoteValues(t *testing.T) {
	t.Run("Should replace existing lines and keep the rest", func(t *testing.T) {
		got := SetNoteValues("Bring ID\nimportance: low", map[string]string{"importance": "High", "urgency": "Medium"})
		assert.Equal(t, "Bring ID\nImportance: High\nUrgency: Medium", got)
	})

	t.Run("Should write into empty notes", func(t *testing.T) {
		got := SetNoteValues("", map[string]string{"energy": "Low", "importance": "High"})
		assert.Equal(t, "Importance: High\nEnergy: Low", got)
	})
}

func TestRecord(t *testing.T) {
	list := &tasks.TaskList{Id: "L1", Title: "Health"}
	task := &tasks.Task{Id: "T1", Title: "Book dentist", Due: "2024-05-01T00:00:00.000Z", Notes: "Urgency: urgent"}

	rec := Record(list, task)
	assert.Equal(t, "L1/T1", rec.ID)

	n := normalize.NewNormalizer(Schema(), normalize.DefaultAreaSchema())
	got, err := n.Normalize(rec)
	require.NoError(t, err)
	assert.Equal(t, "Book dentist", got.Name)
	assert.Equal(t, "2024-05-01T00:00:00.000Z", got.Due)
	assert.Equal(t, model.LevelHigh, got.Urgency)
	assert.Equal(t, model.OriginExplicit, got.Flags.Urgency)
	assert.Equal(t, model.LevelUnset, got.Importance)
	assert.Equal(t, "Health", got.AreaRef())
}

type fakeTasks struct {
	patched map[string]any
}

func (f *fakeTasks) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	path := r.URL.Path
	switch {
	case strings.HasSuffix(path, "/users/@me/lists"):
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{
			map[string]any{"id": "L1", "title": "Health"},
			map[string]any{"id": "L2", "title": "Shopping"},
		}})
	case strings.HasSuffix(path, "/lists/L1/tasks"):
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{
			map[string]any{"id": "T1", "title": "Book dentist", "status": "needsAction"},
			map[string]any{"id": "T2", "title": "Old", "status": "completed"},
		}})
	case strings.HasSuffix(path, "/lists/L1/tasks/T1") && r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "T1", "title": "Book dentist", "notes": "Bring card"})
	case strings.HasSuffix(path, "/lists/L1/tasks/T1") && r.Method == http.MethodPatch:
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &f.patched)
		_, _ = w.Write(raw)
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, fake http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := tasks.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)
	return NewClient(svc, []string{"health"}, map[string]string{"Health": "Physiological"}, normalize.DefaultAreaSchema())
}

func TestClient_FetchTasks(t *testing.T) {
	c := newTestClient(t, &fakeTasks{})

	recs, err := c.FetchTasks(context.Background(), source.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "L1/T1", recs[0].ID)
}

func TestClient_FetchAreas(t *testing.T) {
	c := newTestClient(t, &fakeTasks{})

	recs, err := c.FetchAreas(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Health", recs[0].ID)
}

func TestClient_UpdateTask(t *testing.T) {
	t.Run("Should patch the notes", func(t *testing.T) {
		fake := &fakeTasks{}
		c := newTestClient(t, fake)
		high := model.LevelHigh

		require.NoError(t, c.UpdateTask(context.Background(), "L1/T1", source.Update{Importance: &high}))
		assert.Equal(t, "Bring card\nImportance: High", fake.patched["notes"])
	})

	t.Run("Should reject ids without a list", func(t *testing.T) {
		c := newTestClient(t, &fakeTasks{})
		high := model.LevelHigh

		err := c.UpdateTask(context.Background(), "T1", source.Update{Importance: &high})
		assert.ErrorIs(t, err, source.ErrUpdateFailed)
	})

	t.Run("Should report API failures", func(t *testing.T) {
		c := newTestClient(t, &fakeTasks{})
		low := model.LevelLow

		err := c.UpdateTask(context.Background(), "L9/T9", source.Update{Urgency: &low})
		assert.ErrorIs(t, err, source.ErrUpdateFailed)
	})
}
