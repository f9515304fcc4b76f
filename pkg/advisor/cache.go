package advisor

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/harrisonrobin/eisen/pkg/logger"
	"github.com/harrisonrobin/eisen/pkg/model"
)

// Cache stores suggestions by task name on disk.
type Cache struct {
	Entries map[string]Suggestion `json:"entries"`
	Path    string                `json:"-"`
	mu      sync.RWMutex
	dirty   bool
}

// NewCache opens the cache at path, loading it when the file exists.
func NewCache(path string) (*Cache, error) {
	c := &Cache{
		Entries: make(map[string]Suggestion),
		Path:    path,
	}
	if _, err := os.Stat(path); err == nil {
		if err := c.Load(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Cache) Load() error {
	f, err := os.Open(c.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := json.NewDecoder(f).Decode(&c.Entries); err != nil {
		return err
	}
	if c.Entries == nil {
		c.Entries = make(map[string]Suggestion)
	}
	return nil
}

// Save writes the cache if it changed since the last load or save.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(c.Path), 0o700); err != nil {
		return err
	}
	f, err := os.Create(c.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(c.Entries); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

func cacheKey(taskName string) string {
	return strings.ToLower(strings.Join(strings.Fields(taskName), " "))
}

func (c *Cache) Get(taskName string) (Suggestion, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.Entries[cacheKey(taskName)]
	return s, ok
}

func (c *Cache) Set(taskName string, s Suggestion) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cacheKey(taskName)
	if old, ok := c.Entries[key]; !ok || !sameSuggestion(old, s) {
		c.Entries[key] = s
		c.dirty = true
	}
}

func sameSuggestion(a, b Suggestion) bool {
	return deref(a.Importance) == deref(b.Importance) &&
		deref(a.Urgency) == deref(b.Urgency) &&
		deref(a.Energy) == deref(b.Energy)
}

func deref(l *model.Level) model.Level {
	if l == nil {
		return model.LevelUnset
	}
	return *l
}

// CachedAdvisor answers from the cache and asks the wrapped advisor only for
// task names it has not seen. Only usable suggestions are cached.
type CachedAdvisor struct {
	Advisor Advisor
	Cache   *Cache
}

func NewCachedAdvisor(a Advisor, c *Cache) *CachedAdvisor {
	return &CachedAdvisor{Advisor: a, Cache: c}
}

func (a *CachedAdvisor) Analyze(ctx context.Context, taskName string) (Suggestion, error) {
	if s, ok := a.Cache.Get(taskName); ok {
		logger.FromContext(ctx).Debug("Advisory cache hit", "task", taskName)
		return s, nil
	}
	s, err := a.Advisor.Analyze(ctx, taskName)
	if err != nil {
		return Suggestion{}, err
	}
	if !s.Empty() {
		a.Cache.Set(taskName, s)
	}
	return s, nil
}

// Cached reports whether a suggestion for taskName is already stored, so the
// caller can skip throttling.
func (a *CachedAdvisor) Cached(taskName string) bool {
	_, ok := a.Cache.Get(taskName)
	return ok
}
