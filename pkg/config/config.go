package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/harrisonrobin/eisen/pkg/normalize"
)

const (
	xdgAppName = "eisen"
	configFile = "config.json"
	adviceFile = "advice.json"

	// DirEnv overrides the configuration directory.
	DirEnv = "EISEN_CONFIG_DIR"

	DefaultModel = "gpt-4o-mini"
)

// Config is the persisted configuration, overlaid by the environment.
type Config struct {
	Source string `json:"source" validate:"required,oneof=notion taskwarrior orgmode gtasks"`

	NotionAPIKey          string               `json:"notion_api_key,omitempty" validate:"required_if=Source notion"`
	NotionDatabaseID      string               `json:"notion_database_id,omitempty" validate:"required_if=Source notion"`
	NotionAreasDatabaseID string               `json:"notion_areas_database_id,omitempty"`
	StatusProperty        string               `json:"status_property"`
	StatusType            string               `json:"status_type" validate:"omitempty,oneof=status select"`
	ExcludeStatuses       []string             `json:"exclude_statuses"`
	Schema                normalize.Schema     `json:"schema"`
	AreaSchema            normalize.AreaSchema `json:"area_schema"`
	EnergyProperty        string               `json:"energy_property,omitempty"`

	// Areas maps area names (Taskwarrior projects, Org tags, Google task
	// lists) to need levels for sources without an areas database.
	Areas map[string]string `json:"areas,omitempty"`

	OrgFiles []string `json:"org_files,omitempty" validate:"required_if=Source orgmode,dive,required"`
	OrgTag   string   `json:"org_tag,omitempty"`

	// TaskLists restricts the Google Tasks source to the named lists.
	TaskLists []string `json:"task_lists,omitempty"`

	OpenAIAPIKey string `json:"openai_api_key,omitempty"`
	Model        string `json:"model"`
	AdviceCache  string `json:"advice_cache,omitempty"`

	ThrottleMinMS int `json:"throttle_min_ms" validate:"gte=0"`
	ThrottleMaxMS int `json:"throttle_max_ms" validate:"gtefield=ThrottleMinMS"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Source:          "notion",
		StatusProperty:  "Status",
		StatusType:      normalize.TypeStatus,
		ExcludeStatuses: []string{"Completed", "Archived"},
		Schema:          normalize.DefaultSchema(),
		AreaSchema:      normalize.DefaultAreaSchema(),
		Model:           DefaultModel,
		ThrottleMinMS:   800,
		ThrottleMaxMS:   1200,
	}
}

// Dir returns the configuration directory, ~/.config/eisen unless DirEnv is set.
func Dir() (string, error) {
	if dir := os.Getenv(DirEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the configuration file, then loads .env files from the working
// and configuration directories and overlays the environment.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := loadDotEnv(filepath.Dir(path)); err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	if cfg.AdviceCache == "" {
		cfg.AdviceCache = filepath.Join(filepath.Dir(path), adviceFile)
	}
	return cfg, nil
}

// LoadFile reads path over the defaults. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return cfg, nil
}

// loadDotEnv loads .env from the working directory and from dir. Variables
// already set in the environment win.
func loadDotEnv(dir string) error {
	for _, path := range []string{".env", filepath.Join(dir, ".env")} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv overlays non-empty variables returned by getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.NotionAPIKey, "NOTION_API_KEY")
	set(&c.NotionDatabaseID, "NOTION_DATABASE_ID")
	set(&c.NotionAreasDatabaseID, "NOTION_AREAS_DATABASE_ID")
	set(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	set(&c.Source, "EISEN_SOURCE")
	set(&c.Model, "EISEN_MODEL")
}

// Validate checks that the selected source has what it needs.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Throttle returns the pause bounds between per-task external calls.
func (c *Config) Throttle() (lo, hi time.Duration) {
	return time.Duration(c.ThrottleMinMS) * time.Millisecond, time.Duration(c.ThrottleMaxMS) * time.Millisecond
}

// Save writes cfg to the configuration file.
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}
