package tileforge

import (
	"fmt"
	"os"

	"github.com/milk9111/tileforge/autotile"
	"github.com/milk9111/tileforge/tilepool"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by tileforge tools.
type Config struct {
	TileWidth  int `yaml:"tile_width"`
	TileHeight int `yaml:"tile_height"`

	Import ImportConfig `yaml:"import"`

	// ClassesDir holds class files and scripts that override or extend the
	// embedded autotile classes. Empty means embedded classes only.
	ClassesDir   string `yaml:"classes_dir"`
	DefaultClass string `yaml:"default_class"`
	// Watch reloads classes from ClassesDir when files change.
	Watch bool `yaml:"watch"`
}

// ImportConfig describes how tileset images are sliced.
type ImportConfig struct {
	SpacingX int    `yaml:"spacing_x"`
	SpacingY int    `yaml:"spacing_y"`
	MarginX  int    `yaml:"margin_x"`
	MarginY  int    `yaml:"margin_y"`
	Policy   string `yaml:"policy"`
}

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "tileforge: invalid config." + e.Field + ": " + e.Reason
}

// DefaultConfig returns 16x16 tiles, set-unique imports and the extended
// autotile class.
func DefaultConfig() Config {
	return Config{
		TileWidth:    16,
		TileHeight:   16,
		Import:       ImportConfig{Policy: tilepool.SetUnique.String()},
		DefaultClass: "extended",
	}
}

// LoadConfig reads a YAML file over DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("tileforge: load %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("tileforge: unmarshal %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field ranges and names.
func (c Config) Validate() error {
	if c.TileWidth <= 0 {
		return &ConfigError{Field: "TileWidth", Reason: "must be positive"}
	}
	if c.TileHeight <= 0 {
		return &ConfigError{Field: "TileHeight", Reason: "must be positive"}
	}
	if c.Import.SpacingX < 0 || c.Import.SpacingY < 0 {
		return &ConfigError{Field: "Import.Spacing", Reason: "must not be negative"}
	}
	if c.Import.MarginX < 0 || c.Import.MarginY < 0 {
		return &ConfigError{Field: "Import.Margin", Reason: "must not be negative"}
	}
	if _, err := tilepool.ParseImportPolicy(c.Import.Policy); err != nil {
		return &ConfigError{Field: "Import.Policy", Reason: fmt.Sprintf("unknown policy %q", c.Import.Policy)}
	}
	if c.DefaultClass == "" {
		return &ConfigError{Field: "DefaultClass", Reason: "must not be empty"}
	}
	if c.Watch && c.ClassesDir == "" {
		return &ConfigError{Field: "Watch", Reason: "requires ClassesDir"}
	}
	return nil
}

// ImportOptions converts the import settings for the configured tile size.
func (c Config) ImportOptions() (tilepool.ImportOptions, error) {
	policy, err := tilepool.ParseImportPolicy(c.Import.Policy)
	if err != nil {
		return tilepool.ImportOptions{}, err
	}
	return tilepool.ImportOptions{
		TileWidth:  c.TileWidth,
		TileHeight: c.TileHeight,
		SpacingX:   c.Import.SpacingX,
		SpacingY:   c.Import.SpacingY,
		MarginX:    c.Import.MarginX,
		MarginY:    c.Import.MarginY,
		Policy:     policy,
	}, nil
}

// Classes returns a registry of the embedded classes overlaid with
// ClassesDir, if set.
func (c Config) Classes() (*autotile.Registry, error) {
	r := autotile.NewRegistry()
	if c.ClassesDir == "" {
		return r, nil
	}
	if err := r.LoadDir(c.ClassesDir); err != nil {
		return r, err
	}
	return r, nil
}
