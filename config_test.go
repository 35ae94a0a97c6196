package tileforge

import (
	"bytes"
	"errors"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/milk9111/tileforge/tilepool"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tileforge.yaml")
	data := `tile_width: 32
tile_height: 32
import:
  spacing_x: 1
  spacing_y: 1
  margin_x: 2
  margin_y: 2
  policy: source_unique
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	want := DefaultConfig()
	want.TileWidth, want.TileHeight = 32, 32
	want.Import = ImportConfig{SpacingX: 1, SpacingY: 1, MarginX: 2, MarginY: 2, Policy: "source_unique"}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	opts, err := cfg.ImportOptions()
	if err != nil {
		t.Fatalf("ImportOptions: %v", err)
	}
	wantOpts := tilepool.ImportOptions{TileWidth: 32, TileHeight: 32, SpacingX: 1, SpacingY: 1, MarginX: 2, MarginY: 2, Policy: tilepool.SourceUnique}
	if diff := cmp.Diff(wantOpts, opts); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		field  string
		mutate func(*Config)
	}{
		{"TileWidth", func(c *Config) { c.TileWidth = 0 }},
		{"TileHeight", func(c *Config) { c.TileHeight = -4 }},
		{"Import.Spacing", func(c *Config) { c.Import.SpacingY = -1 }},
		{"Import.Margin", func(c *Config) { c.Import.MarginX = -1 }},
		{"Import.Policy", func(c *Config) { c.Import.Policy = "everything" }},
		{"DefaultClass", func(c *Config) { c.DefaultClass = "" }},
		{"Watch", func(c *Config) { c.Watch = true }},
	}
	for _, c := range cases {
		t.Run(c.field, func(t *testing.T) {
			cfg := DefaultConfig()
			c.mutate(&cfg)
			var cerr *ConfigError
			if err := cfg.Validate(); !errors.As(err, &cerr) || cerr.Field != c.field {
				t.Errorf("Validate() = %v, want ConfigError on %s", err, c.field)
			}
		})
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: %v", err)
	}
	bad := filepath.Join(dir, "bad.yaml")
	_ = os.WriteFile(bad, []byte("tile_width: [1"), 0o644)
	if _, err := LoadConfig(bad); err == nil {
		t.Error("expected parse error")
	}
	invalid := filepath.Join(dir, "invalid.yaml")
	_ = os.WriteFile(invalid, []byte("tile_width: -1\n"), 0o644)
	var cerr *ConfigError
	if _, err := LoadConfig(invalid); !errors.As(err, &cerr) {
		t.Errorf("expected ConfigError, got %v", err)
	}
}

func TestConfig_Classes(t *testing.T) {
	dir := t.TempDir()
	class := "name: single\ntemplate: {width: 1, height: 1}\n"
	if err := os.WriteFile(filepath.Join(dir, "single.yaml"), []byte(class), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.ClassesDir = dir
	r, err := cfg.Classes()
	if err != nil {
		t.Fatalf("Classes: %v", err)
	}
	if diff := cmp.Diff([]string{"basic", "extended", "single"}, r.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	p, err := tilepool.New("logged", 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.ImportMerge(image.NewRGBA(image.Rect(0, 0, 8, 4)), tilepool.ImportOptions{TileWidth: 4, TileHeight: 4}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "tiles imported") {
		t.Errorf("import not logged: %q", buf.String())
	}

	SetLogger(nil)
	buf.Reset()
	Logger().Debug("dropped")
	if buf.Len() != 0 {
		t.Errorf("nil logger still writes: %q", buf.String())
	}
}
