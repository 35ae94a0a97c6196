package autotile

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed classes/*.yaml
var ClassesFS embed.FS

// Class is a named rule table together with the brush template it indexes.
type Class struct {
	Name           string
	TemplateWidth  int
	TemplateHeight int
	// Slots is the number of usable template cells, at most
	// TemplateWidth*TemplateHeight.
	Slots int
	// Primary is the slot shown as the brush preview and used when the
	// selected slot is empty.
	Primary int
	Table   *RuleTable
}

// NewClass validates and returns a class. A zero slots value uses the whole
// template.
func NewClass(name string, w, h, slots, primary int, table *RuleTable) (*Class, error) {
	if slots == 0 {
		slots = w * h
	}
	c := &Class{
		Name:           name,
		TemplateWidth:  w,
		TemplateHeight: h,
		Slots:          slots,
		Primary:        primary,
		Table:          table,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the template geometry and that every index fits it.
func (c *Class) Validate() error {
	switch {
	case strings.TrimSpace(c.Name) == "":
		return fmt.Errorf("autotile: class without name: %w", ErrInvalidClass)
	case c.TemplateWidth <= 0 || c.TemplateHeight <= 0:
		return fmt.Errorf("autotile: class %q template %dx%d: %w", c.Name, c.TemplateWidth, c.TemplateHeight, ErrInvalidClass)
	case c.Slots <= 0 || c.Slots > c.TemplateWidth*c.TemplateHeight:
		return fmt.Errorf("autotile: class %q has %d slots in %dx%d template: %w",
			c.Name, c.Slots, c.TemplateWidth, c.TemplateHeight, ErrInvalidClass)
	case c.Table == nil:
		return fmt.Errorf("autotile: class %q has no rules: %w", c.Name, ErrInvalidClass)
	}
	if c.Primary < 0 || c.Primary >= c.Slots {
		return fmt.Errorf("autotile: class %q primary slot %d: %w", c.Name, c.Primary, ErrOutOfRange)
	}
	if err := c.Table.Validate(c.Slots); err != nil {
		return fmt.Errorf("autotile: class %q: %w", c.Name, err)
	}
	return nil
}

// SlotCell returns the template cell of slot i, row-major.
func (c *Class) SlotCell(i int) (x, y int) {
	return i % c.TemplateWidth, i / c.TemplateWidth
}

type classSpec struct {
	Name     string       `yaml:"name"`
	Template templateSpec `yaml:"template"`
	Slots    int          `yaml:"slots"`
	Primary  int          `yaml:"primary"`
	Default  int          `yaml:"default"`
	Rules    []ruleSpec   `yaml:"rules"`
}

type templateSpec struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type ruleSpec struct {
	Tile     int      `yaml:"tile"`
	Required []string `yaml:"required"`
}

// ParseClass decodes a YAML class definition.
func ParseClass(data []byte) (*Class, error) {
	var spec classSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("autotile: unmarshal class: %w", err)
	}
	rules := make([]Rule, 0, len(spec.Rules))
	for i, r := range spec.Rules {
		m, err := ParseMask(r.Required)
		if err != nil {
			return nil, fmt.Errorf("autotile: class %q rule %d: %w", spec.Name, i, err)
		}
		rules = append(rules, Rule{Required: m, Tile: r.Tile})
	}
	return NewClass(spec.Name, spec.Template.Width, spec.Template.Height, spec.Slots, spec.Primary,
		NewRuleTable(spec.Default, rules...))
}

// MarshalClass encodes c in the format read by ParseClass.
func MarshalClass(c *Class) ([]byte, error) {
	spec := classSpec{
		Name:     c.Name,
		Template: templateSpec{Width: c.TemplateWidth, Height: c.TemplateHeight},
		Slots:    c.Slots,
		Primary:  c.Primary,
		Default:  c.Table.Default(),
	}
	for _, r := range c.Table.Rules() {
		spec.Rules = append(spec.Rules, ruleSpec{Tile: r.Tile, Required: MaskNames(r.Required)})
	}
	return yaml.Marshal(&spec)
}

// LoadClassFile reads a class from disk. Files ending in .tengo are run as
// scripts; anything else is parsed as YAML.
func LoadClassFile(path string) (*Class, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("autotile: load %s: %w", path, err)
	}
	var c *Class
	if isScriptFile(path) {
		c, err = RunClassScript(data)
	} else {
		c, err = ParseClass(data)
	}
	if err != nil {
		return nil, fmt.Errorf("autotile: load %s: %w", path, err)
	}
	return c, nil
}

// LoadBuiltin returns a shipped class by name. When dir is not empty a file
// named <name>.yaml there takes precedence over the embedded copy.
func LoadBuiltin(name, dir string) (*Class, error) {
	file := cleanClassPath(name)
	if dir != "" {
		if data, err := os.ReadFile(filepath.Join(dir, file)); err == nil {
			return ParseClass(data)
		}
	}
	data, err := ClassesFS.ReadFile("classes/" + file)
	if err != nil {
		return nil, fmt.Errorf("autotile: builtin %q: %w", name, ErrUnknownClass)
	}
	return ParseClass(data)
}

// BuiltinNames lists the embedded class names.
func BuiltinNames() []string {
	entries, _ := ClassesFS.ReadDir("classes")
	var out []string
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	return out
}

// Basic returns the embedded 16-slot class.
func Basic() *Class { return mustBuiltin("basic") }

// Extended returns the embedded 47-slot class.
func Extended() *Class { return mustBuiltin("extended") }

func mustBuiltin(name string) *Class {
	c, err := LoadBuiltin(name, "")
	if err != nil {
		panic(err)
	}
	return c
}

func cleanClassPath(name string) string {
	s := filepath.ToSlash(name)
	if after, ok := strings.CutPrefix(s, "classes/"); ok {
		s = after
	}
	if filepath.Ext(s) == "" {
		s += ".yaml"
	}
	return s
}

func isClassFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isScriptFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".tengo"
}
