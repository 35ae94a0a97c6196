package autotile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const basicScript = `
name := "scripted"
width := 4
height := 4
primary := 15
default := 0

rules := []
for i := 0; i < 16; i++ {
	m := 0
	if i & 1 != 0 { m = m | dirs.N }
	if i & 2 != 0 { m = m | dirs.E }
	if i & 4 != 0 { m = m | dirs.S }
	if i & 8 != 0 { m = m | dirs.W }
	rules = append(rules, {tile: i, required: m})
}
`

func TestRunClassScript_GeneratesBasic(t *testing.T) {
	c, err := RunClassScript([]byte(basicScript))
	if err != nil {
		t.Fatalf("RunClassScript: %v", err)
	}
	if c.Name != "scripted" || c.Slots != 16 || c.Primary != 15 {
		t.Errorf("unexpected class %+v", c)
	}
	if diff := cmp.Diff(Basic().Table.Rules(), c.Table.Rules()); diff != "" {
		t.Errorf("rules mismatch (-want +got):\n%s", diff)
	}
}

func TestRunClassScript_DirectionNames(t *testing.T) {
	src := `
text := import("text")
name := text.to_lower("CORNERS")
width := 2
height := 2
slots := 3
primary := 2
default := 0
rules := [
	{tile: 1, required: ["N", "e"]},
	{tile: 2, required: ["N", "NE", "E"]},
	{tile: 0}
]
`
	c, err := RunClassScript([]byte(src))
	if err != nil {
		t.Fatalf("RunClassScript: %v", err)
	}
	want := []Rule{
		{Required: uint8(N | E), Tile: 1},
		{Required: uint8(N | NE | E), Tile: 2},
		{Required: 0, Tile: 0},
	}
	if diff := cmp.Diff(want, c.Table.Rules()); diff != "" {
		t.Errorf("rules mismatch (-want +got):\n%s", diff)
	}
	if c.Name != "corners" || c.Slots != 3 {
		t.Errorf("unexpected class %+v", c)
	}
	if got := c.Table.SelectTile(uint8(N | NE | E | S)); got != 2 {
		t.Errorf("SelectTile = %d, want 2", got)
	}
}

func TestRunClassScript_Errors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want error
	}{
		{"missing globals", `name := "x"`, ErrInvalidClass},
		{"rules not array", "name := \"x\"\nwidth := 1\nheight := 1\nprimary := 0\ndefault := 0\nrules := 5\n", ErrInvalidClass},
		{"bad mask", "name := \"x\"\nwidth := 1\nheight := 1\nprimary := 0\ndefault := 0\nrules := [{tile: 0, required: 300}]\n", ErrInvalidClass},
		{"bad direction", "name := \"x\"\nwidth := 1\nheight := 1\nprimary := 0\ndefault := 0\nrules := [{tile: 0, required: [\"UP\"]}]\n", ErrUnknownDirection},
		{"slot out of range", "name := \"x\"\nwidth := 1\nheight := 1\nprimary := 0\ndefault := 0\nrules := [{tile: 3}]\n", ErrOutOfRange},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := RunClassScript([]byte(c.src)); !errors.Is(err, c.want) {
				t.Errorf("err = %v, want %v", err, c.want)
			}
		})
	}

	if _, err := RunClassScript([]byte("name := ")); err == nil {
		t.Error("expected compile error")
	}
}

func TestRegistry_LoadsScripts(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "scripted.tengo"), []byte(basicScript), 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewRegistry()
	if err := r.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	c, err := r.Class("scripted")
	if err != nil {
		t.Fatalf("Class: %v", err)
	}
	if c.Table.SelectTile(AllDirs) != 15 {
		t.Errorf("scripted class selects %d for a full mask", c.Table.SelectTile(AllDirs))
	}
}
