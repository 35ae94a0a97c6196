package autotile

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDir_BitOrderAndOffsets(t *testing.T) {
	want := []struct {
		d      Dir
		bit    uint8
		dx, dy int
	}{
		{NW, 1 << 0, -1, -1},
		{N, 1 << 1, 0, -1},
		{NE, 1 << 2, 1, -1},
		{E, 1 << 3, 1, 0},
		{SE, 1 << 4, 1, 1},
		{S, 1 << 5, 0, 1},
		{SW, 1 << 6, -1, 1},
		{W, 1 << 7, -1, 0},
	}
	for i, w := range want {
		if Directions[i] != w.d || uint8(w.d) != w.bit {
			t.Errorf("direction %d = %v (bit %d), want %v (bit %d)", i, Directions[i], uint8(Directions[i]), w.d, w.bit)
		}
		if dx, dy := w.d.Offset(); dx != w.dx || dy != w.dy {
			t.Errorf("%v offset = (%d,%d), want (%d,%d)", w.d, dx, dy, w.dx, w.dy)
		}
	}
}

func TestParseMask(t *testing.T) {
	m, err := ParseMask([]string{"n", "E", " sw "})
	if err != nil {
		t.Fatalf("ParseMask: %v", err)
	}
	if m != uint8(N|E|SW) {
		t.Errorf("mask = %08b, want %08b", m, uint8(N|E|SW))
	}
	if diff := cmp.Diff([]string{"N", "E", "SW"}, MaskNames(m)); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if _, err := ParseMask([]string{"UP"}); !errors.Is(err, ErrUnknownDirection) {
		t.Errorf("expected ErrUnknownDirection, got %v", err)
	}
}

func TestMatch(t *testing.T) {
	cases := []struct {
		name              string
		required, current uint8
		want              int
	}{
		{"exact full", AllDirs, AllDirs, 8},
		{"exact empty", 0, 0, 8},
		{"missing required", uint8(N | E), uint8(N), 0},
		{"extra neighbours", uint8(N), uint8(N | E | S), 6},
		{"empty rule on full mask", 0, AllDirs, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Match(c.required, c.current); got != c.want {
				t.Errorf("Match(%08b, %08b) = %d, want %d", c.required, c.current, got, c.want)
			}
		})
	}
}

func TestMatch_RejectsMissingRequired(t *testing.T) {
	for req := 0; req < 256; req++ {
		for cur := 0; cur < 256; cur++ {
			score := Match(uint8(req), uint8(cur))
			if uint8(req)&^uint8(cur) != 0 && score != 0 {
				t.Fatalf("Match(%08b, %08b) = %d with a missing neighbour", req, cur, score)
			}
		}
	}
}

func TestRuleTable_SelectTile(t *testing.T) {
	table := NewRuleTable(9,
		Rule{Required: uint8(N), Tile: 1},
		Rule{Required: uint8(E), Tile: 2},
		Rule{Required: uint8(N | E), Tile: 3},
	)
	cases := []struct {
		name    string
		current uint8
		want    int
	}{
		{"single match", uint8(N), 1},
		{"best match", uint8(N | E), 3},
		{"tie keeps first", uint8(N | E | S | W), 3},
		{"extra neighbour tolerated", uint8(N | S), 1},
		{"nothing matches", uint8(S), 9},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := table.SelectTile(c.current); got != c.want {
				t.Errorf("SelectTile(%v) = %d, want %d", MaskNames(c.current), got, c.want)
			}
		})
	}

	tie := NewRuleTable(0, Rule{Required: uint8(N), Tile: 5}, Rule{Required: uint8(S), Tile: 6})
	if got := tie.SelectTile(uint8(N | S)); got != 5 {
		t.Errorf("tie resolved to %d, want first registered 5", got)
	}
}

func TestRuleTable_Validate(t *testing.T) {
	if err := NewRuleTable(0, Rule{Tile: 3}).Validate(4); err != nil {
		t.Errorf("valid table: %v", err)
	}
	if err := NewRuleTable(0, Rule{Tile: 4}).Validate(4); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("rule past end: %v", err)
	}
	if err := NewRuleTable(-1).Validate(4); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("negative default: %v", err)
	}
}

// canonical drops corners whose two adjacent edges are not both present.
func canonical(m uint8) uint8 {
	corners := []struct{ c, a, b Dir }{{NW, N, W}, {NE, N, E}, {SE, S, E}, {SW, S, W}}
	for _, k := range corners {
		if m&uint8(k.a) == 0 || m&uint8(k.b) == 0 {
			m &^= uint8(k.c)
		}
	}
	return m
}

func TestBuiltinClasses_SelectForEveryMask(t *testing.T) {
	basic, extended := Basic(), Extended()

	for m := 0; m < 256; m++ {
		mask := uint8(m)

		got := basic.Table.SelectTile(mask)
		want := 0
		for i, d := range []Dir{N, E, S, W} {
			if mask&uint8(d) != 0 {
				want |= 1 << i
			}
		}
		if got != want {
			t.Errorf("basic: mask %v selects %d, want %d", MaskNames(mask), got, want)
		}

		idx := extended.Table.SelectTile(mask)
		if idx != extended.Table.SelectTile(mask) {
			t.Fatalf("extended: selection for %v is not stable", MaskNames(mask))
		}
		var req uint8
		found := false
		for _, r := range extended.Table.Rules() {
			if r.Tile == idx {
				req, found = r.Required, true
				break
			}
		}
		if !found {
			t.Fatalf("extended: selected slot %d has no rule", idx)
		}
		if req != canonical(mask) {
			t.Errorf("extended: mask %v selects %v, want %v",
				MaskNames(mask), MaskNames(req), MaskNames(canonical(mask)))
		}
	}
}
