// Package autotile selects tiles for a cell from the occupancy of its eight
// neighbours and applies the result to grid layers through brushes.
package autotile

import (
	"fmt"
	"math/bits"
	"slices"
	"strings"
)

// Dir is one neighbour bit. The bit order is fixed; shipped rule tables
// depend on it.
type Dir uint8

const (
	NW Dir = 1 << iota
	N
	NE
	E
	SE
	S
	SW
	W
)

// AllDirs is every neighbour mask bit set.
const AllDirs uint8 = 0xff

// Directions lists the neighbours clockwise from the top-left, in bit order.
var Directions = [8]Dir{NW, N, NE, E, SE, S, SW, W}

var dirNames = map[Dir]string{
	NW: "NW", N: "N", NE: "NE", E: "E", SE: "SE", S: "S", SW: "SW", W: "W",
}

var dirOffsets = map[Dir][2]int{
	NW: {-1, -1}, N: {0, -1}, NE: {1, -1}, E: {1, 0},
	SE: {1, 1}, S: {0, 1}, SW: {-1, 1}, W: {-1, 0},
}

func (d Dir) String() string {
	if s, ok := dirNames[d]; ok {
		return s
	}
	return fmt.Sprintf("Dir(%d)", uint8(d))
}

// Offset returns the cell delta of the neighbour. North is y-1.
func (d Dir) Offset() (dx, dy int) {
	o := dirOffsets[d]
	return o[0], o[1]
}

// ParseDir parses a compass name such as "NE". Case is ignored.
func ParseDir(s string) (Dir, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for d, name := range dirNames {
		if name == up {
			return d, nil
		}
	}
	return 0, fmt.Errorf("autotile: direction %q: %w", s, ErrUnknownDirection)
}

// ParseMask ORs the named directions together.
func ParseMask(names []string) (uint8, error) {
	var m uint8
	for _, n := range names {
		d, err := ParseDir(n)
		if err != nil {
			return 0, err
		}
		m |= uint8(d)
	}
	return m, nil
}

// MaskNames lists the directions set in m in bit order.
func MaskNames(m uint8) []string {
	var out []string
	for _, d := range Directions {
		if m&uint8(d) != 0 {
			out = append(out, d.String())
		}
	}
	return out
}

// Match scores how well current satisfies required. A missing required
// neighbour scores 0; otherwise every agreeing bit, set or unset, counts one.
func Match(required, current uint8) int {
	if required&^current != 0 {
		return 0
	}
	return 8 - bits.OnesCount8(required^current)
}

// Rule maps a required neighbour mask to a template slot.
type Rule struct {
	Required uint8
	Tile     int
}

func (r Rule) String() string {
	return fmt.Sprintf("%d<-[%s]", r.Tile, strings.Join(MaskNames(r.Required), ","))
}

// RuleTable is an ordered rule list with a fallback slot. It is immutable.
type RuleTable struct {
	rules []Rule
	def   int
}

// NewRuleTable returns a table that tries rules in order and falls back to def.
func NewRuleTable(def int, rules ...Rule) *RuleTable {
	return &RuleTable{rules: slices.Clone(rules), def: def}
}

// Rules returns the rules in registration order.
func (t *RuleTable) Rules() []Rule { return slices.Clone(t.rules) }

// Default returns the fallback slot.
func (t *RuleTable) Default() int { return t.def }

// SelectTile returns the slot of the highest scoring rule for current. The
// earliest rule wins ties; the default is used when every rule scores 0.
func (t *RuleTable) SelectTile(current uint8) int {
	best, bestScore := t.def, 0
	for _, r := range t.rules {
		if s := Match(r.Required, current); s > bestScore {
			best, bestScore = r.Tile, s
		}
	}
	return best
}

// Validate checks that the default and every rule name a slot below slots.
func (t *RuleTable) Validate(slots int) error {
	if t.def < 0 || t.def >= slots {
		return fmt.Errorf("autotile: default slot %d of %d: %w", t.def, slots, ErrOutOfRange)
	}
	for i, r := range t.rules {
		if r.Tile < 0 || r.Tile >= slots {
			return fmt.Errorf("autotile: rule %d slot %d of %d: %w", i, r.Tile, slots, ErrOutOfRange)
		}
	}
	return nil
}
