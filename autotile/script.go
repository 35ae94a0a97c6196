package autotile

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// RunClassScript builds a class from a tengo script. The script sees a
// global `dirs` map of direction bits and must define `name`, `width`,
// `height`, `primary`, `default` and `rules`; `slots` is optional. Each
// rule is a map with an int `tile` and a `required` value that is either an
// int mask or an array of direction names.
//
//	rules := []
//	for i := 0; i < 16; i++ {
//		m := 0
//		if i & 1 { m |= dirs.N }
//		...
//		rules = append(rules, {tile: i, required: m})
//	}
func RunClassScript(src []byte) (*Class, error) {
	script := tengo.NewScript(src)
	dirs := make(map[string]any, len(Directions))
	for _, d := range Directions {
		dirs[d.String()] = int(d)
	}
	if err := script.Add("dirs", dirs); err != nil {
		return nil, fmt.Errorf("autotile: script globals: %w", err)
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Run()
	if err != nil {
		return nil, fmt.Errorf("autotile: run class script: %w", err)
	}

	var missing []string
	for _, g := range []string{"name", "width", "height", "primary", "default", "rules"} {
		if !compiled.IsDefined(g) {
			missing = append(missing, g)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("autotile: class script does not define %s: %w",
			strings.Join(missing, ", "), ErrInvalidClass)
	}

	name := objectAsString(compiled.Get("name").Object())
	width := compiled.Get("width").Int()
	height := compiled.Get("height").Int()
	primary := compiled.Get("primary").Int()
	def := compiled.Get("default").Int()
	slots := 0
	if compiled.IsDefined("slots") {
		slots = compiled.Get("slots").Int()
	}

	raw, ok := objectToAny(compiled.Get("rules").Object()).([]any)
	if !ok {
		return nil, fmt.Errorf("autotile: class script %q: rules is not an array: %w", name, ErrInvalidClass)
	}
	rules := make([]Rule, 0, len(raw))
	for i, item := range raw {
		r, err := scriptRule(item)
		if err != nil {
			return nil, fmt.Errorf("autotile: class script %q rule %d: %w", name, i, err)
		}
		rules = append(rules, r)
	}
	return NewClass(name, width, height, slots, primary, NewRuleTable(def, rules...))
}

func scriptRule(item any) (Rule, error) {
	m, ok := item.(map[string]any)
	if !ok {
		return Rule{}, fmt.Errorf("rule is %T, want map: %w", item, ErrInvalidClass)
	}
	idx, ok := m["tile"].(int)
	if !ok {
		return Rule{}, fmt.Errorf("tile is %T, want int: %w", m["tile"], ErrInvalidClass)
	}
	switch req := m["required"].(type) {
	case nil:
		return Rule{Tile: idx}, nil
	case int:
		if req < 0 || req > int(AllDirs) {
			return Rule{}, fmt.Errorf("mask %d: %w", req, ErrInvalidClass)
		}
		return Rule{Required: uint8(req), Tile: idx}, nil
	case []any:
		names := make([]string, 0, len(req))
		for _, n := range req {
			s, ok := n.(string)
			if !ok {
				return Rule{}, fmt.Errorf("direction is %T, want string: %w", n, ErrInvalidClass)
			}
			names = append(names, s)
		}
		mask, err := ParseMask(names)
		if err != nil {
			return Rule{}, err
		}
		return Rule{Required: mask, Tile: idx}, nil
	default:
		return Rule{}, fmt.Errorf("required is %T: %w", req, ErrInvalidClass)
	}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.ImmutableArray:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.ImmutableMap:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}
