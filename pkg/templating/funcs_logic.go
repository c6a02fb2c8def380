package templating

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/CTAG07/tmplexpress/pkg/siteconfig"
)

// funcMap assembles the helpers for one set of engine options.
func (m *Manager) funcMap(opts siteconfig.Options) map[string]any {
	funcs := map[string]any{
		// Content (funcs_content.go)
		"lorem":    m.loremFunc,
		"markdown": markdownText,

		// Debugging (funcs_debug.go)
		"dump": dumpFunc(opts.Debug, opts.Autoescape),

		// Logic and data
		"seq":     seq,
		"list":    list,
		"dict":    dict,
		"add":     add,
		"sub":     sub,
		"mod":     mod,
		"default": defaultValue,
		"upper":   strings.ToUpper,
		"lower":   strings.ToLower,
		"join":    join,
	}
	if opts.Autoescape {
		funcs["markdown"] = markdownHTML
	}
	return funcs
}

// seq returns the integers 0 to count-1, for {{range seq 3}}.
func seq(count int) []int {
	if count < 0 {
		return []int{}
	}
	s := make([]int, count)
	for i := range s {
		s[i] = i
	}
	return s
}

// list returns a slice containing all the arguments passed to it.
func list(args ...any) []any {
	return args
}

// dict builds a map from alternating keys and values, mostly for passing
// several values to an included template.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict needs an even number of arguments, got %d", len(pairs))
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key %d is a %T, not a string", i/2, pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

// add returns a + b.
func add(a, b int) int {
	return a + b
}

// sub returns a - b.
func sub(a, b int) int {
	return a - b
}

// mod returns a % b, or 0 if b is 0.
func mod(a, b int) int {
	if b == 0 {
		return 0
	}
	return a % b
}

// defaultValue returns fallback when v is its zero value:
// {{default "Untitled" .title}}.
func defaultValue(fallback, v any) any {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.IsZero() {
		return fallback
	}
	return v
}

// join concatenates the elements of a slice with sep.
func join(sep string, items any) string {
	rv := reflect.ValueOf(items)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Sprint(items)
	}
	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = fmt.Sprint(rv.Index(i).Interface())
	}
	return strings.Join(parts, sep)
}
