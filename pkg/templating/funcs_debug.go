package templating

import (
	"encoding/json"
	"fmt"
	"html"
	"html/template"
)

// dumpString pretty-prints v as JSON inside a <pre> block. Values JSON can't
// encode fall back to Go syntax.
func dumpString(v any) string {
	var text string
	if b, err := json.MarshalIndent(v, "", "  "); err == nil {
		text = string(b)
	} else {
		text = fmt.Sprintf("%#v", v)
	}
	return `<pre class="tmplexpress-dump">` + html.EscapeString(text) + "</pre>"
}

// dumpFunc returns the dump helper for the given options. Outside debug mode
// it renders nothing.
func dumpFunc(debug, autoescape bool) any {
	switch {
	case !debug && autoescape:
		return func(any) template.HTML { return "" }
	case !debug:
		return func(any) string { return "" }
	case autoescape:
		return func(v any) template.HTML { return template.HTML(dumpString(v)) }
	default:
		return dumpString
	}
}
