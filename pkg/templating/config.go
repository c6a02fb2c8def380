package templating

import (
	"maps"
	"net/http"
	"slices"
)

// Names bound by the renderer itself. They shadow config globals.
const (
	GlobalGet    = "_get"
	GlobalPost   = "_post"
	GlobalCookie = "_cookie"
	GlobalBase   = "_base"
)

// RequestData is the part of an HTTP request a template may see. It is a
// snapshot: the maps are copies and are never written to after construction.
type RequestData struct {
	Query   map[string][]string
	Form    map[string][]string
	Cookies map[string][]string
	// Base is the URL prefix the document root is served under, "/" when it
	// is served directly.
	Base string
}

// NewRequestData snapshots r. The caller must have parsed the form already if
// it wants POST fields included.
func NewRequestData(r *http.Request, base string) RequestData {
	cookies := make(map[string][]string)
	for _, c := range r.Cookies() {
		cookies[c.Name] = append(cookies[c.Name], c.Value)
	}
	return RequestData{
		Query:   copyValues(r.URL.Query()),
		Form:    copyValues(r.PostForm),
		Cookies: cookies,
		Base:    base,
	}
}

func copyValues(v map[string][]string) map[string][]string {
	out := make(map[string][]string, len(v))
	for k, vals := range v {
		out[k] = slices.Clone(vals)
	}
	return out
}

// flatten exposes single-valued keys as plain strings so templates can write
// {{._get.page}} instead of {{index ._get.page 0}}.
func flatten(values map[string][]string) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		switch len(v) {
		case 0:
			out[k] = ""
		case 1:
			out[k] = v[0]
		default:
			out[k] = slices.Clone(v)
		}
	}
	return out
}

// data builds the root value handed to a template. Config globals are copied
// first and the reserved request bindings are applied last.
func (r *Renderer) data(req RequestData) map[string]any {
	data := make(map[string]any, len(r.globals)+4)
	maps.Copy(data, r.globals)

	base := req.Base
	if base == "" {
		base = "/"
	}
	reserved := map[string]any{
		GlobalGet:    flatten(req.Query),
		GlobalPost:   flatten(req.Form),
		GlobalCookie: flatten(req.Cookies),
		GlobalBase:   base,
	}
	for name, value := range reserved {
		if _, ok := data[name]; ok {
			r.logger.Debug("Config global shadowed by request binding", "name", name)
		}
		data[name] = value
	}
	return data
}
