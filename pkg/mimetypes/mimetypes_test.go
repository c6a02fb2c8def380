package mimetypes

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		ext  string
		want string
		ok   bool
	}{
		{"html", "text/html", true},
		{"css", "text/css", true},
		{"js", "application/javascript", true},
		{"png", "image/png", true},
		{"woff2", "font/woff2", true},
		{"tmpl", "text/html", true},
		{"HTML", "", false}, // case-sensitive
		{".html", "", false},
		{"unknownext", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := Lookup(tt.ext)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Lookup(%q) = (%q, %v), want (%q, %v)", tt.ext, got, ok, tt.want, tt.ok)
		}
	}
}

func TestForTemplate(t *testing.T) {
	tests := map[string]string{
		"index.tmpl":           "text/html",
		"blog/post.tmpl":       "text/html",
		"feed.xml.tmpl":        "application/xml",
		"data/api.json.tmpl":   "application/json",
		"style.css.tmpl":       "text/css",
		"weird.nothing.tmpl":   "text/html",
		"dir.with.dots/a.tmpl": "text/html",
	}
	for name, want := range tests {
		if got := ForTemplate(name); got != want {
			t.Errorf("ForTemplate(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestWithCharset(t *testing.T) {
	tests := []struct {
		in, charset, want string
	}{
		{"text/html", "utf-8", "text/html; charset=utf-8"},
		{"application/json", "utf-8", "application/json; charset=utf-8"},
		{"image/svg+xml", "utf-8", "image/svg+xml; charset=utf-8"},
		{"image/png", "utf-8", "image/png"},
		{"text/html", "", "text/html"},
		{"text/html; charset=latin1", "utf-8", "text/html; charset=latin1"},
	}
	for _, tt := range tests {
		if got := WithCharset(tt.in, tt.charset); got != tt.want {
			t.Errorf("WithCharset(%q, %q) = %q, want %q", tt.in, tt.charset, got, tt.want)
		}
	}
}
