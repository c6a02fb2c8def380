package preview

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CTAG07/tmplexpress/pkg/mimetypes"
	"github.com/CTAG07/tmplexpress/pkg/resolve"
	"github.com/CTAG07/tmplexpress/pkg/templating"
	"github.com/google/uuid"
)

// writeFiles creates files (slash path -> content) under dir.
func writeFiles(tb testing.TB, dir string, files map[string]string) {
	tb.Helper()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			tb.Fatalf("failed to create dir for %s: %v", name, err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			tb.Fatalf("failed to write %s: %v", name, err)
		}
	}
}

// setupTestHandler builds a Handler for root, served directly or, when
// serverRoot is set, under a sub-path.
func setupTestHandler(tb testing.TB, root, serverRoot string) http.Handler {
	tb.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver, err := resolve.New(root, serverRoot)
	if err != nil {
		tb.Fatalf("resolve.New() error = %v", err)
	}
	return LogRequests(logger, NewHandler(logger, resolver, templating.NewManager(logger, resolver.Root, nil)))
}

var siteFiles = map[string]string{
	"index.tmpl":           `<h1>Home of {{.site_name}}</h1>`,
	"about.tmpl":           `<h1>About</h1>{{template "partials/footer.tmpl" .}}`,
	"partials/footer.tmpl": `<footer>{{._base}}</footer>`,
	"style.css":            `body { margin: 0; }`,
	"data.json.tmpl":       `{"title": "{{.site_name}}"}`,
	"blog/index.tmpl":      `<h1>Blog</h1>`,
	"same.html":            `static wins`,
	"same.html.tmpl":       `template loses`,
	"blob.unknownext":      "\x00\x01binary",
	"echo.tmpl":            `{{._get.q}}|{{._post.name}}|{{._cookie.theme}}`,
	"broken.tmpl":          "<p>partial</p>\n{{.nope}}\n",
	"lorem.tmpl":           `{{lorem "5 words"}}|{{markdown "**x**" true}}`,
	"tmplexpress.json":     `{"globals": {"site_name": "Demo"}, "unknown_key": 1}`,
}

func do(tb testing.TB, h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	tb.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestHandler_Routing(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, siteFiles)
	h := setupTestHandler(t, root, "")

	cssType, _ := mimetypes.Lookup("css")
	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantType   string
		wantBody   string
	}{
		{"root index", "/", 200, "text/html; charset=utf-8", "<h1>Home of Demo</h1>"},
		{"template without extension", "/about", 200, "text/html; charset=utf-8", "<h1>About</h1><footer>/</footer>"},
		{"static file", "/style.css", 200, cssType, "body { margin: 0; }"},
		{"typed template", "/data.json", 200, "application/json; charset=utf-8", `{"title": "Demo"}`},
		{"directory index", "/blog/", 200, "text/html; charset=utf-8", "<h1>Blog</h1>"},
		{"static beats template", "/same.html", 200, "text/html", "static wins"},
		{"query ignored for routing", "/about?x=1", 200, "text/html; charset=utf-8", "<h1>About</h1><footer>/</footer>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if got := rec.Header().Get("Content-Type"); got != tt.wantType {
				t.Errorf("Content-Type = %q, want %q", got, tt.wantType)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestHandler_NotFound(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, siteFiles)
	writeFiles(t, filepath.Dir(root), map[string]string{"secret.txt": "top secret"})
	h := setupTestHandler(t, root, "")

	tests := []struct {
		path    string
		virtual string
	}{
		{"/missing", "/missing"},
		{"/blog", "/blog"},
		{"/nothing/", "/nothing/index.tmpl"},
		{"/partials/", "/partials/index.tmpl"},
		{"/../secret.txt", "/../secret.txt"},
	}
	for _, tt := range tests {
		rec := do(t, h, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", tt.path, rec.Code)
			continue
		}
		body := rec.Body.String()
		if !strings.Contains(body, tt.virtual) {
			t.Errorf("GET %s body does not name %s", tt.path, tt.virtual)
		}
		if !strings.Contains(body, root) {
			t.Errorf("GET %s body does not name the document root", tt.path)
		}
		if strings.Contains(body, "top secret") {
			t.Errorf("GET %s leaked a file outside the root", tt.path)
		}
	}
}

func TestHandler_UnknownStaticType(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, siteFiles)
	h := setupTestHandler(t, root, "")

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/blob.unknownext", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "" {
		t.Errorf("Content-Type = %q, want none for an unknown extension", ct)
	}
	if rec.Body.String() != "\x00\x01binary" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestHandler_ConfigError(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, siteFiles)
	writeFiles(t, root, map[string]string{"tmplexpress.json": "{\n  \"debug\": true,\n}\n"})
	h := setupTestHandler(t, root, "")

	// Every path fails, including static files and missing ones.
	for _, path := range []string{"/", "/style.css", "/missing", "/style.css"} {
		rec := do(t, h, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("GET %s status = %d, want 500", path, rec.Code)
			continue
		}
		body := rec.Body.String()
		if !strings.Contains(body, "Configuration error") || !strings.Contains(body, "tmplexpress.json") {
			t.Errorf("GET %s body is not a config diagnostic: %s", path, body)
		}
		if strings.Contains(body, "body { margin: 0; }") {
			t.Errorf("GET %s served the file despite the config error", path)
		}
	}

	// Fixing the file takes effect on the next request.
	writeFiles(t, root, map[string]string{"tmplexpress.json": `{"debug": true}`})
	if rec := do(t, h, httptest.NewRequest(http.MethodGet, "/style.css", nil)); rec.Code != http.StatusOK {
		t.Errorf("status after fixing config = %d, want 200", rec.Code)
	}
}

func TestHandler_RenderError(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, siteFiles)
	h := setupTestHandler(t, root, "")

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/broken", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Template error") {
		t.Errorf("body is not a template diagnostic: %s", body)
	}
	if !strings.Contains(body, filepath.Join(root, "broken.tmpl")+":2") {
		t.Errorf("body does not locate the failing line: %s", body)
	}
	if strings.HasPrefix(body, "<p>partial</p>") {
		t.Error("partial template output was sent before the diagnostic page")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestHandler_RequestGlobals(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, siteFiles)
	h := setupTestHandler(t, root, "")

	form := url.Values{"name": {"Ada"}}
	req := httptest.NewRequest(http.MethodPost, "/echo?q=search", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})

	rec := do(t, h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "search|Ada|dark" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "search|Ada|dark")
	}

	// Keys that are not sent are errors under strict variables, so only
	// check that GET renders the query binding.
	writeFiles(t, root, map[string]string{"get.tmpl": `{{._get.q}}`})
	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/get?q=x", nil))
	if rec.Body.String() != "x" {
		t.Errorf("GET body = %q, want x", rec.Body.String())
	}
}

func TestHandler_Helpers(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, siteFiles)
	h := setupTestHandler(t, root, "")

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/lorem", nil))
	words, md, ok := strings.Cut(rec.Body.String(), "|")
	if !ok {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
	if n := len(strings.Fields(words)); n != 5 {
		t.Errorf("lorem produced %d words, want 5", n)
	}
	if md != "<strong>x</strong>" {
		t.Errorf("markdown produced %q", md)
	}
}

func TestHandler_Head(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, siteFiles)
	h := setupTestHandler(t, root, "")

	for _, path := range []string{"/", "/style.css", "/missing"} {
		rec := do(t, h, httptest.NewRequest(http.MethodHead, path, nil))
		if rec.Body.Len() != 0 {
			t.Errorf("HEAD %s returned a body of %d bytes", path, rec.Body.Len())
		}
	}
}

func TestHandler_SubFolder(t *testing.T) {
	serverRoot := t.TempDir()
	root := filepath.Join(serverRoot, "proj")
	writeFiles(t, root, siteFiles)
	h := setupTestHandler(t, root, serverRoot)

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/proj/about", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "<footer>/proj/</footer>") {
		t.Errorf("_base not set from the sub-path: %q", rec.Body.String())
	}

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/proj/", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "<h1>Home of Demo</h1>" {
		t.Errorf("GET /proj/ = %d %q", rec.Code, rec.Body.String())
	}

	// Without the sub-path the request is resolved as-is.
	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/about", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<footer>/</footer>") {
		t.Errorf("GET /about = %d %q", rec.Code, rec.Body.String())
	}
}

func TestLogRequests(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	var seen string
	h := LogRequests(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/pot", nil))
	id := rec.Header().Get("X-Request-Id")
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("X-Request-Id %q is not a UUID: %v", id, err)
	}
	if seen != id {
		t.Errorf("RequestID() in handler = %q, want %q", seen, id)
	}

	line := logs.String()
	for _, want := range []string{`"request_id":"` + id + `"`, `"status":418`, `"path":"/pot"`, `"size":"15 B"`} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %s does not contain %s", line, want)
		}
	}
}
