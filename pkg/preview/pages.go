package preview

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/CTAG07/tmplexpress/pkg/resolve"
	"github.com/CTAG07/tmplexpress/pkg/siteconfig"
	"github.com/CTAG07/tmplexpress/pkg/templating"
)

//go:embed pages/*.html
var pagesFS embed.FS

var pages = template.Must(template.ParseFS(pagesFS, "pages/*.html"))

// diagnostic is the data of an error page.
type diagnostic struct {
	Status    int
	Heading   string
	Title     string
	Message   string
	Path      string
	File      string
	Line      int
	Column    int
	Root      string
	Source    []templating.SourceLine
	RequestID string
}

func configDiagnostic(ce *siteconfig.ConfigError) diagnostic {
	status := ce.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return diagnostic{
		Status:  status,
		Heading: "Configuration error",
		Title:   ce.Title,
		Message: ce.Message,
		File:    ce.File,
		Line:    ce.Line,
		Column:  ce.Column,
	}
}

func renderDiagnostic(re *templating.RenderError, root string) diagnostic {
	return diagnostic{
		Status:  http.StatusInternalServerError,
		Heading: "Template error",
		Title:   "The template could not be rendered",
		Message: re.Message,
		File:    filepath.Join(root, filepath.FromSlash(re.File)),
		Line:    re.Line,
		Source:  re.Source,
	}
}

func notFoundDiagnostic(res resolve.Result, root string) diagnostic {
	virtual := res.VirtualPath()
	return diagnostic{
		Status:  http.StatusNotFound,
		Heading: "Not Found",
		Title:   "The requested URL " + virtual + " was not found on this server",
		Path:    virtual,
		Root:    root,
	}
}

func internalDiagnostic(err error) diagnostic {
	return diagnostic{
		Status:  http.StatusInternalServerError,
		Heading: "Internal error",
		Title:   "The request could not be completed",
		Message: err.Error(),
	}
}

// writeDiagnostic renders d as a full HTML page with d.Status.
func (h *Handler) writeDiagnostic(w http.ResponseWriter, r *http.Request, d diagnostic) {
	d.RequestID = RequestID(r.Context())

	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, "error.html", d); err != nil {
		h.logger.Error("Failed to render diagnostic page", "error", err)
		http.Error(w, http.StatusText(d.Status), d.Status)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(d.Status)
	if r.Method != http.MethodHead {
		_, _ = buf.WriteTo(w)
	}
}
