// Package preview is the HTTP side of the preview server: it turns a request
// into a static file, a rendered template or a diagnostic page.
package preview

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/CTAG07/tmplexpress/pkg/mimetypes"
	"github.com/CTAG07/tmplexpress/pkg/resolve"
	"github.com/CTAG07/tmplexpress/pkg/siteconfig"
	"github.com/CTAG07/tmplexpress/pkg/templating"
)

// maxFormMemory is how much of a multipart body is kept in memory; the rest
// spills to temporary files.
const maxFormMemory = 32 << 20

// Handler serves one document root. The site config is read again for every
// request, so edits to it apply without a restart.
type Handler struct {
	logger    *slog.Logger
	resolver  *resolve.Resolver
	templates *templating.Manager
}

// NewHandler returns a Handler for the root of resolver. Templates are
// rendered by templates, which should be rooted at the same directory.
func NewHandler(logger *slog.Logger, resolver *resolve.Resolver, templates *templating.Manager) *Handler {
	return &Handler{logger: logger, resolver: resolver, templates: templates}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("request_id", RequestID(r.Context()))

	cfg, err := siteconfig.Load(h.resolver.Root)
	if err != nil {
		var ce *siteconfig.ConfigError
		if errors.As(err, &ce) {
			logger.Warn("Site config is invalid", "file", ce.File, "error", ce.Title, "line", ce.Line, "column", ce.Column)
			h.writeDiagnostic(w, r, configDiagnostic(ce))
			return
		}
		logger.Error("Failed to load site config", "error", err)
		h.writeDiagnostic(w, r, internalDiagnostic(err))
		return
	}

	res := h.resolver.Resolve(r.URL.Path)
	logger.Debug("Resolved request", "path", r.URL.Path, "kind", res.Kind().String(), "base", res.Base)

	switch res.Kind() {
	case resolve.Static:
		h.serveStatic(w, r, logger, res)
	case resolve.Template:
		h.serveTemplate(w, r, logger, cfg, res)
	case resolve.NotFound:
		h.writeDiagnostic(w, r, notFoundDiagnostic(res, h.resolver.Root))
	}
}

func (h *Handler) serveStatic(w http.ResponseWriter, r *http.Request, logger *slog.Logger, res resolve.Result) {
	f, err := os.Open(filepath.Join(h.resolver.Root, filepath.FromSlash(res.File)))
	if err != nil {
		// The file vanished between resolving and opening it.
		logger.Warn("Failed to open static file", "file", res.File, "error", err)
		h.writeDiagnostic(w, r, notFoundDiagnostic(res, h.resolver.Root))
		return
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	info, err := f.Stat()
	if err != nil {
		logger.Error("Failed to stat static file", "file", res.File, "error", err)
		h.writeDiagnostic(w, r, internalDiagnostic(err))
		return
	}

	if res.Type != "" {
		w.Header().Set("Content-Type", res.Type)
	} else {
		// A present but empty entry stops net/http from sniffing a type.
		w.Header()["Content-Type"] = nil
	}
	http.ServeContent(w, r, res.File, info.ModTime(), f)
}

func (h *Handler) serveTemplate(w http.ResponseWriter, r *http.Request, logger *slog.Logger, cfg *siteconfig.Config, res resolve.Result) {
	if r.Method == http.MethodPost {
		if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			logger.Warn("Failed to parse request form", "error", err)
		}
	}

	var buf bytes.Buffer
	err := h.templates.Renderer(cfg).Render(&buf, res.Template, templating.NewRequestData(r, res.Base))
	if err != nil {
		var re *templating.RenderError
		if errors.As(err, &re) {
			logger.Warn("Template failed to render", "template", re.File, "line", re.Line, "error", re.Message)
			h.writeDiagnostic(w, r, renderDiagnostic(re, h.resolver.Root))
			return
		}
		logger.Error("Failed to render template", "template", res.Template, "error", err)
		h.writeDiagnostic(w, r, internalDiagnostic(err))
		return
	}

	if res.Type != "" {
		w.Header().Set("Content-Type", mimetypes.WithCharset(res.Type, cfg.Options.Charset))
	}
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = buf.WriteTo(w)
	}
}
