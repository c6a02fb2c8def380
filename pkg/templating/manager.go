package templating

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/CTAG07/tmplexpress/pkg/lorem"
	"github.com/CTAG07/tmplexpress/pkg/siteconfig"
)

// Manager owns the template files of one document root. It builds template
// sets on demand and, when the site config enables caching, keeps the last
// set around until a template file changes.
// All methods are concurrent-safe.
type Manager struct {
	logger *slog.Logger
	root   string
	lorem  *lorem.Generator

	mu     sync.Mutex
	cached *templateSet
}

// NewManager returns a Manager for the templates under root. gen supplies the
// lorem helper; nil selects the built-in latin generator.
func NewManager(logger *slog.Logger, root string, gen *lorem.Generator) *Manager {
	if gen == nil {
		gen = lorem.New(nil)
	}
	return &Manager{logger: logger, root: root, lorem: gen}
}

// Root returns the directory templates are loaded from.
func (m *Manager) Root() string {
	return m.root
}

// Renderer binds the manager to one site configuration. Configs are loaded
// per request, so renderers are cheap and short-lived.
func (m *Manager) Renderer(cfg *siteconfig.Config) *Renderer {
	if cfg == nil {
		cfg = siteconfig.Default()
	}
	return &Renderer{m: m, logger: m.logger, opts: cfg.Options, globals: cfg.Globals}
}

// load returns a template set containing want, reusing the cached one when
// caching is on and nothing changed on disk. A cached set is validated by
// stat-ing its files and directories; the root is only walked again when
// that check fails or want is not part of the set.
func (m *Manager) load(opts siteconfig.Options, want string) (*templateSet, error) {
	var cached *templateSet
	if opts.Cache.Enabled {
		m.mu.Lock()
		cached = m.cached
		m.mu.Unlock()
		if cached != nil && cached.key == setKey(opts, cached.snap.files) && cached.has(want) && !cached.snap.changed() {
			m.logger.Debug("Using cached template set", "templates", len(cached.snap.files))
			return cached, nil
		}
	}

	snap, err := scan(m.root, want)
	if err != nil {
		return nil, fmt.Errorf("failed to scan templates in %s: %w", m.root, err)
	}
	key := setKey(opts, snap.files)

	if cached != nil && cached.key == key {
		// Only directories changed, for example a static file was added.
		// The parsed templates are still valid.
		refreshed := *cached
		refreshed.snap = snap
		m.mu.Lock()
		m.cached = &refreshed
		m.mu.Unlock()
		m.logger.Debug("Using cached template set", "templates", len(snap.files))
		return &refreshed, nil
	}

	set, err := m.parse(opts, snap.files)
	if err != nil {
		return nil, err
	}
	set.key = key
	set.snap = snap

	m.mu.Lock()
	if opts.Cache.Enabled {
		m.cached = set
	} else {
		m.cached = nil
	}
	m.mu.Unlock()
	return set, nil
}

func (m *Manager) parse(opts siteconfig.Options, files []templateFile) (*templateSet, error) {
	start := time.Now()
	set := &templateSet{
		exec:      newExecutor(opts, m.funcMap(opts)),
		sources:   make(map[string]string, len(files)),
		parseErrs: make(map[string]error),
	}
	for _, f := range files {
		content, err := os.ReadFile(f.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", f.name, err)
		}
		set.sources[f.name] = string(content)
		if err = set.exec.parse(f.name, string(content)); err != nil {
			m.logger.Debug("Template failed to parse", "template", f.name, "error", err)
			set.parseErrs[f.name] = err
		}
	}
	m.logger.Debug("Parsed template set",
		"templates", len(files),
		"failed", len(set.parseErrs),
		"autoescape", opts.Autoescape,
		"duration", time.Since(start),
	)
	return set, nil
}

// Renderer renders templates with one configuration's options and globals.
type Renderer struct {
	m       *Manager
	logger  *slog.Logger
	opts    siteconfig.Options
	globals map[string]any
}

// Options returns the engine options this renderer uses.
func (r *Renderer) Options() siteconfig.Options {
	return r.opts
}

// Render executes the template name into a buffer and copies it to w only
// on success, so a failing template never produces a partial page.
// Template failures are returned as *RenderError.
func (r *Renderer) Render(w io.Writer, name string, req RequestData) error {
	start := time.Now()
	set, err := r.m.load(r.opts, name)
	if err != nil {
		return err
	}
	if parseErr, ok := set.parseErrs[name]; ok {
		return newRenderError(parseErr, name, set.sources)
	}
	if _, ok := set.sources[name]; !ok {
		return &RenderError{Message: fmt.Sprintf("template %q does not exist", name), File: name}
	}

	exec, err := set.page(name)
	if err != nil {
		return newRenderError(err, name, set.sources)
	}

	var buf bytes.Buffer
	if err = exec.ExecuteTemplate(&buf, name, r.data(req)); err != nil {
		return set.executionError(err, name)
	}
	if r.opts.Debug {
		r.logger.Debug("Rendered template", "template", name, "duration", time.Since(start))
	}
	_, err = buf.WriteTo(w)
	return err
}

func (s *templateSet) has(name string) bool {
	_, ok := s.sources[name]
	return ok
}

// executionError reports err against the right file. When the failure is a
// reference to a template that did not parse, the parse error is the useful
// one to show.
func (s *templateSet) executionError(err error, name string) *RenderError {
	msg := err.Error()
	for broken, parseErr := range s.parseErrs {
		if strings.Contains(msg, strconv.Quote(broken)) {
			return newRenderError(parseErr, broken, s.sources)
		}
	}
	return newRenderError(err, name, s.sources)
}
