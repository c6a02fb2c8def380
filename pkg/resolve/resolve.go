// Package resolve decides what a request path refers to inside a document
// root: a static file, a template to render, or nothing.
package resolve

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/CTAG07/tmplexpress/pkg/mimetypes"
)

const (
	templateSuffix = "." + mimetypes.TemplateExt
	indexTemplate  = "index" + templateSuffix
)

// Kind classifies a Result.
type Kind int

const (
	NotFound Kind = iota
	Static
	Template
)

func (k Kind) String() string {
	switch k {
	case Static:
		return "static"
	case Template:
		return "template"
	default:
		return "not-found"
	}
}

// Result is the outcome of resolving one request path. At most one of File
// and Template is set; neither being set means nothing was found.
type Result struct {
	// File is the slash-separated path of a static file, relative to the root.
	File string
	// Template is the slash-separated path of a template, relative to the root.
	Template string
	// Type is the content type to send, empty when unknown.
	Type string
	// Base is the deployment sub-path, always wrapped in slashes ("/" by default).
	Base string
	// Path is the request path after the sub-path was stripped.
	Path string
}

// Kind reports which of the three outcomes r holds.
func (r Result) Kind() Kind {
	switch {
	case r.File != "":
		return Static
	case r.Template != "":
		return Template
	default:
		return NotFound
	}
}

// VirtualPath is the path shown on not-found pages. Directory-style paths
// get the index template name appended.
func (r Result) VirtualPath() string {
	p := r.Path
	if p == "" {
		p = "/"
	}
	if strings.HasSuffix(p, "/") {
		p += indexTemplate
	}
	return p
}

// Resolver resolves request paths against a document root.
type Resolver struct {
	// Root is the absolute document root.
	Root string
	// ServerRoot is the directory the HTTP server is mounted on. Empty means
	// direct mode: the document root is the server root and no sub-path is
	// stripped from requests.
	ServerRoot string

	realRoot  string
	subFolder string
}

// New returns a Resolver for root. serverRoot may be empty.
func New(root, serverRoot string) (*Resolver, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve document root: %w", err)
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve document root: %w", err)
	}
	info, err := os.Stat(realRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to stat document root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("document root %s is not a directory", absRoot)
	}

	r := &Resolver{Root: absRoot, realRoot: realRoot}

	if serverRoot != "" {
		absServer, err := filepath.Abs(serverRoot)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve server root: %w", err)
		}
		r.ServerRoot = absServer
		if rel, err := filepath.Rel(absServer, absRoot); err == nil && rel != "." && !escapes(rel) {
			r.subFolder = "/" + filepath.ToSlash(rel)
		}
	}
	return r, nil
}

// SubFolder returns the URL sub-path the document root is deployed under, or
// an empty string in direct mode.
func (r *Resolver) SubFolder() string {
	return r.subFolder
}

// check is one step of the resolution order. Every check is total: it either
// matches and returns a Result, or reports false.
type check func(r *Resolver, requestPath string) (Result, bool)

// checks is the fixed resolution order. The first match wins.
var checks = []check{
	(*Resolver).staticFile,
	(*Resolver).templateFile,
	(*Resolver).indexFile,
}

// Resolve classifies requestPath. A query string, if present, is ignored.
// Existing files always win, so a request naming a template file directly,
// such as /index.tmpl, gets its unrendered source.
func (r *Resolver) Resolve(requestPath string) Result {
	requestPath, base := r.stripBase(normalize(requestPath))

	for _, c := range checks {
		if res, ok := c(r, requestPath); ok {
			res.Base = base
			res.Path = requestPath
			return res
		}
	}
	return Result{Base: base, Path: requestPath}
}

func normalize(requestPath string) string {
	if i := strings.IndexByte(requestPath, '?'); i >= 0 {
		requestPath = requestPath[:i]
	}
	if requestPath == "" {
		return "/"
	}
	if !strings.HasPrefix(requestPath, "/") {
		requestPath = "/" + requestPath
	}
	return requestPath
}

// stripBase removes the deployment sub-path from requestPath.
func (r *Resolver) stripBase(requestPath string) (string, string) {
	sub := r.subFolder
	if len(sub) <= 1 || !strings.HasPrefix(requestPath, sub) {
		return requestPath, "/"
	}
	rest := requestPath[len(sub):]
	if rest != "" && !strings.HasPrefix(rest, "/") {
		// "/proj" must not swallow the start of "/project".
		return requestPath, "/"
	}
	if rest == "" {
		rest = "/"
	}
	return rest, "/" + strings.Trim(sub, "/") + "/"
}

func (r *Resolver) staticFile(requestPath string) (Result, bool) {
	if strings.HasSuffix(requestPath, "/") {
		return Result{}, false
	}
	rel, ok := r.regularFile(requestPath)
	if !ok {
		return Result{}, false
	}
	t, _ := mimetypes.ForPath(rel)
	return Result{File: rel, Type: t}, true
}

func (r *Resolver) templateFile(requestPath string) (Result, bool) {
	if strings.HasSuffix(requestPath, "/") {
		return Result{}, false
	}
	rel, ok := r.regularFile(requestPath + templateSuffix)
	if !ok {
		return Result{}, false
	}
	return Result{Template: rel, Type: mimetypes.ForTemplate(rel)}, true
}

func (r *Resolver) indexFile(requestPath string) (Result, bool) {
	if !strings.HasSuffix(requestPath, "/") {
		return Result{}, false
	}
	rel, ok := r.regularFile(requestPath + indexTemplate)
	if !ok {
		return Result{}, false
	}
	return Result{Template: rel, Type: mimetypes.ForTemplate(rel)}, true
}

// regularFile reports whether urlPath names a regular file inside the root,
// following symlinks only as long as they stay inside it. It returns the
// slash-separated path relative to the root.
func (r *Resolver) regularFile(urlPath string) (string, bool) {
	candidate := filepath.Join(r.Root, filepath.FromSlash(urlPath))
	rel, err := filepath.Rel(r.Root, candidate)
	if err != nil || rel == "." || escapes(rel) {
		return "", false
	}

	resolved, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return "", false
	}
	if realRel, err := filepath.Rel(r.realRoot, resolved); err != nil || escapes(realRel) {
		return "", false
	}

	info, err := os.Stat(resolved)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return path.Clean(filepath.ToSlash(rel)), true
}

func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
