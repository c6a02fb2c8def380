package templating

import (
	htmltemplate "html/template"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/CTAG07/tmplexpress/pkg/siteconfig"
)

const templateSuffix = ".tmpl"

// executor is the common surface of html/template and text/template.
type executor interface {
	parse(name, text string) error
	clone() (executor, error)
	ExecuteTemplate(w io.Writer, name string, data any) error
}

type htmlSet struct{ *htmltemplate.Template }

func (s htmlSet) parse(name, text string) error {
	_, err := s.New(name).Parse(text)
	return err
}

func (s htmlSet) clone() (executor, error) {
	t, err := s.Clone()
	if err != nil {
		return nil, err
	}
	return htmlSet{t}, nil
}

type textSet struct{ *texttemplate.Template }

func (s textSet) parse(name, text string) error {
	_, err := s.New(name).Parse(text)
	return err
}

func (s textSet) clone() (executor, error) {
	t, err := s.Clone()
	if err != nil {
		return nil, err
	}
	return textSet{t}, nil
}

// stamp records the state of a file or directory when a set was built.
type stamp struct {
	path    string
	modTime time.Time
	size    int64
}

func (s stamp) changed() bool {
	info, err := os.Stat(s.path)
	return err != nil || !info.ModTime().Equal(s.modTime) || info.Size() != s.size
}

// templateFile is one template found under the root.
type templateFile struct {
	stamp
	name string
}

// snapshot is the result of one walk over the root. dirs holds every
// directory that was read; adding, removing or renaming an entry changes its
// modification time.
type snapshot struct {
	files []templateFile
	dirs  []stamp
}

// changed reports whether any file or directory of the snapshot differs from
// the disk. It only stats, it never reads directories.
func (s snapshot) changed() bool {
	for _, d := range s.dirs {
		if d.changed() {
			return true
		}
	}
	for _, f := range s.files {
		if f.changed() {
			return true
		}
	}
	return false
}

// templateSet is a parsed snapshot of every template under the root. exec is
// never executed itself; pages run on clones of it.
type templateSet struct {
	key     string
	snap    snapshot
	exec    executor
	sources map[string]string
	// parseErrs holds files that failed to parse. They are left out of the
	// set so one broken partial does not take down unrelated pages.
	parseErrs map[string]error
}

// page returns an executor for the template name. name is parsed again on a
// clone of the set, so its own {{define}} blocks replace same-named blocks
// defined by other pages.
func (s *templateSet) page(name string) (executor, error) {
	exec, err := s.exec.clone()
	if err != nil {
		return nil, err
	}
	if err = exec.parse(name, s.sources[name]); err != nil {
		return nil, err
	}
	return exec, nil
}

// scan lists every template under root. want is always included when it
// exists, even inside a directory the walk skipped.
func scan(root, want string) (snapshot, error) {
	// WalkDir does not descend into a root that is itself a symlink.
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	var snap snapshot
	seen := make(map[string]bool)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && p != root {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() {
			if p != root && skipDir(d.Name()) {
				return fs.SkipDir
			}
			if info, err := d.Info(); err == nil {
				snap.dirs = append(snap.dirs, stamp{path: p, modTime: info.ModTime(), size: info.Size()})
			}
			return nil
		}
		if !d.Type().IsRegular() || !strings.HasSuffix(d.Name(), templateSuffix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		name := filepath.ToSlash(rel)
		seen[name] = true
		snap.files = append(snap.files, templateFile{name: name, stamp: stamp{path: p, modTime: info.ModTime(), size: info.Size()}})
		return nil
	})
	if err != nil {
		return snapshot{}, err
	}

	if want != "" && !seen[want] {
		p := filepath.Join(root, filepath.FromSlash(path.Clean(want)))
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			snap.files = append(snap.files, templateFile{name: want, stamp: stamp{path: p, modTime: info.ModTime(), size: info.Size()}})
		}
	}
	return snap, nil
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}

// setKey identifies a parse result. Options are part of it because they
// select the engine and the helper set.
func setKey(opts siteconfig.Options, files []templateFile) string {
	var b strings.Builder
	b.WriteString(strconv.FormatBool(opts.Autoescape))
	b.WriteString(strconv.FormatBool(opts.StrictVariables))
	b.WriteString(strconv.FormatBool(opts.Debug))
	for _, f := range files {
		b.WriteByte('\n')
		b.WriteString(f.name)
		b.WriteByte('|')
		b.WriteString(strconv.FormatInt(f.modTime.UnixNano(), 10))
		b.WriteByte('|')
		b.WriteString(strconv.FormatInt(f.size, 10))
	}
	return b.String()
}

func newExecutor(opts siteconfig.Options, funcs map[string]any) executor {
	missingKey := "missingkey=default"
	if opts.StrictVariables {
		missingKey = "missingkey=error"
	}
	if opts.Autoescape {
		return htmlSet{htmltemplate.New("").Funcs(htmltemplate.FuncMap(funcs)).Option(missingKey)}
	}
	return textSet{texttemplate.New("").Funcs(texttemplate.FuncMap(funcs)).Option(missingKey)}
}
