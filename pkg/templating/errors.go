package templating

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// excerptRadius is the number of lines shown on each side of a failing line.
const excerptRadius = 3

// SourceLine is one line of a template excerpt.
type SourceLine struct {
	Number  int
	Text    string
	Current bool
}

// RenderError describes a template that failed to parse or execute.
type RenderError struct {
	// Message is the engine's description with the location prefix removed.
	Message string
	// File is the template name, a slash path relative to the document root.
	File string
	// Line is 1-based, or 0 when the engine reported no position.
	Line   int
	Source []SourceLine
	Err    error
}

func (e *RenderError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("render %s:%d: %s", e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("render %s: %s", e.File, e.Message)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Both engines prefix errors with "template: name:line:" or
// "html/template:name:line:col:".
var locationPattern = regexp.MustCompile(`(?s)^(?:html/)?template: ?([^:\s]+):(\d+):(?:\d+:)?\s*(.*)$`)

// newRenderError builds a RenderError for err. fallback names the template
// that was being rendered, used when err carries no location. sources maps
// template names to their text for the excerpt.
func newRenderError(err error, fallback string, sources map[string]string) *RenderError {
	re := &RenderError{Message: err.Error(), File: fallback, Err: err}
	if m := locationPattern.FindStringSubmatch(err.Error()); m != nil {
		re.File = m[1]
		re.Line, _ = strconv.Atoi(m[2])
		re.Message = m[3]
	}
	if src, ok := sources[re.File]; ok && re.Line > 0 {
		re.Source = excerpt(src, re.Line)
	}
	return re
}

func excerpt(src string, line int) []SourceLine {
	lines := strings.Split(src, "\n")
	if line > len(lines) {
		return nil
	}
	start := max(line-excerptRadius, 1)
	end := min(line+excerptRadius, len(lines))
	out := make([]SourceLine, 0, end-start+1)
	for n := start; n <= end; n++ {
		out = append(out, SourceLine{
			Number:  n,
			Text:    strings.TrimRight(lines[n-1], "\r"),
			Current: n == line,
		})
	}
	return out
}
