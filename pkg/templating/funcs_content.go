package templating

import (
	"html/template"
	"regexp"
	"strings"

	"rsc.io/markdown"
)

// defaultLoremCommand is used when lorem is called without arguments.
const defaultLoremCommand = "1 word"

// loremFunc runs a filler text command such as "5 words" or "[2p]". Only the
// first argument is used. Malformed commands render as an empty string.
func (m *Manager) loremFunc(args ...string) any {
	cmd := defaultLoremCommand
	if len(args) > 0 {
		cmd = args[0]
	}
	return m.lorem.Command(cmd)
}

func newMarkdownParser() *markdown.Parser {
	return &markdown.Parser{
		Strikethrough: true,
		TaskListItems: true,
		AutoLinkText:  true,
		Table:         true,
	}
}

var inlineWrapper = regexp.MustCompile(`(?s)^<(p|h[1-6])(?:\s[^>]*)?>(.*)</(?:p|h[1-6])>\n?$`)

// renderMarkdown converts text to HTML. In inline mode top-level paragraphs
// and headings lose their wrapping element, so the result can sit inside an
// existing element. Other blocks (lists, tables, code) keep their markup.
func renderMarkdown(text string, inline bool) string {
	doc := newMarkdownParser().Parse(text)
	if !inline {
		return markdown.ToHTML(doc)
	}

	parts := make([]string, 0, len(doc.Blocks))
	for _, block := range doc.Blocks {
		out := markdown.ToHTML(block)
		switch block.(type) {
		case *markdown.Paragraph, *markdown.Heading:
			if m := inlineWrapper.FindStringSubmatch(out); m != nil {
				out = m[2]
			}
		}
		parts = append(parts, strings.TrimSuffix(out, "\n"))
	}
	return strings.Join(parts, " ")
}

// inlineArg reads the optional inline flag of the markdown helper.
func inlineArg(flags []bool) bool {
	return len(flags) > 0 && flags[0]
}

// markdownHTML is the markdown helper for autoescaped templates. The result
// is trusted HTML and is not escaped again.
func markdownHTML(text string, inline ...bool) template.HTML {
	return template.HTML(renderMarkdown(text, inlineArg(inline)))
}

// markdownText is the markdown helper for templates without autoescaping.
func markdownText(text string, inline ...bool) string {
	return renderMarkdown(text, inlineArg(inline))
}
