package lorem

import (
	"math/rand/v2"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minSentenceWords   = 4
	maxSentenceWords   = 16
	minParagraphLength = 3
	maxParagraphLength = 7
)

// Source supplies the raw material for generated text.
type Source interface {
	// Words returns n words without punctuation.
	Words(n int) []string
	// Sentence returns one capitalized sentence ending in punctuation.
	Sentence() string
}

// Generator turns commands into filler text drawn from a Source.
// It is safe for concurrent use if its Source is.
type Generator struct {
	src Source
}

// New returns a Generator reading from src, or from the built-in latin word
// list when src is nil.
func New(src Source) *Generator {
	if src == nil {
		src = Latin()
	}
	return &Generator{src: src}
}

// Command parses s and runs it. Malformed commands produce an empty string,
// never an error, so a typo in a template does not break the page.
func (g *Generator) Command(s string) any {
	cmd, ok := ParseCommand(s)
	if !ok {
		return ""
	}
	return g.Run(cmd)
}

// Run generates the text for cmd: a string, or a []string when cmd.List is set.
func (g *Generator) Run(cmd Command) any {
	switch {
	case cmd.Unit == Words && !cmd.List:
		return g.Words(cmd.Count)
	case cmd.Unit == Words && cmd.List:
		return g.WordList(cmd.Count)
	case cmd.Unit == Sentences && !cmd.List:
		return g.Sentences(cmd.Count)
	case cmd.Unit == Sentences && cmd.List:
		return g.SentenceList(cmd.Count)
	case cmd.Unit == Paragraphs && !cmd.List:
		return g.Paragraphs(cmd.Count)
	case cmd.Unit == Paragraphs && cmd.List:
		return g.ParagraphList(cmd.Count)
	default:
		return ""
	}
}

// Words returns count space-separated words.
func (g *Generator) Words(count int) string {
	return strings.Join(g.WordList(count), " ")
}

// WordList returns count words.
func (g *Generator) WordList(count int) []string {
	if count <= 0 {
		return []string{}
	}
	return g.src.Words(count)
}

// Sentences returns count sentences separated by spaces.
func (g *Generator) Sentences(count int) string {
	return strings.Join(g.SentenceList(count), " ")
}

// SentenceList returns count sentences.
func (g *Generator) SentenceList(count int) []string {
	if count <= 0 {
		return []string{}
	}
	out := make([]string, count)
	for i := range out {
		out[i] = g.src.Sentence()
	}
	return out
}

// Paragraphs returns count paragraphs separated by blank lines.
func (g *Generator) Paragraphs(count int) string {
	return strings.Join(g.ParagraphList(count), "\n\n")
}

// ParagraphList returns count paragraphs.
func (g *Generator) ParagraphList(count int) []string {
	if count <= 0 {
		return []string{}
	}
	out := make([]string, count)
	for i := range out {
		n := rand.IntN(maxParagraphLength-minParagraphLength+1) + minParagraphLength
		out[i] = g.Sentences(n)
	}
	return out
}

// buildSentence capitalizes words, sprinkles in a comma for longer sentences
// and terminates with a period.
func buildSentence(words []string) string {
	if len(words) == 0 {
		return ""
	}
	var builder strings.Builder
	comma := -1
	if len(words) > 7 && rand.IntN(2) == 0 {
		comma = rand.IntN(len(words)-4) + 2
	}
	for i, w := range words {
		if i == 0 {
			w = capitalize(w)
		} else {
			builder.WriteByte(' ')
		}
		builder.WriteString(w)
		if i == comma {
			builder.WriteByte(',')
		}
	}
	builder.WriteByte('.')
	return builder.String()
}

func capitalize(w string) string {
	if w == "" {
		return w
	}
	r, size := utf8.DecodeRuneInString(w)
	return string(unicode.ToUpper(r)) + w[size:]
}

func sentenceLength() int {
	return rand.IntN(maxSentenceWords-minSentenceWords+1) + minSentenceWords
}
