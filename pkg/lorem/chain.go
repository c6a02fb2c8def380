package lorem

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/CTAG07/tmplexpress/pkg/markov"
)

// ChainSource generates text from a trained markov chain. Whenever the chain
// fails or is empty it falls back to the latin word list, so rendering never
// fails because of it.
type ChainSource struct {
	gen      *markov.Generator
	fallback Source
	logger   *slog.Logger
}

// NewChainSource returns a Source backed by gen.
func NewChainSource(gen *markov.Generator, logger *slog.Logger) *ChainSource {
	return &ChainSource{gen: gen, fallback: Latin(), logger: logger}
}

// Sentence returns one generated sentence.
func (c *ChainSource) Sentence() string {
	s, err := c.gen.Sentence(context.Background(), maxSentenceWords*2)
	if err != nil || s == "" {
		c.logger.Warn("Chain sentence generation failed, using latin fallback", "error", err)
		return c.fallback.Sentence()
	}
	return s
}

// Words returns n words taken from generated sentences, without punctuation.
func (c *ChainSource) Words(n int) []string {
	if n <= 0 {
		return []string{}
	}
	words := make([]string, 0, n)
	// Every sentence contributes at least one word, so this bounds the loop
	// even for a chain of one-word sentences.
	for attempts := 0; len(words) < n && attempts < n; attempts++ {
		for i, w := range strings.Fields(c.Sentence()) {
			w = strings.TrimFunc(w, func(r rune) bool {
				return !unicode.IsLetter(r) && !unicode.IsNumber(r)
			})
			if w == "" {
				continue
			}
			if i == 0 {
				w = strings.ToLower(w)
			}
			words = append(words, w)
			if len(words) == n {
				break
			}
		}
	}
	if len(words) < n {
		words = append(words, c.fallback.Words(n-len(words))...)
	}
	return words
}
