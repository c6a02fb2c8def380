package markov

import (
	"bufio"
	"io"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token is a single word or punctuation mark. EOC marks the end of a sentence.
type Token struct {
	Text string
	EOC  bool
}

// Tokenizer splits text into words and punctuation and joins generated
// tokens back into a sentence.
type Tokenizer struct {
	splitRegex *regexp.Regexp
	eocRegex   *regexp.Regexp
	// noSpaceRegex matches tokens that attach to the previous word.
	noSpaceRegex *regexp.Regexp
}

// NewTokenizer returns the tokenizer used for training and generation.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{
		splitRegex:   regexp.MustCompile(`[\p{L}\p{N}']+|[.,!?;:]`),
		eocRegex:     regexp.MustCompile(`^[.!?]$`),
		noSpaceRegex: regexp.MustCompile(`^[,;:]$`),
	}
}

// TokenStream yields tokens from a reader one at a time.
type TokenStream struct {
	t       *Tokenizer
	scanner *bufio.Scanner
	pending []Token
}

// NewStream returns a TokenStream reading from r.
func (t *Tokenizer) NewStream(r io.Reader) *TokenStream {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	return &TokenStream{t: t, scanner: scanner}
}

// Next returns the next token, or io.EOF once the input is consumed.
func (s *TokenStream) Next() (Token, error) {
	for len(s.pending) == 0 {
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return Token{}, err
			}
			return Token{}, io.EOF
		}
		for _, text := range s.t.splitRegex.FindAllString(s.scanner.Text(), -1) {
			s.pending = append(s.pending, Token{Text: text, EOC: s.t.eocRegex.MatchString(text)})
		}
	}
	tok := s.pending[0]
	s.pending = s.pending[1:]
	return tok, nil
}

// Join builds a sentence from generated tokens: punctuation attaches to the
// previous word, the first letter is capitalized and a period is appended.
func (t *Tokenizer) Join(tokens []string) string {
	var builder strings.Builder
	for i, tok := range tokens {
		if i == 0 {
			r, size := utf8.DecodeRuneInString(tok)
			builder.WriteRune(unicode.ToUpper(r))
			builder.WriteString(tok[size:])
			continue
		}
		if !t.noSpaceRegex.MatchString(tok) {
			builder.WriteByte(' ')
		}
		builder.WriteString(tok)
	}
	out := strings.TrimRight(builder.String(), ",;:")
	if out == "" {
		return ""
	}
	return out + "."
}
