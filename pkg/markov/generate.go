package markov

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrEmptyChain is returned when the chain has no sentence starts to walk from.
var ErrEmptyChain = errors.New("markov chain is empty")

// ChainToken is a possible next token and how often it followed the prefix.
type ChainToken struct {
	Id   int
	Freq int
}

// Sentence walks the chain from the start-of-chain token until it reaches an
// end-of-chain token or maxLength tokens, and joins the result.
func (g *Generator) Sentence(ctx context.Context, maxLength int) (string, error) {
	if maxLength <= 0 {
		maxLength = 32
	}

	var tokens []string
	prev := SOCTokenID
	for len(tokens) < maxLength {
		candidates, total, err := g.nextTokens(ctx, prev)
		if err != nil {
			return "", err
		}
		if total == 0 {
			if prev == SOCTokenID {
				return "", ErrEmptyChain
			}
			break
		}

		next := pickWeighted(candidates, total)
		if next == EOCTokenID {
			break
		}

		var text string
		if err = g.stmtGetTokenText.QueryRowContext(ctx, next).Scan(&text); err != nil {
			return "", fmt.Errorf("could not get text for token %d: %w", next, err)
		}
		tokens = append(tokens, text)
		prev = next
	}

	return g.tokenizer.Join(tokens), nil
}

// nextTokens returns every token that followed prefixID and the sum of their
// frequencies.
func (g *Generator) nextTokens(ctx context.Context, prefixID int) ([]ChainToken, int, error) {
	rows, err := g.stmtGetChain.QueryContext(ctx, prefixID)
	if err != nil {
		return nil, 0, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var tokens []ChainToken
	total := 0
	for rows.Next() {
		var t ChainToken
		if err = rows.Scan(&t.Id, &t.Freq); err != nil {
			return nil, 0, err
		}
		tokens = append(tokens, t)
		total += t.Freq
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}
	return tokens, total, nil
}

// pickWeighted chooses a token with probability proportional to its frequency.
func pickWeighted(tokens []ChainToken, total int) int {
	r := rand.IntN(total)
	for _, t := range tokens {
		r -= t.Freq
		if r < 0 {
			return t.Id
		}
	}
	return tokens[len(tokens)-1].Id
}
