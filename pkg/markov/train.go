package markov

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// maxSentenceLength prevents run-on input without punctuation from producing
// one giant sentence.
const maxSentenceLength = 256

// Train tokenizes data and adds every sentence to the chain. Frequencies of
// links that already exist are incremented, so training the same corpus twice
// doubles its weight. The whole run is one transaction. It returns the number
// of sentences processed.
func (g *Generator) Train(ctx context.Context, data io.Reader) (int64, error) {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	// All transaction-specific statements will also be closed with this or the .Commit()
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	stmtInsertVocab := tx.StmtContext(ctx, g.stmtInsertVocab)
	stmtInsertLink := tx.StmtContext(ctx, g.stmtInsertLink)

	vocabCache := make(map[string]int)
	tokenID := func(text string) (int, error) {
		if id, ok := vocabCache[text]; ok {
			return id, nil
		}
		var id int
		if err := stmtInsertVocab.QueryRowContext(ctx, text).Scan(&id); err != nil {
			return 0, fmt.Errorf("sql insert vocabulary error for token '%s': %w", text, err)
		}
		vocabCache[text] = id
		return id, nil
	}

	var sentenceCount int64
	prev, length := SOCTokenID, 0

	endSentence := func() error {
		if length == 0 {
			return nil
		}
		if _, err := stmtInsertLink.ExecContext(ctx, prev, EOCTokenID); err != nil {
			return fmt.Errorf("failed to insert chain link (%d -> EOC): %w", prev, err)
		}
		sentenceCount++
		prev, length = SOCTokenID, 0
		return nil
	}

	stream := g.tokenizer.NewStream(data)
	for {
		tok, err := stream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, fmt.Errorf("tokenizer error: %w", err)
		}

		if tok.EOC || length >= maxSentenceLength {
			if err = endSentence(); err != nil {
				return 0, err
			}
			if tok.EOC {
				continue
			}
		}

		id, err := tokenID(tok.Text)
		if err != nil {
			return 0, err
		}
		if _, err = stmtInsertLink.ExecContext(ctx, prev, id); err != nil {
			return 0, fmt.Errorf("failed to insert chain link (%d -> %d): %w", prev, id, err)
		}
		prev = id
		length++
	}

	if err = endSentence(); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("could not commit training: %w", err)
	}

	g.logger.InfoContext(ctx, "Training completed",
		slog.Int64("sentences_processed", sentenceCount),
		slog.Int("distinct_tokens", len(vocabCache)),
	)
	return sentenceCount, nil
}
