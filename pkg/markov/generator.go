package markov

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
)

const (
	// SOCTokenID is the reserved ID for the Start-Of-Chain token.
	SOCTokenID = 0
	// EOCTokenID is the reserved ID for the End-Of-Chain token.
	EOCTokenID = 1
	// SOCTokenText is the reserved text for the Start-Of-Chain token.
	SOCTokenText = "<SOC>"
	// EOCTokenText is the reserved text for the End-Of-Chain token.
	EOCTokenText = "<EOC>"
)

// SetupSchema creates the chain tables and the reserved tokens. It is
// idempotent and safe to call on an already-initialized database.
func SetupSchema(db *sql.DB) error {

	const (
		schemaVocab = `
CREATE TABLE IF NOT EXISTS markov_vocabulary (
    token_id INTEGER PRIMARY KEY,
    token_text TEXT NOT NULL UNIQUE
);
`
		schemaChains = `
CREATE TABLE IF NOT EXISTS markov_chains (
    prefix_id INTEGER NOT NULL,
    next_token_id INTEGER NOT NULL,
    frequency INTEGER NOT NULL DEFAULT 1,
    PRIMARY KEY (prefix_id, next_token_id)
);
`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaVocab); err != nil {
		return fmt.Errorf("could not create vocabulary schema: %w", err)
	}
	if _, err = tx.Exec(schemaChains); err != nil {
		return fmt.Errorf("could not create chain schema: %w", err)
	}

	const reserve = `INSERT OR IGNORE INTO markov_vocabulary (token_id, token_text) VALUES (?, ?);`
	if _, err = tx.Exec(reserve, SOCTokenID, SOCTokenText); err != nil {
		return fmt.Errorf("could not insert special tokens: %w", err)
	}
	if _, err = tx.Exec(reserve, EOCTokenID, EOCTokenText); err != nil {
		return fmt.Errorf("could not insert special tokens: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// Generator trains and queries the chain stored in one database. Its methods
// are safe for concurrent use to the extent the underlying driver is.
type Generator struct {
	db               *sql.DB
	tokenizer        *Tokenizer
	stmtInsertVocab  *sql.Stmt
	stmtInsertLink   *sql.Stmt
	stmtGetChain     *sql.Stmt
	stmtGetTokenText *sql.Stmt
	stmtVocabLen     *sql.Stmt
	stmtChainLen     *sql.Stmt
	stmtStarters     *sql.Stmt
	logger           *slog.Logger
}

// NewGenerator prepares all statements against db, which must already have
// the schema from SetupSchema.
func NewGenerator(db *sql.DB) (*Generator, error) {
	g := &Generator{
		db:        db,
		tokenizer: NewTokenizer(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	stmts := []struct {
		dst   **sql.Stmt
		query string
	}{
		{&g.stmtInsertVocab, `INSERT INTO markov_vocabulary (token_text) VALUES (?) ON CONFLICT(token_text) DO UPDATE SET token_text=excluded.token_text RETURNING token_id;`},
		{&g.stmtInsertLink, `INSERT INTO markov_chains (prefix_id, next_token_id, frequency) VALUES (?, ?, 1) ON CONFLICT(prefix_id, next_token_id) DO UPDATE SET frequency = frequency + 1;`},
		{&g.stmtGetChain, `SELECT next_token_id, frequency FROM markov_chains WHERE prefix_id = ?;`},
		{&g.stmtGetTokenText, `SELECT token_text FROM markov_vocabulary WHERE token_id = ?;`},
		{&g.stmtVocabLen, `SELECT COUNT(*) FROM markov_vocabulary WHERE token_id > ?;`},
		{&g.stmtChainLen, `SELECT COUNT(*) FROM markov_chains;`},
		{&g.stmtStarters, `SELECT coalesce(SUM(frequency), 0) FROM markov_chains WHERE prefix_id = ?;`},
	}
	for _, s := range stmts {
		stmt, err := db.Prepare(s.query)
		if err != nil {
			g.Close()
			return nil, fmt.Errorf("failed to prepare statement: %w", err)
		}
		*s.dst = stmt
	}
	return g, nil
}

// Close releases the prepared statements. The database itself is left open.
func (g *Generator) Close() {
	for _, stmt := range []*sql.Stmt{
		g.stmtInsertVocab,
		g.stmtInsertLink,
		g.stmtGetChain,
		g.stmtGetTokenText,
		g.stmtVocabLen,
		g.stmtChainLen,
		g.stmtStarters,
	} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
}

// SetLogger sets the logger for the Generator. By default, all logs are discarded.
func (g *Generator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		g.logger = logger
	}
}

// Stats summarizes the trained chain.
type Stats struct {
	Vocabulary int
	Links      int
	Sentences  int
}

// Stats counts the vocabulary (without reserved tokens), the distinct chain
// links, and the number of trained sentences.
func (g *Generator) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	if err := g.stmtVocabLen.QueryRowContext(ctx, EOCTokenID).Scan(&s.Vocabulary); err != nil {
		return Stats{}, fmt.Errorf("failed to count vocabulary: %w", err)
	}
	if err := g.stmtChainLen.QueryRowContext(ctx).Scan(&s.Links); err != nil {
		return Stats{}, fmt.Errorf("failed to count chain links: %w", err)
	}
	if err := g.stmtStarters.QueryRowContext(ctx, SOCTokenID).Scan(&s.Sentences); err != nil {
		return Stats{}, fmt.Errorf("failed to count sentences: %w", err)
	}
	return s, nil
}
