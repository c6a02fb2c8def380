/*
Package markov stores a word-level Markov chain in a SQLite database and
generates sentences from it.

The chain is trained once from a plain-text corpus (for example the copy of a
real site) and then used by the preview server as a filler-text source, so
placeholder paragraphs read like the project's own voice instead of latin.

The package only needs a *sql.DB; the caller picks the driver. The server
uses modernc.org/sqlite by default and github.com/mattn/go-sqlite3 when built
with the cgo_sqlite tag.
*/
package markov
