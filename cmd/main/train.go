package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var trainDB string

var trainCmd = &cobra.Command{
	Use:   "train <corpus>...",
	Short: "Train the lorem text chain from plain text files",
	Long: `Read plain text files and add their sentences to a corpus database. Serving
with --corpus-db pointing at that database makes lorem produce sentences in the
style of the corpus instead of latin. Training is cumulative; use "-" to read
from standard input.

Examples:
  tmplexpress train docs/*.txt --db corpus.db
  cat notes.md | tmplexpress train - --db corpus.db`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().StringVar(&trainDB, "db", "tmplexpress.db", "Corpus database to create or extend")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	db, gen, err := openCorpus(trainDB)
	if err != nil {
		return err
	}
	defer func() {
		gen.Close()
		_ = db.Close()
	}()

	for _, name := range args {
		var r io.Reader
		var size int64
		if name == "-" {
			r = cmd.InOrStdin()
		} else {
			f, err := os.Open(name)
			if err != nil {
				return fmt.Errorf("failed to open corpus file: %w", err)
			}
			if info, err := f.Stat(); err == nil {
				size = info.Size()
			}
			r = f
			defer func(f *os.File) {
				_ = f.Close()
			}(f)
		}

		n, err := gen.Train(ctx, r)
		if err != nil {
			return fmt.Errorf("failed to train on %s: %w", name, err)
		}
		if size > 0 {
			_, _ = fmt.Fprintf(out, "%s: %s sentences from %s\n", name, humanize.Comma(n), humanize.Bytes(uint64(size)))
		} else {
			_, _ = fmt.Fprintf(out, "%s: %s sentences\n", name, humanize.Comma(n))
		}
	}

	stats, err := gen.Stats(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "%s now holds %s words, %s links and %s sentences\n",
		trainDB,
		humanize.Comma(int64(stats.Vocabulary)),
		humanize.Comma(int64(stats.Links)),
		humanize.Comma(int64(stats.Sentences)),
	)
	return nil
}
