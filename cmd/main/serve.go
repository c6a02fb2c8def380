package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CTAG07/tmplexpress/pkg/lorem"
	"github.com/CTAG07/tmplexpress/pkg/markov"
	"github.com/CTAG07/tmplexpress/pkg/preview"
	"github.com/CTAG07/tmplexpress/pkg/resolve"
	"github.com/CTAG07/tmplexpress/pkg/templating"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a document root",
	Long: `Serve the files of a document root over HTTP.

Requests for existing files are answered with the file. A request for /about
renders about.tmpl, and a request for /blog/ renders blog/index.tmpl. The
optional tmplexpress.json in the root is read on every request.

When --server-root is set to a parent of --root, the root is expected under
the matching sub-path (for example /proj/ for <server-root>/proj) and that
prefix is exposed to templates as _base.

Every flag can also be set through the environment, e.g. TMPLEXPRESS_ADDR.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveFlags(serveCmd.Flags())
	rootCmd.AddCommand(serveCmd)
}

// serveFlags registers the serve flags on f. Each is also read from the
// environment by loadServerConfig.
func serveFlags(f *pflag.FlagSet) {
	f.String("addr", "localhost:8000", "Address to listen on")
	f.String("root", ".", "Document root")
	f.String("server-root", "", "Directory the server is mounted on, if the root is a sub-folder of it")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	f.String("corpus-db", "", "Trained corpus database used for lorem text instead of latin")
	f.String("wordlist", "", "File with one word per line used for lorem text instead of latin")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadServerConfig(cmd.Flags())
	if err != nil {
		return err
	}
	logger := newLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	resolver, err := resolve.New(cfg.Root, cfg.ServerRoot)
	if err != nil {
		return err
	}

	gen, closeSource, err := loremGenerator(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	manager := templating.NewManager(logger, resolver.Root, gen)
	handler := preview.LogRequests(logger, preview.NewHandler(logger, resolver, manager))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting preview server",
			"address", srv.Addr,
			"root", resolver.Root,
			"sub_folder", resolver.SubFolder(),
			"version", Version,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err = <-errChan:
		if err != nil {
			return fmt.Errorf("preview server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("OS signal received, shutting down.")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("preview server shutdown failed: %w", err)
	}
	logger.Info("Preview server stopped.")
	return nil
}

// loremGenerator picks the text source for the lorem helper: a trained
// corpus, a word list, or the built-in latin words. The returned func
// releases whatever the source holds open.
func loremGenerator(ctx context.Context, cfg *ServerConfig, logger *slog.Logger) (*lorem.Generator, func(), error) {
	noop := func() {}

	if cfg.CorpusDB != "" {
		db, gen, err := openCorpus(cfg.CorpusDB)
		if err != nil {
			return nil, noop, err
		}
		gen.SetLogger(logger)
		closeAll := func() {
			gen.Close()
			if err := db.Close(); err != nil {
				logger.Error("Failed to close corpus database", "error", err)
			}
		}

		stats, err := gen.Stats(ctx)
		if err != nil {
			closeAll()
			return nil, noop, fmt.Errorf("failed to read corpus stats: %w", err)
		}
		if stats.Sentences == 0 {
			logger.Warn("Corpus database is empty, lorem text falls back to latin", "path", cfg.CorpusDB)
		} else {
			logger.Info("Using trained corpus for lorem text",
				"path", cfg.CorpusDB,
				"vocabulary", stats.Vocabulary,
				"sentences", stats.Sentences,
			)
		}
		return lorem.New(lorem.NewChainSource(gen, logger)), closeAll, nil
	}

	if cfg.WordList != "" {
		f, err := os.Open(cfg.WordList)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open word list: %w", err)
		}
		defer func(f *os.File) {
			_ = f.Close()
		}(f)
		words, err := lorem.ReadWordList(f)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to read word list %s: %w", cfg.WordList, err)
		}
		logger.Info("Using word list for lorem text", "path", cfg.WordList, "words", len(words))
		return lorem.New(lorem.NewWordSource(words)), noop, nil
	}

	return lorem.New(nil), noop, nil
}

// openCorpus opens the corpus database at path, creating the schema if the
// file is new.
func openCorpus(path string) (*sql.DB, *markov.Generator, error) {
	db, err := initDB(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open corpus database: %w", err)
	}
	if err = markov.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to set up corpus schema: %w", err)
	}
	gen, err := markov.NewGenerator(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to prepare corpus queries: %w", err)
	}
	return db, gen, nil
}
