package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envPrefix namespaces the environment variables that override flags, for
// example TMPLEXPRESS_ADDR or TMPLEXPRESS_SERVER_ROOT.
const envPrefix = "TMPLEXPRESS"

// ServerConfig holds the settings of the serve command. Values come from
// flags, then environment variables (a .env file in the working directory is
// loaded first), then the flag defaults.
type ServerConfig struct {
	Addr       string `mapstructure:"addr"`
	Root       string `mapstructure:"root"`
	ServerRoot string `mapstructure:"server-root"`
	LogLevel   string `mapstructure:"log-level"`
	LogFormat  string `mapstructure:"log-format"`
	CorpusDB   string `mapstructure:"corpus-db"`
	WordList   string `mapstructure:"wordlist"`
}

// loadServerConfig resolves the ServerConfig for flags.
func loadServerConfig(flags *pflag.FlagSet) (*ServerConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}
	if cfg.Root == "" {
		cfg.Root = "."
	}
	return &cfg, nil
}

// newLogger builds the process logger. Unknown levels fall back to info.
func newLogger(w io.Writer, level, format string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: logLevel}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
