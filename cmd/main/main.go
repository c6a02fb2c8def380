package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.Version=...".
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "tmplexpress",
	Short: "Preview static sites and templates locally",
	Long: `tmplexpress serves a directory of HTML prototypes. Static files are sent as-is,
*.tmpl files are rendered with filler text and markdown helpers, and problems are
reported as diagnostic pages instead of blank screens.

Examples:
  tmplexpress init site
  tmplexpress serve --root site
  tmplexpress train corpus.txt --db corpus.db`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("tmplexpress version {{.Version}}\n")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
