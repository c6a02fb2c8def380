package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/CTAG07/tmplexpress/pkg/siteconfig"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
)

var scaffoldFiles = []struct {
	name    string
	content string
}{
	{"index.tmpl", `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.site_name}}</title>
  <link rel="stylesheet" href="{{._base}}style.css">
</head>
<body>
  {{template "partials/header.tmpl" .}}
  <main>
    <h2>{{lorem "4 words"}}</h2>
    {{range lorem "[3p]"}}<p>{{.}}</p>
    {{end}}
    {{markdown "Edit **index.tmpl** and reload the page."}}
  </main>
</body>
</html>
`},
	{"partials/header.tmpl", `<header>
  <h1><a href="{{._base}}">{{.site_name}}</a></h1>
</header>
`},
	{"style.css", `body { font-family: system-ui, sans-serif; max-width: 48rem; margin: 2rem auto; line-height: 1.5; }
header a { color: inherit; text-decoration: none; }
`},
}

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a starter site",
	Long: `Create tmplexpress.json, an index template, a header partial and a stylesheet
in dir (default: the current directory). Existing files are left untouched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	out := cmd.OutOrStdout()
	created, err := siteconfig.WriteDefault(dir)
	if err != nil {
		return err
	}
	report(out, created, filepath.Join(dir, siteconfig.FileName))

	for _, f := range scaffoldFiles {
		p := filepath.Join(dir, filepath.FromSlash(f.name))
		created, err = writeIfMissing(p, f.content)
		if err != nil {
			return err
		}
		report(out, created, p)
	}
	return nil
}

// writeIfMissing atomically writes content to p unless p already exists.
func writeIfMissing(p, content string) (bool, error) {
	if _, err := os.Stat(p); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat %s: %w", p, err)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return false, fmt.Errorf("failed to create %s: %w", filepath.Dir(p), err)
	}
	if err := atomic.WriteFile(p, strings.NewReader(content)); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", p, err)
	}
	return true, nil
}

func report(w io.Writer, created bool, p string) {
	if created {
		_, _ = fmt.Fprintf(w, "created  %s\n", p)
	} else {
		_, _ = fmt.Fprintf(w, "exists   %s\n", p)
	}
}
