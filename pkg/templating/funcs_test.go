package templating

import (
	"strings"
	"testing"

	"github.com/CTAG07/tmplexpress/pkg/siteconfig"
)

// renderString renders content as a one-off template with cfg.
func renderString(t *testing.T, cfg *siteconfig.Config, content string) string {
	t.Helper()
	m := setupTestManager(t, map[string]string{"t.tmpl": content})
	out, err := render(t, m, cfg, "t.tmpl")
	if err != nil {
		t.Fatalf("render of %q failed: %v", content, err)
	}
	return out
}

// TestTemplateFunctions validates the behavior of each category of template functions.
func TestTemplateFunctions(t *testing.T) {
	cfg := siteconfig.Default()

	t.Run("Lorem", func(t *testing.T) {
		if n := len(strings.Fields(renderString(t, cfg, `{{lorem}}`))); n != 1 {
			t.Errorf("lorem with no argument produced %d words, want 1", n)
		}
		if n := len(strings.Fields(renderString(t, cfg, `{{lorem "5 words"}}`))); n != 5 {
			t.Errorf("lorem \"5 words\" produced %d words, want 5", n)
		}
		out := renderString(t, cfg, `{{range lorem "[3p]"}}<p>{{.}}</p>{{end}}`)
		if c := strings.Count(out, "<p>"); c != 3 {
			t.Errorf("lorem list produced %d paragraphs, want 3", c)
		}
		if out = renderString(t, cfg, `[{{lorem "five words"}}]`); out != "[]" {
			t.Errorf("malformed lorem command rendered %q, want empty", out)
		}
	})

	t.Run("MarkdownBlock", func(t *testing.T) {
		out := renderString(t, cfg, `{{markdown "# Title\n\nSome **bold** text."}}`)
		if !strings.Contains(out, "<h1>Title</h1>") {
			t.Errorf("block markdown missing heading: %q", out)
		}
		if !strings.Contains(out, "<p>Some <strong>bold</strong> text.</p>") {
			t.Errorf("block markdown missing paragraph: %q", out)
		}
	})

	t.Run("MarkdownInline", func(t *testing.T) {
		out := renderString(t, cfg, `<span>{{markdown "Some **bold** text." true}}</span>`)
		if out != "<span>Some <strong>bold</strong> text.</span>" {
			t.Errorf("inline markdown = %q", out)
		}
		out = renderString(t, cfg, `{{markdown "*one*" false}}`)
		if !strings.HasPrefix(out, "<p><em>one</em></p>") {
			t.Errorf("markdown with inline=false = %q, want block output", out)
		}
	})

	t.Run("MarkdownWithoutAutoescape", func(t *testing.T) {
		raw := siteconfig.Default()
		raw.Options.Autoescape = false
		out := renderString(t, raw, `{{markdown "a *b*" true}}`)
		if out != "a <em>b</em>" {
			t.Errorf("text-mode inline markdown = %q", out)
		}
	})

	t.Run("Dump", func(t *testing.T) {
		out := renderString(t, cfg, `{{dump (dict "a" 1)}}`)
		if !strings.HasPrefix(out, `<pre class="tmplexpress-dump">`) || !strings.Contains(out, "&#34;a&#34;: 1") {
			t.Errorf("dump in debug mode = %q", out)
		}

		quiet := siteconfig.Default()
		quiet.Options.Debug = false
		if out = renderString(t, quiet, `[{{dump (dict "a" 1)}}]`); out != "[]" {
			t.Errorf("dump outside debug mode = %q, want empty", out)
		}
	})

	t.Run("Logic", func(t *testing.T) {
		withGlobals := siteconfig.Default()
		withGlobals.Globals = map[string]any{"title": "", "tags": []string{"a", "b", "c"}}

		tests := []struct {
			tmpl string
			want string
		}{
			{`{{range seq 3}}{{.}}{{end}}`, "012"},
			{`{{add 2 3}} {{sub 2 3}} {{mod 10 3}} {{mod 1 0}}`, "5 -1 1 0"},
			{`{{default "Untitled" .title}}`, "Untitled"},
			{`{{join ", " .tags}}`, "a, b, c"},
			{`{{upper "abc"}}{{lower "DEF"}}`, "ABCdef"},
			{`{{len (list 1 2 3)}}`, "3"},
			{`{{with dict "name" "nav"}}{{.name}}{{end}}`, "nav"},
		}
		for _, tt := range tests {
			if got := renderString(t, withGlobals, tt.tmpl); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.tmpl, got, tt.want)
			}
		}
	})
}

func TestDict_Errors(t *testing.T) {
	if _, err := dict("odd"); err == nil {
		t.Error("expected an error for an odd argument count")
	}
	if _, err := dict(1, "x"); err == nil {
		t.Error("expected an error for a non-string key")
	}
}

func TestRenderMarkdown_InlineParagraphs(t *testing.T) {
	got := renderMarkdown("first\n\nsecond", true)
	if got != "first second" {
		t.Errorf("renderMarkdown inline = %q, want %q", got, "first second")
	}
	if got = renderMarkdown("", true); got != "" {
		t.Errorf("renderMarkdown of empty text = %q", got)
	}
}
