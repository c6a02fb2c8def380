/*
Package templating renders the template files of a document root.

Every *.tmpl file under the root is parsed into a single template set, named
by its slash-separated path relative to the root, so pages can include each
other with {{template "partials/nav.tmpl" .}}. The set is built with
html/template when autoescaping is enabled and with text/template otherwise.

Templates receive a map as their data. It holds the configured globals plus
the reserved request bindings _get, _post, _cookie and _base, which always
take precedence over globals of the same name.

Helpers available to every template:

	lorem "5 words"         filler text; "[3p]" yields a list of paragraphs
	markdown .text          block HTML
	markdown .text true     inline HTML without paragraph wrapping
	dump .value             pretty-printed JSON, only when debug is enabled
	seq, list, dict, add, sub, mod, default, upper, lower, join

Failures are reported as *RenderError values carrying the template, the line
and an excerpt of the offending source.
*/
package templating
