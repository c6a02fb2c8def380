// Package mimetypes maps file extensions to the content types sent by the
// preview server. The table is fixed so responses do not depend on the host's
// mime.types database.
package mimetypes

import (
	"path"
	"strings"
)

// TemplateExt is the extension (without dot) that marks a file as a template.
const TemplateExt = "tmpl"

var table = map[string]string{
	// Documents
	"html":        "text/html",
	"htm":         "text/html",
	"xhtml":       "application/xhtml+xml",
	"xml":         "application/xml",
	"rss":         "application/rss+xml",
	"atom":        "application/atom+xml",
	"txt":         "text/plain",
	"md":          "text/markdown",
	"csv":         "text/csv",
	"ics":         "text/calendar",
	"vcf":         "text/vcard",
	"pdf":         "application/pdf",
	"rtf":         "application/rtf",
	"webmanifest": "application/manifest+json",
	"appcache":    "text/cache-manifest",

	// Code
	"css":  "text/css",
	"js":   "application/javascript",
	"mjs":  "application/javascript",
	"json": "application/json",
	"map":  "application/json",
	"wasm": "application/wasm",

	// Images
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
	"avif": "image/avif",
	"svg":  "image/svg+xml",
	"svgz": "image/svg+xml",
	"ico":  "image/x-icon",
	"bmp":  "image/bmp",
	"tif":  "image/tiff",
	"tiff": "image/tiff",

	// Fonts
	"woff":  "font/woff",
	"woff2": "font/woff2",
	"ttf":   "font/ttf",
	"otf":   "font/otf",
	"eot":   "application/vnd.ms-fontobject",

	// Media
	"mp3":  "audio/mpeg",
	"ogg":  "audio/ogg",
	"oga":  "audio/ogg",
	"wav":  "audio/wav",
	"flac": "audio/flac",
	"m4a":  "audio/mp4",
	"mp4":  "video/mp4",
	"m4v":  "video/mp4",
	"ogv":  "video/ogg",
	"webm": "video/webm",
	"mov":  "video/quicktime",
	"vtt":  "text/vtt",

	// Archives
	"zip": "application/zip",
	"gz":  "application/gzip",
	"tar": "application/x-tar",

	TemplateExt: "text/html",
}

// Lookup returns the content type registered for ext. The extension is given
// without its leading dot and matched case-sensitively.
func Lookup(ext string) (string, bool) {
	t, ok := table[ext]
	return t, ok
}

// ForPath looks up the final extension of name.
func ForPath(name string) (string, bool) {
	return Lookup(strings.TrimPrefix(path.Ext(name), "."))
}

// ForTemplate returns the content type for a template file such as
// "feed.xml.tmpl": the extension before the template extension decides, and
// anything unknown falls back to text/html.
func ForTemplate(name string) string {
	base := strings.TrimSuffix(path.Base(name), "."+TemplateExt)
	if t, ok := ForPath(base); ok {
		return t
	}
	return table[TemplateExt]
}

// WithCharset appends a charset parameter to textual content types.
func WithCharset(contentType, charset string) string {
	if charset == "" || strings.Contains(contentType, ";") {
		return contentType
	}
	if strings.HasPrefix(contentType, "text/") ||
		strings.HasSuffix(contentType, "+xml") ||
		contentType == "application/xml" ||
		contentType == "application/json" ||
		contentType == "application/javascript" {
		return contentType + "; charset=" + charset
	}
	return contentType
}
