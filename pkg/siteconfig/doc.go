/*
Package siteconfig loads the optional per-site configuration file
(tmplexpress.json) from a document root.

Only a fixed set of engine options is recognized: debug, cache, autoescape,
strict_variables and charset. Each one present in the file replaces its
default; every other key is ignored, except "globals", an arbitrary JSON
object whose entries are exposed to templates by name.

A malformed file is never silently replaced by defaults. Load returns a
*ConfigError carrying the file path, the parser message and its position.
*/
package siteconfig
