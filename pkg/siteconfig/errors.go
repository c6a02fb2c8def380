package siteconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ConfigError describes a site config file that could not be used. It is
// reported to the developer as a diagnostic page and stops request handling
// before any routing happens.
type ConfigError struct {
	// Status is the HTTP status the diagnostic page is sent with.
	Status  int
	File    string
	Title   string
	Message string
	// Line and Column locate the problem in File, 1-based. Zero when unknown.
	Line   int
	Column int
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Title)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Title)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func newSyntaxError(path string, data []byte, err error) *ConfigError {
	ce := &ConfigError{
		Status: http.StatusInternalServerError,
		File:   path,
		Title:  "Syntax error",
		Err:    err,
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		ce.Title = syntaxErr.Error()
		ce.Line, ce.Column = lineColumn(data, syntaxErr.Offset)
	} else if err != nil {
		ce.Title = err.Error()
	}
	ce.Message = "There was a problem while parsing your JSON config. " +
		"JSON syntax is rather restrictive: no trailing commas, no comments, and keys must be double-quoted."
	if ce.Line > 0 {
		ce.Message += fmt.Sprintf(" The parser stopped at line %d, column %d.", ce.Line, ce.Column)
	}
	return ce
}

func newOptionError(path string, data []byte, key string, err error) *ConfigError {
	ce := &ConfigError{
		Status:  http.StatusInternalServerError,
		File:    path,
		Title:   fmt.Sprintf("Invalid value for %q", key),
		Message: fmt.Sprintf("The %q option has the wrong type: %v", key, err),
		Err:     err,
	}
	if i := bytes.Index(data, []byte(`"`+key+`"`)); i >= 0 {
		ce.Line, ce.Column = lineColumn(data, int64(i)+1)
	}
	return ce
}

// lineColumn converts a byte offset as reported by encoding/json into a
// 1-based line and column.
func lineColumn(data []byte, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	before := data[:offset-1]
	line := bytes.Count(before, []byte{'\n'}) + 1
	col := int(offset) - bytes.LastIndexByte(before, '\n') - 1
	return line, col
}
