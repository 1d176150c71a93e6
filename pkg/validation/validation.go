// Package validation holds the shared finding types produced by manifest
// and recipe checks.
package validation

import (
	"fmt"
	"strings"
)

// Error is a validation failure with a stable machine-readable code.
type Error struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

// Warning is a non-fatal finding, optionally with a suggested fix.
type Warning struct {
	Code       string `json:"code"`
	Field      string `json:"field,omitempty"`
	Line       int    `json:"line,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Result aggregates findings of a single validation pass.
type Result struct {
	Valid    bool              `json:"valid"`
	Errors   []Error           `json:"errors"`
	Warnings []Warning         `json:"warnings"`
	Context  map[string]string `json:"context,omitempty"`
}

// NewResult returns an empty, valid result.
func NewResult() *Result {
	return &Result{
		Valid:    true,
		Errors:   make([]Error, 0),
		Warnings: make([]Warning, 0),
		Context:  make(map[string]string),
	}
}

func (r *Result) AddError(e Error) {
	r.Errors = append(r.Errors, e)
	r.Valid = false
}

func (r *Result) AddWarning(w Warning) {
	r.Warnings = append(r.Warnings, w)
}

// Merge folds another result into this one.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	for k, v := range other.Context {
		r.Context[k] = v
	}
	r.Valid = r.Valid && other.Valid
}

// Summary renders findings one per line, errors first.
func (r *Result) Summary() string {
	var b strings.Builder
	for _, e := range r.Errors {
		b.WriteString(formatFinding("error", e.Code, e.Field, e.Line, e.Message))
	}
	for _, w := range r.Warnings {
		b.WriteString(formatFinding("warning", w.Code, w.Field, w.Line, w.Message))
	}
	return b.String()
}

func formatFinding(severity, code, field string, line int, message string) string {
	var b strings.Builder
	b.WriteString(severity)
	b.WriteString(" [")
	b.WriteString(code)
	b.WriteString("]")
	if field != "" {
		fmt.Fprintf(&b, " %s", field)
	}
	if line > 0 {
		fmt.Fprintf(&b, " (line %d)", line)
	}
	b.WriteString(": ")
	b.WriteString(message)
	b.WriteString("\n")
	return b.String()
}
