package rpcerrors

import (
	"encoding/json"
	"errors"
	"strings"
)

// Report is the canonical structured error type for the typing core.
// All error builders return *Report, wrapped as *ReportError so it
// survives errors.As() unwrapping.
type Report struct {
	Schema  string         `json:"schema"` // always "rpctyping.error/v1"
	Code    string         `json:"code"`
	Phase   string         `json:"phase"`
	Path    string         `json:"path,omitempty"` // dotted path into the value being validated
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// ReportError wraps a Report as an error.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	if e.Rep.Path != "" {
		return e.Rep.Code + " at " + e.Rep.Path + ": " + e.Rep.Message
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a Report from an error chain, if present.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// Wrap wraps a Report as an error.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// New builds and wraps a Report in one step.
func New(code, phase, message string) error {
	return Wrap(&Report{Schema: "rpctyping.error/v1", Code: code, Phase: phase, Message: message})
}

// Newf is New with a path qualifier, matching the path-qualified error
// context the original implementation builds via string concatenation
// as it walks into struct members and array elements.
func Newf(code, phase, path, message string) error {
	return Wrap(&Report{Schema: "rpctyping.error/v1", Code: code, Phase: phase, Path: path, Message: message})
}

// ToJSON renders the report deterministically (struct field order is
// stable, and encoding/json writes the keys of Data and of any nested
// map values in sorted order).
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// List aggregates multiple Reports into one error without discarding any
// of them — validation never fails fast (spec testable property: all
// violations are reported, not just the first).
type List struct {
	Reports []*Report
}

// Add appends a Report, ignoring nils so call sites can append
// conditionally without guarding every call.
func (l *List) Add(r *Report) {
	if r == nil {
		return
	}
	l.Reports = append(l.Reports, r)
}

// AddErr appends any error produced by this package, unwrapping it back
// into a Report; non-Report errors are wrapped generically.
func (l *List) AddErr(err error) {
	if err == nil {
		return
	}
	if r, ok := AsReport(err); ok {
		l.Add(r)
		return
	}
	l.Add(&Report{Schema: "rpctyping.error/v1", Code: "VAL001", Phase: "validate", Message: err.Error()})
}

// Err returns nil if the list is empty, otherwise the List itself as an
// error, whose message joins every report (see Error), each prefixed with
// its code and path.
func (l *List) Err() error {
	if len(l.Reports) == 0 {
		return nil
	}
	return l
}

// Error implements the error interface for a List directly, joining all
// reports — used where callers want one combined message (e.g. CLI
// output) instead of inspecting the slice.
func (l *List) Error() string {
	parts := make([]string, 0, len(l.Reports))
	for _, r := range l.Reports {
		parts = append(parts, (&ReportError{Rep: r}).Error())
	}
	return strings.Join(parts, "; ")
}

// Empty reports whether no errors were accumulated.
func (l *List) Empty() bool { return len(l.Reports) == 0 }

// JoinPath joins a dotted validation path with the next segment, mirroring
// rpct_derive_error_context's g_strdup_printf("%s.%s", parent, child).
func JoinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}
